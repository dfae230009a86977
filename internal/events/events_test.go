package events

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/models"
	"folio/internal/recurrence"
)

var testNow = time.Date(2026, time.August, 26, 12, 0, 0, 0, time.Local)

func bondWithMaturity(id string, daysFromNow int) models.Asset {
	m := testNow.AddDate(0, 0, daysFromNow)
	return models.Asset{
		ID:           id,
		Name:         "Acme Bond",
		Category:     models.CategoryBond,
		Currency:     "USD",
		Value:        10000,
		MaturityDate: &m,
	}
}

func TestGenerateMaturitiesWindowBoundaries(t *testing.T) {
	cases := []struct {
		days     int
		included bool
	}{
		{-31, false},
		{-30, true},
		{3, true},
		{365, true},
		{366, false},
	}

	for _, tc := range cases {
		events := GenerateMaturities([]models.Asset{bondWithMaturity("a1", tc.days)}, testNow)
		if tc.included {
			assert.Len(t, events, 1, "days=%d should be included", tc.days)
		} else {
			assert.Empty(t, events, "days=%d should be excluded", tc.days)
		}
	}
}

func TestGenerateMaturitiesAcmeBond(t *testing.T) {
	events := GenerateMaturities([]models.Asset{bondWithMaturity("bond-1", 3)}, testNow)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "maturity_bond-1", ev.ID)
	assert.Equal(t, models.EventMaturity, ev.Type)
	assert.Equal(t, "Matures in 3 days", ev.Description)
	assert.Equal(t, "Acme Bond", ev.AssetName)
	assert.True(t, ev.IsRead == false && ev.CreatedAt.IsZero(), "generators must not set store-owned fields")
}

func TestGenerateMaturitiesDescriptions(t *testing.T) {
	for days, want := range map[int]string{
		-5: "Matured 5 days ago",
		0:  "Matures today",
		1:  "Matures tomorrow",
		6:  "Matures in 6 days",
	} {
		events := GenerateMaturities([]models.Asset{bondWithMaturity("a", days)}, testNow)
		require.Len(t, events, 1, "days=%d", days)
		assert.Equal(t, want, events[0].Description)
	}
}

func monthlyContribAsset(lastValidated string) models.Asset {
	return models.Asset{
		ID:       "fund-1",
		Name:     "Index Fund",
		Currency: "USD",
		Value:    5000,
		Contribution: &models.RecurringContribution{
			Enabled:         true,
			Frequency:       models.FrequencyMonthly,
			DayOfMonth:      15,
			Amount:          250,
			LastValidatedID: lastValidated,
		},
	}
}

func TestContributionValidationSuppression(t *testing.T) {
	// The 15th has passed; the current-month occurrence is validated.
	asset := monthlyContribAsset(recurrence.MonthID(testNow))
	events := GenerateContributions([]models.Asset{asset}, testNow)
	assert.Empty(t, events)
}

func TestContributionDueNow(t *testing.T) {
	asset := monthlyContribAsset("")
	events := GenerateContributions([]models.Asset{asset}, testNow)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "assetcontrib_fund-1_monthly_2026-08", ev.ID)
	assert.Contains(t, ev.Title, "Contribution due")
	assert.Equal(t, 250.0, ev.Amount)
}

func TestContributionNeedsConfirmation(t *testing.T) {
	asset := monthlyContribAsset("")
	asset.Contribution.LastAppliedID = recurrence.MonthID(testNow)

	events := GenerateContributions([]models.Asset{asset}, testNow)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Title, "Confirm contribution")
	assert.Contains(t, events[0].Description, "awaits your confirmation")
}

func TestContributionFuturePlanned(t *testing.T) {
	// Day 28 has not been reached yet; the occurrence is still pending.
	asset := monthlyContribAsset("")
	asset.Contribution.DayOfMonth = 28

	events := GenerateContributions([]models.Asset{asset}, testNow)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Title, "Upcoming contribution")
}

func TestContributionDisabledOrZeroAmount(t *testing.T) {
	off := monthlyContribAsset("")
	off.Contribution.Enabled = false
	zero := monthlyContribAsset("")
	zero.Contribution.Amount = 0

	assert.Empty(t, GenerateContributions([]models.Asset{off, zero}, testNow))
}

func TestGenerateStaleValuations(t *testing.T) {
	valued := testNow.AddDate(0, 0, -40)
	asset := models.Asset{
		ID:              "land-1",
		Name:            "Plot",
		ManualValuation: true,
		ValueHistory:    []models.ValuePoint{{Date: valued, Value: 90000}},
	}

	events := GenerateStaleValuations([]models.Asset{asset}, 30, testNow)
	require.Len(t, events, 1)

	due := recurrence.AtDueHour(valued.AddDate(0, 0, 30))
	assert.Equal(t, "stalevaluation_land-1_"+recurrence.DateID(due), events[0].ID)
	assert.Contains(t, events[0].Description, "went stale")

	// Non-manual assets never go stale.
	asset.ManualValuation = false
	assert.Empty(t, GenerateStaleValuations([]models.Asset{asset}, 30, testNow))
}

func TestGenerateContributionRoom(t *testing.T) {
	rooms := []models.ContributionRoom{
		{AccountType: "tfsa", Enabled: true, PerPeriodTarget: 499.6, Currency: "CAD"},
		{AccountType: "rrsp", Enabled: false, PerPeriodTarget: 300},
		{AccountType: "isa", Enabled: true, PerPeriodTarget: 0},
	}

	events := GenerateContributionRoom(rooms, models.FrequencyMonthly, time.Friday, 1, testNow)
	require.Len(t, events, 1)

	ev := events[0]
	// Next monthly pay date after Aug 26 with pay_day=1 is Sep 1.
	due := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)
	assert.Equal(t, "contrib_tfsa_"+recurrence.DateID(due), ev.ID)
	assert.Equal(t, due, ev.Date)
	assert.Equal(t, 500.0, ev.Amount, "target rounds to whole currency units")
}

func TestGenerateRebalance(t *testing.T) {
	assets := []models.Asset{{ID: "a", Name: "A", Value: 100, Category: models.CategoryStock}}

	// Empty portfolio: nothing.
	assert.Empty(t, GenerateRebalance(nil, models.RiskSummary{OverallScore: 9}, testNow))

	// Low score, no suggestions: nothing.
	assert.Empty(t, GenerateRebalance(assets, models.RiskSummary{OverallScore: 3}, testNow))

	// Suggestion used verbatim with whitespace collapsed.
	risk := models.RiskSummary{Suggestions: []string{"  ", "too   much\n concentration  "}}
	events := GenerateRebalance(assets, risk, testNow)
	require.Len(t, events, 1)
	assert.Equal(t, "too much concentration", events[0].Description)

	review := recurrence.AtDueHour(testNow.AddDate(0, 0, 1)).AddDate(0, 0, 14)
	assert.Equal(t, "rebalance_"+recurrence.MonthID(review), events[0].ID)

	// High score without suggestions falls back to the generic text.
	events = GenerateRebalance(assets, models.RiskSummary{OverallScore: 8}, testNow)
	require.Len(t, events, 1)
	assert.True(t, strings.Contains(events[0].Description, "review"))
}

func TestOccurrenceTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusDue))
	assert.True(t, CanTransition(StatusDue, StatusApplied))
	assert.True(t, CanTransition(StatusDue, StatusValidated))
	assert.True(t, CanTransition(StatusApplied, StatusValidated))

	assert.False(t, CanTransition(StatusPending, StatusApplied))
	assert.False(t, CanTransition(StatusValidated, StatusDue))
	assert.False(t, CanTransition(StatusApplied, StatusDue))
}
