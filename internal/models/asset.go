// Package models provides domain models for the portfolio application.
package models

import (
	"time"
)

// AssetCategory represents the category of a tracked asset.
type AssetCategory string

const (
	CategoryStock       AssetCategory = "stock"
	CategoryBond        AssetCategory = "bond"
	CategoryFund        AssetCategory = "fund"
	CategoryGold        AssetCategory = "gold"
	CategoryRealEstate  AssetCategory = "real_estate"
	CategoryCrypto      AssetCategory = "crypto"
	CategoryFixedIncome AssetCategory = "fixed_income"
	CategoryDerivative  AssetCategory = "derivative"
	CategoryMetal       AssetCategory = "metal"
	CategoryCash        AssetCategory = "cash"
)

// Categories lists all valid asset categories.
func Categories() []AssetCategory {
	return []AssetCategory{
		CategoryStock, CategoryBond, CategoryFund, CategoryGold,
		CategoryRealEstate, CategoryCrypto, CategoryFixedIncome,
		CategoryDerivative, CategoryMetal, CategoryCash,
	}
}

// Frequency represents a recurring contribution cadence.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Valid reports whether the frequency is a known cadence.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// RecurringContribution describes a periodic contribution attached to an asset.
//
// LastAppliedID and LastValidatedID hold occurrence ids (a YYYY-MM month id
// for monthly, a YYYY-MM-DD date id otherwise, biweekly chains included).
// They are the only mutable fields the generators read, and keep a past-due
// occurrence from firing twice.
type RecurringContribution struct {
	Enabled         bool         `json:"enabled"`
	Frequency       Frequency    `json:"frequency"`
	Weekday         time.Weekday `json:"weekday"`               // weekly/biweekly
	DayOfMonth      int          `json:"day_of_month"`          // monthly, clamped to [1,28]
	Amount          float64      `json:"amount"`
	AutoApply       bool         `json:"auto_apply"`
	LastAppliedID   string       `json:"last_applied_id,omitempty"`
	LastValidatedID string       `json:"last_validated_id,omitempty"`
}

// ValuePoint is a single entry in an asset's valuation history.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Asset represents a tracked portfolio position.
type Asset struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Category        AssetCategory          `json:"category"`
	Currency        string                 `json:"currency"`
	Value           float64                `json:"value"`
	PurchaseDate    *time.Time             `json:"purchase_date,omitempty"`
	MaturityDate    *time.Time             `json:"maturity_date,omitempty"`
	ManualValuation bool                   `json:"manual_valuation"`
	ValueHistory    []ValuePoint           `json:"value_history,omitempty"`
	Contribution    *RecurringContribution `json:"contribution,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// LastValuedAt returns the most recent instant the asset's value is known for.
// Fallback order: latest value-history entry, last update, purchase date, now.
func (a *Asset) LastValuedAt(now time.Time) time.Time {
	var latest time.Time
	for _, p := range a.ValueHistory {
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	if !latest.IsZero() {
		return latest
	}
	if !a.UpdatedAt.IsZero() {
		return a.UpdatedAt
	}
	if a.PurchaseDate != nil && !a.PurchaseDate.IsZero() {
		return *a.PurchaseDate
	}
	return now
}

// RiskSummary holds the portfolio-level risk assessment consumed by the
// rebalance review generator.
type RiskSummary struct {
	OverallScore float64  `json:"overall_score"` // 0 (diversified) .. 10 (concentrated)
	Suggestions  []string `json:"suggestions"`
}

// ContributionRoom describes a per-period savings target for a
// tax-advantaged account type.
type ContributionRoom struct {
	AccountType     string  `json:"account_type" mapstructure:"account_type"`
	Enabled         bool    `json:"enabled" mapstructure:"enabled"`
	PerPeriodTarget float64 `json:"per_period_target" mapstructure:"per_period_target"`
	Currency        string  `json:"currency" mapstructure:"currency"`
}
