package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"folio/internal/models"
)

func holding(name string, category models.AssetCategory, value float64) models.Asset {
	return models.Asset{
		ID:       name,
		Name:     name,
		Category: category,
		Currency: "USD",
		Value:    value,
	}
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	summary := Analyze(nil)
	assert.Zero(t, summary.OverallScore)
	assert.Empty(t, summary.Suggestions)

	// Worthless positions count as empty.
	summary = Analyze([]models.Asset{holding("dud", models.CategoryStock, 0)})
	assert.Zero(t, summary.OverallScore)
}

func TestAnalyzeBalancedPortfolio(t *testing.T) {
	assets := []models.Asset{
		holding("stocks", models.CategoryStock, 2500),
		holding("bonds", models.CategoryBond, 2500),
		holding("fund", models.CategoryFund, 2500),
		holding("gold", models.CategoryGold, 1500),
		holding("cash", models.CategoryCash, 1000),
	}

	summary := Analyze(assets)
	assert.Less(t, summary.OverallScore, 1.0)
	assert.Empty(t, summary.Suggestions)
}

func TestAnalyzeSingleCategoryConcentration(t *testing.T) {
	assets := []models.Asset{
		holding("tech-a", models.CategoryStock, 5000),
		holding("tech-b", models.CategoryStock, 5000),
	}

	summary := Analyze(assets)
	assert.Greater(t, summary.OverallScore, 7.0)

	joined := ""
	for _, s := range summary.Suggestions {
		joined += s + "\n"
	}
	assert.Contains(t, joined, "single category")
	assert.Contains(t, joined, "100% of your portfolio")
}

func TestAnalyzeDominantPosition(t *testing.T) {
	assets := []models.Asset{
		holding("whale", models.CategoryStock, 8000),
		holding("bonds", models.CategoryBond, 1000),
		holding("cash", models.CategoryCash, 1000),
	}

	summary := Analyze(assets)
	found := false
	for _, s := range summary.Suggestions {
		if strings.Contains(s, "whale") {
			found = true
		}
	}
	assert.True(t, found, "expected a single-position warning naming the asset")
}

func TestAnalyzeVolatileShare(t *testing.T) {
	assets := []models.Asset{
		holding("btc", models.CategoryCrypto, 3000),
		holding("stocks", models.CategoryStock, 3500),
		holding("bonds", models.CategoryBond, 3000),
		holding("cash", models.CategoryCash, 500),
	}

	summary := Analyze(assets)
	joined := ""
	for _, s := range summary.Suggestions {
		joined += s + "\n"
	}
	assert.Contains(t, joined, "crypto and derivatives")
}

func TestAnalyzeScoreIsCapped(t *testing.T) {
	assets := []models.Asset{holding("btc", models.CategoryCrypto, 10000)}
	summary := Analyze(assets)
	assert.LessOrEqual(t, summary.OverallScore, 10.0)
}
