// Package risk derives a portfolio-level risk summary from asset allocations.
package risk

import (
	"fmt"
	"sort"

	"folio/internal/models"
)

// Thresholds for concentration warnings.
const (
	categoryConcentration = 0.40 // share of one category
	assetConcentration    = 0.25 // share of one position
	minCashBuffer         = 0.02
)

// Analyze computes the overall risk score and textual suggestions for the
// given holdings. Score runs 0 (diversified) to 10 (heavily concentrated).
// An empty portfolio yields a zero summary.
func Analyze(assets []models.Asset) models.RiskSummary {
	var total float64
	byCategory := make(map[models.AssetCategory]float64)
	var largest float64
	var largestName string

	for _, a := range assets {
		if a.Value <= 0 {
			continue
		}
		total += a.Value
		byCategory[a.Category] += a.Value
		if a.Value > largest {
			largest = a.Value
			largestName = a.Name
		}
	}
	if total <= 0 {
		return models.RiskSummary{}
	}

	var suggestions []string
	score := 0.0

	// Category concentration
	type catShare struct {
		cat   models.AssetCategory
		share float64
	}
	shares := make([]catShare, 0, len(byCategory))
	for cat, v := range byCategory {
		shares = append(shares, catShare{cat, v / total})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].share > shares[j].share })

	top := shares[0]
	if top.share > categoryConcentration {
		score += (top.share - categoryConcentration) * 10
		suggestions = append(suggestions, fmt.Sprintf(
			"%.0f%% of your portfolio sits in %s; consider spreading across more categories",
			top.share*100, top.cat))
	}

	// Single-position concentration
	if share := largest / total; share > assetConcentration {
		score += (share - assetConcentration) * 8
		suggestions = append(suggestions, fmt.Sprintf(
			"%s alone is %.0f%% of your holdings; a single position this large adds idiosyncratic risk",
			largestName, share*100))
	}

	// Category breadth
	if len(byCategory) == 1 {
		score += 3
		suggestions = append(suggestions, "all holdings are in a single category")
	} else if len(byCategory) == 2 {
		score += 1.5
	}

	// Liquidity buffer
	if byCategory[models.CategoryCash]/total < minCashBuffer {
		score += 1
		suggestions = append(suggestions, "cash buffer is below 2% of the portfolio")
	}

	// Volatile categories
	volatile := byCategory[models.CategoryCrypto] + byCategory[models.CategoryDerivative]
	if share := volatile / total; share > 0.15 {
		score += share * 5
		suggestions = append(suggestions, fmt.Sprintf(
			"crypto and derivatives make up %.0f%% of the portfolio", share*100))
	}

	if score > 10 {
		score = 10
	}

	return models.RiskSummary{
		OverallScore: score,
		Suggestions:  suggestions,
	}
}
