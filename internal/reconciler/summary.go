package reconciler

import (
	"github.com/shopspring/decimal"

	"dataset-reconciler/internal/models"
)

// CalculateSummary reduces a result set to counts, percentages and the
// signed variance total. Percentages are rounded to two decimals and are 0
// for an empty result set.
func CalculateSummary(results *models.ResultSet) models.Summary {
	if results == nil {
		results = models.NewResultSet()
	}

	total := results.Total()
	summary := models.Summary{
		TotalRecords:        total,
		MatchedCount:        len(results.Matched),
		PartialCount:        len(results.Partial),
		UnmatchedACount:     len(results.UnmatchedA),
		UnmatchedBCount:     len(results.UnmatchedB),
		MatchedPercentage:   percentage(len(results.Matched), total),
		PartialPercentage:   percentage(len(results.Partial), total),
		UnmatchedPercentage: percentage(results.UnmatchedCount(), total),
		TotalVariance:       models.ZeroVariance(),
	}

	for _, rec := range results.Discrepancies() {
		summary.TotalVariance = summary.TotalVariance.Add(rec.Variance)
	}

	return summary
}

func percentage(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
