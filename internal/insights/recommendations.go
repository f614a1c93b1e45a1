package insights

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dataset-reconciler/internal/models"
)

// Priority ranks a recommendation
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Category groups recommendations by the analysis that raised them
type Category string

const (
	CategoryVendor      Category = "vendor"
	CategoryField       Category = "field"
	CategoryDate        Category = "date"
	CategoryVariance    Category = "variance"
	CategoryDataQuality Category = "data_quality"
	CategoryTolerance   Category = "tolerance"
	CategoryGeneral     Category = "general"
)

// Recommendation is a prioritized, human-readable suggestion
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Action   string   `json:"action"`
}

var hundred = decimal.NewFromInt(100)

// recommendations applies the rules in a fixed order. When no rule fires a
// single low-priority note is returned.
func (a *Analyzer) recommendations(in *Insights, results *models.ResultSet) []Recommendation {
	recs := make([]Recommendation, 0)

	if len(in.TopMismatchedParties) > 0 {
		top := in.TopMismatchedParties[0]
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Category: CategoryVendor,
			Message: fmt.Sprintf("Review records for \"%s\" - %d discrepancies found with total variance of $%s",
				top.Party, top.MismatchCount, top.TotalAmountVariance.StringFixed(2)),
			Action: "Filter results by this vendor and review each transaction",
		})
	}

	if field := in.ProblematicFields.MostProblematic; field != NoField {
		count := in.ProblematicFields.FieldCounts.Get(models.Field(field))
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Category: CategoryField,
			Message:  fmt.Sprintf("\"%s\" field has %d discrepancies - most common issue", strings.ToUpper(field), count),
			Action:   fieldAction(models.Field(field)),
		})
	}

	if in.DatePatterns.PeakPeriod != NoPeriod && in.DatePatterns.PeakCount > a.config.PeakCountThreshold {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Category: CategoryDate,
			Message:  fmt.Sprintf("%d unmatched entries in %s", in.DatePatterns.PeakCount, in.DatePatterns.PeakPeriod),
			Action:   "Investigate if there were system changes or special events during this period",
		})
	}

	total := in.VarianceAnalysis.TotalVariance.Amount
	switch {
	case total.GreaterThan(a.config.HighVarianceThreshold):
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Category: CategoryVariance,
			Message:  fmt.Sprintf("Total amount variance of $%s detected", total.StringFixed(2)),
			Action:   "Significant financial discrepancy - prioritize reconciliation of high-value transactions",
		})
	case total.GreaterThan(a.config.MediumVarianceThreshold):
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Category: CategoryVariance,
			Message:  fmt.Sprintf("Amount variance of $%s detected", total.StringFixed(2)),
			Action:   "Review transactions with largest variances first",
		})
	}

	if totalRecords := results.Total(); totalRecords > 0 {
		unmatched := percentOf(results.UnmatchedCount(), totalRecords)
		if unmatched.GreaterThan(a.config.UnmatchedPercentThreshold) {
			recs = append(recs, Recommendation{
				Priority: PriorityHigh,
				Category: CategoryDataQuality,
				Message:  fmt.Sprintf("%s%% of records are completely unmatched", unmatched.StringFixed(1)),
				Action:   "Verify that both files cover the same time period and data sources",
			})
		}

		partial := percentOf(len(results.Partial), totalRecords)
		if partial.GreaterThan(a.config.PartialPercentThreshold) {
			recs = append(recs, Recommendation{
				Priority: PriorityMedium,
				Category: CategoryTolerance,
				Message:  fmt.Sprintf("%s%% of records have partial matches", partial.StringFixed(1)),
				Action:   "Consider adjusting tolerance settings or investigate systematic data differences",
			})
		}
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Priority: PriorityLow,
			Category: CategoryGeneral,
			Message:  "Reconciliation quality is good with minimal discrepancies",
			Action:   "Review remaining partial matches and export results for records",
		})
	}

	return recs
}

func fieldAction(f models.Field) string {
	switch f {
	case models.FieldAmount:
		return "Consider adjusting amount tolerance or review pricing agreements"
	case models.FieldDate:
		return "Check for timezone differences or date format inconsistencies"
	default:
		return fmt.Sprintf("Verify %s data entry standards between systems", f)
	}
}

func percentOf(count, total int) decimal.Decimal {
	return decimal.NewFromInt(int64(count)).Mul(hundred).Div(decimal.NewFromInt(int64(total)))
}
