package reporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"dataset-reconciler/internal/insights"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/reconciler"
)

// table is a block of rows shared by the CSV and XLSX writers. An empty
// row separates sections.
type table [][]string

func (t *table) add(cells ...string) {
	*t = append(*t, cells)
}

func (t *table) blank() {
	*t = append(*t, []string{})
}

func dollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// resultHeaders returns the results table header for the configured columns
func (rg *ReportGenerator) resultHeaders() []string {
	headers := []string{
		"Type",
		"Document No",
		"Party Name (File A)",
		"Party Name (File B)",
		"Date (File A)",
		"Date (File B)",
		"Amount (File A)",
		"Amount (File B)",
		"Tax (File A)",
		"Tax (File B)",
	}
	if rg.config.IncludeVariance {
		headers = append(headers, "Amount Variance", "Tax Variance")
	}
	if rg.config.IncludeDetails {
		headers = append(headers, "Differences", "Status")
	}
	return headers
}

func (rg *ReportGenerator) resultRow(rec *models.ReconciliationRecord) []string {
	row := []string{
		strings.ToUpper(rec.Type.String()),
		rec.DocNo,
		party(rec.FileA),
		party(rec.FileB),
		date(rec.FileA),
		date(rec.FileB),
		money(rec.FileA, false),
		money(rec.FileB, false),
		money(rec.FileA, true),
		money(rec.FileB, true),
	}
	if rg.config.IncludeVariance {
		row = append(row, rec.Variance.Amount.StringFixed(2), rec.Variance.Tax.StringFixed(2))
	}
	if rg.config.IncludeDetails {
		row = append(row, DescribeDifferences(rec), RecordStatus(rec))
	}
	return row
}

// reportedRecords returns the records the results scope lists, in
// matched, partial, unmatchedA, unmatchedB order
func (rg *ReportGenerator) reportedRecords(results *models.ResultSet) []models.ReconciliationRecord {
	if rg.config.IncludeMatched {
		return results.All()
	}
	return results.Discrepancies()
}

func (rg *ReportGenerator) resultsTable(results *models.ResultSet) table {
	t := table{rg.resultHeaders()}
	records := rg.reportedRecords(results)
	for i := range records {
		t = append(t, rg.resultRow(&records[i]))
	}
	return t
}

func summaryTable(s models.Summary) table {
	return table{
		{"Metric", "Value"},
		{"Total Records", itoa(s.TotalRecords)},
		{"Matched Records", itoa(s.MatchedCount)},
		{"Matched Percentage", percent(s.MatchedPercentage)},
		{"Partial Matches", itoa(s.PartialCount)},
		{"Partial Percentage", percent(s.PartialPercentage)},
		{"Unmatched in File A", itoa(s.UnmatchedACount)},
		{"Unmatched in File B", itoa(s.UnmatchedBCount)},
		{"Total Amount Variance", dollars(s.TotalVariance.Amount)},
		{"Total Tax Variance", dollars(s.TotalVariance.Tax)},
	}
}

func insightsTable(in *insights.Insights) table {
	var t table

	t.add("TOP MISMATCHED PARTIES")
	t.add("Party", "Mismatch Count", "Total Variance", "Partial", "Unmatched A", "Unmatched B")
	for _, p := range in.TopMismatchedParties {
		t.add(p.Party, itoa(p.MismatchCount), dollars(p.TotalAmountVariance),
			itoa(p.Breakdown.Partial), itoa(p.Breakdown.UnmatchedA), itoa(p.Breakdown.UnmatchedB))
	}
	t.blank()

	t.add("PROBLEMATIC FIELDS")
	t.add("Field", "Discrepancy Count")
	for _, f := range models.ComparedFields {
		t.add(strings.ToUpper(f.String()), itoa(in.ProblematicFields.FieldCounts.Get(f)))
	}
	t.add("Most Problematic", strings.ToUpper(in.ProblematicFields.MostProblematic))
	t.blank()

	va := in.VarianceAnalysis
	t.add("VARIANCE ANALYSIS")
	t.add("Metric", "Amount", "Tax")
	t.add("Total Variance", dollars(va.TotalVariance.Amount), dollars(va.TotalVariance.Tax))
	t.add("Average Variance", dollars(va.AverageVariance.Amount), dollars(va.AverageVariance.Tax))
	t.blank()

	t.add("RECOMMENDATIONS")
	t.add("Priority", "Category", "Message", "Action")
	for _, r := range in.Recommendations {
		t.add(strings.ToUpper(string(r.Priority)), string(r.Category), r.Message, r.Action)
	}
	return t
}

func completeTable(result *reconciler.ReconciliationResult) table {
	var t table
	s := result.Summary

	t.add("RECONCILIATION REPORT")
	t.add("Generated:", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	t.blank()

	t.add("SUMMARY STATISTICS")
	t.add("Total Records", itoa(s.TotalRecords))
	t.add("Matched", fmt.Sprintf("%d (%s)", s.MatchedCount, percent(s.MatchedPercentage)))
	t.add("Partial Matches", fmt.Sprintf("%d (%s)", s.PartialCount, percent(s.PartialPercentage)))
	t.add("Unmatched in File A", itoa(s.UnmatchedACount))
	t.add("Unmatched in File B", itoa(s.UnmatchedBCount))
	t.add("Total Variance", dollars(s.TotalVariance.Amount))
	t.blank()

	matched := result.Results.Matched
	if len(matched) > 0 {
		t.add("MATCHED RECORDS")
		t.add("Doc No", "Party", "Date", "Amount")
		for i := 0; i < len(matched) && i < CompleteMatchedLimit; i++ {
			rec := &matched[i]
			t.add(rec.DocNo, party(rec.FileA), date(rec.FileA), "$"+money(rec.FileA, false))
		}
		if len(matched) > CompleteMatchedLimit {
			t.add(fmt.Sprintf("... and %d more", len(matched)-CompleteMatchedLimit))
		}
		t.blank()
	}

	partial := result.Results.Partial
	if len(partial) > 0 {
		t.add("PARTIAL MATCHES (TOP 10)")
		t.add("Doc No", "Party (A)", "Party (B)", "Amount (A)", "Amount (B)", "Variance", "Differences")
		for i := 0; i < len(partial) && i < CompletePartialLimit; i++ {
			rec := &partial[i]
			t.add(rec.DocNo, party(rec.FileA), party(rec.FileB),
				"$"+money(rec.FileA, false), "$"+money(rec.FileB, false),
				dollars(rec.Variance.Amount), joinFields(rec.DifferenceFields()))
		}
		t.blank()
	}

	t.add("TOP RECOMMENDATIONS")
	t.add("Priority", "Message", "Action")
	recs := result.Insights.Recommendations
	for i := 0; i < len(recs) && i < CompleteRecommendationsLimit; i++ {
		t.add(strings.ToUpper(string(recs[i].Priority)), recs[i].Message, recs[i].Action)
	}
	return t
}

// scopeTable builds the table for the configured scope
func (rg *ReportGenerator) scopeTable(result *reconciler.ReconciliationResult) table {
	switch rg.config.Scope {
	case ScopeResults:
		return rg.resultsTable(result.Results)
	case ScopeSummary:
		return summaryTable(result.Summary)
	case ScopeInsights:
		return insightsTable(result.Insights)
	default:
		return completeTable(result)
	}
}
