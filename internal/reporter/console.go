package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dataset-reconciler/internal/insights"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/pkg/errors"
)

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	cw := &consoleWriter{w: writer}

	switch rg.config.Scope {
	case ScopeSummary:
		cw.section("SUMMARY")
		rg.printSummary(result.Summary, cw)
	case ScopeInsights:
		rg.printInsights(result.Insights, cw)
	case ScopeResults:
		rg.printRecordLists(result.Results, cw)
	default:
		cw.printf("RECONCILIATION REPORT\n")
		cw.printf("Run: %s\n", result.RunID)
		cw.printf("Generated: %s\n", result.GeneratedAt.Format(time.RFC3339))
		cw.printf("Processing Duration: %v\n\n", result.Duration)

		cw.section("DATASETS")
		rg.printDataset(result.DatasetA, cw)
		rg.printDataset(result.DatasetB, cw)
		cw.printf("\n")

		cw.section("SUMMARY")
		rg.printSummary(result.Summary, cw)
		cw.printf("\n")

		if len(result.Duplicates) > 0 {
			cw.section("DUPLICATE DOCUMENT NUMBERS")
			rg.printDuplicates(result, cw)
			cw.printf("\n")
		}

		if result.DatasetA.Quality.HasIssues() || result.DatasetB.Quality.HasIssues() {
			cw.section("DATA QUALITY ISSUES")
			rg.printDataQuality(result, cw)
		}

		rg.printRecordLists(result.Results, cw)
		rg.printInsights(result.Insights, cw)
	}

	return cw.err
}

// consoleWriter keeps the first write error so sections can be printed
// without checking every call
type consoleWriter struct {
	w   io.Writer
	err error
}

func (cw *consoleWriter) printf(format string, args ...interface{}) {
	if cw.err != nil {
		return
	}
	_, cw.err = fmt.Fprintf(cw.w, format, args...)
}

func (cw *consoleWriter) section(title string) {
	cw.printf("=== %s ===\n", title)
}

func (rg *ReportGenerator) printDataset(info reconciler.DatasetInfo, cw *consoleWriter) {
	detected := ""
	if info.AutoDetected {
		detected = " (auto-detected)"
	}
	cw.printf("%s: %d records\n", info.Name, info.Records)
	cw.printf("  Mapping%s: %s\n", detected, info.Mapping.String())
}

func (rg *ReportGenerator) printDataQuality(result *reconciler.ReconciliationResult, cw *consoleWriter) {
	for _, info := range []reconciler.DatasetInfo{result.DatasetA, result.DatasetB} {
		if !info.Quality.HasIssues() {
			continue
		}
		cw.printf("%s\n", info.Name)
		cw.printf("%s\n\n", errors.FormatValueErrorsForUser(info.Quality.Issues, info.Quality.Total))
	}
}

func (rg *ReportGenerator) printSummary(s models.Summary, cw *consoleWriter) {
	cw.printf("Total Records:       %d\n", s.TotalRecords)
	cw.printf("Matched:             %d (%s)\n", s.MatchedCount, percent(s.MatchedPercentage))
	cw.printf("Partial Matches:     %d (%s)\n", s.PartialCount, percent(s.PartialPercentage))
	cw.printf("Unmatched in File A: %d\n", s.UnmatchedACount)
	cw.printf("Unmatched in File B: %d\n", s.UnmatchedBCount)
	cw.printf("Unmatched:           %s\n", percent(s.UnmatchedPercentage))
	cw.printf("Amount Variance:     %s\n", dollars(s.TotalVariance.Amount))
	cw.printf("Tax Variance:        %s\n", dollars(s.TotalVariance.Tax))
}

func (rg *ReportGenerator) printDuplicates(result *reconciler.ReconciliationResult, cw *consoleWriter) {
	for _, dup := range result.Duplicates {
		cw.printf("%s: %d repeated document numbers, %d rows shadowed\n",
			dup.Dataset, len(dup.Groups), dup.ShadowedCount())
		rg.printList(len(dup.Groups), cw, func(i int) {
			g := dup.Groups[i]
			cw.printf("  %s rows %v, kept row %d\n", g.DocNo, g.RowIndexes, g.KeptRowIndex)
		})
	}
}

func (rg *ReportGenerator) printRecordLists(results *models.ResultSet, cw *consoleWriter) {
	if rg.config.IncludeMatched && len(results.Matched) > 0 {
		cw.section(fmt.Sprintf("MATCHED RECORDS (%d)", len(results.Matched)))
		rg.printList(len(results.Matched), cw, func(i int) {
			rec := &results.Matched[i]
			cw.printf("  %-12s %-30s %-12s %12s\n",
				rec.DocNo, party(rec.FileA), date(rec.FileA), money(rec.FileA, false))
		})
		cw.printf("\n")
	}

	if len(results.Partial) > 0 {
		cw.section(fmt.Sprintf("PARTIAL MATCHES (%d)", len(results.Partial)))
		rg.printList(len(results.Partial), cw, func(i int) {
			rec := &results.Partial[i]
			cw.printf("  %-12s %-30s variance %s\n", rec.DocNo, rec.PartyName(), dollars(rec.Variance.Amount))
			cw.printf("    %s\n", DescribeDifferences(rec))
		})
		cw.printf("\n")
	}

	unmatched := []struct {
		title   string
		records []models.ReconciliationRecord
	}{
		{"ONLY IN FILE A", results.UnmatchedA},
		{"ONLY IN FILE B", results.UnmatchedB},
	}
	for _, group := range unmatched {
		if len(group.records) == 0 {
			continue
		}
		records := group.records
		cw.section(fmt.Sprintf("%s (%d)", group.title, len(records)))
		rg.printList(len(records), cw, func(i int) {
			rec := &records[i]
			cw.printf("  %-12s %-30s %-12s %12s\n",
				rec.DocNo, rec.PartyName(), rec.DateValue(), rec.Variance.Amount.StringFixed(2))
		})
		cw.printf("\n")
	}
}

func (rg *ReportGenerator) printInsights(in *insights.Insights, cw *consoleWriter) {
	if len(in.TopMismatchedParties) > 0 {
		cw.section("TOP MISMATCHED PARTIES")
		for _, p := range in.TopMismatchedParties {
			cw.printf("  %-30s %3d mismatches, variance %s (partial %d, only A %d, only B %d)\n",
				p.Party, p.MismatchCount, dollars(p.TotalAmountVariance),
				p.Breakdown.Partial, p.Breakdown.UnmatchedA, p.Breakdown.UnmatchedB)
		}
		cw.printf("\n")
	}

	fields := in.ProblematicFields
	cw.section("PROBLEMATIC FIELDS")
	for _, f := range models.ComparedFields {
		cw.printf("  %-8s %d\n", strings.ToUpper(f.String()), fields.FieldCounts.Get(f))
	}
	cw.printf("  Most problematic: %s\n\n", strings.ToUpper(fields.MostProblematic))

	dates := in.DatePatterns
	cw.section("DATE PATTERNS")
	cw.printf("  Peak period: %s (%d unmatched)\n", dates.PeakPeriod, dates.PeakCount)
	for _, m := range dates.MonthlyDistribution {
		cw.printf("  %-10s %d\n", m.Month, m.Count)
	}
	cw.printf("\n")

	va := in.VarianceAnalysis
	cw.section("VARIANCE ANALYSIS")
	cw.printf("  Total:   %s amount, %s tax\n", dollars(va.TotalVariance.Amount), dollars(va.TotalVariance.Tax))
	cw.printf("  Average: %s amount, %s tax over %d records\n",
		dollars(va.AverageVariance.Amount), dollars(va.AverageVariance.Tax), va.VarianceCount)
	cw.printf("  Largest: %s (%s)\n\n", dollars(va.LargestVariance.Amount), va.LargestVariance.Type)

	cw.section("RECOMMENDATIONS")
	for _, r := range in.Recommendations {
		cw.printf("  [%s] %s\n", strings.ToUpper(string(r.Priority)), r.Message)
		cw.printf("         %s\n", r.Action)
	}
}

// printList prints up to MaxListItems entries, then a count of the rest
func (rg *ReportGenerator) printList(n int, cw *consoleWriter, item func(i int)) {
	limit := n
	if rg.config.MaxListItems > 0 && rg.config.MaxListItems < n {
		limit = rg.config.MaxListItems
	}
	for i := 0; i < limit; i++ {
		item(i)
	}
	if n > limit {
		cw.printf("  ... and %d more\n", n-limit)
	}
}
