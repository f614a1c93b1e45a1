// Package insights derives diagnostics and recommendations from a
// reconciliation result set: which parties and fields account for most
// discrepancies, when unmatched records cluster, and how large the gaps are.
package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"dataset-reconciler/internal/matcher"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/logger"
)

// Config holds the thresholds used by the analyzer
type Config struct {
	TopParties int `json:"top_parties"`
	TopMonths  int `json:"top_months"`

	// PeakCountThreshold is the count a peak month must exceed to be reported
	PeakCountThreshold int `json:"peak_count_threshold"`

	HighVarianceThreshold   decimal.Decimal `json:"high_variance_threshold"`
	MediumVarianceThreshold decimal.Decimal `json:"medium_variance_threshold"`

	// Percent of all records above which the share is reported
	UnmatchedPercentThreshold decimal.Decimal `json:"unmatched_percent_threshold"`
	PartialPercentThreshold   decimal.Decimal `json:"partial_percent_threshold"`
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() *Config {
	return &Config{
		TopParties:                5,
		TopMonths:                 3,
		PeakCountThreshold:        3,
		HighVarianceThreshold:     decimal.NewFromInt(1000),
		MediumVarianceThreshold:   decimal.NewFromInt(100),
		UnmatchedPercentThreshold: decimal.NewFromInt(20),
		PartialPercentThreshold:   decimal.NewFromInt(30),
	}
}

// Insights is the full diagnostic report for one result set
type Insights struct {
	TopMismatchedParties []PartyInsight   `json:"topMismatchedParties"`
	ProblematicFields    FieldAnalysis    `json:"problematicFields"`
	DatePatterns         DatePatterns     `json:"datePatterns"`
	VarianceAnalysis     VarianceAnalysis `json:"varianceAnalysis"`
	Recommendations      []Recommendation `json:"recommendations"`
}

// TypeBreakdown counts discrepancies per record type
type TypeBreakdown struct {
	Partial    int `json:"partial"`
	UnmatchedA int `json:"unmatchedA"`
	UnmatchedB int `json:"unmatchedB"`
}

func (b *TypeBreakdown) add(t models.RecordType) {
	switch t {
	case models.RecordPartial:
		b.Partial++
	case models.RecordUnmatchedA:
		b.UnmatchedA++
	case models.RecordUnmatchedB:
		b.UnmatchedB++
	}
}

// PartyInsight summarizes the discrepancies attributed to one party
type PartyInsight struct {
	Party               string          `json:"party"`
	MismatchCount       int             `json:"mismatchCount"`
	TotalAmountVariance decimal.Decimal `json:"totalAmountVariance"`
	Breakdown           TypeBreakdown   `json:"breakdown"`
}

// FieldCounts counts differences per compared field
type FieldCounts struct {
	Party  int `json:"party"`
	Date   int `json:"date"`
	Amount int `json:"amount"`
	Tax    int `json:"tax"`
}

// Get returns the count for f
func (c FieldCounts) Get(f models.Field) int {
	switch f {
	case models.FieldParty:
		return c.Party
	case models.FieldDate:
		return c.Date
	case models.FieldAmount:
		return c.Amount
	case models.FieldTax:
		return c.Tax
	default:
		return 0
	}
}

func (c *FieldCounts) add(f models.Field) {
	switch f {
	case models.FieldParty:
		c.Party++
	case models.FieldDate:
		c.Date++
	case models.FieldAmount:
		c.Amount++
	case models.FieldTax:
		c.Tax++
	}
}

// NoField is reported as the most problematic field when no field differs
const NoField = "none"

// FieldAnalysis reports which compared field differs most often in partial matches
type FieldAnalysis struct {
	FieldCounts        FieldCounts `json:"fieldCounts"`
	MostProblematic    string      `json:"mostProblematic"`
	TotalDiscrepancies int         `json:"totalDiscrepancies"`
}

// NoPeriod is reported as the peak period when no unmatched date could be read
const NoPeriod = "N/A"

// MonthCount is the number of unmatched records in one month
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DatePatterns reports when unmatched records cluster
type DatePatterns struct {
	PeakPeriod          string       `json:"peakPeriod"`
	PeakCount           int          `json:"peakCount"`
	MonthlyDistribution []MonthCount `json:"monthlyDistribution"`
}

// LargestVariance is the discrepancy with the largest absolute amount
type LargestVariance struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// VarianceAnalysis reports absolute variance totals and averages
type VarianceAnalysis struct {
	TotalVariance   models.Variance `json:"totalVariance"`
	AverageVariance models.Variance `json:"averageVariance"`
	LargestVariance LargestVariance `json:"largestVariance"`
	VarianceCount   int             `json:"varianceCount"`
}

// Analyzer builds Insights from result sets
type Analyzer struct {
	config *Config
	logger logger.Logger
}

// NewAnalyzer creates an analyzer with the given thresholds
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Analyzer{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("insights"),
	}
}

// Generate analyzes results with the default thresholds
func Generate(results *models.ResultSet) *Insights {
	return NewAnalyzer(nil).Generate(results)
}

// Generate computes every analysis and then the recommendations. The result
// set is only read.
func (a *Analyzer) Generate(results *models.ResultSet) *Insights {
	if results == nil {
		results = models.NewResultSet()
	}

	in := &Insights{
		TopMismatchedParties: a.topMismatchedParties(results),
		ProblematicFields:    problematicFields(results),
		DatePatterns:         a.datePatterns(results),
		VarianceAnalysis:     varianceAnalysis(results),
	}
	in.Recommendations = a.recommendations(in, results)

	a.logger.WithFields(logger.Fields{
		"parties":          len(in.TopMismatchedParties),
		"most_problematic": in.ProblematicFields.MostProblematic,
		"peak_period":      in.DatePatterns.PeakPeriod,
		"recommendations":  len(in.Recommendations),
	}).Debug("Generated insights")

	return in
}

// topMismatchedParties groups discrepancies by party, most frequent first.
// Ties keep the order in which parties were first seen.
func (a *Analyzer) topMismatchedParties(results *models.ResultSet) []PartyInsight {
	type partyStats struct {
		insight PartyInsight
		total   decimal.Decimal
	}

	stats := make(map[string]*partyStats)
	var order []*partyStats

	for _, rec := range results.Discrepancies() {
		party := rec.PartyName()
		s, ok := stats[party]
		if !ok {
			s = &partyStats{insight: PartyInsight{Party: party}, total: decimal.Zero}
			stats[party] = s
			order = append(order, s)
		}
		s.insight.MismatchCount++
		s.total = s.total.Add(rec.Variance.Amount.Abs())
		s.insight.Breakdown.add(rec.Type)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].insight.MismatchCount > order[j].insight.MismatchCount
	})

	limit := a.config.TopParties
	if limit > len(order) {
		limit = len(order)
	}

	top := make([]PartyInsight, 0, limit)
	for _, s := range order[:limit] {
		insight := s.insight
		insight.TotalAmountVariance = s.total.Round(2)
		top = append(top, insight)
	}
	return top
}

// problematicFields counts differences across partial matches. The most
// problematic field is the first, in party, date, amount, tax order, with the
// strictly greatest count.
func problematicFields(results *models.ResultSet) FieldAnalysis {
	var counts FieldCounts
	for _, rec := range results.Partial {
		for _, diff := range rec.Differences {
			counts.add(diff.Field)
		}
	}

	most, best := NoField, 0
	for _, f := range models.ComparedFields {
		if n := counts.Get(f); n > best {
			most, best = f.String(), n
		}
	}

	return FieldAnalysis{
		FieldCounts:        counts,
		MostProblematic:    most,
		TotalDiscrepancies: len(results.Partial),
	}
}

// datePatterns buckets unmatched records by month. Records without a
// readable date are skipped.
func (a *Analyzer) datePatterns(results *models.ResultSet) DatePatterns {
	counts := make(map[string]int)
	var months []string

	unmatched := append(append([]models.ReconciliationRecord{}, results.UnmatchedA...), results.UnmatchedB...)
	for _, rec := range unmatched {
		value := rec.DateValue()
		if value == "" {
			continue
		}
		t, ok := matcher.ParseDate(value)
		if !ok {
			continue
		}

		label := t.Format("Jan 2006")
		if _, seen := counts[label]; !seen {
			months = append(months, label)
		}
		counts[label]++
	}

	patterns := DatePatterns{
		PeakPeriod:          NoPeriod,
		MonthlyDistribution: []MonthCount{},
	}
	for _, m := range months {
		if counts[m] > patterns.PeakCount {
			patterns.PeakPeriod, patterns.PeakCount = m, counts[m]
		}
	}

	distribution := make([]MonthCount, 0, len(months))
	for _, m := range months {
		distribution = append(distribution, MonthCount{Month: m, Count: counts[m]})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].Count > distribution[j].Count
	})
	if len(distribution) > a.config.TopMonths {
		distribution = distribution[:a.config.TopMonths]
	}
	patterns.MonthlyDistribution = distribution

	return patterns
}

// varianceAnalysis sums absolute variances over every discrepancy
func varianceAnalysis(results *models.ResultSet) VarianceAnalysis {
	total := models.ZeroVariance()
	largest := LargestVariance{Amount: decimal.Zero, Type: NoField}

	discrepancies := results.Discrepancies()
	for _, rec := range discrepancies {
		abs := rec.Variance.Abs()
		total = total.Add(abs)
		if abs.Amount.GreaterThan(largest.Amount) {
			largest = LargestVariance{Amount: abs.Amount, Type: rec.Type.String()}
		}
	}

	count := len(discrepancies)
	if count == 0 {
		count = 1
	}
	divisor := decimal.NewFromInt(int64(count))

	return VarianceAnalysis{
		TotalVariance: models.Variance{
			Amount: total.Amount.Round(2),
			Tax:    total.Tax.Round(2),
		},
		AverageVariance: models.Variance{
			Amount: total.Amount.Div(divisor).Round(2),
			Tax:    total.Tax.Div(divisor).Round(2),
		},
		LargestVariance: LargestVariance{Amount: largest.Amount.Round(2), Type: largest.Type},
		VarianceCount:   count,
	}
}

// FormattedSummary counts recommendations by priority
type FormattedSummary struct {
	TotalRecommendations int `json:"totalRecommendations"`
	HighPriority         int `json:"highPriority"`
	MediumPriority       int `json:"mediumPriority"`
}

// Formatted pairs recommendation counts with the full insights
type Formatted struct {
	Summary FormattedSummary `json:"summary"`
	Details *Insights        `json:"details"`
}

// FormatInsights counts recommendations by priority for display
func FormatInsights(in *Insights) Formatted {
	summary := FormattedSummary{TotalRecommendations: len(in.Recommendations)}
	for _, r := range in.Recommendations {
		switch r.Priority {
		case PriorityHigh:
			summary.HighPriority++
		case PriorityMedium:
			summary.MediumPriority++
		}
	}
	return Formatted{Summary: summary, Details: in}
}
