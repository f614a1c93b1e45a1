// Package reporter renders reconciliation results for people and for other tools.
//
// Supported output formats:
//   - Console: Human-readable sections for terminal display
//   - JSON: Structured data format for programmatic consumption
//   - CSV: Comma-separated format for spreadsheet applications
//   - XLSX: An Excel workbook with one sheet per record category
//
// Every format can be limited to a scope:
//   - results: one row per reconciliation record
//   - summary: counts, percentages and variance totals
//   - insights: diagnostics and recommendations
//   - complete: summary, a sample of records and the top recommendations
//
// Reports only read the result; every value shown was computed by the
// reconciliation run.
//
// Example usage:
//
//	config := reporter.DefaultReportConfig()
//	config.Format = reporter.FormatCSV
//	config.Scope = reporter.ScopeResults
//
//	generator, err := reporter.NewReportGenerator(config)
//	err = generator.GenerateReport(result, os.Stdout)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dataset-reconciler/internal/insights"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/pkg/errors"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatXLSX    OutputFormat = "xlsx"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// IsBinary reports whether the format must not be written to a terminal
func (f OutputFormat) IsBinary() bool {
	return f == FormatXLSX
}

// Scope selects which part of a result is reported
type Scope string

const (
	ScopeResults  Scope = "results"
	ScopeSummary  Scope = "summary"
	ScopeInsights Scope = "insights"
	ScopeComplete Scope = "complete"
)

// IsValid checks if the scope is known
func (s Scope) IsValid() bool {
	switch s {
	case ScopeResults, ScopeSummary, ScopeInsights, ScopeComplete:
		return true
	default:
		return false
	}
}

// Limits used by the complete report and the console lists
const (
	CompleteMatchedLimit         = 10
	CompletePartialLimit         = 10
	CompleteRecommendationsLimit = 5
)

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format" mapstructure:"format"`
	Scope  Scope        `json:"scope" mapstructure:"scope"`

	// IncludeMatched lists matched records in console and results output
	IncludeMatched bool `json:"include_matched" mapstructure:"include_matched"`

	// Results table columns
	IncludeVariance bool `json:"include_variance" mapstructure:"include_variance"`
	IncludeDetails  bool `json:"include_details" mapstructure:"include_details"`

	// MaxListItems caps each console record list; 0 lists everything
	MaxListItems int `json:"max_list_items" mapstructure:"max_list_items"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter" mapstructure:"csv_delimiter"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:          FormatConsole,
		Scope:           ScopeComplete,
		IncludeMatched:  true,
		IncludeVariance: true,
		IncludeDetails:  true,
		MaxListItems:    10,
		CSVDelimiter:    ',',
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output_format", c.Format, nil).
			WithSuggestion("use one of console, json, csv, xlsx")
	}
	if !c.Scope.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "scope", c.Scope, nil).
			WithSuggestion("use one of results, summary, insights, complete")
	}
	if c.MaxListItems < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "max_list_items", c.MaxListItems,
			fmt.Errorf("max list items cannot be negative"))
	}
	return nil
}

// ReportGenerator generates reconciliation reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if config.CSVDelimiter == 0 {
		config.CSVDelimiter = ','
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport writes the configured report for result to writer
func (rg *ReportGenerator) GenerateReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	if result == nil || result.Results == nil || result.Insights == nil {
		return errors.ValidationError(errors.CodeMissingField, "result", nil, nil).
			WithSuggestion("Provide a completed reconciliation result")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	case FormatXLSX:
		return rg.generateXLSXReport(result, writer)
	default:
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output_format", rg.config.Format, nil)
	}
}

// generateJSONReport encodes the part of the result selected by the scope
func (rg *ReportGenerator) generateJSONReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	var doc interface{}
	switch rg.config.Scope {
	case ScopeResults:
		doc = result.Results
	case ScopeSummary:
		doc = result.Summary
	case ScopeInsights:
		doc = insights.FormatInsights(result.Insights)
	default:
		doc = result
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return errors.InternalError(errors.CodeProcessingError, "json_encoding", err)
	}
	return nil
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}

// RecordStatus describes a record for people: a perfect match, the fields
// that differ, or the dataset it was found in
func RecordStatus(rec *models.ReconciliationRecord) string {
	switch rec.Type {
	case models.RecordMatched:
		return "Perfect Match"
	case models.RecordPartial:
		return "Mismatch in: " + joinFields(rec.DifferenceFields())
	case models.RecordUnmatchedA:
		return "Only in File A"
	case models.RecordUnmatchedB:
		return "Only in File B"
	default:
		return "Unknown"
	}
}

// DescribeDifferences renders every difference as "field: A -> B", or None
func DescribeDifferences(rec *models.ReconciliationRecord) string {
	if len(rec.Differences) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(rec.Differences))
	for _, d := range rec.Differences {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", d.Field, d.ValueA, d.ValueB))
	}
	return strings.Join(parts, "; ")
}

func joinFields(fields []models.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}

// money formats an optional record amount with two decimals
func money(rec *models.NormalizedRecord, tax bool) string {
	if rec == nil {
		return ""
	}
	if tax {
		return rec.Tax.StringFixed(2)
	}
	return rec.Amount.StringFixed(2)
}

func party(rec *models.NormalizedRecord) string {
	if rec == nil {
		return ""
	}
	return rec.Party
}

func date(rec *models.NormalizedRecord) string {
	if rec == nil {
		return ""
	}
	return rec.Date
}
