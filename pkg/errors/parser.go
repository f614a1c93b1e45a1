package errors

import (
	"fmt"
	"strings"
)

// ValueLocation identifies a single cell of a dataset
type ValueLocation struct {
	Dataset  string `json:"dataset"`
	Row      int    `json:"row"`
	Column   string `json:"column"`
	Value    string `json:"value,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// ValueError reports a cell whose value could not be read as its field
// requires. Normalization replaces such values, so a ValueError is a data
// quality warning rather than a failure of the run.
type ValueError struct {
	*ReconcilerError
	Location *ValueLocation `json:"location"`
	Examples []string       `json:"examples,omitempty"`
}

// Error implements the error interface with the cell location
func (e *ValueError) Error() string {
	parts := []string{e.Message}

	if e.Location != nil {
		location := fmt.Sprintf("at %s row %d", e.Location.Dataset, e.Location.Row)
		if e.Location.Column != "" {
			location += fmt.Sprintf(" column '%s'", e.Location.Column)
		}
		if e.Location.Value != "" {
			location += fmt.Sprintf(" (value '%s')", e.Location.Value)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// GetDetailedError returns a multi-line description of the error
func (e *ValueError) GetDetailedError() string {
	lines := []string{fmt.Sprintf("WARNING: %s", e.Message)}

	if e.Location != nil {
		lines = append(lines, fmt.Sprintf("  Dataset: %s", e.Location.Dataset))
		lines = append(lines, fmt.Sprintf("  Row: %d", e.Location.Row))
		if e.Location.Column != "" {
			lines = append(lines, fmt.Sprintf("  Column: %s", e.Location.Column))
		}
		if e.Location.Value != "" {
			lines = append(lines, fmt.Sprintf("  Value: '%s'", e.Location.Value))
		}
		if e.Location.Expected != "" {
			lines = append(lines, fmt.Sprintf("  Expected: %s", e.Location.Expected))
		}
	}

	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  Suggestion: %s", e.Suggestion))
	}
	if len(e.Examples) > 0 {
		lines = append(lines, fmt.Sprintf("  Examples: %s", strings.Join(e.Examples, ", ")))
	}

	return strings.Join(lines, "\n")
}

// NewValueError creates a value error at location
func NewValueError(code ErrorCode, location *ValueLocation, message string) *ValueError {
	base := New(CategoryParse, code, message)
	if location != nil {
		base.WithContext("dataset", location.Dataset).
			WithContext("row", location.Row).
			WithContext("column", location.Column)
	}

	return &ValueError{
		ReconcilerError: base,
		Location:        location,
	}
}

// WithExamples adds example values to help fix the error
func (e *ValueError) WithExamples(examples ...string) *ValueError {
	e.Examples = examples
	return e
}

// WithSuggestion adds a suggestion and returns the ValueError
func (e *ValueError) WithSuggestion(suggestion string) *ValueError {
	e.ReconcilerError.WithSuggestion(suggestion)
	return e
}

// InvalidAmountError reports an amount that is not a number
func InvalidAmountError(dataset string, row int, column, value string) *ValueError {
	location := &ValueLocation{
		Dataset:  dataset,
		Row:      row,
		Column:   column,
		Value:    value,
		Expected: "decimal number",
	}

	return NewValueError(CodeInvalidData, location, "unreadable amount").
		WithExamples("1250.50", "$1,250.50", "-500").
		WithSuggestion("The value was read as its leading digits or as zero")
}

// InvalidDateError reports a date that matches no known layout
func InvalidDateError(dataset string, row int, column, value string) *ValueError {
	location := &ValueLocation{
		Dataset:  dataset,
		Row:      row,
		Column:   column,
		Value:    value,
		Expected: "calendar date",
	}

	return NewValueError(CodeInvalidData, location, "unreadable date").
		WithExamples("2024-01-15", "15/01/2024", "Jan 15, 2024").
		WithSuggestion("Dates that cannot be read never match the other dataset")
}

// EmptyValueError reports an empty required value
func EmptyValueError(dataset string, row int, column string) *ValueError {
	location := &ValueLocation{
		Dataset:  dataset,
		Row:      row,
		Column:   column,
		Expected: "non-empty value",
	}

	return NewValueError(CodeMissingField, location, "required value is empty").
		WithSuggestion("Provide a value for this field")
}

// ValueErrorCollector keeps the first errors of a dataset and counts the rest
type ValueErrorCollector struct {
	errors    []*ValueError
	maxErrors int
	total     int
}

// NewValueErrorCollector creates a collector keeping at most maxErrors
// errors. A maxErrors of zero or less keeps all of them.
func NewValueErrorCollector(maxErrors int) *ValueErrorCollector {
	return &ValueErrorCollector{maxErrors: maxErrors}
}

// Add records err and reports whether it was kept
func (c *ValueErrorCollector) Add(err *ValueError) bool {
	if err == nil {
		return false
	}

	c.total++
	if c.maxErrors > 0 && len(c.errors) >= c.maxErrors {
		return false
	}
	c.errors = append(c.errors, err)
	return true
}

// HasErrors returns true if any errors have been added
func (c *ValueErrorCollector) HasErrors() bool {
	return c.total > 0
}

// GetErrors returns the kept errors
func (c *ValueErrorCollector) GetErrors() []*ValueError {
	return c.errors
}

// Total returns the number of errors added, kept or not
func (c *ValueErrorCollector) Total() int {
	return c.total
}

// FormatValueErrorsForUser formats errors for display. total is the number
// of errors found, which may exceed len(errs) when a collector dropped some.
func FormatValueErrorsForUser(errs []*ValueError, total int) string {
	if total < len(errs) {
		total = len(errs)
	}
	if total == 0 {
		return "No data quality issues"
	}

	lines := []string{fmt.Sprintf("Found %d data quality issues:", total)}
	for _, err := range errs {
		lines = append(lines, "  "+err.Error())
	}
	if hidden := total - len(errs); hidden > 0 {
		lines = append(lines, fmt.Sprintf("  ... and %d more", hidden))
	}

	return strings.Join(lines, "\n")
}
