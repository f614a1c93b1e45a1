package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	reconerrors "dataset-reconciler/pkg/errors"
)

// Field identifies one of the canonical record fields
type Field string

const (
	FieldDocNo  Field = "docNo"
	FieldParty  Field = "party"
	FieldDate   Field = "date"
	FieldAmount Field = "amount"
	FieldTax    Field = "tax"
)

// AllFields lists every canonical field in mapping order
var AllFields = []Field{FieldDocNo, FieldParty, FieldDate, FieldAmount, FieldTax}

// RequiredFields must be mapped before a dataset can be normalized
var RequiredFields = []Field{FieldDocNo, FieldParty, FieldDate, FieldAmount}

// ComparedFields are checked for every joined pair, in this order
var ComparedFields = []Field{FieldParty, FieldDate, FieldAmount, FieldTax}

// String returns the string representation of Field
func (f Field) String() string {
	return string(f)
}

// IsValid checks if the field is one of the canonical fields
func (f Field) IsValid() bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// Row is a raw record keyed by source column header
type Row map[string]interface{}

// ColumnMapping maps canonical fields to source column headers for one dataset.
// An empty column means the field is unmapped.
type ColumnMapping struct {
	DocNo  string `json:"docNo,omitempty" yaml:"docNo,omitempty"`
	Party  string `json:"party,omitempty" yaml:"party,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
	Amount string `json:"amount,omitempty" yaml:"amount,omitempty"`
	Tax    string `json:"tax,omitempty" yaml:"tax,omitempty"`
}

// Column returns the source column mapped to f
func (m ColumnMapping) Column(f Field) string {
	switch f {
	case FieldDocNo:
		return m.DocNo
	case FieldParty:
		return m.Party
	case FieldDate:
		return m.Date
	case FieldAmount:
		return m.Amount
	case FieldTax:
		return m.Tax
	default:
		return ""
	}
}

// Set maps f to column
func (m *ColumnMapping) Set(f Field, column string) {
	switch f {
	case FieldDocNo:
		m.DocNo = column
	case FieldParty:
		m.Party = column
	case FieldDate:
		m.Date = column
	case FieldAmount:
		m.Amount = column
	case FieldTax:
		m.Tax = column
	}
}

// Missing returns the required fields that have no column assigned
func (m ColumnMapping) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if strings.TrimSpace(m.Column(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether every required field is mapped
func (m ColumnMapping) IsComplete() bool {
	return len(m.Missing()) == 0
}

// String returns a string representation of the mapping
func (m ColumnMapping) String() string {
	parts := make([]string, 0, len(AllFields))
	for _, f := range AllFields {
		col := m.Column(f)
		if col == "" {
			col = "-"
		}
		parts = append(parts, fmt.Sprintf("%s=%s", f, col))
	}
	return "ColumnMapping{" + strings.Join(parts, ", ") + "}"
}

// NormalizedRecord is a row reduced to the canonical fields
type NormalizedRecord struct {
	DocNo    string          `json:"docNo"`
	Party    string          `json:"party"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Tax      decimal.Decimal `json:"tax"`
	RowIndex int             `json:"rowIndex"`
	Raw      Row             `json:"raw,omitempty"`
}

// ComparisonConfig holds the tolerances used when comparing joined records
type ComparisonConfig struct {
	AmountTolerancePercent float64 `json:"amountTolerancePercent" yaml:"amountTolerancePercent" mapstructure:"amount_tolerance" validate:"gte=0,lte=20"`
	DateToleranceDays      int     `json:"dateToleranceDays" yaml:"dateToleranceDays" mapstructure:"date_tolerance" validate:"gte=0,lte=30"`
}

var validate = validator.New()

// DefaultComparisonConfig returns the default tolerances: 5% on amounts, 3 days on dates
func DefaultComparisonConfig() ComparisonConfig {
	return ComparisonConfig{
		AmountTolerancePercent: 5,
		DateToleranceDays:      3,
	}
}

// Validate checks the tolerances are within their allowed ranges
func (c ComparisonConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return reconerrors.ConfigurationError(reconerrors.CodeInvalidConfig, first.Field(), first.Value(), err).
			WithSuggestion(toleranceHint(first.Field()))
	}
	return reconerrors.ConfigurationError(reconerrors.CodeInvalidConfig, "comparison", c, err)
}

func toleranceHint(field string) string {
	switch field {
	case "AmountTolerancePercent":
		return "amount tolerance must be between 0 and 20 percent"
	case "DateToleranceDays":
		return "date tolerance must be between 0 and 30 days"
	default:
		return "check the comparison settings"
	}
}

// AmountTolerance returns the amount tolerance as a decimal
func (c ComparisonConfig) AmountTolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.AmountTolerancePercent)
}

// String returns a string representation of the config
func (c ComparisonConfig) String() string {
	return fmt.Sprintf("ComparisonConfig{AmountTolerance: %s%%, DateTolerance: %d days}",
		c.AmountTolerance().String(), c.DateToleranceDays)
}

// RecordType classifies a reconciliation record
type RecordType string

const (
	RecordMatched    RecordType = "matched"
	RecordPartial    RecordType = "partial"
	RecordUnmatchedA RecordType = "unmatchedA"
	RecordUnmatchedB RecordType = "unmatchedB"
)

// String returns the string representation of RecordType
func (t RecordType) String() string {
	return string(t)
}

// IsValid checks if the record type is known
func (t RecordType) IsValid() bool {
	switch t {
	case RecordMatched, RecordPartial, RecordUnmatchedA, RecordUnmatchedB:
		return true
	}
	return false
}

// FieldDifference records a single field that fell outside tolerance.
// Only mismatches are recorded, so Match is always false.
type FieldDifference struct {
	Field          Field            `json:"field"`
	ValueA         string           `json:"valueA"`
	ValueB         string           `json:"valueB"`
	Match          bool             `json:"match"`
	DaysDifference *int             `json:"daysDifference,omitempty"`
	Variance       *decimal.Decimal `json:"variance,omitempty"`
	PercentageDiff *decimal.Decimal `json:"percentageDiff,omitempty"`
}

// Variance is the numeric gap carried by a reconciliation record
type Variance struct {
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
}

// ZeroVariance returns a variance of {0, 0}
func ZeroVariance() Variance {
	return Variance{Amount: decimal.Zero, Tax: decimal.Zero}
}

// Add returns the elementwise sum of v and other
func (v Variance) Add(other Variance) Variance {
	return Variance{Amount: v.Amount.Add(other.Amount), Tax: v.Tax.Add(other.Tax)}
}

// Abs returns the elementwise absolute value
func (v Variance) Abs() Variance {
	return Variance{Amount: v.Amount.Abs(), Tax: v.Tax.Abs()}
}

// IsZero reports whether both components are zero
func (v Variance) IsZero() bool {
	return v.Amount.IsZero() && v.Tax.IsZero()
}

// ReconciliationRecord is one classified outcome of the join.
// FileA is nil for unmatchedB, FileB is nil for unmatchedA.
type ReconciliationRecord struct {
	Type        RecordType        `json:"type"`
	DocNo       string            `json:"docNo"`
	FileA       *NormalizedRecord `json:"fileA"`
	FileB       *NormalizedRecord `json:"fileB"`
	Differences []FieldDifference `json:"differences"`
	Variance    Variance          `json:"variance"`
}

// PartyName returns the A party, else the B party, else "Unknown"
func (r *ReconciliationRecord) PartyName() string {
	if r.FileA != nil && r.FileA.Party != "" {
		return r.FileA.Party
	}
	if r.FileB != nil && r.FileB.Party != "" {
		return r.FileB.Party
	}
	return "Unknown"
}

// DateValue returns the A date, else the B date, else ""
func (r *ReconciliationRecord) DateValue() string {
	if r.FileA != nil && r.FileA.Date != "" {
		return r.FileA.Date
	}
	if r.FileB != nil {
		return r.FileB.Date
	}
	return ""
}

// DifferenceFields returns the fields listed in Differences, in order
func (r *ReconciliationRecord) DifferenceFields() []Field {
	fields := make([]Field, 0, len(r.Differences))
	for _, d := range r.Differences {
		fields = append(fields, d.Field)
	}
	return fields
}

// HasDifference reports whether f is among the recorded differences
func (r *ReconciliationRecord) HasDifference(f Field) bool {
	for _, d := range r.Differences {
		if d.Field == f {
			return true
		}
	}
	return false
}

// ResultSet holds the four ordered outcome sequences of a reconciliation run
type ResultSet struct {
	Matched    []ReconciliationRecord `json:"matched"`
	Partial    []ReconciliationRecord `json:"partial"`
	UnmatchedA []ReconciliationRecord `json:"unmatchedA"`
	UnmatchedB []ReconciliationRecord `json:"unmatchedB"`
}

// NewResultSet returns a result set with empty, non-nil sequences
func NewResultSet() *ResultSet {
	return &ResultSet{
		Matched:    []ReconciliationRecord{},
		Partial:    []ReconciliationRecord{},
		UnmatchedA: []ReconciliationRecord{},
		UnmatchedB: []ReconciliationRecord{},
	}
}

// Add appends rec to the sequence named by its type
func (rs *ResultSet) Add(rec ReconciliationRecord) {
	switch rec.Type {
	case RecordMatched:
		rs.Matched = append(rs.Matched, rec)
	case RecordPartial:
		rs.Partial = append(rs.Partial, rec)
	case RecordUnmatchedA:
		rs.UnmatchedA = append(rs.UnmatchedA, rec)
	case RecordUnmatchedB:
		rs.UnmatchedB = append(rs.UnmatchedB, rec)
	}
}

// ByType returns the sequence for t
func (rs *ResultSet) ByType(t RecordType) []ReconciliationRecord {
	switch t {
	case RecordMatched:
		return rs.Matched
	case RecordPartial:
		return rs.Partial
	case RecordUnmatchedA:
		return rs.UnmatchedA
	case RecordUnmatchedB:
		return rs.UnmatchedB
	default:
		return nil
	}
}

// Total returns the number of records across all sequences
func (rs *ResultSet) Total() int {
	return len(rs.Matched) + len(rs.Partial) + len(rs.UnmatchedA) + len(rs.UnmatchedB)
}

// UnmatchedCount returns |unmatchedA| + |unmatchedB|
func (rs *ResultSet) UnmatchedCount() int {
	return len(rs.UnmatchedA) + len(rs.UnmatchedB)
}

// Discrepancies returns partial, unmatchedA and unmatchedB records in that order
func (rs *ResultSet) Discrepancies() []ReconciliationRecord {
	out := make([]ReconciliationRecord, 0, len(rs.Partial)+rs.UnmatchedCount())
	out = append(out, rs.Partial...)
	out = append(out, rs.UnmatchedA...)
	out = append(out, rs.UnmatchedB...)
	return out
}

// All returns every record: matched, partial, unmatchedA, unmatchedB
func (rs *ResultSet) All() []ReconciliationRecord {
	out := make([]ReconciliationRecord, 0, rs.Total())
	out = append(out, rs.Matched...)
	return append(out, rs.Discrepancies()...)
}

// Summary holds the aggregate counts and variance of a result set
type Summary struct {
	TotalRecords        int             `json:"totalRecords"`
	MatchedCount        int             `json:"matchedCount"`
	PartialCount        int             `json:"partialCount"`
	UnmatchedACount     int             `json:"unmatchedACount"`
	UnmatchedBCount     int             `json:"unmatchedBCount"`
	MatchedPercentage   decimal.Decimal `json:"matchedPercentage"`
	PartialPercentage   decimal.Decimal `json:"partialPercentage"`
	UnmatchedPercentage decimal.Decimal `json:"unmatchedPercentage"`
	TotalVariance       Variance        `json:"totalVariance"`
}

// String returns a string representation of the summary
func (s Summary) String() string {
	return fmt.Sprintf("Summary{Total: %d, Matched: %d (%s%%), Partial: %d (%s%%), UnmatchedA: %d, UnmatchedB: %d, Variance: %s/%s}",
		s.TotalRecords, s.MatchedCount, s.MatchedPercentage.StringFixed(2),
		s.PartialCount, s.PartialPercentage.StringFixed(2),
		s.UnmatchedACount, s.UnmatchedBCount,
		s.TotalVariance.Amount.StringFixed(2), s.TotalVariance.Tax.StringFixed(2))
}
