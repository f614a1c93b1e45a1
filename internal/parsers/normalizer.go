package parsers

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/errors"
)

var (
	amountNoise   = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")
	numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ValidateMapping checks that rows can be normalized with mapping. It reports
// the first required field, in the order docNo, party, date, amount, that is
// unmapped or whose column is absent from the first row. Tax is optional and
// never checked. An empty dataset is also rejected.
func ValidateMapping(dataset string, rows []models.Row, mapping models.ColumnMapping) error {
	if len(rows) == 0 {
		return errors.ConfigurationError(errors.CodeEmptyDataset, dataset, 0, nil)
	}

	first := rows[0]
	for _, field := range models.RequiredFields {
		column := mapping.Column(field)
		if strings.TrimSpace(column) == "" {
			return errors.ConfigurationError(errors.CodeUnmappedField, field.String(), nil, nil).
				WithContext("dataset", dataset)
		}
		if _, ok := first[column]; !ok {
			return errors.ConfigurationError(errors.CodeMissingColumn, field.String(), column, nil).
				WithContext("dataset", dataset)
		}
	}
	return nil
}

// Normalize reduces each row to a NormalizedRecord. Text fields are trimmed;
// amount and tax fall back to zero when they cannot be read as numbers. Tax
// is zero when it is not mapped. Normalize never fails.
func Normalize(rows []models.Row, mapping models.ColumnMapping) []models.NormalizedRecord {
	records := make([]models.NormalizedRecord, len(rows))
	for i, row := range rows {
		records[i] = NormalizeRow(i, row, mapping)
	}
	return records
}

// NormalizeRow normalizes a single row
func NormalizeRow(index int, row models.Row, mapping models.ColumnMapping) models.NormalizedRecord {
	rec := models.NormalizedRecord{
		DocNo:    textValue(row, mapping.DocNo),
		Party:    textValue(row, mapping.Party),
		Date:     textValue(row, mapping.Date),
		Amount:   decimal.Zero,
		Tax:      decimal.Zero,
		RowIndex: index,
		Raw:      row,
	}
	if mapping.Amount != "" {
		rec.Amount = ParseAmount(row[mapping.Amount])
	}
	if mapping.Tax != "" {
		rec.Tax = ParseAmount(row[mapping.Tax])
	}
	return rec
}

func textValue(row models.Row, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(cast.ToString(row[column]))
}

// IsAmount reports whether v reads as a number in full, without ParseAmount
// falling back to a numeric prefix or zero. Empty values are not amounts.
func IsAmount(v interface{}) bool {
	switch n := v.(type) {
	case nil:
		return false
	case decimal.Decimal:
		return true
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return true
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return false
	}
	s = amountNoise.Replace(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	_, err = decimal.NewFromString(s)
	return err == nil
}

// ParseAmount reads a numeric value. Currency symbols and thousands
// separators are ignored. When the whole value is not a number the longest
// numeric prefix is used, and anything else yields zero.
func ParseAmount(v interface{}) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return decimal.NewFromInt(cast.ToInt64(n))
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero
	}
	s = amountNoise.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero
	}

	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	if prefix := numericPrefix.FindString(s); prefix != "" {
		if d, err := decimal.NewFromString(prefix); err == nil {
			return d
		}
	}
	return decimal.Zero
}
