package parsers

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/errors"
)

// DefaultPreviewRows is the number of rows shown by PreviewRows when n <= 0
const DefaultPreviewRows = 5

// headerPatterns lists, per field, the header fragments tried in order
var headerPatterns = map[models.Field][]string{
	models.FieldDocNo: {
		"docno", "doc_no", "document", "invoice", "invoiceno", "invoice_no",
		"invoice number", "reference", "ref", "transaction_id", "id",
	},
	models.FieldParty: {
		"party", "vendor", "customer", "supplier", "company", "name",
		"vendorname", "vendor_name", "customername", "customer_name",
	},
	models.FieldDate: {
		"date", "transaction_date", "invoice_date", "invoicedate", "created", "timestamp",
	},
	models.FieldAmount: {
		"amount", "total", "value", "price", "sum",
		"net_amount", "netamount", "gross_amount", "grossamount",
	},
	models.FieldTax: {
		"tax", "vat", "gst", "tax_amount", "taxamount", "vat_amount", "vatamount",
	},
}

// DetectColumnMapping guesses a mapping from header names. For each field the
// patterns are tried in order; the first header that contains the pattern, or
// is contained in it, wins. Matching is case-insensitive. Fields with no
// matching header are left unmapped.
func DetectColumnMapping(headers []string) models.ColumnMapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(h)
	}

	var mapping models.ColumnMapping
	for _, field := range models.AllFields {
		mapping.Set(field, findMatchingHeader(lower, headers, headerPatterns[field]))
	}
	return mapping
}

func findMatchingHeader(lower, headers []string, patterns []string) string {
	for _, pattern := range patterns {
		for i, h := range lower {
			if h == "" {
				continue
			}
			if strings.Contains(h, pattern) || strings.Contains(pattern, h) {
				return headers[i]
			}
		}
	}
	return ""
}

// LoadMappingFile reads a YAML column mapping
func LoadMappingFile(path string) (models.ColumnMapping, error) {
	var mapping models.ColumnMapping

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return mapping, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return mapping, errors.FileError(errors.CodeFilePermission, path, err)
	}

	return ParseMapping(data, path)
}

// ParseMapping decodes a YAML column mapping. Unknown keys are rejected.
func ParseMapping(data []byte, name string) (models.ColumnMapping, error) {
	var mapping models.ColumnMapping
	if len(bytes.TrimSpace(data)) == 0 {
		return mapping, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&mapping); err != nil && err != io.EOF {
		return mapping, errors.ParseError(errors.CodeInvalidFormat, name, 0, err).
			WithSuggestion("use keys docNo, party, date, amount and tax")
	}

	for _, f := range models.AllFields {
		mapping.Set(f, strings.TrimSpace(mapping.Column(f)))
	}
	return mapping, nil
}

// WriteMapping encodes mapping as YAML
func WriteMapping(w io.Writer, mapping models.ColumnMapping) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "encoding mapping", err)
	}
	return enc.Close()
}

// PreviewRows returns the first n rows, or DefaultPreviewRows when n <= 0
func PreviewRows(rows []models.Row, n int) []models.Row {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}
