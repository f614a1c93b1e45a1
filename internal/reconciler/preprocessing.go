package reconciler

import (
	"strings"

	"github.com/spf13/cast"

	"dataset-reconciler/internal/matcher"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/parsers"
	"dataset-reconciler/pkg/errors"
)

// DefaultMaxIssues is the number of data quality issues kept per dataset
const DefaultMaxIssues = 20

// DataQuality lists the values of one dataset that normalization could not
// read as-is. Issues holds at most the configured number; Total counts all.
type DataQuality struct {
	Issues []*errors.ValueError `json:"issues,omitempty"`
	Total  int                  `json:"total"`
}

// HasIssues reports whether any issue was found
func (q *DataQuality) HasIssues() bool {
	return q != nil && q.Total > 0
}

// inspectRecords checks the normalized records of one dataset against their
// source rows. It never changes a record: an empty document number or party,
// an empty or unreadable date, an empty or unreadable amount, and a present
// but unreadable tax each add one issue.
func inspectRecords(dataset string, records []models.NormalizedRecord, mapping models.ColumnMapping, maxIssues int) *DataQuality {
	collector := errors.NewValueErrorCollector(maxIssues)

	for _, rec := range records {
		row := rec.RowIndex + 1

		if rec.DocNo == "" {
			collector.Add(errors.EmptyValueError(dataset, row, mapping.DocNo))
		}
		if rec.Party == "" {
			collector.Add(errors.EmptyValueError(dataset, row, mapping.Party))
		}

		switch {
		case rec.Date == "":
			collector.Add(errors.EmptyValueError(dataset, row, mapping.Date))
		default:
			if _, ok := matcher.ParseDate(rec.Date); !ok {
				collector.Add(errors.InvalidDateError(dataset, row, mapping.Date, rec.Date))
			}
		}

		amount := rawText(rec.Raw, mapping.Amount)
		switch {
		case amount == "":
			collector.Add(errors.EmptyValueError(dataset, row, mapping.Amount))
		case !parsers.IsAmount(rec.Raw[mapping.Amount]):
			collector.Add(errors.InvalidAmountError(dataset, row, mapping.Amount, amount))
		}

		if mapping.Tax != "" {
			if tax := rawText(rec.Raw, mapping.Tax); tax != "" && !parsers.IsAmount(rec.Raw[mapping.Tax]) {
				collector.Add(errors.InvalidAmountError(dataset, row, mapping.Tax, tax))
			}
		}
	}

	return &DataQuality{
		Issues: collector.GetErrors(),
		Total:  collector.Total(),
	}
}

func rawText(row models.Row, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(cast.ToString(row[column]))
}
