package reporter

import (
	"encoding/csv"
	"io"

	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/pkg/errors"
)

// generateCSVReport writes the scope table as CSV
func (rg *ReportGenerator) generateCSVReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if err := csvWriter.WriteAll(rg.scopeTable(result)); err != nil {
		return errors.InternalError(errors.CodeProcessingError, "csv_writing", err)
	}
	return nil
}
