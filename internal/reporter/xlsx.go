package reporter

import (
	"io"

	"github.com/xuri/excelize/v2"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/pkg/errors"
)

// Sheet names used by the workbook report
const (
	SheetSummary    = "Summary"
	SheetMatched    = "Matched"
	SheetPartial    = "Partial"
	SheetUnmatchedA = "Unmatched A"
	SheetUnmatchedB = "Unmatched B"
	SheetInsights   = "Insights"
)

type sheet struct {
	name string
	rows table
}

// workbookSheets lists the sheets for the configured scope, in order
func (rg *ReportGenerator) workbookSheets(result *reconciler.ReconciliationResult) []sheet {
	var sheets []sheet

	if rg.config.Scope == ScopeSummary || rg.config.Scope == ScopeComplete {
		sheets = append(sheets, sheet{SheetSummary, summaryTable(result.Summary)})
	}

	if rg.config.Scope == ScopeResults || rg.config.Scope == ScopeComplete {
		records := []struct {
			name    string
			recType models.RecordType
		}{
			{SheetMatched, models.RecordMatched},
			{SheetPartial, models.RecordPartial},
			{SheetUnmatchedA, models.RecordUnmatchedA},
			{SheetUnmatchedB, models.RecordUnmatchedB},
		}
		for _, r := range records {
			if r.recType == models.RecordMatched && !rg.config.IncludeMatched {
				continue
			}
			rows := table{rg.resultHeaders()}
			list := result.Results.ByType(r.recType)
			for i := range list {
				rows = append(rows, rg.resultRow(&list[i]))
			}
			sheets = append(sheets, sheet{r.name, rows})
		}
	}

	if rg.config.Scope == ScopeInsights || rg.config.Scope == ScopeComplete {
		sheets = append(sheets, sheet{SheetInsights, insightsTable(result.Insights)})
	}
	return sheets
}

// generateXLSXReport writes an Excel workbook with one sheet per section
func (rg *ReportGenerator) generateXLSXReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := rg.workbookSheets(result)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return errors.InternalError(errors.CodeProcessingError, "xlsx_sheet", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return errors.InternalError(errors.CodeProcessingError, "xlsx_sheet", err)
		}

		if err := writeSheetRows(f, s); err != nil {
			return errors.InternalError(errors.CodeProcessingError, "xlsx_rows", err).
				WithContext("sheet", s.name)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(writer); err != nil {
		return errors.InternalError(errors.CodeProcessingError, "xlsx_writing", err)
	}
	return nil
}

func writeSheetRows(f *excelize.File, s sheet) error {
	for i, row := range s.rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(s.name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
