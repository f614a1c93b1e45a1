// Package sample provides a demonstration pair of datasets: vendor invoices
// and the matching payment records, with every kind of outcome represented.
package sample

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/pkg/errors"
)

// Dataset names used for the demonstration pair
const (
	InvoicesName = "Vendor Invoices"
	PaymentsName = "Payment Records"
)

var (
	// InvoiceMapping maps the invoice columns
	InvoiceMapping = models.ColumnMapping{
		DocNo:  "InvoiceNo",
		Party:  "VendorName",
		Date:   "Date",
		Amount: "Amount",
		Tax:    "Tax",
	}

	// PaymentMapping maps the payment columns
	PaymentMapping = models.ColumnMapping{
		DocNo:  "DocumentNo",
		Party:  "Supplier",
		Date:   "TransactionDate",
		Amount: "Total",
		Tax:    "VAT",
	}

	invoiceHeaders = []string{"InvoiceNo", "VendorName", "Date", "Amount", "Tax"}
	paymentHeaders = []string{"DocumentNo", "Supplier", "TransactionDate", "Total", "VAT"}
)

// Invoices returns a copy of the invoice rows
func Invoices() []models.Row {
	return copyRows(invoiceRows)
}

// Payments returns a copy of the payment rows
func Payments() []models.Row {
	return copyRows(paymentRows)
}

// Request builds a reconciliation request for the demonstration pair
func Request() *reconciler.ReconciliationRequest {
	return &reconciler.ReconciliationRequest{
		A: reconciler.DatasetInput{Name: InvoicesName, Rows: Invoices(), Mapping: InvoiceMapping},
		B: reconciler.DatasetInput{Name: PaymentsName, Rows: Payments(), Mapping: PaymentMapping},
	}
}

// WriteCSV writes invoices.csv and payments.csv into dir and returns their paths
func WriteCSV(dir string) (string, string, error) {
	return writePair(dir, invoiceRows, paymentRows)
}

func writePair(dir string, invoices, payments []models.Row) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", errors.FileError(errors.CodeFilePermission, dir, err)
	}

	invoicesPath := filepath.Join(dir, "invoices.csv")
	if err := writeRows(invoicesPath, invoiceHeaders, invoices); err != nil {
		return "", "", err
	}

	paymentsPath := filepath.Join(dir, "payments.csv")
	if err := writeRows(paymentsPath, paymentHeaders, payments); err != nil {
		return "", "", err
	}

	return invoicesPath, paymentsPath, nil
}

func writeRows(path string, headers []string, rows []models.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, headers)
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i], _ = row[h].(string)
		}
		records = append(records, record)
	}

	if err := writer.WriteAll(records); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	return nil
}

func copyRows(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		clone := make(models.Row, len(row))
		for k, v := range row {
			clone[k] = v
		}
		out[i] = clone
	}
	return out
}
