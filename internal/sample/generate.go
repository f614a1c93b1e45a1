package sample

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/pkg/errors"
)

// MaxGeneratedRecords bounds the size of a generated dataset
const MaxGeneratedRecords = 1000000

var vendors = []string{
	"Acme Corp", "TechSupplies Inc", "Office Solutions", "Global Logistics",
	"DataCom Systems", "Print Masters", "Cloud Services Ltd", "Marketing Plus",
	"Consulting Group", "Equipment Rental", "Software Solutions", "Premier Services",
	"Metro Supplies", "Regional Corp", "City Services", "Northwind Traders",
}

var taxRate = decimal.NewFromFloat(0.18)

// GenerateOptions controls a generated pair of datasets
type GenerateOptions struct {
	// Records is the number of invoices
	Records int   `json:"records"`
	Seed    int64 `json:"seed"`

	// PartialRate is the share of invoices whose payment differs in one field
	PartialRate float64 `json:"partialRate"`

	// OnlyARate is the share of invoices without a payment
	OnlyARate float64 `json:"onlyARate"`

	// OnlyBRate sets the number of payments without an invoice, relative to Records
	OnlyBRate float64 `json:"onlyBRate"`

	Start time.Time `json:"start"`
}

// DefaultGenerateOptions returns options for 1000 invoices
func DefaultGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		Records:     1000,
		Seed:        1,
		PartialRate: 0.10,
		OnlyARate:   0.05,
		OnlyBRate:   0.05,
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Validate validates the options
func (o *GenerateOptions) Validate() error {
	if o.Records < 1 || o.Records > MaxGeneratedRecords {
		return errors.ValidationError(errors.CodeOutOfRange, "records", o.Records, nil).
			WithSuggestion(fmt.Sprintf("Generate between 1 and %d records", MaxGeneratedRecords))
	}
	rates := []struct {
		name  string
		value float64
	}{
		{"partial_rate", o.PartialRate},
		{"only_a_rate", o.OnlyARate},
		{"only_b_rate", o.OnlyBRate},
	}
	for _, rate := range rates {
		if rate.value < 0 || rate.value > 1 {
			return errors.ValidationError(errors.CodeOutOfRange, rate.name, rate.value, nil).
				WithSuggestion("Rates are fractions between 0 and 1")
		}
	}
	if o.PartialRate+o.OnlyARate > 1 {
		return errors.ValidationError(errors.CodeOutOfRange, "partial_rate", o.PartialRate, nil).
			WithSuggestion("partial_rate and only_a_rate together cannot exceed 1")
	}
	return nil
}

// ExpectedCounts are the outcome counts a generated pair reconciles to
// under the default comparison tolerances
type ExpectedCounts struct {
	Matched    int `json:"matched"`
	Partial    int `json:"partial"`
	UnmatchedA int `json:"unmatchedA"`
	UnmatchedB int `json:"unmatchedB"`
}

// Total returns the number of reconciliation records
func (c ExpectedCounts) Total() int {
	return c.Matched + c.Partial + c.UnmatchedA + c.UnmatchedB
}

// Generated is a generated pair of invoice and payment datasets, using the
// column layout of the demonstration pair
type Generated struct {
	Invoices []models.Row
	Payments []models.Row
	Expected ExpectedCounts
}

// Generate builds a random dataset pair. The same options always produce
// the same rows.
//
// Matched payments repeat their invoice with an upper-cased party, a
// currency formatted amount and a date up to one day later. Partial payments
// change exactly one of amount, date or party by more than any preset allows.
func Generate(opts *GenerateOptions) (*Generated, error) {
	if opts == nil {
		opts = DefaultGenerateOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(opts.Seed))
	g := &Generated{
		Invoices: make([]models.Row, 0, opts.Records),
		Payments: make([]models.Row, 0, opts.Records),
	}

	for i := 0; i < opts.Records; i++ {
		docNo := fmt.Sprintf("INV%06d", i+1)
		vendor := r.Intn(len(vendors))
		date := opts.Start.AddDate(0, 0, r.Intn(365))
		amount := decimal.New(int64(r.Intn(999900)+100), -2)
		tax := amount.Mul(taxRate).Round(2)

		g.Invoices = append(g.Invoices, models.Row{
			"InvoiceNo":  docNo,
			"VendorName": vendors[vendor],
			"Date":       date.Format("2006-01-02"),
			"Amount":     amount.StringFixed(2),
			"Tax":        tax.StringFixed(2),
		})

		roll := r.Float64()
		switch {
		case roll < opts.OnlyARate:
			g.Expected.UnmatchedA++
			continue

		case roll < opts.OnlyARate+opts.PartialRate:
			party := vendors[vendor]
			switch r.Intn(3) {
			case 0:
				amount = amount.Mul(decimal.NewFromFloat(1.5))
			case 1:
				date = date.AddDate(0, 0, 45)
			default:
				party = vendors[(vendor+1+r.Intn(len(vendors)-1))%len(vendors)]
			}
			g.Payments = append(g.Payments, payment(docNo, party, date, amount, tax))
			g.Expected.Partial++

		default:
			date = date.AddDate(0, 0, r.Intn(2))
			g.Payments = append(g.Payments, payment(docNo, strings.ToUpper(vendors[vendor]), date, amount, tax))
			g.Expected.Matched++
		}
	}

	onlyB := int(opts.OnlyBRate*float64(opts.Records) + 0.5)
	for i := 0; i < onlyB; i++ {
		amount := decimal.New(int64(r.Intn(99900)+100), -2)
		date := opts.Start.AddDate(0, 0, r.Intn(365))
		g.Payments = append(g.Payments,
			payment(fmt.Sprintf("PAY%06d", i+1), vendors[r.Intn(len(vendors))], date, amount, decimal.Zero))
	}
	g.Expected.UnmatchedB = onlyB

	r.Shuffle(len(g.Payments), func(i, j int) {
		g.Payments[i], g.Payments[j] = g.Payments[j], g.Payments[i]
	})

	return g, nil
}

func payment(docNo, party string, date time.Time, amount, tax decimal.Decimal) models.Row {
	return models.Row{
		"DocumentNo":      docNo,
		"Supplier":        party,
		"TransactionDate": date.Format("2006-01-02"),
		"Total":           "$" + amount.StringFixed(2),
		"VAT":             tax.StringFixed(2),
	}
}

// Request builds a reconciliation request for the generated pair
func (g *Generated) Request() *reconciler.ReconciliationRequest {
	return &reconciler.ReconciliationRequest{
		A: reconciler.DatasetInput{Name: InvoicesName, Rows: g.Invoices, Mapping: InvoiceMapping},
		B: reconciler.DatasetInput{Name: PaymentsName, Rows: g.Payments, Mapping: PaymentMapping},
	}
}

// WriteCSV writes invoices.csv and payments.csv into dir and returns their paths
func (g *Generated) WriteCSV(dir string) (string, string, error) {
	return writePair(dir, g.Invoices, g.Payments)
}
