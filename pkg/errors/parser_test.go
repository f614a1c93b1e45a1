package errors

import (
	"strings"
	"testing"
)

func TestValueErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *ValueError
		want string
		code ErrorCode
	}{
		{
			name: "amount",
			err:  InvalidAmountError("Payments", 4, "Total", "n/a"),
			want: "unreadable amount at Payments row 4 column 'Total' (value 'n/a')",
			code: CodeInvalidData,
		},
		{
			name: "date",
			err:  InvalidDateError("Invoices", 2, "Date", "31/31/2024"),
			want: "unreadable date at Invoices row 2 column 'Date' (value '31/31/2024')",
			code: CodeInvalidData,
		},
		{
			name: "empty",
			err:  EmptyValueError("Invoices", 7, "InvoiceNo"),
			want: "required value is empty at Invoices row 7 column 'InvoiceNo'",
			code: CodeMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Category != CategoryParse {
				t.Errorf("Category = %s, want %s", tt.err.Category, CategoryParse)
			}
			if tt.err.Context["row"] != tt.err.Location.Row {
				t.Errorf("context row = %v, want %d", tt.err.Context["row"], tt.err.Location.Row)
			}
		})
	}
}

func TestValueErrorDetailed(t *testing.T) {
	detail := InvalidAmountError("Payments", 4, "Total", "n/a").GetDetailedError()

	for _, want := range []string{
		"WARNING: unreadable amount",
		"  Row: 4",
		"  Value: 'n/a'",
		"  Expected: decimal number",
		"  Examples: 1250.50, $1,250.50, -500",
	} {
		if !strings.Contains(detail, want) {
			t.Errorf("detailed error missing %q:\n%s", want, detail)
		}
	}
}

func TestValueErrorCollector(t *testing.T) {
	c := NewValueErrorCollector(2)
	if c.HasErrors() {
		t.Fatal("new collector should be empty")
	}

	if c.Add(nil) {
		t.Error("nil error should not be kept")
	}
	for row := 1; row <= 3; row++ {
		kept := c.Add(EmptyValueError("A", row, "Party"))
		if kept != (row <= 2) {
			t.Errorf("row %d kept = %v", row, kept)
		}
	}

	if !c.HasErrors() {
		t.Error("expected errors")
	}
	if c.Total() != 3 {
		t.Errorf("Total() = %d, want 3", c.Total())
	}
	if len(c.GetErrors()) != 2 {
		t.Errorf("kept %d errors, want 2", len(c.GetErrors()))
	}

	unlimited := NewValueErrorCollector(0)
	for row := 1; row <= 5; row++ {
		unlimited.Add(EmptyValueError("A", row, "Party"))
	}
	if len(unlimited.GetErrors()) != 5 {
		t.Errorf("unlimited collector kept %d errors, want 5", len(unlimited.GetErrors()))
	}
}

func TestFormatValueErrorsForUser(t *testing.T) {
	if got := FormatValueErrorsForUser(nil, 0); got != "No data quality issues" {
		t.Errorf("empty = %q", got)
	}

	errs := []*ValueError{EmptyValueError("A", 1, "Party")}
	got := FormatValueErrorsForUser(errs, 3)
	want := "Found 3 data quality issues:\n" +
		"  required value is empty at A row 1 column 'Party'\n" +
		"  ... and 2 more"
	if got != want {
		t.Errorf("FormatValueErrorsForUser() = %q, want %q", got, want)
	}
}
