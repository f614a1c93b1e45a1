package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-reconciler/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompareDocNo(t *testing.T) {
	assert.True(t, CompareDocNo(" inv001 ", "INV001"))
	assert.False(t, CompareDocNo("INV001", "INV0001"))
}

func TestNormalizeParty(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"GLOBAL TECH", "globaltech"},
		{"  Acme Corp. ", "acmecorp"},
		{"O'Brien & Sons, Ltd", "obriensonsltd"},
		{"Café 42", "caf42"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeParty(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeParty(got), "normalization is idempotent")
		})
	}
}

func TestCompareParty(t *testing.T) {
	assert.True(t, CompareParty("GLOBAL TECH", "Global Tech"))
	assert.True(t, CompareParty("Acme-Corp", "acme corp"))
	assert.False(t, CompareParty("Global Tech", "Global Technologies"))
}

func TestCompareDate(t *testing.T) {
	tests := []struct {
		name      string
		a, b      string
		tolerance int
		wantMatch bool
		wantDays  *int
	}{
		{"same day", "2024-01-15", "2024-01-15", 0, true, intPtr(0)},
		{"within tolerance", "2024-01-15", "2024-01-18", 3, true, intPtr(3)},
		{"outside tolerance", "2024-01-15", "2024-01-19", 3, false, intPtr(4)},
		{"order does not matter", "2024-01-19", "2024-01-15", 3, false, intPtr(4)},
		{"mixed formats", "2024-01-15", "15/01/2024", 0, true, intPtr(0)},
		{"partial day truncates", "2024-01-15T00:00:00Z", "2024-01-16T23:00:00Z", 1, true, intPtr(1)},
		{"unparsable trimmed", " pending", "pending ", 0, true, nil},
		{"unparsable different", "pending", "PENDING", 30, false, nil},
		{"one side empty", "", "2024-01-15", 30, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareDate(tt.a, tt.b, tt.tolerance)
			assert.Equal(t, tt.wantMatch, got.Match)
			if tt.wantDays == nil {
				assert.Nil(t, got.DaysDifference)
			} else {
				require.NotNil(t, got.DaysDifference)
				assert.Equal(t, *tt.wantDays, *got.DaysDifference)
			}
		})
	}
}

func TestCompareDate_UnparsableIgnoresTolerance(t *testing.T) {
	for _, tolerance := range []int{0, 3, 30} {
		assert.True(t, CompareDate("Q1-2024", "Q1-2024", tolerance).Match)
	}
}

func TestCompareAmount(t *testing.T) {
	tests := []struct {
		name         string
		a, b         string
		tolerance    string
		wantMatch    bool
		wantVariance string
	}{
		{"scenario A within tolerance", "980", "1020", "5", true, "40"},
		{"scenario B outside tolerance", "1200", "1450", "5", false, "250"},
		{"negative variance", "1450", "1200", "5", false, "-250"},
		{"exactly at tolerance", "95", "100", "5", true, "5"},
		{"just above tolerance", "94.99", "100", "5", false, "5.01"},
		{"zero tolerance equal", "100", "100", "0", true, "0"},
		{"zero tolerance differ", "100", "100.01", "0", false, "0.01"},
		{"both zero", "0", "0", "0", true, "0"},
		{"zero against value", "0", "10", "20", false, "10"},
		{"negative amounts", "-100", "-98", "5", true, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareAmount(d(tt.a), d(tt.b), d(tt.tolerance))
			assert.Equal(t, tt.wantMatch, got.Match)
			assert.True(t, got.Variance.Equal(d(tt.wantVariance)), "variance %s", got.Variance)
		})
	}
}

func TestCompareAmount_Percentage(t *testing.T) {
	got := CompareAmount(d("1200"), d("1450"), d("5"))
	assert.Equal(t, "17.24", got.PercentageDiff.Round(2).String())

	got = CompareAmount(d("980"), d("1020"), d("5"))
	assert.Equal(t, "3.92", got.PercentageDiff.Round(2).String())

	got = CompareAmount(d("0"), d("0"), d("5"))
	assert.True(t, got.PercentageDiff.IsZero())
}

func TestCompareRecords(t *testing.T) {
	config := models.DefaultComparisonConfig()
	base := models.NormalizedRecord{
		DocNo: "INV001", Party: "Acme Corp", Date: "2024-01-15", Amount: d("1000"), Tax: d("180"),
	}

	t.Run("all within tolerance", func(t *testing.T) {
		other := base
		other.Party = "ACME CORP"
		other.Date = "2024-01-17"
		other.Amount = d("1020")
		assert.Empty(t, CompareRecords(&base, &other, config))
	})

	t.Run("every field differs in fixed order", func(t *testing.T) {
		other := models.NormalizedRecord{
			DocNo: "INV001", Party: "Beta Ltd", Date: "2024-02-15", Amount: d("1500"), Tax: d("270"),
		}
		diffs := CompareRecords(&base, &other, config)
		require.Len(t, diffs, 4)

		var fields []models.Field
		for _, diff := range diffs {
			fields = append(fields, diff.Field)
			assert.False(t, diff.Match)
		}
		assert.Equal(t, models.ComparedFields, fields)

		require.NotNil(t, diffs[1].DaysDifference)
		assert.Equal(t, 31, *diffs[1].DaysDifference)
		require.NotNil(t, diffs[2].Variance)
		assert.Equal(t, "500", diffs[2].Variance.String())
		assert.Equal(t, "1000", diffs[2].ValueA)
		assert.Equal(t, "1500", diffs[2].ValueB)
	})

	t.Run("tax skipped when both zero", func(t *testing.T) {
		a := base
		a.Tax = decimal.Zero
		b := a
		assert.Empty(t, CompareRecords(&a, &b, config))
	})

	t.Run("tax compared when one side positive", func(t *testing.T) {
		a := base
		a.Tax = decimal.Zero
		diffs := CompareRecords(&a, &base, config)
		require.Len(t, diffs, 1)
		assert.Equal(t, models.FieldTax, diffs[0].Field)
		assert.Equal(t, "180", diffs[0].Variance.String())
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-01-15", date(2024, 1, 15), true},
		{" 2024-01-15 ", date(2024, 1, 15), true},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"   ", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParsePositional(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"15/01/2024", date(2024, 1, 15), true},
		{"03/04/2024", date(2024, 4, 3), true},
		{"01/25/2024", date(2024, 1, 25), true},
		{"15-01-2024", date(2024, 1, 15), true},
		{"2024/01/15", date(2024, 1, 15), true},
		{"31/02/2024", time.Time{}, false},
		{"13/13/2024", time.Time{}, false},
		{"2024/01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parsePositional(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2024, 1, 1), date(2024, 1, 1)))
	assert.Equal(t, 31, DaysBetween(date(2024, 2, 1), date(2024, 1, 1)))
	assert.Equal(t, 366, DaysBetween(date(2024, 1, 1), date(2025, 1, 1)))
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}
