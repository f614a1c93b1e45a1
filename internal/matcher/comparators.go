package matcher

import (
	"strings"

	"github.com/shopspring/decimal"

	"dataset-reconciler/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CompareDocNo reports whether two document numbers are equal ignoring case
// and surrounding whitespace. The join itself uses exact key equality.
func CompareDocNo(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NormalizeParty lower-cases s and keeps only ASCII letters and digits
func NormalizeParty(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// CompareParty reports whether two party names are equal after normalization
func CompareParty(a, b string) bool {
	return NormalizeParty(a) == NormalizeParty(b)
}

// DateComparison is the outcome of comparing two date strings.
// DaysDifference is nil when either side could not be parsed.
type DateComparison struct {
	Match          bool
	DaysDifference *int
}

// CompareDate compares two date strings within toleranceDays. When either
// side cannot be parsed the trimmed strings are compared instead and the
// tolerance is ignored.
func CompareDate(a, b string, toleranceDays int) DateComparison {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	if !okA || !okB {
		return DateComparison{Match: strings.TrimSpace(a) == strings.TrimSpace(b)}
	}

	days := DaysBetween(ta, tb)
	return DateComparison{
		Match:          days <= toleranceDays,
		DaysDifference: &days,
	}
}

// AmountComparison is the outcome of comparing two amounts
type AmountComparison struct {
	Match          bool
	Variance       decimal.Decimal
	PercentageDiff decimal.Decimal
}

// CompareAmount compares two amounts under a percentage tolerance.
// Variance is b - a. The percentage is taken against the larger magnitude
// and the bound is inclusive. Two zero amounts always match.
func CompareAmount(a, b, tolerancePercent decimal.Decimal) AmountComparison {
	variance := b.Sub(a)
	base := decimal.Max(a.Abs(), b.Abs())

	if base.IsZero() {
		return AmountComparison{
			Match:          variance.IsZero(),
			Variance:       variance,
			PercentageDiff: decimal.Zero,
		}
	}

	absVariance := variance.Abs()
	return AmountComparison{
		// |variance| * 100 <= tolerance * base
		Match:          absVariance.Mul(hundred).LessThanOrEqual(tolerancePercent.Mul(base)),
		Variance:       variance,
		PercentageDiff: absVariance.Div(base).Mul(hundred),
	}
}

// CompareRecords compares the party, date, amount and tax of a joined pair
// and returns only the fields that fall outside tolerance. Tax is compared
// only when either side carries a positive tax.
func CompareRecords(a, b *models.NormalizedRecord, config models.ComparisonConfig) []models.FieldDifference {
	differences := make([]models.FieldDifference, 0)
	tolerance := config.AmountTolerance()

	if !CompareParty(a.Party, b.Party) {
		differences = append(differences, models.FieldDifference{
			Field:  models.FieldParty,
			ValueA: a.Party,
			ValueB: b.Party,
		})
	}

	if date := CompareDate(a.Date, b.Date, config.DateToleranceDays); !date.Match {
		differences = append(differences, models.FieldDifference{
			Field:          models.FieldDate,
			ValueA:         a.Date,
			ValueB:         b.Date,
			DaysDifference: date.DaysDifference,
		})
	}

	if amount := CompareAmount(a.Amount, b.Amount, tolerance); !amount.Match {
		differences = append(differences, amountDifference(models.FieldAmount, a.Amount, b.Amount, amount))
	}

	if a.Tax.IsPositive() || b.Tax.IsPositive() {
		if tax := CompareAmount(a.Tax, b.Tax, tolerance); !tax.Match {
			differences = append(differences, amountDifference(models.FieldTax, a.Tax, b.Tax, tax))
		}
	}

	return differences
}

func amountDifference(field models.Field, a, b decimal.Decimal, cmp AmountComparison) models.FieldDifference {
	variance := cmp.Variance
	pct := cmp.PercentageDiff
	return models.FieldDifference{
		Field:          field,
		ValueA:         a.String(),
		ValueB:         b.String(),
		Variance:       &variance,
		PercentageDiff: &pct,
	}
}
