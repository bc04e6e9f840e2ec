// Package billing computes invoice money values. All arithmetic runs on
// decimals and every output carries exactly two fraction digits.
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is the pricing input of one invoice item.
type Line struct {
	Quantity string
	Rate     string
}

// Totals is the computed money breakdown of an invoice.
type Totals struct {
	Amounts  []string
	Subtotal string
	Tax      string
	Total    string
}

// ParseDecimal parses s as a decimal. Empty or non-numeric input yields zero.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to two places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Fixed renders d with exactly two fraction digits.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// TaxRateScale is the number of fraction digits kept for a tax percentage.
const TaxRateScale = 3

// NormalizeTaxRate rounds a percentage to the stored scale. Tax must be
// computed from this value so a later recompute yields the same amount.
func NormalizeTaxRate(s string) string {
	return ParseDecimal(s).Round(TaxRateScale).StringFixed(TaxRateScale)
}

// LineAmount returns round2(quantity × rate).
func LineAmount(l Line) decimal.Decimal {
	return Round2(ParseDecimal(l.Quantity).Mul(ParseDecimal(l.Rate)))
}

// Compute derives item amounts, subtotal, tax and total. taxRate is a
// percentage; an absent or unparsable rate counts as zero.
func Compute(lines []Line, taxRate string) Totals {
	subtotal := decimal.Zero
	amounts := make([]string, len(lines))
	for i, l := range lines {
		amount := LineAmount(l)
		amounts[i] = Fixed(amount)
		subtotal = subtotal.Add(amount)
	}
	tax, total := applyTax(subtotal, taxRate)
	return Totals{
		Amounts:  amounts,
		Subtotal: Fixed(subtotal),
		Tax:      Fixed(tax),
		Total:    Fixed(total),
	}
}

// ApplyTax returns the tax on a stored subtotal and the resulting total.
func ApplyTax(subtotal, taxRate string) (tax, total string) {
	t, sum := applyTax(ParseDecimal(subtotal), taxRate)
	return Fixed(t), Fixed(sum)
}

func applyTax(subtotal decimal.Decimal, taxRate string) (decimal.Decimal, decimal.Decimal) {
	tax := Round2(subtotal.Mul(ParseDecimal(taxRate)).Div(hundred))
	return tax, subtotal.Add(tax)
}

// Sum adds two-decimal money strings.
func Sum(values ...string) string {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(ParseDecimal(v))
	}
	return Fixed(total)
}
