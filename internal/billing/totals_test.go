package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/billing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		lines    []billing.Line
		taxRate  string
		amounts  []string
		subtotal string
		tax      string
		total    string
	}{
		{
			name:     "single line with ten percent tax",
			lines:    []billing.Line{{Quantity: "3", Rate: "150"}},
			taxRate:  "10",
			amounts:  []string{"450.00"},
			subtotal: "450.00",
			tax:      "45.00",
			total:    "495.00",
		},
		{
			name:     "empty items",
			lines:    nil,
			taxRate:  "10",
			amounts:  []string{},
			subtotal: "0.00",
			tax:      "0.00",
			total:    "0.00",
		},
		{
			name:     "half cent rounds away from zero",
			lines:    []billing.Line{{Quantity: "1", Rate: "0.125"}, {Quantity: "2.5", Rate: "10.01"}},
			taxRate:  "",
			amounts:  []string{"0.13", "25.03"},
			subtotal: "25.16",
			tax:      "0.00",
			total:    "25.16",
		},
		{
			name:     "non numeric input coerces to zero",
			lines:    []billing.Line{{Quantity: "abc", Rate: "100"}, {Quantity: "2", Rate: "40"}},
			taxRate:  "NaN",
			amounts:  []string{"0.00", "80.00"},
			subtotal: "80.00",
			tax:      "0.00",
			total:    "80.00",
		},
		{
			name:     "tax is rounded on the subtotal",
			lines:    []billing.Line{{Quantity: "1", Rate: "33.33"}},
			taxRate:  "7.5",
			amounts:  []string{"33.33"},
			subtotal: "33.33",
			tax:      "2.50",
			total:    "35.83",
		},
		{
			name:     "negative values stay finite",
			lines:    []billing.Line{{Quantity: "-1", Rate: "0.125"}},
			taxRate:  "0",
			amounts:  []string{"-0.13"},
			subtotal: "-0.13",
			tax:      "0.00",
			total:    "-0.13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.Compute(tt.lines, tt.taxRate)
			assert.Equal(t, tt.amounts, got.Amounts)
			assert.Equal(t, tt.subtotal, got.Subtotal)
			assert.Equal(t, tt.tax, got.Tax)
			assert.Equal(t, tt.total, got.Total)
		})
	}
}

func TestCompute_TotalEqualsSubtotalPlusTax(t *testing.T) {
	got := billing.Compute([]billing.Line{
		{Quantity: "1.5", Rate: "99.99"},
		{Quantity: "7", Rate: "12.345"},
	}, "13")

	sum := billing.ParseDecimal(got.Subtotal).Add(billing.ParseDecimal(got.Tax))
	assert.True(t, sum.Equal(billing.ParseDecimal(got.Total)))
}

func TestSum(t *testing.T) {
	assert.Equal(t, "12.30", billing.Sum("10.10", "2.20"))
	assert.Equal(t, "0.00", billing.Sum())
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$495.00", billing.FormatUSD("495"))
	assert.Equal(t, "$1,234,567.89", billing.FormatUSD("1234567.891"))
	assert.Equal(t, "$100.00", billing.FormatUSD("100.00"))
	assert.Equal(t, "-$1,000.50", billing.FormatUSD("-1000.5"))
}

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "$ 495.00", billing.DisplayAmount("495"))
}

func TestDateFormats(t *testing.T) {
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 05, 2024", billing.FormatDate(d))
	assert.Equal(t, "03/05/24", billing.FormatDateShort(d))
	assert.Equal(t, "2024-03-05", billing.FormatDay(d))
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	got, err := billing.ParseDay("2024-06-15", loc)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, loc, got.Location())

	_, err = billing.ParseDay("15/06/2024", loc)
	assert.Error(t, err)
}

func TestApplyTax(t *testing.T) {
	tax, total := billing.ApplyTax("450.00", "10")
	assert.Equal(t, "45.00", tax)
	assert.Equal(t, "495.00", total)

	tax, total = billing.ApplyTax("99.99", "")
	assert.Equal(t, "0.00", tax)
	assert.Equal(t, "99.99", total)
}

func TestNormalizeTaxRate(t *testing.T) {
	assert.Equal(t, "8.875", billing.NormalizeTaxRate("8.875"))
	assert.Equal(t, "8.875", billing.NormalizeTaxRate("8.8754"))
	assert.Equal(t, "10.000", billing.NormalizeTaxRate("10"))
	assert.Equal(t, "0.000", billing.NormalizeTaxRate(""))

	// Tax computed from the stored rate matches a recompute from the same row.
	tax, total := billing.ApplyTax("1000.00", billing.NormalizeTaxRate("8.875"))
	assert.Equal(t, "88.75", tax)
	assert.Equal(t, "1088.75", total)
}
