package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/domain"
)

// fixedWidth measures every rune as 5 points.
func fixedWidth(s string) float64 {
	return float64(len([]rune(s))) * 5
}

func TestWrap(t *testing.T) {
	text := "Design and implementation of the billing service including reporting dashboards"
	lines := Wrap(text, 100, fixedWidth)

	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		if strings.Contains(l, " ") {
			assert.LessOrEqual(t, fixedWidth(l), 100.0, "line %q too wide", l)
		}
	}
	assert.Equal(t, text, strings.Join(lines, " "))
}

func TestWrap_LongWordKeepsOwnLine(t *testing.T) {
	lines := Wrap("a supercalifragilisticexpialidocious b", 50, fixedWidth)

	assert.Equal(t, []string{"a", "supercalifragilisticexpialidocious", "b"}, lines)
}

func TestWrap_Empty(t *testing.T) {
	assert.Empty(t, Wrap("", 100, fixedWidth))
}

func TestWrap_RealFontWidths(t *testing.T) {
	r := NewRenderer()
	doc := sampleDocument(1)
	doc.Items[0].Description = strings.Repeat("consulting hours for platform migration ", 6)
	res, err := r.Render(doc)
	require.NoError(t, err)
	assert.False(t, res.Overflow)
}

func TestColumns(t *testing.T) {
	cols := newItemColumns()

	assert.Equal(t, Margin, cols.desc.x)
	assert.Equal(t, PageWidth-Margin-240, cols.date.x)
	assert.Equal(t, PageWidth-Margin-44, cols.amount.x)
	assert.Equal(t, cols.date.x-cols.desc.x-10, cols.maxDescWidth())

	total := 0.0
	for _, c := range cols.all() {
		total += c.width
	}
	assert.InDelta(t, ContentWidth, total, 0.001)
	assert.InDelta(t, cols.qty.x+5, cols.qty.center(cols.qty.width-10), 0.001)
}

func TestFooterHeight(t *testing.T) {
	assert.Equal(t, 9*11.0+24, footerHeight(true, 0))
	assert.Equal(t, 14+3*11.0+24, footerHeight(false, 3))
	assert.Equal(t, 24.0, footerHeight(false, 0))
}

func sampleDocument(items int) Document {
	issue := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{
		Number:    "42",
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 30),
		BillTo: &domain.BillToSnapshot{
			Name:    "Acme Corp",
			Address: "1 Main St",
			City:    "Springfield",
			State:   "IL",
			Country: "USA",
		},
		Business: &domain.BusinessSnapshot{
			CompanyName:     "Snapshot Co",
			OwnerName:       "Jane Doe",
			BeneficiaryName: "Jane Doe",
			SwiftCode:       "ABCDUS33",
		},
		Subtotal: "450.00",
		Tax:      "45.00",
		Total:    "495.00",
		Terms:    "Payment due within 30 days.",
	}
	for i := 0; i < items; i++ {
		doc.Items = append(doc.Items, Item{
			Description: "Consulting",
			Date:        issue,
			Quantity:    "3.00",
			Rate:        "150",
			Amount:      "450",
		})
	}
	return doc
}

func TestRender_ProducesPDF(t *testing.T) {
	res, err := NewRenderer().Render(sampleDocument(2))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Bytes, []byte("%PDF-")))
	assert.False(t, res.Overflow)
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer()
	a, err := r.Render(sampleDocument(3))
	require.NoError(t, err)
	b, err := r.Render(sampleDocument(3))
	require.NoError(t, err)

	assert.Equal(t, a.Bytes, b.Bytes)
}

func TestRender_InfoDatesFollowIssueDate(t *testing.T) {
	res, err := NewRenderer().Render(sampleDocument(1))
	require.NoError(t, err)

	out := string(res.Bytes)
	assert.Contains(t, out, "/CreationDate (D:20240501000000)")
	assert.Contains(t, out, "/ModDate (D:20240501000000)")
}

func TestRender_OverflowFlagged(t *testing.T) {
	res, err := NewRenderer().Render(sampleDocument(30))

	require.NoError(t, err)
	assert.True(t, res.Overflow)
	assert.NotEmpty(t, res.Bytes)
}

func TestRender_WithoutBusinessOrClient(t *testing.T) {
	doc := sampleDocument(1)
	doc.Business = nil
	doc.BillTo = nil
	doc.Terms = ""

	res, err := NewRenderer().Render(doc)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Bytes, []byte("%PDF-")))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "3", formatQuantity("3.00"))
	assert.Equal(t, "2.5", formatQuantity("2.50"))
	assert.Equal(t, "0", formatQuantity(""))
}
