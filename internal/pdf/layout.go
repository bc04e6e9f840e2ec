package pdf

import "strings"

// Letter page in points. Layout coordinates grow upward from the bottom-left
// corner; the canvas converts them when drawing.
const (
	PageWidth    = 612.0
	PageHeight   = 792.0
	Margin       = 60.0
	ContentWidth = PageWidth - 2*Margin

	headerTop   = PageHeight - Margin
	rowPitch    = 14.0
	linePitch   = 12.0
	footerPitch = 11.0
	sectionGap  = 30.0
	bodySize    = 10.0
	footerSize  = 9.0
)

// cursor tracks the current baseline while laying out top to bottom.
type cursor struct {
	y float64
}

func (c *cursor) down(d float64) {
	c.y -= d
}

// column is one slice of the items table.
type column struct {
	header string
	x      float64
	width  float64
}

// center returns the x at which text of width w is centered in the column.
func (c column) center(w float64) float64 {
	return c.x + (c.width-w)/2
}

// itemColumns holds the fixed table boundaries, measured from the right margin.
type itemColumns struct {
	desc, date, qty, rate, amount column
}

func newItemColumns() itemColumns {
	right := PageWidth - Margin
	descX := Margin
	dateX := right - 240
	qtyX := right - 180
	rateX := right - 110
	amountX := right - 44
	return itemColumns{
		desc:   column{header: "Item Description", x: descX, width: dateX - descX},
		date:   column{header: "Date", x: dateX, width: qtyX - dateX},
		qty:    column{header: "Qty", x: qtyX, width: rateX - qtyX},
		rate:   column{header: "Rate", x: rateX, width: amountX - rateX},
		amount: column{header: "Amount", x: amountX, width: right - amountX},
	}
}

func (ic itemColumns) all() []column {
	return []column{ic.desc, ic.date, ic.qty, ic.rate, ic.amount}
}

// maxDescWidth is the wrap width of the description column.
func (ic itemColumns) maxDescWidth() float64 {
	return ic.date.x - ic.desc.x - 10
}

// Wrap splits text greedily on spaces so that every line measures at most
// width. A single word wider than width occupies its own line.
func Wrap(text string, width float64, measure func(string) float64) []string {
	words := strings.Split(text, " ")
	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && measure(candidate) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// footerHeight estimates the space the payment and terms blocks need.
func footerHeight(hasPayment bool, termsLines int) float64 {
	paymentLines := 0
	if hasPayment {
		paymentLines = 9
	}
	termsHeader := 0.0
	if termsLines > 0 {
		termsHeader = 14
	}
	return float64(paymentLines)*footerPitch + termsHeader + float64(termsLines)*footerPitch + 24
}
