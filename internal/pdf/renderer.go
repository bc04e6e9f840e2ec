// Package pdf renders invoices to a single Letter page with gofpdf.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/billing"
	"invoicer/internal/domain"
)

const (
	fontFamily = "Helvetica"

	black     = 0.0
	gray      = 0.4
	lightGray = 0.5
	darkGray  = 0.3
	white     = 1.0
)

// Item is one rendered table row. Money values are formatted, never recomputed.
type Item struct {
	Description string
	Date        time.Time
	Quantity    string
	Rate        string
	Amount      string
}

// Document is everything drawn on the page.
type Document struct {
	Number    string
	IssueDate time.Time
	DueDate   time.Time
	BillTo    *domain.BillToSnapshot
	Business  *domain.BusinessSnapshot
	Items     []Item
	Subtotal  string
	Tax       string
	Total     string
	Terms     string
}

// Result holds the rendered bytes. Overflow reports that the table ran into
// the footer; the page is still produced.
type Result struct {
	Bytes    []byte
	Overflow bool
}

// Renderer draws invoice documents.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

type canvas struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func toByte(v float64) int {
	return int(v*255 + 0.5)
}

func (c *canvas) font(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *canvas) width(s string, bold bool, size float64) float64 {
	c.font(bold, size)
	return c.pdf.GetStringWidth(c.tr(s))
}

// text draws s with its baseline at layout y.
func (c *canvas) text(x, y float64, s string, bold bool, size, shade float64) {
	c.font(bold, size)
	v := toByte(shade)
	c.pdf.SetTextColor(v, v, v)
	c.pdf.Text(x, PageHeight-y, c.tr(s))
}

// rect fills a box whose bottom-left corner is at layout (x, y).
func (c *canvas) rect(x, y, w, h, shade float64) {
	v := toByte(shade)
	c.pdf.SetFillColor(v, v, v)
	c.pdf.Rect(x, PageHeight-(y+h), w, h, "F")
}

func (c *canvas) line(x1, x2, y, thickness, shade float64) {
	v := toByte(shade)
	c.pdf.SetDrawColor(v, v, v)
	c.pdf.SetLineWidth(thickness)
	c.pdf.Line(x1, PageHeight-y, x2, PageHeight-y)
}

// Render lays out doc and returns the PDF bytes.
func (r *Renderer) Render(doc Document) (*Result, error) {
	f := gofpdf.New("P", "pt", "Letter", "")
	f.SetMargins(0, 0, 0)
	f.SetAutoPageBreak(false, 0)
	f.SetCatalogSort(true)
	f.SetCreationDate(doc.IssueDate)
	f.SetModificationDate(doc.IssueDate)
	f.SetTitle("Invoice "+doc.Number, true)
	if doc.Business != nil && doc.Business.CompanyName != "" {
		f.SetAuthor(doc.Business.CompanyName, true)
	}
	f.AddPage()

	c := &canvas{pdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
	cur := &cursor{y: headerTop}

	r.drawHeader(c, cur, doc)
	r.drawBillTo(c, cur, doc)
	r.drawItems(c, cur, doc)
	lowest := r.drawTotals(c, cur, doc)
	footerTop := r.drawFooter(c, doc)

	if err := f.Error(); err != nil {
		return nil, &domain.RenderError{Op: "layout", Err: err}
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, &domain.RenderError{Op: "output", Err: err}
	}
	return &Result{
		Bytes:    buf.Bytes(),
		Overflow: lowest < footerTop,
	}, nil
}

func (r *Renderer) drawHeader(c *canvas, cur *cursor, doc Document) {
	company := "Your Company"
	if doc.Business != nil && doc.Business.CompanyName != "" {
		company = doc.Business.CompanyName
	}
	c.text(Margin, cur.y, company, true, 18, black)
	c.text(PageWidth-Margin-100, cur.y, "INVOICE", true, 26, lightGray)
	cur.down(18)

	if b := doc.Business; b != nil {
		for _, s := range []string{b.OwnerName, b.Address, cityLine(b.City, b.State, b.PostalCode), b.Country} {
			c.text(Margin, cur.y, s, false, bodySize, gray)
			cur.down(linePitch)
		}
	}
	cur.down(sectionGap)
}

func (r *Renderer) drawBillTo(c *canvas, cur *cursor, doc Document) {
	top := cur.y

	name := "Client"
	if doc.BillTo != nil && doc.BillTo.Name != "" {
		name = doc.BillTo.Name
	}
	c.text(Margin, cur.y, "BILL TO:", true, footerSize, lightGray)
	cur.down(rowPitch)
	c.text(Margin, cur.y, name, true, 11, black)
	cur.down(rowPitch)

	if bt := doc.BillTo; bt != nil {
		for _, s := range []string{bt.Address, cityLine(bt.City, bt.State, bt.PostalCode), bt.Country} {
			c.text(Margin, cur.y, s, false, bodySize, gray)
			cur.down(linePitch)
		}
	}

	labelX := PageWidth - Margin - 180
	valueX := PageWidth - Margin - 80
	details := []struct {
		label, value string
		bold         bool
	}{
		{"Invoice#", doc.Number, true},
		{"Invoice Date", billing.FormatDate(doc.IssueDate), false},
		{"Due Date", billing.FormatDate(doc.DueDate), false},
	}
	y := top
	for _, d := range details {
		c.text(labelX, y, d.label, false, bodySize, lightGray)
		c.text(valueX, y, d.value, d.bold, bodySize, black)
		y -= rowPitch
	}

	cur.down(sectionGap)
}

func (r *Renderer) drawItems(c *canvas, cur *cursor, doc Document) {
	cols := newItemColumns()

	c.rect(Margin, cur.y-4, ContentWidth, 18, 0.25)
	for _, col := range cols.all() {
		w := c.width(col.header, true, bodySize)
		c.text(col.center(w), cur.y+2, col.header, true, bodySize, white)
	}
	cur.down(rowPitch)

	measure := func(s string) float64 { return c.width(s, false, bodySize) }
	for _, it := range doc.Items {
		lines := Wrap(it.Description, cols.maxDescWidth(), measure)
		first := ""
		if len(lines) > 0 {
			first = lines[0]
		}
		c.text(cols.desc.x, cur.y, first, false, bodySize, black)

		cells := []struct {
			col  column
			text string
			bold bool
		}{
			{cols.date, billing.FormatDateShort(it.Date), false},
			{cols.qty, formatQuantity(it.Quantity), false},
			{cols.rate, billing.Fixed(billing.ParseDecimal(it.Rate)), false},
			{cols.amount, billing.Fixed(billing.ParseDecimal(it.Amount)), true},
		}
		for _, cell := range cells {
			w := c.width(cell.text, cell.bold, bodySize)
			shade := gray
			if cell.bold {
				shade = black
			}
			c.text(cell.col.center(w), cur.y, cell.text, cell.bold, bodySize, shade)
		}
		cur.down(rowPitch)

		for i := 1; i < len(lines); i++ {
			c.text(cols.desc.x, cur.y, lines[i], false, bodySize, black)
			cur.down(rowPitch)
		}

		c.line(Margin, PageWidth-Margin, cur.y+4, 0.5, 0.9)
		cur.down(8)
	}
	cur.down(15)
}

// drawTotals returns the lowest layout y it drew at.
func (r *Renderer) drawTotals(c *canvas, cur *cursor, doc Document) float64 {
	labelX := PageWidth - Margin - 180
	valueX := PageWidth - Margin - 60

	c.text(labelX, cur.y, "Subtotal", false, bodySize, lightGray)
	c.text(valueX, cur.y, billing.Fixed(billing.ParseDecimal(doc.Subtotal)), false, bodySize, black)
	cur.down(rowPitch)

	c.text(labelX, cur.y, "Tax", false, bodySize, lightGray)
	c.text(valueX, cur.y, billing.Fixed(billing.ParseDecimal(doc.Tax)), false, bodySize, black)
	cur.down(8)

	c.line(labelX, PageWidth-Margin, cur.y, 1, 0.8)
	cur.down(rowPitch)

	c.rect(labelX, cur.y-6, PageWidth-Margin-labelX, 24, 0.95)
	c.text(labelX+4, cur.y+2, "TOTAL", true, 13, black)
	c.text(valueX, cur.y+2, billing.DisplayAmount(doc.Total), true, 13, black)

	return cur.y - 6
}

// drawFooter anchors payment and terms blocks to the bottom margin and
// returns the top of the block.
func (r *Renderer) drawFooter(c *canvas, doc Document) float64 {
	var termsLines []string
	if doc.Terms != "" {
		termsLines = Wrap(doc.Terms, ContentWidth, func(s string) float64 {
			return c.width(s, false, footerSize)
		})
	}

	hasPayment := doc.Business != nil
	top := Margin + footerHeight(hasPayment, len(termsLines))
	cur := &cursor{y: top}

	if hasPayment {
		c.text(Margin, cur.y, "Payment Information", true, bodySize, darkGray)
		cur.down(linePitch)
		for _, kv := range doc.Business.PaymentInfo().Lines() {
			c.text(Margin, cur.y, kv[0]+": "+kv[1], false, footerSize, gray)
			cur.down(footerPitch)
		}
		cur.down(linePitch)
	}

	if len(termsLines) > 0 {
		c.text(Margin, cur.y, "Terms & Conditions", true, bodySize, darkGray)
		cur.down(linePitch)
		for _, l := range termsLines {
			c.text(Margin, cur.y, l, false, footerSize, gray)
			cur.down(footerPitch)
		}
	}
	return top + bodySize
}

func cityLine(city, state, postal string) string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s %s", city, state, postal))
}

func formatQuantity(q string) string {
	return billing.ParseDecimal(q).String()
}
