package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicer/internal/domain"
	"invoicer/internal/export"
	"invoicer/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoice management endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// toItemInputs validates request items and converts them for the service.
// A nil slice stays nil so updates can leave items untouched.
func toItemInputs(items []InvoiceItemRequest) ([]service.InvoiceItemInput, error) {
	if items == nil {
		return nil, nil
	}
	verr := &domain.ValidationError{}
	inputs := make([]service.InvoiceItemInput, 0, len(items))
	for i := range items {
		it := &items[i]
		if !it.Quantity.IsPositive() {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
		if it.Rate.IsNegative() {
			verr.Add(fmt.Sprintf("items[%d].rate", i), "must not be negative")
		}
		inputs = append(inputs, service.InvoiceItemInput{
			Description:    it.Description,
			RawDescription: it.RawDescription,
			Quantity:       it.Quantity.String(),
			Rate:           it.Rate.String(),
			Date:           it.Date,
		})
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return inputs, nil
}

// parseInvoiceFilter reads client_id and status query parameters.
func parseInvoiceFilter(c *gin.Context) (domain.InvoiceFilter, error) {
	var filter domain.InvoiceFilter
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.NewValidationError("client_id", "must be a valid UUID")
		}
		filter.ClientID = &id
	}
	filter.Status = domain.InvoiceStatus(strings.ToLower(c.Query("status")))
	return filter, nil
}

// Create handles POST /api/v1/invoices
// @Summary Create an invoice
// @Description Computes item amounts and totals, assigns the next number for the client when none is given, and snapshots the client and business data.
// @Tags invoices
// @Accept json
// @Produce json
// @Param body body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} Response{data=service.InvoiceView}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		HandleError(c, err)
		return
	}
	if items == nil {
		items = []service.InvoiceItemInput{}
	}

	input := &service.CreateInvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		ClientID:      req.ClientID,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		Terms:         req.Terms,
		Items:         items,
	}
	if req.TaxRate != nil {
		input.TaxRate = req.TaxRate.String()
	}

	view, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, view)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description Newest first. status=overdue selects unpaid invoices past their due date.
// @Tags invoices
// @Produce json
// @Param client_id query string false "Client ID"
// @Param status query string false "pending, sent, paid or overdue"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} Response{data=[]service.InvoiceListItem,meta=PagMeta}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	filter.Offset, filter.Limit = parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Description Returns the invoice with its items, client and the resolved bill-to and business blocks.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=service.InvoiceView}
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Update an invoice
// @Description Omitted fields are unchanged. A present items array replaces every item and recomputes totals.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body UpdateInvoiceRequest true "Changes"
// @Success 200 {object} Response{data=service.InvoiceView}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		HandleError(c, err)
		return
	}

	input := &service.UpdateInvoiceInput{
		ID:            id,
		InvoiceNumber: req.InvoiceNumber,
		ClientID:      req.ClientID,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		Terms:         req.Terms,
		Items:         items,
	}
	if req.TaxRate != nil {
		rate := req.TaxRate.String()
		input.TaxRate = &rate
	}

	view, err := h.invoiceService.Update(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Description Removes the stored PDF when possible, then the invoice and its items.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "invoice deleted"})
}

// bindOptionalJSON binds the body into req, treating an empty body as valid.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		HandleError(c, toValidationError(err))
		return false
	}
	return true
}

// MarkPaid handles POST /api/v1/invoices/:id/paid
// @Summary Mark an invoice as paid
// @Description paid_date defaults to today in the business timezone. Marking again overwrites the date.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body PaidRequest false "Paid date"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/paid [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PaidRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.MarkPaid(c.Request.Context(), id, req.PaidDate)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// MarkTransferred handles POST /api/v1/invoices/:id/transferred
// @Summary Record the transfer date of an invoice
// @Description Sets transferred_at without touching the status.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body TransferredRequest false "Transfer date"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/transferred [post]
func (h *InvoiceHandler) MarkTransferred(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req TransferredRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.MarkTransferred(c.Request.Context(), id, req.TransferredDate)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// NextNumber handles GET /api/v1/invoices/next-number
// @Summary Suggest the next invoice number for a client
// @Tags invoices
// @Produce json
// @Param client_id query string true "Client ID"
// @Success 200 {object} Response{data=NextNumberResponse}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /invoices/next-number [get]
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		HandleError(c, domain.NewValidationError("client_id", "must be a valid UUID"))
		return
	}

	number, err := h.invoiceService.NextNumber(c.Request.Context(), clientID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, NextNumberResponse{InvoiceNumber: number})
}

// Export handles GET /api/v1/invoices/export
// @Summary Export invoices
// @Description Downloads every invoice matching the filters as CSV (UTF-8 with BOM) or XLSX.
// @Tags invoices
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param client_id query string false "Client ID"
// @Param status query string false "pending, sent, paid or overdue"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportFormatCSV))))

	var buf bytes.Buffer
	if err := h.invoiceService.Export(c.Request.Context(), filter, format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == domain.ExportFormatXLSX {
		contentType = xlsxContentType
	}
	filename := export.BuildFilename("invoices", format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
