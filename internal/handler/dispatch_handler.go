package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicer/internal/service"
)

// DispatchHandler handles invoice delivery endpoints: sending, previews, PDFs
// and Drive archival. The function-style paths (/send-invoice, /email-preview,
// /save-to-drive) answer with the bare result object or a flat LegacyError;
// /api/v1 paths use the standard envelope.
type DispatchHandler struct {
	dispatchService service.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(dispatchService service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

func (h *DispatchHandler) send(c *gin.Context, fail func(*gin.Context, error)) (*service.SendResult, bool) {
	var req SendInvoiceRequest
	if !bindJSONWith(c, &req, fail) {
		return nil, false
	}

	input := &service.SendInput{
		InvoiceID:         req.InvoiceID,
		To:                req.To,
		Body:              req.Body,
		UseTemplate:       req.UseTemplate,
		SaveToGoogleDrive: req.SaveToGoogleDrive,
	}
	if req.Subject != nil {
		input.Subject = *req.Subject
	}

	result, err := h.dispatchService.Send(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return result, true
}

// Send handles POST /api/v1/invoices/send
// @Summary Send an invoice by email
// @Description Resolves the PDF (stored or freshly rendered), merges the template or freeform body, sends the email and marks the invoice sent. Notes/terms backfill and Drive archival are reported in auxiliary and never fail the call.
// @Tags dispatch
// @Accept json
// @Produce json
// @Param body body SendInvoiceRequest true "Send request"
// @Success 200 {object} Response{data=service.SendResult}
// @Failure 400 {object} ErrorResponseBody "Validation error or missing recipient"
// @Failure 404 {object} ErrorResponseBody "Invoice or template not found"
// @Failure 502 {object} ErrorResponseBody "Mail transport failed"
// @Security BearerAuth
// @Router /invoices/send [post]
func (h *DispatchHandler) Send(c *gin.Context) {
	result, ok := h.send(c, HandleError)
	if !ok {
		return
	}
	RespondOK(c, result)
}

// SendInvoice handles POST /send-invoice
// @Summary Send an invoice by email (function path)
// @Tags dispatch
// @Accept json
// @Produce json
// @Param body body SendInvoiceRequest true "Send request"
// @Success 200 {object} service.SendResult
// @Failure 400 {object} LegacyError "Validation error or missing recipient"
// @Failure 502 {object} LegacyError "Mail transport failed"
// @Security BearerAuth
// @Router /send-invoice [post]
func (h *DispatchHandler) SendInvoice(c *gin.Context) {
	result, ok := h.send(c, HandleLegacyError)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// EmailPreview handles POST /email-preview
// @Summary Preview the templated invoice email
// @Tags dispatch
// @Accept json
// @Produce json
// @Param body body InvoiceRefRequest true "Invoice"
// @Success 200 {object} service.PreviewResult
// @Failure 404 {object} LegacyError "Invoice or template not found"
// @Security BearerAuth
// @Router /email-preview [post]
func (h *DispatchHandler) EmailPreview(c *gin.Context) {
	var req InvoiceRefRequest
	if !bindLegacyJSON(c, &req) {
		return
	}

	preview, err := h.dispatchService.Preview(c.Request.Context(), req.InvoiceID)
	if err != nil {
		HandleLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Preview handles GET /api/v1/invoices/:id/preview
// @Summary Preview the templated invoice email
// @Tags dispatch
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=service.PreviewResult}
// @Failure 404 {object} ErrorResponseBody "Invoice or template not found"
// @Security BearerAuth
// @Router /invoices/{id}/preview [get]
func (h *DispatchHandler) Preview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	preview, err := h.dispatchService.Preview(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, preview)
}

// SaveToDrive handles POST /save-to-drive
// @Summary Archive the stored invoice PDF to the client's Drive folder
// @Tags dispatch
// @Accept json
// @Produce json
// @Param body body InvoiceRefRequest true "Invoice"
// @Success 200 {object} service.DriveResult
// @Failure 400 {object} LegacyError "No folder configured or PDF not generated"
// @Failure 500 {object} LegacyError "Drive credentials not configured"
// @Failure 502 {object} LegacyError "Drive upload failed"
// @Security BearerAuth
// @Router /save-to-drive [post]
func (h *DispatchHandler) SaveToDrive(c *gin.Context) {
	var req InvoiceRefRequest
	if !bindLegacyJSON(c, &req) {
		return
	}

	result, err := h.dispatchService.SaveToDrive(c.Request.Context(), req.InvoiceID)
	if err != nil {
		HandleLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GeneratePDF handles POST /api/v1/invoices/:id/pdf
// @Summary Render and store the invoice PDF
// @Description Regenerates the PDF from the invoice snapshot and overwrites the stored copy.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=service.PDFResult}
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 500 {object} ErrorResponseBody "Render failed"
// @Security BearerAuth
// @Router /invoices/{id}/pdf [post]
func (h *DispatchHandler) GeneratePDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.dispatchService.GeneratePDF(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// DownloadPDF handles GET /api/v1/invoices/:id/pdf
// @Summary Download the invoice PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *DispatchHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, err := h.dispatchService.DownloadPDF(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.FileName))
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

// PDFURL handles GET /api/v1/invoices/:id/pdf-url
// @Summary Get a short-lived link to the stored PDF
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=service.SignedURL}
// @Failure 400 {object} ErrorResponseBody "PDF not generated"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/pdf-url [get]
func (h *DispatchHandler) PDFURL(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	signed, err := h.dispatchService.PDFURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, signed)
}
