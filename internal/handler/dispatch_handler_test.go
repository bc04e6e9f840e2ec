package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicer/internal/domain"
	"invoicer/internal/handler"
	"invoicer/internal/service"
	"invoicer/mocks"
)

func newDispatchHandler() (*handler.DispatchHandler, *mocks.MockDispatchService) {
	mockSvc := new(mocks.MockDispatchService)
	return handler.NewDispatchHandler(mockSvc), mockSvc
}

func TestDispatchHandler_Send_Envelope(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()

	result := &service.SendResult{
		Success:     true,
		Message:     "Invoice sent successfully",
		MessageID:   "msg-1",
		GoogleDrive: &service.DriveOutcome{Error: "drive error (403): insufficient permissions"},
	}
	mockSvc.On("Send", mock.Anything, &service.SendInput{
		InvoiceID:         id,
		To:                "ap@globex.test",
		Subject:           "Invoice #13",
		UseTemplate:       false,
		SaveToGoogleDrive: true,
	}).Return(result, nil)

	body := `{"invoiceId":"` + id.String() + `","to":"ap@globex.test","subject":"Invoice #13","saveToGoogleDrive":true}`
	c, w := newTestContext(http.MethodPost, "/api/v1/invoices/send", body)
	h.Send(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "msg-1", data["messageId"])
	drive := data["googleDrive"].(map[string]interface{})
	assert.Contains(t, drive["error"], "insufficient permissions")
	mockSvc.AssertExpectations(t)
}

func TestDispatchHandler_SendInvoice_BareResult(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()

	mockSvc.On("Send", mock.Anything, mock.MatchedBy(func(in *service.SendInput) bool {
		return in.InvoiceID == id && in.UseTemplate
	})).Return(&service.SendResult{Success: true, Message: "Invoice sent successfully", MessageID: "msg-2"}, nil)

	c, w := newTestContext(http.MethodPost, "/send-invoice", `{"invoiceId":"`+id.String()+`","useTemplate":true}`)
	h.SendInvoice(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "msg-2", result["messageId"])
	assert.Nil(t, result["googleDrive"])
	assert.NotContains(t, result, "data")
}

func TestDispatchHandler_Send_MissingRecipient(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("Send", mock.Anything, mock.Anything).Return(nil, domain.ErrMissingRecipient)

	c, w := newTestContext(http.MethodPost, "/send-invoice", `{"invoiceId":"`+id.String()+`"}`)
	h.SendInvoice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, "no recipient email address", raw["error"])
	assert.Equal(t, "MISSING_RECIPIENT", raw["code"])
	assert.NotContains(t, raw, "success")
	assert.NotContains(t, raw, "details")
}

func TestDispatchHandler_Send_RequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing invoice id", `{"to":"ap@globex.test"}`, "invoiceId"},
		{"bad email", `{"invoiceId":"` + uuid.NewString() + `","to":"not-an-email"}`, "to"},
		{"empty subject", `{"invoiceId":"` + uuid.NewString() + `","subject":""}`, "subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newDispatchHandler()

			c, w := newTestContext(http.MethodPost, "/send-invoice", tt.body)
			h.SendInvoice(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeLegacyError(t, w)
			assert.Equal(t, "request validation failed", resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Code)
			assert.Contains(t, resp.Details, tt.field)
			mockSvc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatchHandler_Send_MalformedInvoiceID(t *testing.T) {
	h, mockSvc := newDispatchHandler()

	c, w := newTestContext(http.MethodPost, "/send-invoice", `{"invoiceId":"12"}`)
	h.SendInvoice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeLegacyError(t, w).Code)
	mockSvc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatchHandler_Send_UpstreamFailure(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	mockSvc.On("Send", mock.Anything, mock.Anything).
		Return(nil, &domain.UpstreamError{Service: "mail", Status: 429, Message: "rate limited"})

	c, w := newTestContext(http.MethodPost, "/api/v1/invoices/send", `{"invoiceId":"`+uuid.NewString()+`"}`)
	h.Send(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "UPSTREAM_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "rate limited")
}

func TestDispatchHandler_EmailPreview(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("Preview", mock.Anything, id).
		Return(&service.PreviewResult{HTML: "<p>Hi Snapshot Co</p>", Subject: "Invoice #13"}, nil)

	c, w := newTestContext(http.MethodPost, "/email-preview", `{"invoiceId":"`+id.String()+`"}`)
	h.EmailPreview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var result service.PreviewResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "<p>Hi Snapshot Co</p>", result.HTML)
	assert.Equal(t, "Invoice #13", result.Subject)
}

func TestDispatchHandler_EmailPreview_NoTemplate(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("Preview", mock.Anything, id).Return(nil, domain.ErrNoTemplateConfigured)

	c, w := newTestContext(http.MethodPost, "/email-preview", `{"invoiceId":"`+id.String()+`"}`)
	h.EmailPreview(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeLegacyError(t, w)
	assert.Equal(t, "NO_TEMPLATE_CONFIGURED", resp.Code)
	assert.Contains(t, resp.Error, "please create an email template first")
}

func TestDispatchHandler_SaveToDrive_MissingCredentials(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("SaveToDrive", mock.Anything, id).Return(nil, domain.ErrMissingCredentials)

	c, w := newTestContext(http.MethodPost, "/save-to-drive", `{"invoiceId":"`+id.String()+`"}`)
	h.SaveToDrive(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeLegacyError(t, w)
	assert.Equal(t, "MISSING_CREDENTIALS", resp.Code)
	assert.Equal(t, "google drive credentials not configured", resp.Error)
}

func TestDispatchHandler_SaveToDrive_Success(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("SaveToDrive", mock.Anything, id).Return(&service.DriveResult{
		Success:  true,
		FileID:   "file-1",
		FileName: "13.pdf",
		Message:  "Invoice 13 saved to Google Drive successfully",
	}, nil)

	c, w := newTestContext(http.MethodPost, "/save-to-drive", `{"invoiceId":"`+id.String()+`"}`)
	h.SaveToDrive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var result service.DriveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "file-1", result.FileID)
}

func TestDispatchHandler_DownloadPDF(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("DownloadPDF", mock.Anything, id).
		Return(&service.PDFFile{FileName: "13.pdf", Content: []byte("%PDF-1.3")}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/invoices/"+id.String()+"/pdf", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.DownloadPDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="13.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestDispatchHandler_GeneratePDF_RenderFailure(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("GeneratePDF", mock.Anything, id).
		Return(nil, &domain.RenderError{Op: "pdf", Err: assert.AnError})

	c, w := newTestContext(http.MethodPost, "/api/v1/invoices/"+id.String()+"/pdf", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GeneratePDF(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "RENDER_FAILED", resp.Error.Code)
}

func TestDispatchHandler_PDFURL(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("PDFURL", mock.Anything, id).
		Return(&service.SignedURL{URL: "https://bucket.test/inv-13.pdf?sig=1", ExpiresIn: 300}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/invoices/"+id.String()+"/pdf-url", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.PDFURL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(300), data["expires_in"])
}

func TestDispatchHandler_PDFURL_NotGenerated(t *testing.T) {
	h, mockSvc := newDispatchHandler()
	id := uuid.New()
	mockSvc.On("PDFURL", mock.Anything, id).Return(nil, domain.ErrPDFNotGenerated)

	c, w := newTestContext(http.MethodGet, "/api/v1/invoices/"+id.String()+"/pdf-url", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.PDFURL(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "PDF_NOT_GENERATED", resp.Error.Code)
}
