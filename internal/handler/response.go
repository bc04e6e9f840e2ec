package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"invoicer/internal/domain"
	"invoicer/internal/logger"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	respondErrorDetails(c, status, code, msg, nil)
}

func respondErrorDetails(c *gin.Context, status int, code, msg string, details interface{}) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg, Details: details},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var validationErr *domain.ValidationError
	var upstreamErr *domain.UpstreamError
	var renderErr *domain.RenderError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, "CLIENT_NOT_FOUND", "client not found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "TEMPLATE_NOT_FOUND", "email template not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrNoTemplateConfigured):
		return http.StatusNotFound, "NO_TEMPLATE_CONFIGURED", "no email template found, please create an email template first"
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusInternalServerError, "MISSING_CREDENTIALS", "google drive credentials not configured"
	case errors.Is(err, domain.ErrMissingRecipient):
		return http.StatusBadRequest, "MISSING_RECIPIENT", "no recipient email address"
	case errors.Is(err, domain.ErrBusinessEmailMissing):
		return http.StatusBadRequest, "BUSINESS_EMAIL_MISSING", "business email not configured in settings"
	case errors.Is(err, domain.ErrDriveFolderMissing):
		return http.StatusBadRequest, "DRIVE_FOLDER_MISSING", "client does not have a google drive folder configured"
	case errors.Is(err, domain.ErrInvalidDriveFolder):
		return http.StatusBadRequest, "INVALID_DRIVE_FOLDER", "invalid google drive folder url"
	case errors.Is(err, domain.ErrPDFNotGenerated):
		return http.StatusBadRequest, "PDF_NOT_GENERATED", "invoice pdf has not been generated yet"
	case errors.Is(err, domain.ErrMissingConfiguration):
		return http.StatusBadRequest, "MISSING_CONFIGURATION", "required configuration is missing"
	case errors.Is(err, domain.ErrInvalidExportFormat):
		return http.StatusBadRequest, "INVALID_EXPORT_FORMAT", "invalid export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrSummarizerUnavailable):
		return http.StatusServiceUnavailable, "SUMMARIZER_UNAVAILABLE", "cannot connect to the summarizer backend"
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway, "UPSTREAM_ERROR", upstreamErr.Error()
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError, "RENDER_FAILED", "failed to render invoice pdf"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorDetails returns the optional details payload for err.
func errorDetails(err error) interface{} {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Fields
	case errors.Is(err, domain.ErrSummarizerUnavailable):
		return gin.H{"isConnectionError": true}
	default:
		return nil
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	logFailure(c, err, status, code)
	respondErrorDetails(c, status, code, msg, errorDetails(err))
}

// LegacyError is the flat error body of the function-style routes
// (/send-invoice, /email-preview, /save-to-drive, /process-reminders, /summarize).
type LegacyError struct {
	Error   string      `json:"error" example:"no recipient email address"`
	Code    string      `json:"code" example:"MISSING_RECIPIENT"`
	Details interface{} `json:"details,omitempty"`
}

// HandleLegacyError maps err like HandleError but writes the flat
// {error, code, details} body instead of the envelope.
func HandleLegacyError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	logFailure(c, err, status, code)
	c.JSON(status, LegacyError{Error: msg, Code: code, Details: errorDetails(err)})
}

func logFailure(c *gin.Context, err error, status int, code string) {
	log := requestLogger(c)
	switch {
	case status >= 500:
		log.Error().Err(err).Str("code", code).Msg("request failed")
	case status != http.StatusNotFound:
		log.Warn().Err(err).Str("code", code).Msg("request rejected")
	}
}

func requestLogger(c *gin.Context) *zerolog.Logger {
	requestID := c.GetString("request_id")
	l := logger.WithRequestID(requestID)
	return &l
}

// parsePagination reads offset and limit query parameters.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
