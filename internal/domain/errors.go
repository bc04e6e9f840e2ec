package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvoiceNotFound  = fmt.Errorf("invoice %w", ErrNotFound)
	ErrClientNotFound   = fmt.Errorf("client %w", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("email template %w", ErrNotFound)
	ErrSettingsNotFound = fmt.Errorf("business settings %w", ErrNotFound)
	ErrUnauthorized     = errors.New("unauthorized")

	// ErrMissingConfiguration is the parent of every "required data is absent" error.
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrMissingRecipient     = fmt.Errorf("%w: no recipient email address", ErrMissingConfiguration)
	ErrNoTemplateConfigured = fmt.Errorf("%w: no email template found, please create an email template first", ErrMissingConfiguration)
	ErrBusinessEmailMissing = fmt.Errorf("%w: business email not configured in settings", ErrMissingConfiguration)
	ErrMissingCredentials   = fmt.Errorf("%w: google drive credentials not configured", ErrMissingConfiguration)
	ErrDriveFolderMissing   = fmt.Errorf("%w: client does not have a google drive folder configured", ErrMissingConfiguration)
	ErrInvalidDriveFolder   = fmt.Errorf("%w: invalid google drive folder url", ErrMissingConfiguration)
	ErrPDFNotGenerated      = fmt.Errorf("%w: invoice pdf has not been generated yet", ErrMissingConfiguration)

	ErrSummarizerUnavailable = errors.New("cannot connect to the summarizer backend")
	ErrInvalidExportFormat   = errors.New("invalid export format; allowed: csv, xlsx")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a field message and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// UpstreamError wraps a failure reported by an external collaborator.
type UpstreamError struct {
	Service string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Service, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RenderError reports a failure while producing a document.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
