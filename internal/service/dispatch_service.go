package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicer/internal/archive"
	"invoicer/internal/domain"
	"invoicer/internal/logger"
	"invoicer/internal/placeholder"
	"invoicer/internal/port"
	"invoicer/internal/snapshot"
)

// Auxiliary step names reported in SendResult.Auxiliary.
const (
	AuxPDFPersist = "pdf_persist"
	AuxMarkSent   = "mark_sent"
	AuxNotesTerms = "notes_terms"
	AuxDrive      = "google_drive"
)

// SendInput is the DTO for sending an invoice email.
type SendInput struct {
	InvoiceID         uuid.UUID
	To                string
	Subject           string
	Body              string
	UseTemplate       bool
	SaveToGoogleDrive bool
}

// AuxOutcome records the result of a best-effort step that never fails a send.
type AuxOutcome struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DriveOutcome is the archival result embedded in a send response.
type DriveOutcome struct {
	FileID   string `json:"fileId,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SendResult is returned after the mail transport accepted the message.
type SendResult struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	MessageID   string        `json:"messageId"`
	GoogleDrive *DriveOutcome `json:"googleDrive"`
	Auxiliary   []AuxOutcome  `json:"auxiliary"`
}

// PreviewResult is the merged template for an invoice.
type PreviewResult struct {
	HTML    string `json:"html"`
	Subject string `json:"subject"`
}

// PDFResult describes a freshly generated and stored invoice PDF.
type PDFResult struct {
	FilePath string `json:"file_path"`
	Size     int    `json:"size"`
	Overflow bool   `json:"overflow"`
}

// PDFFile is a downloadable invoice PDF.
type PDFFile struct {
	FileName string
	Content  []byte
}

// SignedURL is a short-lived link to the stored PDF.
type SignedURL struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// DriveResult is the response of a standalone archive request.
type DriveResult struct {
	Success  bool   `json:"success"`
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	Message  string `json:"message"`
}

// DispatchConfig holds the dispatch settings taken from configuration.
type DispatchConfig struct {
	Bucket        string
	PresignExpiry int64
	DefaultFrom   string
	DefaultTerms  string
	Timeout       time.Duration
}

// DispatchService renders, mails and archives invoices.
type DispatchService interface {
	Send(ctx context.Context, input *SendInput) (*SendResult, error)
	Preview(ctx context.Context, invoiceID uuid.UUID) (*PreviewResult, error)
	GeneratePDF(ctx context.Context, invoiceID uuid.UUID) (*PDFResult, error)
	DownloadPDF(ctx context.Context, invoiceID uuid.UUID) (*PDFFile, error)
	PDFURL(ctx context.Context, invoiceID uuid.UUID) (*SignedURL, error)
	SaveToDrive(ctx context.Context, invoiceID uuid.UUID) (*DriveResult, error)
}

type dispatchService struct {
	invoiceRepo  port.InvoiceRepository
	templateRepo port.TemplateRepository
	settingsRepo port.SettingsRepository
	storage      port.ObjectStorage
	urlCache     port.URLCache
	mailer       port.Mailer
	archiver     port.FolderArchiver
	renderer     PDFRenderer
	cfg          DispatchConfig
	clock        Clock
	log          zerolog.Logger
}

// NewDispatchService creates a new DispatchService. urlCache and archiver
// may be nil: signed URLs are then always minted fresh and archival reports
// missing credentials.
func NewDispatchService(
	invoiceRepo port.InvoiceRepository,
	templateRepo port.TemplateRepository,
	settingsRepo port.SettingsRepository,
	storage port.ObjectStorage,
	urlCache port.URLCache,
	mailer port.Mailer,
	archiver port.FolderArchiver,
	renderer PDFRenderer,
	cfg DispatchConfig,
	clock Clock,
) DispatchService {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DefaultTerms == "" {
		cfg.DefaultTerms = DefaultTerms
	}
	return &dispatchService{
		invoiceRepo:  invoiceRepo,
		templateRepo: templateRepo,
		settingsRepo: settingsRepo,
		storage:      storage,
		urlCache:     urlCache,
		mailer:       mailer,
		archiver:     archiver,
		renderer:     renderer,
		cfg:          cfg,
		clock:        clock,
		log:          logger.WithComponent("dispatch"),
	}
}

func (s *dispatchService) external(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *dispatchService) Send(ctx context.Context, input *SendInput) (*SendResult, error) {
	if input.InvoiceID == uuid.Nil {
		return nil, domain.NewValidationError("invoiceId", "is required")
	}

	detail, settings, err := loadInvoice(ctx, s.invoiceRepo, s.settingsRepo, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	view := snapshot.Resolve(&detail.Invoice, detail.Client, settings)
	log := s.log.With().Str("invoice_id", detail.ID.String()).Str("invoice_number", detail.InvoiceNumber).Logger()

	recipient := strings.TrimSpace(input.To)
	if recipient == "" && detail.Client != nil {
		recipient = strings.TrimSpace(detail.Client.TargetEmail)
	}
	if recipient == "" {
		log.Warn().Msg("no recipient email available")
		return nil, domain.ErrMissingRecipient
	}

	subject, html, err := s.content(ctx, input, detail, view)
	if err != nil {
		return nil, err
	}

	var aux []AuxOutcome
	pdfBytes, persisted := s.resolvePDF(ctx, detail, view)
	if persisted != nil {
		aux = append(aux, *persisted)
	}

	msg := port.MailMessage{
		From:    s.fromAddress(view),
		To:      []string{recipient},
		Subject: subject,
		HTML:    html,
	}
	if cc := ccAddress(detail.Client, view); cc != "" {
		msg.CC = []string{cc}
	}
	if pdfBytes != nil {
		msg.Attachments = []port.Attachment{{
			Filename:    attachmentName(detail.InvoiceNumber),
			ContentType: "application/pdf",
			Content:     pdfBytes,
		}}
	} else {
		log.Warn().Msg("no PDF available for attachment")
	}

	mailCtx, cancel := s.external(ctx)
	messageID, err := s.mailer.Send(mailCtx, msg)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("mail transport rejected invoice email")
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &domain.UpstreamError{Service: "mail", Message: err.Error(), Err: err}
	}
	log.Info().Str("message_id", messageID).Str("to", recipient).Msg("invoice email sent")

	// The message is out; later steps must not be cut short by the caller.
	bg := context.WithoutCancel(ctx)

	metadata := snapshot.Build(detail.Client, settings, view.Terms, view.Notes)
	if err := s.invoiceRepo.MarkSent(bg, detail.ID, s.clock.now(), metadata); err != nil {
		log.Error().Err(err).Msg("failed to mark invoice as sent")
		aux = append(aux, AuxOutcome{Name: AuxMarkSent, Error: err.Error()})
	} else {
		aux = append(aux, AuxOutcome{Name: AuxMarkSent, OK: true})
	}

	aux = append(aux, s.backfillNotesTerms(bg, detail, view))

	result := &SendResult{
		Success:   true,
		Message:   "Invoice sent successfully",
		MessageID: messageID,
	}

	if input.SaveToGoogleDrive {
		outcome := s.archive(bg, detail, pdfBytes)
		result.GoogleDrive = outcome
		if outcome.Error != "" {
			aux = append(aux, AuxOutcome{Name: AuxDrive, Error: outcome.Error})
		} else {
			aux = append(aux, AuxOutcome{Name: AuxDrive, OK: true})
		}
	}

	result.Auxiliary = aux
	return result, nil
}

// content merges the subject and body for either the template or the
// freeform path.
func (s *dispatchService) content(ctx context.Context, input *SendInput, detail *domain.InvoiceDetail, view snapshot.View) (string, string, error) {
	fields := templateFields(&detail.Invoice, view, s.cfg.DefaultTerms)

	if input.UseTemplate {
		tpl, err := s.pickTemplate(ctx, detail.Client)
		if err != nil {
			return "", "", err
		}
		return placeholder.Render(tpl.Subject, fields), placeholder.Render(tpl.Body, fields), nil
	}

	subject := input.Subject
	if strings.TrimSpace(subject) == "" {
		subject = fmt.Sprintf("Invoice #%s from %s", detail.InvoiceNumber, fields["company_name"])
	}
	html := placeholder.TextToHTML(placeholder.Render(input.Body, fields))
	return placeholder.Render(subject, fields), html, nil
}

// pickTemplate returns the client's template, else the first one by name.
func (s *dispatchService) pickTemplate(ctx context.Context, client *domain.Client) (*domain.EmailTemplate, error) {
	if client != nil && client.EmailTemplateID != nil {
		tpl, err := s.templateRepo.GetByID(ctx, *client.EmailTemplateID)
		switch {
		case err == nil:
			return tpl, nil
		case !errors.Is(err, domain.ErrNotFound):
			s.log.Warn().Err(err).Msg("loading client template failed, using first template")
		}
	}

	tpl, err := s.templateRepo.First(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoTemplateConfigured
	}
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// resolvePDF returns the stored PDF, or renders and persists a new one.
// Failures degrade to a nil PDF; the persist outcome is reported when a
// render happened.
func (s *dispatchService) resolvePDF(ctx context.Context, detail *domain.InvoiceDetail, view snapshot.View) ([]byte, *AuxOutcome) {
	if detail.FilePath != nil && *detail.FilePath != "" {
		dlCtx, cancel := s.external(ctx)
		data, err := s.storage.Download(dlCtx, s.cfg.Bucket, *detail.FilePath)
		cancel()
		if err == nil {
			return data, nil
		}
		s.log.Warn().Err(err).Str("file_path", *detail.FilePath).Msg("could not download stored PDF, rendering a new one")
	}

	rendered, err := s.renderer.Render(pdfDocument(detail, view))
	if err != nil {
		s.log.Error().Err(err).Str("invoice_id", detail.ID.String()).Msg("PDF render failed")
		return nil, nil
	}
	if rendered.Overflow {
		s.log.Warn().Str("invoice_id", detail.ID.String()).Msg("PDF content overlaps footer")
	}

	outcome := AuxOutcome{Name: AuxPDFPersist, OK: true}
	if _, err := s.store(context.WithoutCancel(ctx), detail, rendered.Bytes); err != nil {
		s.log.Error().Err(err).Msg("failed to persist generated PDF")
		outcome = AuxOutcome{Name: AuxPDFPersist, Error: err.Error()}
	}
	return rendered.Bytes, &outcome
}

// store uploads the PDF under its deterministic key and records the path.
func (s *dispatchService) store(ctx context.Context, detail *domain.InvoiceDetail, data []byte) (string, error) {
	key := storageKey(detail.InvoiceNumber)

	upCtx, cancel := s.external(ctx)
	defer cancel()
	if _, err := s.storage.Upload(upCtx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: "application/pdf",
		Size:        int64(len(data)),
	}); err != nil {
		return "", fmt.Errorf("uploading PDF: %w", err)
	}
	if err := s.invoiceRepo.UpdateFilePath(ctx, detail.ID, key); err != nil {
		return "", fmt.Errorf("updating file path: %w", err)
	}
	s.forgetURL(ctx, detail.ID)
	return key, nil
}

func (s *dispatchService) backfillNotesTerms(ctx context.Context, detail *domain.InvoiceDetail, view snapshot.View) AuxOutcome {
	notes := paymentNotes(view.Business)
	if notes == "" {
		notes = detail.Notes
	}
	terms := view.Terms
	if notes == detail.Notes && terms == detail.Terms {
		return AuxOutcome{Name: AuxNotesTerms, OK: true}
	}
	if err := s.invoiceRepo.UpdateNotesTerms(ctx, detail.ID, notes, terms); err != nil {
		s.log.Error().Err(err).Msg("failed to update invoice notes and terms")
		return AuxOutcome{Name: AuxNotesTerms, Error: err.Error()}
	}
	return AuxOutcome{Name: AuxNotesTerms, OK: true}
}

// archive uploads the in-hand PDF to the client's folder, capturing any
// failure in the outcome.
func (s *dispatchService) archive(ctx context.Context, detail *domain.InvoiceDetail, data []byte) *DriveOutcome {
	file, err := s.upload(ctx, detail, data)
	if err != nil {
		s.log.Error().Err(err).Str("invoice_id", detail.ID.String()).Msg("google drive archival failed")
		return &DriveOutcome{Error: err.Error()}
	}
	return &DriveOutcome{FileID: file.FileID, FileName: file.FileName}
}

func (s *dispatchService) upload(ctx context.Context, detail *domain.InvoiceDetail, data []byte) (*port.ArchivedFile, error) {
	if detail.Client == nil || detail.Client.GoogleDriveFolderURL == nil {
		return nil, domain.ErrDriveFolderMissing
	}
	folderID, err := archive.ExtractFolderID(*detail.Client.GoogleDriveFolderURL)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, domain.ErrPDFNotGenerated
	}
	if s.archiver == nil {
		return nil, domain.ErrMissingCredentials
	}
	upCtx, cancel := s.external(ctx)
	defer cancel()
	return s.archiver.Upload(upCtx, folderID, attachmentName(detail.InvoiceNumber), data)
}

func (s *dispatchService) fromAddress(view snapshot.View) string {
	if email := view.BusinessEmail(); email != "" {
		return email
	}
	return s.cfg.DefaultFrom
}

func ccAddress(client *domain.Client, view snapshot.View) string {
	if view.BillTo.CCEmail != nil {
		return strings.TrimSpace(*view.BillTo.CCEmail)
	}
	if client != nil && client.CCEmail != nil {
		return strings.TrimSpace(*client.CCEmail)
	}
	return ""
}

func (s *dispatchService) Preview(ctx context.Context, invoiceID uuid.UUID) (*PreviewResult, error) {
	detail, settings, err := loadInvoice(ctx, s.invoiceRepo, s.settingsRepo, invoiceID)
	if err != nil {
		return nil, err
	}
	view := snapshot.Resolve(&detail.Invoice, detail.Client, settings)

	tpl, err := s.pickTemplate(ctx, detail.Client)
	if err != nil {
		return nil, err
	}
	fields := templateFields(&detail.Invoice, view, s.cfg.DefaultTerms)
	return &PreviewResult{
		HTML:    placeholder.Render(tpl.Body, fields),
		Subject: placeholder.Render(tpl.Subject, fields),
	}, nil
}

func (s *dispatchService) GeneratePDF(ctx context.Context, invoiceID uuid.UUID) (*PDFResult, error) {
	detail, settings, err := loadInvoice(ctx, s.invoiceRepo, s.settingsRepo, invoiceID)
	if err != nil {
		return nil, err
	}
	view := snapshot.Resolve(&detail.Invoice, detail.Client, settings)

	rendered, err := s.renderer.Render(pdfDocument(detail, view))
	if err != nil {
		return nil, err
	}
	key, err := s.store(ctx, detail, rendered.Bytes)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", invoiceID.String()).Str("file_path", key).Bool("overflow", rendered.Overflow).Msg("invoice PDF generated")
	return &PDFResult{FilePath: key, Size: len(rendered.Bytes), Overflow: rendered.Overflow}, nil
}

// DownloadPDF returns the stored PDF, rendering an unsaved copy when none
// has been generated yet.
func (s *dispatchService) DownloadPDF(ctx context.Context, invoiceID uuid.UUID) (*PDFFile, error) {
	detail, settings, err := loadInvoice(ctx, s.invoiceRepo, s.settingsRepo, invoiceID)
	if err != nil {
		return nil, err
	}
	name := attachmentName(detail.InvoiceNumber)

	if detail.FilePath != nil && *detail.FilePath != "" {
		dlCtx, cancel := s.external(ctx)
		defer cancel()
		data, err := s.storage.Download(dlCtx, s.cfg.Bucket, *detail.FilePath)
		if err == nil {
			return &PDFFile{FileName: name, Content: data}, nil
		}
		s.log.Warn().Err(err).Str("file_path", *detail.FilePath).Msg("stored PDF unavailable, rendering")
	}

	view := snapshot.Resolve(&detail.Invoice, detail.Client, settings)
	rendered, err := s.renderer.Render(pdfDocument(detail, view))
	if err != nil {
		return nil, err
	}
	return &PDFFile{FileName: name, Content: rendered.Bytes}, nil
}

func (s *dispatchService) PDFURL(ctx context.Context, invoiceID uuid.UUID) (*SignedURL, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.FilePath == nil || *inv.FilePath == "" {
		return nil, domain.ErrPDFNotGenerated
	}

	cacheKey := urlCacheKey(invoiceID)
	if s.urlCache != nil {
		if url, ok, err := s.urlCache.Get(ctx, cacheKey); err != nil {
			s.log.Warn().Err(err).Msg("signed URL cache read failed")
		} else if ok {
			return &SignedURL{URL: url, ExpiresIn: s.cfg.PresignExpiry}, nil
		}
	}

	presignCtx, cancel := s.external(ctx)
	defer cancel()
	url, err := s.storage.GetPresignedURL(presignCtx, s.cfg.Bucket, *inv.FilePath, s.cfg.PresignExpiry)
	if err != nil {
		return nil, err
	}

	if ttl := cacheTTL(s.cfg.PresignExpiry); s.urlCache != nil && ttl > 0 {
		if err := s.urlCache.Set(ctx, cacheKey, url, ttl); err != nil {
			s.log.Warn().Err(err).Msg("signed URL cache write failed")
		}
	}
	return &SignedURL{URL: url, ExpiresIn: s.cfg.PresignExpiry}, nil
}

func (s *dispatchService) forgetURL(ctx context.Context, invoiceID uuid.UUID) {
	if s.urlCache == nil {
		return
	}
	if err := s.urlCache.Delete(ctx, urlCacheKey(invoiceID)); err != nil {
		s.log.Warn().Err(err).Msg("signed URL cache delete failed")
	}
}

func (s *dispatchService) SaveToDrive(ctx context.Context, invoiceID uuid.UUID) (*DriveResult, error) {
	detail, err := s.invoiceRepo.GetDetail(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if detail.Client == nil || detail.Client.GoogleDriveFolderURL == nil {
		return nil, domain.ErrDriveFolderMissing
	}
	if _, err := archive.ExtractFolderID(*detail.Client.GoogleDriveFolderURL); err != nil {
		return nil, err
	}
	if detail.FilePath == nil || *detail.FilePath == "" {
		return nil, domain.ErrPDFNotGenerated
	}
	if s.archiver == nil {
		return nil, domain.ErrMissingCredentials
	}

	dlCtx, cancel := s.external(ctx)
	data, err := s.storage.Download(dlCtx, s.cfg.Bucket, *detail.FilePath)
	cancel()
	if err != nil {
		return nil, &domain.UpstreamError{Service: "storage", Message: "failed to download PDF: " + err.Error(), Err: err}
	}

	file, err := s.upload(ctx, detail, data)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", invoiceID.String()).Str("file_id", file.FileID).Msg("invoice saved to google drive")
	return &DriveResult{
		Success:  true,
		FileID:   file.FileID,
		FileName: file.FileName,
		Message:  fmt.Sprintf("Invoice %s saved to Google Drive successfully", detail.InvoiceNumber),
	}, nil
}

func urlCacheKey(invoiceID uuid.UUID) string {
	return "invoice-pdf:" + invoiceID.String()
}

// cacheTTL keeps cached links a little shorter-lived than the links themselves.
func cacheTTL(expirySeconds int64) time.Duration {
	expiry := time.Duration(expirySeconds) * time.Second
	margin := expiry / 10
	if margin < 10*time.Second {
		margin = 10 * time.Second
	}
	return expiry - margin
}
