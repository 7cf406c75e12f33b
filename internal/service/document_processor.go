package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"research-assistant/internal/domain"
	"research-assistant/internal/metrics"
	appErrors "research-assistant/pkg/errors"
)

// MsgUnsupportedFormat is shown when an upload is neither PDF nor TXT.
const MsgUnsupportedFormat = "Unsupported file format. Please upload .pdf, .txt files only."

// FileTooLargeMessage is shown when an upload exceeds maxFileSize.
func FileTooLargeMessage(maxFileSize int64) string {
	return fmt.Sprintf("File size too large. Maximum size allowed is %s.", FormatFileSize(maxFileSize))
}

// FormatFileSize renders a byte limit as whole MB or KB, e.g. "10MB".
func FormatFileSize(n int64) string {
	const kb, mb = 1024, 1024 * 1024
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= mb:
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// DocumentProcessorService validates uploads and extracts their text.
type DocumentProcessorService struct {
	pdf         *PDFProcessor
	maxFileSize int64
	logger      domain.Logger
	metrics     *metrics.Metrics
}

// NewDocumentProcessor creates a new document processor
func NewDocumentProcessor(pdf *PDFProcessor, config domain.Config, logger domain.Logger, m *metrics.Metrics) domain.DocumentProcessor {
	return &DocumentProcessorService{
		pdf:         pdf,
		maxFileSize: config.GetMaxFileSize(),
		logger:      logger,
		metrics:     m,
	}
}

// formatFromName maps a file name to a supported format.
func formatFromName(filename string) (domain.DocumentFormat, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return domain.FormatPDF, true
	case ".txt":
		return domain.FormatTXT, true
	default:
		return "", false
	}
}

// Validate checks the declared name and size before anything is read.
func (s *DocumentProcessorService) Validate(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return appErrors.NewValidationError("No file uploaded")
	}
	if _, ok := formatFromName(filename); !ok {
		return appErrors.NewValidationError(MsgUnsupportedFormat)
	}
	if size > s.maxFileSize {
		return appErrors.NewTooLargeError(FileTooLargeMessage(s.maxFileSize))
	}
	return nil
}

// Process validates the upload, reads it and extracts its text.
func (s *DocumentProcessorService) Process(ctx context.Context, upload domain.Upload) (*domain.ExtractedDocument, error) {
	format, _ := formatFromName(upload.Filename)
	doc, err := s.process(ctx, upload, format)
	s.metrics.ObserveDocument(string(format), err)
	if err != nil {
		s.logger.Warn("Document rejected", "filename", upload.Filename, "size", upload.Size, "error", err)
		return nil, err
	}
	s.logger.Info("Document processed",
		"filename", doc.Name,
		"format", doc.Format,
		"pages", doc.PageCount,
		"chars", len(doc.Text),
	)
	return doc, nil
}

func (s *DocumentProcessorService) process(ctx context.Context, upload domain.Upload, format domain.DocumentFormat) (*domain.ExtractedDocument, error) {
	if err := s.Validate(upload.Filename, upload.Size); err != nil {
		return nil, err
	}
	if upload.Reader == nil {
		return nil, appErrors.NewValidationError("No file uploaded")
	}

	// Read one byte past the limit so an undeclared oversize stream is caught.
	data, err := io.ReadAll(io.LimitReader(upload.Reader, s.maxFileSize+1))
	if err != nil {
		return nil, appErrors.NewProcessingError("Failed to read uploaded file", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, appErrors.NewTooLargeError(FileTooLargeMessage(s.maxFileSize))
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.NewInternalError("Upload cancelled", err)
	}

	doc := &domain.ExtractedDocument{
		Name:   filepath.Base(upload.Filename),
		Format: format,
		Size:   int64(len(data)),
		Raw:    data,
	}

	switch format {
	case domain.FormatPDF:
		res, err := s.pdf.Extract(data)
		if err != nil {
			if errors.Is(err, ErrNoPDFText) {
				return nil, appErrors.NewProcessingError(err.Error(), err)
			}
			return nil, appErrors.NewProcessingError("Error processing PDF", err)
		}
		doc.Text = res.Text
		doc.PageCount = res.PageCount
	case domain.FormatTXT:
		text, err := decodeText(data)
		if err != nil {
			return nil, appErrors.NewProcessingError(err.Error(), err)
		}
		doc.Text = text
		doc.PageCount = 1
	}

	return doc, nil
}
