package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"research-assistant/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// ErrNoPDFText is returned when no page of a PDF yields any text.
var ErrNoPDFText = errors.New("No text could be extracted from the PDF")

const defaultPageTimeout = 30 * time.Second

// pdfDocument is the subset of *fitz.Document the extractor relies on.
type pdfDocument interface {
	NumPage() int
	Text(pageNumber int) (string, error)
	Close() error
}

type pdfOpener func(data []byte) (pdfDocument, error)

func openFitzDocument(data []byte) (pdfDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// PDFProcessor handles PDF text extraction
type PDFProcessor struct {
	logger      domain.Logger
	open        pdfOpener
	pageTimeout time.Duration
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(logger domain.Logger) *PDFProcessor {
	return &PDFProcessor{
		logger:      logger,
		open:        openFitzDocument,
		pageTimeout: defaultPageTimeout,
	}
}

// PDFText is the result of a PDF extraction.
type PDFText struct {
	Text      string
	PageCount int
}

// Extract pulls the text out of every page. Each page that has text is
// prefixed with a "--- Page N ---" marker; empty, failing and timed out
// pages are skipped.
func (p *PDFProcessor) Extract(pdfBytes []byte) (*PDFText, error) {
	doc, err := p.open(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	result := &PDFText{PageCount: numPages}

	type pageResult struct {
		text string
		err  error
	}

	var sb strings.Builder
	for pageNum := 0; pageNum < numPages; pageNum++ {
		p.logger.Debug("PDF processing page", "page", pageNum+1, "total", numPages)
		resultCh := make(chan pageResult, 1)
		go func(idx int) {
			t, e := doc.Text(idx)
			resultCh <- pageResult{text: t, err: e}
		}(pageNum)

		var text string
		select {
		case res := <-resultCh:
			text, err = res.text, res.err
		case <-time.After(p.pageTimeout):
			err = fmt.Errorf("timeout after %v", p.pageTimeout)
		}
		if err != nil {
			p.logger.Warn("Could not extract text from page", "page", pageNum+1, "total", numPages, "error", err)
			continue
		}

		text = sanitizeText(text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n--- Page %d ---\n", pageNum+1)
		sb.WriteString(text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return nil, ErrNoPDFText
	}
	result.Text = sb.String()
	return result, nil
}

// sanitizeText drops control characters other than tab, newline and
// carriage return, plus invalid runes.
func sanitizeText(text string) string {
	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch {
		case r == 0x09 || r == 0x0A || r == 0x0D:
			result.WriteRune(r)
		case r < 0x20 || r == 0x7F:
			// control character
		case r == 0xFFFD:
			// replacement rune from a bad decode
		case r >= 0xD800 && r <= 0xDFFF:
			// surrogate
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
