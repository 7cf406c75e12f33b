package domain

import (
	"io"
	"time"
)

// DocumentFormat identifies the kind of file a document was extracted from.
type DocumentFormat string

const (
	FormatPDF DocumentFormat = "pdf"
	FormatTXT DocumentFormat = "txt"
)

// Upload is a file received from the client, still unread.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ExtractedDocument is the plain text pulled out of an upload.
type ExtractedDocument struct {
	Name      string         `json:"name"`
	Format    DocumentFormat `json:"format"`
	Text      string         `json:"-"`
	PageCount int            `json:"page_count"`
	Size      int64          `json:"size"`
	Raw       []byte         `json:"-"`
}

// DocumentState is the document currently loaded in a session.
type DocumentState struct {
	Name         string         `json:"name"`
	Format       DocumentFormat `json:"format"`
	Text         string         `json:"-"`
	Processed    bool           `json:"processed"`
	PageCount    int            `json:"page_count"`
	CharCount    int            `json:"char_count"`
	Summary      string         `json:"summary"`
	SummaryError string         `json:"summary_error,omitempty"`
	ProcessedAt  time.Time      `json:"processed_at"`
}

// NewDocumentState builds the session view of a freshly extracted document.
func NewDocumentState(doc *ExtractedDocument) *DocumentState {
	return &DocumentState{
		Name:        doc.Name,
		Format:      doc.Format,
		Text:        doc.Text,
		Processed:   true,
		PageCount:   doc.PageCount,
		CharCount:   len([]rune(doc.Text)),
		ProcessedAt: time.Now().UTC(),
	}
}
