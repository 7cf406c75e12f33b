package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"research-assistant/internal/domain"
)

// ObjectUploader stores a file in remote object storage.
type ObjectUploader interface {
	Upload(prefix, name, contentType string, data []byte) (string, error)
}

// ArchiveServiceImpl keeps a copy of every accepted upload, either in a
// local directory or in remote object storage.
type ArchiveServiceImpl struct {
	enabled bool
	dir     string
	remote  ObjectUploader
	logger  domain.Logger
}

// NewArchiveService creates a new archive service. remote may be nil, in
// which case copies go to the configured upload directory.
func NewArchiveService(config domain.Config, remote ObjectUploader, logger domain.Logger) domain.ArchiveService {
	return &ArchiveServiceImpl{
		enabled: config.GetArchiveUploads(),
		dir:     config.GetUploadPath(),
		remote:  remote,
		logger:  logger,
	}
}

// Archive stores doc under the session's prefix. It is a no-op when
// archiving is disabled.
func (a *ArchiveServiceImpl) Archive(ctx context.Context, sessionID string, doc *domain.ExtractedDocument) error {
	if !a.enabled || doc == nil || len(doc.Raw) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := filepath.Base(doc.Name)
	if a.remote != nil {
		objectPath, err := a.remote.Upload(sessionID, name, contentTypeFor(doc.Format), doc.Raw)
		if err != nil {
			return err
		}
		a.logger.Debug("Upload archived to object storage", "session_id", sessionID, "path", objectPath)
		return nil
	}

	dir := filepath.Join(a.dir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, doc.Raw, 0o644); err != nil {
		return fmt.Errorf("write archive copy: %w", err)
	}
	a.logger.Debug("Upload archived", "session_id", sessionID, "path", target)
	return nil
}

func contentTypeFor(format domain.DocumentFormat) string {
	if format == domain.FormatPDF {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}
