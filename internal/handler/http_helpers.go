package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"research-assistant/internal/domain"
	"research-assistant/internal/service"
	appErrors "research-assistant/pkg/errors"
)

type contextKey string

const sessionContextKey contextKey = "session"

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 12 << 20

// bodyOverhead is the allowance for multipart framing on top of the file.
const bodyOverhead = 1 << 20

// withSession stores the request's session in the context.
func withSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// GetSessionFromContext extracts the browser session from request context
func GetSessionFromContext(r *http.Request) (*domain.Session, bool) {
	s, ok := r.Context().Value(sessionContextKey).(*domain.Session)
	return s, ok && s != nil
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeAppError maps an error to its status code and user-facing message.
func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, appErrors.GetStatusCode(err), appErrors.UserMessage(err))
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readUpload caps the request body and pulls the "file" part out of a
// multipart form. The returned cleanup must be called when done.
func readUpload(w http.ResponseWriter, r *http.Request, maxFileSize int64) (domain.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+bodyOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Upload{}, noop, appErrors.NewTooLargeError(service.FileTooLargeMessage(maxFileSize))
		}
		return domain.Upload{}, noop, appErrors.NewValidationError("Invalid upload form", err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
		return domain.Upload{}, noop, appErrors.NewValidationError("No file uploaded")
	}

	cleanup := func() {
		file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return uploadFromPart(file, header), cleanup, nil
}

func uploadFromPart(file multipart.File, header *multipart.FileHeader) domain.Upload {
	return domain.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		return appErrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}
