package handler

import (
	"net/http"

	"research-assistant/internal/domain"
	appErrors "research-assistant/pkg/errors"
)

// APIHandler serves the JSON API under /api/v1.
type APIHandler struct {
	workspace   domain.WorkspaceService
	maxFileSize int64
	logger      domain.Logger
}

// NewAPIHandler creates a new JSON API handler
func NewAPIHandler(workspace domain.WorkspaceService, maxFileSize int64, logger domain.Logger) *APIHandler {
	return &APIHandler{workspace: workspace, maxFileSize: maxFileSize, logger: logger}
}

type askRequest struct {
	Question string `json:"question"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type documentResponse struct {
	SessionID string                `json:"session_id"`
	Document  *domain.DocumentState `json:"document"`
}

// session returns the request's session or writes a 500.
func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	s, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Session unavailable")
	}
	return s, ok
}

// UploadDocument handles multipart uploads (field "file").
func (h *APIHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	upload, cleanup, err := readUpload(w, r, h.maxFileSize)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer cleanup()

	state, err := h.workspace.ProcessDocument(r.Context(), s, upload)
	if err != nil {
		h.logger.Warn("Document upload failed", "session_id", s.ID, "filename", upload.Filename, "error", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentResponse{SessionID: s.ID, Document: state})
}

// GetDocument returns the loaded document and its summary.
func (h *APIHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Lock()
	doc := documentView(s)
	s.Unlock()

	if doc == nil {
		writeAppError(w, appErrors.NewNotFoundError("No document loaded"))
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{SessionID: s.ID, Document: doc})
}

// ClearDocument unloads the document.
func (h *APIHandler) ClearDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.workspace.ClearDocument(s)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document cleared"})
}

// SetMode switches between "ask" and "challenge".
func (h *APIHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req modeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if err := h.workspace.SetMode(r.Context(), s, domain.Mode(req.Mode)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": req.Mode})
}

// Ask answers a free-form question about the document.
func (h *APIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	rec, err := h.workspace.Ask(r.Context(), s, req.Question)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetHistory returns the Ask-Anything exchanges, oldest first.
func (h *APIHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Lock()
	history := s.RecentExchanges(domain.MaxConversationHistory)
	s.Unlock()

	if history == nil {
		history = []domain.QARecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversation": history})
}

// NewChallenge generates a fresh set of questions.
func (h *APIHandler) NewChallenge(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := h.workspace.NewQuestions(r.Context(), s); err != nil {
		writeAppError(w, err)
		return
	}
	h.writeChallenge(w, s, http.StatusCreated)
}

// GetChallenge returns the current challenge state.
func (h *APIHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeChallenge(w, s, http.StatusOK)
}

// SubmitAnswer scores an answer to the current question.
func (h *APIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	attempt, err := h.workspace.SubmitAnswer(r.Context(), s, req.Answer)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

// SkipQuestion skips the current question.
func (h *APIHandler) SkipQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.workspace.SkipQuestion(s); err != nil {
		writeAppError(w, err)
		return
	}
	h.writeChallenge(w, s, http.StatusOK)
}

// NextQuestion advances to the next question.
func (h *APIHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.workspace.NextQuestion(s); err != nil {
		writeAppError(w, err)
		return
	}
	h.writeChallenge(w, s, http.StatusOK)
}

func (h *APIHandler) writeChallenge(w http.ResponseWriter, s *domain.Session, status int) {
	s.Lock()
	view := buildChallengeView(s)
	s.Unlock()
	writeJSON(w, status, view)
}
