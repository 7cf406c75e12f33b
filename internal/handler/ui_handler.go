package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"research-assistant/internal/domain"
	"research-assistant/internal/service"
	appErrors "research-assistant/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// historyOnPage is how many exchanges the page lists, newest first.
const historyOnPage = 5

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// UIHandler serves the server-rendered HTML interface. Every POST
// redirects back to "/" with a one-shot notice or error.
type UIHandler struct {
	workspace   domain.WorkspaceService
	maxFileSize int64
	logger      domain.Logger
}

// NewUIHandler creates a new HTML handler
func NewUIHandler(workspace domain.WorkspaceService, maxFileSize int64, logger domain.Logger) *UIHandler {
	return &UIHandler{workspace: workspace, maxFileSize: maxFileSize, logger: logger}
}

type pageView struct {
	Notice       string
	Error        string
	MaxFileSize  string
	Document     *domain.DocumentState
	Mode         domain.Mode
	History      []domain.QARecord
	HistoryTotal int
	Challenge    challengeView
}

// Index renders the workspace page.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	s, ok := GetSessionFromContext(r)
	if !ok {
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}

	s.Lock()
	notice, errMsg := s.TakeFlash()
	view := pageView{
		Notice:       notice,
		Error:        errMsg,
		MaxFileSize:  service.FormatFileSize(h.maxFileSize),
		Document:     documentView(s),
		Mode:         s.Mode,
		History:      recentHistory(s, historyOnPage),
		HistoryTotal: len(s.Conversation),
		Challenge:    buildChallengeView(s),
	}
	s.Unlock()

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logger.Error("Failed to render page", err, "session_id", s.ID)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// UploadDocument processes an uploaded file.
func (h *UIHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		upload, cleanup, err := readUpload(w, r, h.maxFileSize)
		if err != nil {
			return "", err
		}
		defer cleanup()

		state, err := h.workspace.ProcessDocument(r.Context(), s, upload)
		if err != nil {
			return "", err
		}
		if state.SummaryError != "" {
			return "Document processed, but the summary could not be generated.", nil
		}
		return "Document processed successfully!", nil
	})
}

// ClearDocument unloads the document.
func (h *UIHandler) ClearDocument(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		h.workspace.ClearDocument(s)
		return "Document cleared.", nil
	})
}

// SetMode switches the interaction mode.
func (h *UIHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		return "", h.workspace.SetMode(r.Context(), s, domain.Mode(r.FormValue("mode")))
	})
}

// Ask answers a question from the form.
func (h *UIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		_, err := h.workspace.Ask(r.Context(), s, r.FormValue("question"))
		return "", err
	})
}

// SubmitAnswer scores the challenge answer from the form.
func (h *UIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		_, err := h.workspace.SubmitAnswer(r.Context(), s, r.FormValue("answer"))
		return "", err
	})
}

// SkipQuestion skips the current question.
func (h *UIHandler) SkipQuestion(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		return "", h.workspace.SkipQuestion(s)
	})
}

// NextQuestion advances the challenge.
func (h *UIHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		if err := h.workspace.NextQuestion(s); err != nil {
			return "", err
		}
		s.Lock()
		done := s.ChallengeComplete()
		s.Unlock()
		if done {
			return "Challenge complete! Generate new questions to try again.", nil
		}
		return "", nil
	})
}

// NewQuestions regenerates the challenge.
func (h *UIHandler) NewQuestions(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(s *domain.Session) (string, error) {
		if _, err := h.workspace.NewQuestions(r.Context(), s); err != nil {
			return "", err
		}
		return "New challenge questions generated.", nil
	})
}

// handle runs an action, stores its outcome as a flash message and
// redirects to the page.
func (h *UIHandler) handle(w http.ResponseWriter, r *http.Request, action func(s *domain.Session) (string, error)) {
	s, ok := GetSessionFromContext(r)
	if !ok {
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}

	notice, err := action(s)
	errMsg := ""
	if err != nil {
		errMsg = appErrors.UserMessage(err)
		h.logger.Warn("Action failed", "session_id", s.ID, "path", r.URL.Path, "error", err)
	}

	s.Lock()
	s.Flash(notice, errMsg)
	s.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
