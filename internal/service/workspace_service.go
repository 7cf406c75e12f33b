package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"research-assistant/internal/domain"
	appErrors "research-assistant/pkg/errors"

	"github.com/google/uuid"
)

// WorkspaceServiceImpl orchestrates one session's document, Ask-Anything
// history and challenge. Every operation holds the session lock for its
// whole duration, model calls included.
type WorkspaceServiceImpl struct {
	sessions  domain.SessionRepository
	processor domain.DocumentProcessor
	assistant domain.AssistantService
	questions domain.QuestionGenerator
	archive   domain.ArchiveService
	logger    domain.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	sessions domain.SessionRepository,
	processor domain.DocumentProcessor,
	assistant domain.AssistantService,
	questions domain.QuestionGenerator,
	archive domain.ArchiveService,
	logger domain.Logger,
) domain.WorkspaceService {
	return &WorkspaceServiceImpl{
		sessions:  sessions,
		processor: processor,
		assistant: assistant,
		questions: questions,
		archive:   archive,
		logger:    logger,
	}
}

// Session looks up a live session.
func (w *WorkspaceServiceImpl) Session(sessionID string) (*domain.Session, bool) {
	if sessionID == "" {
		return nil, false
	}
	return w.sessions.Get(sessionID)
}

// NewSession creates and stores an empty session.
func (w *WorkspaceServiceImpl) NewSession() *domain.Session {
	s := domain.NewSession(uuid.NewString())
	w.sessions.Save(s)
	w.logger.Debug("Session created", "session_id", s.ID)
	return s
}

// ProcessDocument extracts an upload and makes it the session's document.
// A failed extraction leaves the session untouched. A failed summary keeps
// the document loaded and records the error on it.
func (w *WorkspaceServiceImpl) ProcessDocument(ctx context.Context, session *domain.Session, upload domain.Upload) (*domain.DocumentState, error) {
	session.Lock()
	defer w.release(session)

	doc, err := w.processor.Process(ctx, upload)
	if err != nil {
		return nil, err
	}

	if err := w.archive.Archive(ctx, session.ID, doc); err != nil {
		w.logger.Warn("Failed to archive upload", "session_id", session.ID, "filename", doc.Name, "error", err)
	}

	state := domain.NewDocumentState(doc)
	summary, err := w.assistant.Summarize(ctx, doc.Text)
	if err != nil {
		w.logger.Error("Failed to summarize document", err, "session_id", session.ID, "filename", doc.Name)
		state.SummaryError = appErrors.UserMessage(err)
	} else {
		state.Summary = summary
	}

	session.LoadDocument(state)
	w.logger.Info("Document loaded", "session_id", session.ID, "filename", state.Name, "chars", state.CharCount)
	return state, nil
}

// ClearDocument unloads the document and everything derived from it.
func (w *WorkspaceServiceImpl) ClearDocument(session *domain.Session) {
	session.Lock()
	defer w.release(session)

	session.ClearDocument()
	w.logger.Info("Document cleared", "session_id", session.ID)
}

// SetMode switches between Ask-Anything and Challenge. Entering Challenge
// without questions generates a set.
func (w *WorkspaceServiceImpl) SetMode(ctx context.Context, session *domain.Session, mode domain.Mode) error {
	session.Lock()
	defer w.release(session)

	switch mode {
	case domain.ModeAsk:
		session.Mode = mode
		return nil
	case domain.ModeChallenge:
		if !session.HasDocument() {
			return mapDomainError(domain.ErrNoDocument)
		}
		session.Mode = mode
		if len(session.Questions) > 0 {
			return nil
		}
		return w.generateQuestions(ctx, session)
	default:
		return mapDomainError(domain.ErrUnknownMode)
	}
}

// Ask answers a question about the loaded document and records the exchange.
func (w *WorkspaceServiceImpl) Ask(ctx context.Context, session *domain.Session, question string) (*domain.QARecord, error) {
	session.Lock()
	defer w.release(session)

	if !session.HasDocument() {
		return nil, mapDomainError(domain.ErrNoDocument)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, mapDomainError(domain.ErrEmptyQuestion)
	}

	answer, err := w.assistant.Answer(ctx, question, session.Document.Text, session.RecentExchanges(historyInPrompt))
	if err != nil {
		return nil, err
	}

	rec := domain.QARecord{
		Question:      question,
		Answer:        answer.Answer,
		Justification: answer.Justification,
		AskedAt:       time.Now().UTC(),
	}
	session.AppendExchange(rec)
	return &rec, nil
}

// NewQuestions replaces the challenge with a freshly generated set.
func (w *WorkspaceServiceImpl) NewQuestions(ctx context.Context, session *domain.Session) ([]domain.ChallengeQuestion, error) {
	session.Lock()
	defer w.release(session)

	if !session.HasDocument() {
		return nil, mapDomainError(domain.ErrNoDocument)
	}
	session.Mode = domain.ModeChallenge
	if err := w.generateQuestions(ctx, session); err != nil {
		return nil, err
	}
	return append([]domain.ChallengeQuestion(nil), session.Questions...), nil
}

// generateQuestions expects the session lock to be held.
func (w *WorkspaceServiceImpl) generateQuestions(ctx context.Context, session *domain.Session) error {
	questions, err := w.questions.Generate(ctx, session.Document.Text, domain.ChallengeQuestionCount)
	if err != nil {
		return err
	}
	session.SetQuestions(questions)
	w.logger.Info("Challenge questions generated", "session_id", session.ID, "count", len(questions))
	return nil
}

// SubmitAnswer scores the user's answer to the current question.
func (w *WorkspaceServiceImpl) SubmitAnswer(ctx context.Context, session *domain.Session, answer string) (*domain.ChallengeAttempt, error) {
	session.Lock()
	defer w.release(session)

	if !session.HasDocument() {
		return nil, mapDomainError(domain.ErrNoDocument)
	}
	question, ok := session.CurrentChallenge()
	if !ok {
		return nil, mapDomainError(domain.ErrNoActiveQuestion)
	}
	if session.QuestionAnswered {
		return nil, mapDomainError(domain.ErrAlreadyAnswered)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, mapDomainError(domain.ErrEmptyAnswer)
	}

	eval, err := w.assistant.Evaluate(ctx, question, answer, session.Document.Text)
	if err != nil {
		return nil, err
	}

	attempt := domain.ChallengeAttempt{
		Question:       question.Question,
		ExpectedAnswer: question.ExpectedAnswer,
		UserAnswer:     answer,
		Evaluation:     eval.Evaluation,
		Feedback:       eval.Feedback,
		Score:          eval.Score,
		AnsweredAt:     time.Now().UTC(),
	}
	session.RecordAttempt(attempt)
	return &attempt, nil
}

// SkipQuestion moves to the next question without answering.
func (w *WorkspaceServiceImpl) SkipQuestion(session *domain.Session) error {
	session.Lock()
	defer w.release(session)

	if _, ok := session.CurrentChallenge(); !ok {
		return mapDomainError(domain.ErrNoActiveQuestion)
	}
	if session.QuestionAnswered {
		return mapDomainError(domain.ErrAlreadyAnswered)
	}
	if !session.SkipQuestion() {
		return mapDomainError(domain.ErrCannotSkip)
	}
	return nil
}

// NextQuestion advances once the current question is answered; past the
// last question the challenge is complete.
func (w *WorkspaceServiceImpl) NextQuestion(session *domain.Session) error {
	session.Lock()
	defer w.release(session)

	switch {
	case len(session.Questions) == 0:
		return mapDomainError(domain.ErrNoActiveQuestion)
	case session.ChallengeComplete():
		return mapDomainError(domain.ErrChallengeComplete)
	case !session.QuestionAnswered:
		return mapDomainError(domain.ErrNotAnswered)
	}
	session.NextQuestion()
	return nil
}

// release refreshes the session's expiry and drops its lock.
func (w *WorkspaceServiceImpl) release(session *domain.Session) {
	w.sessions.Save(session)
	session.Unlock()
}

// mapDomainError turns a domain sentinel into the AppError shown to users.
func mapDomainError(err error) error {
	var appErr *appErrors.AppError
	switch {
	case errors.Is(err, domain.ErrNoDocument):
		appErr = appErrors.NewNotFoundError("Please upload and process a document first.")
	case errors.Is(err, domain.ErrNoActiveQuestion):
		appErr = appErrors.NewNotFoundError("No active challenge question. Generate new questions to start.")
	case errors.Is(err, domain.ErrEmptyQuestion):
		appErr = appErrors.NewValidationError("Please enter a question.")
	case errors.Is(err, domain.ErrEmptyAnswer):
		appErr = appErrors.NewValidationError("Please provide an answer before submitting.")
	case errors.Is(err, domain.ErrAlreadyAnswered):
		appErr = appErrors.NewValidationError("This question has already been answered. Move on to the next one.")
	case errors.Is(err, domain.ErrNotAnswered):
		appErr = appErrors.NewValidationError("Submit an answer before moving to the next question.")
	case errors.Is(err, domain.ErrCannotSkip):
		appErr = appErrors.NewValidationError("The last question cannot be skipped.")
	case errors.Is(err, domain.ErrChallengeComplete):
		appErr = appErrors.NewValidationError("Challenge complete. Generate new questions to play again.")
	case errors.Is(err, domain.ErrUnknownMode):
		appErr = appErrors.NewValidationError("Unknown mode. Use \"ask\" or \"challenge\".")
	default:
		return appErrors.NewInternalError("Unexpected error", err)
	}
	appErr.Cause = err
	return appErr
}
