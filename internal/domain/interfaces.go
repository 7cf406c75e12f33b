package domain

import (
	"context"
	"time"
)

// DocumentProcessor validates uploads and extracts their text.
type DocumentProcessor interface {
	Validate(filename string, size int64) error
	Process(ctx context.Context, upload Upload) (*ExtractedDocument, error)
}

// AssistantService runs the prompt-mediated operations over a document.
type AssistantService interface {
	Summarize(ctx context.Context, documentText string) (string, error)
	Answer(ctx context.Context, question, documentText string, history []QARecord) (*Answer, error)
	Evaluate(ctx context.Context, question ChallengeQuestion, userAnswer, documentText string) (*Evaluation, error)
}

// QuestionGenerator produces challenge questions for a document.
type QuestionGenerator interface {
	Generate(ctx context.Context, documentText string, n int) ([]ChallengeQuestion, error)
}

// ArchiveService keeps a copy of accepted uploads. Nothing reads it back.
type ArchiveService interface {
	Archive(ctx context.Context, sessionID string, doc *ExtractedDocument) error
}

// SessionRepository stores sessions in process memory.
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Count() int
}

// WorkspaceService is the per-session use-case layer behind the handlers.
type WorkspaceService interface {
	Session(sessionID string) (*Session, bool)
	NewSession() *Session
	ProcessDocument(ctx context.Context, session *Session, upload Upload) (*DocumentState, error)
	ClearDocument(session *Session)
	SetMode(ctx context.Context, session *Session, mode Mode) error
	Ask(ctx context.Context, session *Session, question string) (*QARecord, error)
	NewQuestions(ctx context.Context, session *Session) ([]ChallengeQuestion, error)
	SubmitAnswer(ctx context.Context, session *Session, answer string) (*ChallengeAttempt, error)
	SkipQuestion(session *Session) error
	NextQuestion(session *Session) error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetArchiveUploads() bool
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFile() string
	GetSessionTTL() time.Duration
	GetLLMProvider() string
	GetLLMModel() string
	GetLLMTimeout() time.Duration
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetAnthropicAPIKey() string
	GetGeminiAPIKey() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseBucket() string
	GetCORSAllowedOrigins() []string
}
