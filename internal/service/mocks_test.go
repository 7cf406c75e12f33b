package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"research-assistant/internal/domain"
	"research-assistant/internal/llm"
)

// MockLogger discards everything.
type MockLogger struct{}

func (l *MockLogger) Info(msg string, fields ...interface{})             {}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockLogger) Warn(msg string, fields ...interface{})             {}

// MockConfig implements domain.Config for tests.
type MockConfig struct {
	maxFileSize    int64
	uploadPath     string
	archiveUploads bool
	llmTimeout     time.Duration
}

func NewMockConfig() *MockConfig {
	return &MockConfig{
		maxFileSize: 10 * 1024 * 1024,
		uploadPath:  "./uploads",
		llmTimeout:  5 * time.Second,
	}
}

func (c *MockConfig) GetServerPort() string           { return "8501" }
func (c *MockConfig) GetUploadPath() string           { return c.uploadPath }
func (c *MockConfig) GetArchiveUploads() bool         { return c.archiveUploads }
func (c *MockConfig) GetMaxFileSize() int64           { return c.maxFileSize }
func (c *MockConfig) GetLogLevel() string             { return "debug" }
func (c *MockConfig) GetLogFile() string              { return "" }
func (c *MockConfig) GetSessionTTL() time.Duration    { return time.Hour }
func (c *MockConfig) GetLLMProvider() string          { return "mock" }
func (c *MockConfig) GetLLMModel() string             { return "" }
func (c *MockConfig) GetLLMTimeout() time.Duration    { return c.llmTimeout }
func (c *MockConfig) GetOpenAIAPIKey() string         { return "" }
func (c *MockConfig) GetOpenAIBaseURL() string        { return "" }
func (c *MockConfig) GetAnthropicAPIKey() string      { return "" }
func (c *MockConfig) GetGeminiAPIKey() string         { return "" }
func (c *MockConfig) GetSupabaseURL() string          { return "" }
func (c *MockConfig) GetSupabaseKey() string          { return "" }
func (c *MockConfig) GetSupabaseBucket() string       { return "uploads" }
func (c *MockConfig) GetCORSAllowedOrigins() []string { return nil }

// MockSessionRepository is a map-backed session store.
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	saves    int
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*domain.Session)}
}

func (m *MockSessionRepository) Save(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	m.saves++
}

func (m *MockSessionRepository) Get(id string) (*domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *MockSessionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MockArchive records archived documents and can be told to fail.
type MockArchive struct {
	archived []string
	err      error
}

func (m *MockArchive) Archive(_ context.Context, sessionID string, doc *domain.ExtractedDocument) error {
	if m.err != nil {
		return m.err
	}
	m.archived = append(m.archived, sessionID+"/"+doc.Name)
	return nil
}

// fakePDF serves canned page texts; a page listed in failing returns an error.
type fakePDF struct {
	pages   []string
	failing map[int]bool
	closed  bool
}

func (f *fakePDF) NumPage() int { return len(f.pages) }

func (f *fakePDF) Text(i int) (string, error) {
	if f.failing[i] {
		return "", errors.New("broken page")
	}
	return f.pages[i], nil
}

func (f *fakePDF) Close() error {
	f.closed = true
	return nil
}

func newTestPDFProcessor(doc *fakePDF) *PDFProcessor {
	p := NewPDFProcessor(&MockLogger{})
	p.open = func([]byte) (pdfDocument, error) { return doc, nil }
	return p
}

func newTestTruncator() *Truncator {
	return NewTruncator(&MockLogger{})
}

func newTestAssistant(mock *llm.MockProvider) *AssistantServiceImpl {
	return NewAssistantService(mock, newTestTruncator(), NewMockConfig(), &MockLogger{}).(*AssistantServiceImpl)
}

func newTestQuestionGenerator(mock *llm.MockProvider) *QuestionGeneratorService {
	return NewQuestionGenerator(mock, newTestTruncator(), NewMockConfig(), &MockLogger{}).(*QuestionGeneratorService)
}
