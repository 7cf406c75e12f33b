package domain

import (
	"sync"
	"time"
)

// Mode is the interaction mode selected in a session.
type Mode string

const (
	ModeAsk       Mode = "ask"
	ModeChallenge Mode = "challenge"
)

const (
	// MaxConversationHistory is how many Ask-Anything exchanges a session keeps.
	MaxConversationHistory = 10
	// ChallengeQuestionCount is how many questions one generation request yields.
	ChallengeQuestionCount = 3
)

// QARecord is one Ask-Anything exchange.
type QARecord struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Justification string    `json:"justification"`
	AskedAt       time.Time `json:"asked_at"`
}

// ChallengeQuestion is a generated comprehension question.
type ChallengeQuestion struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
	Difficulty     string `json:"difficulty"`
	Type           string `json:"type"`
}

// ChallengeAttempt is a scored answer to a challenge question.
type ChallengeAttempt struct {
	Question       string    `json:"question"`
	ExpectedAnswer string    `json:"expected_answer"`
	UserAnswer     string    `json:"user_answer"`
	Evaluation     string    `json:"evaluation"`
	Feedback       string    `json:"feedback"`
	Score          int       `json:"score"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// Answer is the model's reply to an Ask-Anything question.
type Answer struct {
	Answer        string `json:"answer"`
	Justification string `json:"justification"`
}

// Evaluation is the model's verdict on a challenge answer.
type Evaluation struct {
	Evaluation string `json:"evaluation"`
	Feedback   string `json:"feedback"`
	Score      int    `json:"score"`
}

// Session holds everything one browser session knows. Callers must hold
// the lock (Lock/Unlock) while reading or mutating the fields.
type Session struct {
	mu sync.Mutex

	ID               string              `json:"id"`
	Document         *DocumentState      `json:"document,omitempty"`
	Mode             Mode                `json:"mode"`
	Conversation     []QARecord          `json:"conversation"`
	Questions        []ChallengeQuestion `json:"questions"`
	CurrentQuestion  int                 `json:"current_question"`
	QuestionAnswered bool                `json:"question_answered"`
	Attempts         []ChallengeAttempt  `json:"attempts"`
	LastEvaluation   *ChallengeAttempt   `json:"last_evaluation,omitempty"`

	// One-shot messages shown on the next page render.
	Notice string `json:"-"`
	Error  string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session in Ask-Anything mode.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Mode:      ModeAsk,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// HasDocument reports whether a processed document is loaded.
func (s *Session) HasDocument() bool {
	return s.Document != nil && s.Document.Processed
}

// LoadDocument replaces the current document and drops every piece of
// history that referred to the previous one.
func (s *Session) LoadDocument(doc *DocumentState) {
	s.Document = doc
	s.resetHistory()
	s.touch()
}

// ClearDocument unloads the document and its history.
func (s *Session) ClearDocument() {
	s.Document = nil
	s.resetHistory()
	s.touch()
}

func (s *Session) resetHistory() {
	s.Mode = ModeAsk
	s.Conversation = nil
	s.Questions = nil
	s.CurrentQuestion = 0
	s.QuestionAnswered = false
	s.Attempts = nil
	s.LastEvaluation = nil
}

// AppendExchange records an Ask-Anything exchange, keeping only the most
// recent MaxConversationHistory entries.
func (s *Session) AppendExchange(rec QARecord) {
	s.Conversation = append(s.Conversation, rec)
	if over := len(s.Conversation) - MaxConversationHistory; over > 0 {
		s.Conversation = append([]QARecord(nil), s.Conversation[over:]...)
	}
	s.touch()
}

// RecentExchanges returns up to n of the latest exchanges, oldest first.
func (s *Session) RecentExchanges(n int) []QARecord {
	if n <= 0 || len(s.Conversation) == 0 {
		return nil
	}
	start := len(s.Conversation) - n
	if start < 0 {
		start = 0
	}
	return append([]QARecord(nil), s.Conversation[start:]...)
}

// SetQuestions installs a new question set and restarts the challenge.
func (s *Session) SetQuestions(questions []ChallengeQuestion) {
	s.Questions = questions
	s.CurrentQuestion = 0
	s.QuestionAnswered = false
	s.LastEvaluation = nil
	s.touch()
}

// CurrentChallenge returns the question being answered, if any.
func (s *Session) CurrentChallenge() (ChallengeQuestion, bool) {
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.Questions) {
		return ChallengeQuestion{}, false
	}
	return s.Questions[s.CurrentQuestion], true
}

// ChallengeComplete reports whether every generated question was passed.
func (s *Session) ChallengeComplete() bool {
	return len(s.Questions) > 0 && s.CurrentQuestion >= len(s.Questions)
}

// RecordAttempt stores a scored answer for the current question.
func (s *Session) RecordAttempt(a ChallengeAttempt) {
	s.Attempts = append(s.Attempts, a)
	last := a
	s.LastEvaluation = &last
	s.QuestionAnswered = true
	s.touch()
}

// SkipQuestion moves on without answering. The last question and an
// answered question cannot be skipped.
func (s *Session) SkipQuestion() bool {
	if s.QuestionAnswered || s.CurrentQuestion >= len(s.Questions)-1 {
		return false
	}
	s.CurrentQuestion++
	s.QuestionAnswered = false
	s.LastEvaluation = nil
	s.touch()
	return true
}

// NextQuestion advances after an answer. Moving past the last question
// marks the challenge complete.
func (s *Session) NextQuestion() bool {
	if !s.QuestionAnswered || s.CurrentQuestion >= len(s.Questions) {
		return false
	}
	s.CurrentQuestion++
	s.QuestionAnswered = false
	s.LastEvaluation = nil
	s.touch()
	return true
}

// Flash sets the one-shot messages for the next render.
func (s *Session) Flash(notice, errMsg string) {
	s.Notice = notice
	s.Error = errMsg
}

// TakeFlash returns and clears the one-shot messages.
func (s *Session) TakeFlash() (notice, errMsg string) {
	notice, errMsg = s.Notice, s.Error
	s.Notice, s.Error = "", ""
	return notice, errMsg
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
