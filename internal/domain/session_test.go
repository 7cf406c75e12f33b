package domain

import (
	"fmt"
	"testing"
)

func loadedSession() *Session {
	s := NewSession("s1")
	s.LoadDocument(NewDocumentState(&ExtractedDocument{Name: "sky.txt", Format: FormatTXT, Text: "The sky is blue."}))
	return s
}

func threeQuestions() []ChallengeQuestion {
	return []ChallengeQuestion{
		{Question: "Q1", ExpectedAnswer: "A1"},
		{Question: "Q2", ExpectedAnswer: "A2"},
		{Question: "Q3", ExpectedAnswer: "A3"},
	}
}

// TestSession_LoadDocumentResetsHistory tests that a new document drops
// everything derived from the previous one.
func TestSession_LoadDocumentResetsHistory(t *testing.T) {
	s := loadedSession()
	s.Mode = ModeChallenge
	s.AppendExchange(QARecord{Question: "q", Answer: "a", Justification: "j"})
	s.SetQuestions(threeQuestions())
	s.RecordAttempt(ChallengeAttempt{Question: "Q1", Score: 7})

	s.LoadDocument(NewDocumentState(&ExtractedDocument{Name: "other.txt", Text: "Grass is green."}))

	if s.Document.Name != "other.txt" {
		t.Fatalf("expected new document, got %s", s.Document.Name)
	}
	if s.Mode != ModeAsk {
		t.Errorf("expected mode reset to ask, got %s", s.Mode)
	}
	if len(s.Conversation) != 0 || len(s.Questions) != 0 || len(s.Attempts) != 0 {
		t.Errorf("expected history cleared, got %d exchanges, %d questions, %d attempts",
			len(s.Conversation), len(s.Questions), len(s.Attempts))
	}
	if s.LastEvaluation != nil || s.QuestionAnswered {
		t.Errorf("expected challenge state cleared")
	}
}

func TestSession_ClearDocument(t *testing.T) {
	s := loadedSession()
	s.AppendExchange(QARecord{Question: "q"})

	s.ClearDocument()

	if s.HasDocument() {
		t.Fatalf("expected no document after clear")
	}
	if len(s.Conversation) != 0 {
		t.Fatalf("expected conversation cleared")
	}
}

func TestSession_AppendExchangeKeepsMostRecent(t *testing.T) {
	s := loadedSession()
	for i := 0; i < MaxConversationHistory+5; i++ {
		s.AppendExchange(QARecord{Question: fmt.Sprintf("q%d", i)})
	}

	if len(s.Conversation) != MaxConversationHistory {
		t.Fatalf("expected %d exchanges, got %d", MaxConversationHistory, len(s.Conversation))
	}
	if s.Conversation[0].Question != "q5" {
		t.Errorf("expected oldest kept exchange q5, got %s", s.Conversation[0].Question)
	}

	recent := s.RecentExchanges(3)
	if len(recent) != 3 || recent[0].Question != "q12" || recent[2].Question != "q14" {
		t.Errorf("unexpected recent exchanges: %+v", recent)
	}
}

func answer(s *Session) {
	q, _ := s.CurrentChallenge()
	s.RecordAttempt(ChallengeAttempt{Question: q.Question, Score: 5})
}

func TestSession_ChallengeProgress(t *testing.T) {
	tests := []struct {
		name      string
		steps     func(s *Session) bool
		wantIndex int
		wantOK    bool
		complete  bool
	}{
		{
			name:      "skip from first question",
			steps:     func(s *Session) bool { return s.SkipQuestion() },
			wantIndex: 1,
			wantOK:    true,
		},
		{
			name: "skip refused on last question",
			steps: func(s *Session) bool {
				s.SkipQuestion()
				s.SkipQuestion()
				return s.SkipQuestion()
			},
			wantIndex: 2,
			wantOK:    false,
		},
		{
			name:      "next refused on unanswered first question",
			steps:     func(s *Session) bool { return s.NextQuestion() },
			wantIndex: 0,
			wantOK:    false,
		},
		{
			name: "next refused on unanswered last question",
			steps: func(s *Session) bool {
				s.SkipQuestion()
				s.SkipQuestion()
				return s.NextQuestion()
			},
			wantIndex: 2,
			wantOK:    false,
		},
		{
			name: "skip refused once answered",
			steps: func(s *Session) bool {
				answer(s)
				return s.SkipQuestion()
			},
			wantIndex: 0,
			wantOK:    false,
		},
		{
			name: "next past answered last question completes",
			steps: func(s *Session) bool {
				for i := 0; i < 2; i++ {
					answer(s)
					s.NextQuestion()
				}
				answer(s)
				return s.NextQuestion()
			},
			wantIndex: 3,
			wantOK:    true,
			complete:  true,
		},
		{
			name: "next after completion refused",
			steps: func(s *Session) bool {
				for i := 0; i < 3; i++ {
					answer(s)
					s.NextQuestion()
				}
				return s.NextQuestion()
			},
			wantIndex: 3,
			wantOK:    false,
			complete:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedSession()
			s.SetQuestions(threeQuestions())

			ok := tt.steps(s)

			if ok != tt.wantOK {
				t.Errorf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if s.CurrentQuestion != tt.wantIndex {
				t.Errorf("expected index %d, got %d", tt.wantIndex, s.CurrentQuestion)
			}
			if s.ChallengeComplete() != tt.complete {
				t.Errorf("expected complete=%v", tt.complete)
			}
		})
	}
}

func TestSession_RecordAttempt(t *testing.T) {
	s := loadedSession()
	s.SetQuestions(threeQuestions())

	s.RecordAttempt(ChallengeAttempt{Question: "Q1", Score: 8, Feedback: "Good"})

	if !s.QuestionAnswered {
		t.Fatalf("expected question marked answered")
	}
	if s.LastEvaluation == nil || s.LastEvaluation.Score != 8 {
		t.Fatalf("expected last evaluation stored")
	}

	s.NextQuestion()
	if s.QuestionAnswered || s.LastEvaluation != nil {
		t.Fatalf("expected answer state reset on next question")
	}
	if len(s.Attempts) != 1 {
		t.Fatalf("expected attempts kept across questions")
	}
}

func TestSession_TakeFlash(t *testing.T) {
	s := NewSession("s1")
	s.Flash("saved", "")

	notice, errMsg := s.TakeFlash()
	if notice != "saved" || errMsg != "" {
		t.Fatalf("unexpected flash: %q %q", notice, errMsg)
	}
	if notice, _ = s.TakeFlash(); notice != "" {
		t.Fatalf("expected flash to be consumed")
	}
}
