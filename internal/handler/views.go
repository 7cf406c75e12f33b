package handler

import "research-assistant/internal/domain"

// questionView is a challenge question without its expected answer.
type questionView struct {
	Number     int    `json:"number"`
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

// challengeView is the challenge state returned to clients.
type challengeView struct {
	Active          bool                      `json:"active"`
	Questions       []questionView            `json:"questions"`
	CurrentQuestion int                       `json:"current_question"`
	Total           int                       `json:"total"`
	Current         *questionView             `json:"current,omitempty"`
	Answered        bool                      `json:"answered"`
	CanSkip         bool                      `json:"can_skip"`
	Complete        bool                      `json:"complete"`
	LastEvaluation  *domain.ChallengeAttempt  `json:"last_evaluation,omitempty"`
	Attempts        []domain.ChallengeAttempt `json:"attempts"`
	AverageScore    float64                   `json:"average_score"`
}

// buildChallengeView expects the session lock to be held.
func buildChallengeView(s *domain.Session) challengeView {
	v := challengeView{
		Active:          len(s.Questions) > 0,
		Questions:       make([]questionView, 0, len(s.Questions)),
		CurrentQuestion: s.CurrentQuestion,
		Total:           len(s.Questions),
		Answered:        s.QuestionAnswered,
		Complete:        s.ChallengeComplete(),
		Attempts:        append([]domain.ChallengeAttempt{}, s.Attempts...),
	}
	for i, q := range s.Questions {
		v.Questions = append(v.Questions, questionView{
			Number:     i + 1,
			Question:   q.Question,
			Difficulty: q.Difficulty,
			Type:       q.Type,
		})
	}
	if _, ok := s.CurrentChallenge(); ok {
		cur := v.Questions[s.CurrentQuestion]
		v.Current = &cur
		v.CanSkip = !s.QuestionAnswered && s.CurrentQuestion < len(s.Questions)-1
	}
	if s.LastEvaluation != nil {
		last := *s.LastEvaluation
		v.LastEvaluation = &last
	}
	if len(s.Attempts) > 0 {
		total := 0
		for _, a := range s.Attempts {
			total += a.Score
		}
		v.AverageScore = float64(total) / float64(len(s.Attempts))
	}
	return v
}

// recentHistory returns up to n exchanges, newest first.
func recentHistory(s *domain.Session, n int) []domain.QARecord {
	recent := s.RecentExchanges(n)
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent
}

// documentView copies the document state so it can be used after unlock.
func documentView(s *domain.Session) *domain.DocumentState {
	if !s.HasDocument() {
		return nil
	}
	d := *s.Document
	return &d
}
