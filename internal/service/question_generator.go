package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"research-assistant/internal/domain"
	"research-assistant/internal/llm"
	appErrors "research-assistant/pkg/errors"
)

const (
	questionTokenBudget = 2500
	questionMaxTokens   = 800
	questionTemperature = 0.3

	defaultDifficulty   = "Medium"
	defaultQuestionType = "comprehension"
)

// questionSchema describes one generated question.
var questionSchema = &llm.Schema{
	Name: "challenge-question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question":        map[string]any{"type": "string", "minLength": 1},
			"expected_answer": map[string]any{"type": "string", "minLength": 1},
			"difficulty":      map[string]any{"type": "string"},
			"type":            map[string]any{"type": "string"},
		},
		"required": []string{"question", "expected_answer", "difficulty"},
	},
}

// genericQuestions fill the set when the model returns too few usable items.
var genericQuestions = []domain.ChallengeQuestion{
	{
		Question:       "What is the main topic or theme discussed in this document?",
		ExpectedAnswer: "The main topic should be identified from the document content",
		Difficulty:     "Easy",
		Type:           "comprehension",
	},
	{
		Question:       "What are the key findings or conclusions presented in the document?",
		ExpectedAnswer: "Key findings should be summarized from the document",
		Difficulty:     "Medium",
		Type:           "analysis",
	},
	{
		Question:       "Based on the information provided, what implications or applications can be drawn?",
		ExpectedAnswer: "Implications should be inferred from the document content",
		Difficulty:     "Hard",
		Type:           "inference",
	},
}

// QuestionGeneratorService asks the model for challenge questions.
type QuestionGeneratorService struct {
	provider  llm.Provider
	truncator *Truncator
	timeout   time.Duration
	logger    domain.Logger
}

// NewQuestionGenerator creates a new question generator
func NewQuestionGenerator(provider llm.Provider, truncator *Truncator, config domain.Config, logger domain.Logger) domain.QuestionGenerator {
	return &QuestionGeneratorService{
		provider:  provider,
		truncator: truncator,
		timeout:   config.GetLLMTimeout(),
		logger:    logger,
	}
}

// Generate returns exactly n questions. A failed model call is an error;
// a reply with fewer than n usable questions is topped up.
func (g *QuestionGeneratorService) Generate(ctx context.Context, documentText string, n int) ([]domain.ChallengeQuestion, error) {
	if n <= 0 {
		n = domain.ChallengeQuestionCount
	}

	text, err := complete(ctx, g.provider, g.timeout, opQuestions, llm.UserPrompt(g.buildPrompt(documentText, n), questionMaxTokens, questionTemperature))
	if err != nil {
		return nil, appErrors.NewUpstreamError("Error generating questions", err)
	}

	questions, err := parseQuestionJSON(text)
	if err != nil {
		g.logger.Warn("Question reply was not a JSON array, parsing lines", "error", err)
		questions = parseQuestionLines(text)
	}

	if len(questions) > n {
		questions = questions[:n]
	}
	if len(questions) < n {
		g.logger.Warn("Model returned too few questions, padding", "got", len(questions), "want", n)
		questions = padQuestions(questions, n)
	}
	return questions, nil
}

func (g *QuestionGeneratorService) buildPrompt(documentText string, n int) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Based on the following document, generate exactly %d challenging questions that test:\n", n))
	prompt.WriteString("1. Reading comprehension\n2. Critical thinking\n3. Analysis and inference\n4. Understanding of key concepts\n\n")
	prompt.WriteString("Document:\n")
	prompt.WriteString(g.truncator.Truncate(documentText, questionTokenBudget))
	prompt.WriteString("\n\nFor each question, provide:\n")
	prompt.WriteString("- The question text\n- The expected answer or key points\n- Difficulty level (Easy/Medium/Hard)\n\n")
	prompt.WriteString("Generate questions that require understanding the document content, not just memorization.\n")
	prompt.WriteString("Avoid simple factual questions. Focus on analysis, comparison, inference, and application.\n\n")
	prompt.WriteString("Format your response as a JSON array with this structure:\n")
	prompt.WriteString(`[
  {
    "question": "Your question here",
    "expected_answer": "Key points for the answer",
    "difficulty": "Easy/Medium/Hard",
    "type": "comprehension/analysis/inference"
  }
]`)
	prompt.WriteString("\n\nQuestions:")
	return prompt.String()
}

// cleanModelOutput strips markdown code fences around a reply.
func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// parseQuestionJSON decodes the array between the first '[' and the last
// ']' and keeps the items that satisfy questionSchema.
func parseQuestionJSON(text string) ([]domain.ChallengeQuestion, error) {
	cleaned := cleanModelOutput(text)
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in reply")
	}

	var items []any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("decode question array: %w", err)
	}

	questions := make([]domain.ChallengeQuestion, 0, len(items))
	for _, item := range items {
		if err := llm.ValidateValue(questionSchema, item); err != nil {
			continue
		}
		obj := item.(map[string]any)
		q := domain.ChallengeQuestion{
			Question:       strings.TrimSpace(stringField(obj, "question")),
			ExpectedAnswer: strings.TrimSpace(stringField(obj, "expected_answer")),
			Difficulty:     strings.TrimSpace(stringField(obj, "difficulty")),
			Type:           strings.TrimSpace(stringField(obj, "type")),
		}
		if q.Question == "" || q.ExpectedAnswer == "" {
			continue
		}
		if q.Difficulty == "" {
			q.Difficulty = defaultDifficulty
		}
		if q.Type == "" {
			q.Type = defaultQuestionType
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

var questionLinePrefixes = []string{"1.", "2.", "3.", "Question:", "Q:"}

// parseQuestionLines picks out lines that look like numbered questions.
func parseQuestionLines(text string) []domain.ChallengeQuestion {
	var questions []domain.ChallengeQuestion
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range questionLinePrefixes {
			if strings.HasPrefix(line, prefix) {
				questions = append(questions, domain.ChallengeQuestion{
					Question:       line,
					ExpectedAnswer: "Based on document content",
					Difficulty:     defaultDifficulty,
					Type:           defaultQuestionType,
				})
				break
			}
		}
	}
	return questions
}

// padQuestions tops the list up to n with generic questions not already asked.
func padQuestions(questions []domain.ChallengeQuestion, n int) []domain.ChallengeQuestion {
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		seen[q.Question] = true
	}
	for i := 0; len(questions) < n; i++ {
		g := genericQuestions[i%len(genericQuestions)]
		if seen[g.Question] && i < len(genericQuestions) {
			continue
		}
		questions = append(questions, g)
	}
	return questions
}
