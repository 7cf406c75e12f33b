package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"research-assistant/internal/domain"
	"research-assistant/internal/llm"
	appErrors "research-assistant/pkg/errors"
)

const (
	summaryWordLimit = 150

	summaryTokenBudget    = 2500
	answerTokenBudget     = 2500
	evaluationTokenBudget = 2000

	summaryMaxTokens    = 200
	answerMaxTokens     = 400
	evaluationMaxTokens = 300

	reasoningTemperature = 0.1

	// historyInPrompt is how many earlier exchanges the answer prompt replays.
	historyInPrompt = 3

	defaultJustification = "Response is grounded in the document content."
	emptyJustification   = "Based on the document content provided."

	defaultEvaluation = "Partially Correct"
	defaultScore      = 5
	minScore          = 1
	maxScore          = 10
)

// Operation labels used for logging and metrics.
const (
	opSummary    = "summary"
	opAnswer     = "answer"
	opQuestions  = "questions"
	opEvaluation = "evaluation"
)

var justificationMarker = regexp.MustCompile(`(?i)justification\s*:`)

// AssistantServiceImpl runs the prompt-mediated operations.
type AssistantServiceImpl struct {
	provider  llm.Provider
	truncator *Truncator
	timeout   time.Duration
	logger    domain.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(provider llm.Provider, truncator *Truncator, config domain.Config, logger domain.Logger) domain.AssistantService {
	return &AssistantServiceImpl{
		provider:  provider,
		truncator: truncator,
		timeout:   config.GetLLMTimeout(),
		logger:    logger,
	}
}

// Summarize asks for a summary of at most 150 words.
func (s *AssistantServiceImpl) Summarize(ctx context.Context, documentText string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Please provide a concise summary of the following document in exactly 150 words or less.\n")
	prompt.WriteString("Focus on the main topics, key findings, and important conclusions.\n\n")
	prompt.WriteString("Document:\n")
	prompt.WriteString(s.truncator.Truncate(documentText, summaryTokenBudget))
	prompt.WriteString("\n\nSummary (150 words or less):")

	text, err := complete(ctx, s.provider, s.timeout, opSummary, llm.UserPrompt(prompt.String(), summaryMaxTokens, reasoningTemperature))
	if err != nil {
		return "", appErrors.NewUpstreamError("Error generating summary", err)
	}
	return limitWords(text, summaryWordLimit), nil
}

// Answer answers a question from the document and returns the model's
// justification separately.
func (s *AssistantServiceImpl) Answer(ctx context.Context, question, documentText string, history []domain.QARecord) (*domain.Answer, error) {
	var prompt strings.Builder
	prompt.WriteString("You are an AI assistant analyzing a document. Answer the user's question based ONLY on the information provided in the document.\n\n")
	prompt.WriteString("Rules:\n")
	prompt.WriteString("1. Base your answer strictly on the document content\n")
	prompt.WriteString("2. If information is not in the document, say \"This information is not available in the document\"\n")
	prompt.WriteString("3. Provide a clear justification referencing specific parts of the document\n")
	prompt.WriteString("4. Be concise but comprehensive\n")
	prompt.WriteString("5. Do not make assumptions or add external knowledge\n\n")
	prompt.WriteString("Document:\n")
	prompt.WriteString(s.truncator.Truncate(documentText, answerTokenBudget))
	prompt.WriteString("\n\n")

	if len(history) > historyInPrompt {
		history = history[len(history)-historyInPrompt:]
	}
	if len(history) > 0 {
		prompt.WriteString("Previous conversation:\n")
		for _, h := range history {
			prompt.WriteString(fmt.Sprintf("Q: %s\nA: %s\n", h.Question, h.Answer))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\nPlease provide your answer, then a line starting with \"Justification:\" that references specific parts of the document.\n\nAnswer:")

	text, err := complete(ctx, s.provider, s.timeout, opAnswer, llm.UserPrompt(prompt.String(), answerMaxTokens, reasoningTemperature))
	if err != nil {
		return nil, appErrors.NewUpstreamError("Error answering question", err)
	}
	return splitJustification(text), nil
}

// Evaluate scores a user's answer to a challenge question.
func (s *AssistantServiceImpl) Evaluate(ctx context.Context, question domain.ChallengeQuestion, userAnswer, documentText string) (*domain.Evaluation, error) {
	var prompt strings.Builder
	prompt.WriteString("You are evaluating a user's answer to a comprehension question about a document.\n\n")
	prompt.WriteString("Document excerpt:\n")
	prompt.WriteString(s.truncator.Truncate(documentText, evaluationTokenBudget))
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Question: %s\n\n", question.Question))
	prompt.WriteString(fmt.Sprintf("Expected information: %s\n\n", question.ExpectedAnswer))
	prompt.WriteString(fmt.Sprintf("User's answer: %s\n\n", userAnswer))
	prompt.WriteString("Please evaluate the user's answer and provide:\n")
	prompt.WriteString("1. A brief evaluation (Correct/Partially Correct/Incorrect)\n")
	prompt.WriteString("2. Constructive feedback with reference to the document\n")
	prompt.WriteString("3. A score from 1-10\n\n")
	prompt.WriteString("Format your response as:\n")
	prompt.WriteString("Evaluation: [Correct/Partially Correct/Incorrect]\n")
	prompt.WriteString("Feedback: [Your feedback with document references]\n")
	prompt.WriteString("Score: [1-10]")

	text, err := complete(ctx, s.provider, s.timeout, opEvaluation, llm.UserPrompt(prompt.String(), evaluationMaxTokens, reasoningTemperature))
	if err != nil {
		return nil, appErrors.NewUpstreamError("Error evaluating answer", err)
	}
	return parseEvaluation(text), nil
}

// complete runs one bounded model call tagged with its operation.
func complete(ctx context.Context, provider llm.Provider, timeout time.Duration, op string, req llm.Request) (string, error) {
	ctx = llm.WithOperation(ctx, op)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// splitJustification separates the answer from the text after the first
// "Justification:" marker.
func splitJustification(text string) *domain.Answer {
	loc := justificationMarker.FindStringIndex(text)
	if loc == nil {
		return &domain.Answer{Answer: text, Justification: defaultJustification}
	}

	// Markdown emphasis around the marker ("**Justification:**") is dropped.
	answer := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text[:loc[0]]), "*"))
	justification := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(text[loc[1]:]), "*"))
	if justification == "" {
		justification = emptyJustification
	}
	if answer == "" {
		answer = justification
	}
	return &domain.Answer{Answer: answer, Justification: justification}
}

// parseEvaluation reads the Evaluation/Feedback/Score lines, falling back
// to a neutral verdict with the whole reply as feedback.
func parseEvaluation(text string) *domain.Evaluation {
	eval := &domain.Evaluation{
		Evaluation: defaultEvaluation,
		Feedback:   text,
		Score:      defaultScore,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "*#- "))
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.Trim(value, "* "))
		switch strings.ToLower(strings.Trim(label, "* ")) {
		case "evaluation":
			if value != "" {
				eval.Evaluation = value
			}
		case "feedback":
			if value != "" {
				eval.Feedback = value
			}
		case "score":
			eval.Score = parseScore(value)
		}
	}

	if strings.TrimSpace(eval.Feedback) == "" {
		eval.Feedback = "No feedback was provided."
	}
	return eval
}

var leadingInt = regexp.MustCompile(`-?\d+`)

// parseScore reads the first integer ("7", "7/10", "[8]") and clamps it to 1..10.
func parseScore(value string) int {
	m := leadingInt.FindString(value)
	if m == "" {
		return defaultScore
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return defaultScore
	}
	return clampScore(n)
}

func clampScore(n int) int {
	if n < minScore {
		return minScore
	}
	if n > maxScore {
		return maxScore
	}
	return n
}

// limitWords keeps at most n whitespace separated words.
func limitWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[:n], " ")
}
