package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"quiz-tube/internal/config"
	"quiz-tube/internal/domain"
	"quiz-tube/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const promptTemplate = `Based on the following transcript, generate a quiz in valid JSON format.

The quiz must follow this exact structure:

{
  "title": "Create a concise quiz title based on the topic of the transcript.",
  "description": "Summarize the transcript in no more than 150 characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question_title": "The question goes here.",
      "question_options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    }
    (exactly 10 questions)
  ]
}

Requirements:
- Each question must have exactly 4 distinct answer options.
- Only one correct answer is allowed per question, and it must be present in 'question_options'.
- The output must be valid JSON and parsable as-is.
- Do not include explanations, comments, or any text outside the JSON.

Transcript:
%s`

// Static assertion to ensure GeminiQuizGenerator implements QuizGenerator
var _ domain.QuizGenerator = (*GeminiQuizGenerator)(nil)

// generatedQuiz mirrors the JSON shape the prompt demands from the model.
// The response is untrusted; nothing here reaches the caller before the
// draft passes schema validation.
type generatedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	QuestionTitle   string   `json:"question_title"`
	QuestionOptions []string `json:"question_options"`
	Answer          string   `json:"answer"`
}

// GeminiQuizGenerator implements domain.QuizGenerator against the Gemini API
// through langchaingo. Two independent bounded retry budgets apply: schema
// failures re-issue the request up to cfg.SchemaRetries additional attempts,
// and provider failures retry with exponential backoff up to
// cfg.ServiceRetries times per request.
type GeminiQuizGenerator struct {
	llm        llms.Model
	cfg        config.GeminiConfig
	newBackOff func() backoff.BackOff
}

// NewGeminiQuizGenerator creates a generator backed by the Gemini API.
func NewGeminiQuizGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiQuizGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Gemini model name cannot be empty")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Get().Info("Initializing GeminiQuizGenerator", zap.String("model", cfg.Model))
	return NewGeminiQuizGeneratorWithModel(llm, cfg), nil
}

// NewGeminiQuizGeneratorWithModel wires a generator around an existing model
// client. Used by tests and by callers that manage the client themselves.
func NewGeminiQuizGeneratorWithModel(llm llms.Model, cfg config.GeminiConfig) *GeminiQuizGenerator {
	return &GeminiQuizGenerator{
		llm:        llm,
		cfg:        cfg,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Generate produces a fully valid ten-question draft or fails. Schema
// failures are recoverable within the bounded attempt budget; once the budget
// is exhausted a terminal GENERATION_FAILED error is surfaced. Provider
// failures are terminal here because invoke already retried them.
func (g *GeminiQuizGenerator) Generate(ctx context.Context, transcript *domain.Transcript) (*domain.QuizDraft, error) {
	prompt := fmt.Sprintf(promptTemplate, transcript.Text)

	maxAttempts := g.cfg.SchemaRetries + 1
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.invoke(ctx, prompt)
		if err != nil {
			return nil, err
		}

		draft, err := g.parse(raw)
		if err == nil {
			return draft, nil
		}
		if domain.CodeOf(err) != domain.ErrSchemaValidation {
			return nil, err
		}

		logger.Get().Warn("generated quiz failed schema validation",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err))
		lastErr = err
	}

	return nil, domain.NewGenerationFailedError(maxAttempts, lastErr)
}

// invoke performs one generation request, retrying provider errors with
// exponential backoff up to the configured bound.
func (g *GeminiQuizGenerator) invoke(ctx context.Context, prompt string) (string, error) {
	operation := func() (string, error) {
		callCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}
		return llms.GenerateFromSinglePrompt(callCtx, g.llm, prompt, llms.WithTemperature(0.2))
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(g.newBackOff(), uint64(g.cfg.ServiceRetries)), ctx)

	response, err := backoff.RetryWithData(operation, b)
	if err != nil {
		return "", domain.NewExternalServiceError("generative model call failed", err)
	}
	return response, nil
}

// parse validates the raw model response against the quiz schema. Any
// structural defect is a schema validation error, never a partial success.
func (g *GeminiQuizGenerator) parse(raw string) (*domain.QuizDraft, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	// Models occasionally wrap the JSON in prose; extract the outermost object.
	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return nil, domain.NewSchemaValidationError("no JSON object found in model response", nil)
	}
	cleaned = cleaned[jsonStart : jsonEnd+1]

	var generated generatedQuiz
	if err := json.Unmarshal([]byte(cleaned), &generated); err != nil {
		return nil, domain.NewSchemaValidationError("model response is not valid JSON", err)
	}

	draft := &domain.QuizDraft{
		Title:       strings.TrimSpace(generated.Title),
		Description: strings.TrimSpace(generated.Description),
		Questions:   make([]domain.QuestionDraft, 0, len(generated.Questions)),
	}
	for _, q := range generated.Questions {
		options := make([]string, 0, len(q.QuestionOptions))
		for _, opt := range q.QuestionOptions {
			options = append(options, strings.TrimSpace(opt))
		}
		draft.Questions = append(draft.Questions, domain.QuestionDraft{
			Title:   strings.TrimSpace(q.QuestionTitle),
			Options: options,
			Answer:  strings.TrimSpace(q.Answer),
		})
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}
