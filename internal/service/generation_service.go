package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// GeneratedQuestion is one question as produced by the generation backend,
// before it is persisted.
type GeneratedQuestion struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// QuestionGenerator produces multiple-choice questions for a topic.
type QuestionGenerator interface {
	Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error)
}

// GeminiGenerator generates questions via the Gemini API.
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{model: client.GenerativeModel(modelName)}, nil
}

// Generate asks Gemini for exactly count questions and validates the output.
// Any upstream or format failure maps to ErrGenerationFailed.
func (g *GeminiGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	prompt := buildGenerationPrompt(topic, difficulty, count)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini request failed: %v", apperrors.ErrGenerationFailed, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no content", apperrors.ErrGenerationFailed)
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}

	return parseGeneratedQuestions(raw.String(), count)
}

func buildGenerationPrompt(topic, difficulty string, count int) string {
	return fmt.Sprintf(`You are an exam question generator.
Generate exactly %d multiple-choice questions about the topic "%s" with %s difficulty.

Respond with ONLY a JSON array, no surrounding text and no markdown. Each element must
have this exact shape:
{"question": "...", "options": ["...", "...", "...", "..."], "correct_option": N}

Rules:
- "options" must contain exactly %d answer choices.
- "correct_option" is the 1-based index of the right choice (1 to %d).
- Questions must be self-contained and unambiguous.`,
		count, topic, difficulty, entity.OptionCount, entity.OptionCount)
}

// parseGeneratedQuestions decodes and validates the model output. The model
// often wraps JSON in markdown fences despite instructions, so fences are
// stripped before decoding.
func parseGeneratedQuestions(raw string, expectedCount int) ([]GeneratedQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from generator: %v", apperrors.ErrGenerationFailed, err)
	}

	if len(questions) != expectedCount {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", apperrors.ErrGenerationFailed, expectedCount, len(questions))
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", apperrors.ErrGenerationFailed, i+1)
		}
		if len(q.Options) != entity.OptionCount {
			return nil, fmt.Errorf("%w: question %d has %d options, want %d", apperrors.ErrGenerationFailed, i+1, len(q.Options), entity.OptionCount)
		}
		if q.CorrectOption < 1 || q.CorrectOption > entity.OptionCount {
			return nil, fmt.Errorf("%w: question %d has correct_option %d out of range 1..%d", apperrors.ErrGenerationFailed, i+1, q.CorrectOption, entity.OptionCount)
		}
	}

	return questions, nil
}
