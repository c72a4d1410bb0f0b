// Package ai talks to the Gemini generateContent API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lms/backend/config"
	"lms/backend/models"

	"github.com/go-resty/resty/v2"
)

const (
	practiceQuestionCount = 3
	practiceOptionCount   = 4
)

var ErrMissingAPIKey = errors.New("gemini api key is not configured")

const practicePrompt = `Based on the following lesson content, generate %d practice questions to test the student's understanding.
Return the response as a JSON array of objects.
Each object should have:
- 'question': The text of the question.
- 'options': An array of %d possible string answers.
- 'answer': The correct option string.
- 'explanation': A short explanation of why the answer is correct.

Lesson Content:
%s
`

type GeminiClient struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewGeminiClient(cfg *config.Config) *GeminiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.GeminiBaseURL, "/")).
		SetTimeout(cfg.AITimeout).
		SetHeader("Content-Type", "application/json")
	return &GeminiClient{http: client, apiKey: cfg.GeminiAPIKey, model: cfg.GeminiModel}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeneratePractice asks the model for practice questions about lessonContent.
func (g *GeminiClient) GeneratePractice(ctx context.Context, lessonContent string) ([]models.PracticeQuestion, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{
			Text: fmt.Sprintf(practicePrompt, practiceQuestionCount, practiceOptionCount, lessonContent),
		}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	var out generateResponse
	var failure apiError
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetPathParam("model", g.model).
		SetBody(body).
		SetResult(&out).
		SetError(&failure).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		if failure.Error.Message != "" {
			return nil, fmt.Errorf("gemini returned %d: %s", resp.StatusCode(), failure.Error.Message)
		}
		return nil, fmt.Errorf("gemini returned %d", resp.StatusCode())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}
	return ParsePracticeQuestions(out.Candidates[0].Content.Parts[0].Text)
}

// ParsePracticeQuestions decodes the model text, tolerating a markdown code fence around it.
func ParsePracticeQuestions(text string) ([]models.PracticeQuestion, error) {
	text = stripCodeFence(text)

	var questions []models.PracticeQuestion
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, fmt.Errorf("decode practice questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, errors.New("model returned no practice questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("practice question %d has no text", i+1)
		}
		if len(q.Options) != practiceOptionCount {
			return nil, fmt.Errorf("practice question %d has %d options, want %d", i+1, len(q.Options), practiceOptionCount)
		}
	}
	return questions, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
