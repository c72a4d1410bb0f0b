package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lms/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuestions = `[{"question":"What is a goroutine?","options":["a thread","a lightweight thread","a process","a channel"],"answer":"a lightweight thread","explanation":"managed by the runtime"}]`

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(&config.Config{
		GeminiAPIKey:  key,
		GeminiModel:   "gemini-test",
		GeminiBaseURL: srv.URL,
		AITimeout:     5 * time.Second,
	})
}

func geminiReply(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
			},
		},
	}
}

func TestGeneratePractice(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiReply("```json\n" + sampleQuestions + "\n```"))
	}, "secret")

	qs, err := client.GeneratePractice(context.Background(), "Goroutines are cheap.")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "a lightweight thread", qs[0].Answer)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMimeType)
	require.Len(t, gotBody.Contents, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "Goroutines are cheap.")
}

func TestGeneratePracticeUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}, "secret")

	_, err := client.GeneratePractice(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeneratePracticeMissingKey(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true }, "")

	_, err := client.GeneratePractice(context.Background(), "x")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}

func TestParsePracticeQuestions(t *testing.T) {
	qs, err := ParsePracticeQuestions("```\n" + sampleQuestions + "\n```")
	require.NoError(t, err)
	assert.Len(t, qs, 1)

	_, err = ParsePracticeQuestions(`[{"question":"q","options":["a","b"],"answer":"a"}]`)
	assert.Error(t, err)

	_, err = ParsePracticeQuestions("not json")
	assert.Error(t, err)

	_, err = ParsePracticeQuestions("[]")
	assert.Error(t, err)
}
