package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slanglate/slanglate/internal/quota"
	"github.com/slanglate/slanglate/internal/translate"
	"github.com/slanglate/slanglate/internal/translate/openai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return openai.NewClient(openai.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})
}

func TestClient_Translate(t *testing.T) {
	var gotReq map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "  that outfit is really good  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 15, "total_tokens": 135}
		}`))
	})

	got, err := client.Translate(context.Background(), translate.Request{
		Text: "that fit is fire",
		Mode: quota.ModeGenZToEnglish,
	})
	require.NoError(t, err)
	assert.Equal(t, "that outfit is really good", got, "output is trimmed")

	assert.Equal(t, "gpt-3.5-turbo", gotReq["model"])
	messages := gotReq["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "Gen Z to Standard English")
	user := messages[1].(map[string]any)
	assert.Equal(t, "that fit is fire", user["content"])
}

func TestClient_Translate_EnglishToGenZPrompt(t *testing.T) {
	var gotReq map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "no cap"}}]}`))
	})

	_, err := client.Translate(context.Background(), translate.Request{
		Text: "I am not lying",
		Mode: quota.ModeEnglishToGenZ,
	})
	require.NoError(t, err)

	system := gotReq["messages"].([]any)[0].(map[string]any)
	assert.Contains(t, system["content"], "Standard English to Gen Z")
}

func TestClient_Translate_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	_, err := client.Translate(context.Background(), translate.Request{
		Text: "hello",
		Mode: quota.ModeGenZToEnglish,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected credentials")
}

func TestClient_Translate_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "tokens"}}`))
	})

	_, err := client.Translate(context.Background(), translate.Request{
		Text: "hello",
		Mode: quota.ModeGenZToEnglish,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestClient_Translate_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Translate(context.Background(), translate.Request{
		Text: "hello",
		Mode: quota.ModeGenZToEnglish,
	})
	assert.Error(t, err)
}
