package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "key", "model")
	assert.Error(t, err)

	_, err = NewClient("https://api.example.com", "", "model")
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "[]"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", "secret-key", "gpt-4o-mini")
	require.NoError(t, err)

	content, err := client.Generate(context.Background(), "make a checklist")
	require.NoError(t, err)

	assert.Equal(t, "[]", content)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "make a checklist", gotReq.Messages[0].Content)
}

func TestGenerateNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "model")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "429")
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded"},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "model")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "model overloaded")
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "model")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "no content")
}

func TestGenerateContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "model")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Generate(ctx, "prompt")
	assert.Error(t, err)
}
