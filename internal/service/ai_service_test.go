package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/grading"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestAIJudge_ParsesVerdict(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatReply("Sure!\n```json\n{\"correct\": true, \"feedback\": \" Right idea {mostly}. \"}\n```"))
	}))
	defer srv.Close()

	judge := NewAIJudge(config.AIConfig{BaseURL: srv.URL + "/v1/", APIKey: "secret", Model: "tutor-small", Timeout: time.Second})
	verdict, err := judge.JudgeShortAnswer(context.Background(), grading.JudgeRequest{
		Prompt:    "What do plants make in photosynthesis?",
		Accepted:  []string{"glucose", "sugar"},
		Submitted: "sugars",
	})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
	assert.Equal(t, "Right idea {mostly}.", verdict.Feedback)

	assert.Equal(t, "tutor-small", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "- sugar\n")
	assert.Contains(t, got.Messages[1].Content, "Student answer: sugars")
}

func TestAIJudge_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   interface{}
	}{
		{"server error", http.StatusInternalServerError, map[string]interface{}{"error": map[string]string{"message": "overloaded"}}},
		{"no choices", http.StatusOK, map[string]interface{}{"choices": []interface{}{}}},
		{"prose only", http.StatusOK, chatReply("I think it is correct")},
		{"missing field", http.StatusOK, chatReply(`{"feedback": "ok"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			judge := NewAIJudge(config.AIConfig{BaseURL: srv.URL, Timeout: time.Second})
			_, err := judge.JudgeShortAnswer(context.Background(), grading.JudgeRequest{Accepted: []string{"x"}})
			assert.Error(t, err)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{`prefix "quoted {" {"a":{"b":"}"}} tail`, `{"a":{"b":"}"}}`},
		{`} stray {"ok":true}`, `{"ok":true}`},
		{`{"s":"escaped \" brace }"}`, `{"s":"escaped \" brace }"}`},
		{`no json here`, ``},
		{`{"open": true`, ``},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in), tt.in)
	}
}
