package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/grading"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const judgeSystemPrompt = "You grade short answers for a school quiz. " +
	"Accept an answer when it means the same as one of the accepted answers, ignoring spelling slips and wording. " +
	"Reject answers that are vague, contradictory or about something else. " +
	`Reply with JSON only: {"correct": true|false, "feedback": "<one short sentence for the student>"}`

// AIJudge asks an OpenAI-compatible chat completion endpoint whether a short
// answer is correct.
type AIJudge struct {
	client *resty.Client
	model  string
}

func NewAIJudge(cfg config.AIConfig) *AIJudge {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &AIJudge{client: client, model: cfg.Model}
}

func (j *AIJudge) JudgeShortAnswer(ctx context.Context, req grading.JudgeRequest) (grading.JudgeVerdict, error) {
	body := ChatCompletionRequest{
		Model: j.model,
		Messages: []AIChatMessage{
			{Role: "system", Content: judgeSystemPrompt},
			{Role: "user", Content: buildJudgePrompt(req)},
		},
	}

	var out ChatCompletionResponse
	resp, err := j.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return grading.JudgeVerdict{}, errors.Wrap(err, "call judge")
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return grading.JudgeVerdict{}, errors.Errorf("judge returned %d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 {
		return grading.JudgeVerdict{}, errors.New("judge returned no choices")
	}

	return parseVerdict(out.Choices[0].Message.Content)
}

func buildJudgePrompt(req grading.JudgeRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n", req.Prompt)
	sb.WriteString("Accepted answers:\n")
	for _, a := range req.Accepted {
		fmt.Fprintf(&sb, "- %s\n", a)
	}
	fmt.Fprintf(&sb, "Student answer: %s\n", req.Submitted)
	return sb.String()
}

func parseVerdict(content string) (grading.JudgeVerdict, error) {
	raw := extractJSON(content)
	if raw == "" {
		return grading.JudgeVerdict{}, errors.Errorf("no JSON object in judge reply %q", content)
	}
	var v struct {
		Correct  *bool  `json:"correct"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return grading.JudgeVerdict{}, errors.Wrap(err, "decode judge verdict")
	}
	if v.Correct == nil {
		return grading.JudgeVerdict{}, errors.New("judge verdict has no correct field")
	}
	return grading.JudgeVerdict{Correct: *v.Correct, Feedback: strings.TrimSpace(v.Feedback)}, nil
}

// extractJSON 返回 s 中第一个完整的 JSON 对象，忽略字符串内的括号。
// 模型常把 JSON 包在说明文字或代码块里
func extractJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' && depth > 0 {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
