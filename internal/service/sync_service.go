package service

import (
	"context"
	"time"

	"quest_reward_backend/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// SyncEvent mirrors a final grading outcome to the partner system.
type SyncEvent struct {
	Event          string    `json:"event"`
	StudentID      uint      `json:"student_id"`
	AssignmentID   string    `json:"assignment_id"`
	AttemptID      string    `json:"attempt_id,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	Passed         bool      `json:"passed"`
	XPEarned       int       `json:"xp_earned"`
	CoinsEarned    int       `json:"coins_earned"`
	OccurredAt     time.Time `json:"occurred_at"`
}

const EventGradeCompleted = "grade.completed"

type WebhookSync struct {
	client *resty.Client
	url    string
}

// NewWebhookSync 未配置 webhook 时返回 nil
func NewWebhookSync(cfg config.SyncConfig) *WebhookSync {
	if cfg.WebhookURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}
	return &WebhookSync{client: client, url: cfg.WebhookURL}
}

func (s *WebhookSync) Send(ctx context.Context, event SyncEvent) error {
	if s == nil {
		return nil
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(s.url)
	if err != nil {
		return errors.Wrap(err, "post sync event")
	}
	if resp.IsError() {
		return errors.Errorf("sync webhook returned %d", resp.StatusCode())
	}
	return nil
}
