package service

import (
	"context"
	"strings"
	"time"

	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/util"
	"quest_reward_backend/pkg/logger"
	"quest_reward_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// NormalizeCategory 分类的存储与键值形式
func NormalizeCategory(category string) string {
	return strings.TrimSpace(category)
}

type MasteryService struct {
	repo  *repository.MasteryRepository
	rules *RuleSet
	now   func() time.Time
}

func NewMasteryService(repo *repository.MasteryRepository, rules *RuleSet) *MasteryService {
	return &MasteryService{repo: repo, rules: rules, now: time.Now}
}

// Update 将一批评分计入分类并返回是否新解锁，已计入过的 eventKey 会被忽略
func (s *MasteryService) Update(ctx context.Context, studentID uint, category string, attempted, correct int, eventKey string) (bool, error) {
	category = NormalizeCategory(category)
	if category == "" {
		return false, util.NewValidationError("exam category is required")
	}
	if attempted <= 0 || correct < 0 || correct > attempted {
		return false, util.NewValidationError("invalid mastery delta %d/%d", correct, attempted)
	}

	record, unlocked, err := s.repo.Apply(ctx, repository.MasteryDelta{
		StudentID: studentID,
		Category:  category,
		Attempted: attempted,
		Correct:   correct,
		EventKey:  eventKey,
	}, s.rules.UnlockThreshold(), s.now())
	if err != nil {
		return false, util.NewInternalError(err, "update mastery")
	}

	if unlocked {
		monitoring.MasteryUnlocks.Inc()
		logger.WithContext(ctx).Info("Mastery unlocked",
			zap.Uint("student_id", studentID),
			zap.String("category", category),
			zap.Float64("percentage", record.Percentage),
		)
	}
	return unlocked, nil
}

func (s *MasteryService) Get(ctx context.Context, studentID uint, category string) (*model.MasteryRecord, error) {
	record, err := s.repo.FindByStudentCategory(ctx, studentID, NormalizeCategory(category))
	if err != nil {
		if util.CodeOf(err) == util.CodeNotFound {
			return nil, util.NewNotFoundError("no mastery recorded for category %q", category)
		}
		return nil, util.NewInternalError(err, "load mastery")
	}
	return record, nil
}
