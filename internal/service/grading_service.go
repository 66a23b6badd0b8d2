package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"quest_reward_backend/internal/grading"
	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/util"
	"quest_reward_backend/pkg/logger"
	"quest_reward_backend/pkg/monitoring"
	"quest_reward_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// 单次请求内并发调用 AI 判定的上限
const maxParallelJudges = 4

type GradeRequest struct {
	StudentID    *uint                     `json:"student_id,omitempty"`
	AssignmentID string                    `json:"assignment_id" binding:"required,max=100"`
	AttemptID    string                    `json:"attempt_id,omitempty" binding:"omitempty,max=64"`
	Answers      []grading.SubmittedAnswer `json:"answers" binding:"dive"`
	Questions    []grading.QuestionPayload `json:"questions" binding:"required,min=1,dive"`
	ExamCategory string                    `json:"exam_category,omitempty" binding:"max=100"`
}

// Reference 奖励与掌握度事件所用的引用 ID
func (r GradeRequest) Reference() string {
	if r.AttemptID != "" {
		return r.AttemptID
	}
	return r.AssignmentID
}

type OutcomeNotifier interface {
	Send(ctx context.Context, event SyncEvent) error
}

type AttemptArchiver interface {
	Archive(ctx context.Context, a *ArchivedAttempt) (string, error)
}

type GradingService struct {
	grader     *grading.Grader
	rules      *RuleSet
	rewards    *RewardService
	mastery    *MasteryService
	attempts   *repository.ClaimableRepository
	notifier   OutcomeNotifier
	archiver   AttemptArchiver
	background *Background
	now        func() time.Time
}

// NewGradingService 组装评分流程，judge、notifier、archiver 可为 nil
func NewGradingService(
	judge grading.Judge,
	judgeTimeout time.Duration,
	rules *RuleSet,
	rewards *RewardService,
	mastery *MasteryService,
	attempts *repository.ClaimableRepository,
	notifier OutcomeNotifier,
	archiver AttemptArchiver,
	background *Background,
) *GradingService {
	return &GradingService{
		grader:     grading.NewGrader(judge, judgeTimeout, onJudgeFallback),
		rules:      rules,
		rewards:    rewards,
		mastery:    mastery,
		attempts:   attempts,
		notifier:   notifier,
		archiver:   archiver,
		background: background,
		now:        time.Now,
	}
}

func onJudgeFallback(questionID, reason string, err error) {
	monitoring.JudgeFallbacks.WithLabelValues(reason).Inc()
	if reason == "disabled" {
		return
	}
	// EXTERNAL_SERVICE_DEGRADED 只记录日志，评分本身照常成功
	logger.Log.Warn("AI judge unavailable, graded by exact match",
		zap.String("code", string(util.CodeServiceDegraded)),
		zap.String("question_id", questionID),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// Grade 评分、至多发放一次奖励，并更新带分类考试的掌握度。
// 重复评分返回相同结果并设置 reward_already_claimed
func (s *GradingService) Grade(ctx context.Context, studentID uint, req GradeRequest) (*grading.GradeResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradingService.Grade")
	defer span.End()
	span.SetAttributes(
		attribute.String("grade.assignment_id", req.AssignmentID),
		attribute.Int("grade.questions", len(req.Questions)),
	)

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.StudentID != nil && *req.StudentID != studentID {
		return nil, util.NewUnauthorizedError("student_id does not match the authenticated student")
	}

	questions, err := decodeQuestions(req.Questions)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]string, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.Answer
	}

	rules := s.rules.Reward()
	result, err := grading.Aggregate(questions, s.gradeAll(ctx, questions, answers), rules.PassingScore)
	if err != nil {
		return nil, util.NewValidationError("%s", err.Error())
	}
	result.XPEarned, result.CoinsEarned = rules.Calculate(result.Score, result.MeetsThreshold)
	result.Feedback = rules.Feedback(result.Percentage)

	reference := req.Reference()
	earns := result.XPEarned > 0 || result.CoinsEarned > 0

	// 1. 已发放过的尝试按首次发放额报告，重新评分不追加奖励
	if earns {
		prior, err := s.rewards.recorded(ctx, studentID, model.ClaimAssignment, reference)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			applyGrant(&result, prior)
		}
	}

	// 2. 保存尝试（同时校验归属），须在入账之前
	if req.AttemptID != "" {
		if err := s.saveAttempt(ctx, studentID, req, &result); err != nil {
			return nil, err
		}
	}

	// 3. 掌握度：事件键与记录使用同一规范化分类
	if req.ExamCategory != "" {
		category := NormalizeCategory(req.ExamCategory)
		eventKey := model.MasteryEventKey(studentID, category, reference)
		unlocked, err := s.mastery.Update(ctx, studentID, category, result.TotalQuestions, result.Score, eventKey)
		if err != nil {
			return nil, err
		}
		result.MasteryUnlocked = &unlocked
	}

	// 4. 入账，由账本唯一键决定是否真正发放
	if earns && !result.RewardAlreadyClaimed {
		award, err := s.rewards.Award(ctx, repository.AwardInput{
			StudentID:   studentID,
			ClaimType:   model.ClaimAssignment,
			ReferenceID: reference,
			XP:          result.XPEarned,
			Coins:       result.CoinsEarned,
			Reason:      "passed assignment " + req.AssignmentID,
		})
		if err != nil {
			return nil, err
		}
		if award.AlreadyClaimed {
			// 并发评分抢先入账，按其发放额回写
			applyGrant(&result, award)
			if req.AttemptID != "" {
				if err := s.saveAttempt(ctx, studentID, req, &result); err != nil {
					return nil, err
				}
			}
		}
	}

	monitoring.GradesTotal.WithLabelValues(strconv.FormatBool(result.MeetsThreshold)).Inc()
	logger.WithContext(ctx).Info("Attempt graded",
		zap.Uint("student_id", studentID),
		zap.String("assignment_id", req.AssignmentID),
		zap.String("attempt_id", req.AttemptID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
		zap.Int("percentage", result.Percentage),
		zap.Bool("passed", result.MeetsThreshold),
	)

	s.publish(studentID, req, result)
	return &result, nil
}

// applyGrant 以账本实际发放额为准
func applyGrant(result *grading.GradeResult, grant *repository.AwardResult) {
	result.XPEarned = grant.XPAwarded
	result.CoinsEarned = grant.CoinsAwarded
	result.RewardAlreadyClaimed = true
}

func decodeQuestions(payloads []grading.QuestionPayload) ([]grading.Question, error) {
	questions := make([]grading.Question, len(payloads))
	seen := make(map[string]bool, len(payloads))
	for i, p := range payloads {
		q, err := p.Decode()
		if err != nil {
			return nil, util.NewValidationError("questions[%d]: %v", i, err)
		}
		if seen[q.ID] {
			return nil, util.NewValidationError("questions[%d]: duplicate question id %q", i, q.ID)
		}
		seen[q.ID] = true
		questions[i] = q
	}
	return questions, nil
}

// gradeAll 按题目顺序返回结果，简答题可能等待 AI 判定因此并发执行，未作答按空答案评分
func (s *GradingService) gradeAll(ctx context.Context, questions []grading.Question, answers map[string]string) []grading.QuestionResult {
	results := make([]grading.QuestionResult, len(questions))
	sem := make(chan struct{}, maxParallelJudges)
	var wg sync.WaitGroup

	for i, q := range questions {
		if q.Type != grading.ShortAnswer {
			results[i] = s.grader.Grade(ctx, q, answers[q.ID])
			continue
		}
		wg.Add(1)
		go func(i int, q grading.Question) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.grader.Grade(ctx, q, answers[q.ID])
		}(i, q)
	}
	wg.Wait()
	return results
}

func (s *GradingService) saveAttempt(ctx context.Context, studentID uint, req GradeRequest, result *grading.GradeResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return util.NewInternalError(err, "encode grade result")
	}
	attempt := &model.AssignmentAttempt{
		UUIDBase:       model.UUIDBase{ID: req.AttemptID},
		StudentID:      studentID,
		AssignmentID:   req.AssignmentID,
		Status:         model.StatusCompleted,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		Passed:         result.MeetsThreshold,
		XPEarned:       result.XPEarned,
		CoinsEarned:    result.CoinsEarned,
		Result:         datatypes.JSON(raw),
	}
	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		if util.CodeOf(err) == util.CodeInternal {
			return util.NewInternalError(err, "save attempt")
		}
		return err
	}
	return nil
}

// publish 将最终结果同步到外部系统并归档
func (s *GradingService) publish(studentID uint, req GradeRequest, result grading.GradeResult) {
	if s.background == nil {
		return
	}
	now := s.now()

	if s.notifier != nil {
		event := SyncEvent{
			Event:          EventGradeCompleted,
			StudentID:      studentID,
			AssignmentID:   req.AssignmentID,
			AttemptID:      req.AttemptID,
			Score:          result.Score,
			TotalQuestions: result.TotalQuestions,
			Percentage:     result.Percentage,
			Passed:         result.MeetsThreshold,
			XPEarned:       result.XPEarned,
			CoinsEarned:    result.CoinsEarned,
			OccurredAt:     now,
		}
		s.background.Go("sync", func(ctx context.Context) error {
			return s.notifier.Send(ctx, event)
		})
	}

	if s.archiver != nil {
		archived := &ArchivedAttempt{
			StudentID:    studentID,
			AssignmentID: req.AssignmentID,
			AttemptID:    req.AttemptID,
			GradedAt:     now,
			Result:       result,
		}
		s.background.Go("archive", func(ctx context.Context) error {
			_, err := s.archiver.Archive(ctx, archived)
			return err
		})
	}
}
