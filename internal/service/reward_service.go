package service

import (
	"context"

	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/util"
	"quest_reward_backend/pkg/logger"
	"quest_reward_backend/pkg/monitoring"
	"quest_reward_backend/pkg/tracing"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

type RewardService struct {
	ledger      *repository.LedgerRepository
	balances    *repository.BalanceRepository
	leaderboard *repository.LeaderboardRepository
	validators  ClaimValidators
}

func NewRewardService(
	ledger *repository.LedgerRepository,
	balances *repository.BalanceRepository,
	leaderboard *repository.LeaderboardRepository,
	validators ClaimValidators,
) *RewardService {
	return &RewardService{
		ledger:      ledger,
		balances:    balances,
		leaderboard: leaderboard,
		validators:  validators,
	}
}

// Claim 校验独立的奖励领取并只发放一次，校验失败时不写入任何数据
func (s *RewardService) Claim(ctx context.Context, req ClaimRequest) (*repository.AwardResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "RewardService.Claim")
	defer span.End()
	span.SetAttributes(
		attribute.String("claim.type", string(req.ClaimType)),
		attribute.String("claim.reference_id", req.ReferenceID),
	)

	if err := validateStruct(req); err != nil {
		return nil, s.reject(req.ClaimType, err)
	}
	if !req.ClaimType.Valid() {
		return nil, s.reject(req.ClaimType, util.NewValidationError("unknown claim_type %q", req.ClaimType))
	}

	// 已入账的领取直接返回首次结果，实体状态可能已变化，重放不再走校验
	if res, err := s.replay(ctx, req); err != nil || res != nil {
		return res, err
	}
	if req.XPAmount == 0 && req.CoinAmount == 0 {
		return nil, s.reject(req.ClaimType, util.NewValidationError("xp_amount and coin_amount cannot both be zero"))
	}

	validator, ok := s.validators[req.ClaimType]
	if !ok {
		return nil, s.reject(req.ClaimType, util.NewValidationError("claim_type %q is not supported", req.ClaimType))
	}
	plan, err := validator.Validate(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, s.reject(req.ClaimType, err)
	}

	return s.Award(ctx, repository.AwardInput{
		StudentID:   req.StudentID,
		ClaimType:   req.ClaimType,
		ReferenceID: req.ReferenceID,
		XP:          plan.XP,
		Coins:       plan.Coins,
		Reason:      plan.Reason,
	}, plan.OnCredit...)
}

// Award 通过账本发放已校验的奖励
func (s *RewardService) Award(ctx context.Context, in repository.AwardInput, hooks ...repository.CreditHook) (*repository.AwardResult, error) {
	res, err := s.ledger.Award(ctx, in, hooks...)
	if err != nil {
		if util.CodeOf(err) == util.CodeInternal {
			monitoring.RewardAwards.WithLabelValues(string(in.ClaimType), "error").Inc()
			return nil, util.NewInternalError(err, "award reward")
		}
		return nil, s.reject(in.ClaimType, err)
	}

	outcome := "credited"
	if res.AlreadyClaimed {
		outcome = "already_claimed"
	} else {
		s.leaderboard.Record(ctx, in.StudentID, res.NewXPTotal)
	}
	monitoring.RewardAwards.WithLabelValues(string(in.ClaimType), outcome).Inc()

	logger.WithContext(ctx).Info("Reward award processed",
		zap.Uint("student_id", in.StudentID),
		zap.String("claim_type", string(in.ClaimType)),
		zap.String("reference_id", in.ReferenceID),
		zap.Int("xp", res.XPAwarded),
		zap.Int("coins", res.CoinsAwarded),
		zap.Bool("already_claimed", res.AlreadyClaimed),
	)
	return res, nil
}

// replay 只读查询已记录的领取，是否入账仍由账本插入决定
func (s *RewardService) replay(ctx context.Context, req ClaimRequest) (*repository.AwardResult, error) {
	res, err := s.recorded(ctx, req.StudentID, req.ClaimType, req.ReferenceID)
	if err != nil || res == nil {
		return nil, err
	}

	monitoring.RewardAwards.WithLabelValues(string(req.ClaimType), "already_claimed").Inc()
	logger.WithContext(ctx).Info("Reward claim replayed",
		zap.Uint("student_id", req.StudentID),
		zap.String("claim_type", string(req.ClaimType)),
		zap.String("reference_id", req.ReferenceID),
	)
	return res, nil
}

// recorded 返回领取键在账本上的发放记录，没有时返回 nil
func (s *RewardService) recorded(ctx context.Context, studentID uint, claimType model.ClaimType, referenceID string) (*repository.AwardResult, error) {
	claim, err := s.ledger.FindClaim(ctx, studentID, claimType, referenceID)
	if errors.Is(err, util.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		monitoring.RewardAwards.WithLabelValues(string(claimType), "error").Inc()
		return nil, util.NewInternalError(err, "load claim record")
	}
	return repository.ReplayOf(claim), nil
}

func (s *RewardService) reject(claimType model.ClaimType, err error) error {
	label := string(claimType)
	if !claimType.Valid() {
		label = "unknown"
	}
	monitoring.RewardAwards.WithLabelValues(label, "rejected").Inc()
	logger.Log.Info("Reward claim rejected",
		zap.String("claim_type", string(claimType)),
		zap.String("code", string(util.CodeOf(err))),
		zap.Error(err),
	)
	return err
}

func (s *RewardService) Balance(ctx context.Context, studentID uint) (*model.StudentBalance, error) {
	balance, err := s.balances.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, util.NewInternalError(err, "load balance")
	}
	return balance, nil
}

func (s *RewardService) Leaderboard(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	if limit == 0 {
		limit = defaultLeaderboardSize
	}
	if limit < 0 || limit > maxLeaderboardSize {
		return nil, util.NewValidationError("limit must be within 1..%d", maxLeaderboardSize)
	}
	entries, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, util.NewInternalError(err, "load leaderboard")
	}
	return entries, nil
}

// RebuildLeaderboard 按余额表重建排行榜缓存
func (s *RewardService) RebuildLeaderboard(ctx context.Context) error {
	if err := s.leaderboard.Rebuild(ctx); err != nil {
		return util.NewInternalError(err, "rebuild leaderboard")
	}
	logger.Log.Info("Leaderboard rebuilt")
	return nil
}
