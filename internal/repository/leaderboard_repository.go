package repository

import (
	"context"
	"strconv"

	"quest_reward_backend/internal/model"
	"quest_reward_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const leaderboardKey = "quest:leaderboard:xp"

type LeaderboardEntry struct {
	Rank      int  `json:"rank"`
	StudentID uint `json:"student_id"`
	XPTotal   int  `json:"xp_total"`
}

// LeaderboardRepository 在 redis 中维护经验有序集合。余额表才是数据源，
// 未启用 redis 或 redis 出错时回退到余额表
type LeaderboardRepository struct {
	Redis    *redis.Client
	Balances *BalanceRepository
}

func NewLeaderboardRepository(rdb *redis.Client, balances *BalanceRepository) *LeaderboardRepository {
	return &LeaderboardRepository{Redis: rdb, Balances: balances}
}

// Record 将学生分数提升到已提交的总额。总额只增不减，GT 防止迟到的旧值覆盖
func (r *LeaderboardRepository) Record(ctx context.Context, studentID uint, xpTotal int) {
	if r.Redis == nil {
		return
	}
	err := r.Redis.ZAddArgs(ctx, leaderboardKey, redis.ZAddArgs{
		GT: true,
		Members: []redis.Z{{
			Score:  float64(xpTotal),
			Member: strconv.FormatUint(uint64(studentID), 10),
		}},
	}).Err()
	if err != nil {
		logger.Log.Warn("Failed to update leaderboard", zap.Uint("student_id", studentID), zap.Error(err))
	}
}

// Rebuild 按余额表重建有序集合
func (r *LeaderboardRepository) Rebuild(ctx context.Context) error {
	if r.Redis == nil {
		return nil
	}
	var balances []model.StudentBalance
	if err := r.Balances.DB.WithContext(ctx).Find(&balances).Error; err != nil {
		return errors.Wrap(err, "load balances")
	}

	pipe := r.Redis.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	for _, b := range balances {
		pipe.ZAdd(ctx, leaderboardKey, &redis.Z{
			Score:  float64(b.XPTotal),
			Member: strconv.FormatUint(uint64(b.StudentID), 10),
		})
	}
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "rebuild leaderboard")
}

func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if r.Redis != nil {
		entries, err := r.topFromRedis(ctx, limit)
		if err == nil {
			return entries, nil
		}
		logger.Log.Warn("Leaderboard cache unavailable, reading database", zap.Error(err))
	}

	balances, err := r.Balances.FindTopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(balances))
	for i, b := range balances {
		entries[i] = LeaderboardEntry{Rank: i + 1, StudentID: b.StudentID, XPTotal: b.XPTotal}
	}
	return entries, nil
}

func (r *LeaderboardRepository) topFromRedis(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	zs, err := r.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{Rank: i + 1, StudentID: uint(id), XPTotal: int(z.Score)})
	}
	return entries, nil
}
