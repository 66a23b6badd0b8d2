package service

import (
	"context"
	"sync"
	"time"

	"quest_reward_backend/pkg/logger"

	"go.uber.org/zap"
)

// 单个后台任务的超时
const backgroundTimeout = 30 * time.Second

// Background 在结果确定后执行异步任务，失败只记录日志，关闭时通过 Wait 等待剩余任务
type Background struct {
	wg sync.WaitGroup
}

func (b *Background) Go(task string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("Background task panicked", zap.String("task", task), zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Log.Warn("Background task failed", zap.String("task", task), zap.Error(err))
		}
	}()
}

func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
