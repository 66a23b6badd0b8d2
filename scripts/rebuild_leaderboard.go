// 手动重建 Redis 排行榜
//
// 服务启动时会自动重建一次，此脚本用于 Redis 数据丢失或手动修正余额后。
//
// 用法: go run scripts/rebuild_leaderboard.go

package main

import (
	"context"
	"log"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/pkg/database"
	"quest_reward_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Redis 连接失败: %v", err)
	}
	if rdb == nil {
		log.Fatal("Redis 未启用，排行榜直接读取数据库，无需重建")
	}

	leaderboard := repository.NewLeaderboardRepository(rdb, repository.NewBalanceRepository(db))

	log.Println("手动触发排行榜重建...")
	if err := leaderboard.Rebuild(context.Background()); err != nil {
		log.Fatalf("重建失败: %v", err)
	}
	log.Println("完成！")
}
