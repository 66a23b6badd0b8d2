package app

import (
	"context"

	"quest_reward_backend/docs"
	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/middleware"
	"quest_reward_backend/internal/model"
	"quest_reward_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// newRouter builds the HTTP surface. Archived attempts hold student answers,
// so the archive directory is never served; it is read from storage only.
func (a *App) newRouter(ctx context.Context, c *controllers, cfg *config.Config) *gin.Engine {
	router := gin.Default()
	a.setupMiddlewares(ctx, router, cfg)
	a.registerRoutes(router, c, cfg)
	return router
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.POST("/grading/grade", c.grade.Grade)

		rewards := authGroup.Group("/rewards")
		{
			rewards.POST("/claim", c.reward.Claim)
			rewards.GET("/balance", c.reward.Balance)
			rewards.GET("/leaderboard", c.reward.Leaderboard)
		}

		authGroup.GET("/mastery/:category", c.mastery.GetMastery)

		// 3. 管理员相关接口
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.POST("/leaderboard/rebuild", c.reward.RebuildLeaderboard)
		}
	}
}
