package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/controller"
	"quest_reward_backend/internal/grading"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/service"
	"quest_reward_backend/pkg/configwatcher"
	"quest_reward_backend/pkg/database"
	"quest_reward_backend/pkg/logger"
	"quest_reward_backend/pkg/monitoring"
	"quest_reward_backend/pkg/security"
	"quest_reward_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	stop            context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	ledger      *repository.LedgerRepository
	balance     *repository.BalanceRepository
	leaderboard *repository.LeaderboardRepository
	mastery     *repository.MasteryRepository
	claimable   *repository.ClaimableRepository
}

type services struct {
	rules      *service.RuleSet
	storage    *service.StorageService
	reward     *service.RewardService
	mastery    *service.MasteryService
	grading    *service.GradingService
	background *service.Background
}

type controllers struct {
	grade   *controller.GradeController
	reward  *controller.RewardController
	mastery *controller.MasteryController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	balance := repository.NewBalanceRepository(db)
	return &repositories{
		ledger:      repository.NewLedgerRepository(db),
		balance:     balance,
		leaderboard: repository.NewLeaderboardRepository(rdb, balance),
		mastery:     repository.NewMasteryRepository(db),
		claimable:   repository.NewClaimableRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.rules = service.NewRuleSet(cfg)
	a.RegisterConfigCallback(s.rules.Apply)

	s.storage = service.NewStorageService(cfg)
	s.background = &service.Background{}

	s.reward = service.NewRewardService(
		repos.ledger,
		repos.balance,
		repos.leaderboard,
		service.NewClaimValidators(repos.claimable, s.rules),
	)
	s.mastery = service.NewMasteryService(repos.mastery, s.rules)

	// 未配置 AI 服务时简答题按标准答案精确匹配
	var judge grading.Judge
	if cfg.AI.BaseURL != "" {
		judge = service.NewAIJudge(cfg.AI)
	} else {
		logger.Log.Warn("AI judge not configured, short answers use exact match")
	}

	var notifier service.OutcomeNotifier
	if webhook := service.NewWebhookSync(cfg.Sync); webhook != nil {
		notifier = webhook
	}

	s.grading = service.NewGradingService(
		judge,
		cfg.AI.Timeout,
		s.rules,
		s.reward,
		s.mastery,
		repos.claimable,
		notifier,
		s.storage,
		s.background,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		grade:   controller.NewGradeController(s.grading),
		reward:  controller.NewRewardController(s.reward),
		mastery: controller.NewMasteryController(s.mastery),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quest-reward-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	// 限流清理和配置监听在 Run 结束时停止
	ctx, stop := context.WithCancel(context.Background())
	app.stop = stop

	app.Router = app.newRouter(ctx, controllers, cfg)

	// Redis 可能在上次运行后被清空，启动时按余额表重建
	if err := services.reward.RebuildLeaderboard(ctx); err != nil {
		logger.Log.Warn("Failed to rebuild leaderboard", zap.Error(err))
	}

	return app
}

func (a *App) startConfigWatcher(ctx context.Context) {
	if a.Config.File == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.File, func(cfg *config.Config) {
			a.applyConfig(cfg)
			logger.Log.Info("Reward rules reloaded", zap.String("file", a.Config.File))
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	defer a.stop()
	a.startConfigWatcher(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopWatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 等待同步和归档任务结束
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDrain()
	if err := a.services.background.Wait(drainCtx); err != nil {
		logger.Log.Warn("Background tasks still running at exit", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
