package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig `mapstructure:"log"`
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	AI        AIConfig
	Sync      SyncConfig      `mapstructure:"sync"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Grading   GradingConfig   `mapstructure:"grading"`
	Mastery   MasteryConfig   `mapstructure:"mastery"`
	Claims    ClaimsConfig    `mapstructure:"claims"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`

	// File is the config file that was read, watched for rule reloads.
	File string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// AIConfig points at an OpenAI-compatible completion endpoint used to judge
// short answers.
type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SyncConfig configures the partner webhook that mirrors grading outcomes.
type SyncConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	// Path is the sqlite file (or ":memory:") when Driver is sqlite.
	Path string
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// GradingConfig holds the reward rules applied to graded attempts.
type GradingConfig struct {
	PassingScore    int `mapstructure:"passing_score"`
	ExcellentScore  int `mapstructure:"excellent_score"`
	XPPerCorrect    int `mapstructure:"xp_per_correct"`
	CoinsPerCorrect int `mapstructure:"coins_per_correct"`
}

type MasteryConfig struct {
	UnlockThreshold int `mapstructure:"unlock_threshold"`
}

// ClaimsConfig holds the per claim-type eligibility limits.
type ClaimsConfig struct {
	PracticeSetMinScore int `mapstructure:"practice_set_min_score"`
	GameMinScore        int `mapstructure:"game_min_score"`
	StudyGoalMaxXP      int `mapstructure:"study_goal_max_xp"`
	StudyGoalMaxCoins   int `mapstructure:"study_goal_max_coins"`
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("log.file", "logs/quest_reward.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 5)

	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.charset", "utf8mb4")
	viper.SetDefault("database.parsetime", true)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "quest_reward.db")

	viper.SetDefault("jwt.expire_hours", 72)

	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local_path", "archive")

	viper.SetDefault("ai.timeout", 8*time.Second)
	viper.SetDefault("sync.timeout", 5*time.Second)

	viper.SetDefault("rate_limit.max_requests", 6000)
	viper.SetDefault("rate_limit.window_minutes", 1)

	viper.SetDefault("grading.passing_score", 60)
	viper.SetDefault("grading.excellent_score", 90)
	viper.SetDefault("grading.xp_per_correct", 10)
	viper.SetDefault("grading.coins_per_correct", 5)

	viper.SetDefault("mastery.unlock_threshold", 70)

	viper.SetDefault("claims.practice_set_min_score", 60)
	viper.SetDefault("claims.game_min_score", 70)
	viper.SetDefault("claims.study_goal_max_xp", 50)
	viper.SetDefault("claims.study_goal_max_coins", 20)
}

func LoadConfig(path string) (*Config, error) {
	// .env 文件可选
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("QUEST")
	viper.AutomaticEnv()

	setDefaults()

	// Database
	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")
	viper.BindEnv("log.level", "LOG_LEVEL")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Sync
	viper.BindEnv("sync.webhook_url", "SYNC_WEBHOOK_URL")
	viper.BindEnv("sync.api_key", "SYNC_API_KEY")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.File = viper.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate rejects configurations whose rules cannot be applied.
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	if c.Grading.PassingScore < 0 || c.Grading.PassingScore > 100 {
		return fmt.Errorf("grading.passing_score must be within 0..100, got %d", c.Grading.PassingScore)
	}
	if c.Grading.ExcellentScore < c.Grading.PassingScore || c.Grading.ExcellentScore > 100 {
		return fmt.Errorf("grading.excellent_score must be within passing_score..100, got %d", c.Grading.ExcellentScore)
	}
	if c.Grading.XPPerCorrect < 0 || c.Grading.CoinsPerCorrect < 0 {
		return fmt.Errorf("grading rewards per correct answer must not be negative")
	}
	if c.Mastery.UnlockThreshold <= 0 || c.Mastery.UnlockThreshold > 100 {
		return fmt.Errorf("mastery.unlock_threshold must be within 1..100, got %d", c.Mastery.UnlockThreshold)
	}
	if c.Claims.StudyGoalMaxXP < 0 || c.Claims.StudyGoalMaxCoins < 0 {
		return fmt.Errorf("study goal caps must not be negative")
	}
	return nil
}
