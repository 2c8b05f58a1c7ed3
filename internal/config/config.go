package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Log       LogConfig     `mapstructure:"log"`
	Piston    PistonConfig  `mapstructure:"piston"`
	Runner    RunnerConfig  `mapstructure:"runner"`
	Exercise  ExerciseConfig
	Redis     RedisConfig
	AI        AIConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig MaxRequests 按 IP 作用于全部接口；RunMaxRequests 按用户作用于代码执行和 AI 导师接口
type RateLimitConfig struct {
	MaxRequests    int `mapstructure:"max_requests"`
	RunMaxRequests int `mapstructure:"run_max_requests"`
	WindowMinutes  int `mapstructure:"window_minutes"`
}

// AIConfig OpenAI 兼容的对话接口，用于 AI 导师
type AIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// DatabaseConfig Driver 可选 mysql / postgres / sqlite，sqlite 使用 Path
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"ssl_mode"`
	Path      string
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	PublicURL     string `mapstructure:"public_url"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

// TracingConfig SampleRatio 取值 0~1，按 trace id 采样
type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	ServiceName       string  `mapstructure:"service_name"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

// LogConfig Level 为空时 debug 模式用 debug，其余用 info
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// PistonConfig 远程代码执行服务（Python）
type PistonConfig struct {
	URL      string        `mapstructure:"url"`
	Language string        `mapstructure:"language"`
	Version  string        `mapstructure:"version"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RunnerConfig struct {
	// JSMaxDuration 为 0 表示不限制
	JSMaxDuration time.Duration `mapstructure:"js_max_duration"`
}

// ExerciseConfig 练习实例状态的存储方式，StateStore 可选 memory / redis
type ExerciseConfig struct {
	StateStore    string        `mapstructure:"state_store"`
	StateTTL      time.Duration `mapstructure:"state_ttl"`
	PruneSchedule string        `mapstructure:"prune_schedule"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int `mapstructure:"pool_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "lingocode.db")

	v.SetDefault("jwt.expire_hours", 72)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("log.filename", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("piston.url", "https://emkc.org/api/v2/piston/execute")
	v.SetDefault("piston.language", "python")
	v.SetDefault("piston.version", "3.10")

	v.SetDefault("exercise.state_store", "memory")
	v.SetDefault("exercise.state_ttl", 24*time.Hour)
	v.SetDefault("exercise.prune_schedule", "@every 10m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("ai.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("ai.model", "llama-3.3-70b-versatile")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 500)

	v.SetDefault("tracing.service_name", "lingocode")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.run_max_requests", 20)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LINGOCODE")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY", "GROQ_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")

	// Piston
	v.BindEnv("piston.url", "PISTON_URL")

	// Exercise
	v.BindEnv("exercise.state_store", "EXERCISE_STATE_STORE")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")
	v.BindEnv("tracing.sample_ratio", "TRACING_SAMPLE_RATIO")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

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

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Exercise.StateStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported exercise state store %q", c.Exercise.StateStore)
	}

	if c.Runner.JSMaxDuration < 0 {
		return fmt.Errorf("runner.js_max_duration must not be negative")
	}
	if c.Piston.Timeout < 0 {
		return fmt.Errorf("piston.timeout must not be negative")
	}

	// Redis 运行锁有过期时间，运行时限不能是无限
	if c.Exercise.StateStore == "redis" {
		if c.Runner.JSMaxDuration == 0 {
			return fmt.Errorf("runner.js_max_duration must be set when exercise.state_store is redis")
		}
		if c.Piston.Timeout == 0 {
			return fmt.Errorf("piston.timeout must be set when exercise.state_store is redis")
		}
	}
	return nil
}

// runLockMargin 判定与写入完成记录预留的时间
const runLockMargin = 30 * time.Second

// RunLockTTL Redis 运行锁的过期时间：两个运行时限中较大的一个加上 runLockMargin
func (c *Config) RunLockTTL() time.Duration {
	longest := c.Runner.JSMaxDuration
	if c.Piston.Timeout > longest {
		longest = c.Piston.Timeout
	}
	return longest + runLockMargin
}
