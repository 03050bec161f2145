package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

// Analyzer modes selectable with ANALYZER_MODE.
const (
	AnalyzerRemote = "remote"
	AnalyzerLocal  = "local"
	AnalyzerOff    = "off"
)

type Config struct {
	Telegram  TelegramConfig
	Extractor ExtractorConfig
	Analyzer  AnalyzerConfig
	Cache     CacheConfig
	Bot       BotConfig
	Worker    WorkerConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
	RabbitMQ  RabbitMQConfig
	Redis     RedisConfig
}

type TelegramConfig struct {
	Token       string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	APIEndpoint string `envconfig:"TELEGRAM_API_ENDPOINT"`
	// PollTimeout is the long-poll wait in seconds.
	PollTimeout int `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30"`
}

type ExtractorConfig struct {
	BaseURL string        `envconfig:"EXTRACTOR_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"60s"`
}

type AnalyzerConfig struct {
	Mode        string `envconfig:"ANALYZER_MODE" default:"remote"`
	FFprobePath string `envconfig:"FFPROBE_PATH" default:"ffprobe"`
}

type CacheConfig struct {
	Backend string `envconfig:"CACHE_BACKEND" default:"file"`
	Dir     string `envconfig:"CACHE_DIR" default:"./data"`
	// URLTTL bounds how long a share URL keeps pointing at delivered media.
	URLTTL time.Duration `envconfig:"CACHE_URL_TTL" default:"1h"`
	// ContentIDTTL of zero keeps content ID entries until replaced.
	ContentIDTTL time.Duration `envconfig:"CACHE_CONTENT_ID_TTL" default:"1h"`
}

type BotConfig struct {
	Port            int           `envconfig:"BOT_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"BOT_SHUTDOWN_TIMEOUT" default:"10s"`
}

type WorkerConfig struct {
	Port            int           `envconfig:"WORKER_PORT" default:"8081"`
	TempDir         string        `envconfig:"WORKER_TEMP_DIR" default:"/tmp/cliprelay"`
	MaxRetries      int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"cliprelay"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"cliprelay"`
	DBName   string `envconfig:"POSTGRES_DB" default:"cliprelay"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"cliprelay"`
	Region    string `envconfig:"MINIO_REGION"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	// CreateBucket makes a missing bucket at startup.
	CreateBucket bool `envconfig:"MINIO_CREATE_BUCKET" default:"false"`
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"cliprelay"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"cliprelay"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
	// MessageTTL expires links that wait in the queue too long. Zero keeps them.
	MessageTTL time.Duration `envconfig:"RABBITMQ_MESSAGE_TTL" default:"10m"`
	// MaxBacklog caps queued links; the oldest are dropped first. Zero is unbounded.
	MaxBacklog int `envconfig:"RABBITMQ_MAX_BACKLOG" default:"0"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings envconfig cannot express as tags.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendPostgres, BackendMinIO:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q", c.Cache.Backend)
	}
	switch c.Analyzer.Mode {
	case AnalyzerRemote, AnalyzerLocal, AnalyzerOff:
	default:
		return fmt.Errorf("invalid ANALYZER_MODE %q", c.Analyzer.Mode)
	}
	if c.Cache.URLTTL < 0 || c.Cache.ContentIDTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}
	if c.RabbitMQ.MessageTTL < 0 || c.RabbitMQ.MaxBacklog < 0 {
		return fmt.Errorf("RABBITMQ_MESSAGE_TTL and RABBITMQ_MAX_BACKLOG must not be negative")
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("WORKER_MAX_RETRIES must not be negative")
	}
	return nil
}
