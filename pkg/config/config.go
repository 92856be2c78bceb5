// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/mq"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// 文档数据库配置
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	// Redis 配置
	Redis cache.Config `mapstructure:"redis"`
	// Kafka 配置
	Kafka mq.KafkaConfig `mapstructure:"kafka"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 审计配置
	Audit AuditConfig `mapstructure:"audit"`
	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	// 商品目录配置
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
	// 优雅关闭超时（秒）
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

// Addr 返回监听地址
func (c HTTPConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MongoDBConfig 文档数据库配置
type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	// 连接超时（秒）
	ConnectTimeout int `mapstructure:"connect_timeout"`
	// 启动时创建索引
	EnsureIndexes bool `mapstructure:"ensure_indexes"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// AuditConfig 审计配置，driver 为 log 或 mysql
type AuditConfig struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    int    `mapstructure:"conn_max_lifetime"`
	SlowQueryThreshold int    `mapstructure:"slow_query_threshold"`
	LogEnabled         bool   `mapstructure:"log_enabled"`
}

// RateLimitConfig 写接口限流配置
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// 每个窗口允许的请求数
	Requests int `mapstructure:"requests"`
	// 窗口长度（秒）
	WindowSeconds int `mapstructure:"window_seconds"`
}

// CatalogConfig 商品目录配置
type CatalogConfig struct {
	// 管理员共享密钥，为空时所有写请求被拒绝
	AdminSecret     string `mapstructure:"admin_secret"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
	// 存储调用超时（秒）
	StoreTimeout int `mapstructure:"store_timeout"`
	// 列表接口是否要求管理员凭证
	ProtectList bool `mapstructure:"protect_list"`
}

// StoreTimeoutDuration 存储调用超时
func (c CatalogConfig) StoreTimeoutDuration() time.Duration {
	return time.Duration(c.StoreTimeout) * time.Second
}

// Load 加载配置：默认值 < TOML 文件 < 环境变量；文件不存在时忽略
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 自动绑定环境变量（使用 _ 替代 .）
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("catalog.admin_secret", "APP_CATALOG_ADMIN_SECRET", "ADMIN_SECRET_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	if c.MongoDB.URI == "" {
		return fmt.Errorf("mongodb uri is required")
	}
	if c.MongoDB.Database == "" {
		return fmt.Errorf("mongodb database is required")
	}
	switch c.Audit.Driver {
	case "log":
	case "mysql":
		if c.Audit.DSN == "" {
			return fmt.Errorf("audit dsn is required for mysql driver")
		}
	default:
		return fmt.Errorf("unsupported audit driver: %s", c.Audit.Driver)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return fmt.Errorf("ratelimit requests and window_seconds must be positive")
	}
	if c.Catalog.DefaultPageSize <= 0 {
		return fmt.Errorf("catalog default_page_size must be positive")
	}
	if c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return fmt.Errorf("catalog max_page_size must be >= default_page_size")
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "catalog")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.shutdown_timeout", 10)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "storefront")
	v.SetDefault("mongodb.collection", "products")
	v.SetDefault("mongodb.connect_timeout", 10)
	v.SetDefault("mongodb.ensure_indexes", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)
	v.SetDefault("kafka.write_timeout", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/catalog.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("audit.driver", "log")
	v.SetDefault("audit.dsn", "")
	v.SetDefault("audit.max_open_conns", 10)
	v.SetDefault("audit.max_idle_conns", 2)
	v.SetDefault("audit.conn_max_lifetime", 300)
	v.SetDefault("audit.slow_query_threshold", 1000)
	v.SetDefault("audit.log_enabled", false)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests", 30)
	v.SetDefault("ratelimit.window_seconds", 60)

	v.SetDefault("catalog.admin_secret", "")
	v.SetDefault("catalog.default_page_size", 20)
	v.SetDefault("catalog.max_page_size", 100)
	v.SetDefault("catalog.store_timeout", 5)
	v.SetDefault("catalog.protect_list", false)
}
