package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SQLConfig 定义了关系型数据库的连接配置。
// Driver 为 "mysql" 或 "sqlite"；DSN 非空时优先使用 DSN。
type SQLConfig struct {
	Driver          string `yaml:"driver"`          // 数据库驱动
	DSN             string `yaml:"dsn"`             // 完整的连接串
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称 (sqlite 时为文件路径)
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
	LogLevel        string `yaml:"logLevel"`        // GORM 日志级别: silent, error, warn, info
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// MinIOConfig 定义了 MinIO 对象存储的连接配置。
type MinIOConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`  // MinIO 服务端点
	AccessKey string `yaml:"accessKey"` // 访问密钥
	SecretKey string `yaml:"secretKey"` // Secret 密钥
	Bucket    string `yaml:"bucket"`    // 观测照片存储桶
	Secure    bool   `yaml:"secure"`    // 是否使用HTTPS
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 业务事件主题
}

// DatabaseConfigs 包含所有存储组件的配置。
type DatabaseConfigs struct {
	SQL   SQLConfig   `yaml:"sql"`
	Redis RedisConfig `yaml:"redis"`
	MinIO MinIOConfig `yaml:"minio"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务的监听配置。
type ServerConfig struct {
	Address         string `yaml:"address"`
	ShutdownTimeout string `yaml:"shutdownTimeout"` // 例如: "10s"
}

// AuthConfig 用于配置认证相关设置。
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"` // JWT 密钥
	TokenTTL  int    `yaml:"tokenTTL"`  // JWT 令牌的有效期（秒）
}

// LLMConfig 包含了生成模型提供商的配置。
type LLMConfig struct {
	Provider string       `yaml:"provider"` // LLM提供商: "gemini", "ollama", "openai"
	Gemini   GeminiConfig `yaml:"gemini"`   // Gemini 模型配置
	Ollama   OllamaConfig `yaml:"ollama"`   // 本地 Ollama 配置
	OpenAI   OpenAIConfig `yaml:"openai"`   // OpenAI 兼容接口配置
}

// OllamaConfig 包含了本地 Ollama 服务的配置。
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"` // 默认为 http://localhost:11434
	Model   string `yaml:"model"`
}

// OpenAIConfig 包含了 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"` // 为空时使用官方地址
	Model   string `yaml:"model"`
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API 密钥
	Model  string `yaml:"model"`  // Gemini 模型名称
}

// MapsConfig 包含地理编码服务的配置。
type MapsConfig struct {
	APIKey    string `yaml:"apiKey"`
	BaseURL   string `yaml:"baseURL"`   // 仅用于测试或代理
	CacheSize int    `yaml:"cacheSize"` // 地址解析结果缓存条数，0 表示使用默认值
	CacheTTL  string `yaml:"cacheTTL"`  // 例如: "24h"
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ScoringConfig 控制图表数据的时间窗口与点数上限，以及观测列表分页。
type ScoringConfig struct {
	ChartWindowDays int `yaml:"chartWindowDays"`
	ChartMaxPoints  int `yaml:"chartMaxPoints"`
	PageSize        int `yaml:"pageSize"`
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了令牌桶限流器的配置。
type RateLimiterConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"`  // 每秒生成的令牌数
	Burst   int     `yaml:"burst"` // 桶容量
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// TimeoutDuration 解析 Timeout 字段。
func (c CircuitBreakerConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid circuit breaker timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	LLM        LLMConfig        `yaml:"llm"`
	Maps       MapsConfig       `yaml:"maps"`
	Logger     LoggerConfig     `yaml:"logger"`
	Databases  DatabaseConfigs  `yaml:"databases"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// 覆盖 YAML 中密钥类配置的环境变量。
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvMapsAPIKey   = "GOOGLE_MAPS_API_KEY"
	EnvJWTSecret    = "JWT_SECRET"
	EnvDatabaseDSN  = "DATABASE_DSN"
)

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 当前目录下的 .env 文件（如存在）会先被载入，随后环境变量覆盖对应的密钥配置。
func LoadConfig(path string) (*AppConfig, error) {
	// .env 是可选的
	_ = godotenv.Load()

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	cfg, err := Parse(yamlFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrMissingJWTSecret 表示 auth.jwtSecret 与 JWT_SECRET 均未设置。
var ErrMissingJWTSecret = errors.New("auth.jwtSecret is empty; set it in the config file or via " + EnvJWTSecret)

// Validate 检查运行所必需的配置项。
func (c *AppConfig) Validate() error {
	if c.Auth.JwtSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// Parse 解析 YAML 内容并填充默认值。
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyEnv 用环境变量覆盖密钥类配置。lookup 通常为 os.LookupEnv。
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvGeminiAPIKey); ok && v != "" {
		c.LLM.Gemini.APIKey = v
	}
	if v, ok := lookup(EnvMapsAPIKey); ok && v != "" {
		c.Maps.APIKey = v
	}
	if v, ok := lookup(EnvJWTSecret); ok && v != "" {
		c.Auth.JwtSecret = v
	}
	if v, ok := lookup(EnvDatabaseDSN); ok && v != "" {
		c.Databases.SQL.DSN = v
	}
}

// ApplyDefaults 为未设置的字段填充默认值。
func (c *AppConfig) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ecofix"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 7 * 24 * 3600
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = "gemini-pro"
	}
	if c.Maps.CacheSize <= 0 {
		c.Maps.CacheSize = 1024
	}
	if c.Maps.CacheTTL == "" {
		c.Maps.CacheTTL = "24h"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Databases.SQL.Driver == "" {
		c.Databases.SQL.Driver = "sqlite"
	}
	if c.Databases.SQL.Driver == "sqlite" && c.Databases.SQL.Database == "" && c.Databases.SQL.DSN == "" {
		c.Databases.SQL.Database = "ecofix.db"
	}
	if c.Databases.MinIO.Bucket == "" {
		c.Databases.MinIO.Bucket = "ecofix"
	}
	if c.Databases.Kafka.Topic == "" {
		c.Databases.Kafka.Topic = "ecofix_events"
	}
	if c.Scoring.ChartWindowDays <= 0 {
		c.Scoring.ChartWindowDays = 30
	}
	if c.Scoring.ChartMaxPoints <= 0 {
		c.Scoring.ChartMaxPoints = 50
	}
	if c.Scoring.PageSize <= 0 {
		c.Scoring.PageSize = 10
	}
	if c.Middleware.CircuitBreaker.Timeout == "" {
		c.Middleware.CircuitBreaker.Timeout = "30s"
	}
	if c.Middleware.CircuitBreaker.FailureThreshold == 0 {
		c.Middleware.CircuitBreaker.FailureThreshold = 5
	}
	if c.Middleware.CircuitBreaker.SuccessThreshold == 0 {
		c.Middleware.CircuitBreaker.SuccessThreshold = 1
	}
}
