package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mail     MailConfig     `mapstructure:"mail"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Trace    TraceConfig    `mapstructure:"trace"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // debug / release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres / sqlite
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 访问令牌配置
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// MailConfig 邮件发送配置（dev 模式只写日志）
type MailConfig struct {
	Mode string `mapstructure:"mode"` // smtp / log
	Addr string `mapstructure:"addr"`
	From string `mapstructure:"from"`
}

// SentryConfig 异常上报配置
type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// TraceConfig OTLP 上报配置
type TraceConfig struct {
	Endpoint string `mapstructure:"endpoint"` // 空则不启用
}

// FeedConfig 信息流默认参数
type FeedConfig struct {
	DefaultLimit   int           `mapstructure:"default_limit"`
	MaxLimit       int           `mapstructure:"max_limit"`
	RepliesPerPage int           `mapstructure:"replies_per_page"` // 评论内联回复预览条数
	ViewFlush      time.Duration `mapstructure:"view_flush"`       // 浏览数落库间隔
}

// Load 读取 config.yaml 并允许 UNMASK_ 前缀环境变量覆盖
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("UNMASK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "unmask.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("mail.mode", "log")
	v.SetDefault("feed.default_limit", 10)
	v.SetDefault("feed.max_limit", 50)
	v.SetDefault("feed.replies_per_page", 2)
	v.SetDefault("feed.view_flush", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		// 允许无配置文件启动（全部走默认值 + 环境变量）
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
