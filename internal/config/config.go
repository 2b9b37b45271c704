package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Jobs     JobsConfig
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	DSN string
}

// RedisConfig Addr 为空时不启用 redis（不校验登录 token，不缓存屏蔽集合）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig Brokers 为空时 outbox 只打日志
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type JWTConfig struct {
	AccessSecret  string `mapstructure:"access_secret"`
	RefreshSecret string `mapstructure:"refresh_secret"`
}

type JobsConfig struct {
	OutboxEvery    time.Duration `mapstructure:"outbox_every"`
	ReconcileEvery time.Duration `mapstructure:"reconcile_every"`
	OutboxBatch    int           `mapstructure:"outbox_batch"`
	ReconcileBatch int           `mapstructure:"reconcile_batch"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.dsn", "user:password@tcp(127.0.0.1:3306)/community?charset=utf8mb4&parseTime=True")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "social-graph")
	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jobs.outbox_every", "5s")
	v.SetDefault("jobs.reconcile_every", "5m")
	v.SetDefault("jobs.outbox_batch", 200)
	v.SetDefault("jobs.reconcile_batch", 500)
}

// Load 读取 settings.toml（当前目录或上一级），环境变量 COMMUNITY_XXX_YYY 覆盖配置项 xxx.yyy
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("settings")
	v.SetConfigType("toml")
	v.SetEnvPrefix("community")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read settings: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	if cfg.Jobs.OutboxEvery <= 0 || cfg.Jobs.ReconcileEvery <= 0 {
		return nil, errors.New("jobs intervals must be positive")
	}
	return &cfg, nil
}
