package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Scheduler SchedulerConfig
	Analysis  AnalysisConfig
	Identity  IdentityConfig
	Email     EmailConfig
	Chat      ChatConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	LogLevel       string `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SchedulerConfig struct {
	TickSeconds int `mapstructure:"tick_seconds"`
}

// Tick returns the scheduler period, defaulting to the 10 second
// reference interval.
func (c SchedulerConfig) Tick() time.Duration {
	if c.TickSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TickSeconds) * time.Second
}

type AnalysisConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type IdentityConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Configured reports whether alert email delivery is set up; when it is
// not, adherence alerts are silently skipped.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

type ChatConfig struct {
	DailyQuota    int `mapstructure:"daily_quota"`
	HistoryWindow int `mapstructure:"history_window"`
}

type AdminConfig struct {
	KeyHash string `mapstructure:"key_hash"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Chat.DailyQuota <= 0 {
		config.Chat.DailyQuota = 10
	}
	if config.Chat.HistoryWindow <= 0 {
		config.Chat.HistoryWindow = 20
	}

	return &config, nil
}
