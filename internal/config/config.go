package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds engine configuration loaded from files and environment variables.
type Config struct {
	Env       string    `mapstructure:"env"`       // current application environment (local, dev, production)
	DBPath    string    `mapstructure:"-"`         // SQLite database path loaded from environment
	Server    Server    `mapstructure:"server"`    // HTTP API section
	Quiz      Quiz      `mapstructure:"quiz"`      // adaptive quiz policy tunables
	Attention Attention `mapstructure:"attention"` // attention alert policy tunables
	Rewards   Rewards   `mapstructure:"rewards"`   // coin/XP reward tunables
}

// Server contains HTTP API configuration.
type Server struct {
	Addr string `mapstructure:"addr"` // listen address for the serve command
}

// Quiz contains the adaptive quiz policy parameters.
type Quiz struct {
	AdaptiveWindow     int     `mapstructure:"adaptive_window"`      // attempts considered when resolving "auto" difficulty
	PromoteThreshold   float64 `mapstructure:"promote_threshold"`    // rolling accuracy (0-100) at or above which difficulty steps up
	DemoteThreshold    float64 `mapstructure:"demote_threshold"`     // rolling accuracy (0-100) at or below which difficulty steps down
	WeakTopicWindow    int     `mapstructure:"weak_topic_window"`    // attempts considered per topic for weak-topic detection
	WeakTopicThreshold float64 `mapstructure:"weak_topic_threshold"` // accuracy (0-100) below which a topic is weak
	DefaultCount       int     `mapstructure:"default_count"`        // question count when the caller passes 0
}

// Attention contains the attention alert policy parameters.
type Attention struct {
	Window      int           `mapstructure:"window"`      // samples in the rolling average
	Sensitivity float64       `mapstructure:"sensitivity"` // rolling average (0-1) below which an alert may fire
	Cooldown    time.Duration `mapstructure:"cooldown"`    // minimum interval between alerts per student
}

// Rewards contains the coin and XP reward parameters.
type Rewards struct {
	StartingCoins  int `mapstructure:"starting_coins"`   // balance granted to a freshly created profile
	EasyBase       int `mapstructure:"easy_base"`        // base coins for an easy-tier quiz
	MediumBase     int `mapstructure:"medium_base"`      // base coins for a medium-tier quiz
	HardBase       int `mapstructure:"hard_base"`        // base coins for a hard-tier quiz
	VideoBase      int `mapstructure:"video_base"`       // base coins for a completed video session
	LevelUpBonus   int `mapstructure:"level_up_bonus"`   // bonus coins per new level on level up
}

// Load reads configuration from config files and environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Defaults for every tunable.
	v.SetDefault("env", "local")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("quiz.adaptive_window", 5)
	v.SetDefault("quiz.promote_threshold", 80.0)
	v.SetDefault("quiz.demote_threshold", 40.0)
	v.SetDefault("quiz.weak_topic_window", 10)
	v.SetDefault("quiz.weak_topic_threshold", 60.0)
	v.SetDefault("quiz.default_count", 5)
	v.SetDefault("attention.window", 10)
	v.SetDefault("attention.sensitivity", 0.5)
	v.SetDefault("attention.cooldown", "30s")
	v.SetDefault("rewards.starting_coins", 100)
	v.SetDefault("rewards.easy_base", 10)
	v.SetDefault("rewards.medium_base", 20)
	v.SetDefault("rewards.hard_base", 30)
	v.SetDefault("rewards.video_base", 20)
	v.SetDefault("rewards.level_up_bonus", 20)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("studyquest_db", "STUDYQUEST_DB")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.DBPath = v.GetString("studyquest_db")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Quiz.AdaptiveWindow <= 0 {
		return errors.New("quiz.adaptive_window must be positive")
	}
	if c.Quiz.PromoteThreshold <= c.Quiz.DemoteThreshold {
		return errors.New("quiz.promote_threshold must exceed quiz.demote_threshold")
	}
	if c.Attention.Window <= 0 {
		return errors.New("attention.window must be positive")
	}
	if c.Attention.Sensitivity < 0 || c.Attention.Sensitivity > 1 {
		return errors.New("attention.sensitivity must be within [0,1]")
	}
	return nil
}
