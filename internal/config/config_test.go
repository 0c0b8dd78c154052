package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Quiz.AdaptiveWindow != 5 || cfg.Quiz.DefaultCount != 5 {
		t.Errorf("quiz defaults: %+v", cfg.Quiz)
	}
	if cfg.Quiz.PromoteThreshold != 80 || cfg.Quiz.DemoteThreshold != 40 {
		t.Errorf("thresholds: %+v", cfg.Quiz)
	}
	if cfg.Attention.Window != 10 || cfg.Attention.Sensitivity != 0.5 {
		t.Errorf("attention defaults: %+v", cfg.Attention)
	}
	if cfg.Attention.Cooldown.Seconds() != 30 {
		t.Errorf("cooldown = %v, want 30s", cfg.Attention.Cooldown)
	}
	if cfg.Rewards.StartingCoins != 100 || cfg.Rewards.LevelUpBonus != 20 {
		t.Errorf("reward defaults: %+v", cfg.Rewards)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STUDYQUEST_DB", "/tmp/override.db")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.Env != "production" {
		t.Errorf("env = %q", cfg.Env)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero adaptive window", func(c *Config) { c.Quiz.AdaptiveWindow = 0 }},
		{"inverted thresholds", func(c *Config) { c.Quiz.PromoteThreshold = 40; c.Quiz.DemoteThreshold = 80 }},
		{"zero attention window", func(c *Config) { c.Attention.Window = 0 }},
		{"sensitivity above one", func(c *Config) { c.Attention.Sensitivity = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
