package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Telegram surface is disabled when the token is empty.
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`

	// Interview generation service
	ServiceBaseURL string        `env:"INTERVIEW_SERVICE_URL" envDefault:"http://localhost:8000"`
	ServiceTimeout time.Duration `env:"INTERVIEW_SERVICE_TIMEOUT" envDefault:"10s"`

	// Web chat widget; empty address disables it.
	WebAddr string `env:"WEB_ADDR" envDefault:":3000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Daily usage report
	ReportCron   string `env:"REPORT_CRON" envDefault:"0 21 * * *"`
	ReportChatID int64  `env:"REPORT_CHAT_ID"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	u, err := url.Parse(cfg.ServiceBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("INTERVIEW_SERVICE_URL must be an absolute URL, got %q", cfg.ServiceBaseURL)
	}
	if cfg.ServiceTimeout <= 0 {
		return nil, fmt.Errorf("INTERVIEW_SERVICE_TIMEOUT must be positive, got %s", cfg.ServiceTimeout)
	}
	if cfg.TelegramBotToken == "" && cfg.WebAddr == "" {
		return nil, fmt.Errorf("nothing to serve: set TELEGRAM_BOT_TOKEN and/or WEB_ADDR")
	}
	return cfg, nil
}
