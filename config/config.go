package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Addr        string `envconfig:"ADDR" default:":5000"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	AdminUser string `envconfig:"ADMIN_USER"`
	AdminPass string `envconfig:"ADMIN_PASS"`

	SMTP SMTP
	Scan Scan
	Log  Log
}

type SMTP struct {
	Host       string `envconfig:"SMTP_HOST"`
	Port       int    `envconfig:"SMTP_PORT" default:"587"`
	User       string `envconfig:"SMTP_USER"`
	Pass       string `envconfig:"SMTP_PASS"`
	SenderName string `envconfig:"SMTP_SENDER_NAME" default:"Hệ thống Quản lý Chứng thư số - Thuế TP. Hải Phòng"`
}

type Scan struct {
	DailyAt       string        `envconfig:"SCAN_DAILY_AT" default:"08:00"`
	Timezone      string        `envconfig:"SCAN_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	WindowMinDays int           `envconfig:"SCAN_WINDOW_MIN_DAYS" default:"0"`
	WindowMaxDays int           `envconfig:"SCAN_WINDOW_MAX_DAYS" default:"45"`
	Dedupe        bool          `envconfig:"SCAN_DEDUPE" default:"false"`
	ManualTimeout time.Duration `envconfig:"SCAN_MANUAL_TIMEOUT" default:"0"`
}

type Log struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"text"`
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Scan.WindowMinDays < 0 {
		return errors.New("config: scan window min days cannot be negative")
	}
	if c.Scan.WindowMaxDays < c.Scan.WindowMinDays {
		return errors.New("config: scan window max days cannot be below min days")
	}
	if _, err := time.Parse("15:04", c.Scan.DailyAt); err != nil {
		return fmt.Errorf("config: invalid SCAN_DAILY_AT %q, want HH:MM", c.Scan.DailyAt)
	}
	if _, err := time.LoadLocation(c.Scan.Timezone); err != nil {
		return fmt.Errorf("config: invalid SCAN_TIMEZONE %q: %w", c.Scan.Timezone, err)
	}
	return nil
}

// NewLogger builds the process logger: level and format from config, stdout
// by default, with an optional rolling file sink.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if c.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if c.Log.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAge:     c.Log.MaxAgeDays,
			Compress:   true,
		})
	}
	log.SetOutput(out)
	return log
}
