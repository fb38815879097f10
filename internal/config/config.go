package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ArticlesHarmonizer/internal/domain"
)

const (
	defaultTimezone      = "UTC"
	defaultMaxDuplicates = 100
	configPathEnv        = "HARMONIZER_CONFIG"
	databaseDriverEnv    = "DATABASE_DRIVER"
	databaseDSNEnv       = "DATABASE_DSN"
	logLevelEnv          = "LOG_LEVEL"
	logFormatEnv         = "LOG_FORMAT"
	httpAddrEnv          = "HTTP_ADDR"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	maxDuplicatesEnv     = "PIPELINE_MAX_DUPLICATES"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	HTTP          HTTPConfig         `yaml:"http"`
	Notifications NotificationConfig `yaml:"notifications"`
	Feeds         FeedsConfig        `yaml:"feeds"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DatabaseConfig describes the relational store holding staging, dimension and DQ tables.
type DatabaseConfig struct {
	Driver       string `yaml:"driver" validate:"required,oneof=sqlite3 postgres"`
	DSN          string `yaml:"dsn" validate:"required"`
	MaxOpenConns int    `yaml:"maxOpenConns" validate:"gte=0"`
}

// PipelineConfig tunes the validate-quarantine-integrate run.
// MaxDuplicates is a pointer so an explicit 0 (guard disabled) survives merging.
type PipelineConfig struct {
	Sources        []string      `yaml:"sources" validate:"required,min=1,dive,source"`
	MaxDuplicates  *int          `yaml:"maxDuplicates" validate:"omitempty,gte=0"`
	StopOnError    bool          `yaml:"stopOnError"`
	LockStaleAfter time.Duration `yaml:"lockStaleAfter" validate:"gt=0"`
}

// DuplicateLimit returns the duplicate guard threshold; 0 disables the guard.
func (p PipelineConfig) DuplicateLimit() int {
	if p.MaxDuplicates == nil {
		return defaultMaxDuplicates
	}
	return *p.MaxDuplicates
}

// SchedulerConfig defines how often serve mode runs the pipeline.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval" validate:"gt=0"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// HTTPConfig configures the monitoring API.
type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId" validate:"required_with=BotToken"`
}

// Enabled reports whether run reports should be sent.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// FeedsConfig lists the upstream inputs of the staging loaders.
type FeedsConfig struct {
	GFGCSV  string        `yaml:"gfgCsv"`
	Medium  []FeedConfig  `yaml:"medium" validate:"dive"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// FeedConfig is one Medium RSS feed.
type FeedConfig struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,http_url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("source", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseSource(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]error, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
	}
	return nil
}

// PipelineSources resolves the configured source names in order.
func (c Config) PipelineSources() ([]domain.Source, error) {
	out := make([]domain.Source, 0, len(c.Pipeline.Sources))
	for _, name := range c.Pipeline.Sources {
		src, err := domain.ParseSource(name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(maxDuplicatesEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("config: invalid %s=%q, keeping %d", maxDuplicatesEnv, v, c.Pipeline.DuplicateLimit())
		} else {
			c.Pipeline.MaxDuplicates = &n
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MaxOpenConns != 0 {
		base.Database.MaxOpenConns = override.Database.MaxOpenConns
	}

	if len(override.Pipeline.Sources) > 0 {
		base.Pipeline.Sources = override.Pipeline.Sources
	}
	if override.Pipeline.MaxDuplicates != nil {
		base.Pipeline.MaxDuplicates = override.Pipeline.MaxDuplicates
	}
	if override.Pipeline.StopOnError {
		base.Pipeline.StopOnError = true
	}
	if override.Pipeline.LockStaleAfter != 0 {
		base.Pipeline.LockStaleAfter = override.Pipeline.LockStaleAfter
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Feeds.GFGCSV != "" {
		base.Feeds.GFGCSV = override.Feeds.GFGCSV
	}
	if len(override.Feeds.Medium) > 0 {
		base.Feeds.Medium = override.Feeds.Medium
	}
	if override.Feeds.Timeout != 0 {
		base.Feeds.Timeout = override.Feeds.Timeout
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	maxDuplicates := defaultMaxDuplicates
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:harmonizer.db?_foreign_keys=on&_busy_timeout=5000"},
		Pipeline: PipelineConfig{
			Sources:        []string{"gfg", "medium"},
			MaxDuplicates:  &maxDuplicates,
			LockStaleAfter: 30 * time.Minute,
		},
		Scheduler: SchedulerConfig{Interval: time.Hour, Timezone: defaultTimezone, location: tz},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Feeds: FeedsConfig{
			Timeout: 15 * time.Second,
			Medium: []FeedConfig{
				{Name: "medium-data-engineering", URL: "https://medium.com/feed/tag/data-engineering"},
			},
		},
	}
}
