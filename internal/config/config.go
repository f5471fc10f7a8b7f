// Package config loads the bot configuration from defaults, an optional YAML
// file and RECAPBOT_* environment variables, and validates the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/edgard/recapbot/internal/errs"
)

// EnvPrefix is the prefix of environment variables that override configuration keys.
const EnvPrefix = "RECAPBOT"

// Config is the complete, validated application configuration. It is built
// once at startup and passed to the components that need it.
type Config struct {
	Logger      LoggerConfig        `mapstructure:"logger"`
	Database    DatabaseConfig      `mapstructure:"database"`
	Telegram    TelegramConfig      `mapstructure:"telegram"`
	Gemini      GeminiConfig        `mapstructure:"gemini"`
	OpenAI      OpenAIConfig        `mapstructure:"openai"`
	Backend     BackendConfig       `mapstructure:"backend"`
	Scheduler   SchedulerConfig     `mapstructure:"scheduler"`
	Recap       RecapConfig         `mapstructure:"recap"`
	Question    QuestionConfig      `mapstructure:"question"`
	Mention     MentionConfig       `mapstructure:"mention"`
	VoteKick    VoteKickConfig      `mapstructure:"vote_kick"`
	Lurkers     LurkerConfig        `mapstructure:"lurkers"`
	RandomReply RandomReplyConfig   `mapstructure:"random_reply"`
	Media       MediaConfig         `mapstructure:"media"`
	Language    string              `mapstructure:"language"     validate:"required"`
	Catalogs    map[string]Messages `mapstructure:"messages"     validate:"required,min=1"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// Retention is how long logged chat messages are kept. Zero keeps them forever.
	Retention       time.Duration `mapstructure:"retention"         validate:"min=0"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"min=0"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"      validate:"min=0"`
	JournalMode     string        `mapstructure:"journal_mode"      validate:"omitempty,oneof=delete truncate persist memory wal off"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`
}

type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"            validate:"required"`
	ModelName         string        `mapstructure:"model_name"         validate:"required"`
	Temperature       float32       `mapstructure:"temperature"        validate:"min=0,max=2"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	MaxRetries        int           `mapstructure:"max_retries"        validate:"min=0,max=10"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"        validate:"min=0"`
	Timeout           time.Duration `mapstructure:"timeout"            validate:"min=1s,max=10m"`
}

// OpenAIConfig configures the optional alternate model.
type OpenAIConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	APIKey            string        `mapstructure:"api_key"            validate:"required_if=Enabled true"`
	BaseURL           string        `mapstructure:"base_url"           validate:"omitempty,url"`
	Model             string        `mapstructure:"model"              validate:"required_if=Enabled true"`
	Temperature       float64       `mapstructure:"temperature"        validate:"min=0,max=2"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	MaxRetries        int           `mapstructure:"max_retries"        validate:"min=0,max=10"`
	Timeout           time.Duration `mapstructure:"timeout"            validate:"min=1s,max=10m"`
}

// BackendConfig tunes the resilience wrappers around the generative backends.
type BackendConfig struct {
	ReframeAttempts      int           `mapstructure:"reframe_attempts"       validate:"min=1,max=10"`
	BreakerMaxFailures   int           `mapstructure:"breaker_max_failures"   validate:"min=1"`
	BreakerResetInterval time.Duration `mapstructure:"breaker_reset_interval" validate:"min=1s"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

type RecapConfig struct {
	DefaultLimit int  `mapstructure:"default_limit" validate:"min=1"`
	MaxLimit     int  `mapstructure:"max_limit"     validate:"gtefield=DefaultLimit"`
	UseAltModel  bool `mapstructure:"use_alt_model"`
}

type QuestionConfig struct {
	HistoryLimit int `mapstructure:"history_limit" validate:"min=0"`
}

type MentionConfig struct {
	HistoryLimit int `mapstructure:"history_limit" validate:"min=1"`
}

type VoteKickConfig struct {
	// PollTimeout is both the poll's open period and the re-check interval.
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"min=5s,max=10m"`
	// Deadline aborts a vote that is still unresolved after this long. Zero disables it.
	Deadline    time.Duration `mapstructure:"deadline"     validate:"min=0"`
}

type LurkerConfig struct {
	ScanWindow int `mapstructure:"scan_window" validate:"min=1"`
}

type RandomReplyConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Percentage   float64 `mapstructure:"percentage"     validate:"min=0,max=100"`
	AllowUserIDs []int64 `mapstructure:"allow_user_ids"`
	DenyUserIDs  []int64 `mapstructure:"deny_user_ids"`
	HistoryLimit int     `mapstructure:"history_limit"  validate:"min=1"`
}

type MediaConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"     validate:"min=1,max=10"`
	MaxBytes        int64         `mapstructure:"max_bytes"        validate:"min=1"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout" validate:"min=1s"`
}

// LoadConfig builds the configuration. A missing file at path is not an
// error: defaults and environment variables are used instead.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"telegram.token", "telegram.admin_user_id", "gemini.api_key", "openai.api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, errs.NewConfigError("failed to bind environment variable for "+key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, errs.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errs.NewConfigError("invalid configuration", err)
	}
	if _, ok := c.Catalogs[DefaultLanguage]; !ok {
		return errs.NewConfigError("message catalog for "+DefaultLanguage+" is required", nil)
	}
	if _, err := parseTag(c.Language); err != nil {
		return errs.NewConfigError("invalid language "+c.Language, err)
	}
	return nil
}
