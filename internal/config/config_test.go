package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/errs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const minimalConfig = `
telegram:
  token: "123:abc"
  admin_user_id: 42
gemini:
  api_key: "key"
`

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Recap.DefaultLimit != 100 || cfg.Recap.MaxLimit != 1000 {
		t.Errorf("recap limits = %d/%d, want 100/1000", cfg.Recap.DefaultLimit, cfg.Recap.MaxLimit)
	}
	if cfg.VoteKick.PollTimeout != time.Minute {
		t.Errorf("PollTimeout = %v, want 1m", cfg.VoteKick.PollTimeout)
	}
	if cfg.VoteKick.Deadline != 0 {
		t.Errorf("Deadline = %v, want disabled", cfg.VoteKick.Deadline)
	}
	if cfg.Backend.ReframeAttempts != 5 {
		t.Errorf("ReframeAttempts = %d, want 5", cfg.Backend.ReframeAttempts)
	}
	if cfg.Media.MaxAttempts != 3 {
		t.Errorf("Media.MaxAttempts = %d, want 3", cfg.Media.MaxAttempts)
	}
	wantDB := config.DatabaseConfig{
		Path:            "recapbot.db",
		Retention:       30 * 24 * time.Hour,
		MaxOpenConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "wal",
	}
	if diff := cmp.Diff(wantDB, cfg.Database); diff != "" {
		t.Errorf("Database mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Scheduler.Tasks["sql_maintenance"].Enabled {
		t.Error("sql_maintenance task should be enabled by default")
	}
	if got := cfg.Messages().GeneralError; got == "" {
		t.Error("default catalog is missing the general error message")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, minimalConfig+`
vote_kick:
  poll_timeout: 30s
  deadline: 10m
random_reply:
  enabled: true
  percentage: 12.5
  deny_user_ids: [7, 8]
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := config.RandomReplyConfig{Enabled: true, Percentage: 12.5, DenyUserIDs: []int64{7, 8}, HistoryLimit: 10}
	if diff := cmp.Diff(want, cfg.RandomReply); diff != "" {
		t.Errorf("RandomReply mismatch (-want +got):\n%s", diff)
	}
	if cfg.VoteKick.PollTimeout != 30*time.Second || cfg.VoteKick.Deadline != 10*time.Minute {
		t.Errorf("VoteKick = %+v", cfg.VoteKick)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing token", body: "gemini:\n  api_key: key\ntelegram:\n  admin_user_id: 1\n"},
		{name: "percentage above 100", body: minimalConfig + "random_reply:\n  percentage: 150\n"},
		{name: "poll timeout too short", body: minimalConfig + "vote_kick:\n  poll_timeout: 1s\n"},
		{name: "max below default", body: minimalConfig + "recap:\n  default_limit: 50\n  max_limit: 10\n"},
		{name: "alt model without key", body: minimalConfig + "openai:\n  enabled: true\n"},
		{name: "empty connection pool", body: minimalConfig + "database:\n  max_open_conns: 0\n"},
		{name: "unknown journal mode", body: minimalConfig + "database:\n  journal_mode: fast\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("LoadConfig() expected an error")
			}
			if errs.Code(err) != errs.CodeConfig {
				t.Errorf("error code = %s, want %s", errs.Code(err), errs.CodeConfig)
			}
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("RECAPBOT_TELEGRAM_TOKEN", "999:env")
	t.Setenv("RECAPBOT_TELEGRAM_ADMIN_USER_ID", "5")
	t.Setenv("RECAPBOT_GEMINI_API_KEY", "env-key")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Telegram.Token != "999:env" || cfg.Telegram.AdminUserID != 5 || cfg.Gemini.APIKey != "env-key" {
		t.Errorf("environment overrides not applied: %+v %+v", cfg.Telegram, cfg.Gemini.APIKey)
	}
}

func TestSelectMessages(t *testing.T) {
	t.Parallel()

	catalogs := map[string]config.Messages{
		"en": {GeneralError: "error", NoAnswer: "no answer"},
		"pt": {GeneralError: "erro"},
	}

	tests := []struct {
		lang         string
		generalError string
	}{
		{lang: "pt-BR", generalError: "erro"},
		{lang: "pt", generalError: "erro"},
		{lang: "en-US", generalError: "error"},
		{lang: "ja", generalError: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()

			got := config.SelectMessages(catalogs, tt.lang)
			if got.GeneralError != tt.generalError {
				t.Errorf("GeneralError = %q, want %q", got.GeneralError, tt.generalError)
			}
			if got.NoAnswer != "no answer" {
				t.Errorf("NoAnswer = %q, want fallback from default catalog", got.NoAnswer)
			}
		})
	}
}
