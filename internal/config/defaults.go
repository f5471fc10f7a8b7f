package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("database.path", "recapbot.db")
	v.SetDefault("database.retention", 30*24*time.Hour)
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.journal_mode", "wal")

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 1.0)
	v.SetDefault("gemini.system_instruction", "You are a helpful member of a group chat. Answer in the language of the conversation and keep replies short.")
	v.SetDefault("gemini.max_retries", 3)
	v.SetDefault("gemini.retry_delay", 2*time.Second)
	v.SetDefault("gemini.timeout", 2*time.Minute)

	v.SetDefault("openai.enabled", false)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 1.0)
	v.SetDefault("openai.max_retries", 2)
	v.SetDefault("openai.timeout", 2*time.Minute)

	v.SetDefault("backend.reframe_attempts", 5)
	v.SetDefault("backend.breaker_max_failures", 5)
	v.SetDefault("backend.breaker_reset_interval", time.Minute)

	v.SetDefault("scheduler.tasks", map[string]any{
		"sql_maintenance":   map[string]any{"enabled": true, "schedule": "0 0 4 * * *"},
		"message_retention": map[string]any{"enabled": true, "schedule": "0 30 3 * * *"},
	})

	v.SetDefault("recap.default_limit", 100)
	v.SetDefault("recap.max_limit", 1000)
	v.SetDefault("recap.use_alt_model", false)

	v.SetDefault("question.history_limit", 20)
	v.SetDefault("mention.history_limit", 50)

	v.SetDefault("vote_kick.poll_timeout", 60*time.Second)
	v.SetDefault("vote_kick.deadline", time.Duration(0))

	v.SetDefault("lurkers.scan_window", 1000)

	v.SetDefault("random_reply.enabled", false)
	v.SetDefault("random_reply.percentage", 2.0)
	v.SetDefault("random_reply.history_limit", 10)

	v.SetDefault("media.max_attempts", 3)
	v.SetDefault("media.max_bytes", 10*1024*1024)
	v.SetDefault("media.download_timeout", 30*time.Second)

	v.SetDefault("language", DefaultLanguage)
	v.SetDefault("messages."+DefaultLanguage, defaultMessages)
}

var defaultMessages = map[string]any{
	"general_error":       "Something went wrong. Please try again later.",
	"no_answer":           "I have nothing to say about that.",
	"media_error":         "I could not read that attachment.",
	"unauthorized":        "You are not allowed to use this command.",
	"recap_invalid_limit": "Usage: /recap [N], where N is a number between 1 and %d.",
	"recap_empty":         "There is nothing to recap yet.",
	"history_cleared":     "Conversation history has been cleared.",
	"question_empty":      "Usage: /q <question>",
	"vote_kick_usage":     "Usage: /votekick @username",
	"vote_kick_self":      "Nice try. I am not voting myself out.",
	"vote_kick_admin":     "%s is an admin and cannot be kicked.",
	"vote_kick_not_found": "I could not find %s in this group.",
	"vote_kick_question":  "Kick %s from the group?",
	"vote_kick_yes":       "Yes",
	"vote_kick_no":        "No",
	"vote_kick_kicked":    "The group has spoken: %s was kicked (%d yes, %d no).",
	"vote_kick_retained":  "%s stays (%d yes, %d no).",
	"vote_kick_expired":   "The vote to kick %s expired without a result.",
	"vote_kick_failed":    "The vote to kick %s could not be completed.",
	"scan_none":           "No lurkers among the last %d messages.",
	"scan_header":         "Members without a message among the last %d:",
	"users_header":        "Known members (%d):",
	"users_empty":         "I do not know anyone here yet.",
	"admin_marker":        "admin",
}
