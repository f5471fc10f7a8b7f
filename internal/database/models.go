package database

import (
	"database/sql"
	"time"
)

// Message is one logged chat message. The log is the source for recaps,
// mention context and lurker scans because the Bot API offers no history.
type Message struct {
	ID          int64     `db:"id"`
	ChatID      int64     `db:"chat_id"`
	MessageID   int       `db:"message_id"`
	UserID      int64     `db:"user_id"`
	Username    string    `db:"username"`
	DisplayName string    `db:"display_name"`
	Content     string    `db:"content"`
	Timestamp   time.Time `db:"timestamp"`
	CreatedAt   time.Time `db:"created_at"`
}

// Participant is a known member of a chat.
type Participant struct {
	ChatID    int64        `db:"chat_id"`
	UserID    int64        `db:"user_id"`
	Username  string       `db:"username"`
	FirstName string       `db:"first_name"`
	LastName  string       `db:"last_name"`
	IsBot     bool         `db:"is_bot"`
	IsAdmin   bool         `db:"is_admin"`
	LastSeen  time.Time    `db:"last_seen"`
	LeftAt    sql.NullTime `db:"left_at"`
}

// HistoryTurn is one side of a /q exchange.
type HistoryTurn struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
