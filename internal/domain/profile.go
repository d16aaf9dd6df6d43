package domain

import "time"

// UserProfile is one registered Telegram user. The chat id is the stable
// external identifier; at most one profile exists per chat id.
type UserProfile struct {
	ChatID    int64     `json:"chat_id"`
	FullName  string    `json:"full_name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
