package entities

import "time"

// Bot variants. Each variant has its own token and its own subscriber base.
const (
	BotTurkish = "turkish"
	BotKorean  = "korean"
)

// Subscriber is a bot end user. Created on first interaction, never deleted;
// IsBlocked is flipped instead when delivery fails permanently.
type Subscriber struct {
	ID            int       `json:"id"`
	Bot           string    `json:"bot"`
	TelegramID    string    `json:"telegram_id"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Language      string    `json:"language"`
	TotalRequests int       `json:"total_requests"`
	TextRequests  int       `json:"text_requests"`
	VoiceRequests int       `json:"voice_requests"`
	ImageRequests int       `json:"image_requests"`
	IsBlocked     bool      `json:"is_blocked"`
	IsActive      bool      `json:"is_active"`
	LastActiveAt  time.Time `json:"last_active_at"`
	CreatedAt     time.Time `json:"created_at"`
}
