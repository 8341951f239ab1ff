package entities

import "time"

// Channel is a Telegram channel managed from the admin panel. Mandatory
// channels gate bot interaction: users must join them before the bot replies.
type Channel struct {
	ID              int       `json:"id"`
	ChannelID       string    `json:"channel_id"`
	ChannelUsername string    `json:"channel_username"`
	Title           string    `json:"title"`
	PhotoURL        string    `json:"photo_url"`
	IsMandatory     bool      `json:"is_mandatory"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
