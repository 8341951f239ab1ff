package entities

import "time"

// Post lifecycle. Status only advances forward: draft -> scheduled -> sent|failed.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusSent      = "sent"
	PostStatusFailed    = "failed"
)

// Post media types.
const (
	PostTypeText  = "text"
	PostTypePhoto = "photo"
	PostTypeVideo = "video"
)

// Post is an admin-authored message, sent to a single channel or broadcast
// to all subscribers of a bot variant, immediately or on a schedule.
type Post struct {
	ID               int        `json:"id"`
	Content          string     `json:"content"`
	MediaURL         string     `json:"media_url"`
	MediaPath        string     `json:"media_path"`
	Type             string     `json:"type"`
	ButtonText       string     `json:"button_text"`
	ButtonURL        string     `json:"button_url"`
	ChannelID        string     `json:"channel_id"`
	MessageID        string     `json:"message_id"`
	Status           string     `json:"status"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
	SentAt           *time.Time `json:"sent_at"`
	BroadcastToUsers bool       `json:"broadcast_to_users"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MediaSource prefers the locally uploaded file over a remote URL.
func (p *Post) MediaSource() string {
	if p.MediaPath != "" {
		return p.MediaPath
	}
	return p.MediaURL
}
