package entities

import "time"

// Request kinds recorded per processed message.
const (
	RequestText      = "text"
	RequestVoice     = "voice"
	RequestImage     = "image"
	RequestVideo     = "video"
	RequestVideoNote = "video_note"
	RequestAudio     = "audio"
)

// UsageRecord is one row per processed user request. Append-only; read side
// is aggregate queries only.
type UsageRecord struct {
	ID            int       `json:"id"`
	TelegramID    string    `json:"telegram_id"`
	Bot           string    `json:"bot"`
	Type          string    `json:"type"`
	OriginalText  string    `json:"original_text"`
	CorrectedText string    `json:"corrected_text"`
	ErrorsCount   int       `json:"errors_count"`
	ProcessingMs  int64     `json:"processing_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
