package interfaces

import (
	"context"

	"hilalbot/internal/entities"
)

// GrammarChecker corrects text in a target language. Implementations that
// have no credentials configured report IsAvailable() == false and are
// skipped by the fallback chain without being invoked.
type GrammarChecker interface {
	Name() string
	IsAvailable() bool
	CorrectGrammar(ctx context.Context, text, language string) (*entities.CorrectionResult, error)
}

// Transcriber converts speech in an audio/video file (by URL) to text.
// An empty transcript with nil error means the provider produced nothing.
type Transcriber interface {
	Name() string
	IsAvailable() bool
	Transcribe(ctx context.Context, mediaURL, language string) (string, error)
}

// TextExtractor reads text out of an image (by URL).
type TextExtractor interface {
	Name() string
	IsAvailable() bool
	ExtractText(ctx context.Context, imageURL, language string) (string, error)
}

// Messenger delivers messages to a Telegram chat, channel, or user.
// buttonText/buttonURL attach a single inline URL button when both are set.
type Messenger interface {
	SendText(to, text, buttonText, buttonURL string) error
	SendPhoto(to, media, caption, buttonText, buttonURL string) error
	SendVideo(to, media, caption, buttonText, buttonURL string) error
}
