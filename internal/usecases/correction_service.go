package usecases

import (
	"context"
	"errors"

	"hilalbot/internal/entities"
	"hilalbot/internal/infrastructure"
	"hilalbot/internal/interfaces"
)

// ErrAllProvidersFailed is returned when every provider in a chain failed
// or was unavailable.
var ErrAllProvidersFailed = errors.New("all providers failed")

// ImageScanner reads and corrects image text in a single call (vision
// models do both at once).
type ImageScanner interface {
	Name() string
	IsAvailable() bool
	AnalyzeImage(ctx context.Context, imageURL, language string) (*entities.CorrectionResult, error)
}

// CorrectionService runs provider fallback chains. Order is fixed at
// construction; each request walks the chain until a provider succeeds,
// skipping ones that report themselves unavailable.
type CorrectionService struct {
	checkers     []interfaces.GrammarChecker
	transcribers []interfaces.Transcriber
	scanners     []ImageScanner
	extractors   []interfaces.TextExtractor
}

func NewCorrectionService(
	checkers []interfaces.GrammarChecker,
	transcribers []interfaces.Transcriber,
	scanners []ImageScanner,
	extractors []interfaces.TextExtractor,
) *CorrectionService {
	return &CorrectionService{
		checkers:     checkers,
		transcribers: transcribers,
		scanners:     scanners,
		extractors:   extractors,
	}
}

// CorrectText walks the grammar chain. The last checker is the offline
// fallback, so in practice this only errors when the chain is empty.
func (s *CorrectionService) CorrectText(ctx context.Context, text, language string) (*entities.CorrectionResult, error) {
	for _, checker := range s.checkers {
		if !checker.IsAvailable() {
			continue
		}
		result, err := checker.CorrectGrammar(ctx, text, language)
		if err != nil {
			infrastructure.Log.Warnf("[Correction] %s failed: %v", checker.Name(), err)
			continue
		}
		infrastructure.Log.Debugf("[Correction] served by %s", checker.Name())
		return result, nil
	}
	return nil, ErrAllProvidersFailed
}

// Transcribe walks the speech-to-text chain.
func (s *CorrectionService) Transcribe(ctx context.Context, mediaURL, language string) (string, error) {
	for _, tr := range s.transcribers {
		if !tr.IsAvailable() {
			continue
		}
		text, err := tr.Transcribe(ctx, mediaURL, language)
		if err != nil {
			infrastructure.Log.Warnf("[Transcribe] %s failed: %v", tr.Name(), err)
			continue
		}
		infrastructure.Log.Debugf("[Transcribe] served by %s", tr.Name())
		return text, nil
	}
	return "", ErrAllProvidersFailed
}

// AnalyzeImage tries the one-shot vision scanners first, then falls back
// to plain OCR followed by the grammar chain on the extracted text.
func (s *CorrectionService) AnalyzeImage(ctx context.Context, imageURL, language string) (*entities.CorrectionResult, error) {
	for _, scanner := range s.scanners {
		if !scanner.IsAvailable() {
			continue
		}
		result, err := scanner.AnalyzeImage(ctx, imageURL, language)
		if err != nil {
			infrastructure.Log.Warnf("[Image] %s failed: %v", scanner.Name(), err)
			continue
		}
		return result, nil
	}

	for _, ex := range s.extractors {
		if !ex.IsAvailable() {
			continue
		}
		text, err := ex.ExtractText(ctx, imageURL, language)
		if err != nil {
			infrastructure.Log.Warnf("[Image] %s failed: %v", ex.Name(), err)
			continue
		}
		if text == "" {
			return entities.NoChanges(""), nil
		}
		return s.CorrectText(ctx, text, language)
	}

	return nil, ErrAllProvidersFailed
}
