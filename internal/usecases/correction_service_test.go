package usecases

import (
	"context"
	"errors"
	"testing"

	"hilalbot/internal/entities"
	"hilalbot/internal/interfaces"
)

type fakeChecker struct {
	name      string
	available bool
	result    *entities.CorrectionResult
	err       error
	calls     int
}

func (f *fakeChecker) Name() string      { return f.name }
func (f *fakeChecker) IsAvailable() bool { return f.available }
func (f *fakeChecker) CorrectGrammar(_ context.Context, text, _ string) (*entities.CorrectionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return entities.NoChanges(text), nil
}

type fakeTranscriber struct {
	name      string
	available bool
	text      string
	err       error
	calls     int
}

func (f *fakeTranscriber) Name() string      { return f.name }
func (f *fakeTranscriber) IsAvailable() bool { return f.available }
func (f *fakeTranscriber) Transcribe(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeExtractor struct {
	name      string
	available bool
	text      string
	err       error
}

func (f *fakeExtractor) Name() string      { return f.name }
func (f *fakeExtractor) IsAvailable() bool { return f.available }
func (f *fakeExtractor) ExtractText(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func TestCorrectTextSkipsUnavailable(t *testing.T) {
	unavailable := &fakeChecker{name: "first", available: false}
	serving := &fakeChecker{name: "second", available: true}

	svc := NewCorrectionService([]interfaces.GrammarChecker{unavailable, serving}, nil, nil, nil)

	result, err := svc.CorrectText(context.Background(), "hello", "tr")
	if err != nil {
		t.Fatal(err)
	}
	if unavailable.calls != 0 {
		t.Error("unavailable checker must not be invoked")
	}
	if serving.calls != 1 {
		t.Errorf("serving checker calls = %d, want 1", serving.calls)
	}
	if result.CorrectedText != "hello" {
		t.Errorf("corrected = %q", result.CorrectedText)
	}
}

func TestCorrectTextFallsThroughOnError(t *testing.T) {
	failing := &fakeChecker{name: "primary", available: true, err: errors.New("boom")}
	fallback := &fakeChecker{name: "fallback", available: true, result: &entities.CorrectionResult{
		OriginalText:  "hi",
		CorrectedText: "Hi",
		ErrorsCount:   1,
		Errors:        []entities.CorrectionError{{Original: "hi", Corrected: "Hi"}},
	}}

	svc := NewCorrectionService([]interfaces.GrammarChecker{failing, fallback}, nil, nil, nil)

	result, err := svc.CorrectText(context.Background(), "hi", "tr")
	if err != nil {
		t.Fatal(err)
	}
	if failing.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.calls, fallback.calls)
	}
	if result.CorrectedText != "Hi" {
		t.Errorf("corrected = %q, want fallback result", result.CorrectedText)
	}
}

func TestCorrectTextAllFailed(t *testing.T) {
	svc := NewCorrectionService([]interfaces.GrammarChecker{
		&fakeChecker{name: "a", available: true, err: errors.New("down")},
		&fakeChecker{name: "b", available: false},
	}, nil, nil, nil)

	if _, err := svc.CorrectText(context.Background(), "x", "tr"); err != ErrAllProvidersFailed {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
}

func TestTranscribeFallbackOrder(t *testing.T) {
	first := &fakeTranscriber{name: "first", available: true, err: errors.New("timeout")}
	second := &fakeTranscriber{name: "second", available: true, text: "merhaba"}

	svc := NewCorrectionService(nil, []interfaces.Transcriber{first, second}, nil, nil)

	text, err := svc.Transcribe(context.Background(), "http://files/x.ogg", "tr")
	if err != nil {
		t.Fatal(err)
	}
	if text != "merhaba" {
		t.Errorf("transcript = %q", text)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestAnalyzeImageOCRFallback(t *testing.T) {
	// no vision scanners; OCR output flows into the grammar chain
	checker := &fakeChecker{name: "grammar", available: true}
	extractor := &fakeExtractor{name: "ocr", available: true, text: "bugün hava güzel"}

	svc := NewCorrectionService([]interfaces.GrammarChecker{checker}, nil, nil,
		[]interfaces.TextExtractor{extractor})

	result, err := svc.AnalyzeImage(context.Background(), "http://files/p.jpg", "tr")
	if err != nil {
		t.Fatal(err)
	}
	if checker.calls != 1 {
		t.Errorf("grammar chain calls = %d, want 1", checker.calls)
	}
	if result.OriginalText != "bugün hava güzel" {
		t.Errorf("original = %q", result.OriginalText)
	}
}

func TestAnalyzeImageNoText(t *testing.T) {
	extractor := &fakeExtractor{name: "ocr", available: true, text: ""}
	svc := NewCorrectionService(nil, nil, nil, []interfaces.TextExtractor{extractor})

	result, err := svc.AnalyzeImage(context.Background(), "http://files/blank.jpg", "tr")
	if err != nil {
		t.Fatal(err)
	}
	if result.OriginalText != "" || result.ErrorsCount != 0 {
		t.Errorf("empty image should yield empty result, got %+v", result)
	}
}
