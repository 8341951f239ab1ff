package usecases

import (
	"context"
	"testing"
)

func TestBasicCheckerTurkishTypos(t *testing.T) {
	checker := NewBasicChecker()

	result, err := checker.CorrectGrammar(context.Background(), "Bu cok guzel", "tr")
	if err != nil {
		t.Fatal(err)
	}
	if result.CorrectedText != "Bu çok güzel" {
		t.Errorf("corrected = %q, want %q", result.CorrectedText, "Bu çok güzel")
	}
	if result.ErrorsCount != 2 {
		t.Errorf("errors = %d, want 2", result.ErrorsCount)
	}
	if result.ErrorsCount != len(result.Errors) {
		t.Errorf("ErrorsCount %d != len(Errors) %d", result.ErrorsCount, len(result.Errors))
	}
	if result.OriginalText != "Bu cok guzel" {
		t.Errorf("original = %q, want input preserved", result.OriginalText)
	}
}

func TestBasicCheckerPreservesCase(t *testing.T) {
	checker := NewBasicChecker()

	result, _ := checker.CorrectGrammar(context.Background(), "Cok iyi", "tr")
	if result.CorrectedText != "Çok iyi" {
		t.Errorf("corrected = %q, want %q", result.CorrectedText, "Çok iyi")
	}
}

func TestBasicCheckerSpacingAndPunctuation(t *testing.T) {
	checker := NewBasicChecker()

	cases := []struct {
		in   string
		want string
	}{
		{"merhaba  dünya", "Merhaba dünya"},
		{"merhaba , nasılsın ?", "Merhaba, nasılsın?"},
		{"bir.iki", "Bir. İki"},
	}
	for _, tc := range cases {
		result, _ := checker.CorrectGrammar(context.Background(), tc.in, "tr")
		if result.CorrectedText != tc.want {
			t.Errorf("CorrectGrammar(%q) = %q, want %q", tc.in, result.CorrectedText, tc.want)
		}
	}
}

func TestBasicCheckerKorean(t *testing.T) {
	checker := NewBasicChecker()

	result, _ := checker.CorrectGrammar(context.Background(), "나 내일 갈께", "ko")
	if result.CorrectedText != "나 내일 갈게" {
		t.Errorf("corrected = %q, want %q", result.CorrectedText, "나 내일 갈게")
	}
	if result.ErrorsCount != 1 {
		t.Errorf("errors = %d, want 1", result.ErrorsCount)
	}
}

func TestBasicCheckerCleanTextUnchanged(t *testing.T) {
	checker := NewBasicChecker()

	clean := "Bugün hava güzel."
	result, _ := checker.CorrectGrammar(context.Background(), clean, "tr")
	if result.CorrectedText != clean {
		t.Errorf("corrected = %q, want unchanged", result.CorrectedText)
	}
	if result.ErrorsCount != 0 {
		t.Errorf("errors = %d, want 0", result.ErrorsCount)
	}
}

func TestBasicCheckerIdempotent(t *testing.T) {
	checker := NewBasicChecker()

	first, _ := checker.CorrectGrammar(context.Background(), "bu cok  guzel , evet", "tr")
	second, _ := checker.CorrectGrammar(context.Background(), first.CorrectedText, "tr")

	if second.CorrectedText != first.CorrectedText {
		t.Errorf("second pass changed text: %q -> %q", first.CorrectedText, second.CorrectedText)
	}
	if second.ErrorsCount != 0 {
		t.Errorf("second pass found %d errors, want 0", second.ErrorsCount)
	}
}
