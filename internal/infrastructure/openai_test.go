package infrastructure

import (
	"strings"
	"testing"
)

func TestParseCorrectionJSON(t *testing.T) {
	reply := "```json\n{\"correctedText\": \"Bu çok güzel\", \"errors\": [" +
		"{\"original\": \"cok\", \"corrected\": \"çok\", \"explanation\": \"ç eksik\"}," +
		"{\"original\": \"guzel\", \"corrected\": \"güzel\", \"explanation\": \"ü ve z\"}" +
		"]}\n```"

	result := parseCorrectionJSON("Bu cok guzel", reply)

	if result.OriginalText != "Bu cok guzel" {
		t.Errorf("original = %q", result.OriginalText)
	}
	if result.CorrectedText != "Bu çok güzel" {
		t.Errorf("corrected = %q", result.CorrectedText)
	}
	if result.ErrorsCount != 2 || len(result.Errors) != 2 {
		t.Errorf("errors = %d/%d, want 2/2", result.ErrorsCount, len(result.Errors))
	}
}

func TestParseCorrectionJSONDegradesToOriginal(t *testing.T) {
	result := parseCorrectionJSON("merhaba", "I could not process that, sorry!")

	if result.CorrectedText != "merhaba" {
		t.Errorf("corrected = %q, want original text back", result.CorrectedText)
	}
	if result.ErrorsCount != 0 || len(result.Errors) != 0 {
		t.Errorf("unparseable reply must yield zero errors, got %d", result.ErrorsCount)
	}
}

func TestParseCorrectionJSONEmptyCorrection(t *testing.T) {
	result := parseCorrectionJSON("selam", `{"correctedText": "", "errors": []}`)
	if result.CorrectedText != "selam" {
		t.Errorf("empty correctedText should fall back to the original, got %q", result.CorrectedText)
	}
}

func TestGrammarPromptsLanguages(t *testing.T) {
	system, user := grammarPrompts("hello", "tr")
	if !strings.Contains(system, "Türkçe") {
		t.Error("turkish system prompt should name the language")
	}
	if !strings.Contains(system, "ç, ğ, ş") {
		t.Error("turkish prompt should carry the diacritic rules")
	}
	if !strings.Contains(user, "hello") {
		t.Error("user prompt must embed the text")
	}

	system, user = grammarPrompts("안녕", "ko")
	if !strings.Contains(system, "한국어") {
		t.Error("korean system prompt should be in Korean")
	}
	if !strings.Contains(user, "안녕") {
		t.Error("korean user prompt must embed the text")
	}
}
