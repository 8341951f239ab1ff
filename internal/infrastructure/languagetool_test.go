package infrastructure

import "testing"

func ltMatch(offset, length int, replacement, message string) languageToolMatch {
	var m languageToolMatch
	m.Offset = offset
	m.Length = length
	m.Message = message
	m.Replacements = []struct {
		Value string `json:"value"`
	}{{Value: replacement}}
	return m
}

func TestApplyMatchesSplices(t *testing.T) {
	text := "this is a tst of the sytem"
	matches := []languageToolMatch{
		ltMatch(10, 3, "test", "Possible typo"),
		ltMatch(21, 5, "system", "Possible typo"),
	}

	result := applyMatches(text, matches)

	if result.CorrectedText != "this is a test of the system" {
		t.Errorf("corrected = %q", result.CorrectedText)
	}
	if result.OriginalText != text {
		t.Errorf("original = %q, want input preserved", result.OriginalText)
	}
	if result.ErrorsCount != 2 || len(result.Errors) != 2 {
		t.Fatalf("errors = %d/%d, want 2/2", result.ErrorsCount, len(result.Errors))
	}
	// document order
	if result.Errors[0].Original != "tst" || result.Errors[0].Corrected != "test" {
		t.Errorf("first error = %+v", result.Errors[0])
	}
	if result.Errors[1].Original != "sytem" || result.Errors[1].Corrected != "system" {
		t.Errorf("second error = %+v", result.Errors[1])
	}
}

func TestApplyMatchesNoReplacements(t *testing.T) {
	text := "nothing to fix"
	var m languageToolMatch
	m.Offset = 0
	m.Length = 7
	m.Message = "style hint without replacement"

	result := applyMatches(text, []languageToolMatch{m})

	if result.CorrectedText != text {
		t.Errorf("corrected = %q, want unchanged", result.CorrectedText)
	}
	if result.ErrorsCount != 0 {
		t.Errorf("errors = %d, want 0", result.ErrorsCount)
	}
}

func TestApplyMatchesOutOfRange(t *testing.T) {
	text := "short"
	matches := []languageToolMatch{ltMatch(3, 99, "x", "broken offset")}

	result := applyMatches(text, matches)
	if result.CorrectedText != text {
		t.Errorf("corrected = %q, want unchanged on bad offsets", result.CorrectedText)
	}
}
