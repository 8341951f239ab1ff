package entities

// CorrectionError is one detected mistake with its fix.
type CorrectionError struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

// CorrectionResult is the normalized output of every grammar provider.
// ErrorsCount always equals len(Errors).
type CorrectionResult struct {
	OriginalText  string            `json:"original_text"`
	CorrectedText string            `json:"corrected_text"`
	ErrorsCount   int               `json:"errors_count"`
	Errors        []CorrectionError `json:"errors"`
}

// NoChanges builds a result that leaves the text untouched.
func NoChanges(text string) *CorrectionResult {
	return &CorrectionResult{
		OriginalText:  text,
		CorrectedText: text,
		Errors:        []CorrectionError{},
	}
}
