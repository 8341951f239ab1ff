package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hilalbot/internal/entities"
)

var languageToolCodes = map[string]string{
	"tr": "tr-TR",
	"ko": "ko-KR",
	"en": "en-US",
	"ru": "ru-RU",
}

// LanguageToolClient checks text against the public LanguageTool API. It is
// a rule-based fallback behind the LLM checkers, so it needs no API key.
type LanguageToolClient struct {
	baseURL string
}

func NewLanguageToolClient() *LanguageToolClient {
	return &LanguageToolClient{baseURL: "https://api.languagetool.org"}
}

func (c *LanguageToolClient) Name() string      { return "LanguageTool" }
func (c *LanguageToolClient) IsAvailable() bool { return true }

type languageToolMatch struct {
	Message      string `json:"message"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

func (c *LanguageToolClient) CorrectGrammar(ctx context.Context, text, language string) (*entities.CorrectionResult, error) {
	code, ok := languageToolCodes[language]
	if !ok {
		code = "auto"
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", code)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: "request build failed", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &ProviderError{
			Provider:   c.Name(),
			Message:    fmt.Sprintf("status %d: %s", resp.StatusCode, body),
			RetryAfter: retryAfterForStatus(resp.StatusCode),
		}
	}

	var parsed struct {
		Matches []languageToolMatch `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: "response parse failed", Err: err}
	}

	return applyMatches(text, parsed.Matches), nil
}

// applyMatches splices the first replacement of every match into the text.
// Matches are applied back to front so earlier offsets stay valid.
func applyMatches(text string, matches []languageToolMatch) *entities.CorrectionResult {
	corrected := []byte(text)
	errs := make([]entities.CorrectionError, 0, len(matches))

	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if len(m.Replacements) == 0 || m.Offset < 0 || m.Offset+m.Length > len(corrected) {
			continue
		}
		original := string(corrected[m.Offset : m.Offset+m.Length])
		replacement := m.Replacements[0].Value
		corrected = append(corrected[:m.Offset], append([]byte(replacement), corrected[m.Offset+m.Length:]...)...)
		errs = append(errs, entities.CorrectionError{
			Original:    original,
			Corrected:   replacement,
			Explanation: m.Message,
		})
	}

	// applied in reverse, report in document order
	for i, j := 0, len(errs)-1; i < j; i, j = i+1, j-1 {
		errs[i], errs[j] = errs[j], errs[i]
	}

	return &entities.CorrectionResult{
		OriginalText:  text,
		CorrectedText: string(corrected),
		ErrorsCount:   len(errs),
		Errors:        errs,
	}
}

func retryAfterForStatus(status int) time.Duration {
	if status == http.StatusTooManyRequests {
		return defaultCooldown
	}
	return 0
}
