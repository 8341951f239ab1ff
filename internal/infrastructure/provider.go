package infrastructure

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ProviderError is a failed call to an external correction/transcription
// service. RetryAfter > 0 marks the failure as rate limiting; the owning
// adapter cools the credential down for that duration.
type ProviderError struct {
	Provider   string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRateLimited reports whether the failure carried a retry-after hint.
func (e *ProviderError) IsRateLimited() bool { return e.RetryAfter > 0 }

// Outbound calls share one client; provider timeouts bound hung requests.
var httpClient = &http.Client{Timeout: 90 * time.Second}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// unwrapFencedJSON strips a markdown code fence if the LLM wrapped its JSON
// answer in one, and otherwise extracts the outermost {...} span.
func unwrapFencedJSON(s string) string {
	if m := fencedBlock.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

// downloadBytes fetches a media file (Telegram file link or upload URL).
func downloadBytes(url string) ([]byte, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// detectImageMime sniffs common image formats by magic bytes.
func detectImageMime(data []byte) string {
	if len(data) < 2 {
		return "image/jpeg"
	}
	switch {
	case data[0] == 0xff && data[1] == 0xd8:
		return "image/jpeg"
	case data[0] == 0x89 && data[1] == 0x50:
		return "image/png"
	case data[0] == 0x47 && data[1] == 0x49:
		return "image/gif"
	case data[0] == 0x52 && data[1] == 0x49:
		return "image/webp"
	}
	return "image/jpeg"
}
