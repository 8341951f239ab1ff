package http

import (
	"strings"
	"unicode/utf8"
)

// Input bounds for admin-authored content.
const (
	MaxPostContentLength = 4096 // Telegram message limit
	MaxButtonTextLength  = 64
	MaxTitleLength       = 256
	MaxURLLength         = 2048
)

// Upload limits for post media.
const MaxUploadBytes = 50 << 20 // 50MB

// allowedUploadTypes maps accepted MIME types to the stored extension.
var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/mpeg": ".mpeg",
	"video/webm": ".webm",
}

// SanitizeString removes null bytes and keeps only valid UTF-8.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// ValidateLength checks if string is within bounds
func ValidateLength(s string, min, max int) bool {
	l := len(s)
	return l >= min && l <= max
}

// ValidHTTPURL accepts http(s) URLs only, for inline buttons and media.
func ValidHTTPURL(s string) bool {
	if s == "" || len(s) > MaxURLLength {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
