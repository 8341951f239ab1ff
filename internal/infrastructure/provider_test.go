package infrastructure

import (
	"errors"
	"testing"
	"time"
)

func TestUnwrapFencedJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain json",
			in:   `{"correctedText": "ok"}`,
			want: `{"correctedText": "ok"}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"correctedText\": \"ok\"}\n```",
			want: `{"correctedText": "ok"}`,
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "prose around object",
			in:   "Here is the result: {\"a\": 1} hope it helps",
			want: `{"a": 1}`,
		},
		{
			name: "no json at all",
			in:   "sorry, cannot help",
			want: "sorry, cannot help",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := unwrapFencedJSON(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectImageMime(t *testing.T) {
	cases := []struct {
		data []byte
		want string
	}{
		{[]byte{0xff, 0xd8, 0xff}, "image/jpeg"},
		{[]byte{0x89, 0x50, 0x4e, 0x47}, "image/png"},
		{[]byte{0x47, 0x49, 0x46}, "image/gif"},
		{[]byte{0x52, 0x49, 0x46, 0x46}, "image/webp"},
		{[]byte{0x00}, "image/jpeg"},
		{nil, "image/jpeg"},
	}
	for _, tc := range cases {
		if got := detectImageMime(tc.data); got != tc.want {
			t.Errorf("detectImageMime(% x) = %q, want %q", tc.data, got, tc.want)
		}
	}
}

func TestProviderErrorRateLimited(t *testing.T) {
	perr := &ProviderError{Provider: "X", Message: "429", RetryAfter: 14 * time.Second}
	if !perr.IsRateLimited() {
		t.Error("expected rate limited")
	}

	var target *ProviderError
	wrapped := error(perr)
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As failed to match ProviderError")
	}
	if target.RetryAfter != 14*time.Second {
		t.Errorf("RetryAfter = %v, want 14s", target.RetryAfter)
	}

	plain := &ProviderError{Provider: "X", Message: "boom"}
	if plain.IsRateLimited() {
		t.Error("error without retry hint must not be rate limited")
	}
}

func TestParseGeminiRetryDelay(t *testing.T) {
	body := []byte(`{"error":{"details":[
		{"@type":"type.googleapis.com/google.rpc.ErrorInfo"},
		{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"14s"}
	]}}`)
	if got := parseGeminiRetryDelay(body); got != 14*time.Second {
		t.Errorf("got %v, want 14s", got)
	}

	if got := parseGeminiRetryDelay([]byte(`{}`)); got != defaultCooldown {
		t.Errorf("missing delay: got %v, want default", got)
	}
	if got := parseGeminiRetryDelay([]byte(`not json`)); got != defaultCooldown {
		t.Errorf("bad body: got %v, want default", got)
	}
}
