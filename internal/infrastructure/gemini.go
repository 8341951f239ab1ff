package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hilalbot/internal/entities"
)

const geminiModel = "gemini-2.5-flash-lite"

// GeminiClient runs grammar checks, audio transcription and image OCR
// through the Gemini generateContent API. Keys are drawn from a KeyPool so a
// rate-limited key cools down while the others keep serving.
type GeminiClient struct {
	pool *KeyPool
}

func NewGeminiClient(keys []string) *GeminiClient {
	if len(keys) == 0 {
		Log.Warn("[Gemini] no API keys configured, adapter disabled")
	} else {
		Log.Infof("[Gemini] %d API key(s) in rotation", len(keys))
	}
	return &GeminiClient{pool: NewKeyPool(keys)}
}

func (c *GeminiClient) Name() string      { return "Gemini" }
func (c *GeminiClient) IsAvailable() bool { return c.pool.Size() > 0 }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) CorrectGrammar(ctx context.Context, text, language string) (*entities.CorrectionResult, error) {
	system, user := grammarPrompts(text, language)
	reply, err := c.generate(ctx, []geminiPart{{Text: system + "\n\n" + user}})
	if err != nil {
		return nil, err
	}
	return parseCorrectionJSON(text, reply), nil
}

// Transcribe downloads the audio and sends it inline as base64.
func (c *GeminiClient) Transcribe(ctx context.Context, mediaURL, language string) (string, error) {
	audio, err := downloadBytes(mediaURL)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "audio download failed", Err: err}
	}

	langName := langNames[language]
	if langName == "" {
		langName = "the spoken language"
	}
	prompt := fmt.Sprintf("Transcribe this audio recording in %s. Answer with the transcription text only, nothing else.", langName)

	reply, err := c.generate(ctx, []geminiPart{
		{Text: prompt},
		{InlineData: &geminiInlineData{MimeType: "audio/ogg", Data: base64.StdEncoding.EncodeToString(audio)}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ExtractText performs OCR on an image sent inline as base64.
func (c *GeminiClient) ExtractText(ctx context.Context, imageURL, language string) (string, error) {
	img, err := downloadBytes(imageURL)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "image download failed", Err: err}
	}

	langName := langNames[language]
	if langName == "" {
		langName = "Türkçe"
	}
	prompt := fmt.Sprintf("Read all %s text in this image, handwriting included. Answer with the extracted text only. If there is no readable text, answer with an empty string.", langName)

	reply, err := c.generate(ctx, []geminiPart{
		{Text: prompt},
		{InlineData: &geminiInlineData{MimeType: detectImageMime(img), Data: base64.StdEncoding.EncodeToString(img)}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// generate runs one generateContent call, rotating through the key pool
// until a key succeeds or every key is cooling down.
func (c *GeminiClient) generate(ctx context.Context, parts []geminiPart) (string, error) {
	var req geminiRequest
	req.Contents = make([]struct {
		Parts []geminiPart `json:"parts"`
	}, 1)
	req.Contents[0].Parts = parts
	req.GenerationConfig.Temperature = 0.3
	req.GenerationConfig.MaxOutputTokens = 2048
	payload, _ := json.Marshal(req)

	for attempt := 0; attempt < c.pool.Size(); attempt++ {
		key, err := c.pool.Acquire()
		if err != nil {
			break
		}

		reply, err := c.generateWithKey(ctx, key, payload)
		if err == nil {
			return reply, nil
		}

		var perr *ProviderError
		if errors.As(err, &perr) && perr.IsRateLimited() {
			c.pool.ReportRateLimited(key, perr.RetryAfter)
			Log.Warnf("[Gemini] key #%d rate limited, cooling %s", attempt, perr.RetryAfter)
			continue
		}
		c.pool.ReportFailed(key)
		return "", err
	}
	return "", &ProviderError{Provider: c.Name(), Message: "all API keys rate limited or exhausted", Err: ErrKeysExhausted}
}

func (c *GeminiClient) generateWithKey(ctx context.Context, key string, payload []byte) (string, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", geminiModel, key)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request build failed", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		perr := &ProviderError{
			Provider: c.Name(),
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			perr.RetryAfter = parseGeminiRetryDelay(body)
		}
		return "", perr
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "response parse failed", Err: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: c.Name(), Message: "empty candidate"}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// parseGeminiRetryDelay pulls RetryInfo.retryDelay ("14s") out of a 429
// error body. Falls back to the default cooldown when it is missing.
func parseGeminiRetryDelay(body []byte) time.Duration {
	var parsed struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, d := range parsed.Error.Details {
			if d.RetryDelay == "" {
				continue
			}
			if dur, err := time.ParseDuration(d.RetryDelay); err == nil && dur > 0 {
				return dur
			}
		}
	}
	return defaultCooldown
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
