package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// AssemblyAIClient transcribes audio through AssemblyAI's async API:
// submit the media URL, then poll the transcript until it settles.
type AssemblyAIClient struct {
	apiKey string
}

func NewAssemblyAIClient(apiKey string) *AssemblyAIClient {
	return &AssemblyAIClient{apiKey: apiKey}
}

func (c *AssemblyAIClient) Name() string      { return "AssemblyAI" }
func (c *AssemblyAIClient) IsAvailable() bool { return c.apiKey != "" }

const (
	assemblyPollInterval = time.Second
	assemblyPollLimit    = 60
)

func (c *AssemblyAIClient) Transcribe(ctx context.Context, mediaURL, language string) (string, error) {
	if !c.IsAvailable() {
		return "", &ProviderError{Provider: c.Name(), Message: "API key not configured"}
	}

	payload := map[string]interface{}{"audio_url": mediaURL}
	if language != "" {
		payload["language_code"] = language
	} else {
		payload["language_detection"] = true
	}
	body, _ := json.Marshal(payload)

	var submitted struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, "POST", "https://api.assemblyai.com/v2/transcript", bytes.NewReader(body), &submitted); err != nil {
		return "", err
	}
	if submitted.ID == "" {
		return "", &ProviderError{Provider: c.Name(), Message: "submit returned no transcript id"}
	}

	pollURL := "https://api.assemblyai.com/v2/transcript/" + submitted.ID
	for attempt := 0; attempt < assemblyPollLimit; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(assemblyPollInterval):
		}

		var status struct {
			Status string `json:"status"`
			Text   string `json:"text"`
			Error  string `json:"error"`
		}
		if err := c.call(ctx, "GET", pollURL, nil, &status); err != nil {
			return "", err
		}
		switch status.Status {
		case "completed":
			return status.Text, nil
		case "error":
			return "", &ProviderError{Provider: c.Name(), Message: "transcription failed: " + status.Error}
		}
	}
	return "", &ProviderError{Provider: c.Name(), Message: "transcription timed out"}
}

func (c *AssemblyAIClient) call(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &ProviderError{Provider: c.Name(), Message: "request build failed", Err: err}
	}
	req.Header.Set("Authorization", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: c.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return &ProviderError{
			Provider:   c.Name(),
			Message:    fmt.Sprintf("status %d: %s", resp.StatusCode, msg),
			RetryAfter: retryAfterForStatus(resp.StatusCode),
		}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// DeepgramClient transcribes audio through Deepgram's sync listen API. The
// media is downloaded first because Telegram file links expire too quickly
// for Deepgram's own fetcher.
type DeepgramClient struct {
	apiKey string
}

func NewDeepgramClient(apiKey string) *DeepgramClient {
	return &DeepgramClient{apiKey: apiKey}
}

func (c *DeepgramClient) Name() string      { return "Deepgram" }
func (c *DeepgramClient) IsAvailable() bool { return c.apiKey != "" }

func (c *DeepgramClient) Transcribe(ctx context.Context, mediaURL, language string) (string, error) {
	if !c.IsAvailable() {
		return "", &ProviderError{Provider: c.Name(), Message: "API key not configured"}
	}

	audio, err := downloadBytes(mediaURL)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "audio download failed", Err: err}
	}

	params := url.Values{}
	params.Set("model", "nova-2")
	params.Set("smart_format", "true")
	if language != "" {
		params.Set("language", language)
	} else {
		params.Set("detect_language", "true")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.deepgram.com/v1/listen?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request build failed", Err: err}
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "audio/ogg")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return "", &ProviderError{
			Provider:   c.Name(),
			Message:    fmt.Sprintf("status %d: %s", resp.StatusCode, msg),
			RetryAfter: retryAfterForStatus(resp.StatusCode),
		}
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "response parse failed", Err: err}
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", &ProviderError{Provider: c.Name(), Message: "empty transcript"}
	}
	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}
