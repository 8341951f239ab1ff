package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"hilalbot/internal/entities"
)

const openAIModel = "gpt-4o"

var langNames = map[string]string{
	"tr": "Türkçe",
	"ko": "한국어",
	"en": "English",
	"ru": "Русский",
}

// OpenAIClient talks to the OpenAI API: GPT-4o for grammar and image
// analysis, Whisper for transcription.
type OpenAIClient struct {
	apiKey string
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	if apiKey == "" {
		Log.Warn("[OpenAI] OPENAI_API_KEY not configured, adapter disabled")
	}
	return &OpenAIClient{apiKey: apiKey}
}

func (c *OpenAIClient) Name() string      { return "OpenAI" }
func (c *OpenAIClient) IsAvailable() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) CorrectGrammar(ctx context.Context, text, language string) (*entities.CorrectionResult, error) {
	if !c.IsAvailable() {
		return nil, &ProviderError{Provider: c.Name(), Message: "API key not configured"}
	}

	system, user := grammarPrompts(text, language)
	req := chatRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	}

	content, err := c.chat(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseCorrectionJSON(text, content), nil
}

// AnalyzeImage reads the text in an image with GPT-4o vision and corrects it
// in one request. OriginalText in the result is the text as read.
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, imageURL, language string) (*entities.CorrectionResult, error) {
	if !c.IsAvailable() {
		return nil, &ProviderError{Provider: c.Name(), Message: "API key not configured"}
	}

	langName := langNames[language]
	if langName == "" {
		langName = "Türkçe"
	}
	prompt := fmt.Sprintf(`Read all %s text in this image (handwriting included), then check it for grammar and spelling mistakes.
Answer ONLY with JSON in this exact shape:
{"originalText": "text as read from the image", "correctedText": "corrected text", "errors": [{"original": "...", "corrected": "...", "explanation": "..."}]}
If the image contains no readable text, return {"originalText": "", "correctedText": "", "errors": []}.`, langName)

	req := chatRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "user", Content: []map[string]interface{}{
				{"type": "text", "text": prompt},
				{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
			}},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	}

	content, err := c.chat(ctx, req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		OriginalText  string                     `json:"originalText"`
		CorrectedText string                     `json:"correctedText"`
		Errors        []entities.CorrectionError `json:"errors"`
	}
	if err := json.Unmarshal([]byte(unwrapFencedJSON(content)), &parsed); err != nil {
		Log.Warnf("[OpenAI] vision parse error: %v", err)
		return entities.NoChanges(""), nil
	}
	if parsed.Errors == nil {
		parsed.Errors = []entities.CorrectionError{}
	}
	return &entities.CorrectionResult{
		OriginalText:  parsed.OriginalText,
		CorrectedText: parsed.CorrectedText,
		ErrorsCount:   len(parsed.Errors),
		Errors:        parsed.Errors,
	}, nil
}

// Transcribe downloads the audio and runs it through Whisper.
func (c *OpenAIClient) Transcribe(ctx context.Context, mediaURL, language string) (string, error) {
	if !c.IsAvailable() {
		return "", &ProviderError{Provider: c.Name(), Message: "API key not configured"}
	}

	audio, err := downloadBytes(mediaURL)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "audio download failed", Err: err}
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "audio.ogg")
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "multipart build failed", Err: err}
	}
	if _, err := part.Write(audio); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "multipart build failed", Err: err}
	}
	_ = w.WriteField("model", "whisper-1")
	if language != "" {
		_ = w.WriteField("language", language)
	}
	w.Close()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/audio/transcriptions", &body)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request build failed", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "whisper request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp, "whisper")
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "whisper response parse failed", Err: err}
	}
	return parsed.Text, nil
}

func (c *OpenAIClient) chat(ctx context.Context, req chatRequest) (string, error) {
	payload, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request build failed", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp, "chat")
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "response parse failed", Err: err}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &ProviderError{Provider: c.Name(), Message: "empty completion"}
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) statusError(resp *http.Response, op string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	perr := &ProviderError{
		Provider: c.Name(),
		Message:  fmt.Sprintf("%s status %d: %s", op, resp.StatusCode, msg),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		perr.RetryAfter = defaultCooldown
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				perr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
	}
	return perr
}

// grammarPrompts builds the system/user prompt pair. Korean gets its own
// prompt; other languages share a template, with extra diacritic rules for
// Turkish where learners routinely type ASCII stand-ins.
func grammarPrompts(text, language string) (system, user string) {
	langName := langNames[language]
	if langName == "" {
		langName = "Türkçe"
	}

	if language == "ko" {
		system = `당신은 전문 한국어 문법 검사기입니다. 텍스트의 문법, 맞춤법, 띄어쓰기, 문장 부호 오류를 찾아 수정하세요.
답변은 반드시 다음 JSON 형식으로만 제공하세요:
{"correctedText": "수정된 텍스트", "errors": [{"original": "잘못된 부분", "corrected": "올바른 버전", "explanation": "간단한 설명"}]}
오류가 없으면 errors 배열을 비워 두세요. JSON 외에는 아무것도 쓰지 마세요.`
		user = fmt.Sprintf("다음 한국어 텍스트를 확인하고 오류를 수정하세요:\n\n\"%s\"", text)
		return
	}

	system = fmt.Sprintf(`You are a professional %s grammar checker and editor.
Check the text for grammar, spelling and punctuation mistakes, correct them, and explain each correction briefly.`, langName)
	if language == "tr" {
		system += `
Pay special attention to Turkish special characters (ç, ğ, ş, ı, ö, ü) typed as plain ASCII:
cok → çok, gecen → geçen, ogretmen → öğretmen, yarin → yarın, odev → ödev, guzel → güzel, dun → dün.`
	}
	system += `
Answer ONLY with JSON in this exact shape:
{"correctedText": "corrected text", "errors": [{"original": "wrong word or phrase", "corrected": "correct version", "explanation": "short explanation"}]}
Leave the errors array empty when the text is already correct.`
	user = fmt.Sprintf("Check the following %s text and correct its mistakes:\n\n\"%s\"", langName, text)
	return
}

// parseCorrectionJSON turns an LLM reply into a normalized result. A reply
// that cannot be parsed degrades to the original text with zero errors
// instead of failing the chain.
func parseCorrectionJSON(original, reply string) *entities.CorrectionResult {
	var parsed struct {
		CorrectedText string                     `json:"correctedText"`
		Errors        []entities.CorrectionError `json:"errors"`
	}
	if err := json.Unmarshal([]byte(unwrapFencedJSON(reply)), &parsed); err != nil {
		Log.Warnf("grammar response parse error: %v", err)
		return entities.NoChanges(original)
	}
	if parsed.CorrectedText == "" {
		parsed.CorrectedText = original
	}
	if parsed.Errors == nil {
		parsed.Errors = []entities.CorrectionError{}
	}
	return &entities.CorrectionResult{
		OriginalText:  original,
		CorrectedText: parsed.CorrectedText,
		ErrorsCount:   len(parsed.Errors),
		Errors:        parsed.Errors,
	}
}
