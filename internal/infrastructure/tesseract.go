package infrastructure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var tesseractLangs = map[string]string{
	"tr": "tur",
	"ko": "kor",
	"en": "eng",
	"ru": "rus",
}

// TesseractClient shells out to the tesseract binary for offline OCR. It is
// the last resort behind the vision models and works without any API key,
// as long as the binary and language packs are installed on the host.
type TesseractClient struct {
	binary    string
	available bool
}

func NewTesseractClient() *TesseractClient {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		Log.Warn("[Tesseract] binary not found in PATH, adapter disabled")
		return &TesseractClient{}
	}
	return &TesseractClient{binary: path, available: true}
}

func (c *TesseractClient) Name() string      { return "Tesseract" }
func (c *TesseractClient) IsAvailable() bool { return c.available }

func (c *TesseractClient) ExtractText(ctx context.Context, imageURL, language string) (string, error) {
	if !c.available {
		return "", &ProviderError{Provider: c.Name(), Message: "binary not installed"}
	}

	img, err := downloadBytes(imageURL)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "image download failed", Err: err}
	}

	tmp, err := os.CreateTemp("", "ocr-*.img")
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "temp file failed", Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(img); err != nil {
		tmp.Close()
		return "", &ProviderError{Provider: c.Name(), Message: "temp file write failed", Err: err}
	}
	tmp.Close()

	lang, ok := tesseractLangs[language]
	if !ok {
		lang = "tur"
	}

	out, err := exec.CommandContext(ctx, c.binary, tmp.Name(), "stdout", "-l", lang).Output()
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("ocr failed (lang %s)", lang), Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}
