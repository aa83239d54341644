package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/studyloft/studyloft/config"
)

// PDFExtractor calls the external text-extraction HTTP service with the full
// file buffer. No streaming, no page-level progress; the whole document goes
// over in one multipart request and the whole text comes back in one response.
type PDFExtractor struct {
	endpoint   string
	httpClient *http.Client
}

func NewPDFExtractor(cfg config.ExtractorConfig) *PDFExtractor {
	timeout := time.Duration(cfg.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PDFExtractor{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if e.endpoint == "" {
		return "", fmt.Errorf("extractor endpoint not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fw, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("extractor http %d: %s", resp.StatusCode, string(b))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode extractor response: %w", err)
	}
	return result.Text, nil
}
