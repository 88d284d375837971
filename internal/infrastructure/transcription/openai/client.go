package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dsemenov/studycraft/internal/infrastructure/resilience"
)

const defaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"

type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// Client calls an OpenAI-compatible speech-to-text endpoint. Each request
// runs under the resilience executor; server-side errors are retried,
// client-side rejections are not.
type Client struct {
	cfg        Config
	httpClient *http.Client
	exec       *resilience.Executor
}

func NewClient(cfg Config, exec *resilience.Executor) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		exec:       exec,
	}
}

func (c *Client) Transcribe(ctx context.Context, filename, mediaType string, data []byte) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("transcription api key is not configured")
	}

	var text string
	err := c.exec.Do(ctx, "openai.transcribe", isRetryableStatus, func(ctx context.Context) error {
		got, err := c.transcribeOnce(ctx, filename, mediaType, data)
		if err != nil {
			return err
		}
		text = got
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) transcribeOnce(ctx context.Context, filename, mediaType string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return "", fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apiError{status: 0, err: fmt.Errorf("transcription request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeAPIError(resp)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return strings.TrimSpace(payload.Text), nil
}

type apiError struct {
	status int
	err    error
}

func (e *apiError) Error() string { return e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	return &apiError{
		status: resp.StatusCode,
		err:    fmt.Errorf("transcription api status %d: %s", resp.StatusCode, msg),
	}
}

// isRetryableStatus retries network failures, throttling and 5xx; a 4xx
// means the request itself is wrong and will not improve on retry.
func isRetryableStatus(err error) bool {
	var ae *apiError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.status == 0 || ae.status == http.StatusTooManyRequests || ae.status >= 500
}
