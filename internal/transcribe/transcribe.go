// Package transcribe converts recorded audio into statement text through a
// Whisper-style inference endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintone/internal/log"
)

// Transcriber converts audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// TranscriptionError reports a failed transcription. Callers surface it
// verbatim instead of recording a garbled statement.
type TranscriptionError struct {
	Reason string
	Err    error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcription failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transcription failed: %s", e.Reason)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

var contentTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/m4a",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".webm": "audio/webm",
	".flac": "audio/flac",
}

// Config configures the HTTP transcription client. Endpoint points at the
// model URL of a HuggingFace-style inference server.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client posts raw audio bytes to the inference endpoint. A 503 means the
// model is still loading, so the request is retried once after a pause.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *log.Logger
	retryWait  time.Duration
}

var _ Transcriber = (*Client)(nil)

func NewClient(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithComponent(log.ComponentTranscribe),
		retryWait:  10 * time.Second,
	}
}

func (c *Client) TranscribeFile(ctx context.Context, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", &TranscriptionError{Reason: "read audio file", Err: err}
	}
	return c.Transcribe(ctx, audio, filepath.Base(path))
}

func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", &TranscriptionError{Reason: "no transcription endpoint configured"}
	}
	if len(audio) == 0 {
		return "", &TranscriptionError{Reason: "empty audio payload"}
	}

	resp, err := c.post(ctx, audio, filename)
	if err != nil {
		return "", &TranscriptionError{Reason: "call transcription endpoint", Err: err}
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		resp.Body.Close()
		c.logger.WarnContext(ctx, "transcription model loading, retrying")
		select {
		case <-time.After(c.retryWait):
		case <-ctx.Done():
			return "", &TranscriptionError{Reason: "wait for model", Err: ctx.Err()}
		}
		resp, err = c.post(ctx, audio, filename)
		if err != nil {
			return "", &TranscriptionError{Reason: "retry transcription endpoint", Err: err}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &TranscriptionError{
			Reason: fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	text, err := parseResponse(resp.Body)
	if err != nil {
		return "", &TranscriptionError{Reason: "parse response", Err: err}
	}
	if text == "" {
		return "", &TranscriptionError{Reason: "endpoint returned empty transcription"}
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, audio []byte, filename string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		ct = "audio/wav"
	}
	req.Header.Set("Content-Type", ct)
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return c.httpClient.Do(req)
}

// parseResponse accepts the response shapes Whisper-style servers emit:
// {"text": ...}, {"transcription": ...} or {"chunks": [{"text": ...}]}.
func parseResponse(r io.Reader) (string, error) {
	var parsed struct {
		Text          string `json:"text"`
		Transcription string `json:"transcription"`
		Chunks        []struct {
			Text string `json:"text"`
		} `json:"chunks"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return "", err
	}
	if t := strings.TrimSpace(parsed.Text); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(parsed.Transcription); t != "" {
		return t, nil
	}
	if len(parsed.Chunks) > 0 {
		return strings.TrimSpace(parsed.Chunks[0].Text), nil
	}
	return "", nil
}
