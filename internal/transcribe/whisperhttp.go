package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chaz8081/croquis/internal/transcript"
)

const (
	defaultHTTPURL     = "http://localhost:8387"
	defaultHTTPModel   = "base"
	defaultHTTPTimeout = 120 * time.Second
)

// HTTPConfig configures the faster-whisper sidecar client.
type HTTPConfig struct {
	URL      string
	Model    string
	Language string
	Timeout  time.Duration
}

// HTTPEngine sends whole files to a faster-whisper HTTP sidecar.
type HTTPEngine struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPEngine returns a sidecar client, filling in defaults for empty fields.
func NewHTTPEngine(cfg HTTPConfig) *HTTPEngine {
	if cfg.URL == "" {
		cfg.URL = defaultHTTPURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultHTTPModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	return &HTTPEngine{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Name implements Engine.
func (*HTTPEngine) Name() string { return "whisper-http" }

// Close implements Engine.
func (*HTTPEngine) Close() error { return nil }

// IsAvailable reports whether the sidecar answers its health check.
func (e *HTTPEngine) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type sidecarResponse struct {
	Text     string           `json:"text"`
	Segments []sidecarSegment `json:"segments"`
	Language string           `json:"language"`
}

// sidecarSegment times are in seconds.
type sidecarSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcribe implements Engine.
func (e *HTTPEngine) Transcribe(ctx context.Context, path string) ([]transcript.Segment, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: read %q: %w", path, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("transcribe: write form file: %w", err)
	}
	_ = w.WriteField("model", e.cfg.Model)
	if e.cfg.Language != "" {
		_ = w.WriteField("language", e.cfg.Language)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("transcribe: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL+"/transcribe", &body)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("transcribe: sidecar status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("transcribe: decode sidecar response: %w", err)
	}

	segs := make([]transcript.Segment, len(out.Segments))
	for i, s := range out.Segments {
		segs[i] = transcript.Segment{
			StartMs: secondsToMs(s.Start),
			EndMs:   secondsToMs(s.End),
			Text:    s.Text,
		}
	}
	return segs, out.Language, nil
}

func secondsToMs(s float64) int { return int(s*1000 + 0.5) }
