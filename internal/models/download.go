// Package models fetches whisper.cpp ggml models into the local models
// directory.
package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultBaseURL hosts the upstream ggml conversions.
const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Known lists the model names accepted by Downloader.Download.
var Known = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large-v3", "large-v3-turbo",
}

// FileName returns the ggml file name for a model, e.g. "ggml-base.en.bin".
func FileName(model string) string {
	return "ggml-" + model + ".bin"
}

// Downloader stores models under Dir.
type Downloader struct {
	Dir     string
	BaseURL string
	Client  *http.Client
	// Progress receives a carriage-return progress line. Nil disables it.
	Progress io.Writer
	Log      zerolog.Logger
}

// NewDownloader returns a Downloader for dir using the upstream URL.
func NewDownloader(dir string, log zerolog.Logger) *Downloader {
	return &Downloader{Dir: dir, BaseURL: DefaultBaseURL, Client: http.DefaultClient, Log: log}
}

// Path returns where a model is stored.
func (d *Downloader) Path(model string) string {
	return filepath.Join(d.Dir, FileName(model))
}

// Download fetches model unless a non-empty copy already exists, and
// returns its path. The file is written to a temp name and renamed once
// complete.
func (d *Downloader) Download(ctx context.Context, model string) (string, error) {
	if !slices.Contains(Known, model) {
		return "", fmt.Errorf("models: unknown model %q (supported: %s)", model, strings.Join(Known, ", "))
	}
	dest := d.Path(model)
	log := d.Log.With().Str("model", model).Str("path", dest).Logger()

	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		log.Info().Int64("bytes", info.Size()).Msg("model already present")
		return dest, nil
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("models: creating models dir: %w", err)
	}

	url := strings.TrimRight(d.BaseURL, "/") + "/" + FileName(model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("models: building request: %w", err)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	log.Info().Str("url", url).Msg("downloading model")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("models: downloading %s: %w", model, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("models: downloading %s: HTTP %d", model, resp.StatusCode)
	}

	var w io.Writer = io.Discard
	if d.Progress != nil {
		w = d.Progress
	}
	written, err := writeAtomic(dest, &progressWriter{out: w, total: resp.ContentLength, label: FileName(model)}, resp.Body)
	if err != nil {
		return "", err
	}
	if d.Progress != nil {
		fmt.Fprintln(d.Progress)
	}
	log.Info().Int64("bytes", written).Msg("model downloaded")
	return dest, nil
}

// Install copies a local ggml file into the models directory under its
// own base name and returns the new path.
func (d *Downloader) Install(src string) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("models: creating models dir: %w", err)
	}
	dest := filepath.Join(d.Dir, filepath.Base(src))
	if err := copyFile(src, dest); err != nil {
		return "", fmt.Errorf("models: installing %q: %w", src, err)
	}
	d.Log.Info().Str("path", dest).Msg("model installed")
	return dest, nil
}

func writeAtomic(dest string, pw *progressWriter, body io.Reader) (int64, error) {
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("models: creating temp file: %w", err)
	}
	pw.writer = f
	written, err := io.Copy(pw, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("models: writing model file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("models: moving model file: %w", err)
	}
	return written, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// progressWriter wraps an io.Writer and reports progress to out.
type progressWriter struct {
	writer  io.Writer
	out     io.Writer
	total   int64
	written int64
	label   string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB / %.1f MB (%.0f%%)",
			pw.label,
			float64(pw.written)/(1024*1024),
			float64(pw.total)/(1024*1024),
			pct)
	} else {
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB downloaded",
			pw.label,
			float64(pw.written)/(1024*1024))
	}
	return n, err
}
