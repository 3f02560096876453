package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaz8081/croquis/internal/transcript"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHTTPEngineTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		file, hdr, err := r.FormFile("audio")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF" || hdr.Filename != "speaker.wav" {
			http.Error(w, "unexpected upload", http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "small" || r.FormValue("language") != "de" {
			http.Error(w, "unexpected fields", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"text":" a b","language":"de","segments":[`+
			`{"text":" a","start":0.0,"end":1.0},{"text":" b","start":1.2,"end":2.0}]}`)
	}))
	defer srv.Close()

	e := NewHTTPEngine(HTTPConfig{URL: srv.URL, Model: "small", Language: "de"})
	segs, lang, err := e.Transcribe(context.Background(), writeFile(t, "speaker.wav", "RIFF"))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	want := []transcript.Segment{
		{StartMs: 0, EndMs: 1000, Text: " a"},
		{StartMs: 1200, EndMs: 2000, Text: " b"},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segs), len(want))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segs[%d] = %v, want %v", i, segs[i], want[i])
		}
	}
	if lang != "de" {
		t.Errorf("language = %q, want de", lang)
	}
}

func TestHTTPEngineStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewHTTPEngine(HTTPConfig{URL: srv.URL})
	_, _, err := e.Transcribe(context.Background(), writeFile(t, "x.wav", "RIFF"))
	if err == nil {
		t.Fatal("Transcribe() should fail on 503")
	}
}

func TestHTTPEngineUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := NewHTTPEngine(HTTPConfig{URL: url})
	_, _, err := e.Transcribe(context.Background(), writeFile(t, "x.wav", "RIFF"))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Transcribe() error = %v, want ErrBackendUnavailable", err)
	}
	if e.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true for a closed server")
	}
}

func TestHTTPEngineMissingFile(t *testing.T) {
	e := NewHTTPEngine(HTTPConfig{URL: "http://127.0.0.1:1"})
	if _, _, err := e.Transcribe(context.Background(), filepath.Join(t.TempDir(), "none.wav")); err == nil {
		t.Error("Transcribe() on missing file should fail")
	}
}

func TestHTTPEngineIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if !NewHTTPEngine(HTTPConfig{URL: srv.URL}).IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false, want true")
	}
}

func TestSecondsToMs(t *testing.T) {
	tests := map[float64]int{0: 0, 1: 1000, 1.2: 1200, 0.0004: 0, 3.9996: 4000}
	for in, want := range tests {
		if got := secondsToMs(in); got != want {
			t.Errorf("secondsToMs(%v) = %d, want %d", in, got, want)
		}
	}
}
