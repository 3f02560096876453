//go:build whisper

package transcribe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chaz8081/croquis/internal/transcript"
)

// benchSample holds a test audio file and its reference transcript.
type benchSample struct {
	Label      string  `json:"label"`
	File       string  `json:"file"`
	Transcript string  `json:"transcript"`
	DurationS  float64 `json:"duration_sec"`
}

// benchReferences is the top-level structure of testdata/references.json.
type benchReferences struct {
	Samples []benchSample `json:"samples"`
}

func loadBenchSamples(b *testing.B) []benchSample {
	b.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "references.json"))
	if err != nil {
		b.Skipf("read references.json: %v", err)
	}
	var refs benchReferences
	if err := json.Unmarshal(data, &refs); err != nil {
		b.Fatalf("parse references.json: %v", err)
	}
	for i := range refs.Samples {
		refs.Samples[i].File = filepath.Join("testdata", refs.Samples[i].File)
	}
	return refs.Samples
}

// joinText transcribes path and concatenates the segment texts.
func joinText(b *testing.B, e Engine, path string) string {
	segs, _, err := e.Transcribe(context.Background(), path)
	if err != nil {
		b.Fatalf("Transcribe(%s): %v", path, err)
	}
	return (&transcript.Result{Segments: segs}).Text()
}

func BenchmarkWhisperTranscribe(b *testing.B) {
	samples := loadBenchSamples(b)

	e, err := NewWhisperEngine(whisperModelPath(b), "en", 0)
	if err != nil {
		b.Fatalf("NewWhisperEngine: %v", err)
	}
	defer func() { _ = e.Close() }()

	for _, s := range samples {
		b.Run(s.Label, func(b *testing.B) {
			b.ReportMetric(s.DurationS*1000, "audio-ms")
			_ = joinText(b, e, s.File)

			var lastText string
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lastText = joinText(b, e, s.File)
			}
			b.StopTimer()

			rtf := (b.Elapsed().Seconds() / float64(b.N)) / s.DurationS
			b.ReportMetric(rtf, "rtf")
			b.ReportMetric(transcript.CompareText(s.Transcript, lastText).Rate(), "wer")
		})
	}
}

// BenchmarkWhisperLatency measures the first call after a model load.
func BenchmarkWhisperLatency(b *testing.B) {
	modelPath := whisperModelPath(b)
	short := filepath.Join("testdata", "short.wav")
	if _, err := os.Stat(short); err != nil {
		b.Skipf("short.wav not found: %v", err)
	}

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e, err := NewWhisperEngine(modelPath, "en", 0)
		if err != nil {
			b.Fatalf("NewWhisperEngine: %v", err)
		}
		b.StartTimer()

		start := time.Now()
		_ = joinText(b, e, short)
		latency := time.Since(start)

		b.StopTimer()
		_ = e.Close()
		b.ReportMetric(float64(latency.Milliseconds()), "first-call-ms")
	}
}
