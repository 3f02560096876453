package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrSchema matches every *SchemaError.
var ErrSchema = errors.New("transcript: invalid record schema")

// SchemaError reports a persisted record that lacks a required key or
// holds a value of the wrong shape.
type SchemaError struct {
	Key string
	// Reason is empty for a missing key.
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transcript: key %q in the transcription record %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("transcript: key %q is missing from the transcription record", e.Key)
}

// Is lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// record is the on-disk JSON shape of a Result.
type record struct {
	AudioPath     string    `json:"audio_path"`
	Engine        string    `json:"engine"`
	Language      string    `json:"language"`
	Transcription []Segment `json:"transcription"`
}

var (
	recordKeys  = []string{"audio_path", "engine", "language", "transcription"}
	segmentKeys = []string{"start_ms", "end_ms", "text"}
)

// Marshal encodes a Result as a transcription record.
func Marshal(r *Result) ([]byte, error) {
	segs := r.Segments
	if segs == nil {
		segs = []Segment{}
	}
	return json.Marshal(record{
		AudioPath:     r.AudioPath,
		Engine:        r.Engine,
		Language:      r.Language,
		Transcription: segs,
	})
}

// Unmarshal decodes a transcription record. Every top-level key and every
// segment key must be present, and "transcription" must be an array
// (possibly empty, never null); a violation yields a *SchemaError.
func Unmarshal(data []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("transcript: decode record: %w", err)
	}
	if err := requireKeys(raw, recordKeys); err != nil {
		return nil, err
	}

	if bytes.Equal(bytes.TrimSpace(raw["transcription"]), []byte("null")) {
		return nil, &SchemaError{Key: "transcription", Reason: "must be an array, got null"}
	}
	var segs []map[string]json.RawMessage
	if err := json.Unmarshal(raw["transcription"], &segs); err != nil {
		return nil, fmt.Errorf("transcript: decode segments: %w", err)
	}
	for _, s := range segs {
		if err := requireKeys(s, segmentKeys); err != nil {
			return nil, err
		}
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("transcript: decode record: %w", err)
	}

	return &Result{
		AudioPath: rec.AudioPath,
		Engine:    rec.Engine,
		Language:  rec.Language,
		Segments:  rec.Transcription,
	}, nil
}

func requireKeys(m map[string]json.RawMessage, keys []string) error {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return &SchemaError{Key: k}
		}
	}
	return nil
}

// ReadFile loads a transcription record from path.
func ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %q: %w", path, err)
	}
	return Unmarshal(data)
}

// WriteFile stores r as a transcription record at path.
func WriteFile(path string, r *Result) error {
	data, err := Marshal(r)
	if err != nil {
		return fmt.Errorf("transcript: encode record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("transcript: write %q: %w", path, err)
	}
	return nil
}
