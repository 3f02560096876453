package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExistsValidator(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.mp3")
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(full, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"regular file", full, false},
		{"empty file", empty, true},
		{"directory", dir, true},
		{"missing", filepath.Join(dir, "nope.mp3"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExistsValidator(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExistsValidator() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAudio) {
				t.Errorf("error = %v, want ErrInvalidAudio", err)
			}
		})
	}
}

func TestWAVValidator(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.wav")
	writeRamp(t, good, 16000, 1, 200)

	bad := filepath.Join(dir, "bad.wav")
	if err := os.WriteFile(bad, []byte("not a wav file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WAVValidator(good); err != nil {
		t.Errorf("WAVValidator(good) error = %v", err)
	}
	if err := WAVValidator(bad); !errors.Is(err, ErrInvalidAudio) {
		t.Errorf("WAVValidator(bad) error = %v, want ErrInvalidAudio", err)
	}
}

func TestNewValidator(t *testing.T) {
	for _, name := range []string{"exists", "wav", " WAV "} {
		if _, err := NewValidator(name); err != nil {
			t.Errorf("NewValidator(%q) error = %v", name, err)
		}
	}

	_, err := NewValidator("magic")
	if err == nil {
		t.Fatal("NewValidator(magic) should fail")
	}
	if !strings.Contains(err.Error(), "exists, wav") {
		t.Errorf("error %q should list supported validators", err)
	}
}
