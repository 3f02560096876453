package audio

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-audio/wav"
)

// ErrInvalidAudio marks a file a Validator rejected.
var ErrInvalidAudio = errors.New("audio: invalid file")

// Validator decides whether a path is worth transcribing.
type Validator interface {
	Validate(path string) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(path string) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(path string) error { return f(path) }

// ExistsValidator accepts any regular, non-empty file.
func ExistsValidator(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q is not a regular file", ErrInvalidAudio, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %q is empty", ErrInvalidAudio, path)
	}
	return nil
}

// WAVValidator additionally requires a readable PCM WAV header with a
// non-zero duration.
func WAVValidator(path string) error {
	if err := ExistsValidator(path); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("%w: %q is not a valid WAV file", ErrInvalidAudio, path)
	}
	d, err := dec.Duration()
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAudio, path, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %q has no audio", ErrInvalidAudio, path)
	}
	return nil
}

var validators = map[string]ValidatorFunc{
	"exists": ExistsValidator,
	"wav":    WAVValidator,
}

// ValidatorNames lists the registered validators, sorted.
func ValidatorNames() []string {
	names := make([]string, 0, len(validators))
	for name := range validators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewValidator returns the validator registered under name.
func NewValidator(name string) (Validator, error) {
	v, ok := validators[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("audio: unknown validator %q (supported: %s)", name, strings.Join(ValidatorNames(), ", "))
	}
	return v, nil
}
