package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned for an unknown write mode.
var ErrInvalidMode = errors.New("dataset: invalid mode")

// Mode decides what happens to an existing dataset directory.
type Mode string

const (
	// Write clears regular files in the dataset directory before the first save.
	Write Mode = "WRITE"
	// Append keeps existing files and grows the metadata index.
	Append Mode = "APPEND"
)

// ParseMode parses a mode name case-insensitively. OVERWRITE is accepted
// as another name for WRITE.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WRITE", "OVERWRITE":
		return Write, nil
	case "APPEND":
		return Append, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: WRITE, APPEND)", ErrInvalidMode, s)
	}
}
