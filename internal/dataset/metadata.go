package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaz8081/croquis/internal/consolidate"
)

// MetadataFile is the index joining crop ids to their text.
const MetadataFile = "metadata.txt"

// Entry is one line of the metadata index.
type Entry struct {
	ID   string
	Text string
}

// Line renders the entry as "{id}|{text}\n" with the text trimmed.
func (e Entry) Line() string {
	return e.ID + "|" + strings.TrimSpace(e.Text) + "\n"
}

// AppendMetadata appends one line per crop, in crop order, to the
// metadata index in dir. Existing lines are never rewritten.
func AppendMetadata(crops consolidate.Crops, dir string) error {
	if len(crops) == 0 {
		return nil
	}

	path := filepath.Join(dir, MetadataFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("dataset: open %q: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, c := range crops {
		if _, err := w.WriteString(Entry{ID: c.ID, Text: c.Segment.Text}.Line()); err != nil {
			f.Close()
			return fmt.Errorf("dataset: append %q: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("dataset: append %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: close %q: %w", path, err)
	}
	return nil
}

// ReadMetadata parses the metadata index in dir. A missing index yields
// no entries.
func ReadMetadata(dir string) ([]Entry, error) {
	return ReadMetadataFile(filepath.Join(dir, MetadataFile))
}

// ReadMetadataFile parses "{id}|{text}" lines from path. Blank lines are
// ignored and a missing file yields no entries.
func ReadMetadataFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if line == "" {
			continue
		}
		id, text, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("dataset: %s:%d: missing '|' separator", path, n)
		}
		entries = append(entries, Entry{ID: id, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}
	return entries, nil
}
