package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chaz8081/croquis/internal/consolidate"
	"github.com/chaz8081/croquis/internal/transcript"
)

func crop(id string, start, end int, text string) consolidate.Crop {
	return consolidate.Crop{ID: id, Segment: transcript.Segment{StartMs: start, EndMs: end, Text: text}}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestEntryLine(t *testing.T) {
	if got := (Entry{ID: "x_00000", Text: "  hello there \n"}).Line(); got != "x_00000|hello there\n" {
		t.Errorf("Line() = %q", got)
	}
}

func TestAppendMetadataNeverTruncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MetadataFile)
	if err := os.WriteFile(path, []byte("old_00000|kept\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	crops := consolidate.Crops{
		crop("new_00000", 0, 1000, " a b"),
		crop("new_00001", 2000, 3000, " c "),
	}
	if err := AppendMetadata(crops, dir); err != nil {
		t.Fatalf("AppendMetadata() error = %v", err)
	}

	want := "old_00000|kept\nnew_00000|a b\nnew_00001|c\n"
	if got := readFile(t, path); got != want {
		t.Errorf("metadata = %q, want %q", got, want)
	}
}

func TestAppendMetadataEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := AppendMetadata(nil, dir); err != nil {
		t.Fatalf("AppendMetadata(nil) error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); !os.IsNotExist(err) {
		t.Errorf("AppendMetadata(nil) should not create the index, stat err = %v", err)
	}
}

func TestAppendMetadataMissingDir(t *testing.T) {
	if err := AppendMetadata(consolidate.Crops{crop("a_00000", 0, 1, "a")}, filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("AppendMetadata() into a missing directory should fail")
	}
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()
	if got, err := ReadMetadata(dir); err != nil || got != nil {
		t.Fatalf("ReadMetadata(empty dir) = %v, %v; want nil, nil", got, err)
	}

	content := "a_00000|first line\n\na_00001|text with | pipe\n"
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	want := []Entry{{"a_00000", "first line"}, {"a_00001", "text with | pipe"}}
	if len(got) != len(want) {
		t.Fatalf("ReadMetadata() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadMetadataMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte("no separator here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadMetadata(dir); err == nil {
		t.Error("ReadMetadata() should reject a line without '|'")
	}
}
