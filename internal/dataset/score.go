package dataset

import (
	"slices"

	"github.com/chaz8081/croquis/internal/transcript"
)

// EntryScore is the comparison of one clip's text with its reference.
type EntryScore struct {
	ID string
	transcript.WordErrors
}

// Score summarizes a dataset against reference transcripts.
type Score struct {
	// Total sums every reference entry, missing ones included.
	Total   transcript.WordErrors
	Entries []EntryScore
	// Missing lists reference ids with no line in the dataset. Each
	// counts as every reference word deleted.
	Missing []string
	// Extra counts dataset lines with no reference.
	Extra int
}

// ScoreEntries compares dataset entries with reference entries by id, in
// reference order. When an id occurs more than once the last line wins.
func ScoreEntries(got, reference []Entry) Score {
	texts := make(map[string]string, len(got))
	for _, e := range got {
		texts[e.ID] = e.Text
	}

	var sc Score
	seen := make(map[string]bool, len(reference))
	for _, ref := range reference {
		seen[ref.ID] = true
		hyp, ok := texts[ref.ID]
		if !ok {
			sc.Missing = append(sc.Missing, ref.ID)
		}
		w := transcript.CompareText(ref.Text, hyp)
		sc.Total = sc.Total.Add(w)
		if ok {
			sc.Entries = append(sc.Entries, EntryScore{ID: ref.ID, WordErrors: w})
		}
	}
	for id := range texts {
		if !seen[id] {
			sc.Extra++
		}
	}
	return sc
}

// ScoreDir reads the metadata index in dir and scores it against the
// reference file, which uses the same "{id}|{text}" format.
func ScoreDir(dir, referencePath string) (Score, error) {
	got, err := ReadMetadata(dir)
	if err != nil {
		return Score{}, err
	}
	ref, err := ReadMetadataFile(referencePath)
	if err != nil {
		return Score{}, err
	}
	return ScoreEntries(got, ref), nil
}

// Worst returns up to n scored entries with the highest error rate.
func (s Score) Worst(n int) []EntryScore {
	if n <= 0 {
		return nil
	}
	out := slices.Clone(s.Entries)
	slices.SortStableFunc(out, func(a, b EntryScore) int {
		switch ra, rb := a.Rate(), b.Rate(); {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		return 0
	})
	return out[:min(n, len(out))]
}
