package transcript

import (
	"strings"
	"unicode"
)

// WordErrors counts the word edits that turn a reference text into a
// hypothesis. Counts from several comparisons can be summed with Add to
// get a corpus-level rate.
type WordErrors struct {
	Substitutions int
	Insertions    int
	Deletions     int
	RefWords      int
}

// Edits returns the total number of edits.
func (w WordErrors) Edits() int { return w.Substitutions + w.Insertions + w.Deletions }

// Rate returns the word error rate, edits over reference words. With an
// empty reference it is 0 for an empty hypothesis and 1 otherwise.
func (w WordErrors) Rate() float64 {
	if w.RefWords == 0 {
		if w.Edits() == 0 {
			return 0
		}
		return 1
	}
	return float64(w.Edits()) / float64(w.RefWords)
}

// Add sums two counts.
func (w WordErrors) Add(o WordErrors) WordErrors {
	return WordErrors{
		Substitutions: w.Substitutions + o.Substitutions,
		Insertions:    w.Insertions + o.Insertions,
		Deletions:     w.Deletions + o.Deletions,
		RefWords:      w.RefWords + o.RefWords,
	}
}

// CompareText aligns hypothesis against reference word by word, after
// lower-casing and dropping punctuation, and counts the edits of a
// minimal alignment. Substitutions are preferred over a deletion plus an
// insertion of equal cost.
func CompareText(reference, hypothesis string) WordErrors {
	ref, hyp := words(reference), words(hypothesis)

	// Each cell carries the edit breakdown of the best alignment so far,
	// so no backtrace is needed and only two rows are kept.
	type cell struct {
		cost int
		w    WordErrors
	}
	prev := make([]cell, len(hyp)+1)
	cur := make([]cell, len(hyp)+1)
	for j := range prev {
		prev[j] = cell{cost: j, w: WordErrors{Insertions: j}}
	}

	for i := 1; i <= len(ref); i++ {
		cur[0] = cell{cost: i, w: WordErrors{Deletions: i}}
		for j := 1; j <= len(hyp); j++ {
			if ref[i-1] == hyp[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			sub, del, ins := prev[j-1], prev[j], cur[j-1]
			switch {
			case sub.cost <= del.cost && sub.cost <= ins.cost:
				sub.w.Substitutions++
				cur[j] = sub
			case del.cost <= ins.cost:
				del.w.Deletions++
				cur[j] = del
			default:
				ins.w.Insertions++
				cur[j] = ins
			}
			cur[j].cost++
		}
		prev, cur = cur, prev
	}

	out := prev[len(hyp)].w
	out.RefWords = len(ref)
	return out
}

func words(s string) []string {
	return strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s))
}
