package engine

import (
	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// Similarity scores a candidate key against a profile's canonical row.
//
// Every field of the key that has a weight and is a column of the profile
// is compared: its weight counts toward the total, and toward the score
// when row 0 holds exactly the candidate's value. A null cell in row 0
// counts toward the total but never matches.
//
// Returns score/total in [0,1] (0 when no field was comparable) and the
// number of fields compared.
func Similarity(key record.CompoundKey, p store.Profile, weights map[string]float64) (float64, int) {
	canonical := p.Canonical()
	if canonical == nil {
		return 0, 0
	}

	var (
		score, total float64
		comparisons  int
	)
	for i, field := range key.Template {
		w, ok := weights[field]
		if !ok || !p.HasField(field) {
			continue
		}
		comparisons++
		total += w

		if v, ok := canonical[field]; ok && v == key.Values[i] {
			score += w
		}
	}

	if total == 0 {
		return 0, comparisons
	}
	return score / total, comparisons
}

// match is the outcome of scoring a key against every group.
type match struct {
	groupID     string
	score       float64
	comparisons int
}

// found reports whether a group cleared the threshold.
func (m match) found() bool {
	return m.groupID != ""
}

// bestMatch scores key against every group in ascending id order and
// returns the first group with the highest score at or above threshold.
// Comparisons are summed over every group scored, matched or not.
func bestMatch(key record.CompoundKey, st *state, weights map[string]float64, threshold float64) match {
	var m match
	for _, id := range st.ids {
		score, n := Similarity(key, st.profiles[id], weights)
		m.comparisons += n
		if score > m.score && score >= threshold {
			m.score = score
			m.groupID = id
		}
	}
	return m
}
