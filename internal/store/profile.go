package store

import (
	"slices"

	"github.com/roach88/linkage/internal/record"
)

// Row is one historical attribute row. A field missing from the map is
// null for that row.
type Row map[string]string

// Profile is the attribute history of a group.
//
// INVARIANTS:
//   - Fields is the union of every field ever merged, in first-seen order
//   - Rows[0] is canonical; a non-null value in Rows[0] is never replaced
type Profile struct {
	Fields []string `json:"fields"`
	Rows   []Row    `json:"rows"`
}

// Empty reports whether the profile has no rows yet.
func (p Profile) Empty() bool {
	return len(p.Rows) == 0
}

// Canonical returns row 0, or nil for an empty profile.
func (p Profile) Canonical() Row {
	if len(p.Rows) == 0 {
		return nil
	}
	return p.Rows[0]
}

// HasField reports whether field is a column of the profile.
func (p Profile) HasField(field string) bool {
	return slices.Contains(p.Fields, field)
}

// Merge folds a compound key's values into the profile and reports whether
// anything changed.
//
// Rules, in order:
//  1. an empty profile takes the key as row 0
//  2. fields not yet in the profile become new columns (null in prior rows)
//  3. null cells of row 0 are filled from the key
//  4. if row 0 still disagrees with the key on any field, the full key is
//     appended as a new row; row 0 itself is left untouched
func (p *Profile) Merge(key record.CompoundKey) bool {
	if p.Empty() {
		p.Fields = nil
		for _, f := range key.Template {
			if !p.HasField(f) {
				p.Fields = append(p.Fields, f)
			}
		}
		p.Rows = []Row{rowFromKey(key)}
		return true
	}

	changed := false
	for _, f := range key.Template {
		if !p.HasField(f) {
			p.Fields = append(p.Fields, f)
			changed = true
		}
	}

	canonical := p.Rows[0]
	for i, f := range key.Template {
		if _, ok := canonical[f]; !ok {
			canonical[f] = key.Values[i]
			changed = true
		}
	}

	for i, f := range key.Template {
		if canonical[f] != key.Values[i] {
			p.Rows = append(p.Rows, rowFromKey(key))
			return true
		}
	}
	return changed
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	out := Profile{Fields: slices.Clone(p.Fields)}
	if p.Rows != nil {
		out.Rows = make([]Row, len(p.Rows))
		for i, r := range p.Rows {
			cp := make(Row, len(r))
			for k, v := range r {
				cp[k] = v
			}
			out.Rows[i] = cp
		}
	}
	return out
}

func rowFromKey(key record.CompoundKey) Row {
	r := make(Row, len(key.Template))
	for i, f := range key.Template {
		r[f] = key.Values[i]
	}
	return r
}
