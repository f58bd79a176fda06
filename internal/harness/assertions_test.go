package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

func member(typ record.Type, id, link string) record.Record {
	return record.Record{Type: typ, EntityID: id, LinkGroupID: link}
}

func sampleResult() *Result {
	r := NewResult()
	r.Groups["g1"] = []record.Record{
		member(record.TypeCustomer, "A", ""),
		member(record.TypeCounterParty, "B", "g2"),
	}
	r.Groups["g2"] = []record.Record{
		member(record.TypeCustomer, "B", ""),
	}
	r.Profiles["g1"] = store.Profile{
		Fields: []string{"FirstName", "LastName"},
		Rows:   []store.Row{{"FirstName": "Ann"}},
	}
	r.Batches = []BatchSummary{
		{Comparisons: 2, Skipped: []string{"UNRESOLVABLE_RECORD:X"}, Orphans: []string{}},
		{Comparisons: 3, Skipped: []string{}, Orphans: []string{"ORPHAN_LINK:Y", "ORPHAN_LINK:Z"}},
	}
	return r
}

func TestEvaluateAssertions_Passing(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertGroupCount, Count: 2},
		{Type: AssertComparisons, Count: 5},
		{Type: AssertSkipped, Count: 1},
		{Type: AssertOrphans, Count: 2},
		{Type: AssertMembers, Group: "g1", Entities: []string{"A", "B"}},
		{Type: AssertMembers, Group: "missing"},
		{Type: AssertLink, Group: "g1", Entity: "B", Link: "g2"},
		{Type: AssertLink, Group: "g1", Entity: "A", Link: ""},
		{Type: AssertProfile, Group: "g1", Expect: map[string]string{"FirstName": "Ann"}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failing(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"group count", Assertion{Type: AssertGroupCount, Count: 3}, "3 groups"},
		{"comparisons", Assertion{Type: AssertComparisons, Count: 1}, "5 comparisons"},
		{"members order", Assertion{Type: AssertMembers, Group: "g1", Entities: []string{"B", "A"}}, "[A B]"},
		{"link mismatch", Assertion{Type: AssertLink, Group: "g1", Entity: "B", Link: "g9"}, `"g2"`},
		{"link not member", Assertion{Type: AssertLink, Group: "g2", Entity: "A"}, "not a member"},
		{"profile null cell", Assertion{Type: AssertProfile, Group: "g1", Expect: map[string]string{"LastName": "Lee"}}, "set=false"},
		{"together spread", Assertion{Type: AssertTogether, Entities: []string{"A", "B"}}, "spread over [g1 g2]"},
		{"apart shared", Assertion{Type: AssertApart, Entities: []string{"A", "B"}}, "share g1"},
		{"unknown", Assertion{Type: "vibes"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertTogether_SingleGroup(t *testing.T) {
	r := sampleResult()
	r.Groups["g2"] = nil

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertTogether, Entities: []string{"A", "B"}}})
	assert.Empty(t, errs)
}

func TestAssertTogether_MissingEntity(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{{Type: AssertTogether, Entities: []string{"A", "Q"}}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Q missing")
}

func TestAssertionError_ListsGroups(t *testing.T) {
	err := &AssertionError{
		Type:     AssertGroupCount,
		Expected: "1 groups",
		Actual:   "2 groups",
		Groups:   sampleResult().Groups,
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: group_count")
	assert.Contains(t, msg, "g1: [A B]")
	assert.Contains(t, msg, "g2: [B]")
}
