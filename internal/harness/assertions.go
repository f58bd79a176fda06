package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/linkage/internal/record"
)

// AssertionError is returned when an assertion fails.
// It includes the group layout to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Groups   map[string][]record.Record
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nGroups:\n")
	for _, id := range slices.Sorted(maps.Keys(e.Groups)) {
		fmt.Fprintf(&buf, "  %s: %v\n", id, entityIDs(e.Groups[id]))
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Groups: result.Groups}
	}
	comparisons, skipped, orphans := result.Totals()

	switch a.Type {
	case AssertGroupCount:
		if len(result.Groups) != a.Count {
			return fail(fmt.Sprintf("%d groups", a.Count), fmt.Sprintf("%d groups", len(result.Groups)))
		}
	case AssertComparisons:
		if comparisons != a.Count {
			return fail(fmt.Sprintf("%d comparisons", a.Count), fmt.Sprintf("%d comparisons", comparisons))
		}
	case AssertSkipped:
		if skipped != a.Count {
			return fail(fmt.Sprintf("%d skipped", a.Count), fmt.Sprintf("%d skipped", skipped))
		}
	case AssertOrphans:
		if orphans != a.Count {
			return fail(fmt.Sprintf("%d orphans", a.Count), fmt.Sprintf("%d orphans", orphans))
		}
	case AssertTogether:
		return assertTogether(result, a, fail)
	case AssertApart:
		return assertApart(result, a, fail)
	case AssertMembers:
		got := entityIDs(result.Groups[a.Group])
		if !slices.Equal(got, a.Entities) {
			return fail(fmt.Sprintf("%s members %v", a.Group, a.Entities), fmt.Sprintf("%v", got))
		}
	case AssertLink:
		for _, m := range result.Groups[a.Group] {
			if m.EntityID != a.Entity {
				continue
			}
			if m.LinkGroupID != a.Link {
				return fail(fmt.Sprintf("%s in %s linked to %q", a.Entity, a.Group, a.Link), fmt.Sprintf("%q", m.LinkGroupID))
			}
			return nil
		}
		return fail(fmt.Sprintf("%s in %s", a.Entity, a.Group), "not a member")
	case AssertProfile:
		row := result.Profiles[a.Group].Canonical()
		for field, want := range a.Expect {
			got, ok := row[field]
			if !ok || got != want {
				return fail(fmt.Sprintf("%s.%s = %q", a.Group, field, want), fmt.Sprintf("%q (set=%v)", got, ok))
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertTogether checks that one group holds every record of every listed
// entity.
func assertTogether(result *Result, a Assertion, fail func(string, string) error) error {
	homes := make(map[string]bool)
	for id, members := range result.Groups {
		for _, m := range members {
			if slices.Contains(a.Entities, m.EntityID) {
				homes[id] = true
			}
		}
	}
	if len(homes) != 1 {
		return fail(fmt.Sprintf("%v in one group", a.Entities), fmt.Sprintf("spread over %v", slices.Sorted(maps.Keys(homes))))
	}
	for id := range homes {
		got := entityIDs(result.Groups[id])
		for _, e := range a.Entities {
			if !slices.Contains(got, e) {
				return fail(fmt.Sprintf("%v in one group", a.Entities), fmt.Sprintf("%s missing", e))
			}
		}
	}
	return nil
}

// assertApart checks that no group holds two of the listed entities.
func assertApart(result *Result, a Assertion, fail func(string, string) error) error {
	for id, members := range result.Groups {
		var seen []string
		for _, m := range members {
			if slices.Contains(a.Entities, m.EntityID) && !slices.Contains(seen, m.EntityID) {
				seen = append(seen, m.EntityID)
			}
		}
		if len(seen) > 1 {
			return fail(fmt.Sprintf("%v in separate groups", a.Entities), fmt.Sprintf("%v share %s", seen, id))
		}
	}
	return nil
}

func entityIDs(members []record.Record) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.EntityID
	}
	return out
}
