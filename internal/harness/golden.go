package harness

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/linkage/internal/store"
)

// Snapshot captures the outcome of a scenario for golden comparison.
// Groups are listed in ascending id order so the JSON is stable.
type Snapshot struct {
	Scenario string          `json:"scenario"`
	Batches  []BatchSummary  `json:"batches"`
	Groups   []GroupSnapshot `json:"groups"`
}

// GroupSnapshot is one group's members and profile.
// Members are rendered as "Type:EntityID", with "->link" appended when the
// record carries a LinkGroupID.
type GroupSnapshot struct {
	ID      string      `json:"id"`
	Members []string    `json:"members"`
	Fields  []string    `json:"fields"`
	Rows    []store.Row `json:"rows"`
}

// NewSnapshot builds a snapshot from a scenario result.
func NewSnapshot(name string, result *Result) Snapshot {
	snap := Snapshot{
		Scenario: name,
		Batches:  result.Batches,
		Groups:   []GroupSnapshot{},
	}
	for _, id := range slices.Sorted(maps.Keys(result.Groups)) {
		g := GroupSnapshot{
			ID:      id,
			Members: []string{},
			Fields:  []string{},
			Rows:    []store.Row{},
		}
		for _, m := range result.Groups[id] {
			entry := fmt.Sprintf("%s:%s", m.Type, m.EntityID)
			if m.LinkGroupID != "" {
				entry += "->" + m.LinkGroupID
			}
			g.Members = append(g.Members, entry)
		}
		p := result.Profiles[id]
		g.Fields = append(g.Fields, p.Fields...)
		g.Rows = append(g.Rows, p.Rows...)
		snap.Groups = append(snap.Groups, g)
	}
	return snap
}

// Marshal encodes the snapshot as indented JSON with a trailing newline.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
