package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_IncrementalTotals(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/incremental_merge.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, result.Batches, 2)
	assert.Equal(t, 1, result.Batches[0].GroupsFormed)
	assert.Equal(t, 1, result.Batches[1].GroupsFormed)
	assert.Equal(t, 2, result.Batches[1].GroupsTotal)
	assert.Equal(t, []string{"UNRESOLVABLE_RECORD:F"}, result.Batches[1].Skipped)
	assert.Equal(t, []string{"ORPHAN_LINK:G"}, result.Batches[1].Orphans)

	// A's second key disagrees on LastName, so it lands in row 1.
	require.Len(t, result.Profiles["g1"].Rows, 2)
	assert.Equal(t, "Kim", result.Profiles["g1"].Rows[1]["LastName"])
}

func TestRun_FailingAssertionsAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "assertions that do not hold",
		Batches: []BatchStep{{Records: []RecordStep{
			{Type: "Customer", ID: "A", Transaction: "NYC_t1_send_X", Key: "FirstName:Ann"},
		}}},
		Assertions: []Assertion{
			{Type: AssertGroupCount, Count: 2},
			{Type: AssertMembers, Group: "g001", Entities: []string{"B"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Expected: 2 groups")
	assert.Contains(t, result.Errors[1], "g001: [A]")
}

func TestRun_FreshBatchClearsStore(t *testing.T) {
	scenario := &Scenario{
		Name:        "fresh",
		Description: "second batch starts over",
		GroupIDs:    []string{"g1", "g2"},
		Batches: []BatchStep{
			{Records: []RecordStep{{Type: "Customer", ID: "A", Transaction: "NYC_t1_send_X", Key: "FirstName:Ann"}}},
			{Fresh: true, Records: []RecordStep{{Type: "Customer", ID: "B", Transaction: "NYC_t1_send_X", Key: "FirstName:Bob"}}},
		},
		Assertions: []Assertion{
			{Type: AssertGroupCount, Count: 1},
			{Type: AssertMembers, Group: "g2", Entities: []string{"B"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ScenarioOverrides(t *testing.T) {
	threshold := 0.5
	scenario := &Scenario{
		Name:        "overrides",
		Description: "half agreement clears a lowered threshold",
		Threshold:   &threshold,
		Weights:     map[string]float64{"FirstName": 1, "LastName": 1},
		Batches: []BatchStep{{Records: []RecordStep{
			{Type: "Customer", ID: "A", Transaction: "NYC_t1_send_X", Key: "FirstName_LastName:Ann_Lee"},
			{Type: "Customer", ID: "B", Transaction: "NYC_t1_send_X", Key: "FirstName_LastName:Ann_Kim"},
		}}},
		Assertions: []Assertion{
			{Type: AssertTogether, Entities: []string{"A", "B"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_InvalidOverrideFails(t *testing.T) {
	threshold := 1.5
	scenario := &Scenario{
		Name:      "bad",
		Threshold: &threshold,
		Batches:   []BatchStep{{}},
	}

	_, err := Run(scenario)
	assert.ErrorContains(t, err, "threshold")
}

func TestRun_GroupIDsExhausted(t *testing.T) {
	scenario := &Scenario{
		Name:        "too_few_ids",
		Description: "two unrelated customers but only one group id",
		GroupIDs:    []string{"g1"},
		Batches: []BatchStep{{Records: []RecordStep{
			{Type: "Customer", ID: "A", Transaction: "NYC_t1_send_X", Key: "FirstName_LastName:Ann_Lee"},
			{Type: "Customer", ID: "B", Transaction: "NYC_t2_send_X", Key: "FirstName_LastName:Bob_Ray"},
		}}},
		Assertions: []Assertion{{Type: AssertGroupCount, Count: 2}},
	}

	var err error
	require.NotPanics(t, func() { _, err = Run(scenario) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 0")
	assert.Contains(t, err.Error(), "group id sequence")
}

func TestGroupIDs_Generated(t *testing.T) {
	scenario := &Scenario{Batches: []BatchStep{
		{Records: make([]RecordStep, 2)},
		{Records: make([]RecordStep, 1)},
	}}
	assert.Equal(t, []string{"g001", "g002", "g003"}, groupIDs(scenario))
}
