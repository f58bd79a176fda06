package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linkage/internal/record"
)

// Scenario defines a matching scenario: one or more batches of records
// and the assertions the final store must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Threshold overrides the default acceptance threshold.
	Threshold *float64 `yaml:"threshold,omitempty"`

	// Weights replaces the default field weights when set.
	Weights map[string]float64 `yaml:"weights,omitempty"`

	// GroupIDs are handed out to new groups in order. If empty, ids
	// g001, g002, ... are used.
	GroupIDs []string `yaml:"group_ids,omitempty"`

	// Batches run in order against the same store.
	Batches []BatchStep `yaml:"batches"`

	// Assertions validate the final store and batch totals.
	Assertions []Assertion `yaml:"assertions"`
}

// BatchStep is one engine run.
type BatchStep struct {
	// Fresh clears the store before the batch.
	Fresh bool `yaml:"fresh,omitempty"`

	Records []RecordStep `yaml:"records"`
}

// RecordStep describes one input record.
type RecordStep struct {
	Type        string `yaml:"type"`
	ID          string `yaml:"id"`
	Transaction string `yaml:"transaction"`

	// Key is a ready-made compound key. Mutually exclusive with Attributes.
	Key string `yaml:"key,omitempty"`

	// Attributes are keyed with the configured templates.
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Assertion validates the final store or batch totals.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by group_count, comparisons, skipped and orphans.
	Count int `yaml:"count,omitempty"`

	// Entities is used by together, apart and members.
	Entities []string `yaml:"entities,omitempty"`

	// Group is used by members, link and profile.
	Group string `yaml:"group,omitempty"`

	// Entity and Link are used by link.
	Entity string `yaml:"entity,omitempty"`
	Link   string `yaml:"link,omitempty"`

	// Expect is used by profile (subset match on row 0).
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertGroupCount  = "group_count"
	AssertTogether    = "together"
	AssertApart       = "apart"
	AssertMembers     = "members"
	AssertLink        = "link"
	AssertProfile     = "profile"
	AssertComparisons = "comparisons"
	AssertSkipped     = "skipped"
	AssertOrphans     = "orphans"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Batches) == 0 {
		return fmt.Errorf("batches list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.GroupIDs))
	for i, id := range s.GroupIDs {
		if id == "" {
			return fmt.Errorf("group_ids[%d]: empty id", i)
		}
		if seen[id] {
			return fmt.Errorf("group_ids[%d]: duplicate id %q", i, id)
		}
		seen[id] = true
	}

	for i, b := range s.Batches {
		for j, r := range b.Records {
			if _, err := record.ParseType(r.Type); err != nil {
				return fmt.Errorf("batches[%d].records[%d]: %w", i, j, err)
			}
			if r.ID == "" {
				return fmt.Errorf("batches[%d].records[%d]: id is required", i, j)
			}
			if r.Key != "" && r.Attributes != nil {
				return fmt.Errorf("batches[%d].records[%d]: key and attributes are mutually exclusive", i, j)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertGroupCount, AssertComparisons, AssertSkipped, AssertOrphans:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTogether, AssertApart:
		if len(a.Entities) < 2 {
			return fmt.Errorf("assertions[%d]: at least two entities are required for %s", index, a.Type)
		}
	case AssertMembers:
		if a.Group == "" {
			return fmt.Errorf("assertions[%d]: group is required for members", index)
		}
	case AssertLink:
		if a.Group == "" || a.Entity == "" {
			return fmt.Errorf("assertions[%d]: group and entity are required for link", index)
		}
	case AssertProfile:
		if a.Group == "" {
			return fmt.Errorf("assertions[%d]: group is required for profile", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for profile", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
