package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/linkage/internal/config"
	"github.com/roach88/linkage/internal/engine"
	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store with a fixed group id
// sequence, so results are reproducible.
//
// Execution flow:
// 1. Build the config from defaults and scenario overrides
// 2. Run every batch through the engine
// 3. Read back the final groups and profiles
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	cfg := config.Default()
	if scenario.Threshold != nil {
		cfg.Threshold = *scenario.Threshold
	}
	if scenario.Weights != nil {
		cfg.Weights = scenario.Weights
	}

	mem := store.NewMemory()
	eng, err := engine.New(mem, cfg,
		engine.WithIDGenerator(engine.NewFixedGenerator(groupIDs(scenario)...)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	ctx := context.Background()
	templates := cfg.ParsedTemplates()
	result := NewResult()

	for i, step := range scenario.Batches {
		records := buildRecords(step.Records, templates)

		res, err := runBatch(ctx, eng, step.Fresh, records)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		result.Batches = append(result.Batches, summarize(res))
	}

	if err := readStore(ctx, mem, result); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// runBatch runs one step. The fixed generator panics once its ids run
// out; that becomes an error so one scenario cannot crash the runner.
func runBatch(ctx context.Context, eng *engine.Engine, fresh bool, records []record.Record) (res *engine.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("group id sequence: %v", r)
		}
	}()

	if fresh {
		return eng.RunFresh(ctx, records)
	}
	return eng.Run(ctx, records)
}

// groupIDs returns the scenario's ids, or enough generated ids for one
// group per record.
func groupIDs(s *Scenario) []string {
	if len(s.GroupIDs) > 0 {
		return s.GroupIDs
	}
	n := 0
	for _, b := range s.Batches {
		n += len(b.Records)
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("g%03d", i+1)
	}
	return ids
}

func buildRecords(steps []RecordStep, templates []record.Template) []record.Record {
	out := make([]record.Record, 0, len(steps))
	for _, s := range steps {
		if s.Attributes != nil {
			out = append(out, record.Build(record.Raw{
				Type:        record.Type(s.Type),
				EntityID:    s.ID,
				Transaction: s.Transaction,
				Attributes:  s.Attributes,
			}, templates))
			continue
		}
		out = append(out, record.Record{
			Type:        record.Type(s.Type),
			EntityID:    s.ID,
			Transaction: s.Transaction,
			CompoundKey: s.Key,
		})
	}
	return out
}

func summarize(res *engine.Result) BatchSummary {
	b := BatchSummary{
		GroupsFormed: res.GroupsFormed,
		GroupsTotal:  res.GroupsTotal,
		Assigned:     res.Assigned,
		Comparisons:  res.Comparisons,
		Skipped:      []string{},
		Orphans:      []string{},
	}
	for _, e := range res.Skipped {
		b.Skipped = append(b.Skipped, fmt.Sprintf("%s:%s", e.Code, e.EntityID))
	}
	for _, e := range res.Orphans {
		b.Orphans = append(b.Orphans, fmt.Sprintf("%s:%s", e.Code, e.EntityID))
	}
	return b
}

func readStore(ctx context.Context, mem *store.Memory, result *Result) error {
	ids, err := mem.ListGroupIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	for _, id := range ids {
		members, err := mem.LoadGroup(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load group %s: %w", id, err)
		}
		profile, err := mem.LoadProfile(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load profile %s: %w", id, err)
		}
		result.Groups[id] = members
		result.Profiles[id] = profile
	}
	return nil
}
