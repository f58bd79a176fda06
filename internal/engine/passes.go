package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// Pass names, used in logs, metrics and record errors.
const (
	PassFounder      = "founder"
	PassCustomer     = "customer"
	PassBillPayed    = "bill_payed"
	PassBusiness     = "business"
	PassCounterParty = "counter_party"
)

// batch carries the state of one Run.
type batch struct {
	engine *Engine
	st     *state
	res    *Result
}

type pass struct {
	name  string
	claim func(ctx context.Context, p *pending) (bool, error)
}

// passes returns the passes in priority order.
func (b *batch) passes() []pass {
	return []pass{
		{PassFounder, b.founder},
		{PassCustomer, b.customer},
		{PassBillPayed, b.billPayed},
		{PassBusiness, b.business},
		{PassCounterParty, b.counterParty},
	}
}

// intake decodes records onto a worklist, dropping those that cannot be
// matched at all.
func (b *batch) intake(records []record.Record) *worklist {
	w := newWorklist(len(records))
	for i, r := range records {
		if _, err := record.ParseType(string(r.Type)); err != nil {
			b.skip(newInvalidRecordError(i, r.EntityID, err))
			continue
		}
		if !r.Resolvable() {
			b.skip(newUnresolvableError(i, r.EntityID))
			continue
		}
		key, err := r.Key()
		if err != nil {
			b.skip(newInvalidRecordError(i, r.EntityID, err))
			continue
		}
		txn, err := r.Txn()
		if err != nil {
			b.skip(newInvalidRecordError(i, r.EntityID, err))
			continue
		}
		r.LinkGroupID = ""
		w.push(pending{index: i, rec: r, txn: txn, key: key})
	}
	return w
}

// founder opens a new group for every Customer that owns a business.
// No scoring: business owners always anchor their own group.
func (b *batch) founder(ctx context.Context, p *pending) (bool, error) {
	if p.rec.Type != record.TypeCustomer || p.txn.Kind != record.KindOwnBusiness {
		return false, nil
	}
	return true, b.openGroup(ctx, p, PassFounder, false)
}

// customer files every remaining Customer: by identity when its entity id
// already anchors a group, otherwise by similarity, otherwise into a new
// group.
func (b *batch) customer(ctx context.Context, p *pending) (bool, error) {
	if p.rec.Type != record.TypeCustomer {
		return false, nil
	}

	if p.txn.Kind == record.KindBillPay {
		if id, ok := b.st.ownerOf(p.txn.Party); ok {
			p.rec.LinkGroupID = id
		}
	}

	if id, ok := b.st.anchorOf(p.rec.EntityID); ok {
		return true, b.assign(ctx, id, p, PassCustomer)
	}

	m := bestMatch(p.key, b.st, b.engine.weights, b.engine.threshold)
	b.res.Comparisons += m.comparisons
	b.engine.metrics.AddComparisons(m.comparisons)

	if m.found() {
		b.engine.logger.Debug("similarity match",
			"entity_id", p.rec.EntityID,
			"group_id", m.groupID,
			"score", m.score,
		)
		return true, b.assign(ctx, m.groupID, p, PassCustomer)
	}
	return true, b.openGroup(ctx, p, PassCustomer, true)
}

// billPayed files a bill-pay counterparty under the group that owns the
// paid business.
func (b *batch) billPayed(ctx context.Context, p *pending) (bool, error) {
	if p.rec.Type != record.TypeCounterParty || p.txn.Kind != record.KindBillPayed {
		return false, nil
	}
	target, ok := b.st.ownerOf(p.txn.Party)
	if !ok {
		return false, nil
	}
	if link, ok := b.st.anchorOf(p.rec.EntityID); ok {
		p.rec.LinkGroupID = link
	}
	return true, b.assign(ctx, target, p, PassBillPayed)
}

// business files a Business row under its declared owner's group.
func (b *batch) business(ctx context.Context, p *pending) (bool, error) {
	if p.rec.Type != record.TypeBusiness {
		return false, nil
	}
	target, ok := b.st.anchorOf(p.txn.Party)
	if !ok {
		return false, nil
	}
	return true, b.assign(ctx, target, p, PassBusiness)
}

// counterParty files a remaining Counter-Party under the group anchored by
// its transaction's counterparty, linking it to its own group if it has one.
func (b *batch) counterParty(ctx context.Context, p *pending) (bool, error) {
	if p.rec.Type != record.TypeCounterParty {
		return false, nil
	}
	target, ok := b.st.anchorOf(p.txn.Party)
	if !ok {
		return false, nil
	}
	if link, ok := b.st.anchorOf(p.rec.EntityID); ok {
		p.rec.LinkGroupID = link
	}
	return true, b.assign(ctx, target, p, PassCounterParty)
}

// assign appends a record to an existing group. Customer records also
// update the profile, written together with the member list.
func (b *batch) assign(ctx context.Context, id string, p *pending, passName string) error {
	members := b.st.appendMember(id, p.rec)

	if p.rec.Type == record.TypeCustomer {
		profile := b.st.profiles[id].Clone()
		profile.Merge(p.key)
		if err := b.engine.store.SaveGroupWithProfile(ctx, id, members, profile); err != nil {
			return fmt.Errorf("assign record %d to %s: %w", p.index, id, err)
		}
		b.st.profiles[id] = profile
	} else {
		if err := b.engine.store.SaveGroup(ctx, id, members); err != nil {
			return fmt.Errorf("assign record %d to %s: %w", p.index, id, err)
		}
	}

	b.st.commitMembers(id, members)
	b.res.Assigned++
	b.engine.metrics.RecordFiled(passName)
	b.engine.logger.Debug("record filed",
		"pass", passName,
		"entity_id", p.rec.EntityID,
		"group_id", id,
	)
	return nil
}

// openGroup creates a group with p as its first member. withProfile seeds
// the profile from the record's key.
func (b *batch) openGroup(ctx context.Context, p *pending, passName string, withProfile bool) error {
	id := b.engine.ids.Generate()
	if _, found := slices.BinarySearch(b.st.ids, id); found {
		return fmt.Errorf("open group %s for record %d: %w", id, p.index, ErrGroupExists)
	}
	members := []record.Record{p.rec}

	var profile store.Profile
	if withProfile {
		profile.Merge(p.key)
		if err := b.engine.store.SaveGroupWithProfile(ctx, id, members, profile); err != nil {
			return fmt.Errorf("open group %s for record %d: %w", id, p.index, err)
		}
	} else {
		if err := b.engine.store.SaveGroup(ctx, id, members); err != nil {
			return fmt.Errorf("open group %s for record %d: %w", id, p.index, err)
		}
	}

	b.st.profiles[id] = profile
	b.st.commitMembers(id, members)
	b.res.GroupsFormed++
	b.res.Assigned++
	b.engine.metrics.GroupFormed()
	b.engine.metrics.RecordFiled(passName)
	b.engine.logger.Debug("group opened",
		"pass", passName,
		"entity_id", p.rec.EntityID,
		"group_id", id,
	)
	return nil
}

func (b *batch) skip(err *RecordError) {
	b.res.Skipped = append(b.res.Skipped, err)
	b.engine.metrics.RecordSkipped(string(err.Code))
	b.engine.logger.Debug("record skipped", "error", err)
}

// orphan reports a record no pass could file.
func (b *batch) orphan(p pending) {
	passName := PassCounterParty
	if p.rec.Type == record.TypeBusiness {
		passName = PassBusiness
	}
	err := newOrphanError(p.index, p.rec.EntityID, passName, p.txn.Party)
	b.res.Orphans = append(b.res.Orphans, err)
	b.engine.metrics.OrphanLink()
	b.engine.logger.Warn("orphan link",
		"pass", passName,
		"entity_id", p.rec.EntityID,
		"party", p.txn.Party,
	)
}
