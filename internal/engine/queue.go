package engine

import "github.com/roach88/linkage/internal/record"

// pending is a record waiting to be claimed by a pass, with its decoded
// transaction and key.
type pending struct {
	index int
	rec   record.Record
	txn   record.Transaction
	key   record.CompoundKey
}

// worklist holds pending records in input order.
//
// Passes never mutate the slice they iterate: drain builds a fresh slice
// of the records a pass left unclaimed.
type worklist struct {
	items []pending
}

// newWorklist creates an empty worklist sized for n records.
func newWorklist(n int) *worklist {
	return &worklist{items: make([]pending, 0, n)}
}

// push appends a record to the back of the worklist.
func (w *worklist) push(p pending) {
	w.items = append(w.items, p)
}

// Len returns the number of pending records.
func (w *worklist) Len() int {
	return len(w.items)
}

// drain offers every pending record to claim, front to back. Records for
// which claim returns false stay on the worklist in their original order.
//
// If claim fails, draining stops and the error is returned; the worklist
// is left as it was before the call.
func (w *worklist) drain(claim func(p *pending) (bool, error)) error {
	kept := make([]pending, 0, len(w.items))
	for i := range w.items {
		p := w.items[i]
		claimed, err := claim(&p)
		if err != nil {
			return err
		}
		if !claimed {
			kept = append(kept, p)
		}
	}
	w.items = kept
	return nil
}
