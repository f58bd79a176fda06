package record

import "fmt"

// Type is the role a record plays in a transaction.
type Type string

const (
	// TypeCustomer is the party that initiated the transaction. Customers
	// anchor groups.
	TypeCustomer Type = "Customer"
	// TypeCounterParty is the other side of a transaction.
	TypeCounterParty Type = "Counter-Party"
	// TypeBusiness is a business row filed under its owner's group.
	TypeBusiness Type = "Business"
)

// ParseType validates a record type label.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeCustomer, TypeCounterParty, TypeBusiness:
		return t, nil
	default:
		return "", fmt.Errorf("unknown record type %q", s)
	}
}

// Record is one classified (or classifiable) row.
//
// Records are immutable once assigned to a group, except that LinkGroupID
// may be set while the engine resolves the record.
type Record struct {
	Type        Type   `json:"type"`
	EntityID    string `json:"entity_id"`
	Transaction string `json:"transaction"`
	CompoundKey string `json:"compound_key"`
	LinkGroupID string `json:"link_group_id,omitempty"`
}

// Txn decodes the record's transaction tuple.
func (r Record) Txn() (Transaction, error) {
	return ParseTransaction(r.Transaction)
}

// Key decodes the record's compound key.
func (r Record) Key() (CompoundKey, error) {
	return ParseCompoundKey(r.CompoundKey)
}

// Resolvable reports whether the record carries a compound key.
func (r Record) Resolvable() bool {
	return r.CompoundKey != ""
}

// Raw is an unkeyed input row: identity, transaction and the attribute map
// the compound key is built from.
type Raw struct {
	Type        Type
	EntityID    string
	Transaction string
	Attributes  map[string]string
}

// Build turns a raw row into a Record, choosing the best template.
// The returned Record has an empty CompoundKey when no template is fully
// satisfied; the engine counts such records as skipped.
func Build(raw Raw, templates []Template) Record {
	rec := Record{
		Type:        raw.Type,
		EntityID:    raw.EntityID,
		Transaction: raw.Transaction,
	}
	if key, ok := BuildKey(raw.Attributes, templates); ok {
		rec.CompoundKey = key.String()
	}
	return rec
}
