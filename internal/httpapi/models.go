package httpapi

import (
	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// GroupSummary is one entry of the group listing.
type GroupSummary struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
}

// GroupListResponse is returned by GET /groups.
type GroupListResponse struct {
	Groups []GroupSummary `json:"groups"`
}

// TransactionResponse is a decoded transaction tuple.
type TransactionResponse struct {
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Party     string `json:"party,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// MemberResponse is one group member. Parsed is omitted when the stored
// transaction does not decode.
type MemberResponse struct {
	Type        string               `json:"type"`
	EntityID    string               `json:"entity_id"`
	Transaction string               `json:"transaction"`
	Parsed      *TransactionResponse `json:"parsed,omitempty"`
	CompoundKey string               `json:"compound_key"`
	LinkGroupID string               `json:"link_group_id,omitempty"`
}

// GroupResponse is returned by GET /groups/{id}.
type GroupResponse struct {
	ID      string           `json:"id"`
	Members []MemberResponse `json:"members"`
}

// ProfileResponse is returned by GET /groups/{id}/profile. Rows omit
// null cells.
type ProfileResponse struct {
	GroupID string      `json:"group_id"`
	Fields  []string    `json:"fields"`
	Rows    []store.Row `json:"rows"`
}

// EntityGroupsResponse is returned by GET /entities/{id}/groups.
type EntityGroupsResponse struct {
	EntityID string   `json:"entity_id"`
	Groups   []string `json:"groups"`
}

// FromMembers converts stored members to the response shape.
func FromMembers(id string, members []record.Record) GroupResponse {
	resp := GroupResponse{ID: id, Members: make([]MemberResponse, 0, len(members))}
	for _, m := range members {
		mr := MemberResponse{
			Type:        string(m.Type),
			EntityID:    m.EntityID,
			Transaction: m.Transaction,
			CompoundKey: m.CompoundKey,
			LinkGroupID: m.LinkGroupID,
		}
		if txn, err := m.Txn(); err == nil {
			mr.Parsed = &TransactionResponse{
				Location:  txn.Location,
				Timestamp: txn.Timestamp,
				Kind:      string(txn.Kind),
				Party:     txn.Party,
				Amount:    txn.Amount,
			}
		}
		resp.Members = append(resp.Members, mr)
	}
	return resp
}

// FromProfile converts a profile to the response shape.
func FromProfile(id string, p store.Profile) ProfileResponse {
	resp := ProfileResponse{GroupID: id, Fields: p.Fields, Rows: p.Rows}
	if resp.Fields == nil {
		resp.Fields = []string{}
	}
	if resp.Rows == nil {
		resp.Rows = []store.Row{}
	}
	return resp
}
