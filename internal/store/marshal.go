package store

import (
	"encoding/json"
	"fmt"
)

// marshalProfile converts a Profile to JSON TEXT for storage. Null cells
// are omitted from each row object, which round-trips as "missing".
func marshalProfile(p Profile) (string, error) {
	if p.Fields == nil {
		p.Fields = []string{}
	}
	if p.Rows == nil {
		p.Rows = []Row{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return string(data), nil
}

// unmarshalProfile parses JSON TEXT into a Profile.
func unmarshalProfile(data string) (Profile, error) {
	if data == "" {
		return Profile{}, nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

// nullString maps "" to SQL NULL for optional columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
