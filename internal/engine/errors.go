package engine

import (
	"errors"
	"fmt"
)

// ErrGroupExists is returned when the id generator hands out the id of a
// group that is already stored. The batch stops before anything is
// overwritten.
var ErrGroupExists = errors.New("group id already exists")

// RecordError describes a record the engine could not file.
//
// Record errors never abort a batch. They are collected in the Result so
// callers can report them.
type RecordError struct {
	// Code identifies the error category.
	Code RecordErrorCode `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Index is the record's position in the batch input.
	Index int `json:"index"`

	// EntityID identifies the party the record describes.
	EntityID string `json:"entity_id"`

	// Pass names the last pass that considered the record.
	Pass string `json:"pass,omitempty"`
}

// RecordErrorCode categorizes record errors.
type RecordErrorCode string

const (
	// ErrCodeUnresolvable indicates no compound key template was satisfied.
	ErrCodeUnresolvable RecordErrorCode = "UNRESOLVABLE_RECORD"

	// ErrCodeOrphanLink indicates no anchor group exists for the record.
	ErrCodeOrphanLink RecordErrorCode = "ORPHAN_LINK"

	// ErrCodeInvalidRecord indicates an undecodable transaction or key.
	ErrCodeInvalidRecord RecordErrorCode = "INVALID_RECORD"
)

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Pass != "" {
		return fmt.Sprintf("%s: %s (record=%d, entity=%s, pass=%s)", e.Code, e.Message, e.Index, e.EntityID, e.Pass)
	}
	return fmt.Sprintf("%s: %s (record=%d, entity=%s)", e.Code, e.Message, e.Index, e.EntityID)
}

// IsOrphanError returns true if the error is an orphan link error.
// Uses errors.As to handle wrapped errors.
func IsOrphanError(err error) bool {
	var re *RecordError
	if errors.As(err, &re) {
		return re.Code == ErrCodeOrphanLink
	}
	return false
}

// IsUnresolvableError returns true if the error is an unresolvable record error.
func IsUnresolvableError(err error) bool {
	var re *RecordError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnresolvable
	}
	return false
}

func newUnresolvableError(index int, entityID string) *RecordError {
	return &RecordError{
		Code:     ErrCodeUnresolvable,
		Message:  "no compound key template satisfied",
		Index:    index,
		EntityID: entityID,
	}
}

func newInvalidRecordError(index int, entityID string, err error) *RecordError {
	return &RecordError{
		Code:     ErrCodeInvalidRecord,
		Message:  err.Error(),
		Index:    index,
		EntityID: entityID,
	}
}

func newOrphanError(index int, entityID, pass, party string) *RecordError {
	return &RecordError{
		Code:     ErrCodeOrphanLink,
		Message:  fmt.Sprintf("no anchor group for party %q", party),
		Index:    index,
		EntityID: entityID,
		Pass:     pass,
	}
}
