package shared

import "fmt"

// RecordState replaces the active/exists flag pair used by catalog and
// pricing records. "deleted" rows are retained for history but excluded from
// every operational read.
type RecordState string

const (
	StateActive   RecordState = "active"
	StateInactive RecordState = "inactive"
	StateDeleted  RecordState = "deleted"
)

// Active reports whether the record is in operational use.
func (s RecordState) Active() bool { return s == StateActive }

// Exists reports whether the record has not been soft deleted.
func (s RecordState) Exists() bool { return s == StateActive || s == StateInactive }

// Valid reports whether s is a known state.
func (s RecordState) Valid() bool {
	switch s {
	case StateActive, StateInactive, StateDeleted:
		return true
	}
	return false
}

// Scan implements sql.Scanner.
func (s *RecordState) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*s = RecordState(v)
	case []byte:
		*s = RecordState(v)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("record state: unsupported type %T", src)
	}
	return nil
}
