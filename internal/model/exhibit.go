package model

import "time"

// ExhibitState represents the lifecycle state of an evidentiary exhibit.
type ExhibitState string

const (
	ExhibitUploaded ExhibitState = "uploaded"
	ExhibitMarked   ExhibitState = "marked"
	ExhibitTendered ExhibitState = "tendered"
	ExhibitAdmitted ExhibitState = "admitted"
	ExhibitRejected ExhibitState = "rejected"
)

// String returns the string representation of the state.
func (s ExhibitState) String() string {
	return string(s)
}

// IsValid checks whether the state is a known value.
func (s ExhibitState) IsValid() bool {
	switch s {
	case ExhibitUploaded, ExhibitMarked, ExhibitTendered, ExhibitAdmitted, ExhibitRejected:
		return true
	}
	return false
}

// IsRuling reports whether the state is a valid ruling decision.
func (s ExhibitState) IsRuling() bool {
	return s == ExhibitAdmitted || s == ExhibitRejected
}

// IsTerminal reports whether the exhibit has been ruled on. Ruled
// exhibits are immutable.
func (s ExhibitState) IsTerminal() bool {
	return s.IsRuling()
}

// Exhibit is an evidentiary artifact submitted by a side. Number is
// zero until the exhibit is marked; numbers are unique and strictly
// increasing within (session, side), assigned under the session lock.
type Exhibit struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Side      Side         `json:"side"`
	State     ExhibitState `json:"state"`
	Number    int          `json:"exhibit_number,omitempty"`

	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentHash string `json:"content_hash"`
	StorageKey  string `json:"storage_key,omitempty"`

	UploadedBy string     `json:"uploaded_by,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
	RuledBy    string     `json:"ruled_by,omitempty"`
	RuledAt    *time.Time `json:"ruled_at,omitempty"`
}
