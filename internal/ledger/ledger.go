// Package ledger implements content hashing and integrity verification
// for the append-only session event ledger.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/courtlab/gavel/internal/model"
)

// CanonicalJSON serializes v with object keys sorted and no incidental
// whitespace, so the same logical payload always produces identical
// bytes. It round-trips through a generic value because encoding/json
// sorts map keys but preserves struct field order.
func CanonicalJSON(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("normalize payload: %w", err)
	}
	canon, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return canon, nil
}

// EntryHash computes the content hash of a ledger entry:
// SHA-256 over session id, event type, canonical payload, and the
// RFC 3339 nanosecond UTC created-at timestamp, concatenated in order.
func EntryHash(sessionID string, eventType model.EventType, payload []byte, createdAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(sessionID))
	h.Write([]byte(eventType))
	h.Write(payload)
	h.Write([]byte(createdAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}

// NewEntry builds an unsequenced ledger entry for the given payload.
// The store assigns Seq at append time, under the session lock.
// The timestamp is truncated to microseconds before hashing: TIMESTAMPTZ
// holds microsecond precision, and the hash must survive a database
// round trip.
func NewEntry(sessionID string, eventType model.EventType, payload any, createdAt time.Time) (*model.EventLedgerEntry, error) {
	canon, err := CanonicalJSON(payload)
	if err != nil {
		return nil, err
	}
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	return &model.EventLedgerEntry{
		SessionID: sessionID,
		Type:      eventType,
		Payload:   canon,
		Hash:      EntryHash(sessionID, eventType, canon, createdAt),
		CreatedAt: createdAt,
	}, nil
}
