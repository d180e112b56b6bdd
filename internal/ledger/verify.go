package ledger

import (
	"fmt"
	"time"

	"github.com/courtlab/gavel/internal/model"
)

// SequenceGapError reports a missing or duplicated sequence number.
// It indicates entries were deleted or skipped.
type SequenceGapError struct {
	SessionID string
	Expected  uint64
	Got       uint64
}

func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("session %s: expected event sequence %d, got %d", e.SessionID, e.Expected, e.Got)
}

// HashMismatchError reports an entry whose recomputed hash differs from
// the stored one. It indicates the payload or metadata was altered
// after the entry was written.
type HashMismatchError struct {
	SessionID string
	Seq       uint64
	Stored    string
	Computed  string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("session %s: event %d hash mismatch (stored %s, computed %s)", e.SessionID, e.Seq, e.Stored, e.Computed)
}

// Report is the outcome of verifying one session's ledger. Findings are
// reported, never auto-healed; any finding means the ledger can no
// longer be trusted for that session.
type Report struct {
	SessionID string    `json:"session_id"`
	Checked   int       `json:"entries_checked"`
	CheckedAt time.Time `json:"checked_at"`
	Findings  []string  `json:"findings,omitempty"`

	errs []error
}

// OK reports whether verification found no integrity problems.
func (r *Report) OK() bool {
	return len(r.errs) == 0
}

// Errors returns the typed integrity errors found during verification.
func (r *Report) Errors() []error {
	return r.errs
}

func (r *Report) record(err error) {
	r.errs = append(r.errs, err)
	r.Findings = append(r.Findings, err.Error())
}

// Verify checks one session's ledger entries, which must be ordered by
// sequence. It asserts the sequence is exactly 1..N with no gaps and
// recomputes each entry's hash from its stored fields.
//
// Each entry's hash covers only its own content; the scheme does not
// chain entries together, so a consistent rewrite of history that
// recomputes every hash is not detectable here and relies on external
// corroboration.
func Verify(sessionID string, entries []*model.EventLedgerEntry, now time.Time) *Report {
	report := &Report{
		SessionID: sessionID,
		Checked:   len(entries),
		CheckedAt: now.UTC(),
	}

	for i, e := range entries {
		want := uint64(i + 1)
		if e.Seq != want {
			report.record(&SequenceGapError{SessionID: sessionID, Expected: want, Got: e.Seq})
		}
		computed := EntryHash(e.SessionID, e.Type, e.Payload, e.CreatedAt)
		if computed != e.Hash {
			report.record(&HashMismatchError{SessionID: sessionID, Seq: e.Seq, Stored: e.Hash, Computed: computed})
		}
	}

	return report
}
