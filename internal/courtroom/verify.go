package courtroom

import (
	"context"
	"log/slog"

	"github.com/courtlab/gavel/internal/ledger"
	"github.com/courtlab/gavel/internal/model"
)

// VerifySession re-checks one session's ledger: the sequence must be
// exactly 1..N and every entry's hash must recompute to its stored
// value. The verification timestamp is recorded on the session whether
// or not problems were found.
func (e *Engine) VerifySession(ctx context.Context, sessionID string) (*ledger.Report, error) {
	if _, err := e.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	entries, err := e.store.ListEvents(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}

	report := ledger.Verify(sessionID, entries, e.now())

	if err := e.store.SetIntegrityCheckedAt(ctx, sessionID); err != nil {
		slog.Warn("failed to record integrity check time", "session_id", sessionID, "error", err)
	}
	if !report.OK() {
		slog.Error("ledger integrity check failed",
			"session_id", sessionID, "findings", len(report.Findings))
	}
	return report, nil
}

// VerifyAllSessions verifies every session's ledger and returns one
// report per session.
func (e *Engine) VerifyAllSessions(ctx context.Context) ([]*ledger.Report, error) {
	sessions, err := e.store.ListSessions(ctx, model.SessionFilter{})
	if err != nil {
		return nil, err
	}

	reports := make([]*ledger.Report, 0, len(sessions))
	for _, session := range sessions {
		report, err := e.VerifySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
