package model

import "errors"

// State-conflict errors. Each signals that the requested mutation is
// inconsistent with current state; retrying without a state change will
// not help. They are wrapped with context at the call site and matched
// with errors.Is.
var (
	// ErrInvalidStateTransition indicates the entity cannot move from
	// its current state to the requested one.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrActiveTurnExists indicates the session already has an active turn.
	ErrActiveTurnExists = errors.New("active turn exists")

	// ErrTurnNotActive indicates the operation requires an active turn.
	ErrTurnNotActive = errors.New("turn is not active")

	// ErrObjectionAlreadyPending indicates the turn already has a
	// pending objection awaiting a ruling.
	ErrObjectionAlreadyPending = errors.New("objection already pending")

	// ErrObjectionAlreadyRuled indicates the objection has been ruled
	// on and is immutable.
	ErrObjectionAlreadyRuled = errors.New("objection already ruled")

	// ErrExhibitAlreadyRuled indicates the exhibit has been admitted or
	// rejected and is immutable.
	ErrExhibitAlreadyRuled = errors.New("exhibit already ruled")

	// ErrIncompleteSession indicates the session still has an active
	// turn or a pending objection and cannot complete.
	ErrIncompleteSession = errors.New("session has unfinished business")
)

// ErrNotPresidingJudge is an authorization failure: the acting
// principal is not the session's presiding judge. Never retried.
var ErrNotPresidingJudge = errors.New("not the presiding judge")

// ErrInvalidFile indicates an uploaded exhibit artifact failed
// validation (unrecognized format or size ceiling exceeded).
var ErrInvalidFile = errors.New("invalid exhibit file")
