package authz

import (
	"context"
	"fmt"

	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// Resolver answers authorization questions about session principals.
// Rulings (objections, exhibit admission) are reserved to the presiding
// judge; implementations must fail closed on lookup errors.
type Resolver interface {
	// RequirePresidingJudge returns ErrNotPresidingJudge (wrapped) when
	// principal is not the presiding judge of the session.
	RequirePresidingJudge(ctx context.Context, sessionID, principal string) error
}

// StoreResolver resolves the presiding judge from the session record.
type StoreResolver struct {
	store store.Store
}

func NewStoreResolver(s store.Store) *StoreResolver {
	return &StoreResolver{store: s}
}

func (r *StoreResolver) RequirePresidingJudge(ctx context.Context, sessionID, principal string) error {
	session, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("resolving presiding judge: %w", err)
	}
	return CheckPresidingJudge(session, principal)
}

// CheckPresidingJudge compares the principal against an already-loaded
// session record.
func CheckPresidingJudge(session *model.Session, principal string) error {
	if principal == "" || principal != session.PresidingJudge {
		return fmt.Errorf("%w: %q is not the presiding judge of session %s",
			model.ErrNotPresidingJudge, principal, session.ID)
	}
	return nil
}
