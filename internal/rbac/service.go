package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/amexing/amexing-ops/internal/platform/db"
	"github.com/amexing/amexing-ops/internal/shared"
)

// ErrNotFound indicates that the principal does not exist or is disabled.
var ErrNotFound = shared.NewError(shared.ErrUnauthorized, "auth.principal_not_found", "La sesión ya no es válida")

// ActorStore resolves user ids into principals.
type ActorStore interface {
	FindActor(ctx context.Context, userID int64) (shared.Actor, error)
}

// Service resolves principals for the middleware.
type Service struct {
	store ActorStore
}

// NewService constructs a Service backed by the provided store.
func NewService(store ActorStore) *Service {
	return &Service{store: store}
}

// Actor loads the active principal for userID.
func (s *Service) Actor(ctx context.Context, userID int64) (shared.Actor, error) {
	if userID <= 0 {
		return shared.Actor{}, ErrNotFound
	}
	actor, err := s.store.FindActor(ctx, userID)
	if err != nil {
		return shared.Actor{}, err
	}
	if actor.Level() == 0 {
		return shared.Actor{}, fmt.Errorf("rbac: user %d has unknown role %q: %w", userID, actor.Role, ErrNotFound)
	}
	return actor, nil
}

// PGStore reads principals from the users table.
type PGStore struct {
	db db.DBTX
}

// NewPGStore constructs a PGStore.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// FindActor implements ActorStore.
func (s *PGStore) FindActor(ctx context.Context, userID int64) (shared.Actor, error) {
	var actor shared.Actor
	var role string
	err := s.db.QueryRow(ctx, `SELECT id, email, name, role FROM users WHERE id = $1 AND active`, userID).
		Scan(&actor.ID, &actor.Email, &actor.Name, &role)
	if err != nil {
		if db.IsNoRows(err) {
			return shared.Actor{}, ErrNotFound
		}
		return shared.Actor{}, fmt.Errorf("rbac: find actor %d: %w", userID, err)
	}
	actor.Role = shared.Role(role)
	return actor, nil
}

// IsNotFound reports whether err means the principal is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
