package repository

import (
	"context"
	"time"

	"github.com/dwisetyawan/account-service/internal/domain/entity"
)

// AccountRepository defines the persistence operations for accounts.
//
// Lookup misses return *entity.NotFoundError. Insert and UpdateUsername
// return *entity.ConflictError when the store's uniqueness constraint on
// username or email fires; the constraint is the final authority, any
// service-level pre-check is only a fast path. Other store failures come
// back as *entity.PersistenceError. Every update also bumps the modified
// timestamp inside the same statement, using the store clock.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)

	// Insert persists a new account and fills in Created and Modified from
	// the store clock.
	Insert(ctx context.Context, a *entity.Account) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateUsername(ctx context.Context, id, username string) error
	UpdateImagePath(ctx context.Context, id, imagePath string) error

	// UpdateLastLogin stamps a successful authentication and returns the
	// stored timestamp.
	UpdateLastLogin(ctx context.Context, id string) (time.Time, error)
}
