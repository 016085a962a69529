package repository

import (
	"context"

	"github.com/sakif/account-service/internal/model"
)

// UserRepository is the persistence abstraction for user accounts.
//
// Implementations must enforce uniqueness of username and email with a
// storage-level constraint — not a check-then-insert — and translate the
// driver's violation into apperror.Duplicate naming the colliding field.
// That way concurrent registrations with the same identity can never both
// succeed.
type UserRepository interface {
	// Create inserts a new user and fills in ID, CreatedAt and UpdatedAt.
	// Returns apperror.ErrDuplicate (with the field set) on a uniqueness
	// violation.
	Create(ctx context.Context, user *model.User) error

	// GetByIdentifier looks a user up by email OR username — whichever
	// column the identifier matches. Returns apperror.ErrNotFound if
	// neither does.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)

	// GetByID looks a user up by primary key.
	// Returns apperror.ErrNotFound if no such row exists.
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Store is a UserRepository that owns its connection pool. The server
// closes it during graceful shutdown.
type Store interface {
	UserRepository
	Close() error
}
