package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/account-service/internal/apperror"
	"github.com/sakif/account-service/internal/model"
	"github.com/sakif/account-service/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// Create inserts a new user row and fills in the generated ID and
// timestamps.
//
// Duplicate detection happens here, at the constraint: if the INSERT
// violates one of the UNIQUE columns, the driver's error names it
// ("UNIQUE constraint failed: users.email") and we translate that into
// apperror.Duplicate for the service layer. No pre-check read — two
// concurrent registrations with the same email race to the constraint and
// exactly one wins.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if field, ok := duplicateField(err); ok {
			return apperror.Duplicate(field)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByIdentifier retrieves a user whose email OR username equals the
// identifier. Returns apperror.ErrNotFound if neither column matches.
func (db *DB) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? OR username = ?`,
		identifier, identifier,
	))
}

// GetByID retrieves a user by primary key.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`,
		id,
	))
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlite: scanning user: %w", err)
	}

	return &u, nil
}

// duplicateField inspects a driver error for a UNIQUE violation and
// reports which column collided.
//
// modernc.org/sqlite surfaces constraint violations as plain errors whose
// message contains "UNIQUE constraint failed: users.<column>", so string
// matching is the only handle the driver gives us.
func duplicateField(err error) (string, bool) {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return "", false
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return "email", true
	case strings.Contains(msg, "users.username"):
		return "username", true
	default:
		return "field", true
	}
}
