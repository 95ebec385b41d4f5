package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
	sqlite3 "modernc.org/sqlite/lib"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore reads and writes the users table.
type UserStore struct {
	conn *sql.DB
}

const userColumns = `id, email, password, name, role`

// Create inserts a new user and fills in user.ID and user.Role.
//
// ROLE ASSIGNMENT:
// The role is decided inside the INSERT itself: if the table is empty the new
// row is the admin, otherwise a regular user. Because it is one statement, two
// simultaneous first registrations cannot both become admin.
//
// A duplicate email hits the UNIQUE constraint and comes back as
// apperror.ErrConflict.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO users (email, password, name, role)
		 VALUES (?, ?, ?,
		         CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'regular' ELSE 'admin' END)
		 RETURNING id, role`,
		user.Email,
		user.PasswordHash,
		user.Name,
	).Scan(&user.ID, &user.Role)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return apperror.Conflict("user", "email")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Email, err)
	}
	return nil
}

// GetByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by exact email match.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// List returns every user ordered by name, then id.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// Delete removes a user. Their posts, the comments on those posts, and their
// own comments go with them through ON DELETE CASCADE.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("user", id))
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role); err != nil {
		return nil, err
	}
	return &u, nil
}
