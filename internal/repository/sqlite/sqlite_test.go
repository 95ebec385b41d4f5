package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sakif/bloghub/internal/model"
)

// newTestDB returns a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, PasswordHash: "$2a$04$hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestPost creates a post authored by authorID and fails the test if it errors.
func createTestPost(t *testing.T, db *DB, authorID int64, title, date string) *model.Post {
	t.Helper()
	post := &model.Post{
		Title:    title,
		Subtitle: title + " subtitle",
		Body:     title + " body",
		Date:     date,
		AuthorID: authorID,
	}
	if err := db.Posts().Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func TestNew_ForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var on int
	if err := db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("reading foreign_keys pragma: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.db")

	first, err := New(path)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	createTestUser(t, first, "Ada", "ada@example.com")
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer second.Close()

	users, err := second.Users().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("List() after reopen returned %d users, want 1", len(users))
	}
}

// TestMigrate_LegacyUsersTableGetsRole opens a database whose users table
// predates the role column and checks the lowest id becomes the admin.
func TestMigrate_LegacyUsersTableGetsRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening raw db: %v", err)
	}
	_, err = raw.Exec(`
		CREATE TABLE users (
			id       INTEGER PRIMARY KEY,
			email    VARCHAR(100) UNIQUE,
			password VARCHAR(100) NOT NULL,
			name     VARCHAR(100) NOT NULL
		);
		INSERT INTO users (id, email, password, name) VALUES
			(1, 'first@example.com', 'h', 'First'),
			(2, 'second@example.com', 'h', 'Second');
	`)
	if err != nil {
		t.Fatalf("seeding legacy schema: %v", err)
	}
	raw.Close()

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() on legacy db error = %v", err)
	}
	defer db.Close()

	first, err := db.Users().GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID(1) error = %v", err)
	}
	if first.Role != model.RoleAdmin {
		t.Errorf("user 1 role = %q, want %q", first.Role, model.RoleAdmin)
	}

	second, err := db.Users().GetByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetByID(2) error = %v", err)
	}
	if second.Role != model.RoleRegular {
		t.Errorf("user 2 role = %q, want %q", second.Role, model.RoleRegular)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
