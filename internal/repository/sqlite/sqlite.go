// Package sqlite implements the repository interfaces on SQLite.
//
// DRIVER:
// modernc.org/sqlite is a pure Go translation of SQLite, registered with
// database/sql under the name "sqlite". No C toolchain is needed.
//
// CONNECTION MODEL:
// The pool is capped at a single connection. SQLite serialises writers anyway,
// PRAGMAs such as foreign_keys are per-connection, and a ":memory:" database
// exists only inside the connection that created it. With one connection every
// statement sees the same database and the same PRAGMAs. Each statement is
// atomic on its own; concurrent edits to one row are last-writer-wins.
//
// LAYOUT:
//
//	DB            owns the *sql.DB, runs migrations
//	DB.Users()    → *UserStore     (repository.UserRepository)
//	DB.Posts()    → *PostStore     (repository.PostRepository)
//	DB.Comments() → *CommentStore  (repository.CommentRepository)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and hands out the per-entity stores.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/blog.db" → file-based database
//   - ":memory:"     → in-memory database, gone on Close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while the single writer commits. In-memory
	// databases answer "memory" here, which is fine.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The schema relies on them for
	// ON DELETE CASCADE from users → posts → comments.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Call it once, on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database still answers.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

func (db *DB) Users() *UserStore       { return &UserStore{conn: db.conn} }
func (db *DB) Posts() *PostStore       { return &PostStore{conn: db.conn} }
func (db *DB) Comments() *CommentStore { return &CommentStore{conn: db.conn} }

// migrate creates the schema. Table names match the ones the blog has always
// used (users, blogpost, comments) so an existing database file keeps working;
// columns introduced later are added in place.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			email    TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name     TEXT NOT NULL,
			role     TEXT NOT NULL DEFAULT 'regular' CHECK (role IN ('regular', 'admin'))
		);
		CREATE INDEX IF NOT EXISTS idx_users_name ON users(name);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Databases created before roles existed have no role column. The admin
	// used to be the user with id 1, so promote the lowest id once.
	added, err := db.addColumnIfNotExists("users", "role",
		"TEXT NOT NULL DEFAULT 'regular'")
	if err != nil {
		return fmt.Errorf("adding role to users: %w", err)
	}
	if added {
		if _, err := db.conn.Exec(
			`UPDATE users SET role = 'admin' WHERE id = (SELECT MIN(id) FROM users)`,
		); err != nil {
			return fmt.Errorf("promoting first user: %w", err)
		}
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS blogpost (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			title     TEXT NOT NULL,
			subtitle  TEXT NOT NULL,
			body      TEXT NOT NULL,
			date      TEXT NOT NULL,
			author_id INTEGER REFERENCES users(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_blogpost_date ON blogpost(date);
		CREATE INDEX IF NOT EXISTS idx_blogpost_author_id ON blogpost(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating blogpost table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			body      TEXT NOT NULL,
			author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			post_id   INTEGER NOT NULL REFERENCES blogpost(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// It reports whether the column was added.
func (db *DB) addColumnIfNotExists(table, column, definition string) (bool, error) {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return false, nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	if err != nil {
		return false, err
	}
	return true, nil
}

// constraintCode returns the extended SQLite result code of err when it is a
// constraint violation, or 0.
func constraintCode(err error) int {
	var sqliteErr *sqlitedriver.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}
	switch code := sqliteErr.Code(); code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		sqlite3.SQLITE_CONSTRAINT_NOTNULL,
		sqlite3.SQLITE_CONSTRAINT_CHECK:
		return code
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary code only: fall back to the message.
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return sqlite3.SQLITE_CONSTRAINT_UNIQUE
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
		}
		return code
	}
	return 0
}

// checkAffected turns "zero rows affected" into NotFound.
func checkAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
