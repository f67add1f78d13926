package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maruel/jokedb/internal/storage/entity"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Compile-time interface guards.
var (
	_ Repository = (*SQLite)(nil)
	_ Repository = (*JSONFile)(nil)
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jokes (
	id        INTEGER PRIMARY KEY,
	type      TEXT NOT NULL,
	setup     TEXT NOT NULL,
	punchline TEXT NOT NULL
);`

// SQLite is a Repository backed by an SQLite database via modernc.org/sqlite.
//
// Each mutation is a single statement, so a crash never leaves a partially
// written collection behind.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path. Use ":memory:" for an
// in-memory database.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// SQLite performs best with a single write connection. It also keeps
	// ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping sqlite %q: %w", path, err), db.Close())
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return nil, errors.Join(fmt.Errorf("exec %q: %w", p, err), db.Close())
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("create schema: %w", err), db.Close())
	}
	return &SQLite{db: db}, nil
}

// Load implements Repository.
func (r *SQLite) Load(ctx context.Context) ([]entity.Joke, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, type, setup, punchline FROM jokes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query jokes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	jokes := []entity.Joke{}
	for rows.Next() {
		var j entity.Joke
		if err := rows.Scan(&j.ID, &j.Type, &j.Setup, &j.Punchline); err != nil {
			return nil, fmt.Errorf("scan joke: %w", err)
		}
		jokes = append(jokes, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jokes: %w", err)
	}
	return jokes, nil
}

// Renumber implements Repository by rewriting the table in one transaction.
func (r *SQLite) Renumber(ctx context.Context, jokes []entity.Joke) error {
	return r.ReplaceAll(ctx, jokes)
}

// ReplaceAll replaces the table content with jokes in one transaction.
func (r *SQLite) ReplaceAll(ctx context.Context, jokes []entity.Joke) error {
	return r.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM jokes"); err != nil {
			return fmt.Errorf("clear jokes: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO jokes (id, type, setup, punchline) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()
		for _, j := range jokes {
			if _, err := stmt.ExecContext(ctx, j.ID, j.Type, j.Setup, j.Punchline); err != nil {
				return fmt.Errorf("insert joke %d: %w", j.ID, err)
			}
		}
		return nil
	})
}

// Insert implements Repository.
func (r *SQLite) Insert(ctx context.Context, j entity.Joke) error {
	if _, err := r.db.ExecContext(ctx, "INSERT INTO jokes (id, type, setup, punchline) VALUES (?, ?, ?, ?)", j.ID, j.Type, j.Setup, j.Punchline); err != nil {
		return fmt.Errorf("insert joke %d: %w", j.ID, err)
	}
	return nil
}

// Replace implements Repository.
func (r *SQLite) Replace(ctx context.Context, j entity.Joke) error {
	res, err := r.db.ExecContext(ctx, "UPDATE jokes SET type = ?, setup = ?, punchline = ? WHERE id = ?", j.Type, j.Setup, j.Punchline, j.ID)
	if err != nil {
		return fmt.Errorf("update joke %d: %w", j.ID, err)
	}
	return expectOneRow(res, j.ID)
}

// Remove implements Repository.
func (r *SQLite) Remove(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM jokes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete joke %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// Close implements Repository.
func (r *SQLite) Close() error {
	return r.db.Close()
}

// tx executes fn within a transaction, committed if fn returns nil.
func (r *SQLite) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

func expectOneRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
