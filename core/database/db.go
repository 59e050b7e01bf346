package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"CoinBot/core"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// The economy only needs two redis-like shapes: scored members of a named set,
// and string fields of a named hash.
var schema = `
CREATE TABLE IF NOT EXISTS sorted_set ( name VARCHAR NOT NULL, member VARCHAR NOT NULL, score REAL NOT NULL, PRIMARY KEY (name, member) );
CREATE INDEX IF NOT EXISTS sorted_set_score_index ON sorted_set (name, score);

CREATE TABLE IF NOT EXISTS hash ( name VARCHAR NOT NULL, field VARCHAR NOT NULL, value TEXT NOT NULL, PRIMARY KEY (name, field) );
`

// Store is the sqlite implementation of KV. The zero value is not usable; see Open.
type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  bool
}

// Open connects to the sqlite database at path (":memory:" works) and creates the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// sqlite serializes writers anyway; one connection keeps transactions from
	// failing with SQLITE_BUSY and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	// multi-statement Exec works with sqlite3
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	core.LogDebug("Opened database ", path)
	return &Store{db: db, ext: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn against a store bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise. Inside fn
// only the passed store may be used; the outer one would wait for the
// connection held by the transaction.
func (s *Store) WithTx(ctx context.Context, fn func(KV) error) (err error) {
	if s.tx {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				core.LogErrorF("Failed to roll back transaction: %s", rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit transaction: %w", err)
		}
	}()
	return fn(&Store{db: s.db, ext: tx, tx: true})
}
