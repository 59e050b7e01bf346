package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ScoredMember is one row of a sorted set.
type ScoredMember struct {
	Member string  `db:"member"`
	Score  float64 `db:"score"`
}

// KV is the key-value surface the economy is written against.
type KV interface {
	// Score returns the member's score and whether it exists.
	Score(ctx context.Context, set, member string) (float64, bool, error)
	SetScore(ctx context.Context, set, member string, score float64) error
	RemoveMember(ctx context.Context, set, member string) error
	// RangeByScoreDesc returns members ranked start..stop (inclusive, 0-based)
	// from the highest score. A negative stop means the end of the set.
	RangeByScoreDesc(ctx context.Context, set string, start, stop int) ([]ScoredMember, error)

	HashField(ctx context.Context, hash, field string) (string, bool, error)
	SetHashField(ctx context.Context, hash, field, value string) error
	DeleteHashField(ctx context.Context, hash, field string) error

	WithTx(ctx context.Context, fn func(KV) error) error
}

var _ KV = (*Store)(nil)

func (s *Store) Score(ctx context.Context, set, member string) (float64, bool, error) {
	var score float64
	err := sqlx.GetContext(ctx, s.ext, &score, "SELECT score FROM sorted_set WHERE name = ? AND member = ?", set, member)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("score %s/%s: %w", set, member, err)
	}
	return score, true, nil
}

func (s *Store) SetScore(ctx context.Context, set, member string, score float64) error {
	_, err := s.ext.ExecContext(ctx,
		`INSERT INTO sorted_set (name, member, score) VALUES (?, ?, ?)
		 ON CONFLICT (name, member) DO UPDATE SET score = excluded.score`, set, member, score)
	if err != nil {
		return fmt.Errorf("set score %s/%s: %w", set, member, err)
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, set, member string) error {
	if _, err := s.ext.ExecContext(ctx, "DELETE FROM sorted_set WHERE name = ? AND member = ?", set, member); err != nil {
		return fmt.Errorf("remove %s/%s: %w", set, member, err)
	}
	return nil
}

func (s *Store) RangeByScoreDesc(ctx context.Context, set string, start, stop int) ([]ScoredMember, error) {
	if start < 0 {
		start = 0
	}
	limit := -1
	if stop >= 0 {
		if stop < start {
			return nil, nil
		}
		limit = stop - start + 1
	}
	var members []ScoredMember
	err := sqlx.SelectContext(ctx, s.ext, &members,
		"SELECT member, score FROM sorted_set WHERE name = ? ORDER BY score DESC, member ASC LIMIT ? OFFSET ?",
		set, limit, start)
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", set, err)
	}
	return members, nil
}

func (s *Store) HashField(ctx context.Context, hash, field string) (string, bool, error) {
	var value string
	err := sqlx.GetContext(ctx, s.ext, &value, "SELECT value FROM hash WHERE name = ? AND field = ?", hash, field)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hash field %s/%s: %w", hash, field, err)
	}
	return value, true, nil
}

func (s *Store) SetHashField(ctx context.Context, hash, field, value string) error {
	_, err := s.ext.ExecContext(ctx,
		`INSERT INTO hash (name, field, value) VALUES (?, ?, ?)
		 ON CONFLICT (name, field) DO UPDATE SET value = excluded.value`, hash, field, value)
	if err != nil {
		return fmt.Errorf("set hash field %s/%s: %w", hash, field, err)
	}
	return nil
}

func (s *Store) DeleteHashField(ctx context.Context, hash, field string) error {
	if _, err := s.ext.ExecContext(ctx, "DELETE FROM hash WHERE name = ? AND field = ?", hash, field); err != nil {
		return fmt.Errorf("delete hash field %s/%s: %w", hash, field, err)
	}
	return nil
}
