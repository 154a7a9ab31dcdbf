// Package scd implements the slowly-changing-dimension type 2 store shared by
// every versioned entity (game states, markets, edges, positions). Rows are
// append-only: the first observation of a business key inserts version one,
// and every later change closes the current row and inserts a successor with
// a fresh surrogate id. The exactly-one-current invariant is enforced by a
// partial unique index on (business_key) WHERE is_current, created in
// internal/db; that index, not in-process locking, is the concurrency
// mechanism, because independent poller processes may write the same key.
package scd

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
)

const historyPageSize = 200

// Versioned constrains the store to pointer types that embed models.Version
// and can compare their version-significant payload against a predecessor.
type Versioned[P any] interface {
	*P
	Meta() *models.Version
	Unchanged(prev *P) bool
}

// RetryPolicy bounds the automatic retry of concurrent upsert conflicts.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultRetryPolicy retries three times with exponential backoff. Upsert
// absorbs conflicts itself; callers only see ConcurrencyConflictError once
// the budget is exhausted.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Backoff:    25 * time.Millisecond,
		MaxBackoff: 500 * time.Millisecond,
	}
}

// Store is the SCD2 repository for one entity type.
type Store[P any, T Versioned[P]] struct {
	db     *gorm.DB
	log    *zap.Logger
	entity string
	retry  RetryPolicy
}

// NewStore builds a store for entity (used in errors and metrics labels).
func NewStore[P any, T Versioned[P]](db *gorm.DB, log *zap.Logger, entity string, retry RetryPolicy) *Store[P, T] {
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.Backoff <= 0 {
		retry.Backoff = DefaultRetryPolicy().Backoff
	}
	if retry.MaxBackoff < retry.Backoff {
		retry.MaxBackoff = retry.Backoff
	}
	return &Store[P, T]{db: db, log: log, entity: entity, retry: retry}
}

// Create inserts the first version for key. It fails with
// DuplicateBusinessKeyError when a current version already exists, including
// when a concurrent writer wins the race and the partial index rejects the
// insert.
func (s *Store[P, T]) Create(ctx context.Context, key string, rec T) (uint64, error) {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(T(new(P))).
			Where("business_key = ? AND is_current", key).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DuplicateBusinessKeyError{Entity: s.entity, BusinessKey: key}
		}
		s.stamp(rec, key, now)
		return tx.Create(rec).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, &DuplicateBusinessKeyError{Entity: s.entity, BusinessKey: key}
		}
		return 0, err
	}
	metrics.VersionsCreated.WithLabelValues(s.entity).Inc()
	return rec.Meta().ID, nil
}

// Upsert is the poller write path. With no current version it behaves like
// Create. Otherwise it compares rec's version-significant fields against the
// stored current version: unchanged payloads no-op and return the existing
// surrogate id; changed payloads atomically close the current row and insert
// a successor. Conflicts with concurrent writers are retried with backoff up
// to the policy budget.
func (s *Store[P, T]) Upsert(ctx context.Context, key string, rec T) (uint64, bool, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, attempt); err != nil {
				return 0, false, err
			}
		}
		id, created, err := s.upsertOnce(ctx, key, rec)
		if err == nil {
			if created {
				metrics.VersionsCreated.WithLabelValues(s.entity).Inc()
			} else {
				metrics.UpsertNoops.WithLabelValues(s.entity).Inc()
			}
			return id, created, nil
		}
		if !IsUniqueViolation(err) {
			return 0, false, err
		}
		metrics.UpsertConflicts.WithLabelValues(s.entity).Inc()
		lastErr = err
		if s.log != nil {
			s.log.Warn("versioned upsert conflict, retrying",
				zap.String("entity", s.entity),
				zap.String("business_key", key),
				zap.Int("attempt", attempt+1),
			)
		}
	}
	return 0, false, &ConcurrencyConflictError{
		Entity:      s.entity,
		BusinessKey: key,
		Attempts:    s.retry.MaxRetries + 1,
		Err:         lastErr,
	}
}

func (s *Store[P, T]) upsertOnce(ctx context.Context, key string, rec T) (id uint64, created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur P
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("business_key = ? AND is_current", key).
			First(&cur)
		now := time.Now().UTC()
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			s.stamp(rec, key, now)
			created = true
			return tx.Create(rec).Error
		}
		curMeta := T(&cur).Meta()
		if rec.Unchanged(&cur) {
			id = curMeta.ID
			created = false
			return nil
		}
		if err := tx.Model(T(&cur)).Updates(map[string]any{
			"is_current": false,
			"valid_to":   now,
		}).Error; err != nil {
			return fmt.Errorf("close version %d of %s %q: %w", curMeta.ID, s.entity, key, err)
		}
		s.stamp(rec, key, now)
		created = true
		return tx.Create(rec).Error
	})
	if err != nil {
		return 0, false, err
	}
	if created {
		id = rec.Meta().ID
	}
	return id, created, nil
}

// GetCurrent returns the single current version for key.
func (s *Store[P, T]) GetCurrent(ctx context.Context, key string) (*P, error) {
	var cur P
	err := s.db.WithContext(ctx).
		Where("business_key = ? AND is_current", key).
		First(&cur).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: s.entity, BusinessKey: key}
		}
		return nil, err
	}
	return &cur, nil
}

// History yields every version of key ordered by valid_from ascending. The
// sequence is lazy (pages of historyPageSize) and restartable: ranging over
// it again re-runs the query from the start. Within one business key the
// surrogate id order matches valid_from order because history is append-only.
func (s *Store[P, T]) History(ctx context.Context, key string) iter.Seq2[*P, error] {
	return func(yield func(*P, error) bool) {
		lastID := uint64(0)
		for {
			var page []P
			err := s.db.WithContext(ctx).
				Where("business_key = ?", key).
				Where("id > ?", lastID).
				Order("id asc").
				Limit(historyPageSize).
				Find(&page).Error
			if err != nil {
				yield(nil, err)
				return
			}
			for i := range page {
				if !yield(&page[i], nil) {
					return
				}
				lastID = T(&page[i]).Meta().ID
			}
			if len(page) < historyPageSize {
				return
			}
		}
	}
}

// GetHistory collects History into a slice.
func (s *Store[P, T]) GetHistory(ctx context.Context, key string) ([]P, error) {
	var out []P
	for rec, err := range s.History(ctx, key) {
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// ListCurrent returns the current version of every business key, up to limit
// (0 means no limit).
func (s *Store[P, T]) ListCurrent(ctx context.Context, limit int) ([]P, error) {
	query := s.db.WithContext(ctx).
		Where("is_current").
		Order("business_key asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var out []P
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountCurrent returns the number of current rows for key, always 0 (unknown
// key) or 1 while the partial unique index holds.
func (s *Store[P, T]) CountCurrent(ctx context.Context, key string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(T(new(P))).
		Where("business_key = ? AND is_current", key).
		Count(&count).Error
	return count, err
}

func (s *Store[P, T]) stamp(rec T, key string, now time.Time) {
	meta := rec.Meta()
	meta.ID = 0
	meta.BusinessKey = key
	meta.IsCurrent = true
	meta.ValidFrom = now
	meta.ValidTo = nil
}

func (s *Store[P, T]) sleep(ctx context.Context, attempt int) error {
	backoff := s.retry.Backoff << (attempt - 1)
	if backoff > s.retry.MaxBackoff {
		backoff = s.retry.MaxBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), either as translated by gorm or raw from pgx.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
