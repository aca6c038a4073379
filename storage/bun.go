package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
)

// SessionRecord is a row of admin_sessions
type SessionRecord struct {
	bun.BaseModel `bun:"table:admin_sessions,alias:sess"`
	Key           string     `bun:"key,pk"`
	Value         []byte     `bun:"value,notnull"`
	ExpiresAt     *time.Time `bun:"expires_at"`
}

// Bun stores sessions in the admin_sessions table
type Bun struct {
	db      *bun.DB
	timeout time.Duration
	now     func() time.Time
}

var _ fiber.Storage = (*Bun)(nil)

func NewBun(db *bun.DB) *Bun {
	return &Bun{db: db, timeout: 5 * time.Second, now: time.Now}
}

func (s *Bun) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// CreateTable creates admin_sessions if it does not exist
func (s *Bun) CreateTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*SessionRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Get returns nil, nil for missing or expired keys
func (s *Bun) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	rec := &SessionRecord{Key: key}
	if err := s.db.NewSelect().Model(rec).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if rec.ExpiresAt != nil && !rec.ExpiresAt.After(s.now()) {
		return nil, nil
	}
	return rec.Value, nil
}

// Set upserts val, exp of zero keeps the row until deleted
func (s *Bun) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	rec := &SessionRecord{Key: key, Value: val}
	if exp > 0 {
		at := s.now().Add(exp).UTC()
		rec.ExpiresAt = &at
	}

	_, err := s.db.NewInsert().
		Model(rec).
		On(`CONFLICT ("key") DO UPDATE`).
		Set("value = EXCLUDED.value").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	return err
}

func (s *Bun) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.NewDelete().Model(&SessionRecord{Key: key}).WherePK().Exec(ctx)
	return err
}

func (s *Bun) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.NewDelete().Model((*SessionRecord)(nil)).Where("1 = 1").Exec(ctx)
	return err
}

// GC removes expired rows and returns how many were deleted
func (s *Bun) GC(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", s.now().UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close is a no-op, the db handle belongs to the caller
func (s *Bun) Close() error {
	return nil
}
