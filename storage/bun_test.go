package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestBun(t *testing.T) (*Bun, *time.Time) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	store := NewBun(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.CreateTable(context.Background()))
	require.NoError(t, store.CreateTable(context.Background()))
	return store, &now
}

func TestBunSetGet(t *testing.T) {
	store, _ := newTestBun(t)

	require.NoError(t, store.Set("abc", []byte("first"), 0))
	require.NoError(t, store.Set("abc", []byte("second"), time.Hour))

	val, err := store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), val)

	val, err = store.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, store.Set("", []byte("x"), 0))
	val, err = store.Get("")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestBunExpiration(t *testing.T) {
	store, now := newTestBun(t)

	require.NoError(t, store.Set("short", []byte("a"), time.Minute))
	require.NoError(t, store.Set("long", []byte("b"), time.Hour))
	require.NoError(t, store.Set("forever", []byte("c"), 0))

	*now = now.Add(10 * time.Minute)

	val, err := store.Get("short")
	require.NoError(t, err)
	assert.Nil(t, val)

	val, err = store.Get("long")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)

	removed, err := store.GC(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	*now = now.Add(24 * time.Hour)
	removed, err = store.GC(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	val, err = store.Get("forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), val)
}

func TestBunDeleteAndReset(t *testing.T) {
	store, _ := newTestBun(t)

	require.NoError(t, store.Set("a", []byte("1"), 0))
	require.NoError(t, store.Set("b", []byte("2"), 0))

	require.NoError(t, store.Delete("a"))
	val, err := store.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, store.Reset())
	val, err = store.Get("b")
	require.NoError(t, err)
	assert.Nil(t, val)

	assert.NoError(t, store.Close())
}
