package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestSQLiteStore(t *testing.T, ttl time.Duration) (*SQLiteStore, *clock) {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	c := &clock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	st.now = c.now
	return st, c
}

func TestSQLite_SetAndGet(t *testing.T) {
	st, c := newTestSQLiteStore(t, 24*time.Hour)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "https://ref.it", []byte(`{"services_offered":["cctv"]}`)))

	e, err := st.Get(ctx, "https://ref.it")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"services_offered":["cctv"]}`, string(e.Value))
	assert.True(t, e.CreatedAt.Equal(c.t))
}

func TestSQLite_Missing(t *testing.T) {
	st, _ := newTestSQLiteStore(t, time.Hour)

	e, err := st.Get(context.Background(), "https://none.it")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestSQLite_TTLRoundTrip(t *testing.T) {
	ttl := 183 * 24 * time.Hour
	st, c := newTestSQLiteStore(t, ttl)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "https://ref.it", []byte(`{}`)))

	c.t = c.t.Add(ttl - time.Minute)
	e, err := st.Get(ctx, "https://ref.it")
	require.NoError(t, err)
	assert.NotNil(t, e)

	c.t = c.t.Add(2 * time.Minute)
	e, err = st.Get(ctx, "https://ref.it")
	require.NoError(t, err)
	assert.Nil(t, e)

	// The stale row was removed on read.
	n, err := st.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSQLite_SetOverwrites(t *testing.T) {
	st, c := newTestSQLiteStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "k", []byte(`{"v":1}`)))
	c.t = c.t.Add(30 * time.Minute)
	require.NoError(t, st.Set(ctx, "k", []byte(`{"v":2}`)))

	c.t = c.t.Add(45 * time.Minute)
	e, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"v":2}`, string(e.Value))
}

func TestSQLite_PurgeExpiredAndFlush(t *testing.T) {
	st, c := newTestSQLiteStore(t, 10*24*time.Hour)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "old-1", []byte(`{}`)))
	require.NoError(t, st.Set(ctx, "old-2", []byte(`{}`)))
	c.t = c.t.Add(8 * 24 * time.Hour)
	require.NoError(t, st.Set(ctx, "new", []byte(`{}`)))
	c.t = c.t.Add(3 * 24 * time.Hour)

	n, err := st.PurgeExpired(ctx, 10*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e, err := st.Get(ctx, "new")
	require.NoError(t, err)
	assert.NotNil(t, e)

	n, err = st.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_Delete(t *testing.T) {
	st, _ := newTestSQLiteStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "k", []byte(`{}`)))
	require.NoError(t, st.Delete(ctx, "k"))
	require.NoError(t, st.Delete(ctx, "absent"))

	e, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, e)
}
