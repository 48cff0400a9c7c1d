package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{
			Path:         filepath.Join(t.TempDir(), "qto.db"),
			MaxOpenConns: 1,
			JournalMode:  "WAL",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "qto.db"), MaxOpenConns: 1},
	}
	first, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestModelRepository(t *testing.T) {
	ctx := context.Background()
	store := openSQLite(t)

	m := &Model{
		Name:         "house.ifc",
		SourcePath:   "/data/house.json",
		Fingerprint:  "abc123",
		Schema:       "IFC2X3",
		ElementCount: 12,
		Document:     []byte(`{"elements":[]}`),
	}
	require.NoError(t, store.Models.Create(ctx, m))
	require.NotEqual(t, uuid.Nil, m.ID)
	require.False(t, m.CreatedAt.IsZero())

	got, err := store.Models.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Schema, got.Schema)
	assert.Equal(t, 12, got.ElementCount)
	assert.Equal(t, `{"elements":[]}`, string(got.Document))
	assert.WithinDuration(t, m.CreatedAt, got.CreatedAt, time.Second)

	byFP, err := store.Models.GetByFingerprint(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, m.ID, byFP.ID)

	_, err = store.Models.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Models.GetByFingerprint(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &Model{Name: "copy", Fingerprint: "abc123", Document: []byte("{}")}
	assert.Error(t, store.Models.Create(ctx, dup))

	list, err := store.Models.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Document)
}

func TestQueryLogRepository(t *testing.T) {
	ctx := context.Background()
	store := openSQLite(t)

	m := &Model{Name: "house", Fingerprint: "fp", Document: []byte("{}")}
	require.NoError(t, store.Models.Create(ctx, m))

	value := 216.0
	require.NoError(t, store.Queries.Create(ctx, &QueryLogEntry{
		ModelID: m.ID, SessionID: "s1", Question: "plaster area?", Intent: "PLASTER_AREA",
		Value: &value, Unit: "m²", Confidence: "AUTHORITATIVE",
	}))
	require.NoError(t, store.Queries.Create(ctx, &QueryLogEntry{
		ModelID: m.ID, SessionID: "s1", Question: "hello", Intent: "UNKNOWN", Confidence: "UNKNOWN",
	}))

	entries, err := store.Queries.ListByModel(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "hello", entries[0].Question)
	assert.Nil(t, entries[0].Value)
	assert.Equal(t, "plaster area?", entries[1].Question)
	require.NotNil(t, entries[1].Value)
	assert.Equal(t, 216.0, *entries[1].Value)
	assert.Equal(t, "m²", entries[1].Unit)
	assert.Equal(t, m.ID, entries[1].ModelID)

	limited, err := store.Queries.ListByModel(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, store.Models.Delete(ctx, m.ID))
	entries, err = store.Queries.ListByModel(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.ErrorIs(t, store.Models.Delete(ctx, m.ID), ErrNotFound)
}
