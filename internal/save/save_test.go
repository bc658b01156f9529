package save

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/novella/internal/store"
	"github.com/roach88/novella/internal/vars"
)

func sampleRecord() Record {
	return Record{
		SceneID:    "forest",
		EventIndex: 3,
		Variables: vars.Map{
			"gold": vars.Num(15),
			"name": vars.Str("Alice"),
			"flag": vars.Str("1"),
		},
	}
}

func TestSlot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot(NewMemoryKV())

	require.NoError(t, slot.Save(ctx, sampleRecord()))

	got, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleRecord(), got)
}

func TestSlot_RoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "save.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	slot := NewSlot(db)
	require.NoError(t, slot.Save(ctx, sampleRecord()))

	got, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleRecord(), got)
}

func TestSlot_SaveOverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot(NewMemoryKV())

	require.NoError(t, slot.Save(ctx, sampleRecord()))
	require.NoError(t, slot.Save(ctx, Record{SceneID: "start", Variables: vars.Map{"x": vars.Num(1)}}))

	got, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{SceneID: "start", Variables: vars.Map{"x": vars.Num(1)}}, got)
}

func TestSlot_WireFormat(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	slot := NewSlot(kv)

	require.NoError(t, slot.Save(ctx, Record{SceneID: "s", EventIndex: 2, Variables: vars.Map{"gold": vars.Num(15)}}))

	raw, ok, _ := kv.Get(ctx, DefaultKey)
	require.True(t, ok)
	assert.JSONEq(t, `{"sceneId":"s","eventIndex":2,"variables":{"gold":15}}`, raw)
}

func TestSlot_LoadAbsent(t *testing.T) {
	slot := NewSlot(NewMemoryKV())

	_, ok, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlot_LoadCorruptIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	var logs bytes.Buffer
	slot := NewSlot(kv, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	for _, raw := range []string{`{not json`, `{"eventIndex":1}`, `{"sceneId":"s","eventIndex":-1}`, `[]`} {
		require.NoError(t, kv.Set(ctx, DefaultKey, raw))

		_, ok, err := slot.Load(ctx)
		require.NoError(t, err, raw)
		assert.False(t, ok, raw)

		has, err := slot.Has(ctx)
		require.NoError(t, err)
		assert.True(t, has, "Has is a pure existence check")
	}
	assert.Contains(t, logs.String(), "save record corrupt")
}

func TestSlot_HasAndClear(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot(NewMemoryKV(), WithKey("custom"))
	assert.Equal(t, "custom", slot.Key())

	has, err := slot.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, slot.Save(ctx, sampleRecord()))
	has, _ = slot.Has(ctx)
	assert.True(t, has)

	require.NoError(t, slot.Clear(ctx))
	has, _ = slot.Has(ctx)
	assert.False(t, has)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
func (f failingKV) Remove(context.Context, string) error              { return f.err }

func TestSlot_BackendErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")
	slot := NewSlot(failingKV{err: boom})

	assert.ErrorIs(t, slot.Save(ctx, sampleRecord()), boom)
	_, _, err := slot.Load(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = slot.Has(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, slot.Clear(ctx), boom)
}

func TestDecode_MissingVariables(t *testing.T) {
	rec, err := Decode([]byte(`{"sceneId":"s","eventIndex":0}`))
	require.NoError(t, err)
	assert.Equal(t, vars.Map{}, rec.Variables)
}
