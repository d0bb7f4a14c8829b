package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	kv := NewMemory()

	t.Run("MissingSlotIsNil", func(t *testing.T) {
		value, err := kv.Get("never-written")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		require.NoError(t, kv.Put("slot", []byte(`["a","b"]`)))
		value, err := kv.Get("slot")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["a","b"]`), value)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		require.NoError(t, kv.Put("slot", []byte("first")))
		require.NoError(t, kv.Put("slot", []byte("second")))
		value, err := kv.Get("slot")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), value)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		require.NoError(t, kv.Put("copy", []byte("abc")))
		value, err := kv.Get("copy")
		require.NoError(t, err)
		value[0] = 'x'
		again, err := kv.Get("copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})
}

func TestGormSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")
	kv, err := OpenSQLite(path)
	require.NoError(t, err)

	t.Run("MissingSlotIsNil", func(t *testing.T) {
		value, err := kv.Get("never-written")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		require.NoError(t, kv.Put("definitions", []byte(`[{"id":"d1"}]`)))
		value, err := kv.Get("definitions")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":"d1"}]`), value)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		require.NoError(t, kv.Put("datasets", []byte("old")))
		require.NoError(t, kv.Put("datasets", []byte("new")))
		value, err := kv.Get("datasets")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), value)
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		require.NoError(t, kv.Put("persisted", []byte("still here")))
		reopened, err := OpenSQLite(path)
		require.NoError(t, err)
		value, err := reopened.Get("persisted")
		require.NoError(t, err)
		assert.Equal(t, []byte("still here"), value)
	})
}
