package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/twenty48/game/engine"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	stores := make(map[string]Store)
	for _, backend := range []string{BackendMemory, BackendFile, BackendSQLite} {
		s, err := Open(backend, filepath.Join(dir, backend))
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestStore_GetSet(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(engine.BestScoreKey)
			require.NoError(t, err)
			assert.False(t, ok, "absent key must report not present")
			assert.Zero(t, v)

			require.NoError(t, s.Set(engine.BestScoreKey, 2048))
			v, ok, err = s.Get(engine.BestScoreKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 2048, v)

			require.NoError(t, s.Set(engine.BestScoreKey, 4096))
			v, _, err = s.Get(engine.BestScoreKey)
			require.NoError(t, err)
			assert.Equal(t, 4096, v)
		})
	}
}

func TestStore_ClosedReturnsErrClosed(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())

			_, _, err := s.Get("k")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.Set("k", 1), ErrClosed)
		})
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()

			s, err := Open(backend, dir)
			require.NoError(t, err)
			require.NoError(t, s.Set(engine.BestScoreKey, 512))
			require.NoError(t, s.Close())

			reopened, err := Open(backend, dir)
			require.NoError(t, err)
			defer reopened.Close()

			v, ok, err := reopened.Get(engine.BestScoreKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 512, v)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.Error(t, err)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStore_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scores.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(engine.BestScoreKey, 36))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bestScore": 36}`, string(data))
}

func TestStore_BacksEngineBestScore(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(engine.BestScoreKey, 300))

			eng := engine.NewEngine(nil, s)
			assert.Equal(t, 300, eng.BestScore())

			eng.UpdateScore(400)
			v, _, err := s.Get(engine.BestScoreKey)
			require.NoError(t, err)
			assert.Equal(t, 400, v)
		})
	}
}
