package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/service"
)

func newPersistedSession(t *testing.T, id string) *service.Session {
	t.Helper()
	eng := engine.NewEngineWithDefaults()
	if err := eng.SetState(&engine.GameState{
		GameID: "g-" + id,
		Board:  engine.BoardFromRows([]int{2, 4, 8, 16}, []int{0, 0, 0, 2048}),
		Score:  1234,
	}); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}
	return &service.Session{
		ID:             id,
		Controller:     engine.NewController(eng, 0),
		CreatedAt:      time.Now().Add(-time.Hour).Truncate(time.Second),
		LastAccessedAt: time.Now().Truncate(time.Second),
	}
}

func TestFilePersistence(t *testing.T) {
	persistence, err := NewFilePersistence(filepath.Join(t.TempDir(), "sessions"))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	t.Run("Save and Load", func(t *testing.T) {
		session := newPersistedSession(t, "roundtrip")

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		data, err := persistence.Load("roundtrip")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if data.GameState.Board != session.State().Board {
			t.Errorf("Board mismatch:\n%s\nvs\n%s", data.GameState.Board, session.State().Board)
		}
		if data.GameState.Score != 1234 {
			t.Errorf("Expected score 1234, got %d", data.GameState.Score)
		}
		if !data.CreatedAt.Equal(session.CreatedAt) {
			t.Errorf("Expected created_at %v, got %v", session.CreatedAt, data.CreatedAt)
		}
	})

	t.Run("Save nil", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
	})

	t.Run("Load missing", func(t *testing.T) {
		if _, err := persistence.Load("missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("List and Delete", func(t *testing.T) {
		persistence.Save(newPersistedSession(t, "second"))

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 sessions, got %v", ids)
		}

		if err := persistence.Delete("second"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if persistence.Exists("second") {
			t.Error("Session should no longer exist")
		}
		if err := persistence.Delete("second"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := persistence.Save(newPersistedSession(t, "File_Test")); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Expected file %s: %v", expectedFile, err)
	}

	content := string(data)
	for _, field := range []string{`"id"`, `"created_at"`, `"last_accessed_at"`, `"game_state"`, `"board"`, `"best_score"`} {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain field %s", field)
		}
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not be left behind")
	}
}
