package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/twenty48/game/engine"
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
)

// Defaults applied when a field is missing from the settings file
const (
	DefaultScoreStore       = "file"
	DefaultDataDir          = "./data"
	DefaultSessionRetention = 24 * time.Hour
	DefaultCleanupInterval  = time.Hour
	DefaultSyncInterval     = 30 * time.Second
	DefaultSpawnDelay       = engine.DefaultAnimationDelay
	DefaultMaxBulkMoves     = engine.MaxBulkMoves
)

var validScoreStores = []string{"memory", "file", "sqlite"}

// Duration is a time.Duration that reads and writes JSON as "1h30m" strings.
// Plain numbers are taken as seconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds: %s", data)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// Std returns d as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings holds the runtime settings of the server and the terminal game
type Settings struct {
	// ScoreStore selects the best-score backend: memory, file or sqlite
	ScoreStore string `json:"score_store"`
	// DataDir holds the score store and persisted sessions
	DataDir string `json:"data_dir"`

	SessionRetention Duration `json:"session_retention"`
	CleanupInterval  Duration `json:"cleanup_interval"`
	SyncInterval     Duration `json:"sync_interval"`

	// SpawnDelay is the pause between a move and its spawn in the terminal UI
	SpawnDelay   Duration `json:"spawn_delay"`
	MaxBulkMoves int      `json:"max_bulk_moves"`
}

// Default returns the built-in settings
func Default() *Settings {
	return &Settings{
		ScoreStore:       DefaultScoreStore,
		DataDir:          DefaultDataDir,
		SessionRetention: Duration(DefaultSessionRetention),
		CleanupInterval:  Duration(DefaultCleanupInterval),
		SyncInterval:     Duration(DefaultSyncInterval),
		SpawnDelay:       Duration(DefaultSpawnDelay),
		MaxBulkMoves:     DefaultMaxBulkMoves,
	}
}

// Load reads settings from path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings as indented JSON, creating the directory
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Validate checks every field, reporting all problems at once
func (s *Settings) Validate() error {
	var problems []string

	s.ScoreStore = strings.ToLower(strings.TrimSpace(s.ScoreStore))
	if !contains(validScoreStores, s.ScoreStore) {
		problems = append(problems, fmt.Sprintf("score_store must be one of %s, got %q",
			strings.Join(validScoreStores, ", "), s.ScoreStore))
	}
	if s.ScoreStore != "memory" && strings.TrimSpace(s.DataDir) == "" {
		problems = append(problems, "data_dir is required for persistent score stores")
	}
	if s.SessionRetention < 0 {
		problems = append(problems, "session_retention cannot be negative")
	}
	if s.CleanupInterval <= 0 {
		problems = append(problems, "cleanup_interval must be positive")
	}
	if s.SyncInterval <= 0 {
		problems = append(problems, "sync_interval must be positive")
	}
	if s.SpawnDelay < 0 || s.SpawnDelay.Std() > 5*time.Second {
		problems = append(problems, "spawn_delay must be between 0s and 5s")
	}
	if s.MaxBulkMoves < 1 || s.MaxBulkMoves > engine.MaxBulkMoves {
		problems = append(problems, fmt.Sprintf("max_bulk_moves must be between 1 and %d", engine.MaxBulkMoves))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// SessionsDir is where running sessions are persisted
func (s *Settings) SessionsDir() string {
	return filepath.Join(s.DataDir, "sessions")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
