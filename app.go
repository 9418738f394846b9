package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/twenty48/api"
	"github.com/wricardo/twenty48/game/config"
	"github.com/wricardo/twenty48/game/service"
	"github.com/wricardo/twenty48/game/session"
	"github.com/wricardo/twenty48/game/store"
	"github.com/wricardo/twenty48/transport/mcp"
	"github.com/wricardo/twenty48/transport/websocket"
)

// setupLogging points the global zerolog logger at w
func setupLogging(w io.Writer, level string, debug bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr}
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// openLogFile opens path for appending, creating its directory
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// loadSettings reads the settings file and applies flag overrides
func loadSettings(opts options) (*config.Settings, error) {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.dataDir != "" {
		settings.DataDir = opts.dataDir
	}
	if opts.store != "" {
		settings.ScoreStore = opts.store
	}
	if opts.spawnSet {
		settings.SpawnDelay = config.Duration(opts.spawnDelay)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// app holds the services shared by the server and stdio modes
type app struct {
	settings *config.Settings
	scores   store.Store
	manager  *session.Manager
	service  service.GameService
	hub      *websocket.Hub
}

// newApp wires the score store, session manager, game service and hub.
// Persisted sessions are loaded before it returns.
func newApp(settings *config.Settings, seed int64) (*app, error) {
	scores, err := store.Open(settings.ScoreStore, settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open score store: %w", err)
	}

	persistence, err := session.NewFilePersistence(settings.SessionsDir())
	if err != nil {
		scores.Close()
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	manager := session.NewManagerWithPersistence(scores, persistence)
	if seed != 0 {
		manager.SetSeed(seed)
	}

	if err := manager.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	hub := websocket.NewHub()
	manager.OnStateChange(hub.BroadcastState)

	a := &app{
		settings: settings,
		scores:   scores,
		manager:  manager,
		service:  service.NewGameService(manager, scores, service.WithMaxBulkMoves(settings.MaxBulkMoves)),
		hub:      hub,
	}

	log.Info().
		Str("store", settings.ScoreStore).
		Str("data_dir", settings.DataDir).
		Int("sessions", manager.Count()).
		Msg("services initialized")

	return a, nil
}

// start runs the hub and the background maintenance routines until ctx ends
func (a *app) start(ctx context.Context) {
	go a.hub.Run()
	go sessionCleanupRoutine(ctx, a.manager, a.settings.CleanupInterval.Std(), a.settings.SessionRetention.Std())
	go filesystemSyncRoutine(ctx, a.manager, a.settings.SyncInterval.Std())
}

// Close flushes sessions and releases the score store
func (a *app) Close() error {
	a.hub.Stop()
	if err := a.manager.SaveAllSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to save sessions on shutdown")
	}
	return a.scores.Close()
}

// handler combines the REST API with an /mcp endpoint that proxies to baseURL
func (a *app) handler(baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL, Version)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(a.service, a.hub))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler serves JSON-RPC MCP messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(retention); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine periodically drops sessions whose files were deleted
// behind the server's back.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.PruneOrphaned(); pruned > 0 {
				log.Info().Int("pruned", pruned).Msg("filesystem sync pruned orphaned sessions")
			}
		}
	}
}
