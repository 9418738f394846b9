// Command twenty48 runs the 2048 board engine.
//
// It supports three modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a game in the terminal
//
// Flags control host/port, the settings file, data directory, score store
// backend, logging, and optional ngrok tunneling for external access during
// development. Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Server"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "twenty48",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "JSON settings file (optional)",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory for sessions and scores (overrides the settings file)",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Best score backend: memory, file or sqlite (overrides the settings file)",
				Sources: cli.EnvVars("SCORE_STORE"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Write logs to this file instead of stderr (play mode discards logs without it)",
				Sources: cli.EnvVars("LOG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "Seed for tile spawns (0 picks a random seed)",
				Sources: cli.EnvVars("SEED"),
			},
			&cli.DurationFlag{
				Name:    "spawn-delay",
				Usage:   "Delay between a move and its spawn in play mode (overrides the settings file)",
				Sources: cli.EnvVars("SPAWN_DELAY"),
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			{
				Name:   "play",
				Usage:  "Play in the terminal",
				Action: runPlay,
			},
		},
	}
}

// main loads .env, parses flags and runs the selected mode until it exits or
// a shutdown signal arrives.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("error loading .env file")
	}

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// options is the flag set resolved for one run
type options struct {
	host        string
	port        int
	configPath  string
	dataDir     string
	store       string
	debug       bool
	logLevel    string
	logFile     string
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
	seed        int64
	spawnDelay  time.Duration
	spawnSet    bool
}

func optionsFromCommand(cmd *cli.Command) options {
	return options{
		host:        cmd.String("host"),
		port:        cmd.Int("port"),
		configPath:  cmd.String("config"),
		dataDir:     cmd.String("data-dir"),
		store:       cmd.String("store"),
		debug:       cmd.Bool("debug"),
		logLevel:    cmd.String("log-level"),
		logFile:     cmd.String("log-file"),
		ngrok:       cmd.Bool("ngrok"),
		ngrokAuth:   cmd.String("ngrok-auth"),
		ngrokDomain: cmd.String("ngrok-domain"),
		seed:        cmd.Int64("seed"),
		spawnDelay:  cmd.Duration("spawn-delay"),
		spawnSet:    cmd.IsSet("spawn-delay"),
	}
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}
