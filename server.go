package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/twenty48/transport/mcp"
)

const shutdownTimeout = 10 * time.Second

// startup prepares logging, settings and services shared by the server modes.
// The returned cleanup closes the log file, if any.
func startup(opts options, logOut io.Writer) (*app, func(), error) {
	cleanup := func() {}
	if opts.logFile != "" {
		f, err := openLogFile(opts.logFile)
		if err != nil {
			return nil, cleanup, err
		}
		logOut = f
		cleanup = func() { f.Close() }
	}
	setupLogging(logOut, opts.logLevel, opts.debug)

	settings, err := loadSettings(opts)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	a, err := newApp(settings, opts.seed)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return a, cleanup, nil
}

// runServer starts the HTTP server with the REST API, WebSocket hub and the
// /mcp endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	a, cleanup, err := startup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.start(ctx)

	addr := opts.addr()
	handler := a.handler("http://" + addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("version", Version).Str("addr", addr).Msgf("starting %s", AppName)
	log.Info().Msgf("REST API: http://%s/api", addr)
	log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
	log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if opts.ngrok {
		go runNgrok(ctx, opts, handler)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx ends
func runNgrok(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Info().Str("domain", opts.ngrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info().Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().Str("url", url).Msg("ngrok tunnel established")
	log.Info().Msgf("REST API (ngrok): %s/api", url)
	log.Info().Msgf("WebSocket (ngrok): %s/ws?session=<session_id>", url)
	log.Info().Msgf("MCP endpoint (ngrok): %s/mcp", url)

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
}

// externalAPIAvailable reports whether a server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// the configured address; otherwise it starts an internal HTTP API on a random
// loopback port and targets that. Logs go to stderr since stdout carries the
// protocol.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	externalURL := "http://" + opts.addr()
	baseURL := externalURL

	if externalAPIAvailable(externalURL) {
		setupLogging(os.Stderr, opts.logLevel, opts.debug)
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		a, cleanup, err := startup(opts, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()
		defer a.Close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		a.start(ctx)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: a.handler(baseURL)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info().Str("url", baseURL).Msg("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}
