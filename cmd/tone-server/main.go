// ABOUTME: Entry point for the tonetable tone server
// ABOUTME: Parses CLI flags, loads config and serves tones over HTTP and WebSocket
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/config"
	"github.com/Resonate-Protocol/tonetable/internal/logging"
	"github.com/Resonate-Protocol/tonetable/internal/server"
)

var (
	configFile = flag.String("config", "", "Config file (default: ./tonetable.yaml if present)")
	port       = flag.Int("port", 0, "HTTP/WebSocket port (default from config, 8927)")
	name       = flag.String("name", "", "Server friendly name (default: hostname-tonetable)")
	logFile    = flag.String("log-file", "", "Log file path")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noTUI      = flag.Bool("no-tui", false, "Disable the status TUI")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	useTUI := !*noTUI
	var console io.Writer = os.Stderr
	if useTUI {
		// The TUI owns the terminal
		console = nil
		if cfg.Log.File == "" {
			cfg.Log.File = "tone-server.log"
		}
	}
	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.File, console)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer closeLog()

	serverName := *name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-%s", hostname, cfg.Server.Name)
	}

	log.Info().
		Str("name", serverName).
		Int("port", cfg.Server.Port).
		Str("log_file", cfg.Log.File).
		Msg("starting tone server")

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		Name:           serverName,
		EnableMDNS:     cfg.Server.MDNS && !*noMDNS,
		UseTUI:         useTUI,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SampleRate:     cfg.Audio.SampleRate,
		Amplitude:      cfg.Audio.Amplitude,
		ToneDuration:   cfg.Audio.NoteDuration,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		closeLog()
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
