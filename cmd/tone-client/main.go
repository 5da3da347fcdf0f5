// ABOUTME: Entry point for the tonetable tone client
// ABOUTME: Finds a tone server, requests notes and plays the streamed audio locally
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/client"
	"github.com/Resonate-Protocol/tonetable/internal/config"
	"github.com/Resonate-Protocol/tonetable/internal/discovery"
	"github.com/Resonate-Protocol/tonetable/internal/logging"
	"github.com/Resonate-Protocol/tonetable/internal/protocol"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/output"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

var (
	configFile = flag.String("config", "", "Config file (default: ./tonetable.yaml if present)")
	serverAddr = flag.String("server", "", "Server host:port (default: discover via mDNS)")
	name       = flag.String("name", "", "Client friendly name")
	codecs     = flag.String("codecs", "opus,pcm", "Codecs to offer, in preference order")
	notesFlag  = flag.String("notes", "A4", "Comma separated scientific pitch names, e.g. C4,E4,G4")
	method     = flag.String("method", protocol.MethodTable, "Frequency source: table or calculated")
	duration   = flag.Duration("duration", time.Second, "Length of each tone")
	backend    = flag.String("backend", "", "Audio backend: oto, beep or null")
	timeout    = flag.Duration("discover-timeout", 5*time.Second, "How long to browse for servers")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFile    = flag.String("log-file", "", "Also write JSON logs to this file")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Error().Err(err).Msg("tone client failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *backend != "" {
		cfg.Audio.Backend = *backend
	}

	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.File, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	requests, err := parseRequests(*notesFlag, *method, *duration)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr, path, err := locate(ctx)
	if err != nil {
		return err
	}

	c := client.NewClient(client.Config{
		ServerAddr: addr,
		Path:       path,
		Name:       *name,
		Codecs:     splitCodecs(*codecs),
	})
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	out, err := output.New(cfg.Audio.Backend)
	if err != nil {
		return err
	}
	defer out.Close()
	if vc, ok := out.(output.VolumeController); ok {
		vc.SetVolume(cfg.Audio.Volume)
	}

	var failed []error
	for _, req := range requests {
		if err := playRemote(ctx, c, out, req); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("interrupted")
				return nil
			}
			if !errors.Is(err, notes.ErrNotFound) {
				return err
			}
			log.Warn().Str("note", req.Note).Int("octave", req.Octave).Msg("server has no frequency for note")
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// locate returns the server address from -server or mDNS
func locate(ctx context.Context) (addr, path string, err error) {
	if *serverAddr != "" {
		return *serverAddr, discovery.DefaultPath, nil
	}

	log.Info().Dur("timeout", *timeout).Msg("browsing for tone servers")
	m := discovery.NewManager(discovery.Config{})
	defer m.Stop()

	findCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	info, err := m.Find(findCtx)
	if err != nil {
		return "", "", err
	}
	log.Info().Str("server", info.Name).Str("addr", info.Addr()).Msg("discovered tone server")
	return info.Addr(), info.Path, nil
}

// playRemote fetches one tone and blocks until it has played
func playRemote(ctx context.Context, c *client.Client, out output.Output, req protocol.ToneRequest) error {
	t, err := c.RequestTone(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("%s = %.2f Hz (%s, %d Hz)\n",
		notes.Name(t.Start.Note, t.Start.Octave), t.Start.Frequency, t.Start.Codec, t.Format.SampleRate)

	if err := out.Open(t.Format.SampleRate, t.Format.Channels); err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := out.Write(t.Samples); err != nil {
		return fmt.Errorf("write tone: %w", err)
	}
	if dr, ok := out.(output.Drainer); ok {
		if err := dr.Drain(); err != nil {
			return fmt.Errorf("drain output: %w", err)
		}
	}
	return nil
}

// parseRequests turns the -notes list into tone requests
func parseRequests(list, method string, d time.Duration) ([]protocol.ToneRequest, error) {
	if method != protocol.MethodTable && method != protocol.MethodCalculated {
		return nil, fmt.Errorf("unknown method %q", method)
	}

	var reqs []protocol.ToneRequest
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		note, octave, err := notes.Parse(s)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, protocol.ToneRequest{
			Note:       note,
			Octave:     octave,
			DurationMs: int(d.Milliseconds()),
			Method:     method,
		})
	}
	if len(reqs) == 0 {
		return nil, errors.New("no notes requested")
	}
	return reqs, nil
}

func splitCodecs(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
