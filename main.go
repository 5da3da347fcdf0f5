// ABOUTME: Entry point for the tonetable CLI
// ABOUTME: Prints, verifies, exports and plays note frequencies from the reference table
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/config"
	"github.com/Resonate-Protocol/tonetable/internal/logging"
	"github.com/Resonate-Protocol/tonetable/internal/player"
	"github.com/Resonate-Protocol/tonetable/internal/ui"
	"github.com/Resonate-Protocol/tonetable/internal/version"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/export"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/output"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/tone"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

var (
	configFile = flag.String("config", "", "Config file (default: ./tonetable.yaml if present)")
	noteFlag   = flag.String("note", "", "Note spelling to play, e.g. C# or Bb")
	octaveFlag = flag.Int("octave", 4, "Octave for -note and -scale (0-8)")
	nameFlag   = flag.String("name", "", "Scientific pitch name to play, e.g. C#4")
	scaleFlag  = flag.String("scale", "", "Comma separated notes to play at -octave, or \"major\" for C major")
	allFlag    = flag.Bool("all", false, "Play every spelling in octaves 0-7")
	beepFlag   = flag.Bool("beep", false, "Play a 440Hz test beep")
	sweepFlag  = flag.Bool("sweep", false, "Play a frequency sweep around 440Hz")
	verifyFlag = flag.Bool("verify", false, "Cross-check the table against equal temperament")
	tableFlag  = flag.Bool("table", false, "Print the frequency table")
	exportFlag = flag.String("export", "", "Write the selected tone to a FLAC file instead of playing it")
	backend    = flag.String("backend", "", "Audio backend: oto, beep or null")
	tuiFlag    = flag.Bool("tui", false, "Browse and play notes interactively")
	duration   = flag.Duration("duration", 0, "Tone length (default from config, 1s)")
	volume     = flag.Int("volume", -1, "Output volume 0-100")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFile    = flag.String("log-file", "", "Also write JSON logs to this file")
	versionF   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Println(version.String())
		return
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("tonetable failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	var console io.Writer = os.Stderr
	if *tuiFlag {
		console = nil
	}
	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.File, console)
	if err != nil {
		return err
	}
	defer closeLog()

	switch {
	case *tableFlag:
		printTable(os.Stdout)
		return nil
	case *verifyFlag:
		return verify(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *exportFlag != "" {
		return exportTone(cfg, *exportFlag)
	}

	out, err := output.New(cfg.Audio.Backend)
	if err != nil {
		return err
	}
	if vc, ok := out.(output.VolumeController); ok {
		vc.SetVolume(cfg.Audio.Volume)
	}

	p := player.New(out, player.Config{
		SampleRate:   cfg.Audio.SampleRate,
		Amplitude:    cfg.Audio.Amplitude,
		NoteDuration: cfg.Audio.NoteDuration,
	})
	defer p.Close()

	if *tuiFlag {
		return runTUI(ctx, p, out)
	}

	err = play(ctx, p, cfg.Audio.NoteDuration)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("interrupted")
		return nil
	}
	return err
}

// applyFlags lets explicitly set flags override config values
func applyFlags(cfg *config.Config) {
	if *backend != "" {
		cfg.Audio.Backend = *backend
	}
	if *duration > 0 {
		cfg.Audio.NoteDuration = *duration
	}
	if *volume >= 0 {
		cfg.Audio.Volume = *volume
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
}

// play runs the playback mode selected by flags
func play(ctx context.Context, p *player.Player, d time.Duration) error {
	switch {
	case *beepFlag:
		return p.PlayBeep(ctx, player.BeepFrequency, durationOr(player.BeepDuration))
	case *sweepFlag:
		return p.PlaySweep(ctx, player.BeepFrequency, durationOr(player.BeepDuration))
	case *allFlag:
		return p.PlayAll(ctx, tone.OctaveRange(0, 7))
	case *scaleFlag != "":
		return p.PlayScale(ctx, scaleNotes(*scaleFlag), *octaveFlag)
	}

	note, octave, err := target()
	if err != nil {
		return err
	}
	if hz, ok := notes.Lookup(note, octave); ok {
		fmt.Printf("%s = %.2f Hz\n", notes.Name(note, octave), hz)
	}
	return p.PlayNote(ctx, note, octave, d)
}

// target resolves -name or -note/-octave
func target() (string, int, error) {
	if *nameFlag != "" {
		return notes.Parse(*nameFlag)
	}
	if *noteFlag != "" {
		return *noteFlag, *octaveFlag, nil
	}
	flag.Usage()
	return "", 0, errors.New("nothing to do: pass -note, -name, -scale, -all, -beep, -sweep, -table, -verify or -tui")
}

// durationOr returns -duration when set, otherwise def
func durationOr(def time.Duration) time.Duration {
	if *duration > 0 {
		return *duration
	}
	return def
}

// scaleNotes parses the -scale list
func scaleNotes(s string) []string {
	if strings.EqualFold(s, "major") {
		return tone.CMajor
	}
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// exportTone renders the selected tone to a FLAC file
func exportTone(cfg *config.Config, path string) error {
	var g tone.Generator
	d := cfg.Audio.NoteDuration
	switch {
	case *beepFlag:
		g = tone.NewFrequencyWave(player.BeepFrequency, cfg.Audio.Amplitude)
		d = durationOr(player.BeepDuration)
	case *sweepFlag:
		g = tone.Sweep{Base: player.BeepFrequency, Amplitude: cfg.Audio.Amplitude}
		d = durationOr(player.BeepDuration)
	default:
		note, octave, err := target()
		if err != nil {
			return err
		}
		w, err := tone.NewWave(note, octave, cfg.Audio.Amplitude)
		if err != nil {
			return err
		}
		g = w
	}

	p := player.New(output.NewRecorder(), player.Config{SampleRate: cfg.Audio.SampleRate, Amplitude: cfg.Audio.Amplitude})
	samples, err := p.Render(g, d)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.WriteFLAC(f, samples, p.Format()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	log.Info().Str("file", path).Dur("duration", d).Int("samples", len(samples)).Msg("exported tone")
	return nil
}

// runTUI opens the note browser; playback runs on the TUI's command goroutines
func runTUI(ctx context.Context, p *player.Player, out output.Output) error {
	controls := ui.Controls{
		Play: func(note string, octave int) error {
			return p.PlayNote(ctx, note, octave, 0)
		},
	}
	if vc, ok := out.(output.VolumeController); ok {
		controls.Volume = func(v int, muted bool) {
			vc.SetVolume(v)
			vc.SetMuted(muted)
		}
	}
	return ui.Run(controls)
}

// printTable renders the reference table with one row per spelling
func printTable(w io.Writer) {
	headers := []string{"Note"}
	for o := notes.MinOctave; o <= notes.MaxOctave; o++ {
		headers = append(headers, fmt.Sprint(o))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, note := range notes.Spellings() {
		row := []string{note}
		for o := notes.MinOctave; o <= notes.MaxOctave; o++ {
			hz, _ := notes.Lookup(note, o)
			row = append(row, fmt.Sprintf("%.2f", hz))
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.Render())
}

// verify prints every disagreement between table and calculator
func verify(w io.Writer) error {
	mismatches := notes.Verify()
	entries := len(notes.Entries())
	if len(mismatches) == 0 {
		fmt.Fprintf(w, "all %d entries match equal temperament within %.3f Hz\n", entries, notes.Tolerance)
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintf(w, "%-4s table %8.2f  calculated %8.2f  delta %+.2f\n",
			notes.Name(m.Note, m.Octave), m.Frequency, m.Calculated, m.Delta)
	}
	return fmt.Errorf("%d of %d entries disagree", len(mismatches), entries)
}
