package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/appengine-ltd/warpctx/internal/clock"
	"github.com/appengine-ltd/warpctx/internal/constants"
	"github.com/appengine-ltd/warpctx/internal/detect"
	"github.com/appengine-ltd/warpctx/internal/metrics"
	"github.com/appengine-ltd/warpctx/internal/overlay"
	"github.com/appengine-ltd/warpctx/internal/recording"
	"github.com/appengine-ltd/warpctx/internal/settings"
)

// version, commit, date are injected at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	constantsPath string
	settingsPath  string
	replayPath    string
	speed         float64
	overlay       bool
	metricsAddr   string
	logLevel      string
	validate      bool
	printDefaults bool
	showVersion   bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options
	fs := pflag.NewFlagSet("warpctx", pflag.ContinueOnError)
	fs.StringVar(&opts.constantsPath, "constants", "", "menu and message constants file (.yaml or .jsonc); embedded defaults when empty")
	fs.StringVar(&opts.settingsPath, "settings", "", "settings file (default: user config dir)")
	fs.StringVar(&opts.replayPath, "replay", "", "recorded session to replay through the engine")
	fs.Float64Var(&opts.speed, "speed", 1, "replay speed multiplier when the overlay is shown")
	fs.BoolVar(&opts.overlay, "overlay", false, "show the status overlay even if the settings disable it")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9464")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error; overrides settings")
	fs.BoolVar(&opts.validate, "validate", false, "load the constants and settings, report problems and exit")
	fs.BoolVar(&opts.printDefaults, "print-default-constants", false, "print the embedded constants document and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	err := fs.Parse(args)
	return opts, fs, err
}

func run(args []string) error {
	opts, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if extra := fs.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	if opts.showVersion {
		fmt.Printf("warpctx %s (%s) %s\n", version, commit, date)
		return nil
	}
	if opts.printDefaults {
		_, err := os.Stdout.Write(constants.DefaultDocument())
		return err
	}

	settingsPath := opts.settingsPath
	if settingsPath == "" {
		settingsPath, err = settings.Path()
		if err != nil {
			return err
		}
	}
	cfg, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}

	level := cfg.Level()
	if opts.logLevel != "" {
		if err := level.UnmarshalText([]byte(strings.TrimSpace(opts.logLevel))); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	consts, err := loadConstants(opts.constantsPath)
	if err != nil {
		return err
	}
	if opts.validate {
		fmt.Printf("constants ok: %d menu rules, %d command variants\n", consts.Rules.Len(), len(consts.Commands.Variants()))
		fmt.Printf("settings ok: %s\n", settingsPath)
		return nil
	}
	if opts.replayPath == "" {
		return errors.New("nothing to do: pass --replay, --validate or --version")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, reg, logger)
		defer shutdown()
	}

	f, err := os.Open(opts.replayPath)
	if err != nil {
		return fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	reader, err := recording.NewReader(f)
	if err != nil {
		return err
	}
	header := reader.Header()
	logger.Info("Replaying recording", "path", opts.replayPath, "recorded_session", header.Session, "note", header.Note)

	clk := clock.NewManual(reader.Start())
	engine := detect.New(detect.Options{
		Constants: consts,
		Settings:  cfg,
		Clock:     clk,
		Logger:    logger,
		Metrics:   m,
	})

	showOverlay := opts.overlay || cfg.ShouldShowDebugOverlay()
	if showOverlay && !overlay.Available() {
		logger.Warn("Status overlay unavailable in this build, replaying headless")
		showOverlay = false
	}

	if showOverlay {
		if err := runOverlay(ctx, opts, reader, engine, clk, logger); err != nil {
			return err
		}
	} else {
		n, err := recording.Replay(reader, engine, clk, func(s recording.Step) {
			printStep(os.Stdout, s.Event, s.Actions)
		})
		if err != nil {
			return fmt.Errorf("replaying after %d events: %w", n, err)
		}
		logger.Info("Replay finished", "events", n)
		for _, line := range engine.Status().Lines() {
			fmt.Println(line)
		}
	}

	if opts.metricsAddr != "" && ctx.Err() == nil {
		logger.Info("Serving metrics until interrupted", "addr", opts.metricsAddr)
		<-ctx.Done()
	}
	return nil
}

func loadConstants(path string) (*constants.Constants, error) {
	if path == "" {
		return constants.Default(), nil
	}
	return constants.Load(path)
}

// runOverlay paces the recording in wall time on the window's goroutine.
// Constants edits are picked up through the engine queue while it runs.
func runOverlay(ctx context.Context, opts options, reader *recording.Reader, engine *detect.Engine, clk *clock.Manual, logger *slog.Logger) error {
	events, err := reader.ReadAll()
	if err != nil {
		return err
	}

	if opts.constantsPath != "" {
		w, err := constants.NewWatcher(opts.constantsPath, logger, func(c *constants.Constants) {
			engine.Queue().Enqueue(detect.ConstantsReloaded(c))
		})
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("Constants watcher stopped", "error", err)
			}
		}()
	}

	p := newPlayer(events, engine, clk, opts.speed, os.Stdout)
	started := time.Now()
	finished := false
	tick := func() {
		p.advance(time.Since(started))
		for _, a := range engine.Drain() {
			logger.Info("Action", "action", a.String())
		}
		if p.done() && !finished {
			finished = true
			logger.Info("Replay finished, close the window to exit", "events", len(events))
		}
	}
	lines := func() []string { return engine.Status().Lines() }

	return overlay.Run(ctx, overlay.Config{Title: "warpctx " + version}, tick, lines)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
