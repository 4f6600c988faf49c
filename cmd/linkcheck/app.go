package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/wellsgz/linkcheck/internal/config"
	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/logging"
	"github.com/wellsgz/linkcheck/internal/probe"
	"github.com/wellsgz/linkcheck/internal/provider"
	"github.com/wellsgz/linkcheck/internal/runner"
)

// app is the wired set of components every command shares
type app struct {
	cfg        *config.Config
	feed       *hint.Feed
	icmp       *hint.ICMPSource
	visibility *probe.Visibility
	runner     *runner.Runner
	logFile    *os.File
}

// newApp configures logging and builds the runner and its collaborators
func newApp(cfg *config.Config, logPath string, quiet bool) (*app, error) {
	a := &app{cfg: cfg}

	logging.SetFormat(logging.Format(cfg.Logging.Format))
	logging.SetDebug(cfg.Logging.Debug)

	switch {
	case logPath != "":
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logging.SetWriter(f)
	case quiet:
		// The TUI owns the terminal
		logging.SetWriter(io.Discard)
	}

	seed := hint.Info{
		EffectiveType: cfg.Hint.EffectiveType,
		Downlink:      cfg.Hint.Downlink,
		RTT:           cfg.Hint.RTT,
	}
	if seed.EffectiveType == "" && seed.RTT > 0 {
		seed.EffectiveType = hint.EffectiveType(seed.RTT)
	}
	a.feed = hint.NewFeed(seed)

	if cfg.Hint.ICMPHost != "" {
		a.icmp = hint.NewICMPSource(a.feed, cfg.Hint.ICMPHost, cfg.Hint.ICMPInterval)
	}

	opts, err := runner.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	a.visibility = probe.NewVisibility()
	deps := runner.Deps{
		// Streams end on their own deadline, so no client timeout here
		Client:        &http.Client{},
		LatencyClient: &http.Client{Timeout: cfg.Latency.Timeout},
		Hints:         a.feed,
		Visibility:    a.visibility,
		OnComplete: func(res runner.Result) {
			logging.Info("Runner", "result", res)
		},
	}
	if cfg.Provider.Enabled {
		deps.Provider = provider.New(provider.Options{
			PrimaryURL:  cfg.Provider.PrimaryURL,
			FallbackURL: cfg.Provider.FallbackURL,
			Timeout:     cfg.Provider.Timeout,
		})
	}
	a.runner = runner.New(opts, deps)

	if opts.DownloadURL == "" && opts.UploadURL == "" {
		log.Println("[Main] No test URLs configured, throughput will be estimated")
	}
	return a, nil
}

// start launches background hint refreshing
func (a *app) start(ctx context.Context) {
	if a.icmp != nil {
		a.icmp.Start(ctx)
	}
}

// close stops background work and waits for an in-flight run
func (a *app) close() {
	if a.icmp != nil {
		a.icmp.Stop()
	}
	a.runner.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
}
