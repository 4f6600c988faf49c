package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wellsgz/linkcheck/internal/api"
	"github.com/wellsgz/linkcheck/internal/config"
	"github.com/wellsgz/linkcheck/internal/paths"
	"github.com/wellsgz/linkcheck/internal/tui"
)

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	logFormat  string
	logFile    string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "linkcheck",
		Short:        "Client-side network quality check over HTTP",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to config file (default: per-user location if present)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "write logs to this file")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(g),
		newServeCmd(g),
		newTUICmd(g),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the config file and applies flag overrides on top
func loadConfig(cmd *cobra.Command, g *globalFlags, overrides map[string]interface{}) (*config.Config, error) {
	path, err := paths.ResolveConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	if overrides == nil {
		overrides = make(map[string]interface{})
	}
	if g.logFormat != "" {
		overrides["logging.format"] = g.logFormat
	}
	if cmd.Flags().Changed("debug") {
		overrides["logging.debug"] = g.debug
	}

	return config.LoadWithOverrides(path, overrides)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// testFlags are the throughput overrides shared by run, serve and tui
type testFlags struct {
	downloadURL string
	uploadURL   string
	duration    time.Duration
	streams     int
	passes      int
}

func (t *testFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.downloadURL, "download-url", "", "download target URL")
	cmd.Flags().StringVar(&t.uploadURL, "upload-url", "", "upload target URL")
	cmd.Flags().DurationVar(&t.duration, "duration", 0, "per-direction test duration")
	cmd.Flags().IntVar(&t.streams, "streams", 0, "parallel download streams")
	cmd.Flags().IntVar(&t.passes, "passes", 0, "passes per direction, best wins")
}

// overrides returns the config keys for flags the user actually set
func (t *testFlags) overrides(cmd *cobra.Command) map[string]interface{} {
	o := make(map[string]interface{})
	if cmd.Flags().Changed("download-url") {
		o["test.download_url"] = t.downloadURL
	}
	if cmd.Flags().Changed("upload-url") {
		o["test.upload_url"] = t.uploadURL
	}
	if cmd.Flags().Changed("duration") {
		o["test.duration"] = t.duration
	}
	if cmd.Flags().Changed("streams") {
		o["test.parallel_streams"] = t.streams
	}
	if cmd.Flags().Changed("passes") {
		o["test.passes"] = t.passes
	}
	return o
}

func newRunCmd(g *globalFlags) *cobra.Command {
	tf := &testFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one test and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, tf.overrides(cmd))
			if err != nil {
				return err
			}

			a, err := newApp(cfg, g.logFile, false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()
			a.start(ctx)

			res, _ := a.runner.Run(ctx)
			return writeResult(cmd.OutOrStdout(), res, output)
		},
	}
	tf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	tf := &testFlags{}
	var address string
	var withTUI bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, speed endpoints and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := tf.overrides(cmd)
			if cmd.Flags().Changed("address") {
				overrides["server.address"] = address
			}
			if cmd.Flags().Changed("tui") {
				overrides["server.enable_tui"] = withTUI
			}
			cfg, err := loadConfig(cmd, g, overrides)
			if err != nil {
				return err
			}

			a, err := newApp(cfg, g.logFile, cfg.Server.EnableTUI)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()
			a.start(ctx)

			server := api.NewServer(cfg, a.runner, a.feed)
			server.StartAsync(cfg.Server.Address)
			defer func() {
				if err := server.Shutdown(5 * time.Second); err != nil {
					log.Printf("[Main] %v", err)
				}
			}()

			if cfg.Server.EnableTUI {
				return tui.Run(ctx, a.runner, a.visibility, a.feed, tui.Options{APIAddr: cfg.Server.Address})
			}

			<-ctx.Done()
			log.Println("[Main] Shutdown requested")
			return nil
		},
	}
	tf.register(cmd)
	cmd.Flags().StringVar(&address, "address", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&withTUI, "tui", false, "show the terminal UI while serving")
	return cmd
}

func newTUICmd(g *globalFlags) *cobra.Command {
	tf := &testFlags{}
	var autoStart bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, tf.overrides(cmd))
			if err != nil {
				return err
			}

			a, err := newApp(cfg, g.logFile, true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()
			a.start(ctx)

			return tui.Run(ctx, a.runner, a.visibility, a.feed, tui.Options{AutoStart: autoStart})
		},
	}
	tf.register(cmd)
	cmd.Flags().BoolVar(&autoStart, "start", false, "start a test immediately")
	return cmd
}

func newInitCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &paths.Paths{ConfigFile: path}
			if path == "" {
				var err error
				if p, err = paths.DefaultPaths(); err != nil {
					return err
				}
			}

			created, err := p.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", p.ConfigFile)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", p.ConfigFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "where to write the config (default: per-user location)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), api.Version)
		},
	}
}
