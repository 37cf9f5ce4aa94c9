package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CristiGvl/picoTVKit/api"
	"github.com/CristiGvl/picoTVKit/internal/browser"
	"github.com/CristiGvl/picoTVKit/internal/config"
	"github.com/CristiGvl/picoTVKit/internal/cpu"
	"github.com/CristiGvl/picoTVKit/internal/debugstats"
	"github.com/CristiGvl/picoTVKit/internal/hunter"
	"github.com/CristiGvl/picoTVKit/internal/memory"
	"github.com/CristiGvl/picoTVKit/internal/platform"
	"github.com/CristiGvl/picoTVKit/internal/webview"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "picotvkit",
		Short:        "Memory statistics, debug overlay and playlist hunting for the TV player",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts), newMemCmd(opts), newHuntCmd(opts))
	return cmd
}

// load reads the config file and applies root flags on top of it.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newHunter(cfg *config.Config, logger *slog.Logger) (*hunter.Hunter, *browser.Manager) {
	mgr := browser.NewManager(browser.Config{
		RemoteURL: cfg.Browser.RemoteURL,
		Headful:   cfg.Browser.Headful,
		Stealth:   cfg.Browser.Stealth,
		Logger:    logger,
	})
	h := hunter.New(func(ctx context.Context) (webview.Engine, error) {
		return mgr.NewEngine(ctx)
	}, hunter.Config{
		Grace:        cfg.Hunter.Grace,
		LoadTimeout:  cfg.Hunter.LoadTimeout,
		FetchTimeout: cfg.Hunter.FetchTimeout,
		CacheTTL:     cfg.Hunter.CacheTTL,
		Logger:       logger,
	})
	return h, mgr
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port  int
		bind  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("bind") {
				cfg.Server.Bind = bind
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug.Enabled = debug
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
	cmd.Flags().StringVar(&bind, "bind", "0.0.0.0", "IP address to bind the server to")
	cmd.Flags().BoolVar(&debug, "debug", false, "log the memory/CPU overlay periodically")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := platform.ValidateSupport(); err != nil {
		logger.Warn("platform statistics unavailable", "error", err)
	}

	mem := memory.NewProvider(memory.NewSource(), logger)
	cpuReader := cpu.NewReader()
	overlay := debugstats.New(mem, cpuReader, debugstats.Config{Interval: cfg.Debug.Interval, Logger: logger})

	opts := api.Options{Memory: mem, CPU: cpuReader, Debug: overlay, Logger: logger}
	if cfg.Hunter.Enabled {
		h, mgr := newHunter(cfg, logger)
		defer mgr.Close()
		opts.Hunter = h
	}
	server := api.NewServer(opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(cfg.Address())
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return server.Shutdown()
	})
	if cfg.Debug.Enabled {
		g.Go(func() error {
			err := overlay.Run(ctx, func(text string) {
				logger.Info("debug overlay", "stats", text)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

func newMemCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mem",
		Short: "Print one memory statistics snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := root.load()
			if err != nil {
				return err
			}
			stats := memory.NewProvider(memory.NewSource(), logger).Stats(cmd.Context())
			if stats == nil {
				return errors.New("memory statistics unavailable")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "used: %s, free: %s, total: %s\n",
				humanize.IBytes(stats.Used), humanize.IBytes(stats.Free), humanize.IBytes(stats.Total))
			return nil
		},
	}
}

func newHuntCmd(root *rootOptions) *cobra.Command {
	var (
		target  hunter.Target
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "hunt <source-url>",
		Short: "Find the playlist URL behind a player page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			target.Source = args[0]

			h, mgr := newHunter(cfg, logger)
			defer mgr.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			playlist, err := h.Hunt(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), playlist)
			return nil
		},
	}
	cmd.Flags().StringVar(&target.PlaylistDomain, "domain", "", "host of the player page")
	cmd.Flags().StringVar(&target.PlaylistPath, "path", "", "path of the player page")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall hunt timeout")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
