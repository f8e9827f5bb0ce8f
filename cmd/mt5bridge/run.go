package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/config"
	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/journal"
	"github.com/rustyeddy/mt5bridge/mt5"
	"github.com/rustyeddy/mt5bridge/transport"
)

func newRunCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the terminal and stream events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to YAML/JSON config (defaults apply when empty)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	conn, err := transport.Dial(ctx, cfg.ReqAddr(), cfg.SubAddr(), log)
	if err != nil {
		return err
	}

	sinks := event.Fanout{event.NewLogger(log)}

	var j journal.Journal
	switch cfg.Journal.Type {
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath, log)
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.TradesFile, log)
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		sinks = append(sinks, j)
	}

	if addr := cfg.Events.ListenAddr; addr != "" {
		hub := event.NewHub(log)
		go hub.Run()
		defer hub.Stop()
		sinks = append(sinks, hub)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Warn("event server stopped", zap.Error(err))
			}
		}()
		log.Info("event server listening", zap.String("addr", addr))
	}

	g := mt5.New(conn, sinks, loc, log)
	if err := g.Connect(); err != nil {
		// Connect may have started the push loop before failing; Close stops
		// and joins it before releasing the transport.
		g.Close()
		return err
	}

	for _, symbol := range cfg.Symbols {
		if err := g.Subscribe(symbol); err != nil {
			log.Warn("subscribe failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return g.Close()
}

// loadConfig layers the optional file over defaults, then applies env
// overrides (MT5_HOST, MT5_REQ_PORT, MT5_SUB_PORT).
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if host := os.Getenv("MT5_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if p := os.Getenv("MT5_REQ_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("MT5_REQ_PORT: %w", err)
		}
		cfg.Server.ReqPort = port
	}
	if p := os.Getenv("MT5_SUB_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("MT5_SUB_PORT: %w", err)
		}
		cfg.Server.SubPort = port
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.EncoderConfig.TimeKey = "ts"
	return zc.Build()
}
