// Package main provides the entry point for the EMI/UCP SMSC simulator.
// The simulator accepts EMI/UCP client connections, answers session
// opens and submits, sends delivery notifications, and originates MO
// messages and status reports through an HTTP control API.
//
// Usage:
//
//	emi-smsc [flags]
//
// Flags:
//
//	-config string     YAML configuration file
//	-listen string     EMI/UCP listen address (default ":5000")
//	-http string       HTTP control API address (default ":8080", empty disables)
//	-env string        dotenv file read before the environment (default ".env")
//	-stats duration    interval for logging counters (0 disables)
//	-debug             Enable debug logging
//	-version           Show version information
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/go-smsc/emi-smsc/lib/api"
	"github.com/go-smsc/emi-smsc/lib/msglog"
	"github.com/go-smsc/emi-smsc/lib/session"
	"github.com/go-smsc/emi-smsc/lib/smsc"
	"github.com/go-smsc/emi-smsc/lib/stats"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Build info
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// flags holds the command line.
type flags struct {
	configPath    string
	envFile       string
	listenAddr    string
	httpAddr      string
	statsInterval time.Duration
	debug         bool
}

func main() {
	f := parseFlags()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emi-smsc: %v\n", err)
		os.Exit(2)
	}

	log, err := smsc.NewLogger(cfg.Log, cfg.Debug, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emi-smsc: %v\n", err)
		os.Exit(2)
	}

	log.WithFields(logrus.Fields{
		"version":   Version,
		"buildTime": BuildTime,
		"commit":    GitCommit,
	}).Info("Starting EMI/UCP SMSC simulator")

	if err := run(cfg, f, log); err != nil {
		log.WithError(err).Error("SMSC simulator failed")
		os.Exit(1)
	}
	log.Info("SMSC simulator stopped")
}

func run(cfg *smsc.Config, f *flags, log *logrus.Logger) error {
	if err := cfg.LoadTLS(); err != nil {
		return err
	}

	recorder := msglog.NewRecorder(msglog.DefaultRecorderSize)
	sinks := msglog.Multi{
		&msglog.Filter{Next: msglog.NewLogrusSink(log), HidePingAck: cfg.HidePingAck},
		recorder,
	}
	if cfg.SQL.DSN != "" {
		db, err := msglog.Connect(cfg.SQL.DSN)
		if err != nil {
			return fmt.Errorf("message log database: %w", err)
		}
		sqlSink, err := msglog.NewSQLSink(db, log)
		if err != nil {
			db.Close()
			return fmt.Errorf("message log database: %w", err)
		}
		defer sqlSink.Close()
		sinks = append(sinks, sqlSink)
	}

	st := stats.New()
	if f.statsInterval > 0 {
		go metrics.Log(st.Registry(), f.statsInterval, log.WithField("component", "stats"))
	}

	auth := smsc.NewAuthStoreFromConfig(cfg.Accounts)
	if !auth.IsAuthEnabled() {
		log.Warn("No accounts configured, every session open is accepted")
	}

	engine, err := session.NewEngine(cfg.SessionConfig(),
		session.WithAuthenticator(auth),
		session.WithSink(sinks),
		session.WithStats(st),
		session.WithLogger(log),
	)
	if err != nil {
		return err
	}

	registry := session.NewRegistry()
	server, err := smsc.NewServer(cfg, engine, registry)
	if err != nil {
		return err
	}

	errChan := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		handler := api.NewHandler(session.NewDispatcher(engine, registry), registry, recorder, st, log)
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.WithField("addr", cfg.HTTPAddr).Info("HTTP control API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case runErr = <-errChan:
	}

	log.Info("Shutting down...")

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Error stopping HTTP control API")
		}
		cancel()
	}
	if err := server.Close(); err != nil {
		log.WithError(err).Warn("Error stopping server")
	}
	if err := registry.Close(); err != nil {
		log.WithError(err).Warn("Error closing sessions")
	}

	log.WithFields(toFields(st.Snapshot())).Info("Final counters")
	return runErr
}

func toFields(m map[string]int64) logrus.Fields {
	out := make(logrus.Fields, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// loadConfig layers the configuration: defaults or file, then the
// environment (with the dotenv file), then explicitly set flags.
func loadConfig(f *flags) (*smsc.Config, error) {
	if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", f.envFile, err)
	}

	cfg := smsc.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = smsc.LoadConfig(f.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "listen":
			cfg.ListenAddr = f.listenAddr
		case "http":
			cfg.HTTPAddr = f.httpAddr
		case "debug":
			cfg.Debug = f.debug
		}
	})
	return cfg, cfg.Validate()
}

func parseFlags() *flags {
	f := &flags{}

	flag.StringVar(&f.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&f.envFile, "env", ".env", "dotenv file read before the environment")
	flag.StringVar(&f.listenAddr, "listen", smsc.DefaultListenAddr, "EMI/UCP listen address")
	flag.StringVar(&f.httpAddr, "http", smsc.DefaultHTTPAddr, "HTTP control API address (empty disables)")
	flag.DurationVar(&f.statsInterval, "stats", 0, "interval for logging counters (0 disables)")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")

	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help message")

	flag.Parse()

	if *showVersion {
		fmt.Printf("emi-smsc %s\n", Version)
		fmt.Printf("Build time: %s\n", BuildTime)
		fmt.Printf("Git commit: %s\n", GitCommit)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Println("EMI/UCP SMSC simulator")
		fmt.Println()
		fmt.Println("Usage: emi-smsc [flags]")
		fmt.Println()
		fmt.Println("Flags:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Environment variables:")
		fmt.Println("  SMSC_LISTEN   EMI/UCP listen address")
		fmt.Println("  SMSC_HTTP     HTTP control API address")
		fmt.Println("  SMSC_DEBUG    Enable debug logging")
		fmt.Println("  SMSC_SQL_DSN  MySQL DSN for the message log")
		os.Exit(0)
	}

	return f
}
