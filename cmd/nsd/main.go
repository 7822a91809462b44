// Command nsd is the authoritative DNS name server: it loads zone
// files, then serves UDP, TCP, and a Unix-socket control channel until
// signaled to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pepbut/nsd/internal/authority"
	"github.com/pepbut/nsd/internal/server"
)

// verbosityFlag counts repeated -v occurrences (-v -v -v == 3), the Go
// restatement of the original's clap `-v`...`-v` occurrence counting.
// The flag package does not split a combined -vvv into three flags.
type verbosityFlag int

func (v *verbosityFlag) String() string { return fmt.Sprintf("%d", int(*v)) }
func (v *verbosityFlag) Set(string) error {
	*v++
	return nil
}
func (v *verbosityFlag) IsBoolFlag() bool { return true }

func main() {
	cfg := server.DefaultConfig()

	var (
		listenAddr = flag.String("l", "", "listen address for UDP and TCP (default [::]:53)")
		sockPath   = flag.String("s", "", "control socket path (default /run/pepbut/nsd.sock)")
		configPath = flag.String("c", "", "YAML config file")
		verbosity  verbosityFlag
	)
	flag.Var(&verbosity, "v", "increase log verbosity (repeatable)")
	flag.Parse()

	if *configPath != "" {
		if err := server.LoadConfigFile(&cfg, *configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *sockPath != "" {
		cfg.ControlSocket = *sockPath
	}
	if int(verbosity) > cfg.Verbosity {
		cfg.Verbosity = int(verbosity)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: verbosityLevel(cfg.Verbosity),
	}))

	auth := authority.New()
	zoneFiles := append([]string{}, cfg.Zones...)
	zoneFiles = append(zoneFiles, flag.Args()...)

	srv := server.New(cfg, auth, logger)
	for _, path := range zoneFiles {
		origin, serial, err := srv.LoadZoneFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "nsd: loading %s: %v\n", path, err)
			os.Exit(1)
		}
		logger.Info("loaded zone", "origin", origin.String(), "serial", serial, "file", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "listen", cfg.ListenAddr, "control_socket", cfg.ControlSocket)
	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "nsd: %v\n", err)
		os.Exit(1)
	}
}

// verbosityLevel maps the -v count to a slog level: 0 warn, 1 info,
// 2+ debug.
func verbosityLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
