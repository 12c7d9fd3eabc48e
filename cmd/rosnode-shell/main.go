// Command rosnode-shell is a reference interactive shell demonstrating
// the Subscription and TimerManager runtime end to end: subscribe to a
// topic, drive fake publisher advertisements through an in-memory
// Directory, inspect stats, and add/remove timers, all from one
// readline prompt.
//
// Usage:
//
//	rosnode-shell [flags]
//
// Flags:
//
//	-config string    Node configuration file path (YAML)
//	-name string      Node name (overrides config)
//	-log-level string Log level: debug, info, warn, error (default "info")
//	-log-file string  Also append CBOR-encoded events to this file
//	-replay-log string  Print every event in a CBOR log file and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chadrockey/ros/pkg/log"
	"github.com/chadrockey/ros/pkg/rosnode"
)

func main() {
	configPath := flag.String("config", "", "node configuration file path (YAML)")
	name := flag.String("name", "", "node name (overrides config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "also append CBOR-encoded events to this file")
	replayLog := flag.String("replay-log", "", "print every event in a CBOR log file and exit")
	flag.Parse()

	if *replayLog != "" {
		if err := runReplayLog(*replayLog); err != nil {
			fmt.Fprintf(os.Stderr, "rosnode-shell: replaying log: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := rosnode.DefaultConfig()
	if *configPath != "" {
		loaded, err := rosnode.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rosnode-shell: loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *name != "" {
		cfg.Name = *name
	}
	if cfg.Name == "" {
		cfg.Name = "/rosnode_shell"
	}
	if cfg.URI == "" {
		cfg.URI = "http://localhost:0/"
	}

	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	var logger log.Logger = log.NewSlogAdapter(slogger)
	if *logFile != "" {
		fileLogger, err := log.NewFileLogger(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rosnode-shell: opening log file: %v\n", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
		logger = log.NewMultiLogger(logger, fileLogger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	shell, err := New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rosnode-shell: %v\n", err)
		os.Exit(1)
	}
	defer shell.Close()

	shell.Run(ctx, cancel)
}

// runReplayLog prints every event recorded by a -log-file run, in the
// order it was written, one line per event.
func runReplayLog(path string) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		event, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s [%s/%s] topic=%s uri=%s conn=%s\n",
			event.Timestamp.Format("15:04:05.000"), event.Layer, event.Category,
			event.Topic, event.PublisherURI, event.ConnectionID)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
