// Package main is the entry point for the buttonkit daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/buttonkit/internal/app"
	"github.com/dshills/buttonkit/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, logFile, code, done := parseFlags(os.Args[1:], os.Stdout, os.Stderr)
	if done {
		return code
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.LogOutput = f
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags parses args into application options. done reports that the
// process should exit with code without running.
func parseFlags(args []string, stdout, stderr io.Writer) (opts app.Options, logFile string, code int, done bool) {
	fs := flag.NewFlagSet("buttonkit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool
	var noWatch bool

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.Driver, "driver", "", "Input driver (gpio, term)")
	fs.StringVar(&opts.Pin, "pin", "", "GPIO pin name for the gpio driver (e.g. GPIO17)")
	fs.DurationVar(&opts.Hold, "hold", 0, "Hold notification interval (e.g. 2s)")
	fs.StringVar(&opts.ScriptPath, "script", "", "Lua listener script")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.BoolVar(&noWatch, "no-watch", false, "Do not reload the config file on change")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "buttonkit - push-button event daemon\n\n")
		fmt.Fprintf(stderr, "Usage: buttonkit [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  buttonkit                              Toggle a button with the space bar\n")
		fmt.Fprintf(stderr, "  buttonkit -driver gpio -pin GPIO17     Watch a switch on GPIO17\n")
		fmt.Fprintf(stderr, "  buttonkit -script listeners.lua        Run Lua listeners\n")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, "", 0, true
		}
		return opts, "", 2, true
	}

	if showVersion {
		fmt.Fprintf(stdout, "buttonkit %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, "", 0, true
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, "", 1, true
	}
	if opts.Hold < 0 || (opts.Hold > 0 && opts.Hold < time.Millisecond) {
		fmt.Fprintf(stderr, "Error: invalid hold interval %s\n", opts.Hold)
		return opts, "", 1, true
	}

	opts.Watch = !noWatch
	return opts, logFile, 0, false
}
