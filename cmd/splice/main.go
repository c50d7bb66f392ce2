// Package main is the splice command: it creates, inspects, checks and
// scripts splice projects from the shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/splice/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	app       app.Options
	showStats bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, rest, done, err := parseGlobal(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if done {
		return 0
	}
	if len(rest) == 0 {
		usage(stderr)
		return 2
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
		usage(stderr)
		return 2
	}

	opts.app.LogOutput = stderr
	application, err := app.New(ctx, opts.app)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Shutdown(sctx); err != nil {
			fmt.Fprintf(stderr, "Error: shutdown: %v\n", err)
		}
	}()

	env := &cmdEnv{app: application, stdout: stdout, stderr: stderr}
	code := 0
	if err := cmd.run(ctx, env, rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		code = 1
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "Usage: splice %s %s\n", rest[0], cmd.usage)
			code = 2
		}
	}

	if opts.showStats {
		if err := application.Metrics().WriteText(stderr); err != nil {
			fmt.Fprintf(stderr, "Error: stats: %v\n", err)
		}
	}
	return code
}

// parseGlobal parses the leading flags. done is true when the flags were
// fully handled, as with -version.
func parseGlobal(args []string, stdout, stderr io.Writer) (opts globalOptions, rest []string, done bool, err error) {
	var showVersion bool

	fs := flag.NewFlagSet("splice", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.app.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.app.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.showStats, "stats", false, "Print metrics after the command")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.Usage = func() { usage(stderr) }

	if err := fs.Parse(args); err != nil {
		return opts, nil, false, err
	}

	if showVersion {
		fmt.Fprintf(stdout, "splice %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, nil, true, nil
	}

	switch opts.app.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, nil, false, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.app.LogLevel)
	}
	return opts, fs.Args(), false, nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "splice - non-linear editing projects from the command line\n\n")
	fmt.Fprintf(w, "Usage: splice [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Options:\n")
	fmt.Fprintf(w, "  -c, -config PATH    configuration file\n")
	fmt.Fprintf(w, "  -log-level LEVEL    debug, info, warn or error\n")
	fmt.Fprintf(w, "  -stats              print metrics after the command\n")
	fmt.Fprintf(w, "  -v, -version        show version information\n")
	fmt.Fprintf(w, "\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
}
