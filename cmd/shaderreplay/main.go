// Package main provides shaderreplay, a tool that replays a captured draw
// trace against the shader cache and reports hit rate and table statistics.
//
// Usage:
//
//	shaderreplay --manifest trace.jsonc [--report report.json]
package main

import (
	"context"
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	flag "github.com/spf13/pflag"

	"github.com/hupe1980/shadercache"
)

type config struct {
	manifest           string
	report             string
	image              string
	hash               string
	loadWorkers        int
	compileConcurrency int64
	compileRate        float64
	logLevel           string
	logFormat          string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	cfg, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	logger, err := newLogger(errOut, cfg.logLevel, cfg.logFormat)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	rep, err := replay(ctx, cfg, logger)
	if err != nil {
		logger.Error("replay failed", "error", err)
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	printSummary(out, rep)

	if cfg.report != "" {
		if err := writeReport(cfg.report, rep); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		logger.Info("report written", "path", cfg.report)
	}
	return 0
}

func parseFlags(args []string) (config, error) {
	var cfg config

	flagSet := flag.NewFlagSet("shaderreplay", flag.ContinueOnError)
	flagSet.StringVarP(&cfg.manifest, "manifest", "m", "", "Trace manifest (JSON with comments)")
	flagSet.StringVarP(&cfg.report, "report", "o", "", "Write a JSON report to this path")
	flagSet.StringVar(&cfg.image, "image", "", "Memory image path (default: memory.img next to the manifest)")
	flagSet.StringVar(&cfg.hash, "hash", "", "Stage digest: crc32c or xxhash (overrides the manifest)")
	flagSet.IntVar(&cfg.loadWorkers, "load-workers", runtime.NumCPU(), "Parallel stage file readers")
	flagSet.Int64Var(&cfg.compileConcurrency, "compile-concurrency", 1, "Maximum compiles in flight")
	flagSet.Float64Var(&cfg.compileRate, "compile-rate", 0, "Compiles per second (0 = unlimited)")
	flagSet.StringVar(&cfg.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flagSet.StringVar(&cfg.logFormat, "log-format", "text", "Log format: text or json")

	if err := flagSet.Parse(args); err != nil {
		return config{}, err
	}

	if cfg.manifest == "" {
		if flagSet.NArg() != 1 {
			return config{}, errors.New("--manifest is required")
		}
		cfg.manifest = flagSet.Arg(0)
	}
	if cfg.loadWorkers < 1 {
		return config{}, errors.New("--load-workers must be at least 1")
	}
	if cfg.compileConcurrency < 1 {
		return config{}, errors.New("--compile-concurrency must be at least 1")
	}
	if cfg.compileRate < 0 {
		return config{}, errors.New("--compile-rate must not be negative")
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*shadercache.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return shadercache.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return shadercache.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
}
