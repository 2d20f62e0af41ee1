package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnana997/blendmeta/pkg/components"
	mcpserver "github.com/gnana997/blendmeta/pkg/mcp"
	"github.com/gnana997/blendmeta/pkg/mcplog"
	"github.com/gnana997/blendmeta/pkg/pipeline"
	"github.com/gnana997/blendmeta/pkg/util"
)

const version = "0.1.0-dev"

// digestCacheSize bounds the per-component output digests kept by the
// long-running commands.
const digestCacheSize = 512

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	command := "generate"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "version", "--version":
		fmt.Fprintf(stdout, "blendmeta %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "generate", "watch", "serve", "init", "setup":
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	lc := cfg.Logger()
	lc.Output = stderr
	logger := util.NewLogger(lc)
	if cfgPath != "" {
		logger.Debug("loaded config file", "path", cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "init":
		return runInit(cfg, stdout, stderr)
	case "setup":
		return runSetup(args, stdout, stderr)
	case "watch":
		return runWatch(ctx, cfg, logger)
	case "serve":
		return runServe(cfg, logger)
	default:
		return runGenerate(ctx, cfg, logger)
	}
}

func runGenerate(ctx context.Context, cfg *Config, logger *slog.Logger) int {
	gen, err := pipeline.NewGenerator(cfg.Pipeline(), logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	defer gen.Close()

	summary, err := gen.Run(ctx)
	if err != nil {
		if errors.Is(err, components.ErrDirectoryRead) {
			logger.Error("cannot read components directory", "error", err)
		} else {
			logger.Error("generation stopped", "error", err)
		}
		return 1
	}

	if cfg.FailOnError && summary.HasFailures() {
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, cfg *Config, logger *slog.Logger) int {
	gen, err := pipeline.NewGenerator(cfg.Pipeline(), logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	defer gen.Close()

	if err := gen.EnableDigestCache(digestCacheSize); err != nil {
		logger.Error("failed to create digest cache", "error", err)
		return 1
	}

	// Bring every component up to date before reacting to changes.
	if _, err := gen.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		logger.Error("initial generation failed", "error", err)
		return 1
	}

	w, err := pipeline.NewWatcher(gen, pipeline.WatchOptions{DebounceMs: cfg.Watch.DebounceMs}, logger)
	if err != nil {
		logger.Error("failed to create watcher", "error", err)
		return 1
	}
	if err := w.Run(ctx); err != nil {
		logger.Error("watcher error", "error", err)
		return 1
	}
	return 0
}

func runServe(cfg *Config, logger *slog.Logger) int {
	gen, err := pipeline.NewGenerator(cfg.Pipeline(), logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	defer gen.Close()

	if err := gen.EnableDigestCache(digestCacheSize); err != nil {
		logger.Error("failed to create digest cache", "error", err)
		return 1
	}

	callLog, err := mcplog.NewLogger(cfg.MCP.LogPath)
	if err != nil {
		logger.Error("failed to open MCP call log", "error", err)
		return 1
	}
	defer callLog.Close()

	srv := mcpserver.NewServer(gen, callLog)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func runInit(cfg *Config, stdout, stderr io.Writer) int {
	if err := writeConfigFile(configFileName, cfg); err != nil {
		fmt.Fprintf(stderr, "init: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", configFileName)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blendmeta [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Generate metadata for every component (default)")
	fmt.Fprintln(w, "  watch      Regenerate metadata when component sources change")
	fmt.Fprintln(w, "  serve      Start MCP server on stdio")
	fmt.Fprintln(w, "  init       Write a blendmeta.yaml with the current settings")
	fmt.Fprintln(w, "  setup      Register the MCP server in project agent configs")
	fmt.Fprintln(w, "  version    Print version")
	fmt.Fprintln(w, "  help       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration: blendmeta.yaml (or $BLENDMETA_CONFIG), then BLENDMETA_* env vars.")
}
