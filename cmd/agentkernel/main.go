// Command agentkernel runs the cognitive kernel: boot the Capability
// Host and Intent Index, then execute one task (given on the command
// line) or drop into an interactive REPL, mirroring
// chapter03/kernel.py's cli()/main() split between one-shot and
// interactive execution.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/intentkernel/internal/config"
)

// CLI defines the command-line interface. There is a single implicit
// command: execute Task if given, otherwise start an interactive
// session (chapter03/kernel.py's cli() takes the same shape: one
// optional positional TASK argument, no subcommands).
type CLI struct {
	Task          string `arg:"" optional:"" help:"Task description. Omit to start an interactive session."`
	MaxIterations int    `name:"max-iterations" help:"Iteration budget for this run (0 = config default)." default:"0"`

	Config    string `short:"c" help:"Path to config file (YAML or JSON)." type:"path" default:"agentkernel.yaml"`
	Verbose   bool   `short:"v" help:"Enable debug-level logging."`
	LogLevel  string `help:"Log level (debug, info, warn, error); falls back to LOG_LEVEL, then info."`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose); falls back to LOG_FORMAT, then simple."`
}

func main() {
	_ = config.LoadEnvFiles()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentkernel"),
		kong.Description("Intent-indexed cognitive agent kernel."),
		kong.UsageOnError(),
	)

	logLevel := cli.LogLevel
	if cli.Verbose {
		logLevel = "debug"
	}
	cleanup, err := initLogger(logLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	err = ctx.Run(runCtx)
	ctx.FatalIfErrorf(err)
}
