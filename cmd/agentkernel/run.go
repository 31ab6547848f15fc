package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/intentkernel/internal/config"
	"github.com/kadirpekel/intentkernel/internal/kernel"
	"github.com/kadirpekel/intentkernel/internal/loop"
)

// Run boots the kernel from the configured file and either executes
// c.Task once or starts the interactive REPL, matching
// chapter03/kernel.py's main()'s CLI-mode versus interactive-mode
// split.
func (c *CLI) Run(ctx context.Context) error {
	cfg, loader, err := config.LoadConfigFile(ctx, c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if loader != nil {
		defer loader.Close()
	}

	k, err := kernel.Boot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("boot kernel: %w", err)
	}
	defer k.Shutdown()

	maxIterations := c.MaxIterations
	if maxIterations <= 0 {
		maxIterations = cfg.DefaultMaxIterations
	}

	if c.Task != "" {
		return runOnce(ctx, k, c.Task, maxIterations)
	}
	return runREPL(ctx, k, maxIterations)
}

func runOnce(ctx context.Context, k *kernel.Kernel, task string, maxIterations int) error {
	tc := k.NewTask()
	fmt.Printf("Executing task: %s\n\n", task)
	result, err := k.Run(ctx, tc, task, maxIterations)
	if err != nil {
		return fmt.Errorf("run task: %w", err)
	}
	printResult(result, tc.Trace.Len())
	return nil
}

func runREPL(ctx context.Context, k *kernel.Kernel, maxIterations int) error {
	fmt.Println("Enter a task, '/showtrace' to print the last run's trace, '/help' for commands, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)

	var lastTC *kernel.TaskContext

	for {
		fmt.Print("Task: ")
		if !scanner.Scan() {
			fmt.Println("\nShutting down...")
			return nil
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "quit", "exit", "":
			fmt.Println("Shutting down...")
			return nil
		case "/help":
			printHelp()
			continue
		case "/showtrace":
			printTrace(lastTC)
			continue
		}

		if ctx.Err() != nil {
			fmt.Println("\nShutting down...")
			return nil
		}

		tc := k.NewTask()
		result, err := k.Run(ctx, tc, line, maxIterations)
		if err != nil {
			fmt.Fprintf(os.Stderr, "task failed: %v\n", err)
			continue
		}
		printResult(result, tc.Trace.Len())
		lastTC = tc
	}
}

func printResult(result loop.Result, traceLen int) {
	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Message: %s\n", result.Message)
	fmt.Printf("Actions: %d\n\n", traceLen)
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /showtrace   print the reasoning/action/result trace from the last task")
	fmt.Println("  /help        show this message")
	fmt.Println("  quit, exit   end the session")
}

func printTrace(tc *kernel.TaskContext) {
	if tc == nil {
		fmt.Println("No task has run yet.")
		return
	}
	for i, e := range tc.Trace.Snapshot() {
		fmt.Printf("%d. [%s] reasoning=%q action=%q result=%q\n", i+1, e.Timestamp.Format("15:04:05"), e.Reasoning, e.Action, e.Result)
	}
}
