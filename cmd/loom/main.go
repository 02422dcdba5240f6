// Package main is the entry point for the loom build tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grindlemire/graft"

	"go.trai.ch/loom/cmd/loom/commands"
	"go.trai.ch/loom/internal/adapters/telemetry/progrock"
	"go.trai.ch/loom/internal/app"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/loom/internal/tui"
	_ "go.trai.ch/loom/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watch := slices.Contains(args, "--watch")

	var a *app.App
	var tape *progrock.Recorder

	if watch {
		var err error
		a, tape, err = buildWatchApp(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
			return 1
		}
	} else {
		resolved, _, err := graft.ExecuteFor[*app.App](ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
			return 1
		}
		a = resolved
	}

	cli := commands.New(a)
	cli.SetArgs(args)

	if !watch {
		if err := cli.Execute(ctx); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
			return 1
		}
		return 0
	}

	program := tea.NewProgram(tui.NewModel(tape.Tape()))
	errCh := make(chan error, 1)
	go func() { errCh <- cli.Execute(ctx) }()
	go func() { _, _ = program.Run() }()

	err := <-errCh
	program.Quit()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		return 1
	}
	return 0
}

// buildWatchApp wires an App directly, bypassing the app.NodeID Graft node
// so the progrock Telemetry implementation backs the build instead of the
// OpenTelemetry one: `--watch` is a per-invocation choice, not something the
// process-wide dependency graph can express as a single cacheable node.
func buildWatchApp(ctx context.Context) (*app.App, *progrock.Recorder, error) {
	configLoader, _, err := graft.ExecuteFor[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, nil, err
	}
	h, _, err := graft.ExecuteFor[ports.Hasher](ctx)
	if err != nil {
		return nil, nil, err
	}
	process, _, err := graft.ExecuteFor[ports.ProcessExecutor](ctx)
	if err != nil {
		return nil, nil, err
	}
	environment, _, err := graft.ExecuteFor[ports.InterpreterEnvironment](ctx)
	if err != nil {
		return nil, nil, err
	}
	verifier, _, err := graft.ExecuteFor[ports.Verifier](ctx)
	if err != nil {
		return nil, nil, err
	}
	log, _, err := graft.ExecuteFor[ports.Logger](ctx)
	if err != nil {
		return nil, nil, err
	}

	rec := progrock.New()
	return app.New(configLoader, h, process, environment, verifier, rec, log), rec, nil
}
