// Package main implements the SDL frontend of the chopper CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/clock"
	"github.com/mnafees/chopper/v2/internal/config"
	"github.com/mnafees/chopper/v2/internal/dump"
	"github.com/mnafees/chopper/v2/internal/statsview"
	"github.com/mnafees/chopper/v2/pkg/sdl"
	"github.com/retroenv/retrogolib/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := config.ParseFlags("chopper-sdl", os.Args[1:])
	if err != nil {
		var usage *config.UsageError
		if !errors.As(err, &usage) {
			return 1
		}
		if errors.Is(err, flag.ErrHelp) {
			usage.ShowUsage(os.Stdout)
			return 0
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		usage.ShowUsage(os.Stderr)
		return 1
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if opts.StatsView {
		statsview.Launch(logger)
	}

	vm := internal.NewC8VM(opts.VMOptions(logger)...)
	if err := vm.LoadProgram(opts.Program); err != nil {
		logger.Error("Loading program failed", log.Err(err))
		return 1
	}
	if opts.MemViz != "" {
		defer func() {
			if err := dump.WriteState(opts.MemViz, vm); err != nil {
				logger.Error("Dumping VM state failed", log.Err(err))
			}
		}()
	}

	pacer, err := clock.New(opts.Rate)
	if err != nil {
		logger.Error("Creating clock failed", log.Err(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	io := sdl.NewIO(vm, pacer, logger, opts.Scale)
	defer io.Destroy()
	if err := io.SetupWindow("Chopper | CHIP-8 Emulator"); err != nil {
		logger.Error("Setting up window failed", log.Err(err))
		return 1
	}

	if err := io.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Emulation stopped", log.Err(err))
		return 1
	}
	return 0
}
