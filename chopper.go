// Package main implements the terminal frontend of the chopper CHIP-8
// emulator
package main

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

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
	"github.com/mnafees/chopper/v2/pkg/term"
	"github.com/retroenv/retrogolib/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := config.ParseFlags("chopper", os.Args[1:])
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

	// logs share the screen with the framebuffer, only errors by default
	if !opts.Debug {
		opts.Quiet = true
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

	io := term.NewIO(vm, pacer, logger)
	if err := io.Setup(); err != nil {
		logger.Error("Setting up terminal failed", log.Err(err))
		return 1
	}

	err = io.Loop(ctx)
	io.Destroy()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Emulation stopped", log.Err(err))
		return 1
	}
	return 0
}
