// Package main implements the main entry point for the CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/frontend/window"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, emuOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts)
	app.PrintBanner(logger, opts, version, commit, date)

	if err := run(ctx, logger, opts, emuOptions); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program, emuOptions options.Emulator) error {
	rom, name, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	app.PrintInfo(logger, opts, name, len(rom))

	if opts.Disasm {
		if err := disasm.List(os.Stdout, rom, chip8.ProgramStart); err != nil {
			return fmt.Errorf("writing disassembly: %w", err)
		}
		return nil
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Debug("Random generator", log.String("seed", strconv.FormatUint(seed, 10)))

	vm := chip8.New(chip8.WithRandom(chip8.NewRandom(seed)))
	if err := vm.Load(rom); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	emu := emulator.New(logger, vm, emuOptions)

	switch opts.Frontend {
	case options.FrontendWindow:
		return window.New(ctx, logger, emu, opts.Scale).Run()

	case options.FrontendTerminal:
		frontend, err := terminal.New(os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		runErr := emu.Run(ctx, frontend)
		if err := frontend.Close(); err != nil && runErr == nil {
			return err
		}
		return runErr

	default:
		if err := emu.Run(ctx, &emulator.Headless{}); err != nil {
			return err
		}
		logger.Info("Emulation finished", log.Int("frames", emu.Frames()))
		if opts.Quiet {
			return nil
		}
		return terminal.WriteFrame(os.Stdout, vm.Display())
	}
}
