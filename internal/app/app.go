// Package app provides the main application helpers for the emulator.
package app

import (
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Name is the application name used in banners and window titles.
const Name = "retrochip8"

// PrintBanner logs the application name and version.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info(Name, log.String("version", buildinfo.Version(version, commit, date)))
	if date != "" && !strings.Contains(date, "unknown") {
		logger.Debug("Build", log.String("date", date))
	}
}

// PrintInfo logs information about the loaded ROM and the emulation settings.
func PrintInfo(logger *log.Logger, opts options.Program, name string, size int) {
	if opts.Quiet {
		return
	}

	logger.Info("Loaded CHIP-8 ROM",
		log.String("file", name),
		log.Int("size", size),
		log.Int("free", chip8.MaxProgramSize-size),
	)
	logger.Debug("Emulation settings",
		log.String("frontend", opts.Frontend),
		log.Int("speed", opts.Speed),
		log.String("on_error", opts.ErrorPolicy),
	)
}
