// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Emulator{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Emulator{}, err
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}

	return opts, options.NewEmulator(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage text and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	opts.ErrorPolicy = strings.ToLower(opts.ErrorPolicy)

	validFrontends := []string{options.FrontendWindow, options.FrontendTerminal, options.FrontendNone}
	if !slices.Contains(validFrontends, opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(validFrontends, ", "))
	}

	validPolicies := []string{options.ErrorPolicyHalt, options.ErrorPolicySkip}
	if !slices.Contains(validPolicies, opts.ErrorPolicy) {
		return fmt.Errorf("unsupported error policy: %s. Valid options: %s",
			opts.ErrorPolicy, strings.Join(validPolicies, ", "))
	}

	if opts.Speed < 60 {
		return fmt.Errorf("speed %d is too low, at least one instruction per frame (60) is required", opts.Speed)
	}
	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale %d", opts.Scale)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("invalid frame limit %d", opts.Frames)
	}

	if opts.Trace {
		opts.Debug = true
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Frontend, "ui", options.FrontendWindow, "frontend to use (window/terminal/none)")
	flags.StringVar(&opts.ErrorPolicy, "on-error", options.ErrorPolicyHalt, "policy for failing instructions (halt/skip)")
	flags.IntVar(&opts.Speed, "speed", options.DefaultSpeed, "instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window pixel scale")
	flags.IntVar(&opts.Frames, "frames", 0, "stop after this many 60 Hz frames, 0 runs until interrupted")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random generator seed, 0 uses a time based seed")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly listing of the ROM and exit")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
