// Package options contains the program options.
package options

// Frontend names.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendNone     = "none"
)

// Error policies applied when an instruction fails.
const (
	ErrorPolicyHalt = "halt"
	ErrorPolicySkip = "skip"
)

// Defaults for the emulation settings.
const (
	DefaultSpeed = 700
	DefaultScale = 10
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend    string `flag:"ui" usage:"frontend: window, terminal, none" default:"window"`
	ErrorPolicy string `flag:"on-error" usage:"policy for failing instructions: halt, skip" default:"halt"`
	Speed       int    `flag:"speed" usage:"instructions executed per second" default:"700"`
	Scale       int    `flag:"scale" usage:"window pixel scale" default:"10"`
	Frames      int    `flag:"frames" usage:"stop after this many 60 Hz frames (0: unlimited)"`
	Seed        uint64 `flag:"seed" usage:"random generator seed (0: time based)"`
	Disasm      bool   `flag:"disasm" usage:"print a disassembly listing of the ROM and exit"`
	Trace       bool   `flag:"trace" usage:"log every executed instruction, implies -debug"`
	Debug       bool   `flag:"debug" usage:"enable debug logging"`
	Quiet       bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
}

// Emulator defines options to control the emulation driver.
type Emulator struct {
	Speed       int    // instructions per second
	Frames      int    // frame limit, 0 for unlimited
	ErrorPolicy string // halt or skip
	Trace       bool   // log every executed instruction
	Throttle    bool   // pace frames at 60 Hz, disabled for headless runs
}

// NewEmulator returns emulator options derived from the program options.
func NewEmulator(opts Program) Emulator {
	return Emulator{
		Speed:       opts.Speed,
		Frames:      opts.Frames,
		ErrorPolicy: opts.ErrorPolicy,
		Trace:       opts.Trace,
		Throttle:    opts.Frontend != FrontendNone,
	}
}
