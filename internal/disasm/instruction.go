// Package disasm decodes CHIP-8 instruction words into mnemonics for
// execution traces and ROM listings.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Flow classifies how an instruction changes the program counter.
type Flow int

// Control flow kinds.
const (
	FlowNone Flow = iota
	FlowJump
	FlowCall
	FlowReturn
	FlowSkip
)

var flowNames = [...]string{
	FlowNone:   "",
	FlowJump:   "jump",
	FlowCall:   "call",
	FlowReturn: "return",
	FlowSkip:   "skip",
}

func (f Flow) String() string {
	if f < 0 || int(f) >= len(flowNames) {
		return ""
	}
	return flowNames[f]
}

// Instruction is a decoded CHIP-8 instruction word.
type Instruction struct {
	ins    *chip8.Instruction
	id     chip8.OpcodeID
	opcode uint16
}

// Decode matches the instruction word against the retrogolib CHIP-8 opcode table.
// It returns false if no table entry matches.
func Decode(opcode uint16) (Instruction, bool) {
	for _, op := range chip8.Opcodes[opcode>>12] {
		if op.Info.Mask&opcode != op.Info.Value || op.Instruction == nil {
			continue
		}
		return Instruction{
			ins:    op.Instruction,
			id:     chip8.NameToOpcodeID[op.Instruction.Name],
			opcode: opcode,
		}, true
	}
	return Instruction{opcode: opcode}, false
}

// Flow returns the control flow kind of the instruction.
func (i Instruction) Flow() Flow {
	switch i.id {
	case chip8.Jp:
		return FlowJump
	case chip8.Call:
		return FlowCall
	case chip8.Ret:
		return FlowReturn
	case chip8.InvalidOpcodeID:
		return FlowNone
	}
	if chip8.SkipInstructions.Contains(i.ins.Name) {
		return FlowSkip
	}
	return FlowNone
}

// Target returns the absolute destination of JP addr and CALL addr.
// JP V0, addr depends on a register and has no static target.
func (i Instruction) Target() (uint16, bool) {
	switch {
	case i.id == chip8.Call, i.id == chip8.Jp && i.opcode&0xF000 == 0x1000:
		return i.opcode & 0x0FFF, true
	}
	return 0, false
}

// String returns the instruction in assembly notation, for example "ld I, $123".
// Words that do not decode are printed as a data word.
func (i Instruction) String() string {
	if i.ins == nil {
		return fmt.Sprintf(".word $%04X", i.opcode)
	}
	if params := formatParams(i.id, i.opcode); params != "" {
		return i.ins.Name + " " + params
	}
	return i.ins.Name
}
