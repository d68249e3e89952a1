package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected string
	}{
		{"clear screen", 0x00E0, chip8.ClsName},
		{"return", 0x00EE, chip8.RetName},
		{"jump", 0x1234, chip8.JpName + " $234"},
		{"jump offset", 0xB210, chip8.JpName + " V0, $210"},
		{"call", 0x2ABC, chip8.CallName + " $ABC"},
		{"skip immediate", 0x3A42, chip8.SeName + " VA, $42"},
		{"skip registers", 0x9120, chip8.SneName + " V1, V2"},
		{"load immediate", 0x6B07, chip8.LdName + " VB, $07"},
		{"load index", 0xA123, chip8.LdName + " I, $123"},
		{"add immediate", 0x7301, chip8.AddName + " V3, $01"},
		{"add registers", 0x8124, chip8.AddName + " V1, V2"},
		{"add index", 0xF41E, chip8.AddName + " I, V4"},
		{"xor", 0x8123, chip8.XorName + " V1, V2"},
		{"shift left", 0x850E, chip8.ShlName + " V5"},
		{"random", 0xC40F, chip8.RndName + " V4, $0F"},
		{"draw", 0xD015, chip8.DrwName + " V0, V1, $5"},
		{"skip key", 0xE29E, chip8.SkpName + " V2"},
		{"wait key", 0xF70A, chip8.LdName + " V7, K"},
		{"glyph", 0xF229, chip8.LdName + " F, V2"},
		{"bcd", 0xF333, chip8.LdName + " B, V3"},
		{"register dump", 0xF555, chip8.LdName + " [I], V5"},
		{"register load", 0xF265, chip8.LdName + " V2, [I]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, ok := Decode(tt.opcode)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, ins.String())
		})
	}
}

func TestDecode_Unknown(t *testing.T) {
	for _, opcode := range []uint16{0xF1FF, 0x5121, 0x812F, 0x0123} {
		ins, ok := Decode(opcode)
		assert.False(t, ok)
		assert.Equal(t, FlowNone, ins.Flow())
		assert.True(t, strings.HasPrefix(ins.String(), ".word $"))
	}
}

func TestInstruction_Flow(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		flow   Flow
		target uint16
		static bool
	}{
		{"jump", 0x1208, FlowJump, 0x208, true},
		{"jump offset", 0xB300, FlowJump, 0, false},
		{"call", 0x2400, FlowCall, 0x400, true},
		{"return", 0x00EE, FlowReturn, 0, false},
		{"skip equal", 0x3000, FlowSkip, 0, false},
		{"skip registers", 0x9010, FlowSkip, 0, false},
		{"skip key", 0xE0A1, FlowSkip, 0, false},
		{"load", 0x6000, FlowNone, 0, false},
		{"clear screen", 0x00E0, FlowNone, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, ok := Decode(tt.opcode)
			assert.True(t, ok)
			assert.Equal(t, tt.flow, ins.Flow())

			target, static := ins.Target()
			assert.Equal(t, tt.static, static)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestFlow_String(t *testing.T) {
	assert.Equal(t, "", FlowNone.String())
	assert.Equal(t, "call", FlowCall.String())
	assert.Equal(t, "skip", FlowSkip.String())
	assert.Equal(t, "", Flow(42).String())
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	err := List(&buf, []byte{0x00, 0xE0, 0xA1, 0x23, 0x7F}, 0x200)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "$200  00E0  "+chip8.ClsName, lines[0])
	assert.Equal(t, "$202  A123  "+chip8.LdName+" I, $123", lines[1])
	assert.Equal(t, "$204  7F    .byte $7F", lines[2])
}

func TestList_Labels(t *testing.T) {
	rom := []byte{
		0x22, 0x08, // $200 call $208
		0x12, 0x04, // $202 jp $204
		0x12, 0x02, // $204 jp $202
		0x13, 0x00, // $206 jp $300, outside the ROM
		0x00, 0xEE, // $208 ret
		0x12, 0x08, // $20A jp $208, already a subroutine
	}

	var buf bytes.Buffer
	assert.NoError(t, List(&buf, rom, 0x200))

	expected := strings.Join([]string{
		"$200  2208  call $208",
		"branch_202:",
		"$202  1204  jp $204",
		"branch_204:",
		"$204  1202  jp $202",
		"$206  1300  jp $300",
		"sub_208:",
		"$208  00EE  ret",
		"$20A  1208  jp $208",
	}, "\n") + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestList_UnalignedTarget(t *testing.T) {
	var buf bytes.Buffer
	// jp $203 points into the middle of an instruction word
	assert.NoError(t, List(&buf, []byte{0x12, 0x03, 0x00, 0xE0}, 0x200))
	assert.False(t, strings.Contains(buf.String(), ":"))
}
