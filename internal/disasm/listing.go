package disasm

import (
	"fmt"
	"io"
)

// List writes one line per instruction word of the ROM, addressed as if the
// ROM was loaded at base. Instructions that are the destination of a JP or
// CALL inside the ROM are preceded by a label line. A trailing odd byte is
// written as a data byte.
func List(w io.Writer, rom []byte, base uint16) error {
	labels := collectLabels(rom, base)

	for offset := 0; offset+1 < len(rom); offset += 2 {
		address := int(base) + offset
		if label, ok := labels[uint16(address)]; ok {
			if _, err := fmt.Fprintf(w, "%s_%03X:\n", label, address); err != nil {
				return fmt.Errorf("writing listing label: %w", err)
			}
		}

		opcode := uint16(rom[offset])<<8 | uint16(rom[offset+1])
		ins, _ := Decode(opcode)
		if _, err := fmt.Fprintf(w, "$%03X  %04X  %s\n", address, opcode, ins); err != nil {
			return fmt.Errorf("writing listing line: %w", err)
		}
	}

	if len(rom)%2 == 1 {
		last := len(rom) - 1
		if _, err := fmt.Fprintf(w, "$%03X  %02X    .byte $%02X\n", int(base)+last, rom[last], rom[last]); err != nil {
			return fmt.Errorf("writing listing line: %w", err)
		}
	}
	return nil
}

// collectLabels maps the word aligned destinations of static jumps and calls
// inside the ROM to a label prefix. A call destination is a subroutine even if
// it is also jumped to.
func collectLabels(rom []byte, base uint16) map[uint16]string {
	labels := map[uint16]string{}
	end := int(base) + len(rom) - len(rom)%2

	for offset := 0; offset+1 < len(rom); offset += 2 {
		ins, ok := Decode(uint16(rom[offset])<<8 | uint16(rom[offset+1]))
		if !ok {
			continue
		}
		target, ok := ins.Target()
		if !ok || int(target) < int(base) || int(target) >= end || (target-base)%2 != 0 {
			continue
		}

		if ins.Flow() == FlowCall {
			labels[target] = "sub"
		} else if _, exists := labels[target]; !exists {
			labels[target] = "branch"
		}
	}
	return labels
}
