package chip8

// Step performs one fetch-decode-execute cycle using the given keypad state.
// An error leaves the machine state unchanged.
func (c *Chip8) Step(keys Keypad) error {
	opcode, err := c.fetch()
	if err != nil {
		return err
	}
	return c.execute(opcode, keys)
}

// fetch reads the big-endian instruction word at PC.
func (c *Chip8) fetch() (uint16, error) {
	hi, err := c.memory.Read(c.pc)
	if err != nil {
		return 0, err
	}
	lo, err := c.memory.Read(c.pc + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// extractX extracts the X register nibble from an opcode.
func extractX(opcode uint16) byte {
	return byte((opcode & 0x0F00) >> 8)
}

// extractY extracts the Y register nibble from an opcode.
func extractY(opcode uint16) byte {
	return byte((opcode & 0x00F0) >> 4)
}

func extractN(opcode uint16) byte {
	return byte(opcode & 0x000F)
}

func extractNN(opcode uint16) byte {
	return byte(opcode & 0x00FF)
}

func extractNNN(opcode uint16) uint16 {
	return opcode & 0x0FFF
}

func (c *Chip8) execute(opcode uint16, keys Keypad) error {
	switch opcode & 0xF000 {
	case 0x0000:
		return c.executeSystem(opcode)

	case 0x1000: // JP addr
		c.pc = extractNNN(opcode)

	case 0x2000: // CALL addr
		if err := c.stack.Push(c.pc); err != nil {
			return err
		}
		c.pc = extractNNN(opcode)

	case 0x3000: // SE Vx, byte
		c.skipIf(c.v[extractX(opcode)] == extractNN(opcode))

	case 0x4000: // SNE Vx, byte
		c.skipIf(c.v[extractX(opcode)] != extractNN(opcode))

	case 0x5000: // SE Vx, Vy
		// only 5XY0 is defined, a nonzero low nibble is rejected instead of ignored
		if extractN(opcode) != 0 {
			return c.unsupported(opcode)
		}
		c.skipIf(c.v[extractX(opcode)] == c.v[extractY(opcode)])

	case 0x6000: // LD Vx, byte
		c.v[extractX(opcode)] = extractNN(opcode)
		c.pc += 2

	case 0x7000: // ADD Vx, byte
		c.v[extractX(opcode)] += extractNN(opcode)
		c.pc += 2

	case 0x8000:
		return c.executeALU(opcode)

	case 0x9000: // SNE Vx, Vy
		// only 9XY0 is defined, as for 5XY0
		if extractN(opcode) != 0 {
			return c.unsupported(opcode)
		}
		c.skipIf(c.v[extractX(opcode)] != c.v[extractY(opcode)])

	case 0xA000: // LD I, addr
		c.i = extractNNN(opcode)
		c.pc += 2

	case 0xB000: // JP V0, addr
		c.pc = extractNNN(opcode) + uint16(c.v[0])

	case 0xC000: // RND Vx, byte
		c.v[extractX(opcode)] = c.random.RandomByte() & extractNN(opcode)
		c.pc += 2

	case 0xD000:
		return c.drawSprite(opcode)

	case 0xE000:
		return c.executeKey(opcode, keys)

	case 0xF000:
		return c.executeMisc(opcode, keys)
	}
	return nil
}

// executeSystem handles the 0NNN family, of which only CLS and RET are supported.
func (c *Chip8) executeSystem(opcode uint16) error {
	switch opcode {
	case 0x00E0: // CLS
		c.display.Clear()
		c.pc += 2

	case 0x00EE: // RET
		address, err := c.stack.Pop()
		if err != nil {
			return err
		}
		c.pc = address + 2

	default:
		return c.unsupported(opcode)
	}
	return nil
}

// executeALU handles the 8XYN register arithmetic family.
func (c *Chip8) executeALU(opcode uint16) error {
	x, y := extractX(opcode), extractY(opcode)
	vx, vy := c.v[x], c.v[y]

	switch extractN(opcode) {
	case 0x0: // LD Vx, Vy
		c.v[x] = vy
	case 0x1: // OR Vx, Vy
		c.v[x] = vx | vy
	case 0x2: // AND Vx, Vy
		c.v[x] = vx & vy
	case 0x3: // XOR Vx, Vy
		c.v[x] = vx ^ vy
	case 0x4: // ADD Vx, Vy
		sum := uint16(vx) + uint16(vy)
		c.v[x] = byte(sum)
		c.v[flagRegister] = boolToByte(sum > 0xFF)
	case 0x5: // SUB Vx, Vy
		c.v[x] = vx - vy
		c.v[flagRegister] = boolToByte(vx > vy)
	case 0x6: // SHR Vx
		c.v[x] = vx >> 1
		c.v[flagRegister] = vx & 0x01
	case 0x7: // SUBN Vx, Vy
		c.v[x] = vy - vx
		c.v[flagRegister] = boolToByte(vy >= vx)
	case 0xE: // SHL Vx
		c.v[x] = vx << 1
		c.v[flagRegister] = vx >> 7
	default:
		return c.unsupported(opcode)
	}

	c.pc += 2
	return nil
}

// drawSprite handles DRW Vx, Vy, n: XOR an 8 pixel wide sprite of n rows
// read from I onto the display, wrapping at the edges. VF reports whether
// any set pixel was turned off.
func (c *Chip8) drawSprite(opcode uint16) error {
	height := int(extractN(opcode))
	if err := checkRange(c.i, height); err != nil {
		return err
	}

	originX := int(c.v[extractX(opcode)])
	originY := int(c.v[extractY(opcode)])
	c.v[flagRegister] = 0

	for row := range height {
		line := c.memory.data[int(c.i)+row]
		y := (originY + row) % DisplayHeight
		for col := range 8 {
			if line&(0x80>>col) == 0 {
				continue
			}
			x := (originX + col) % DisplayWidth
			if c.display.XorPixel(y, x) {
				c.v[flagRegister] = 1
			}
		}
	}

	c.display.markDirty()
	c.pc += 2
	return nil
}

// executeKey handles the EX9E and EXA1 keypad skip instructions.
func (c *Chip8) executeKey(opcode uint16, keys Keypad) error {
	pressed := keys.Pressed(c.v[extractX(opcode)])

	switch extractNN(opcode) {
	case 0x9E: // SKP Vx
		c.skipIf(pressed)
	case 0xA1: // SKNP Vx
		c.skipIf(!pressed)
	default:
		return c.unsupported(opcode)
	}
	return nil
}

// executeMisc handles the FXNN family: timers, keypad wait, index and memory transfer.
func (c *Chip8) executeMisc(opcode uint16, keys Keypad) error {
	x := extractX(opcode)

	switch extractNN(opcode) {
	case 0x07: // LD Vx, DT
		c.v[x] = c.delayTimer

	case 0x0A: // LD Vx, K
		key, ok := keys.FirstPressed()
		if !ok {
			return nil // poll again on the next step
		}
		c.v[x] = key

	case 0x15: // LD DT, Vx
		c.delayTimer = c.v[x]

	case 0x18: // LD ST, Vx
		c.soundTimer = c.v[x]

	case 0x1E: // ADD I, Vx
		c.i += uint16(c.v[x])

	case 0x29: // LD F, Vx
		c.i = GlyphStart + uint16(c.v[x])*GlyphSize

	case 0x33: // LD B, Vx
		if err := checkRange(c.i, 3); err != nil {
			return err
		}
		value := c.v[x]
		c.memory.data[c.i] = value / 100
		c.memory.data[c.i+1] = value / 10 % 10
		c.memory.data[c.i+2] = value % 10

	case 0x55: // LD [I], Vx
		count := int(x) + 1
		if err := checkRange(c.i, count); err != nil {
			return err
		}
		copy(c.memory.data[c.i:], c.v[:count])

	case 0x65: // LD Vx, [I]
		count := int(x) + 1
		if err := checkRange(c.i, count); err != nil {
			return err
		}
		copy(c.v[:count], c.memory.data[c.i:])
		c.i += uint16(count)

	default:
		return c.unsupported(opcode)
	}

	c.pc += 2
	return nil
}

// skipIf advances past the next instruction if condition holds.
func (c *Chip8) skipIf(condition bool) {
	if condition {
		c.pc += 4
	} else {
		c.pc += 2
	}
}

func (c *Chip8) unsupported(opcode uint16) error {
	return &UnsupportedOpcodeError{Word: opcode, PC: c.pc}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
