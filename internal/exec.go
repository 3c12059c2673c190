package internal

import (
	"github.com/mnafees/chopper/v2/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

// Cycle describes one executed instruction cycle
type Cycle struct {
	PC      uint16 // address the opcode was fetched from
	Opcode  uint16
	Redraw  bool // the framebuffer changed
	Waiting bool // Fx0A is still waiting for a key
}

// Step executes exactly one instruction cycle against the current key
// snapshot. Errors are *ExecError values; see IsFatal.
func (vm *C8VM) Step() (Cycle, error) {
	if vm.mode == AwaitingKey {
		if vm.coupledTimers {
			vm.TickTimers()
		}
		return vm.awaitKey(), nil
	}

	c := Cycle{PC: vm.pc}
	op, err := vm.fetch()
	if err != nil {
		return c, &ExecError{PC: c.PC, Err: err}
	}
	c.Opcode = op
	vm.opcode = op
	vm.pc += 2
	if vm.coupledTimers {
		vm.TickTimers()
	}

	if vm.trace {
		vm.logger.Debug("Executing",
			log.Hex("pc", c.PC),
			log.Hex("opcode", op),
			log.String("instruction", disasm.Instruction(op)),
		)
	}

	redraw, err := vm.execute(op)
	if err != nil {
		return c, &ExecError{PC: c.PC, Opcode: op, Err: err}
	}
	c.Redraw = redraw
	c.Waiting = vm.mode == AwaitingKey
	return c, nil
}

func (vm *C8VM) fetch() (uint16, error) {
	hi, err := vm.memory.Read(int(vm.pc))
	if err != nil {
		return 0, err
	}
	lo, err := vm.memory.Read(int(vm.pc) + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// awaitKey completes a pending Fx0A once a key is held. The PC still points
// at the Fx0A instruction while waiting.
func (vm *C8VM) awaitKey() Cycle {
	c := Cycle{PC: vm.pc, Opcode: vm.opcode, Waiting: true}
	key, ok := vm.keys.First()
	if !ok {
		return c
	}
	vm.regV[vm.waitReg] = key
	vm.pc += 2
	vm.mode = Running
	c.Waiting = false
	return c
}

// execute dispatches op. The PC has already been advanced past op.
func (vm *C8VM) execute(op uint16) (bool, error) {
	x := uint8((op >> 8) & 0x000F) // the lower 4 bits of the high byte of the instruction
	y := uint8((op >> 4) & 0x000F) // the upper 4 bits of the low byte of the instruction
	n := uint8(op & 0x000F)        // the lowest 4 bits of the instruction
	kk := uint8(op & 0x00FF)       // the lowest 8 bits of the instruction
	nnn := op & 0x0FFF             // the lowest 12 bits of the instruction

	switch op & 0xF000 { // Compare against the first 4 bits of the instruction only
	case 0x0000:
		if x != 0 { // SYS nnn
			vm.logger.Warn("Ignoring machine code routine",
				log.Hex("pc", vm.pc-2),
				log.Hex("opcode", op),
			)
			return false, ErrIgnoredOpcode
		}
		switch kk {
		case 0xE0: // CLS
			return vm.pixels.clear(), nil
		case 0xEE: // RET
			if vm.sp == 0 {
				return false, ErrStackUnderflow
			}
			vm.sp--
			vm.pc = vm.stack[vm.sp]
		default:
			return false, ErrUnknownOpcode
		}
	case 0x1000: // JP nnn
		vm.pc = nnn
	case 0x2000: // CALL nnn
		if int(vm.sp) >= stackDepth {
			return false, ErrStackOverflow
		}
		vm.stack[vm.sp] = vm.pc
		vm.sp++
		vm.pc = nnn
	case 0x3000: // SE Vx, kk
		if vm.regV[x] == kk {
			vm.pc += 2
		}
	case 0x4000: // SNE Vx, kk
		if vm.regV[x] != kk {
			vm.pc += 2
		}
	case 0x5000: // SE Vx, Vy
		if vm.regV[x] == vm.regV[y] {
			vm.pc += 2
		}
	case 0x6000: // LD Vx, kk
		vm.regV[x] = kk
	case 0x7000: // ADD Vx, kk
		vm.regV[x] += kk
	case 0x8000:
		return false, vm.alu(x, y, n)
	case 0x9000: // SNE Vx, Vy
		if vm.regV[x] != vm.regV[y] {
			vm.pc += 2
		}
	case 0xA000: // LD I, nnn
		vm.regI = nnn
	case 0xB000: // JP V0, nnn
		if vm.quirks.Jump == JumpVx {
			vm.pc = nnn + uint16(vm.regV[x])
		} else {
			vm.pc = nnn + uint16(vm.regV[0])
		}
	case 0xC000: // RND Vx, kk
		vm.regV[x] = uint8(vm.rand.Intn(256)) & kk
	case 0xD000: // DRW Vx, Vy, n
		return vm.drawSprite(vm.regV[x], vm.regV[y], n)
	case 0xE000:
		switch kk {
		case 0x9E: // SKP Vx
			pressed, err := vm.keyHeld(x)
			if err != nil {
				return false, err
			}
			if pressed {
				vm.pc += 2
			}
		case 0xA1: // SKNP Vx
			pressed, err := vm.keyHeld(x)
			if err != nil {
				return false, err
			}
			if !pressed {
				vm.pc += 2
			}
		default:
			return false, ErrUnknownOpcode
		}
	case 0xF000:
		return false, vm.misc(x, kk)
	}
	return false, nil
}

// keyHeld reports whether the key named by Vx is held
func (vm *C8VM) keyHeld(x uint8) (bool, error) {
	key := vm.regV[x]
	if int(key) >= KeyCount {
		return false, ErrInvalidKey
	}
	return vm.keys.Pressed(key), nil
}

// alu executes the 8xyn register arithmetic family. VF is always written
// after the result so the flag wins when x is 0xF.
func (vm *C8VM) alu(x, y, n uint8) error {
	switch n {
	case 0x0: // LD Vx, Vy
		vm.regV[x] = vm.regV[y]
	case 0x1: // OR Vx, Vy
		vm.regV[x] |= vm.regV[y]
	case 0x2: // AND Vx, Vy
		vm.regV[x] &= vm.regV[y]
	case 0x3: // XOR Vx, Vy
		vm.regV[x] ^= vm.regV[y]
	case 0x4: // ADD Vx, Vy
		sum := uint16(vm.regV[x]) + uint16(vm.regV[y])
		vm.regV[x] = uint8(sum & 0xFF)
		vm.regV[0xF] = flag(sum > 0xFF)
	case 0x5: // SUB Vx, Vy
		noBorrow := vm.regV[x] >= vm.regV[y]
		vm.regV[x] -= vm.regV[y]
		vm.regV[0xF] = flag(noBorrow)
	case 0x6: // SHR Vx {, Vy}
		val := vm.shiftOperand(x, y)
		vm.storeShift(x, y, val>>1)
		vm.regV[0xF] = val & 0x1
	case 0x7: // SUBN Vx, Vy
		noBorrow := vm.regV[y] >= vm.regV[x]
		vm.regV[x] = vm.regV[y] - vm.regV[x]
		vm.regV[0xF] = flag(noBorrow)
	case 0xE: // SHL Vx {, Vy}
		val := vm.shiftOperand(x, y)
		vm.storeShift(x, y, val<<1)
		vm.regV[0xF] = (val >> 7) & 0x1
	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (vm *C8VM) shiftOperand(x, y uint8) uint8 {
	if vm.quirks.Shift == ShiftVx {
		return vm.regV[x]
	}
	return vm.regV[y]
}

func (vm *C8VM) storeShift(x, y, result uint8) {
	if vm.quirks.Shift == ShiftVy {
		vm.regV[y] = result
	}
	vm.regV[x] = result
}

// misc executes the Fxkk family
func (vm *C8VM) misc(x, kk uint8) error {
	switch kk {
	case 0x07: // LD Vx, DT
		vm.regV[x] = vm.delayTimer
	case 0x0A: // LD Vx, K
		if key, ok := vm.keys.First(); ok {
			vm.regV[x] = key
			return nil
		}
		vm.pc -= 2
		vm.mode = AwaitingKey
		vm.waitReg = x
	case 0x15: // LD DT, Vx
		vm.delayTimer = vm.regV[x]
	case 0x18: // LD ST, Vx
		vm.soundTimer = vm.regV[x]
	case 0x1E: // ADD I, Vx
		sum := uint32(vm.regI) + uint32(vm.regV[x])
		switch vm.quirks.IndexFlag {
		case IndexCarry16:
			vm.regV[0xF] = flag(sum > 0xFFFF)
		case IndexCarry12:
			vm.regV[0xF] = flag(sum > 0xFFF)
		}
		vm.regI = uint16(sum & 0xFFF)
	case 0x29: // LD F, Vx
		vm.regI = uint16(vm.regV[x])*glyphSize + fontStartAddr
	case 0x33: // LD B, Vx
		v := vm.regV[x]
		for i, digit := range [3]uint8{v / 100, (v / 10) % 10, v % 10} {
			if err := vm.memory.Write(int(vm.regI)+i, digit); err != nil {
				return err
			}
		}
	case 0x55: // LD [I], Vx
		for i := 0; i <= int(x); i++ {
			if err := vm.memory.Write(int(vm.regI)+i, vm.regV[i]); err != nil {
				return err
			}
		}
	case 0x65: // LD Vx, [I]
		for i := 0; i <= int(x); i++ {
			b, err := vm.memory.Read(int(vm.regI) + i)
			if err != nil {
				return err
			}
			vm.regV[i] = b
		}
	default:
		return ErrUnknownOpcode
	}
	return nil
}

// drawSprite XORs the n byte sprite at I onto the screen at Vx, Vy. VF is
// set when a lit pixel is turned off.
func (vm *C8VM) drawSprite(vx, vy, n uint8) (bool, error) {
	x0 := int(vx) % ScreenWidth
	y0 := int(vy) % ScreenHeight
	wrap := vm.quirks.Edge == EdgeWrap

	vm.regV[0xF] = 0
	redraw := false
	for i := 0; i < int(n); i++ {
		y := y0 + i
		if y >= ScreenHeight {
			if !wrap {
				break
			}
			y %= ScreenHeight
		}
		row, err := vm.memory.Read(int(vm.regI) + i)
		if err != nil {
			return redraw, err
		}
		collision, changed := vm.pixels.xorRow(x0, y, row, wrap)
		if collision {
			vm.regV[0xF] = 1
		}
		redraw = redraw || changed
	}
	return redraw, nil
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Run executes cycles instruction cycles followed by ticks timer ticks, the
// work one frontend frame owes. It stops at the first fatal error and
// reports whether any cycle changed the framebuffer.
func (vm *C8VM) Run(cycles, ticks int) (bool, error) {
	redraw := false
	for i := 0; i < cycles; i++ {
		c, err := vm.Step()
		if IsFatal(err) {
			return redraw, err
		}
		redraw = redraw || c.Redraw
	}
	for i := 0; i < ticks; i++ {
		vm.TickTimers()
	}
	return redraw, nil
}
