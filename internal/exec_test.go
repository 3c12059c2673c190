package internal

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

// runProgram loads program and executes steps cycles
func runProgram(t *testing.T, vm *C8VM, steps int, program ...uint16) {
	t.Helper()
	assert.NoError(t, vm.Load(words(program...)))
	for i := 0; i < steps; i++ {
		if _, err := vm.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestLoadImmediateAllValues(t *testing.T) {
	for kk := 0; kk <= 0xFF; kk++ {
		vm := newTestVM(t)
		runProgram(t, vm, 1, 0x6700|uint16(kk))

		want := [16]uint8{}
		want[7] = uint8(kk)
		assert.Equal(t, want, vm.regV)
	}
}

func TestAddImmediateWraps(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0x730A)))
	vm.regV[3] = 250
	vm.regV[0xF] = 0x42

	_, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(4), vm.regV[3])
	assert.Equal(t, uint8(0x42), vm.regV[0xF])
}

func TestRegisterArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		quirks Quirks
		vx, vy uint8
		wantX  uint8
		wantY  uint8
		wantF  uint8
	}{
		{"LD", 0x8120, Quirks{}, 1, 2, 2, 2, 0xAA},
		{"OR", 0x8121, Quirks{}, 0x0F, 0xF0, 0xFF, 0xF0, 0xAA},
		{"AND", 0x8122, Quirks{}, 0x3C, 0x0F, 0x0C, 0x0F, 0xAA},
		{"XOR", 0x8123, Quirks{}, 0xFF, 0x0F, 0xF0, 0x0F, 0xAA},
		{"ADD carry", 0x8124, Quirks{}, 200, 100, 44, 100, 1},
		{"ADD no carry", 0x8124, Quirks{}, 10, 20, 30, 20, 0},
		{"ADD exactly 255", 0x8124, Quirks{}, 200, 55, 255, 55, 0},
		{"SUB borrow", 0x8125, Quirks{}, 5, 10, 251, 10, 0},
		{"SUB no borrow", 0x8125, Quirks{}, 10, 5, 5, 5, 1},
		{"SUB equal", 0x8125, Quirks{}, 7, 7, 0, 7, 1},
		{"SHR from Vy", 0x8126, Quirks{}, 0xFF, 0x05, 0x02, 0x02, 1},
		{"SHR from Vx", 0x8126, Quirks{Shift: ShiftVx}, 0x04, 0x05, 0x02, 0x05, 0},
		{"SUBN no borrow", 0x8127, Quirks{}, 5, 10, 5, 10, 1},
		{"SUBN borrow", 0x8127, Quirks{}, 10, 5, 251, 5, 0},
		{"SHL from Vy", 0x812E, Quirks{}, 0x01, 0x81, 0x02, 0x02, 1},
		{"SHL from Vx", 0x812E, Quirks{Shift: ShiftVx}, 0x40, 0x81, 0x80, 0x81, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, WithQuirks(tt.quirks))
			assert.NoError(t, vm.Load(words(tt.opcode)))
			vm.regV[1] = tt.vx
			vm.regV[2] = tt.vy
			vm.regV[0xF] = 0xAA

			_, err := vm.Step()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantX, vm.regV[1])
			assert.Equal(t, tt.wantY, vm.regV[2])
			assert.Equal(t, tt.wantF, vm.regV[0xF])
		})
	}
}

func TestFlagWinsOverResultInVF(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0x8F14)))
	vm.regV[0xF] = 200
	vm.regV[1] = 100

	_, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), vm.regV[0xF])
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v1, v2 uint8
		skip   bool
	}{
		{"SE byte equal", 0x3142, 0x42, 0, true},
		{"SE byte differ", 0x3142, 0x41, 0, false},
		{"SNE byte differ", 0x4142, 0x41, 0, true},
		{"SNE byte equal", 0x4142, 0x42, 0, false},
		{"SE reg equal", 0x5120, 9, 9, true},
		{"SE reg differ", 0x5120, 9, 8, false},
		{"SNE reg differ", 0x9120, 9, 8, true},
		{"SNE reg equal", 0x9120, 9, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t)
			assert.NoError(t, vm.Load(words(tt.opcode)))
			vm.regV[1] = tt.v1
			vm.regV[2] = tt.v2

			c, err := vm.Step()
			assert.NoError(t, err)
			assert.Equal(t, uint16(0x200), c.PC)
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, vm.pc)
		})
	}
}

func TestKeySkips(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		pressed bool
		skip    bool
	}{
		{"SKP held", 0xE59E, true, true},
		{"SKP released", 0xE59E, false, false},
		{"SKNP held", 0xE5A1, true, false},
		{"SKNP released", 0xE5A1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t)
			assert.NoError(t, vm.Load(words(tt.opcode)))
			vm.regV[5] = 0xB
			var keys Keys
			keys[0xB] = tt.pressed
			vm.SetKeys(keys)

			_, err := vm.Step()
			assert.NoError(t, err)
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, vm.pc)
		})
	}
}

func TestKeySkipInvalidKey(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0xE59E)))
	vm.regV[5] = 0x10

	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrInvalidKey))
	assert.True(t, IsFatal(err))
}

func TestJumps(t *testing.T) {
	vm := newTestVM(t)
	runProgram(t, vm, 1, 0x1ABC)
	assert.Equal(t, uint16(0xABC), vm.pc)

	vm = newTestVM(t)
	assert.NoError(t, vm.Load(words(0xB300)))
	vm.regV[0] = 0x10
	vm.regV[3] = 0x20
	_, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x310), vm.pc)

	vm = newTestVM(t, WithQuirks(Quirks{Jump: JumpVx}))
	assert.NoError(t, vm.Load(words(0xB300)))
	vm.regV[0] = 0x10
	vm.regV[3] = 0x20
	_, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x320), vm.pc)
}

func TestCallReturn(t *testing.T) {
	vm := newTestVM(t)
	// 0x200: CALL 0x206, 0x202: LD V1, 1, 0x204: JP 0x204, 0x206: RET
	runProgram(t, vm, 1, 0x2206, 0x6101, 0x1204, 0x00EE)
	assert.Equal(t, uint16(0x206), vm.pc)
	assert.Equal(t, []uint16{0x202}, vm.State().Stack)

	_, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x202), vm.pc)
	assert.Empty(t, vm.State().Stack)
}

func TestReturnEmptyStack(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0x00EE)))

	c, err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.True(t, IsFatal(err))

	var execErr *ExecError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x200), execErr.PC)
	assert.Equal(t, uint16(0x00EE), execErr.Opcode)
	assert.Equal(t, uint16(0x00EE), c.Opcode)
}

func TestCallStackOverflow(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0x2200)))
	for i := 0; i < stackDepth; i++ {
		_, err := vm.Step()
		assert.NoError(t, err)
	}
	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestUnknownOpcodes(t *testing.T) {
	for _, op := range []uint16{0x00E1, 0x8128, 0x812F, 0xE100, 0xF1FF, 0xF100} {
		vm := newTestVM(t)
		assert.NoError(t, vm.Load(words(op)))

		_, err := vm.Step()
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
		assert.True(t, IsFatal(err))

		var execErr *ExecError
		assert.True(t, errors.As(err, &execErr))
		assert.Equal(t, op, execErr.Opcode)
		assert.Contains(t, err.Error(), "unknown opcode")
	}
}

func TestIgnoredMachineCodeRoutine(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0x0123, 0x6105)))
	before := vm.State()

	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrIgnoredOpcode))
	assert.False(t, IsFatal(err))

	after := vm.State()
	before.PC += 2
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("state changed: (-want, +got)\n%s", diff)
	}

	_, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(5), vm.regV[1])
}

func TestFetchOutOfRange(t *testing.T) {
	vm := newTestVM(t)
	runProgram(t, vm, 1, 0x1FFF)

	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	assert.True(t, IsFatal(err))
}

func TestIndexInstructions(t *testing.T) {
	vm := newTestVM(t)
	runProgram(t, vm, 1, 0xA123)
	assert.Equal(t, uint16(0x123), vm.regI)

	vm = newTestVM(t)
	assert.NoError(t, vm.Load(words(0xF429)))
	vm.regV[4] = 0xA
	_, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x82), vm.regI)
}

func TestAddIndex(t *testing.T) {
	tests := []struct {
		name  string
		flag  IndexFlag
		i     uint16
		v     uint8
		wantI uint16
		wantF uint8
	}{
		{"carry16 no carry", IndexCarry16, 0x300, 0x10, 0x310, 0},
		{"carry16 past 12 bits", IndexCarry16, 0xFFF, 0x02, 0x001, 0},
		{"carry12 past 12 bits", IndexCarry12, 0xFFF, 0x02, 0x001, 1},
		{"carry12 within", IndexCarry12, 0x100, 0x02, 0x102, 0},
		{"none", IndexFlagNone, 0xFFF, 0x02, 0x001, 0xAA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, WithQuirks(Quirks{IndexFlag: tt.flag}))
			assert.NoError(t, vm.Load(words(0xF31E)))
			vm.regI = tt.i
			vm.regV[3] = tt.v
			vm.regV[0xF] = 0xAA

			_, err := vm.Step()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantI, vm.regI)
			assert.Equal(t, tt.wantF, vm.regV[0xF])
		})
	}
}

func TestBCD(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0xF233)))
	vm.regV[2] = 234
	vm.regI = 0x400

	_, err := vm.Step()
	assert.NoError(t, err)
	mem := vm.Memory()
	assert.Equal(t, []uint8{2, 3, 4}, mem[0x400:0x403])
}

func TestBCDOutOfRange(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0xF233)))
	vm.regI = 0xFFE

	_, err := vm.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestStoreLoadRegisters(t *testing.T) {
	vm := newTestVM(t)
	// LD I, 0x400; LD [I], V3; LD V0, 0; LD V3, 0; LD V3, [I]
	assert.NoError(t, vm.Load(words(0xA400, 0xF355, 0x6000, 0x6300, 0xF365)))
	vm.regV = [16]uint8{1, 2, 3, 4, 5}

	for i := 0; i < 2; i++ {
		_, err := vm.Step()
		assert.NoError(t, err)
	}
	mem := vm.Memory()
	assert.Equal(t, []uint8{1, 2, 3, 4, 0}, mem[0x400:0x405])

	for i := 0; i < 3; i++ {
		_, err := vm.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, [16]uint8{1, 2, 3, 4, 5}, vm.regV)
	assert.Equal(t, uint16(0x400), vm.regI)
}

func TestStoreRegistersOutOfRange(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0xAFFE, 0xF355)))

	_, err := vm.Step()
	assert.NoError(t, err)
	_, err = vm.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestRandom(t *testing.T) {
	a := newTestVM(t, WithSeed(42))
	b := newTestVM(t, WithSeed(42))
	program := []uint16{0xC10F, 0xC2FF, 0xC300}
	runProgram(t, a, 3, program...)
	runProgram(t, b, 3, program...)

	assert.Equal(t, a.regV, b.regV)
	assert.Equal(t, uint8(0), a.regV[1]&0xF0)
	assert.Equal(t, uint8(0), a.regV[3])
}

func TestTimerInstructions(t *testing.T) {
	vm := newTestVM(t)
	// LD V1, 5; LD DT, V1; LD ST, V1; LD V2, DT
	runProgram(t, vm, 3, 0x6105, 0xF115, 0xF118, 0xF207)
	assert.Equal(t, uint8(5), vm.delayTimer)
	assert.Equal(t, uint8(5), vm.soundTimer)

	vm.TickTimers()
	_, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(4), vm.regV[2])
}

func TestTimersDecoupledByDefault(t *testing.T) {
	vm := newTestVM(t)
	runProgram(t, vm, 4, 0x6109, 0xF115, 0x6000, 0x6000)
	assert.Equal(t, uint8(9), vm.delayTimer)
}

func TestCoupledTimers(t *testing.T) {
	vm := newTestVM(t, WithCoupledTimers(true))
	runProgram(t, vm, 4, 0x6109, 0xF115, 0x6000, 0x6000)
	assert.Equal(t, uint8(7), vm.delayTimer)
}

func TestWaitForKey(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0xF50A, 0x6101)))

	for i := 0; i < 5; i++ {
		c, err := vm.Step()
		assert.NoError(t, err)
		assert.True(t, c.Waiting)
		assert.Equal(t, uint16(0x200), vm.pc)
		assert.Equal(t, AwaitingKey, vm.State().Mode)
		assert.Equal(t, uint8(5), vm.State().WaitRegister)
	}

	var keys Keys
	keys[0x9] = true
	keys[0xE] = true
	vm.SetKeys(keys)

	c, err := vm.Step()
	assert.NoError(t, err)
	assert.False(t, c.Waiting)
	assert.Equal(t, uint8(0x9), vm.regV[5])
	assert.Equal(t, uint16(0x202), vm.pc)
	assert.Equal(t, Running, vm.State().Mode)

	_, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), vm.regV[1])
}

func TestWaitForKeyAlreadyHeld(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0xF30A)))
	var keys Keys
	keys[0x4] = true
	vm.SetKeys(keys)

	c, err := vm.Step()
	assert.NoError(t, err)
	assert.False(t, c.Waiting)
	assert.Equal(t, uint8(0x4), vm.regV[3])
	assert.Equal(t, uint16(0x202), vm.pc)
}

func TestWaitForKeyTicksCoupledTimers(t *testing.T) {
	vm := newTestVM(t, WithCoupledTimers(true))
	runProgram(t, vm, 2, 0x6103, 0xF115, 0xF00A)
	assert.Equal(t, uint8(3), vm.delayTimer)

	for i := 0; i < 3; i++ {
		_, err := vm.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, uint8(0), vm.delayTimer)
	assert.Equal(t, AwaitingKey, vm.mode)
}

func TestAddScenario(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load([]byte{0x60, 0x05, 0x61, 0x03, 0x80, 0x14}))
	for i := 0; i < 3; i++ {
		_, err := vm.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, uint8(8), vm.regV[0])
	assert.Equal(t, uint8(0), vm.regV[0xF])
}

func TestRun(t *testing.T) {
	vm := newTestVM(t)
	// LD V0, 3; LD DT, V0; SYS 0x123; DRW V0, V0, 1; JP 0x208
	assert.NoError(t, vm.Load(words(0x6003, 0xF015, 0x0123, 0xD001, 0x1208)))
	vm.regI = fontStartAddr

	redraw, err := vm.Run(2, 0)
	assert.NoError(t, err)
	assert.False(t, redraw)

	redraw, err = vm.Run(10, 2)
	assert.NoError(t, err)
	assert.True(t, redraw)
	assert.Equal(t, uint8(1), vm.delayTimer)
	assert.Equal(t, uint16(0x208), vm.pc)
}

func TestRunStopsOnFatalError(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.Load(words(0x6001, 0x00EE, 0x6002)))

	_, err := vm.Run(3, 1)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint8(1), vm.regV[0])
}
