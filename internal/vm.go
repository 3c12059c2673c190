package internal

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// CHIP-8 VM constants
const (
	stackDepth = 16

	// TimerFrequency is the rate in Hz the delay and sound timers count down at
	TimerFrequency = 60
)

// Mode is the execution state of the VM
type Mode int

// Execution modes
const (
	Running Mode = iota
	// AwaitingKey is entered by Fx0A when no key is held
	AwaitingKey
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// C8VM is an emulated CHIP-8 VM
type C8VM struct {
	opcode     uint16             // 16-bit opcode of the current instruction
	regV       [16]uint8          // 16 general purpose 8-bit registers
	regI       uint16             // 16-bit register that is generally used to store memory addresses
	delayTimer uint8              // Delay timer
	soundTimer uint8              // Sound timer
	pc         uint16             // Program counter
	sp         uint8              // Stack pointer
	stack      [stackDepth]uint16 // Return addresses
	memory     Memory             // 4 KB global memory

	mode    Mode
	waitReg uint8 // register Fx0A stores the key in

	keys   Keys
	pixels Display

	program []byte // kept for Reset

	quirks        Quirks
	coupledTimers bool
	trace         bool
	rand          *rand.Rand
	logger        *log.Logger
}

// Option configures a C8VM
type Option func(*C8VM)

// WithLogger sets the logger used for trace and warning output
func WithLogger(logger *log.Logger) Option {
	return func(vm *C8VM) {
		vm.logger = logger
	}
}

// WithQuirks selects the dialect behaviours
func WithQuirks(q Quirks) Option {
	return func(vm *C8VM) {
		vm.quirks = q
	}
}

// WithSeed seeds the generator behind Cxkk
func WithSeed(seed int64) Option {
	return func(vm *C8VM) {
		vm.rand = rand.New(rand.NewSource(seed))
	}
}

// WithCoupledTimers makes every Step decrement the timers instead of
// leaving it to TickTimers.
func WithCoupledTimers(coupled bool) Option {
	return func(vm *C8VM) {
		vm.coupledTimers = coupled
	}
}

// WithTrace logs every executed instruction at debug level
func WithTrace(trace bool) Option {
	return func(vm *C8VM) {
		vm.trace = trace
	}
}

// NewC8VM creates a new instance of an emulated CHIP-8 VM
func NewC8VM(opts ...Option) *C8VM {
	vm := &C8VM{}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.rand == nil {
		vm.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if vm.logger == nil {
		vm.logger = log.NewWithConfig(log.DefaultConfig())
	}
	vm.Reset()
	return vm
}

// Reset restores the power-on state. A loaded program stays in memory.
func (vm *C8VM) Reset() {
	vm.opcode = 0
	vm.regV = [16]uint8{}
	vm.regI = 0
	vm.delayTimer = 0
	vm.soundTimer = 0
	vm.pc = pcStartAddr
	vm.sp = 0
	vm.stack = [stackDepth]uint16{}
	vm.memory = Memory{}
	vm.memory.loadFont()
	copy(vm.memory[pcStartAddr:], vm.program)
	vm.mode = Running
	vm.waitReg = 0
	vm.keys = Keys{}
	vm.pixels = Display{}
}

// Load copies program into memory at 0x200. Programs larger than the 3584
// bytes available are rejected and leave memory untouched.
func (vm *C8VM) Load(program []byte) error {
	if len(program) > maxProgramSize {
		return fmt.Errorf("%w: %d bytes, %d available", ErrProgramTooLarge, len(program), maxProgramSize)
	}
	vm.program = append([]byte(nil), program...)
	vm.Reset()
	return nil
}

// LoadProgram loads a given CHIP-8 program file into the VM's memory
func (vm *C8VM) LoadProgram(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	if err := vm.Load(data); err != nil {
		return err
	}
	vm.logger.Info("Program loaded",
		log.String("file", filename),
		log.Int("size", len(data)),
	)
	return nil
}

// SetKeys replaces the keypad snapshot read by Ex9E, ExA1 and Fx0A
func (vm *C8VM) SetKeys(keys Keys) {
	vm.keys = keys
}

// TickTimers counts the delay and sound timers down by one
func (vm *C8VM) TickTimers() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}
	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// Display returns a copy of the framebuffer
func (vm *C8VM) Display() Display {
	return vm.pixels
}

// Pixel reports whether the pixel at x, y is lit
func (vm *C8VM) Pixel(x, y int) bool {
	return vm.pixels.Pixel(x, y)
}

// SoundActive reports whether the sound timer is running
func (vm *C8VM) SoundActive() bool {
	return vm.soundTimer > 0
}

// Memory returns a copy of the address space
func (vm *C8VM) Memory() Memory {
	return vm.memory
}

// State is a snapshot of the CPU registers
type State struct {
	V            [16]uint8
	I            uint16
	PC           uint16
	Stack        []uint16
	DelayTimer   uint8
	SoundTimer   uint8
	Mode         Mode
	WaitRegister uint8
}

// State returns a snapshot of the CPU registers
func (vm *C8VM) State() State {
	return State{
		V:            vm.regV,
		I:            vm.regI,
		PC:           vm.pc,
		Stack:        append([]uint16(nil), vm.stack[:vm.sp]...),
		DelayTimer:   vm.delayTimer,
		SoundTimer:   vm.soundTimer,
		Mode:         vm.mode,
		WaitRegister: vm.waitReg,
	}
}
