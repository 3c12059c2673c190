package internal

// ShiftSource selects the register 8xy6 and 8xyE shift
type ShiftSource int

// Shift sources
const (
	// ShiftVy shifts Vy, stores the result in both Vy and Vx
	ShiftVy ShiftSource = iota
	// ShiftVx shifts Vx in place and ignores Vy
	ShiftVx
)

// JumpOffset selects the register added to nnn by Bnnn
type JumpOffset int

// Jump offsets
const (
	JumpV0 JumpOffset = iota
	// JumpVx treats the opcode as Bxnn and adds Vx
	JumpVx
)

// EdgeMode selects what Dxyn does with pixels beyond the screen edges
type EdgeMode int

// Edge modes
const (
	EdgeClip EdgeMode = iota
	EdgeWrap
)

// IndexFlag selects how Fx1E sets VF
type IndexFlag int

// Index flag modes
const (
	// IndexCarry16 sets VF when I + Vx carries out of 16 bits
	IndexCarry16 IndexFlag = iota
	// IndexCarry12 sets VF when I + Vx leaves the 12 bit address space
	IndexCarry12
	// IndexFlagNone leaves VF untouched
	IndexFlagNone
)

// Quirks holds the behaviours CHIP-8 dialects disagree on. The zero value
// is the default dialect.
type Quirks struct {
	Shift     ShiftSource
	Jump      JumpOffset
	Edge      EdgeMode
	IndexFlag IndexFlag
}
