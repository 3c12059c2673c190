// Package clock converts elapsed wall time into instruction cycles and
// 60 Hz timer ticks. The two rates are independent so changing the
// emulation speed does not change how fast the delay and sound timers run.
package clock

import (
	"errors"
	"time"
)

// Rate limits
const (
	DefaultRate = 700
	MinRate     = 1
	MaxRate     = 10000

	TimerRate = 60

	// maxBacklog caps the work owed after a stall (window drag, debugger)
	// so the VM does not try to catch up on seconds of cycles at once.
	maxBacklog = 250 * time.Millisecond
)

// ErrInvalidRate is returned by New for rates outside MinRate..MaxRate
var ErrInvalidRate = errors.New("instruction rate out of range")

// Pacer accumulates elapsed time and hands out whole cycles and ticks
type Pacer struct {
	cyclePeriod time.Duration
	tickPeriod  time.Duration

	cycleDebt time.Duration
	tickDebt  time.Duration
}

// New returns a Pacer running rate instructions per second
func New(rate int) (*Pacer, error) {
	if rate < MinRate || rate > MaxRate {
		return nil, ErrInvalidRate
	}
	return &Pacer{
		cyclePeriod: time.Second / time.Duration(rate),
		tickPeriod:  time.Second / TimerRate,
	}, nil
}

// Advance adds elapsed to the pacer and returns the number of instruction
// cycles and timer ticks now due.
func (p *Pacer) Advance(elapsed time.Duration) (cycles, ticks int) {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > maxBacklog {
		elapsed = maxBacklog
	}

	p.cycleDebt += elapsed
	cycles = int(p.cycleDebt / p.cyclePeriod)
	p.cycleDebt -= time.Duration(cycles) * p.cyclePeriod

	p.tickDebt += elapsed
	ticks = int(p.tickDebt / p.tickPeriod)
	p.tickDebt -= time.Duration(ticks) * p.tickPeriod

	return cycles, ticks
}

// Interval is how long a frontend should sleep between Advance calls
func (p *Pacer) Interval() time.Duration {
	if p.cyclePeriod > p.tickPeriod {
		return p.tickPeriod
	}
	return p.cyclePeriod
}
