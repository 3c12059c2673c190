// Package config handles command line options and logger setup
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/clock"
	"github.com/retroenv/retrogolib/log"
)

// Options are the settings shared by all frontends
type Options struct {
	Program string

	Rate  int
	Scale int
	Seed  int64

	ShiftVx       bool
	JumpVx        bool
	Wrap          bool
	IndexFlag     string
	CoupledTimers bool

	Trace bool
	Debug bool
	Quiet bool

	StatsView bool
	MemViz    string
}

// UsageError is returned for invalid command line arguments
type UsageError struct {
	err   error
	flags *flag.FlagSet
}

func (e *UsageError) Error() string {
	return e.err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.err
}

// ShowUsage prints the usage text of the flag set
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] <CHIP-8 program>\n\n", e.flags.Name())
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
}

// ParseFlags parses args (without the program name) into Options
func ParseFlags(name string, args []string) (Options, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	flags.IntVar(&opts.Rate, "rate", clock.DefaultRate, "instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", 20, "window pixels per CHIP-8 pixel")
	flags.Int64Var(&opts.Seed, "seed", 0, "seed for the RND instruction, 0 picks one from the clock")
	flags.BoolVar(&opts.ShiftVx, "shift-vx", false, "8xy6/8xyE shift Vx in place instead of shifting Vy")
	flags.BoolVar(&opts.JumpVx, "jump-vx", false, "Bnnn adds Vx instead of V0")
	flags.BoolVar(&opts.Wrap, "wrap", false, "wrap sprites around the screen edges instead of clipping")
	flags.StringVar(&opts.IndexFlag, "index-flag", "carry16", "VF behaviour of Fx1E: carry16, carry12 or none")
	flags.BoolVar(&opts.CoupledTimers, "coupled-timers", false, "decrement timers on every instruction instead of at 60 Hz")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction (implies -debug)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")
	flags.BoolVar(&opts.StatsView, "statsview", false, "serve runtime statistics over HTTP")
	flags.StringVar(&opts.MemViz, "memviz", "", "write a graphviz dump of the VM state to this file on exit")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{err: err, flags: flags}
	}
	if flags.NArg() != 1 {
		return opts, &UsageError{err: errors.New("expected exactly one program file"), flags: flags}
	}
	opts.Program = flags.Arg(0)
	if opts.Trace {
		opts.Debug = true
	}

	if err := opts.Validate(); err != nil {
		return opts, &UsageError{err: err, flags: flags}
	}
	return opts, nil
}

// Validate checks value ranges
func (o Options) Validate() error {
	if o.Rate < clock.MinRate || o.Rate > clock.MaxRate {
		return fmt.Errorf("rate %d out of range %d-%d", o.Rate, clock.MinRate, clock.MaxRate)
	}
	if o.Scale < 1 || o.Scale > 64 {
		return fmt.Errorf("scale %d out of range 1-64", o.Scale)
	}
	if _, err := parseIndexFlag(o.IndexFlag); err != nil {
		return err
	}
	if o.Debug && o.Quiet {
		return errors.New("-debug and -q are mutually exclusive")
	}
	return nil
}

// Quirks maps the dialect flags onto internal.Quirks
func (o Options) Quirks() internal.Quirks {
	var q internal.Quirks
	if o.ShiftVx {
		q.Shift = internal.ShiftVx
	}
	if o.JumpVx {
		q.Jump = internal.JumpVx
	}
	if o.Wrap {
		q.Edge = internal.EdgeWrap
	}
	q.IndexFlag, _ = parseIndexFlag(o.IndexFlag)
	return q
}

// VMOptions returns the options for internal.NewC8VM
func (o Options) VMOptions(logger *log.Logger) []internal.Option {
	opts := []internal.Option{
		internal.WithLogger(logger),
		internal.WithQuirks(o.Quirks()),
		internal.WithCoupledTimers(o.CoupledTimers),
		internal.WithTrace(o.Trace),
	}
	if o.Seed != 0 {
		opts = append(opts, internal.WithSeed(o.Seed))
	}
	return opts
}

func parseIndexFlag(s string) (internal.IndexFlag, error) {
	switch s {
	case "", "carry16":
		return internal.IndexCarry16, nil
	case "carry12":
		return internal.IndexCarry12, nil
	case "none":
		return internal.IndexFlagNone, nil
	default:
		return internal.IndexCarry16, fmt.Errorf("unknown index-flag mode '%s'", s)
	}
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
