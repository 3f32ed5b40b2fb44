// Package emulator holds the host-side plumbing shared by every frontend:
// instruction pacing, the 60 Hz timer clock, fault policy, key mapping and
// ROM loading.
package emulator

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tuboc/chip8/chip8"
)

const (
	// Chip8Frequency is the default instruction rate.
	Chip8Frequency = 60 * 8
	// MaxFrameTime caps the time consumed by one Advance so that a stalled
	// host does not run thousands of instructions to catch up.
	MaxFrameTime = 250 * time.Millisecond
)

// FaultPolicy decides what the runner does when a step faults.
type FaultPolicy int

const (
	// FaultHalt stops the runner on any fault.
	FaultHalt FaultPolicy = iota
	// FaultSkip steps over unsupported opcodes and halts on the rest.
	FaultSkip
	// FaultLog logs unsupported opcodes once and keeps re-executing them,
	// freezing the program in place. Other faults halt.
	FaultLog
)

var faultPolicyNames = map[string]FaultPolicy{
	"halt": FaultHalt,
	"skip": FaultSkip,
	"log":  FaultLog,
}

// ParseFaultPolicy parses halt, skip or log.
func ParseFaultPolicy(s string) (FaultPolicy, error) {
	p, ok := faultPolicyNames[strings.ToLower(s)]
	if !ok {
		return FaultHalt, fmt.Errorf("unknown fault policy %q (want halt, skip or log)", s)
	}
	return p, nil
}

func (p FaultPolicy) String() string {
	for name, v := range faultPolicyNames {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("FaultPolicy(%d)", int(p))
}

// Runner drives a machine from wall-clock time: it executes instructions at
// the configured rate and decays the timers at their own fixed rate.
type Runner struct {
	machine *chip8.Machine
	cycles  *chip8.TimerClock
	timers  *chip8.TimerClock
	policy  FaultPolicy
	logger  *log.Logger
	trace   bool

	paused    bool
	halted    error
	loggedPCs map[uint16]bool
}

type RunnerOption func(*Runner)

// WithCyclesPerSecond sets the instruction rate.
func WithCyclesPerSecond(cps int) RunnerOption {
	return func(r *Runner) {
		r.cycles = chip8.NewTimerClock(cps)
	}
}

// WithTimerHz sets the delay/sound timer rate.
func WithTimerHz(hz int) RunnerOption {
	return func(r *Runner) {
		r.timers = chip8.NewTimerClock(hz)
	}
}

func WithFaultPolicy(p FaultPolicy) RunnerOption {
	return func(r *Runner) {
		r.policy = p
	}
}

func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithTrace logs every executed instruction.
func WithTrace(trace bool) RunnerOption {
	return func(r *Runner) {
		r.trace = trace
	}
}

// WithPaused starts the runner in step mode.
func WithPaused(paused bool) RunnerOption {
	return func(r *Runner) {
		r.paused = paused
	}
}

func NewRunner(m *chip8.Machine, opts ...RunnerOption) *Runner {
	r := &Runner{
		machine:   m,
		cycles:    chip8.NewTimerClock(Chip8Frequency),
		timers:    chip8.NewTimerClock(chip8.TimerHz),
		logger:    log.New(io.Discard, "", 0),
		loggedPCs: map[uint16]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Machine() *chip8.Machine {
	return r.machine
}

func (r *Runner) Paused() bool {
	return r.paused
}

func (r *Runner) SetPaused(paused bool) {
	r.paused = paused
}

// Halted returns the fault that stopped the runner, or nil.
func (r *Runner) Halted() error {
	return r.halted
}

// Advance runs the instructions and timer ticks due after elapsed time. Timer
// ticks are spread evenly across the executed instructions. It reports
// whether the display was drawn.
func (r *Runner) Advance(elapsed time.Duration) (bool, error) {
	if r.halted != nil {
		return false, r.halted
	}
	if r.paused {
		return false, nil
	}
	if elapsed > MaxFrameTime {
		elapsed = MaxFrameTime
	}

	steps := r.cycles.Advance(elapsed)
	ticks := r.timers.Advance(elapsed)

	drawn := false
	done := 0
	for k := 0; k < steps; k++ {
		d, err := r.step()
		drawn = drawn || d
		if err != nil {
			return drawn, err
		}
		for done < ticks && (k+1)*ticks >= (done+1)*steps {
			r.machine.Decay()
			done++
		}
	}
	for ; done < ticks; done++ {
		r.machine.Decay()
	}
	return drawn, nil
}

// RunCycles executes exactly n instructions without touching the timers.
func (r *Runner) RunCycles(n int) (bool, error) {
	if r.halted != nil {
		return false, r.halted
	}
	drawn := false
	for i := 0; i < n; i++ {
		d, err := r.step()
		drawn = drawn || d
		if err != nil {
			return drawn, err
		}
	}
	return drawn, nil
}

// StepOnce executes one instruction even while paused.
func (r *Runner) StepOnce() (bool, error) {
	if r.halted != nil {
		return false, r.halted
	}
	return r.step()
}

// Reload resets the machine and loads rom again, clearing any halt.
func (r *Runner) Reload(rom []byte) error {
	r.machine.Reset()
	if err := r.machine.LoadROM(rom); err != nil {
		return err
	}
	r.halted = nil
	r.loggedPCs = map[uint16]bool{}
	return nil
}

func (r *Runner) step() (bool, error) {
	drawn, err := r.machine.Step()
	if err == nil {
		if r.trace {
			h := r.machine.History()
			r.logger.Print(h[len(h)-1])
		}
		return drawn, nil
	}

	var f *chip8.Fault
	if errors.As(err, &f) && !f.Fatal() {
		switch r.policy {
		case FaultSkip:
			r.logger.Printf("skipping %v", f)
			r.machine.Skip()
			return false, nil
		case FaultLog:
			if !r.loggedPCs[f.PC] {
				r.loggedPCs[f.PC] = true
				r.logger.Printf("%v", f)
			}
			return false, nil
		}
	}

	r.halted = err
	r.logger.Printf("halted: %v", err)
	return false, err
}

// LoadROMFile reads a ROM image from path into m and returns its bytes for
// later reloads.
func LoadROMFile(m *chip8.Machine, path string) ([]byte, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	if err := m.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return rom, nil
}
