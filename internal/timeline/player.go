package timeline

import (
	"context"
	"time"

	"energydash/internal/models"
)

// Scheduler is the suspension point between sweep frames.
type Scheduler interface {
	Yield(ctx context.Context) error
}

// TimerScheduler waits Delay between frames.
type TimerScheduler struct {
	Delay time.Duration
}

func (s TimerScheduler) Yield(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Immediate yields without waiting.
type Immediate struct{}

func (Immediate) Yield(ctx context.Context) error { return ctx.Err() }

// Hooks are the effects of the sweep. Each is called once per step and
// runs to completion before the next suspension point.
type Hooks interface {
	// Begin runs before the first frame.
	Begin()
	// Frame shows a single year.
	Frame(year int)
	// Done restores the full range and interactivity.
	Done()
}

// Phase of a Player.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSweeping
	PhaseFinished
)

// Player is the play sweep as an explicit step machine: Begin, one frame per
// year from MinYear to MaxYear each preceded by a Yield, then Done.
type Player struct {
	sched Scheduler
	phase Phase
	year  int
}

// NewPlayer returns an idle player.
func NewPlayer(sched Scheduler) *Player {
	if sched == nil {
		sched = Immediate{}
	}
	return &Player{sched: sched}
}

// Phase returns the current phase.
func (p *Player) Phase() Phase { return p.phase }

// Year returns the next year to show.
func (p *Player) Year() int { return p.year }

// Step advances one transition and reports whether the sweep finished.
// A cancelled context still runs Done so interactivity is restored.
func (p *Player) Step(ctx context.Context, h Hooks) (bool, error) {
	switch p.phase {
	case PhaseIdle:
		h.Begin()
		p.phase, p.year = PhaseSweeping, models.MinYear
		return false, nil

	case PhaseSweeping:
		if err := p.sched.Yield(ctx); err != nil {
			h.Done()
			p.phase = PhaseFinished
			return true, err
		}
		h.Frame(p.year)
		p.year++
		if p.year > models.MaxYear {
			h.Done()
			p.phase = PhaseFinished
			return true, nil
		}
		return false, nil
	}
	return true, nil
}

// Run steps until the sweep finishes.
func (p *Player) Run(ctx context.Context, h Hooks) error {
	for {
		done, err := p.Step(ctx, h)
		if done || err != nil {
			return err
		}
	}
}
