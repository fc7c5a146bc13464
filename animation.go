package glowrays

import "time"

// Animation timing constants.
const (
	// AnimationStep is the intensity change per tick.
	AnimationStep = 0.1
	// TypingPause is how long after an edit ticks are skipped when pausing
	// while typing.
	TypingPause = 1000 * time.Millisecond
)

// Direction is the current sense of the intensity oscillation.
type Direction int

// Animation directions.
const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// AnimationInterval returns the tick interval for speed: 500ms at speed 1
// down to 50ms at speed 10. Speed is clamped to that range.
func AnimationInterval(speed int) time.Duration {
	speed = min(max(speed, MinSpeed), MaxSpeed)
	return time.Duration(550-speed*50) * time.Millisecond
}

// AnimationState is the oscillator driving dynamic glow.
type AnimationState struct {
	Intensity        float64
	Direction        Direction
	Min              float64
	Max              float64
	Step             float64
	PauseWhileTyping bool
	LastEdit         time.Time
}

// NewAnimationState starts an oscillation at cfg.Min heading up.
func NewAnimationState(cfg DynamicConfig, pauseWhileTyping bool) *AnimationState {
	return &AnimationState{
		Intensity:        cfg.Min,
		Direction:        Up,
		Min:              cfg.Min,
		Max:              cfg.Max,
		Step:             AnimationStep,
		PauseWhileTyping: pauseWhileTyping,
	}
}

// Edited records a text edit at t.
func (a *AnimationState) Edited(t time.Time) {
	a.LastEdit = t
}

// Paused reports whether a tick at now must be skipped because the user is
// typing.
func (a *AnimationState) Paused(now time.Time) bool {
	return a.PauseWhileTyping && !a.LastEdit.IsZero() && now.Sub(a.LastEdit) < TypingPause
}

// Tick advances the oscillation by one step and reports whether it moved.
// A paused tick leaves the state untouched and returns false.
func (a *AnimationState) Tick(now time.Time) (float64, bool) {
	if a.Paused(now) {
		return a.Intensity, false
	}

	switch a.Direction {
	case Up:
		a.Intensity += a.Step
		if a.Intensity >= a.Max {
			a.Intensity = a.Max
			a.Direction = Down
		}
	case Down:
		a.Intensity -= a.Step
		if a.Intensity <= a.Min {
			a.Intensity = a.Min
			a.Direction = Up
		}
	}
	return a.Intensity, true
}
