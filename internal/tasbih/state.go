package tasbih

import (
	"errors"
	"fmt"
)

// ChallengeGoal is the count that completes the daily challenge
const ChallengeGoal = 1000

// Count steps offered by the UI
const (
	StepCount  = 1
	StepAddTen = 10
)

var (
	ErrInvalidStep  = errors.New("increment step must not be negative")
	ErrNoImages     = errors.New("no slideshow images")
	ErrUnknownDhikr = errors.New("unknown dhikr")
)

// State is everything a single session remembers.
//
// Transitions never mutate the receiver; they return the next state.
// On error the returned state equals the receiver.
type State struct {
	Count      int    `json:"count"`
	TotalCount int    `json:"total_count"`
	SlideIndex int    `json:"slide_index"`
	Dhikr      string `json:"dhikr"`
	Autoplay   bool   `json:"autoplay"`
}

// NewState returns the state of a fresh session
func NewState() State {
	return State{Dhikr: DefaultDhikr}
}

// Increment adds n to both the current and the session total count
func (s State) Increment(n int) (State, error) {
	if n < 0 {
		return s, fmt.Errorf("%w: %d", ErrInvalidStep, n)
	}
	s.Count += n
	s.TotalCount += n
	return s, nil
}

// Reset clears the current count. The session total is kept.
func (s State) Reset() State {
	s.Count = 0
	return s
}

// AdvanceSlide moves the slide index by delta, wrapping within an image
// set of the given length.
func (s State) AdvanceSlide(delta, length int) (State, error) {
	if length <= 0 {
		return s, ErrNoImages
	}
	s.SlideIndex = Wrap(s.SlideIndex+delta, length)
	return s, nil
}

// SelectDhikr makes phrase the current dhikr
func (s State) SelectDhikr(phrase string) (State, error) {
	if _, ok := Lookup(phrase); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownDhikr, phrase)
	}
	s.Dhikr = phrase
	return s, nil
}

// SetAutoplay records the auto-play toggle
func (s State) SetAutoplay(on bool) State {
	s.Autoplay = on
	return s
}

// ChallengeComplete reports whether the current count reached the goal
func (s State) ChallengeComplete() bool {
	return s.Count >= ChallengeGoal
}

// CurrentDhikr returns the selected dhikr, falling back to the default
func (s State) CurrentDhikr() Dhikr {
	if d, ok := Lookup(s.Dhikr); ok {
		return d
	}
	d, _ := Lookup(DefaultDhikr)
	return d
}

// Slide returns the index into an image set of the given length, or -1
// when the set is empty.
func (s State) Slide(length int) int {
	if length <= 0 {
		return -1
	}
	return Wrap(s.SlideIndex, length)
}

// Wrap reduces i into [0, n). n must be positive.
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}
