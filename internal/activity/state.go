// Package activity turns a per-position activity signal into assembly
// regions.
package activity

import (
	"fmt"

	"github.com/inodb/vibe-region/internal/genome"
)

// StateType annotates a State with extra information about its source.
type StateType int

const (
	// TypeNone marks a plain activity observation.
	TypeNone StateType = iota
)

func (t StateType) String() string {
	switch t {
	case TypeNone:
		return "NONE"
	}
	return fmt.Sprintf("StateType(%d)", int(t))
}

// State is the probability that a single position is active.
type State struct {
	Locus      genome.Interval
	ActiveProb float64
	Type       StateType
}

// NewState creates a state for a single-base locus.
func NewState(locus genome.Interval, activeProb float64) (State, error) {
	if locus.Start < 1 || locus.Size() != 1 {
		return State{}, fmt.Errorf("%w: location for an activity state must have size 1 bp but saw %s",
			genome.ErrInvalidArgument, locus)
	}
	if activeProb < 0 || activeProb > 1 {
		return State{}, fmt.Errorf("%w: active probability %g outside [0, 1] at %s",
			genome.ErrInvalidArgument, activeProb, locus)
	}
	return State{Locus: locus, ActiveProb: activeProb, Type: TypeNone}, nil
}

func (s State) String() string {
	return fmt.Sprintf("State{loc=%s, activeProb=%g, type=%s}", s.Locus, s.ActiveProb, s.Type)
}
