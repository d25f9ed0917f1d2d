package domain

import (
	"errors"
	"fmt"
)

// Phase is one named percentage span of the timeline.
// The span is [StartPercent, EndPercent).
type Phase struct {
	Name         string  `json:"name"`
	StartPercent float64 `json:"startPercent"`
	EndPercent   float64 `json:"endPercent"`
	Description  string  `json:"description,omitempty"`
	Color        string  `json:"color,omitempty"`
}

// PhaseProfile is a named narrative template referenced by the workshop.
type PhaseProfile struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Phases []Phase `json:"phases"`
}

var ErrInvalidProfile = errors.New("invalid phase profile")

// Validate checks that the phases are contiguous, start at 0 and end at 100.
func (p *PhaseProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if len(p.Phases) == 0 {
		return fmt.Errorf("%w: at least one phase is required", ErrInvalidProfile)
	}
	if p.Phases[0].StartPercent != 0 {
		return fmt.Errorf("%w: first phase must start at 0", ErrInvalidProfile)
	}
	if p.Phases[len(p.Phases)-1].EndPercent != 100 {
		return fmt.Errorf("%w: last phase must end at 100", ErrInvalidProfile)
	}
	for i, ph := range p.Phases {
		if ph.EndPercent <= ph.StartPercent {
			return fmt.Errorf("%w: phase %q has an empty span", ErrInvalidProfile, ph.Name)
		}
		if i > 0 && ph.StartPercent != p.Phases[i-1].EndPercent {
			return fmt.Errorf("%w: gap before phase %q", ErrInvalidProfile, ph.Name)
		}
	}
	return nil
}

// PhaseAt returns the phase covering the given timeline percentage,
// or nil if pct is outside [0, 100).
func (p *PhaseProfile) PhaseAt(pct float64) *Phase {
	for i := range p.Phases {
		if pct >= p.Phases[i].StartPercent && pct < p.Phases[i].EndPercent {
			return &p.Phases[i]
		}
	}
	return nil
}
