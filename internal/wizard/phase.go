// Package wizard implements the multi-phase generation wizards: per-session
// state, the phase projection, the input step navigator and the generation
// orchestrator.
package wizard

import "strings"

// Flow identifies one of the three wizards.
type Flow string

const (
	FlowAdCopies    Flow = "ad-copies"
	FlowAdCreative  Flow = "ad-creative"
	FlowLandingPage Flow = "landing-page"
)

// Flows lists every supported wizard.
var Flows = []Flow{FlowAdCopies, FlowAdCreative, FlowLandingPage}

// ParseFlow maps a path or payload value onto a Flow.
func ParseFlow(s string) (Flow, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Flows {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Phase is the logical stage of a wizard, derived from its state.
type Phase string

const (
	PhaseProduct  Phase = "Product"
	PhaseSettings Phase = "Settings"
	PhasePricing  Phase = "Pricing"
	PhaseAngles   Phase = "Angles"
	PhaseCopies   Phase = "Copies"
	PhaseReview   Phase = "Review"
	PhaseDesign   Phase = "Design"
)

// InputPhases returns the input steps of the flow in order. Step n maps to
// InputPhases()[n-1].
func (f Flow) InputPhases() []Phase {
	switch f {
	case FlowAdCopies:
		return []Phase{PhaseProduct, PhaseSettings, PhasePricing}
	case FlowAdCreative, FlowLandingPage:
		return []Phase{PhaseProduct, PhasePricing}
	default:
		return []Phase{PhaseProduct}
	}
}

// StepCount is the number of input steps before the first generation trigger.
func (f Flow) StepCount() int {
	return len(f.InputPhases())
}

// PhaseOf projects a snapshot onto its phase. Advanced phases are checked
// before earlier ones; the result depends on nothing but the snapshot.
func PhaseOf(s Snapshot) Phase {
	switch s.Flow {
	case FlowAdCopies:
		switch {
		case s.Copies != nil:
			return PhaseCopies
		case s.Angles != nil:
			return PhaseAngles
		}
	case FlowAdCreative, FlowLandingPage:
		switch {
		case s.Result != nil:
			return PhaseDesign
		case s.CopyData != nil:
			return PhaseReview
		}
	}
	return stepPhase(s.Flow, s.Step)
}

func stepPhase(f Flow, step int) Phase {
	phases := f.InputPhases()
	return phases[clampStep(f, step)-1]
}

func clampStep(f Flow, step int) int {
	if step < 1 {
		return 1
	}
	if n := f.StepCount(); step > n {
		return n
	}
	return step
}
