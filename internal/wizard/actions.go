package wizard

import (
	"fmt"
	"strings"

	"adstudio/internal/domain"
)

// Action is a user-visible generation trigger.
type Action string

const (
	ActionGenerateAngles   Action = "generate-angles"
	ActionGenerateCopies   Action = "generate-copies"
	ActionGenerateCopy     Action = "generate-copy"
	ActionGenerateDesign   Action = "generate-design"
	ActionGenerateDesigner Action = "generate-designer"
	ActionGenerateImage    Action = "generate-image"
)

var actionOrder = []Action{
	ActionGenerateAngles,
	ActionGenerateCopies,
	ActionGenerateCopy,
	ActionGenerateDesign,
	ActionGenerateDesigner,
	ActionGenerateImage,
}

// ParseAction maps a path value onto an Action.
func ParseAction(s string) (Action, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range actionOrder {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Actions lists the generation triggers of the flow. In the ad-creative flow
// designer and image are offered as the single generate-design action.
func (f Flow) Actions() []Action {
	switch f {
	case FlowAdCopies:
		return []Action{ActionGenerateAngles, ActionGenerateCopies}
	case FlowAdCreative:
		return []Action{ActionGenerateCopy, ActionGenerateDesign}
	case FlowLandingPage:
		return []Action{ActionGenerateCopy, ActionGenerateDesigner, ActionGenerateImage}
	default:
		return nil
	}
}

func (f Flow) offers(a Action) bool {
	for _, x := range f.Actions() {
		if x == a {
			return true
		}
	}
	return false
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrPrecondition, fmt.Sprintf(format, args...))
}

// CheckAvailable reports whether the trigger for action is offered in s.
// It ignores in-flight calls; see Orchestrator.Available for the full check.
func CheckAvailable(s Snapshot, action Action) error {
	if !s.Flow.offers(action) {
		return unavailable("%s is not part of the %s wizard", action, s.Flow)
	}
	atLastStep := s.Step >= s.Flow.StepCount()
	switch action {
	case ActionGenerateAngles:
		if s.Copies != nil {
			return unavailable("copies already generated; change the angle first")
		}
		if s.Angles == nil && !atLastStep {
			return unavailable("complete the input steps first")
		}
		if len(s.Inputs.Images) == 0 {
			return unavailable("at least one product image is required")
		}
	case ActionGenerateCopies:
		if s.Angles == nil {
			return unavailable("generate angles first")
		}
		if _, ok := s.Angle(s.SelectedAngle); !ok {
			return unavailable("select an angle first")
		}
		if s.Inputs.Count < 1 {
			return unavailable("copy count must be at least 1")
		}
	case ActionGenerateCopy:
		if s.Designer != nil || s.Result != nil {
			return unavailable("design already generated; go back to the copy first")
		}
		if s.CopyData == nil && !atLastStep {
			return unavailable("complete the input steps first")
		}
		if len(s.Inputs.Images) == 0 {
			return unavailable("at least one product image is required")
		}
	case ActionGenerateDesign, ActionGenerateDesigner:
		if s.CopyData == nil {
			return unavailable("generate the copy first")
		}
	case ActionGenerateImage:
		if s.CopyData == nil {
			return unavailable("generate the copy first")
		}
		if s.Designer == nil {
			return unavailable("generate the design tokens first")
		}
	}
	return nil
}

// locksInputs reports whether an in-flight action reads the form inputs as
// its upstream, so editing them would commit a stale result.
func locksInputs(a Action) bool {
	return a == ActionGenerateAngles || a == ActionGenerateCopy
}

// upstreamOf lists the actions whose result a is built from. An action is
// not dispatched while one of them is still in flight, and an upstream is
// not regenerated while a dependent call runs.
func upstreamOf(a Action) []Action {
	switch a {
	case ActionGenerateCopies:
		return []Action{ActionGenerateAngles}
	case ActionGenerateDesign, ActionGenerateDesigner:
		return []Action{ActionGenerateCopy}
	case ActionGenerateImage:
		return []Action{ActionGenerateCopy, ActionGenerateDesigner}
	default:
		return nil
	}
}

// checkConflicts refuses a dispatch that overlaps a dependent or upstream
// call already in flight.
func checkConflicts(s Snapshot, action Action) error {
	for _, up := range upstreamOf(action) {
		if s.IsPending(up) {
			return fmt.Errorf("%w: %s", domain.ErrInFlight, up)
		}
	}
	for _, other := range actionOrder {
		if other == action || !s.IsPending(other) {
			continue
		}
		for _, up := range upstreamOf(other) {
			if up == action {
				return fmt.Errorf("%w: %s", domain.ErrInFlight, other)
			}
		}
	}
	return nil
}
