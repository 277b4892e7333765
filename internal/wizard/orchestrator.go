package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// Generator is the generation service the orchestrator dispatches to.
type Generator interface {
	GenerateAngles(ctx context.Context, req domain.AnglesRequest) ([]domain.Angle, error)
	GenerateCopies(ctx context.Context, req domain.CopiesRequest) ([]domain.GeneratedCopy, error)
	GenerateCreativeCopy(ctx context.Context, req domain.CreativeCopyRequest) (*domain.CreativeCopy, error)
	GenerateDesigner(ctx context.Context, req domain.DesignerRequest) (*domain.DesignerOutput, error)
	GenerateImage(ctx context.Context, req domain.ImageRequest) (*domain.ImageResult, error)
}

// Call names a single generation service call.
type Call string

const (
	CallAngles   Call = "angles"
	CallCopies   Call = "copies"
	CallCopy     Call = "copy"
	CallDesigner Call = "designer"
	CallImage    Call = "image"
)

// Event outcome values.
const (
	EventSucceeded  = "succeeded"
	EventFailed     = "failed"
	EventDiscarded  = "discarded"
	EventRolledBack = "rolled_back"
)

// Event describes the outcome of one generation call.
type Event struct {
	SessionID string
	Flow      Flow
	Action    Action
	Call      Call
	Status    string
	Error     string
	Duration  time.Duration
	At        time.Time
}

// Recorder receives generation events. Implementations must not block.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Options configures an Orchestrator.
type Options struct {
	SessionID string
	Generator Generator
	Recorder  Recorder
	Logger    *infra.Logger
	Now       func() time.Time
}

// Orchestrator is the only component that calls the generation service and
// the only writer of generation results.
type Orchestrator struct {
	state     *State
	gen       Generator
	recorder  Recorder
	logger    *infra.Logger
	sessionID string
	now       func() time.Time
}

// ErrStale reports that the state was reset or disposed while a call was in
// flight; its result was dropped.
var ErrStale = errors.New("wizard state changed while generating")

const maxFeatures = 4

// NewOrchestrator binds an orchestrator to state.
func NewOrchestrator(state *State, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		state:     state,
		gen:       opts.Generator,
		recorder:  opts.Recorder,
		logger:    logger,
		sessionID: opts.SessionID,
		now:       now,
	}
}

// Available reports whether the trigger for action is currently offered,
// taking in-flight calls into account.
func (o *Orchestrator) Available(action Action) error {
	s := o.state.Snapshot()
	if s.IsPending(action) {
		return domain.ErrInFlight
	}
	if err := CheckAvailable(s, action); err != nil {
		return err
	}
	return checkConflicts(s, action)
}

// AvailableActions lists the triggers currently offered.
func (o *Orchestrator) AvailableActions() []Action {
	var out []Action
	for _, a := range o.state.Flow().Actions() {
		if o.Available(a) == nil {
			out = append(out, a)
		}
	}
	return out
}

// Start dispatches action in the background. It fails fast when the
// trigger is not offered or the same action is already in flight. The
// returned channel yields the outcome once and is then closed.
func (o *Orchestrator) Start(ctx context.Context, action Action) (<-chan error, error) {
	snap, token, err := o.state.begin(action, func(s Snapshot) error {
		if err := CheckAvailable(s, action); err != nil {
			return err
		}
		return checkConflicts(s, action)
	})
	if err != nil {
		return nil, err
	}
	o.logger.Debug().
		Str("session_id", o.sessionID).
		Str("action", string(action)).
		Msg("wizard: generation dispatched")

	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := o.execute(ctx, action, snap)
		msg := ""
		if err != nil && !errors.Is(err, ErrStale) {
			msg = err.Error()
			o.logger.Warn().
				Err(err).
				Str("session_id", o.sessionID).
				Str("action", string(action)).
				Msg("wizard: generation failed")
		}
		o.state.finish(action, token, snap.epoch, msg)
		done <- err
	}()
	return done, nil
}

// Run dispatches action and waits for its outcome.
func (o *Orchestrator) Run(ctx context.Context, action Action) error {
	done, err := o.Start(ctx, action)
	if err != nil {
		return err
	}
	return <-done
}

func (o *Orchestrator) GenerateAngles(ctx context.Context) error {
	return o.Run(ctx, ActionGenerateAngles)
}

func (o *Orchestrator) GenerateCopies(ctx context.Context) error {
	return o.Run(ctx, ActionGenerateCopies)
}

func (o *Orchestrator) GenerateCopy(ctx context.Context) error {
	return o.Run(ctx, ActionGenerateCopy)
}

// GenerateDesign runs the chained designer and image calls of the
// ad-creative wizard as one action.
func (o *Orchestrator) GenerateDesign(ctx context.Context) error {
	return o.Run(ctx, ActionGenerateDesign)
}

func (o *Orchestrator) GenerateDesigner(ctx context.Context) error {
	return o.Run(ctx, ActionGenerateDesigner)
}

func (o *Orchestrator) GenerateImage(ctx context.Context) error {
	return o.Run(ctx, ActionGenerateImage)
}

func (o *Orchestrator) execute(ctx context.Context, action Action, s Snapshot) error {
	if o.gen == nil {
		return fmt.Errorf("%w: no generator configured", domain.ErrGeneration)
	}
	switch action {
	case ActionGenerateAngles:
		return o.runAngles(ctx, s)
	case ActionGenerateCopies:
		return o.runCopies(ctx, s)
	case ActionGenerateCopy:
		return o.runCopy(ctx, s)
	case ActionGenerateDesign:
		return o.runChainedDesign(ctx, s)
	case ActionGenerateDesigner:
		_, err := o.runDesigner(ctx, action, s)
		return err
	case ActionGenerateImage:
		return o.runImage(ctx, action, s, *s.Designer)
	default:
		return fmt.Errorf("%w: unknown action %q", domain.ErrPrecondition, action)
	}
}

func (o *Orchestrator) runAngles(ctx context.Context, s Snapshot) error {
	in := s.Inputs
	started := o.now()
	angles, err := o.gen.GenerateAngles(ctx, domain.AnglesRequest{
		Images:       in.Images,
		Language:     in.Language,
		Dialect:      in.Dialect,
		Tone:         in.Tone,
		Price:        priceLabel(in),
		ProductName:  in.ProductName,
		CustomPrompt: in.CustomPrompt,
	})
	if err == nil {
		angles = DedupAngles(angles)
		if len(angles) == 0 {
			err = errors.New("no usable angles returned")
		}
	}
	return o.settle(ctx, ActionGenerateAngles, CallAngles, s.epoch, started, err, func(d *Snapshot) {
		d.Angles = angles
		d.SelectedAngle = angles[0].ID
	})
}

func (o *Orchestrator) runCopies(ctx context.Context, s Snapshot) error {
	in := s.Inputs
	angle, _ := s.Angle(s.SelectedAngle)
	started := o.now()
	copies, err := o.gen.GenerateCopies(ctx, domain.CopiesRequest{
		Images:       in.Images,
		Language:     in.Language,
		Dialect:      in.Dialect,
		Tone:         in.Tone,
		Size:         in.Size,
		UseEmojis:    in.UseEmojis,
		Price:        priceLabel(in),
		ProductName:  in.ProductName,
		Count:        in.Count,
		Angle:        angle,
		CustomPrompt: in.CustomPrompt,
	})
	if err == nil {
		copies, err = NormalizeCopies(copies, in.Size, in.Count)
	}
	return o.settle(ctx, ActionGenerateCopies, CallCopies, s.epoch, started, err, func(d *Snapshot) {
		d.Copies = copies
	})
}

func (o *Orchestrator) runCopy(ctx context.Context, s Snapshot) error {
	in := s.Inputs
	started := o.now()
	copyData, err := o.gen.GenerateCreativeCopy(ctx, domain.CreativeCopyRequest{
		Images:       in.Images,
		Language:     in.Language,
		Dialect:      in.Dialect,
		Price:        priceLabel(in),
		ProductName:  in.ProductName,
		CustomPrompt: in.CustomPrompt,
	})
	if err == nil {
		err = normalizeCreativeCopy(copyData)
	}
	return o.settle(ctx, ActionGenerateCopy, CallCopy, s.epoch, started, err, func(d *Snapshot) {
		d.CopyData = copyData
	})
}

func (o *Orchestrator) runDesigner(ctx context.Context, action Action, s Snapshot) (*domain.DesignerOutput, error) {
	in := s.Inputs
	started := o.now()
	designer, err := o.gen.GenerateDesigner(ctx, domain.DesignerRequest{
		Copy:         *s.CopyData,
		Images:       in.Images,
		AspectRatio:  in.AspectRatio,
		CustomPrompt: in.CustomPrompt,
	})
	if err == nil && designer == nil {
		err = errors.New("empty designer output")
	}
	err = o.settle(ctx, action, CallDesigner, s.epoch, started, err, func(d *Snapshot) {
		d.Designer = designer
	})
	return designer, err
}

// runImage renders the final image. The designer output is consumed: it is
// cleared together with the commit of the result.
func (o *Orchestrator) runImage(ctx context.Context, action Action, s Snapshot, designer domain.DesignerOutput) error {
	in := s.Inputs
	started := o.now()
	result, err := o.gen.GenerateImage(ctx, domain.ImageRequest{
		Designer:     designer,
		Copy:         *s.CopyData,
		Images:       in.Images,
		AspectRatio:  in.AspectRatio,
		CustomPrompt: in.CustomPrompt,
	})
	if err == nil && (result == nil || result.ImageDataURL == "") {
		err = errors.New("no image returned")
	}
	return o.settle(ctx, action, CallImage, s.epoch, started, err, func(d *Snapshot) {
		d.Result = result
		d.Designer = nil
	})
}

// runChainedDesign commits the designer output, immediately renders the
// image from it and rolls the designer back when rendering fails, so the
// wizard never rests on a designer without its image.
func (o *Orchestrator) runChainedDesign(ctx context.Context, s Snapshot) error {
	designer, err := o.runDesigner(ctx, ActionGenerateDesign, s)
	if err != nil {
		return err
	}
	err = o.runImage(ctx, ActionGenerateDesign, s, *designer)
	if err == nil || errors.Is(err, ErrStale) {
		return err
	}
	if o.state.commit(s.epoch, func(d *Snapshot) { d.Designer = nil }) {
		o.record(ctx, Event{Action: ActionGenerateDesign, Call: CallDesigner, Status: EventRolledBack})
	}
	return err
}

// settle records the outcome of a call and commits its result on success.
// No result is written when err is non-nil.
func (o *Orchestrator) settle(ctx context.Context, action Action, call Call, epoch uint64, started time.Time, err error, apply func(*Snapshot)) error {
	ev := Event{Action: action, Call: call, Duration: o.now().Sub(started)}
	if err != nil {
		ev.Status = EventFailed
		ev.Error = err.Error()
		o.record(ctx, ev)
		return fmt.Errorf("%w: %s: %w", domain.ErrGeneration, call, err)
	}
	if !o.state.commit(epoch, apply) {
		ev.Status = EventDiscarded
		o.record(ctx, ev)
		o.logger.Debug().
			Str("session_id", o.sessionID).
			Str("call", string(call)).
			Msg("wizard: dropping result of a reset or disposed session")
		return ErrStale
	}
	ev.Status = EventSucceeded
	o.record(ctx, ev)
	return nil
}

func (o *Orchestrator) record(ctx context.Context, ev Event) {
	if o.recorder == nil {
		return
	}
	ev.SessionID = o.sessionID
	ev.Flow = o.state.Flow()
	if ev.At.IsZero() {
		ev.At = o.now()
	}
	o.recorder.Record(ctx, ev)
}

// SelectAngle changes the selected angle. The selection feeds the copies, so
// it is refused once copies exist; call ChangeAngle first.
func (o *Orchestrator) SelectAngle(id domain.AngleID) error {
	return o.state.guard(func(d *Snapshot, pending map[Action]uint64) error {
		if d.Copies != nil {
			return domain.ErrDownstreamExists
		}
		if _, ok := pending[ActionGenerateCopies]; ok {
			return fmt.Errorf("%w: %s", domain.ErrInFlight, ActionGenerateCopies)
		}
		if _, ok := d.Angle(id); !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownAngle, id)
		}
		d.SelectedAngle = id
		return nil
	})
}

// EditCopy edits the creative copy in the review phase. Edits are refused
// once a designer output or image was produced from the copy.
func (o *Orchestrator) EditCopy(edit func(*domain.CreativeCopy)) error {
	return o.state.guard(func(d *Snapshot, pending map[Action]uint64) error {
		if d.CopyData == nil {
			return fmt.Errorf("%w: no copy to edit", domain.ErrPrecondition)
		}
		if d.Designer != nil || d.Result != nil {
			return domain.ErrDownstreamExists
		}
		for _, a := range []Action{ActionGenerateCopy, ActionGenerateDesign, ActionGenerateDesigner, ActionGenerateImage} {
			if _, ok := pending[a]; ok {
				return fmt.Errorf("%w: %s", domain.ErrInFlight, a)
			}
		}
		edited := d.CopyData.Clone()
		edit(edited)
		if len(edited.Features) > maxFeatures {
			edited.Features = edited.Features[:maxFeatures]
		}
		d.CopyData = edited
		return nil
	})
}

// ChangeAngle discards the copies and returns to the angles phase.
func (o *Orchestrator) ChangeAngle() error {
	return o.state.guard(func(d *Snapshot, _ map[Action]uint64) error {
		if d.Angles == nil {
			return fmt.Errorf("%w: no angles generated", domain.ErrPrecondition)
		}
		d.Copies = nil
		return nil
	})
}

// BackToCopy discards the design and image and returns to the review phase.
func (o *Orchestrator) BackToCopy() error {
	return o.state.guard(func(d *Snapshot, _ map[Action]uint64) error {
		if d.CopyData == nil {
			return fmt.Errorf("%w: no copy generated", domain.ErrPrecondition)
		}
		d.Designer = nil
		d.Result = nil
		return nil
	})
}

// StartOver resets the wizard to its initial state.
func (o *Orchestrator) StartOver() {
	o.state.Reset()
}

// DedupAngles drops angles with an id outside the known set and keeps the
// first occurrence of every id, preserving order.
func DedupAngles(angles []domain.Angle) []domain.Angle {
	seen := make(map[domain.AngleID]struct{}, len(angles))
	out := make([]domain.Angle, 0, len(angles))
	for _, a := range angles {
		id, ok := domain.ParseAngleID(string(a.ID))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		a.ID = id
		out = append(out, a)
	}
	return out
}

// NormalizeCopies enforces the batch contract: exactly count copies, no
// hashtags for short copies and at least one hashtag otherwise.
func NormalizeCopies(copies []domain.GeneratedCopy, size domain.CopySize, count int) ([]domain.GeneratedCopy, error) {
	if len(copies) < count {
		return nil, fmt.Errorf("expected %d copies, got %d", count, len(copies))
	}
	out := make([]domain.GeneratedCopy, count)
	for i := range out {
		c := copies[i]
		if !size.WantsHashtags() {
			c.Hashtags = nil
		} else if len(c.Hashtags) == 0 {
			return nil, fmt.Errorf("copy %d has no hashtags", i+1)
		}
		out[i] = c
	}
	return out, nil
}

func normalizeCreativeCopy(c *domain.CreativeCopy) error {
	if c == nil || c.Headline == "" {
		return errors.New("creative copy without headline")
	}
	if len(c.Features) > maxFeatures {
		c.Features = c.Features[:maxFeatures]
	}
	return nil
}

// priceLabel joins the price and the selected currency unless the price
// text already names a currency.
func priceLabel(in Inputs) string {
	price := strings.TrimSpace(in.Price)
	if price == "" || in.Currency == "" {
		return price
	}
	if _, ok := domain.PriceCurrency(price); ok {
		return price
	}
	return price + " " + string(in.Currency)
}
