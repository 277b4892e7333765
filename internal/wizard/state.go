package wizard

import (
	"sync"

	"adstudio/internal/domain"
	"adstudio/internal/domain/jsoncfg"
)

// Inputs are the form fields collected by the input steps.
type Inputs struct {
	Images       []domain.Image
	ProductName  string
	Language     domain.Language
	Dialect      domain.Dialect
	Tone         domain.Tone
	Price        string
	Currency     domain.Currency
	CustomPrompt string

	// ad-copies settings
	Size      domain.CopySize
	UseEmojis bool
	Count     int

	// ad-creative and landing-page settings
	AspectRatio string
}

// DefaultInputs returns the inputs of a freshly entered wizard.
func DefaultInputs() Inputs {
	return Inputs{
		Language:    jsoncfg.DefaultLanguage,
		Tone:        jsoncfg.DefaultTone,
		Currency:    jsoncfg.DefaultCurrency,
		Size:        jsoncfg.DefaultCopySize,
		Count:       jsoncfg.DefaultCopyCount,
		AspectRatio: jsoncfg.DefaultAspectRatio,
	}
}

func (in Inputs) clone() Inputs {
	if in.Images != nil {
		images := make([]domain.Image, len(in.Images))
		for i, img := range in.Images {
			images[i] = img.Clone()
		}
		in.Images = images
	}
	return in
}

// Snapshot is a deep copy of a wizard's state. A nil result field means the
// phase has not been generated for the current inputs.
type Snapshot struct {
	Flow          Flow
	Step          int
	Inputs        Inputs
	Angles        []domain.Angle
	SelectedAngle domain.AngleID
	Copies        []domain.GeneratedCopy
	CopyData      *domain.CreativeCopy
	Designer      *domain.DesignerOutput
	Result        *domain.ImageResult
	Pending       []Action
	LastError     string

	epoch uint64
}

// HasResults reports whether any generation phase holds a result.
func (s Snapshot) HasResults() bool {
	return s.Angles != nil || s.Copies != nil || s.CopyData != nil || s.Designer != nil || s.Result != nil
}

// IsPending reports whether action is in flight.
func (s Snapshot) IsPending(action Action) bool {
	for _, a := range s.Pending {
		if a == action {
			return true
		}
	}
	return false
}

// Angle returns the angle with the given id from the committed batch.
func (s Snapshot) Angle(id domain.AngleID) (domain.Angle, bool) {
	for _, a := range s.Angles {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Angle{}, false
}

// State is the per-session state container. Setters are total; validation
// is the caller's concern. All methods are safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	flow     Flow
	defaults Inputs
	data     Snapshot
	pending  map[Action]uint64
	tokens   uint64
	closed   bool
}

// NewState creates the initial state of a wizard. defaults seeds the inputs
// and is restored on Reset.
func NewState(flow Flow, defaults Inputs) *State {
	s := &State{flow: flow, defaults: defaults.clone()}
	s.data = s.initial(0)
	s.pending = make(map[Action]uint64)
	return s
}

func (s *State) initial(epoch uint64) Snapshot {
	return Snapshot{Flow: s.flow, Step: 1, Inputs: s.defaults.clone(), epoch: epoch}
}

// Flow returns the wizard this state belongs to.
func (s *State) Flow() Flow {
	return s.flow
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	out := s.data
	out.Inputs = s.data.Inputs.clone()
	if s.data.Angles != nil {
		out.Angles = append([]domain.Angle{}, s.data.Angles...)
	}
	if s.data.Copies != nil {
		out.Copies = make([]domain.GeneratedCopy, len(s.data.Copies))
		for i, c := range s.data.Copies {
			if c.Hashtags != nil {
				c.Hashtags = append([]string{}, c.Hashtags...)
			}
			out.Copies[i] = c
		}
	}
	out.CopyData = s.data.CopyData.Clone()
	out.Designer = s.data.Designer.Clone()
	if s.data.Result != nil {
		r := *s.data.Result
		out.Result = &r
	}
	out.Pending = nil
	for _, a := range actionOrder {
		if _, ok := s.pending[a]; ok {
			out.Pending = append(out.Pending, a)
		}
	}
	return out
}

// Reset restores the initial value. Calls still in flight resolve into the
// discarded epoch and are dropped.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = s.initial(s.data.epoch + 1)
	s.pending = make(map[Action]uint64)
}

// Dispose closes the state; later writes are ignored.
func (s *State) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending = make(map[Action]uint64)
}

// Closed reports whether Dispose was called.
func (s *State) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *State) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Step returns the current input step (1-based).
func (s *State) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Step
}

// SetStep sets the input step.
func (s *State) SetStep(step int) { s.update(func(d *Snapshot) { d.Step = step }) }

// Inputs returns a copy of the form inputs.
func (s *State) Inputs() Inputs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Inputs.clone()
}

// SetInputs replaces every form input at once.
func (s *State) SetInputs(in Inputs) {
	in = in.clone()
	s.update(func(d *Snapshot) { d.Inputs = in })
}

// SetImages replaces the product images, preserving the given order.
func (s *State) SetImages(images []domain.Image) {
	in := Inputs{Images: images}.clone()
	s.update(func(d *Snapshot) { d.Inputs.Images = in.Images })
}

func (s *State) SetProductName(v string) { s.update(func(d *Snapshot) { d.Inputs.ProductName = v }) }

func (s *State) SetLanguage(v domain.Language) { s.update(func(d *Snapshot) { d.Inputs.Language = v }) }

func (s *State) SetDialect(v domain.Dialect) { s.update(func(d *Snapshot) { d.Inputs.Dialect = v }) }

func (s *State) SetTone(v domain.Tone) { s.update(func(d *Snapshot) { d.Inputs.Tone = v }) }

func (s *State) SetPrice(v string) { s.update(func(d *Snapshot) { d.Inputs.Price = v }) }

func (s *State) SetCurrency(v domain.Currency) { s.update(func(d *Snapshot) { d.Inputs.Currency = v }) }

func (s *State) SetCustomPrompt(v string) { s.update(func(d *Snapshot) { d.Inputs.CustomPrompt = v }) }

func (s *State) SetSize(v domain.CopySize) { s.update(func(d *Snapshot) { d.Inputs.Size = v }) }

func (s *State) SetUseEmojis(v bool) { s.update(func(d *Snapshot) { d.Inputs.UseEmojis = v }) }

func (s *State) SetCount(v int) { s.update(func(d *Snapshot) { d.Inputs.Count = v }) }

func (s *State) SetAspectRatio(v string) { s.update(func(d *Snapshot) { d.Inputs.AspectRatio = v }) }

// Angles returns the committed angle batch, nil when not generated.
func (s *State) Angles() []domain.Angle { return s.Snapshot().Angles }

// SetAngles replaces the angle batch.
func (s *State) SetAngles(v []domain.Angle) {
	if v != nil {
		v = append([]domain.Angle{}, v...)
	}
	s.update(func(d *Snapshot) { d.Angles = v })
}

// SelectedAngle returns the id of the selected angle.
func (s *State) SelectedAngle() domain.AngleID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.SelectedAngle
}

func (s *State) SetSelectedAngle(id domain.AngleID) {
	s.update(func(d *Snapshot) { d.SelectedAngle = id })
}

// Copies returns the generated copies, nil when not generated.
func (s *State) Copies() []domain.GeneratedCopy { return s.Snapshot().Copies }

func (s *State) SetCopies(v []domain.GeneratedCopy) {
	if v != nil {
		v = append([]domain.GeneratedCopy{}, v...)
	}
	s.update(func(d *Snapshot) { d.Copies = v })
}

// CopyData returns the creative copy, nil when not generated.
func (s *State) CopyData() *domain.CreativeCopy { return s.Snapshot().CopyData }

func (s *State) SetCopyData(v *domain.CreativeCopy) {
	v = v.Clone()
	s.update(func(d *Snapshot) { d.CopyData = v })
}

// Designer returns the intermediate design tokens, nil when absent.
func (s *State) Designer() *domain.DesignerOutput { return s.Snapshot().Designer }

func (s *State) SetDesigner(v *domain.DesignerOutput) {
	v = v.Clone()
	s.update(func(d *Snapshot) { d.Designer = v })
}

// Result returns the final image, nil when not generated.
func (s *State) Result() *domain.ImageResult { return s.Snapshot().Result }

func (s *State) SetResult(v *domain.ImageResult) {
	if v != nil {
		r := *v
		v = &r
	}
	s.update(func(d *Snapshot) { d.Result = v })
}

// begin registers action as in flight after check accepts the current
// state. It returns the snapshot the call must be built from.
func (s *State) begin(action Action, check func(Snapshot) error) (Snapshot, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, 0, domain.ErrSessionClosed
	}
	if _, ok := s.pending[action]; ok {
		return Snapshot{}, 0, domain.ErrInFlight
	}
	snap := s.snapshotLocked()
	if err := check(snap); err != nil {
		return Snapshot{}, 0, err
	}
	s.tokens++
	s.pending[action] = s.tokens
	s.data.LastError = ""
	snap.Pending = append(snap.Pending, action)
	return snap, s.tokens, nil
}

// finish clears the in-flight mark of a call and records its failure.
func (s *State) finish(action Action, token, epoch uint64, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[action] == token {
		delete(s.pending, action)
	}
	if errMsg != "" && !s.closed && s.data.epoch == epoch {
		s.data.LastError = errMsg
	}
}

// commit applies fn when the epoch still matches and the state is open.
func (s *State) commit(epoch uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.data.epoch != epoch {
		return false
	}
	fn(&s.data)
	return true
}

// guard runs fn under the write lock with a view of the current state;
// fn may mutate the state when it returns nil.
func (s *State) guard(fn func(d *Snapshot, pending map[Action]uint64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	return fn(&s.data, s.pending)
}
