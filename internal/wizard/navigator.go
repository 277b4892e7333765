package wizard

import (
	"fmt"

	"adstudio/internal/domain"
	"adstudio/internal/domain/jsoncfg"
)

// Navigator moves across the input steps of a wizard and edits its inputs.
// It never writes generation results.
type Navigator struct {
	state *State
}

// NewNavigator binds a navigator to state.
func NewNavigator(state *State) *Navigator {
	return &Navigator{state: state}
}

// Step returns the current input step.
func (n *Navigator) Step() int {
	return n.state.Step()
}

// Next advances one step. At the last step it does nothing and returns
// false: only the generation trigger leaves the last step.
func (n *Navigator) Next() bool {
	moved := false
	_ = n.state.guard(func(d *Snapshot, _ map[Action]uint64) error {
		if d.Step < d.Flow.StepCount() {
			d.Step++
			moved = true
		}
		return nil
	})
	return moved
}

// Back returns one step. At step 1 it does nothing and returns false.
func (n *Navigator) Back() bool {
	moved := false
	_ = n.state.guard(func(d *Snapshot, _ map[Action]uint64) error {
		if d.Step > 1 {
			d.Step--
			moved = true
		}
		return nil
	})
	return moved
}

// editInputs applies fn to the form inputs unless they are locked.
func (n *Navigator) editInputs(fn func(*Inputs) error) error {
	return n.state.guard(func(d *Snapshot, pending map[Action]uint64) error {
		if err := inputsEditable(d, pending); err != nil {
			return err
		}
		in := d.Inputs.clone()
		if err := fn(&in); err != nil {
			return err
		}
		d.Inputs = in
		return nil
	})
}

// editCopySettings applies fn to size, emoji and count settings.
func (n *Navigator) editCopySettings(fn func(*Inputs)) error {
	return n.state.guard(func(d *Snapshot, pending map[Action]uint64) error {
		if err := copySettingsEditable(d, pending); err != nil {
			return err
		}
		fn(&d.Inputs)
		return nil
	})
}

// inputsEditable refuses edits once a generation result exists or while a
// call reading the inputs is in flight.
func inputsEditable(d *Snapshot, pending map[Action]uint64) error {
	if d.HasResults() {
		return domain.ErrInputsLocked
	}
	for a := range pending {
		if locksInputs(a) {
			return fmt.Errorf("%w: %s", domain.ErrInFlight, a)
		}
	}
	return nil
}

// copySettingsEditable refuses copy setting edits once copies exist or while
// they are being generated. ChangeAngle discards the copies.
func copySettingsEditable(d *Snapshot, pending map[Action]uint64) error {
	if d.Copies != nil {
		return fmt.Errorf("%w: copies were generated from the current settings", domain.ErrDownstreamExists)
	}
	if _, ok := pending[ActionGenerateCopies]; ok {
		return fmt.Errorf("%w: %s", domain.ErrInFlight, ActionGenerateCopies)
	}
	return nil
}

func (n *Navigator) SetProductName(v string) error {
	return n.editInputs(func(in *Inputs) error { in.ProductName = v; return nil })
}

func (n *Navigator) SetLanguage(v domain.Language) error {
	return n.editInputs(func(in *Inputs) error {
		in.Language = v
		if v != domain.LanguageArabic {
			in.Dialect = ""
		}
		return nil
	})
}

// SetDialect only takes effect for Arabic; other languages carry no dialect.
func (n *Navigator) SetDialect(v domain.Dialect) error {
	return n.editInputs(func(in *Inputs) error {
		if in.Language != domain.LanguageArabic {
			v = ""
		}
		in.Dialect = v
		return nil
	})
}

func (n *Navigator) SetTone(v domain.Tone) error {
	return n.editInputs(func(in *Inputs) error { in.Tone = v; return nil })
}

func (n *Navigator) SetPrice(v string) error {
	return n.editInputs(func(in *Inputs) error { in.Price = v; return nil })
}

func (n *Navigator) SetCurrency(v domain.Currency) error {
	return n.editInputs(func(in *Inputs) error { in.Currency = v; return nil })
}

func (n *Navigator) SetCustomPrompt(v string) error {
	return n.editInputs(func(in *Inputs) error { in.CustomPrompt = v; return nil })
}

func (n *Navigator) SetAspectRatio(v string) error {
	return n.editInputs(func(in *Inputs) error { in.AspectRatio = v; return nil })
}

func (n *Navigator) SetSize(v domain.CopySize) error {
	return n.editCopySettings(func(in *Inputs) { in.Size = v })
}

func (n *Navigator) SetUseEmojis(v bool) error {
	return n.editCopySettings(func(in *Inputs) { in.UseEmojis = v })
}

func (n *Navigator) SetCount(v int) error {
	return n.editCopySettings(func(in *Inputs) { in.Count = v })
}

// AddImages appends images after the existing ones. The wizard never holds
// more than domain.MaxImages.
func (n *Navigator) AddImages(images ...domain.Image) error {
	added := Inputs{Images: images}.clone().Images
	return n.editInputs(func(in *Inputs) error {
		if err := checkImageCount(len(in.Images) + len(added)); err != nil {
			return err
		}
		in.Images = append(in.Images, added...)
		return nil
	})
}

// ReplaceImages swaps the whole image list.
func (n *Navigator) ReplaceImages(images []domain.Image) error {
	replaced := Inputs{Images: images}.clone().Images
	return n.editInputs(func(in *Inputs) error {
		if err := checkImageCount(len(replaced)); err != nil {
			return err
		}
		in.Images = replaced
		return nil
	})
}

func checkImageCount(n int) error {
	if n > domain.MaxImages {
		return fmt.Errorf("%w: a wizard holds at most %d images", domain.ErrInvalidInput, domain.MaxImages)
	}
	return nil
}

// RemoveImage drops the image at index i.
func (n *Navigator) RemoveImage(i int) error {
	return n.editInputs(func(in *Inputs) error {
		if i < 0 || i >= len(in.Images) {
			return fmt.Errorf("%w: image index %d out of range", domain.ErrInvalidInput, i)
		}
		in.Images = append(in.Images[:i:i], in.Images[i+1:]...)
		return nil
	})
}

// ReorderImages applies a permutation: order[k] is the current index of
// the image that moves to position k.
func (n *Navigator) ReorderImages(order []int) error {
	return n.editInputs(func(in *Inputs) error {
		if len(order) != len(in.Images) {
			return fmt.Errorf("%w: order has %d entries for %d images", domain.ErrInvalidInput, len(order), len(in.Images))
		}
		seen := make([]bool, len(order))
		reordered := make([]domain.Image, len(order))
		for k, idx := range order {
			if idx < 0 || idx >= len(order) || seen[idx] {
				return fmt.Errorf("%w: order is not a permutation", domain.ErrInvalidInput)
			}
			seen[idx] = true
			reordered[k] = in.Images[idx]
		}
		in.Images = reordered
		return nil
	})
}

// Apply validates and applies a JSON input patch as one edit.
func (n *Navigator) Apply(p jsoncfg.InputsPatch) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return n.state.guard(func(d *Snapshot, pending map[Action]uint64) error {
		if touchesFormInputs(p) {
			if err := inputsEditable(d, pending); err != nil {
				return err
			}
		}
		if p.Size != nil || p.UseEmojis != nil || p.Count != nil {
			if err := copySettingsEditable(d, pending); err != nil {
				return err
			}
		}
		in := d.Inputs.clone()
		applyPatch(&in, p)
		d.Inputs = in
		return nil
	})
}

func touchesFormInputs(p jsoncfg.InputsPatch) bool {
	return p.ProductName != nil || p.Language != nil || p.Dialect != nil || p.Tone != nil ||
		p.Price != nil || p.Currency != nil || p.CustomPrompt != nil || p.AspectRatio != nil
}

// applyPatch expects a validated patch.
func applyPatch(in *Inputs, p jsoncfg.InputsPatch) {
	if p.ProductName != nil {
		in.ProductName = *p.ProductName
	}
	if p.Language != nil {
		in.Language, _ = domain.ParseLanguage(*p.Language)
	}
	if p.Dialect != nil {
		in.Dialect, _ = domain.ParseDialect(*p.Dialect)
	}
	if in.Language != domain.LanguageArabic {
		in.Dialect = ""
	}
	if p.Tone != nil {
		in.Tone, _ = domain.ParseTone(*p.Tone)
	}
	if p.Price != nil {
		in.Price = *p.Price
	}
	if p.Currency != nil {
		in.Currency, _ = domain.ParseCurrency(*p.Currency)
	}
	if p.CustomPrompt != nil {
		in.CustomPrompt = *p.CustomPrompt
	}
	if p.AspectRatio != nil {
		in.AspectRatio = *p.AspectRatio
	}
	if p.Size != nil {
		in.Size, _ = domain.ParseCopySize(*p.Size)
	}
	if p.UseEmojis != nil {
		in.UseEmojis = *p.UseEmojis
	}
	if p.Count != nil {
		in.Count = *p.Count
	}
}
