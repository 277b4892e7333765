package wizard

import (
	"errors"
	"fmt"
	"testing"

	"adstudio/internal/domain"
	"adstudio/internal/domain/jsoncfg"
)

func TestNavigatorBounds(t *testing.T) {
	state := NewState(FlowAdCopies, DefaultInputs())
	nav := NewNavigator(state)

	before := state.Snapshot()
	if nav.Back() {
		t.Fatalf("Back at step 1 reported a move")
	}
	if got := state.Snapshot(); got.Step != before.Step || PhaseOf(got) != PhaseProduct {
		t.Fatalf("Back at step 1 changed state: step %d", got.Step)
	}

	if !nav.Next() || !nav.Next() {
		t.Fatalf("expected to advance to step 3")
	}
	if nav.Next() {
		t.Fatalf("Next at the last step reported a move")
	}
	if nav.Step() != 3 {
		t.Fatalf("step = %d, want 3", nav.Step())
	}
	if !nav.Back() || nav.Step() != 2 {
		t.Fatalf("Back from step 3 should land on 2, got %d", nav.Step())
	}
}

func TestNavigatorNeverTouchesResults(t *testing.T) {
	state := NewState(FlowAdCreative, DefaultInputs())
	state.SetCopyData(&domain.CreativeCopy{Headline: "h"})
	nav := NewNavigator(state)
	nav.Next()
	nav.Back()
	if state.CopyData() == nil || state.CopyData().Headline != "h" {
		t.Fatalf("navigation altered the copy result")
	}
}

func TestNavigatorLocksInputsOnceResultsExist(t *testing.T) {
	state := NewState(FlowAdCopies, DefaultInputs())
	nav := NewNavigator(state)
	if err := nav.SetProductName("NovaX"); err != nil {
		t.Fatalf("SetProductName: %v", err)
	}
	state.SetAngles(sixAngles())

	if err := nav.SetProductName("Other"); !errors.Is(err, domain.ErrInputsLocked) {
		t.Fatalf("expected ErrInputsLocked, got %v", err)
	}
	if err := nav.AddImages(testImage); !errors.Is(err, domain.ErrInputsLocked) {
		t.Fatalf("expected ErrInputsLocked for images, got %v", err)
	}
	if err := nav.SetCount(5); err != nil {
		t.Fatalf("copy settings should stay editable: %v", err)
	}
	if got := state.Inputs(); got.ProductName != "NovaX" || got.Count != 5 {
		t.Fatalf("unexpected inputs %+v", got)
	}
}

func TestNavigatorLanguageClearsDialect(t *testing.T) {
	state := NewState(FlowAdCreative, DefaultInputs())
	nav := NewNavigator(state)
	if err := nav.SetLanguage(domain.LanguageArabic); err != nil {
		t.Fatal(err)
	}
	if err := nav.SetDialect(domain.DialectDarija); err != nil {
		t.Fatal(err)
	}
	if err := nav.SetLanguage(domain.LanguageFrench); err != nil {
		t.Fatal(err)
	}
	if d := state.Inputs().Dialect; d != "" {
		t.Fatalf("dialect = %q, want empty", d)
	}
}

func TestNavigatorDialectOnlyForArabic(t *testing.T) {
	state := NewState(FlowAdCreative, DefaultInputs())
	nav := NewNavigator(state)
	if err := nav.SetLanguage(domain.LanguageEnglish); err != nil {
		t.Fatal(err)
	}
	if err := nav.SetDialect(domain.DialectDarija); err != nil {
		t.Fatalf("SetDialect: %v", err)
	}
	if d := state.Inputs().Dialect; d != "" {
		t.Fatalf("dialect = %q for english, want empty", d)
	}
	if err := nav.SetLanguage(domain.LanguageArabic); err != nil {
		t.Fatal(err)
	}
	if err := nav.SetDialect(domain.DialectDarija); err != nil {
		t.Fatal(err)
	}
	if d := state.Inputs().Dialect; d != domain.DialectDarija {
		t.Fatalf("dialect = %q, want darija", d)
	}
}

func TestNavigatorImageCap(t *testing.T) {
	state := NewState(FlowAdCreative, DefaultInputs())
	nav := NewNavigator(state)
	many := make([]domain.Image, domain.MaxImages)
	for i := range many {
		many[i] = domain.Image{Name: fmt.Sprintf("img-%d", i)}
	}
	if err := nav.AddImages(many[:domain.MaxImages-1]...); err != nil {
		t.Fatal(err)
	}
	if err := nav.AddImages(many[0], many[1]); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput over the cap, got %v", err)
	}
	if n := len(state.Inputs().Images); n != domain.MaxImages-1 {
		t.Fatalf("images = %d after refused add", n)
	}
	if err := nav.AddImages(many[0]); err != nil {
		t.Fatalf("filling to the cap: %v", err)
	}
	over := append(append([]domain.Image{}, many...), domain.Image{Name: "extra"})
	if err := nav.ReplaceImages(over); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for replace over the cap, got %v", err)
	}
	if n := len(state.Inputs().Images); n != domain.MaxImages {
		t.Fatalf("images = %d after refused replace", n)
	}
}

func TestNavigatorImages(t *testing.T) {
	state := NewState(FlowAdCreative, DefaultInputs())
	nav := NewNavigator(state)
	a := domain.Image{Name: "a"}
	b := domain.Image{Name: "b"}
	c := domain.Image{Name: "c"}
	if err := nav.AddImages(a, b, c); err != nil {
		t.Fatal(err)
	}
	if err := nav.ReorderImages([]int{2, 0, 1}); err != nil {
		t.Fatalf("ReorderImages: %v", err)
	}
	names := func() string {
		out := ""
		for _, img := range state.Inputs().Images {
			out += img.Name
		}
		return out
	}
	if got := names(); got != "cab" {
		t.Fatalf("order = %q, want cab", got)
	}
	for _, bad := range [][]int{{0, 1}, {0, 0, 1}, {0, 1, 3}} {
		if err := nav.ReorderImages(bad); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("order %v: expected ErrInvalidInput, got %v", bad, err)
		}
	}
	if err := nav.RemoveImage(1); err != nil {
		t.Fatal(err)
	}
	if got := names(); got != "cb" {
		t.Fatalf("after remove = %q, want cb", got)
	}
	if err := nav.RemoveImage(9); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := nav.ReplaceImages([]domain.Image{a}); err != nil {
		t.Fatal(err)
	}
	if got := names(); got != "a" {
		t.Fatalf("after replace = %q, want a", got)
	}
}

func TestNavigatorApplyPatch(t *testing.T) {
	state := NewState(FlowAdCopies, DefaultInputs())
	nav := NewNavigator(state)
	name := "  NovaX "
	lang := "AR"
	dialect := "darija"
	count := 9
	if err := nav.Apply(jsoncfg.InputsPatch{ProductName: &name, Language: &lang, Dialect: &dialect, Count: &count}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	in := state.Inputs()
	if in.ProductName != "NovaX" || in.Language != domain.LanguageArabic || in.Dialect != domain.DialectDarija {
		t.Fatalf("unexpected inputs %+v", in)
	}
	if in.Count != jsoncfg.MaxCopyCount {
		t.Fatalf("count = %d, want %d", in.Count, jsoncfg.MaxCopyCount)
	}

	tone := "grumpy"
	if err := nav.Apply(jsoncfg.InputsPatch{Tone: &tone}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNavigatorApplyIsAtomic(t *testing.T) {
	state := NewState(FlowAdCopies, DefaultInputs())
	state.SetAngles(sixAngles())
	nav := NewNavigator(state)
	size := "short"
	name := "Other"
	err := nav.Apply(jsoncfg.InputsPatch{Size: &size, ProductName: &name})
	if !errors.Is(err, domain.ErrInputsLocked) {
		t.Fatalf("expected ErrInputsLocked, got %v", err)
	}
	if got := state.Inputs().Size; got != jsoncfg.DefaultCopySize {
		t.Fatalf("size changed by a rejected patch: %q", got)
	}
}
