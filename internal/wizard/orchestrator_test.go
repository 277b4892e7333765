package wizard

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"adstudio/internal/domain"
)

type harness struct {
	state *State
	nav   *Navigator
	orch  *Orchestrator
	gen   *fakeGenerator
	rec   *memRecorder
}

func newHarness(t *testing.T, flow Flow) *harness {
	t.Helper()
	gen := &fakeGenerator{
		angles:   func(domain.AnglesRequest) ([]domain.Angle, error) { return sixAngles(), nil },
		copies:   stubCopies,
		copy:     stubCreativeCopy,
		designer: stubDesigner,
		image:    stubImage,
	}
	rec := &memRecorder{}
	state := NewState(flow, DefaultInputs())
	h := &harness{
		state: state,
		nav:   NewNavigator(state),
		orch:  NewOrchestrator(state, Options{SessionID: "s-1", Generator: gen, Recorder: rec}),
		gen:   gen,
		rec:   rec,
	}
	return h
}

// fill enters the product inputs and walks to the last input step.
func (h *harness) fill(t *testing.T) {
	t.Helper()
	if err := h.nav.AddImages(testImage); err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	if err := h.nav.SetProductName("NovaX"); err != nil {
		t.Fatalf("SetProductName: %v", err)
	}
	if err := h.nav.SetPrice("29.99"); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}
	if err := h.nav.SetCurrency(domain.CurrencyDZD); err != nil {
		t.Fatalf("SetCurrency: %v", err)
	}
	for h.nav.Next() {
	}
}

func TestAdCopiesScenario(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	if err := h.nav.SetTone(domain.ToneCasual); err != nil {
		t.Fatal(err)
	}
	var anglesReq domain.AnglesRequest
	h.gen.angles = func(req domain.AnglesRequest) ([]domain.Angle, error) {
		anglesReq = req
		return sixAngles(), nil
	}

	if err := h.orch.GenerateAngles(context.Background()); err != nil {
		t.Fatalf("GenerateAngles: %v", err)
	}
	if anglesReq.Price != "29.99 DZD" || anglesReq.ProductName != "NovaX" || anglesReq.Tone != domain.ToneCasual || anglesReq.Language != domain.LanguageEnglish {
		t.Fatalf("unexpected angles request %+v", anglesReq)
	}
	snap := h.state.Snapshot()
	if len(snap.Angles) != 6 {
		t.Fatalf("angles = %d, want 6", len(snap.Angles))
	}
	if snap.SelectedAngle != snap.Angles[0].ID {
		t.Fatalf("selected %q, want first angle %q", snap.SelectedAngle, snap.Angles[0].ID)
	}
	if PhaseOf(snap) != PhaseAngles {
		t.Fatalf("phase = %q, want Angles", PhaseOf(snap))
	}

	if err := h.nav.SetCount(3); err != nil {
		t.Fatal(err)
	}
	if err := h.nav.SetSize(domain.CopySizeMedium); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.GenerateCopies(context.Background()); err != nil {
		t.Fatalf("GenerateCopies: %v", err)
	}
	snap = h.state.Snapshot()
	if len(snap.Copies) != 3 {
		t.Fatalf("copies = %d, want 3", len(snap.Copies))
	}
	for i, c := range snap.Copies {
		if len(c.Hashtags) == 0 {
			t.Fatalf("copy %d has no hashtags", i)
		}
	}
	if PhaseOf(snap) != PhaseCopies {
		t.Fatalf("phase = %q, want Copies", PhaseOf(snap))
	}
	if got := h.rec.Statuses(); !reflect.DeepEqual(got, []string{"angles:succeeded", "copies:succeeded"}) {
		t.Fatalf("events = %v", got)
	}
}

func TestAnglesRequestKeepsPriceCurrency(t *testing.T) {
	tests := []struct {
		price    string
		currency domain.Currency
		want     string
	}{
		{"29.99 DZD", domain.CurrencyUSD, "29.99 DZD"},
		{"eur 15", domain.CurrencyUSD, "eur 15"},
		{"29.99", domain.CurrencyUSD, "29.99 USD"},
		{" 1200 ", domain.CurrencyDZD, "1200 DZD"},
	}
	for _, tc := range tests {
		h := newHarness(t, FlowAdCopies)
		h.fill(t)
		if err := h.nav.SetPrice(tc.price); err != nil {
			t.Fatal(err)
		}
		if err := h.nav.SetCurrency(tc.currency); err != nil {
			t.Fatal(err)
		}
		var got string
		h.gen.angles = func(req domain.AnglesRequest) ([]domain.Angle, error) {
			got = req.Price
			return sixAngles(), nil
		}
		if err := h.orch.GenerateAngles(context.Background()); err != nil {
			t.Fatalf("GenerateAngles: %v", err)
		}
		if got != tc.want {
			t.Fatalf("price %q with %s: request price = %q, want %q", tc.price, tc.currency, got, tc.want)
		}
	}
}

func TestCopySettingsLockedOnceCopiesExist(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	if err := h.orch.GenerateAngles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.nav.SetSize(domain.CopySizeMedium); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.GenerateCopies(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := h.state.Snapshot()

	edits := map[string]func() error{
		"size":   func() error { return h.nav.SetSize(domain.CopySizeShort) },
		"count":  func() error { return h.nav.SetCount(1) },
		"emojis": func() error { return h.nav.SetUseEmojis(!before.Inputs.UseEmojis) },
	}
	for name, edit := range edits {
		if err := edit(); !errors.Is(err, domain.ErrDownstreamExists) {
			t.Fatalf("%s: expected ErrDownstreamExists, got %v", name, err)
		}
	}
	after := h.state.Snapshot()
	if !reflect.DeepEqual(after.Inputs, before.Inputs) || !reflect.DeepEqual(after.Copies, before.Copies) {
		t.Fatalf("refused edits changed the wizard: %+v", after.Inputs)
	}

	if err := h.orch.ChangeAngle(); err != nil {
		t.Fatalf("ChangeAngle: %v", err)
	}
	if err := h.nav.SetSize(domain.CopySizeShort); err != nil {
		t.Fatalf("SetSize after ChangeAngle: %v", err)
	}
	if err := h.orch.GenerateCopies(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i, c := range h.state.Copies() {
		if c.Hashtags != nil {
			t.Fatalf("copy %d kept hashtags after switching to short", i)
		}
	}
}

func TestGenerateAnglesDedupsAndAutoSelects(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	h.gen.angles = func(domain.AnglesRequest) ([]domain.Angle, error) {
		return []domain.Angle{
			{ID: "urgency", Name: "first"},
			{ID: "benefit"},
			{ID: "urgency", Name: "second"},
			{ID: "mystery"},
			{ID: "social_proof"},
		}, nil
	}
	if err := h.orch.GenerateAngles(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := h.state.Snapshot()
	var ids []domain.AngleID
	for _, a := range snap.Angles {
		ids = append(ids, a.ID)
	}
	want := []domain.AngleID{domain.AngleUrgency, domain.AngleBenefit, domain.AngleSocialProof}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	if snap.Angles[0].Name != "first" {
		t.Fatalf("dedup kept %q, want the first occurrence", snap.Angles[0].Name)
	}
	if snap.SelectedAngle != domain.AngleUrgency {
		t.Fatalf("selected = %q", snap.SelectedAngle)
	}
}

func TestShortCopiesDropHashtags(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	if err := h.orch.GenerateAngles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.nav.SetSize(domain.CopySizeShort); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.GenerateCopies(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i, c := range h.state.Copies() {
		if c.Hashtags != nil {
			t.Fatalf("copy %d hashtags = %v, want nil", i, c.Hashtags)
		}
	}
}

func TestNormalizeCopies(t *testing.T) {
	five := make([]domain.GeneratedCopy, 5)
	for i := range five {
		five[i] = domain.GeneratedCopy{Headline: "h", Hashtags: []string{"#x"}}
	}
	out, err := NormalizeCopies(five, domain.CopySizeLong, 3)
	if err != nil || len(out) != 3 {
		t.Fatalf("expected 3 copies, got %d err %v", len(out), err)
	}
	if _, err := NormalizeCopies(five[:2], domain.CopySizeLong, 3); err == nil {
		t.Fatalf("expected error for a short batch")
	}
	bare := []domain.GeneratedCopy{{Headline: "h"}}
	if _, err := NormalizeCopies(bare, domain.CopySizeMedium, 1); err == nil {
		t.Fatalf("expected error for medium copy without hashtags")
	}
}

func TestGenerationFailureCommitsNothing(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	if err := h.orch.GenerateAngles(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := h.state.Snapshot()
	h.gen.copies = func(domain.CopiesRequest) ([]domain.GeneratedCopy, error) {
		return nil, errors.New("provider timeout")
	}
	err := h.orch.GenerateCopies(context.Background())
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	after := h.state.Snapshot()
	if after.Copies != nil || PhaseOf(after) != PhaseOf(before) {
		t.Fatalf("failed call changed the phase to %q", PhaseOf(after))
	}
	if after.LastError == "" {
		t.Fatalf("expected the failure to be surfaced")
	}
	if len(after.Pending) != 0 {
		t.Fatalf("pending = %v after failure", after.Pending)
	}
	if err := h.orch.Available(ActionGenerateCopies); err != nil {
		t.Fatalf("trigger should be re-enabled: %v", err)
	}
}

func TestPreconditionsBlockDispatch(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	for h.nav.Next() {
	}
	if _, err := h.orch.Start(context.Background(), ActionGenerateAngles); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition without images, got %v", err)
	}
	if _, err := h.orch.Start(context.Background(), ActionGenerateCopies); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition without angles, got %v", err)
	}
	if _, err := h.orch.Start(context.Background(), ActionGenerateCopy); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition for a foreign action, got %v", err)
	}
	if len(h.gen.Calls()) != 0 {
		t.Fatalf("generator called: %v", h.gen.Calls())
	}

	early := newHarness(t, FlowAdCreative)
	if err := early.nav.AddImages(testImage); err != nil {
		t.Fatal(err)
	}
	if err := early.orch.Available(ActionGenerateCopy); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected copy to wait for the last input step, got %v", err)
	}
}

func TestInFlightGate(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	started := make(chan struct{})
	release := make(chan struct{})
	h.gen.angles = func(domain.AnglesRequest) ([]domain.Angle, error) {
		close(started)
		<-release
		return sixAngles(), nil
	}
	done, err := h.orch.Start(context.Background(), ActionGenerateAngles)
	if err != nil {
		t.Fatal(err)
	}
	<-started

	if _, err := h.orch.Start(context.Background(), ActionGenerateAngles); !errors.Is(err, domain.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if err := h.orch.Available(ActionGenerateAngles); !errors.Is(err, domain.ErrInFlight) {
		t.Fatalf("Available = %v, want ErrInFlight", err)
	}
	if !h.nav.Back() {
		t.Fatalf("navigation should stay available while generating")
	}
	if err := h.nav.SetProductName("Changed"); !errors.Is(err, domain.ErrInFlight) {
		t.Fatalf("expected inputs to be locked while generating, got %v", err)
	}
	if snap := h.state.Snapshot(); !snap.IsPending(ActionGenerateAngles) {
		t.Fatalf("pending = %v", snap.Pending)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("generation: %v", err)
	}
	if h.state.Snapshot().IsPending(ActionGenerateAngles) {
		t.Fatalf("angles still pending after completion")
	}
	if got := len(h.gen.Calls()); got != 1 {
		t.Fatalf("generator called %d times, want 1", got)
	}
}

func TestRegenerationKeepsUpstream(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateAngles(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.GenerateCopies(ctx); err != nil {
		t.Fatal(err)
	}
	before := h.state.Snapshot()

	h.gen.copies = func(req domain.CopiesRequest) ([]domain.GeneratedCopy, error) {
		out, _ := stubCopies(req)
		for i := range out {
			out[i].Headline = "v2"
		}
		return out, nil
	}
	if err := h.orch.GenerateCopies(ctx); err != nil {
		t.Fatal(err)
	}
	after := h.state.Snapshot()
	if after.Copies[0].Headline != "v2" {
		t.Fatalf("copies not replaced")
	}
	if !reflect.DeepEqual(before.Inputs, after.Inputs) {
		t.Fatalf("inputs changed: %+v vs %+v", before.Inputs, after.Inputs)
	}
	if !reflect.DeepEqual(before.Angles, after.Angles) || before.SelectedAngle != after.SelectedAngle {
		t.Fatalf("angles changed by copy regeneration")
	}
}

func TestSelectAngle(t *testing.T) {
	h := newHarness(t, FlowAdCopies)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateAngles(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.SelectAngle("unknown"); !errors.Is(err, domain.ErrUnknownAngle) {
		t.Fatalf("expected ErrUnknownAngle, got %v", err)
	}
	if err := h.orch.SelectAngle(domain.AngleCuriosity); err != nil {
		t.Fatal(err)
	}
	var got domain.AngleID
	h.gen.copies = func(req domain.CopiesRequest) ([]domain.GeneratedCopy, error) {
		got = req.Angle.ID
		return stubCopies(req)
	}
	if err := h.orch.GenerateCopies(ctx); err != nil {
		t.Fatal(err)
	}
	if got != domain.AngleCuriosity {
		t.Fatalf("copies built from %q", got)
	}
	if err := h.orch.SelectAngle(domain.AngleBenefit); !errors.Is(err, domain.ErrDownstreamExists) {
		t.Fatalf("expected ErrDownstreamExists, got %v", err)
	}
	if _, err := h.orch.Start(ctx, ActionGenerateAngles); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("angles should be locked while copies exist, got %v", err)
	}
	if err := h.orch.ChangeAngle(); err != nil {
		t.Fatal(err)
	}
	if PhaseOf(h.state.Snapshot()) != PhaseAngles {
		t.Fatalf("ChangeAngle should return to Angles")
	}
	if err := h.orch.SelectAngle(domain.AngleBenefit); err != nil {
		t.Fatal(err)
	}
}

func TestChainedDesignSuccess(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	if err := h.nav.SetAspectRatio("9:16"); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	copyData := h.state.CopyData()

	var designerReq domain.DesignerRequest
	var imageReq domain.ImageRequest
	h.gen.designer = func(req domain.DesignerRequest) (*domain.DesignerOutput, error) {
		designerReq = req
		return stubDesigner(req)
	}
	h.gen.image = func(req domain.ImageRequest) (*domain.ImageResult, error) {
		imageReq = req
		return stubImage(req)
	}
	if err := h.orch.Available(ActionGenerateDesigner); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("ad-creative should only offer the combined action, got %v", err)
	}
	if err := h.orch.GenerateDesign(ctx); err != nil {
		t.Fatalf("GenerateDesign: %v", err)
	}
	if designerReq.AspectRatio != "9:16" || imageReq.AspectRatio != "9:16" {
		t.Fatalf("aspect ratios %q / %q", designerReq.AspectRatio, imageReq.AspectRatio)
	}
	if !reflect.DeepEqual(imageReq.Copy, *copyData) || !reflect.DeepEqual(designerReq.Copy, *copyData) {
		t.Fatalf("chained calls did not share the copy")
	}
	if imageReq.Designer.Palette.Primary != "#112233" {
		t.Fatalf("image call did not receive the designer output")
	}
	snap := h.state.Snapshot()
	if snap.Designer != nil {
		t.Fatalf("designer should be consumed")
	}
	if snap.Result == nil || snap.Result.ImageDataURL == "" {
		t.Fatalf("missing image result")
	}
	if PhaseOf(snap) != PhaseDesign {
		t.Fatalf("phase = %q, want Design", PhaseOf(snap))
	}
	if got := h.gen.Calls(); !reflect.DeepEqual(got, []Call{CallCopy, CallDesigner, CallImage}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestChainedDesignImageFailureRollsBackDesigner(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	h.gen.image = func(domain.ImageRequest) (*domain.ImageResult, error) {
		return nil, errors.New("render failed")
	}
	err := h.orch.GenerateDesign(ctx)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	snap := h.state.Snapshot()
	if snap.Designer != nil {
		t.Fatalf("designer left dangling after image failure")
	}
	if snap.Result != nil {
		t.Fatalf("unexpected result")
	}
	if PhaseOf(snap) != PhaseReview {
		t.Fatalf("phase = %q, want Review", PhaseOf(snap))
	}
	if err := h.orch.Available(ActionGenerateDesign); err != nil {
		t.Fatalf("design should be offered again: %v", err)
	}
	want := []string{"copy:succeeded", "designer:succeeded", "image:failed", "designer:rolled_back"}
	if got := h.rec.Statuses(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestEmptyImageIsAFailure(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	h.gen.image = func(domain.ImageRequest) (*domain.ImageResult, error) {
		return &domain.ImageResult{}, nil
	}
	if err := h.orch.GenerateDesign(ctx); !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if PhaseOf(h.state.Snapshot()) != PhaseReview {
		t.Fatalf("expected to stay in Review")
	}
}

func TestLandingPageSeparateDesignerAndImage(t *testing.T) {
	h := newHarness(t, FlowLandingPage)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.Available(ActionGenerateImage); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("image requires a designer output, got %v", err)
	}
	if err := h.orch.GenerateDesigner(ctx); err != nil {
		t.Fatal(err)
	}
	snap := h.state.Snapshot()
	if snap.Designer == nil || PhaseOf(snap) != PhaseReview {
		t.Fatalf("designer = %v phase = %q", snap.Designer, PhaseOf(snap))
	}
	if err := h.orch.GenerateImage(ctx); err != nil {
		t.Fatal(err)
	}
	snap = h.state.Snapshot()
	if snap.Designer != nil || snap.Result == nil || PhaseOf(snap) != PhaseDesign {
		t.Fatalf("unexpected state after image: designer=%v result=%v", snap.Designer, snap.Result)
	}
}

func TestEditCopyGatedByDownstream(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.EditCopy(func(c *domain.CreativeCopy) { c.Headline = "Edited" }); err != nil {
		t.Fatalf("EditCopy in review: %v", err)
	}
	if h.state.CopyData().Headline != "Edited" {
		t.Fatalf("edit not applied")
	}
	if err := h.orch.GenerateDesign(ctx); err != nil {
		t.Fatal(err)
	}
	err := h.orch.EditCopy(func(c *domain.CreativeCopy) { c.Headline = "Again" })
	if !errors.Is(err, domain.ErrDownstreamExists) {
		t.Fatalf("expected ErrDownstreamExists, got %v", err)
	}
	if _, err := h.orch.Start(ctx, ActionGenerateCopy); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("copy regeneration should be gated by the result, got %v", err)
	}
	if err := h.orch.BackToCopy(); err != nil {
		t.Fatal(err)
	}
	snap := h.state.Snapshot()
	if snap.Result != nil || PhaseOf(snap) != PhaseReview || snap.CopyData.Headline != "Edited" {
		t.Fatalf("BackToCopy left %+v", snap)
	}
	if err := h.orch.EditCopy(func(c *domain.CreativeCopy) { c.Headline = "Again" }); err != nil {
		t.Fatalf("EditCopy after BackToCopy: %v", err)
	}
}

func TestRegenerateDesignKeepsCopy(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.GenerateDesign(ctx); err != nil {
		t.Fatal(err)
	}
	before := h.state.Snapshot()
	h.gen.image = func(domain.ImageRequest) (*domain.ImageResult, error) {
		return &domain.ImageResult{ImageDataURL: "data:image/png;base64,BBBB"}, nil
	}
	if err := h.orch.GenerateDesign(ctx); err != nil {
		t.Fatal(err)
	}
	after := h.state.Snapshot()
	if after.Result.ImageDataURL != "data:image/png;base64,BBBB" {
		t.Fatalf("result not replaced")
	}
	if !reflect.DeepEqual(before.CopyData, after.CopyData) || !reflect.DeepEqual(before.Inputs, after.Inputs) {
		t.Fatalf("upstream changed by design regeneration")
	}
}

func TestResetDropsInFlightResult(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	release := make(chan struct{})
	started := make(chan struct{})
	h.gen.copy = func(req domain.CreativeCopyRequest) (*domain.CreativeCopy, error) {
		close(started)
		<-release
		return stubCreativeCopy(req)
	}
	done, err := h.orch.Start(context.Background(), ActionGenerateCopy)
	if err != nil {
		t.Fatal(err)
	}
	<-started
	h.orch.StartOver()
	close(release)
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale from the dropped call, got %v", err)
	}

	snap := h.state.Snapshot()
	if snap.CopyData != nil {
		t.Fatalf("result of a reset wizard was committed")
	}
	if snap.Step != 1 || len(snap.Inputs.Images) != 0 || len(snap.Pending) != 0 || snap.LastError != "" {
		t.Fatalf("reset state not restored: %+v", snap)
	}
	if got := h.rec.Statuses(); !reflect.DeepEqual(got, []string{"copy:discarded"}) {
		t.Fatalf("events = %v", got)
	}
}

func TestDisposedStateRejectsDispatch(t *testing.T) {
	h := newHarness(t, FlowAdCreative)
	h.fill(t)
	h.state.Dispose()
	if _, err := h.orch.Start(context.Background(), ActionGenerateCopy); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestUpstreamInFlightBlocksDependent(t *testing.T) {
	h := newHarness(t, FlowLandingPage)
	h.fill(t)
	ctx := context.Background()
	if err := h.orch.GenerateCopy(ctx); err != nil {
		t.Fatal(err)
	}
	release := make(chan struct{})
	started := make(chan struct{})
	h.gen.designer = func(req domain.DesignerRequest) (*domain.DesignerOutput, error) {
		close(started)
		<-release
		return stubDesigner(req)
	}
	done, err := h.orch.Start(ctx, ActionGenerateDesigner)
	if err != nil {
		t.Fatal(err)
	}
	<-started
	if _, err := h.orch.Start(ctx, ActionGenerateCopy); !errors.Is(err, domain.ErrInFlight) {
		t.Fatalf("copy regeneration during designer call: %v", err)
	}
	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("designer call did not finish")
	}
}
