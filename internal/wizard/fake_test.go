package wizard

import (
	"context"
	"errors"
	"sync"

	"adstudio/internal/domain"
)

type fakeGenerator struct {
	mu       sync.Mutex
	calls    []Call
	angles   func(domain.AnglesRequest) ([]domain.Angle, error)
	copies   func(domain.CopiesRequest) ([]domain.GeneratedCopy, error)
	copy     func(domain.CreativeCopyRequest) (*domain.CreativeCopy, error)
	designer func(domain.DesignerRequest) (*domain.DesignerOutput, error)
	image    func(domain.ImageRequest) (*domain.ImageResult, error)
}

func (f *fakeGenerator) track(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeGenerator) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *fakeGenerator) GenerateAngles(_ context.Context, req domain.AnglesRequest) ([]domain.Angle, error) {
	f.track(CallAngles)
	if f.angles == nil {
		return nil, errors.New("angles not stubbed")
	}
	return f.angles(req)
}

func (f *fakeGenerator) GenerateCopies(_ context.Context, req domain.CopiesRequest) ([]domain.GeneratedCopy, error) {
	f.track(CallCopies)
	if f.copies == nil {
		return nil, errors.New("copies not stubbed")
	}
	return f.copies(req)
}

func (f *fakeGenerator) GenerateCreativeCopy(_ context.Context, req domain.CreativeCopyRequest) (*domain.CreativeCopy, error) {
	f.track(CallCopy)
	if f.copy == nil {
		return nil, errors.New("copy not stubbed")
	}
	return f.copy(req)
}

func (f *fakeGenerator) GenerateDesigner(_ context.Context, req domain.DesignerRequest) (*domain.DesignerOutput, error) {
	f.track(CallDesigner)
	if f.designer == nil {
		return nil, errors.New("designer not stubbed")
	}
	return f.designer(req)
}

func (f *fakeGenerator) GenerateImage(_ context.Context, req domain.ImageRequest) (*domain.ImageResult, error) {
	f.track(CallImage)
	if f.image == nil {
		return nil, errors.New("image not stubbed")
	}
	return f.image(req)
}

type memRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *memRecorder) Record(_ context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *memRecorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = string(ev.Call) + ":" + ev.Status
	}
	return out
}

var testImage = domain.Image{Name: "img1.png", MIME: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func sixAngles() []domain.Angle {
	out := make([]domain.Angle, 0, len(domain.AngleIDs))
	for _, id := range domain.AngleIDs {
		out = append(out, domain.Angle{ID: id, Name: string(id), Hook: "hook " + string(id)})
	}
	return out
}

func stubCopies(req domain.CopiesRequest) ([]domain.GeneratedCopy, error) {
	out := make([]domain.GeneratedCopy, req.Count)
	for i := range out {
		out[i] = domain.GeneratedCopy{
			Headline:     req.ProductName,
			Body:         "body for " + string(req.Angle.ID),
			CallToAction: "Buy now",
			Hashtags:     []string{"#" + req.ProductName},
		}
	}
	return out, nil
}

func stubCreativeCopy(req domain.CreativeCopyRequest) (*domain.CreativeCopy, error) {
	return &domain.CreativeCopy{
		Headline:     req.ProductName,
		Subheadline:  "Made for you",
		Features:     []domain.Feature{{Title: "Fast"}, {Title: "Light"}, {Title: "Strong"}},
		CallToAction: "Order",
		PriceText:    req.Price,
	}, nil
}

func stubDesigner(domain.DesignerRequest) (*domain.DesignerOutput, error) {
	return &domain.DesignerOutput{Palette: domain.Palette{Primary: "#112233"}}, nil
}

func stubImage(domain.ImageRequest) (*domain.ImageResult, error) {
	return &domain.ImageResult{ImageDataURL: "data:image/png;base64,AAAA"}, nil
}
