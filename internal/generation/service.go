package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/wizard"
)

// Options configures a Service.
type Options struct {
	Text   TextModel
	Image  ImageModel
	Logger *infra.Logger
}

// Service implements the wizard generation calls on top of a text model and
// an image model.
type Service struct {
	text   TextModel
	image  ImageModel
	logger *infra.Logger
}

const (
	minFeatures = 3
	maxFeatures = 4
)

// NewService builds a Service. Without a text model the static model is
// used; an image model is required.
func NewService(opts Options) (*Service, error) {
	if opts.Image == nil {
		return nil, errors.New("generation: image model is required")
	}
	text := opts.Text
	if text == nil {
		text = NewStaticTextModel()
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{text: text, image: opts.Image, logger: logger}, nil
}

// TextModelName reports the configured text backend.
func (s *Service) TextModelName() string { return s.text.Name() }

// ImageModelName reports the configured image backend.
func (s *Service) ImageModelName() string { return s.image.Name() }

func (s *Service) GenerateAngles(ctx context.Context, req domain.AnglesRequest) ([]domain.Angle, error) {
	raw, err := s.complete(ctx, TextRequest{
		Task:        TaskAngles,
		System:      systemPrompt,
		Prompt:      buildAnglesPrompt(req),
		Images:      req.Images,
		Temperature: 0.8,
		Brief: Brief{
			ProductName: req.ProductName,
			Price:       req.Price,
			Language:    req.Language,
			Tone:        req.Tone,
		},
	})
	if err != nil {
		return nil, err
	}
	payload, err := parseModelPayload[anglesPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse angles: %w", err)
	}
	angles := make([]domain.Angle, 0, len(payload.Angles))
	for _, a := range payload.Angles {
		id, ok := domain.ParseAngleID(string(a.ID))
		if !ok {
			s.logger.Debug().Str("angle_id", string(a.ID)).Msg("generation: dropping unknown angle")
			continue
		}
		a.ID = id
		a.Name = coalesce(a.Name, string(id))
		a.Hook = coalesce(a.Hook, a.Preview, a.Description)
		angles = append(angles, a)
	}
	if len(angles) == 0 {
		return nil, errors.New("model returned no usable angles")
	}
	return angles, nil
}

func (s *Service) GenerateCopies(ctx context.Context, req domain.CopiesRequest) ([]domain.GeneratedCopy, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("%w: copy count must be at least 1", domain.ErrInvalidInput)
	}
	raw, err := s.complete(ctx, TextRequest{
		Task:        TaskCopies,
		System:      systemPrompt,
		Prompt:      buildCopiesPrompt(req),
		Images:      req.Images,
		Temperature: 0.9,
		Brief: Brief{
			ProductName: req.ProductName,
			Price:       req.Price,
			Language:    req.Language,
			Tone:        req.Tone,
			Size:        req.Size,
			UseEmojis:   req.UseEmojis,
			Count:       req.Count,
			Angle:       req.Angle,
		},
	})
	if err != nil {
		return nil, err
	}
	payload, err := parseModelPayload[copiesPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse copies: %w", err)
	}
	if len(payload.Copies) < req.Count {
		return nil, fmt.Errorf("model returned %d copies, want %d", len(payload.Copies), req.Count)
	}
	copies := make([]domain.GeneratedCopy, req.Count)
	for i := range copies {
		p := payload.Copies[i]
		c := domain.GeneratedCopy{
			Headline:     strings.TrimSpace(p.Headline),
			Body:         strings.TrimSpace(p.Body),
			CallToAction: coalesce(p.CallToAction, p.CallToAction2, p.CTA),
		}
		if c.Body == "" {
			return nil, fmt.Errorf("copy %d has no body", i+1)
		}
		if req.Size.WantsHashtags() {
			c.Hashtags = normalizeHashtags(p.Hashtags, hashtagFallback(req.ProductName))
			if len(c.Hashtags) == 0 {
				return nil, fmt.Errorf("copy %d has no hashtags", i+1)
			}
		}
		copies[i] = c
	}
	return copies, nil
}

func (s *Service) GenerateCreativeCopy(ctx context.Context, req domain.CreativeCopyRequest) (*domain.CreativeCopy, error) {
	raw, err := s.complete(ctx, TextRequest{
		Task:        TaskCopy,
		System:      systemPrompt,
		Prompt:      buildCreativeCopyPrompt(req),
		Images:      req.Images,
		Temperature: 0.7,
		Brief: Brief{
			ProductName: req.ProductName,
			Price:       req.Price,
			Language:    req.Language,
		},
	})
	if err != nil {
		return nil, err
	}
	p, err := parseModelPayload[creativeCopyPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse creative copy: %w", err)
	}
	out := &domain.CreativeCopy{
		Headline:     strings.TrimSpace(p.Headline),
		Subheadline:  strings.TrimSpace(p.Subheadline),
		CallToAction: coalesce(p.CallToAction, p.CallToAction2),
		PriceText:    coalesce(p.PriceText, p.PriceText2, req.Price),
	}
	if out.Headline == "" {
		return nil, errors.New("creative copy has no headline")
	}
	for _, f := range p.Features {
		f.Title = strings.TrimSpace(f.Title)
		f.Description = strings.TrimSpace(f.Description)
		if f.Title == "" {
			continue
		}
		out.Features = append(out.Features, f)
		if len(out.Features) == maxFeatures {
			break
		}
	}
	if len(out.Features) < minFeatures {
		return nil, fmt.Errorf("creative copy has %d features, want at least %d", len(out.Features), minFeatures)
	}
	return out, nil
}

func (s *Service) GenerateDesigner(ctx context.Context, req domain.DesignerRequest) (*domain.DesignerOutput, error) {
	copyData := req.Copy
	raw, err := s.complete(ctx, TextRequest{
		Task:        TaskDesigner,
		System:      systemPrompt,
		Prompt:      buildDesignerPrompt(req),
		Images:      req.Images,
		Temperature: 0.5,
		Brief:       Brief{ProductName: req.Copy.Headline, Copy: &copyData},
	})
	if err != nil {
		return nil, err
	}
	out, err := parseModelPayload[domain.DesignerOutput](raw)
	if err != nil {
		return nil, fmt.Errorf("parse designer output: %w", err)
	}
	if out.Palette.Primary == "" {
		return nil, errors.New("designer output has no palette")
	}
	return &out, nil
}

func (s *Service) GenerateImage(ctx context.Context, req domain.ImageRequest) (*domain.ImageResult, error) {
	started := time.Now()
	rendered, err := s.image.RenderImage(ctx, RenderRequest{
		Prompt:      buildImagePrompt(req),
		Images:      req.Images,
		AspectRatio: req.AspectRatio,
		Seed:        req.Copy.Headline,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, s.image.Name(), err)
	}
	if rendered == nil || len(rendered.Data) == 0 {
		return nil, errors.New("image model returned no image")
	}
	mime := rendered.MIME
	if mime == "" {
		mime = http.DetectContentType(rendered.Data)
	}
	s.logger.Debug().
		Str("model", s.image.Name()).
		Int("bytes", len(rendered.Data)).
		Dur("duration", time.Since(started)).
		Msg("generation: image rendered")
	return &domain.ImageResult{
		ImageDataURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(rendered.Data),
	}, nil
}

func (s *Service) complete(ctx context.Context, req TextRequest) (string, error) {
	started := time.Now()
	raw, err := s.text.GenerateJSON(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, s.text.Name(), err)
	}
	s.logger.Debug().
		Str("model", s.text.Name()).
		Str("task", string(req.Task)).
		Int("images", len(req.Images)).
		Dur("duration", time.Since(started)).
		Msg("generation: text completed")
	return raw, nil
}

var _ wizard.Generator = (*Service)(nil)

func hashtagFallback(productName string) string {
	return strings.Join(strings.Fields(productName), "")
}
