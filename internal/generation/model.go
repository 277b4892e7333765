// Package generation implements the generation service used by the wizards:
// it turns wizard payloads into model prompts, calls a text or image model
// and normalizes what comes back.
package generation

import (
	"context"

	"adstudio/internal/domain"
)

// Task identifies the structured output a text call must produce.
type Task string

const (
	TaskAngles   Task = "angles"
	TaskCopies   Task = "copies"
	TaskCopy     Task = "creative_copy"
	TaskDesigner Task = "designer"
)

// Brief carries the product facts of a call. Remote models read them from
// the prompt; the static model builds its output from them directly.
type Brief struct {
	ProductName string
	Price       string
	Language    domain.Language
	Tone        domain.Tone
	Size        domain.CopySize
	UseEmojis   bool
	Count       int
	Angle       domain.Angle
	Copy        *domain.CreativeCopy
}

// TextRequest is a single structured JSON completion.
type TextRequest struct {
	Task        Task
	System      string
	Prompt      string
	Images      []domain.Image
	Temperature float64
	Brief       Brief
}

// TextModel returns the raw JSON text produced for a request.
type TextModel interface {
	Name() string
	GenerateJSON(ctx context.Context, req TextRequest) (string, error)
}

// RenderRequest asks an image model for one composition.
type RenderRequest struct {
	Prompt      string
	Images      []domain.Image
	AspectRatio string
	Seed        string
}

// RenderedImage is the raw output of an image model.
type RenderedImage struct {
	MIME string
	Data []byte
}

// ImageModel renders a single image.
type ImageModel interface {
	Name() string
	RenderImage(ctx context.Context, req RenderRequest) (*RenderedImage, error)
}
