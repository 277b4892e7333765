package handlers

import (
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/wizard"
)

type imageView struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	MIME   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

type inputsView struct {
	Images       []imageView `json:"images"`
	ProductName  string      `json:"product_name"`
	Language     string      `json:"language"`
	Dialect      string      `json:"dialect,omitempty"`
	Tone         string      `json:"tone"`
	Price        string      `json:"price"`
	Currency     string      `json:"currency"`
	CustomPrompt string      `json:"custom_prompt"`
	Size         string      `json:"size,omitempty"`
	UseEmojis    bool        `json:"use_emojis"`
	Count        int         `json:"count,omitempty"`
	AspectRatio  string      `json:"aspect_ratio,omitempty"`
}

type resultsView struct {
	Angles        []domain.Angle         `json:"angles,omitempty"`
	SelectedAngle string                 `json:"selected_angle,omitempty"`
	Copies        []domain.GeneratedCopy `json:"copies,omitempty"`
	Copy          *domain.CreativeCopy   `json:"copy,omitempty"`
	Designer      *domain.DesignerOutput `json:"designer,omitempty"`
	Image         *domain.ImageResult    `json:"image,omitempty"`
}

type stateView struct {
	ID        string          `json:"id"`
	Flow      wizard.Flow     `json:"flow"`
	Phase     wizard.Phase    `json:"phase"`
	Step      int             `json:"step"`
	StepCount int             `json:"step_count"`
	CreatedAt time.Time       `json:"created_at"`
	Inputs    inputsView      `json:"inputs"`
	Results   resultsView     `json:"results"`
	Pending   []wizard.Action `json:"pending"`
	Available []wizard.Action `json:"available"`
	LastError string          `json:"last_error,omitempty"`
}

func newStateView(sess *wizard.Session) stateView {
	s := sess.State.Snapshot()
	in := s.Inputs

	images := make([]imageView, len(in.Images))
	for i, img := range in.Images {
		images[i] = imageView{Index: i, Name: img.Name, MIME: img.MIME, Width: img.Width, Height: img.Height, Bytes: len(img.Data)}
	}
	inputs := inputsView{
		Images:       images,
		ProductName:  in.ProductName,
		Language:     string(in.Language),
		Dialect:      string(in.Dialect),
		Tone:         string(in.Tone),
		Price:        in.Price,
		Currency:     string(in.Currency),
		CustomPrompt: in.CustomPrompt,
	}
	if s.Flow == wizard.FlowAdCopies {
		inputs.Size = string(in.Size)
		inputs.UseEmojis = in.UseEmojis
		inputs.Count = in.Count
	} else {
		inputs.AspectRatio = in.AspectRatio
	}

	pending := s.Pending
	if pending == nil {
		pending = []wizard.Action{}
	}
	available := sess.Orchestrator.AvailableActions()
	if available == nil {
		available = []wizard.Action{}
	}

	return stateView{
		ID:        sess.ID,
		Flow:      s.Flow,
		Phase:     wizard.PhaseOf(s),
		Step:      s.Step,
		StepCount: s.Flow.StepCount(),
		CreatedAt: sess.CreatedAt,
		Inputs:    inputs,
		Results: resultsView{
			Angles:        s.Angles,
			SelectedAngle: string(s.SelectedAngle),
			Copies:        s.Copies,
			Copy:          s.CopyData,
			Designer:      s.Designer,
			Image:         s.Result,
		},
		Pending:   pending,
		Available: available,
		LastError: s.LastError,
	}
}
