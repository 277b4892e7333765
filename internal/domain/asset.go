package domain

import (
	"encoding/base64"
	"strings"
)

// Image is an uploaded product photo owned by a wizard session.
type Image struct {
	Name   string
	MIME   string
	Data   []byte
	Width  int
	Height int
}

// DataURL renders the image as a base64 data URL for model payloads.
func (i Image) DataURL() string {
	mime := i.MIME
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Clone returns a deep copy of the image.
func (i Image) Clone() Image {
	i.Data = append([]byte(nil), i.Data...)
	return i
}

// AngleID identifies a marketing angle from a closed set.
type AngleID string

const (
	AngleBenefit     AngleID = "benefit"
	AnglePainPoint   AngleID = "pain-point"
	AngleLifestyle   AngleID = "lifestyle"
	AngleUrgency     AngleID = "urgency"
	AngleSocialProof AngleID = "social-proof"
	AngleCuriosity   AngleID = "curiosity"
)

// AngleIDs lists every known angle in display order.
var AngleIDs = []AngleID{AngleBenefit, AnglePainPoint, AngleLifestyle, AngleUrgency, AngleSocialProof, AngleCuriosity}

// ParseAngleID normalizes model output such as "Pain Point" or "social_proof".
func ParseAngleID(s string) (AngleID, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	return parseEnum(s, AngleIDs)
}

// Angle is a marketing strategy framing offered before copy generation.
type Angle struct {
	ID          AngleID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Preview     string  `json:"preview"`
	Hook        string  `json:"hook"`
}

// GeneratedCopy is one ad copy variant. Hashtags is nil for short copies.
type GeneratedCopy struct {
	Headline     string   `json:"headline"`
	Body         string   `json:"body"`
	CallToAction string   `json:"call_to_action"`
	Hashtags     []string `json:"hashtags"`
}

// Feature is a single selling point of a creative copy.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreativeCopy is the text layer of an ad creative or landing page.
type CreativeCopy struct {
	Headline     string    `json:"headline"`
	Subheadline  string    `json:"subheadline"`
	Features     []Feature `json:"features"`
	CallToAction string    `json:"call_to_action"`
	PriceText    string    `json:"price_text"`
}

// Clone returns a deep copy of the creative copy.
func (c *CreativeCopy) Clone() *CreativeCopy {
	if c == nil {
		return nil
	}
	out := *c
	out.Features = append([]Feature(nil), c.Features...)
	return &out
}

// Palette lists the colors used by a composition.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Gradient is a linear gradient hint.
type Gradient struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Angle int    `json:"angle"`
}

// Typography describes font choices per text role.
type Typography struct {
	HeadlineFont string `json:"headline_font"`
	BodyFont     string `json:"body_font"`
	Weight       string `json:"weight"`
	Case         string `json:"case"`
}

// ZoneHint is a layout hint for one zone of the composition.
type ZoneHint struct {
	Zone      string `json:"zone"`
	Layout    string `json:"layout"`
	Alignment string `json:"alignment"`
}

// DesignerOutput holds styling tokens only. It never carries copy text.
type DesignerOutput struct {
	Palette    Palette    `json:"palette"`
	Gradients  []Gradient `json:"gradients"`
	Typography Typography `json:"typography"`
	Zones      []ZoneHint `json:"zones"`
}

// Clone returns a deep copy of the designer output.
func (d *DesignerOutput) Clone() *DesignerOutput {
	if d == nil {
		return nil
	}
	out := *d
	out.Gradients = append([]Gradient(nil), d.Gradients...)
	out.Zones = append([]ZoneHint(nil), d.Zones...)
	return &out
}

// ImageResult is the final rendered image.
type ImageResult struct {
	ImageDataURL string `json:"image_data_url"`
}
