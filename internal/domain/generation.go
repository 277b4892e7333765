package domain

// AnglesRequest is the payload for angle generation.
type AnglesRequest struct {
	Images       []Image
	Language     Language
	Dialect      Dialect
	Tone         Tone
	Price        string
	ProductName  string
	CustomPrompt string
}

// CopiesRequest is the payload for ad copy generation.
type CopiesRequest struct {
	Images       []Image
	Language     Language
	Dialect      Dialect
	Tone         Tone
	Size         CopySize
	UseEmojis    bool
	Price        string
	ProductName  string
	Count        int
	Angle        Angle
	CustomPrompt string
}

// CreativeCopyRequest is the payload for creative copy generation.
type CreativeCopyRequest struct {
	Images       []Image
	Language     Language
	Dialect      Dialect
	Price        string
	ProductName  string
	CustomPrompt string
}

// DesignerRequest is the payload for design token generation.
type DesignerRequest struct {
	Copy         CreativeCopy
	Images       []Image
	AspectRatio  string
	CustomPrompt string
}

// ImageRequest is the payload for final image rendering.
type ImageRequest struct {
	Designer     DesignerOutput
	Copy         CreativeCopy
	Images       []Image
	AspectRatio  string
	CustomPrompt string
}
