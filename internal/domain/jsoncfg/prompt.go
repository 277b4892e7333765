package jsoncfg

import (
	"fmt"
	"strings"

	"adstudio/internal/domain"
)

// InputsPatch is the JSON contract for editing wizard inputs. Nil fields are left untouched.
type InputsPatch struct {
	ProductName  *string `json:"product_name,omitempty"`
	Language     *string `json:"language,omitempty"`
	Dialect      *string `json:"dialect,omitempty"`
	Tone         *string `json:"tone,omitempty"`
	Price        *string `json:"price,omitempty"`
	Currency     *string `json:"currency,omitempty"`
	CustomPrompt *string `json:"custom_prompt,omitempty"`
	Size         *string `json:"size,omitempty"`
	UseEmojis    *bool   `json:"use_emojis,omitempty"`
	Count        *int    `json:"count,omitempty"`
	AspectRatio  *string `json:"aspect_ratio,omitempty"`
}

const (
	// DefaultLanguage is applied when neither the request nor the locale names one.
	DefaultLanguage = domain.LanguageEnglish
	// DefaultTone is the tone of a fresh ad-copies wizard.
	DefaultTone = domain.ToneProfessional
	// DefaultCurrency is used when the country gives no better hint.
	DefaultCurrency = domain.CurrencyUSD
	// DefaultCopySize is the copy length of a fresh ad-copies wizard.
	DefaultCopySize = domain.CopySizeMedium
	// DefaultCopyCount is the number of copies requested by default.
	DefaultCopyCount = 3
	// MaxCopyCount caps a single copy generation batch.
	MaxCopyCount = 5
	// DefaultAspectRatio is used by the image-producing wizards.
	DefaultAspectRatio = "1:1"
	// MaxCustomPromptLength bounds free-text instructions.
	MaxCustomPromptLength = 500
	// MaxProductNameLength bounds the product name.
	MaxProductNameLength = 120
)

// Normalize trims free text, lowercases enum values and clamps the copy count.
func (p *InputsPatch) Normalize() {
	if p == nil {
		return
	}
	trim := func(v *string) {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
	trim(p.ProductName)
	trim(p.Price)
	trim(p.CustomPrompt)
	trim(p.AspectRatio)
	lower := func(v *string) {
		if v != nil {
			*v = strings.ToLower(strings.TrimSpace(*v))
		}
	}
	lower(p.Language)
	lower(p.Dialect)
	lower(p.Tone)
	lower(p.Size)
	if p.Currency != nil {
		*p.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Count != nil {
		if *p.Count < 1 {
			*p.Count = 1
		}
		if *p.Count > MaxCopyCount {
			*p.Count = MaxCopyCount
		}
	}
}

// Validate ensures every provided field holds a supported value.
func (p InputsPatch) Validate() error {
	if p.ProductName != nil && len([]rune(*p.ProductName)) > MaxProductNameLength {
		return fmt.Errorf("product_name must be at most %d characters", MaxProductNameLength)
	}
	if p.Language != nil {
		if _, ok := domain.ParseLanguage(*p.Language); !ok {
			return fmt.Errorf("language must be one of en, fr, ar")
		}
	}
	if p.Dialect != nil && *p.Dialect != "" {
		if _, ok := domain.ParseDialect(*p.Dialect); !ok {
			return fmt.Errorf("dialect %q is not supported", *p.Dialect)
		}
	}
	if p.Tone != nil {
		if _, ok := domain.ParseTone(*p.Tone); !ok {
			return fmt.Errorf("tone %q is not supported", *p.Tone)
		}
	}
	if p.Currency != nil {
		if _, ok := domain.ParseCurrency(*p.Currency); !ok {
			return fmt.Errorf("currency %q is not supported", *p.Currency)
		}
	}
	if p.Size != nil {
		if _, ok := domain.ParseCopySize(*p.Size); !ok {
			return fmt.Errorf("size must be one of short, medium, long")
		}
	}
	if p.CustomPrompt != nil && len([]rune(*p.CustomPrompt)) > MaxCustomPromptLength {
		return fmt.Errorf("custom_prompt must be at most %d characters", MaxCustomPromptLength)
	}
	if p.AspectRatio != nil && !domain.ValidAspectRatio(*p.AspectRatio) {
		return fmt.Errorf("aspect_ratio must be one of %s", strings.Join(domain.AspectRatios, ", "))
	}
	return nil
}

// CopyPatch is the JSON contract for editing a creative copy in the review phase.
type CopyPatch struct {
	Headline     *string          `json:"headline,omitempty"`
	Subheadline  *string          `json:"subheadline,omitempty"`
	Features     []domain.Feature `json:"features,omitempty"`
	CallToAction *string          `json:"call_to_action,omitempty"`
	PriceText    *string          `json:"price_text,omitempty"`
}

// ApplyTo merges the patch into c.
func (p CopyPatch) ApplyTo(c *domain.CreativeCopy) {
	if c == nil {
		return
	}
	if p.Headline != nil {
		c.Headline = strings.TrimSpace(*p.Headline)
	}
	if p.Subheadline != nil {
		c.Subheadline = strings.TrimSpace(*p.Subheadline)
	}
	if p.Features != nil {
		c.Features = append([]domain.Feature(nil), p.Features...)
	}
	if p.CallToAction != nil {
		c.CallToAction = strings.TrimSpace(*p.CallToAction)
	}
	if p.PriceText != nil {
		c.PriceText = strings.TrimSpace(*p.PriceText)
	}
}

// LanguageForLocale maps a request locale onto a wizard language.
func LanguageForLocale(locale string) domain.Language {
	if lang, ok := domain.ParseLanguage(locale); ok {
		return lang
	}
	return DefaultLanguage
}

// CurrencyForCountry picks the default currency for an ISO country code.
func CurrencyForCountry(country string) domain.Currency {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "DZ":
		return domain.CurrencyDZD
	case "MA":
		return domain.CurrencyMAD
	case "TN":
		return domain.CurrencyTND
	case "SA":
		return domain.CurrencySAR
	case "AE":
		return domain.CurrencyAED
	case "FR", "BE", "DE", "ES", "IT", "NL", "PT", "IE", "AT", "LU":
		return domain.CurrencyEUR
	default:
		return DefaultCurrency
	}
}
