package domain

import "strings"

// MaxImages caps the product photos a wizard holds.
const MaxImages = 8

// Language enumerates the output languages supported by every wizard.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageArabic  Language = "ar"
)

// Dialect refines Arabic output. It is ignored for any other language.
type Dialect string

const (
	DialectMSA       Dialect = "msa"
	DialectDarija    Dialect = "darija"
	DialectEgyptian  Dialect = "egyptian"
	DialectLevantine Dialect = "levantine"
	DialectGulf      Dialect = "gulf"
)

// Tone enumerates copywriting styles.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneLuxury       Tone = "luxury"
	TonePlayful      Tone = "playful"
	ToneUrgent       Tone = "urgent"
)

// Currency enumerates price currencies offered in the pricing step.
type Currency string

const (
	CurrencyDZD Currency = "DZD"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyMAD Currency = "MAD"
	CurrencyTND Currency = "TND"
	CurrencySAR Currency = "SAR"
	CurrencyAED Currency = "AED"
)

// CopySize controls copy length and whether hashtags are produced.
type CopySize string

const (
	CopySizeShort  CopySize = "short"
	CopySizeMedium CopySize = "medium"
	CopySizeLong   CopySize = "long"
)

// WantsHashtags reports whether copies of this size carry hashtags.
func (s CopySize) WantsHashtags() bool {
	return s == CopySizeMedium || s == CopySizeLong
}

var (
	languages  = []Language{LanguageEnglish, LanguageFrench, LanguageArabic}
	dialects   = []Dialect{DialectMSA, DialectDarija, DialectEgyptian, DialectLevantine, DialectGulf}
	tones      = []Tone{ToneProfessional, ToneCasual, ToneFriendly, ToneLuxury, TonePlayful, ToneUrgent}
	currencies = []Currency{CurrencyDZD, CurrencyEUR, CurrencyUSD, CurrencyMAD, CurrencyTND, CurrencySAR, CurrencyAED}
	copySizes  = []CopySize{CopySizeShort, CopySizeMedium, CopySizeLong}
)

// ParseLanguage maps free-form input onto a supported language.
func ParseLanguage(s string) (Language, bool) {
	return parseEnum(strings.ToLower(s), languages)
}

// ParseDialect maps free-form input onto a supported Arabic dialect.
func ParseDialect(s string) (Dialect, bool) {
	return parseEnum(strings.ToLower(s), dialects)
}

// ParseTone maps free-form input onto a supported tone.
func ParseTone(s string) (Tone, bool) {
	return parseEnum(strings.ToLower(s), tones)
}

// ParseCurrency maps free-form input onto a supported currency.
func ParseCurrency(s string) (Currency, bool) {
	return parseEnum(strings.ToUpper(s), currencies)
}

// ParseCopySize maps free-form input onto a supported copy size.
func ParseCopySize(s string) (CopySize, bool) {
	return parseEnum(strings.ToLower(s), copySizes)
}

func parseEnum[T ~string](s string, allowed []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range allowed {
		if string(v) == s {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Aspect ratios accepted by the image-producing wizards.
var AspectRatios = []string{"1:1", "4:5", "9:16", "16:9"}

// ValidAspectRatio reports whether ratio is one of AspectRatios.
func ValidAspectRatio(ratio string) bool {
	_, ok := parseEnum(ratio, AspectRatios)
	return ok
}

// PriceCurrency returns the supported currency code that price already
// carries as its first or last token.
func PriceCurrency(price string) (Currency, bool) {
	fields := strings.Fields(price)
	if len(fields) < 2 {
		return "", false
	}
	for _, tok := range []string{fields[len(fields)-1], fields[0]} {
		tok = strings.ToUpper(tok)
		for _, c := range currencies {
			if tok == string(c) {
				return c, true
			}
		}
	}
	return "", false
}
