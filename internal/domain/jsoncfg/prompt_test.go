package jsoncfg

import (
	"testing"

	"adstudio/internal/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }

func TestInputsPatchNormalizeTrimsAndClamps(t *testing.T) {
	p := &InputsPatch{
		ProductName: strPtr("  NovaX  "),
		Language:    strPtr(" EN "),
		Currency:    strPtr("dzd"),
		Tone:        strPtr("Casual"),
		Count:       intPtr(42),
	}
	p.Normalize()

	if *p.ProductName != "NovaX" {
		t.Fatalf("ProductName = %q, want %q", *p.ProductName, "NovaX")
	}
	if *p.Language != "en" {
		t.Fatalf("Language = %q, want %q", *p.Language, "en")
	}
	if *p.Currency != "DZD" {
		t.Fatalf("Currency = %q, want %q", *p.Currency, "DZD")
	}
	if *p.Tone != "casual" {
		t.Fatalf("Tone = %q, want %q", *p.Tone, "casual")
	}
	if *p.Count != MaxCopyCount {
		t.Fatalf("Count clamp = %d, want %d", *p.Count, MaxCopyCount)
	}
}

func TestInputsPatchNormalizeMinimumCount(t *testing.T) {
	p := &InputsPatch{Count: intPtr(-3)}
	p.Normalize()
	if *p.Count != 1 {
		t.Fatalf("Count = %d, want 1", *p.Count)
	}
}

func TestInputsPatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   InputsPatch
		wantErr bool
	}{
		{name: "empty patch", patch: InputsPatch{}},
		{name: "valid fields", patch: InputsPatch{Language: strPtr("ar"), Dialect: strPtr("darija"), Tone: strPtr("casual"), Currency: strPtr("DZD"), Size: strPtr("short"), AspectRatio: strPtr("9:16")}},
		{name: "clearing dialect", patch: InputsPatch{Dialect: strPtr("")}},
		{name: "unknown language", patch: InputsPatch{Language: strPtr("de")}, wantErr: true},
		{name: "unknown dialect", patch: InputsPatch{Dialect: strPtr("klingon")}, wantErr: true},
		{name: "unknown tone", patch: InputsPatch{Tone: strPtr("angry")}, wantErr: true},
		{name: "unknown currency", patch: InputsPatch{Currency: strPtr("XYZ")}, wantErr: true},
		{name: "unknown size", patch: InputsPatch{Size: strPtr("huge")}, wantErr: true},
		{name: "bad aspect", patch: InputsPatch{AspectRatio: strPtr("7:3")}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCopyPatchApplyTo(t *testing.T) {
	c := &domain.CreativeCopy{Headline: "old", Subheadline: "keep"}
	CopyPatch{Headline: strPtr(" new "), Features: []domain.Feature{{Title: "Fast"}}}.ApplyTo(c)
	if c.Headline != "new" {
		t.Fatalf("Headline = %q, want %q", c.Headline, "new")
	}
	if c.Subheadline != "keep" {
		t.Fatalf("Subheadline = %q, want %q", c.Subheadline, "keep")
	}
	if len(c.Features) != 1 || c.Features[0].Title != "Fast" {
		t.Fatalf("Features = %#v", c.Features)
	}
}

func TestLocaleDefaults(t *testing.T) {
	if got := LanguageForLocale("fr"); got != domain.LanguageFrench {
		t.Fatalf("LanguageForLocale(fr) = %q", got)
	}
	if got := LanguageForLocale("id"); got != DefaultLanguage {
		t.Fatalf("LanguageForLocale(id) = %q, want default", got)
	}
	if got := CurrencyForCountry("dz"); got != domain.CurrencyDZD {
		t.Fatalf("CurrencyForCountry(dz) = %q", got)
	}
	if got := CurrencyForCountry(""); got != DefaultCurrency {
		t.Fatalf("CurrencyForCountry(\"\") = %q", got)
	}
}
