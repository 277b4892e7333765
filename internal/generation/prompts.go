package generation

import (
	"fmt"
	"strings"

	"adstudio/internal/domain"
)

const systemPrompt = "You are a senior performance marketer writing for small online shops in North Africa, the Middle East and Europe. You only respond with valid JSON."

var languageNames = map[domain.Language]string{
	domain.LanguageEnglish: "English",
	domain.LanguageFrench:  "French",
	domain.LanguageArabic:  "Arabic",
}

var dialectNames = map[domain.Dialect]string{
	domain.DialectMSA:       "Modern Standard Arabic",
	domain.DialectDarija:    "Maghrebi Darija (Algerian and Moroccan colloquial)",
	domain.DialectEgyptian:  "Egyptian colloquial Arabic",
	domain.DialectLevantine: "Levantine colloquial Arabic",
	domain.DialectGulf:      "Gulf colloquial Arabic",
}

var sizeGuides = map[domain.CopySize]string{
	domain.CopySizeShort:  "one punchy sentence of at most 20 words, no hashtags",
	domain.CopySizeMedium: "two to three sentences of about 50 words, followed by 3 to 5 hashtags",
	domain.CopySizeLong:   "a storytelling paragraph of about 120 words, followed by 5 to 8 hashtags",
}

func languageLine(lang domain.Language, dialect domain.Dialect) string {
	name := languageNames[lang]
	if name == "" {
		name = "English"
	}
	if lang == domain.LanguageArabic {
		if d := dialectNames[dialect]; d != "" {
			return fmt.Sprintf("Write in %s (%s).", name, d)
		}
	}
	return fmt.Sprintf("Write in %s.", name)
}

func productLines(sb *strings.Builder, productName, price string) {
	if productName != "" {
		fmt.Fprintf(sb, "Product name: %q.\n", productName)
	} else {
		sb.WriteString("Product name: infer it from the photos.\n")
	}
	if price != "" {
		fmt.Fprintf(sb, "Price: %s.\n", price)
	}
}

func customLine(sb *strings.Builder, custom string) {
	if custom = strings.TrimSpace(custom); custom != "" {
		fmt.Fprintf(sb, "Extra instructions from the seller: %s\n", custom)
	}
}

func buildAnglesPrompt(req domain.AnglesRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("Study the attached product photos and propose marketing angles.\n")
	productLines(sb, req.ProductName, req.Price)
	fmt.Fprintf(sb, "Tone: %s.\n", req.Tone)
	sb.WriteString(languageLine(req.Language, req.Dialect))
	sb.WriteString("\n")
	ids := make([]string, len(domain.AngleIDs))
	for i, id := range domain.AngleIDs {
		ids[i] = string(id)
	}
	fmt.Fprintf(sb, "Return 5 or 6 angles, each with a distinct id taken from: %s.\n", strings.Join(ids, ", "))
	customLine(sb, req.CustomPrompt)
	sb.WriteString(`Respond strictly as JSON: {"angles":[{"id":string,"name":string,"description":string,"preview":string,"hook":string}]}`)
	return sb.String()
}

func buildCopiesPrompt(req domain.CopiesRequest) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Write %d distinct ad copy variants for the product in the attached photos.\n", req.Count)
	productLines(sb, req.ProductName, req.Price)
	fmt.Fprintf(sb, "Marketing angle: %s. %s Hook idea: %s\n", coalesce(req.Angle.Name, string(req.Angle.ID)), req.Angle.Description, req.Angle.Hook)
	fmt.Fprintf(sb, "Tone: %s.\n", req.Tone)
	fmt.Fprintf(sb, "Length: %s.\n", sizeGuides[req.Size])
	if req.UseEmojis {
		sb.WriteString("Use a few relevant emojis.\n")
	} else {
		sb.WriteString("Do not use emojis.\n")
	}
	sb.WriteString(languageLine(req.Language, req.Dialect))
	sb.WriteString("\n")
	customLine(sb, req.CustomPrompt)
	sb.WriteString(`Respond strictly as JSON: {"copies":[{"headline":string,"body":string,"call_to_action":string,"hashtags":string[]}]}`)
	return sb.String()
}

func buildCreativeCopyPrompt(req domain.CreativeCopyRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("Write the text layer of a single ad creative for the product in the attached photos.\n")
	productLines(sb, req.ProductName, req.Price)
	sb.WriteString(languageLine(req.Language, req.Dialect))
	sb.WriteString("\n")
	sb.WriteString("Give 3 or 4 short features. Keep the headline under 8 words.\n")
	customLine(sb, req.CustomPrompt)
	sb.WriteString(`Respond strictly as JSON: {"headline":string,"subheadline":string,"features":[{"title":string,"description":string}],"call_to_action":string,"price_text":string}`)
	return sb.String()
}

func buildDesignerPrompt(req domain.DesignerRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("You are an art director. Derive styling tokens for an ad composition from the attached product photos and the copy below.\n")
	fmt.Fprintf(sb, "Aspect ratio: %s.\n", req.AspectRatio)
	writeCopy(sb, req.Copy)
	sb.WriteString("Return styling only: never rewrite or repeat the copy text.\n")
	customLine(sb, req.CustomPrompt)
	sb.WriteString(`Respond strictly as JSON: {"palette":{"primary":string,"secondary":string,"accent":string,"background":string,"text":string},"gradients":[{"from":string,"to":string,"angle":number}],"typography":{"headline_font":string,"body_font":string,"weight":string,"case":string},"zones":[{"zone":string,"layout":string,"alignment":string}]}`)
	return sb.String()
}

func buildImagePrompt(req domain.ImageRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("Render a finished, photorealistic marketing image featuring the product from the attached photos.\n")
	fmt.Fprintf(sb, "Aspect ratio: %s.\n", req.AspectRatio)
	writeCopy(sb, req.Copy)
	d := req.Designer
	fmt.Fprintf(sb, "Palette: primary %s, secondary %s, accent %s, background %s, text %s.\n",
		d.Palette.Primary, d.Palette.Secondary, d.Palette.Accent, d.Palette.Background, d.Palette.Text)
	for _, g := range d.Gradients {
		fmt.Fprintf(sb, "Gradient from %s to %s at %d degrees.\n", g.From, g.To, g.Angle)
	}
	if d.Typography.HeadlineFont != "" {
		fmt.Fprintf(sb, "Typography: headline %s, body %s, weight %s, case %s.\n",
			d.Typography.HeadlineFont, d.Typography.BodyFont, d.Typography.Weight, d.Typography.Case)
	}
	for _, z := range d.Zones {
		fmt.Fprintf(sb, "Zone %s: %s, aligned %s.\n", z.Zone, z.Layout, z.Alignment)
	}
	sb.WriteString("Render all text exactly as written, legibly, without spelling changes.\n")
	customLine(sb, req.CustomPrompt)
	return sb.String()
}

func writeCopy(sb *strings.Builder, c domain.CreativeCopy) {
	fmt.Fprintf(sb, "Headline: %q\n", c.Headline)
	if c.Subheadline != "" {
		fmt.Fprintf(sb, "Subheadline: %q\n", c.Subheadline)
	}
	for _, f := range c.Features {
		fmt.Fprintf(sb, "Feature: %q - %q\n", f.Title, f.Description)
	}
	if c.CallToAction != "" {
		fmt.Fprintf(sb, "Call to action: %q\n", c.CallToAction)
	}
	if c.PriceText != "" {
		fmt.Fprintf(sb, "Price: %q\n", c.PriceText)
	}
}
