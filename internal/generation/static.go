package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"adstudio/internal/domain"
)

const staticModelName = "static"

// StaticTextModel produces deterministic output without calling a provider.
// It keeps local runs and demos working when no API key is configured.
type StaticTextModel struct{}

func NewStaticTextModel() *StaticTextModel {
	return &StaticTextModel{}
}

func (s *StaticTextModel) Name() string { return staticModelName }

type phrasebook struct {
	Discover string
	Order    string
	Features [4]domain.Feature
	Angles   map[domain.AngleID][2]string
}

var phrasebooks = map[domain.Language]phrasebook{
	domain.LanguageEnglish: {
		Discover: "Discover %s",
		Order:    "Order now",
		Features: [4]domain.Feature{
			{Title: "Premium quality", Description: "Carefully selected materials."},
			{Title: "Fast delivery", Description: "Shipped within 48 hours."},
			{Title: "Pay on delivery", Description: "Pay when it reaches you."},
			{Title: "Easy returns", Description: "Seven days to change your mind."},
		},
		Angles: map[domain.AngleID][2]string{
			domain.AngleBenefit:     {"Main benefit", "Lead with what %s does for the buyer."},
			domain.AnglePainPoint:   {"Pain point", "Name the daily problem %s solves."},
			domain.AngleLifestyle:   {"Lifestyle", "Show %s in the life the buyer wants."},
			domain.AngleUrgency:     {"Urgency", "Limited stock of %s, act today."},
			domain.AngleSocialProof: {"Social proof", "Customers already love %s."},
			domain.AngleCuriosity:   {"Curiosity", "Tease what makes %s different."},
		},
	},
	domain.LanguageFrench: {
		Discover: "Découvrez %s",
		Order:    "Commandez maintenant",
		Features: [4]domain.Feature{
			{Title: "Qualité premium", Description: "Des matériaux soigneusement choisis."},
			{Title: "Livraison rapide", Description: "Expédié sous 48 heures."},
			{Title: "Paiement à la livraison", Description: "Payez à la réception."},
			{Title: "Retours faciles", Description: "Sept jours pour changer d'avis."},
		},
		Angles: map[domain.AngleID][2]string{
			domain.AngleBenefit:     {"Bénéfice principal", "Mettez en avant ce que %s apporte."},
			domain.AnglePainPoint:   {"Problème", "Nommez le problème que %s résout."},
			domain.AngleLifestyle:   {"Style de vie", "Montrez %s dans la vie rêvée de l'acheteur."},
			domain.AngleUrgency:     {"Urgence", "Stock limité de %s, agissez aujourd'hui."},
			domain.AngleSocialProof: {"Preuve sociale", "Les clients adorent déjà %s."},
			domain.AngleCuriosity:   {"Curiosité", "Intriguez sur ce qui rend %s unique."},
		},
	},
	domain.LanguageArabic: {
		Discover: "اكتشف %s",
		Order:    "اطلب الآن",
		Features: [4]domain.Feature{
			{Title: "جودة عالية", Description: "مواد مختارة بعناية."},
			{Title: "توصيل سريع", Description: "شحن خلال 48 ساعة."},
			{Title: "الدفع عند الاستلام", Description: "ادفع عند وصول طلبك."},
			{Title: "إرجاع سهل", Description: "سبعة أيام لتغيير رأيك."},
		},
		Angles: map[domain.AngleID][2]string{
			domain.AngleBenefit:     {"الفائدة الرئيسية", "ركز على ما يقدمه %s للمشتري."},
			domain.AnglePainPoint:   {"المشكلة", "اذكر المشكلة التي يحلها %s."},
			domain.AngleLifestyle:   {"أسلوب الحياة", "اعرض %s في الحياة التي يحلم بها المشتري."},
			domain.AngleUrgency:     {"الاستعجال", "كمية محدودة من %s، اطلب اليوم."},
			domain.AngleSocialProof: {"آراء العملاء", "الزبائن يحبون %s."},
			domain.AngleCuriosity:   {"الفضول", "أثر الفضول حول ما يميز %s."},
		},
	},
}

func bookFor(lang domain.Language) phrasebook {
	if b, ok := phrasebooks[lang]; ok {
		return b
	}
	return phrasebooks[domain.LanguageEnglish]
}

func (s *StaticTextModel) GenerateJSON(ctx context.Context, req TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b := req.Brief
	book := bookFor(b.Language)
	product := cases.Title(language.Und).String(coalesce(b.ProductName, "product"))

	var payload any
	switch req.Task {
	case TaskAngles:
		angles := make([]domain.Angle, 0, len(domain.AngleIDs))
		for _, id := range domain.AngleIDs {
			text := book.Angles[id]
			hook := fmt.Sprintf(text[1], product)
			angles = append(angles, domain.Angle{
				ID:          id,
				Name:        text[0],
				Description: hook,
				Preview:     hook,
				Hook:        hook,
			})
		}
		payload = anglesPayload{Angles: angles}
	case TaskCopies:
		count := b.Count
		if count < 1 {
			count = 1
		}
		hook := b.Angle.Hook
		if hook == "" {
			hook = fmt.Sprintf(book.Discover, product)
		}
		copies := make([]copyPayload, count)
		for i := range copies {
			body := hook
			if b.Price != "" {
				body += " " + b.Price + "."
			}
			if b.UseEmojis {
				body += " ✨"
			}
			copies[i] = copyPayload{
				Headline:     fmt.Sprintf("%s #%d", fmt.Sprintf(book.Discover, product), i+1),
				Body:         body,
				CallToAction: book.Order,
			}
			if b.Size.WantsHashtags() {
				copies[i].Hashtags = []string{product, string(b.Angle.ID)}
			}
		}
		payload = copiesPayload{Copies: copies}
	case TaskCopy:
		payload = creativeCopyPayload{
			Headline:     fmt.Sprintf(book.Discover, product),
			Subheadline:  book.Features[0].Description,
			Features:     book.Features[:3],
			CallToAction: book.Order,
			PriceText:    b.Price,
		}
	case TaskDesigner:
		payload = staticDesigner(product)
	default:
		return "", fmt.Errorf("static model: unsupported task %q", req.Task)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var staticPalettes = []domain.Palette{
	{Primary: "#1F3A93", Secondary: "#F5D76E", Accent: "#E74C3C", Background: "#FDFEFE", Text: "#1B1B1B"},
	{Primary: "#0B6E4F", Secondary: "#F2E8CF", Accent: "#F4A259", Background: "#FFFFFF", Text: "#102A27"},
	{Primary: "#5B2A86", Secondary: "#F7C59F", Accent: "#FF6B6B", Background: "#FFF8F0", Text: "#2E1A47"},
}

func staticDesigner(product string) domain.DesignerOutput {
	sum := 0
	for _, r := range strings.ToLower(product) {
		sum += int(r)
	}
	p := staticPalettes[sum%len(staticPalettes)]
	return domain.DesignerOutput{
		Palette:   p,
		Gradients: []domain.Gradient{{From: p.Primary, To: p.Secondary, Angle: 135}},
		Typography: domain.Typography{
			HeadlineFont: "Montserrat",
			BodyFont:     "Inter",
			Weight:       "bold",
			Case:         "title",
		},
		Zones: []domain.ZoneHint{
			{Zone: "top", Layout: "headline", Alignment: "center"},
			{Zone: "middle", Layout: "product hero", Alignment: "center"},
			{Zone: "bottom", Layout: "features and call to action", Alignment: "center"},
		},
	}
}

var _ TextModel = (*StaticTextModel)(nil)
