package generation

import (
	"encoding/json"
	"errors"
	"strings"

	"adstudio/internal/domain"
)

type anglesPayload struct {
	Angles []domain.Angle `json:"angles"`
}

type copiesPayload struct {
	Copies []copyPayload `json:"copies"`
}

// copyPayload accepts both snake_case and camelCase keys; models drift
// between the two.
type copyPayload struct {
	Headline      string   `json:"headline"`
	Body          string   `json:"body"`
	CallToAction  string   `json:"call_to_action"`
	CallToAction2 string   `json:"callToAction"`
	CTA           string   `json:"cta"`
	Hashtags      []string `json:"hashtags"`
}

type creativeCopyPayload struct {
	Headline      string           `json:"headline"`
	Subheadline   string           `json:"subheadline"`
	Features      []domain.Feature `json:"features"`
	CallToAction  string           `json:"call_to_action"`
	CallToAction2 string           `json:"callToAction"`
	PriceText     string           `json:"price_text"`
	PriceText2    string           `json:"priceText"`
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeHashtags trims, prefixes with '#' and dedups case-insensitively.
// An empty result falls back to fallback when it is set.
func normalizeHashtags(tags []string, fallback string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(strings.TrimSpace(tag)), "")
		tag = strings.TrimLeft(tag, "#")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, "#"+tag)
	}
	if len(result) == 0 && fallback != "" {
		return normalizeHashtags([]string{fallback}, "")
	}
	return result
}
