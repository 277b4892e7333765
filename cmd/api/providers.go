package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"adstudio/internal/generation"
	"adstudio/internal/infra"
	"adstudio/internal/infra/credentials"
	"adstudio/internal/providers/genai"
	"adstudio/internal/providers/openai"
)

type apiKeys struct {
	Gemini string
	OpenAI string
}

// tokenSource is the part of credentials.Store used at startup.
type tokenSource interface {
	Token(ctx context.Context, provider string) (string, error)
}

// resolveKeys prefers environment keys and falls back to stored ones.
func resolveKeys(ctx context.Context, cfg *infra.Config, store tokenSource, logger zerolog.Logger) apiKeys {
	keys := apiKeys{Gemini: strings.TrimSpace(cfg.GeminiAPIKey), OpenAI: strings.TrimSpace(cfg.OpenAIAPIKey)}
	if store == nil {
		return keys
	}
	lookup := func(provider string, dst *string) {
		if *dst != "" {
			return
		}
		token, err := store.Token(ctx, provider)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("load stored api key")
			return
		}
		if token != "" {
			logger.Info().Str("provider", provider).Msg("using stored api key")
		}
		*dst = token
	}
	lookup(credentials.ProviderGemini, &keys.Gemini)
	lookup(credentials.ProviderOpenAI, &keys.OpenAI)
	return keys
}

type models struct {
	Text  generation.TextModel
	Image generation.ImageModel
}

// buildModels selects the text backend from TEXT_PROVIDER. The Gemini
// client always serves images; without a key it renders placeholders.
func buildModels(cfg *infra.Config, keys apiKeys, logger *infra.Logger) (models, error) {
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	gemini, err := genai.NewClient(genai.Options{
		APIKey:        keys.Gemini,
		BaseURL:       cfg.GeminiBaseURL,
		TextModel:     cfg.GeminiModel,
		ImageModel:    cfg.GeminiImage,
		HTTPClient:    httpClient,
		Logger:        logger,
		RatePerSecond: cfg.ProviderRatePerSecond,
	})
	if err != nil {
		return models{}, err
	}
	out := models{Image: gemini}

	newOpenAI := func() (generation.TextModel, error) {
		return openai.NewClient(openai.Options{
			APIKey:        keys.OpenAI,
			BaseURL:       cfg.OpenAIBaseURL,
			Organization:  cfg.OpenAIOrg,
			Model:         cfg.OpenAIModel,
			HTTPClient:    httpClient,
			RatePerSecond: cfg.ProviderRatePerSecond,
			Logger:        logger,
		})
	}

	switch cfg.TextProvider {
	case infra.TextProviderStatic:
		out.Text = generation.NewStaticTextModel()
	case infra.TextProviderGemini:
		if keys.Gemini == "" {
			return models{}, fmt.Errorf("TEXT_PROVIDER=gemini requires a gemini api key")
		}
		out.Text = gemini
	case infra.TextProviderOpenAI:
		if keys.OpenAI == "" {
			return models{}, fmt.Errorf("TEXT_PROVIDER=openai requires an openai api key")
		}
		if out.Text, err = newOpenAI(); err != nil {
			return models{}, err
		}
	default:
		switch {
		case keys.Gemini != "":
			out.Text = gemini
		case keys.OpenAI != "":
			if out.Text, err = newOpenAI(); err != nil {
				return models{}, err
			}
		default:
			out.Text = generation.NewStaticTextModel()
		}
	}
	return out, nil
}
