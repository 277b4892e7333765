// Package credentials keeps provider API keys in Postgres so deployments can
// rotate them without touching the environment.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Providers lists the integrations whose keys may be stored.
var Providers = []string{ProviderGemini, ProviderOpenAI}

// Key is a stored provider key with its bookkeeping.
type Key struct {
	Provider   string
	Token      string
	Properties map[string]any
	UpdatedAt  time.Time
}

// Store reads and writes provider API keys in integration_tokens.
type Store struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql, now: time.Now}
}

// Lookup loads the key stored for provider. ok is false when none is stored.
func (s *Store) Lookup(ctx context.Context, provider string) (key Key, ok bool, err error) {
	provider, err = normalizeProvider(provider)
	if err != nil {
		return Key{}, false, err
	}
	var raw []byte
	key.Provider = provider
	err = s.sql.QueryRow(ctx, sqlinline.QSelectProviderKey, provider).Scan(&key.Token, &raw, &key.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return Key{}, false, nil
		}
		return Key{}, false, fmt.Errorf("load %s key: %w", provider, err)
	}
	key.Token = strings.TrimSpace(key.Token)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &key.Properties); err != nil {
			return Key{}, false, fmt.Errorf("decode %s key properties: %w", provider, err)
		}
	}
	return key, key.Token != "", nil
}

// Token returns the stored key for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	key, _, err := s.Lookup(ctx, provider)
	return key.Token, err
}

// SetToken upserts the key for a known provider. props are merged into the
// properties already stored.
func (s *Store) SetToken(ctx context.Context, provider, token string, props map[string]any) error {
	provider, err := normalizeProvider(provider)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: %s api key is required", domain.ErrInvalidInput, provider)
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertProviderKey, provider, token, raw, s.now().UTC()); err != nil {
		return fmt.Errorf("store %s key: %w", provider, err)
	}
	return nil
}

// Delete removes the key of provider and reports whether one was stored.
func (s *Store) Delete(ctx context.Context, provider string) (bool, error) {
	provider, err := normalizeProvider(provider)
	if err != nil {
		return false, err
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteProviderKey, provider)
	if err != nil {
		return false, fmt.Errorf("delete %s key: %w", provider, err)
	}
	return tag.RowsAffected() > 0, nil
}

func normalizeProvider(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, p)
}
