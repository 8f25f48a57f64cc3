package secrets

import (
	"context"
	"errors"
	"os"
	"strings"
)

var ErrSecretNotFound = errors.New("secret not found")

// Manager looks secrets up by key
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// EnvManager reads secrets from the environment. Keys are upper-cased with
// dashes and dots turned into underscores.
type EnvManager struct{}

func (EnvManager) GetSecret(_ context.Context, key string) (string, error) {
	if v := os.Getenv(EnvKey(key)); v != "" {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func EnvKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// Chain tries each manager in order and returns the first hit
type Chain []Manager

func (c Chain) GetSecret(ctx context.Context, key string) (string, error) {
	var lastErr error = ErrSecretNotFound
	for _, m := range c {
		v, err := m.GetSecret(ctx, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = err
		}
	}
	return "", lastErr
}

// Lookup returns the secret for key, or fallback when no manager has it
func Lookup(ctx context.Context, m Manager, key, fallback string) string {
	if m == nil {
		return fallback
	}
	v, err := m.GetSecret(ctx, key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}
