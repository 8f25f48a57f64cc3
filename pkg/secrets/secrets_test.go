package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pingup/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvManager(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_API_KEY", "from-env")

	v, err := EnvManager{}.GetSecret(context.Background(), "google-gemini.api_key")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = EnvManager{}.GetSecret(context.Background(), "pingup_missing_secret")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestVaultManager(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/secret/data/pingup", r.URL.Path)
		assert.Equal(t, "root", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"jwt_secret":"s3cret"},"metadata":{"version":1}}}`))
	}))
	defer srv.Close()

	m, err := NewVaultManager(VaultConfig{Address: srv.URL, Token: "root"}, logger.Discard())
	require.NoError(t, err)
	defer m.Close()

	v, err := m.GetSecret(context.Background(), "jwt_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	// cached
	_, _ = m.GetSecret(context.Background(), "jwt_secret")
	assert.Equal(t, int32(1), hits.Load())

	_, err = m.GetSecret(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestNewVaultManagerRequiresAddressAndToken(t *testing.T) {
	_, err := NewVaultManager(VaultConfig{Token: "t"}, nil)
	assert.ErrorIs(t, err, ErrNoVaultAddress)

	_, err = NewVaultManager(VaultConfig{Address: "http://127.0.0.1:8200"}, nil)
	assert.ErrorIs(t, err, ErrNoVaultToken)
}

type staticManager map[string]string

func (s staticManager) GetSecret(_ context.Context, key string) (string, error) {
	if v, ok := s[key]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func TestChainAndLookup(t *testing.T) {
	chain := Chain{staticManager{"a": "1"}, staticManager{"a": "2", "b": "3"}}

	assert.Equal(t, "1", Lookup(context.Background(), chain, "a", "x"))
	assert.Equal(t, "3", Lookup(context.Background(), chain, "b", "x"))
	assert.Equal(t, "x", Lookup(context.Background(), chain, "c", "x"))
	assert.Equal(t, "x", Lookup(context.Background(), nil, "a", "x"))
}
