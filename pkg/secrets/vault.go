package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pingup/backend/pkg/cache"
	"pingup/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

var (
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

type VaultConfig struct {
	Address   string
	Token     string
	Namespace string
	// Mount is the KV v2 mount, "secret" by default
	Mount string
	// Path is the secret path under the mount holding all keys
	Path     string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// VaultManager reads keys of a single KV v2 secret
type VaultManager struct {
	client *vault.Client
	cfg    VaultConfig
	cache  *cache.Cache[string]
	log    *logger.Logger
}

func NewVaultManager(cfg VaultConfig, log *logger.Logger) (*VaultManager, error) {
	if cfg.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if cfg.Token == "" {
		return nil, ErrNoVaultToken
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if cfg.Path == "" {
		cfg.Path = "pingup"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	vcfg := vault.DefaultConfig()
	vcfg.Address = cfg.Address
	vcfg.Timeout = cfg.Timeout
	vcfg.MaxRetries = 2

	client, err := vault.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	return &VaultManager{
		client: client,
		cfg:    cfg,
		cache:  cache.New[string](cache.Options{TTL: cfg.CacheTTL}),
		log:    log,
	}, nil
}

func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}

	secret, err := m.client.KVv2(m.cfg.Mount).Get(ctx, m.cfg.Path)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", ErrSecretNotFound
		}
		m.log.Warn("Failed to read secret from Vault", "path", m.cfg.Path, "error", err.Error())
		return "", fmt.Errorf("read vault secret: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}

	value, ok := secret.Data[key].(string)
	if !ok {
		return "", ErrSecretNotFound
	}
	m.cache.Set(key, value)
	return value, nil
}

// Close releases the key cache
func (m *VaultManager) Close() {
	m.cache.Close()
}
