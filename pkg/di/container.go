package di

import (
	"context"
	"fmt"
	"time"

	"pingup/backend/ai"
	"pingup/backend/internal/identity"
	"pingup/backend/internal/repository"
	"pingup/backend/internal/service"
	"pingup/backend/internal/ws"
	"pingup/backend/pkg/cache"
	"pingup/backend/pkg/config"
	"pingup/backend/pkg/health"
	"pingup/backend/pkg/jwt"
	"pingup/backend/pkg/logger"
	"pingup/backend/pkg/resilience"
	"pingup/backend/pkg/secrets"
	"pingup/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config            *config.Config
	Logger            *logger.Logger
	DB                *gorm.DB
	Redis             *redis.RedisClient
	Secrets           secrets.Manager
	JWTService        *jwt.Service
	UserService       *service.UserService
	MessageService    *service.MessageService
	SuggestionService *ai.SuggestionService
	Hub               *ws.Hub
	Health            *health.Checker

	closers []func()
}

// LoadSecrets builds the secrets manager and overrides the secret values of
// cfg with what it finds. Call it before opening the database.
func LoadSecrets(ctx context.Context, cfg *config.Config, log *logger.Logger) (secrets.Manager, error) {
	mgr, err := newSecrets(cfg, log)
	if err != nil {
		return nil, err
	}
	applySecrets(ctx, cfg, mgr)
	return mgr, nil
}

// New wires the application services on top of db
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, db *gorm.DB, mgr secrets.Manager) (*Container, error) {
	if mgr == nil {
		mgr = secrets.EnvManager{}
	}
	c := &Container{Config: cfg, Logger: log, DB: db, Secrets: mgr}
	if closer, ok := mgr.(interface{ Close() }); ok {
		c.closers = append(c.closers, closer.Close)
	}

	var err error
	c.JWTService, err = jwt.NewService(cfg.JWT.Secret, cfg.JWT.PublicKeyPEM, cfg.JWT.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create jwt service: %w", err)
	}

	provider, err := ai.NewProvider(ctx, ai.ProviderConfig{
		Kind:    cfg.AI.Provider,
		Model:   cfg.AI.Model,
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ai provider: %w", err)
	}
	breaker := resilience.NewCircuitBreaker(resilience.DefaultBreakerConfig("ai-provider"), log)
	c.SuggestionService = ai.NewSuggestionService(provider, ai.WithBreaker(breaker), ai.WithLogger(log))

	c.Health = health.NewChecker(log, 2*time.Second)
	c.Health.Register("database", true, func(ctx context.Context) error { return config.Ping(ctx, db) })

	known := c.knownUsers()
	profiles := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.SecretKey, cfg.Identity.Timeout)
	c.UserService = service.NewUserService(repository.NewGormUserRepository(db), profiles, known, log)

	c.Hub = ws.NewHub(log)
	c.MessageService = service.NewMessageService(repository.NewGormMessageRepository(db), c.Hub)

	return c, nil
}

// knownUsers shares the known-subject set through redis when configured
func (c *Container) knownUsers() service.KnownUsers {
	cfg := c.Config
	if cfg.Redis.URL != "" {
		c.Redis = redis.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		c.closers = append(c.closers, func() { _ = c.Redis.Close() })
		c.Health.Register("redis", false, c.Redis.Ping)
		return service.NewRedisKnownUsers(c.Redis, cfg.Cache.TTL)
	}

	mem := cache.New[struct{}](cache.Options{
		TTL:        cfg.Cache.TTL,
		SweepEvery: cfg.Cache.PurgeWindow,
		MaxItems:   cfg.Cache.MaxSize,
	})
	c.closers = append(c.closers, mem.Close)
	return service.NewMemoryKnownUsers(mem)
}

func newSecrets(cfg *config.Config, log *logger.Logger) (secrets.Manager, error) {
	if !cfg.Vault.Enabled {
		return secrets.EnvManager{}, nil
	}
	vm, err := secrets.NewVaultManager(secrets.VaultConfig{
		Address:   cfg.Vault.Address,
		Token:     cfg.Vault.Token,
		Namespace: cfg.Vault.Namespace,
		Path:      cfg.Vault.SecretsPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault manager: %w", err)
	}
	return &closableChain{Chain: secrets.Chain{vm, secrets.EnvManager{}}, close: vm.Close}, nil
}

type closableChain struct {
	secrets.Chain
	close func()
}

func (c *closableChain) Close() { c.close() }

func applySecrets(ctx context.Context, cfg *config.Config, m secrets.Manager) {
	cfg.JWT.Secret = secrets.Lookup(ctx, m, "jwt_secret", cfg.JWT.Secret)
	cfg.JWT.PublicKeyPEM = secrets.Lookup(ctx, m, "jwt_public_key", cfg.JWT.PublicKeyPEM)
	cfg.AI.APIKey = secrets.Lookup(ctx, m, "google_gemini_api_key", cfg.AI.APIKey)
	cfg.Identity.SecretKey = secrets.Lookup(ctx, m, "identity_secret_key", cfg.Identity.SecretKey)
	cfg.Database.Password = secrets.Lookup(ctx, m, "db_password", cfg.Database.Password)
}

// Close releases caches and client connections
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
