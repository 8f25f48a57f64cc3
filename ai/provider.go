package ai

import (
	"context"
	"fmt"
	"time"
)

// Provider kinds accepted by NewProvider
const (
	ProviderGemini = "gemini"
	ProviderHTTP   = "http"
	ProviderStatic = "static"
)

// ProviderConfig selects and configures a Provider
type ProviderConfig struct {
	Kind    string
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// staticReplies is served by the static provider
const staticReplies = `["Sounds good!", "Haha, nice", "Tell me more"]`

func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case ProviderGemini, "":
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case ProviderHTTP:
		return NewHTTPProvider(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	case ProviderStatic:
		return StaticProvider{Output: staticReplies}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Kind)
	}
}
