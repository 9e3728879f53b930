package config

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied by [GetClientConfig] when a value is absent from every
// configuration source.
const (
	DefaultBaseURL         = "http://localhost:8080"
	DefaultRequestTimeout  = 15 * time.Second
	DefaultRefreshInterval = 30 * time.Second
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// ProjectID is the project whose conversation state is tracked.
	ProjectID string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the conversation-history service base URL.
	BaseURL string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientWorkers contains client background refresh settings.
type ClientWorkers struct {
	// RefreshInterval defines how often provider state is polled.
	RefreshInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains the outbound transport address and timeout.
	Adapter ClientAdapter
	// Workers contains background refresh settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration, applying defaults for optional fields.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			ProjectID: cfg.App.ProjectID,
		},
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Workers: ClientWorkers{RefreshInterval: cfg.Workers.RefreshInterval},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Adapter.BaseURL == "" {
		cfg.Adapter.BaseURL = DefaultBaseURL
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.RefreshInterval <= 0 {
		cfg.Workers.RefreshInterval = DefaultRefreshInterval
	}
}

func (cfg *ClientConfig) validate() error {
	if cfg.App.ProjectID == "" {
		return fmt.Errorf("%w: project id is required (-p / APP_PROJECT_ID)", ErrInvalidAppConfigs)
	}

	if !strings.HasPrefix(cfg.Adapter.BaseURL, "http://") && !strings.HasPrefix(cfg.Adapter.BaseURL, "https://") {
		return fmt.Errorf("%w: base url must start with http:// or https://", ErrInvalidAdapterConfigs)
	}

	return nil
}
