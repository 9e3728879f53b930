package config

import "fmt"

// Defaults for the development stub server.
const (
	DefaultServerAddress = "localhost:8080"
	DefaultHistoryDSN    = "chat-keeper.db"
)

// ServerConfig is the stub-server configuration view assembled from
// [StructuredConfig].
type ServerConfig struct {
	// HTTPAddress is the listen address in "host:port" format.
	HTTPAddress string
	// DSN is the sqlite history database location.
	DSN string
	// Seed populates demo conversations on startup.
	Seed bool
}

// GetServerConfig builds and validates the stub-server config view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		HTTPAddress: cfg.Server.HTTPAddress,
		DSN:         cfg.Storage.DB.DSN,
		Seed:        cfg.Server.Seed,
	}
	if serverCfg.HTTPAddress == "" {
		serverCfg.HTTPAddress = DefaultServerAddress
	}
	if serverCfg.DSN == "" {
		serverCfg.DSN = DefaultHistoryDSN
	}

	return serverCfg, serverCfg.validate()
}

func (cfg *ServerConfig) validate() error {
	if cfg.HTTPAddress == "" {
		return fmt.Errorf("%w: listen address is required", ErrInvalidServerConfigs)
	}
	return nil
}
