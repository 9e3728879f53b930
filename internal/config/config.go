package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for go-chat-keeper.
// It aggregates all sub-configurations and is populated by merging values from
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings shared by the binaries.
	App App `envPrefix:"APP_"`

	// Adapter holds settings for the outbound HTTP client that talks to the
	// conversation-history service.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Server holds settings for the development stub server.
	Server Server `envPrefix:"SERVER_"`

	// Storage holds persistence settings for the stub server.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds background refresh settings for the client.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file. When
	// non-empty, the file is parsed and merged on top of the values already
	// loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// ProjectID identifies the project whose conversation state the client
	// tracks. Required for the client binary.
	// Env: APP_PROJECT_ID
	ProjectID string `env:"PROJECT_ID" json:"project_id"`

	// KeyVaultPath is the path of the encrypted provider API-key vault file
	// used by keyctl.
	// Env: APP_KEY_VAULT_PATH
	KeyVaultPath string `env:"KEY_VAULT_PATH" json:"key_vault_path"`
}

// Adapter holds network settings for the outbound conversation-service client.
type Adapter struct {
	// BaseURL is the base URL of the conversation-history service
	// (e.g. "http://localhost:8080").
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL" json:"base_url"`

	// RequestTimeout bounds every outbound fetch and mutation request so a
	// hung request cannot block the client indefinitely (e.g. "15s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" json:"request_timeout"`
}

// Server holds settings for the development stub server.
type Server struct {
	// HTTPAddress is the TCP address the stub server listens on, in
	// "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS" json:"address"`

	// Seed, when true, populates the history store with demo conversations
	// on startup.
	// Env: SERVER_SEED
	Seed bool `env:"SEED" json:"seed"`
}

// Storage holds persistence settings for the stub server.
type Storage struct {
	// DB holds the history database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the sqlite history database.
type DB struct {
	// DSN is the sqlite data source name (a file path, or ":memory:").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN" json:"dsn"`
}

// Workers holds background refresh settings for the client.
type Workers struct {
	// RefreshInterval defines how often the client polls provider state.
	// Env: WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" json:"refresh_interval"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first non-zero value wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source fails
// to load.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
