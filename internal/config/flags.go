package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a stub server address in format [host]:[port]
//	-b conversation-history service base URL
//	-d history database DSN (file path or :memory:)
//	-p project identifier tracked by the client
//	-c/-config json file path with configs
//	-vault provider API-key vault file path
//	-refresh-interval provider state poll interval (e.g., "30s")
//	-request-timeout outbound request timeout (e.g., "15s")
//	-seed populate the stub server with demo conversations
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var baseURL string
	var databaseDSN string
	var projectID string
	var jsonConfigPath string
	var vaultPath string
	var refreshInterval time.Duration
	var requestTimeout time.Duration
	var seed bool

	flag.StringVar(&serverAddress, "a", "", "Stub server net address host:port")
	flag.StringVar(&baseURL, "b", "", "Conversation service base URL")
	flag.StringVar(&databaseDSN, "d", "", "History database DSN")
	flag.StringVar(&projectID, "p", "", "Project identifier")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&vaultPath, "vault", "", "API-key vault file path")
	flag.DurationVar(&refreshInterval, "refresh-interval", 0, "Poll interval (e.g., 30s)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	flag.BoolVar(&seed, "seed", false, "Seed demo conversations")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			ProjectID:    projectID,
			KeyVaultPath: vaultPath,
		},
		Adapter: Adapter{
			BaseURL:        baseURL,
			RequestTimeout: requestTimeout,
		},
		Server: Server{
			HTTPAddress: serverAddress,
			Seed:        seed,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Workers:      Workers{RefreshInterval: refreshInterval},
		JSONFilePath: jsonConfigPath,
	}
}
