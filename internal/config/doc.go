// Package config loads and merges go-chat-keeper configuration from
// environment variables, command-line flags, and an optional JSON file.
//
// Sources are merged with mergo in priority order (env > flags > JSON file;
// the first non-zero value wins) and then projected into per-binary views:
// [ClientConfig] for the TUI client and [ServerConfig] for the development
// stub server. Defaults are applied by the view constructors, so zero values
// in the merged config never leak into the binaries.
package config
