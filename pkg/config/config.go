package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/lobsterdao/mintreveal/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the node configuration file.
	DefaultConfigPath = "./config/mintreveal.yml"
	// DefaultMaxRequestBodyBytes is the maximum size of an RPC request body.
	DefaultMaxRequestBodyBytes = 5 * 1024 * 1024
	// DefaultMaxRequestHeaderBytes is the maximum size of RPC request headers.
	DefaultMaxRequestHeaderBytes = 1 * 1024 * 1024
	// DefaultAttributeCacheSize is the default number of resolved attributes
	// kept in memory.
	DefaultAttributeCacheSize = 4096
)

// Version is the version of the node, set at build time with
// -ldflags "-X github.com/lobsterdao/mintreveal/pkg/config.Version=...".
var Version = "dev"

// Config is the top level struct representing the config for the node.
type Config struct {
	Ledger                   Ledger                   `yaml:"Ledger"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load attempts to load the config from the given file, applies defaults and
// validates the result.
func Load(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Unmarshal(configData)
}

// Unmarshal decodes YAML configuration from data, applies defaults and
// validates the result. Unknown fields are rejected.
func Unmarshal(data []byte) (Config, error) {
	config := Config{
		Ledger: Ledger{
			AttributeCacheSize: DefaultAttributeCacheSize,
			Seed: Seed{
				Fee: "0",
			},
		},
		ApplicationConfiguration: ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
			RPC: RPC{
				MaxRequestBodyBytes:   DefaultMaxRequestBodyBytes,
				MaxRequestHeaderBytes: DefaultMaxRequestHeaderBytes,
			},
		},
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Ledger.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid Ledger configuration: %w", err)
	}
	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid ApplicationConfiguration: %w", err)
	}
	return config, nil
}
