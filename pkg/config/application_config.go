package config

import (
	"fmt"

	"github.com/lobsterdao/mintreveal/pkg/core/storage/dbconfig"
)

// ApplicationConfiguration config specific to the node.
type ApplicationConfiguration struct {
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`

	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`

	RPC        RPC          `yaml:"RPC"`
	Prometheus BasicService `yaml:"Prometheus"`
	Pprof      BasicService `yaml:"Pprof"`
	Ownership  Ownership    `yaml:"Ownership"`
}

// Ownership configures the source of external collection ownership.
type Ownership struct {
	// SnapshotPath is the YAML file with the collection holders. Collection
	// claims are rejected if it's not set.
	SnapshotPath string `yaml:"SnapshotPath"`
}

// Validate checks ApplicationConfiguration for internal consistency.
func (a *ApplicationConfiguration) Validate() error {
	switch a.DBConfiguration.Type {
	case dbconfig.InMemoryDB:
	case dbconfig.BoltDB:
		if a.DBConfiguration.BoltDBOptions.FilePath == "" {
			return fmt.Errorf("empty BoltDB file path")
		}
	case dbconfig.LevelDB:
		if a.DBConfiguration.LevelDBOptions.DataDirectoryPath == "" {
			return fmt.Errorf("empty LevelDB data directory path")
		}
	default:
		return fmt.Errorf("unknown DB type '%s'", a.DBConfiguration.Type)
	}
	if err := a.RPC.Validate(); err != nil {
		return fmt.Errorf("invalid RPC config: %w", err)
	}
	return nil
}
