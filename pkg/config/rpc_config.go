package config

import "errors"

// RPC is an RPC service configuration information.
type RPC struct {
	BasicService          `yaml:",inline"`
	EnableCORSWorkaround  bool `yaml:"EnableCORSWorkaround"`
	MaxRequestBodyBytes   int  `yaml:"MaxRequestBodyBytes"`
	MaxRequestHeaderBytes int  `yaml:"MaxRequestHeaderBytes"`
}

// Validate checks RPC for internal consistency.
func (cfg *RPC) Validate() error {
	if cfg.Enabled && len(cfg.Addresses) == 0 {
		return errors.New("RPC is enabled, but no addresses are given")
	}
	if cfg.MaxRequestBodyBytes <= 0 || cfg.MaxRequestHeaderBytes <= 0 {
		return errors.New("request size limits must be positive")
	}
	return nil
}
