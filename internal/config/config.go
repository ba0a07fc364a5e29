package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AdjustConfig derives fields that depend on other fields. It must be
// called once after unmarshaling, by LoadConfig or by the caller when
// building a Cache programmatically.
func (cfg *Cache) AdjustConfig() {
	if cfg.Compression.Enabled() {
		if cfg.Compression.DoAtMost <= 0 {
			cfg.Compression.DoAtMost = DefaultCompressionDoAtMost
		}
	}
}

const DefaultCompressionDoAtMost = 64

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
