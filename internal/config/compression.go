package config

// CompressionCfg configures the background compression walker.
//
// Codec selects the tag from the cache's fixed codec set:
//
//	0 = none, 1 = fast, 2 = deflate, 3 = lzma
//
// Percent is the target fraction (0-100) of resident objects the walker
// tries to keep compressed. DoAtMost bounds how many entries a single
// walker invocation will attempt, so one scheduler tick can't be
// monopolized by a burst of newly-admitted entries.
type CompressionCfg struct {
	Codec    uint8 `yaml:"codec"`
	Percent  int   `yaml:"percent"`
	DoAtMost int   `yaml:"do_at_most"`

	// RatePerSec bounds how many walker passes may start per second;
	// codec invocations inside one pass are bounded only by DoAtMost.
	// Zero or a negative value is treated as one pass per second.
	RatePerSec int `yaml:"rate_per_sec"`
}

func (cfg *CompressionCfg) Enabled() bool {
	return cfg != nil && cfg.Percent > 0
}
