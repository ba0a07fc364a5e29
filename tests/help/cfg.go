package help

import (
	"time"

	"github.com/avbelov/go-ramclfus/internal/config"
)

// Cfg returns a plain cache with a generous byte budget and no
// compression, suitable for admission/eviction tests that don't care
// about the walker.
func Cfg() *config.Cache {
	c := &config.Cache{
		DB: config.DBCfg{
			SizeBytes:              1024 * 1024 * 1024,
			IsTelemetryLogsEnabled: false,
			TelemetryLogsInterval:  time.Second * 5,
		},
	}
	c.AdjustConfig()
	return c
}

// SizedCfg returns a cache budgeted to exactly maxBytes, for tests
// that exercise eviction order.
func SizedCfg(maxBytes int64) *config.Cache {
	c := Cfg()
	c.DB.SizeBytes = maxBytes
	return c
}

// DisabledCfg returns a cache with a zero byte budget, so every
// operation is a no-op.
func DisabledCfg() *config.Cache {
	c := Cfg()
	c.DB.SizeBytes = 0
	return c
}

// CompressionCfg returns a cache configured to compress with the
// given codec tag, targeting percent% of resident objects.
func CompressionCfg(maxBytes int64, codec uint8, percent int) *config.Cache {
	c := SizedCfg(maxBytes)
	c.Compression = &config.CompressionCfg{
		Codec:      codec,
		Percent:    percent,
		RatePerSec: 1000,
	}
	c.AdjustConfig()
	return c
}
