package config

// Cache groups configuration of all cache subsystems.
// Each component can be configured independently or disabled by setting it to nil.
type Cache struct {
	DB DBCfg `yaml:"db"`

	// Compression configures the background compression walker.
	// If nil, no entry is ever compressed.
	Compression *CompressionCfg `yaml:"compression"`
}
