package see

import "flag"

// Config represents configuration for see.
type Config struct {
	// CellSize is the width and height of a grid cell.
	CellSize float64
}

var defaultConfig = Config{
	CellSize: 100,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.CellSize, "see-cell", defaultConfig.CellSize, "Size of a grid cell in visualization")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
