package config

import (
	"errors"

	"boardedit/domain/core/valueobjects"
)

// DomainConfig holds all configurable editing rules and constraints
type DomainConfig struct {
	// Spatial queries
	HitTolerance valueobjects.Length

	// Routing defaults
	DefaultLineWidth valueobjects.Length
	MinLineWidth     valueobjects.Length
	Layers           []valueobjects.Layer

	// Board limits
	MaxElementsPerBoard int

	// History
	MaxUndoDepth int

	// Behaviour
	AllowAmbiguityChooser bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		HitTolerance: 10 * valueobjects.Micrometre,

		DefaultLineWidth: valueobjects.LengthFromMM(0.5),
		MinLineWidth:     0,
		Layers: []valueobjects.Layer{
			valueobjects.LayerTopCopper,
			valueobjects.LayerBottomCopper,
		},

		MaxElementsPerBoard: 100000,

		MaxUndoDepth: 200,

		AllowAmbiguityChooser: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxElementsPerBoard = 50000
	config.MaxUndoDepth = 100

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxElementsPerBoard = 1000000
	config.MaxUndoDepth = 1000
	config.AllowAmbiguityChooser = true

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// HasLayer reports whether the layer is a configured copper layer
func (c *DomainConfig) HasLayer(layer valueobjects.Layer) bool {
	for _, l := range c.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.HitTolerance < 0 {
		return errors.New("hit tolerance cannot be negative")
	}
	if c.DefaultLineWidth < c.MinLineWidth {
		return errors.New("default line width is below the minimum line width")
	}
	if len(c.Layers) == 0 {
		return errors.New("at least one copper layer is required")
	}
	if c.MaxUndoDepth < 0 {
		return errors.New("max undo depth cannot be negative")
	}
	return nil
}
