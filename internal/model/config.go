package model

import (
	"fmt"
	"slices"
)

// Variant selects the network topology.
type Variant string

const (
	// VariantFull is the three-scale detector with heads at strides 8, 16 and 32.
	VariantFull Variant = "full"

	// VariantLite is the reduced detector: four downsampling stages, a single
	// top-down fusion and one head at stride 8.
	VariantLite Variant = "lite"
)

// Variants lists the supported topologies.
var Variants = []Variant{VariantFull, VariantLite}

// Defaults used by DefaultConfig.
const (
	DefaultNumClasses = 1
	DefaultRegMax     = 1
	DefaultInputSize  = 640
	DefaultBNEps      = 0.001
	DefaultBNMomentum = 0.03
)

// InputChannels is the number of channels the first convolution expects (RGB).
const InputChannels = 3

// Config describes a detector.
type Config struct {
	// NumClasses is the number of object classes (channels of the cls branch).
	NumClasses int `yaml:"classes"`

	// RegMax is the number of distribution bins per box side; the bbox branch
	// has 4*RegMax channels.
	RegMax int `yaml:"reg_max"`

	Variant Variant `yaml:"variant"`

	// InputSize is the side of the square input the CLI prepares. It must be
	// a multiple of the variant's size multiple.
	InputSize int `yaml:"input_size"`

	BNEps      float32 `yaml:"bn_eps"`
	BNMomentum float32 `yaml:"bn_momentum"`

	// Seed makes weight initialization reproducible. 0 draws from the global
	// random source.
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the configuration of the reference detector.
func DefaultConfig() Config {
	return Config{
		NumClasses: DefaultNumClasses,
		RegMax:     DefaultRegMax,
		Variant:    VariantFull,
		InputSize:  DefaultInputSize,
		BNEps:      DefaultBNEps,
		BNMomentum: DefaultBNMomentum,
	}
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.validateArchitecture(); err != nil {
		return err
	}
	switch {
	case c.InputSize <= 0 || c.InputSize%c.SizeMultiple() != 0:
		return fmt.Errorf("%w: input size must be a positive multiple of %d for the %s variant, got %d",
			ErrInvalidConfig, c.SizeMultiple(), c.Variant, c.InputSize)
	case c.BNEps <= 0:
		return fmt.Errorf("%w: bn_eps must be positive, got %g", ErrInvalidConfig, c.BNEps)
	case c.BNMomentum < 0 || c.BNMomentum > 1:
		return fmt.Errorf("%w: bn_momentum must be in [0, 1], got %g", ErrInvalidConfig, c.BNMomentum)
	}
	return nil
}

// validateArchitecture checks the fields that determine layer shapes.
func (c Config) validateArchitecture() error {
	switch {
	case c.NumClasses < 1:
		return fmt.Errorf("%w: classes must be at least 1, got %d", ErrInvalidConfig, c.NumClasses)
	case c.RegMax < 1:
		return fmt.Errorf("%w: reg_max must be at least 1, got %d", ErrInvalidConfig, c.RegMax)
	case !slices.Contains(Variants, c.Variant):
		return fmt.Errorf("%w: unknown variant %q (want one of %v)", ErrInvalidConfig, c.Variant, Variants)
	}
	return nil
}

// SizeMultiple returns the factor every input side must be a multiple of for
// the neck's upsampled maps to line up with the backbone maps.
func (c Config) SizeMultiple() int {
	if c.Variant == VariantLite {
		return 16
	}
	return 32
}

// Strides returns the head strides in output order.
func (c Config) Strides() []int {
	var strides []int
	for _, n := range topology(c.Variant) {
		if n.op == opHead {
			strides = append(strides, n.stride)
		}
	}
	return strides
}

// HeadChannels returns the channel count of every head map:
// 4*RegMax (bbox) + NumClasses (cls) + 1 (depth).
func (c Config) HeadChannels() int {
	return 4*c.RegMax + c.NumClasses + 1
}

func (c Config) batchNorm() batchNormConfig {
	return batchNormConfig{eps: c.BNEps, momentum: c.BNMomentum}
}
