// Package config holds the dimensions and options of a convolution check run.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/convcheck/internal/backend/cpu"
	"github.com/born-ml/convcheck/internal/compare"
	"github.com/born-ml/convcheck/internal/tensor"
)

// Configuration errors. Returned errors wrap one of these.
var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidOption     = errors.New("invalid option")
)

// Config describes one run: the convolution dimensions plus how to execute it.
//
// Inputs and filters are square. The output size is derived, unless
// OutputSize is set, in which case it must equal the derived value.
type Config struct {
	BatchSize  int `yaml:"batchSize"`  // N
	Channels   int `yaml:"channels"`   // C
	InputSize  int `yaml:"inputSize"`  // H = W
	NumFilters int `yaml:"numFilters"` // M
	FilterSize int `yaml:"filterSize"` // R = S
	Stride     int `yaml:"stride"`     // U

	// OutputSize (E = F) is optional; 0 means derive it.
	OutputSize int `yaml:"outputSize,omitempty"`

	Seed      int64              `yaml:"seed"`
	Tolerance float64            `yaml:"tolerance"`
	MatMul    cpu.MatMulStrategy `yaml:"matmul"`
	Parallel  bool               `yaml:"parallel"`
}

// DefaultConfig returns the reference configuration:
// 8 images of 4x32x32, 32 filters of 5x5, stride 2, giving 14x14 outputs.
func DefaultConfig() Config {
	return Config{
		BatchSize:  8,
		Channels:   4,
		InputSize:  32,
		NumFilters: 32,
		FilterSize: 5,
		Stride:     2,
		Seed:       1,
		Tolerance:  compare.DefaultTolerance,
		MatMul:     cpu.MatMulNaive,
		Parallel:   true,
	}
}

// Dims is the full dimension tuple of a validated Config.
type Dims struct {
	N, C, H, W, M, R, S, U int
	E, F                   int // output size along width (E) and height (F)
}

// Validate rejects configurations the engines cannot run exactly.
//
// Besides requiring positive sizes, the stride must tile the input exactly:
// (InputSize - FilterSize) must be a multiple of Stride. Otherwise the last
// input rows would be silently ignored by both engines.
func (c Config) Validate() error {
	for _, d := range []struct {
		name  string
		value int
	}{
		{"batchSize", c.BatchSize},
		{"channels", c.Channels},
		{"inputSize", c.InputSize},
		{"numFilters", c.NumFilters},
		{"filterSize", c.FilterSize},
		{"stride", c.Stride},
	} {
		if d.value <= 0 {
			return errors.Wrapf(ErrInvalidDimensions, "%s must be positive, got %d", d.name, d.value)
		}
	}
	if c.FilterSize > c.InputSize {
		return errors.Wrapf(ErrInvalidDimensions, "filterSize %d larger than inputSize %d", c.FilterSize, c.InputSize)
	}
	if rem := (c.InputSize - c.FilterSize) % c.Stride; rem != 0 {
		return errors.Wrapf(ErrInvalidDimensions,
			"stride %d does not tile inputSize %d with filterSize %d: (%d-%d)/%d is not an integer",
			c.Stride, c.InputSize, c.FilterSize, c.InputSize, c.FilterSize, c.Stride)
	}
	derived := c.derivedOutputSize()
	if c.OutputSize < 0 || (c.OutputSize != 0 && c.OutputSize != derived) {
		return errors.Wrapf(ErrInvalidDimensions, "outputSize %d does not match derived (%d-%d)/%d+1 = %d",
			c.OutputSize, c.InputSize, c.FilterSize, c.Stride, derived)
	}
	if err := c.checkSizes(derived); err != nil {
		return err
	}
	if !(c.Tolerance >= 0) {
		return errors.Wrapf(ErrInvalidOption, "tolerance must be a non-negative number, got %g", c.Tolerance)
	}
	if err := c.MatMul.Validate(); err != nil {
		// Both sentinels stay matchable.
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	return nil
}

// checkSizes rejects dimensions whose tensors would not fit in memory
// addressable by an int: every tensor of a run, im2col matrices included.
func (c Config) checkSizes(e int) error {
	n, ch, h, m, r := c.BatchSize, c.Channels, c.InputSize, c.NumFilters, c.FilterSize
	for _, t := range []struct {
		name  string
		shape tensor.Shape
	}{
		{"input map", tensor.Shape{n, ch, h, h}},
		{"filter weights", tensor.Shape{m, ch, r, r}},
		{"output", tensor.Shape{n, m, e, e}},
		{"input matrix", tensor.Shape{n, e, e, ch, r, r}},
	} {
		if err := t.shape.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidDimensions, "%s too large: %v", t.name, err)
		}
		if t.shape.NumElements() > tensor.MaxElements {
			return errors.Wrapf(ErrInvalidDimensions, "%s too large: %d elements", t.name, t.shape.NumElements())
		}
	}
	return nil
}

func (c Config) derivedOutputSize() int {
	return (c.InputSize-c.FilterSize)/c.Stride + 1
}

// Dims returns the dimension tuple, validating the configuration first.
func (c Config) Dims() (Dims, error) {
	if err := c.Validate(); err != nil {
		return Dims{}, err
	}
	e := c.derivedOutputSize()
	return Dims{
		N: c.BatchSize, C: c.Channels, H: c.InputSize, W: c.InputSize,
		M: c.NumFilters, R: c.FilterSize, S: c.FilterSize, U: c.Stride,
		E: e, F: e,
	}, nil
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their DefaultConfig values; unknown keys are an error. The result is not
// validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "parsing config %q", path)
	}
	return cfg, nil
}
