// Package pipeline runs a full convolution check: generate tensors, convolve
// them with both engines, reconcile the outputs and compare them.
package pipeline

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/convcheck/internal/backend/cpu"
	"github.com/born-ml/convcheck/internal/compare"
	"github.com/born-ml/convcheck/internal/config"
	"github.com/born-ml/convcheck/internal/generate"
	"github.com/born-ml/convcheck/internal/im2col"
	"github.com/born-ml/convcheck/internal/parallel"
	"github.com/born-ml/convcheck/internal/tensor"
)

// Stage identifies a step of the pipeline.
type Stage int

// Pipeline stages, in execution order.
const (
	StageGenerate Stage = iota
	StageDirect
	StageIm2col
	StageMatMul
	StageCompare
	NumStages = int(StageCompare) + 1
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageGenerate:
		return "generate"
	case StageDirect:
		return "direct conv"
	case StageIm2col:
		return "im2col"
	case StageMatMul:
		return "matmul conv"
	case StageCompare:
		return "compare"
	default:
		return "unknown"
	}
}

// Timing is the wall time of one stage.
type Timing struct {
	Stage    Stage
	Duration time.Duration
}

// Shapes records the shape of every tensor the run produced.
type Shapes struct {
	Input        tensor.Shape // [N, C, H, W]
	Filter       tensor.Shape // [M, C, R, S]
	Naive        tensor.Shape // [N, M, F, E]
	InputMatrix  tensor.Shape // [N*E*F, C*R*S]
	FilterMatrix tensor.Shape // [M, C*R*S]
	MatMul       tensor.Shape // [M, N*E*F]
}

// Result is the outcome of Run.
type Result struct {
	ID      string // Random run identifier, prefixed to every log line of the run.
	Config  config.Config
	Dims    config.Dims
	Report  compare.Report
	Shapes  Shapes
	Bytes   int // Total memory held by all tensors of the run.
	Timings []Timing
}

// Match reports whether both methods agreed.
func (r *Result) Match() bool {
	return r.Report.Match()
}

// Option configures Run.
type Option func(*runner)

// WithStageHook registers fn to be called when each stage starts.
func WithStageHook(fn func(Stage)) Option {
	return func(r *runner) {
		r.hooks = append(r.hooks, fn)
	}
}

// WithBackend overrides the CPU backend built from the configuration.
func WithBackend(backend *cpu.CPUBackend) Option {
	return func(r *runner) {
		r.backend = backend
	}
}

// WithTensors runs the check on the given input map [N, C, H, W] and filter
// weights [M, C, R, S] instead of generated ones. Their shapes must match the
// configuration.
func WithTensors(input, filter *tensor.Dense) Option {
	return func(r *runner) {
		r.input, r.filter = input, filter
	}
}

type runner struct {
	backend *cpu.CPUBackend
	input   *tensor.Dense
	filter  *tensor.Dense
	hooks   []func(Stage)
	result  *Result
	start   time.Time
	current Stage
}

func (r *runner) begin(ctx context.Context, s Stage) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "pipeline interrupted before %s", s)
	}
	r.current = s
	r.start = time.Now()
	for _, fn := range r.hooks {
		fn(s)
	}
	return nil
}

func (r *runner) checkTensors(d config.Dims) error {
	if r.input == nil && r.filter == nil {
		return nil
	}
	if r.input == nil || r.filter == nil {
		return errors.New("pipeline: WithTensors needs both an input map and filter weights")
	}
	if want := (tensor.Shape{d.N, d.C, d.H, d.W}); !r.input.Shape().Equal(want) {
		return errors.Wrapf(config.ErrInvalidDimensions, "input map %s does not match configured %s", r.input.Shape(), want)
	}
	if want := (tensor.Shape{d.M, d.C, d.R, d.S}); !r.filter.Shape().Equal(want) {
		return errors.Wrapf(config.ErrInvalidDimensions, "filter weights %s do not match configured %s", r.filter.Shape(), want)
	}
	return nil
}

func (r *runner) end() {
	elapsed := time.Since(r.start)
	r.result.Timings = append(r.result.Timings, Timing{Stage: r.current, Duration: elapsed})
	klog.V(1).Infof("[%s] stage %s took %s", r.result.ID, r.current, elapsed)
}

func (r *runner) track(name string, ts ...*tensor.Dense) {
	for _, t := range ts {
		r.result.Bytes += t.ByteSize()
		klog.V(2).Infof("[%s] %s: shape %s, %s", r.result.ID, name, t.Shape(), humanize.IBytes(uint64(t.ByteSize())))
	}
}

// Run executes the full check for cfg.
//
// An invalid configuration is returned as an error wrapping
// config.ErrInvalidDimensions or config.ErrInvalidOption before any tensor is
// allocated. Disagreement between the two methods is not an error: it is
// reported in Result.Report.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (*Result, error) {
	dims, err := cfg.Dims()
	if err != nil {
		return nil, err
	}

	r := &runner{result: &Result{ID: uuid.NewString(), Config: cfg, Dims: dims}}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.checkTensors(dims); err != nil {
		return nil, err
	}
	if r.backend == nil {
		pcfg := parallel.Sequential()
		if cfg.Parallel {
			pcfg = parallel.DefaultConfig()
		}
		r.backend = cpu.NewWithConfig(pcfg)
	}
	klog.V(1).Infof("[%s] running convolution check: N=%d C=%d H=W=%d M=%d R=S=%d U=%d E=F=%d matmul=%s seed=%d",
		r.result.ID, dims.N, dims.C, dims.H, dims.M, dims.R, dims.U, dims.E, cfg.MatMul, cfg.Seed)
	if p := r.backend.Parallel(); p.Enabled {
		klog.V(1).Infof("[%s] %s backend: %d workers", r.result.ID, r.backend.Name(), p.NumWorkers)
	} else {
		klog.V(1).Infof("[%s] %s backend: sequential", r.result.ID, r.backend.Name())
	}

	// Generate.
	if err := r.begin(ctx, StageGenerate); err != nil {
		return nil, err
	}
	input, filter := r.input, r.filter
	if input == nil {
		gen := generate.New(cfg.Seed)
		if input, err = gen.InputMap(dims); err != nil {
			return nil, err
		}
		if filter, err = gen.FilterWeights(dims); err != nil {
			return nil, err
		}
	}
	r.track("input map", input)
	r.track("filter weights", filter)
	r.end()

	// Direct convolution.
	if err := r.begin(ctx, StageDirect); err != nil {
		return nil, err
	}
	naive, err := r.backend.Conv2DDirect(input, filter, dims.U)
	if err != nil {
		return nil, errors.WithMessage(err, "direct convolution")
	}
	r.track("naive output", naive)
	r.end()

	// Im2col.
	if err := r.begin(ctx, StageIm2col); err != nil {
		return nil, err
	}
	layout, err := im2col.NewLayout(input.Shape(), filter.Shape(), dims.U)
	if err != nil {
		return nil, err
	}
	inputMatrix, err := im2col.InputMatrix(input, layout, dims.U)
	if err != nil {
		return nil, err
	}
	filterMatrix, err := im2col.FilterMatrix(filter)
	if err != nil {
		return nil, err
	}
	r.track("input matrix", inputMatrix)
	r.track("filter matrix", filterMatrix)
	r.end()

	// Matrix multiply.
	if err := r.begin(ctx, StageMatMul); err != nil {
		return nil, err
	}
	product, err := r.backend.MatMulTransB(filterMatrix, inputMatrix, cfg.MatMul)
	if err != nil {
		return nil, errors.WithMessage(err, "matmul convolution")
	}
	r.track("matmul output", product)
	r.end()

	// Reconcile and compare.
	if err := r.begin(ctx, StageCompare); err != nil {
		return nil, err
	}
	reconciled, err := compare.Reconcile(naive, layout)
	if err != nil {
		return nil, err
	}
	r.track("reconciled output", reconciled)
	report, err := compare.Compare(product, reconciled, cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	r.end()

	r.result.Report = report
	r.result.Shapes = Shapes{
		Input:        input.Shape(),
		Filter:       filter.Shape(),
		Naive:        naive.Shape(),
		InputMatrix:  inputMatrix.Shape(),
		FilterMatrix: filterMatrix.Shape(),
		MatMul:       product.Shape(),
	}
	if report.Match() {
		klog.V(1).Infof("[%s] methods agree: %d elements, max |diff| %g", r.result.ID, report.Rows*report.Cols, report.MaxAbsDiff)
	} else {
		klog.Warningf("[%s] methods disagree: %d of %d elements beyond %g, first at %s, max |diff| %g",
			r.result.ID, report.Mismatches, report.Rows*report.Cols, report.Tolerance, report.First, report.MaxAbsDiff)
	}
	return r.result, nil
}
