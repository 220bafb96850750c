// Package main provides the convcheck CLI: it convolves random tensors with
// the direct and the im2col methods and reports whether they agree.
//
// Exit codes: 0 when both methods agree, 1 when they disagree, 2 on an
// invalid configuration, 3 on any other failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/born-ml/convcheck/internal/backend/cpu"
	"github.com/born-ml/convcheck/internal/config"
	"github.com/born-ml/convcheck/internal/pipeline"
	"github.com/born-ml/convcheck/internal/report"
)

const version = "v0.1.0"

const (
	exitMatch    = 0
	exitMismatch = 1
	exitInvalid  = 2
	exitFailure  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns its exit code. extra options are passed
// through to pipeline.Run after the ones built from flags.
func run(args []string, stdout, stderr io.Writer, extra ...pipeline.Option) int {
	defaults := config.DefaultConfig()

	fs := flag.NewFlagSet("convcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	klog.InitFlags(fs)

	configPath := fs.String("config", "", "YAML configuration file; explicit flags override its values")
	batch := fs.Int("batch", defaults.BatchSize, "batch size N")
	channels := fs.Int("channels", defaults.Channels, "input channels C")
	inputSize := fs.Int("input", defaults.InputSize, "input height and width H=W")
	filters := fs.Int("filters", defaults.NumFilters, "number of filters M")
	filterSize := fs.Int("filter-size", defaults.FilterSize, "filter height and width R=S")
	stride := fs.Int("stride", defaults.Stride, "stride U")
	outputSize := fs.Int("output", 0, "expected output size E=F; 0 derives it")
	seed := fs.Int64("seed", defaults.Seed, "random seed; negative picks a random one")
	tol := fs.Float64("tol", defaults.Tolerance, "absolute tolerance between the two methods")
	matmul := fs.String("matmul", string(defaults.MatMul), fmt.Sprintf("matrix multiply strategy, one of %v", cpu.Strategies()))
	par := fs.Bool("parallel", defaults.Parallel, "spread independent loops across CPUs")
	progress := fs.Bool("progress", false, "show a progress bar over the pipeline stages")
	quiet := fs.Bool("quiet", false, "print only the verdict")
	noColor := fs.Bool("no-color", false, "disable colors in the report")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		return exitInvalid
	}
	defer klog.Flush()

	if *showVersion {
		fmt.Fprintf(stdout, "convcheck %s\n", version)
		return exitMatch
	}

	if *noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			klog.Errorf("%+v", err)
			fmt.Fprintf(stderr, "convcheck: %v\n", err)
			return exitInvalid
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "batch":
			cfg.BatchSize = *batch
		case "channels":
			cfg.Channels = *channels
		case "input":
			cfg.InputSize = *inputSize
		case "filters":
			cfg.NumFilters = *filters
		case "filter-size":
			cfg.FilterSize = *filterSize
		case "stride":
			cfg.Stride = *stride
		case "output":
			cfg.OutputSize = *outputSize
		case "seed":
			cfg.Seed = *seed
		case "tol":
			cfg.Tolerance = *tol
		case "matmul":
			cfg.MatMul = cpu.MatMulStrategy(*matmul)
		case "parallel":
			cfg.Parallel = *par
		}
	})

	var opts []pipeline.Option
	if *progress {
		bar := progressbar.NewOptions(pipeline.NumStages,
			progressbar.OptionSetWriter(stderr),
			// Same values as progressbar.ThemeASCII (v3.16+, which needs Go 1.22).
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: ".",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionClearOnFinish(),
		)
		started := false
		opts = append(opts, pipeline.WithStageHook(func(s pipeline.Stage) {
			if started {
				must.M(bar.Add(1))
			}
			started = true
			bar.Describe(s.String())
		}))
		defer func() { must.M(bar.Finish()) }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, cfg, append(opts, extra...)...)
	if err != nil {
		fmt.Fprintf(stderr, "convcheck: %v\n", err)
		if errors.Is(err, config.ErrInvalidDimensions) || errors.Is(err, config.ErrInvalidOption) {
			return exitInvalid
		}
		klog.Errorf("%+v", err)
		return exitFailure
	}

	if *quiet {
		fmt.Fprintln(stdout, res.Report.Verdict())
	} else {
		fmt.Fprint(stdout, report.Render(res))
	}
	if !res.Match() {
		return exitMismatch
	}
	return exitMatch
}
