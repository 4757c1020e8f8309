// Command detect runs Tiny-YOLOv2 object detection on images and prints one
// JSON document per image.
//
//	detect -file config.yaml -image street.jpg
//	detect -file config.yaml -dir frames/ -workers 4
//	detect -file config.yaml -dir frames/ -bench 200 -bench-out results/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-yolo/benchmark"
	"github.com/nvr-ai/go-yolo/config"
	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/logger"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/util"
)

// Result is the JSON document printed for each image.
type Result struct {
	Path       string               `json:"path"`
	Detections []detector.Detection `json:"detections"`
	Error      string               `json:"error,omitempty"`
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "detect: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	imagePath  string
	dirPath    string
	workers    int
	benchIters int
	benchOut   string
}

// parseOptions parses the command line. Usage and errors go to errOut.
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var opts options
	fs.StringVar(&opts.configPath, "file", "", "configuration file")
	fs.StringVar(&opts.imagePath, "image", "", "image to run detection on")
	fs.StringVar(&opts.dirPath, "dir", "", "directory of images to run detection on")
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "images decoded concurrently in -dir mode")
	fs.IntVar(&opts.benchIters, "bench", 0, "run a throughput benchmark of this many iterations instead of printing detections")
	fs.StringVar(&opts.benchOut, "bench-out", "benchmark_results", "directory for benchmark results")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if (opts.imagePath == "") == (opts.dirPath == "") {
		err := errors.New("exactly one of -image or -dir is required")
		fmt.Fprintln(errOut, err)
		fs.Usage()
		return options{}, err
	}
	if opts.workers < 1 {
		err := errors.Errorf("-workers must be at least 1, got %d", opts.workers)
		fmt.Fprintln(errOut, err)
		return options{}, err
	}

	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if err := config.Init(opts.configPath); err != nil {
		return err
	}
	cfg := config.Config

	log, err := logger.GetZapLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := models.NewModel(cfg.Model)
	if err != nil {
		return err
	}

	session, err := inference.NewSession(inference.SessionConfig{
		SharedLibPath: cfg.Runtime.SharedLibPath,
		Model:         m.Options(),
		Provider:      cfg.Runtime.Provider,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	det, err := detector.New(session, m, cfg.Detector, log)
	if err != nil {
		return err
	}

	log.Info("model loaded",
		zap.String("model", string(m.Options().Name)),
		zap.String("path", m.Options().Path),
		zap.String("provider", string(cfg.Runtime.Provider.Provider)))

	var files []util.ImageFile
	if opts.imagePath != "" {
		data, err := os.ReadFile(opts.imagePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", opts.imagePath)
		}
		files = []util.ImageFile{{Path: opts.imagePath, Data: data, Frame: -1}}
	} else {
		files, err = util.LoadDirectoryImageFiles(opts.dirPath)
		if err != nil {
			return err
		}
	}

	if opts.benchIters > 0 {
		return runBenchmark(ctx, det, files, string(m.Options().Name), opts, log)
	}

	results, err := detectAll(ctx, det, files, opts.workers, log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "failed to write result")
		}
	}
	return nil
}

// imageDetector is the part of detector.Detector used here.
type imageDetector interface {
	Detect(ctx context.Context, imageBytes []byte) ([]detector.Detection, error)
}

// detectAll runs detection over files with at most workers in flight and
// returns results in input order. A bad image is reported in its Result and
// does not stop the batch; cancellation does.
func detectAll(ctx context.Context, det imageDetector, files []util.ImageFile, workers int, log *zap.Logger) ([]Result, error) {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))

	for i, f := range files {
		g.Go(func() error {
			detections, err := det.Detect(ctx, f.Data)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("detection failed", zap.String("path", f.Path), zap.Error(err))
				results[i] = Result{Path: f.Path, Detections: []detector.Detection{}, Error: err.Error()}
				return nil
			}
			results[i] = Result{Path: f.Path, Detections: detections}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runBenchmark(ctx context.Context, det imageDetector, files []util.ImageFile, modelName string, opts options, log *zap.Logger) error {
	testImages := make([][]byte, 0, len(files))
	for _, f := range files {
		testImages = append(testImages, f.Data)
	}

	suite := benchmark.NewBenchmarkSuite(det, testImages, opts.benchOut)
	suite.AddScenario(benchmark.TestScenario{
		Name:       "detect",
		Model:      modelName,
		Iterations: opts.benchIters,
		WarmupRuns: min(10, opts.benchIters),
	})

	paths, err := suite.RunAllScenarios(ctx)
	if err != nil {
		return err
	}

	for _, r := range suite.GetResults() {
		log.Info("benchmark complete",
			zap.String("scenario", r.Scenario.Name),
			zap.Float64("fps", r.FramesPerSecond),
			zap.Duration("min_latency", r.MinLatency),
			zap.Duration("max_latency", r.MaxLatency),
			zap.Float64("error_rate", r.ErrorRate),
			zap.Strings("files", paths))
	}
	return nil
}
