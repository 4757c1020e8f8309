// Package benchmark measures end-to-end detection throughput over a set of
// encoded images.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/detector"
)

// ImageDetector is the detection entry point under test.
type ImageDetector interface {
	Detect(ctx context.Context, imageBytes []byte) ([]detector.Detection, error)
}

// TestScenario defines a specific test configuration
type TestScenario struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Iterations int    `json:"iterations"`
	WarmupRuns int    `json:"warmup_runs"`
}

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario        TestScenario  `json:"scenario"`
	Timestamp       time.Time     `json:"timestamp"`
	TotalDuration   time.Duration `json:"total_duration"`
	MinLatency      time.Duration `json:"min_latency"`
	MaxLatency      time.Duration `json:"max_latency"`
	FramesPerSecond float64       `json:"frames_per_second"`
	MemoryStats     MemoryMetrics `json:"memory_stats"`
	NumCPU          int           `json:"num_cpu"`
	DetectionCount  int           `json:"detection_count"`
	ErrorRate       float64       `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
}

// BenchmarkSuite manages and executes benchmark scenarios
type BenchmarkSuite struct {
	detector   ImageDetector
	outputDir  string
	testImages [][]byte

	mu        sync.RWMutex
	scenarios []TestScenario
	results   []PerformanceMetrics
}

// NewBenchmarkSuite creates a new benchmark suite
func NewBenchmarkSuite(det ImageDetector, testImages [][]byte, outputDir string) *BenchmarkSuite {
	return &BenchmarkSuite{
		detector:   det,
		outputDir:  outputDir,
		testImages: testImages,
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *BenchmarkSuite) AddScenario(scenario TestScenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// RunScenario executes a single benchmark scenario, cycling through the test
// images. Failed detections count toward ErrorRate; cancellation aborts.
func (bs *BenchmarkSuite) RunScenario(ctx context.Context, scenario TestScenario) (*PerformanceMetrics, error) {
	if len(bs.testImages) == 0 {
		return nil, errors.New("no test images")
	}
	if scenario.Iterations <= 0 {
		return nil, errors.Errorf("scenario %q needs a positive iteration count", scenario.Name)
	}

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := bs.detector.Detect(ctx, bs.testImages[i%len(bs.testImages)]); err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
		NumCPU:    runtime.NumCPU(),
	}

	failures := 0
	startTime := time.Now()
	for i := 0; i < scenario.Iterations; i++ {
		iterStart := time.Now()
		detections, err := bs.detector.Detect(ctx, bs.testImages[i%len(bs.testImages)])
		latency := time.Since(iterStart)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			continue
		}

		metrics.DetectionCount += len(detections)
		if metrics.MinLatency == 0 || latency < metrics.MinLatency {
			metrics.MinLatency = latency
		}
		metrics.MaxLatency = max(metrics.MaxLatency, latency)
	}
	metrics.TotalDuration = time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	if s := metrics.TotalDuration.Seconds(); s > 0 {
		metrics.FramesPerSecond = float64(scenario.Iterations-failures) / s
	}
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
	}

	return metrics, nil
}

// RunAllScenarios executes all configured benchmark scenarios and saves the
// results. It stops at the first failing scenario.
func (bs *BenchmarkSuite) RunAllScenarios(ctx context.Context) ([]string, error) {
	bs.mu.RLock()
	scenarios := append([]TestScenario(nil), bs.scenarios...)
	bs.mu.RUnlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			return nil, errors.Wrapf(err, "scenario %s failed", scenario.Name)
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()
	}

	return bs.SaveResults()
}

// SaveResults persists benchmark results to the output directory as a JSON
// document and a CSV summary, returning both paths.
func (bs *BenchmarkSuite) SaveResults() ([]string, error) {
	results := bs.GetResults()

	// Ensure output directory exists
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal results")
	}

	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return nil, errors.Wrap(err, "failed to save summary CSV")
	}

	return []string{resultsFile, summaryFile}, nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Scenario,Model,Iterations,FPS,Total_Duration_ms,Min_Latency_ms,Max_Latency_ms,Alloc_MB,Detections,Error_Rate\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, result := range results {
		line := fmt.Sprintf("%s,%s,%d,%.2f,%.2f,%.2f,%.2f,%.2f,%d,%.4f\n",
			result.Scenario.Name,
			result.Scenario.Model,
			result.Scenario.Iterations,
			result.FramesPerSecond,
			ms(result.TotalDuration),
			ms(result.MinLatency),
			ms(result.MaxLatency),
			float64(result.MemoryStats.AllocBytes)/(1024*1024),
			result.DetectionCount,
			result.ErrorRate,
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return file.Close()
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// GetResults returns all benchmark results
func (bs *BenchmarkSuite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return append([]PerformanceMetrics(nil), bs.results...)
}
