package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/limaJavier/classcsp/pkg/config"
	"github.com/limaJavier/classcsp/pkg/csp"
	"github.com/limaJavier/classcsp/pkg/logger"
	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const MB float32 = 1024 * 1024

type TestMetadata struct {
	Name        string
	Satisfiable bool
	Groups      int
	Subjects    int
	Teachers    int
	Rooms       int
	TimeSlots   int
	Classes     int
	catalogue   *model.Catalogue
}

type Configuration struct {
	Propagation csp.PropagationMode
	RoomPolicy  csp.RoomPolicy
}

type BenchmarkResult struct {
	Configuration Configuration
	Test          TestMetadata
	Duration      int64   // Milliseconds
	Memory        float32 // Megabytes allocated by the solve
	Nodes         uint64
	Backtracks    uint64
	Revisions     uint64
	Pruned        uint64
	Result        string
}

func main() {
	if err := newBenchmarkCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newBenchmarkCommand() *cobra.Command {
	v := viper.New()
	var satisfiableDirectory, unsatisfiableDirectory, outFile string

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Solve every test catalogue with every propagation mode and room policy, and write a CSV report",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, "")
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			tests, err := getTests(satisfiableDirectory, unsatisfiableDirectory)
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			metrics := csp.NewMetrics(registry)
			results := benchmark(context.Background(), tests, getConfigurations(), cfg.Solver.Options(), log, metrics)

			file, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("cannot create CSV file: %w", err)
			}
			defer file.Close()
			if err := toCsv(file, results); err != nil {
				return err
			}

			if cfg.MetricsFile != "" {
				return prometheus.WriteToTextfile(cfg.MetricsFile, registry)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&satisfiableDirectory, "satisfiable", "test/satisfiable", "Directory of catalogues known to be satisfiable")
	flags.StringVar(&unsatisfiableDirectory, "unsatisfiable", "test/unsatisfiable", "Directory of catalogues known to be unsatisfiable")
	flags.StringVar(&outFile, "out", "benchmark_results.csv", "Path to the CSV report")
	flags.Uint64("max-nodes", 0, "Maximum number of search nodes per solve, 0 for no limit")
	flags.Duration("timeout", 0, "Maximum solving time per solve, 0 for no limit")
	flags.String("metrics-file", "", "Path to the file where Prometheus metrics will be written")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")

	for key, flag := range map[string]string{
		"solver.max_nodes": "max-nodes",
		"solver.timeout":   "timeout",
		"metrics_file":     "metrics-file",
		"log.level":        "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// getTests loads every catalogue of both directories. Sub-directories are loaded as one file per table
func getTests(satisfiableDirectory, unsatisfiableDirectory string) ([]TestMetadata, error) {
	tests := make([]TestMetadata, 0)
	for _, tuple := range lo.Zip2([]string{satisfiableDirectory, unsatisfiableDirectory}, []bool{true, false}) {
		directory, satisfiable := tuple.A, tuple.B
		entries, err := os.ReadDir(directory)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory: %w", err)
		}

		for _, entry := range entries {
			name := filepath.Join(directory, entry.Name())
			var catalogue *model.Catalogue
			if entry.IsDir() {
				catalogue, err = model.CatalogueFromDirectory(name)
			} else {
				catalogue, err = model.CatalogueFromFile(name)
			}
			if err != nil {
				return nil, fmt.Errorf("cannot load test %v: %w", name, err)
			}

			tests = append(tests, TestMetadata{
				Name:        name,
				Satisfiable: satisfiable,
				Groups:      len(catalogue.Groups),
				Subjects:    len(catalogue.Subjects),
				Teachers:    len(catalogue.Teachers),
				Rooms:       len(catalogue.Rooms),
				TimeSlots:   len(catalogue.Slots),
				Classes:     len(model.BuildClassList(catalogue)),
				catalogue:   catalogue,
			})
		}
	}
	return tests, nil
}

func getConfigurations() []Configuration {
	configurations := make([]Configuration, 0, len(csp.PropagationModes)*len(csp.RoomPolicies))
	for _, propagation := range csp.PropagationModes {
		for _, roomPolicy := range csp.RoomPolicies {
			configurations = append(configurations, Configuration{Propagation: propagation, RoomPolicy: roomPolicy})
		}
	}
	return configurations
}

func benchmark(ctx context.Context, tests []TestMetadata, configurations []Configuration, options csp.Options, log *zap.Logger, metrics *csp.Metrics) []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(tests)*len(configurations))
	for _, test := range tests {
		for _, configuration := range configurations {
			log.Info("benchmarking",
				zap.String("test", test.Name),
				zap.String("propagation", string(configuration.Propagation)),
				zap.String("room_policy", string(configuration.RoomPolicy)),
			)

			options.Propagation, options.RoomPolicy = configuration.Propagation, configuration.RoomPolicy
			result := measure(ctx, csp.NewSolver(options, log, metrics), test)
			result.Configuration = configuration

			if test.Satisfiable != (result.Result == csp.OutcomeSolved) && result.Result != csp.OutcomeBudgetExhausted {
				log.Warn("unexpected result", zap.String("test", test.Name), zap.Bool("satisfiable", test.Satisfiable), zap.String("result", result.Result))
			}
			results = append(results, result)
		}
	}
	return results
}

func measure(ctx context.Context, solver csp.Solver, test TestMetadata) BenchmarkResult {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	start := time.Now()
	solution, err := solver.Solve(ctx, test.catalogue)
	duration := time.Since(start)
	runtime.ReadMemStats(&after)

	result := BenchmarkResult{
		Test:     test,
		Duration: duration.Milliseconds(),
		Memory:   float32(after.TotalAlloc-before.TotalAlloc) / MB,
		Result:   outcome(err),
	}
	if solution != nil {
		result.Nodes, result.Backtracks = solution.Stats.Nodes, solution.Stats.Backtracks
		result.Revisions, result.Pruned = solution.Stats.Revisions, solution.Stats.Pruned
	}
	var noSolution *csp.NoSolutionError
	if errors.As(err, &noSolution) {
		result.Nodes = noSolution.Nodes
	}
	return result
}

func outcome(err error) string {
	var unsatisfiable *csp.UnsatisfiableError
	var noSolution *csp.NoSolutionError
	switch {
	case err == nil:
		return csp.OutcomeSolved
	case errors.As(err, &unsatisfiable):
		return csp.OutcomeUnsatisfiable
	case errors.As(err, &noSolution) && noSolution.BudgetExhausted:
		return csp.OutcomeBudgetExhausted
	case errors.As(err, &noSolution):
		return csp.OutcomeNoSolution
	}
	return "error"
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Propagation", "Room-Policy", "Test", "Satisfiable", "Groups", "Subjects", "Teachers", "Rooms", "TimeSlots", "Classes", "Duration(ms)", "Memory(MB)", "Nodes", "Backtracks", "Revisions", "Pruned", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			string(result.Configuration.Propagation),
			string(result.Configuration.RoomPolicy),
			result.Test.Name,
			fmt.Sprintf("%v", result.Test.Satisfiable),
			fmt.Sprintf("%d", result.Test.Groups),
			fmt.Sprintf("%d", result.Test.Subjects),
			fmt.Sprintf("%d", result.Test.Teachers),
			fmt.Sprintf("%d", result.Test.Rooms),
			fmt.Sprintf("%d", result.Test.TimeSlots),
			fmt.Sprintf("%d", result.Test.Classes),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.Nodes),
			fmt.Sprintf("%d", result.Backtracks),
			fmt.Sprintf("%d", result.Revisions),
			fmt.Sprintf("%d", result.Pruned),
			result.Result,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
