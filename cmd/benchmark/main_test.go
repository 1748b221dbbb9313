package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/classcsp/pkg/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestGetTests(t *testing.T) {
	//** Act
	tests, err := getTests("testdata/satisfiable", "testdata/unsatisfiable")

	//** Assert
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.True(t, tests[0].Satisfiable)
	assert.Equal(t, 2, tests[0].Classes)
	assert.False(t, tests[1].Satisfiable)
	assert.Equal(t, 3, tests[1].Teachers)
}

func TestGetTestsMissingDirectory(t *testing.T) {
	//** Act
	_, err := getTests("testdata/satisfiable", "testdata/missing")

	//** Assert
	assert.ErrorContains(t, err, "cannot read directory")
}

func TestBenchmark(t *testing.T) {
	//** Arrange
	tests, err := getTests("testdata/satisfiable", "testdata/unsatisfiable")
	require.NoError(t, err)

	//** Act
	results := benchmark(context.Background(), tests, getConfigurations(), csp.DefaultOptions(), zaptest.NewLogger(t), nil)

	//** Assert
	require.Len(t, results, 8)
	for _, result := range results {
		if result.Test.Satisfiable {
			assert.Equal(t, csp.OutcomeSolved, result.Result)
			assert.Equal(t, uint64(2), result.Nodes)
		} else {
			assert.Equal(t, csp.OutcomeUnsatisfiable, result.Result)
		}
	}
	assert.Equal(t, Configuration{Propagation: csp.NoPropagation, RoomPolicy: csp.RelaxedRooms}, results[3].Configuration)
}

func TestToCsv(t *testing.T) {
	//** Arrange
	results := []BenchmarkResult{{
		Configuration: Configuration{Propagation: csp.MaintainArcConsistency, RoomPolicy: csp.StrictRooms},
		Test:          TestMetadata{Name: "two_groups.json", Satisfiable: true, Groups: 3, Subjects: 1, Teachers: 1, Rooms: 1, TimeSlots: 2, Classes: 2},
		Duration:      12,
		Memory:        1.25,
		Nodes:         2,
		Result:        csp.OutcomeSolved,
	}}
	var buffer bytes.Buffer

	//** Act
	err := toCsv(&buffer, results)

	//** Assert
	require.NoError(t, err)
	records, err := csv.NewReader(&buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Propagation", records[0][0])
	assert.Equal(t, []string{"ac3", "strict", "two_groups.json", "true", "3", "1", "1", "1", "2", "2", "12", "1.2", "2", "0", "0", "0", "solved"}, records[1])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, csp.OutcomeSolved, outcome(nil))
	assert.Equal(t, csp.OutcomeUnsatisfiable, outcome(&csp.UnsatisfiableError{Stage: csp.StageCapacity}))
	assert.Equal(t, csp.OutcomeNoSolution, outcome(&csp.NoSolutionError{}))
	assert.Equal(t, csp.OutcomeBudgetExhausted, outcome(&csp.NoSolutionError{BudgetExhausted: true, Cause: csp.ErrNodeBudget}))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

func TestBenchmarkCommand(t *testing.T) {
	//** Arrange
	directory := t.TempDir()
	outFile := filepath.Join(directory, "results.csv")
	metricsFile := filepath.Join(directory, "metrics.prom")
	cmd := newBenchmarkCommand()
	cmd.SetArgs([]string{
		"--satisfiable", "testdata/satisfiable",
		"--unsatisfiable", "testdata/unsatisfiable",
		"--out", outFile,
		"--metrics-file", metricsFile,
		"--log-level", "error",
	})

	//** Act
	err := cmd.Execute()

	//** Assert
	require.NoError(t, err)
	report, err := os.ReadFile(outFile)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(report)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 9)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `timetable_solves_total{outcome="solved"} 4`)
	assert.Contains(t, string(metrics), `timetable_solves_total{outcome="unsatisfiable"} 4`)
}
