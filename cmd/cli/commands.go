package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/limaJavier/classcsp/pkg/config"
	"github.com/limaJavier/classcsp/pkg/csp"
	"github.com/limaJavier/classcsp/pkg/logger"
	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type input struct {
	file         string
	directory    string
	restrictions string
}

func (in *input) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.file, "file", "", "Path to a JSON or YAML catalogue file")
	cmd.Flags().StringVar(&in.directory, "dir", "", "Path to a directory holding one file per catalogue table")
	cmd.Flags().StringVar(&in.restrictions, "restrictions", "", "Path to an extra_restrictions file replacing the catalogue's")
}

func (in *input) load() (*model.Catalogue, error) {
	if (in.file == "") == (in.directory == "") {
		return nil, errors.New("exactly one of --file and --dir must be specified")
	}

	var catalogue *model.Catalogue
	var err error
	if in.file != "" {
		catalogue, err = model.CatalogueFromFile(in.file)
	} else {
		catalogue, err = model.CatalogueFromDirectory(in.directory)
	}
	if err != nil {
		return nil, err
	}

	if in.restrictions == "" {
		return catalogue, nil
	}
	extra, err := model.RestrictionsFromFile(in.restrictions)
	if err != nil {
		return nil, err
	}
	return catalogue.WithRestrictions(extra)
}

// environment holds what every command builds from the configuration
type environment struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	solver   csp.Solver
}

func newEnvironment(v *viper.Viper, configFile string) (*environment, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot build logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	return &environment{
		cfg:      cfg,
		logger:   log,
		registry: registry,
		solver:   csp.NewSolver(cfg.Solver.Options(), log, csp.NewMetrics(registry)),
	}, nil
}

func (env *environment) close() {
	if env.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(env.cfg.MetricsFile, env.registry); err != nil {
			env.logger.Error("cannot write metrics", zap.String("file", env.cfg.MetricsFile), zap.Error(err))
		}
	}
	_ = env.logger.Sync()
}

// Maps solver failures to exit codes. Other errors are returned as they are
func classify(err error) error {
	var unsatisfiable *csp.UnsatisfiableError
	var noSolution *csp.NoSolutionError
	switch {
	case errors.As(err, &unsatisfiable):
		return &exitError{code: exitUnsatisfiable, err: err}
	case errors.As(err, &noSolution) && noSolution.BudgetExhausted:
		return &exitError{code: exitBudgetExhausted, err: err}
	case errors.As(err, &noSolution):
		return &exitError{code: exitUnsatisfiable, err: err}
	}
	return err
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

func newSolveCommand(v *viper.Viper, configFile *string) *cobra.Command {
	var in input
	var outFile, view string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Build a timetable for a catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if view != "timetable" && view != "groups" {
				return fmt.Errorf("%v is not a valid view", view)
			}

			env, err := newEnvironment(v, *configFile)
			if err != nil {
				return err
			}
			defer env.close()

			catalogue, err := in.load()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			//** Solve
			result, err := env.solver.Solve(ctx, catalogue)
			if err != nil {
				return classify(err)
			}

			//** Verify timetable correctness
			if err := csp.Verify(catalogue, result.Classes, result.Solution, env.cfg.Solver.Options()); err != nil {
				return &exitError{code: exitInvalidSolution, err: err}
			}

			//** Build output
			timetable := result.Timetable(catalogue)
			var output any = timetable
			if view == "groups" {
				if output, err = model.GroupView(catalogue, timetable); err != nil {
					return err
				}
			}

			outputJson, err := json.Marshal(output)
			if err != nil {
				return fmt.Errorf("an error occurred while building output json: %w", err)
			}

			// Write to the Standard Output unless an output file was given
			if outFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(outputJson))
			} else if err := os.WriteFile(outFile, outputJson, 0666); err != nil {
				return fmt.Errorf("an error occurred while writing to the output file: %w", err)
			}

			env.logger.Info("timetable written",
				zap.String("run_id", result.RunId),
				zap.Int("classes", result.Stats.Classes),
				zap.Uint64("nodes", result.Stats.Nodes),
				zap.Uint64("backtracks", result.Stats.Backtracks),
			)
			return &exitError{code: exitSolved}
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&outFile, "out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	cmd.Flags().StringVar(&view, "view", "timetable", `Output shape: "timetable" (teacher, time slot) or "groups" (group, day)`)
	return cmd
}

func newCheckCommand(v *viper.Viper, configFile *string) *cobra.Command {
	var in input

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a catalogue and run every stage but the search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnvironment(v, *configFile)
			if err != nil {
				return err
			}
			defer env.close()

			catalogue, err := in.load()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			result, err := env.solver.Check(ctx, catalogue)
			if err != nil {
				return classify(err)
			}

			stats := result.Stats
			fmt.Fprintf(cmd.OutOrStdout(), "classes: %v, values: %v, arcs: %v, pruned: %v\n", stats.Classes, stats.Values, stats.Arcs, stats.Pruned)
			return &exitError{code: exitSolved}
		},
	}

	in.register(cmd)
	return cmd
}
