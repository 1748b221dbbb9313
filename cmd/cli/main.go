package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	exitSolved          = 10
	exitInvalidSolution = 15
	exitUnsatisfiable   = 20
	exitBudgetExhausted = 30
	exitFailure         = 1
)

// exitError carries the process exit code of a finished run. err is nil for a successful one
type exitError struct {
	code int
	err  error
}

func (err *exitError) Error() string {
	if err.err == nil {
		return fmt.Sprintf("exit code %v", err.code)
	}
	return err.err.Error()
}

func (err *exitError) Unwrap() error {
	return err.err
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, exit.err)
		}
		return exit.code
	} else if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return 0
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "timetable",
		Short:         "Build weekly class timetables with constraint propagation and backtracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML or JSON configuration file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "console", "Log encoding: console or json")
	flags.String("room-policy", "strict", `Room policy: "strict" (seminars never use course rooms) or "relaxed" (seminars may use any room)`)
	flags.String("propagation", "ac3", `Propagation: "ac3" (arc consistency before and during the search) or "none" (plain backtracking)`)
	flags.Uint64("max-nodes", 0, "Maximum number of search nodes, 0 for no limit")
	flags.Duration("timeout", 0, "Maximum solving time, 0 for no limit")
	flags.Uint64("hours-per-slot", 1, "Hours every class counts against the teacher caps")
	flags.Uint64("default-max-daily-hours", 0, "Daily cap of teachers without max_daily_hours, 0 to fall back to their weekly cap")
	flags.Bool("precheck", true, "Prove infeasibility through room and teacher matchings before searching")
	flags.String("metrics-file", "", "Path to the file where Prometheus metrics will be written after the run")

	bindings := map[string]string{
		"log.level":                      "log-level",
		"log.format":                     "log-format",
		"solver.room_policy":             "room-policy",
		"solver.propagation":             "propagation",
		"solver.max_nodes":               "max-nodes",
		"solver.timeout":                 "timeout",
		"solver.hours_per_slot":          "hours-per-slot",
		"solver.default_max_daily_hours": "default-max-daily-hours",
		"solver.precheck":                "precheck",
		"metrics_file":                   "metrics-file",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(newSolveCommand(v, &configFile), newCheckCommand(v, &configFile))
	return root
}
