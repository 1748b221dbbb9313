package csp

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageDomain      Stage = "domain"      // A class has no statically legal value
	StagePropagation Stage = "propagation" // Global arc consistency emptied a domain
	StageCapacity    Stage = "capacity"    // Classes cannot be spread over distinct room or teacher slots
)

// UnsatisfiableError reports a catalogue proven infeasible before the search starts
type UnsatisfiableError struct {
	Stage       Stage
	Class       int // Offending class index, -1 when no single class is to blame
	Description string
}

func (err *UnsatisfiableError) Error() string {
	return fmt.Sprintf("unsatisfiable at %v stage: %v", err.Stage, err.Description)
}

// ErrNodeBudget is the cause of a search stopped by Options.MaxNodes
var ErrNodeBudget = errors.New("node budget exhausted")

// NoSolutionError reports a search that ended without a complete assignment
type NoSolutionError struct {
	BudgetExhausted bool
	Nodes           uint64
	Cause           error // ErrNodeBudget or the context error when the budget was exhausted
}

func (err *NoSolutionError) Error() string {
	if err.BudgetExhausted {
		return fmt.Sprintf("no solution found within budget after %v nodes: %v", err.Nodes, err.Cause)
	}
	return fmt.Sprintf("no solution found after %v nodes", err.Nodes)
}

func (err *NoSolutionError) Unwrap() error {
	return err.Cause
}

// InvariantViolation is the panic value raised when the scheduling state is found inconsistent
type InvariantViolation struct {
	Message string
}

func (violation InvariantViolation) Error() string {
	return "invariant violation: " + violation.Message
}

// ErrInvalidSolution is wrapped by every error returned by Verify
var ErrInvalidSolution = errors.New("invalid solution")
