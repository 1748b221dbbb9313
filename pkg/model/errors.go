package model

import (
	"errors"
	"fmt"
)

// CatalogueError reports a catalogue that cannot be used: a referenced code that is absent from its lookup table, or an entity that fails validation
type CatalogueError struct {
	Entity   string // "teacher", "room", "subject", "time slot" or "group"
	Code     uint64
	Referrer string // Where the code was referenced from, if known
	Err      error  // Underlying validation or decoding error, if any
}

func (err *CatalogueError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("invalid catalogue: %v", err.Err)
	}
	if err.Referrer != "" {
		return fmt.Sprintf("%v code %v referenced by %v is not in the catalogue", err.Entity, err.Code, err.Referrer)
	}
	return fmt.Sprintf("%v code %v is not in the catalogue", err.Entity, err.Code)
}

func (err *CatalogueError) Unwrap() error {
	return err.Err
}

// Attaches the referrer to a lookup failure
func referencedBy(err error, referrer string) error {
	var catalogueErr *CatalogueError
	if errors.As(err, &catalogueErr) {
		clone := *catalogueErr
		clone.Referrer = referrer
		return &clone
	}
	return err
}
