package stage

import "github.com/pkg/errors"

var (
	// ErrEndOfData is returned when fewer rows remain than one batch needs.
	// It ends a run normally.
	ErrEndOfData = errors.New("end of data")

	// ErrShapeMismatch is returned when a batch does not hold the same cross
	// baselines at every timestep.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrTimeOrder is returned when rows are not stored time-major.
	ErrTimeOrder = errors.New("rows not in time-major order")
)
