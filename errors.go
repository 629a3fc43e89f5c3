package psm

import (
	"errors"
	"fmt"
)

var (
	// ErrBurnIn indicates a negative burn-in count.
	ErrBurnIn = errors.New("psm: burn-in cannot be negative")
	// ErrThinning indicates a thinning stride below 1.
	ErrThinning = errors.New("psm: thinning stride cannot be less than 1")
	// ErrEmptyTrace indicates that burn-in and thinning left no iterations.
	ErrEmptyTrace = errors.New("psm: trace contains no retained iterations")
	// ErrClusterCount indicates a requested cluster count outside [1, n].
	ErrClusterCount = errors.New("psm: number of clusters must lie between 1 and the number of observations")
	// ErrOrderIndex indicates an ordering dataset index outside the matrix sequence.
	ErrOrderIndex = errors.New("psm: ordering dataset index out of range")
)

// ShapeError reports a trace whose header declares a column layout that is
// inconsistent with its cluster-label block, such as datasets with differing
// observation counts. Loading aborts before any matrix is allocated.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string {
	return "psm: " + e.Msg
}

func shapeErrorf(format string, args ...interface{}) *ShapeError {
	return &ShapeError{Msg: fmt.Sprintf(format, args...)}
}
