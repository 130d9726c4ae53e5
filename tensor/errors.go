package tensor

import "errors"

var (
	// ErrShapeMismatch reports operands whose shapes are incompatible, e.g. a patch and a
	// filter of different shapes or a filter whose input channels differ from the input's.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidGeometry reports hyperparameters that give a non-positive output size,
	// a non-positive stride or filter size, or a negative pad.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidMode reports a pooling mode outside PoolMax and PoolAverage.
	ErrInvalidMode = errors.New("invalid pooling mode")
)
