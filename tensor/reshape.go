package tensor

import (
	"errors"
	"fmt"
)

// Reshape returns a copy of t with a new shape. One dimension may be -1 and is inferred.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, errors.New("reshape shape required")
	}
	shape = append([]int(nil), shape...)
	total := t.Numel()
	prod := 1
	infer := -1
	for i, dim := range shape {
		if dim == -1 {
			if infer != -1 {
				return nil, fmt.Errorf("reshape %v: multiple inferred dimensions: %w", shape, ErrShapeMismatch)
			}
			infer = i
			continue
		}
		if dim <= 0 {
			return nil, fmt.Errorf("reshape %v: invalid dimension %d: %w", shape, dim, ErrShapeMismatch)
		}
		prod *= dim
	}
	if infer != -1 {
		if total%prod != 0 {
			return nil, fmt.Errorf("reshape %v: cannot infer dimension from %d elements: %w", shape, total, ErrShapeMismatch)
		}
		shape[infer] = total / prod
		prod = total
	}
	if prod != total {
		return nil, fmt.Errorf("reshape %v -> %v: %w", t.shape, shape, ErrShapeMismatch)
	}
	return &Tensor{
		data:    append([]float64(nil), t.data...),
		shape:   shape,
		strides: makeStrides(shape),
	}, nil
}

// BiasFromSlice builds the [1, 1, 1, len(values)] bias tensor Conv2D expects.
func BiasFromSlice(values []float64) (*Tensor, error) {
	return New(values, 1, 1, 1, len(values))
}
