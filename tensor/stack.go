package tensor

import (
	"errors"
	"fmt"
)

// Stack joins equally shaped tensors along a new leading axis, e.g. [h, w, c] images
// into an [m, h, w, c] batch.
func Stack(tensors ...*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, errors.New("Stack requires at least one tensor")
	}
	base := tensors[0]
	if base == nil {
		return nil, fmt.Errorf("Stack: tensor 0 is nil: %w", ErrShapeMismatch)
	}
	for i, t := range tensors[1:] {
		if t == nil || !equalShapes(t.shape, base.shape) {
			var got []int
			if t != nil {
				got = t.shape
			}
			return nil, fmt.Errorf("Stack: tensor %d has shape %v, want %v: %w", i+1, got, base.shape, ErrShapeMismatch)
		}
	}
	shape := append([]int{len(tensors)}, base.shape...)
	data := make([]float64, 0, len(tensors)*len(base.data))
	for _, t := range tensors {
		data = append(data, t.data...)
	}
	return &Tensor{
		data:    data,
		shape:   shape,
		strides: makeStrides(shape),
	}, nil
}
