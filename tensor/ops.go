package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Mul returns the elementwise product of a and b, which must have identical shapes.
func Mul(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, fmt.Errorf("Mul: %w", err)
	}
	out := &Tensor{
		data:    make([]float64, len(a.data)),
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
	}
	floats.MulTo(out.data, a.data, b.data)
	return out, nil
}

func ensureSameShape(a, b *Tensor) error {
	if a == nil || b == nil {
		return fmt.Errorf("nil operand: %w", ErrShapeMismatch)
	}
	if !equalShapes(a.shape, b.shape) {
		return fmt.Errorf("%v vs %v: %w", a.shape, b.shape, ErrShapeMismatch)
	}
	return nil
}
