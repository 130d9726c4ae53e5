package tensor

import (
	"errors"
	"fmt"
)

// Tensor is a dense row-major n-d array of float64 values.
type Tensor struct {
	data    []float64
	shape   []int
	strides []int
}

func New(data []float64, shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, errors.New("shape is required")
	}
	total := 1
	for _, dim := range shape {
		if dim <= 0 {
			return nil, fmt.Errorf("invalid shape %v: %w", shape, ErrShapeMismatch)
		}
		total *= dim
	}
	if total != len(data) {
		return nil, fmt.Errorf("data length %d does not fill shape %v: %w", len(data), shape, ErrShapeMismatch)
	}
	t := &Tensor{
		data:    append([]float64(nil), data...),
		shape:   append([]int(nil), shape...),
		strides: makeStrides(shape),
	}
	return t, nil
}

func MustNew(data []float64, shape ...int) *Tensor {
	t, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

func Zeros(shape ...int) *Tensor {
	return MustNew(make([]float64, numel(shape)), shape...)
}

func Ones(shape ...int) *Tensor {
	return Full(1, shape...)
}

func Full(value float64, shape ...int) *Tensor {
	data := make([]float64, numel(shape))
	for i := range data {
		data[i] = value
	}
	return MustNew(data, shape...)
}

func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	clone := &Tensor{
		data:    append([]float64(nil), t.data...),
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
	}
	return clone
}

func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

func (t *Tensor) Rank() int {
	return len(t.shape)
}

func (t *Tensor) Numel() int {
	return len(t.data)
}

func (t *Tensor) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// SetData overwrites the tensor's underlying values. The provided slice must match Numel().
func (t *Tensor) SetData(values []float64) error {
	if len(values) != len(t.data) {
		return fmt.Errorf("SetData got %d values for %d elements: %w", len(values), len(t.data), ErrShapeMismatch)
	}
	copy(t.data, values)
	return nil
}

// At returns the element at the given indices, one per axis.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset("At", indices)]
}

// Set stores value at the given indices, one per axis.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset("Set", indices)] = value
}

func (t *Tensor) offset(op string, indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("%s: expected %d indices, got %d", op, len(t.shape), len(indices)))
	}
	idx := 0
	for i, v := range indices {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("%s: index %d out of bounds for dimension %d (shape: %v)", op, v, i, t.shape))
		}
		idx += v * t.strides[i]
	}
	return idx
}

// Dims4 unpacks the shape of a rank-4 tensor.
func (t *Tensor) Dims4() (d0, d1, d2, d3 int, err error) {
	if t == nil {
		return 0, 0, 0, 0, fmt.Errorf("nil tensor: %w", ErrShapeMismatch)
	}
	if len(t.shape) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("expected rank 4, got shape %v: %w", t.shape, ErrShapeMismatch)
	}
	return t.shape[0], t.shape[1], t.shape[2], t.shape[3], nil
}

// Equal reports whether a and b have the same shape and identical values.
func Equal(a, b *Tensor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !equalShapes(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

func equalShapes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func numel(shape []int) int {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return size
}

func makeStrides(shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}
