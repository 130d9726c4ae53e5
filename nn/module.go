package nn

import (
	"fmt"

	"github.com/fumitoshi0524/convforward/tensor"
)

// Module is a forward-only stage over NHWC batches.
type Module interface {
	Forward(input *tensor.Tensor) (*tensor.Tensor, error)
}

// Describe returns a short label for m, falling back to its Go type.
func Describe(m Module) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
