package nn

import (
	"fmt"

	"github.com/fumitoshi0524/convforward/tensor"
)

// FuncModule wraps a function into a Module.
type FuncModule struct {
	name string
	fn   func(*tensor.Tensor) (*tensor.Tensor, error)
}

func NewModuleFunc(name string, fn func(*tensor.Tensor) (*tensor.Tensor, error)) *FuncModule {
	return &FuncModule{name: name, fn: fn}
}

func (f *FuncModule) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return f.fn(input)
}

func (f *FuncModule) String() string {
	return f.name
}

// ZeroPad2d returns a stage that pads every image with pad zero rows and columns.
func ZeroPad2d(pad int) *FuncModule {
	return NewModuleFunc(fmt.Sprintf("ZeroPad2d(pad=%d)", pad), func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.ZeroPad(x, pad)
	})
}
