package nn

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fumitoshi0524/convforward/tensor"
)

// Conv2d applies a fixed bank of filters. Weights are supplied by the caller
// and are never updated.
type Conv2d struct {
	inChannels  int
	outChannels int
	kernel      int
	params      tensor.ConvParams
	weight      *tensor.Tensor
	bias        *tensor.Tensor

	mu    sync.Mutex
	cache *tensor.ConvCache
}

// NewConv2d validates weights [f, f, in, out] and biases [1, 1, 1, out] once and
// keeps private copies of both.
func NewConv2d(weights, biases *tensor.Tensor, p tensor.ConvParams) (*Conv2d, error) {
	if weights == nil || biases == nil {
		return nil, errors.New("NewConv2d requires weights and biases")
	}
	kh, kw, inC, outC, err := weights.Dims4()
	if err != nil {
		return nil, fmt.Errorf("NewConv2d weights: %w", err)
	}
	if kh != kw {
		return nil, fmt.Errorf("NewConv2d expects square filters, got %dx%d: %w", kh, kw, tensor.ErrShapeMismatch)
	}
	b0, b1, b2, bC, err := biases.Dims4()
	if err != nil {
		return nil, fmt.Errorf("NewConv2d biases: %w", err)
	}
	if b0 != 1 || b1 != 1 || b2 != 1 || bC != outC {
		return nil, fmt.Errorf("NewConv2d bias shape %v, want [1 1 1 %d]: %w", biases.Shape(), outC, tensor.ErrShapeMismatch)
	}
	if p.Stride <= 0 {
		return nil, fmt.Errorf("NewConv2d stride %d must be positive: %w", p.Stride, tensor.ErrInvalidGeometry)
	}
	if p.Pad < 0 {
		return nil, fmt.Errorf("NewConv2d pad %d must not be negative: %w", p.Pad, tensor.ErrInvalidGeometry)
	}
	return &Conv2d{
		inChannels:  inC,
		outChannels: outC,
		kernel:      kh,
		params:      p,
		weight:      weights.Clone(),
		bias:        biases.Clone(),
	}, nil
}

func (c *Conv2d) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out, cache, err := tensor.Conv2D(input, c.weight, c.bias, c.params)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache = cache
	c.mu.Unlock()
	return out, nil
}

// Cache returns the cache of the most recent successful Forward, or nil.
func (c *Conv2d) Cache() *tensor.ConvCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache
}

func (c *Conv2d) Weight() *tensor.Tensor {
	return c.weight.Clone()
}

func (c *Conv2d) Bias() *tensor.Tensor {
	return c.bias.Clone()
}

func (c *Conv2d) Params() tensor.ConvParams {
	return c.params
}

func (c *Conv2d) InChannels() int  { return c.inChannels }
func (c *Conv2d) OutChannels() int { return c.outChannels }

func (c *Conv2d) String() string {
	return fmt.Sprintf("Conv2d(%d->%d, f=%d, %v)", c.inChannels, c.outChannels, c.kernel, c.params)
}
