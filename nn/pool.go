package nn

import (
	"fmt"
	"sync"

	"github.com/fumitoshi0524/convforward/tensor"
)

type Pool2d struct {
	params tensor.PoolParams
	mode   tensor.PoolMode

	mu    sync.Mutex
	cache *tensor.PoolCache
}

func NewPool2d(p tensor.PoolParams, mode tensor.PoolMode) (*Pool2d, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("NewPool2d: %v: %w", mode, tensor.ErrInvalidMode)
	}
	if p.F <= 0 || p.Stride <= 0 {
		return nil, fmt.Errorf("NewPool2d %v: window and stride must be positive: %w", p, tensor.ErrInvalidGeometry)
	}
	return &Pool2d{params: p, mode: mode}, nil
}

// NewMaxPool2d is NewPool2d with PoolMax. A non-positive stride defaults to f.
func NewMaxPool2d(f, stride int) (*Pool2d, error) {
	if stride <= 0 {
		stride = f
	}
	return NewPool2d(tensor.PoolParams{F: f, Stride: stride}, tensor.PoolMax)
}

// NewAvgPool2d is NewPool2d with PoolAverage. A non-positive stride defaults to f.
func NewAvgPool2d(f, stride int) (*Pool2d, error) {
	if stride <= 0 {
		stride = f
	}
	return NewPool2d(tensor.PoolParams{F: f, Stride: stride}, tensor.PoolAverage)
}

func (p *Pool2d) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out, cache, err := tensor.Pool2D(input, p.params, p.mode)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.cache = cache
	p.mu.Unlock()
	return out, nil
}

// Cache returns the cache of the most recent successful Forward, or nil.
func (p *Pool2d) Cache() *tensor.PoolCache {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache
}

func (p *Pool2d) Params() tensor.PoolParams { return p.params }

func (p *Pool2d) Mode() tensor.PoolMode { return p.mode }

func (p *Pool2d) String() string {
	return fmt.Sprintf("Pool2d(%v, %v)", p.mode, p.params)
}
