package tensor

import (
	"fmt"
	"strings"

	"github.com/fumitoshi0524/convforward/internal/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PoolMode selects the reduction applied to each pooling window.
type PoolMode int

const (
	PoolMax PoolMode = iota
	PoolAverage
)

func (m PoolMode) Valid() bool {
	return m == PoolMax || m == PoolAverage
}

func (m PoolMode) String() string {
	switch m {
	case PoolMax:
		return "max"
	case PoolAverage:
		return "average"
	default:
		return fmt.Sprintf("PoolMode(%d)", int(m))
	}
}

// ParsePoolMode maps "max" and "average" (or "avg") to a PoolMode.
func ParsePoolMode(s string) (PoolMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max":
		return PoolMax, nil
	case "average", "avg":
		return PoolAverage, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidMode)
	}
}

// PoolParams holds the pooling hyperparameters. Pooling never pads.
type PoolParams struct {
	F      int
	Stride int
}

func (p PoolParams) String() string {
	return fmt.Sprintf("f=%d stride=%d", p.F, p.Stride)
}

// PoolCache bundles the inputs of a Pool2D call for a later backward pass.
type PoolCache struct {
	input  *Tensor
	params PoolParams
	mode   PoolMode
}

func (c *PoolCache) Input() *Tensor { return c.input.Clone() }

func (c *PoolCache) Params() PoolParams { return c.params }

func (c *PoolCache) Mode() PoolMode { return c.mode }

// Pool2D reduces every f×f window of every channel to its maximum or mean.
// Input shape: [batch, in_h, in_w, channels]
// Output shape: [batch, out_h, out_w, channels]
func Pool2D(input *Tensor, p PoolParams, mode PoolMode) (*Tensor, *PoolCache, error) {
	batch, inH, inW, channels, err := input.Dims4()
	if err != nil {
		return nil, nil, fmt.Errorf("Pool2D input: %w", err)
	}
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("Pool2D: %v: %w", mode, ErrInvalidMode)
	}
	outH, outW, err := outputDims(inH, inW, p.F, p.Stride, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("Pool2D %v: %w", p, err)
	}

	reduce := floats.Max
	if mode == PoolAverage {
		reduce = func(window []float64) float64 { return stat.Mean(window, nil) }
	}

	f := p.F
	out := Zeros(batch, outH, outW, channels)
	parallel.For(batch*outH, func(start, end int) {
		window := make([]float64, f*f)
		for row := start; row < end; row++ {
			n := row / outH
			h := row % outH
			top := p.Stride * h
			for w := 0; w < outW; w++ {
				left := p.Stride * w
				base := ((n*outH+h)*outW + w) * channels
				for c := 0; c < channels; c++ {
					copyChannelWindow(window, input.data, inH, inW, channels, n, top, left, f, c)
					out.data[base+c] = reduce(window)
				}
			}
		}
	})

	cache := &PoolCache{
		input:  input.Clone(),
		params: p,
		mode:   mode,
	}
	return out, cache, nil
}
