package tensor

import (
	"fmt"

	"github.com/fumitoshi0524/convforward/internal/parallel"
	"gonum.org/v1/gonum/floats"
)

// ConvParams holds the convolution hyperparameters.
type ConvParams struct {
	Stride int
	Pad    int
}

func (p ConvParams) String() string {
	return fmt.Sprintf("stride=%d pad=%d", p.Stride, p.Pad)
}

// ConvCache bundles the inputs of a Conv2D call for a later backward pass.
// The tensors are private copies; accessors return further copies.
type ConvCache struct {
	input   *Tensor
	weights *Tensor
	biases  *Tensor
	params  ConvParams
}

// Input returns the unpadded input batch.
func (c *ConvCache) Input() *Tensor { return c.input.Clone() }

func (c *ConvCache) Weights() *Tensor { return c.weights.Clone() }

func (c *ConvCache) Biases() *Tensor { return c.biases.Clone() }

func (c *ConvCache) Params() ConvParams { return c.params }

// ConvSingleStep applies one filter to one patch: the sum of their elementwise
// product plus bias. Patch and filter must have the same shape.
func ConvSingleStep(patch, filter *Tensor, bias float64) (float64, error) {
	if err := ensureSameShape(patch, filter); err != nil {
		return 0, fmt.Errorf("ConvSingleStep: patch and filter: %w", err)
	}
	return singleStep(patch.data, filter.data, bias, make([]float64, len(patch.data))), nil
}

// singleStep uses scratch (same length as patch) for the product.
func singleStep(patch, filter []float64, bias float64, scratch []float64) float64 {
	floats.MulTo(scratch, patch, filter)
	return floats.Sum(scratch) + bias
}

// Conv2D runs a convolution forward pass over an NHWC batch.
// Input shape: [batch, in_h, in_w, in_channels]
// Weight shape: [f, f, in_channels, out_channels]
// Bias shape: [1, 1, 1, out_channels]
// Output shape: [batch, out_h, out_w, out_channels]
func Conv2D(input, weights, biases *Tensor, p ConvParams) (*Tensor, *ConvCache, error) {
	batch, inH, inW, inChannels, err := input.Dims4()
	if err != nil {
		return nil, nil, fmt.Errorf("Conv2D input: %w", err)
	}
	f, fw, kernelChannels, outChannels, err := weights.Dims4()
	if err != nil {
		return nil, nil, fmt.Errorf("Conv2D weights: %w", err)
	}
	if f != fw {
		return nil, nil, fmt.Errorf("Conv2D expects square filters, got %dx%d: %w", f, fw, ErrShapeMismatch)
	}
	if kernelChannels != inChannels {
		return nil, nil, fmt.Errorf("Conv2D filter in_channels %d != input channels %d: %w",
			kernelChannels, inChannels, ErrShapeMismatch)
	}
	if biases == nil || !equalShapes(biases.shape, []int{1, 1, 1, outChannels}) {
		var got []int
		if biases != nil {
			got = biases.shape
		}
		return nil, nil, fmt.Errorf("Conv2D bias shape %v, want [1 1 1 %d]: %w", got, outChannels, ErrShapeMismatch)
	}

	outH, outW, err := outputDims(inH, inW, f, p.Stride, p.Pad)
	if err != nil {
		return nil, nil, fmt.Errorf("Conv2D %v: %w", p, err)
	}

	out := Zeros(batch, outH, outW, outChannels)
	padded, err := ZeroPad(input, p.Pad)
	if err != nil {
		return nil, nil, fmt.Errorf("Conv2D: %w", err)
	}
	padH := inH + 2*p.Pad
	padW := inW + 2*p.Pad

	filters := make([][]float64, outChannels)
	for c := range filters {
		slice, err := FilterSlice(weights, c)
		if err != nil {
			return nil, nil, fmt.Errorf("Conv2D: %w", err)
		}
		filters[c] = slice.data
	}

	patchLen := f * f * inChannels
	parallel.For(batch*outH, func(start, end int) {
		patch := make([]float64, patchLen)
		scratch := make([]float64, patchLen)
		for row := start; row < end; row++ {
			n := row / outH
			h := row % outH
			top := p.Stride * h
			for w := 0; w < outW; w++ {
				left := p.Stride * w
				copyWindow(patch, padded.data, padH, padW, inChannels, n, top, left, f)
				base := ((n*outH+h)*outW + w) * outChannels
				for c := 0; c < outChannels; c++ {
					out.data[base+c] = singleStep(patch, filters[c], biases.data[c], scratch)
				}
			}
		}
	})

	cache := &ConvCache{
		input:   input.Clone(),
		weights: weights.Clone(),
		biases:  biases.Clone(),
		params:  p,
	}
	return out, cache, nil
}
