package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveConv2DForward is a direct transcription of the convolution definition over
// NHWC input, used to check Conv2D.
func naiveConv2DForward(x, w, b *Tensor, stride, pad int) *Tensor {
	batch, inH, inW, inC := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	f, outC := w.shape[0], w.shape[3]
	outH := (inH+2*pad-f)/stride + 1
	outW := (inW+2*pad-f)/stride + 1
	out := Zeros(batch, outH, outW, outC)
	for n := 0; n < batch; n++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				for oc := 0; oc < outC; oc++ {
					acc := 0.0
					for kh := 0; kh < f; kh++ {
						ih := oh*stride - pad + kh
						if ih < 0 || ih >= inH {
							continue
						}
						for kw := 0; kw < f; kw++ {
							iw := ow*stride - pad + kw
							if iw < 0 || iw >= inW {
								continue
							}
							for ic := 0; ic < inC; ic++ {
								acc += x.At(n, ih, iw, ic) * w.At(kh, kw, ic, oc)
							}
						}
					}
					out.Set(acc+b.At(0, 0, 0, oc), n, oh, ow, oc)
				}
			}
		}
	}
	return out
}

func arange(shape ...int) *Tensor {
	data := make([]float64, numel(shape))
	for i := range data {
		data[i] = float64(i + 1)
	}
	return MustNew(data, shape...)
}

func TestConvSingleStep(t *testing.T) {
	patch := MustNew([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 2, 2, 2)
	filter := MustNew([]float64{1, 0, -1, 0, 0.5, 0.5, 2, -2}, 2, 2, 2)

	got, err := ConvSingleStep(patch, filter, 0.25)
	require.NoError(t, err)
	// 1 - 3 + 2.5 + 3 + 14 - 16 + 0.25
	assert.InDelta(t, 1.75, got, 1e-12)
}

func TestConvSingleStepZeroFilterYieldsBias(t *testing.T) {
	rng := NewRand(3)
	for _, bias := range []float64{0, -1.5, 42, 1e-9} {
		patch := rng.Randn(3, 3, 4)
		got, err := ConvSingleStep(patch, Zeros(3, 3, 4), bias)
		require.NoError(t, err)
		assert.Equal(t, bias, got)
	}
}

func TestConvSingleStepShapeMismatch(t *testing.T) {
	_, err := ConvSingleStep(Ones(2, 2, 3), Ones(2, 2, 2), 0)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = ConvSingleStep(Ones(4), Ones(2, 2), 0)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestConv2DKnownValues(t *testing.T) {
	input := arange(1, 3, 3, 1)
	weights := Ones(2, 2, 1, 1)
	biases := Full(0.5, 1, 1, 1, 1)

	out, _, err := Conv2D(input, weights, biases, ConvParams{Stride: 1, Pad: 0})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float64{12.5, 16.5, 24.5, 28.5}, out.Data())
}

func TestConv2DPaddedStrided(t *testing.T) {
	input := arange(1, 3, 3, 1)
	weights := Ones(3, 3, 1, 1)
	biases := Zeros(1, 1, 1, 1)

	out, _, err := Conv2D(input, weights, biases, ConvParams{Stride: 2, Pad: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float64{12, 16, 24, 28}, out.Data())
}

func TestConv2DEndToEndScenario(t *testing.T) {
	rng := NewRand(1)
	input := rng.Randn(2, 4, 4, 3)
	weights := rng.Randn(2, 2, 3, 1)
	biases := rng.Randn(1, 1, 1, 1)

	out, cache, err := Conv2D(input, weights, biases, ConvParams{Stride: 1, Pad: 0})
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 3, 1}, out.Shape())

	// out[1, 2, 0, 0] from the definition: window rows 2..3, cols 0..1, all channels.
	want := biases.At(0, 0, 0, 0)
	for kh := 0; kh < 2; kh++ {
		for kw := 0; kw < 2; kw++ {
			for ic := 0; ic < 3; ic++ {
				want += input.At(1, 2+kh, kw, ic) * weights.At(kh, kw, ic, 0)
			}
		}
	}
	assert.InDelta(t, want, out.At(1, 2, 0, 0), 1e-12)

	require.NotNil(t, cache)
	assert.True(t, Equal(input, cache.Input()))
	assert.True(t, Equal(weights, cache.Weights()))
	assert.True(t, Equal(biases, cache.Biases()))
	assert.Equal(t, ConvParams{Stride: 1, Pad: 0}, cache.Params())
}

func TestConv2DMatchesNaive(t *testing.T) {
	rng := NewRand(7)
	cases := []struct {
		name        string
		inShape     []int
		f, cout     int
		stride, pad int
		outH, outW  int
	}{
		{"unit stride", []int{2, 5, 5, 3}, 3, 2, 1, 0, 3, 3},
		{"stride 2 pad 1", []int{1, 7, 7, 1}, 3, 4, 2, 1, 4, 4},
		{"non-square input", []int{3, 7, 6, 2}, 3, 4, 2, 1, 4, 3},
		{"1x1 filter", []int{2, 4, 3, 5}, 1, 3, 1, 0, 4, 3},
		{"pad wider than filter", []int{1, 2, 2, 1}, 2, 1, 1, 3, 7, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := rng.Randn(tc.inShape...)
			weights := rng.Randn(tc.f, tc.f, tc.inShape[3], tc.cout)
			biases := rng.Randn(1, 1, 1, tc.cout)
			params := ConvParams{Stride: tc.stride, Pad: tc.pad}

			out, _, err := Conv2D(input, weights, biases, params)
			require.NoError(t, err)
			assert.Equal(t, []int{tc.inShape[0], tc.outH, tc.outW, tc.cout}, out.Shape())

			want := naiveConv2DForward(input, weights, biases, tc.stride, tc.pad)
			assert.InDeltaSlice(t, want.Data(), out.Data(), 1e-9)
		})
	}
}

// The output width follows the input width, not the height.
func TestConv2DNonSquareUsesWidth(t *testing.T) {
	out, _, err := Conv2D(Ones(1, 3, 5, 1), Ones(2, 2, 1, 2), Zeros(1, 1, 1, 2), ConvParams{Stride: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4, 2}, out.Shape())
	for _, v := range out.Data() {
		assert.Equal(t, 4.0, v)
	}
}

func TestConv2DChannelContract(t *testing.T) {
	for _, cout := range []int{1, 2, 5} {
		out, _, err := Conv2D(Ones(1, 4, 4, 3), Ones(2, 2, 3, cout), Zeros(1, 1, 1, cout), ConvParams{Stride: 1})
		require.NoError(t, err)
		assert.Equal(t, cout, out.Shape()[3])
	}
}

func TestConv2DDeterministic(t *testing.T) {
	rng := NewRand(11)
	input := rng.Randn(4, 9, 9, 3)
	weights := rng.Randn(3, 3, 3, 8)
	biases := rng.Randn(1, 1, 1, 8)
	params := ConvParams{Stride: 2, Pad: 1}

	first, _, err := Conv2D(input, weights, biases, params)
	require.NoError(t, err)
	second, _, err := Conv2D(input, weights, biases, params)
	require.NoError(t, err)
	assert.True(t, Equal(first, second), "repeated Conv2D calls differ")
}

func TestConv2DCacheHoldsUnpaddedCopy(t *testing.T) {
	input := arange(1, 3, 3, 1)
	original := input.Clone()

	_, cache, err := Conv2D(input, Ones(3, 3, 1, 1), Zeros(1, 1, 1, 1), ConvParams{Stride: 1, Pad: 1})
	require.NoError(t, err)

	require.NoError(t, input.SetData(make([]float64, 9)))
	cached := cache.Input()
	assert.Equal(t, []int{1, 3, 3, 1}, cached.Shape())
	assert.True(t, Equal(original, cached))
}

func TestConv2DDoesNotMutateInputs(t *testing.T) {
	rng := NewRand(5)
	input := rng.Randn(1, 4, 4, 2)
	weights := rng.Randn(2, 2, 2, 3)
	biases := rng.Randn(1, 1, 1, 3)
	in, w, b := input.Clone(), weights.Clone(), biases.Clone()

	_, _, err := Conv2D(input, weights, biases, ConvParams{Stride: 1, Pad: 2})
	require.NoError(t, err)
	assert.True(t, Equal(in, input))
	assert.True(t, Equal(w, weights))
	assert.True(t, Equal(b, biases))
}

func TestConv2DErrors(t *testing.T) {
	valid := ConvParams{Stride: 1, Pad: 0}
	cases := []struct {
		name    string
		input   *Tensor
		weights *Tensor
		biases  *Tensor
		params  ConvParams
		want    error
	}{
		{"rank-3 input", Ones(4, 4, 3), Ones(2, 2, 3, 1), Zeros(1, 1, 1, 1), valid, ErrShapeMismatch},
		{"rank-3 weights", Ones(1, 4, 4, 3), Ones(2, 2, 3), Zeros(1, 1, 1, 1), valid, ErrShapeMismatch},
		{"channel mismatch", Ones(1, 4, 4, 3), Ones(2, 2, 2, 1), Zeros(1, 1, 1, 1), valid, ErrShapeMismatch},
		{"non-square filter", Ones(1, 4, 4, 1), Ones(2, 3, 1, 1), Zeros(1, 1, 1, 1), valid, ErrShapeMismatch},
		{"bias channels", Ones(1, 4, 4, 1), Ones(2, 2, 1, 2), Zeros(1, 1, 1, 1), valid, ErrShapeMismatch},
		{"flat bias", Ones(1, 4, 4, 1), Ones(2, 2, 1, 2), Zeros(2), valid, ErrShapeMismatch},
		{"nil bias", Ones(1, 4, 4, 1), Ones(2, 2, 1, 2), nil, valid, ErrShapeMismatch},
		{"filter exceeds input", Ones(1, 2, 2, 1), Ones(3, 3, 1, 1), Zeros(1, 1, 1, 1), valid, ErrInvalidGeometry},
		{"zero stride", Ones(1, 4, 4, 1), Ones(2, 2, 1, 1), Zeros(1, 1, 1, 1), ConvParams{Stride: 0}, ErrInvalidGeometry},
		{"negative pad", Ones(1, 4, 4, 1), Ones(2, 2, 1, 1), Zeros(1, 1, 1, 1), ConvParams{Stride: 1, Pad: -1}, ErrInvalidGeometry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, cache, err := Conv2D(tc.input, tc.weights, tc.biases, tc.params)
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, out)
			assert.Nil(t, cache)
		})
	}
}
