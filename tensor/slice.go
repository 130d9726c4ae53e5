package tensor

import "fmt"

// Window copies the f×f receptive field of image n whose top-left corner is (top, left),
// across all channels. The result has shape [f, f, channels].
func Window(x *Tensor, n, top, left, f int) (*Tensor, error) {
	batch, inH, inW, channels, err := x.Dims4()
	if err != nil {
		return nil, fmt.Errorf("Window: %w", err)
	}
	if err := checkWindow(batch, inH, inW, n, top, left, f); err != nil {
		return nil, fmt.Errorf("Window: %w", err)
	}
	out := &Tensor{
		data:    make([]float64, f*f*channels),
		shape:   []int{f, f, channels},
		strides: makeStrides([]int{f, f, channels}),
	}
	copyWindow(out.data, x.data, inH, inW, channels, n, top, left, f)
	return out, nil
}

// ChannelWindow copies the f×f receptive field of image n for a single channel c.
// The result has shape [f, f].
func ChannelWindow(x *Tensor, n, top, left, f, c int) (*Tensor, error) {
	batch, inH, inW, channels, err := x.Dims4()
	if err != nil {
		return nil, fmt.Errorf("ChannelWindow: %w", err)
	}
	if err := checkWindow(batch, inH, inW, n, top, left, f); err != nil {
		return nil, fmt.Errorf("ChannelWindow: %w", err)
	}
	if c < 0 || c >= channels {
		return nil, fmt.Errorf("ChannelWindow: channel %d out of range [0,%d): %w", c, channels, ErrShapeMismatch)
	}
	out := &Tensor{
		data:    make([]float64, f*f),
		shape:   []int{f, f},
		strides: makeStrides([]int{f, f}),
	}
	copyChannelWindow(out.data, x.data, inH, inW, channels, n, top, left, f, c)
	return out, nil
}

// FilterSlice extracts the [f, f, in_channels] filter of output channel c from weights
// shaped [f, f, in_channels, out_channels].
func FilterSlice(weights *Tensor, c int) (*Tensor, error) {
	kh, kw, inC, outC, err := weights.Dims4()
	if err != nil {
		return nil, fmt.Errorf("FilterSlice: %w", err)
	}
	if c < 0 || c >= outC {
		return nil, fmt.Errorf("FilterSlice: output channel %d out of range [0,%d): %w", c, outC, ErrShapeMismatch)
	}
	out := &Tensor{
		data:    make([]float64, kh*kw*inC),
		shape:   []int{kh, kw, inC},
		strides: makeStrides([]int{kh, kw, inC}),
	}
	for i := range out.data {
		out.data[i] = weights.data[i*outC+c]
	}
	return out, nil
}

func checkWindow(batch, inH, inW, n, top, left, f int) error {
	if n < 0 || n >= batch {
		return fmt.Errorf("image %d out of range [0,%d): %w", n, batch, ErrShapeMismatch)
	}
	if f <= 0 {
		return fmt.Errorf("window size %d must be positive: %w", f, ErrInvalidGeometry)
	}
	if top < 0 || left < 0 || top+f > inH || left+f > inW {
		return fmt.Errorf("window [%d:%d, %d:%d] outside %dx%d image: %w",
			top, top+f, left, left+f, inH, inW, ErrShapeMismatch)
	}
	return nil
}

// copyWindow fills dst (len f*f*channels) from an NHWC buffer. Bounds are the caller's responsibility.
func copyWindow(dst, src []float64, inH, inW, channels, n, top, left, f int) {
	rowLen := f * channels
	for kh := 0; kh < f; kh++ {
		start := ((n*inH+top+kh)*inW + left) * channels
		copy(dst[kh*rowLen:(kh+1)*rowLen], src[start:start+rowLen])
	}
}

func copyChannelWindow(dst, src []float64, inH, inW, channels, n, top, left, f, c int) {
	for kh := 0; kh < f; kh++ {
		rowBase := ((n*inH+top+kh)*inW + left) * channels
		for kw := 0; kw < f; kw++ {
			dst[kh*f+kw] = src[rowBase+kw*channels+c]
		}
	}
}
