package tensor

import "fmt"

// ZeroPad surrounds every image of an NHWC batch with pad zero-valued rows and columns.
// Batch and channel axes are left as they are. A negative pad fails with ErrInvalidGeometry.
func ZeroPad(x *Tensor, pad int) (*Tensor, error) {
	batch, inH, inW, channels, err := x.Dims4()
	if err != nil {
		return nil, fmt.Errorf("ZeroPad: %w", err)
	}
	if pad < 0 {
		return nil, fmt.Errorf("ZeroPad: pad %d must not be negative: %w", pad, ErrInvalidGeometry)
	}
	if pad == 0 {
		return x.Clone(), nil
	}
	outH := inH + 2*pad
	outW := inW + 2*pad
	out := Zeros(batch, outH, outW, channels)
	rowLen := inW * channels
	for n := 0; n < batch; n++ {
		for h := 0; h < inH; h++ {
			src := ((n*inH + h) * inW) * channels
			dst := ((n*outH+h+pad)*outW + pad) * channels
			copy(out.data[dst:dst+rowLen], x.data[src:src+rowLen])
		}
	}
	return out, nil
}
