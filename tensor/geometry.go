package tensor

import "fmt"

// OutputSize returns the number of window positions along one spatial axis:
//
//	floor((in + 2*pad - f) / stride) + 1
//
// It fails with ErrInvalidGeometry instead of returning a non-positive size.
func OutputSize(in, f, stride, pad int) (int, error) {
	if f <= 0 {
		return 0, fmt.Errorf("filter size %d must be positive: %w", f, ErrInvalidGeometry)
	}
	if stride <= 0 {
		return 0, fmt.Errorf("stride %d must be positive: %w", stride, ErrInvalidGeometry)
	}
	if pad < 0 {
		return 0, fmt.Errorf("pad %d must not be negative: %w", pad, ErrInvalidGeometry)
	}
	span := in + 2*pad - f
	if span < 0 {
		return 0, fmt.Errorf("filter %d exceeds padded input %d: %w", f, in+2*pad, ErrInvalidGeometry)
	}
	return span/stride + 1, nil
}

// outputDims applies OutputSize to both spatial axes. Width comes from the input width.
func outputDims(inH, inW, f, stride, pad int) (int, int, error) {
	outH, err := OutputSize(inH, f, stride, pad)
	if err != nil {
		return 0, 0, fmt.Errorf("output height: %w", err)
	}
	outW, err := OutputSize(inW, f, stride, pad)
	if err != nil {
		return 0, 0, fmt.Errorf("output width: %w", err)
	}
	return outH, outW, nil
}
