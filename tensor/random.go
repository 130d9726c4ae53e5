package tensor

import (
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rand draws standard-normal tensors from a seeded source. The same seed always
// yields the same sequence of tensors. It is safe for concurrent use.
type Rand struct {
	mu   sync.Mutex
	dist distuv.Normal
}

func NewRand(seed uint64) *Rand {
	return &Rand{dist: distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}}
}

func (r *Rand) Randn(shape ...int) *Tensor {
	data := make([]float64, numel(shape))
	r.mu.Lock()
	for i := range data {
		data[i] = r.dist.Rand()
	}
	r.mu.Unlock()
	return MustNew(data, shape...)
}
