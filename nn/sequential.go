package nn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fumitoshi0524/convforward/tensor"
)

type Sequential struct {
	modules []Module
}

func NewSequential(mods ...Module) *Sequential {
	copyMods := make([]Module, len(mods))
	copy(copyMods, mods)
	return &Sequential{modules: copyMods}
}

// Forward feeds input through every stage in order. A failing stage is reported
// by index; the underlying error stays reachable through errors.Is.
func (s *Sequential) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	if len(s.modules) == 0 {
		return nil, errors.New("Sequential has no stages")
	}
	var err error
	out := input
	for idx, m := range s.modules {
		if m == nil {
			return nil, fmt.Errorf("stage %d is nil", idx)
		}
		out, err = m.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", idx, Describe(m), err)
		}
	}
	return out, nil
}

func (s *Sequential) Len() int {
	return len(s.modules)
}

// Stage returns the module at position idx.
func (s *Sequential) Stage(idx int) Module {
	return s.modules[idx]
}

func (s *Sequential) String() string {
	names := make([]string, len(s.modules))
	for i, m := range s.modules {
		names[i] = Describe(m)
	}
	return "Sequential(" + strings.Join(names, " -> ") + ")"
}
