package shadow

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
)

// ShadowMap holds one depth target per cascade.
type ShadowMap struct {
	targets []*target.Target
}

// NewShadowMap acquires one depth target per cascade from the pool and clears
// each to the far plane.
//
// Parameters:
//   - pool: the pipeline target pool
//   - set: the cascades to allocate for
//
// Returns:
//   - *ShadowMap: the cleared maps
//   - error: target.ErrAllocation when a map cannot be allocated
func NewShadowMap(pool *target.Pool, set CascadeSet) (*ShadowMap, error) {
	m := &ShadowMap{targets: make([]*target.Target, set.Len())}
	for k, c := range set.Cascades {
		t, err := pool.Acquire(fmt.Sprintf("shadow.cascade%d", k), c.Resolution, c.Resolution, target.FormatDepth)
		if err != nil {
			return nil, fmt.Errorf("shadow map %d: %w", k, err)
		}
		t.Writer().Clear(common.Vec4{1, 1, 1, 1})
		m.targets[k] = t
	}
	return m, nil
}

// Len returns the number of cascades.
func (m *ShadowMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.targets)
}

// Cascade returns a read handle to cascade k's depth, or an invalid reader
// when k is out of range.
func (m *ShadowMap) Cascade(k int) target.Reader {
	if m == nil || k < 0 || k >= len(m.targets) {
		return target.Reader{}
	}
	return m.targets[k].Reader()
}

func (m *ShadowMap) writer(k int) target.Writer {
	return m.targets[k].Writer()
}
