package target

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultMaxTexels bounds the total texel count a Pool keeps resident.
const DefaultMaxTexels = 64 << 20

// Pool owns the intermediate targets of the pipeline. Targets are keyed by
// name and reused across frames until their size or format changes.
type Pool struct {
	mu        sync.Mutex
	targets   map[string]*Target
	maxTexels int
	texels    int
	created   int
}

// NewPool creates an empty pool.
//
// Parameters:
//   - maxTexels: upper bound on resident texels; <= 0 selects DefaultMaxTexels
//
// Returns:
//   - *Pool: the pool
func NewPool(maxTexels int) *Pool {
	if maxTexels <= 0 {
		maxTexels = DefaultMaxTexels
	}
	return &Pool{targets: make(map[string]*Target), maxTexels: maxTexels}
}

// Acquire returns the named target, recreating it when its size or format
// changed. Contents are not cleared.
//
// Parameters:
//   - name: stable key, one per logical target
//   - width, height: required dimensions
//   - format: required format
//
// Returns:
//   - *Target: the resident target
//   - error: ErrInvalidSize, ErrUnsupportedFormat, or ErrAllocation when the
//     pool would exceed its texel budget
func (p *Pool) Acquire(name string, width, height int, format wgpu.TextureFormat) (*Target, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.targets[name]; ok {
		if t.width == width && t.height == height && t.format == format {
			return t, nil
		}
		p.texels -= t.width * t.height
		delete(p.targets, name)
	}

	if width > 0 && height > 0 && p.texels+width*height > p.maxTexels {
		return nil, fmt.Errorf("%w: %s needs %dx%d, %d of %d texels resident",
			ErrAllocation, name, width, height, p.texels, p.maxTexels)
	}
	t, err := New(name, width, height, format)
	if err != nil {
		return nil, err
	}
	p.targets[name] = t
	p.texels += width * height
	p.created++
	return t, nil
}

// Release drops the named target.
func (p *Pool) Release(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.targets[name]; ok {
		p.texels -= t.width * t.height
		delete(p.targets, name)
	}
}

// Get returns a resident target without creating it.
func (p *Pool) Get(name string) (*Target, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.targets[name]
	return t, ok
}

// PoolStats describes pool residency.
type PoolStats struct {
	Targets int
	Bytes   int
	Created int
	Names   []string
}

// Stats returns a snapshot of the pool's residency.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PoolStats{Targets: len(p.targets), Created: p.created}
	for name, t := range p.targets {
		s.Bytes += t.Bytes()
		s.Names = append(s.Names, name)
	}
	sort.Strings(s.Names)
	return s
}
