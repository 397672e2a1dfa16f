// Package dispatch runs data-parallel render kernels over the shared worker pool.
package dispatch

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Dispatcher splits per-row and per-item kernels into bands and runs them on
// a reusable worker pool. Every call blocks until all of its bands finished,
// which gives each render pass a barrier at its end.
//
// Kernels must not call back into the same Dispatcher; nested submission
// would wait on the workers it occupies.
type Dispatcher interface {
	// Rows invokes fn over [0, height) split into contiguous row bands.
	//
	// Parameters:
	//   - height: number of rows to cover
	//   - fn: kernel receiving the half-open band [y0, y1)
	Rows(height int, fn func(y0, y1 int))

	// Each invokes fn once per index in [0, n), grouped into bands.
	//
	// Parameters:
	//   - n: number of items
	//   - fn: kernel receiving one item index
	Each(n int, fn func(i int))

	// Workers returns the number of pool workers.
	//
	// Returns:
	//   - int: the worker count
	Workers() int

	// Close stops the worker pool. Further calls run inline on the caller.
	Close()
}

type dispatcherImpl struct {
	mu       sync.Mutex
	pool     worker.DynamicWorkerPool
	workers  int
	queue    int
	minRows  int
	taskID   int
	closed   bool
	closeOne sync.Once
}

var _ Dispatcher = &dispatcherImpl{}

// NewDispatcher creates a Dispatcher backed by a dynamic worker pool.
//
// Parameters:
//   - options: DispatcherBuilderOption values; defaults to one worker per CPU
//
// Returns:
//   - Dispatcher: the ready dispatcher
func NewDispatcher(options ...DispatcherBuilderOption) Dispatcher {
	d := &dispatcherImpl{
		workers: runtime.NumCPU(),
		queue:   256,
		minRows: 8,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	if d.minRows < 1 {
		d.minRows = 1
	}
	if d.workers > 1 {
		d.pool = worker.NewDynamicWorkerPool(d.workers, d.queue, time.Second)
	}
	return d
}

func (d *dispatcherImpl) Workers() int {
	return d.workers
}

func (d *dispatcherImpl) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	bands := d.bandCount(height)
	if bands <= 1 {
		fn(0, height)
		return
	}
	step := (height + bands - 1) / bands
	d.run(bands, func(b int) {
		y0 := b * step
		y1 := min(y0+step, height)
		if y0 < y1 {
			fn(y0, y1)
		}
	})
}

func (d *dispatcherImpl) Each(n int, fn func(i int)) {
	d.Rows(n, func(i0, i1 int) {
		for i := i0; i < i1; i++ {
			fn(i)
		}
	})
}

func (d *dispatcherImpl) Close() {
	d.closeOne.Do(func() {
		d.mu.Lock()
		d.closed = true
		pool := d.pool
		d.mu.Unlock()
		if pool != nil {
			pool.Stop()
		}
	})
}

// bandCount chooses how many bands to cut height rows into: a few per worker
// so uneven rows balance, but never bands thinner than minRows.
func (d *dispatcherImpl) bandCount(height int) int {
	d.mu.Lock()
	inline := d.pool == nil || d.closed
	d.mu.Unlock()
	if inline {
		return 1
	}
	bands := d.workers * 4
	if maxBands := height / d.minRows; bands > maxBands {
		bands = maxBands
	}
	return max(bands, 1)
}

// run submits n tasks and blocks on a WaitGroup barrier. pool.Wait is not used
// because it also waits on work submitted by other passes.
func (d *dispatcherImpl) run(n int, fn func(b int)) {
	var wg sync.WaitGroup
	var panicMu sync.Mutex
	var panicVal any

	d.mu.Lock()
	base := d.taskID
	d.taskID += n
	d.mu.Unlock()

	for b := 0; b < n; b++ {
		wg.Add(1)
		band := b
		d.pool.SubmitTask(worker.Task{
			ID: base + band,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						panicMu.Lock()
						if panicVal == nil {
							panicVal = r
						}
						panicMu.Unlock()
					}
				}()
				fn(band)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if panicVal != nil {
		panic(fmt.Sprintf("dispatch: kernel panicked: %v", panicVal))
	}
}
