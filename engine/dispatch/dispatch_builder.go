package dispatch

// DispatcherBuilderOption configures a Dispatcher during construction.
type DispatcherBuilderOption func(*dispatcherImpl)

// WithWorkers sets the worker count. A value of 1 runs every kernel inline.
//
// Parameters:
//   - n: number of workers
//
// Returns:
//   - DispatcherBuilderOption: the option
func WithWorkers(n int) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		d.workers = n
	}
}

// WithQueueSize sets the pool's task queue capacity.
//
// Parameters:
//   - n: queue capacity
//
// Returns:
//   - DispatcherBuilderOption: the option
func WithQueueSize(n int) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		if n > 0 {
			d.queue = n
		}
	}
}

// WithMinBandRows sets the thinnest band a kernel is split into.
//
// Parameters:
//   - rows: minimum rows per band
//
// Returns:
//   - DispatcherBuilderOption: the option
func WithMinBandRows(rows int) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		d.minRows = rows
	}
}
