package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
)

var (
	// ErrNoRenderer is returned by Run when the engine was built without a renderer.
	ErrNoRenderer = errors.New("engine: no renderer")
	// ErrRunning is returned by Run when the engine is already running.
	ErrRunning = errors.New("engine: already running")
)

// idleWait is how long the render loop sleeps when no scene is active.
const idleWait = 10 * time.Millisecond

// ConfigSource supplies post-process configurations staged outside the
// render loop, such as reloads of a watched config file.
type ConfigSource interface {
	// Pending returns the newest staged configuration and clears it.
	//
	// Returns:
	//   - postprocess.Config: the staged configuration
	//   - bool: false when nothing is staged
	Pending() (postprocess.Config, bool)
}

// FrameCallback receives every frame attempt. Exactly one of res and err is non-nil.
type FrameCallback func(res *renderer.FrameResult, err error)

// quitSignal is closed once to stop a single Run.
type quitSignal struct {
	ch   chan struct{}
	once sync.Once
}

// engine implements the Engine interface.
// Coordinates the tick goroutine and the render loop.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quit atomic.Pointer[quitSignal] // replaced by every Run

	renderer renderer.Renderer
	source   ConfigSource
	logger   log.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  FrameCallback

	scenesMu *sync.RWMutex
	scenes   map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64        // 0 = unbounded
	stopOnError      bool
	frames           atomic.Uint64
}

// Engine drives a renderer.Renderer with frames built from registered scenes.
// There is no window: Run renders until its context ends, Quit is called or
// the frame limit is reached.
type Engine interface {
	// Renderer returns the renderer frames are submitted to.
	Renderer() renderer.Renderer

	// Profiler returns the engine's frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for scene updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for animation and other scene updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called after each frame attempt.
	//
	// Parameters:
	//   - callback: receives the frame result or the frame's error
	SetFrameCallback(callback FrameCallback)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given key.
	// The active scene with the lowest key is rendered each frame.
	//
	// Parameters:
	//   - key: the scene's priority (lower wins)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by priority.
	Scenes() map[int]scene.Scene

	// Frames returns the number of frames attempted so far.
	Frames() uint64

	// Run renders frames until ctx is done, Quit is called or the frame
	// limit is reached. It blocks until the tick goroutine has exited.
	// The engine can be run again once Run returns; the frame limit counts
	// frames per run while frame indices keep increasing.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	//
	// Returns:
	//   - error: nil on an orderly stop; ErrNoRenderer, ErrRunning,
	//     renderer.ErrClosed, or the first frame error with WithStopOnError
	Run(ctx context.Context) error

	// Quit signals the current Run to stop.
	// Safe to call multiple times; calls outside Run are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (renderer, scenes, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		logger:          log.New("engine"),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		scenesMu:        &sync.RWMutex{},
		scenes:          make(map[int]scene.Scene),
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Run(ctx context.Context) error {
	if e.renderer == nil {
		return ErrNoRenderer
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	q := &quitSignal{ch: make(chan struct{})}
	e.quit.Store(q)

	e.wg.Add(2)
	go e.handleEngine(q.ch)
	go e.handleQuit(ctx, q.ch)

	err := e.handleRender(ctx, q.ch)
	e.signalQuit()
	e.wg.Wait()
	return err
}

// Quit signals all engine goroutines of the current run to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the current run's quit channel to signal all goroutines
// to exit. Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	q := e.quit.Load()
	if q == nil {
		return
	}
	q.once.Do(func() {
		close(q.ch)
	})
}

func quitting(quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return false
	}
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine(quit <-chan struct{}) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit signals quit when ctx ends before the engine stops on its own.
func (e *engine) handleQuit(ctx context.Context, quit <-chan struct{}) {
	defer e.wg.Done()
	select {
	case <-ctx.Done():
		e.signalQuit()
	case <-quit:
	}
}

// handleRender runs the render loop on the calling goroutine.
// Each iteration applies any staged post-process config, snapshots the
// lowest-keyed active scene and submits it to the renderer.
// A panic inside a frame is recovered and returned as an error.
func (e *engine) handleRender(ctx context.Context, quit <-chan struct{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("render loop recovered from panic: %v", r)
			err = fmt.Errorf("engine: render loop panic: %v", r)
		}
	}()

	first := e.frames.Load()
	for !quitting(quit) {
		if e.maxFrames > 0 && e.frames.Load()-first >= e.maxFrames {
			return nil
		}
		frameStart := time.Now()

		e.applyPending()

		s := e.activeScene()
		if s == nil {
			select {
			case <-quit:
			case <-time.After(idleWait):
			}
			continue
		}

		index := e.frames.Add(1) - 1
		res, ferr := e.renderFrame(ctx, s, index)
		if ferr != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(ferr, renderer.ErrClosed) {
				return ferr
			}
			e.logger.Errorf("frame %d: %v", index, ferr)
			if e.frameCallback != nil {
				e.frameCallback(nil, ferr)
			}
			if e.stopOnError {
				return ferr
			}
		} else {
			e.record(res)
			if e.frameCallback != nil {
				e.frameCallback(res, nil)
			}
		}

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				select {
				case <-quit:
				case <-time.After(remaining):
				}
			}
		}
	}
	return nil
}

func (e *engine) renderFrame(ctx context.Context, s scene.Scene, index uint64) (*renderer.FrameResult, error) {
	f, err := s.Frame(index)
	if err != nil {
		return nil, err
	}
	return e.renderer.Frame(ctx, f)
}

// applyPending hands a staged configuration to the renderer. A rejected
// configuration leaves the current one in place.
func (e *engine) applyPending() {
	if e.source == nil {
		return
	}
	cfg, ok := e.source.Pending()
	if !ok {
		return
	}
	if err := e.renderer.SetPostProcessConfig(cfg); err != nil {
		e.logger.Warningf("post-process config rejected: %v", err)
		return
	}
	e.logger.Notice("post-process config applied")
}

func (e *engine) record(res *renderer.FrameResult) {
	for _, t := range res.Timings {
		e.profiler.Record(t.Pass, t.Duration)
	}
	e.profiler.Record("frame", res.Duration())
}

func (e *engine) activeScene() scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			return s
		}
	}
	return nil
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback FrameCallback) {
	e.frameCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
