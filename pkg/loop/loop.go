// Package loop runs tasks and animation frames on a single goroutine.
//
// Everything that touches a dom.Document runs on the loop: posted tasks,
// frame callbacks, and the continuations of background work started with Go.
//
//	l := loop.New()
//	l.Go(func() func() {
//	    quotes, err := client.List(ctx) // off the loop
//	    return func() { render(quotes, err) } // back on the loop
//	})
//	l.Run(ctx)
package loop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultQueueSize     = 256
	DefaultFrameInterval = 16 * time.Millisecond
)

// Loop is a single goroutine task queue with frame callbacks.
type Loop struct {
	tasks         chan func()
	frameInterval time.Duration
	logger        *slog.Logger

	frameMu sync.Mutex
	frames  []func()

	pending atomic.Int64
	wake    chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// WithFrameInterval sets the time between frames in Run.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a loop. It does nothing until Run, Flush or Tick is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:         make(chan func(), DefaultQueueSize),
		frameInterval: DefaultFrameInterval,
		logger:        slog.Default().With("component", "loop"),
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn to run on the loop. It never blocks: when the queue is
// full, fn is discarded with a warning.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.tasks <- fn:
	default:
		l.logger.Warn("task queue full, discarding callback")
	}
}

// RequestFrame schedules fn for the next frame. Callbacks requested while a
// frame runs wait for the following one.
func (l *Loop) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	l.frameMu.Lock()
	l.frames = append(l.frames, fn)
	l.frameMu.Unlock()
}

// PendingFrames returns the number of callbacks waiting for the next frame.
func (l *Loop) PendingFrames() int {
	l.frameMu.Lock()
	defer l.frameMu.Unlock()
	return len(l.frames)
}

// Go runs work on a new goroutine. A non-nil continuation returned by work
// is posted back to the loop.
func (l *Loop) Go(work func() func()) {
	l.pending.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("background work panic",
					"panic", r,
					"stack", string(debug.Stack()))
			}
			l.pending.Add(-1)
			l.signal()
		}()
		if cont := work(); cont != nil {
			l.Post(cont)
		}
	}()
}

// Run processes tasks and frames until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)

		case <-ticker.C:
			l.Tick()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Flush runs queued tasks until the queue is empty. Must be called from the
// loop goroutine.
func (l *Loop) Flush() {
	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)
		default:
			return
		}
	}
}

// Tick runs one frame: first the queued tasks, then every frame callback
// requested before the frame started.
func (l *Loop) Tick() {
	l.Flush()

	l.frameMu.Lock()
	batch := l.frames
	l.frames = nil
	l.frameMu.Unlock()

	for _, fn := range batch {
		l.execute(fn)
	}
}

// Settle runs tasks until no background work is outstanding and the queue
// is empty. Frames are not run.
func (l *Loop) Settle(ctx context.Context) error {
	for {
		l.Flush()
		if l.pending.Load() == 0 && len(l.tasks) == 0 {
			return nil
		}
		select {
		case fn := <-l.tasks:
			l.execute(fn)
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// execute runs fn, recovering and logging a panic.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
