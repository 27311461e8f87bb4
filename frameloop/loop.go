// Package frameloop drives a session's frame cycle with the wait on its own
// goroutine. The waiting goroutine never starts the wait for frame N+1
// before the render goroutine has ended frame N.
package frameloop

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/openxr"
	"github.com/vkngwrapper/openxr/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Frame is one waited frame handed to the render function.
type Frame struct {
	Index        uint64
	State        openxr.FrameState
	WaitDuration time.Duration
}

// RenderFunc renders one frame and returns the layers to submit. It is
// called for every frame, including frames the runtime will not show; the
// layers it returns for those are dropped and the frame is ended empty.
type RenderFunc[F openxr.Format[F]] func(ctx context.Context, frame Frame) ([]openxr.CompositionLayer[F], error)

type Options struct {
	// BlendMode is passed to every End. Defaults to
	// common.EnvironmentBlendModeOpaque.
	BlendMode common.EnvironmentBlendMode
	// MaxFrames stops the loop after that many frames. Zero runs until the
	// context is cancelled or a call fails.
	MaxFrames uint64
	// Logger defaults to openxr.Logger().
	Logger *zap.Logger
}

// Stats counts what a loop has done so far.
type Stats struct {
	Waited    uint64
	Rendered  uint64
	Skipped   uint64
	Discarded uint64
	WaitTotal time.Duration
	WaitMax   time.Duration
}

// MeanWait is the average time spent blocked in Wait.
func (s Stats) MeanWait() time.Duration {
	if s.Waited == 0 {
		return 0
	}
	return s.WaitTotal / time.Duration(s.Waited)
}

// Loop runs the frame cycle of one session. A session has a single
// FrameWaiter and FrameStream, so only one Loop should exist for it.
type Loop[F openxr.Format[F]] struct {
	waiter *openxr.FrameWaiter
	stream *openxr.FrameStream[F]
	opts   Options
	log    *zap.Logger

	mu    sync.Mutex
	stats Stats
}

func New[F openxr.Format[F]](waiter *openxr.FrameWaiter, stream *openxr.FrameStream[F], opts Options) *Loop[F] {
	if opts.BlendMode == 0 {
		opts.BlendMode = common.EnvironmentBlendModeOpaque
	}
	log := opts.Logger
	if log == nil {
		log = openxr.Logger()
	}
	return &Loop[F]{
		waiter: waiter,
		stream: stream,
		opts:   opts,
		log:    log.Named("frameloop"),
	}
}

func (l *Loop[F]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Run waits and renders frames until MaxFrames is reached, ctx is cancelled
// or a call fails. Cancelling ctx stops new waits from starting but never
// interrupts one in progress, and a frame that was already waited is still
// begun and ended.
func (l *Loop[F]) Run(ctx context.Context, render RenderFunc[F]) error {
	frames := make(chan Frame)
	ended := make(chan struct{})
	renderDone := make(chan struct{})
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(frames)
		for index := uint64(0); l.opts.MaxFrames == 0 || index < l.opts.MaxFrames; index++ {
			if groupCtx.Err() != nil {
				return nil
			}

			start := hrtime.Now()
			state, _, err := l.waiter.Wait()
			elapsed := hrtime.Since(start)
			if err != nil {
				return errors.Wrapf(err, "wait frame %d", index)
			}
			l.recordWait(elapsed)

			select {
			case frames <- Frame{Index: index, State: state, WaitDuration: elapsed}:
			case <-renderDone:
				return nil
			}
			select {
			case <-ended:
			case <-renderDone:
				return nil
			}
		}
		return nil
	})

	group.Go(func() error {
		defer close(renderDone)
		for frame := range frames {
			if err := l.renderFrame(groupCtx, frame, render); err != nil {
				return err
			}
			ended <- struct{}{}
		}
		return nil
	})

	err := group.Wait()
	stats := l.Stats()
	l.log.Debug("frame loop stopped",
		zap.Uint64("waited", stats.Waited),
		zap.Uint64("rendered", stats.Rendered),
		zap.Uint64("discarded", stats.Discarded),
		zap.Duration("mean_wait", stats.MeanWait()),
		zap.Error(err))
	return err
}

func (l *Loop[F]) renderFrame(ctx context.Context, frame Frame, render RenderFunc[F]) error {
	res, err := l.stream.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin frame %d", frame.Index)
	}
	if res == common.FrameDiscarded {
		l.log.Debug("previous frame discarded", zap.Uint64("frame", frame.Index))
	}

	layers, err := render(ctx, frame)
	if err != nil {
		return errors.Wrapf(err, "render frame %d", frame.Index)
	}
	if !frame.State.ShouldRender {
		layers = nil
	}

	if _, err := l.stream.End(frame.State.PredictedDisplayTime, l.opts.BlendMode, layers...); err != nil {
		return errors.Wrapf(err, "end frame %d", frame.Index)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if res == common.FrameDiscarded {
		l.stats.Discarded++
	}
	if frame.State.ShouldRender {
		l.stats.Rendered++
	} else {
		l.stats.Skipped++
	}
	return nil
}

func (l *Loop[F]) recordWait(elapsed time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Waited++
	l.stats.WaitTotal += elapsed
	l.stats.WaitMax = max(l.stats.WaitMax, elapsed)
}
