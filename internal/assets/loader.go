package assets

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/envscene/internal/engine/model"
	"github.com/Faultbox/envscene/internal/engine/texture"
	"github.com/Faultbox/envscene/internal/logger"
)

// completionQueueSize bounds finished loads waiting for Dispatch.
const completionQueueSize = 32

// Loader decodes assets on a worker pool and hands the results back on the
// thread that calls Dispatch. Handles returned by LoadTexture and
// LoadCubeTexture are empty until their completion is dispatched.
type Loader struct {
	manager *Manager
	pool    pond.Pool
	done    chan func()
	pending atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc

	onError func(name string, err error)
	log     *zap.Logger
}

// NewLoader creates a loader reading through m with the given number of
// workers.
func NewLoader(m *Manager, workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		manager: m,
		pool:    pond.NewPool(workers),
		done:    make(chan func(), completionQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		log:     logger.Named("assets"),
	}
}

// OnError registers a callback for failed loads. It runs inside Dispatch.
func (l *Loader) OnError(fn func(name string, err error)) {
	l.onError = fn
}

// Pending returns the number of loads whose completion has not been
// dispatched yet.
func (l *Loader) Pending() int {
	return int(l.pending.Load())
}

// Queued returns the number of finished loads waiting for Dispatch.
func (l *Loader) Queued() int {
	return len(l.done)
}

// submit runs work on the pool and queues its completion. Work submitted
// after Close is dropped.
func (l *Loader) submit(name string, work func(ctx context.Context) (func(), error)) {
	if err := l.ctx.Err(); err != nil {
		l.log.Warn("load after close ignored", zap.String("name", name))
		return
	}
	l.pending.Add(1)
	l.pool.Submit(func() {
		apply, err := work(l.ctx)
		var fn func()
		if err != nil {
			fn = func() { l.fail(name, err) }
		} else {
			fn = apply
		}
		select {
		case l.done <- fn:
		case <-l.ctx.Done():
			l.pending.Add(-1)
		}
	})
}

func (l *Loader) fail(name string, err error) {
	l.log.Error("asset load failed", zap.String("name", name), zap.Error(err))
	if l.onError != nil {
		l.onError(name, err)
	}
}

// Dispatch runs every queued completion without blocking and returns how
// many ran. Call it from the thread that owns the scene graph.
func (l *Loader) Dispatch() int {
	n := 0
	for {
		select {
		case fn := <-l.done:
			l.run(fn)
			n++
		default:
			return n
		}
	}
}

// Flush dispatches completions until nothing is pending or ctx ends.
func (l *Loader) Flush(ctx context.Context) error {
	for l.Pending() > 0 {
		select {
		case fn := <-l.done:
			l.run(fn)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (l *Loader) run(fn func()) {
	l.pending.Add(-1)
	fn()
}

// LoadTexture starts decoding name and returns its texture handle at once.
// The image is installed when the completion is dispatched.
func (l *Loader) LoadTexture(name string) *texture.Texture {
	t := texture.New(name)
	l.submit(name, func(ctx context.Context) (func(), error) {
		img, err := l.decode(ctx, name)
		if err != nil {
			return nil, err
		}
		return func() {
			t.SetImage(img)
			l.log.Debug("texture loaded", zap.String("name", name))
		}, nil
	})
	return t
}

// LoadCubeTexture decodes six faces in +X, -X, +Y, -Y, +Z, -Z order in
// parallel and returns the cube handle at once.
func (l *Loader) LoadCubeTexture(name string, faces [6]string) *texture.Cube {
	c := texture.NewCube(name)
	l.submit(name, func(ctx context.Context) (func(), error) {
		var imgs [6]*image.RGBA
		// The first failed face cancels the rest.
		g, gctx := errgroup.WithContext(ctx)
		for i, face := range faces {
			g.Go(func() error {
				img, err := l.decode(gctx, face)
				if err != nil {
					return err
				}
				imgs[i] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return func() {
			if err := c.SetFaces(imgs); err != nil {
				l.fail(name, err)
				return
			}
			l.log.Debug("cube texture loaded",
				zap.String("name", name),
				zap.Int("size", c.Size()),
			)
		}, nil
	})
	return c
}

// LoadGLTF converts a glTF file on the pool and calls onLoad with the
// result inside Dispatch.
func (l *Loader) LoadGLTF(name string, onLoad func(*model.Model)) {
	l.submit(name, func(context.Context) (func(), error) {
		m, err := model.Load(l.manager, name)
		if err != nil {
			return nil, err
		}
		return func() {
			l.log.Info("model loaded",
				zap.String("name", name),
				zap.Int("clips", len(m.Clips)),
			)
			onLoad(m)
		}, nil
	})
}

func (l *Loader) decode(ctx context.Context, name string) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.manager.Load(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := texture.Decode(data, name)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return img, nil
}

// Close abandons undispatched completions and waits for running work.
func (l *Loader) Close() {
	l.cancel()
	l.pool.StopAndWait()
}
