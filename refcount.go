package openxr

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"go.uber.org/zap"
)

// refCounter runs release exactly once, when the last reference is dropped.
type refCounter struct {
	refs    atomic.Int32
	release func()
}

func newRefCounter(initial int32, release func()) *refCounter {
	r := &refCounter{release: release}
	r.refs.Store(initial)
	return r
}

func (r *refCounter) retain() {
	r.refs.Add(1)
}

func (r *refCounter) drop() {
	switch n := r.refs.Add(-1); {
	case n == 0:
		r.release()
	case n < 0:
		Logger().DPanic("reference dropped below zero")
	}
}

func (r *refCounter) count() int32 {
	return r.refs.Load()
}

// handleState guards one user-facing reference: Destroy flips it once and
// every call after that fails locally.
type handleState struct {
	destroyed atomic.Bool
}

// markDestroyed reports whether this call is the one that destroyed the
// handle.
func (h *handleState) markDestroyed() bool {
	return h.destroyed.CompareAndSwap(false, true)
}

func (h *handleState) check(kind string) error {
	if h.destroyed.Load() {
		return errors.Wrapf(common.ErrHandleDestroyed, "%s", kind)
	}
	return nil
}

func (h *handleState) isDestroyed() bool {
	return h.destroyed.Load()
}

// checkResult logs a failed destroy call. Destroy paths never return native
// failures because there is nothing the caller could do with them.
func checkResult(what string, res common.Result, err error) {
	if err != nil {
		Logger().Warn("native destroy failed", zap.String("object", what), zap.Stringer("result", res), zap.Error(err))
	}
}
