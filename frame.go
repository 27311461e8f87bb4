package openxr

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// FrameState is the runtime's timing prediction for one frame.
type FrameState struct {
	PredictedDisplayTime   common.Time
	PredictedDisplayPeriod common.Duration
	// ShouldRender is false when the frame will not be shown; the frame
	// must still be begun and ended, with no layers.
	ShouldRender bool
}

// FrameWaiter throttles the application to the display. It can live on a
// different goroutine than the FrameStream of the same session.
type FrameWaiter struct {
	s     *sessionShared
	state handleState
}

// Wait blocks until the runtime wants the next frame to start and returns
// its predicted timing. It is the only call in this package that blocks for
// a runtime-determined time; it has no timeout and cannot be cancelled.
//
// Wait must be called once per frame, and the wait for frame N+1 must not
// start before FrameStream.End for frame N returned. Calling it twice
// without a Begin in between is reported by the runtime.
func (w *FrameWaiter) Wait() (FrameState, common.Result, error) {
	if err := w.state.check("frame waiter"); err != nil {
		return FrameState{}, common.ErrorHandleInvalid, err
	}

	info := driver.FrameWaitInfo{Type: driver.TypeFrameWaitInfo}
	state := driver.FrameState{Type: driver.TypeFrameState}
	res, err := w.s.driver.XrWaitFrame(w.s.handle, &info, &state)
	if err != nil {
		return FrameState{}, res, err
	}
	return FrameState{
		PredictedDisplayTime:   state.PredictedDisplayTime,
		PredictedDisplayPeriod: state.PredictedDisplayPeriod,
		ShouldRender:           state.ShouldRender.Bool(),
	}, res, nil
}

func (w *FrameWaiter) Destroy() {
	if w.state.markDestroyed() {
		w.s.refs.drop()
	}
}

// FrameStream submits frames of a session whose backend format is F.
type FrameStream[F Format[F]] struct {
	s     *sessionShared
	state handleState
}

// Begin marks the start of rendering for the frame returned by the last
// Wait. FrameDiscarded is a success code: the previous frame was begun but
// never ended and has been thrown away.
func (f *FrameStream[F]) Begin() (common.Result, error) {
	if err := f.state.check("frame stream"); err != nil {
		return common.ErrorHandleInvalid, err
	}
	info := driver.FrameBeginInfo{Type: driver.TypeFrameBeginInfo}
	return f.s.driver.XrBeginFrame(f.s.handle, &info)
}

// End submits the frame's layers for display at displayTime, which must be
// the PredictedDisplayTime of the matching Wait. Layers are composited in
// order, the first one at the back.
func (f *FrameStream[F]) End(displayTime common.Time, blendMode common.EnvironmentBlendMode, layers ...CompositionLayer[F]) (common.Result, error) {
	if err := f.state.check("frame stream"); err != nil {
		return common.ErrorHandleInvalid, err
	}

	headers := make([]*driver.CompositionLayerBaseHeader, len(layers))
	for i, layer := range layers {
		header, err := layer.lower(f.s)
		if err != nil {
			return common.ErrorLayerInvalid, errors.Wrapf(err, "layer %d", i)
		}
		headers[i] = header
	}

	info := driver.FrameEndInfo{
		Type:                 driver.TypeFrameEndInfo,
		DisplayTime:          displayTime,
		EnvironmentBlendMode: blendMode,
		LayerCount:           uint32(len(headers)),
		Layers:               unsafe.SliceData(headers),
	}
	res, err := f.s.driver.XrEndFrame(f.s.handle, &info)
	runtime.KeepAlive(headers)
	return res, err
}

func (f *FrameStream[F]) Destroy() {
	if f.state.markDestroyed() {
		f.s.refs.drop()
	}
}

// CompositionLayer is a layer that can be submitted through a FrameStream
// of backend F. It is implemented by CompositionLayerProjection and
// CompositionLayerQuad.
type CompositionLayer[F Format[F]] interface {
	lower(session *sessionShared) (*driver.CompositionLayerBaseHeader, error)
	// backend ties a layer type to the format type of its swapchains.
	backend(F)
}

// SwapchainSubImage selects the part of a swapchain image a layer shows.
type SwapchainSubImage[F Format[F]] struct {
	Swapchain       *Swapchain[F]
	ImageRect       common.Rect2Di
	ImageArrayIndex uint32
}

func (s SwapchainSubImage[F]) lower(session *sessionShared) (driver.SwapchainSubImage, error) {
	if s.Swapchain == nil {
		return driver.SwapchainSubImage{}, errors.New("sub-image has no swapchain")
	}
	if err := s.Swapchain.check(); err != nil {
		return driver.SwapchainSubImage{}, err
	}
	if s.Swapchain.session != session {
		return driver.SwapchainSubImage{}, errors.New("swapchain belongs to another session")
	}
	return driver.SwapchainSubImage{
		Swapchain:       s.Swapchain.handle,
		ImageRect:       s.ImageRect,
		ImageArrayIndex: s.ImageArrayIndex,
	}, nil
}

func lowerLayerSpace(space *Space, session *sessionShared) (driver.Space, error) {
	if space == nil {
		return driver.NullSpace, errors.New("layer has no space")
	}
	if err := space.check(); err != nil {
		return driver.NullSpace, err
	}
	if space.session != session {
		return driver.NullSpace, errors.New("space belongs to another session")
	}
	return space.handle, nil
}

type CompositionLayerProjectionView[F Format[F]] struct {
	Pose     common.Posef
	Fov      common.Fovf
	SubImage SwapchainSubImage[F]
}

// CompositionLayerProjection is a projected layer with one view per view of
// the session's view configuration.
type CompositionLayerProjection[F Format[F]] struct {
	LayerFlags common.CompositionLayerFlags
	Space      *Space
	Views      []CompositionLayerProjectionView[F]
}

func (l *CompositionLayerProjection[F]) backend(F) {}

func (l *CompositionLayerProjection[F]) lower(session *sessionShared) (*driver.CompositionLayerBaseHeader, error) {
	space, err := lowerLayerSpace(l.Space, session)
	if err != nil {
		return nil, err
	}

	views := make([]driver.CompositionLayerProjectionView, len(l.Views))
	for i, view := range l.Views {
		subImage, err := view.SubImage.lower(session)
		if err != nil {
			return nil, errors.Wrapf(err, "view %d", i)
		}
		views[i] = driver.CompositionLayerProjectionView{
			Type:     driver.TypeCompositionLayerProjectionView,
			Pose:     view.Pose,
			Fov:      view.Fov,
			SubImage: subImage,
		}
	}

	layer := &driver.CompositionLayerProjection{
		Type:       driver.TypeCompositionLayerProjection,
		LayerFlags: l.LayerFlags,
		Space:      space,
		ViewCount:  uint32(len(views)),
		Views:      unsafe.SliceData(views),
	}
	return (*driver.CompositionLayerBaseHeader)(unsafe.Pointer(layer)), nil
}

// CompositionLayerQuad is a flat rectangle placed in a space.
type CompositionLayerQuad[F Format[F]] struct {
	LayerFlags    common.CompositionLayerFlags
	Space         *Space
	EyeVisibility common.EyeVisibility
	SubImage      SwapchainSubImage[F]
	Pose          common.Posef
	Size          common.Extent2Df
}

func (l *CompositionLayerQuad[F]) backend(F) {}

func (l *CompositionLayerQuad[F]) lower(session *sessionShared) (*driver.CompositionLayerBaseHeader, error) {
	space, err := lowerLayerSpace(l.Space, session)
	if err != nil {
		return nil, err
	}
	subImage, err := l.SubImage.lower(session)
	if err != nil {
		return nil, err
	}

	layer := &driver.CompositionLayerQuad{
		Type:          driver.TypeCompositionLayerQuad,
		LayerFlags:    l.LayerFlags,
		Space:         space,
		EyeVisibility: l.EyeVisibility,
		SubImage:      subImage,
		Pose:          l.Pose,
		Size:          l.Size,
	}
	return (*driver.CompositionLayerBaseHeader)(unsafe.Pointer(layer)), nil
}
