package fakeruntime

import (
	"time"
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// LayerRecord describes one layer of a submitted frame.
type LayerRecord struct {
	Type       driver.StructureType
	Space      driver.Space
	Swapchains []driver.Swapchain
}

// FrameRecord describes the last frame a session ended.
type FrameRecord struct {
	DisplayTime common.Time
	BlendMode   common.EnvironmentBlendMode
	Layers      []LayerRecord
}

// LastFrame returns the last frame ended on a session.
func (r *Runtime) LastFrame(session driver.Session) FrameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.sessions[session]; s != nil {
		return s.lastFrame
	}
	return FrameRecord{}
}

func (d *instanceDriver) XrWaitFrame(session driver.Session, waitInfo *driver.FrameWaitInfo, frameState *driver.FrameState) (common.Result, error) {
	if delay := d.r.opts.WaitFrameDelay; delay > 0 {
		time.Sleep(delay)
	}

	state := d.enter("xrWaitFrame")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if waitInfo != nil && waitInfo.Type != driver.TypeFrameWaitInfo {
		return result(common.ErrorValidationFailure)
	}
	if frameState.Type != driver.TypeFrameState {
		return result(common.ErrorValidationFailure)
	}
	if !s.running {
		return result(common.ErrorSessionNotRunning)
	}
	// A real runtime would block the second wait until the first frame is
	// begun; the fake reports it instead of deadlocking the caller.
	if s.waitPending {
		return result(common.ErrorCallOrderInvalid)
	}

	s.waitPending = true
	s.now += common.Time(d.r.opts.DisplayPeriod)
	s.frameTime = s.now + common.Time(d.r.opts.DisplayPeriod)
	frameState.PredictedDisplayTime = s.frameTime
	frameState.PredictedDisplayPeriod = d.r.opts.DisplayPeriod
	frameState.ShouldRender = common.BoolToBool32(
		s.state == common.SessionStateVisible || s.state == common.SessionStateFocused)
	d.r.counters.FramesWaited++
	return result(common.Success)
}

func (d *instanceDriver) XrBeginFrame(session driver.Session, beginInfo *driver.FrameBeginInfo) (common.Result, error) {
	state := d.enter("xrBeginFrame")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if beginInfo != nil && beginInfo.Type != driver.TypeFrameBeginInfo {
		return result(common.ErrorValidationFailure)
	}
	if !s.running {
		return result(common.ErrorSessionNotRunning)
	}
	if !s.waitPending {
		return result(common.ErrorCallOrderInvalid)
	}

	s.waitPending = false
	d.r.counters.FramesBegun++
	if s.frameBegun {
		d.r.counters.FramesDiscarded++
		return result(common.FrameDiscarded)
	}
	s.frameBegun = true
	return result(common.Success)
}

func (d *instanceDriver) XrEndFrame(session driver.Session, endInfo *driver.FrameEndInfo) (common.Result, error) {
	state := d.enter("xrEndFrame")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if endInfo.Type != driver.TypeFrameEndInfo {
		return result(common.ErrorValidationFailure)
	}
	if !s.running {
		return result(common.ErrorSessionNotRunning)
	}
	if !s.frameBegun {
		return result(common.ErrorCallOrderInvalid)
	}
	if endInfo.DisplayTime != s.frameTime {
		return result(common.ErrorTimeInvalid)
	}
	if endInfo.EnvironmentBlendMode != common.EnvironmentBlendModeOpaque {
		return result(common.ErrorEnvironmentBlendModeUnsupported)
	}
	if endInfo.LayerCount > maxLayerCount {
		return result(common.ErrorLayerLimitExceeded)
	}

	var layers []LayerRecord
	if endInfo.LayerCount > 0 {
		for _, header := range unsafe.Slice(endInfo.Layers, endInfo.LayerCount) {
			record, res := d.r.checkLayer(s, header)
			if res != common.Success {
				return result(res)
			}
			layers = append(layers, record)
		}
	}

	s.frameBegun = false
	s.framesEnded++
	s.lastFrame = FrameRecord{DisplayTime: endInfo.DisplayTime, BlendMode: endInfo.EnvironmentBlendMode, Layers: layers}
	d.r.counters.FramesEnded++

	// The first submitted frame synchronizes the session with the
	// compositor, after which it is shown and gets input focus.
	if s.state == common.SessionStateReady {
		d.r.transition(s, common.SessionStateSynchronized)
		d.r.transition(s, common.SessionStateVisible)
		d.r.transition(s, common.SessionStateFocused)
	}
	return result(common.Success)
}

func (r *Runtime) checkLayer(s *sessionState, header *driver.CompositionLayerBaseHeader) (LayerRecord, common.Result) {
	if header == nil {
		return LayerRecord{}, common.ErrorLayerInvalid
	}
	space := r.spaces[header.Space]
	if space == nil || space.destroyed || space.session != s {
		return LayerRecord{}, common.ErrorHandleInvalid
	}
	record := LayerRecord{Type: header.Type, Space: header.Space}

	switch header.Type {
	case driver.TypeCompositionLayerProjection:
		layer := (*driver.CompositionLayerProjection)(unsafe.Pointer(header))
		if int(layer.ViewCount) != viewCount(s.viewConfig) {
			return LayerRecord{}, common.ErrorValidationFailure
		}
		for _, view := range unsafe.Slice(layer.Views, layer.ViewCount) {
			if view.Type != driver.TypeCompositionLayerProjectionView {
				return LayerRecord{}, common.ErrorValidationFailure
			}
			if res := r.checkSubImage(s, view.SubImage); res != common.Success {
				return LayerRecord{}, res
			}
			record.Swapchains = append(record.Swapchains, view.SubImage.Swapchain)
		}
	case driver.TypeCompositionLayerQuad:
		layer := (*driver.CompositionLayerQuad)(unsafe.Pointer(header))
		if res := r.checkSubImage(s, layer.SubImage); res != common.Success {
			return LayerRecord{}, res
		}
		record.Swapchains = append(record.Swapchains, layer.SubImage.Swapchain)
	default:
		return LayerRecord{}, common.ErrorLayerInvalid
	}
	return record, common.Success
}

func (r *Runtime) checkSubImage(s *sessionState, sub driver.SwapchainSubImage) common.Result {
	sc := r.swapchains[sub.Swapchain]
	if sc == nil || sc.destroyed || sc.session != s {
		return common.ErrorHandleInvalid
	}
	if sub.ImageArrayIndex >= sc.arraySize {
		return common.ErrorValidationFailure
	}
	rect := sub.ImageRect
	if rect.Offset.X < 0 || rect.Offset.Y < 0 || rect.Extent.Width <= 0 || rect.Extent.Height <= 0 ||
		uint32(rect.Offset.X+rect.Extent.Width) > sc.width || uint32(rect.Offset.Y+rect.Extent.Height) > sc.height {
		return common.ErrorSwapchainRectInvalid
	}
	if !sc.released {
		return common.ErrorLayerInvalid
	}
	return common.Success
}
