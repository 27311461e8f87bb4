package fakeruntime

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// maskCounts returns the vertex and index counts of the next visibility mask
// call. Every call advances through VisibilityMaskVertexCounts.
func (r *Runtime) maskCounts(maskType common.VisibilityMaskType) (uint32, uint32) {
	counts := r.opts.VisibilityMaskVertexCounts
	vertices := counts[min(r.maskCalls, len(counts)-1)]
	r.maskCalls++

	if maskType == common.VisibilityMaskTypeLineLoop {
		return vertices, vertices
	}
	if vertices < 3 {
		return vertices, 0
	}
	return vertices, 3 * (vertices - 2)
}

// PushVisibilityMaskChanged queues the event a runtime sends when the mask of
// a view changes.
func (r *Runtime) PushVisibilityMaskChanged(session driver.Session, viewIndex uint32) error {
	r.mu.Lock()
	s := r.sessions[session]
	if s == nil {
		r.mu.Unlock()
		return errors.Newf("unknown session %d", session)
	}
	instance, viewConfig := s.instance.handle, s.viewConfig
	r.mu.Unlock()
	if viewConfig == 0 {
		viewConfig = common.ViewConfigurationTypePrimaryStereo
	}

	return PushEvent(r, instance, driver.EventDataVisibilityMaskChangedKHR{
		Type:                  driver.TypeEventDataVisibilityMaskChangedKHR,
		Session:               session,
		ViewConfigurationType: viewConfig,
		ViewIndex:             viewIndex,
	})
}

func (d *instanceDriver) XrGetVisibilityMaskKHR(session driver.Session, viewConfigurationType common.ViewConfigurationType, viewIndex uint32, maskType common.VisibilityMaskType, mask *driver.VisibilityMaskKHR) (common.Result, error) {
	state, err := d.gated("xrGetVisibilityMaskKHR", driver.ExtensionKHRVisibilityMask)
	defer d.leave()
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if mask.Type != driver.TypeVisibilityMaskKHR {
		return result(common.ErrorValidationFailure)
	}
	if !d.r.viewConfigurationSupported(viewConfigurationType) {
		return result(common.ErrorViewConfigurationTypeUnsupported)
	}
	if int(viewIndex) >= viewCount(viewConfigurationType) {
		return result(common.ErrorIndexOutOfRange)
	}
	switch maskType {
	case common.VisibilityMaskTypeHiddenTriangleMesh, common.VisibilityMaskTypeVisibleTriangleMesh, common.VisibilityMaskTypeLineLoop:
	default:
		return result(common.ErrorValidationFailure)
	}

	vertices, indices := d.r.maskCounts(maskType)
	mask.VertexCountOutput = vertices
	mask.IndexCountOutput = indices
	if mask.VertexCapacityInput == 0 && mask.IndexCapacityInput == 0 {
		return result(common.Success)
	}
	if mask.VertexCapacityInput < vertices || mask.IndexCapacityInput < indices {
		return result(common.ErrorSizeInsufficient)
	}

	// A fan around the view's center, on a circle that leaves the corners
	// hidden.
	points := unsafe.Slice(mask.Vertices, vertices)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(vertices)
		points[i] = common.Vector2f{
			X: float32(math.Cos(angle)),
			Y: float32(math.Sin(angle)),
		}
	}
	out := unsafe.Slice(mask.Indices, indices)
	if maskType == common.VisibilityMaskTypeLineLoop {
		for i := range out {
			out[i] = uint32(i)
		}
		return result(common.Success)
	}
	for i := uint32(0); i+2 < vertices; i++ {
		out[3*i] = 0
		out[3*i+1] = i + 1
		out[3*i+2] = i + 2
	}
	return result(common.Success)
}
