package openxr

import (
	"runtime"
	"slices"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// sessionShared is the native session owned jointly by a Session, its
// FrameWaiter and FrameStream, and every space and swapchain created from it.
type sessionShared struct {
	handle   driver.Session
	driver   driver.InstanceDriver
	instance *Instance
	api      GraphicsAPI
	refs     *refCounter

	state    atomic.Int32
	attached atomic.Bool
}

func (s *sessionShared) release() {
	s.instance.unregisterSession(s)
	res, err := s.driver.XrDestroySession(s.handle)
	checkResult("session", res, err)
	Logger().Debug("destroyed session", zap.Uint64("handle", uint64(s.handle)))
	s.instance.refs.drop()
}

func (s *sessionShared) setState(state common.SessionState) {
	old := common.SessionState(s.state.Swap(int32(state)))
	if old != state {
		Logger().Debug("session state changed",
			zap.Uint64("handle", uint64(s.handle)),
			zap.Stringer("from", old),
			zap.Stringer("to", state))
	}
}

// SessionHandle is implemented by every *Session regardless of its graphics
// backend. Action state queries take it so actions need not be generic.
type SessionHandle interface {
	Handle() driver.Session
	shared() *sessionShared
	check() error
}

// Session is a running connection between the application and a system,
// bound to one graphics backend whose format type is F.
type Session[F Format[F]] struct {
	s     *sessionShared
	state handleState
}

// CreateSession creates a session with the given graphics binding and
// returns it together with the only FrameWaiter and FrameStream for it. All
// three must be destroyed before the native session is.
//
// The binding must belong to the same backend as F, and the binding's
// extension must have been enabled on the instance.
func CreateSession[F Format[F]](instance *Instance, system driver.SystemID, binding GraphicsBinding) (*Session[F], *FrameWaiter, *FrameStream[F], common.Result, error) {
	if err := instance.check(); err != nil {
		return nil, nil, nil, common.ErrorHandleInvalid, err
	}

	var zero F
	if binding.GraphicsAPI() != zero.GraphicsAPI() {
		return nil, nil, nil, common.ErrorGraphicsDeviceInvalid,
			errors.Newf("a %s binding cannot create a %s session", binding.GraphicsAPI(), zero.GraphicsAPI())
	}
	if ext := binding.Extension(); ext != "" {
		if err := instance.requireExtension(ext, "xrCreateSession"); err != nil {
			return nil, nil, nil, common.ErrorFunctionUnsupported, err
		}
	}

	info := driver.SessionCreateInfo{
		Type:     driver.TypeSessionCreateInfo,
		Next:     binding.Chain(),
		SystemID: system,
	}
	var handle driver.Session
	res, err := instance.driver.XrCreateSession(&info, &handle)
	runtime.KeepAlive(binding)
	if err != nil {
		return nil, nil, nil, res, err
	}

	instance.refs.retain()
	shared := &sessionShared{
		handle:   handle,
		driver:   instance.driver,
		instance: instance,
		api:      zero.GraphicsAPI(),
	}
	shared.refs = newRefCounter(3, shared.release)
	instance.registerSession(shared)
	Logger().Debug("created session",
		zap.Uint64("handle", uint64(handle)),
		zap.Stringer("api", shared.api))

	return &Session[F]{s: shared}, &FrameWaiter{s: shared}, &FrameStream[F]{s: shared}, res, nil
}

// Destroy drops this reference to the session. The native session is
// destroyed after the FrameWaiter, the FrameStream and every space and
// swapchain of the session are destroyed too.
func (s *Session[F]) Destroy() {
	if s.state.markDestroyed() {
		s.s.refs.drop()
	}
}

func (s *Session[F]) Handle() driver.Session {
	return s.s.handle
}

func (s *Session[F]) shared() *sessionShared {
	return s.s
}

func (s *Session[F]) check() error {
	return s.state.check("session")
}

func (s *Session[F]) Instance() *Instance {
	return s.s.instance
}

func (s *Session[F]) GraphicsAPI() GraphicsAPI {
	return s.s.api
}

// State returns the last state reported for this session by
// Instance.PollEvent. The runtime is authoritative; nothing is enforced
// locally.
func (s *Session[F]) State() common.SessionState {
	return common.SessionState(s.s.state.Load())
}

// ActionSetsAttached reports whether AttachActionSets succeeded on this
// session.
func (s *Session[F]) ActionSetsAttached() bool {
	return s.s.attached.Load()
}

// Begin starts the session once it reached the Ready state.
// ErrorSessionRunning and ErrorSessionNotReady are returned unchanged.
func (s *Session[F]) Begin(viewConfigurationType common.ViewConfigurationType) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	info := driver.SessionBeginInfo{
		Type:                         driver.TypeSessionBeginInfo,
		PrimaryViewConfigurationType: viewConfigurationType,
	}
	return s.s.driver.XrBeginSession(s.s.handle, &info)
}

// RequestExit asks the runtime to move the session to Stopping. The
// transition is observed later through PollEvent.
func (s *Session[F]) RequestExit() (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return s.s.driver.XrRequestExitSession(s.s.handle)
}

// End ends a session in the Stopping state. The session stays valid and
// can be begun again or destroyed.
func (s *Session[F]) End() (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return s.s.driver.XrEndSession(s.s.handle)
}

// EnumerateReferenceSpaces lists the reference space types the session
// supports. The list does not change during the session's lifetime.
func (s *Session[F]) EnumerateReferenceSpaces() ([]common.ReferenceSpaceType, common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	return common.Enumerate(nil, func(capacity uint32, count *uint32, buf *common.ReferenceSpaceType) (common.Result, error) {
		return s.s.driver.XrEnumerateReferenceSpaces(s.s.handle, capacity, count, buf)
	})
}

func (s *Session[F]) CreateReferenceSpace(referenceSpaceType common.ReferenceSpaceType, poseInReferenceSpace common.Posef) (*Space, common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	info := driver.ReferenceSpaceCreateInfo{
		Type:                 driver.TypeReferenceSpaceCreateInfo,
		ReferenceSpaceType:   referenceSpaceType,
		PoseInReferenceSpace: poseInReferenceSpace,
	}
	var handle driver.Space
	res, err := s.s.driver.XrCreateReferenceSpace(s.s.handle, &info, &handle)
	if err != nil {
		return nil, res, err
	}
	return newSpace(s.s, handle), res, nil
}

// ReferenceSpaceBoundsRect returns the extent of a reference space's bounds
// rectangle. It returns nil with SpaceBoundsUnavailable when the runtime
// does not know the bounds.
func (s *Session[F]) ReferenceSpaceBoundsRect(referenceSpaceType common.ReferenceSpaceType) (*common.Extent2Df, common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	var bounds common.Extent2Df
	res, err := s.s.driver.XrGetReferenceSpaceBoundsRect(s.s.handle, referenceSpaceType, &bounds)
	if err != nil || res == common.SpaceBoundsUnavailable {
		return nil, res, err
	}
	return &bounds, res, nil
}

// EnumerateSwapchainFormats lists the swapchain formats the runtime supports
// for this session, in order of preference.
func (s *Session[F]) EnumerateSwapchainFormats() ([]F, common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	raw, res, err := common.Enumerate(nil, func(capacity uint32, count *uint32, buf *int64) (common.Result, error) {
		return s.s.driver.XrEnumerateSwapchainFormats(s.s.handle, capacity, count, buf)
	})
	if err != nil {
		return nil, res, err
	}

	var zero F
	formats := make([]F, len(raw))
	for i, value := range raw {
		formats[i] = zero.Raise(value)
	}
	return formats, res, nil
}

type SwapchainCreateInfo[F Format[F]] struct {
	CreateFlags common.SwapchainCreateFlags
	UsageFlags  common.SwapchainUsageFlags
	Format      F
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

func (s *Session[F]) CreateSwapchain(info SwapchainCreateInfo[F]) (*Swapchain[F], common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	if s.s.api == GraphicsAPIHeadless {
		return nil, common.ErrorSwapchainFormatUnsupported,
			errors.Newf("%s sessions have no swapchain formats", s.s.api)
	}

	createInfo := driver.SwapchainCreateInfo{
		Type:        driver.TypeSwapchainCreateInfo,
		CreateFlags: info.CreateFlags,
		UsageFlags:  info.UsageFlags,
		Format:      info.Format.Lower(),
		SampleCount: info.SampleCount,
		Width:       info.Width,
		Height:      info.Height,
		FaceCount:   info.FaceCount,
		ArraySize:   info.ArraySize,
		MipCount:    info.MipCount,
	}
	var handle driver.Swapchain
	res, err := s.s.driver.XrCreateSwapchain(s.s.handle, &createInfo, &handle)
	if err != nil {
		return nil, res, err
	}
	return newSwapchain(s.s, handle, info), res, nil
}

type View struct {
	Pose common.Posef
	Fov  common.Fovf
}

// LocateViews returns the pose and field of view of each view at
// displayTime, relative to space. Call it as late as possible before
// rendering: the closer to submission, the better the prediction.
func (s *Session[F]) LocateViews(viewConfigurationType common.ViewConfigurationType, displayTime common.Time, space *Space) (common.ViewStateFlags, []View, common.Result, error) {
	if err := s.check(); err != nil {
		return 0, nil, common.ErrorHandleInvalid, err
	}
	if err := space.check(); err != nil {
		return 0, nil, common.ErrorHandleInvalid, err
	}

	info := driver.ViewLocateInfo{
		Type:                  driver.TypeViewLocateInfo,
		ViewConfigurationType: viewConfigurationType,
		DisplayTime:           displayTime,
		Space:                 space.handle,
	}
	var state driver.ViewState
	raw, res, err := common.Enumerate(
		func(v *driver.View) { v.Type = driver.TypeView },
		func(capacity uint32, count *uint32, buf *driver.View) (common.Result, error) {
			state = driver.ViewState{Type: driver.TypeViewState}
			return s.s.driver.XrLocateViews(s.s.handle, &info, &state, capacity, count, buf)
		})
	if err != nil {
		return 0, nil, res, err
	}

	views := make([]View, len(raw))
	for i := range raw {
		views[i] = View{Pose: raw[i].Pose, Fov: raw[i].Fov}
	}
	return state.ViewStateFlags, views, res, nil
}

// AttachActionSets attaches action sets to the session. It succeeds once
// per session; after that the sets and their actions are immutable and the
// runtime answers further calls with ErrorActionSetsAlreadyAttached.
func (s *Session[F]) AttachActionSets(sets ...*ActionSet) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}

	handles := make([]driver.ActionSet, len(sets))
	for i, set := range sets {
		if err := set.check(); err != nil {
			return common.ErrorHandleInvalid, err
		}
		handles[i] = set.handle
	}
	info := driver.SessionActionSetsAttachInfo{
		Type:            driver.TypeSessionActionSetsAttachInfo,
		CountActionSets: uint32(len(handles)),
		ActionSets:      unsafe.SliceData(handles),
	}
	res, err := s.s.driver.XrAttachSessionActionSets(s.s.handle, &info)
	runtime.KeepAlive(handles)
	if err != nil {
		return res, err
	}
	s.s.attached.Store(true)
	return res, nil
}

// ActiveActionSet selects an action set to sync, optionally narrowed to one
// subaction path.
type ActiveActionSet struct {
	ActionSet     *ActionSet
	SubactionPath driver.Path
}

// SyncActions refreshes the state of every action in the active sets. Call
// it once per frame before reading action states. It must not run
// concurrently with itself on the same session.
func (s *Session[F]) SyncActions(active ...ActiveActionSet) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}

	raw := make([]driver.ActiveActionSet, len(active))
	for i, a := range active {
		if err := a.ActionSet.check(); err != nil {
			return common.ErrorHandleInvalid, err
		}
		raw[i] = driver.ActiveActionSet{ActionSet: a.ActionSet.handle, SubactionPath: a.SubactionPath}
	}
	info := driver.ActionsSyncInfo{
		Type:                  driver.TypeActionsSyncInfo,
		CountActiveActionSets: uint32(len(raw)),
		ActiveActionSets:      unsafe.SliceData(raw),
	}
	res, err := s.s.driver.XrSyncActions(s.s.handle, &info)
	runtime.KeepAlive(raw)
	return res, err
}

// CurrentInteractionProfile returns the interaction profile bound to a top
// level user path such as "/user/hand/left", or NullPath if none is.
func (s *Session[F]) CurrentInteractionProfile(topLevelUserPath driver.Path) (driver.Path, common.Result, error) {
	if err := s.check(); err != nil {
		return driver.NullPath, common.ErrorHandleInvalid, err
	}

	state := driver.InteractionProfileState{Type: driver.TypeInteractionProfileState}
	res, err := s.s.driver.XrGetCurrentInteractionProfile(s.s.handle, topLevelUserPath, &state)
	if err != nil {
		return driver.NullPath, res, err
	}
	return state.InteractionProfile, res, nil
}

// InputSourceComponents selects which parts of an input source's name
// InputSourceLocalizedName returns.
type InputSourceComponents uint64

const (
	InputSourceUserPath           = InputSourceComponents(driver.InputSourceLocalizedNameUserPath)
	InputSourceInteractionProfile = InputSourceComponents(driver.InputSourceLocalizedNameInteractionProfile)
	InputSourceComponent          = InputSourceComponents(driver.InputSourceLocalizedNameComponent)
)

// InputSourceLocalizedName returns a human readable name for an input
// source, normalized to NFC.
func (s *Session[F]) InputSourceLocalizedName(source driver.Path, components InputSourceComponents) (string, common.Result, error) {
	if err := s.check(); err != nil {
		return "", common.ErrorHandleInvalid, err
	}

	info := driver.InputSourceLocalizedNameGetInfo{
		Type:            driver.TypeInputSourceLocalizedNameGetInfo,
		SourcePath:      source,
		WhichComponents: uint64(components),
	}
	name, res, err := common.EnumerateString(func(capacity uint32, count *uint32, buf *byte) (common.Result, error) {
		return s.s.driver.XrGetInputSourceLocalizedName(s.s.handle, &info, capacity, count, buf)
	})
	if err != nil {
		return "", res, err
	}
	return norm.NFC.String(name), res, nil
}

type VisibilityMask struct {
	Vertices []common.Vector2f
	Indices  []uint32
}

// VisibilityMask returns the mesh of a view's hidden or visible area.
// Requires XR_KHR_visibility_mask.
func (s *Session[F]) VisibilityMask(viewConfigurationType common.ViewConfigurationType, viewIndex uint32, maskType common.VisibilityMaskType) (*VisibilityMask, common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	if err := s.s.instance.requireExtension(driver.ExtensionKHRVisibilityMask, "xrGetVisibilityMaskKHR"); err != nil {
		return nil, common.ErrorFunctionUnsupported, err
	}

	get := func(mask *driver.VisibilityMaskKHR) (common.Result, error) {
		return s.s.driver.XrGetVisibilityMaskKHR(s.s.handle, viewConfigurationType, viewIndex, maskType, mask)
	}

	mask := driver.VisibilityMaskKHR{Type: driver.TypeVisibilityMaskKHR}
	res, err := get(&mask)
	if err != nil {
		return nil, res, err
	}

	var vertices []common.Vector2f
	var indices []uint32
	for attempt := 0; ; attempt++ {
		if mask.VertexCountOutput == 0 && mask.IndexCountOutput == 0 {
			return &VisibilityMask{Vertices: []common.Vector2f{}, Indices: []uint32{}}, res, nil
		}
		if attempt == common.MaxEnumerateAttempts {
			return nil, common.ErrorSizeInsufficient, errors.Wrapf(common.ErrUnstableCount,
				"visibility mask still growing after %d attempts", attempt)
		}

		vertices = slices.Grow(vertices[:0], int(mask.VertexCountOutput))[:mask.VertexCountOutput]
		indices = slices.Grow(indices[:0], int(mask.IndexCountOutput))[:mask.IndexCountOutput]
		vertexCapacity, indexCapacity := mask.VertexCountOutput, mask.IndexCountOutput

		mask = driver.VisibilityMaskKHR{
			Type:                driver.TypeVisibilityMaskKHR,
			VertexCapacityInput: vertexCapacity,
			Vertices:            unsafe.SliceData(vertices),
			IndexCapacityInput:  indexCapacity,
			Indices:             unsafe.SliceData(indices),
		}
		res, err = get(&mask)
		runtime.KeepAlive(vertices)
		runtime.KeepAlive(indices)

		if res == common.ErrorSizeInsufficient {
			if mask.VertexCountOutput <= vertexCapacity && mask.IndexCountOutput <= indexCapacity {
				return nil, res, errors.Wrapf(common.ErrUnstableCount,
					"visibility mask reported %d/%d elements after %d/%d were offered",
					mask.VertexCountOutput, mask.IndexCountOutput, vertexCapacity, indexCapacity)
			}
			continue
		}
		if err != nil {
			return nil, res, err
		}
		if mask.VertexCountOutput > vertexCapacity || mask.IndexCountOutput > indexCapacity {
			return nil, common.ErrorSizeInsufficient, errors.Wrapf(common.ErrUnstableCount,
				"visibility mask wrote %d/%d elements into %d/%d",
				mask.VertexCountOutput, mask.IndexCountOutput, vertexCapacity, indexCapacity)
		}
		return &VisibilityMask{
			Vertices: vertices[:mask.VertexCountOutput],
			Indices:  indices[:mask.IndexCountOutput],
		}, res, nil
	}
}

// SetName attaches a debug name to the session. Requires XR_EXT_debug_utils.
func (s *Session[F]) SetName(name string) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return s.s.instance.setName(common.ObjectTypeSession, uint64(s.s.handle), name)
}
