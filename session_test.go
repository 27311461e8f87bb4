package openxr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

func TestCreateSessionChecksBackend(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	defer r.instance.Destroy()

	_, _, _, res, err := CreateSession[vulkanFormat](r.instance, r.system, headlessBinding{})
	require.Error(t, err)
	require.Equal(t, common.ErrorGraphicsDeviceInvalid, res)

	_, _, _, res, err = CreateSession[vulkanFormat](r.instance, r.system, newVulkanBinding())
	require.True(t, errors.Is(err, common.ErrExtensionNotEnabled))
	require.Equal(t, common.ErrorFunctionUnsupported, res)

	require.Zero(t, r.rt.CallCount("xrCreateSession"))
}

func TestCreateSessionRequiresGraphicsRequirements(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()

	_, _, _, res, err := CreateSession[vulkanFormat](r.instance, r.system, newVulkanBinding())
	require.Error(t, err)
	require.Equal(t, common.ErrorGraphicsRequirementsCallMissing, res)
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	require.Equal(t, GraphicsAPIHeadless, session.GraphicsAPI())
	require.Same(t, r.instance, session.Instance())

	// Ending a session that never ran is reported by the runtime, not
	// prevented locally.
	res, err := session.End()
	require.Error(t, err)
	require.Equal(t, common.ErrorSessionNotRunning, res)

	startSession(t, r, session)
	res, err = session.Begin(common.ViewConfigurationTypePrimaryStereo)
	require.Error(t, err)
	require.Equal(t, common.ErrorSessionRunning, res)

	res, err = session.End()
	require.Error(t, err)
	require.Equal(t, common.ErrorSessionNotStopping, res)

	_, err = session.RequestExit()
	require.NoError(t, err)
	r.drainEvents(t)
	require.Equal(t, common.SessionStateStopping, session.State())

	_, err = session.End()
	require.NoError(t, err)
	r.drainEvents(t)
	require.Equal(t, common.SessionStateExiting, session.State())
}

func TestSessionDestroyIsIdempotent(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)

	session.Destroy()
	session.Destroy()
	_, err := session.Begin(common.ViewConfigurationTypePrimaryStereo)
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))

	// The frame objects keep the native session alive.
	require.Zero(t, r.rt.Counters().SessionsDestroyed)
	_, _, err = waiter.Wait()
	require.Error(t, err)
	require.False(t, errors.Is(err, common.ErrHandleDestroyed))

	waiter.Destroy()
	stream.Destroy()
	stream.Destroy()
	require.Equal(t, 1, r.rt.Counters().SessionsDestroyed)
}

func TestFrameLoopOrder(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	startSession(t, r, session)

	frame, _, err := waiter.Wait()
	require.NoError(t, err)
	require.False(t, frame.ShouldRender)
	require.Equal(t, common.Duration(11_111_111), frame.PredictedDisplayPeriod)

	// A second wait without a begin is refused by the runtime.
	_, res, err := waiter.Wait()
	require.Error(t, err)
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	_, err = stream.Begin()
	require.NoError(t, err)
	_, err = stream.End(frame.PredictedDisplayTime, common.EnvironmentBlendModeOpaque)
	require.NoError(t, err)

	r.drainEvents(t)
	require.Equal(t, common.SessionStateFocused, session.State())

	frame, _, err = waiter.Wait()
	require.NoError(t, err)
	require.True(t, frame.ShouldRender)

	res, err = stream.End(frame.PredictedDisplayTime, common.EnvironmentBlendModeOpaque)
	require.Error(t, err)
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	_, err = stream.Begin()
	require.NoError(t, err)
	_, _, err = waiter.Wait()
	require.NoError(t, err)
	res, err = stream.Begin()
	require.NoError(t, err)
	require.Equal(t, common.FrameDiscarded, res)

	counters := r.rt.Counters()
	require.Equal(t, 3, counters.FramesWaited)
	require.Equal(t, 1, counters.FramesEnded)
	require.Equal(t, 1, counters.FramesDiscarded)
}

func TestReferenceSpaces(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{
		ReferenceSpacesAddedAfterProbe: []common.ReferenceSpaceType{common.ReferenceSpaceTypeUnboundedMSFT},
	}, driver.ExtensionMNDHeadless, driver.ExtensionFBSpatialEntity)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	// The list grows between the probe and the fill.
	spaces, _, err := session.EnumerateReferenceSpaces()
	require.NoError(t, err)
	require.Equal(t, []common.ReferenceSpaceType{
		common.ReferenceSpaceTypeView,
		common.ReferenceSpaceTypeLocal,
		common.ReferenceSpaceTypeStage,
		common.ReferenceSpaceTypeUnboundedMSFT,
	}, spaces)

	bounds, _, err := session.ReferenceSpaceBoundsRect(common.ReferenceSpaceTypeStage)
	require.NoError(t, err)
	require.Equal(t, &common.Extent2Df{Width: 2, Height: 3}, bounds)

	bounds, res, err := session.ReferenceSpaceBoundsRect(common.ReferenceSpaceTypeLocal)
	require.NoError(t, err)
	require.Nil(t, bounds)
	require.Equal(t, common.SpaceBoundsUnavailable, res)

	local, _, err := session.CreateReferenceSpace(common.ReferenceSpaceTypeLocal, common.IdentityPose())
	require.NoError(t, err)
	defer local.Destroy()

	id, _, err := local.UUID()
	require.NoError(t, err)
	require.Equal(t, fakeruntime.SpaceUUID(local.Handle()), id)

	view, _, err := session.CreateReferenceSpace(common.ReferenceSpaceTypeView, common.IdentityPose())
	require.NoError(t, err)
	location, _, err := view.Locate(local, 1)
	require.NoError(t, err)
	require.NotZero(t, location.Flags&common.SpaceLocationOrientationValid)

	view.Destroy()
	view.Destroy()
	_, _, err = view.Locate(local, 1)
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))

	_, res, err = session.CreateReferenceSpace(common.ReferenceSpaceTypeStage, common.Posef{})
	require.Error(t, err)
	require.Equal(t, common.ErrorPoseInvalid, res)
}

func TestLocateViews(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	startSession(t, r, session)

	local, _, err := session.CreateReferenceSpace(common.ReferenceSpaceTypeLocal, common.IdentityPose())
	require.NoError(t, err)
	defer local.Destroy()

	frame, _, err := waiter.Wait()
	require.NoError(t, err)
	flags, views, _, err := session.LocateViews(common.ViewConfigurationTypePrimaryStereo, frame.PredictedDisplayTime, local)
	require.NoError(t, err)
	require.NotZero(t, flags&common.ViewStateOrientationValid)
	require.Len(t, views, 2)
	require.Less(t, views[0].Pose.Position.X, views[1].Pose.Position.X)

	_, _, _, err = session.LocateViews(common.ViewConfigurationTypePrimaryStereo, frame.PredictedDisplayTime, nil)
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))
}

func TestVisibilityMaskGrowsWithRuntime(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{VisibilityMaskVertexCounts: []uint32{4, 8}},
		driver.ExtensionMNDHeadless, driver.ExtensionKHRVisibilityMask)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	mask, _, err := session.VisibilityMask(common.ViewConfigurationTypePrimaryStereo, 0, common.VisibilityMaskTypeHiddenTriangleMesh)
	require.NoError(t, err)
	require.Len(t, mask.Vertices, 8)
	require.Len(t, mask.Indices, 18)
	require.Equal(t, []uint32{0, 1, 2}, mask.Indices[:3])

	loop, _, err := session.VisibilityMask(common.ViewConfigurationTypePrimaryStereo, 1, common.VisibilityMaskTypeLineLoop)
	require.NoError(t, err)
	require.Len(t, loop.Indices, 8)
}

func TestVisibilityMaskUnstable(t *testing.T) {
	counts := make([]uint32, common.MaxEnumerateAttempts+2)
	for i := range counts {
		counts[i] = uint32(4 + i)
	}
	r := newTestRuntime(t, fakeruntime.Options{VisibilityMaskVertexCounts: counts},
		driver.ExtensionMNDHeadless, driver.ExtensionKHRVisibilityMask)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	_, res, err := session.VisibilityMask(common.ViewConfigurationTypePrimaryStereo, 0, common.VisibilityMaskTypeHiddenTriangleMesh)
	require.True(t, errors.Is(err, common.ErrUnstableCount))
	require.Equal(t, common.ErrorSizeInsufficient, res)
}

func TestVisibilityMaskEmpty(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{VisibilityMaskVertexCounts: []uint32{0}},
		driver.ExtensionMNDHeadless, driver.ExtensionKHRVisibilityMask)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	mask, _, err := session.VisibilityMask(common.ViewConfigurationTypePrimaryStereo, 0, common.VisibilityMaskTypeVisibleTriangleMesh)
	require.NoError(t, err)
	require.Empty(t, mask.Vertices)
	require.NotNil(t, mask.Indices)
	require.Equal(t, 1, r.rt.CallCount("xrGetVisibilityMaskKHR"))
}
