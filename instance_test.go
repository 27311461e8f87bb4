package openxr

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

func TestSystemQueries(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{})
	defer r.instance.Destroy()

	props, _, err := r.instance.SystemProperties(r.system)
	require.NoError(t, err)
	require.Equal(t, r.system, props.SystemID)
	require.Equal(t, "Fake HMD", props.SystemName)
	require.Equal(t, uint32(16), props.MaxLayerCount)

	configs, _, err := r.instance.EnumerateViewConfigurations(r.system)
	require.NoError(t, err)
	require.Equal(t, []common.ViewConfigurationType{common.ViewConfigurationTypePrimaryStereo}, configs)

	views, _, err := r.instance.EnumerateViewConfigurationViews(r.system, common.ViewConfigurationTypePrimaryStereo)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, uint32(1440), views[0].RecommendedImageRectWidth)

	modes, _, err := r.instance.EnumerateEnvironmentBlendModes(r.system, common.ViewConfigurationTypePrimaryStereo)
	require.NoError(t, err)
	require.Equal(t, []common.EnvironmentBlendMode{common.EnvironmentBlendModeOpaque}, modes)

	_, res, err := r.instance.System(common.FormFactorHandheldDisplay)
	require.Error(t, err)
	require.Equal(t, common.ErrorFormFactorUnsupported, res)
}

func TestPaths(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{})
	defer r.instance.Destroy()

	left, _, err := r.instance.StringToPath("/user/hand/left")
	require.NoError(t, err)
	again, _, err := r.instance.StringToPath("/user/hand/left")
	require.NoError(t, err)
	require.Equal(t, left, again)

	text, _, err := r.instance.PathToString(left)
	require.NoError(t, err)
	require.Equal(t, "/user/hand/left", text)

	_, res, err := r.instance.StringToPath("/user/Hand")
	require.Error(t, err)
	require.Equal(t, common.ErrorPathFormatInvalid, res)

	calls := r.rt.CallCount("xrStringToPath")
	_, _, err = r.instance.StringToPath("/" + strings.Repeat("a", common.MaxPathLength))
	require.True(t, errors.Is(err, common.ErrNameTooLong))
	require.Equal(t, calls, r.rt.CallCount("xrStringToPath"))
}

func TestResultToString(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{})
	defer r.instance.Destroy()

	name, err := r.instance.ResultToString(common.ErrorSessionNotRunning)
	require.NoError(t, err)
	require.Equal(t, "XR_ERROR_SESSION_NOT_RUNNING", name)
}

func TestGatedCallsDoNotReachRuntime(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	session, waiter, stream := r.headlessSession(t)
	defer r.instance.Destroy()
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	res, err := r.instance.SetName(common.ObjectTypeInstance, uint64(r.instance.Handle()), "main")
	require.True(t, errors.Is(err, common.ErrExtensionNotEnabled))
	require.Equal(t, common.ErrorFunctionUnsupported, res)

	_, res, err = session.VisibilityMask(common.ViewConfigurationTypePrimaryStereo, 0, common.VisibilityMaskTypeHiddenTriangleMesh)
	require.True(t, errors.Is(err, common.ErrExtensionNotEnabled))
	require.Equal(t, common.ErrorFunctionUnsupported, res)

	require.Zero(t, r.rt.CallCount("xrSetDebugUtilsObjectNameEXT"))
	require.Zero(t, r.rt.CallCount("xrGetVisibilityMaskKHR"))
	require.Empty(t, r.rt.Violations())
}

func TestSetName(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionEXTDebugUtils)
	defer r.instance.Destroy()

	_, err := r.instance.SetName(common.ObjectTypeInstance, uint64(r.instance.Handle()), "main")
	require.NoError(t, err)
	require.Equal(t, "main", r.rt.ObjectName(uint64(r.instance.Handle())))

	set, _, err := r.instance.CreateActionSet(ActionSetCreateInfo{Name: "menu", LocalizedName: "Menu"})
	require.NoError(t, err)
	defer set.Destroy()
	_, err = set.SetName("menu set")
	require.NoError(t, err)
	require.Equal(t, "menu set", r.rt.ObjectName(uint64(set.Handle())))
}

func TestInstanceOutlivesDestroyWhileSessionLive(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	session, waiter, stream := r.headlessSession(t)

	r.instance.Destroy()
	r.instance.Destroy()
	require.Zero(t, r.rt.Counters().InstancesDestroyed)

	_, _, err := r.instance.System(common.FormFactorHeadMountedDisplay)
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))

	// The session still works through the instance it was created from.
	_, err = session.Begin(common.ViewConfigurationTypePrimaryStereo)
	require.NoError(t, err)

	session.Destroy()
	waiter.Destroy()
	require.Zero(t, r.rt.Counters().SessionsDestroyed)
	stream.Destroy()

	counters := r.rt.Counters()
	require.Equal(t, 1, counters.SessionsDestroyed)
	require.Equal(t, 1, counters.InstancesDestroyed)
	require.Empty(t, r.rt.Violations())

	require.NoError(t, r.entry.Destroy())
	require.True(t, r.rt.Unloaded())
}

func TestPollEventTracksSessionState(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	defer r.instance.Destroy()
	session, waiter, stream := r.headlessSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	require.Equal(t, common.SessionStateUnknown, session.State())
	events := r.drainEvents(t)
	require.Len(t, events, 2)
	changed, ok := events[1].(*EventSessionStateChanged)
	require.True(t, ok)
	require.Equal(t, session.Handle(), changed.Session)
	require.Equal(t, common.SessionStateReady, changed.State)
	require.Equal(t, common.SessionStateReady, session.State())

	require.NoError(t, fakeruntime.PushEvent(r.rt, r.instance.Handle(), driver.EventDataInstanceLossPending{
		Type:     driver.TypeEventDataInstanceLossPending,
		LossTime: 42,
	}))
	require.NoError(t, fakeruntime.PushEvent(r.rt, r.instance.Handle(), driver.EventDataEventsLost{
		Type:           driver.TypeEventDataEventsLost,
		LostEventCount: 3,
	}))
	require.NoError(t, r.rt.PushVisibilityMaskChanged(session.Handle(), 1))

	events = r.drainEvents(t)
	require.Len(t, events, 3)
	require.Equal(t, &EventInstanceLossPending{LossTime: 42}, events[0])
	require.Equal(t, &EventsLost{LostEventCount: 3}, events[1])
	mask, ok := events[2].(*EventVisibilityMaskChanged)
	require.True(t, ok)
	require.Equal(t, uint32(1), mask.ViewIndex)
}

func TestPollEventUnknownType(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{})
	defer r.instance.Destroy()

	type vendorEvent struct {
		Type  driver.StructureType
		Next  uintptr
		Value uint32
	}
	require.NoError(t, fakeruntime.PushEvent(r.rt, r.instance.Handle(), vendorEvent{Type: 1000999000, Value: 7}))

	event, res, err := r.instance.PollEvent()
	require.NoError(t, err)
	require.Equal(t, common.Success, res)
	unknown, ok := event.(*EventUnknown)
	require.True(t, ok)
	require.Equal(t, driver.StructureType(1000999000), unknown.StructureType())

	event, res, err = r.instance.PollEvent()
	require.NoError(t, err)
	require.Nil(t, event)
	require.Equal(t, common.EventUnavailable, res)
}
