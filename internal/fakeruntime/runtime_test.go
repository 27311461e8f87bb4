package fakeruntime_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

type fixture struct {
	rt       *fakeruntime.Runtime
	driver   driver.InstanceDriver
	instance driver.Instance
	system   driver.SystemID
}

func newFixture(t *testing.T, opts fakeruntime.Options, extensions ...string) *fixture {
	names, err := common.StringArray(extensions, common.MaxExtensionNameSize)
	require.NoError(t, err)

	rt := fakeruntime.New(opts)
	info := driver.InstanceCreateInfo{
		Type:                  driver.TypeInstanceCreateInfo,
		EnabledExtensionCount: uint32(len(names)),
	}
	if len(names) > 0 {
		info.EnabledExtensionNames = &names[0]
	}
	require.NoError(t, common.EncodeFixed(info.ApplicationInfo.ApplicationName[:], "fixture"))
	info.ApplicationInfo.APIVersion = common.CurrentAPIVersion

	var instance driver.Instance
	_, err = rt.XrCreateInstance(&info, &instance)
	require.NoError(t, err)
	d, err := rt.CreateInstanceDriver(instance, extensions)
	require.NoError(t, err)

	var system driver.SystemID
	_, err = d.XrGetSystem(&driver.SystemGetInfo{
		Type:       driver.TypeSystemGetInfo,
		FormFactor: common.FormFactorHeadMountedDisplay,
	}, &system)
	require.NoError(t, err)

	return &fixture{rt: rt, driver: d, instance: instance, system: system}
}

func (f *fixture) headlessSession(t *testing.T) driver.Session {
	var session driver.Session
	_, err := f.driver.XrCreateSession(&driver.SessionCreateInfo{
		Type:     driver.TypeSessionCreateInfo,
		SystemID: f.system,
	}, &session)
	require.NoError(t, err)
	return session
}

func (f *fixture) begin(t *testing.T, session driver.Session) {
	_, err := f.driver.XrBeginSession(session, &driver.SessionBeginInfo{
		Type:                         driver.TypeSessionBeginInfo,
		PrimaryViewConfigurationType: common.ViewConfigurationTypePrimaryStereo,
	})
	require.NoError(t, err)
}

func TestCreateInstanceRejectsUnknownExtension(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	names, err := common.StringArray([]string{"XR_FAKE_nonexistent"}, common.MaxExtensionNameSize)
	require.NoError(t, err)

	info := driver.InstanceCreateInfo{
		Type:                  driver.TypeInstanceCreateInfo,
		EnabledExtensionCount: 1,
		EnabledExtensionNames: &names[0],
	}
	require.NoError(t, common.EncodeFixed(info.ApplicationInfo.ApplicationName[:], "app"))
	info.ApplicationInfo.APIVersion = common.CurrentAPIVersion

	var instance driver.Instance
	res, err := rt.XrCreateInstance(&info, &instance)
	require.Error(t, err)
	require.Equal(t, common.ErrorExtensionNotPresent, res)
	require.Zero(t, rt.Counters().InstancesCreated)
}

func TestReferencesTrackDrivers(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{})
	require.Equal(t, int32(2), f.rt.References())

	require.NoError(t, f.rt.Release())
	require.NoError(t, f.rt.Release())
	require.Equal(t, int32(1), f.rt.References())
	require.False(t, f.rt.Unloaded())

	_, err := f.driver.XrDestroyInstance()
	require.NoError(t, err)
	require.NoError(t, f.driver.Release())
	require.True(t, f.rt.Unloaded())
	require.Empty(t, f.rt.Violations())
}

func TestUnresolvableExtension(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{UnresolvableExtension: driver.ExtensionEXTDebugUtils})
	names, err := common.StringArray([]string{driver.ExtensionEXTDebugUtils}, common.MaxExtensionNameSize)
	require.NoError(t, err)

	info := driver.InstanceCreateInfo{
		Type:                  driver.TypeInstanceCreateInfo,
		EnabledExtensionCount: 1,
		EnabledExtensionNames: &names[0],
	}
	require.NoError(t, common.EncodeFixed(info.ApplicationInfo.ApplicationName[:], "app"))
	info.ApplicationInfo.APIVersion = common.CurrentAPIVersion

	var instance driver.Instance
	_, err = rt.XrCreateInstance(&info, &instance)
	require.NoError(t, err)

	_, err = rt.CreateInstanceDriver(instance, []string{driver.ExtensionEXTDebugUtils})
	require.Error(t, err)
	require.Equal(t, int32(1), rt.References())
}

func TestSessionLifecycleEvents(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	session := f.headlessSession(t)
	require.Equal(t, common.SessionStateReady, f.rt.SessionState(session))
	require.Equal(t, fakeruntime.GraphicsHeadless, f.rt.SessionGraphics(session))

	var states []common.SessionState
	for {
		var buf driver.EventDataBuffer
		buf.Reset()
		res, err := f.driver.XrPollEvent(&buf)
		require.NoError(t, err)
		if res == common.EventUnavailable {
			break
		}
		require.Equal(t, driver.TypeEventDataSessionStateChanged, buf.Type)
		event := (*driver.EventDataSessionStateChanged)(unsafe.Pointer(&buf))
		require.Equal(t, session, event.Session)
		states = append(states, event.State)
	}
	require.Equal(t, []common.SessionState{common.SessionStateIdle, common.SessionStateReady}, states)

	res, err := f.driver.XrEndSession(session)
	require.Error(t, err)
	require.Equal(t, common.ErrorSessionNotRunning, res)
}

func TestHeadlessRequiresExtension(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{})
	var session driver.Session
	res, err := f.driver.XrCreateSession(&driver.SessionCreateInfo{
		Type:     driver.TypeSessionCreateInfo,
		SystemID: f.system,
	}, &session)
	require.Error(t, err)
	require.Equal(t, common.ErrorGraphicsDeviceInvalid, res)
}

func TestFrameCallOrder(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	session := f.headlessSession(t)

	state := driver.FrameState{Type: driver.TypeFrameState}
	wait := func() (common.Result, error) {
		return f.driver.XrWaitFrame(session, nil, &state)
	}
	begin := func() (common.Result, error) {
		return f.driver.XrBeginFrame(session, nil)
	}
	end := func(displayTime common.Time) (common.Result, error) {
		return f.driver.XrEndFrame(session, &driver.FrameEndInfo{
			Type:                 driver.TypeFrameEndInfo,
			DisplayTime:          displayTime,
			EnvironmentBlendMode: common.EnvironmentBlendModeOpaque,
		})
	}

	res, _ := wait()
	require.Equal(t, common.ErrorSessionNotRunning, res)
	f.begin(t, session)

	res, _ = begin()
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	res, err := wait()
	require.NoError(t, err)
	require.Equal(t, common.Success, res)
	require.False(t, state.ShouldRender.Bool())

	res, _ = wait()
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	res, _ = end(state.PredictedDisplayTime)
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	_, err = begin()
	require.NoError(t, err)

	res, _ = end(state.PredictedDisplayTime + 1)
	require.Equal(t, common.ErrorTimeInvalid, res)

	_, err = end(state.PredictedDisplayTime)
	require.NoError(t, err)
	require.Equal(t, common.SessionStateFocused, f.rt.SessionState(session))

	// A frame begun while the previous one is still open discards it.
	_, err = wait()
	require.NoError(t, err)
	_, err = begin()
	require.NoError(t, err)
	_, err = wait()
	require.NoError(t, err)
	res, err = begin()
	require.NoError(t, err)
	require.Equal(t, common.FrameDiscarded, res)

	counters := f.rt.Counters()
	require.Equal(t, 3, counters.FramesWaited)
	require.Equal(t, 3, counters.FramesBegun)
	require.Equal(t, 1, counters.FramesEnded)
	require.Equal(t, 1, counters.FramesDiscarded)
}

func TestSwapchainImageOrder(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{SwapchainImageCount: 2}, driver.ExtensionKHRVulkanEnable)

	requirements := driver.GraphicsRequirementsVulkanKHR{Type: driver.TypeGraphicsRequirementsVulkanKHR}
	_, err := f.driver.XrGetVulkanGraphicsRequirementsKHR(f.system, &requirements)
	require.NoError(t, err)

	binding := driver.GraphicsBindingVulkanKHR{Type: driver.TypeGraphicsBindingVulkanKHR}
	var session driver.Session
	_, err = f.driver.XrCreateSession(&driver.SessionCreateInfo{
		Type:     driver.TypeSessionCreateInfo,
		Next:     unsafe.Pointer(&binding),
		SystemID: f.system,
	}, &session)
	require.NoError(t, err)

	var swapchain driver.Swapchain
	info := driver.SwapchainCreateInfo{
		Type:        driver.TypeSwapchainCreateInfo,
		Format:      43,
		SampleCount: 1,
		Width:       64,
		Height:      64,
		FaceCount:   1,
		ArraySize:   1,
		MipCount:    1,
	}
	_, err = f.driver.XrCreateSwapchain(session, &info, &swapchain)
	require.NoError(t, err)

	images := make([]driver.SwapchainImageVulkanKHR, 2)
	for i := range images {
		images[i].Type = driver.TypeSwapchainImageVulkanKHR
	}
	var count uint32
	_, err = f.driver.XrEnumerateSwapchainImages(swapchain, 2, &count,
		(*driver.SwapchainImageBaseHeader)(unsafe.Pointer(&images[0])))
	require.NoError(t, err)
	require.Equal(t, uint32(2), count)
	require.Equal(t, fakeruntime.VulkanImage(swapchain, 1), images[1].Image)

	waitInfo := driver.SwapchainImageWaitInfo{Type: driver.TypeSwapchainImageWaitInfo, Timeout: common.InfiniteDuration}
	res, _ := f.driver.XrWaitSwapchainImage(swapchain, &waitInfo)
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	var index uint32
	for want := uint32(0); want < 2; want++ {
		_, err = f.driver.XrAcquireSwapchainImage(swapchain, nil, &index)
		require.NoError(t, err)
		require.Equal(t, want, index)
	}
	res, _ = f.driver.XrAcquireSwapchainImage(swapchain, nil, &index)
	require.Equal(t, common.ErrorCallOrderInvalid, res)

	res, _ = f.driver.XrReleaseSwapchainImage(swapchain, nil)
	require.Equal(t, common.ErrorCallOrderInvalid, res)
	_, err = f.driver.XrWaitSwapchainImage(swapchain, &waitInfo)
	require.NoError(t, err)
	_, err = f.driver.XrReleaseSwapchainImage(swapchain, nil)
	require.NoError(t, err)

	info.Format = 999
	res, _ = f.driver.XrCreateSwapchain(session, &info, &swapchain)
	require.Equal(t, common.ErrorSwapchainFormatUnsupported, res)
}

func TestActionsReportValuesAfterFocusedSync(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	session := f.headlessSession(t)

	setInfo := driver.ActionSetCreateInfo{Type: driver.TypeActionSetCreateInfo}
	require.NoError(t, common.EncodeFixed(setInfo.ActionSetName[:], "gameplay"))
	require.NoError(t, common.EncodeFixed(setInfo.LocalizedActionSetName[:], "Gameplay"))
	var set driver.ActionSet
	_, err := f.driver.XrCreateActionSet(&setInfo, &set)
	require.NoError(t, err)

	res, _ := f.driver.XrCreateActionSet(&setInfo, &set)
	require.Equal(t, common.ErrorNameDuplicated, res)

	actionInfo := driver.ActionCreateInfo{Type: driver.TypeActionCreateInfo, ActionType: common.ActionTypeBooleanInput}
	require.NoError(t, common.EncodeFixed(actionInfo.ActionName[:], "select"))
	require.NoError(t, common.EncodeFixed(actionInfo.LocalizedActionName[:], "Select"))
	var action driver.Action
	_, err = f.driver.XrCreateAction(set, &actionInfo, &action)
	require.NoError(t, err)

	_, err = f.driver.XrAttachSessionActionSets(session, &driver.SessionActionSetsAttachInfo{
		Type:            driver.TypeSessionActionSetsAttachInfo,
		CountActionSets: 1,
		ActionSets:      &set,
	})
	require.NoError(t, err)
	require.NoError(t, f.rt.SetActionState(action, true))
	require.Error(t, f.rt.SetActionState(action, float32(1)))

	active := driver.ActiveActionSet{ActionSet: set}
	sync := driver.ActionsSyncInfo{Type: driver.TypeActionsSyncInfo, CountActiveActionSets: 1, ActiveActionSets: &active}
	getInfo := driver.ActionStateGetInfo{Type: driver.TypeActionStateGetInfo, Action: action}
	state := driver.ActionStateBoolean{Type: driver.TypeActionStateBoolean}

	res, err = f.driver.XrSyncActions(session, &sync)
	require.NoError(t, err)
	require.Equal(t, common.SessionNotFocused, res)
	_, err = f.driver.XrGetActionStateBoolean(session, &getInfo, &state)
	require.NoError(t, err)
	require.False(t, state.IsActive.Bool())

	require.NoError(t, f.rt.SetSessionState(session, common.SessionStateFocused))
	res, err = f.driver.XrSyncActions(session, &sync)
	require.NoError(t, err)
	require.Equal(t, common.Success, res)
	_, err = f.driver.XrGetActionStateBoolean(session, &getInfo, &state)
	require.NoError(t, err)
	require.True(t, state.IsActive.Bool())
	require.True(t, state.CurrentState.Bool())

	float := driver.ActionStateFloat{Type: driver.TypeActionStateFloat}
	res, _ = f.driver.XrGetActionStateFloat(session, &getInfo, &float)
	require.Equal(t, common.ErrorActionTypeMismatch, res)

	res, _ = f.driver.XrCreateAction(set, &actionInfo, &action)
	require.Equal(t, common.ErrorActionSetsAlreadyAttached, res)
	require.Equal(t, 2, f.rt.Counters().ActionSyncs)
}

func TestVisibilityMaskCountsAdvance(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{VisibilityMaskVertexCounts: []uint32{4, 6}},
		driver.ExtensionMNDHeadless, driver.ExtensionKHRVisibilityMask)
	session := f.headlessSession(t)

	mask := driver.VisibilityMaskKHR{Type: driver.TypeVisibilityMaskKHR}
	get := func() (common.Result, error) {
		return f.driver.XrGetVisibilityMaskKHR(session, common.ViewConfigurationTypePrimaryStereo, 1,
			common.VisibilityMaskTypeHiddenTriangleMesh, &mask)
	}
	_, err := get()
	require.NoError(t, err)
	require.Equal(t, uint32(4), mask.VertexCountOutput)
	require.Equal(t, uint32(6), mask.IndexCountOutput)

	vertices := make([]common.Vector2f, 4)
	indices := make([]uint32, 6)
	mask.VertexCapacityInput, mask.Vertices = 4, &vertices[0]
	mask.IndexCapacityInput, mask.Indices = 6, &indices[0]
	res, _ := get()
	require.Equal(t, common.ErrorSizeInsufficient, res)
	require.Equal(t, uint32(6), mask.VertexCountOutput)
	require.Equal(t, uint32(12), mask.IndexCountOutput)

	res, _ = f.driver.XrGetVisibilityMaskKHR(session, common.ViewConfigurationTypePrimaryStereo, 2,
		common.VisibilityMaskTypeHiddenTriangleMesh, &mask)
	require.Equal(t, common.ErrorIndexOutOfRange, res)
}

func TestGatedCallWithoutExtensionIsViolation(t *testing.T) {
	f := newFixture(t, fakeruntime.Options{}, driver.ExtensionMNDHeadless)
	session := f.headlessSession(t)

	mask := driver.VisibilityMaskKHR{Type: driver.TypeVisibilityMaskKHR}
	_, err := f.driver.XrGetVisibilityMaskKHR(session, common.ViewConfigurationTypePrimaryStereo, 0,
		common.VisibilityMaskTypeHiddenTriangleMesh, &mask)
	require.Error(t, err)
	require.Len(t, f.rt.Violations(), 1)
}
