package driver

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
)

type coreProcs struct {
	destroyInstance                 proc
	getInstanceProperties           proc
	pollEvent                       proc
	resultToString                  proc
	stringToPath                    proc
	pathToString                    proc
	getSystem                       proc
	getSystemProperties             proc
	enumerateEnvironmentBlendModes  proc
	enumerateViewConfigurations     proc
	enumerateViewConfigurationViews proc
	createSession                   proc
	destroySession                  proc
	beginSession                    proc
	endSession                      proc
	requestExitSession              proc
	enumerateReferenceSpaces        proc
	createReferenceSpace            proc
	getReferenceSpaceBoundsRect     proc
	createActionSpace               proc
	locateSpace                     proc
	destroySpace                    proc
	enumerateSwapchainFormats       proc
	createSwapchain                 proc
	destroySwapchain                proc
	enumerateSwapchainImages        proc
	acquireSwapchainImage           proc
	waitSwapchainImage              proc
	releaseSwapchainImage           proc
	waitFrame                       proc
	beginFrame                      proc
	endFrame                        proc
	locateViews                     proc
	createActionSet                 proc
	destroyActionSet                proc
	createAction                    proc
	destroyAction                   proc
	attachSessionActionSets         proc
	getCurrentInteractionProfile    proc
	getActionStateBoolean           proc
	getActionStateFloat             proc
	getActionStateVector2f          proc
	getActionStatePose              proc
	syncActions                     proc
	getInputSourceLocalizedName     proc
}

func (p *coreProcs) slots() []procSlot {
	return []procSlot{
		{&p.destroyInstance, "xrDestroyInstance", 1},
		{&p.getInstanceProperties, "xrGetInstanceProperties", 2},
		{&p.pollEvent, "xrPollEvent", 2},
		{&p.resultToString, "xrResultToString", 3},
		{&p.stringToPath, "xrStringToPath", 3},
		{&p.pathToString, "xrPathToString", 5},
		{&p.getSystem, "xrGetSystem", 3},
		{&p.getSystemProperties, "xrGetSystemProperties", 3},
		{&p.enumerateEnvironmentBlendModes, "xrEnumerateEnvironmentBlendModes", 6},
		{&p.enumerateViewConfigurations, "xrEnumerateViewConfigurations", 5},
		{&p.enumerateViewConfigurationViews, "xrEnumerateViewConfigurationViews", 6},
		{&p.createSession, "xrCreateSession", 3},
		{&p.destroySession, "xrDestroySession", 1},
		{&p.beginSession, "xrBeginSession", 2},
		{&p.endSession, "xrEndSession", 1},
		{&p.requestExitSession, "xrRequestExitSession", 1},
		{&p.enumerateReferenceSpaces, "xrEnumerateReferenceSpaces", 4},
		{&p.createReferenceSpace, "xrCreateReferenceSpace", 3},
		{&p.getReferenceSpaceBoundsRect, "xrGetReferenceSpaceBoundsRect", 3},
		{&p.createActionSpace, "xrCreateActionSpace", 3},
		{&p.locateSpace, "xrLocateSpace", 4},
		{&p.destroySpace, "xrDestroySpace", 1},
		{&p.enumerateSwapchainFormats, "xrEnumerateSwapchainFormats", 4},
		{&p.createSwapchain, "xrCreateSwapchain", 3},
		{&p.destroySwapchain, "xrDestroySwapchain", 1},
		{&p.enumerateSwapchainImages, "xrEnumerateSwapchainImages", 4},
		{&p.acquireSwapchainImage, "xrAcquireSwapchainImage", 3},
		{&p.waitSwapchainImage, "xrWaitSwapchainImage", 2},
		{&p.releaseSwapchainImage, "xrReleaseSwapchainImage", 2},
		{&p.waitFrame, "xrWaitFrame", 3},
		{&p.beginFrame, "xrBeginFrame", 2},
		{&p.endFrame, "xrEndFrame", 2},
		{&p.locateViews, "xrLocateViews", 6},
		{&p.createActionSet, "xrCreateActionSet", 3},
		{&p.destroyActionSet, "xrDestroyActionSet", 1},
		{&p.createAction, "xrCreateAction", 3},
		{&p.destroyAction, "xrDestroyAction", 1},
		{&p.attachSessionActionSets, "xrAttachSessionActionSets", 2},
		{&p.getCurrentInteractionProfile, "xrGetCurrentInteractionProfile", 3},
		{&p.getActionStateBoolean, "xrGetActionStateBoolean", 3},
		{&p.getActionStateFloat, "xrGetActionStateFloat", 3},
		{&p.getActionStateVector2f, "xrGetActionStateVector2f", 3},
		{&p.getActionStatePose, "xrGetActionStatePose", 3},
		{&p.syncActions, "xrSyncActions", 2},
		{&p.getInputSourceLocalizedName, "xrGetInputSourceLocalizedName", 5},
	}
}

type extensionProcs struct {
	getVisibilityMask             proc
	setDebugUtilsObjectName       proc
	getVulkanGraphicsRequirements proc
	getOpenGLGraphicsRequirements proc
	getSpaceUUID                  proc
}

// slots returns the capability table: the functions each known extension
// contributes. Extensions missing from the table contribute none.
func (p *extensionProcs) slots() map[string][]procSlot {
	return map[string][]procSlot{
		ExtensionKHRVisibilityMask: {{&p.getVisibilityMask, "xrGetVisibilityMaskKHR", 5}},
		ExtensionEXTDebugUtils:     {{&p.setDebugUtilsObjectName, "xrSetDebugUtilsObjectNameEXT", 2}},
		ExtensionKHRVulkanEnable:   {{&p.getVulkanGraphicsRequirements, "xrGetVulkanGraphicsRequirementsKHR", 3}},
		ExtensionKHROpenGLEnable:   {{&p.getOpenGLGraphicsRequirements, "xrGetOpenGLGraphicsRequirementsKHR", 3}},
		ExtensionFBSpatialEntity:   {{&p.getSpaceUUID, "xrGetSpaceUuidFB", 2}},
	}
}

type instanceDriver struct {
	lib      *library
	instance Instance
	released atomic.Bool
	loaded   map[string]struct{}

	core coreProcs
	ext  extensionProcs
}

var _ InstanceDriver = (*instanceDriver)(nil)

func newInstanceDriver(lib *library, getInstanceProcAddr proc, instance Instance, enabledExtensions []string) (*instanceDriver, error) {
	d := &instanceDriver{
		lib:      lib,
		instance: instance,
		loaded:   make(map[string]struct{}, len(enabledExtensions)),
	}

	if err := resolveSlots(&getInstanceProcAddr, instance, d.core.slots()); err != nil {
		return nil, err
	}

	capabilities := d.ext.slots()
	for _, extension := range enabledExtensions {
		if err := resolveSlots(&getInstanceProcAddr, instance, capabilities[extension]); err != nil {
			return nil, errors.Wrapf(err, "loading %s", extension)
		}
		d.loaded[extension] = struct{}{}
	}
	return d, nil
}

func (d *instanceDriver) Instance() Instance {
	return d.instance
}

func (d *instanceDriver) ExtensionLoaded(extension string) bool {
	_, ok := d.loaded[extension]
	return ok
}

func (d *instanceDriver) Release() error {
	if !d.released.CompareAndSwap(false, true) {
		return nil
	}
	return d.lib.release()
}

func (d *instanceDriver) gated(p *proc, extension, function string) (*proc, error) {
	if !d.ExtensionLoaded(extension) || !p.loaded() {
		return nil, common.ExtensionNotEnabled(extension, function)
	}
	return p, nil
}

func ptr[T any](v *T) unsafe.Pointer {
	return unsafe.Pointer(v)
}

func (d *instanceDriver) XrDestroyInstance() (common.Result, error) {
	var a args
	return d.core.destroyInstance.call(a.u64(uint64(d.instance)))
}

func (d *instanceDriver) XrGetInstanceProperties(properties *InstanceProperties) (common.Result, error) {
	var a args
	return d.core.getInstanceProperties.call(a.u64(uint64(d.instance)).ptr(ptr(properties)))
}

func (d *instanceDriver) XrPollEvent(eventData *EventDataBuffer) (common.Result, error) {
	var a args
	return d.core.pollEvent.call(a.u64(uint64(d.instance)).ptr(ptr(eventData)))
}

func (d *instanceDriver) XrResultToString(value common.Result, buffer *[common.MaxResultStringSize]byte) (common.Result, error) {
	var a args
	return d.core.resultToString.call(a.u64(uint64(d.instance)).i32(int32(value)).ptr(ptr(buffer)))
}

func (d *instanceDriver) XrStringToPath(pathString *byte, path *Path) (common.Result, error) {
	var a args
	return d.core.stringToPath.call(a.u64(uint64(d.instance)).ptr(ptr(pathString)).ptr(ptr(path)))
}

func (d *instanceDriver) XrPathToString(path Path, capacity uint32, count *uint32, buffer *byte) (common.Result, error) {
	var a args
	return d.core.pathToString.call(a.u64(uint64(d.instance)).u64(uint64(path)).u32(capacity).ptr(ptr(count)).ptr(ptr(buffer)))
}

func (d *instanceDriver) XrGetSystem(getInfo *SystemGetInfo, systemID *SystemID) (common.Result, error) {
	var a args
	return d.core.getSystem.call(a.u64(uint64(d.instance)).ptr(ptr(getInfo)).ptr(ptr(systemID)))
}

func (d *instanceDriver) XrGetSystemProperties(systemID SystemID, properties *SystemProperties) (common.Result, error) {
	var a args
	return d.core.getSystemProperties.call(a.u64(uint64(d.instance)).u64(uint64(systemID)).ptr(ptr(properties)))
}

func (d *instanceDriver) XrEnumerateEnvironmentBlendModes(systemID SystemID, viewConfigurationType common.ViewConfigurationType, capacity uint32, count *uint32, modes *common.EnvironmentBlendMode) (common.Result, error) {
	var a args
	return d.core.enumerateEnvironmentBlendModes.call(a.u64(uint64(d.instance)).u64(uint64(systemID)).i32(int32(viewConfigurationType)).u32(capacity).ptr(ptr(count)).ptr(ptr(modes)))
}

func (d *instanceDriver) XrEnumerateViewConfigurations(systemID SystemID, capacity uint32, count *uint32, types *common.ViewConfigurationType) (common.Result, error) {
	var a args
	return d.core.enumerateViewConfigurations.call(a.u64(uint64(d.instance)).u64(uint64(systemID)).u32(capacity).ptr(ptr(count)).ptr(ptr(types)))
}

func (d *instanceDriver) XrEnumerateViewConfigurationViews(systemID SystemID, viewConfigurationType common.ViewConfigurationType, capacity uint32, count *uint32, views *ViewConfigurationView) (common.Result, error) {
	var a args
	return d.core.enumerateViewConfigurationViews.call(a.u64(uint64(d.instance)).u64(uint64(systemID)).i32(int32(viewConfigurationType)).u32(capacity).ptr(ptr(count)).ptr(ptr(views)))
}

func (d *instanceDriver) XrCreateSession(createInfo *SessionCreateInfo, session *Session) (common.Result, error) {
	var a args
	return d.core.createSession.call(a.u64(uint64(d.instance)).ptr(ptr(createInfo)).ptr(ptr(session)))
}

func (d *instanceDriver) XrDestroySession(session Session) (common.Result, error) {
	var a args
	return d.core.destroySession.call(a.u64(uint64(session)))
}

func (d *instanceDriver) XrBeginSession(session Session, beginInfo *SessionBeginInfo) (common.Result, error) {
	var a args
	return d.core.beginSession.call(a.u64(uint64(session)).ptr(ptr(beginInfo)))
}

func (d *instanceDriver) XrEndSession(session Session) (common.Result, error) {
	var a args
	return d.core.endSession.call(a.u64(uint64(session)))
}

func (d *instanceDriver) XrRequestExitSession(session Session) (common.Result, error) {
	var a args
	return d.core.requestExitSession.call(a.u64(uint64(session)))
}

func (d *instanceDriver) XrEnumerateReferenceSpaces(session Session, capacity uint32, count *uint32, spaces *common.ReferenceSpaceType) (common.Result, error) {
	var a args
	return d.core.enumerateReferenceSpaces.call(a.u64(uint64(session)).u32(capacity).ptr(ptr(count)).ptr(ptr(spaces)))
}

func (d *instanceDriver) XrCreateReferenceSpace(session Session, createInfo *ReferenceSpaceCreateInfo, space *Space) (common.Result, error) {
	var a args
	return d.core.createReferenceSpace.call(a.u64(uint64(session)).ptr(ptr(createInfo)).ptr(ptr(space)))
}

func (d *instanceDriver) XrGetReferenceSpaceBoundsRect(session Session, referenceSpaceType common.ReferenceSpaceType, bounds *common.Extent2Df) (common.Result, error) {
	var a args
	return d.core.getReferenceSpaceBoundsRect.call(a.u64(uint64(session)).i32(int32(referenceSpaceType)).ptr(ptr(bounds)))
}

func (d *instanceDriver) XrCreateActionSpace(session Session, createInfo *ActionSpaceCreateInfo, space *Space) (common.Result, error) {
	var a args
	return d.core.createActionSpace.call(a.u64(uint64(session)).ptr(ptr(createInfo)).ptr(ptr(space)))
}

func (d *instanceDriver) XrLocateSpace(space Space, baseSpace Space, time common.Time, location *SpaceLocation) (common.Result, error) {
	var a args
	return d.core.locateSpace.call(a.u64(uint64(space)).u64(uint64(baseSpace)).i64(int64(time)).ptr(ptr(location)))
}

func (d *instanceDriver) XrDestroySpace(space Space) (common.Result, error) {
	var a args
	return d.core.destroySpace.call(a.u64(uint64(space)))
}

func (d *instanceDriver) XrEnumerateSwapchainFormats(session Session, capacity uint32, count *uint32, formats *int64) (common.Result, error) {
	var a args
	return d.core.enumerateSwapchainFormats.call(a.u64(uint64(session)).u32(capacity).ptr(ptr(count)).ptr(ptr(formats)))
}

func (d *instanceDriver) XrCreateSwapchain(session Session, createInfo *SwapchainCreateInfo, swapchain *Swapchain) (common.Result, error) {
	var a args
	return d.core.createSwapchain.call(a.u64(uint64(session)).ptr(ptr(createInfo)).ptr(ptr(swapchain)))
}

func (d *instanceDriver) XrDestroySwapchain(swapchain Swapchain) (common.Result, error) {
	var a args
	return d.core.destroySwapchain.call(a.u64(uint64(swapchain)))
}

func (d *instanceDriver) XrEnumerateSwapchainImages(swapchain Swapchain, capacity uint32, count *uint32, images *SwapchainImageBaseHeader) (common.Result, error) {
	var a args
	return d.core.enumerateSwapchainImages.call(a.u64(uint64(swapchain)).u32(capacity).ptr(ptr(count)).ptr(ptr(images)))
}

func (d *instanceDriver) XrAcquireSwapchainImage(swapchain Swapchain, acquireInfo *SwapchainImageAcquireInfo, index *uint32) (common.Result, error) {
	var a args
	return d.core.acquireSwapchainImage.call(a.u64(uint64(swapchain)).ptr(ptr(acquireInfo)).ptr(ptr(index)))
}

func (d *instanceDriver) XrWaitSwapchainImage(swapchain Swapchain, waitInfo *SwapchainImageWaitInfo) (common.Result, error) {
	var a args
	return d.core.waitSwapchainImage.call(a.u64(uint64(swapchain)).ptr(ptr(waitInfo)))
}

func (d *instanceDriver) XrReleaseSwapchainImage(swapchain Swapchain, releaseInfo *SwapchainImageReleaseInfo) (common.Result, error) {
	var a args
	return d.core.releaseSwapchainImage.call(a.u64(uint64(swapchain)).ptr(ptr(releaseInfo)))
}

func (d *instanceDriver) XrWaitFrame(session Session, waitInfo *FrameWaitInfo, state *FrameState) (common.Result, error) {
	var a args
	return d.core.waitFrame.call(a.u64(uint64(session)).ptr(ptr(waitInfo)).ptr(ptr(state)))
}

func (d *instanceDriver) XrBeginFrame(session Session, beginInfo *FrameBeginInfo) (common.Result, error) {
	var a args
	return d.core.beginFrame.call(a.u64(uint64(session)).ptr(ptr(beginInfo)))
}

func (d *instanceDriver) XrEndFrame(session Session, endInfo *FrameEndInfo) (common.Result, error) {
	var a args
	return d.core.endFrame.call(a.u64(uint64(session)).ptr(ptr(endInfo)))
}

func (d *instanceDriver) XrLocateViews(session Session, locateInfo *ViewLocateInfo, viewState *ViewState, capacity uint32, count *uint32, views *View) (common.Result, error) {
	var a args
	return d.core.locateViews.call(a.u64(uint64(session)).ptr(ptr(locateInfo)).ptr(ptr(viewState)).u32(capacity).ptr(ptr(count)).ptr(ptr(views)))
}

func (d *instanceDriver) XrCreateActionSet(createInfo *ActionSetCreateInfo, actionSet *ActionSet) (common.Result, error) {
	var a args
	return d.core.createActionSet.call(a.u64(uint64(d.instance)).ptr(ptr(createInfo)).ptr(ptr(actionSet)))
}

func (d *instanceDriver) XrDestroyActionSet(actionSet ActionSet) (common.Result, error) {
	var a args
	return d.core.destroyActionSet.call(a.u64(uint64(actionSet)))
}

func (d *instanceDriver) XrCreateAction(actionSet ActionSet, createInfo *ActionCreateInfo, action *Action) (common.Result, error) {
	var a args
	return d.core.createAction.call(a.u64(uint64(actionSet)).ptr(ptr(createInfo)).ptr(ptr(action)))
}

func (d *instanceDriver) XrDestroyAction(action Action) (common.Result, error) {
	var a args
	return d.core.destroyAction.call(a.u64(uint64(action)))
}

func (d *instanceDriver) XrAttachSessionActionSets(session Session, attachInfo *SessionActionSetsAttachInfo) (common.Result, error) {
	var a args
	return d.core.attachSessionActionSets.call(a.u64(uint64(session)).ptr(ptr(attachInfo)))
}

func (d *instanceDriver) XrGetCurrentInteractionProfile(session Session, topLevelUserPath Path, profile *InteractionProfileState) (common.Result, error) {
	var a args
	return d.core.getCurrentInteractionProfile.call(a.u64(uint64(session)).u64(uint64(topLevelUserPath)).ptr(ptr(profile)))
}

func (d *instanceDriver) XrGetActionStateBoolean(session Session, getInfo *ActionStateGetInfo, state *ActionStateBoolean) (common.Result, error) {
	var a args
	return d.core.getActionStateBoolean.call(a.u64(uint64(session)).ptr(ptr(getInfo)).ptr(ptr(state)))
}

func (d *instanceDriver) XrGetActionStateFloat(session Session, getInfo *ActionStateGetInfo, state *ActionStateFloat) (common.Result, error) {
	var a args
	return d.core.getActionStateFloat.call(a.u64(uint64(session)).ptr(ptr(getInfo)).ptr(ptr(state)))
}

func (d *instanceDriver) XrGetActionStateVector2f(session Session, getInfo *ActionStateGetInfo, state *ActionStateVector2f) (common.Result, error) {
	var a args
	return d.core.getActionStateVector2f.call(a.u64(uint64(session)).ptr(ptr(getInfo)).ptr(ptr(state)))
}

func (d *instanceDriver) XrGetActionStatePose(session Session, getInfo *ActionStateGetInfo, state *ActionStatePose) (common.Result, error) {
	var a args
	return d.core.getActionStatePose.call(a.u64(uint64(session)).ptr(ptr(getInfo)).ptr(ptr(state)))
}

func (d *instanceDriver) XrSyncActions(session Session, syncInfo *ActionsSyncInfo) (common.Result, error) {
	var a args
	return d.core.syncActions.call(a.u64(uint64(session)).ptr(ptr(syncInfo)))
}

func (d *instanceDriver) XrGetInputSourceLocalizedName(session Session, getInfo *InputSourceLocalizedNameGetInfo, capacity uint32, count *uint32, buffer *byte) (common.Result, error) {
	var a args
	return d.core.getInputSourceLocalizedName.call(a.u64(uint64(session)).ptr(ptr(getInfo)).u32(capacity).ptr(ptr(count)).ptr(ptr(buffer)))
}

func (d *instanceDriver) XrGetVisibilityMaskKHR(session Session, viewConfigurationType common.ViewConfigurationType, viewIndex uint32, maskType common.VisibilityMaskType, mask *VisibilityMaskKHR) (common.Result, error) {
	p, err := d.gated(&d.ext.getVisibilityMask, ExtensionKHRVisibilityMask, "xrGetVisibilityMaskKHR")
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	var a args
	return p.call(a.u64(uint64(session)).i32(int32(viewConfigurationType)).u32(viewIndex).i32(int32(maskType)).ptr(ptr(mask)))
}

func (d *instanceDriver) XrSetDebugUtilsObjectNameEXT(nameInfo *DebugUtilsObjectNameInfoEXT) (common.Result, error) {
	p, err := d.gated(&d.ext.setDebugUtilsObjectName, ExtensionEXTDebugUtils, "xrSetDebugUtilsObjectNameEXT")
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	var a args
	return p.call(a.u64(uint64(d.instance)).ptr(ptr(nameInfo)))
}

func (d *instanceDriver) XrGetVulkanGraphicsRequirementsKHR(systemID SystemID, requirements *GraphicsRequirementsVulkanKHR) (common.Result, error) {
	p, err := d.gated(&d.ext.getVulkanGraphicsRequirements, ExtensionKHRVulkanEnable, "xrGetVulkanGraphicsRequirementsKHR")
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	var a args
	return p.call(a.u64(uint64(d.instance)).u64(uint64(systemID)).ptr(ptr(requirements)))
}

func (d *instanceDriver) XrGetOpenGLGraphicsRequirementsKHR(systemID SystemID, requirements *GraphicsRequirementsOpenGLKHR) (common.Result, error) {
	p, err := d.gated(&d.ext.getOpenGLGraphicsRequirements, ExtensionKHROpenGLEnable, "xrGetOpenGLGraphicsRequirementsKHR")
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	var a args
	return p.call(a.u64(uint64(d.instance)).u64(uint64(systemID)).ptr(ptr(requirements)))
}

func (d *instanceDriver) XrGetSpaceUUIDFB(space Space, uuid *UUID) (common.Result, error) {
	p, err := d.gated(&d.ext.getSpaceUUID, ExtensionFBSpatialEntity, "xrGetSpaceUuidFB")
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	var a args
	return p.call(a.u64(uint64(space)).ptr(ptr(uuid)))
}
