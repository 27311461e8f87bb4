package driver

import (
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
)

// Extension names with functions this package knows how to resolve.
const (
	ExtensionKHRVisibilityMask = "XR_KHR_visibility_mask"
	ExtensionEXTDebugUtils     = "XR_EXT_debug_utils"
	ExtensionKHRVulkanEnable   = "XR_KHR_vulkan_enable"
	ExtensionKHROpenGLEnable   = "XR_KHR_opengl_enable"
	ExtensionFBSpatialEntity   = "XR_FB_spatial_entity"
	ExtensionMNDHeadless       = "XR_MND_headless"
)

// EntryPoints are the raw addresses of the four global entry functions.
type EntryPoints struct {
	GetInstanceProcAddr                  unsafe.Pointer
	CreateInstance                       unsafe.Pointer
	EnumerateInstanceExtensionProperties unsafe.Pointer
	EnumerateAPILayerProperties          unsafe.Pointer
}

// Driver is the global entry point table. It is the only way to reach the
// runtime before an instance exists.
type Driver interface {
	EntryPoints() EntryPoints

	XrCreateInstance(createInfo *InstanceCreateInfo, instance *Instance) (common.Result, error)
	XrEnumerateInstanceExtensionProperties(layerName *byte, capacity uint32, count *uint32, properties *ExtensionProperties) (common.Result, error)
	XrEnumerateAPILayerProperties(capacity uint32, count *uint32, properties *APILayerProperties) (common.Result, error)

	// CreateInstanceDriver resolves the per-instance function table for a
	// freshly created instance. Functions of the listed extensions are
	// resolved too; any failure to resolve them is returned as an error and
	// the caller is expected to destroy the instance.
	CreateInstanceDriver(instance Instance, enabledExtensions []string) (InstanceDriver, error)
	// XrDestroyInstance resolves xrDestroyInstance alone and calls it. It
	// reaches instances whose function table could not be resolved.
	XrDestroyInstance(instance Instance) (common.Result, error)

	// Release drops this driver's hold on the runtime library. The library is
	// unloaded once every instance driver derived from it is released too.
	Release() error
}

// InstanceDriver is the resolved function table of one instance.
// Extension-gated functions fail with an error marked
// common.ErrExtensionNotEnabled when their extension was not resolved.
type InstanceDriver interface {
	Instance() Instance
	ExtensionLoaded(extension string) bool
	Release() error

	XrDestroyInstance() (common.Result, error)
	XrGetInstanceProperties(properties *InstanceProperties) (common.Result, error)
	XrPollEvent(eventData *EventDataBuffer) (common.Result, error)
	XrResultToString(value common.Result, buffer *[common.MaxResultStringSize]byte) (common.Result, error)
	XrStringToPath(pathString *byte, path *Path) (common.Result, error)
	XrPathToString(path Path, capacity uint32, count *uint32, buffer *byte) (common.Result, error)

	XrGetSystem(getInfo *SystemGetInfo, systemID *SystemID) (common.Result, error)
	XrGetSystemProperties(systemID SystemID, properties *SystemProperties) (common.Result, error)
	XrEnumerateEnvironmentBlendModes(systemID SystemID, viewConfigurationType common.ViewConfigurationType, capacity uint32, count *uint32, modes *common.EnvironmentBlendMode) (common.Result, error)
	XrEnumerateViewConfigurations(systemID SystemID, capacity uint32, count *uint32, types *common.ViewConfigurationType) (common.Result, error)
	XrEnumerateViewConfigurationViews(systemID SystemID, viewConfigurationType common.ViewConfigurationType, capacity uint32, count *uint32, views *ViewConfigurationView) (common.Result, error)

	XrCreateSession(createInfo *SessionCreateInfo, session *Session) (common.Result, error)
	XrDestroySession(session Session) (common.Result, error)
	XrBeginSession(session Session, beginInfo *SessionBeginInfo) (common.Result, error)
	XrEndSession(session Session) (common.Result, error)
	XrRequestExitSession(session Session) (common.Result, error)

	XrEnumerateReferenceSpaces(session Session, capacity uint32, count *uint32, spaces *common.ReferenceSpaceType) (common.Result, error)
	XrCreateReferenceSpace(session Session, createInfo *ReferenceSpaceCreateInfo, space *Space) (common.Result, error)
	XrGetReferenceSpaceBoundsRect(session Session, referenceSpaceType common.ReferenceSpaceType, bounds *common.Extent2Df) (common.Result, error)
	XrCreateActionSpace(session Session, createInfo *ActionSpaceCreateInfo, space *Space) (common.Result, error)
	XrLocateSpace(space Space, baseSpace Space, time common.Time, location *SpaceLocation) (common.Result, error)
	XrDestroySpace(space Space) (common.Result, error)

	XrEnumerateSwapchainFormats(session Session, capacity uint32, count *uint32, formats *int64) (common.Result, error)
	XrCreateSwapchain(session Session, createInfo *SwapchainCreateInfo, swapchain *Swapchain) (common.Result, error)
	XrDestroySwapchain(swapchain Swapchain) (common.Result, error)
	XrEnumerateSwapchainImages(swapchain Swapchain, capacity uint32, count *uint32, images *SwapchainImageBaseHeader) (common.Result, error)
	XrAcquireSwapchainImage(swapchain Swapchain, acquireInfo *SwapchainImageAcquireInfo, index *uint32) (common.Result, error)
	XrWaitSwapchainImage(swapchain Swapchain, waitInfo *SwapchainImageWaitInfo) (common.Result, error)
	XrReleaseSwapchainImage(swapchain Swapchain, releaseInfo *SwapchainImageReleaseInfo) (common.Result, error)

	XrWaitFrame(session Session, waitInfo *FrameWaitInfo, state *FrameState) (common.Result, error)
	XrBeginFrame(session Session, beginInfo *FrameBeginInfo) (common.Result, error)
	XrEndFrame(session Session, endInfo *FrameEndInfo) (common.Result, error)
	XrLocateViews(session Session, locateInfo *ViewLocateInfo, viewState *ViewState, capacity uint32, count *uint32, views *View) (common.Result, error)

	XrCreateActionSet(createInfo *ActionSetCreateInfo, actionSet *ActionSet) (common.Result, error)
	XrDestroyActionSet(actionSet ActionSet) (common.Result, error)
	XrCreateAction(actionSet ActionSet, createInfo *ActionCreateInfo, action *Action) (common.Result, error)
	XrDestroyAction(action Action) (common.Result, error)
	XrAttachSessionActionSets(session Session, attachInfo *SessionActionSetsAttachInfo) (common.Result, error)
	XrGetCurrentInteractionProfile(session Session, topLevelUserPath Path, profile *InteractionProfileState) (common.Result, error)
	XrGetActionStateBoolean(session Session, getInfo *ActionStateGetInfo, state *ActionStateBoolean) (common.Result, error)
	XrGetActionStateFloat(session Session, getInfo *ActionStateGetInfo, state *ActionStateFloat) (common.Result, error)
	XrGetActionStateVector2f(session Session, getInfo *ActionStateGetInfo, state *ActionStateVector2f) (common.Result, error)
	XrGetActionStatePose(session Session, getInfo *ActionStateGetInfo, state *ActionStatePose) (common.Result, error)
	XrSyncActions(session Session, syncInfo *ActionsSyncInfo) (common.Result, error)
	XrGetInputSourceLocalizedName(session Session, getInfo *InputSourceLocalizedNameGetInfo, capacity uint32, count *uint32, buffer *byte) (common.Result, error)

	XrGetVisibilityMaskKHR(session Session, viewConfigurationType common.ViewConfigurationType, viewIndex uint32, maskType common.VisibilityMaskType, mask *VisibilityMaskKHR) (common.Result, error)
	XrSetDebugUtilsObjectNameEXT(nameInfo *DebugUtilsObjectNameInfoEXT) (common.Result, error)
	XrGetVulkanGraphicsRequirementsKHR(systemID SystemID, requirements *GraphicsRequirementsVulkanKHR) (common.Result, error)
	XrGetOpenGLGraphicsRequirementsKHR(systemID SystemID, requirements *GraphicsRequirementsOpenGLKHR) (common.Result, error)
	XrGetSpaceUUIDFB(space Space, uuid *UUID) (common.Result, error)
}
