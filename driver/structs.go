package driver

import (
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
)

// The structures in this file are laid out exactly like their native
// counterparts so they can be handed to the runtime by pointer. Every
// extensible structure begins with Type and Next.

type ApplicationInfo struct {
	ApplicationName    [common.MaxApplicationNameSize]byte
	ApplicationVersion uint32
	EngineName         [common.MaxEngineNameSize]byte
	EngineVersion      uint32
	APIVersion         common.Version
}

type InstanceCreateInfo struct {
	Type                  StructureType
	Next                  unsafe.Pointer
	CreateFlags           uint64
	ApplicationInfo       ApplicationInfo
	EnabledAPILayerCount  uint32
	EnabledAPILayerNames  **byte
	EnabledExtensionCount uint32
	EnabledExtensionNames **byte
}

type ExtensionProperties struct {
	Type             StructureType
	Next             unsafe.Pointer
	ExtensionName    [common.MaxExtensionNameSize]byte
	ExtensionVersion uint32
}

type APILayerProperties struct {
	Type         StructureType
	Next         unsafe.Pointer
	LayerName    [common.MaxAPILayerNameSize]byte
	SpecVersion  common.Version
	LayerVersion uint32
	Description  [common.MaxAPILayerDescriptionSize]byte
}

type InstanceProperties struct {
	Type           StructureType
	Next           unsafe.Pointer
	RuntimeVersion common.Version
	RuntimeName    [common.MaxRuntimeNameSize]byte
}

type SystemGetInfo struct {
	Type       StructureType
	Next       unsafe.Pointer
	FormFactor common.FormFactor
}

type SystemGraphicsProperties struct {
	MaxSwapchainImageHeight uint32
	MaxSwapchainImageWidth  uint32
	MaxLayerCount           uint32
}

type SystemTrackingProperties struct {
	OrientationTracking common.Bool32
	PositionTracking    common.Bool32
}

type SystemProperties struct {
	Type               StructureType
	Next               unsafe.Pointer
	SystemID           SystemID
	VendorID           uint32
	SystemName         [common.MaxSystemNameSize]byte
	GraphicsProperties SystemGraphicsProperties
	TrackingProperties SystemTrackingProperties
}

type ViewConfigurationView struct {
	Type                            StructureType
	Next                            unsafe.Pointer
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

type SessionCreateInfo struct {
	Type        StructureType
	Next        unsafe.Pointer
	CreateFlags uint64
	SystemID    SystemID
}

type SessionBeginInfo struct {
	Type                         StructureType
	Next                         unsafe.Pointer
	PrimaryViewConfigurationType common.ViewConfigurationType
}

type ReferenceSpaceCreateInfo struct {
	Type                 StructureType
	Next                 unsafe.Pointer
	ReferenceSpaceType   common.ReferenceSpaceType
	PoseInReferenceSpace common.Posef
}

type ActionSpaceCreateInfo struct {
	Type              StructureType
	Next              unsafe.Pointer
	Action            Action
	SubactionPath     Path
	PoseInActionSpace common.Posef
}

type SpaceLocation struct {
	Type          StructureType
	Next          unsafe.Pointer
	LocationFlags common.SpaceLocationFlags
	Pose          common.Posef
}

type SwapchainCreateInfo struct {
	Type        StructureType
	Next        unsafe.Pointer
	CreateFlags common.SwapchainCreateFlags
	UsageFlags  common.SwapchainUsageFlags
	Format      int64
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

type SwapchainImageAcquireInfo struct {
	Type StructureType
	Next unsafe.Pointer
}

type SwapchainImageWaitInfo struct {
	Type    StructureType
	Next    unsafe.Pointer
	Timeout common.Duration
}

type SwapchainImageReleaseInfo struct {
	Type StructureType
	Next unsafe.Pointer
}

// SwapchainImageBaseHeader is the common prefix of every backend-specific
// swapchain image structure.
type SwapchainImageBaseHeader struct {
	Type StructureType
	Next unsafe.Pointer
}

type SwapchainSubImage struct {
	Swapchain       Swapchain
	ImageRect       common.Rect2Di
	ImageArrayIndex uint32
}

type FrameWaitInfo struct {
	Type StructureType
	Next unsafe.Pointer
}

type FrameState struct {
	Type                   StructureType
	Next                   unsafe.Pointer
	PredictedDisplayTime   common.Time
	PredictedDisplayPeriod common.Duration
	ShouldRender           common.Bool32
}

type FrameBeginInfo struct {
	Type StructureType
	Next unsafe.Pointer
}

// CompositionLayerBaseHeader is the common prefix of every composition layer.
type CompositionLayerBaseHeader struct {
	Type       StructureType
	Next       unsafe.Pointer
	LayerFlags common.CompositionLayerFlags
	Space      Space
}

type FrameEndInfo struct {
	Type                 StructureType
	Next                 unsafe.Pointer
	DisplayTime          common.Time
	EnvironmentBlendMode common.EnvironmentBlendMode
	LayerCount           uint32
	Layers               **CompositionLayerBaseHeader
}

type CompositionLayerProjectionView struct {
	Type     StructureType
	Next     unsafe.Pointer
	Pose     common.Posef
	Fov      common.Fovf
	SubImage SwapchainSubImage
}

type CompositionLayerProjection struct {
	Type       StructureType
	Next       unsafe.Pointer
	LayerFlags common.CompositionLayerFlags
	Space      Space
	ViewCount  uint32
	Views      *CompositionLayerProjectionView
}

type CompositionLayerQuad struct {
	Type          StructureType
	Next          unsafe.Pointer
	LayerFlags    common.CompositionLayerFlags
	Space         Space
	EyeVisibility common.EyeVisibility
	SubImage      SwapchainSubImage
	Pose          common.Posef
	Size          common.Extent2Df
}

type ViewLocateInfo struct {
	Type                  StructureType
	Next                  unsafe.Pointer
	ViewConfigurationType common.ViewConfigurationType
	DisplayTime           common.Time
	Space                 Space
}

type ViewState struct {
	Type           StructureType
	Next           unsafe.Pointer
	ViewStateFlags common.ViewStateFlags
}

type View struct {
	Type StructureType
	Next unsafe.Pointer
	Pose common.Posef
	Fov  common.Fovf
}

type ActionSetCreateInfo struct {
	Type                   StructureType
	Next                   unsafe.Pointer
	ActionSetName          [common.MaxActionSetNameSize]byte
	LocalizedActionSetName [common.MaxLocalizedActionSetNameSize]byte
	Priority               uint32
}

type ActionCreateInfo struct {
	Type                StructureType
	Next                unsafe.Pointer
	ActionName          [common.MaxActionNameSize]byte
	ActionType          common.ActionType
	CountSubactionPaths uint32
	SubactionPaths      *Path
	LocalizedActionName [common.MaxLocalizedActionNameSize]byte
}

type SessionActionSetsAttachInfo struct {
	Type            StructureType
	Next            unsafe.Pointer
	CountActionSets uint32
	ActionSets      *ActionSet
}

type ActiveActionSet struct {
	ActionSet     ActionSet
	SubactionPath Path
}

type ActionsSyncInfo struct {
	Type                  StructureType
	Next                  unsafe.Pointer
	CountActiveActionSets uint32
	ActiveActionSets      *ActiveActionSet
}

type ActionStateGetInfo struct {
	Type          StructureType
	Next          unsafe.Pointer
	Action        Action
	SubactionPath Path
}

type ActionStateBoolean struct {
	Type                 StructureType
	Next                 unsafe.Pointer
	CurrentState         common.Bool32
	ChangedSinceLastSync common.Bool32
	LastChangeTime       common.Time
	IsActive             common.Bool32
}

type ActionStateFloat struct {
	Type                 StructureType
	Next                 unsafe.Pointer
	CurrentState         float32
	ChangedSinceLastSync common.Bool32
	LastChangeTime       common.Time
	IsActive             common.Bool32
}

type ActionStateVector2f struct {
	Type                 StructureType
	Next                 unsafe.Pointer
	CurrentState         common.Vector2f
	ChangedSinceLastSync common.Bool32
	LastChangeTime       common.Time
	IsActive             common.Bool32
}

type ActionStatePose struct {
	Type     StructureType
	Next     unsafe.Pointer
	IsActive common.Bool32
}

type InteractionProfileState struct {
	Type               StructureType
	Next               unsafe.Pointer
	InteractionProfile Path
}

type InputSourceLocalizedNameGetInfo struct {
	Type            StructureType
	Next            unsafe.Pointer
	SourcePath      Path
	WhichComponents uint64
}

// Bits for InputSourceLocalizedNameGetInfo.WhichComponents.
const (
	InputSourceLocalizedNameUserPath           uint64 = 0x00000001
	InputSourceLocalizedNameInteractionProfile uint64 = 0x00000002
	InputSourceLocalizedNameComponent          uint64 = 0x00000004
)
