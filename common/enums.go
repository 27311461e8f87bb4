package common

import "fmt"

type FormFactor int32

const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

func (f FormFactor) String() string {
	switch f {
	case FormFactorHeadMountedDisplay:
		return "HeadMountedDisplay"
	case FormFactorHandheldDisplay:
		return "HandheldDisplay"
	}
	return fmt.Sprintf("FormFactor(%d)", int32(f))
}

type ViewConfigurationType int32

const (
	ViewConfigurationTypePrimaryMono   ViewConfigurationType = 1
	ViewConfigurationTypePrimaryStereo ViewConfigurationType = 2
)

func (v ViewConfigurationType) String() string {
	switch v {
	case ViewConfigurationTypePrimaryMono:
		return "PrimaryMono"
	case ViewConfigurationTypePrimaryStereo:
		return "PrimaryStereo"
	}
	return fmt.Sprintf("ViewConfigurationType(%d)", int32(v))
}

type ReferenceSpaceType int32

const (
	ReferenceSpaceTypeView          ReferenceSpaceType = 1
	ReferenceSpaceTypeLocal         ReferenceSpaceType = 2
	ReferenceSpaceTypeStage         ReferenceSpaceType = 3
	ReferenceSpaceTypeUnboundedMSFT ReferenceSpaceType = 1000038000
	ReferenceSpaceTypeLocalFloorEXT ReferenceSpaceType = 1000426000
)

func (r ReferenceSpaceType) String() string {
	switch r {
	case ReferenceSpaceTypeView:
		return "View"
	case ReferenceSpaceTypeLocal:
		return "Local"
	case ReferenceSpaceTypeStage:
		return "Stage"
	case ReferenceSpaceTypeUnboundedMSFT:
		return "UnboundedMSFT"
	case ReferenceSpaceTypeLocalFloorEXT:
		return "LocalFloorEXT"
	}
	return fmt.Sprintf("ReferenceSpaceType(%d)", int32(r))
}

type EnvironmentBlendMode int32

const (
	EnvironmentBlendModeOpaque     EnvironmentBlendMode = 1
	EnvironmentBlendModeAdditive   EnvironmentBlendMode = 2
	EnvironmentBlendModeAlphaBlend EnvironmentBlendMode = 3
)

func (e EnvironmentBlendMode) String() string {
	switch e {
	case EnvironmentBlendModeOpaque:
		return "Opaque"
	case EnvironmentBlendModeAdditive:
		return "Additive"
	case EnvironmentBlendModeAlphaBlend:
		return "AlphaBlend"
	}
	return fmt.Sprintf("EnvironmentBlendMode(%d)", int32(e))
}

type SessionState int32

const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
)

var sessionStateNames = map[SessionState]string{
	SessionStateUnknown:      "Unknown",
	SessionStateIdle:         "Idle",
	SessionStateReady:        "Ready",
	SessionStateSynchronized: "Synchronized",
	SessionStateVisible:      "Visible",
	SessionStateFocused:      "Focused",
	SessionStateStopping:     "Stopping",
	SessionStateLossPending:  "LossPending",
	SessionStateExiting:      "Exiting",
}

func (s SessionState) String() string {
	if name, ok := sessionStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

// Running reports whether a session in this state has been begun and not yet
// ended.
func (s SessionState) Running() bool {
	switch s {
	case SessionStateSynchronized, SessionStateVisible, SessionStateFocused, SessionStateStopping:
		return true
	}
	return false
}

type ActionType int32

const (
	ActionTypeBooleanInput    ActionType = 1
	ActionTypeFloatInput      ActionType = 2
	ActionTypeVector2fInput   ActionType = 3
	ActionTypePoseInput       ActionType = 4
	ActionTypeVibrationOutput ActionType = 100
)

func (a ActionType) String() string {
	switch a {
	case ActionTypeBooleanInput:
		return "BooleanInput"
	case ActionTypeFloatInput:
		return "FloatInput"
	case ActionTypeVector2fInput:
		return "Vector2fInput"
	case ActionTypePoseInput:
		return "PoseInput"
	case ActionTypeVibrationOutput:
		return "VibrationOutput"
	}
	return fmt.Sprintf("ActionType(%d)", int32(a))
}

type ObjectType int32

const (
	ObjectTypeUnknown   ObjectType = 0
	ObjectTypeInstance  ObjectType = 1
	ObjectTypeSession   ObjectType = 2
	ObjectTypeSwapchain ObjectType = 3
	ObjectTypeSpace     ObjectType = 4
	ObjectTypeActionSet ObjectType = 5
	ObjectTypeAction    ObjectType = 6
)

type VisibilityMaskType int32

const (
	VisibilityMaskTypeHiddenTriangleMesh  VisibilityMaskType = 1
	VisibilityMaskTypeVisibleTriangleMesh VisibilityMaskType = 2
	VisibilityMaskTypeLineLoop            VisibilityMaskType = 3
)

type SwapchainUsageFlags uint64

const (
	SwapchainUsageColorAttachment        SwapchainUsageFlags = 0x00000001
	SwapchainUsageDepthStencilAttachment SwapchainUsageFlags = 0x00000002
	SwapchainUsageUnorderedAccess        SwapchainUsageFlags = 0x00000004
	SwapchainUsageTransferSrc            SwapchainUsageFlags = 0x00000008
	SwapchainUsageTransferDst            SwapchainUsageFlags = 0x00000010
	SwapchainUsageSampled                SwapchainUsageFlags = 0x00000020
	SwapchainUsageMutableFormat          SwapchainUsageFlags = 0x00000040
)

type SwapchainCreateFlags uint64

const (
	SwapchainCreateProtectedContent SwapchainCreateFlags = 0x00000001
	SwapchainCreateStaticImage      SwapchainCreateFlags = 0x00000002
)

// SpaceLocationFlags reports which parts of a located pose are valid.
type SpaceLocationFlags uint64

const (
	SpaceLocationOrientationValid   SpaceLocationFlags = 0x00000001
	SpaceLocationPositionValid      SpaceLocationFlags = 0x00000002
	SpaceLocationOrientationTracked SpaceLocationFlags = 0x00000004
	SpaceLocationPositionTracked    SpaceLocationFlags = 0x00000008
)

func (f SpaceLocationFlags) PoseValid() bool {
	const both = SpaceLocationOrientationValid | SpaceLocationPositionValid
	return f&both == both
}

// ViewStateFlags share bit positions with SpaceLocationFlags.
type ViewStateFlags uint64

const (
	ViewStateOrientationValid   ViewStateFlags = 0x00000001
	ViewStatePositionValid      ViewStateFlags = 0x00000002
	ViewStateOrientationTracked ViewStateFlags = 0x00000004
	ViewStatePositionTracked    ViewStateFlags = 0x00000008
)

func (f ViewStateFlags) PoseValid() bool {
	const both = ViewStateOrientationValid | ViewStatePositionValid
	return f&both == both
}

type CompositionLayerFlags uint64

const (
	CompositionLayerCorrectChromaticAberration CompositionLayerFlags = 0x00000001
	CompositionLayerBlendTextureSourceAlpha    CompositionLayerFlags = 0x00000002
	CompositionLayerUnpremultipliedAlpha       CompositionLayerFlags = 0x00000004
)

type EyeVisibility int32

const (
	EyeVisibilityBoth  EyeVisibility = 0
	EyeVisibilityLeft  EyeVisibility = 1
	EyeVisibilityRight EyeVisibility = 2
)
