package driver

// StructureType is the discriminant every extensible native structure starts
// with.
type StructureType int32

const (
	TypeUnknown                           StructureType = 0
	TypeAPILayerProperties                StructureType = 1
	TypeExtensionProperties               StructureType = 2
	TypeInstanceCreateInfo                StructureType = 3
	TypeSystemGetInfo                     StructureType = 4
	TypeSystemProperties                  StructureType = 5
	TypeViewLocateInfo                    StructureType = 6
	TypeView                              StructureType = 7
	TypeSessionCreateInfo                 StructureType = 8
	TypeSwapchainCreateInfo               StructureType = 9
	TypeSessionBeginInfo                  StructureType = 10
	TypeViewState                         StructureType = 11
	TypeFrameEndInfo                      StructureType = 12
	TypeEventDataBuffer                   StructureType = 16
	TypeEventDataInstanceLossPending      StructureType = 17
	TypeEventDataSessionStateChanged      StructureType = 18
	TypeActionStateBoolean                StructureType = 23
	TypeActionStateFloat                  StructureType = 24
	TypeActionStateVector2f               StructureType = 25
	TypeActionStatePose                   StructureType = 27
	TypeActionSetCreateInfo               StructureType = 28
	TypeActionCreateInfo                  StructureType = 29
	TypeInstanceProperties                StructureType = 32
	TypeFrameWaitInfo                     StructureType = 33
	TypeCompositionLayerProjection        StructureType = 35
	TypeCompositionLayerQuad              StructureType = 36
	TypeReferenceSpaceCreateInfo          StructureType = 37
	TypeActionSpaceCreateInfo             StructureType = 38
	TypeEventDataReferenceSpaceChange     StructureType = 40
	TypeViewConfigurationView             StructureType = 41
	TypeSpaceLocation                     StructureType = 42
	TypeFrameState                        StructureType = 44
	TypeViewConfigurationProperties       StructureType = 45
	TypeFrameBeginInfo                    StructureType = 46
	TypeCompositionLayerProjectionView    StructureType = 48
	TypeEventDataEventsLost               StructureType = 49
	TypeEventDataInteractionProfileChange StructureType = 52
	TypeInteractionProfileState           StructureType = 53
	TypeSwapchainImageAcquireInfo         StructureType = 55
	TypeSwapchainImageWaitInfo            StructureType = 56
	TypeSwapchainImageReleaseInfo         StructureType = 57
	TypeActionStateGetInfo                StructureType = 58
	TypeSessionActionSetsAttachInfo       StructureType = 60
	TypeActionsSyncInfo                   StructureType = 61
	TypeInputSourceLocalizedNameGetInfo   StructureType = 63

	TypeDebugUtilsObjectNameInfoEXT       StructureType = 1000019000
	TypeGraphicsBindingOpenGLXlibKHR      StructureType = 1000023000
	TypeSwapchainImageOpenGLKHR           StructureType = 1000023004
	TypeGraphicsRequirementsOpenGLKHR     StructureType = 1000023005
	TypeGraphicsBindingVulkanKHR          StructureType = 1000025000
	TypeSwapchainImageVulkanKHR           StructureType = 1000025001
	TypeGraphicsRequirementsVulkanKHR     StructureType = 1000025002
	TypeVisibilityMaskKHR                 StructureType = 1000031000
	TypeEventDataVisibilityMaskChangedKHR StructureType = 1000031001
)
