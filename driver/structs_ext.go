package driver

import (
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
)

// XR_KHR_visibility_mask
type VisibilityMaskKHR struct {
	Type                StructureType
	Next                unsafe.Pointer
	VertexCapacityInput uint32
	VertexCountOutput   uint32
	Vertices            *common.Vector2f
	IndexCapacityInput  uint32
	IndexCountOutput    uint32
	Indices             *uint32
}

// XR_EXT_debug_utils
type DebugUtilsObjectNameInfoEXT struct {
	Type         StructureType
	Next         unsafe.Pointer
	ObjectType   common.ObjectType
	ObjectHandle uint64
	ObjectName   *byte
}

// XR_KHR_vulkan_enable
type GraphicsBindingVulkanKHR struct {
	Type             StructureType
	Next             unsafe.Pointer
	Instance         unsafe.Pointer
	PhysicalDevice   unsafe.Pointer
	Device           unsafe.Pointer
	QueueFamilyIndex uint32
	QueueIndex       uint32
}

type SwapchainImageVulkanKHR struct {
	Type  StructureType
	Next  unsafe.Pointer
	Image uint64
}

type GraphicsRequirementsVulkanKHR struct {
	Type                   StructureType
	Next                   unsafe.Pointer
	MinAPIVersionSupported common.Version
	MaxAPIVersionSupported common.Version
}

// XR_KHR_opengl_enable
type GraphicsBindingOpenGLXlibKHR struct {
	Type        StructureType
	Next        unsafe.Pointer
	XDisplay    unsafe.Pointer
	VisualID    uint32
	GLXFBConfig unsafe.Pointer
	GLXDrawable uint64
	GLXContext  unsafe.Pointer
}

type SwapchainImageOpenGLKHR struct {
	Type  StructureType
	Next  unsafe.Pointer
	Image uint32
}

type GraphicsRequirementsOpenGLKHR struct {
	Type                   StructureType
	Next                   unsafe.Pointer
	MinAPIVersionSupported common.Version
	MaxAPIVersionSupported common.Version
}

// XR_FB_spatial_entity
type UUID [16]byte
