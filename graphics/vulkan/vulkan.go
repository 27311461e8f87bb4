// Package vulkan binds OpenXR sessions to a Vulkan device through
// XR_KHR_vulkan_enable.
//
// Formats come from github.com/vkngwrapper/core/v3, which needs cgo and links
// against libvulkan. A CGO_ENABLED=0 build cannot include this package.
package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// Extension is the instance extension every call in this package requires.
const Extension = driver.ExtensionKHRVulkanEnable

// Binding names the Vulkan objects a session renders with. The handles are
// the raw VkInstance, VkPhysicalDevice and VkDevice of the application's
// renderer.
type Binding struct {
	Instance         unsafe.Pointer
	PhysicalDevice   unsafe.Pointer
	Device           unsafe.Pointer
	QueueFamilyIndex uint32
	QueueIndex       uint32

	raw driver.GraphicsBindingVulkanKHR
}

func (b *Binding) GraphicsAPI() openxr.GraphicsAPI {
	return openxr.GraphicsAPIVulkan
}

func (b *Binding) Extension() string {
	return Extension
}

func (b *Binding) Chain() unsafe.Pointer {
	b.raw = driver.GraphicsBindingVulkanKHR{
		Type:             driver.TypeGraphicsBindingVulkanKHR,
		Instance:         b.Instance,
		PhysicalDevice:   b.PhysicalDevice,
		Device:           b.Device,
		QueueFamilyIndex: b.QueueFamilyIndex,
		QueueIndex:       b.QueueIndex,
	}
	return unsafe.Pointer(&b.raw)
}

// CreateSession creates a Vulkan session. GraphicsRequirements must have
// been called for the system first.
func CreateSession(instance *openxr.Instance, system driver.SystemID, binding *Binding) (*openxr.Session[Format], *openxr.FrameWaiter, *openxr.FrameStream[Format], common.Result, error) {
	if binding == nil {
		return nil, nil, nil, common.ErrorValidationFailure, errors.New("vulkan: nil binding")
	}
	return openxr.CreateSession[Format](instance, system, binding)
}

// Requirements is the range of Vulkan API versions the runtime supports.
type Requirements struct {
	MinAPIVersion common.Version
	MaxAPIVersion common.Version
}

// Supports reports whether a Vulkan version falls inside the range. Patch
// versions are ignored.
func (r Requirements) Supports(major, minor uint32) bool {
	v := common.MakeVersion(major, minor, 0)
	return v.IsAtLeast(common.MakeVersion(r.MinAPIVersion.Major(), r.MinAPIVersion.Minor(), 0)) &&
		common.MakeVersion(r.MaxAPIVersion.Major(), r.MaxAPIVersion.Minor(), 0).IsAtLeast(v)
}

// GraphicsRequirements queries the Vulkan versions the runtime accepts for a
// system. The runtime refuses to create a session before this was called.
func GraphicsRequirements(instance *openxr.Instance, system driver.SystemID) (Requirements, common.Result, error) {
	if err := instance.Check(); err != nil {
		return Requirements{}, common.ErrorHandleInvalid, err
	}
	raw := driver.GraphicsRequirementsVulkanKHR{Type: driver.TypeGraphicsRequirementsVulkanKHR}
	res, err := instance.Driver().XrGetVulkanGraphicsRequirementsKHR(system, &raw)
	if err != nil {
		return Requirements{}, res, errors.Wrap(err, "vulkan graphics requirements")
	}
	return Requirements{
		MinAPIVersion: raw.MinAPIVersionSupported,
		MaxAPIVersion: raw.MaxAPIVersionSupported,
	}, res, nil
}

// Image is a VkImage owned by the runtime.
type Image uint64

// EnumerateImages returns the swapchain's images in index order.
func EnumerateImages(swapchain *openxr.Swapchain[Format]) ([]Image, common.Result, error) {
	raw, res, err := openxr.EnumerateSwapchainImages(swapchain, func(img *driver.SwapchainImageVulkanKHR) {
		img.Type = driver.TypeSwapchainImageVulkanKHR
	})
	if err != nil {
		return nil, res, err
	}
	images := make([]Image, len(raw))
	for i, img := range raw {
		images[i] = Image(img.Image)
	}
	return images, res, nil
}
