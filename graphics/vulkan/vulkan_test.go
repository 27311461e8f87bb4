package vulkan_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/graphics/vulkan"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

func createInstance(t *testing.T, rt *fakeruntime.Runtime, extensions ...string) (*openxr.Instance, driver.SystemID) {
	t.Helper()
	instance, _, err := openxr.NewEntry(rt).CreateInstance(openxr.InstanceCreateInfo{
		Application: openxr.ApplicationInfo{ApplicationName: t.Name()},
		Extensions:  extensions,
	})
	require.NoError(t, err)
	system, _, err := instance.System(common.FormFactorHeadMountedDisplay)
	require.NoError(t, err)
	return instance, system
}

func TestFormatMapping(t *testing.T) {
	format, ok := vulkan.FormatFromTexture(gputypes.TextureFormatBGRA8UnormSrgb)
	require.True(t, ok)
	require.Equal(t, vulkan.FormatB8G8R8A8SRGB, format)
	require.Equal(t, int64(50), format.Lower())
	require.Equal(t, gputypes.TextureFormatBGRA8UnormSrgb, format.Texture())
	require.Equal(t, "B8G8R8A8_SRGB", format.String())

	_, ok = vulkan.FormatFromTexture(gputypes.TextureFormatUndefined)
	require.False(t, ok)
	require.Equal(t, gputypes.TextureFormatUndefined, vulkan.FormatD32SFloat.Texture())
	require.True(t, vulkan.FormatD32SFloat.IsDepth())
	require.Equal(t, "VkFormat(7)", vulkan.Format(7).String())
}

func TestPreferredFormat(t *testing.T) {
	all := func(vulkan.Format) bool { return true }

	format, ok := vulkan.PreferredFormat([]vulkan.Format{vulkan.FormatD32SFloat, vulkan.FormatR8G8B8A8UNorm, vulkan.FormatB8G8R8A8SRGB}, all)
	require.True(t, ok)
	require.Equal(t, vulkan.FormatB8G8R8A8SRGB, format)

	format, ok = vulkan.PreferredFormat([]vulkan.Format{vulkan.FormatR32SFloat, vulkan.FormatR8G8B8A8UNorm}, func(f vulkan.Format) bool {
		return f != vulkan.FormatR32SFloat
	})
	require.True(t, ok)
	require.Equal(t, vulkan.FormatR8G8B8A8UNorm, format)

	_, ok = vulkan.PreferredFormat([]vulkan.Format{vulkan.FormatD32SFloat}, all)
	require.False(t, ok)
}

func TestRequirements(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	instance, system := createInstance(t, rt, vulkan.Extension)
	defer instance.Destroy()

	requirements, _, err := vulkan.GraphicsRequirements(instance, system)
	require.NoError(t, err)
	require.Equal(t, common.MakeVersion(1, 0, 0), requirements.MinAPIVersion)
	require.True(t, requirements.Supports(1, 3))
	require.True(t, requirements.Supports(1, 0))
	require.False(t, requirements.Supports(1, 4))
}

func TestRequirementsWithoutExtension(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	instance, system := createInstance(t, rt)
	defer instance.Destroy()

	_, res, err := vulkan.GraphicsRequirements(instance, system)
	require.True(t, errors.Is(err, common.ErrExtensionNotEnabled))
	require.Equal(t, common.ErrorFunctionUnsupported, res)
	require.Zero(t, rt.CallCount("xrGetVulkanGraphicsRequirementsKHR"))

	_, _, _, res, err = vulkan.CreateSession(instance, system, &vulkan.Binding{})
	require.True(t, errors.Is(err, common.ErrExtensionNotEnabled))
	require.Equal(t, common.ErrorFunctionUnsupported, res)
}

func TestSessionImages(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	instance, system := createInstance(t, rt, vulkan.Extension)
	defer instance.Destroy()

	_, _, _, res, err := vulkan.CreateSession(instance, system, &vulkan.Binding{QueueFamilyIndex: 1})
	require.Error(t, err)
	require.Equal(t, common.ErrorGraphicsRequirementsCallMissing, res)

	_, _, err = vulkan.GraphicsRequirements(instance, system)
	require.NoError(t, err)
	session, waiter, stream, _, err := vulkan.CreateSession(instance, system, &vulkan.Binding{QueueFamilyIndex: 1})
	require.NoError(t, err)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	require.Equal(t, openxr.GraphicsAPIVulkan, session.GraphicsAPI())
	require.Equal(t, fakeruntime.GraphicsVulkan, rt.SessionGraphics(session.Handle()))

	formats, _, err := session.EnumerateSwapchainFormats()
	require.NoError(t, err)
	format, ok := vulkan.PreferredFormat(formats, func(vulkan.Format) bool { return true })
	require.True(t, ok)
	require.Equal(t, vulkan.FormatB8G8R8A8SRGB, format)

	swapchain, _, err := session.CreateSwapchain(openxr.SwapchainCreateInfo[vulkan.Format]{
		UsageFlags:  common.SwapchainUsageColorAttachment,
		Format:      format,
		SampleCount: 1,
		Width:       64,
		Height:      64,
		FaceCount:   1,
		ArraySize:   1,
		MipCount:    1,
	})
	require.NoError(t, err)

	images, _, err := vulkan.EnumerateImages(swapchain)
	require.NoError(t, err)
	require.Len(t, images, 3)
	require.Equal(t, vulkan.Image(fakeruntime.VulkanImage(swapchain.Handle(), 2)), images[2])

	swapchain.Destroy()
	_, _, err = vulkan.EnumerateImages(swapchain)
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))
}

func TestNilBinding(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	instance, system := createInstance(t, rt, vulkan.Extension)
	defer instance.Destroy()

	_, _, _, res, err := vulkan.CreateSession(instance, system, nil)
	require.Error(t, err)
	require.Equal(t, common.ErrorValidationFailure, res)
	require.Zero(t, rt.CallCount("xrCreateSession"))
}
