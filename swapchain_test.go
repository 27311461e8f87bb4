package openxr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

func tagVulkanImage(img *driver.SwapchainImageVulkanKHR) {
	img.Type = driver.TypeSwapchainImageVulkanKHR
}

func createTestSwapchain(t *testing.T, session *Session[vulkanFormat], arraySize uint32) *Swapchain[vulkanFormat] {
	t.Helper()
	swapchain, _, err := session.CreateSwapchain(SwapchainCreateInfo[vulkanFormat]{
		UsageFlags:  common.SwapchainUsageColorAttachment | common.SwapchainUsageSampled,
		Format:      vulkanFormatRGBA8SRGB,
		SampleCount: 1,
		Width:       256,
		Height:      128,
		FaceCount:   1,
		ArraySize:   arraySize,
		MipCount:    1,
	})
	require.NoError(t, err)
	return swapchain
}

func renderImage(t *testing.T, swapchain *Swapchain[vulkanFormat]) uint32 {
	t.Helper()
	index, _, err := swapchain.AcquireImage()
	require.NoError(t, err)
	_, err = swapchain.WaitImage(common.InfiniteDuration)
	require.NoError(t, err)
	_, err = swapchain.ReleaseImage()
	require.NoError(t, err)
	return index
}

func TestSwapchainFormatsAndImages(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()
	session, waiter, stream := r.vulkanSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()

	formats, _, err := session.EnumerateSwapchainFormats()
	require.NoError(t, err)
	require.Equal(t, []vulkanFormat{vulkanFormatBGRA8SRGB, vulkanFormatRGBA8SRGB, 126}, formats)

	swapchain := createTestSwapchain(t, session, 1)
	defer swapchain.Destroy()
	require.Equal(t, vulkanFormatRGBA8SRGB, swapchain.Format())
	require.Equal(t, uint32(256), swapchain.Width())
	require.Equal(t, uint32(128), swapchain.Height())

	images, _, err := EnumerateSwapchainImages(swapchain, tagVulkanImage)
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, img := range images {
		require.Equal(t, fakeruntime.VulkanImage(swapchain.Handle(), uint32(i)), img.Image)
	}

	for want := uint32(0); want < 4; want++ {
		require.Equal(t, want%3, renderImage(t, swapchain))
	}

	_, res, err := session.CreateSwapchain(SwapchainCreateInfo[vulkanFormat]{
		Format: 7, SampleCount: 1, Width: 1, Height: 1, FaceCount: 1, ArraySize: 1, MipCount: 1,
	})
	require.Error(t, err)
	require.Equal(t, common.ErrorSwapchainFormatUnsupported, res)
}

func TestSwapchainReleaseBeforeWaitFails(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()
	session, waiter, stream := r.vulkanSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	swapchain := createTestSwapchain(t, session, 1)
	defer swapchain.Destroy()

	_, _, err := swapchain.AcquireImage()
	require.NoError(t, err)
	res, err := swapchain.ReleaseImage()
	require.Error(t, err)
	require.Equal(t, common.ErrorCallOrderInvalid, res)
}

func TestSwapchainKeepsSessionAlive(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()
	session, waiter, stream := r.vulkanSession(t)
	swapchain := createTestSwapchain(t, session, 1)

	session.Destroy()
	waiter.Destroy()
	stream.Destroy()
	require.Zero(t, r.rt.Counters().SessionsDestroyed)

	index, _, err := swapchain.AcquireImage()
	require.NoError(t, err)
	require.Zero(t, index)

	swapchain.Destroy()
	swapchain.Destroy()
	counters := r.rt.Counters()
	require.Equal(t, 1, counters.SwapchainsDestroyed)
	require.Equal(t, 1, counters.SessionsDestroyed)
	require.Empty(t, r.rt.Violations())
}

func TestSubmitLayers(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()
	session, waiter, stream := r.vulkanSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	startSession(t, r, session)

	local, _, err := session.CreateReferenceSpace(common.ReferenceSpaceTypeLocal, common.IdentityPose())
	require.NoError(t, err)
	defer local.Destroy()
	eyes := createTestSwapchain(t, session, 2)
	defer eyes.Destroy()
	panel := createTestSwapchain(t, session, 1)
	defer panel.Destroy()

	frame, _, err := waiter.Wait()
	require.NoError(t, err)
	_, err = stream.Begin()
	require.NoError(t, err)

	_, views, _, err := session.LocateViews(common.ViewConfigurationTypePrimaryStereo, frame.PredictedDisplayTime, local)
	require.NoError(t, err)
	renderImage(t, eyes)
	renderImage(t, panel)

	rect := common.Rect2Di{Extent: common.Extent2Di{Width: 256, Height: 128}}
	projection := &CompositionLayerProjection[vulkanFormat]{Space: local}
	for i, view := range views {
		projection.Views = append(projection.Views, CompositionLayerProjectionView[vulkanFormat]{
			Pose: view.Pose,
			Fov:  view.Fov,
			SubImage: SwapchainSubImage[vulkanFormat]{
				Swapchain:       eyes,
				ImageRect:       rect,
				ImageArrayIndex: uint32(i),
			},
		})
	}
	quad := &CompositionLayerQuad[vulkanFormat]{
		Space:    local,
		SubImage: SwapchainSubImage[vulkanFormat]{Swapchain: panel, ImageRect: rect},
		Pose:     common.IdentityPose(),
		Size:     common.Extent2Df{Width: 1, Height: 0.5},
	}

	_, err = stream.End(frame.PredictedDisplayTime, common.EnvironmentBlendModeOpaque, projection, quad)
	require.NoError(t, err)

	last := r.rt.LastFrame(session.Handle())
	require.Equal(t, frame.PredictedDisplayTime, last.DisplayTime)
	require.Len(t, last.Layers, 2)
	require.Equal(t, driver.TypeCompositionLayerProjection, last.Layers[0].Type)
	require.Equal(t, []driver.Swapchain{eyes.Handle(), eyes.Handle()}, last.Layers[0].Swapchains)
	require.Equal(t, driver.TypeCompositionLayerQuad, last.Layers[1].Type)
	require.Equal(t, local.Handle(), last.Layers[1].Space)
}

func TestSubmitRejectsDestroyedSwapchainLocally(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()
	session, waiter, stream := r.vulkanSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	startSession(t, r, session)

	local, _, err := session.CreateReferenceSpace(common.ReferenceSpaceTypeLocal, common.IdentityPose())
	require.NoError(t, err)
	defer local.Destroy()
	panel := createTestSwapchain(t, session, 1)
	renderImage(t, panel)
	panel.Destroy()

	frame, _, err := waiter.Wait()
	require.NoError(t, err)
	_, err = stream.Begin()
	require.NoError(t, err)

	quad := &CompositionLayerQuad[vulkanFormat]{
		Space:    local,
		SubImage: SwapchainSubImage[vulkanFormat]{Swapchain: panel},
		Pose:     common.IdentityPose(),
	}
	res, err := stream.End(frame.PredictedDisplayTime, common.EnvironmentBlendModeOpaque, quad)
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))
	require.Equal(t, common.ErrorLayerInvalid, res)

	quad.SubImage.Swapchain = nil
	_, err = stream.End(frame.PredictedDisplayTime, common.EnvironmentBlendModeOpaque, quad)
	require.Error(t, err)
	require.Zero(t, r.rt.CallCount("xrEndFrame"))
}

func TestSubmitUnreleasedSwapchain(t *testing.T) {
	r := newTestRuntime(t, fakeruntime.Options{}, driver.ExtensionKHRVulkanEnable)
	defer r.instance.Destroy()
	session, waiter, stream := r.vulkanSession(t)
	defer session.Destroy()
	defer waiter.Destroy()
	defer stream.Destroy()
	startSession(t, r, session)

	local, _, err := session.CreateReferenceSpace(common.ReferenceSpaceTypeLocal, common.IdentityPose())
	require.NoError(t, err)
	defer local.Destroy()
	panel := createTestSwapchain(t, session, 1)
	defer panel.Destroy()

	frame, _, err := waiter.Wait()
	require.NoError(t, err)
	_, err = stream.Begin()
	require.NoError(t, err)

	quad := &CompositionLayerQuad[vulkanFormat]{
		Space: local,
		SubImage: SwapchainSubImage[vulkanFormat]{
			Swapchain: panel,
			ImageRect: common.Rect2Di{Extent: common.Extent2Di{Width: 16, Height: 16}},
		},
		Pose: common.IdentityPose(),
	}
	res, err := stream.End(frame.PredictedDisplayTime, common.EnvironmentBlendModeOpaque, quad)
	require.Error(t, err)
	require.Equal(t, common.ErrorLayerInvalid, res)
	require.Equal(t, 1, r.rt.CallCount("xrEndFrame"))
}
