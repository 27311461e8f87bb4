package fakeruntime

import (
	"slices"
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

type swapchainState struct {
	handle    driver.Swapchain
	session   *sessionState
	destroyed bool

	format    int64
	width     uint32
	height    uint32
	arraySize uint32
	images    uint32

	next     uint32
	acquired []uint32
	waited   int
	released bool
}

func (r *Runtime) formatsFor(s *sessionState) []int64 {
	switch s.graphics {
	case GraphicsVulkan:
		return r.opts.VulkanFormats
	case GraphicsOpenGL:
		return r.opts.OpenGLFormats
	}
	return nil
}

// VulkanImage is the VkImage handle the fake reports for an image of a
// swapchain.
func VulkanImage(swapchain driver.Swapchain, index uint32) uint64 {
	return 0x1000_0000 | uint64(swapchain)<<8 | uint64(index)
}

// OpenGLImage is the texture name the fake reports for an image of a
// swapchain.
func OpenGLImage(swapchain driver.Swapchain, index uint32) uint32 {
	return uint32(swapchain)<<8 | index + 1
}

func (d *instanceDriver) XrEnumerateSwapchainFormats(session driver.Session, capacity uint32, count *uint32, formats *int64) (common.Result, error) {
	state := d.enter("xrEnumerateSwapchainFormats")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	return result(fill(d.r.formatsFor(s), capacity, count, formats))
}

func (d *instanceDriver) XrCreateSwapchain(session driver.Session, createInfo *driver.SwapchainCreateInfo, swapchain *driver.Swapchain) (common.Result, error) {
	state := d.enter("xrCreateSwapchain")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if createInfo.Type != driver.TypeSwapchainCreateInfo {
		return result(common.ErrorValidationFailure)
	}
	if !slices.Contains(d.r.formatsFor(s), createInfo.Format) {
		return result(common.ErrorSwapchainFormatUnsupported)
	}
	if createInfo.Width == 0 || createInfo.Height == 0 || createInfo.Width > 4096 || createInfo.Height > 4096 {
		return result(common.ErrorValidationFailure)
	}
	if createInfo.ArraySize == 0 || createInfo.FaceCount == 0 || createInfo.MipCount == 0 || createInfo.SampleCount == 0 {
		return result(common.ErrorValidationFailure)
	}

	images := d.r.opts.SwapchainImageCount
	if createInfo.CreateFlags&common.SwapchainCreateStaticImage != 0 {
		images = 1
	}
	sc := &swapchainState{
		handle:    driver.Swapchain(d.r.handle()),
		session:   s,
		format:    createInfo.Format,
		width:     createInfo.Width,
		height:    createInfo.Height,
		arraySize: createInfo.ArraySize,
		images:    images,
	}
	d.r.swapchains[sc.handle] = sc
	d.r.counters.SwapchainsCreated++
	*swapchain = sc.handle
	return result(common.Success)
}

func (d *instanceDriver) swapchain(handle driver.Swapchain) *swapchainState {
	sc := d.r.swapchains[handle]
	if sc == nil || sc.destroyed || sc.session.instance.handle != d.instance {
		return nil
	}
	return sc
}

func (d *instanceDriver) XrDestroySwapchain(swapchain driver.Swapchain) (common.Result, error) {
	state := d.enter("xrDestroySwapchain")
	defer d.leave()
	sc := d.swapchain(swapchain)
	if state == nil || sc == nil {
		return result(common.ErrorHandleInvalid)
	}
	sc.destroyed = true
	d.r.counters.SwapchainsDestroyed++
	return result(common.Success)
}

func (d *instanceDriver) XrEnumerateSwapchainImages(swapchain driver.Swapchain, capacity uint32, count *uint32, images *driver.SwapchainImageBaseHeader) (common.Result, error) {
	state := d.enter("xrEnumerateSwapchainImages")
	defer d.leave()
	sc := d.swapchain(swapchain)
	if state == nil || sc == nil {
		return result(common.ErrorHandleInvalid)
	}

	n := int(sc.images)
	switch sc.session.graphics {
	case GraphicsVulkan:
		buf := (*driver.SwapchainImageVulkanKHR)(unsafe.Pointer(images))
		return result(fillTagged(n, capacity, count, buf,
			func(img *driver.SwapchainImageVulkanKHR) driver.StructureType { return img.Type },
			driver.TypeSwapchainImageVulkanKHR,
			func(i int, img *driver.SwapchainImageVulkanKHR) { img.Image = VulkanImage(swapchain, uint32(i)) }))
	case GraphicsOpenGL:
		buf := (*driver.SwapchainImageOpenGLKHR)(unsafe.Pointer(images))
		return result(fillTagged(n, capacity, count, buf,
			func(img *driver.SwapchainImageOpenGLKHR) driver.StructureType { return img.Type },
			driver.TypeSwapchainImageOpenGLKHR,
			func(i int, img *driver.SwapchainImageOpenGLKHR) { img.Image = OpenGLImage(swapchain, uint32(i)) }))
	}
	return result(common.ErrorValidationFailure)
}

func (d *instanceDriver) XrAcquireSwapchainImage(swapchain driver.Swapchain, acquireInfo *driver.SwapchainImageAcquireInfo, index *uint32) (common.Result, error) {
	state := d.enter("xrAcquireSwapchainImage")
	defer d.leave()
	sc := d.swapchain(swapchain)
	if state == nil || sc == nil {
		return result(common.ErrorHandleInvalid)
	}
	if acquireInfo != nil && acquireInfo.Type != driver.TypeSwapchainImageAcquireInfo {
		return result(common.ErrorValidationFailure)
	}
	if uint32(len(sc.acquired)) == sc.images {
		return result(common.ErrorCallOrderInvalid)
	}
	if sc.images == 1 && sc.released {
		// Static swapchains accept exactly one image.
		return result(common.ErrorCallOrderInvalid)
	}

	*index = sc.next
	sc.acquired = append(sc.acquired, sc.next)
	sc.next = (sc.next + 1) % sc.images
	return result(common.Success)
}

func (d *instanceDriver) XrWaitSwapchainImage(swapchain driver.Swapchain, waitInfo *driver.SwapchainImageWaitInfo) (common.Result, error) {
	state := d.enter("xrWaitSwapchainImage")
	defer d.leave()
	sc := d.swapchain(swapchain)
	if state == nil || sc == nil {
		return result(common.ErrorHandleInvalid)
	}
	if waitInfo.Type != driver.TypeSwapchainImageWaitInfo {
		return result(common.ErrorValidationFailure)
	}
	if sc.waited >= len(sc.acquired) || sc.waited > 0 {
		return result(common.ErrorCallOrderInvalid)
	}
	sc.waited++
	return result(common.Success)
}

func (d *instanceDriver) XrReleaseSwapchainImage(swapchain driver.Swapchain, releaseInfo *driver.SwapchainImageReleaseInfo) (common.Result, error) {
	state := d.enter("xrReleaseSwapchainImage")
	defer d.leave()
	sc := d.swapchain(swapchain)
	if state == nil || sc == nil {
		return result(common.ErrorHandleInvalid)
	}
	if releaseInfo != nil && releaseInfo.Type != driver.TypeSwapchainImageReleaseInfo {
		return result(common.ErrorValidationFailure)
	}
	if sc.waited == 0 {
		return result(common.ErrorCallOrderInvalid)
	}
	sc.acquired = sc.acquired[1:]
	sc.waited--
	sc.released = true
	return result(common.Success)
}
