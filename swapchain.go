package openxr

import (
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
)

// Swapchain is a ring of images the application renders into and the
// runtime composites from. F is the session's backend format type.
type Swapchain[F Format[F]] struct {
	handle  driver.Swapchain
	session *sessionShared
	driver  driver.InstanceDriver
	info    SwapchainCreateInfo[F]
	state   handleState
}

func newSwapchain[F Format[F]](session *sessionShared, handle driver.Swapchain, info SwapchainCreateInfo[F]) *Swapchain[F] {
	session.refs.retain()
	Logger().Debug("created swapchain",
		zap.Uint64("handle", uint64(handle)),
		zap.Int64("format", info.Format.Lower()),
		zap.Uint32("width", info.Width),
		zap.Uint32("height", info.Height))
	return &Swapchain[F]{
		handle:  handle,
		session: session,
		driver:  session.driver,
		info:    info,
	}
}

func (s *Swapchain[F]) check() error {
	return s.state.check("swapchain")
}

// Destroy destroys the native swapchain and releases the session. Calling it
// again does nothing.
func (s *Swapchain[F]) Destroy() {
	if !s.state.markDestroyed() {
		return
	}
	res, err := s.driver.XrDestroySwapchain(s.handle)
	checkResult("swapchain", res, err)
	Logger().Debug("destroyed swapchain", zap.Uint64("handle", uint64(s.handle)))
	s.session.refs.drop()
}

func (s *Swapchain[F]) Handle() driver.Swapchain {
	return s.handle
}

func (s *Swapchain[F]) Format() F {
	return s.info.Format
}

func (s *Swapchain[F]) Width() uint32 {
	return s.info.Width
}

func (s *Swapchain[F]) Height() uint32 {
	return s.info.Height
}

func (s *Swapchain[F]) ArraySize() uint32 {
	return s.info.ArraySize
}

// AcquireImage returns the index of the next image to render into. The
// image may still be in use by the compositor until WaitImage returns.
func (s *Swapchain[F]) AcquireImage() (uint32, common.Result, error) {
	if err := s.check(); err != nil {
		return 0, common.ErrorHandleInvalid, err
	}

	info := driver.SwapchainImageAcquireInfo{Type: driver.TypeSwapchainImageAcquireInfo}
	var index uint32
	res, err := s.driver.XrAcquireSwapchainImage(s.handle, &info, &index)
	if err != nil {
		return 0, res, err
	}
	return index, res, nil
}

// WaitImage waits until the last acquired image may be written. On timeout it
// returns TimeoutExpired, which is a success code; wait again.
func (s *Swapchain[F]) WaitImage(timeout common.Duration) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	info := driver.SwapchainImageWaitInfo{Type: driver.TypeSwapchainImageWaitInfo, Timeout: timeout}
	return s.driver.XrWaitSwapchainImage(s.handle, &info)
}

// ReleaseImage hands the oldest acquired image back to the runtime.
func (s *Swapchain[F]) ReleaseImage() (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	info := driver.SwapchainImageReleaseInfo{Type: driver.TypeSwapchainImageReleaseInfo}
	return s.driver.XrReleaseSwapchainImage(s.handle, &info)
}

// SetName attaches a debug name to the swapchain. Requires
// XR_EXT_debug_utils.
func (s *Swapchain[F]) SetName(name string) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return s.session.instance.setName(common.ObjectTypeSwapchain, uint64(s.handle), name)
}

// EnumerateSwapchainImages lists the images of a swapchain as the backend
// image structure T, which must begin with the structure type and next
// pointer. tag sets the structure type on each element before the runtime
// fills it. Backends wrap this with their own image type.
func EnumerateSwapchainImages[F Format[F], T any](swapchain *Swapchain[F], tag func(*T)) ([]T, common.Result, error) {
	if err := swapchain.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	return common.Enumerate(tag, func(capacity uint32, count *uint32, buf *T) (common.Result, error) {
		return swapchain.driver.XrEnumerateSwapchainImages(swapchain.handle, capacity, count,
			(*driver.SwapchainImageBaseHeader)(unsafe.Pointer(buf)))
	})
}
