// Package headless creates sessions without a graphics device through
// XR_MND_headless. Headless sessions run the frame loop and actions but
// offer no swapchain formats, so they cannot submit images.
package headless

import (
	"unsafe"

	"github.com/vkngwrapper/openxr"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

const Extension = driver.ExtensionMNDHeadless

// Format has no valid values. Its zero value exists only so headless
// sessions share the typed session API; Session.CreateSwapchain rejects it
// before calling the runtime.
type Format struct{}

func (Format) GraphicsAPI() openxr.GraphicsAPI {
	return openxr.GraphicsAPIHeadless
}

func (Format) Lower() int64 {
	return 0
}

func (Format) Raise(int64) Format {
	return Format{}
}

type Binding struct{}

func (Binding) GraphicsAPI() openxr.GraphicsAPI {
	return openxr.GraphicsAPIHeadless
}

func (Binding) Extension() string {
	return Extension
}

func (Binding) Chain() unsafe.Pointer {
	return nil
}

func CreateSession(instance *openxr.Instance, system driver.SystemID) (*openxr.Session[Format], *openxr.FrameWaiter, *openxr.FrameStream[Format], common.Result, error) {
	return openxr.CreateSession[Format](instance, system, Binding{})
}
