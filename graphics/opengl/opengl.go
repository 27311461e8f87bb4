// Package opengl binds OpenXR sessions to an OpenGL context on Xlib through
// XR_KHR_opengl_enable.
package opengl

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

const Extension = driver.ExtensionKHROpenGLEnable

// XlibBinding names the GLX context a session renders with. The context
// must be current on the thread that creates the session.
type XlibBinding struct {
	XDisplay    unsafe.Pointer
	VisualID    uint32
	GLXFBConfig unsafe.Pointer
	GLXDrawable uint64
	GLXContext  unsafe.Pointer

	raw driver.GraphicsBindingOpenGLXlibKHR
}

func (b *XlibBinding) GraphicsAPI() openxr.GraphicsAPI {
	return openxr.GraphicsAPIOpenGL
}

func (b *XlibBinding) Extension() string {
	return Extension
}

func (b *XlibBinding) Chain() unsafe.Pointer {
	b.raw = driver.GraphicsBindingOpenGLXlibKHR{
		Type:        driver.TypeGraphicsBindingOpenGLXlibKHR,
		XDisplay:    b.XDisplay,
		VisualID:    b.VisualID,
		GLXFBConfig: b.GLXFBConfig,
		GLXDrawable: b.GLXDrawable,
		GLXContext:  b.GLXContext,
	}
	return unsafe.Pointer(&b.raw)
}

func CreateSession(instance *openxr.Instance, system driver.SystemID, binding *XlibBinding) (*openxr.Session[Format], *openxr.FrameWaiter, *openxr.FrameStream[Format], common.Result, error) {
	if binding == nil {
		return nil, nil, nil, common.ErrorValidationFailure, errors.New("opengl: nil binding")
	}
	return openxr.CreateSession[Format](instance, system, binding)
}

// Requirements is the range of OpenGL versions the runtime supports.
type Requirements struct {
	MinAPIVersion common.Version
	MaxAPIVersion common.Version
}

func (r Requirements) Supports(major, minor uint32) bool {
	v := common.MakeVersion(major, minor, 0)
	return v.IsAtLeast(common.MakeVersion(r.MinAPIVersion.Major(), r.MinAPIVersion.Minor(), 0)) &&
		common.MakeVersion(r.MaxAPIVersion.Major(), r.MaxAPIVersion.Minor(), 0).IsAtLeast(v)
}

func GraphicsRequirements(instance *openxr.Instance, system driver.SystemID) (Requirements, common.Result, error) {
	if err := instance.Check(); err != nil {
		return Requirements{}, common.ErrorHandleInvalid, err
	}
	raw := driver.GraphicsRequirementsOpenGLKHR{Type: driver.TypeGraphicsRequirementsOpenGLKHR}
	res, err := instance.Driver().XrGetOpenGLGraphicsRequirementsKHR(system, &raw)
	if err != nil {
		return Requirements{}, res, errors.Wrap(err, "opengl graphics requirements")
	}
	return Requirements{
		MinAPIVersion: raw.MinAPIVersionSupported,
		MaxAPIVersion: raw.MaxAPIVersionSupported,
	}, res, nil
}

// EnumerateImages returns the texture names of the swapchain's images in
// index order.
func EnumerateImages(swapchain *openxr.Swapchain[Format]) ([]uint32, common.Result, error) {
	raw, res, err := openxr.EnumerateSwapchainImages(swapchain, func(img *driver.SwapchainImageOpenGLKHR) {
		img.Type = driver.TypeSwapchainImageOpenGLKHR
	})
	if err != nil {
		return nil, res, err
	}
	textures := make([]uint32, len(raw))
	for i, img := range raw {
		textures[i] = img.Image
	}
	return textures, res, nil
}
