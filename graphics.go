package openxr

import (
	"fmt"
	"unsafe"
)

// GraphicsAPI names the rendering backend a session was created for.
type GraphicsAPI int

const (
	GraphicsAPIHeadless GraphicsAPI = iota
	GraphicsAPIVulkan
	GraphicsAPIOpenGL
)

func (a GraphicsAPI) String() string {
	switch a {
	case GraphicsAPIHeadless:
		return "Headless"
	case GraphicsAPIVulkan:
		return "Vulkan"
	case GraphicsAPIOpenGL:
		return "OpenGL"
	}
	return fmt.Sprintf("GraphicsAPI(%d)", int(a))
}

// Format is implemented by each backend's swapchain format type. Sessions,
// frame streams and swapchains are parameterized by it, so a format of one
// backend cannot reach a session of another.
type Format[F any] interface {
	comparable
	GraphicsAPI() GraphicsAPI
	// Lower returns the native format value passed to the runtime.
	Lower() int64
	// Raise converts a native format value reported by the runtime.
	Raise(raw int64) F
}

// GraphicsBinding describes the graphics device a session renders with.
type GraphicsBinding interface {
	GraphicsAPI() GraphicsAPI
	// Extension is the instance extension the binding requires, or "" if
	// none.
	Extension() string
	// Chain returns the native binding structure to chain into the session
	// create info, or nil.
	Chain() unsafe.Pointer
}
