// Package openxr is a safe surface over an OpenXR runtime.
//
// An Entry wraps the runtime's global entry points and creates an Instance.
// Instances create sessions with CreateSession, which returns the Session
// together with its one FrameWaiter and one FrameStream. Sessions create
// swapchains and spaces; instances create action sets, which create actions.
//
// Every object is destroyed explicitly with Destroy. Parents are reference
// counted by their children, so destroying an Instance while one of its
// sessions is still alive only drops the caller's reference: the native
// instance goes away once the last child does.
//
// Every call that reaches the runtime returns the raw common.Result next to
// the error so callers can tell success codes such as FrameDiscarded or
// SessionLossPending apart. Failure codes are also wrapped into the error and
// can be tested with errors.Is.
//
// Session, FrameStream and Swapchain carry the graphics backend's format type
// as a type parameter. See the graphics/vulkan, graphics/opengl and
// graphics/headless packages.
package openxr
