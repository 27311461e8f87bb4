// Package driver is the raw layer of the bindings: handle types, structures
// laid out like the native ones, and the function tables that call into the
// runtime.
//
// A Driver holds the four global entry points. It is obtained with Load or
// LoadFrom (dynamic loading, the default build), Linked (build tag xr_static,
// which links the loader at build time) or CreateDriverFromProcAddr (the host
// already has the runtime open). Driver.CreateInstanceDriver resolves the
// per-instance table once an instance exists, including the functions of
// every enabled extension this package knows.
//
// Builds with cgo disabled (and all Windows builds) call the runtime through
// goffi. Unix builds with cgo enabled use a small C trampoline instead.
//
// Nothing in this package validates arguments or tracks ownership; that is the
// job of the openxr package built on top of it.
package driver
