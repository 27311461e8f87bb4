//go:build !cgo || windows

package driver

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// nativeFunc calls a runtime function through goffi with the platform's
// default calling convention.
type nativeFunc struct {
	fn  unsafe.Pointer
	cif types.CallInterface
}

func newNativeFunc(fn unsafe.Pointer, argc int) (nativeFunc, error) {
	argTypes := make([]*types.TypeDescriptor, argc)
	for i := range argTypes {
		argTypes[i] = types.UInt64TypeDescriptor
	}

	f := nativeFunc{fn: fn}
	err := ffi.PrepareCallInterface(&f.cif, types.DefaultCall, types.SInt32TypeDescriptor, argTypes)
	if err != nil {
		return nativeFunc{}, errors.Wrap(err, "preparing call interface")
	}
	return f, nil
}

func (f *nativeFunc) addr() unsafe.Pointer {
	return f.fn
}

func (f *nativeFunc) invoke(words []uint64) (int32, error) {
	// A prepared interface must not be shared between concurrent calls.
	cif := f.cif

	avalue := make([]unsafe.Pointer, len(words))
	for i := range words {
		avalue[i] = unsafe.Pointer(&words[i])
	}

	var ret uint64
	if err := ffi.CallFunction(&cif, f.fn, unsafe.Pointer(&ret), avalue); err != nil {
		return 0, err
	}
	return int32(uint32(ret)), nil
}

func openLibrary(path string) (unsafe.Pointer, error) {
	return ffi.LoadLibrary(path)
}

func librarySymbol(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	return ffi.GetSymbol(handle, name)
}

func closeLibrary(handle unsafe.Pointer) error {
	return ffi.FreeLibrary(handle)
}
