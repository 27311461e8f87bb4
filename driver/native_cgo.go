//go:build cgo && !windows

package driver

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef uint64_t w;

static int32_t xr_invoke(void *fn, int n, const uint64_t *a) {
	switch (n) {
	case 0: return ((int32_t (*)(void))fn)();
	case 1: return ((int32_t (*)(w))fn)(a[0]);
	case 2: return ((int32_t (*)(w, w))fn)(a[0], a[1]);
	case 3: return ((int32_t (*)(w, w, w))fn)(a[0], a[1], a[2]);
	case 4: return ((int32_t (*)(w, w, w, w))fn)(a[0], a[1], a[2], a[3]);
	case 5: return ((int32_t (*)(w, w, w, w, w))fn)(a[0], a[1], a[2], a[3], a[4]);
	case 6: return ((int32_t (*)(w, w, w, w, w, w))fn)(a[0], a[1], a[2], a[3], a[4], a[5]);
	case 7: return ((int32_t (*)(w, w, w, w, w, w, w))fn)(a[0], a[1], a[2], a[3], a[4], a[5], a[6]);
	case 8: return ((int32_t (*)(w, w, w, w, w, w, w, w))fn)(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7]);
	}
	return -1;
}
*/
import "C"

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// nativeFunc calls a runtime function through a C trampoline. goffi refuses
// to build with cgo enabled on unix, so cgo builds take this path.
type nativeFunc struct {
	fn unsafe.Pointer
}

func newNativeFunc(fn unsafe.Pointer, argc int) (nativeFunc, error) {
	if argc > maxArgs {
		return nativeFunc{}, errors.Newf("%d arguments exceeds the trampoline limit of %d", argc, maxArgs)
	}
	return nativeFunc{fn: fn}, nil
}

func (f *nativeFunc) addr() unsafe.Pointer {
	return f.fn
}

func (f *nativeFunc) invoke(words []uint64) (int32, error) {
	var a *C.uint64_t
	if len(words) > 0 {
		a = (*C.uint64_t)(unsafe.Pointer(&words[0]))
	}
	return int32(C.xr_invoke(f.fn, C.int(len(words)), a)), nil
}

func openLibrary(path string) (unsafe.Pointer, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	h := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if h == nil {
		return nil, errors.New(C.GoString(C.dlerror()))
	}
	return h, nil
}

func librarySymbol(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sym := C.dlsym(handle, cname)
	if sym == nil {
		return nil, errors.Newf("symbol %s not found", name)
	}
	return sym, nil
}

func closeLibrary(handle unsafe.Pointer) error {
	if C.dlclose(handle) != 0 {
		return errors.New(C.GoString(C.dlerror()))
	}
	return nil
}
