package driver

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// library is a reference counted handle on the runtime loader. The global
// driver holds one reference and every instance driver holds another, so no
// function pointer can be called after the library is closed. handle is nil
// when the entry points were linked or supplied by the host.
type library struct {
	path   string
	handle unsafe.Pointer
	refs   atomic.Int32
}

func newLibrary(path string, handle unsafe.Pointer) *library {
	l := &library{path: path, handle: handle}
	l.refs.Store(1)
	return l
}

func (l *library) retain() {
	l.refs.Add(1)
}

func (l *library) release() error {
	refs := l.refs.Add(-1)
	if refs > 0 {
		return nil
	}
	if refs < 0 {
		return errors.AssertionFailedf("runtime library %q released more times than retained", l.path)
	}
	if l.handle == nil {
		return nil
	}
	handle := l.handle
	l.handle = nil
	return errors.Wrapf(closeLibrary(handle), "closing %s", l.path)
}

func (l *library) references() int32 {
	return l.refs.Load()
}

// DefaultLibraryName is the platform's conventional file name for the
// runtime loader.
func DefaultLibraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "openxr_loader.dll"
	case "darwin", "ios":
		return "libopenxr_loader.dylib"
	case "android":
		return "libopenxr_loader.so"
	default:
		return "libopenxr_loader.so.1"
	}
}
