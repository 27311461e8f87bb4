package driver

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// CreateDriverFromProcAddr builds a driver from an xrGetInstanceProcAddr
// supplied by the host, for instance an engine that already loaded the
// runtime. The remaining global entry points are resolved through it with a
// null instance. The host owns the library; releasing the driver never
// unloads it.
func CreateDriverFromProcAddr(getInstanceProcAddr unsafe.Pointer) (Driver, error) {
	if getInstanceProcAddr == nil {
		return nil, &LoadError{Symbol: symGetInstanceProcAddr, Err: errors.New("null function pointer")}
	}

	bootstrap, err := newProc(symGetInstanceProcAddr, 3, getInstanceProcAddr)
	if err != nil {
		return nil, err
	}

	entry := EntryPoints{GetInstanceProcAddr: getInstanceProcAddr}
	for _, sym := range []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{symCreateInstance, &entry.CreateInstance},
		{symEnumerateInstanceExtensionProperties, &entry.EnumerateInstanceExtensionProperties},
		{symEnumerateAPILayerProperties, &entry.EnumerateAPILayerProperties},
	} {
		addr, err := getProcAddr(&bootstrap, NullInstance, sym.name)
		if err != nil {
			return nil, err
		}
		*sym.dst = addr
	}

	return newGlobalDriver(newLibrary("(host)", nil), entry)
}
