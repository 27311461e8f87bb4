//go:build !xr_static

package driver

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Load opens the runtime loader under its platform default name.
func Load() (Driver, error) {
	return LoadFrom(DefaultLibraryName())
}

// LoadFrom opens the runtime loader at path and resolves the four global
// entry points from it by name. If any of them is missing the library is
// closed again and the error names the symbol.
func LoadFrom(path string) (Driver, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var entry EntryPoints
	symbols := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{symGetInstanceProcAddr, &entry.GetInstanceProcAddr},
		{symCreateInstance, &entry.CreateInstance},
		{symEnumerateInstanceExtensionProperties, &entry.EnumerateInstanceExtensionProperties},
		{symEnumerateAPILayerProperties, &entry.EnumerateAPILayerProperties},
	}
	for _, sym := range symbols {
		addr, err := librarySymbol(handle, sym.name)
		if err == nil && addr == nil {
			err = errors.New("symbol resolved to null")
		}
		if err != nil {
			_ = closeLibrary(handle)
			return nil, &LoadError{Path: path, Symbol: sym.name, Err: err}
		}
		*sym.dst = addr
	}

	lib := newLibrary(path, handle)
	d, err := newGlobalDriver(lib, entry)
	if err != nil {
		_ = lib.release()
		return nil, err
	}
	return d, nil
}
