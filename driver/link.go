//go:build xr_static && cgo

package driver

/*
#cgo LDFLAGS: -lopenxr_loader
#include <stdint.h>

typedef void (*xr_void_fn)(void);

extern int32_t xrGetInstanceProcAddr(uint64_t instance, const char *name, xr_void_fn *function);
extern int32_t xrCreateInstance(const void *createInfo, uint64_t *instance);
extern int32_t xrEnumerateInstanceExtensionProperties(const char *layerName, uint32_t capacity, uint32_t *count, void *properties);
extern int32_t xrEnumerateApiLayerProperties(uint32_t capacity, uint32_t *count, void *properties);

static void *xr_linked_get_instance_proc_addr(void) { return (void *)&xrGetInstanceProcAddr; }
static void *xr_linked_create_instance(void) { return (void *)&xrCreateInstance; }
static void *xr_linked_enumerate_extensions(void) { return (void *)&xrEnumerateInstanceExtensionProperties; }
static void *xr_linked_enumerate_layers(void) { return (void *)&xrEnumerateApiLayerProperties; }
*/
import "C"

// Linked returns a driver over the loader linked into the binary at build
// time. It never fails to find an entry point; the linker already did.
func Linked() (Driver, error) {
	entry := EntryPoints{
		GetInstanceProcAddr:                  C.xr_linked_get_instance_proc_addr(),
		CreateInstance:                       C.xr_linked_create_instance(),
		EnumerateInstanceExtensionProperties: C.xr_linked_enumerate_extensions(),
		EnumerateAPILayerProperties:          C.xr_linked_enumerate_layers(),
	}
	return newGlobalDriver(newLibrary("(linked)", nil), entry)
}
