package driver

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
)

const (
	symGetInstanceProcAddr                  = "xrGetInstanceProcAddr"
	symCreateInstance                       = "xrCreateInstance"
	symEnumerateInstanceExtensionProperties = "xrEnumerateInstanceExtensionProperties"
	symEnumerateAPILayerProperties          = "xrEnumerateApiLayerProperties"
)

type globalDriver struct {
	lib      *library
	entry    EntryPoints
	released atomic.Bool

	getInstanceProcAddr                  proc
	createInstance                       proc
	enumerateInstanceExtensionProperties proc
	enumerateAPILayerProperties          proc
}

var _ Driver = (*globalDriver)(nil)

func newGlobalDriver(lib *library, entry EntryPoints) (*globalDriver, error) {
	d := &globalDriver{lib: lib, entry: entry}
	slots := []struct {
		procSlot
		addr unsafe.Pointer
	}{
		{procSlot{&d.getInstanceProcAddr, symGetInstanceProcAddr, 3}, entry.GetInstanceProcAddr},
		{procSlot{&d.createInstance, symCreateInstance, 2}, entry.CreateInstance},
		{procSlot{&d.enumerateInstanceExtensionProperties, symEnumerateInstanceExtensionProperties, 4}, entry.EnumerateInstanceExtensionProperties},
		{procSlot{&d.enumerateAPILayerProperties, symEnumerateAPILayerProperties, 3}, entry.EnumerateAPILayerProperties},
	}
	for _, slot := range slots {
		p, err := newProc(slot.name, slot.argc, slot.addr)
		if err != nil {
			return nil, err
		}
		*slot.dst = p
	}
	return d, nil
}

func (d *globalDriver) EntryPoints() EntryPoints {
	return d.entry
}

func (d *globalDriver) XrCreateInstance(createInfo *InstanceCreateInfo, instance *Instance) (common.Result, error) {
	var a args
	return d.createInstance.call(a.ptr(unsafe.Pointer(createInfo)).ptr(unsafe.Pointer(instance)))
}

func (d *globalDriver) XrEnumerateInstanceExtensionProperties(layerName *byte, capacity uint32, count *uint32, properties *ExtensionProperties) (common.Result, error) {
	var a args
	return d.enumerateInstanceExtensionProperties.call(a.ptr(unsafe.Pointer(layerName)).u32(capacity).ptr(unsafe.Pointer(count)).ptr(unsafe.Pointer(properties)))
}

func (d *globalDriver) XrEnumerateAPILayerProperties(capacity uint32, count *uint32, properties *APILayerProperties) (common.Result, error) {
	var a args
	return d.enumerateAPILayerProperties.call(a.u32(capacity).ptr(unsafe.Pointer(count)).ptr(unsafe.Pointer(properties)))
}

// getProcAddr resolves one function of instance (or a global function when
// instance is null).
func getProcAddr(getInstanceProcAddr *proc, instance Instance, name string) (unsafe.Pointer, error) {
	cname, err := common.CString(name)
	if err != nil {
		return nil, err
	}
	var fn unsafe.Pointer
	var a args
	_, err = getInstanceProcAddr.call(a.u64(uint64(instance)).ptr(unsafe.Pointer(cname)).ptr(unsafe.Pointer(&fn)))
	if err != nil {
		return nil, &LoadError{Symbol: name, Err: err}
	}
	if fn == nil {
		return nil, &LoadError{Symbol: name, Err: errors.New("runtime returned a null function pointer")}
	}
	return fn, nil
}

func resolveSlots(getInstanceProcAddr *proc, instance Instance, slots []procSlot) error {
	for _, slot := range slots {
		addr, err := getProcAddr(getInstanceProcAddr, instance, slot.name)
		if err != nil {
			return err
		}
		p, err := newProc(slot.name, slot.argc, addr)
		if err != nil {
			return err
		}
		*slot.dst = p
	}
	return nil
}

func (d *globalDriver) CreateInstanceDriver(instance Instance, enabledExtensions []string) (InstanceDriver, error) {
	if d.released.Load() {
		return nil, errors.Wrap(common.ErrHandleDestroyed, "global driver was released")
	}
	d.lib.retain()
	driver, err := newInstanceDriver(d.lib, d.getInstanceProcAddr, instance, enabledExtensions)
	if err != nil {
		_ = d.lib.release()
		return nil, err
	}
	return driver, nil
}

func (d *globalDriver) XrDestroyInstance(instance Instance) (common.Result, error) {
	addr, err := getProcAddr(&d.getInstanceProcAddr, instance, "xrDestroyInstance")
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	destroy, err := newProc("xrDestroyInstance", 1, addr)
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	var a args
	return destroy.call(a.u64(uint64(instance)))
}

func (d *globalDriver) Release() error {
	if !d.released.CompareAndSwap(false, true) {
		return nil
	}
	return d.lib.release()
}
