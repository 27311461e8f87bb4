package openxr

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
)

// Entry is the starting point of the bindings. It wraps the four global
// entry points of a runtime and creates instances.
type Entry struct {
	driver driver.Driver
	state  handleState
}

// NewEntry wraps an already constructed driver. Load, LoadFrom and Linked
// are the usual ways to get an Entry.
func NewEntry(d driver.Driver) *Entry {
	return &Entry{driver: d}
}

func (e *Entry) Driver() driver.Driver {
	return e.driver
}

// EntryPoints returns the raw addresses of the global entry points.
func (e *Entry) EntryPoints() driver.EntryPoints {
	return e.driver.EntryPoints()
}

// Destroy drops the entry's hold on the runtime library. Instances created
// from the entry stay usable; the library is unloaded after the last of
// them is destroyed.
func (e *Entry) Destroy() error {
	if !e.state.markDestroyed() {
		return nil
	}
	return e.driver.Release()
}

// APILayerProperties describes one API layer the loader can enable.
type APILayerProperties struct {
	LayerName    string
	SpecVersion  common.Version
	LayerVersion uint32
	Description  string
}

// EnumerateExtensions lists the instance extensions the runtime and the
// implicitly enabled layers provide.
func (e *Entry) EnumerateExtensions() (ExtensionSet, common.Result, error) {
	return e.enumerateExtensions(nil)
}

// EnumerateLayerExtensions lists the extensions provided by one API layer.
func (e *Entry) EnumerateLayerExtensions(layer string) (ExtensionSet, common.Result, error) {
	name, err := common.CString(layer)
	if err != nil {
		return nil, common.ErrorValidationFailure, err
	}
	set, res, err := e.enumerateExtensions(name)
	runtime.KeepAlive(name)
	return set, res, err
}

func (e *Entry) enumerateExtensions(layer *byte) (ExtensionSet, common.Result, error) {
	if err := e.state.check("entry"); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	props, res, err := common.Enumerate(
		func(p *driver.ExtensionProperties) { p.Type = driver.TypeExtensionProperties },
		func(capacity uint32, count *uint32, buf *driver.ExtensionProperties) (common.Result, error) {
			return e.driver.XrEnumerateInstanceExtensionProperties(layer, capacity, count, buf)
		})
	if err != nil {
		return nil, res, err
	}

	set, err := extensionSetFromProperties(props)
	if err != nil {
		return nil, res, err
	}
	return set, res, nil
}

// EnumerateLayers lists the API layers the loader knows, keyed by name.
func (e *Entry) EnumerateLayers() (map[string]*APILayerProperties, common.Result, error) {
	if err := e.state.check("entry"); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	props, res, err := common.Enumerate(
		func(p *driver.APILayerProperties) { p.Type = driver.TypeAPILayerProperties },
		e.driver.XrEnumerateAPILayerProperties)
	if err != nil {
		return nil, res, err
	}

	layers := make(map[string]*APILayerProperties, len(props))
	for i := range props {
		name, err := common.DecodeFixed(props[i].LayerName[:])
		if err != nil {
			return nil, res, err
		}
		description, err := common.DecodeFixed(props[i].Description[:])
		if err != nil {
			return nil, res, err
		}
		layers[name] = &APILayerProperties{
			LayerName:    name,
			SpecVersion:  props[i].SpecVersion,
			LayerVersion: props[i].LayerVersion,
			Description:  description,
		}
	}
	return layers, res, nil
}

type ApplicationInfo struct {
	// ApplicationName must not be empty. It holds at most
	// common.MaxApplicationNameSize-1 bytes.
	ApplicationName    string
	ApplicationVersion uint32
	// EngineName holds at most common.MaxEngineNameSize-1 bytes.
	EngineName    string
	EngineVersion uint32
}

type InstanceCreateInfo struct {
	Application ApplicationInfo
	// APIVersion defaults to common.CurrentAPIVersion.
	APIVersion common.Version

	Layers []string
	// Extensions are always requested. The runtime fails instance creation
	// with ErrorExtensionNotPresent if one is missing.
	Extensions []string
	// OptionalExtensions are requested only if the runtime or one of the
	// requested layers advertises them.
	OptionalExtensions []string
}

// CreateInstance creates an instance and resolves its function table. Names
// that do not fit their fixed-capacity fields are rejected before the
// runtime is called.
func (e *Entry) CreateInstance(info InstanceCreateInfo) (*Instance, common.Result, error) {
	if err := e.state.check("entry"); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	createInfo := driver.InstanceCreateInfo{
		Type: driver.TypeInstanceCreateInfo,
		ApplicationInfo: driver.ApplicationInfo{
			ApplicationVersion: info.Application.ApplicationVersion,
			EngineVersion:      info.Application.EngineVersion,
			APIVersion:         info.APIVersion,
		},
	}
	if createInfo.ApplicationInfo.APIVersion == 0 {
		createInfo.ApplicationInfo.APIVersion = common.CurrentAPIVersion
	}
	err := common.EncodeFixed(createInfo.ApplicationInfo.ApplicationName[:], info.Application.ApplicationName)
	if err != nil {
		return nil, common.ErrorNameInvalid, errors.Wrap(err, "application name")
	}
	err = common.EncodeFixed(createInfo.ApplicationInfo.EngineName[:], info.Application.EngineName)
	if err != nil {
		return nil, common.ErrorNameInvalid, errors.Wrap(err, "engine name")
	}

	extensions, err := e.selectExtensions(info)
	if err != nil {
		return nil, common.ErrorValidationFailure, err
	}

	layerNames, err := common.StringArray(info.Layers, common.MaxAPILayerNameSize)
	if err != nil {
		return nil, common.ErrorValidationFailure, errors.Wrap(err, "layer names")
	}
	extensionNames, err := common.StringArray(extensions, common.MaxExtensionNameSize)
	if err != nil {
		return nil, common.ErrorValidationFailure, errors.Wrap(err, "extension names")
	}
	if len(layerNames) > 0 {
		createInfo.EnabledAPILayerCount = uint32(len(layerNames))
		createInfo.EnabledAPILayerNames = unsafe.SliceData(layerNames)
	}
	if len(extensionNames) > 0 {
		createInfo.EnabledExtensionCount = uint32(len(extensionNames))
		createInfo.EnabledExtensionNames = unsafe.SliceData(extensionNames)
	}

	var handle driver.Instance
	res, err := e.driver.XrCreateInstance(&createInfo, &handle)
	runtime.KeepAlive(layerNames)
	runtime.KeepAlive(extensionNames)
	if err != nil {
		return nil, res, err
	}

	instanceDriver, err := e.driver.CreateInstanceDriver(handle, extensions)
	if err != nil {
		e.abandonInstance(handle)
		return nil, common.ErrorInitializationFailed, errors.Wrap(err, "resolving instance functions")
	}

	instance := newInstance(handle, instanceDriver, extensions)
	Logger().Debug("created instance",
		zap.Uint64("handle", uint64(handle)),
		zap.Strings("extensions", extensions),
		zap.Strings("layers", info.Layers))
	return instance, res, nil
}

// selectExtensions returns the required extensions plus whichever optional
// ones are advertised, without duplicates and in request order.
func (e *Entry) selectExtensions(info InstanceCreateInfo) ([]string, error) {
	seen := make(map[string]struct{}, len(info.Extensions)+len(info.OptionalExtensions))
	var out []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, name := range info.Extensions {
		add(name)
	}
	if len(info.OptionalExtensions) == 0 {
		return out, nil
	}

	available, _, err := e.EnumerateExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating extensions")
	}
	for _, layer := range info.Layers {
		layerExtensions, _, err := e.EnumerateLayerExtensions(layer)
		if err != nil {
			// The runtime reports the missing layer when the instance is created.
			continue
		}
		available = available.Union(layerExtensions)
	}

	for _, name := range info.OptionalExtensions {
		if !available.Has(name) {
			Logger().Warn("optional extension not available", zap.String("extension", name))
			continue
		}
		add(name)
	}
	return out, nil
}

// abandonInstance destroys an instance whose function table could not be
// resolved. Only xrDestroyInstance is looked up, so a missing core function
// does not leak the handle.
func (e *Entry) abandonInstance(handle driver.Instance) {
	res, err := e.driver.XrDestroyInstance(handle)
	if err != nil {
		Logger().Error("cannot destroy instance after failed initialization",
			zap.Uint64("handle", uint64(handle)), zap.Stringer("result", res), zap.Error(err))
	}
}
