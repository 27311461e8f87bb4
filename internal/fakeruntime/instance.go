package fakeruntime

import (
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

const (
	systemHMD      driver.SystemID = 1
	systemHandheld driver.SystemID = 2
	maxLayerCount                  = 16
)

type instanceState struct {
	handle     driver.Instance
	destroyed  bool
	extensions map[string]struct{}
	// requirements records which graphics requirements functions were
	// called; sessions of that API cannot be created before.
	requirements map[string]bool
	systems      map[driver.SystemID]bool
	actionSets   map[string]driver.ActionSet
	events       []func(*driver.EventDataBuffer)
}

func (s *instanceState) enabled(extension string) bool {
	_, ok := s.extensions[extension]
	return ok
}

func (s *instanceState) push(write func(*driver.EventDataBuffer)) {
	s.events = append(s.events, write)
}

// instanceDriver is the function table of one fake instance. Every call
// checks that the instance still exists, as a real loader's trampolines do.
type instanceDriver struct {
	r        *Runtime
	instance driver.Instance
	loaded   map[string]struct{}
	released bool
}

var _ driver.InstanceDriver = (*instanceDriver)(nil)

func (d *instanceDriver) Instance() driver.Instance {
	return d.instance
}

func (d *instanceDriver) ExtensionLoaded(extension string) bool {
	_, ok := d.loaded[extension]
	return ok
}

func (d *instanceDriver) Release() error {
	d.r.mu.Lock()
	defer d.r.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true
	d.r.references--
	return nil
}

// enter locks the runtime, records the call and returns the instance state,
// or nil when the instance is gone or the driver was released.
func (d *instanceDriver) enter(name string) *instanceState {
	d.r.mu.Lock()
	d.r.record(name)
	if d.released {
		d.r.violation("%s called through a released instance driver", name)
		return nil
	}
	state := d.r.instances[d.instance]
	if state == nil || state.destroyed {
		d.r.violation("%s called on destroyed instance %d", name, d.instance)
		return nil
	}
	return state
}

func (d *instanceDriver) leave() {
	d.r.mu.Unlock()
}

// gated is entered by extension functions. It returns a non-nil error when
// the function would not have been resolved.
func (d *instanceDriver) gated(name, extension string) (*instanceState, error) {
	state := d.enter(name)
	if state == nil {
		return nil, common.ErrorHandleInvalid.ToError()
	}
	if !d.ExtensionLoaded(extension) {
		d.r.violation("%s called without %s", name, extension)
		return nil, common.ExtensionNotEnabled(extension, name)
	}
	return state, nil
}

func (d *instanceDriver) XrDestroyInstance() (common.Result, error) {
	state := d.enter("xrDestroyInstance")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}

	for _, session := range d.r.sessions {
		if session.instance == state && !session.destroyed {
			d.r.violation("instance %d destroyed before session %d", state.handle, session.handle)
		}
	}
	for _, set := range d.r.actionSets {
		if set.instance == state && !set.destroyed {
			d.r.violation("instance %d destroyed before action set %d", state.handle, set.handle)
		}
	}
	state.destroyed = true
	d.r.counters.InstancesDestroyed++
	return result(common.Success)
}

func (d *instanceDriver) XrGetInstanceProperties(properties *driver.InstanceProperties) (common.Result, error) {
	state := d.enter("xrGetInstanceProperties")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if properties.Type != driver.TypeInstanceProperties {
		return result(common.ErrorValidationFailure)
	}

	properties.RuntimeVersion = d.r.opts.RuntimeVersion
	_ = common.EncodeFixed(properties.RuntimeName[:], d.r.opts.RuntimeName)
	return result(common.Success)
}

func (d *instanceDriver) XrPollEvent(eventData *driver.EventDataBuffer) (common.Result, error) {
	state := d.enter("xrPollEvent")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if eventData.Type != driver.TypeEventDataBuffer {
		return result(common.ErrorValidationFailure)
	}
	if len(state.events) == 0 {
		return result(common.EventUnavailable)
	}

	write := state.events[0]
	state.events = state.events[1:]
	*eventData = driver.EventDataBuffer{}
	write(eventData)
	return result(common.Success)
}

// PushEvent queues a raw event structure on an instance. T must be one of
// the driver.EventData structures with its Type already set.
func PushEvent[T any](r *Runtime, instance driver.Instance, event T) error {
	if unsafe.Sizeof(event) > unsafe.Sizeof(driver.EventDataBuffer{}) {
		return errors.Newf("%T does not fit the event buffer", event)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.instances[instance]
	if state == nil || state.destroyed {
		return errors.Newf("unknown instance %d", instance)
	}
	state.push(func(buf *driver.EventDataBuffer) {
		*(*T)(unsafe.Pointer(buf)) = event
	})
	return nil
}

func (d *instanceDriver) XrResultToString(value common.Result, buffer *[common.MaxResultStringSize]byte) (common.Result, error) {
	state := d.enter("xrResultToString")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}

	name := value.String()
	if len(name) > common.MaxResultStringSize-1 {
		name = name[:common.MaxResultStringSize-1]
	}
	_ = common.EncodeFixed(buffer[:], name)
	return result(common.Success)
}

func validPath(path string) bool {
	if !strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return false
	}
	for _, c := range path {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '/', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func (r *Runtime) intern(path string) driver.Path {
	if id, ok := r.pathIDs[path]; ok {
		return id
	}
	r.paths = append(r.paths, path)
	id := driver.Path(len(r.paths))
	r.pathIDs[path] = id
	return id
}

func (r *Runtime) pathString(path driver.Path) (string, bool) {
	if path == driver.NullPath || int(path) > len(r.paths) {
		return "", false
	}
	return r.paths[path-1], true
}

func (d *instanceDriver) XrStringToPath(pathString *byte, path *driver.Path) (common.Result, error) {
	state := d.enter("xrStringToPath")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}

	s := goString(pathString)
	if !validPath(s) {
		return result(common.ErrorPathFormatInvalid)
	}
	*path = d.r.intern(s)
	return result(common.Success)
}

func (d *instanceDriver) XrPathToString(path driver.Path, capacity uint32, count *uint32, buffer *byte) (common.Result, error) {
	state := d.enter("xrPathToString")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}

	s, ok := d.r.pathString(path)
	if !ok {
		return result(common.ErrorPathInvalid)
	}
	return result(fillString(s, capacity, count, buffer))
}

func (d *instanceDriver) XrGetSystem(getInfo *driver.SystemGetInfo, systemID *driver.SystemID) (common.Result, error) {
	state := d.enter("xrGetSystem")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if getInfo.Type != driver.TypeSystemGetInfo {
		return result(common.ErrorValidationFailure)
	}

	var id driver.SystemID
	switch getInfo.FormFactor {
	case common.FormFactorHeadMountedDisplay:
		id = systemHMD
	case common.FormFactorHandheldDisplay:
		id = systemHandheld
	default:
		return result(common.ErrorFormFactorUnsupported)
	}
	supported := false
	for _, ff := range d.r.opts.FormFactors {
		supported = supported || ff == getInfo.FormFactor
	}
	if !supported {
		return result(common.ErrorFormFactorUnsupported)
	}
	state.systems[id] = true
	*systemID = id
	return result(common.Success)
}

func (d *instanceDriver) XrGetSystemProperties(systemID driver.SystemID, properties *driver.SystemProperties) (common.Result, error) {
	state := d.enter("xrGetSystemProperties")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !state.systems[systemID] {
		return result(common.ErrorSystemInvalid)
	}
	if properties.Type != driver.TypeSystemProperties {
		return result(common.ErrorValidationFailure)
	}

	properties.SystemID = systemID
	properties.VendorID = 0xfa4e
	_ = common.EncodeFixed(properties.SystemName[:], "Fake HMD")
	properties.GraphicsProperties = driver.SystemGraphicsProperties{
		MaxSwapchainImageWidth:  4096,
		MaxSwapchainImageHeight: 4096,
		MaxLayerCount:           maxLayerCount,
	}
	properties.TrackingProperties = driver.SystemTrackingProperties{
		OrientationTracking: common.True,
		PositionTracking:    common.True,
	}
	return result(common.Success)
}

func (d *instanceDriver) XrEnumerateEnvironmentBlendModes(systemID driver.SystemID, viewConfigurationType common.ViewConfigurationType, capacity uint32, count *uint32, modes *common.EnvironmentBlendMode) (common.Result, error) {
	state := d.enter("xrEnumerateEnvironmentBlendModes")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !state.systems[systemID] {
		return result(common.ErrorSystemInvalid)
	}
	if !d.r.viewConfigurationSupported(viewConfigurationType) {
		return result(common.ErrorViewConfigurationTypeUnsupported)
	}
	return result(fill([]common.EnvironmentBlendMode{common.EnvironmentBlendModeOpaque}, capacity, count, modes))
}

func (r *Runtime) viewConfigurationSupported(t common.ViewConfigurationType) bool {
	for _, supported := range r.opts.ViewConfigurations {
		if supported == t {
			return true
		}
	}
	return false
}

func viewCount(t common.ViewConfigurationType) int {
	if t == common.ViewConfigurationTypePrimaryStereo {
		return 2
	}
	return 1
}

func (d *instanceDriver) XrEnumerateViewConfigurations(systemID driver.SystemID, capacity uint32, count *uint32, types *common.ViewConfigurationType) (common.Result, error) {
	state := d.enter("xrEnumerateViewConfigurations")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !state.systems[systemID] {
		return result(common.ErrorSystemInvalid)
	}
	return result(fill(d.r.opts.ViewConfigurations, capacity, count, types))
}

func (d *instanceDriver) XrEnumerateViewConfigurationViews(systemID driver.SystemID, viewConfigurationType common.ViewConfigurationType, capacity uint32, count *uint32, views *driver.ViewConfigurationView) (common.Result, error) {
	state := d.enter("xrEnumerateViewConfigurationViews")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !state.systems[systemID] {
		return result(common.ErrorSystemInvalid)
	}
	if !d.r.viewConfigurationSupported(viewConfigurationType) {
		return result(common.ErrorViewConfigurationTypeUnsupported)
	}

	return result(fillTagged(viewCount(viewConfigurationType), capacity, count, views,
		func(v *driver.ViewConfigurationView) driver.StructureType { return v.Type },
		driver.TypeViewConfigurationView,
		func(_ int, v *driver.ViewConfigurationView) {
			v.RecommendedImageRectWidth = 1440
			v.MaxImageRectWidth = 4096
			v.RecommendedImageRectHeight = 1600
			v.MaxImageRectHeight = 4096
			v.RecommendedSwapchainSampleCount = 1
			v.MaxSwapchainSampleCount = 4
		}))
}

func (d *instanceDriver) XrSetDebugUtilsObjectNameEXT(nameInfo *driver.DebugUtilsObjectNameInfoEXT) (common.Result, error) {
	_, err := d.gated("xrSetDebugUtilsObjectNameEXT", driver.ExtensionEXTDebugUtils)
	defer d.leave()
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	if nameInfo.Type != driver.TypeDebugUtilsObjectNameInfoEXT || nameInfo.ObjectHandle == 0 {
		return result(common.ErrorValidationFailure)
	}
	d.r.names[nameInfo.ObjectHandle] = goString(nameInfo.ObjectName)
	return result(common.Success)
}

func (d *instanceDriver) XrGetVulkanGraphicsRequirementsKHR(systemID driver.SystemID, requirements *driver.GraphicsRequirementsVulkanKHR) (common.Result, error) {
	state, err := d.gated("xrGetVulkanGraphicsRequirementsKHR", driver.ExtensionKHRVulkanEnable)
	defer d.leave()
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	if !state.systems[systemID] {
		return result(common.ErrorSystemInvalid)
	}
	if requirements.Type != driver.TypeGraphicsRequirementsVulkanKHR {
		return result(common.ErrorValidationFailure)
	}
	requirements.MinAPIVersionSupported = common.MakeVersion(1, 0, 0)
	requirements.MaxAPIVersionSupported = common.MakeVersion(1, 3, 0)
	state.requirements[driver.ExtensionKHRVulkanEnable] = true
	return result(common.Success)
}

func (d *instanceDriver) XrGetOpenGLGraphicsRequirementsKHR(systemID driver.SystemID, requirements *driver.GraphicsRequirementsOpenGLKHR) (common.Result, error) {
	state, err := d.gated("xrGetOpenGLGraphicsRequirementsKHR", driver.ExtensionKHROpenGLEnable)
	defer d.leave()
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	if !state.systems[systemID] {
		return result(common.ErrorSystemInvalid)
	}
	if requirements.Type != driver.TypeGraphicsRequirementsOpenGLKHR {
		return result(common.ErrorValidationFailure)
	}
	requirements.MinAPIVersionSupported = common.MakeVersion(4, 0, 0)
	requirements.MaxAPIVersionSupported = common.MakeVersion(4, 6, 0)
	state.requirements[driver.ExtensionKHROpenGLEnable] = true
	return result(common.Success)
}
