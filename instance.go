package openxr

import (
	"runtime"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
)

// Instance owns the connection to the runtime. The native instance is
// destroyed once Destroy was called and every session and action set
// created from it is gone too.
type Instance struct {
	handle     driver.Instance
	driver     driver.InstanceDriver
	extensions map[string]struct{}

	refs  *refCounter
	state handleState

	// sessions maps live native sessions to their shared state so polled
	// state changes can be recorded.
	sessions sync.Map
}

func newInstance(handle driver.Instance, d driver.InstanceDriver, extensions []string) *Instance {
	instance := &Instance{
		handle:     handle,
		driver:     d,
		extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, name := range extensions {
		instance.extensions[name] = struct{}{}
	}
	instance.refs = newRefCounter(1, instance.release)
	return instance
}

func (i *Instance) release() {
	res, err := i.driver.XrDestroyInstance()
	checkResult("instance", res, err)
	if err := i.driver.Release(); err != nil {
		Logger().Warn("releasing instance driver", zap.Error(err))
	}
	Logger().Debug("destroyed instance", zap.Uint64("handle", uint64(i.handle)))
}

// Destroy drops the caller's reference. The native instance is destroyed
// immediately if nothing else holds it, otherwise when its last session or
// action set is destroyed. Calling Destroy again does nothing.
func (i *Instance) Destroy() {
	if i.state.markDestroyed() {
		i.refs.drop()
	}
}

// references returns the number of owners of the native instance: the
// caller until Destroy, plus each live session and action set.
func (i *Instance) references() int32 {
	return i.refs.count()
}

func (i *Instance) check() error {
	return i.state.check("instance")
}

func (i *Instance) Handle() driver.Instance {
	return i.handle
}

// Check returns an error wrapping common.ErrHandleDestroyed once Destroy was
// called. Packages that call Driver directly check it first.
func (i *Instance) Check() error {
	return i.check()
}

// Driver returns the instance's function table, for calls this package does
// not wrap.
func (i *Instance) Driver() driver.InstanceDriver {
	return i.driver
}

// EnabledExtensions returns the extensions enabled on this instance, in
// lexical order.
func (i *Instance) EnabledExtensions() []string {
	names := make([]string, 0, len(i.extensions))
	for name := range i.extensions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (i *Instance) ExtensionEnabled(name string) bool {
	_, ok := i.extensions[name]
	return ok
}

func (i *Instance) requireExtension(extension, function string) error {
	if i.ExtensionEnabled(extension) {
		return nil
	}
	return common.ExtensionNotEnabled(extension, function)
}

type InstanceProperties struct {
	RuntimeVersion common.Version
	RuntimeName    string
}

func (i *Instance) Properties() (*InstanceProperties, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	props := driver.InstanceProperties{Type: driver.TypeInstanceProperties}
	res, err := i.driver.XrGetInstanceProperties(&props)
	if err != nil {
		return nil, res, err
	}
	name, err := common.DecodeFixed(props.RuntimeName[:])
	if err != nil {
		return nil, res, err
	}
	return &InstanceProperties{RuntimeVersion: props.RuntimeVersion, RuntimeName: name}, res, nil
}

// System returns the system of the given form factor. ErrorFormFactorUnavailable
// means the device exists but is not connected right now; try again later.
func (i *Instance) System(formFactor common.FormFactor) (driver.SystemID, common.Result, error) {
	if err := i.check(); err != nil {
		return driver.NullSystemID, common.ErrorHandleInvalid, err
	}

	info := driver.SystemGetInfo{Type: driver.TypeSystemGetInfo, FormFactor: formFactor}
	var system driver.SystemID
	res, err := i.driver.XrGetSystem(&info, &system)
	if err != nil {
		return driver.NullSystemID, res, err
	}
	return system, res, nil
}

type SystemProperties struct {
	SystemID   driver.SystemID
	VendorID   uint32
	SystemName string

	MaxSwapchainImageWidth  uint32
	MaxSwapchainImageHeight uint32
	MaxLayerCount           uint32

	OrientationTracking bool
	PositionTracking    bool
}

func (i *Instance) SystemProperties(system driver.SystemID) (*SystemProperties, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	props := driver.SystemProperties{Type: driver.TypeSystemProperties}
	res, err := i.driver.XrGetSystemProperties(system, &props)
	if err != nil {
		return nil, res, err
	}
	name, err := common.DecodeFixed(props.SystemName[:])
	if err != nil {
		return nil, res, err
	}
	return &SystemProperties{
		SystemID:                props.SystemID,
		VendorID:                props.VendorID,
		SystemName:              name,
		MaxSwapchainImageWidth:  props.GraphicsProperties.MaxSwapchainImageWidth,
		MaxSwapchainImageHeight: props.GraphicsProperties.MaxSwapchainImageHeight,
		MaxLayerCount:           props.GraphicsProperties.MaxLayerCount,
		OrientationTracking:     props.TrackingProperties.OrientationTracking.Bool(),
		PositionTracking:        props.TrackingProperties.PositionTracking.Bool(),
	}, res, nil
}

// EnumerateViewConfigurations lists the view configurations of a system in
// the runtime's order of preference.
func (i *Instance) EnumerateViewConfigurations(system driver.SystemID) ([]common.ViewConfigurationType, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	return common.Enumerate(nil, func(capacity uint32, count *uint32, buf *common.ViewConfigurationType) (common.Result, error) {
		return i.driver.XrEnumerateViewConfigurations(system, capacity, count, buf)
	})
}

type ViewConfigurationView struct {
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

// EnumerateViewConfigurationViews returns one entry per view of the
// configuration, e.g. two for PrimaryStereo.
func (i *Instance) EnumerateViewConfigurationViews(system driver.SystemID, viewConfigurationType common.ViewConfigurationType) ([]ViewConfigurationView, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	raw, res, err := common.Enumerate(
		func(v *driver.ViewConfigurationView) { v.Type = driver.TypeViewConfigurationView },
		func(capacity uint32, count *uint32, buf *driver.ViewConfigurationView) (common.Result, error) {
			return i.driver.XrEnumerateViewConfigurationViews(system, viewConfigurationType, capacity, count, buf)
		})
	if err != nil {
		return nil, res, err
	}

	views := make([]ViewConfigurationView, len(raw))
	for n, v := range raw {
		views[n] = ViewConfigurationView{
			RecommendedImageRectWidth:       v.RecommendedImageRectWidth,
			MaxImageRectWidth:               v.MaxImageRectWidth,
			RecommendedImageRectHeight:      v.RecommendedImageRectHeight,
			MaxImageRectHeight:              v.MaxImageRectHeight,
			RecommendedSwapchainSampleCount: v.RecommendedSwapchainSampleCount,
			MaxSwapchainSampleCount:         v.MaxSwapchainSampleCount,
		}
	}
	return views, res, nil
}

func (i *Instance) EnumerateEnvironmentBlendModes(system driver.SystemID, viewConfigurationType common.ViewConfigurationType) ([]common.EnvironmentBlendMode, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	return common.Enumerate(nil, func(capacity uint32, count *uint32, buf *common.EnvironmentBlendMode) (common.Result, error) {
		return i.driver.XrEnumerateEnvironmentBlendModes(system, viewConfigurationType, capacity, count, buf)
	})
}

// StringToPath interns a semantic path such as "/user/hand/left".
func (i *Instance) StringToPath(path string) (driver.Path, common.Result, error) {
	if err := i.check(); err != nil {
		return driver.NullPath, common.ErrorHandleInvalid, err
	}
	if len(path) > common.MaxPathLength-1 {
		return driver.NullPath, common.ErrorPathFormatInvalid,
			errors.Wrapf(common.ErrNameTooLong, "path %q is %d bytes", path, len(path))
	}
	cpath, err := common.CString(path)
	if err != nil {
		return driver.NullPath, common.ErrorPathFormatInvalid, err
	}

	var out driver.Path
	res, err := i.driver.XrStringToPath(cpath, &out)
	runtime.KeepAlive(cpath)
	if err != nil {
		return driver.NullPath, res, errors.Wrapf(err, "path %q", path)
	}
	return out, res, nil
}

// PathToString returns the text of an interned path.
func (i *Instance) PathToString(path driver.Path) (string, common.Result, error) {
	if err := i.check(); err != nil {
		return "", common.ErrorHandleInvalid, err
	}
	return common.EnumerateString(func(capacity uint32, count *uint32, buf *byte) (common.Result, error) {
		return i.driver.XrPathToString(path, capacity, count, buf)
	})
}

// ResultToString asks the runtime for the name of a result code, which may
// include runtime-specific codes this package does not know.
func (i *Instance) ResultToString(value common.Result) (string, error) {
	if err := i.check(); err != nil {
		return "", err
	}

	var buf [common.MaxResultStringSize]byte
	if _, err := i.driver.XrResultToString(value, &buf); err != nil {
		return "", err
	}
	return common.DecodeFixed(buf[:])
}

// SetName attaches a debug name to any object of this instance. Requires
// XR_EXT_debug_utils.
func (i *Instance) SetName(objectType common.ObjectType, handle uint64, name string) (common.Result, error) {
	if err := i.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return i.setName(objectType, handle, name)
}

// setName skips the destroyed check so children can name themselves after
// the caller dropped the instance.
func (i *Instance) setName(objectType common.ObjectType, handle uint64, name string) (common.Result, error) {
	if err := i.requireExtension(driver.ExtensionEXTDebugUtils, "xrSetDebugUtilsObjectNameEXT"); err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	cname, err := common.CString(name)
	if err != nil {
		return common.ErrorValidationFailure, err
	}

	info := driver.DebugUtilsObjectNameInfoEXT{
		Type:         driver.TypeDebugUtilsObjectNameInfoEXT,
		ObjectType:   objectType,
		ObjectHandle: handle,
		ObjectName:   cname,
	}
	res, err := i.driver.XrSetDebugUtilsObjectNameEXT(&info)
	runtime.KeepAlive(cname)
	return res, err
}

func (i *Instance) registerSession(s *sessionShared) {
	i.sessions.Store(s.handle, s)
}

func (i *Instance) unregisterSession(s *sessionShared) {
	i.sessions.CompareAndDelete(s.handle, s)
}

func (i *Instance) lookupSession(handle driver.Session) *sessionShared {
	if v, ok := i.sessions.Load(handle); ok {
		return v.(*sessionShared)
	}
	return nil
}
