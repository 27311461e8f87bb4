// Package fakeruntime is an in-memory OpenXR runtime implementing
// driver.Driver and driver.InstanceDriver. It follows the runtime side of
// the protocol closely enough to reject out-of-order calls the way a real
// runtime does, and records every call so tests can assert what reached the
// runtime.
package fakeruntime

import (
	"slices"
	"sync"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// Layer is an API layer the fake loader advertises.
type Layer struct {
	Name        string
	Description string
	Extensions  map[string]uint32
}

type Options struct {
	RuntimeName    string
	RuntimeVersion common.Version

	// Extensions advertised by the runtime itself. Defaults to every
	// extension in KnownExtensions.
	Extensions map[string]uint32
	Layers     []Layer
	// UnresolvableExtension names an extension whose functions fail to
	// resolve when an instance driver is created.
	UnresolvableExtension string
	// UnresolvableCoreFunction names a core function that fails to resolve
	// when an instance driver is created.
	UnresolvableCoreFunction string

	FormFactors        []common.FormFactor
	ViewConfigurations []common.ViewConfigurationType
	ReferenceSpaces    []common.ReferenceSpaceType
	// ReferenceSpacesAddedAfterProbe become visible one by one after each
	// capacity probe of xrEnumerateReferenceSpaces, like a runtime whose
	// answer changes between the two calls.
	ReferenceSpacesAddedAfterProbe []common.ReferenceSpaceType

	VulkanFormats       []int64
	OpenGLFormats       []int64
	SwapchainImageCount uint32

	DisplayPeriod common.Duration
	// WaitFrameDelay is slept inside every xrWaitFrame before the runtime
	// state is touched.
	WaitFrameDelay time.Duration

	// VisibilityMaskVertexCounts is the vertex count reported by successive
	// xrGetVisibilityMaskKHR calls; the last entry repeats. Index counts are
	// derived from it.
	VisibilityMaskVertexCounts []uint32

	// LocalizedNames overrides the localized name of an input source path.
	LocalizedNames map[string]string
}

// KnownExtensions are the extensions the fake implements.
var KnownExtensions = map[string]uint32{
	driver.ExtensionKHRVisibilityMask: 2,
	driver.ExtensionEXTDebugUtils:     5,
	driver.ExtensionKHRVulkanEnable:   8,
	driver.ExtensionKHROpenGLEnable:   10,
	driver.ExtensionFBSpatialEntity:   3,
	driver.ExtensionMNDHeadless:       2,
}

func (o Options) withDefaults() Options {
	if o.RuntimeName == "" {
		o.RuntimeName = "fakeruntime"
	}
	if o.RuntimeVersion == 0 {
		o.RuntimeVersion = common.MakeVersion(0, 1, 0)
	}
	if o.Extensions == nil {
		o.Extensions = KnownExtensions
	}
	if o.FormFactors == nil {
		o.FormFactors = []common.FormFactor{common.FormFactorHeadMountedDisplay}
	}
	if o.ViewConfigurations == nil {
		o.ViewConfigurations = []common.ViewConfigurationType{common.ViewConfigurationTypePrimaryStereo}
	}
	if o.ReferenceSpaces == nil {
		o.ReferenceSpaces = []common.ReferenceSpaceType{
			common.ReferenceSpaceTypeView,
			common.ReferenceSpaceTypeLocal,
			common.ReferenceSpaceTypeStage,
		}
	}
	if o.VulkanFormats == nil {
		// VK_FORMAT_B8G8R8A8_SRGB, VK_FORMAT_R8G8B8A8_SRGB, VK_FORMAT_D32_SFLOAT
		o.VulkanFormats = []int64{50, 43, 126}
	}
	if o.OpenGLFormats == nil {
		// GL_SRGB8_ALPHA8, GL_RGBA8, GL_DEPTH_COMPONENT32F
		o.OpenGLFormats = []int64{0x8C43, 0x8058, 0x8CAC}
	}
	if o.SwapchainImageCount == 0 {
		o.SwapchainImageCount = 3
	}
	if o.DisplayPeriod == 0 {
		o.DisplayPeriod = common.Duration(11_111_111)
	}
	if len(o.VisibilityMaskVertexCounts) == 0 {
		o.VisibilityMaskVertexCounts = []uint32{4}
	}
	return o
}

// Counters tallies objects created and destroyed through the fake.
type Counters struct {
	InstancesCreated    int
	InstancesDestroyed  int
	SessionsCreated     int
	SessionsDestroyed   int
	SwapchainsCreated   int
	SwapchainsDestroyed int
	SpacesCreated       int
	SpacesDestroyed     int
	ActionSetsCreated   int
	ActionSetsDestroyed int
	ActionsCreated      int
	ActionsDestroyed    int
	FramesWaited        int
	FramesBegun         int
	FramesEnded         int
	FramesDiscarded     int
	ActionSyncs         int
}

// Runtime is the fake. It is safe for concurrent use; every call takes one
// lock, except the delay of xrWaitFrame which is slept outside it.
type Runtime struct {
	opts Options

	mu         sync.Mutex
	next       uint64
	references int32
	released   bool
	calls      []string
	violations []string
	counters   Counters

	instances  map[driver.Instance]*instanceState
	sessions   map[driver.Session]*sessionState
	swapchains map[driver.Swapchain]*swapchainState
	spaces     map[driver.Space]*spaceState
	actionSets map[driver.ActionSet]*actionSetState
	actions    map[driver.Action]*actionState

	paths   []string
	pathIDs map[string]driver.Path

	addedSpaces int
	maskCalls   int
	names       map[uint64]string
}

var _ driver.Driver = (*Runtime)(nil)

// New returns a runtime holding one reference for its global driver, as a
// freshly loaded library would.
func New(opts Options) *Runtime {
	return &Runtime{
		opts:       opts.withDefaults(),
		references: 1,
		instances:  map[driver.Instance]*instanceState{},
		sessions:   map[driver.Session]*sessionState{},
		swapchains: map[driver.Swapchain]*swapchainState{},
		spaces:     map[driver.Space]*spaceState{},
		actionSets: map[driver.ActionSet]*actionSetState{},
		actions:    map[driver.Action]*actionState{},
		pathIDs:    map[string]driver.Path{},
		names:      map[uint64]string{},
	}
}

func (r *Runtime) handle() uint64 {
	r.next++
	return r.next
}

func (r *Runtime) record(name string) {
	r.calls = append(r.calls, name)
}

func (r *Runtime) violation(format string, args ...any) {
	r.violations = append(r.violations, errors.Newf(format, args...).Error())
}

// Calls returns the names of every runtime function called so far, in
// order.
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallCount returns how many times the named function was called.
func (r *Runtime) CallCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if call == name {
			n++
		}
	}
	return n
}

// Violations lists protocol misuse the runtime tolerated but a real one
// might not, such as destroying a session while its swapchains are alive.
func (r *Runtime) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.violations)
}

func (r *Runtime) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// References returns the number of live holders of the runtime: the global
// driver until released plus every unreleased instance driver.
func (r *Runtime) References() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.references
}

// Unloaded reports whether every holder released the runtime, the point at
// which a real loader library would be closed.
func (r *Runtime) Unloaded() bool {
	return r.References() == 0
}

// ObjectName returns the debug name set on a handle, if any.
func (r *Runtime) ObjectName(handle uint64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[handle]
}

func (r *Runtime) EntryPoints() driver.EntryPoints {
	return driver.EntryPoints{}
}

func (r *Runtime) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	r.references--
	return nil
}

func result(res common.Result) (common.Result, error) {
	return res, res.ToError()
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	var n int
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

func fixedString(b []byte) string {
	s, _ := common.DecodeFixed(b)
	return s
}

// fill implements the runtime side of the two-call protocol for plain
// values.
func fill[T any](src []T, capacity uint32, count *uint32, buf *T) common.Result {
	*count = uint32(len(src))
	if capacity == 0 {
		return common.Success
	}
	if capacity < uint32(len(src)) || buf == nil {
		return common.ErrorSizeInsufficient
	}
	copy(unsafe.Slice(buf, capacity), src)
	return common.Success
}

// fillTagged is fill for extensible structures: every element offered must
// carry the expected type tag, and write fills one element in place.
func fillTagged[T any](n int, capacity uint32, count *uint32, buf *T, tag func(*T) driver.StructureType, want driver.StructureType, write func(i int, dst *T)) common.Result {
	*count = uint32(n)
	if capacity == 0 {
		return common.Success
	}
	dst := unsafe.Slice(buf, capacity)
	for i := range dst {
		if tag(&dst[i]) != want {
			return common.ErrorValidationFailure
		}
	}
	if capacity < uint32(n) {
		return common.ErrorSizeInsufficient
	}
	for i := 0; i < n; i++ {
		write(i, &dst[i])
	}
	return common.Success
}

func fillString(s string, capacity uint32, count *uint32, buf *byte) common.Result {
	b := append([]byte(s), 0)
	return fill(b, capacity, count, buf)
}

func (r *Runtime) XrEnumerateInstanceExtensionProperties(layerName *byte, capacity uint32, count *uint32, properties *driver.ExtensionProperties) (common.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("xrEnumerateInstanceExtensionProperties")

	extensions := r.opts.Extensions
	if layerName != nil {
		layer := r.layer(goString(layerName))
		if layer == nil {
			return result(common.ErrorAPILayerNotPresent)
		}
		extensions = layer.Extensions
	}
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	slices.Sort(names)

	return result(fillTagged(len(names), capacity, count, properties,
		func(p *driver.ExtensionProperties) driver.StructureType { return p.Type },
		driver.TypeExtensionProperties,
		func(i int, p *driver.ExtensionProperties) {
			_ = common.EncodeFixed(p.ExtensionName[:], names[i])
			p.ExtensionVersion = extensions[names[i]]
		}))
}

func (r *Runtime) XrEnumerateAPILayerProperties(capacity uint32, count *uint32, properties *driver.APILayerProperties) (common.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("xrEnumerateApiLayerProperties")

	return result(fillTagged(len(r.opts.Layers), capacity, count, properties,
		func(p *driver.APILayerProperties) driver.StructureType { return p.Type },
		driver.TypeAPILayerProperties,
		func(i int, p *driver.APILayerProperties) {
			layer := r.opts.Layers[i]
			_ = common.EncodeFixed(p.LayerName[:], layer.Name)
			_ = common.EncodeFixed(p.Description[:], layer.Description)
			p.SpecVersion = common.CurrentAPIVersion
			p.LayerVersion = 1
		}))
}

func (r *Runtime) layer(name string) *Layer {
	for i := range r.opts.Layers {
		if r.opts.Layers[i].Name == name {
			return &r.opts.Layers[i]
		}
	}
	return nil
}

func (r *Runtime) XrCreateInstance(createInfo *driver.InstanceCreateInfo, instance *driver.Instance) (common.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("xrCreateInstance")

	if createInfo.Type != driver.TypeInstanceCreateInfo {
		return result(common.ErrorValidationFailure)
	}
	if fixedString(createInfo.ApplicationInfo.ApplicationName[:]) == "" {
		return result(common.ErrorNameInvalid)
	}
	if createInfo.ApplicationInfo.APIVersion.Major() != 1 {
		return result(common.ErrorAPIVersionUnsupported)
	}

	available := map[string]struct{}{}
	for name := range r.opts.Extensions {
		available[name] = struct{}{}
	}
	if createInfo.EnabledAPILayerCount > 0 {
		for _, p := range unsafe.Slice(createInfo.EnabledAPILayerNames, createInfo.EnabledAPILayerCount) {
			layer := r.layer(goString(p))
			if layer == nil {
				return result(common.ErrorAPILayerNotPresent)
			}
			for name := range layer.Extensions {
				available[name] = struct{}{}
			}
		}
	}

	enabled := map[string]struct{}{}
	if createInfo.EnabledExtensionCount > 0 {
		for _, p := range unsafe.Slice(createInfo.EnabledExtensionNames, createInfo.EnabledExtensionCount) {
			name := goString(p)
			if _, ok := available[name]; !ok {
				return result(common.ErrorExtensionNotPresent)
			}
			enabled[name] = struct{}{}
		}
	}

	handle := driver.Instance(r.handle())
	r.instances[handle] = &instanceState{
		handle:       handle,
		extensions:   enabled,
		requirements: map[string]bool{},
		systems:      map[driver.SystemID]bool{},
		actionSets:   map[string]driver.ActionSet{},
	}
	r.counters.InstancesCreated++
	*instance = handle
	return result(common.Success)
}

func (r *Runtime) CreateInstanceDriver(instance driver.Instance, enabledExtensions []string) (driver.InstanceDriver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.instances[instance]
	if !ok {
		return nil, errors.Newf("unknown instance %d", instance)
	}
	if name := r.opts.UnresolvableCoreFunction; name != "" {
		return nil, &driver.LoadError{Symbol: name, Err: errors.New("runtime returned a null function pointer")}
	}
	loaded := map[string]struct{}{}
	for _, name := range enabledExtensions {
		if name == r.opts.UnresolvableExtension {
			return nil, &driver.LoadError{Symbol: firstFunction(name), Err: errors.New("runtime returned a null function pointer")}
		}
		if _, ok := state.extensions[name]; ok {
			loaded[name] = struct{}{}
		}
	}
	r.references++
	return &instanceDriver{r: r, instance: instance, loaded: loaded}, nil
}

// XrDestroyInstance destroys an instance without an instance driver, the way
// a loader resolving xrDestroyInstance on its own would.
func (r *Runtime) XrDestroyInstance(instance driver.Instance) (common.Result, error) {
	return (&instanceDriver{r: r, instance: instance}).XrDestroyInstance()
}

func firstFunction(extension string) string {
	switch extension {
	case driver.ExtensionKHRVisibilityMask:
		return "xrGetVisibilityMaskKHR"
	case driver.ExtensionEXTDebugUtils:
		return "xrSetDebugUtilsObjectNameEXT"
	case driver.ExtensionKHRVulkanEnable:
		return "xrGetVulkanGraphicsRequirementsKHR"
	case driver.ExtensionKHROpenGLEnable:
		return "xrGetOpenGLGraphicsRequirementsKHR"
	case driver.ExtensionFBSpatialEntity:
		return "xrGetSpaceUuidFB"
	}
	return extension
}
