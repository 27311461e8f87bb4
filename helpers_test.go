package openxr

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

// The backend packages import this one, so its tests bring their own
// format types.

type headlessFormat int64

func (headlessFormat) GraphicsAPI() GraphicsAPI { return GraphicsAPIHeadless }
func (f headlessFormat) Lower() int64 { return int64(f) }
func (headlessFormat) Raise(raw int64) headlessFormat { return headlessFormat(raw) }

type vulkanFormat int64

func (vulkanFormat) GraphicsAPI() GraphicsAPI { return GraphicsAPIVulkan }
func (f vulkanFormat) Lower() int64 { return int64(f) }
func (vulkanFormat) Raise(raw int64) vulkanFormat { return vulkanFormat(raw) }

const (
	vulkanFormatRGBA8SRGB vulkanFormat = 43
	vulkanFormatBGRA8SRGB vulkanFormat = 50
)

type headlessBinding struct{}

func (headlessBinding) GraphicsAPI() GraphicsAPI { return GraphicsAPIHeadless }
func (headlessBinding) Extension() string { return driver.ExtensionMNDHeadless }
func (headlessBinding) Chain() unsafe.Pointer { return nil }

type vulkanBinding struct {
	raw driver.GraphicsBindingVulkanKHR
}

func newVulkanBinding() *vulkanBinding {
	return &vulkanBinding{raw: driver.GraphicsBindingVulkanKHR{Type: driver.TypeGraphicsBindingVulkanKHR}}
}

func (*vulkanBinding) GraphicsAPI() GraphicsAPI { return GraphicsAPIVulkan }
func (*vulkanBinding) Extension() string { return driver.ExtensionKHRVulkanEnable }
func (b *vulkanBinding) Chain() unsafe.Pointer { return unsafe.Pointer(&b.raw) }

type testRuntime struct {
	rt       *fakeruntime.Runtime
	entry    *Entry
	instance *Instance
	system   driver.SystemID
}

func newTestRuntime(t *testing.T, opts fakeruntime.Options, extensions ...string) *testRuntime {
	t.Helper()

	rt := fakeruntime.New(opts)
	entry := NewEntry(rt)
	instance, _, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: t.Name()},
		Extensions:  extensions,
	})
	require.NoError(t, err)

	system, _, err := instance.System(common.FormFactorHeadMountedDisplay)
	require.NoError(t, err)
	return &testRuntime{rt: rt, entry: entry, instance: instance, system: system}
}

func (r *testRuntime) headlessSession(t *testing.T) (*Session[headlessFormat], *FrameWaiter, *FrameStream[headlessFormat]) {
	t.Helper()
	session, waiter, stream, _, err := CreateSession[headlessFormat](r.instance, r.system, headlessBinding{})
	require.NoError(t, err)
	return session, waiter, stream
}

func (r *testRuntime) vulkanSession(t *testing.T) (*Session[vulkanFormat], *FrameWaiter, *FrameStream[vulkanFormat]) {
	t.Helper()
	requirements := driver.GraphicsRequirementsVulkanKHR{Type: driver.TypeGraphicsRequirementsVulkanKHR}
	_, err := r.instance.Driver().XrGetVulkanGraphicsRequirementsKHR(r.system, &requirements)
	require.NoError(t, err)

	session, waiter, stream, _, err := CreateSession[vulkanFormat](r.instance, r.system, newVulkanBinding())
	require.NoError(t, err)
	return session, waiter, stream
}

// drainEvents polls until the queue is empty and returns what it saw.
func (r *testRuntime) drainEvents(t *testing.T) []Event {
	t.Helper()
	var events []Event
	for {
		event, res, err := r.instance.PollEvent()
		require.NoError(t, err)
		if res == common.EventUnavailable {
			return events
		}
		events = append(events, event)
	}
}

// startSession drains the Idle and Ready events and begins the session.
func startSession[F Format[F]](t *testing.T, r *testRuntime, session *Session[F]) {
	t.Helper()
	r.drainEvents(t)
	require.Equal(t, common.SessionStateReady, session.State())
	_, err := session.Begin(common.ViewConfigurationTypePrimaryStereo)
	require.NoError(t, err)
}
