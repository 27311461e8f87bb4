package headless_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/graphics/headless"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

func TestHeadlessSession(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	entry := openxr.NewEntry(rt)
	instance, _, err := entry.CreateInstance(openxr.InstanceCreateInfo{
		Application: openxr.ApplicationInfo{ApplicationName: t.Name()},
		Extensions:  []string{headless.Extension},
	})
	require.NoError(t, err)
	system, _, err := instance.System(common.FormFactorHeadMountedDisplay)
	require.NoError(t, err)

	session, waiter, stream, _, err := headless.CreateSession(instance, system)
	require.NoError(t, err)
	require.Equal(t, openxr.GraphicsAPIHeadless, session.GraphicsAPI())
	require.Equal(t, fakeruntime.GraphicsHeadless, rt.SessionGraphics(session.Handle()))

	formats, _, err := session.EnumerateSwapchainFormats()
	require.NoError(t, err)
	require.Empty(t, formats)

	session.Destroy()
	waiter.Destroy()
	stream.Destroy()
	instance.Destroy()
	require.NoError(t, entry.Destroy())
	require.True(t, rt.Unloaded())
	require.Empty(t, rt.Violations())
}

func TestHeadlessRequiresExtension(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	instance, _, err := openxr.NewEntry(rt).CreateInstance(openxr.InstanceCreateInfo{
		Application: openxr.ApplicationInfo{ApplicationName: t.Name()},
	})
	require.NoError(t, err)
	defer instance.Destroy()
	system, _, err := instance.System(common.FormFactorHeadMountedDisplay)
	require.NoError(t, err)

	_, _, _, res, err := headless.CreateSession(instance, system)
	require.True(t, errors.Is(err, common.ErrExtensionNotEnabled))
	require.Equal(t, common.ErrorFunctionUnsupported, res)
}

func TestHeadlessSwapchainRejected(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	entry := openxr.NewEntry(rt)
	instance, _, err := entry.CreateInstance(openxr.InstanceCreateInfo{
		Application: openxr.ApplicationInfo{ApplicationName: t.Name()},
		Extensions:  []string{headless.Extension},
	})
	require.NoError(t, err)
	system, _, err := instance.System(common.FormFactorHeadMountedDisplay)
	require.NoError(t, err)
	session, waiter, stream, _, err := headless.CreateSession(instance, system)
	require.NoError(t, err)

	require.Zero(t, headless.Format{}.Lower())
	require.Equal(t, headless.Format{}, headless.Format{}.Raise(42))

	swapchain, res, err := session.CreateSwapchain(openxr.SwapchainCreateInfo[headless.Format]{
		UsageFlags:  common.SwapchainUsageColorAttachment,
		SampleCount: 1,
		Width:       64,
		Height:      64,
		FaceCount:   1,
		ArraySize:   1,
		MipCount:    1,
	})
	require.Error(t, err)
	require.Nil(t, swapchain)
	require.Equal(t, common.ErrorSwapchainFormatUnsupported, res)
	require.Zero(t, rt.CallCount("xrCreateSwapchain"))

	session.Destroy()
	waiter.Destroy()
	stream.Destroy()
	instance.Destroy()
	require.NoError(t, entry.Destroy())
	require.Empty(t, rt.Violations())
}
