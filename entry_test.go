package openxr

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"github.com/vkngwrapper/openxr/internal/fakeruntime"
)

func TestEnumerateExtensionsAndLayers(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{
		Extensions: map[string]uint32{driver.ExtensionMNDHeadless: 2},
		Layers: []fakeruntime.Layer{{
			Name:        "XR_APILAYER_test_validation",
			Description: "validation",
			Extensions:  map[string]uint32{driver.ExtensionEXTDebugUtils: 5},
		}},
	})
	entry := NewEntry(rt)

	extensions, _, err := entry.EnumerateExtensions()
	require.NoError(t, err)
	require.Equal(t, []string{driver.ExtensionMNDHeadless}, extensions.Names())
	require.Equal(t, uint32(2), extensions[driver.ExtensionMNDHeadless])

	layers, _, err := entry.EnumerateLayers()
	require.NoError(t, err)
	require.Contains(t, layers, "XR_APILAYER_test_validation")
	require.Equal(t, "validation", layers["XR_APILAYER_test_validation"].Description)

	layerExtensions, _, err := entry.EnumerateLayerExtensions("XR_APILAYER_test_validation")
	require.NoError(t, err)
	require.True(t, layerExtensions.Has(driver.ExtensionEXTDebugUtils))
	require.False(t, layerExtensions.Has(driver.ExtensionMNDHeadless))
}

func TestCreateInstanceRejectsLongNamesLocally(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	entry := NewEntry(rt)

	_, res, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: strings.Repeat("a", common.MaxApplicationNameSize)},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrNameTooLong))
	require.Equal(t, common.ErrorNameInvalid, res)
	require.Zero(t, rt.CallCount("xrCreateInstance"))

	instance, _, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: strings.Repeat("a", common.MaxApplicationNameSize-1)},
	})
	require.NoError(t, err)
	instance.Destroy()
}

func TestCreateInstanceOptionalExtensions(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{
		Extensions: map[string]uint32{
			driver.ExtensionMNDHeadless:   2,
			driver.ExtensionEXTDebugUtils: 5,
		},
	})
	entry := NewEntry(rt)

	instance, _, err := entry.CreateInstance(InstanceCreateInfo{
		Application:        ApplicationInfo{ApplicationName: "optional"},
		Extensions:         []string{driver.ExtensionMNDHeadless},
		OptionalExtensions: []string{driver.ExtensionKHRVisibilityMask, driver.ExtensionEXTDebugUtils, driver.ExtensionMNDHeadless},
	})
	require.NoError(t, err)
	defer instance.Destroy()

	require.Equal(t, []string{driver.ExtensionEXTDebugUtils, driver.ExtensionMNDHeadless}, instance.EnabledExtensions())
	require.True(t, instance.ExtensionEnabled(driver.ExtensionEXTDebugUtils))
	require.False(t, instance.ExtensionEnabled(driver.ExtensionKHRVisibilityMask))
}

func TestCreateInstanceMissingRequiredExtension(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{Extensions: map[string]uint32{}})
	entry := NewEntry(rt)

	_, res, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: "missing"},
		Extensions:  []string{driver.ExtensionKHRVulkanEnable},
	})
	require.Error(t, err)
	require.Equal(t, common.ErrorExtensionNotPresent, res)

	code, ok := common.ResultFromError(err)
	require.True(t, ok)
	require.Equal(t, common.ErrorExtensionNotPresent, code)
}

func TestCreateInstanceDestroysInstanceWhenResolutionFails(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{UnresolvableExtension: driver.ExtensionEXTDebugUtils})
	entry := NewEntry(rt)

	instance, res, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: "unresolvable"},
		Extensions:  []string{driver.ExtensionEXTDebugUtils},
	})
	require.Error(t, err)
	require.Nil(t, instance)
	require.Equal(t, common.ErrorInitializationFailed, res)

	counters := rt.Counters()
	require.Equal(t, 1, counters.InstancesCreated)
	require.Equal(t, 1, counters.InstancesDestroyed)
	require.Equal(t, int32(1), rt.References())
	require.Empty(t, rt.Violations())
}

func TestCreateInstanceMissingCoreFunction(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{UnresolvableCoreFunction: "xrPollEvent"})
	entry := NewEntry(rt)

	instance, res, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: "missing core"},
	})
	require.Error(t, err)
	var loadErr *driver.LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, "xrPollEvent", loadErr.Symbol)
	require.Nil(t, instance)
	require.Equal(t, common.ErrorInitializationFailed, res)

	counters := rt.Counters()
	require.Equal(t, 1, counters.InstancesCreated)
	require.Equal(t, 1, counters.InstancesDestroyed)
	require.Equal(t, 1, rt.CallCount("xrDestroyInstance"))
	require.Equal(t, int32(1), rt.References())
	require.Empty(t, rt.Violations())

	require.NoError(t, entry.Destroy())
	require.True(t, rt.Unloaded())
}

func TestEntryOutlivedByInstance(t *testing.T) {
	rt := fakeruntime.New(fakeruntime.Options{})
	entry := NewEntry(rt)

	instance, _, err := entry.CreateInstance(InstanceCreateInfo{
		Application: ApplicationInfo{ApplicationName: "lifetime"},
	})
	require.NoError(t, err)

	require.NoError(t, entry.Destroy())
	require.NoError(t, entry.Destroy())
	require.False(t, rt.Unloaded())

	_, _, err = entry.EnumerateExtensions()
	require.True(t, errors.Is(err, common.ErrHandleDestroyed))

	props, _, err := instance.Properties()
	require.NoError(t, err)
	require.Equal(t, "fakeruntime", props.RuntimeName)

	instance.Destroy()
	require.True(t, rt.Unloaded())
	require.Empty(t, rt.Violations())
}
