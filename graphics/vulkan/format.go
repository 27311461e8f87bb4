package vulkan

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/openxr"
)

// Format is a VkFormat a swapchain can be created with.
type Format core1_0.Format

const (
	FormatR8G8B8A8SRGB   = Format(core1_0.FormatR8G8B8A8SRGB)
	FormatB8G8R8A8SRGB   = Format(core1_0.FormatB8G8R8A8SRGB)
	FormatR8G8B8A8UNorm  = Format(core1_0.FormatR8G8B8A8UnsignedNormalized)
	FormatB8G8R8A8UNorm  = Format(core1_0.FormatB8G8R8A8UnsignedNormalized)
	FormatR32SFloat      = Format(core1_0.FormatR32SignedFloat)
	FormatD32SFloat      = Format(core1_0.FormatD32SignedFloat)
	FormatD24UNormS8UInt = Format(core1_0.FormatD24UnsignedNormalizedS8UnsignedInt)
)

func (Format) GraphicsAPI() openxr.GraphicsAPI {
	return openxr.GraphicsAPIVulkan
}

func (f Format) Lower() int64 {
	return int64(f)
}

func (Format) Raise(raw int64) Format {
	return Format(raw)
}

// Core returns the format as the Vulkan bindings spell it.
func (f Format) Core() core1_0.Format {
	return core1_0.Format(f)
}

func (f Format) String() string {
	switch f {
	case FormatR8G8B8A8SRGB:
		return "R8G8B8A8_SRGB"
	case FormatB8G8R8A8SRGB:
		return "B8G8R8A8_SRGB"
	case FormatR8G8B8A8UNorm:
		return "R8G8B8A8_UNORM"
	case FormatB8G8R8A8UNorm:
		return "B8G8R8A8_UNORM"
	case FormatR32SFloat:
		return "R32_SFLOAT"
	case FormatD32SFloat:
		return "D32_SFLOAT"
	case FormatD24UNormS8UInt:
		return "D24_UNORM_S8_UINT"
	}
	return fmt.Sprintf("VkFormat(%d)", int64(f))
}

// IsDepth reports whether the format is a depth or depth-stencil format.
func (f Format) IsDepth() bool {
	return f == FormatD32SFloat || f == FormatD24UNormS8UInt
}

var textureFormats = map[gputypes.TextureFormat]Format{
	gputypes.TextureFormatRGBA8UnormSrgb:      FormatR8G8B8A8SRGB,
	gputypes.TextureFormatBGRA8UnormSrgb:      FormatB8G8R8A8SRGB,
	gputypes.TextureFormatRGBA8Unorm:          FormatR8G8B8A8UNorm,
	gputypes.TextureFormatBGRA8Unorm:          FormatB8G8R8A8UNorm,
	gputypes.TextureFormatR32Float:            FormatR32SFloat,
	gputypes.TextureFormatDepth24PlusStencil8: FormatD24UNormS8UInt,
}

// FormatFromTexture maps a portable texture format to its Vulkan equivalent.
func FormatFromTexture(format gputypes.TextureFormat) (Format, bool) {
	f, ok := textureFormats[format]
	return f, ok
}

// Texture maps the format back to its portable equivalent, or
// gputypes.TextureFormatUndefined.
func (f Format) Texture() gputypes.TextureFormat {
	for texture, format := range textureFormats {
		if format == f {
			return texture
		}
	}
	return gputypes.TextureFormatUndefined
}

// PreferredFormat picks the first of the runtime's formats, in the runtime's
// order of preference, that the renderer can use. sRGB color formats are
// preferred over linear ones when both are offered.
func PreferredFormat(available []Format, usable func(Format) bool) (Format, bool) {
	var fallback Format
	found := false
	for _, f := range available {
		if f.IsDepth() || !usable(f) {
			continue
		}
		if f == FormatR8G8B8A8SRGB || f == FormatB8G8R8A8SRGB {
			return f, true
		}
		if !found {
			fallback, found = f, true
		}
	}
	return fallback, found
}
