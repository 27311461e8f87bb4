package opengl

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/vkngwrapper/openxr"
)

// Format is a sized OpenGL internal format.
type Format uint32

const (
	FormatRGBA8             Format = 0x8058
	FormatSRGB8Alpha8       Format = 0x8C43
	FormatR32F              Format = 0x822E
	FormatDepthComponent32F Format = 0x8CAC
	FormatDepth24Stencil8   Format = 0x88F0
)

func (Format) GraphicsAPI() openxr.GraphicsAPI {
	return openxr.GraphicsAPIOpenGL
}

func (f Format) Lower() int64 {
	return int64(f)
}

func (Format) Raise(raw int64) Format {
	return Format(raw)
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "GL_RGBA8"
	case FormatSRGB8Alpha8:
		return "GL_SRGB8_ALPHA8"
	case FormatR32F:
		return "GL_R32F"
	case FormatDepthComponent32F:
		return "GL_DEPTH_COMPONENT32F"
	case FormatDepth24Stencil8:
		return "GL_DEPTH24_STENCIL8"
	}
	return fmt.Sprintf("GLenum(0x%X)", uint32(f))
}

func (f Format) IsDepth() bool {
	return f == FormatDepthComponent32F || f == FormatDepth24Stencil8
}

// GL has no BGRA internal formats; BGRA textures map to their RGBA
// counterparts and are swizzled on upload.
var textureFormats = map[gputypes.TextureFormat]Format{
	gputypes.TextureFormatRGBA8Unorm:          FormatRGBA8,
	gputypes.TextureFormatBGRA8Unorm:          FormatRGBA8,
	gputypes.TextureFormatRGBA8UnormSrgb:      FormatSRGB8Alpha8,
	gputypes.TextureFormatBGRA8UnormSrgb:      FormatSRGB8Alpha8,
	gputypes.TextureFormatR32Float:            FormatR32F,
	gputypes.TextureFormatDepth24PlusStencil8: FormatDepth24Stencil8,
}

func FormatFromTexture(format gputypes.TextureFormat) (Format, bool) {
	f, ok := textureFormats[format]
	return f, ok
}
