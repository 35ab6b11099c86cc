package resource

import "github.com/gogpu/gputypes"

// formatBlock describes the storage of one compression block. Uncompressed
// formats use a 1x1 block.
type formatBlock struct {
	bytes uint8
	w, h  uint8
}

var astcBlocks = [...]formatBlock{
	{16, 4, 4}, {16, 5, 4}, {16, 5, 5}, {16, 6, 5}, {16, 6, 6}, {16, 8, 5}, {16, 8, 6},
	{16, 8, 8}, {16, 10, 5}, {16, 10, 6}, {16, 10, 8}, {16, 10, 10}, {16, 12, 10}, {16, 12, 12},
}

func blockOf(f gputypes.TextureFormat) formatBlock {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatStencil8:
		return formatBlock{1, 1, 1}

	case gputypes.TextureFormatR16Unorm, gputypes.TextureFormatR16Snorm,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float,
		gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG8Sint,
		gputypes.TextureFormatDepth16Unorm:
		return formatBlock{2, 1, 1}

	case gputypes.TextureFormatR32Float, gputypes.TextureFormatR32Uint,
		gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatRG16Unorm, gputypes.TextureFormatRG16Snorm,
		gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG16Float,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm, gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Uint, gputypes.TextureFormatRGB10A2Unorm,
		gputypes.TextureFormatRG11B10Ufloat, gputypes.TextureFormatRGB9E5Ufloat,
		gputypes.TextureFormatDepth24Plus, gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float:
		return formatBlock{4, 1, 1}

	case gputypes.TextureFormatRG32Float, gputypes.TextureFormatRG32Uint,
		gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRGBA16Unorm, gputypes.TextureFormatRGBA16Snorm,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return formatBlock{8, 1, 1}

	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGBA32Sint:
		return formatBlock{16, 1, 1}

	case gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC1RGBAUnormSrgb,
		gputypes.TextureFormatBC4RUnorm, gputypes.TextureFormatBC4RSnorm,
		gputypes.TextureFormatETC2RGB8Unorm, gputypes.TextureFormatETC2RGB8UnormSrgb,
		gputypes.TextureFormatETC2RGB8A1Unorm, gputypes.TextureFormatETC2RGB8A1UnormSrgb,
		gputypes.TextureFormatEACR11Unorm, gputypes.TextureFormatEACR11Snorm:
		return formatBlock{8, 4, 4}

	case gputypes.TextureFormatBC2RGBAUnorm, gputypes.TextureFormatBC2RGBAUnormSrgb,
		gputypes.TextureFormatBC3RGBAUnorm, gputypes.TextureFormatBC3RGBAUnormSrgb,
		gputypes.TextureFormatBC5RGUnorm, gputypes.TextureFormatBC5RGSnorm,
		gputypes.TextureFormatBC6HRGBUfloat, gputypes.TextureFormatBC6HRGBFloat,
		gputypes.TextureFormatBC7RGBAUnorm, gputypes.TextureFormatBC7RGBAUnormSrgb,
		gputypes.TextureFormatETC2RGBA8Unorm, gputypes.TextureFormatETC2RGBA8UnormSrgb,
		gputypes.TextureFormatEACRG11Unorm, gputypes.TextureFormatEACRG11Snorm:
		return formatBlock{16, 4, 4}
	}

	// ASTC formats come in Unorm/UnormSrgb pairs ordered by block size.
	if f >= gputypes.TextureFormatASTC4x4Unorm && f <= gputypes.TextureFormatASTC12x12UnormSrgb {
		return astcBlocks[(f-gputypes.TextureFormatASTC4x4Unorm)/2]
	}
	return formatBlock{}
}

// FormatSize returns the number of bytes of one texel, or of one block for
// compressed formats. It returns 0 for TextureFormatUndefined and unknown
// formats.
func FormatSize(f gputypes.TextureFormat) uint32 {
	return uint32(blockOf(f).bytes)
}

// FormatBlockExtent returns the width and height in texels of one block:
// 1x1 for uncompressed formats.
func FormatBlockExtent(f gputypes.TextureFormat) (w, h uint32) {
	b := blockOf(f)
	if b.w == 0 {
		return 1, 1
	}
	return uint32(b.w), uint32(b.h)
}
