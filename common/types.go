// Package common holds plain data types and helpers shared across the engine packages.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA8, 4 bytes per pixel, row-major.
	Pixels []byte
	Width  uint32
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields are replaced with defaults when the sampler is created.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	Compare                                  wgpu.CompareFunction
	MaxAnisotropy                            uint16
}

// DecodeImage sniffs data for a known image container, decodes it and converts the
// result to RGBA8. PNG, JPEG, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - data: encoded image bytes
//
// Returns:
//   - *TextureStagingData: decoded pixels ready for upload
//   - error: error if the bytes are not an image or fail to decode
func DecodeImage(data []byte) (*TextureStagingData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("unrecognized image format")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", kind.Extension, err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// SolidTexture returns a 1x1 texture filled with the given RGBA color. Used as a
// placeholder when a material has no diffuse map.
func SolidTexture(r, g, b, a byte) *TextureStagingData {
	return &TextureStagingData{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1}
}
