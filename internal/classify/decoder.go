package classify

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
)

// Decode turns raw upload bytes into an opaque RGBA pixel buffer. Any
// decode failure (corrupt data, unsupported codec, empty payload) is
// returned as a DecodeFailure error carrying the decoder's diagnostic.
//
// The source image is redrawn onto an opaque canvas so downstream
// preprocessing always sees three color channels, whatever color model
// the original file used.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, decodeFailure(fmt.Errorf("empty payload"))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeFailure(fmt.Errorf("error processing image: %w", err))
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Over)

	return rgba, nil
}
