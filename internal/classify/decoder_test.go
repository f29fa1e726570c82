package classify

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 7)
	}

	got, err := Decode(encodePNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, 8, got.Bounds().Dx())
	assert.Equal(t, 6, got.Bounds().Dy())
}

func TestDecodeJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))

	got, err := Decode(encodeJPEG(t, src))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Bounds().Dx())
}

func TestDecodeStripsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 0})

	got, err := Decode(encodePNG(t, src))
	require.NoError(t, err)

	// Fully transparent source pixels land on the opaque canvas.
	_, _, _, a := got.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("this is not an image at all"))
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, DecodeFailure, cerr.Kind)
	assert.True(t, cerr.ClientFacing())
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, DecodeFailure, cerr.Kind)
}

func TestDecodeRejectsTruncatedPNG(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 16, 16)))

	_, err := Decode(data[:8])
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, DecodeFailure, cerr.Kind)
}
