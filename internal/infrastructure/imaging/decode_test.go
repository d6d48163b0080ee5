package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, solidImage(8, 4, color.NRGBA{R: 200, G: 10, B: 30, A: 255})))

		img, format, err := Decode(buf.Bytes())

		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 8, img.Bounds().Dx())
		assert.Equal(t, 4, img.Bounds().Dy())
		assert.Equal(t, color.NRGBA{R: 200, G: 10, B: 30, A: 255}, img.NRGBAAt(3, 2))
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, solidImage(16, 16, color.White), nil))

		img, format, err := Decode(buf.Bytes())

		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	})

	t.Run("bmp", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, bmp.Encode(&buf, solidImage(5, 5, color.Black)))

		_, format, err := Decode(buf.Bytes())

		require.NoError(t, err)
		assert.Equal(t, "bmp", format)
	})

	t.Run("empty bytes", func(t *testing.T) {
		img, _, err := Decode(nil)

		assert.ErrorIs(t, err, ErrEmpty)
		assert.Nil(t, img)
	})

	t.Run("text file", func(t *testing.T) {
		img, _, err := Decode([]byte("this is not an image"))

		assert.Error(t, err)
		assert.NotEmpty(t, err.Error())
		assert.Nil(t, img)
	})
}

func TestToRGB(t *testing.T) {
	t.Run("drops alpha", func(t *testing.T) {
		src := solidImage(2, 2, color.NRGBA{R: 100, G: 150, B: 200, A: 0x40})

		out := ToRGB(src)

		assert.Equal(t, color.NRGBA{R: 100, G: 150, B: 200, A: 0xff}, out.NRGBAAt(1, 1))
	})

	t.Run("rebases bounds to origin", func(t *testing.T) {
		src := image.NewGray(image.Rect(10, 10, 14, 13))
		src.SetGray(10, 10, color.Gray{Y: 77})

		out := ToRGB(src)

		assert.Equal(t, image.Rect(0, 0, 4, 3), out.Bounds())
		assert.Equal(t, color.NRGBA{R: 77, G: 77, B: 77, A: 0xff}, out.NRGBAAt(0, 0))
	})
}

func TestEncodePNG(t *testing.T) {
	src := solidImage(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	data, err := EncodePNG(src)
	require.NoError(t, err)

	img, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, img.NRGBAAt(2, 2))
}
