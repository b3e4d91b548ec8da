package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeScalesDown(t *testing.T) {
	out, err := Normalize(encodePNG(t, 400, 200), 100, 0)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	out, err := Normalize(encodePNG(t, 40, 30), 100, 90)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"), 100, 0)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Normalize(nil, 100, 0)
	assert.Error(t, err)
}

func TestOrient(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	red := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, red)

	cases := []struct {
		ori        int
		w, h, x, y int
	}{
		{ori: 1, w: 3, h: 2, x: 0, y: 0},
		{ori: 2, w: 3, h: 2, x: 2, y: 0},
		{ori: 3, w: 3, h: 2, x: 2, y: 1},
		{ori: 4, w: 3, h: 2, x: 0, y: 1},
		{ori: 5, w: 2, h: 3, x: 0, y: 0},
		{ori: 6, w: 2, h: 3, x: 1, y: 0},
		{ori: 7, w: 2, h: 3, x: 1, y: 2},
		{ori: 8, w: 2, h: 3, x: 0, y: 2},
	}
	for _, tc := range cases {
		got := orient(src, tc.ori)
		b := got.Bounds()
		assert.Equal(t, tc.w, b.Dx(), "orientation %d", tc.ori)
		assert.Equal(t, tc.h, b.Dy(), "orientation %d", tc.ori)
		r, _, _, _ := got.At(tc.x, tc.y).RGBA()
		assert.Equal(t, uint32(0xffff), r, "orientation %d", tc.ori)
	}
}
