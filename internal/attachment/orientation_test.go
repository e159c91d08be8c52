package attachment

import (
	"bytes"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExifRotation(t *testing.T) {
	base := encodeTestJPEG(t, noiseImage(8, 4, 7), 90)

	for orientation, want := range map[uint16]int{1: 0, 3: 180, 6: 90, 8: 270, 2: 0} {
		assert.Equal(t, want, exifRotation(withOrientation(t, base, orientation)), "orientation %d", orientation)
	}
	assert.Zero(t, exifRotation(base))
	assert.Zero(t, exifRotation([]byte("garbage")))
}

func TestRotate(t *testing.T) {
	img, err := imaging.Decode(bytes.NewReader(encodePNG(t, noiseImage(6, 2, 8))))
	require.NoError(t, err)

	for deg, wantW := range map[int]int{0: 6, 90: 2, 180: 6, 270: 2} {
		assert.Equal(t, wantW, rotate(img, deg).Bounds().Dx(), "rotation %d", deg)
	}

	src := noiseImage(2, 1, 9)
	left := src.NRGBAAt(0, 0)
	cw := rotate(src, 90)
	// After a clockwise quarter turn the left pixel sits on top.
	r, g, b, _ := cw.At(0, 0).RGBA()
	assert.Equal(t, uint32(left.R)*0x101, r)
	assert.Equal(t, uint32(left.G)*0x101, g)
	assert.Equal(t, uint32(left.B)*0x101, b)
}
