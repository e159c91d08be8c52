package attachment

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// exifRotation returns the clockwise rotation in degrees that the EXIF
// Orientation tag asks for. Missing or unsupported values yield 0.
func exifRotation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return 0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 0
	}
	switch orientation {
	case 6:
		return 90
	case 3:
		return 180
	case 8:
		return 270
	}
	return 0
}

// rotate turns img clockwise by degrees. imaging rotates counter-clockwise.
func rotate(img image.Image, degrees int) image.Image {
	switch degrees {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	}
	return img
}
