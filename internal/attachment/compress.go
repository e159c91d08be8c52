package attachment

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
)

var (
	// ErrDecode means the bytes are not an image the decoder understands.
	ErrDecode = errors.New("attachment is not a decodable image")
	// ErrNotCompressible means no JPEG quality step produced a small enough
	// encoding.
	ErrNotCompressible = errors.New("image cannot be compressed below the size limit")
)

// Profile controls the JPEG quality search.
type Profile struct {
	Name         string
	StartQuality int
	Step         int
}

var (
	GalleryProfile = Profile{Name: "gallery", StartQuality: 90, Step: 10}
	CameraProfile  = Profile{Name: "camera", StartQuality: 100, Step: 5}
)

// ProfileFor returns the profile for an image source.
func ProfileFor(source Source) Profile {
	if source == SourceCamera {
		return CameraProfile
	}
	return GalleryProfile
}

// CompressedImage is the result of Compress. Reencoded is false when the
// input already fit and was returned untouched.
type CompressedImage struct {
	Data      []byte
	Quality   int
	Rotation  int
	Reencoded bool
}

// Size returns the encoded length.
func (c *CompressedImage) Size() int64 {
	return int64(len(c.Data))
}

type encodeFunc func(w io.Writer, img image.Image, quality int) error

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// Compressor shrinks images to a byte budget by lowering JPEG quality.
type Compressor struct {
	encode encodeFunc
}

// NewCompressor returns a Compressor encoding with imaging's JPEG encoder.
func NewCompressor() *Compressor {
	return &Compressor{encode: encodeJPEG}
}

// Compress returns data unchanged when it already fits target. Otherwise it
// decodes once, applies the EXIF orientation once, and re-encodes at
// decreasing quality until the output fits. ErrDecode and
// ErrNotCompressible report the two failure modes.
func (c *Compressor) Compress(data []byte, target int64, p Profile) (*CompressedImage, error) {
	if int64(len(data)) <= target {
		return &CompressedImage{Data: data}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rotation := exifRotation(data)
	img = rotate(img, rotation)

	step := p.Step
	if step <= 0 {
		step = GalleryProfile.Step
	}
	logCtx := slog.With("profile", p.Name, "originalSize", len(data), "target", target)

	var buf bytes.Buffer
	for quality := p.StartQuality; quality > 0; quality -= step {
		buf.Reset()
		if err := c.encode(&buf, img, quality); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg at quality %d: %w", quality, err)
		}
		if int64(buf.Len()) <= target {
			logCtx.Info("Image compressed.", "quality", quality, "size", buf.Len(), "rotation", rotation)
			return &CompressedImage{
				Data:      append([]byte(nil), buf.Bytes()...),
				Quality:   quality,
				Rotation:  rotation,
				Reencoded: true,
			}, nil
		}
		logCtx.Debug("Encoding still too large.", "quality", quality, "size", buf.Len())
	}

	logCtx.Warn("No quality step fits the size limit.")
	return nil, ErrNotCompressible
}
