package attachment

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasure(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 12345)
	c, err := NewCandidate(bytes.NewReader(data), "a.txt", KindUnknown, SourceGallery)
	require.NoError(t, err)

	assert.Equal(t, int64(12345), Measure(c))
	assert.Equal(t, int64(12345), Measure(c), "measuring must not consume the file")

	require.NoError(t, c.Release())
	assert.Zero(t, Measure(c))
	assert.Zero(t, Measure(nil))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestMeasureReaderSoftFails(t *testing.T) {
	assert.Zero(t, MeasureReader(failingReader{}))
	assert.Equal(t, int64(3), MeasureReader(bytes.NewReader([]byte("abc"))))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(DefaultMaxFileSize))
}
