package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/Lllllllleong/suratflow/internal/services/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(w*h + 1)))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestCandidate(t *testing.T, data []byte, name string, kind attachment.Kind, source attachment.Source) *attachment.Candidate {
	t.Helper()
	c, err := attachment.NewCandidate(bytes.NewReader(data), name, kind, source)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Release() })
	return c
}

// validSurat is the record of the clean submission scenario.
func validSurat() models.Surat {
	return models.Surat{
		Counterpart:  "Dinas A",
		LetterNumber: "001/X",
		LetterDate:   "2024-01-01",
		AgendaNumber: "5/2024",
		ReceivedDate: "2024-01-02",
		Subject:      "Undangan",
	}
}

// noDuplicates makes every Exists lookup report false.
func noDuplicates(p *mocks.MockPersistence) {
	p.On("Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
}
