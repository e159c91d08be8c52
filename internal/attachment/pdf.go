package attachment

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// InspectPDF validates data in relaxed mode and returns its page count.
// Invalid documents are reported as ErrDecode.
func InspectPDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	rs := bytes.NewReader(data)
	if err := api.Validate(rs, conf); err != nil {
		return 0, fmt.Errorf("%w: invalid pdf: %v", ErrDecode, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind pdf: %w", err)
	}
	pages, err := api.PageCount(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count pdf pages: %v", ErrDecode, err)
	}
	return pages, nil
}
