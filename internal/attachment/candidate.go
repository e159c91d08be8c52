// Package attachment holds files picked for upload in a private temp dir and
// shrinks oversized images until they fit the upload limit.
package attachment

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind is the declared type of an attachment.
type Kind string

const (
	KindImage   Kind = "image"
	KindPDF     Kind = "pdf"
	KindUnknown Kind = "unknown"
)

// Source records where an image came from; it selects the compression
// profile.
type Source string

const (
	SourceGallery Source = "gallery"
	SourceCamera  Source = "camera"
)

// ParseSource maps a form value onto a Source, defaulting to gallery.
func ParseSource(s string) Source {
	if strings.EqualFold(strings.TrimSpace(s), string(SourceCamera)) {
		return SourceCamera
	}
	return SourceGallery
}

// DefaultMaxFileSize is the upload limit used when none is configured.
const DefaultMaxFileSize int64 = 2 * 1024 * 1024

// Candidate is an attachment copied into a temp dir it owns. Release removes
// the dir together with every derived copy written by Replace.
type Candidate struct {
	Name   string
	Kind   Kind
	Source Source

	mu       sync.Mutex
	dir      string
	path     string
	released bool
}

// NewCandidate copies r into a fresh temp dir. An empty kind is sniffed from
// the content.
func NewCandidate(r io.Reader, name string, kind Kind, source Source) (*Candidate, error) {
	dir, err := os.MkdirTemp("", "surat-attachment-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "attachment"
	}
	path := filepath.Join(dir, "original"+strings.ToLower(filepath.Ext(base)))

	if err := writeFile(path, r); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	if kind == "" {
		kind, err = sniffFile(path)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
	}
	if source == "" {
		source = SourceGallery
	}

	return &Candidate{Name: base, Kind: kind, Source: source, dir: dir, path: path}, nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to copy attachment to temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return nil
}

// Path returns the file currently backing the candidate.
func (c *Candidate) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Dir returns the temp dir owned by the candidate.
func (c *Candidate) Dir() string {
	return c.dir
}

// ReadAll loads the current bytes.
func (c *Candidate) ReadAll() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, ErrReleased
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	return data, nil
}

// Replace stores data as a derived copy next to the original and makes it
// the current content. ext names the new encoding, e.g. ".jpg".
func (c *Candidate) Replace(data []byte, ext string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrReleased
	}
	path := filepath.Join(c.dir, "derived"+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write derived attachment: %w", err)
	}
	c.path = path
	if ext != "" {
		c.Name = strings.TrimSuffix(c.Name, filepath.Ext(c.Name)) + ext
	}
	return nil
}

// Release deletes the temp dir. Calling it more than once is a no-op.
func (c *Candidate) Release() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil
	}
	c.released = true
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("failed to remove temp dir %s: %w", c.dir, err)
	}
	return nil
}

// Released reports whether Release has run.
func (c *Candidate) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// ErrReleased is returned when a released candidate is read or written.
var ErrReleased = errors.New("attachment already released")

// DetectKind classifies content from its leading bytes.
func DetectKind(head []byte) Kind {
	return KindFromContentType(http.DetectContentType(head))
}

// KindFromContentType maps a MIME type onto a Kind.
func KindFromContentType(contentType string) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case strings.HasPrefix(ct, "application/pdf"):
		return KindPDF
	}
	return KindUnknown
}

func sniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return KindUnknown, fmt.Errorf("failed to read attachment header: %w", err)
	}
	return DetectKind(head[:n]), nil
}
