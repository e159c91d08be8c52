package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/gcp"
)

func openCandidate(path string, source attachment.Source) (*attachment.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return attachment.NewCandidate(f, filepath.Base(path), "", source)
}

func defaultLimit() int64 {
	return gcp.GetEnvInt64("MAX_FILE_SIZE_BYTES", attachment.DefaultMaxFileSize)
}

func runSize(args []string, _ io.Reader, stdout io.Writer) error {
	fs := newFlagSet("size")
	limit := fs.Int64("limit", defaultLimit(), "size limit in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("size: at least one file is required")
	}
	for _, path := range fs.Args() {
		c, err := openCandidate(path, attachment.SourceGallery)
		if err != nil {
			return err
		}
		size := attachment.Measure(c)
		verdict := "ok"
		if size > *limit {
			verdict = "over limit"
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\n", path, c.Kind, attachment.FormatFileSize(size), verdict)
		if err := c.Release(); err != nil {
			return err
		}
	}
	return nil
}

func runCompress(args []string, _ io.Reader, stdout io.Writer) error {
	fs := newFlagSet("compress")
	out := fs.StringP("out", "o", "", "output path (default: <input>.jpg)")
	limit := fs.Int64("limit", defaultLimit(), "target size in bytes")
	source := fs.String("source", string(attachment.SourceGallery), "capture source: gallery or camera")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("compress: exactly one input file is required")
	}
	in := fs.Arg(0)
	if *out == "" {
		*out = strings.TrimSuffix(in, filepath.Ext(in)) + ".jpg"
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}
	compressed, err := attachment.NewCompressor().Compress(data, *limit, attachment.ProfileFor(attachment.ParseSource(*source)))
	if err != nil {
		return fmt.Errorf("failed to compress %s: %w", in, err)
	}
	if !compressed.Reencoded {
		fmt.Fprintf(stdout, "%s already within %s, left unchanged\n", in, attachment.FormatFileSize(*limit))
		return nil
	}
	if err := os.WriteFile(*out, compressed.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	fmt.Fprintf(stdout, "%s: %s -> %s (quality %d, rotated %d)\n",
		*out, attachment.FormatFileSize(int64(len(data))), attachment.FormatFileSize(compressed.Size()), compressed.Quality, compressed.Rotation)
	return nil
}
