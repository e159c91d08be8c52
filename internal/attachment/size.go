package attachment

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Measure returns the byte length of the candidate's current file by
// streaming it. Read failures are logged and reported as 0, which callers
// must treat as unknown rather than empty.
func Measure(c *Candidate) int64 {
	if c == nil {
		return 0
	}
	f, err := os.Open(c.Path())
	if err != nil {
		slog.Warn("Failed to open attachment for sizing", "name", c.Name, "error", err)
		return 0
	}
	defer f.Close()
	return MeasureReader(f)
}

// MeasureReader counts the bytes remaining in r.
func MeasureReader(r io.Reader) int64 {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		slog.Warn("Failed to read attachment while sizing", "error", err)
		return 0
	}
	return n
}

// FormatFileSize renders n as B, KB or MB the way it is shown to users.
func FormatFileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
