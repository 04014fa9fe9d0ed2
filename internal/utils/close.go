package utils

import (
	"io"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// DrainAndClose discards what is left of an HTTP response body before closing it
// so the underlying connection can be reused. At most limit bytes are read.
func DrainAndClose(rc io.ReadCloser, limit int64) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, limit))
	_ = rc.Close()
}
