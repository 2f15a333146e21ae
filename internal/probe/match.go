package probe

import (
	"bytes"
	"io"
)

// matchChunk is how much of the response body is read at a time.
const matchChunk = 32 << 10

// streamContains reports whether pattern occurs anywhere in r. Only chunk
// bytes plus len(pattern)-1 bytes of overlap are held at once, so a match
// spanning two reads is still found. It stops at the first match.
func streamContains(r io.Reader, pattern []byte, chunk int) (bool, error) {
	if len(pattern) == 0 {
		return true, nil
	}
	if chunk < 1 {
		chunk = matchChunk
	}
	keep := len(pattern) - 1
	buf := make([]byte, keep+chunk)
	n := 0
	for {
		m, err := r.Read(buf[n:])
		n += m
		if m > 0 && bytes.Contains(buf[:n], pattern) {
			return true, nil
		}
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		// carry the tail so the next read can complete a split match
		if n > keep {
			copy(buf, buf[n-keep:n])
			n = keep
		}
	}
}
