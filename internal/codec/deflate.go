package codec

import (
	"bytes"
	"compress/flate"
	"io"
)

// deflateWorstCase and deflateCompress fall back to the standard
// library: the pack carries no third-party deflate implementation, and
// compress/flate is the reference codec the original RAM cache falls
// back to when libz isn't linked.
func deflateWorstCase(length int) int {
	return length + length/1000 + 64
}

func deflateCompress(dst, src []byte) (int, bool) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return 0, false
	}
	if _, err = w.Write(src); err != nil {
		return 0, false
	}
	if err = w.Close(); err != nil {
		return 0, false
	}
	if buf.Len() > len(dst) {
		return 0, false
	}
	n := copy(dst, buf.Bytes())
	return n, true
}

func deflateDecompress(dst, src []byte) bool {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return n <= len(dst)
}
