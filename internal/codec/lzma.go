package codec

import (
	"bytes"

	"github.com/ulikunitz/xz/lzma"
)

// lzma trades compression speed for ratio. The walker uses it only
// when it is the cache's configured codec tag (internal/config
// CompressionCfg.Codec); every entry is compressed with that one tag,
// so there is no per-entry fallback from fast or deflate to lzma.
func lzmaWorstCase(length int) int {
	return length + length/2 + 128
}

func lzmaCompress(dst, src []byte) (int, bool) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
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

func lzmaDecompress(dst, src []byte) bool {
	r, err := lzma.NewReader(bytes.NewReader(src))
	if err != nil {
		return false
	}
	n := 0
	for n < len(dst) {
		k, err := r.Read(dst[n:])
		n += k
		if err != nil {
			break
		}
	}
	return n <= len(dst)
}
