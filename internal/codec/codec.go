// Package codec implements the cache's pluggable byte->byte
// compressors, dispatched by a small tag set. None is a no-op tag used
// when compression is disabled for an entry or for the whole cache.
package codec

// Tag identifies a compressor. The values are in-process only — the
// cache never puts them on a wire.
type Tag uint8

const (
	None Tag = iota
	Fast
	Deflate
	LZMA
)

func (t Tag) String() string {
	switch t {
	case None:
		return "none"
	case Fast:
		return "fast"
	case Deflate:
		return "deflate"
	case LZMA:
		return "lzma"
	default:
		return "unknown"
	}
}

// Dispatch is the codec provider contract the engine and the
// compression walker depend on. WorstCase estimates the largest
// output a Compress call could produce for a payload of the given
// length, used to size the scratch buffer before the codec runs.
type Dispatch interface {
	WorstCase(tag Tag, length int) int
	Compress(tag Tag, dst, src []byte) (n int, ok bool)
	Decompress(tag Tag, dst, src []byte) bool
}

// Default returns the cache's standard dispatch table: stdlib
// compress/flate for Deflate, klauspost/compress/s2 for Fast, and
// ulikunitz/xz/lzma for LZMA.
func Default() Dispatch { return defaultDispatch{} }

type defaultDispatch struct{}

func (defaultDispatch) WorstCase(tag Tag, length int) int {
	switch tag {
	case None:
		return length
	case Fast:
		return fastWorstCase(length)
	case Deflate:
		return deflateWorstCase(length)
	case LZMA:
		return lzmaWorstCase(length)
	default:
		return length
	}
}

func (defaultDispatch) Compress(tag Tag, dst, src []byte) (int, bool) {
	switch tag {
	case None:
		n := copy(dst, src)
		return n, true
	case Fast:
		return fastCompress(dst, src)
	case Deflate:
		return deflateCompress(dst, src)
	case LZMA:
		return lzmaCompress(dst, src)
	default:
		return 0, false
	}
}

func (defaultDispatch) Decompress(tag Tag, dst, src []byte) bool {
	switch tag {
	case None:
		copy(dst, src)
		return true
	case Fast:
		return fastDecompress(dst, src)
	case Deflate:
		return deflateDecompress(dst, src)
	case LZMA:
		return lzmaDecompress(dst, src)
	default:
		return false
	}
}
