package codec

import "github.com/klauspost/compress/s2"

// fastMinLength mirrors the original RAM cache's rule that very small
// payloads are never worth the codec's framing overhead.
const fastMinLength = 16

func fastWorstCase(length int) int {
	if length < fastMinLength {
		return length
	}
	return s2.MaxEncodedLen(length)
}

func fastCompress(dst, src []byte) (int, bool) {
	if len(src) < fastMinLength {
		return 0, false
	}
	out := s2.Encode(dst, src)
	return len(out), true
}

func fastDecompress(dst, src []byte) bool {
	out, err := s2.Decode(dst, src)
	if err != nil {
		return false
	}
	return len(out) <= len(dst)
}
