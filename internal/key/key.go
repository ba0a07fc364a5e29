// Package key implements the cache's 128-bit object fingerprint.
package key

import (
	"fmt"
	"sync"

	"github.com/zeebo/xxh3"
)

// Key is the fixed-width fingerprint objects are stored under. It carries
// no byte layout guarantees beyond Word3, which is the value used for
// bucket selection and the one-hit seen filter.
type Key struct {
	Hi uint64
	Lo uint64
}

// Word3 returns the 32-bit word the hash index and seen filter operate
// on — the spec's "fourth 32-bit word of the 128-bit key".
func (k Key) Word3() uint32 {
	return uint32(k.Lo)
}

func (k Key) Equal(other Key) bool {
	return k.Hi == other.Hi && k.Lo == other.Lo
}

func (k Key) String() string {
	return fmt.Sprintf("%016x%016x", k.Hi, k.Lo)
}

var hasherPool = sync.Pool{New: func() any { return xxh3.New() }}

// FromBytes derives a Key from arbitrary seed material. The disk-cache
// layer that owns this core normally computes the fingerprint itself
// (e.g. from a URL); FromBytes exists for callers and tests that only
// have a byte string to key by.
func FromBytes(data []byte) Key {
	h := hasherPool.Get().(*xxh3.Hasher)
	h.Reset()
	_, _ = h.Write(data)
	sum := h.Sum128()
	hasherPool.Put(h)
	return Key{Hi: sum.Hi, Lo: sum.Lo}
}
