// Package buffer implements the reference-counted byte buffers the cache
// stores payloads in. Every Ref carries two sizes: BlockSize, the true
// memory footprint of the backing allocation (rounded up to a size
// class, padding included), and the logical length the caller asked
// for. The cache charges its byte budget against BlockSize, never Len.
package buffer

import "sync/atomic"

type block struct {
	data  []byte
	refs  int32
	class int
	pool  *Pool
}

// Ref is a handle to a pooled buffer. The zero Ref is valid and refers
// to no storage (Same(Ref{}) is true only for other zero Refs).
type Ref struct {
	b      *block
	length int
}

// Bytes returns the logical payload. Callers must treat it as
// immutable for as long as they hold the Ref.
func (r Ref) Bytes() []byte {
	if r.b == nil {
		return nil
	}
	return r.b.data[:r.length]
}

// Len is the logical payload length.
func (r Ref) Len() int { return r.length }

// BlockSize is the true footprint charged against the cache's byte
// budget, including whatever padding the size class added.
func (r Ref) BlockSize() int {
	if r.b == nil {
		return 0
	}
	return len(r.b.data)
}

// Resize returns a Ref over the same backing block reinterpreted to
// hold n logical bytes instead of r.Len(). It shares the refcount with
// r; callers release either value, not both, to free the block once.
// Used by the compression walker to shrink a worst-case scratch buffer
// down to the codec's actual output length.
func (r Ref) Resize(n int) Ref { return Ref{b: r.b, length: n} }

// Same reports whether two Refs point at the same backing allocation.
// The compression walker uses this to detect that an entry's buffer
// changed out from under it while the volume mutex was released.
func (r Ref) Same(other Ref) bool { return r.b == other.b }

// Retain increments the refcount and returns the same Ref, so callers
// can hand out additional owners of the same buffer.
func (r Ref) Retain() Ref {
	if r.b != nil {
		atomic.AddInt32(&r.b.refs, 1)
	}
	return r
}

// Release decrements the refcount, returning the block to its pool
// once the last owner releases it.
func (r Ref) Release() {
	if r.b == nil {
		return
	}
	if atomic.AddInt32(&r.b.refs, -1) == 0 && r.b.pool != nil {
		r.b.pool.put(r.b)
	}
}
