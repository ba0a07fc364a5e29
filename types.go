// Package ramclfus is the CLFUS in-memory object cache: the hot tier
// of a larger disk-backed content cache. It implements admission,
// eviction and an asynchronous background compression walker over a
// dual-queue (resident/history) engine; everything outside that core
// — disk persistence, wire protocols, TLS — is out of scope and
// reached only through the narrow interfaces below.
package ramclfus

import (
	"sync"
	"time"

	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/codec"
)

// Codec identifies one of the cache's four compressors. Tag values are
// in-process only — the cache never puts them on a wire.
type Codec = codec.Tag

const (
	CodecNone    = codec.None
	CodecFast    = codec.Fast
	CodecDeflate = codec.Deflate
	CodecLZMA    = codec.LZMA
)

// BufferProvider supplies the reference-counted byte buffers entries
// are stored in. *buffer.Pool (see internal/buffer) is the cache's own
// implementation; callers may substitute their own pool.
type BufferProvider interface {
	Alloc(size int) buffer.Ref
	AllocCopy(src []byte) buffer.Ref
}

// Scheduler drives the compression walker and supplies the volume
// mutex every mutating operation serializes on. *scheduler.Worker is
// the cache's own implementation.
type Scheduler interface {
	ScheduleEvery(interval time.Duration, fn func()) (stop func())
	Locker() sync.Locker
}

// MetricsSink receives the cache's hit/miss counts and signed byte
// deltas. *metrics.AtomicSink is the default.
type MetricsSink interface {
	AddHits(n int64)
	AddMisses(n int64)
	AddBytes(delta int64)
}
