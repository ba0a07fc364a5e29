package cache

import (
	"sync"

	"github.com/avbelov/go-ramclfus/internal/key"
	"github.com/avbelov/go-ramclfus/internal/shared/queue"
)

// staleRetryDrainLimit bounds how many previously-stale entries a
// single RunCompressionPass will re-attempt before resuming its normal
// cursor walk. It is deliberately much smaller than the teacher's own
// refresh-bucket sizing (queueCap=4096) — a codec race that mutates or
// destroys an entry mid-compress is rare, so the queue only ever needs
// to carry a handful of retries between passes.
const staleRetryDrainLimit = 4

// staleRetryQueue remembers keys whose compression attempt was aborted
// because the entry was touched or destroyed while the codec ran
// unlocked, so the next pass can retry them instead of abandoning the
// slot outright. It pairs two of the teacher's internal/shared/queue
// ring buffers — one for each half of the cache's 128-bit Key — moved
// in lockstep under one mutex, rather than widening queue.Queue's
// element type: a single queue.Queue only ever carried one uint64
// opaque hash key for the teacher's refresh bucket, but a compression
// retry has to revalidate the entry by its full key via idx.findByKey,
// so half a key is not enough to look one back up safely.
type staleRetryQueue struct {
	mu     sync.Mutex
	hi, lo queue.Queue
}

func newStaleRetryQueue(size int) *staleRetryQueue {
	q := &staleRetryQueue{}
	q.hi.Init(size)
	q.lo.Init(size)
	return q
}

func (q *staleRetryQueue) tryPush(k key.Key) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.hi.TryPush(k.Hi) {
		return false
	}
	if !q.lo.TryPush(k.Lo) {
		// hi and lo are always the same capacity and only ever pushed
		// or popped together, so this should never actually happen —
		// guarded anyway rather than leaving the pair mismatched.
		return false
	}
	return true
}

func (q *staleRetryQueue) tryPop() (key.Key, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	hi, ok := q.hi.TryPop()
	if !ok {
		return key.Key{}, false
	}
	lo, _ := q.lo.TryPop()
	return key.Key{Hi: hi, Lo: lo}, true
}
