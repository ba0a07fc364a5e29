package cache

import "github.com/avbelov/go-ramclfus/internal/key"

// bucketSizes is the ascending prime growth schedule the hash index
// steps through. Chosen so each step roughly doubles capacity while
// staying prime, matching the original RAM cache's table verbatim.
var bucketSizes = []int{
	127, 251, 509, 1021, 2039, 4093, 8191, 16381, 32749, 65521,
	131071, 262139, 524287, 1048573, 2097143, 4194301, 8388593,
	16777213, 33554393, 67108859, 134217689, 268435399, 536870909,
	1073741789, 2147483647,
}

type bucket struct {
	head, tail *entry
}

// index is a prime-sized chained hash table over entries, plus a
// parallel one-hit "seen" array used to refuse cold keys while history
// is saturated. Bucket selection uses the low 32 bits of the key (the
// key's fourth 32-bit word), per Key.Word3.
type index struct {
	buckets  []bucket
	seen     []uint16
	sizeStep int
}

func newIndex() *index {
	return &index{
		buckets:  make([]bucket, bucketSizes[0]),
		seen:     make([]uint16, bucketSizes[0]),
		sizeStep: 0,
	}
}

func (ix *index) nbuckets() int { return len(ix.buckets) }

func (ix *index) bucketFor(k key.Key) int {
	return int(k.Word3() % uint32(len(ix.buckets)))
}

// find walks the chain for b looking for a full (key, aux1, aux2)
// match, used by get. aux mismatches are not returned — callers that
// need conflict detection use findByKey.
func (ix *index) find(k key.Key, aux1, aux2 uint32) *entry {
	b := ix.bucketFor(k)
	for e := ix.buckets[b].head; e != nil; e = e.hashNext {
		if e.matchesTriple(k, aux1, aux2) {
			return e
		}
	}
	return nil
}

// findByKey walks the chain for b looking only at the primary key,
// returning the first match regardless of aux keys. put uses this to
// detect aux-key conflicts that must be destroyed before insertion.
func (ix *index) findByKey(k key.Key) *entry {
	b := ix.bucketFor(k)
	for e := ix.buckets[b].head; e != nil; e = e.hashNext {
		if e.key.Equal(k) {
			return e
		}
	}
	return nil
}

func (ix *index) insert(e *entry) {
	b := ix.bucketFor(e.key)
	bk := &ix.buckets[b]
	e.hashNext = nil
	if bk.tail != nil {
		bk.tail.hashNext = e
	} else {
		bk.head = e
	}
	bk.tail = e
}

func (ix *index) remove(e *entry) {
	b := ix.bucketFor(e.key)
	bk := &ix.buckets[b]
	var prev *entry
	for cur := bk.head; cur != nil; cur = cur.hashNext {
		if cur == e {
			if prev != nil {
				prev.hashNext = cur.hashNext
			} else {
				bk.head = cur.hashNext
			}
			if bk.tail == cur {
				bk.tail = prev
			}
			cur.hashNext = nil
			return
		}
		prev = cur
	}
}

// seenSlot returns the upper 16 bits of the key word, the value the
// one-hit filter stores in the key's bucket cell.
func seenSlot(k key.Key) uint16 { return uint16(k.Word3() >> 16) }

// checkSeen reports whether word3's upper bits match what is on
// record for this bucket, and unconditionally overwrites the cell with
// the new value — even on a refusal, so the next distinct key to land
// in the bucket gets its own fair first look.
func (ix *index) checkSeen(k key.Key) bool {
	b := ix.bucketFor(k)
	want := seenSlot(k)
	matched := ix.seen[b] == want
	ix.seen[b] = want
	return matched
}

// grow advances to the next prime step and rehashes every entry into a
// fresh bucket array. The seen array is reallocated and zeroed: the
// one-hit record is intentionally discarded across a grow, matching
// the source.
func (ix *index) grow() {
	if ix.sizeStep >= len(bucketSizes)-1 {
		return
	}
	ix.sizeStep++
	newBuckets := make([]bucket, bucketSizes[ix.sizeStep])
	for i := range ix.buckets {
		for e := ix.buckets[i].head; e != nil; {
			next := e.hashNext
			e.hashNext = nil
			b := int(e.key.Word3() % uint32(len(newBuckets)))
			bk := &newBuckets[b]
			if bk.tail != nil {
				bk.tail.hashNext = e
			} else {
				bk.head = e
			}
			bk.tail = e
			e = next
		}
	}
	ix.buckets = newBuckets
	ix.seen = make([]uint16, len(newBuckets))
}
