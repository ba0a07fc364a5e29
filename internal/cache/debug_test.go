//go:build ramclfus_debug

package cache

import (
	"bytes"
	"testing"

	"github.com/avbelov/go-ramclfus/internal/key"
)

// TestCheckInvariantsHoldsAcrossHarvestAndPromotion drives a put
// sequence that exercises admission, eviction, and history promotion —
// checkInvariants runs after every Put already (wired in put.go), so
// simply not panicking across this sequence is the assertion.
func TestCheckInvariantsHoldsAcrossHarvestAndPromotion(t *testing.T) {
	eng, pool, _ := newTestEngine(3000)

	keys := make([]key.Key, 4)
	for i := range keys {
		keys[i] = key.FromBytes([]byte{byte('a' + i)})
		buf := pool.AllocCopy(bytes.Repeat([]byte{byte('a' + i)}, 800))
		eng.Put(keys[i], buf, 800, true, 0, 0)
		buf.Release()
	}

	buf := pool.AllocCopy(bytes.Repeat([]byte{'a'}, 800))
	eng.Put(keys[0], buf, 800, true, 0, 0)
	buf.Release()

	_, _, _ = eng.Get(keys[3], 0, 0)
	eng.Fixup(keys[3], 0, 0, 1, 1)
}
