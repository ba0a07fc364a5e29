package cache

import (
	"fmt"
	"testing"

	"github.com/avbelov/go-ramclfus/internal/key"
	"github.com/stretchr/testify/require"
)

func TestIndexInsertFindRemove(t *testing.T) {
	ix := newIndex()
	k := key.FromBytes([]byte("obj-1"))
	e := &entry{key: k, aux1: 1, aux2: 2}

	require.Nil(t, ix.find(k, 1, 2))
	ix.insert(e)

	require.Equal(t, e, ix.find(k, 1, 2))
	require.Nil(t, ix.find(k, 1, 3)) // aux mismatch
	require.Equal(t, e, ix.findByKey(k))

	ix.remove(e)
	require.Nil(t, ix.find(k, 1, 2))
	require.Nil(t, ix.findByKey(k))
}

func TestIndexFindByKeyIgnoresAux(t *testing.T) {
	ix := newIndex()
	k := key.FromBytes([]byte("obj-2"))
	e := &entry{key: k, aux1: 9, aux2: 9}
	ix.insert(e)

	require.Nil(t, ix.find(k, 1, 1))
	require.Equal(t, e, ix.findByKey(k))
}

func TestIndexHandlesHashCollisionsWithinBucket(t *testing.T) {
	ix := newIndex()

	var keys []key.Key
	var entries []*entry
	for i := 0; i < 50; i++ {
		k := key.FromBytes([]byte(fmt.Sprintf("bucket-fill-%d", i)))
		e := &entry{key: k, aux1: uint32(i)}
		keys = append(keys, k)
		entries = append(entries, e)
		ix.insert(e)
	}

	for i, k := range keys {
		require.Equal(t, entries[i], ix.find(k, uint32(i), 0))
	}

	// remove from the middle of whatever chains formed and confirm the
	// rest are still reachable.
	ix.remove(entries[25])
	require.Nil(t, ix.find(keys[25], 25, 0))
	for i, k := range keys {
		if i == 25 {
			continue
		}
		require.Equal(t, entries[i], ix.find(k, uint32(i), 0))
	}
}

func TestIndexGrowPreservesAllEntries(t *testing.T) {
	ix := newIndex()
	require.Equal(t, bucketSizes[0], ix.nbuckets())

	var keys []key.Key
	for i := 0; i < 300; i++ {
		k := key.FromBytes([]byte(fmt.Sprintf("grow-%d", i)))
		e := &entry{key: k, aux1: uint32(i)}
		keys = append(keys, k)
		ix.insert(e)
	}

	ix.grow()
	require.Equal(t, bucketSizes[1], ix.nbuckets())

	for i, k := range keys {
		e := ix.find(k, uint32(i), 0)
		require.NotNil(t, e)
		require.Equal(t, k, e.key)
	}
}

func TestIndexGrowResetsSeenFilter(t *testing.T) {
	ix := newIndex()
	k := key.FromBytes([]byte("seen-key"))

	require.False(t, ix.checkSeen(k)) // first look, refused, recorded
	require.True(t, ix.checkSeen(k))  // second look, same slot, matches

	ix.grow()
	require.False(t, ix.checkSeen(k)) // seen table reset by grow
}

func TestCheckSeenOverwritesEvenOnMismatch(t *testing.T) {
	ix := newIndex()

	// find two keys that hash into the same bucket so their seen slots
	// compete; brute-force search. A fresh index has bucketSizes[0]
	// (127) buckets, so a collision is guaranteed within 128 keys.
	var a, b key.Key
	found := false
	seenFor := map[int]key.Key{}
	for i := 0; i < 10000 && !found; i++ {
		k := key.FromBytes([]byte(fmt.Sprintf("seen-%d", i)))
		bkt := ix.bucketFor(k)
		if prev, ok := seenFor[bkt]; ok {
			a, b = prev, k
			found = true
			break
		}
		seenFor[bkt] = k
	}
	require.True(t, found, "expected a bucket collision within the sample")

	require.False(t, ix.checkSeen(a)) // records a's slot value
	// b lands in the same bucket; if its slot value differs from a's,
	// checkSeen must refuse but still overwrite the cell.
	res := ix.checkSeen(b)
	if seenSlot(a) != seenSlot(b) {
		require.False(t, res)
	}
	require.True(t, ix.checkSeen(b)) // now matches what was just written
}
