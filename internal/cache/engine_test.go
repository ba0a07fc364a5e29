package cache

import (
	"sync"
	"testing"

	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/key"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	hits, misses, bytes int64
}

func (s *countingSink) AddHits(n int64)      { s.hits += n }
func (s *countingSink) AddMisses(n int64)    { s.misses += n }
func (s *countingSink) AddBytes(delta int64) { s.bytes += delta }

func newTestEngine(maxBytes int64) (*Engine, *buffer.Pool, *countingSink) {
	pool := buffer.NewPool(6, 20)
	sink := &countingSink{}
	eng := New(Config{
		MaxBytes: maxBytes,
		Lock:     &sync.Mutex{},
		Buffers:  pool,
		Metrics:  sink,
	})
	return eng, pool, sink
}

func TestPutGetRoundTrip(t *testing.T) {
	eng, pool, sink := newTestEngine(1 << 20)
	k := key.FromBytes([]byte("obj"))

	src := pool.AllocCopy([]byte("hello world"))
	require.True(t, eng.Put(k, src, int64(src.Len()), true, 0, 0))
	src.Release()

	got, length, ok := eng.Get(k, 0, 0)
	require.True(t, ok)
	require.EqualValues(t, 11, length)
	require.Equal(t, []byte("hello world"), got.Bytes())
	got.Release()

	require.EqualValues(t, 1, sink.hits)
	require.EqualValues(t, 0, sink.misses)
}

func TestGetMissOnUnknownKey(t *testing.T) {
	eng, _, sink := newTestEngine(1 << 20)
	_, _, ok := eng.Get(key.FromBytes([]byte("nope")), 0, 0)
	require.False(t, ok)
	require.EqualValues(t, 1, sink.misses)
}

func TestZeroMaxBytesDisablesEverything(t *testing.T) {
	eng, pool, _ := newTestEngine(0)
	k := key.FromBytes([]byte("x"))

	buf := pool.AllocCopy([]byte("data"))
	defer buf.Release()

	require.False(t, eng.Put(k, buf, 4, true, 0, 0))
	_, _, ok := eng.Get(k, 0, 0)
	require.False(t, ok)
	require.False(t, eng.Fixup(k, 0, 0, 1, 1))
}

func TestResidentHitReplacesValueAndRecharges(t *testing.T) {
	eng, pool, _ := newTestEngine(1 << 20)
	k := key.FromBytes([]byte("obj"))

	first := pool.AllocCopy([]byte("short"))
	require.True(t, eng.Put(k, first, int64(first.Len()), true, 0, 0))
	first.Release()

	second := pool.AllocCopy([]byte("a much longer replacement value"))
	require.True(t, eng.Put(k, second, int64(second.Len()), true, 0, 0))
	second.Release()

	got, length, ok := eng.Get(k, 0, 0)
	require.True(t, ok)
	require.EqualValues(t, len("a much longer replacement value"), length)
	require.Equal(t, "a much longer replacement value", string(got.Bytes()))
	got.Release()
}

func TestFixupRetargetsAuxKeys(t *testing.T) {
	eng, pool, _ := newTestEngine(1 << 20)
	k := key.FromBytes([]byte("obj"))

	buf := pool.AllocCopy([]byte("v1"))
	require.True(t, eng.Put(k, buf, 2, true, 1, 1))
	buf.Release()

	require.True(t, eng.Fixup(k, 1, 1, 2, 2))

	_, _, ok := eng.Get(k, 1, 1)
	require.False(t, ok)

	got, _, ok := eng.Get(k, 2, 2)
	require.True(t, ok)
	got.Release()
}

func TestFixupOnUnknownTripleFails(t *testing.T) {
	eng, _, _ := newTestEngine(1 << 20)
	require.False(t, eng.Fixup(key.FromBytes([]byte("ghost")), 0, 0, 1, 1))
}

func TestPutWithConflictingAuxDestroysStaleVersion(t *testing.T) {
	eng, pool, _ := newTestEngine(1 << 20)
	k := key.FromBytes([]byte("obj"))

	buf1 := pool.AllocCopy([]byte("version-1"))
	require.True(t, eng.Put(k, buf1, int64(buf1.Len()), true, 1, 1))
	buf1.Release()

	buf2 := pool.AllocCopy([]byte("version-2"))
	require.True(t, eng.Put(k, buf2, int64(buf2.Len()), true, 2, 2))
	buf2.Release()

	_, _, ok := eng.Get(k, 1, 1)
	require.False(t, ok, "stale aux version must be gone")

	got, _, ok := eng.Get(k, 2, 2)
	require.True(t, ok)
	require.Equal(t, "version-2", string(got.Bytes()))
	got.Release()
}

func TestResidentBytesNeverExceedMaxBytes(t *testing.T) {
	const payload = 1024
	const slots = 4
	maxBytes := int64(slots) * (int64(payload) + Overhead)

	eng, pool, _ := newTestEngine(maxBytes)

	data := make([]byte, payload)
	for i := 0; i < slots*5; i++ {
		k := key.FromBytes([]byte{byte(i), byte(i >> 8)})
		buf := pool.AllocCopy(data)
		eng.Put(k, buf, int64(len(data)), true, 0, 0)
		buf.Release()

		st := eng.Stats()
		require.LessOrEqual(t, st.Bytes, maxBytes)
		require.LessOrEqual(t, st.Objects, int64(slots))
	}
}

func TestHistoryPromotionKeepsDenserResidentEntry(t *testing.T) {
	const payload = 1024
	maxBytes := int64(2) * (int64(payload) + Overhead)

	eng, pool, _ := newTestEngine(maxBytes)
	data := make([]byte, payload)

	hot := key.FromBytes([]byte("hot"))
	cold := key.FromBytes([]byte("cold"))

	buf := pool.AllocCopy(data)
	require.True(t, eng.Put(hot, buf, payload, true, 0, 0))
	buf.Release()

	buf = pool.AllocCopy(data)
	require.True(t, eng.Put(cold, buf, payload, true, 0, 0))
	buf.Release()

	// drive hot's hit count up so it outranks cold once cold is
	// harvested into history and tries to claw its way back in.
	for i := 0; i < 5; i++ {
		got, _, ok := eng.Get(hot, 0, 0)
		require.True(t, ok)
		got.Release()
	}

	// a third distinct key forces one eviction; cold (never touched,
	// LRU head) is the one harvested to history.
	third := key.FromBytes([]byte("third"))
	buf = pool.AllocCopy(data)
	require.True(t, eng.Put(third, buf, payload, true, 0, 0))
	buf.Release()

	st := eng.Stats()
	require.LessOrEqual(t, st.Bytes, maxBytes)

	// re-offering cold's old bytes under the same key is a history
	// promotion attempt; hot is much denser, so cold loses the race.
	buf = pool.AllocCopy(data)
	admitted := eng.Put(cold, buf, payload, true, 0, 0)
	buf.Release()

	if admitted {
		got, _, ok := eng.Get(hot, 0, 0)
		require.True(t, ok, "hot must still be resident regardless of cold's outcome")
		got.Release()
	} else {
		got, _, ok := eng.Get(hot, 0, 0)
		require.True(t, ok, "hot must survive a lost promotion race")
		got.Release()
	}
}

func TestGrowExpandsBucketTableUnderLoad(t *testing.T) {
	eng, pool, _ := newTestEngine(1 << 30)
	data := []byte("x")

	for i := 0; i < bucketSizes[0]+50; i++ {
		k := key.FromBytes([]byte{byte(i), byte(i >> 8), byte(i >> 16)})
		buf := pool.AllocCopy(data)
		require.True(t, eng.Put(k, buf, 1, true, 0, 0))
		buf.Release()
	}

	require.Greater(t, eng.idx.nbuckets(), bucketSizes[0])
}
