package key

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBytesIsDeterministic(t *testing.T) {
	a := FromBytes([]byte("https://example.com/video.mp4"))
	b := FromBytes([]byte("https://example.com/video.mp4"))
	require.True(t, a.Equal(b))
}

func TestFromBytesDistinguishesInputs(t *testing.T) {
	a := FromBytes([]byte("one"))
	b := FromBytes([]byte("two"))
	require.False(t, a.Equal(b))
}

func TestWord3IsLowWordOfLo(t *testing.T) {
	k := Key{Hi: 0xdeadbeef, Lo: 0x00000000_12345678}
	require.Equal(t, uint32(0x12345678), k.Word3())
}

func TestStringIsFixedWidthHex(t *testing.T) {
	k := Key{Hi: 1, Lo: 2}
	require.Equal(t, "00000000000000010000000000000002", k.String())
}

func TestEqualIsComponentwise(t *testing.T) {
	a := Key{Hi: 1, Lo: 2}
	b := Key{Hi: 1, Lo: 2}
	c := Key{Hi: 1, Lo: 3}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
