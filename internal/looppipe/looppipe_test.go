package looppipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainAll(t *testing.T, p *Port, n int) []byte {
	t.Helper()
	got := make([]byte, 0, n)
	for len(got) < n {
		b, ok, err := p.ReadByte()
		require.NoError(t, err)
		if ok {
			got = append(got, b)
		}
	}
	return got
}

func TestNewPairDeliversBytes(t *testing.T) {
	a, b := NewPair(20 * time.Millisecond)

	msg := []byte("hello")
	_, err := a.Write(msg)
	require.NoError(t, err)

	got := drainAll(t, b, len(msg))
	assert.Equal(t, msg, got)
}

func TestReadByteTimesOutWhenIdle(t *testing.T) {
	a, _ := NewPair(10 * time.Millisecond)
	_, ok, err := a.ReadByte()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDropNextWrites(t *testing.T) {
	a, b := NewPair(20 * time.Millisecond)
	b.DropNextWrites(1)

	_, err := b.Write([]byte("dropped"))
	require.NoError(t, err)
	_, err = b.Write([]byte("kept"))
	require.NoError(t, err)

	got := drainAll(t, a, len("kept"))
	assert.Equal(t, []byte("kept"), got)
}

func TestCorruptNextWriteFlipsOneBit(t *testing.T) {
	a, b := NewPair(20 * time.Millisecond)
	a.CorruptNextWrite()

	msg := []byte{0x7E, 0x03, 0x00, 0x03, 0x48, 0x69, 0x21, 0x7E}
	_, err := a.Write(msg)
	require.NoError(t, err)

	got := drainAll(t, b, len(msg))
	assert.NotEqual(t, msg, got)
	assert.Equal(t, len(msg), len(got))
}
