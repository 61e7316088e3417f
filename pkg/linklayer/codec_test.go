package linklayer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStuffDestuffRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{Flag},
		{Esc},
		{Flag, Flag, Flag},
		{Esc, Esc, Esc},
		{Flag, Esc, 0x41, Flag, Esc},
		[]byte("Hi"),
	}

	for _, c := range cases {
		stuffed := Stuff(c)
		got, err := Destuff(stuffed)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestStuffDestuffRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := r.Intn(300)
		data := make([]byte, n)
		for j := range data {
			data[j] = byte(r.Intn(256))
		}
		got, err := Destuff(Stuff(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestDestuffMalformedTrailingEscape(t *testing.T) {
	_, err := Destuff([]byte{0x41, Esc})
	assert.Error(t, err)
}

func TestDestuffInvalidEscapeByte(t *testing.T) {
	_, err := Destuff([]byte{Esc, 0x00})
	assert.Error(t, err)
}

func TestBCC1(t *testing.T) {
	assert.Equal(t, byte(0x00), BCC1(ATx, CSet))
	assert.Equal(t, byte(0x06), BCC1(ARx, CUA))
}

func TestBCC2MatchesXORReduce(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		n := r.Intn(256) + 1
		data := make([]byte, n)
		for j := range data {
			data[j] = byte(r.Intn(256))
		}
		var want byte
		for _, b := range data {
			want ^= b
		}
		assert.Equal(t, want, BCC2(data))
	}
}

func TestBCC2DetectsSingleBitFlip(t *testing.T) {
	data := []byte("Hi")
	withBCC2 := append(append([]byte{}, data...), BCC2(data))

	for i := range withBCC2 {
		corrupted := append([]byte{}, withBCC2...)
		corrupted[i] ^= 0x01

		payload := corrupted[:len(corrupted)-1]
		bcc2 := corrupted[len(corrupted)-1]
		assert.NotEqual(t, BCC2(payload), bcc2, "flip at byte %d not detected", i)
	}
}
