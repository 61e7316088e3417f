package linklayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildSupervisorySET is scenario S1 from the spec: the literal SET
// frame bytes.
func TestBuildSupervisorySET(t *testing.T) {
	got := BuildSupervisory(ATx, CSet)
	want := []byte{0x7E, 0x03, 0x03, 0x00, 0x7E}
	assert.Equal(t, want, got)
}

// TestBuildSupervisoryUA is the UA half of scenario S1.
func TestBuildSupervisoryUA(t *testing.T) {
	got := BuildSupervisory(ARx, CUA)
	want := []byte{0x7E, 0x01, 0x07, 0x06, 0x7E}
	assert.Equal(t, want, got)
}

// TestBuildInformationClean is scenario S2: payload "Hi" on seq 0.
func TestBuildInformationClean(t *testing.T) {
	got := BuildInformation(ATx, CI0, []byte("Hi"))
	want := []byte{0x7E, 0x03, 0x00, 0x03, 0x48, 0x69, 0x21, 0x7E}
	assert.Equal(t, want, got)
}

// TestBuildInformationStuffedFlag is scenario S3: a payload that is
// itself the flag byte, so both the payload byte and its BCC2 need
// stuffing.
func TestBuildInformationStuffedFlag(t *testing.T) {
	got := BuildInformation(ATx, CI0, []byte{0x7E})
	want := []byte{0x7E, 0x03, 0x00, 0x03, 0x7D, 0x5E, 0x7D, 0x5E, 0x7E}
	assert.Equal(t, want, got)
}

func TestParseInformationRoundTrip(t *testing.T) {
	payload := []byte{0x7E, 0x41, 0x7D, 0x00}
	raw := BuildInformation(ATx, CI1, payload)

	a, c, got, err := ParseInformation(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(ATx), a)
	assert.Equal(t, byte(CI1), c)
	assert.Equal(t, payload, got)
}

// TestParseInformationCorruption is scenario S4: a single bit flipped
// in the payload before the trailing flag must be detected as a BCC2
// mismatch.
func TestParseInformationCorruption(t *testing.T) {
	raw := BuildInformation(ATx, CI0, []byte("Hi"))
	corrupt := append([]byte{}, raw...)
	corrupt[5] ^= 0x01 // flip a bit inside "Hi" before the trailing flag

	_, _, _, err := ParseInformation(corrupt)
	assert.ErrorIs(t, err, ErrBCC2Mismatch)
}

func TestParseInformationBCC1Mismatch(t *testing.T) {
	raw := BuildInformation(ATx, CI0, []byte("Hi"))
	corrupt := append([]byte{}, raw...)
	corrupt[3] ^= 0x01

	_, _, _, err := ParseInformation(corrupt)
	assert.ErrorIs(t, err, ErrBCC1Mismatch)
}

func TestParseInformationTooShort(t *testing.T) {
	_, _, _, err := ParseInformation([]byte{0x7E, 0x7E})
	assert.Error(t, err)
}
