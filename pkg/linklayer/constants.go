// Package linklayer implements the HDLC-derived stop-and-wait data link
// protocol that carries a byte payload reliably over a point-to-point
// serial connection: byte stuffing, BCC checks, SET/UA/DISC handshakes
// and RR/REJ acknowledgment of I-frames.
package linklayer

import "time"

// Frame delimiter and escape bytes used by the byte-stuffing codec.
const (
	Flag byte = 0x7E
	Esc  byte = 0x7D

	escFlag byte = 0x5E // stuffed form of Flag, following Esc
	escEsc  byte = 0x5D // stuffed form of Esc, following Esc
)

// Address byte: set by the originator of a frame, not by direction.
const (
	ATx byte = 0x03 // frames originated by the transmitter
	ARx byte = 0x01 // frames originated by the receiver
)

// Control byte encoding (see spec wire format table).
const (
	CSet  byte = 0x03
	CUA   byte = 0x07
	CDisc byte = 0x0B
	CRR0  byte = 0x05
	CRR1  byte = 0x85
	CREJ0 byte = 0x01
	CREJ1 byte = 0x81
	CI0   byte = 0x00
	CI1   byte = 0x40
)

// Default link parameters.
const (
	DefaultMaxPayload      = 260
	DefaultRetransmissions = 3
	DefaultTimeout         = 3 * time.Second
)

// rrFor returns the RR control byte that names seq as the next expected
// sequence number.
func rrFor(seq byte) byte {
	if seq == 0 {
		return CRR0
	}
	return CRR1
}

// rejFor returns the REJ control byte that re-requests seq.
func rejFor(seq byte) byte {
	if seq == 0 {
		return CREJ0
	}
	return CREJ1
}

// iCtrlFor returns the I-frame control byte carrying sequence bit seq.
func iCtrlFor(seq byte) byte {
	if seq == 0 {
		return CI0
	}
	return CI1
}

// seqOf extracts the sequence bit (control byte bit 6) from an I-frame
// control byte.
func seqOf(c byte) byte {
	if c&0x40 != 0 {
		return 1
	}
	return 0
}

func flip(seq byte) byte {
	return seq ^ 1
}
