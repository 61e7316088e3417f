package linklayer

import "fmt"

// Stuff applies HDLC-style byte stuffing to data: every Flag becomes
// Esc,0x5E and every Esc becomes Esc,0x5D. It is applied to the payload
// and trailing BCC2 only, never to the flag or the A/C/BCC1 header.
func Stuff(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case Flag:
			out = append(out, Esc, escFlag)
		case Esc:
			out = append(out, Esc, escEsc)
		default:
			out = append(out, b)
		}
	}
	return out
}

// Destuff reverses Stuff. An escape byte with no following byte, or
// followed by anything other than 0x5E/0x5D, is malformed.
func Destuff(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != Esc {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(data) {
			return nil, fmt.Errorf("linklayer: escape byte at end of stuffed region")
		}
		switch data[i] {
		case escFlag:
			out = append(out, Flag)
		case escEsc:
			out = append(out, Esc)
		default:
			return nil, fmt.Errorf("linklayer: invalid escape sequence 0x%02x", data[i])
		}
	}
	return out, nil
}

// BCC1 is the header check: A XOR C.
func BCC1(a, c byte) byte {
	return a ^ c
}

// BCC2 is the XOR-reduction of the raw (unstuffed) payload bytes.
func BCC2(payload []byte) byte {
	var x byte
	for _, b := range payload {
		x ^= b
	}
	return x
}
