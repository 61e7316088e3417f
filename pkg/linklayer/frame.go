package linklayer

import "fmt"

// BuildSupervisory builds a 5-byte supervisory/unnumbered frame
// (SET, UA, DISC, RR, REJ): 7E A C A^C 7E.
func BuildSupervisory(a, c byte) []byte {
	return []byte{Flag, a, c, BCC1(a, c), Flag}
}

// BuildInformation builds a variable-length I-frame carrying payload:
// 7E A C A^C stuff(payload||BCC2) 7E. BCC2 is computed over the raw,
// unstuffed payload and then stuffed along with it.
func BuildInformation(a, c byte, payload []byte) []byte {
	withBCC2 := make([]byte, len(payload)+1)
	copy(withBCC2, payload)
	withBCC2[len(payload)] = BCC2(payload)

	stuffed := Stuff(withBCC2)

	frame := make([]byte, 0, 4+len(stuffed)+1)
	frame = append(frame, Flag, a, c, BCC1(a, c))
	frame = append(frame, stuffed...)
	frame = append(frame, Flag)
	return frame
}

// ParseInformation validates a raw (flag-delimited, not yet destuffed)
// I-frame and returns its address, control byte, and unstuffed payload
// with BCC2 stripped off.
func ParseInformation(raw []byte) (a, c byte, payload []byte, err error) {
	if len(raw) < 5 || raw[0] != Flag || raw[len(raw)-1] != Flag {
		return 0, 0, nil, fmt.Errorf("linklayer: malformed frame (len=%d)", len(raw))
	}
	a, c = raw[1], raw[2]
	bcc1 := raw[3]
	if BCC1(a, c) != bcc1 {
		return 0, 0, nil, ErrBCC1Mismatch
	}

	destuffed, err := Destuff(raw[4 : len(raw)-1])
	if err != nil {
		return 0, 0, nil, err
	}
	if len(destuffed) < 1 {
		return 0, 0, nil, fmt.Errorf("linklayer: empty information field")
	}

	payload = destuffed[:len(destuffed)-1]
	bcc2 := destuffed[len(destuffed)-1]
	if BCC2(payload) != bcc2 {
		return 0, 0, nil, ErrBCC2Mismatch
	}
	return a, c, payload, nil
}
