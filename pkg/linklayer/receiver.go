package linklayer

// The states of the supervisory-frame receiver state machine run by
// waitSupervisory: START, FLAG_RX, A_OK, C_OK and BCC_OK. Information
// frames do not pass through these states: readRawFrame captures the
// bytes between two flags and ParseInformation checks the header, the
// stuffing and BCC2 afterwards.
type rxState int

const (
	rxStart rxState = iota
	rxFlagRx
	rxAOk
	rxCOk
	rxBccOk
)

// waitSupervisory scans bytes from port until a supervisory frame whose
// address matches expectedA and whose control byte satisfies accept is
// accepted, the armed timer fires, or a read error occurs. It is used
// identically for SET, UA, DISC, RR and REJ waits; only expectedA and
// accept vary per call site.
func waitSupervisory(port Port, tm *timer, expectedA byte, accept func(c byte) bool) (c byte, timedOut bool, err error) {
	state := rxStart
	var pendingC byte

	for {
		if tm != nil && tm.hasFired() {
			return 0, true, nil
		}

		b, ok, rerr := port.ReadByte()
		if rerr != nil {
			return 0, false, rerr
		}
		if !ok {
			continue
		}

		switch state {
		case rxStart:
			if b == Flag {
				state = rxFlagRx
			}
		case rxFlagRx:
			switch {
			case b == expectedA:
				state = rxAOk
			case b == Flag:
				// stay in FLAG_RX
			default:
				state = rxStart
			}
		case rxAOk:
			switch {
			case b == Flag:
				state = rxFlagRx
			case accept(b):
				pendingC = b
				state = rxCOk
			default:
				state = rxStart
			}
		case rxCOk:
			switch {
			case b == BCC1(expectedA, pendingC):
				state = rxBccOk
			case b == Flag:
				state = rxFlagRx
			default:
				state = rxStart
			}
		case rxBccOk:
			if b == Flag {
				return pendingC, false, nil
			}
			state = rxStart
		}
	}
}

// readRawFrame reads bytes until a complete flag-delimited sequence is
// captured: a flag seen while not already inside a frame starts a new
// one; a flag seen while inside one ends it. Bytes before the first flag
// are discarded. Each call starts outside a frame, so a single flag
// shared by two frames is not reused: it closes the first frame, and the
// second frame's bytes up to its own closing flag are discarded. Two
// consecutive flags are returned as a two-byte frame.
func readRawFrame(port Port) ([]byte, error) {
	var buf []byte
	inFrame := false

	for {
		b, ok, err := port.ReadByte()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if b == Flag {
			if !inFrame {
				inFrame = true
				buf = buf[:0]
				buf = append(buf, b)
			} else {
				buf = append(buf, b)
				return buf, nil
			}
			continue
		}

		if inFrame {
			buf = append(buf, b)
		}
	}
}
