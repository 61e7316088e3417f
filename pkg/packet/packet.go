// Package packet builds and parses the application-layer START/DATA/END
// packets carried as payload over the link layer: a control byte
// followed by TLV fields for control packets, or a fixed four-byte
// header for data packets.
package packet

import "fmt"

// Control field values.
const (
	CtrlData  byte = 0x01
	CtrlStart byte = 0x02
	CtrlEnd   byte = 0x03
)

// TLV types carried by START/END control packets.
const (
	TLVFileSize byte = 0x00
	TLVFileName byte = 0x01
)

// MaxDataSize is the largest data chunk a single DATA packet carries.
const MaxDataSize = 256

// BuildControl builds a START or END control packet: the control byte,
// a FILE_SIZE TLV (big-endian, as many bytes as fileSize needs), and a
// FILE_NAME TLV.
func BuildControl(ctrl byte, filename string, fileSize int64) []byte {
	packet := make([]byte, 0, 4+8+2+len(filename))
	packet = append(packet, ctrl)

	sizeBytes := minimalBigEndian(fileSize)
	packet = append(packet, TLVFileSize, byte(len(sizeBytes)))
	packet = append(packet, sizeBytes...)

	name := filename
	if len(name) > 255 {
		name = name[:255]
	}
	packet = append(packet, TLVFileName, byte(len(name)))
	packet = append(packet, name...)

	return packet
}

// minimalBigEndian encodes v in the fewest big-endian bytes needed (at
// least one byte, even for v == 0).
func minimalBigEndian(v int64) []byte {
	var rev []byte
	for {
		rev = append(rev, byte(v&0xFF))
		v >>= 8
		if v == 0 {
			break
		}
	}
	out := make([]byte, len(rev))
	for i, b := range rev {
		out[len(rev)-1-i] = b
	}
	return out
}

// ParseControl extracts the FILE_SIZE and FILE_NAME TLVs from a START or
// END control packet. Unknown TLV types are skipped.
func ParseControl(packet []byte) (fileSize int64, filename string, err error) {
	if len(packet) < 1 {
		return 0, "", fmt.Errorf("packet: empty control packet")
	}

	idx := 1 // skip control field
	for idx < len(packet) {
		if idx+2 > len(packet) {
			return 0, "", fmt.Errorf("packet: truncated TLV header")
		}
		typ := packet[idx]
		length := int(packet[idx+1])
		idx += 2

		if idx+length > len(packet) {
			return 0, "", fmt.Errorf("packet: malformed control packet")
		}

		switch typ {
		case TLVFileSize:
			var v int64
			for _, b := range packet[idx : idx+length] {
				v = (v << 8) | int64(b)
			}
			fileSize = v
		case TLVFileName:
			filename = string(packet[idx : idx+length])
		}
		idx += length
	}

	return fileSize, filename, nil
}

// BuildData builds a DATA packet: CTRL_DATA, a one-byte sequence number
// (modulo 256), a two-byte big-endian length, and the data itself.
func BuildData(seq byte, data []byte) []byte {
	packet := make([]byte, 0, 4+len(data))
	packet = append(packet, CtrlData, seq)
	packet = append(packet, byte(len(data)>>8), byte(len(data)&0xFF))
	packet = append(packet, data...)
	return packet
}

// ParseData extracts the sequence number and data from a DATA packet.
func ParseData(packet []byte) (seq byte, data []byte, err error) {
	if len(packet) < 4 {
		return 0, nil, fmt.Errorf("packet: data packet too short")
	}
	seq = packet[1]
	length := int(packet[2])<<8 | int(packet[3])
	if 4+length > len(packet) {
		return 0, nil, fmt.Errorf("packet: invalid data length %d", length)
	}
	return seq, packet[4 : 4+length], nil
}
