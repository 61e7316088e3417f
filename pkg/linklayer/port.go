package linklayer

// Port is the byte-granular transport the session drives. ReadByte must
// not block indefinitely: it returns ok=false after a short internal
// timeout to let the caller re-check its own timer between reads,
// mirroring a serial port configured with a short read deadline.
type Port interface {
	ReadByte() (b byte, ok bool, err error)
	Write(p []byte) (int, error)
	Close() error
}
