package linklayer

import "errors"

// Sentinel errors returned by Session operations; callers distinguish
// them with errors.Is.
var (
	// ErrOpenFailed is returned when open exhausts its retries without
	// completing the SET/UA handshake.
	ErrOpenFailed = errors.New("linklayer: open failed, connection not established")

	// ErrWriteFailed is returned when write exhausts its retries without
	// receiving an RR for the transmitted frame.
	ErrWriteFailed = errors.New("linklayer: write failed, no acknowledgment received")

	// ErrFrameError is a non-fatal result of read: the frame was
	// malformed or failed a checksum. The caller should retry.
	ErrFrameError = errors.New("linklayer: frame error")

	// ErrDuplicate is a non-fatal result of read: a retransmitted frame
	// was recognized as already delivered and was not handed up again.
	ErrDuplicate = errors.New("linklayer: duplicate frame suppressed")

	// ErrCloseWarning is returned by Close when the teardown handshake
	// did not complete cleanly, even though the port was still closed.
	ErrCloseWarning = errors.New("linklayer: close did not complete cleanly")

	// ErrBCC1Mismatch and ErrBCC2Mismatch identify which check failed;
	// they are wrapped into ErrFrameError by Read.
	ErrBCC1Mismatch = errors.New("linklayer: BCC1 mismatch")
	ErrBCC2Mismatch = errors.New("linklayer: BCC2 mismatch")

	// ErrNotOpen is returned when Write/Read/Close is called outside
	// the Open state.
	ErrNotOpen = errors.New("linklayer: session is not open")

	// ErrPayloadSize is returned when Write is called with an empty or
	// oversized payload.
	ErrPayloadSize = errors.New("linklayer: payload length out of bounds")
)
