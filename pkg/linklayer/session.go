package linklayer

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Role identifies which side of the handshake a session plays.
type Role int

const (
	RoleTransmitter Role = iota
	RoleReceiver
)

func (r Role) String() string {
	if r == RoleTransmitter {
		return "tx"
	}
	return "rx"
}

type state int

const (
	stateClosed state = iota
	stateOpen
	stateClosing
)

// Config is the link configuration supplied to Open. It is immutable
// once the session is constructed.
type Config struct {
	Port Port
	Role Role

	// MaxRetransmissions is N: the number of retries attempted after
	// the first try before giving up.
	MaxRetransmissions int
	// Timeout is the per-attempt wait T.
	Timeout time.Duration
	// MaxPayload bounds the payload length write() will accept.
	MaxPayload int

	// CountREJAsRetry, when true, counts a REJ-driven retransmission
	// toward the N-retry bound the same as a timeout, as the reference
	// implementation does. When false (the zero value, which
	// setDefaults leaves unchanged) REJ-driven retries are exempt from
	// the bound. cmd/rcom sets it true (see DESIGN.md Open Question
	// decision).
	CountREJAsRetry bool

	// Logger is used for protocol-event logging. A disabled logrus
	// logger is used if nil.
	Logger *logrus.Logger
}

func (c *Config) setDefaults() {
	if c.MaxRetransmissions <= 0 {
		c.MaxRetransmissions = DefaultRetransmissions
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxPayload <= 0 {
		c.MaxPayload = DefaultMaxPayload
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
		c.Logger.SetLevel(logrus.PanicLevel)
	}
}

// Session owns the serial port and the sequence-number/retry state for
// one open-to-close connection lifetime. It is not safe for concurrent
// use: the protocol is stop-and-wait, so at most one operation is ever
// outstanding on a session.
type Session struct {
	cfg   Config
	port  Port
	timer *timer
	log   *logrus.Entry

	st   state
	sSeq byte // next sequence bit this side will send
	rSeq byte // next sequence bit this side expects to receive
}

// Open performs the SET/UA handshake (transmitter) or waits for one
// (receiver) and returns a ready-to-use session.
func Open(cfg Config) (*Session, error) {
	cfg.setDefaults()
	s := &Session{
		cfg:   cfg,
		port:  cfg.Port,
		timer: newTimer(),
		log:   cfg.Logger.WithField("role", cfg.Role),
		st:    stateClosed,
	}

	if cfg.Role == RoleTransmitter {
		if err := s.openTransmitter(); err != nil {
			return nil, err
		}
	} else {
		if err := s.openReceiver(); err != nil {
			return nil, err
		}
	}

	s.st = stateOpen
	return s, nil
}

func (s *Session) openTransmitter() error {
	frame := BuildSupervisory(ATx, CSet)

	for attempt := 0; attempt <= s.cfg.MaxRetransmissions; attempt++ {
		s.log.WithField("attempt", attempt+1).Info("sending SET frame")
		if _, err := s.port.Write(frame); err != nil {
			return fmt.Errorf("%w: %v", ErrOpenFailed, err)
		}

		s.timer.arm(s.cfg.Timeout)
		c, timedOut, err := waitSupervisory(s.port, s.timer, ARx, func(c byte) bool { return c == CUA })
		s.timer.disarm()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOpenFailed, err)
		}
		if !timedOut && c == CUA {
			s.log.Info("connection established (UA received)")
			return nil
		}
		s.log.Warn("timeout waiting for UA")
	}

	_ = s.port.Close()
	return ErrOpenFailed
}

func (s *Session) openReceiver() error {
	s.log.Info("waiting for SET frame")
	_, _, err := waitSupervisory(s.port, nil, ATx, func(c byte) bool { return c == CSet })
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	ua := BuildSupervisory(ARx, CUA)
	if _, err := s.port.Write(ua); err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	s.log.Info("connection established (UA sent)")
	return nil
}

// Write sends payload as an I-frame, retrying on timeout or REJ, and
// returns len(payload) once the peer's RR for the next sequence is
// received. On exhausting retries it returns ErrWriteFailed.
func (s *Session) Write(payload []byte) (int, error) {
	if s.st != stateOpen {
		return 0, ErrNotOpen
	}
	if len(payload) == 0 || len(payload) > s.cfg.MaxPayload {
		return 0, ErrPayloadSize
	}

	ctrl := iCtrlFor(s.sSeq)
	frame := BuildInformation(ATx, ctrl, payload)
	nextRR := rrFor(flip(s.sSeq))
	curREJ := rejFor(s.sSeq)

	attempt := 0
	for attempt <= s.cfg.MaxRetransmissions {
		s.log.WithFields(logrus.Fields{"seq": s.sSeq, "attempt": attempt + 1}).Info("sending I-frame")
		if _, err := s.port.Write(frame); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}

		s.timer.arm(s.cfg.Timeout)
		c, timedOut, err := waitSupervisory(s.port, s.timer, ARx, func(c byte) bool {
			return c == nextRR || c == curREJ
		})
		s.timer.disarm()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}

		switch {
		case !timedOut && c == nextRR:
			s.log.WithField("seq", s.sSeq).Info("RR received, frame accepted")
			s.sSeq = flip(s.sSeq)
			return len(payload), nil
		case !timedOut && c == curREJ:
			s.log.WithField("seq", s.sSeq).Warn("REJ received, retransmitting")
			if s.cfg.CountREJAsRetry {
				attempt++
			}
		default:
			s.log.WithField("seq", s.sSeq).Warn("timeout, retransmitting")
			attempt++
		}
	}

	return 0, ErrWriteFailed
}

// Read blocks until a complete frame is captured, then validates and
// acknowledges it. A successful call returns the payload with its
// trailing BCC2 stripped off. ErrFrameError and ErrDuplicate are
// non-fatal: the caller should call Read again.
func (s *Session) Read() ([]byte, error) {
	if s.st != stateOpen {
		return nil, ErrNotOpen
	}

	raw, err := readRawFrame(s.port)
	if err != nil {
		return nil, err
	}

	a, c, payload, perr := ParseInformation(raw)
	if perr != nil {
		s.log.WithError(perr).Warn("frame rejected, sending REJ")
		s.sendSupervisory(rejFor(s.rSeq))
		return nil, fmt.Errorf("%w: %w", ErrFrameError, perr)
	}
	if a != ATx {
		// Frames not originated by the transmitter are ignored without
		// a response, to avoid ACK storms with a misbehaving peer.
		return nil, ErrFrameError
	}

	recvSeq := seqOf(c)
	if recvSeq != s.rSeq {
		s.log.WithFields(logrus.Fields{"received": recvSeq, "expected": s.rSeq}).Info("duplicate frame, re-sending RR")
		s.sendSupervisory(rrFor(s.rSeq))
		return nil, ErrDuplicate
	}

	s.sendSupervisory(rrFor(flip(s.rSeq)))
	s.log.WithField("seq", recvSeq).Info("frame accepted, RR sent")
	s.rSeq = flip(s.rSeq)
	return payload, nil
}

func (s *Session) sendSupervisory(c byte) {
	frame := BuildSupervisory(ARx, c)
	if _, err := s.port.Write(frame); err != nil {
		s.log.WithError(err).Warn("failed to send supervisory frame")
	}
}

// Close performs the DISC/DISC/UA teardown appropriate to the session's
// role and releases the port. It is safe to call once; a second call
// returns ErrNotOpen.
func (s *Session) Close() error {
	if s.st != stateOpen {
		return ErrNotOpen
	}
	s.st = stateClosing

	var err error
	if s.cfg.Role == RoleTransmitter {
		err = s.closeTransmitter()
	} else {
		err = s.closeReceiver()
	}

	s.st = stateClosed
	return err
}

func (s *Session) closeTransmitter() error {
	discFrame := BuildSupervisory(ATx, CDisc)

	for attempt := 0; attempt <= s.cfg.MaxRetransmissions; attempt++ {
		s.log.WithField("attempt", attempt+1).Info("sending DISC")
		if _, err := s.port.Write(discFrame); err != nil {
			_ = s.port.Close()
			return fmt.Errorf("%w: %v", ErrCloseWarning, err)
		}

		s.timer.arm(s.cfg.Timeout)
		c, timedOut, err := waitSupervisory(s.port, s.timer, ARx, func(c byte) bool { return c == CDisc })
		s.timer.disarm()
		if err != nil {
			_ = s.port.Close()
			return fmt.Errorf("%w: %v", ErrCloseWarning, err)
		}
		if !timedOut && c == CDisc {
			s.log.Info("DISC received from receiver")
			ua := BuildSupervisory(ARx, CUA)
			_, _ = s.port.Write(ua)
			time.Sleep(100 * time.Millisecond)
			return s.port.Close()
		}
		s.log.Warn("timeout waiting for DISC")
	}

	_ = s.port.Close()
	return ErrCloseWarning
}

func (s *Session) closeReceiver() error {
	s.log.Info("waiting for DISC from transmitter")
	_, _, err := waitSupervisory(s.port, nil, ATx, func(c byte) bool { return c == CDisc })
	if err != nil {
		_ = s.port.Close()
		return fmt.Errorf("%w: %v", ErrCloseWarning, err)
	}

	disc := BuildSupervisory(ARx, CDisc)
	if _, err := s.port.Write(disc); err != nil {
		_ = s.port.Close()
		return fmt.Errorf("%w: %v", ErrCloseWarning, err)
	}

	s.timer.arm(2 * s.cfg.Timeout)
	c, timedOut, err := waitSupervisory(s.port, s.timer, ARx, func(c byte) bool { return c == CUA })
	s.timer.disarm()
	if err != nil {
		_ = s.port.Close()
		return fmt.Errorf("%w: %v", ErrCloseWarning, err)
	}
	if timedOut || c != CUA {
		s.log.Warn("timeout waiting for final UA, closing anyway")
		_ = s.port.Close()
		return ErrCloseWarning
	}

	s.log.Info("UA received, connection closed")
	return s.port.Close()
}
