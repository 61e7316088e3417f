// Package transfer drives a linklayer.Session to carve a file into
// START/DATA/END packets and send them, or to reconstruct a file from
// the packets a peer sends. It is the external collaborator the link
// layer is built to carry and nothing more.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/rcom-lab/rcom/pkg/linklayer"
	"github.com/rcom-lab/rcom/pkg/packet"
)

// progressEvery controls how often Transmit/Receive log a progress line.
const progressEvery = 10

// Writer is the subset of Session used by Transmit: write(payload).
type Writer interface {
	Write(payload []byte) (int, error)
}

// Reader is the subset of Session used by Receive: read() -> payload.
type Reader interface {
	Read() ([]byte, error)
}

// Transmit sends the file at path over session as a START packet,
// followed by MaxDataSize-chunked DATA packets, followed by an END
// packet.
func Transmit(session Writer, path string, log *logrus.Logger) error {
	if log == nil {
		log = logrus.New()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("transfer: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("transfer: stat %s: %w", path, err)
	}
	fileSize := info.Size()
	baseName := filepath.Base(path)

	log.WithFields(logrus.Fields{"file": baseName, "size": fileSize}).Info("file to send")

	start := packet.BuildControl(packet.CtrlStart, baseName, fileSize)
	if _, err := session.Write(start); err != nil {
		return fmt.Errorf("transfer: send START: %w", err)
	}

	buf := make([]byte, packet.MaxDataSize)
	var seq byte
	var totalSent int64
	var packetCount int

	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			data := packet.BuildData(seq, buf[:n])
			if _, err := session.Write(data); err != nil {
				return fmt.Errorf("transfer: send data packet %d: %w", seq, err)
			}
			totalSent += int64(n)
			packetCount++
			seq++ // wraps at 256

			if packetCount%progressEvery == 0 || totalSent == fileSize {
				log.WithFields(logrus.Fields{
					"sent": totalSent, "total": fileSize,
				}).Info("progress")
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("transfer: read %s: %w", path, rerr)
		}
	}

	log.WithFields(logrus.Fields{"packets": packetCount, "bytes": totalSent}).Info("data transmission complete")

	end := packet.BuildControl(packet.CtrlEnd, baseName, fileSize)
	if _, err := session.Write(end); err != nil {
		return fmt.Errorf("transfer: send END: %w", err)
	}

	log.Info("file transfer successful")
	return nil
}

// Receive waits for a START packet, writes incoming DATA packets to
// path, and returns once the matching END packet arrives.
func Receive(session Reader, path string, log *logrus.Logger) error {
	if log == nil {
		log = logrus.New()
	}

	log.Info("waiting for START control packet")

	var expectedSize int64
	var name string
	for {
		payload, err := session.Read()
		if err != nil {
			if errors.Is(err, linklayer.ErrFrameError) || errors.Is(err, linklayer.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("transfer: read START: %w", err)
		}
		if len(payload) == 0 || payload[0] != packet.CtrlStart {
			continue
		}

		expectedSize, name, err = packet.ParseControl(payload)
		if err != nil {
			return fmt.Errorf("transfer: parse START: %w", err)
		}
		log.WithFields(logrus.Fields{"file": name, "size": expectedSize}).Info("START packet received")
		break
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("transfer: create %s: %w", path, err)
	}
	defer out.Close()

	log.Info("receiving data packets")

	var expectedSeq byte
	var totalReceived int64
	var packetCount int

	for {
		payload, err := session.Read()
		if err != nil {
			if errors.Is(err, linklayer.ErrFrameError) || errors.Is(err, linklayer.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("transfer: read: %w", err)
		}
		if len(payload) == 0 {
			continue
		}

		switch payload[0] {
		case packet.CtrlEnd:
			receivedSize, _, perr := packet.ParseControl(payload)
			if perr == nil && receivedSize != expectedSize {
				log.WithFields(logrus.Fields{"expected": expectedSize, "received": receivedSize}).Warn("file size mismatch")
			}
			if totalReceived != expectedSize {
				log.WithFields(logrus.Fields{"expected": expectedSize, "got": totalReceived}).Warn("data size mismatch")
			}
			log.WithFields(logrus.Fields{"packets": packetCount, "bytes": totalReceived}).Info("file reception complete")
			if totalReceived == expectedSize {
				log.Info("file transfer successful")
				return nil
			}
			return fmt.Errorf("transfer: size mismatch, expected %d got %d", expectedSize, totalReceived)

		case packet.CtrlData:
			seq, data, perr := packet.ParseData(payload)
			if perr != nil {
				log.WithError(perr).Warn("invalid data packet, skipping")
				continue
			}
			if seq != expectedSeq {
				log.WithFields(logrus.Fields{"expected": expectedSeq, "got": seq}).Warn("sequence mismatch")
			}
			expectedSeq = seq + 1 // wraps at 256

			if _, werr := out.Write(data); werr != nil {
				return fmt.Errorf("transfer: write %s: %w", path, werr)
			}
			totalReceived += int64(len(data))
			packetCount++

			if packetCount%progressEvery == 0 || totalReceived >= expectedSize {
				log.WithFields(logrus.Fields{"received": totalReceived, "total": expectedSize}).Info("progress")
			}

		default:
			log.WithField("control", payload[0]).Warn("unknown control field")
		}
	}
}
