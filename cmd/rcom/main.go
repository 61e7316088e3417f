// Command rcom transfers a single file between two endpoints connected
// by a serial link, running the transmitter or receiver role named on
// the command line.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcom-lab/rcom/pkg/linklayer"
	"github.com/rcom-lab/rcom/pkg/serialport"
	"github.com/rcom-lab/rcom/pkg/transfer"
)

var (
	device   = flag.String("port", "/dev/ttyUSB0", "Serial device path")
	baudRate = flag.Int("baud", 115200, "Serial baud rate")
	role     = flag.String("role", "", "Link role: tx or rx")
	filePath = flag.String("file", "", "File to send (tx) or write to (rx)")
	retries  = flag.Int("retries", linklayer.DefaultRetransmissions, "Maximum retransmissions before giving up")
	timeout  = flag.Duration("timeout", linklayer.DefaultTimeout, "Per-attempt acknowledgment timeout")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var llRole linklayer.Role
	switch *role {
	case "tx":
		llRole = linklayer.RoleTransmitter
	case "rx":
		llRole = linklayer.RoleReceiver
	default:
		log.Fatalf("invalid -role %q: must be 'tx' or 'rx'", *role)
	}
	if *filePath == "" {
		log.Fatal("-file is required")
	}

	log.WithFields(logrus.Fields{
		"role": *role, "port": *device, "baud": *baudRate,
		"retries": *retries, "timeout": *timeout,
	}).Info("starting rcom")

	port, err := serialport.Open(serialport.Config{Device: *device, Baud: *baudRate})
	if err != nil {
		log.Fatalf("failed to open serial port: %v", err)
	}

	session, err := linklayer.Open(linklayer.Config{
		Port:               port,
		Role:               llRole,
		MaxRetransmissions: *retries,
		Timeout:            *timeout,
		CountREJAsRetry:    true,
		Logger:             log,
	})
	if err != nil {
		log.Fatalf("failed to establish connection: %v", err)
	}
	log.Info("connection established")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			log.Warn("interrupted, closing connection")
			_ = session.Close()
			os.Exit(1)
		case <-done:
		}
	}()

	var xferErr error
	if llRole == linklayer.RoleTransmitter {
		xferErr = transfer.Transmit(session, *filePath, log)
	} else {
		xferErr = transfer.Receive(session, *filePath, log)
	}
	close(done)

	log.Info("closing connection")
	if err := session.Close(); err != nil {
		log.Warnf("close did not complete cleanly: %v", err)
	}

	if xferErr != nil {
		log.Fatalf("transfer failed: %v", xferErr)
	}
	log.WithField("file", *filePath).Info("transfer succeeded")

	// Give the close handshake's final UA write a moment to flush before
	// process exit on platforms that buffer serial writes.
	time.Sleep(10 * time.Millisecond)
}
