package transfer_test

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcom-lab/rcom/internal/looppipe"
	"github.com/rcom-lab/rcom/pkg/linklayer"
	"github.com/rcom-lab/rcom/pkg/transfer"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func openSessionPair(t *testing.T) (tx, rx *linklayer.Session) {
	t.Helper()
	a, b := looppipe.NewPair(20 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(2)
	var txErr, rxErr error
	go func() {
		defer wg.Done()
		tx, txErr = linklayer.Open(linklayer.Config{Port: a, Role: linklayer.RoleTransmitter, Logger: quietLogger()})
	}()
	go func() {
		defer wg.Done()
		rx, rxErr = linklayer.Open(linklayer.Config{Port: b, Role: linklayer.RoleReceiver, Logger: quietLogger()})
	}()
	wg.Wait()

	require.NoError(t, txErr)
	require.NoError(t, rxErr)
	return tx, rx
}

func TestTransmitReceiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "payload.bin")
	dstPath := filepath.Join(dir, "received.bin")

	content := make([]byte, 900) // spans multiple 256-byte DATA packets
	_, err := rand.Read(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(srcPath, content, 0o644))

	tx, rx := openSessionPair(t)

	var wg sync.WaitGroup
	wg.Add(2)
	var txErr, rxErr error
	go func() {
		defer wg.Done()
		txErr = transfer.Transmit(tx, srcPath, quietLogger())
	}()
	go func() {
		defer wg.Done()
		rxErr = transfer.Receive(rx, dstPath, quietLogger())
	}()
	wg.Wait()

	require.NoError(t, txErr)
	require.NoError(t, rxErr)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestTransmitReceiveEmptyFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "empty.bin")
	dstPath := filepath.Join(dir, "received.bin")
	require.NoError(t, os.WriteFile(srcPath, nil, 0o644))

	tx, rx := openSessionPair(t)

	var wg sync.WaitGroup
	wg.Add(2)
	var txErr, rxErr error
	go func() {
		defer wg.Done()
		txErr = transfer.Transmit(tx, srcPath, quietLogger())
	}()
	go func() {
		defer wg.Done()
		rxErr = transfer.Receive(rx, dstPath, quietLogger())
	}()
	wg.Wait()

	require.NoError(t, txErr)
	require.NoError(t, rxErr)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransmitMissingFile(t *testing.T) {
	tx, _ := openSessionPair(t)
	err := transfer.Transmit(tx, "/no/such/file", quietLogger())
	assert.Error(t, err)
}
