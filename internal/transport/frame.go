// Package transport frames arbitrary-length messages over a stream socket.
// Each message is a 4-byte big-endian length prefix followed by the body.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single framed message. A prefix larger than this is
// treated as a corrupt stream rather than an allocation request.
const MaxFrameSize = 1 << 20

var (
	// ErrClosed reports that the peer closed the connection.
	ErrClosed = errors.New("connection closed by peer")

	// ErrCorruptFrame reports a length prefix that cannot be honored.
	ErrCorruptFrame = errors.New("corrupt frame")
)

// Send writes one framed message to w.
func Send(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: message of %d bytes exceeds limit", ErrCorruptFrame, len(data))
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(data)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Receive reads one framed message from r. It returns ErrClosed when the
// peer has disconnected and ErrCorruptFrame when the prefix is zero or
// exceeds MaxFrameSize.
func Receive(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrClosed
		}
		return nil, err
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size == 0 || size > MaxFrameSize {
		return nil, fmt.Errorf("%w: declared size %d", ErrCorruptFrame, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return data, nil
}
