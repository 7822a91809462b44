package wire

import (
	"encoding/binary"
	"io"
)

// ReadTCPFrame reads one length-prefixed DNS message from a TCP stream:
// two bytes of big-endian length, then that many bytes of message body.
// A clean close before any bytes are read returns io.EOF; a close mid-
// frame returns io.ErrUnexpectedEOF (via io.ReadFull).
func ReadTCPFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(lenBuf[:])
	frame := make([]byte, length)
	if _, err := io.ReadFull(r, frame); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return frame, nil
}

// WriteTCPFrame writes payload to w prefixed by its 2-byte big-endian
// length. It returns ErrMessageTooLarge if payload exceeds 65535 bytes,
// in which case the caller should write a SERVFAIL frame of the same
// query ID instead.
func WriteTCPFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxMessageSize {
		return ErrMessageTooLarge
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
