// Package framing implements the length-prefixed message envelope
// shared by the pipe transport and the browser's native-messaging stdio
// protocol: a 4-byte little-endian length followed by that many bytes
// of UTF-8 JSON.
//
// Framing errors are fatal to the connection they occur on. A corrupted
// stream cannot be realigned without a sentinel, so the transport must
// close and let the higher layer reconnect.
package framing

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest allowed frame body, matching Chrome's
// native-messaging 1 MiB ceiling.
const MaxFrameSize = 1 << 20

var (
	// ErrFrameTooLarge is returned when a frame advertises a body
	// larger than MaxFrameSize. The body is never read.
	ErrFrameTooLarge = errors.New("framing: frame exceeds maximum size")

	// ErrEmptyFrame is returned when a frame advertises a zero-length
	// body.
	ErrEmptyFrame = errors.New("framing: zero-length frame")
)

// WriteFrame writes body prefixed with its 4-byte little-endian length.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and returns its body.
//
// A clean end of stream before the first header byte is reported as
// io.EOF so callers can distinguish an orderly close from a truncated
// frame (io.ErrUnexpectedEOF). Length violations are reported before
// any body byte is consumed.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	length := binary.LittleEndian.Uint32(header[:])
	if length == 0 {
		return nil, ErrEmptyFrame
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// WriteJSON marshals v and writes it as a single frame.
func WriteJSON(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame body: %w", err)
	}
	return WriteFrame(w, body)
}

// ReadJSON reads one frame and unmarshals its body into v.
func ReadJSON(r io.Reader, v any) error {
	body, err := ReadFrame(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unmarshal frame body: %w", err)
	}
	return nil
}
