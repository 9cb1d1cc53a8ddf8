package framing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestWriteReadFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "small object", body: `{"command":"getTabs"}`},
		{name: "single byte", body: `1`},
		{name: "unicode", body: `{"title":"こんにちは"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFrame(&buf, []byte(tt.body)); err != nil {
				t.Fatalf("WriteFrame() error = %v", err)
			}

			got, err := ReadFrame(&buf)
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if string(got) != tt.body {
				t.Errorf("ReadFrame() = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestWriteFrame_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("abc")); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	raw := buf.Bytes()
	if len(raw) != 7 {
		t.Fatalf("frame length = %d, want 7", len(raw))
	}
	if got := binary.LittleEndian.Uint32(raw[:4]); got != 3 {
		t.Errorf("header length = %d, want 3", got)
	}
	if string(raw[4:]) != "abc" {
		t.Errorf("body = %q, want %q", raw[4:], "abc")
	}
}

func TestReadFrame_RejectsOversizeBeforeBody(t *testing.T) {
	// Header advertises one byte past the cap; no body follows. If the
	// length check happened after the body read, this would surface as
	// an unexpected EOF instead of ErrFrameTooLarge.
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], MaxFrameSize+1)

	_, err := ReadFrame(bytes.NewReader(header[:]))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("ReadFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrame_RejectsZeroLength(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0, 0, 0, 0}))
	if !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("ReadFrame() error = %v, want ErrEmptyFrame", err)
	}
}

func TestReadFrame_CleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestReadFrame_TruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("full body here")); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-5]

	_, err := ReadFrame(bytes.NewReader(truncated))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadFrame() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestWriteFrame_RejectsOversizeBody(t *testing.T) {
	err := WriteFrame(io.Discard, make([]byte, MaxFrameSize+1))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("WriteFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadWriteJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, payload{Name: "tab", Count: 3}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var got payload
	if err := ReadJSON(&buf, &got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Name != "tab" || got.Count != 3 {
		t.Errorf("ReadJSON() = %+v, want {tab 3}", got)
	}
}
