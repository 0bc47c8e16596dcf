package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire format: [2 bytes LE: total length including header][opcode][body].
// The receive path reads whatever the socket delivers and extracts complete
// frames from an accumulating buffer; a partial trailing fragment stays in
// the buffer for the next read.

const (
	frameHeaderLen = 2
	maxFrameLen    = 65533
)

// ExtractFrame pulls the first complete frame out of buf.
// Returns the frame payload (opcode + body, header stripped), the unconsumed
// remainder, and whether a complete frame was present. A malformed length
// yields an error; the caller should drop the connection.
func ExtractFrame(buf []byte) (frame, rest []byte, ok bool, err error) {
	if len(buf) < frameHeaderLen {
		return nil, buf, false, nil
	}
	totalLen := int(binary.LittleEndian.Uint16(buf))
	payloadLen := totalLen - frameHeaderLen
	if payloadLen <= 0 || payloadLen > maxFrameLen {
		return nil, buf, false, fmt.Errorf("invalid frame length: %d", totalLen)
	}
	if len(buf) < totalLen {
		return nil, buf, false, nil
	}
	frame = make([]byte, payloadLen)
	copy(frame, buf[frameHeaderLen:totalLen])
	return frame, buf[totalLen:], true, nil
}

// WriteFrame writes one framed message to w.
func WriteFrame(w io.Writer, data []byte) error {
	totalLen := len(data) + frameHeaderLen
	if totalLen > maxFrameLen+frameHeaderLen {
		return fmt.Errorf("frame too large: %d", totalLen)
	}
	var header [frameHeaderLen]byte
	binary.LittleEndian.PutUint16(header[:], uint16(totalLen))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}
