// Package http2 implements the binary framing, HPACK-backed session layer,
// flow control, and per-request handles of HTTP/2 (RFC 7540).
package http2

import (
	"github.com/kadircet/gohttpcore/pkg/constants"
	"github.com/kadircet/gohttpcore/pkg/errors"
)

// FrameType tags the 10 RFC 7540 frame types; any other byte decodes to
// Invalid, carrying the raw type byte.
type FrameType int

const (
	FrameData FrameType = iota
	FrameHeaders
	FramePriority
	FrameRstStream
	FrameSettings
	FramePushPromise
	FramePing
	FrameGoaway
	FrameWindowUpdate
	FrameContinuation
	FrameInvalid
)

// Flag bits, RFC 7540 §6.
const (
	FlagEndStream  byte = 0x01 // also ACK on SETTINGS/PING
	FlagAck        byte = 0x01
	FlagEndHeaders byte = 0x04
	FlagPadded     byte = 0x08
	FlagPriority   byte = 0x20
)

// frameTypeFromByte maps a wire type byte to its FrameType, with any
// unrecognized byte carried as FrameInvalid via invalidByte.
func frameTypeFromByte(b byte) (FrameType, byte) {
	if b <= 9 {
		return FrameType(b), 0
	}
	return FrameInvalid, b
}

func (t FrameType) wireByte(invalidByte byte) byte {
	if t == FrameInvalid {
		return invalidByte
	}
	return byte(t)
}

// Frame is a parsed HTTP/2 frame: decoded header fields plus byte-range
// slices into the owned buffer for the optional priority block, the
// payload, and trailing padding.
type Frame struct {
	Source      []byte
	Length      uint32 // 24-bit on the wire
	Type        FrameType
	InvalidByte byte // wire type byte, valid only when Type == FrameInvalid
	Flags       byte
	StreamID    uint32 // 31-bit on the wire

	PadLen   byte
	Priority []byte // 5 bytes if PRIORITY flag set, else nil
	Payload  []byte
	Padding  []byte
}

// HasFlag reports whether all bits of flag are set.
func (f *Frame) HasFlag(flag byte) bool {
	return f.Flags&flag == flag
}

// ParseFrame decodes one frame from the front of buf. buf must contain
// exactly one frame's bytes (9-byte header + declared length). The 9-byte
// header layout is length(3 BE) + type(1) + flags(1) + R|stream_id(4 BE,
// top bit reserved and ignored), per RFC 7540 §4.1 exactly: bytes 0-2 are
// length, byte 3 is type, byte 4 is flags, bytes 5-8 are stream_id.
func ParseFrame(buf []byte) (*Frame, error) {
	if len(buf) < 9 {
		return nil, errors.NewInvalidFrameError("http2.ParseFrame", "frame shorter than 9-byte header")
	}

	length := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	typeByte := buf[3]
	flags := buf[4]
	streamID := (uint32(buf[5])<<24 | uint32(buf[6])<<16 | uint32(buf[7])<<8 | uint32(buf[8])) & 0x7fffffff

	if len(buf) < 9+int(length) {
		return nil, errors.NewInvalidFrameError("http2.ParseFrame", "frame shorter than declared length")
	}

	ftype, invalidByte := frameTypeFromByte(typeByte)

	f := &Frame{
		Source:      buf,
		Length:      length,
		Type:        ftype,
		InvalidByte: invalidByte,
		Flags:       flags,
		StreamID:    streamID,
	}

	pos := 9
	end := 9 + int(length)

	var padLen int
	if f.HasFlag(FlagPadded) {
		if pos >= end {
			return nil, errors.NewInvalidFrameError("http2.ParseFrame", "truncated pad length")
		}
		f.PadLen = buf[pos]
		padLen = int(f.PadLen)
		pos++
	}

	if f.HasFlag(FlagPriority) {
		if pos+5 > end {
			return nil, errors.NewInvalidFrameError("http2.ParseFrame", "truncated priority block")
		}
		f.Priority = buf[pos : pos+5]
		pos += 5
	}

	if pos+padLen > end {
		return nil, errors.NewInvalidFrameError("http2.ParseFrame", "padding exceeds frame length")
	}
	f.Payload = buf[pos : end-padLen]
	f.Padding = buf[end-padLen : end]

	return f, nil
}

// CreateFrame builds the wire bytes for a frame. priority, if non-nil, must
// be exactly 5 bytes; padding must be at most 256 bytes; total length must
// fit in 24 bits. If any of those constraints are violated the frame is
// degraded to length 0 with all optional fields dropped, rather than
// producing a malformed frame.
func CreateFrame(ftype FrameType, invalidByte byte, flags byte, streamID uint32, priority, payload, padding []byte) []byte {
	if priority != nil && len(priority) != 5 {
		priority, payload, padding = nil, nil, nil
	}
	if len(padding) > 256 {
		priority, payload, padding = nil, nil, nil
	}

	length := len(payload) + len(padding)
	if priority != nil {
		length += 5
	}
	if len(padding) > 0 {
		length += 1 // pad-length byte
	}

	if length > constants.MaxFrameLength {
		priority, payload, padding = nil, nil, nil
		length = 0
	}

	out := make([]byte, 0, 9+length)
	out = append(out,
		byte(length>>16), byte(length>>8), byte(length),
		ftype.wireByte(invalidByte),
	)

	wireFlags := flags
	if priority != nil {
		wireFlags |= FlagPriority
	}
	if len(padding) > 0 {
		wireFlags |= FlagPadded
	}
	out = append(out, wireFlags)

	out = append(out,
		byte(streamID>>24)&0x7f, byte(streamID>>16), byte(streamID>>8), byte(streamID),
	)

	if len(padding) > 0 {
		out = append(out, byte(len(padding)))
	}
	if priority != nil {
		out = append(out, priority...)
	}
	out = append(out, payload...)
	out = append(out, padding...)

	return out
}
