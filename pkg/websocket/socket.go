package websocket

import (
	"sync"

	"github.com/kadircet/gohttpcore/pkg/constants"
	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

// Socket is a WebSocket connection: a read half and a write half, each
// guarded by its own mutex so reads and writes (and concurrent writers) don't
// interleave, mirroring the teacher's "separate mutex per direction" idiom
// used throughout pkg/http2.
type Socket struct {
	readMu  sync.Mutex
	writeMu sync.Mutex
	conn    stream.Stream
}

// New wraps conn as a WebSocket socket. Caller must have already completed
// the HTTP/1 upgrade handshake.
func New(conn stream.Stream) *Socket {
	return &Socket{conn: conn}
}

func (s *Socket) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := s.conn.ReadSome(buf[read:])
		if err != nil {
			return nil, errors.NewIoError("websocket.Socket.readExact", "reading from stream", err)
		}
		read += m
	}
	return buf, nil
}

// ReadFrame blocks for exactly one incoming frame.
func (s *Socket) ReadFrame() (*Frame, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	header, err := s.readExact(2)
	if err != nil {
		return nil, err
	}
	length := header[1] & 0x7f

	extra := 0
	switch length {
	case 126:
		extra = 2
	case 127:
		extra = 8
	}
	masked := header[1]&0x80 != 0
	if masked {
		extra += 4
	}

	rest, err := s.readExact(extra)
	if err != nil {
		return nil, err
	}
	buf := append(header, rest...)

	payloadLen := int(length)
	if length > 125 {
		if length == 126 {
			payloadLen = int(buf[2])<<8 | int(buf[3])
		} else {
			payloadLen = 0
			for i := 0; i < 8; i++ {
				payloadLen = payloadLen<<8 | int(buf[2+i])
			}
		}
	}
	payload, err := s.readExact(payloadLen)
	if err != nil {
		return nil, err
	}
	buf = append(buf, payload...)

	return ParseFrame(buf)
}

// SendFrameRaw builds and writes one frame.
func (s *Socket) SendFrameRaw(fin bool, rsv byte, opcode byte, mask []byte, payload []byte) error {
	buf := CreateFrame(fin, rsv, opcode, mask, payload)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteAll(buf); err != nil {
		return errors.NewIoError("websocket.Socket.SendFrameRaw", "writing frame", err)
	}
	return nil
}

// SendText sends an unmasked, unfragmented text frame (opcode Text=1).
func (s *Socket) SendText(text []byte) error {
	return s.SendFrameRaw(true, 0, byte(OpcodeText), nil, text)
}

// SendTextMasked sends a masked, unfragmented text frame.
func (s *Socket) SendTextMasked(mask, text []byte) error {
	return s.SendFrameRaw(true, 0, byte(OpcodeText), mask, text)
}

// SendBinary sends an unmasked, unfragmented binary frame (opcode Binary=2).
func (s *Socket) SendBinary(bin []byte) error {
	return s.SendFrameRaw(true, 0, byte(OpcodeBinary), nil, bin)
}

// SendBinaryMasked sends a masked, unfragmented binary frame.
func (s *Socket) SendBinaryMasked(mask, bin []byte) error {
	return s.SendFrameRaw(true, 0, byte(OpcodeBinary), mask, bin)
}

// SendClose sends a close frame: code (big-endian u16) ++ reason. reason
// must be at most constants.MaxCloseReasonLength bytes.
func (s *Socket) SendClose(code uint16, reason []byte) error {
	if len(reason) > constants.MaxCloseReasonLength {
		return errors.NewInvalidError("websocket.Socket.SendClose", "close reason too long")
	}
	payload := make([]byte, 2, 2+len(reason))
	payload[0], payload[1] = byte(code>>8), byte(code)
	payload = append(payload, reason...)
	return s.SendFrameRaw(true, 0, byte(OpcodeConnectionClose), nil, payload)
}

// SendCloseMasked is SendClose with a client-supplied mask.
func (s *Socket) SendCloseMasked(mask []byte, code uint16, reason []byte) error {
	if len(reason) > constants.MaxCloseReasonLength {
		return errors.NewInvalidError("websocket.Socket.SendCloseMasked", "close reason too long")
	}
	payload := make([]byte, 2, 2+len(reason))
	payload[0], payload[1] = byte(code>>8), byte(code)
	payload = append(payload, reason...)
	return s.SendFrameRaw(true, 0, byte(OpcodeConnectionClose), mask, payload)
}

// SendPing sends an unmasked ping with payload <= 125 bytes.
func (s *Socket) SendPing(payload []byte) error {
	if len(payload) > constants.MaxControlFramePayload {
		return errors.NewInvalidError("websocket.Socket.SendPing", "ping payload too long")
	}
	return s.SendFrameRaw(true, 0, byte(OpcodePing), nil, payload)
}

// SendPong sends an unmasked pong with payload <= 125 bytes.
func (s *Socket) SendPong(payload []byte) error {
	if len(payload) > constants.MaxControlFramePayload {
		return errors.NewInvalidError("websocket.Socket.SendPong", "pong payload too long")
	}
	return s.SendFrameRaw(true, 0, byte(OpcodePong), nil, payload)
}
