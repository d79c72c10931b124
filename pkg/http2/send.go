package http2

import (
	"github.com/kadircet/gohttpcore/pkg/constants"
	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/hpack"
)

// sendFrame serializes and writes one frame under the write mutex.
func (s *Session) sendFrame(ftype FrameType, invalidByte byte, flags byte, streamID uint32, priority, payload, padding []byte) error {
	buf := CreateFrame(ftype, invalidByte, flags, streamID, priority, payload, padding)

	s.writeMu.Lock()
	err := s.conn.WriteAll(buf)
	s.writeMu.Unlock()
	if err != nil {
		return errors.NewIoError("http2.Session.sendFrame", "writing frame", err)
	}

	s.Stats.mu.Lock()
	s.Stats.FramesSent++
	s.Stats.BytesSent += len(buf)
	s.Stats.mu.Unlock()
	return nil
}

// SendSettingsAck sends an empty SETTINGS frame with the ACK flag set.
func (s *Session) SendSettingsAck() error {
	return s.sendFrame(FrameSettings, 0, FlagAck, 0, nil, nil, nil)
}

// SendSettings advertises this side's settings, drawn from opts.
func (s *Session) SendSettings() error {
	local := Settings{
		HeaderTableSize:      u32p(s.opts.HeaderTableSize),
		MaxConcurrentStreams: u32p(s.opts.MaxConcurrentStreams),
		InitialWindowSize:    u32p(s.opts.InitialWindowSize),
		MaxFrameSize:         u32p(s.opts.MaxFrameSize),
		MaxHeaderListSize:    u32p(s.opts.MaxHeaderListSize),
	}
	if s.opts.DisableServerPush {
		local.EnablePush = u32p(0)
	} else {
		local.EnablePush = u32p(1)
	}
	return s.sendFrame(FrameSettings, 0, 0, 0, nil, local.Encode(), nil)
}

// SendPriority sends a PRIORITY frame; exclusive/dependency/weight are
// packed into the standard 5-byte priority block.
func (s *Session) SendPriority(streamID uint32, exclusive bool, dependsOn uint32, weight byte) error {
	p := make([]byte, 5)
	dep := dependsOn & 0x7fffffff
	if exclusive {
		dep |= 0x80000000
	}
	p[0], p[1], p[2], p[3] = byte(dep>>24), byte(dep>>16), byte(dep>>8), byte(dep)
	p[4] = weight
	return s.sendFrame(FramePriority, 0, 0, streamID, p, nil, nil)
}

// SendRstStream sends RST_STREAM with the given error code as payload and
// marks the local stream state reset.
func (s *Session) SendRstStream(streamID uint32, errorCode uint32) error {
	payload := []byte{byte(errorCode >> 24), byte(errorCode >> 16), byte(errorCode >> 8), byte(errorCode)}
	if err := s.sendFrame(FrameRstStream, 0, 0, streamID, nil, payload, nil); err != nil {
		return err
	}
	if sd, ok := s.getStream(streamID); ok {
		sd.mu.Lock()
		sd.Reset = true
		sd.mu.Unlock()
	}
	return nil
}

// SendPing sends an unacknowledged PING with an 8-byte payload.
func (s *Session) SendPing(payload []byte) error {
	if len(payload) != 8 {
		return errors.NewInvalidError("http2.Session.SendPing", "PING payload must be 8 bytes")
	}
	return s.sendFrame(FramePing, 0, 0, 0, nil, payload, nil)
}

// SendGoaway sends GOAWAY, reporting the last stream id this side will
// process.
func (s *Session) SendGoaway(lastStreamID uint32, errorCode uint32, debugData []byte) error {
	payload := make([]byte, 8, 8+len(debugData))
	payload[0], payload[1], payload[2], payload[3] = byte(lastStreamID>>24)&0x7f, byte(lastStreamID>>16), byte(lastStreamID>>8), byte(lastStreamID)
	payload[4], payload[5], payload[6], payload[7] = byte(errorCode>>24), byte(errorCode>>16), byte(errorCode>>8), byte(errorCode)
	payload = append(payload, debugData...)
	return s.sendFrame(FrameGoaway, 0, 0, 0, nil, payload, nil)
}

// SendWindowUpdate sends a WINDOW_UPDATE for the connection (streamID == 0)
// or a specific stream.
func (s *Session) SendWindowUpdate(streamID uint32, increment uint32) error {
	if increment == 0 || increment > constants.MaxWindowSize {
		return errors.NewInvalidError("http2.Session.SendWindowUpdate", "increment out of range")
	}
	payload := []byte{byte(increment >> 24 & 0x7f), byte(increment >> 16), byte(increment >> 8), byte(increment)}
	return s.sendFrame(FrameWindowUpdate, 0, 0, streamID, nil, payload, nil)
}

// SendHeaders encodes headers via HPACK and emits a HEADERS frame followed
// by as many CONTINUATION frames as needed to stay under MaxFrameSize, per
// RFC 7540 §6.2/§6.10.
func (s *Session) SendHeaders(streamID uint32, headers []hpack.HeaderField, endStream bool) error {
	sd := s.registerStream(streamID)

	var block []byte
	s.encMu.Lock()
	for _, h := range headers {
		var err error
		block, err = s.encoder.Encode(block, h.Type, h.Name, h.Value, nil)
		if err != nil {
			s.encMu.Unlock()
			return err
		}
	}
	s.encMu.Unlock()

	s.HPACKStats.mu.Lock()
	s.HPACKStats.CompressedSize += len(block)
	s.HPACKStats.mu.Unlock()

	maxFrame := int(s.settings.EffectiveMaxFrameSize())
	if maxFrame <= 0 {
		maxFrame = 16384
	}

	headStreamFlag := byte(0)
	if endStream {
		headStreamFlag = FlagEndStream
	}

	first := block
	rest := []byte(nil)
	if len(first) > maxFrame {
		rest = first[maxFrame:]
		first = first[:maxFrame]
	}

	flags := headStreamFlag
	if rest == nil {
		flags |= FlagEndHeaders
	}
	if err := s.sendFrame(FrameHeaders, 0, flags, streamID, nil, first, nil); err != nil {
		return err
	}

	for rest != nil {
		chunk := rest
		var more []byte
		if len(chunk) > maxFrame {
			more = chunk[maxFrame:]
			chunk = chunk[:maxFrame]
		}
		cflags := byte(0)
		if more == nil {
			cflags = FlagEndHeaders
		}
		if err := s.sendFrame(FrameContinuation, 0, cflags, streamID, nil, chunk, nil); err != nil {
			return err
		}
		rest = more
	}

	sd.mu.Lock()
	sd.SelfEndHead = true
	if endStream {
		sd.SelfEndBody = true
	}
	sd.mu.Unlock()
	return nil
}

// SendPushPromise encodes and sends a PUSH_PROMISE for promisedID on
// originStreamID, then registers the promised stream.
func (s *Session) SendPushPromise(originStreamID, promisedID uint32, headers []hpack.HeaderField) error {
	var block []byte
	s.encMu.Lock()
	for _, h := range headers {
		var err error
		block, err = s.encoder.Encode(block, h.Type, h.Name, h.Value, nil)
		if err != nil {
			s.encMu.Unlock()
			return err
		}
	}
	s.encMu.Unlock()

	payload := make([]byte, 4, 4+len(block))
	payload[0], payload[1], payload[2], payload[3] = byte(promisedID>>24)&0x7f, byte(promisedID>>16), byte(promisedID>>8), byte(promisedID)
	payload = append(payload, block...)

	maxFrame := int(s.settings.EffectiveMaxFrameSize())
	if maxFrame <= 0 {
		maxFrame = 16384
	}

	first := payload
	var rest []byte
	if len(first) > maxFrame {
		rest = first[maxFrame:]
		first = first[:maxFrame]
	}
	flags := byte(0)
	if rest == nil {
		flags = FlagEndHeaders
	}
	if err := s.sendFrame(FramePushPromise, 0, flags, originStreamID, nil, first, nil); err != nil {
		return err
	}
	for rest != nil {
		chunk := rest
		var more []byte
		if len(chunk) > maxFrame {
			more = chunk[maxFrame:]
			chunk = chunk[:maxFrame]
		}
		cflags := byte(0)
		if more == nil {
			cflags = FlagEndHeaders
		}
		if err := s.sendFrame(FrameContinuation, 0, cflags, originStreamID, nil, chunk, nil); err != nil {
			return err
		}
		rest = more
	}

	promised := s.registerStream(promisedID)
	promised.mu.Lock()
	promised.Associated = originStreamID
	promised.mu.Unlock()

	origin := s.registerStream(originStreamID)
	origin.mu.Lock()
	origin.Promising = promisedID
	origin.mu.Unlock()
	return nil
}

// SendData writes body bytes as a sequence of DATA frames, respecting both
// the connection and stream flow-control windows. It blocks (via the
// session's Notifiers) until enough window is available, so it must not be
// called while holding readMu/writeMu from the caller's side.
func (s *Session) SendData(streamID uint32, data []byte, endStream bool) error {
	sd := s.registerStream(streamID)

	sd.mu.Lock()
	blocked := sd.SelfEndBody || sd.Reset
	sd.mu.Unlock()
	if blocked {
		return errors.NewStreamClosedError("http2.Session.SendData", "stream already ended or reset")
	}

	if len(data) == 0 {
		if endStream {
			if err := s.sendFrame(FrameData, 0, FlagEndStream, streamID, nil, nil, nil); err != nil {
				return err
			}
			sd.mu.Lock()
			sd.SelfEndBody = true
			sd.mu.Unlock()
		}
		return nil
	}

	maxFrame := int(s.settings.EffectiveMaxFrameSize())
	if maxFrame <= 0 {
		maxFrame = 16384
	}

	for len(data) > 0 {
		n := s.acquireSendCredit(sd, len(data), maxFrame)
		chunk := data[:n]
		data = data[n:]

		flags := byte(0)
		if endStream && len(data) == 0 {
			flags = FlagEndStream
		}
		if err := s.sendFrame(FrameData, 0, flags, streamID, nil, chunk, nil); err != nil {
			return err
		}
	}

	if endStream {
		sd.mu.Lock()
		sd.SelfEndBody = true
		sd.mu.Unlock()
	}
	return nil
}

// acquireSendCredit blocks until at least one byte of both connection and
// stream window is available, then atomically debits min(want, available,
// maxFrame) from both windows and returns that amount.
func (s *Session) acquireSendCredit(sd *StreamData, want, maxFrame int) int {
	for {
		s.connWindowMu.Lock()
		sd.mu.Lock()
		connAvail := s.connWindow
		streamAvail := sd.Window

		if connAvail > 0 && streamAvail > 0 {
			n := want
			if n > maxFrame {
				n = maxFrame
			}
			if int64(n) > connAvail {
				n = int(connAvail)
			}
			if int64(n) > streamAvail {
				n = int(streamAvail)
			}
			if n <= 0 {
				n = 0
			}

			s.connWindow -= int64(n)
			sd.Window -= int64(n)
			sd.mu.Unlock()
			s.connWindowMu.Unlock()
			return n
		}
		sd.mu.Unlock()
		s.connWindowMu.Unlock()

		if connAvail <= 0 && streamAvail <= 0 {
			select {
			case <-s.connNotifier.Channel():
			case <-sd.BodyReceived.Channel():
			}
		} else if connAvail <= 0 {
			s.connNotifier.Wait()
		} else {
			sd.BodyReceived.Wait()
		}
	}
}
