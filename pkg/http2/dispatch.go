package http2

import (
	"github.com/kadircet/gohttpcore/pkg/constants"
	"github.com/kadircet/gohttpcore/pkg/errors"
)

// Event reports what Next() observed, so a caller driving the dispatch loop
// knows when a new peer-initiated stream appeared (a server seeing a fresh
// HEADERS, or a client seeing a fresh PUSH_PROMISE) or the frame type that
// actually made progress.
type Event struct {
	Type        FrameType
	StreamID    uint32
	NewStream   bool // this stream id was created as a result of this frame
	HeadersDone bool // END_HEADERS observed for StreamID on this event
	BodyDone    bool // END_STREAM observed for StreamID on this event
	Goaway      bool
}

// readFrame reads exactly one frame's wire bytes from the connection and
// parses it.
func (s *Session) readFrame() (*Frame, error) {
	header, err := s.readExact(9)
	if err != nil {
		return nil, err
	}
	length := int(header[0])<<16 | int(header[1])<<8 | int(header[2])
	rest, err := s.readExact(length)
	if err != nil {
		return nil, err
	}
	buf := append(header, rest...)
	f, err := ParseFrame(buf)
	if err != nil {
		return nil, err
	}
	s.Stats.mu.Lock()
	s.Stats.FramesReceived++
	s.Stats.BytesReceived += len(buf)
	s.Stats.mu.Unlock()
	return f, nil
}

// Next reads and dispatches exactly one frame, applying its effect to
// session/stream state and returning a summary Event. It is not safe to call
// Next concurrently from multiple goroutines; a single reader should drive
// the loop.
func (s *Session) Next() (*Event, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	f, err := s.readFrame()
	if err != nil {
		return nil, err
	}
	return s.handle(f)
}

func (s *Session) handle(f *Frame) (*Event, error) {
	ev := &Event{Type: f.Type, StreamID: f.StreamID}

	switch f.Type {
	case FrameData:
		return s.handleData(f, ev)
	case FrameHeaders:
		return s.handleHeaders(f, ev)
	case FramePriority:
		// No-op: priority scheduling is not implemented, but the frame is
		// still valid and fully consumed by ParseFrame.
		return ev, nil
	case FrameRstStream:
		if sd, ok := s.getStream(f.StreamID); ok {
			sd.mu.Lock()
			sd.Reset = true
			sd.mu.Unlock()
		}
		return ev, nil
	case FrameSettings:
		return s.handleSettings(f, ev)
	case FramePushPromise:
		return s.handlePushPromise(f, ev)
	case FramePing:
		if !f.HasFlag(FlagAck) {
			if err := s.sendFrame(FramePing, 0, FlagAck, 0, nil, f.Payload, nil); err != nil {
				return nil, err
			}
		}
		return ev, nil
	case FrameGoaway:
		s.goawayMu.Lock()
		s.goaway = true
		s.goawayFrame = f
		s.goawayMu.Unlock()
		ev.Goaway = true
		return ev, nil
	case FrameWindowUpdate:
		return s.handleWindowUpdate(f, ev)
	case FrameContinuation:
		return s.handleContinuation(f, ev)
	case FrameInvalid:
		if s.opts.Strict {
			return nil, errors.NewProtocolError("http2.Session.handle", "unknown frame type received in strict mode")
		}
		return ev, nil
	default:
		// Unreachable: every FrameType constant is covered above.
		return nil, errors.NewProtocolError("http2.Session.handle", "unhandled frame type")
	}
}

func (s *Session) handleData(f *Frame, ev *Event) (*Event, error) {
	if f.StreamID == 0 {
		return nil, errors.NewProtocolError("http2.Session.handleData", "DATA on stream 0")
	}
	sd, ok := s.getStream(f.StreamID)
	if !ok {
		return nil, errors.NewInvalidStreamError("http2.Session.handleData", "DATA on unknown stream")
	}
	sd.appendBody(f.Payload)
	if f.HasFlag(FlagEndStream) {
		sd.mu.Lock()
		sd.EndBody = true
		sd.mu.Unlock()
		ev.BodyDone = true
	}
	sd.BodyReceived.Broadcast()

	n := len(f.Payload)
	if n > 0 {
		if err := s.SendWindowUpdate(0, uint32(n)); err != nil {
			return nil, err
		}
		if err := s.SendWindowUpdate(f.StreamID, uint32(n)); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

func (s *Session) handleHeaders(f *Frame, ev *Event) (*Event, error) {
	if f.StreamID == 0 {
		return nil, errors.NewProtocolError("http2.Session.handleHeaders", "HEADERS on stream 0")
	}
	s.streamsMu.Lock()
	sd, existed := s.streams[f.StreamID]
	if !existed && s.opts.Strict && s.mode != ModeAmbiguous && (f.StreamID%2 == 1) != (s.mode == ModeServer) {
		s.streamsMu.Unlock()
		return nil, errors.NewProtocolError("http2.Session.handleHeaders", "peer-opened stream id has wrong parity")
	}
	if !existed {
		sd = NewStreamData(f.StreamID, s.settings.EffectiveInitialWindowSize())
		s.streams[f.StreamID] = sd
		if f.StreamID > s.maxStreamID {
			s.maxStreamID = f.StreamID
		}
	}
	s.streamsMu.Unlock()
	ev.NewStream = !existed

	sd.mu.Lock()
	sd.Head = append(sd.Head, f.Payload...)
	sd.mu.Unlock()

	if f.HasFlag(FlagEndStream) {
		sd.mu.Lock()
		sd.EndBody = true
		sd.mu.Unlock()
		ev.BodyDone = true
	}

	if f.HasFlag(FlagEndHeaders) {
		if err := s.finishHeaderBlock(sd); err != nil {
			return nil, err
		}
		ev.HeadersDone = true
	} else {
		s.contStreamID = f.StreamID
	}
	return ev, nil
}

func (s *Session) handleContinuation(f *Frame, ev *Event) (*Event, error) {
	if s.contStreamID == 0 || s.contStreamID != f.StreamID {
		return nil, errors.NewProtocolError("http2.Session.handleContinuation", "CONTINUATION without matching in-progress header block")
	}
	sd, ok := s.getStream(f.StreamID)
	if !ok {
		return nil, errors.NewInvalidStreamError("http2.Session.handleContinuation", "CONTINUATION on unknown stream")
	}
	sd.mu.Lock()
	sd.Head = append(sd.Head, f.Payload...)
	sd.mu.Unlock()

	if f.HasFlag(FlagEndHeaders) {
		s.contStreamID = 0
		if err := s.finishHeaderBlock(sd); err != nil {
			return nil, err
		}
		ev.HeadersDone = true
		if sd.Associated != 0 {
			if origin, ok := s.getStream(sd.Associated); ok {
				origin.mu.Lock()
				origin.PushHeaders = sd.snapshotHeaders()
				origin.mu.Unlock()
			}
		}
	}
	return ev, nil
}

func (s *Session) finishHeaderBlock(sd *StreamData) error {
	sd.mu.Lock()
	raw := sd.Head
	sd.Head = nil
	sd.mu.Unlock()

	s.decMu.Lock()
	fields, err := s.decoder.DecodeAll(raw)
	s.decMu.Unlock()
	if err != nil {
		return err
	}

	sd.mu.Lock()
	sd.Headers = append(sd.Headers, fields...)
	sd.EndHead = true
	sd.mu.Unlock()
	sd.HeadComplete.Broadcast()
	return nil
}

func (s *Session) handleSettings(f *Frame, ev *Event) (*Event, error) {
	if f.HasFlag(FlagAck) {
		return ev, nil
	}
	if s.opts.Strict {
		for i := 0; i+6 <= len(f.Payload); i += 6 {
			id := uint16(f.Payload[i])<<8 | uint16(f.Payload[i+1])
			if id < SettingHeaderTableSize || id > SettingMaxHeaderListSize {
				return nil, errors.NewProtocolError("http2.Session.handleSettings", "unknown SETTINGS id in strict mode")
			}
		}
	}
	s.settingsMu.Lock()
	s.settings = DecodeSettings(s.settings, f.Payload)
	s.settingsMu.Unlock()

	// No auto-ACK: the caller observes the Event and sends one explicitly
	// via SendSettingsAck if it wants to.
	return ev, nil
}

func (s *Session) handlePushPromise(f *Frame, ev *Event) (*Event, error) {
	if s.mode == ModeServer {
		return nil, errors.NewProtocolError("http2.Session.handlePushPromise", "server received PUSH_PROMISE")
	}
	if len(f.Payload) < 4 {
		return nil, errors.NewInvalidFrameError("http2.Session.handlePushPromise", "truncated PUSH_PROMISE")
	}
	promisedID := uint32(f.Payload[0])<<24 | uint32(f.Payload[1])<<16 | uint32(f.Payload[2])<<8 | uint32(f.Payload[3])
	fragment := f.Payload[4:]

	origin, ok := s.getStream(f.StreamID)
	if !ok {
		return nil, errors.NewInvalidStreamError("http2.Session.handlePushPromise", "PUSH_PROMISE on unknown origin stream")
	}
	if _, exists := s.getStream(promisedID); exists {
		return nil, errors.NewProtocolError("http2.Session.handlePushPromise", "PUSH_PROMISE for an already existing stream id")
	}
	origin.mu.Lock()
	origin.Promising = promisedID
	origin.mu.Unlock()

	promised := s.getOrCreateStream(promisedID)
	promised.mu.Lock()
	promised.Associated = f.StreamID
	promised.Head = append(promised.Head, fragment...)
	promised.mu.Unlock()
	ev.NewStream = true
	ev.StreamID = promisedID

	if f.HasFlag(FlagEndHeaders) {
		if err := s.finishHeaderBlock(promised); err != nil {
			return nil, err
		}
		ev.HeadersDone = true
		origin.mu.Lock()
		origin.PushHeaders = promised.snapshotHeaders()
		origin.mu.Unlock()
	} else {
		s.contStreamID = promisedID
	}
	return ev, nil
}

// handleWindowUpdate applies a WINDOW_UPDATE increment to either the
// connection window (stream id 0) or a stream's window. An increment that
// would push the window above 2^31-1 is rejected as ProtocolError rather
// than silently wrapping or overflowing.
func (s *Session) handleWindowUpdate(f *Frame, ev *Event) (*Event, error) {
	if len(f.Payload) != 4 {
		return nil, errors.NewProtocolError("http2.Session.handleWindowUpdate", "WINDOW_UPDATE payload must be 4 bytes")
	}
	inc := int64(uint32(f.Payload[0])<<24|uint32(f.Payload[1])<<16|uint32(f.Payload[2])<<8|uint32(f.Payload[3])) & 0x7fffffff
	if inc == 0 {
		return nil, errors.NewProtocolError("http2.Session.handleWindowUpdate", "zero increment")
	}

	if f.StreamID == 0 {
		s.connWindowMu.Lock()
		defer s.connWindowMu.Unlock()
		if s.connWindow+inc > constants.MaxWindowSize {
			return nil, errors.NewProtocolError("http2.Session.handleWindowUpdate", "connection window would exceed 2^31-1")
		}
		s.connWindow += inc
		s.connNotifier.Broadcast()
		return ev, nil
	}

	sd, ok := s.getStream(f.StreamID)
	if !ok {
		return nil, errors.NewInvalidStreamError("http2.Session.handleWindowUpdate", "WINDOW_UPDATE on unknown stream")
	}
	sd.mu.Lock()
	if sd.Window+inc > constants.MaxWindowSize {
		sd.mu.Unlock()
		return nil, errors.NewProtocolError("http2.Session.handleWindowUpdate", "stream window would exceed 2^31-1")
	}
	sd.Window += inc
	sd.mu.Unlock()
	sd.BodyReceived.Broadcast()
	return ev, nil
}
