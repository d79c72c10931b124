package http2

import (
	"sync"

	"github.com/kadircet/gohttpcore/pkg/constants"
	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/hpack"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

// Mode is the session's negotiated role.
type Mode int

const (
	// ModeAmbiguous is pre-negotiation: OpenStream ignores parity.
	ModeAmbiguous Mode = iota
	ModeClient
	ModeServer
)

// FrameStats accumulates frame-level counters for a Session, repurposed from
// the teacher's ConnectionStats/FrameStats bookkeeping.
type FrameStats struct {
	mu             sync.Mutex
	FramesSent     int
	FramesReceived int
	BytesSent      int
	BytesReceived  int
	StreamsOpened  int
	StreamsClosed  int
}

// HPACKStats tracks compressed/uncompressed header byte counts.
type HPACKStats struct {
	mu               sync.Mutex
	CompressedSize   int
	UncompressedSize int
}

// Session is one HTTP/2 connection: a shared stream transport, the HPACK
// codec state for each direction, the stream table, and flow-control
// windows. The write half is serialized by writeMu so that multi-frame
// sequences (fragmented HEADERS, chunked DATA) are atomic with respect to
// other senders; the read half is serialized by readMu so a single
// goroutine drains frames.
type Session struct {
	conn stream.Stream

	writeMu sync.Mutex
	readMu  sync.Mutex

	encMu   sync.Mutex
	encoder *hpack.Encoder
	decMu   sync.Mutex
	decoder *hpack.Decoder

	streamsMu sync.RWMutex
	streams   map[uint32]*StreamData

	connWindowMu sync.Mutex
	connWindow   int64
	connNotifier *Notifier

	settingsMu sync.Mutex
	settings   Settings // most recently negotiated peer settings

	goawayMu    sync.Mutex
	goaway      bool
	goawayFrame *Frame

	maxStreamID uint32

	mode Mode
	opts *Options

	// contStreamID is the stream id of an in-progress HEADERS/PUSH_PROMISE
	// fragment sequence awaiting CONTINUATION, or 0 if none. RFC 7540 §6.10
	// forbids interleaving fragment sequences from different streams, so one
	// connection-wide slot suffices.
	contStreamID uint32

	Stats      *FrameStats
	HPACKStats *HPACKStats
}

// NewSession wraps conn in a Session with the given role and options. opts
// may be nil to use DefaultOptions.
func NewSession(conn stream.Stream, mode Mode, opts *Options) *Session {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Session{
		conn:         conn,
		encoder:      hpack.NewEncoder(int(opts.HeaderTableSize)),
		decoder:      hpack.NewDecoder(int(opts.HeaderTableSize)),
		streams:      make(map[uint32]*StreamData),
		connWindow:   int64(opts.InitialWindowSize),
		connNotifier: NewNotifier(),
		settings:     DefaultSettings(),
		mode:         mode,
		opts:         opts,
		Stats:        &FrameStats{},
		HPACKStats:   &HPACKStats{},
	}
}

// Mode returns the session's negotiated role.
func (s *Session) Mode() Mode { return s.mode }

func (s *Session) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := s.conn.ReadSome(buf[read:])
		if err != nil {
			return nil, errors.NewIoError("http2.Session.readExact", "reading from stream", err)
		}
		read += m
	}
	return buf, nil
}

// SendPreface writes the fixed 24-byte HTTP/2 client preface.
func (s *Session) SendPreface() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteAll([]byte(constants.Preface))
}

// ReadPreface reads and verifies the 24-byte preface, failing with
// InvalidUpgrade if the bytes do not match exactly.
func (s *Session) ReadPreface() error {
	buf, err := s.readExact(len(constants.Preface))
	if err != nil {
		return err
	}
	if string(buf) != constants.Preface {
		return errors.NewInvalidUpgradeError("http2.Session.ReadPreface", "preface mismatch")
	}
	return nil
}

// OpenStream allocates the next stream id with correct parity for the
// session's mode: Ambiguous always returns max+1; Client and Server keep
// their own parity (odd / even respectively).
func (s *Session) OpenStream() uint32 {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()

	var next uint32
	switch s.mode {
	case ModeClient:
		if s.maxStreamID%2 == 1 {
			next = s.maxStreamID + 2
		} else {
			next = s.maxStreamID + 1
		}
	case ModeServer:
		if s.maxStreamID%2 == 0 {
			next = s.maxStreamID + 2
		} else {
			next = s.maxStreamID + 1
		}
	default:
		next = s.maxStreamID + 1
	}
	s.maxStreamID = next
	return next
}

func (s *Session) getStream(id uint32) (*StreamData, bool) {
	s.streamsMu.RLock()
	defer s.streamsMu.RUnlock()
	sd, ok := s.streams[id]
	return sd, ok
}

func (s *Session) getOrCreateStream(id uint32) *StreamData {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	sd, ok := s.streams[id]
	if !ok {
		sd = NewStreamData(id, s.settings.EffectiveInitialWindowSize())
		s.streams[id] = sd
		if id > s.maxStreamID {
			s.maxStreamID = id
		}
		s.Stats.mu.Lock()
		s.Stats.StreamsOpened++
		s.Stats.mu.Unlock()
	}
	return sd
}

// registerStream registers a stream opened locally via SendHeaders (new=false:
// it is not peer-opened, it already exists in our bookkeeping before any
// frame is sent).
func (s *Session) registerStream(id uint32) *StreamData {
	return s.getOrCreateStream(id)
}

// IsGoaway reports whether a GOAWAY has been seen on this session.
func (s *Session) IsGoaway() (bool, *Frame) {
	s.goawayMu.Lock()
	defer s.goawayMu.Unlock()
	return s.goaway, s.goawayFrame
}
