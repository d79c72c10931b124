package http2

import (
	"sync"

	"github.com/kadircet/gohttpcore/pkg/hpack"
)

// StreamData is the per-stream state tracked by a Session: flow-control
// window, close/reset flags, buffered decoded headers and body, and the
// notifiers callers block on. Grounded on the teacher's StreamManager
// map-of-structs idiom, generalized to the full state the protocol session
// needs instead of a simplified connection-pool stream record.
type StreamData struct {
	mu sync.Mutex

	ID uint32

	Window int64 // send credit

	Reset bool

	EndHead  bool // peer finished the header block
	EndBody  bool // peer finished the body (END_STREAM observed)
	SelfEndHead bool // we finished sending headers
	SelfEndBody bool // we finished sending body

	Headers []hpack.HeaderField
	Body    []byte

	Head []byte // raw HPACK bytes awaiting CONTINUATION

	// Push-promise linkage.
	Associated  uint32 // origin stream id, if this stream is a promise
	Promising   uint32 // promised stream id, if this stream is promising one
	Promise     []byte // not written by the session: promise fragments collect in the promised stream's Head
	PushHeaders []hpack.HeaderField

	HeadComplete *Notifier
	BodyReceived *Notifier
}

// NewStreamData returns a fresh StreamData with the connection's negotiated
// initial window size.
func NewStreamData(id uint32, initialWindow uint32) *StreamData {
	return &StreamData{
		ID:           id,
		Window:       int64(initialWindow),
		HeadComplete: NewNotifier(),
		BodyReceived: NewNotifier(),
	}
}

func (s *StreamData) appendBody(b []byte) {
	s.mu.Lock()
	s.Body = append(s.Body, b...)
	s.mu.Unlock()
}

func (s *StreamData) snapshotBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.Body))
	copy(out, s.Body)
	return out
}

func (s *StreamData) snapshotHeaders() []hpack.HeaderField {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hpack.HeaderField, len(s.Headers))
	copy(out, s.Headers)
	return out
}
