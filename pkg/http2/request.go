package http2

import (
	"strconv"

	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/hpack"
	"github.com/kadircet/gohttpcore/pkg/model"
)

// pseudo-header names, RFC 7540 §8.1.2.3.
const (
	pseudoMethod    = ":method"
	pseudoScheme    = ":scheme"
	pseudoPath      = ":path"
	pseudoAuthority = ":authority"
	pseudoStatus    = ":status"
)

// Request is the client-role handle for one HTTP/2 stream: it builds an
// outgoing request via the pseudo-header setters, sends it, and observes the
// peer's response through the stream's Notifiers. It implements the same
// capability set as http1.Request (see pkg/poly).
type Request struct {
	session  *Session
	streamID uint32
	headers  []hpack.HeaderField
	response *model.HttpResponse
}

// NewRequest opens a new client-initiated stream on session and returns a
// handle for building the request.
func NewRequest(session *Session) *Request {
	id := session.OpenStream()
	session.registerStream(id)
	return &Request{session: session, streamID: id, response: model.NewHttpResponse()}
}

func (r *Request) GetType() string { return "http2" }

// StreamID returns the stream id this request owns.
func (r *Request) StreamID() uint32 { return r.streamID }

func (r *Request) SetMethod(method string) {
	r.headers = append(r.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: pseudoMethod, Value: method})
}

func (r *Request) SetScheme(scheme string) {
	r.headers = append(r.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: pseudoScheme, Value: scheme})
}

func (r *Request) SetPath(path string) {
	r.headers = append(r.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: pseudoPath, Value: path})
}

func (r *Request) SetHost(host string) {
	r.headers = append(r.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: pseudoAuthority, Value: host})
}

func (r *Request) AddHeader(name, value string) {
	r.headers = append(r.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: name, Value: value})
}

func (r *Request) SetHeader(name, value string) {
	r.AddHeader(name, value)
}

func (r *Request) DelHeader(name string) {
	out := r.headers[:0]
	for _, h := range r.headers {
		if h.Name != name {
			out = append(out, h)
		}
	}
	r.headers = out
}

// Send emits the accumulated headers and, if body is non-empty, the body as
// DATA frames, setting END_STREAM on the last frame emitted.
func (r *Request) Send(body []byte) error {
	endStream := len(body) == 0
	if err := r.session.SendHeaders(r.streamID, r.headers, endStream); err != nil {
		return err
	}
	if !endStream {
		return r.session.SendData(r.streamID, body, true)
	}
	return nil
}

// Write sends a chunk of body without ending the stream; call Close to
// terminate it.
func (r *Request) Write(chunk []byte) error {
	return r.session.SendData(r.streamID, chunk, false)
}

// Flush is a no-op: HTTP/2 frames are written synchronously in SendData/Write.
func (r *Request) Flush() error { return nil }

// Close sends an empty END_STREAM DATA frame, terminating the request body.
func (r *Request) Close() error {
	return r.session.SendData(r.streamID, nil, true)
}

// ReadUntilHeadComplete blocks until the response's headers have been fully
// received and decoded, populating GetResponse.
func (r *Request) ReadUntilHeadComplete() error {
	sd, ok := r.session.getStream(r.streamID)
	if !ok {
		return errors.NewInvalidStreamError("http2.Request.ReadUntilHeadComplete", "stream not registered")
	}
	for {
		sd.mu.Lock()
		done := sd.EndHead
		reset := sd.Reset
		sd.mu.Unlock()
		if reset {
			return errors.NewResetStreamError("http2.Request.ReadUntilHeadComplete", "stream reset")
		}
		if done {
			r.populateResponseHead(sd)
			return nil
		}
		sd.HeadComplete.Wait()
	}
}

// ReadUntilComplete blocks until both headers and body have been fully
// received.
func (r *Request) ReadUntilComplete() error {
	if err := r.ReadUntilHeadComplete(); err != nil {
		return err
	}
	sd, _ := r.session.getStream(r.streamID)
	for {
		sd.mu.Lock()
		done := sd.EndBody
		reset := sd.Reset
		sd.mu.Unlock()
		if reset {
			return errors.NewResetStreamError("http2.Request.ReadUntilComplete", "stream reset")
		}
		if done {
			r.response.Body = sd.snapshotBody()
			r.response.BodyComplete = true
			return nil
		}
		sd.BodyReceived.Wait()
	}
}

func (r *Request) populateResponseHead(sd *StreamData) {
	fields := sd.snapshotHeaders()
	r.response.HeadComplete = true
	r.response.VcsComplete = true
	r.response.Version = model.HttpVersion{}
	for _, f := range fields {
		switch f.Name {
		case pseudoStatus:
			var code uint16
			for _, c := range f.Value {
				if c < '0' || c > '9' {
					code = 0
					break
				}
				code = code*10 + uint16(c-'0')
			}
			r.response.Code = code
		default:
			r.response.Headers.Add(f.Name, f.Value)
		}
	}
}

// GetResponse returns the accumulated response view.
func (r *Request) GetResponse() *model.HttpResponse { return r.response }

// IsReset reports whether the peer sent RST_STREAM for this stream.
func (r *Request) IsReset() bool {
	sd, ok := r.session.getStream(r.streamID)
	if !ok {
		return false
	}
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.Reset
}

// Socket is the server-role handle for one HTTP/2 stream: it observes the
// peer's request, then builds and sends a response.
type Socket struct {
	session  *Session
	streamID uint32
	headers  []hpack.HeaderField
	client   *model.HttpClient
}

// NewSocket wraps an already peer-opened stream (reported via Event.NewStream
// on a HEADERS event) as a server-role response handle.
func NewSocket(session *Session, streamID uint32) *Socket {
	session.registerStream(streamID)
	return &Socket{session: session, streamID: streamID, client: model.NewHttpClient()}
}

func (s *Socket) GetType() string { return "http2" }

func (s *Socket) StreamID() uint32 { return s.streamID }

func (s *Socket) SetStatus(code int) {
	s.headers = append(s.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: pseudoStatus, Value: strconv.Itoa(code)})
}

func (s *Socket) AddHeader(name, value string) {
	s.headers = append(s.headers, hpack.HeaderField{Type: hpack.NotIndexed, Name: name, Value: value})
}

func (s *Socket) SetHeader(name, value string) { s.AddHeader(name, value) }

func (s *Socket) DelHeader(name string) {
	out := s.headers[:0]
	for _, h := range s.headers {
		if h.Name != name {
			out = append(out, h)
		}
	}
	s.headers = out
}

func (s *Socket) Send(body []byte) error {
	endStream := len(body) == 0
	if err := s.session.SendHeaders(s.streamID, s.headers, endStream); err != nil {
		return err
	}
	if !endStream {
		return s.session.SendData(s.streamID, body, true)
	}
	return nil
}

func (s *Socket) Write(chunk []byte) error {
	return s.session.SendData(s.streamID, chunk, false)
}

func (s *Socket) Flush() error { return nil }

func (s *Socket) Close() error {
	return s.session.SendData(s.streamID, nil, true)
}

// ReadUntilHeadComplete blocks until the request's headers are fully decoded,
// populating GetClient.
func (s *Socket) ReadUntilHeadComplete() error {
	sd, ok := s.session.getStream(s.streamID)
	if !ok {
		return errors.NewInvalidStreamError("http2.Socket.ReadUntilHeadComplete", "stream not registered")
	}
	for {
		sd.mu.Lock()
		done := sd.EndHead
		sd.mu.Unlock()
		if done {
			s.populateClientHead(sd)
			return nil
		}
		sd.HeadComplete.Wait()
	}
}

func (s *Socket) ReadUntilComplete() error {
	if err := s.ReadUntilHeadComplete(); err != nil {
		return err
	}
	sd, _ := s.session.getStream(s.streamID)
	for {
		sd.mu.Lock()
		done := sd.EndBody
		sd.mu.Unlock()
		if done {
			s.client.Body = sd.snapshotBody()
			s.client.BodyComplete = true
			return nil
		}
		sd.BodyReceived.Wait()
	}
}

func (s *Socket) populateClientHead(sd *StreamData) {
	fields := sd.snapshotHeaders()
	s.client.HeadComplete = true
	s.client.MpvComplete = true
	s.client.Version = model.HttpVersion{}
	for _, f := range fields {
		switch f.Name {
		case pseudoMethod:
			s.client.Method = model.ParseMethod(f.Value)
		case pseudoPath:
			s.client.Path = f.Value
		case pseudoScheme:
			s.client.Scheme = f.Value
		case pseudoAuthority:
			s.client.Host = f.Value
		default:
			s.client.Headers.Add(f.Name, f.Value)
		}
	}
}

func (s *Socket) GetClient() *model.HttpClient { return s.client }

func (s *Socket) IsReset() bool {
	sd, ok := s.session.getStream(s.streamID)
	if !ok {
		return false
	}
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.Reset
}
