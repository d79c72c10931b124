package http1

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/model"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

// Socket is the server-role HTTP/1 handle: it incrementally parses the
// peer's request and emits a response (status line/headers/body).
type Socket struct {
	netr *bufio.Reader
	netw stream.Stream

	client *model.HttpClient

	sentHead bool
	sent     bool

	Code    int
	Status  string
	Version model.HttpVersion
	headers *model.Headers
}

// NewSocket wraps conn as a server-role socket.
func NewSocket(conn stream.Stream, bufSize int) *Socket {
	return &Socket{
		netr:    newBufReader(conn, bufSize),
		netw:    conn,
		client:  model.NewHttpClient(),
		Code:    200,
		Status:  "OK",
		Version: model.ParseVersion("HTTP/1.1"),
		headers: model.NewHeaders(),
	}
}

func (s *Socket) GetType() string { return "http1" }

func (s *Socket) AddHeader(name, value string) error {
	if !validHeader(name, value) {
		return errors.NewInvalidError("http1.Socket.AddHeader", "malformed header field")
	}
	s.headers.Add(name, value)
	return nil
}

func (s *Socket) SetHeader(name, value string) error {
	if !validHeader(name, value) {
		return errors.NewInvalidError("http1.Socket.SetHeader", "malformed header field")
	}
	s.headers.Set(name, value)
	return nil
}

func (s *Socket) DelHeader(name string) { s.headers.Del(name) }

func (s *Socket) SetStatus(code int, status string) {
	s.Code = code
	s.Status = status
}

// SendHead emits the status line and headers once. HTTP/0.9 requests never
// see a head at all (SendHead is a no-op once the client has been observed
// to be HTTP/0.9).
func (s *Socket) SendHead() error {
	if s.sentHead {
		return errors.NewHeadersSentError("http1.Socket.SendHead", "head already sent")
	}
	if s.client.Version.Tag() == model.VersionHttp09 {
		s.sentHead = true
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s\r\n", s.Version.String(), s.Code, s.Status)
	for _, name := range s.headers.Names() {
		for _, v := range s.headers.Values(name) {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}
	b.WriteString("\r\n")
	if err := s.netw.WriteAll([]byte(b.String())); err != nil {
		return errors.NewIoError("http1.Socket.SendHead", "writing head", err)
	}
	s.sentHead = true
	return nil
}

func (s *Socket) Write(body []byte) error {
	if s.sent {
		return errors.NewConnectionClosedError("http1.Socket.Write", "response already closed")
	}
	if s.client.Version.Tag() == model.VersionHttp09 {
		if !s.sentHead {
			return s.SendHead()
		}
		return s.netw.WriteAll(body)
	}
	if !s.sentHead {
		s.headers.Set("Transfer-Encoding", "chunked")
		if err := s.SendHead(); err != nil {
			return err
		}
	}
	if err := s.netw.WriteAll(getChunk(body)); err != nil {
		return errors.NewIoError("http1.Socket.Write", "writing chunk", err)
	}
	return nil
}

func (s *Socket) Send(body []byte) error {
	if s.sent {
		return errors.NewConnectionClosedError("http1.Socket.Send", "response already closed")
	}
	if s.client.Version.Tag() == model.VersionHttp09 {
		if !s.sentHead {
			if err := s.SendHead(); err != nil {
				return err
			}
		}
		if err := s.netw.WriteAll(body); err != nil {
			return errors.NewIoError("http1.Socket.Send", "writing body", err)
		}
		s.sent = true
		return nil
	}
	if !s.sentHead {
		s.headers.Set("Content-Length", strconv.Itoa(len(body)))
		if err := s.SendHead(); err != nil {
			return err
		}
		if err := s.netw.WriteAll(body); err != nil {
			return errors.NewIoError("http1.Socket.Send", "writing body", err)
		}
		s.sent = true
		return nil
	}
	if len(body) > 0 {
		if err := s.netw.WriteAll(getChunk(body)); err != nil {
			return errors.NewIoError("http1.Socket.Send", "writing final chunk", err)
		}
	}
	if err := s.netw.WriteAll(lastChunk); err != nil {
		return errors.NewIoError("http1.Socket.Send", "writing terminating chunk", err)
	}
	s.sent = true
	return nil
}

func (s *Socket) Flush() error { return s.netw.Flush() }

func (s *Socket) Close() error { return s.Send(nil) }

func (s *Socket) readClient() error {
	if !s.client.Valid {
		return nil
	}
	if !s.client.MpvComplete {
		line, err := readLine(s.netr)
		if err != nil {
			return err
		}
		fields := splitFields3(line)
		switch len(fields) {
		case 2:
			s.client.Method = model.ParseMethod("GET")
			s.client.Path = fields[1]
			s.client.Version = model.Http09()
			s.client.HeadComplete = true
			s.client.BodyComplete = true
		case 3:
			s.client.Method = model.ParseMethod(fields[0])
			s.client.Path = fields[1]
			s.client.Version = model.ParseVersion(fields[2])
		default:
			s.client.Valid = false
		}
		s.client.MpvComplete = true
		return nil
	}
	if !s.client.HeadComplete {
		line, err := readLine(s.netr)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			s.client.HeadComplete = true
			return nil
		}
		name, value, ok := splitHeaderLine(line)
		if !ok {
			s.client.Valid = false
			return nil
		}
		s.client.Headers.Add(name, value)
		return nil
	}
	if !s.client.BodyComplete {
		switch {
		case isChunked(s.client.Headers):
			body, done, err := readChunkedBody(s.netr, s.client.Body)
			s.client.Body = body
			if err != nil {
				return err
			}
			s.client.BodyComplete = done
		default:
			if n, ok := parseContentLength(s.client.Headers); ok {
				body := make([]byte, n)
				if _, err := ioReadFull(s.netr, body); err != nil {
					return err
				}
				s.client.Body = body
				s.client.BodyComplete = true
			} else {
				s.client.BodyComplete = true
			}
		}
	}
	return nil
}

// ReadClient advances request parsing by one step and returns the current
// (possibly still-incomplete) view.
func (s *Socket) ReadClient() (*model.HttpClient, error) {
	if err := s.readClient(); err != nil {
		return s.client, err
	}
	return s.client, nil
}

func (s *Socket) ReadUntilHeadComplete() (*model.HttpClient, error) {
	for s.client.Valid && !s.client.HeadComplete {
		if _, err := s.ReadClient(); err != nil {
			return s.client, err
		}
	}
	return s.client, nil
}

func (s *Socket) ReadUntilComplete() (*model.HttpClient, error) {
	for s.client.Valid && !s.client.BodyComplete {
		if _, err := s.ReadClient(); err != nil {
			return s.client, err
		}
	}
	return s.client, nil
}

func (s *Socket) GetClient() *model.HttpClient { return s.client }

// Underlying exposes the buffered reader and raw stream for upgrade
// handshakes, which need to hand the same halves to a new Http2Session or
// WebSocket.
func (s *Socket) Underlying() (*bufio.Reader, stream.Stream) {
	return s.netr, s.netw
}
