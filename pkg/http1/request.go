package http1

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/model"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

// Request is the client-role HTTP/1 handle: it builds an outgoing request
// line/headers, emits the body (chunked, content-length, or HTTP/0.9), and
// incrementally parses the peer's response.
type Request struct {
	netr *bufio.Reader
	netw stream.Stream

	response *model.HttpResponse

	sentHead bool
	sent     bool

	Method  model.HttpMethod
	Path    string
	Version model.HttpVersion
	headers *model.Headers
}

// NewRequest wraps conn as a client-role request, defaulting to GET / HTTP/1.1.
func NewRequest(conn stream.Stream, bufSize int) *Request {
	return &Request{
		netr:     newBufReader(conn, bufSize),
		netw:     conn,
		response: model.NewHttpResponse(),
		Method:   model.ParseMethod("GET"),
		Path:     "/",
		Version:  model.ParseVersion("HTTP/1.1"),
		headers:  model.NewHeaders(),
	}
}

func (r *Request) GetType() string { return "http1" }

func (r *Request) AddHeader(name, value string) error {
	if !validHeader(name, value) {
		return errors.NewInvalidError("http1.Request.AddHeader", "malformed header field")
	}
	r.headers.Add(name, value)
	return nil
}

func (r *Request) SetHeader(name, value string) error {
	if !validHeader(name, value) {
		return errors.NewInvalidError("http1.Request.SetHeader", "malformed header field")
	}
	r.headers.Set(name, value)
	return nil
}

func (r *Request) DelHeader(name string) { r.headers.Del(name) }

func (r *Request) SetMethod(method string)  { r.Method = model.ParseMethod(method) }
func (r *Request) SetPath(path string)      { r.Path = path }
func (r *Request) SetVersion(version string) { r.Version = model.ParseVersion(version) }

// SendHead emits the request line and headers once.
func (r *Request) SendHead() error {
	if r.sentHead {
		return errors.NewHeadersSentError("http1.Request.SendHead", "head already sent")
	}
	if r.Version.Tag() == model.VersionHttp09 {
		head := fmt.Sprintf("GET %s\r\n", r.Path)
		if err := r.netw.WriteAll([]byte(head)); err != nil {
			return errors.NewIoError("http1.Request.SendHead", "writing request line", err)
		}
		r.sentHead = true
		r.response.VcsComplete = true
		r.response.HeadComplete = true
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\r\n", r.Method.String(), r.Path, r.Version.String())
	for _, name := range r.headers.Names() {
		for _, v := range r.headers.Values(name) {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}
	b.WriteString("\r\n")
	if err := r.netw.WriteAll([]byte(b.String())); err != nil {
		return errors.NewIoError("http1.Request.SendHead", "writing head", err)
	}
	r.sentHead = true
	return nil
}

// Write emits one chunk of a chunked-transfer-encoded body, sending the head
// (with Transfer-Encoding: chunked latched in) on the first call.
func (r *Request) Write(body []byte) error {
	if r.sent {
		return errors.NewConnectionClosedError("http1.Request.Write", "request already closed")
	}
	if r.Version.Tag() == model.VersionHttp09 {
		if !r.sentHead {
			return r.SendHead()
		}
		return nil
	}
	if !r.sentHead {
		r.headers.Set("Transfer-Encoding", "chunked")
		if err := r.SendHead(); err != nil {
			return err
		}
	}
	if err := r.netw.WriteAll(getChunk(body)); err != nil {
		return errors.NewIoError("http1.Request.Write", "writing chunk", err)
	}
	return nil
}

// Send emits the full request in one go: if the head hasn't been sent yet, it
// uses Content-Length framing; otherwise (a chunked request already in
// progress) it emits a final chunk and the terminating zero-chunk.
func (r *Request) Send(body []byte) error {
	if r.sent {
		return errors.NewConnectionClosedError("http1.Request.Send", "request already closed")
	}
	if r.Version.Tag() == model.VersionHttp09 {
		if !r.sentHead {
			if err := r.SendHead(); err != nil {
				return err
			}
		}
		r.sent = true
		return nil
	}
	if !r.sentHead {
		r.headers.Set("Content-Length", fmt.Sprintf("%d", len(body)))
		if err := r.SendHead(); err != nil {
			return err
		}
		if err := r.netw.WriteAll(body); err != nil {
			return errors.NewIoError("http1.Request.Send", "writing body", err)
		}
		r.sent = true
		return nil
	}
	if len(body) > 0 {
		if err := r.netw.WriteAll(getChunk(body)); err != nil {
			return errors.NewIoError("http1.Request.Send", "writing final chunk", err)
		}
	}
	if err := r.netw.WriteAll(lastChunk); err != nil {
		return errors.NewIoError("http1.Request.Send", "writing terminating chunk", err)
	}
	r.sent = true
	return nil
}

func (r *Request) Flush() error {
	return r.netw.Flush()
}

func (r *Request) Close() error {
	return r.Send(nil)
}

// readResponse advances response parsing by exactly one step.
func (r *Request) readResponse() error {
	if !r.response.Valid {
		return nil
	}
	if !r.response.VcsComplete && r.Version.Tag() != model.VersionHttp09 {
		line, err := readLine(r.netr)
		if err != nil {
			return err
		}
		fields := splitFields3(line)
		if len(fields) != 3 {
			r.response.Valid = false
		} else {
			r.response.Version = model.ParseVersion(fields[0])
			var code uint16
			for _, c := range strings.TrimSpace(fields[1]) {
				if c < '0' || c > '9' {
					code = 0
					break
				}
				code = code*10 + uint16(c-'0')
			}
			r.response.Code = code
			r.response.Status = fields[2]
		}
		r.response.VcsComplete = true
		return nil
	}
	if !r.response.HeadComplete && r.Version.Tag() != model.VersionHttp09 {
		line, err := readLine(r.netr)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			r.response.HeadComplete = true
			return nil
		}
		name, value, ok := splitHeaderLine(line)
		if !ok {
			r.response.Valid = false
			return nil
		}
		r.response.Headers.Add(name, value)
		return nil
	}
	if !r.response.BodyComplete {
		switch {
		case isChunked(r.response.Headers):
			body, done, err := readChunkedBody(r.netr, r.response.Body)
			r.response.Body = body
			if err != nil {
				return err
			}
			r.response.BodyComplete = done
		default:
			if n, ok := parseContentLength(r.response.Headers); ok {
				body := make([]byte, n)
				if _, err := ioReadFull(r.netr, body); err != nil {
					return err
				}
				r.response.Body = body
				r.response.BodyComplete = true
			} else if r.Version.Tag() == model.VersionHttp10 || r.Version.Tag() == model.VersionHttp09 {
				body, err := ioReadAll(r.netr)
				if err != nil {
					return err
				}
				r.response.Body = body
				r.response.BodyComplete = true
			} else {
				r.response.BodyComplete = true
			}
		}
	}
	return nil
}

// ReadResponse advances response parsing by one step and returns the
// current (possibly still-incomplete) view.
func (r *Request) ReadResponse() (*model.HttpResponse, error) {
	if err := r.readResponse(); err != nil {
		return r.response, err
	}
	return r.response, nil
}

// ReadUntilHeadComplete loops ReadResponse until headers are fully parsed.
func (r *Request) ReadUntilHeadComplete() (*model.HttpResponse, error) {
	for r.response.Valid && !r.response.HeadComplete {
		if _, err := r.ReadResponse(); err != nil {
			return r.response, err
		}
	}
	return r.response, nil
}

// ReadUntilComplete loops ReadResponse until the body is fully parsed.
func (r *Request) ReadUntilComplete() (*model.HttpResponse, error) {
	for r.response.Valid && !r.response.BodyComplete {
		if _, err := r.ReadResponse(); err != nil {
			return r.response, err
		}
	}
	return r.response, nil
}

func (r *Request) GetResponse() *model.HttpResponse { return r.response }

// Reset restores r for connection reuse.
func (r *Request) Reset() {
	r.response.Reset()
	r.Method = model.ParseMethod("GET")
	r.Path = "/"
	r.Version = model.ParseVersion("HTTP/1.1")
	r.headers = model.NewHeaders()
	r.sentHead = false
	r.sent = false
}
