// Package http1 implements the HTTP/0.9, HTTP/1.0 and HTTP/1.1 message
// framer, for both client (Request) and server (Socket) roles, plus the
// upgrade handshakes into HTTP/2 (h2c) and WebSocket.
package http1

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/model"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

// streamReader adapts stream.Stream's ReadSome to io.Reader, so bufio.Reader
// (used for the CRLF-delimited line scanning the framer needs) can sit on
// top of an arbitrary Stream.
type streamReader struct {
	s stream.Stream
}

func (r streamReader) Read(p []byte) (int, error) {
	return r.s.ReadSome(p)
}

func newBufReader(s stream.Stream, bufSize int) *bufio.Reader {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return bufio.NewReaderSize(streamReader{s}, bufSize)
}

// readLine reads one CRLF- or LF-terminated line, with the terminator
// stripped, mirroring the source's read_until(b'\n') plus trim.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.NewIoError("http1.readLine", "reading line", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// splitFields3 splits a request or status line on single spaces into at most 3 tokens.
func splitFields3(line string) []string {
	return strings.SplitN(line, " ", 3)
}

// splitHeaderLine splits at the first colon into (name, value), both
// trimmed. ok is false if there is no colon.
func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return name, value, true
}

// validHeader reports whether name/value form a legal HTTP header field,
// via golang.org/x/net/http/httpguts.
func validHeader(name, value string) bool {
	return httpguts.ValidHeaderFieldName(name) && httpguts.ValidHeaderFieldValue(value)
}

// isChunked reports whether headers' Transfer-Encoding contains the
// "chunked" token.
func isChunked(h *model.Headers) bool {
	for _, v := range h.Values("transfer-encoding") {
		if httpguts.HeaderValuesContainsToken([]string{v}, "chunked") {
			return true
		}
	}
	return false
}

func ioReadFull(r *bufio.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return n, errors.NewIoError("http1.ioReadFull", "reading body", err)
	}
	return n, nil
}

func ioReadAll(r *bufio.Reader) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return buf, errors.NewIoError("http1.ioReadAll", "reading to EOF", err)
	}
	return buf, nil
}

func parseContentLength(h *model.Headers) (int, bool) {
	v, ok := h.Get("content-length")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// readChunkedBody reads one transfer-coding "chunked" body from r, appending
// decoded bytes to body, until the terminating zero-length chunk. It reads
// exactly the declared chunk length followed by its trailing CRLF line (not
// length+1), the RFC-correct shape — see DESIGN.md for why the source's
// server-side off-by-one is not replicated.
func readChunkedBody(r *bufio.Reader, body []byte) ([]byte, bool, error) {
	line, err := readLine(r)
	if err != nil {
		return body, false, err
	}
	n, perr := strconv.ParseUint(strings.TrimSpace(line), 16, 64)
	if perr != nil {
		n = 0
	}
	if n == 0 {
		if _, err := readLine(r); err != nil {
			return body, false, errors.NewIoError("http1.readChunkedBody", "reading trailer", err)
		}
		return body, true, nil
	}

	old := len(body)
	body = append(body, make([]byte, n)...)
	if _, err := io.ReadFull(r, body[old:]); err != nil {
		return body, false, errors.NewIoError("http1.readChunkedBody", "reading chunk", err)
	}
	if _, err := readLine(r); err != nil {
		return body, false, err
	}
	return body, false, nil
}
