package http1

import (
	"bufio"

	"github.com/kadircet/gohttpcore/pkg/stream"
)

// promotedStream wraps a bufio.Reader (which may still hold bytes read ahead
// of whatever protocol boundary triggered an upgrade) together with the
// original stream's write half, so a freshly promoted Http2Session or
// WebSocket Socket sees the exact same byte sequence the underlying
// connection would have produced without the framer's read-ahead buffering.
type promotedStream struct {
	r *bufio.Reader
	w stream.Stream
}

func promote(r *bufio.Reader, w stream.Stream) stream.Stream {
	return &promotedStream{r: r, w: w}
}

func (p *promotedStream) ReadSome(buf []byte) (int, error) {
	return p.r.Read(buf)
}

func (p *promotedStream) WriteAll(buf []byte) error {
	return p.w.WriteAll(buf)
}

func (p *promotedStream) Flush() error {
	return p.w.Flush()
}

func (p *promotedStream) Shutdown() error {
	return p.w.Shutdown()
}
