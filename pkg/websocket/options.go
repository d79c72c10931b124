package websocket

// Options configures a Socket, following the teacher's Options/Debug idiom
// used across pkg/http2.
type Options struct {
	// MaxFramePayload holds a payload-size cap (0 meaning none). Socket does
	// not read Options, so no cap is applied to frames it reads.
	MaxFramePayload uint64

	Debug struct {
		LogFrames bool
	}
}

// DefaultOptions returns a permissive Options value.
func DefaultOptions() *Options {
	return &Options{MaxFramePayload: 0}
}
