package http2

import "fmt"

// Options configures a Session. Field shape mirrors the teacher's
// Options/Debug idiom: plain fields for protocol limits, a nested Debug
// struct of opt-in logging flags, zero overhead when disabled.
type Options struct {
	// MaxConcurrentStreams is advertised to the peer as
	// SETTINGS_MAX_CONCURRENT_STREAMS; the session itself does not count or
	// limit open streams against it.
	MaxConcurrentStreams uint32

	// InitialWindowSize sets the per-stream flow control window
	// (SETTINGS_INITIAL_WINDOW_SIZE).
	InitialWindowSize uint32

	// MaxFrameSize is advertised to the peer as SETTINGS_MAX_FRAME_SIZE (the
	// largest payload this side accepts); outgoing frames are sized by the
	// peer's settings instead.
	MaxFrameSize uint32

	// MaxHeaderListSize limits header list size (SETTINGS_MAX_HEADER_LIST_SIZE).
	MaxHeaderListSize uint32

	// HeaderTableSize sets the HPACK dynamic table size.
	HeaderTableSize uint32

	// DisableServerPush disables server push (SETTINGS_ENABLE_PUSH = 0).
	DisableServerPush bool

	// Strict rejects malformed peer behavior (unknown SETTINGS ids,
	// mismatched stream-id parity, Invalid frame types) with ProtocolError
	// instead of ignoring it.
	Strict bool

	// Debug contains logging flags (optional, all default to false).
	Debug struct {
		LogFrames   bool
		LogSettings bool
		LogHeaders  bool
		LogData     bool
	}
}

// DefaultOptions returns this package's default HTTP/2 session options. They
// are not the RFC 7540 §6.5.2 initial values: concurrency is capped at 100,
// header lists at 10 MiB, and server push is disabled.
func DefaultOptions() *Options {
	return &Options{
		MaxConcurrentStreams: 100,
		InitialWindowSize:    65535,
		MaxFrameSize:         16384,
		MaxHeaderListSize:    10485760,
		HeaderTableSize:      4096,
		DisableServerPush:    true,
		Strict:               false,
	}
}

// ValidateOptions checks RFC 7540 range constraints.
func ValidateOptions(opts *Options) error {
	if opts == nil {
		return nil
	}
	if opts.MaxFrameSize != 0 && (opts.MaxFrameSize < 16384 || opts.MaxFrameSize > 16777215) {
		return fmt.Errorf("MaxFrameSize must be between 16384 and 16777215 (RFC 7540), got %d", opts.MaxFrameSize)
	}
	if opts.InitialWindowSize > (1<<31 - 1) {
		return fmt.Errorf("InitialWindowSize must not exceed 2147483647 (2^31-1), got %d", opts.InitialWindowSize)
	}
	return nil
}
