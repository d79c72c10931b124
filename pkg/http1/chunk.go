package http1

import "strconv"

// getChunk renders body as one chunked-transfer-encoding chunk:
// hex(len) CRLF body CRLF.
func getChunk(body []byte) []byte {
	size := strconv.FormatInt(int64(len(body)), 16)
	out := make([]byte, 0, len(size)+2+len(body)+2)
	out = append(out, size...)
	out = append(out, '\r', '\n')
	out = append(out, body...)
	out = append(out, '\r', '\n')
	return out
}

// lastChunk is the terminating zero-length chunk.
var lastChunk = []byte("0\r\n\r\n")
