package http1

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

// TestReadChunkedBodyConsumesExactLengthPlusCRLF pins the chunk reader to
// the RFC 7230 §4.1 shape: the declared hex length's worth of bytes, then
// its own trailing CRLF, not length+1 bytes with no separate trailing read.
func TestReadChunkedBodyConsumesExactLengthPlusCRLF(t *testing.T) {
	wire := "5\r\nhello\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(wire))

	body, done, err := readChunkedBody(r, nil)
	if err != nil {
		t.Fatalf("readChunkedBody (first chunk): %v", err)
	}
	if done {
		t.Fatal("done = true after first chunk, want false")
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q, want %q", body, "hello")
	}

	body, done, err = readChunkedBody(r, body)
	if err != nil {
		t.Fatalf("readChunkedBody (terminator): %v", err)
	}
	if !done {
		t.Fatal("done = false after terminator chunk, want true")
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q, want %q", body, "hello")
	}
}

func TestReadChunkedBodyMultipleChunks(t *testing.T) {
	wire := "4\r\nwiki\r\n5\r\npedia\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(wire))

	var body []byte
	var done bool
	var err error
	for !done {
		body, done, err = readChunkedBody(r, body)
		if err != nil {
			t.Fatalf("readChunkedBody: %v", err)
		}
	}
	if string(body) != "wikipedia" {
		t.Fatalf("body = %q, want %q", body, "wikipedia")
	}
}

func TestGetChunkRoundTrip(t *testing.T) {
	chunk := getChunk([]byte("abc"))
	if !bytes.Equal(chunk, []byte("3\r\nabc\r\n")) {
		t.Errorf("getChunk = %q, want %q", chunk, "3\r\nabc\r\n")
	}

	r := bufio.NewReader(bytes.NewReader(append(chunk, lastChunk...)))
	body, done, err := readChunkedBody(r, nil)
	if err != nil {
		t.Fatalf("readChunkedBody: %v", err)
	}
	if done || string(body) != "abc" {
		t.Fatalf("got body=%q done=%v, want body=abc done=false", body, done)
	}
	_, done, err = readChunkedBody(r, body)
	if err != nil {
		t.Fatalf("readChunkedBody (terminator): %v", err)
	}
	if !done {
		t.Fatal("done = false on terminator chunk")
	}
}

func TestValidHeaderRejectsMalformedFieldName(t *testing.T) {
	if validHeader("bad header", "value") {
		t.Error("validHeader accepted a name containing a space")
	}
	if !validHeader("X-Custom", "value") {
		t.Error("validHeader rejected a well-formed header field")
	}
}

func TestSplitHeaderLine(t *testing.T) {
	name, value, ok := splitHeaderLine("Content-Type:  text/plain ")
	if !ok || name != "Content-Type" || value != "text/plain" {
		t.Errorf("got (%q, %q, %v), want (Content-Type, text/plain, true)", name, value, ok)
	}
	if _, _, ok := splitHeaderLine("no colon here"); ok {
		t.Error("splitHeaderLine accepted a line with no colon")
	}
}
