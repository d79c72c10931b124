package websocket

import (
	"bytes"
	"testing"

	"github.com/kadircet/gohttpcore/pkg/stream"
)

func TestSocketSendTextUsesRFCOpcode(t *testing.T) {
	client, server := stream.Duplex()
	defer client.Shutdown()
	defer server.Shutdown()

	a, b := New(client), New(server)

	errc := make(chan error, 1)
	go func() { errc <- a.SendText([]byte("hi")) }()

	f, err := b.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if f.Opcode != OpcodeText {
		t.Errorf("Opcode = %v, want OpcodeText (RFC 6455 value 1)", f.Opcode)
	}
	if !bytes.Equal(f.GetUnmasked(), []byte("hi")) {
		t.Errorf("payload = %q, want %q", f.GetUnmasked(), "hi")
	}
}

func TestSocketSendBinaryUsesRFCOpcode(t *testing.T) {
	client, server := stream.Duplex()
	defer client.Shutdown()
	defer server.Shutdown()

	a, b := New(client), New(server)

	errc := make(chan error, 1)
	go func() { errc <- a.SendBinary([]byte{0xde, 0xad}) }()

	f, err := b.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("SendBinary: %v", err)
	}
	if f.Opcode != OpcodeBinary {
		t.Errorf("Opcode = %v, want OpcodeBinary (RFC 6455 value 2)", f.Opcode)
	}
}

func TestSocketReadFrameLongPayload(t *testing.T) {
	client, server := stream.Duplex()
	defer client.Shutdown()
	defer server.Shutdown()

	a, b := New(client), New(server)
	payload := bytes.Repeat([]byte{0x5a}, 70000) // forces the 8-byte extended length form

	errc := make(chan error, 1)
	go func() { errc <- a.SendBinary(payload) }()

	f, err := b.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("SendBinary: %v", err)
	}
	if !bytes.Equal(f.GetUnmasked(), payload) {
		t.Errorf("payload length = %d, want %d", len(f.GetUnmasked()), len(payload))
	}
}

func TestSocketSendCloseRejectsOverlongReason(t *testing.T) {
	client, server := stream.Duplex()
	defer client.Shutdown()
	defer server.Shutdown()

	a := New(client)
	_ = server
	if err := a.SendClose(1000, bytes.Repeat([]byte{'x'}, 200)); err == nil {
		t.Fatal("SendClose succeeded with an overlong reason, want error")
	}
}
