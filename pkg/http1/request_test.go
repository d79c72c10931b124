package http1

import (
	"fmt"
	"testing"

	"github.com/kadircet/gohttpcore/pkg/stream"
)

func TestRequestSocketRoundTripContentLength(t *testing.T) {
	clientConn, serverConn := stream.Duplex()

	done := make(chan error, 1)
	go func() {
		sock := NewSocket(serverConn, 0)
		client, err := sock.ReadUntilComplete()
		if err != nil {
			done <- err
			return
		}
		if client.Method.String() != "POST" || client.Path != "/submit" {
			done <- fmt.Errorf("unexpected request line: %s %s", client.Method.String(), client.Path)
			return
		}
		sock.SetStatus(201, "Created")
		done <- sock.Send(append([]byte("got: "), client.Body...))
	}()

	req := NewRequest(clientConn, 0)
	req.SetMethod("POST")
	req.SetPath("/submit")
	if err := req.Send([]byte("payload")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp, err := req.ReadUntilComplete()
	if err != nil {
		t.Fatalf("ReadUntilComplete: %v", err)
	}
	if resp.Code != 201 {
		t.Errorf("Code = %d, want 201", resp.Code)
	}
	if string(resp.Body) != "got: payload" {
		t.Errorf("Body = %q, want %q", resp.Body, "got: payload")
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestRequestSocketRoundTripChunked(t *testing.T) {
	clientConn, serverConn := stream.Duplex()

	done := make(chan error, 1)
	go func() {
		sock := NewSocket(serverConn, 0)
		client, err := sock.ReadUntilComplete()
		if err != nil {
			done <- err
			return
		}
		sock.SetStatus(200, "OK")
		if err := sock.Write(client.Body[:4]); err != nil {
			done <- err
			return
		}
		done <- sock.Send(client.Body[4:])
	}()

	req := NewRequest(clientConn, 0)
	req.SetMethod("PUT")
	req.SetPath("/upload")
	if err := req.Write([]byte("first-")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := req.Send([]byte("second-part")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	resp, err := req.ReadUntilComplete()
	if err != nil {
		t.Fatalf("ReadUntilComplete: %v", err)
	}
	if string(resp.Body) != "first-second-part" {
		t.Errorf("Body = %q, want %q", resp.Body, "first-second-part")
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}
