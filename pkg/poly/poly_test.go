package poly

import (
	"testing"

	"github.com/kadircet/gohttpcore/pkg/http1"
	"github.com/kadircet/gohttpcore/pkg/http2"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

func TestWrapHTTP1RoundTrip(t *testing.T) {
	clientConn, serverConn := stream.Duplex()

	done := make(chan error, 1)
	go func() {
		sock := http1.NewSocket(serverConn, 0)
		client, err := sock.ReadUntilComplete()
		if err != nil {
			done <- err
			return
		}
		polySock := WrapHTTP1Socket(sock)
		polySock.SetStatus(200, "OK")
		done <- polySock.Send(client.Body)
	}()

	req := WrapHTTP1(http1.NewRequest(clientConn, 0))
	req.SetMethod("POST")
	req.SetPath("/poly")
	if err := req.AddHeader("X-Test", "1"); err != nil {
		t.Fatalf("AddHeader: %v", err)
	}
	if err := req.Send([]byte("via poly")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp, err := req.ReadUntilComplete()
	if err != nil {
		t.Fatalf("ReadUntilComplete: %v", err)
	}
	if string(resp.Body) != "via poly" {
		t.Errorf("Body = %q, want %q", resp.Body, "via poly")
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestWrapHTTP2RoundTrip(t *testing.T) {
	clientConn, serverConn := stream.Duplex()

	done := make(chan error, 1)
	go func() {
		session := http2.NewSession(serverConn, http2.ModeServer, http2.DefaultOptions())
		if err := session.ReadPreface(); err != nil {
			done <- err
			return
		}
		if err := session.SendSettings(); err != nil {
			done <- err
			return
		}
		for {
			ev, err := session.Next()
			if err != nil {
				done <- err
				return
			}
			if ev.Type == http2.FrameHeaders && ev.HeadersDone {
				sock := WrapHTTP2Socket(http2.NewSocket(session, ev.StreamID))
				if _, err := sock.ReadUntilHeadComplete(); err != nil {
					done <- err
					return
				}
				sock.SetStatus(204, "")
				done <- sock.Send(nil)
				return
			}
		}
	}()

	session := http2.NewSession(clientConn, http2.ModeClient, http2.DefaultOptions())
	if err := session.SendPreface(); err != nil {
		t.Fatalf("SendPreface: %v", err)
	}
	go func() {
		for {
			if _, err := session.Next(); err != nil {
				return
			}
		}
	}()

	if err := session.SendSettings(); err != nil {
		t.Fatalf("SendSettings: %v", err)
	}

	req := WrapHTTP2(http2.NewRequest(session))
	req.SetMethod("DELETE")
	req.SetScheme("https")
	req.SetPath("/poly")
	req.SetHost("example.invalid")
	if err := req.Send(nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	resp, err := req.ReadUntilHeadComplete()
	if err != nil {
		t.Fatalf("ReadUntilHeadComplete: %v", err)
	}
	if resp.Code != 204 {
		t.Errorf("Code = %d, want 204", resp.Code)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}
