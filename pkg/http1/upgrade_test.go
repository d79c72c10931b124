package http1

import (
	"testing"

	"github.com/kadircet/gohttpcore/pkg/http2"
	"github.com/kadircet/gohttpcore/pkg/stream"
)

func TestUpgradeH2CThenExchangeOneStream(t *testing.T) {
	clientConn, serverConn := stream.Duplex()

	serverErr := make(chan error, 1)
	go func() {
		sock := NewSocket(serverConn, 0)
		if _, err := sock.ReadUntilHeadComplete(); err != nil {
			serverErr <- err
			return
		}
		session, err := sock.UpgradeH2C(http2.DefaultOptions())
		if err != nil {
			serverErr <- err
			return
		}
		if err := session.ReadPreface(); err != nil {
			serverErr <- err
			return
		}
		if err := session.SendSettings(); err != nil {
			serverErr <- err
			return
		}
		for {
			ev, err := session.Next()
			if err != nil {
				serverErr <- err
				return
			}
			if ev.Type == http2.FrameHeaders && ev.HeadersDone {
				h2sock := http2.NewSocket(session, ev.StreamID)
				if err := h2sock.ReadUntilHeadComplete(); err != nil {
					serverErr <- err
					return
				}
				h2sock.SetStatus(200)
				serverErr <- h2sock.Send([]byte("upgraded"))
				return
			}
		}
	}()

	req := NewRequest(clientConn, 0)
	req.SetMethod("GET")
	req.SetPath("/")
	if err := req.SetHeader("Connection", "upgrade"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if err := req.SetHeader("Upgrade", "h2c"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if err := req.Send(nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp, err := req.ReadUntilHeadComplete()
	if err != nil {
		t.Fatalf("ReadUntilHeadComplete: %v", err)
	}
	if resp.Code != 101 {
		t.Fatalf("Code = %d, want 101", resp.Code)
	}

	session := http2.NewSession(promote(req.netr, req.netw), http2.ModeClient, http2.DefaultOptions())
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

	h2req := http2.NewRequest(session)
	h2req.SetMethod("GET")
	h2req.SetScheme("http")
	h2req.SetPath("/")
	h2req.SetHost("example.invalid")
	if err := h2req.Send(nil); err != nil {
		t.Fatalf("h2 Send: %v", err)
	}
	if err := h2req.ReadUntilComplete(); err != nil {
		t.Fatalf("h2 ReadUntilComplete: %v", err)
	}
	if string(h2req.GetResponse().Body) != "upgraded" {
		t.Errorf("Body = %q, want %q", h2req.GetResponse().Body, "upgraded")
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestUpgradeWebSocketStrictHandshake(t *testing.T) {
	clientConn, serverConn := stream.Duplex()

	serverErr := make(chan error, 1)
	go func() {
		sock := NewSocket(serverConn, 0)
		if _, err := sock.ReadUntilHeadComplete(); err != nil {
			serverErr <- err
			return
		}
		ws, err := sock.UpgradeWebSocket()
		if err != nil {
			serverErr <- err
			return
		}
		f, err := ws.ReadFrame()
		if err != nil {
			serverErr <- err
			return
		}
		serverErr <- ws.SendText(f.GetUnmasked())
	}()

	req := NewRequest(clientConn, 0)
	req.SetMethod("GET")
	req.SetPath("/chat")
	ws, err := req.WebsocketStrict()
	if err != nil {
		t.Fatalf("WebsocketStrict: %v", err)
	}

	if err := ws.SendTextMasked([]byte{1, 2, 3, 4}, []byte("ping")); err != nil {
		t.Fatalf("SendTextMasked: %v", err)
	}
	f, err := ws.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(f.GetUnmasked()) != "ping" {
		t.Errorf("payload = %q, want %q", f.GetUnmasked(), "ping")
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("server: %v", err)
	}
}
