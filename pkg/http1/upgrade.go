package http1

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"

	"github.com/kadircet/gohttpcore/pkg/constants"
	"github.com/kadircet/gohttpcore/pkg/errors"
	"github.com/kadircet/gohttpcore/pkg/http2"
	"github.com/kadircet/gohttpcore/pkg/websocket"
)

const (
	h2cUpgradeResponse = "HTTP/1.1 101 Switching Protocols\r\nConnection: Upgrade\r\nUpgrade: h2c\r\n\r\n"
	wsUpgradePrefix     = "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Accept: "
)

func acceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(constants.WebSocketMagic))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// UpgradeH2C emits the fixed h2c 101 response, then hands the underlying
// bytes to a new server-mode Http2Session.
func (s *Socket) UpgradeH2C(opts *http2.Options) (*http2.Session, error) {
	if err := s.netw.WriteAll([]byte(h2cUpgradeResponse)); err != nil {
		return nil, errors.NewIoError("http1.Socket.UpgradeH2C", "writing upgrade response", err)
	}
	conn := promote(s.netr, s.netw)
	return http2.NewSession(conn, http2.ModeServer, opts), nil
}

// Http2PriorKnowledge validates that the connection preface arrives next on
// this socket and, if so, promotes it to a server-mode Http2Session without
// emitting any HTTP/1 response.
func (s *Socket) Http2PriorKnowledge(opts *http2.Options) (*http2.Session, error) {
	conn := promote(s.netr, s.netw)
	session := http2.NewSession(conn, http2.ModeServer, opts)
	if err := session.ReadPreface(); err != nil {
		return nil, errors.NewInvalidUpgradeError("http1.Socket.Http2PriorKnowledge", "preface mismatch")
	}
	return session, nil
}

// UpgradeWebSocket emits the 101 response computed from the client's
// Sec-WebSocket-Key (already read from s.client.Headers), then hands the
// underlying bytes to a new WebSocket socket.
func (s *Socket) UpgradeWebSocket() (*websocket.Socket, error) {
	key, ok := s.client.Headers.Get("sec-websocket-key")
	if !ok {
		return nil, errors.NewInvalidUpgradeError("http1.Socket.UpgradeWebSocket", "missing Sec-WebSocket-Key")
	}
	resp := wsUpgradePrefix + acceptKey(key) + "\r\n\r\n"
	if err := s.netw.WriteAll([]byte(resp)); err != nil {
		return nil, errors.NewIoError("http1.Socket.UpgradeWebSocket", "writing upgrade response", err)
	}
	return websocket.New(promote(s.netr, s.netw)), nil
}

// websocketUpgrade sends the client-side upgrade request headers (a random
// 16-byte key) and returns the base64 key string for accept-key verification.
func (r *Request) websocketUpgrade() (string, error) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return "", errors.NewIoError("http1.Request.websocketUpgrade", "generating key", err)
	}
	wsKey := base64.StdEncoding.EncodeToString(key)

	r.headers.Set("Connection", "upgrade")
	r.headers.Set("Upgrade", "websocket")
	r.headers.Set("Sec-WebSocket-Version", "13")
	r.headers.Set("Sec-WebSocket-Key", wsKey)

	if err := r.Send(nil); err != nil {
		return "", err
	}
	return wsKey, nil
}

func (r *Request) websocketDirect() *websocket.Socket {
	return websocket.New(promote(r.netr, r.netw))
}

// WebsocketUnchecked sends the upgrade request and immediately returns a
// WebSocket without reading or validating any response.
func (r *Request) WebsocketUnchecked() (*websocket.Socket, error) {
	if _, err := r.websocketUpgrade(); err != nil {
		return nil, err
	}
	return r.websocketDirect(), nil
}

// WebsocketLazy sends the upgrade request and waits for the response head,
// requiring only a 101 status.
func (r *Request) WebsocketLazy() (*websocket.Socket, error) {
	if _, err := r.websocketUpgrade(); err != nil {
		return nil, err
	}
	res, err := r.ReadUntilHeadComplete()
	if err != nil {
		return nil, err
	}
	if res.Code != 101 {
		return nil, errors.NewNotAcceptedError("http1.Request.WebsocketLazy", "non-101 response")
	}
	return r.websocketDirect(), nil
}

// WebsocketStrict sends the upgrade request, waits for the response head, and
// verifies Sec-WebSocket-Accept against the expected value computed from the
// client key, failing with InvalidUpgrade on any mismatch.
func (r *Request) WebsocketStrict() (*websocket.Socket, error) {
	key, err := r.websocketUpgrade()
	if err != nil {
		return nil, err
	}
	expected := acceptKey(key)

	res, err := r.ReadUntilHeadComplete()
	if err != nil {
		return nil, err
	}
	if res.Code != 101 {
		return nil, errors.NewNotAcceptedError("http1.Request.WebsocketStrict", "non-101 response")
	}
	got, ok := res.Headers.Get("sec-websocket-accept")
	if !ok || got != expected {
		return nil, errors.NewInvalidUpgradeError("http1.Request.WebsocketStrict", "Sec-WebSocket-Accept mismatch")
	}
	return r.websocketDirect(), nil
}
