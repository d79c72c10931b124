// Package poly renders the source's tagged Poly* request/socket variants as
// a small Go interface satisfied by two concrete wrapper types, so call
// sites can stay version-agnostic without a type switch in the hot path.
package poly

import (
	"github.com/kadircet/gohttpcore/pkg/http1"
	"github.com/kadircet/gohttpcore/pkg/http2"
	"github.com/kadircet/gohttpcore/pkg/model"
)

// PolyHttpRequest is the client-role capability set shared by http1.Request
// and http2.Request.
type PolyHttpRequest interface {
	GetType() string
	GetResponse() *model.HttpResponse
	ReadUntilHeadComplete() (*model.HttpResponse, error)
	ReadUntilComplete() (*model.HttpResponse, error)
	AddHeader(name, value string) error
	SetHeader(name, value string) error
	DelHeader(name string)
	SetMethod(method string)
	SetScheme(scheme string)
	SetPath(path string)
	SetHost(host string)
	Write(chunk []byte) error
	Send(body []byte) error
	Close() error
	Flush() error
}

// PolyHttpSocket is the server-role capability set shared by http1.Socket and
// http2.Socket.
type PolyHttpSocket interface {
	GetType() string
	GetClient() *model.HttpClient
	ReadUntilHeadComplete() (*model.HttpClient, error)
	ReadUntilComplete() (*model.HttpClient, error)
	AddHeader(name, value string) error
	SetHeader(name, value string) error
	DelHeader(name string)
	SetStatus(code int, status string)
	Write(chunk []byte) error
	Send(body []byte) error
	Close() error
	Flush() error
}

type http1Request struct{ r *http1.Request }

// WrapHTTP1 adapts an *http1.Request to PolyHttpRequest. HTTP/1 has no
// explicit :scheme pseudo-header, so SetScheme is a no-op; SetHost sets the
// Host header instead of a pseudo-header.
func WrapHTTP1(r *http1.Request) PolyHttpRequest { return http1Request{r} }

func (w http1Request) GetType() string                                    { return w.r.GetType() }
func (w http1Request) GetResponse() *model.HttpResponse                   { return w.r.GetResponse() }
func (w http1Request) ReadUntilHeadComplete() (*model.HttpResponse, error) { return w.r.ReadUntilHeadComplete() }
func (w http1Request) ReadUntilComplete() (*model.HttpResponse, error)     { return w.r.ReadUntilComplete() }
func (w http1Request) AddHeader(name, value string) error                 { return w.r.AddHeader(name, value) }
func (w http1Request) SetHeader(name, value string) error                 { return w.r.SetHeader(name, value) }
func (w http1Request) DelHeader(name string)                              { w.r.DelHeader(name) }
func (w http1Request) SetMethod(method string)                            { w.r.SetMethod(method) }
func (w http1Request) SetScheme(scheme string)                            {}
func (w http1Request) SetPath(path string)                                { w.r.SetPath(path) }
func (w http1Request) SetHost(host string)                                { _ = w.r.SetHeader("Host", host) }
func (w http1Request) Write(chunk []byte) error                           { return w.r.Write(chunk) }
func (w http1Request) Send(body []byte) error                             { return w.r.Send(body) }
func (w http1Request) Close() error                                       { return w.r.Close() }
func (w http1Request) Flush() error                                       { return w.r.Flush() }

type http2Request struct{ r *http2.Request }

// WrapHTTP2 adapts an *http2.Request to PolyHttpRequest.
func WrapHTTP2(r *http2.Request) PolyHttpRequest { return http2Request{r} }

func (w http2Request) GetType() string                                    { return w.r.GetType() }
func (w http2Request) GetResponse() *model.HttpResponse                   { return w.r.GetResponse() }
func (w http2Request) ReadUntilHeadComplete() (*model.HttpResponse, error) {
	return w.r.GetResponse(), w.r.ReadUntilHeadComplete()
}
func (w http2Request) ReadUntilComplete() (*model.HttpResponse, error) {
	return w.r.GetResponse(), w.r.ReadUntilComplete()
}
func (w http2Request) AddHeader(name, value string) error { w.r.AddHeader(name, value); return nil }
func (w http2Request) SetHeader(name, value string) error { w.r.SetHeader(name, value); return nil }
func (w http2Request) DelHeader(name string)               { w.r.DelHeader(name) }
func (w http2Request) SetMethod(method string)              { w.r.SetMethod(method) }
func (w http2Request) SetScheme(scheme string)               { w.r.SetScheme(scheme) }
func (w http2Request) SetPath(path string)                    { w.r.SetPath(path) }
func (w http2Request) SetHost(host string)                     { w.r.SetHost(host) }
func (w http2Request) Write(chunk []byte) error                { return w.r.Write(chunk) }
func (w http2Request) Send(body []byte) error                   { return w.r.Send(body) }
func (w http2Request) Close() error                               { return w.r.Close() }
func (w http2Request) Flush() error                                { return w.r.Flush() }

type http1Socket struct{ s *http1.Socket }

// WrapHTTP1Socket adapts an *http1.Socket to PolyHttpSocket.
func WrapHTTP1Socket(s *http1.Socket) PolyHttpSocket { return http1Socket{s} }

func (w http1Socket) GetType() string                                  { return w.s.GetType() }
func (w http1Socket) GetClient() *model.HttpClient                    { return w.s.GetClient() }
func (w http1Socket) ReadUntilHeadComplete() (*model.HttpClient, error) { return w.s.ReadUntilHeadComplete() }
func (w http1Socket) ReadUntilComplete() (*model.HttpClient, error)     { return w.s.ReadUntilComplete() }
func (w http1Socket) AddHeader(name, value string) error               { return w.s.AddHeader(name, value) }
func (w http1Socket) SetHeader(name, value string) error               { return w.s.SetHeader(name, value) }
func (w http1Socket) DelHeader(name string)                            { w.s.DelHeader(name) }
func (w http1Socket) SetStatus(code int, status string)                { w.s.SetStatus(code, status) }
func (w http1Socket) Write(chunk []byte) error                         { return w.s.Write(chunk) }
func (w http1Socket) Send(body []byte) error                           { return w.s.Send(body) }
func (w http1Socket) Close() error                                     { return w.s.Close() }
func (w http1Socket) Flush() error                                     { return w.s.Flush() }

type http2Socket struct{ s *http2.Socket }

// WrapHTTP2Socket adapts an *http2.Socket to PolyHttpSocket. HTTP/2 has no
// reason phrase, so the status string is dropped.
func WrapHTTP2Socket(s *http2.Socket) PolyHttpSocket { return http2Socket{s} }

func (w http2Socket) GetType() string               { return w.s.GetType() }
func (w http2Socket) GetClient() *model.HttpClient { return w.s.GetClient() }
func (w http2Socket) ReadUntilHeadComplete() (*model.HttpClient, error) {
	return w.s.GetClient(), w.s.ReadUntilHeadComplete()
}
func (w http2Socket) ReadUntilComplete() (*model.HttpClient, error) {
	return w.s.GetClient(), w.s.ReadUntilComplete()
}
func (w http2Socket) AddHeader(name, value string) error { w.s.AddHeader(name, value); return nil }
func (w http2Socket) SetHeader(name, value string) error { w.s.SetHeader(name, value); return nil }
func (w http2Socket) DelHeader(name string)              { w.s.DelHeader(name) }
func (w http2Socket) SetStatus(code int, status string)  { w.s.SetStatus(code) }
func (w http2Socket) Write(chunk []byte) error            { return w.s.Write(chunk) }
func (w http2Socket) Send(body []byte) error               { return w.s.Send(body) }
func (w http2Socket) Close() error                           { return w.s.Close() }
func (w http2Socket) Flush() error                            { return w.s.Flush() }
