package stream

import (
	"bytes"
	"testing"
)

func TestDuplexRoundTrip(t *testing.T) {
	a, b := Duplex()
	defer a.Shutdown()
	defer b.Shutdown()

	done := make(chan error, 1)
	go func() {
		done <- a.WriteAll([]byte("ping"))
	}()

	buf := make([]byte, 4)
	n, err := b.ReadSome(buf)
	if err != nil {
		t.Fatalf("ReadSome: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte("ping")) {
		t.Errorf("read %q, want %q", buf[:n], "ping")
	}
	if err := <-done; err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
}
