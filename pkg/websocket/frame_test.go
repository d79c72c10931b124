package websocket

import (
	"bytes"
	"testing"
)

func TestCreateParseFrameRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		fin     bool
		opcode  byte
		mask    []byte
		payload []byte
	}{
		{"unmasked-text", true, 0x1, nil, []byte("hello")},
		{"masked-text", true, 0x1, []byte{0x12, 0x34, 0x56, 0x78}, []byte("hello, websocket")},
		{"masked-empty", true, 0x1, []byte{0xde, 0xad, 0xbe, 0xef}, nil},
		{"masked-binary-long", true, 0x2, []byte{1, 2, 3, 4}, bytes.Repeat([]byte{0xab}, 200)},
		{"fragment-continuation", false, 0x0, nil, []byte("part")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wire := CreateFrame(c.fin, 0, c.opcode, c.mask, c.payload)
			f, err := ParseFrame(wire)
			if err != nil {
				t.Fatalf("ParseFrame: %v", err)
			}
			if f.Fin != c.fin {
				t.Errorf("Fin = %v, want %v", f.Fin, c.fin)
			}
			if f.OpcodeByte != c.opcode {
				t.Errorf("OpcodeByte = %#x, want %#x", f.OpcodeByte, c.opcode)
			}
			got := f.GetUnmasked()
			if !bytes.Equal(got, c.payload) && !(len(got) == 0 && len(c.payload) == 0) {
				t.Errorf("GetUnmasked() = %x, want %x", got, c.payload)
			}
		})
	}
}

func TestMaskingIsInvolution(t *testing.T) {
	mask := []byte{0x01, 0x02, 0x03, 0x04}
	payload := []byte("round trip through XOR masking twice")

	masked := CreateFrame(true, 0, 0x2, mask, payload)
	f, err := ParseFrame(masked)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	unmasked := f.UnmaskInPlace()
	if !bytes.Equal(unmasked, payload) {
		t.Errorf("UnmaskInPlace() = %q, want %q", unmasked, payload)
	}
}

func TestControlFrameOversizedRejected(t *testing.T) {
	oversized := bytes.Repeat([]byte{0x20}, 126)
	wire := CreateFrame(true, 0, 0x9, nil, oversized)
	if _, err := ParseFrame(wire); err == nil {
		t.Fatal("ParseFrame succeeded on an oversized ping payload, want error")
	}
}

func TestControlFrameFragmentedRejected(t *testing.T) {
	wire := CreateFrame(false, 0, 0x8, nil, []byte("x"))
	if _, err := ParseFrame(wire); err == nil {
		t.Fatal("ParseFrame succeeded on a fragmented close frame, want error")
	}
}

func TestCloseFramePayloadShape(t *testing.T) {
	code := uint16(1000)
	reason := []byte("message")
	payload := append([]byte{byte(code >> 8), byte(code)}, reason...)

	wire := CreateFrame(true, 0, 0x8, nil, payload)
	f, err := ParseFrame(wire)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	got := f.GetUnmasked()
	gotCode := uint16(got[0])<<8 | uint16(got[1])
	if gotCode != code {
		t.Errorf("code = %d, want %d", gotCode, code)
	}
	if !bytes.Equal(got[2:], reason) {
		t.Errorf("reason = %q, want %q", got[2:], reason)
	}
}
