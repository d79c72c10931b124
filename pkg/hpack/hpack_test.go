package hpack

import (
	"bytes"
	"testing"
)

// TestEncodeDecodeRoundTrip exercises EncodeAll (literal, no dynamic
// indexing) against an independent Decoder of the same table size.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	headers := []HeaderField{
		{Type: NotIndexed, Name: ":method", Value: "GET"},
		{Type: NotIndexed, Name: ":path", Value: "/resource"},
		{Type: NotIndexed, Name: "custom-key", Value: "custom-value"},
	}

	enc := NewEncoder(4096)
	buf, err := enc.EncodeAll(headers)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}

	dec := NewDecoder(4096)
	got, err := dec.DecodeAll(buf)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(got) != len(headers) {
		t.Fatalf("got %d fields, want %d", len(got), len(headers))
	}
	for i, h := range headers {
		if got[i].Name != h.Name || got[i].Value != h.Value {
			t.Errorf("field %d = %+v, want %+v", i, got[i], h)
		}
	}
}

func TestEncodeAllIndexedReusesDynamicTable(t *testing.T) {
	headers := []HeaderField{
		{Type: Indexed, Name: "x-trace-id", Value: "abc123"},
	}

	enc := NewEncoder(4096)
	first, err := enc.EncodeAllIndexed(headers)
	if err != nil {
		t.Fatalf("first EncodeAllIndexed: %v", err)
	}
	second, err := enc.EncodeAllIndexed(headers)
	if err != nil {
		t.Fatalf("second EncodeAllIndexed: %v", err)
	}

	// Once the pair is in the dynamic table, re-encoding the same field
	// should produce a shorter (indexed) representation than the first,
	// literal-with-indexing encoding.
	if len(second) >= len(first) {
		t.Errorf("second encoding (%d bytes) not shorter than first (%d bytes)", len(second), len(first))
	}

	dec := NewDecoder(4096)
	if _, err := dec.DecodeAll(first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	got, err := dec.DecodeAll(second)
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if got[0].Name != "x-trace-id" || got[0].Value != "abc123" {
		t.Errorf("decoded %+v, want x-trace-id: abc123", got[0])
	}
}

// TestStaticTableLookup spot-checks a couple of well-known static table
// entries against RFC 7541 Appendix A.
func TestStaticTableLookup(t *testing.T) {
	dec := NewDecoder(4096)
	name, value, ok := dec.Get(2)
	if !ok || name != ":method" || value != "GET" {
		t.Errorf("index 2 = (%q, %q, %v), want (:method, GET, true)", name, value, ok)
	}
	name, value, ok = dec.Get(8)
	if !ok || name != ":status" || value != "200" {
		t.Errorf("index 8 = (%q, %q, %v), want (:status, 200, true)", name, value, ok)
	}
}

func TestHuffmanRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"www.example.com",
		"no-cache",
		"custom-key",
		"a value with spaces and 123 numbers!",
	}
	for _, s := range cases {
		encoded := HuffmanEncode([]byte(s))
		decoded, err := HuffmanDecode(encoded)
		if err != nil {
			t.Fatalf("HuffmanDecode(%q): %v", s, err)
		}
		if !bytes.Equal(decoded, []byte(s)) {
			t.Errorf("round trip %q -> %x -> %q", s, encoded, decoded)
		}
	}
}

func TestTableSizeChange(t *testing.T) {
	enc := NewEncoder(4096)
	buf := WriteTableSize(nil, 0)
	buf, err := enc.Encode(buf, NotIndexed, ":method", "GET", nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := NewDecoder(4096)
	pos := 0
	first, err := dec.Decode(buf, &pos)
	if err != nil {
		t.Fatalf("Decode first: %v", err)
	}
	second, err := dec.Decode(buf, &pos)
	if err != nil {
		t.Fatalf("Decode second: %v", err)
	}
	if first.Type != TableSizeChange || second.Name != ":method" || second.Value != "GET" {
		t.Errorf("got [%+v, %+v], want [TableSizeChange, :method: GET]", first, second)
	}
}
