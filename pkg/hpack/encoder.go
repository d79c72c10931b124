package hpack

// Encoder holds the dynamic table used to encode a single HPACK header
// block stream. Its dynamic table carries state across calls, so one
// Encoder belongs to exactly one HTTP/2 connection direction.
type Encoder struct {
	Dynamic *DynamicTable
}

// NewEncoder returns an Encoder with a dynamic table of the given byte budget.
func NewEncoder(tableSize int) *Encoder {
	return &Encoder{Dynamic: NewDynamicTable(tableSize)}
}

// find returns the 1-based combined-table index of the first entry whose
// name matches, or 0 if none.
func (e *Encoder) find(name string) int {
	if i := staticFind(name); i != 0 {
		return i
	}
	if i := e.Dynamic.find(name); i != -1 {
		return 1 + i + StaticTableLen
	}
	return 0
}

// findExact returns the 1-based combined-table index of the first entry
// matching both name and value, or 0 if none.
func (e *Encoder) findExact(name, value string) int {
	if i := staticFindExact(name, value); i != 0 {
		return i
	}
	if i := e.Dynamic.findExact(name, value); i != -1 {
		return 1 + i + StaticTableLen
	}
	return 0
}

func writeIndexed(out []byte, index int) []byte {
	return writeInt(out, index, 7, 0x80)
}

func writeIndexedName(out []byte, index int, value string, useHuff *bool) []byte {
	out = writeInt(out, index, 6, 0x40)
	return writeString(out, value, useHuff)
}

func writeNewIndexedName(out []byte, name, value string, useHuff *bool) []byte {
	out = writeInt(out, 0, 6, 0x40)
	out = writeString(out, name, useHuff)
	return writeString(out, value, useHuff)
}

func writeNotIndexed(out []byte, index int, value string, useHuff *bool) []byte {
	out = writeInt(out, index, 4, 0x00)
	return writeString(out, value, useHuff)
}

func writeNewNotIndexed(out []byte, name, value string, useHuff *bool) []byte {
	out = writeInt(out, 0, 4, 0x00)
	out = writeString(out, name, useHuff)
	return writeString(out, value, useHuff)
}

func writeNeverIndexed(out []byte, index int, value string, useHuff *bool) []byte {
	out = writeInt(out, index, 4, 0x10)
	return writeString(out, value, useHuff)
}

func writeNewNeverIndexed(out []byte, name, value string, useHuff *bool) []byte {
	out = writeInt(out, 0, 4, 0x10)
	out = writeString(out, name, useHuff)
	return writeString(out, value, useHuff)
}

// WriteTableSize emits a Dynamic Table Size Update representation.
func WriteTableSize(out []byte, newSize int) []byte {
	return writeInt(out, newSize, 5, 0x20)
}

// Encode appends the encoding of (name, value) to out, per the representation
// requested by htype. An exact (name, value) match in either table always
// wins and is emitted as Indexed (Lookup) regardless of htype. useHuff nil
// lets the string primitive pick whichever representation (plain or
// Huffman) is shorter.
func (e *Encoder) Encode(out []byte, htype HeaderType, name, value string, useHuff *bool) ([]byte, error) {
	if index := e.findExact(name, value); index != 0 {
		return writeIndexed(out, index), nil
	}

	if index := e.find(name); index != 0 {
		switch htype {
		case Lookup:
			return nil, errHpack("invalid type: header not in tables")
		case Indexed:
			out = writeIndexedName(out, index, value, useHuff)
			e.Dynamic.Add(name, value)
			return out, nil
		case NotIndexed:
			return writeNotIndexed(out, index, value, useHuff), nil
		case NeverIndexed:
			return writeNeverIndexed(out, index, value, useHuff), nil
		default:
			return nil, errHpack("invalid type: not available here")
		}
	}

	switch htype {
	case Lookup:
		return nil, errHpack("invalid type: header not in tables")
	case Indexed:
		out = writeNewIndexedName(out, name, value, useHuff)
		e.Dynamic.Add(name, value)
		return out, nil
	case NotIndexed:
		return writeNewNotIndexed(out, name, value, useHuff), nil
	case NeverIndexed:
		return writeNewNeverIndexed(out, name, value, useHuff), nil
	default:
		return nil, errHpack("invalid type: not available here")
	}
}

// EncodeAll encodes every header as NotIndexed, the stable-cache default.
func (e *Encoder) EncodeAll(headers []HeaderField) ([]byte, error) {
	var out []byte
	var err error
	for _, h := range headers {
		out, err = e.Encode(out, NotIndexed, h.Name, h.Value, nil)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeAllIndexed encodes every header as Indexed, maximizing compression
// on a stable header set at the cost of growing the dynamic table.
func (e *Encoder) EncodeAllIndexed(headers []HeaderField) ([]byte, error) {
	var out []byte
	var err error
	for _, h := range headers {
		out, err = e.Encode(out, Indexed, h.Name, h.Value, nil)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
