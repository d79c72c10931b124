package hpack

// Decoder holds the static and dynamic tables used to decode a single HPACK
// header block stream. Its dynamic table carries state across calls, so one
// Decoder belongs to exactly one HTTP/2 connection direction.
type Decoder struct {
	Dynamic *DynamicTable
}

// NewDecoder returns a Decoder with a dynamic table of the given byte budget.
func NewDecoder(tableSize int) *Decoder {
	return &Decoder{Dynamic: NewDynamicTable(tableSize)}
}

// Get resolves a 1-based HPACK index into the combined static+dynamic table
// space: 1..=ssize is static, ssize+1..=ssize+dsize is dynamic
// (most-recently-inserted first).
func (d *Decoder) Get(index int) (name, value string, ok bool) {
	ssize := StaticTableLen
	dsize := d.Dynamic.Len()

	if index >= 1 && index <= ssize {
		return staticGet(index - 1)
	}
	if index > ssize && index <= ssize+dsize {
		return d.Dynamic.Get(index - 1 - ssize)
	}
	return "", "", false
}

// Decode decodes one header representation starting at *pos, advancing it
// past the bytes consumed. TableSizeChange entries carry no name/value.
func (d *Decoder) Decode(buf []byte, pos *int) (HeaderField, error) {
	if *pos >= len(buf) {
		return HeaderField{}, errHpack("truncated header block")
	}
	first := buf[*pos]

	switch {
	case first&0x80 != 0:
		// 6.1 Indexed Header Field
		index, ok := readInt(buf, 7, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated index")
		}
		name, value, ok := d.Get(index)
		if !ok {
			return HeaderField{}, errHpack("invalid index")
		}
		return HeaderField{Type: Lookup, Name: name, Value: value}, nil

	case first&0xc0 == 0x40:
		// 6.2.1 Literal Header Field with Incremental Indexing
		index, ok := readInt(buf, 6, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated index")
		}
		name, ok := d.resolveName(buf, pos, index)
		if !ok {
			return HeaderField{}, errHpack("invalid name")
		}
		value, ok := readString(buf, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated value string")
		}
		d.Dynamic.Add(name, value)
		return HeaderField{Type: Indexed, Name: name, Value: value}, nil

	case first&0xf0 == 0x00:
		// 6.2.2 Literal Header Field without Indexing
		index, ok := readInt(buf, 4, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated index")
		}
		name, ok := d.resolveName(buf, pos, index)
		if !ok {
			return HeaderField{}, errHpack("invalid name")
		}
		value, ok := readString(buf, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated value string")
		}
		return HeaderField{Type: NotIndexed, Name: name, Value: value}, nil

	case first&0xf0 == 0x10:
		// 6.2.3 Literal Header Field Never Indexed
		index, ok := readInt(buf, 4, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated index")
		}
		name, ok := d.resolveName(buf, pos, index)
		if !ok {
			return HeaderField{}, errHpack("invalid name")
		}
		value, ok := readString(buf, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated value string")
		}
		return HeaderField{Type: NeverIndexed, Name: name, Value: value}, nil

	case first&0xe0 == 0x20:
		// 6.3 Dynamic Table Size Update
		newSize, ok := readInt(buf, 5, pos)
		if !ok {
			return HeaderField{}, errHpack("truncated table size update")
		}
		d.Dynamic.Resize(newSize)
		return HeaderField{Type: TableSizeChange}, nil

	default:
		return HeaderField{}, errHpack("invalid representation byte")
	}
}

func (d *Decoder) resolveName(buf []byte, pos *int, index int) (string, bool) {
	if index == 0 {
		return readString(buf, pos)
	}
	name, _, ok := d.Get(index)
	return name, ok
}

// DecodeAll decodes every representation in buf, skipping
// TableSizeChange entries from the returned list (they mutate decoder state
// but carry no header).
func (d *Decoder) DecodeAll(buf []byte) ([]HeaderField, error) {
	var out []HeaderField
	pos := 0
	for pos < len(buf) {
		f, err := d.Decode(buf, &pos)
		if err != nil {
			return nil, err
		}
		if f.Type != TableSizeChange {
			out = append(out, f)
		}
	}
	return out, nil
}
