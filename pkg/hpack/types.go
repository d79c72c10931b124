package hpack

// HeaderType tags the five HPACK representation forms a header pair may be
// encoded or decoded as (RFC 7541 §6).
type HeaderType int

const (
	// Lookup is an Indexed Header Field read back from either table (§6.1).
	Lookup HeaderType = iota
	// Indexed requests Literal Header Field with Incremental Indexing (§6.2.1).
	Indexed
	// NotIndexed requests Literal Header Field without Indexing (§6.2.2).
	NotIndexed
	// NeverIndexed requests Literal Header Field Never Indexed (§6.2.3).
	NeverIndexed
	// TableSizeChange is a Dynamic Table Size Update (§6.3).
	TableSizeChange
)

// HeaderField is a decoded (name, value) pair together with the
// representation it arrived as.
type HeaderField struct {
	Type  HeaderType
	Name  string
	Value string
}
