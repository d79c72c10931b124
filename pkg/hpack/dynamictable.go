package hpack

// dynamicEntry is one (name, value) row of a DynamicTable.
type dynamicEntry struct {
	name  string
	value string
}

// entrySize is the fixed RFC 7541 §4.1 per-entry overhead.
const entrySize = 32

// DynamicTable is the FIFO of recently inserted header entries with a
// byte-budget cap. Entries are kept most-recently-inserted first, matching
// HPACK's "recency order" indexing.
type DynamicTable struct {
	size      int
	tableSize int
	entries   []dynamicEntry
}

// NewDynamicTable returns an empty table with the given byte budget.
func NewDynamicTable(tableSize int) *DynamicTable {
	return &DynamicTable{tableSize: tableSize}
}

// Len returns the number of entries currently held.
func (t *DynamicTable) Len() int {
	return len(t.entries)
}

// Size returns the current computed byte size (Σ(len(name)+len(value)+32)).
func (t *DynamicTable) Size() int {
	return t.size
}

// TableSize returns the configured byte budget.
func (t *DynamicTable) TableSize() int {
	return t.tableSize
}

// Get returns the i-th (0-indexed, most-recent-first) entry.
func (t *DynamicTable) Get(i int) (name, value string, ok bool) {
	if i < 0 || i >= len(t.entries) {
		return "", "", false
	}
	e := t.entries[i]
	return e.name, e.value, true
}

// Add inserts a new entry at the front, then evicts from the back until the
// table fits its byte budget.
func (t *DynamicTable) Add(name, value string) {
	t.size += len(name) + len(value) + entrySize
	t.entries = append([]dynamicEntry{{name, value}}, t.entries...)
	t.evict()
}

func (t *DynamicTable) evict() {
	for t.size > t.tableSize && len(t.entries) > 0 {
		last := t.entries[len(t.entries)-1]
		t.entries = t.entries[:len(t.entries)-1]
		t.size -= len(last.name) + len(last.value) + entrySize
	}
}

// Resize changes the byte budget and evicts as needed.
func (t *DynamicTable) Resize(newSize int) {
	t.tableSize = newSize
	t.evict()
}

// find returns the 0-indexed position of the first entry whose name matches,
// or -1 if none.
func (t *DynamicTable) find(name string) int {
	for i, e := range t.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// findExact returns the 0-indexed position of the first entry matching both
// name and value, or -1 if none.
func (t *DynamicTable) findExact(name, value string) int {
	for i, e := range t.entries {
		if e.name == name && e.value == value {
			return i
		}
	}
	return -1
}
