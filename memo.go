package pegrun

// memoKey identifies one left-recursion memo slot: a call to production at
// instruction address `addr`, entered with the cursor at `cursor`
// (spec.md §3 "VM state... left-recursion memo keyed by (production
// address, cursor at entry)").
type memoKey struct {
	addr   int
	cursor int
}

// memoEntry is the Go rendering of the Rust original's LR table entry
// (SPEC_FULL.md §C.1): `cursor` is either the last successful cursor this
// production grew to, or -1 while the entry is still seeded (no growth has
// happened yet). precedence is the precedence level the entry is currently
// bound at — it only ever rises, per spec.md §4.3's Return rule ("raise its
// precedence to the caller's"). iteration counts completed growth steps,
// surfaced only for diagnostics.
type memoEntry struct {
	cursor     int
	seeded     bool
	precedence int
	iteration  int

	// value caches the accumulated node produced by the most recent
	// successful growth step, so a later skip-call (spec.md §4.3 step 4)
	// or finalize (Return's "otherwise" branch) can contribute it without
	// re-deriving it from raw capture buffers that no longer exist.
	value Value
}

// memoTable is the VM's left-recursion memo. spec.md §8 requires it to be
// empty again "after a complete parse (success or hard failure)" — entries
// are removed by finalizeLR once the outermost iteration stops growing,
// and also evicted during fail-unwind for any entry still seeded.
type memoTable struct {
	entries map[memoKey]*memoEntry
}

func newMemoTable() *memoTable {
	return &memoTable{entries: map[memoKey]*memoEntry{}}
}

func (m *memoTable) get(key memoKey) (*memoEntry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

func (m *memoTable) seed(key memoKey, precedence int) *memoEntry {
	e := &memoEntry{cursor: -1, seeded: true, precedence: precedence}
	m.entries[key] = e
	return e
}

func (m *memoTable) evict(key memoKey) {
	delete(m.entries, key)
}

func (m *memoTable) empty() bool {
	return len(m.entries) == 0
}
