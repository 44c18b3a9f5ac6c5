package hdraft

// unlinkedIndex marks an entry not currently linked into any table slot.
// nghttp2_hd_entry (original_source/lib/nghttp2_hd.h) carries a single
// uint8_t index field and a distinguished NGHTTP2_HD_INVALID_INDEX (255,
// chosen because the table capacity never exceeds 128) rather than a
// separate linked bit; this follows the same one-field approach, using
// -1 as the out-of-range sentinel since Go's index is a signed int.
const unlinkedIndex = -1

// entry is a header table slot: an immutable name/value pair once
// constructed. Go's garbage collector owns the underlying memory, so
// there is no manual arena here — refcount exists purely to track which
// entries an in-flight emit set or output array still needs after the
// table itself has evicted them, not to gate deallocation.
type entry struct {
	name, value string
	size        int // len(name) + len(value) + EntryOverhead
	index       int // current abstract table position; unlinkedIndex while unlinked
	refcount    int // holders keeping this entry alive past eviction
	flags       entryFlags
}

func entrySize(name, value string) int {
	return len(name) + len(value) + EntryOverhead
}

// newEntry builds an unlinked entry with an initial refcount of zero. The
// caller (table.insert) links it and gives it the table's own refcount of 1.
func newEntry(name, value string, flags entryFlags) *entry {
	return &entry{
		name:  name,
		value: value,
		size:  entrySize(name, value),
		index: unlinkedIndex,
		flags: flags,
	}
}

func (e *entry) linked() bool { return e.index != unlinkedIndex }

func (e *entry) header() HeaderField {
	return HeaderField{Name: e.name, Value: e.value}
}

// acquire records an additional holder (deflater emit set, or an inflater
// output array) keeping e alive past its table slot.
func (e *entry) acquire() {
	e.refcount++
}

// release drops a holder's claim. Once refcount reaches zero and the entry
// is no longer linked in any table, it is eligible for collection — which,
// under Go's GC, simply means no more live references point to it.
func (e *entry) release() {
	if e.refcount > 0 {
		e.refcount--
	}
}

func (e *entry) setInRefSet(v bool) {
	if v {
		e.flags |= flagInRefSet
	} else {
		e.flags &^= flagInRefSet
	}
}

func (e *entry) inRefSet() bool { return e.flags.has(flagInRefSet) }

func (e *entry) setEmittedThisBlock(v bool) {
	if v {
		e.flags |= flagEmittedThisBlock
	} else {
		e.flags &^= flagEmittedThisBlock
	}
}

func (e *entry) emittedThisBlock() bool { return e.flags.has(flagEmittedThisBlock) }

func (e *entry) setImplicitEmit(v bool) {
	if v {
		e.flags |= flagImplicitEmit
	} else {
		e.flags &^= flagImplicitEmit
	}
}

func (e *entry) implicitEmit() bool { return e.flags.has(flagImplicitEmit) }
