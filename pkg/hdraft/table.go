package hdraft

// table is the dynamic, byte-budgeted FIFO, plus the side's static table
// concatenated after it in the index space. order[0] is the most recently
// inserted entry; order[len-1] is the oldest: entries are numbered from 0
// through len-1, and the oldest entry lives at abstract index len-1.
//
// Wire indices (as carried on the wire) are 1-based: 0 is reserved as the
// Indexed representation's reference-set-clear sentinel and as the "new
// name" sentinel on every literal form. Wire index k (k>=1) names
// abstract/0-based position k-1 in the concatenated dynamic++static space.
type table struct {
	side      Side
	order     []*entry
	byteUsage int
	budget    int
	capacity  int
	maxEntry  int
}

func newTable(cfg Config) *table {
	return &table{
		side:     cfg.Side,
		budget:   cfg.MaxBufferSize,
		capacity: cfg.TableCapacity,
		maxEntry: cfg.MaxEntrySize,
		order:    make([]*entry, 0, cfg.TableCapacity),
	}
}

func (t *table) dynamicLen() int { return len(t.order) }

func (t *table) staticLen() int { return len(staticTableFor(t.side)) }

// reindex refreshes every linked entry's abstract index after a
// structural change to order.
func (t *table) reindex() {
	for i, e := range t.order {
		e.index = i
	}
}

// evictOldest clears IN_REFSET, unlinks, and drops the table's own
// refcount hold — the entry survives if another holder still has it
// acquired.
func (t *table) evictOldest() {
	if len(t.order) == 0 {
		return
	}
	last := len(t.order) - 1
	e := t.order[last]
	t.order = t.order[:last]
	t.byteUsage -= e.size
	e.index = unlinkedIndex
	e.setInRefSet(false)
	e.release()
}

// evictAt unlinks the entry currently at 0-based dynamic position pos,
// used by substitution indexing: it replaces the entry currently at a
// given sub-index by evicting it first, then inserting the new one.
func (t *table) evictAt(pos int) (*entry, error) {
	if pos < 0 || pos >= len(t.order) {
		return nil, compressionError("substitute", ErrSubIndexInvalid)
	}
	e := t.order[pos]
	t.order = append(t.order[:pos], t.order[pos+1:]...)
	t.byteUsage -= e.size
	e.index = unlinkedIndex
	e.setInRefSet(false)
	e.release()
	t.reindex()
	return e, nil
}

// insert implements the table mutation algorithm: reject entries over
// HD_MAX_ENTRY_SIZE, evict under byte pressure, prepend at abstract index
// 0, and reindex everything still linked. insert is never called for a
// without-indexing representation, so the new entry is always linked;
// inRefSetInitial is true for the literal-indexing forms (IN_REFSET is
// set iff the representation is with indexing) and false when
// synthesizing a static-table copy for an Indexed representation, whose
// toggle semantics treat a freshly synthesized entry as having started
// out clear.
func (t *table) insert(name, value string, flags entryFlags, inRefSetInitial bool) (*entry, error) {
	size := entrySize(name, value)
	if size > t.maxEntry {
		return nil, compressionError("insert", ErrEntryTooLarge)
	}

	for t.byteUsage+size > t.budget && len(t.order) > 0 {
		t.evictOldest()
	}
	if size > t.budget {
		return nil, compressionError("insert", ErrEntryTooLarge)
	}

	e := newEntry(name, value, flags)
	e.refcount = 1
	e.setInRefSet(inRefSetInitial)

	t.order = append(t.order, nil)
	copy(t.order[1:], t.order[:len(t.order)-1])
	t.order[0] = e
	t.byteUsage += size
	t.reindex()

	if len(t.order) > t.capacity {
		t.capacity = len(t.order)
	}
	return e, nil
}

// substitute evicts the entry at dynamic position pos and inserts a new
// one in its place.
func (t *table) substitute(pos int, name, value string, flags entryFlags) (*entry, error) {
	if _, err := t.evictAt(pos); err != nil {
		return nil, err
	}
	return t.insert(name, value, flags, true)
}

// get resolves a wire index (1-based) to its entry, without mutating the
// table. Used for name-index lookups in literal representations, where
// referencing the static table never triggers a copy into the dynamic
// table (only a full Indexed representation does that).
func (t *table) get(wireIndex int) (*entry, bool) {
	if wireIndex <= 0 {
		return nil, false
	}
	pos := wireIndex - 1
	if pos < len(t.order) {
		return t.order[pos], true
	}
	staticPos := pos - len(t.order)
	hf, ok := getStaticEntry(t.side, staticPos)
	if !ok {
		return nil, false
	}
	return &entry{name: hf.Name, value: hf.Value, size: entrySize(hf.Name, hf.Value), index: pos}, true
}

// resolveIndexed implements the mutating half of the Indexed
// representation: if wireIndex names a live dynamic entry, return it
// as-is; if it falls in the static range, synthesize a copy and insert it
// into the dynamic table so it can be cheaply re-referenced by later
// blocks. Both the deflater (to keep its mirror table in sync) and the
// inflater (when parsing an Indexed representation) call this same
// function, which is what keeps the two tables bit-identical.
func (t *table) resolveIndexed(wireIndex int) (*entry, error) {
	if wireIndex <= 0 {
		return nil, compressionError("indexed", ErrIndexOutOfRange)
	}
	pos := wireIndex - 1
	if pos < len(t.order) {
		return t.order[pos], nil
	}
	staticPos := pos - len(t.order)
	hf, ok := getStaticEntry(t.side, staticPos)
	if !ok {
		return nil, compressionError("indexed", ErrIndexOutOfRange)
	}
	// Static entries never own their buffers and the dynamic copy borrows
	// the same read-only package data. inRefSetInitial is false: the
	// caller applies the Indexed representation's toggle semantics next,
	// which for a brand new entry means "was clear" -> set it and emit.
	return t.insert(hf.Name, hf.Value, 0, false)
}

// clearRefSet implements the index-0 Indexed representation edge case:
// clear IN_REFSET on every linked entry.
func (t *table) clearRefSet() {
	for _, e := range t.order {
		e.setInRefSet(false)
	}
}

// resetBlockFlags clears EMITTED_THIS_BLOCK and IMPLICIT_EMIT on every
// linked entry; called by both contexts' EndHeaders so table state (flags
// included) is bit-identical after every block.
func (t *table) resetBlockFlags() {
	for _, e := range t.order {
		e.setEmittedThisBlock(false)
		e.setImplicitEmit(false)
	}
}

// findExact returns the linked dynamic entry with the given name and
// value, or nil.
func (t *table) findExact(name, value string) *entry {
	for _, e := range t.order {
		if e.name == name && e.value == value {
			return e
		}
	}
	return nil
}

// findNameOnly returns the first linked dynamic entry with the given
// name (any value), or nil.
func (t *table) findNameOnly(name string) *entry {
	for _, e := range t.order {
		if e.name == name {
			return e
		}
	}
	return nil
}

// wireIndex returns e's current 1-based wire index. e must be linked.
func (e *entry) wireIndex() int { return e.index + 1 }

// staticWireIndex returns the 1-based wire index for a static-table
// position given the current dynamic length.
func (t *table) staticWireIndex(staticPos int) int {
	return len(t.order) + staticPos + 1
}

func (t *table) usage() int { return t.byteUsage }

func (t *table) budgetBytes() int { return t.budget }
