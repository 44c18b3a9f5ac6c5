package hdraft

import "github.com/valyala/bytebufferpool"

// Deflater is the encoder context. It chooses wire representations to
// minimize output while keeping its table a mirror of the peer
// Inflater's.
type Deflater struct {
	base    baseContext
	pool    bytebufferpool.Pool
	emitSet []*entry
}

// NewDeflater constructs a Deflater for the given side with default
// tunables.
func NewDeflater(side Side) *Deflater {
	return NewDeflaterWithConfig(NewConfig(side))
}

// NewDeflaterWithConfig constructs a Deflater with an explicit Config
// (see Builder).
func NewDeflaterWithConfig(cfg Config) *Deflater {
	return &Deflater{base: newBaseContext(cfg)}
}

func (d *Deflater) Side() Side     { return d.base.Side() }
func (d *Deflater) TableSize() int { return d.base.TableSize() }

// Free drains all outstanding refcounts and releases the context. Further
// calls fail with ErrUseAfterFree.
func (d *Deflater) Free() {
	for _, e := range d.emitSet {
		e.release()
	}
	d.emitSet = nil
	d.base.freed = true
}

// EndHeaders is the barrier between header blocks: it drains the emit set
// (releasing this block's refcount holds) and clears the per-block
// EMITTED_THIS_BLOCK/IMPLICIT_EMIT flags so the table stays bit-identical
// to the peer Inflater's before the next Deflate call.
func (d *Deflater) EndHeaders() error {
	if err := d.base.checkUsable("end_headers"); err != nil {
		return err
	}
	for _, e := range d.emitSet {
		e.release()
	}
	d.emitSet = d.emitSet[:0]
	d.base.table.resetBlockFlags()
	return nil
}

// Deflate encodes one header block. Errors leave the context in the bad
// state; a bad context fails all subsequent calls.
func (d *Deflater) Deflate(headers []HeaderField) ([]byte, error) {
	if err := d.base.checkUsable("deflate"); err != nil {
		return nil, err
	}

	bb := d.pool.Get()
	defer d.pool.Put(bb)
	bb.Reset()

	startEmit := len(d.emitSet)
	if err := d.run(bb, headers); err != nil {
		for _, e := range d.emitSet[startEmit:] {
			e.release()
		}
		d.emitSet = d.emitSet[:startEmit]
		return nil, d.base.markBad("deflate", err)
	}

	out := make([]byte, len(bb.B))
	copy(out, bb.B)
	return out, nil
}

func headerKey(name, value string) string { return name + "\x00" + value }

// run implements the three-phase mark/emit/correct encoding algorithm.
func (d *Deflater) run(bb *bytebufferpool.ByteBuffer, headers []HeaderField) error {
	t := d.base.table

	present := make(map[string]int, len(headers)) // counts occurrences in H
	for _, h := range headers {
		present[headerKey(h.Name, h.Value)]++
	}

	// Phase 1: mark. Subtract refset entries not wanted in this block.
	for _, e := range t.order {
		if !e.inRefSet() {
			continue
		}
		if present[headerKey(e.name, e.value)] > 0 {
			continue
		}
		encodeInteger(bb, uint32(e.wireIndex()), prefixIndexed, tagIndexed)
		e.setInRefSet(false)
	}

	// Phase 2 + 3: emit, with inline duplicate correction.
	for _, h := range headers {
		if err := d.emitOne(bb, h); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deflater) emitOne(bb *bytebufferpool.ByteBuffer, h HeaderField) error {
	t := d.base.table

	if e := t.findExact(h.Name, h.Value); e != nil {
		if e.inRefSet() {
			if !e.emittedThisBlock() {
				// 2a: implicit emit, no wire bytes.
				e.setEmittedThisBlock(true)
				e.setImplicitEmit(true)
				return nil
			}
			// Correction phase: a duplicate of an already-emitted
			// header. Each toggle-off/toggle-on pair produces one emit on
			// the peer while leaving IN_REFSET unchanged. The peer's
			// toggle-on also cancels a still-pending implicit emit, so the
			// first duplicate of an implicitly emitted entry sends two
			// pairs: one for the earlier occurrence, one for this one.
			pairs := 1
			if e.implicitEmit() {
				pairs = 2
				e.setImplicitEmit(false)
			}
			for n := 0; n < pairs; n++ {
				encodeInteger(bb, uint32(e.wireIndex()), prefixIndexed, tagIndexed)
				encodeInteger(bb, uint32(e.wireIndex()), prefixIndexed, tagIndexed)
			}
			return nil
		}
		// 2b: explicit toggle-on.
		encodeInteger(bb, uint32(e.wireIndex()), prefixIndexed, tagIndexed)
		e.setInRefSet(true)
		e.setEmittedThisBlock(true)
		d.acquire(e)
		return nil
	}

	// No dynamic exact match. Check the static table for an exact match:
	// referencing it copies it into the dynamic table (resolveIndexed) and
	// toggles IN_REFSET on the fresh copy, exactly mirroring what the peer
	// Inflater's handleIndexed does for the same wire bytes. Non-cacheable
	// names skip this so they never enter the dynamic table.
	if staticIdx, exact := findStaticIndex(d.base.side, h.Name, h.Value); exact && !isNonCacheable(d.base.side, h.Name) {
		wireIdx := t.staticWireIndex(staticIdx)
		encodeInteger(bb, uint32(wireIdx), prefixIndexed, tagIndexed)
		e, err := t.resolveIndexed(wireIdx)
		if err != nil {
			return err
		}
		e.setInRefSet(true)
		e.setEmittedThisBlock(true)
		d.acquire(e)
		return nil
	}

	// No exact match anywhere. Look for a name-only match to at least
	// avoid re-sending the name literally.
	nameIdx, useSub := 0, false
	if ne := t.findNameOnly(h.Name); ne != nil {
		nameIdx = ne.wireIndex()
		// Policy: when the existing name-only entry is not currently
		// needed in the reference set, reuse its slot via substitution
		// indexing instead of letting ordinary FIFO eviction find it
		// later (see DESIGN.md's resolution of the substitution-policy
		// open question).
		useSub = !ne.inRefSet()
	} else if sIdx, ok := findStaticIndex(d.base.side, h.Name, ""); ok {
		nameIdx = t.staticWireIndex(sIdx)
	}

	oversized := entrySize(h.Name, h.Value) > d.base.table.maxEntry
	if isNonCacheable(d.base.side, h.Name) || oversized {
		encodeInteger(bb, uint32(nameIdx), prefixWithoutIndexing, tagWithoutIndexing)
		if nameIdx == newNameIndex {
			encodeString(bb, h.Name)
		}
		encodeString(bb, h.Value)
		return nil
	}

	var (
		e   *entry
		err error
	)
	if useSub {
		ne := t.findNameOnly(h.Name)
		encodeInteger(bb, uint32(nameIdx), prefixSubstitution, tagSubstitution)
		encodeInteger(bb, uint32(ne.index), prefixSubIndex, 0)
		encodeString(bb, h.Value)
		e, err = t.substitute(ne.index, h.Name, h.Value, flagValueOwned)
	} else {
		encodeInteger(bb, uint32(nameIdx), prefixIncremental, tagIncremental)
		if nameIdx == newNameIndex {
			encodeString(bb, h.Name)
		}
		encodeString(bb, h.Value)
		flags := flagValueOwned
		if nameIdx == newNameIndex {
			flags |= flagNameOwned
		}
		e, err = t.insert(h.Name, h.Value, flags, true)
	}
	if err != nil {
		return err
	}
	e.setEmittedThisBlock(true)
	d.acquire(e)
	return nil
}

func (d *Deflater) acquire(e *entry) {
	e.acquire()
	d.emitSet = append(d.emitSet, e)
}
