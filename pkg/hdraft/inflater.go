package hdraft

// Inflater is the decoder context. It mirrors every table mutation the
// peer Deflater makes so the two tables stay bit-identical after matching
// EndHeaders calls. Representation dispatch follows the same
// priority-ordered, high-bit-tag switch as shockwave/pkg/shockwave/http2's
// Decoder.Decode, adapted from HPACK's four shapes to this draft's four
// (see representation.go).
type Inflater struct {
	base   baseContext
	reader byteReader
	out    []HeaderField
}

// NewInflater constructs an Inflater for the given side with default
// tunables.
func NewInflater(side Side) *Inflater {
	return NewInflaterWithConfig(NewConfig(side))
}

// NewInflaterWithConfig constructs an Inflater with an explicit Config.
func NewInflaterWithConfig(cfg Config) *Inflater {
	return &Inflater{base: newBaseContext(cfg)}
}

func (i *Inflater) Side() Side     { return i.base.Side() }
func (i *Inflater) TableSize() int { return i.base.TableSize() }

// Free releases the context. Further calls fail with ErrUseAfterFree.
func (i *Inflater) Free() {
	i.out = nil
	i.base.freed = true
}

// EndHeaders is the barrier between header blocks: it clears the
// per-block EMITTED_THIS_BLOCK/IMPLICIT_EMIT flags so the table stays
// bit-identical to the peer Deflater's before the next Inflate call.
// Headers returned by Inflate that borrowed bytes from the decoded block
// (decodeString with borrow=true) are only valid up to this call.
func (i *Inflater) EndHeaders() error {
	if err := i.base.checkUsable("end_headers"); err != nil {
		return err
	}
	i.base.table.resetBlockFlags()
	return nil
}

// Inflate decodes one header block: it parses every representation in
// data, applying each one's table mutation and recording its explicit
// emits, then appends the implicit emits (every reference-set entry not
// already emitted this block) before returning. Errors leave the context
// in the bad state; a bad context fails all subsequent calls.
func (i *Inflater) Inflate(data []byte) ([]HeaderField, error) {
	if err := i.base.checkUsable("inflate"); err != nil {
		return nil, err
	}

	i.reader.Reset(data)
	i.out = i.out[:0]

	if err := i.run(); err != nil {
		i.out = i.out[:0]
		return nil, i.base.markBad("inflate", err)
	}

	// Implicit emit flush: every reference-set entry this block didn't
	// already emit, explicitly or implicitly, goes out now and is marked
	// implicit so a matching Deflate block sees the same marks.
	t := i.base.table
	for _, e := range t.order {
		if e.inRefSet() && !e.emittedThisBlock() {
			e.setEmittedThisBlock(true)
			e.setImplicitEmit(true)
			i.out = append(i.out, e.header())
		}
	}

	return i.out, nil
}

func (i *Inflater) run() error {
	for i.reader.Len() > 0 {
		b, err := i.reader.PeekByte()
		if err != nil {
			return err
		}

		switch {
		case b&tagIndexed != 0:
			if err := i.handleIndexed(); err != nil {
				return err
			}
		case b&tagIncremental != 0:
			if err := i.handleLiteral(prefixIncremental, tagIncremental); err != nil {
				return err
			}
		case b&tagSubstitution != 0:
			if err := i.handleSubstitution(); err != nil {
				return err
			}
		case b&tagWithoutIndexing != 0:
			if err := i.handleLiteral(prefixWithoutIndexing, tagWithoutIndexing); err != nil {
				return err
			}
		default:
			return compressionError("inflate", ErrTruncated)
		}
	}
	return nil
}

// handleIndexed implements the Indexed representation: index 0 clears the
// whole reference set; otherwise resolveIndexed names (and, for a
// static-origin reference, copies into the dynamic table) the entry, and
// its IN_REFSET bit is toggled. A toggle-on emits; a toggle-off does not.
// Two representations naming the same entry in one block (the deflater's
// correction-phase pair) toggle off then on, netting one emit with
// IN_REFSET left as it started. The toggle-on also sets EMITTED_THIS_BLOCK,
// so an entry whose implicit emit was still pending is not emitted again
// by the end-of-block flush.
func (i *Inflater) handleIndexed() error {
	idx, err := decodeInteger(&i.reader, prefixIndexed)
	if err != nil {
		return err
	}

	t := i.base.table
	if int(idx) == refSetClearIndex {
		t.clearRefSet()
		return nil
	}

	e, err := t.resolveIndexed(int(idx))
	if err != nil {
		return err
	}

	if e.inRefSet() {
		e.setInRefSet(false)
		return nil
	}
	e.setInRefSet(true)
	e.setEmittedThisBlock(true)
	i.out = append(i.out, e.header())
	return nil
}

// handleLiteral implements the incremental-indexing and without-indexing
// literal representations: a name-index field (0 meaning the name follows
// as a literal) followed by a literal value, optionally inserted into the
// dynamic table with IN_REFSET set.
func (i *Inflater) handleLiteral(prefix uint8, tag byte) error {
	nameIdx, err := decodeInteger(&i.reader, prefix)
	if err != nil {
		return err
	}

	// Without-indexing literals also carry headers too large for the table,
	// so only the indexing form caps string lengths at the entry limit.
	maxLen := i.base.table.maxEntry
	if tag == tagWithoutIndexing {
		maxLen = 0
	}

	name, nameOwned, err := i.resolveLiteralName(int(nameIdx), maxLen)
	if err != nil {
		return err
	}

	value, err := decodeString(&i.reader, maxLen, tag == tagWithoutIndexing)
	if err != nil {
		return err
	}

	hf := HeaderField{Name: name, Value: value}
	if tag == tagWithoutIndexing {
		i.out = append(i.out, hf)
		return nil
	}

	flags := flagValueOwned
	if nameOwned {
		flags |= flagNameOwned
	}
	e, err := i.base.table.insert(name, value, flags, true)
	if err != nil {
		return err
	}
	e.setEmittedThisBlock(true)
	i.out = append(i.out, hf)
	return nil
}

// handleSubstitution implements the substitution-indexing literal
// representation: a name-index field, a bare sub-index field naming the
// dynamic slot to replace, and a literal value.
func (i *Inflater) handleSubstitution() error {
	nameIdx, err := decodeInteger(&i.reader, prefixSubstitution)
	if err != nil {
		return err
	}
	subIdx, err := decodeInteger(&i.reader, prefixSubIndex)
	if err != nil {
		return err
	}

	name, nameOwned, err := i.resolveLiteralName(int(nameIdx), i.base.table.maxEntry)
	if err != nil {
		return err
	}
	value, err := decodeString(&i.reader, i.base.table.maxEntry, false)
	if err != nil {
		return err
	}

	flags := flagValueOwned
	if nameOwned {
		flags |= flagNameOwned
	}
	e, err := i.base.table.substitute(int(subIdx), name, value, flags)
	if err != nil {
		return err
	}
	e.setEmittedThisBlock(true)
	i.out = append(i.out, HeaderField{Name: name, Value: value})
	return nil
}

// resolveLiteralName reads the literal name string when nameIdx is the
// new-name sentinel, or looks up an existing name via table.get
// (referencing a name index for a literal form never copies the static
// table into the dynamic one — only a full Indexed representation does
// that). The returned bool reports whether the literal path was taken and
// its bytes need an owned copy held by the table.
func (i *Inflater) resolveLiteralName(nameIdx, maxLen int) (string, bool, error) {
	if nameIdx == newNameIndex {
		name, err := decodeString(&i.reader, maxLen, false)
		if err != nil {
			return "", false, err
		}
		return name, true, nil
	}
	e, ok := i.base.table.get(nameIdx)
	if !ok {
		return "", false, compressionError("inflate", ErrIndexOutOfRange)
	}
	return e.name, false, nil
}
