package hdraft

import "github.com/vmihailenco/msgpack/v5"

// EntrySnapshot is one table slot as captured by DumpTable, test/debug-only:
// enough fields to assert that a deflater's and inflater's tables are
// bit-identical immediately after every end-of-block flush, without
// exposing *entry itself outside the package.
type EntrySnapshot struct {
	Name             string `msgpack:"name"`
	Value            string `msgpack:"value"`
	Index            int    `msgpack:"index"`
	InRefSet         bool   `msgpack:"in_refset"`
	EmittedThisBlock bool   `msgpack:"emitted_this_block"`
	ImplicitEmit     bool   `msgpack:"implicit_emit"`
}

// TableSnapshot is the full dynamic-table state captured by DumpTable.
type TableSnapshot struct {
	Side    Side             `msgpack:"side"`
	Usage   int              `msgpack:"usage"`
	Entries []EntrySnapshot  `msgpack:"entries"`
}

func snapshotTable(t *table) TableSnapshot {
	entries := make([]EntrySnapshot, len(t.order))
	for idx, e := range t.order {
		entries[idx] = EntrySnapshot{
			Name:             e.name,
			Value:            e.value,
			Index:            e.index,
			InRefSet:         e.inRefSet(),
			EmittedThisBlock: e.emittedThisBlock(),
			ImplicitEmit:     e.implicitEmit(),
		}
	}
	return TableSnapshot{Side: t.side, Usage: t.byteUsage, Entries: entries}
}

// DumpTable captures d's current table state for cross-context equality
// assertions. Test/debug only: never called from Deflate/EndHeaders.
func (d *Deflater) DumpTable() TableSnapshot { return snapshotTable(d.base.table) }

// DumpTable captures i's current table state for cross-context equality
// assertions. Test/debug only: never called from Inflate/EndHeaders.
func (i *Inflater) DumpTable() TableSnapshot { return snapshotTable(i.base.table) }

// MarshalBinary encodes a TableSnapshot as msgpack. Equal compares
// snapshots by value and does not use this encoding.
func (s TableSnapshot) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(s)
}

// Equal reports whether two snapshots carry the same side, usage, and
// entries in the same order.
func (s TableSnapshot) Equal(other TableSnapshot) bool {
	if s.Side != other.Side || s.Usage != other.Usage {
		return false
	}
	if len(s.Entries) != len(other.Entries) {
		return false
	}
	for idx, e := range s.Entries {
		if e != other.Entries[idx] {
			return false
		}
	}
	return true
}
