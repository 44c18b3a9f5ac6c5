package hdraft

// Wire representations. original_source/lib/nghttp2_hd.h names the four
// on-wire shapes (indexed, new-name and indexed-name incremental, and
// substitution) through its emit_* unit-test helpers but carries no .c
// body, so the exact bit layout isn't recoverable from the pack and
// remains this repo's own choice (see DESIGN.md's Open Question log).
// This draws its priority-ordered, high-bit-tag dispatch directly from
// shockwave/pkg/shockwave/http2's Decoder.Decode switch
// (0x80/0x40/0x20/0x10 in descending order), just repurposing the 0x20
// slot HPACK spends on a dynamic-table-size-update signal for this
// draft's substitution-indexing representation instead.
const (
	tagIndexed         byte = 0x80 // 1xxxxxxx, prefix 7: Indexed representation
	tagIncremental     byte = 0x40 // 01xxxxxx, prefix 6: literal, incremental indexing
	tagSubstitution    byte = 0x20 // 001xxxxx, prefix 5: literal, substitution indexing
	tagWithoutIndexing byte = 0x10 // 0001xxxx, prefix 4: literal, without indexing
)

const (
	prefixIndexed         = 7
	prefixIncremental     = 6
	prefixSubstitution    = 5
	prefixWithoutIndexing = 4
	prefixSubIndex        = 8 // substitution's second index field is a bare integer
)

// refSetClearIndex is the sentinel wire index: an Indexed representation
// carrying this value clears the entire reference set instead of naming
// an entry.
const refSetClearIndex = 0

// newNameIndex is the sentinel name-index value on every literal form:
// the name follows as a literal string rather than being looked up.
const newNameIndex = 0
