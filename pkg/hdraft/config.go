package hdraft

// These five tunables match the constants named in
// original_source/lib/nghttp2_hd.h (NGHTTP2_HD_MAX_BUFFER_SIZE,
// NGHTTP2_HD_MAX_ENTRY_SIZE, NGHTTP2_HD_ENTRY_OVERHEAD,
// NGHTTP2_INITIAL_HD_TABLE_SIZE, NGHTTP2_INITIAL_EMIT_SET_SIZE) exactly.
const (
	// DefaultMaxBufferSize is HD_MAX_BUFFER_SIZE, the table's byte budget B.
	DefaultMaxBufferSize = 4096
	// DefaultMaxEntrySize is HD_MAX_ENTRY_SIZE; entries larger than this
	// never enter the table and are always carried as literal-without-
	// indexing representations instead.
	DefaultMaxEntrySize = 3072
	// EntryOverhead is HD_ENTRY_OVERHEAD, the per-entry accounting constant
	// added to name+value length when computing an entry's abstract size.
	EntryOverhead = 32
	// DefaultTableCapacity is INITIAL_HD_TABLE_SIZE, the table's initial
	// slot capacity. The table grows past this on demand.
	DefaultTableCapacity = 128
	// DefaultEmitSetCapacity is INITIAL_EMIT_SET_SIZE.
	DefaultEmitSetCapacity = 128
)

// Config holds the tunables for a Deflater or Inflater context. Use
// NewConfig for the defaults, or Builder for a fluent override.
type Config struct {
	Side            Side
	MaxBufferSize   int
	MaxEntrySize    int
	TableCapacity   int
	EmitSetCapacity int
}

// NewConfig returns the default configuration for the given side.
func NewConfig(side Side) Config {
	return Config{
		Side:            side,
		MaxBufferSize:   DefaultMaxBufferSize,
		MaxEntrySize:    DefaultMaxEntrySize,
		TableCapacity:   DefaultTableCapacity,
		EmitSetCapacity: DefaultEmitSetCapacity,
	}
}

// Builder provides a fluent API for constructing a Config, following the
// accumulate-first-error shape of capacitor's Builder[K,V].
type Builder struct {
	cfg Config
	err error
}

// NewBuilder starts a Builder seeded with the default tunables for side.
func NewBuilder(side Side) *Builder {
	return &Builder{cfg: NewConfig(side)}
}

func (b *Builder) WithMaxBufferSize(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		b.err = compressionError("config", ErrOutOfMemory)
		return b
	}
	b.cfg.MaxBufferSize = n
	return b
}

func (b *Builder) WithMaxEntrySize(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n <= 0 || n > b.cfg.MaxBufferSize {
		b.err = compressionError("config", ErrEntryTooLarge)
		return b
	}
	b.cfg.MaxEntrySize = n
	return b
}

func (b *Builder) WithTableCapacity(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		b.err = compressionError("config", ErrOutOfMemory)
		return b
	}
	b.cfg.TableCapacity = n
	return b
}

func (b *Builder) WithEmitSetCapacity(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		b.err = compressionError("config", ErrOutOfMemory)
		return b
	}
	b.cfg.EmitSetCapacity = n
	return b
}

// Build returns the accumulated Config, or the first error encountered.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	return b.cfg, nil
}
