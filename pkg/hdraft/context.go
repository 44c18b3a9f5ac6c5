package hdraft

// baseContext carries the state shared by a Deflater and an Inflater: the
// table and the healthy/bad state machine. Composition over inheritance:
// Deflater and Inflater each embed one and add only their direction's
// scratch state.
type baseContext struct {
	side  Side
	table *table
	bad   bool
	freed bool
}

func newBaseContext(cfg Config) baseContext {
	return baseContext{side: cfg.Side, table: newTable(cfg)}
}

// markBad transitions healthy -> bad permanently. Returns the
// CompressionError so callers can `return nil, ctx.markBad(op, err)`.
func (c *baseContext) markBad(op string, err error) *CompressionError {
	c.bad = true
	return compressionError(op, err)
}

// checkUsable fails fast for a freed or bad context: a bad context fails
// all subsequent calls with a CompressionError.
func (c *baseContext) checkUsable(op string) *CompressionError {
	if c.freed {
		return compressionError(op, ErrUseAfterFree)
	}
	if c.bad {
		return compressionError(op, ErrContextBad)
	}
	return nil
}

// Side reports which side (client or server) this context plays.
func (c *baseContext) Side() Side { return c.side }

// TableSize reports the dynamic table's current byte usage, for
// diagnostics and property tests.
func (c *baseContext) TableSize() int { return c.table.usage() }
