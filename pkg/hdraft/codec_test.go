package hdraft

import (
	"bytes"
	"reflect"
	"strconv"
	"testing"
)

// roundTrip deflates each block in turn through d, inflates it through i,
// and calls EndHeaders on both, asserting table equality after each
// block. It returns the headers the inflater produced for every block.
func roundTrip(t *testing.T, d *Deflater, i *Inflater, blocks [][]HeaderField) [][]HeaderField {
	t.Helper()
	var got [][]HeaderField

	for n, block := range blocks {
		wire, err := d.Deflate(block)
		if err != nil {
			t.Fatalf("block %d: deflate: %v", n, err)
		}
		headers, err := i.Inflate(wire)
		if err != nil {
			t.Fatalf("block %d: inflate: %v", n, err)
		}
		out := make([]HeaderField, len(headers))
		copy(out, headers)
		got = append(got, out)

		if err := d.EndHeaders(); err != nil {
			t.Fatalf("block %d: deflater end_headers: %v", n, err)
		}
		if err := i.EndHeaders(); err != nil {
			t.Fatalf("block %d: inflater end_headers: %v", n, err)
		}

		if !d.DumpTable().Equal(i.DumpTable()) {
			t.Fatalf("block %d: deflater/inflater tables diverged:\n  deflater=%+v\n  inflater=%+v",
				n, d.DumpTable(), i.DumpTable())
		}
	}
	return got
}

func hf(name, value string) HeaderField { return HeaderField{Name: name, Value: value} }

func headerSet(fields []HeaderField) map[HeaderField]int {
	m := make(map[HeaderField]int, len(fields))
	for _, f := range fields {
		m[f]++
	}
	return m
}

// TestScenario1SingleIndexedNameReuse: encoding the same block twice
// produces a materially shorter second block, and the decoder
// reconstructs both blocks (as a multiset — the implicit-emit path does
// not guarantee source order across repeats).
func TestScenario1SingleIndexedNameReuse(t *testing.T) {
	d := NewDeflater(SideClient)
	i := NewInflater(SideClient)
	defer d.Free()
	defer i.Free()

	block := []HeaderField{
		hf(":method", "GET"),
		hf(":scheme", "http"),
		hf(":path", "/"),
		hf(":host", "example.com"),
	}

	wire1, err := d.Deflate(block)
	if err != nil {
		t.Fatal(err)
	}
	out1, err := i.Inflate(wire1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(headerSet(out1), headerSet(block)) {
		t.Fatalf("block 1 decoded %v, want %v", out1, block)
	}
	if err := d.EndHeaders(); err != nil {
		t.Fatal(err)
	}
	if err := i.EndHeaders(); err != nil {
		t.Fatal(err)
	}

	wire2, err := d.Deflate(block)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := i.Inflate(wire2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(headerSet(out2), headerSet(block)) {
		t.Fatalf("block 2 decoded %v, want %v", out2, block)
	}
	if len(wire2) >= len(wire1) {
		t.Fatalf("second block (%d bytes) not shorter than first (%d bytes)", len(wire2), len(wire1))
	}
}

// TestScenario2ReferenceSetSubtraction: a block that drops a header the
// reference set already carries must decode to exactly the remaining
// headers, not the union of old and new.
func TestScenario2ReferenceSetSubtraction(t *testing.T) {
	d := NewDeflater(SideClient)
	i := NewInflater(SideClient)
	defer d.Free()
	defer i.Free()

	block1 := []HeaderField{hf("x", "1"), hf("y", "2")}
	blocks := roundTrip(t, d, i, [][]HeaderField{block1})
	if !reflect.DeepEqual(headerSet(blocks[0]), headerSet(block1)) {
		t.Fatalf("block 1 decoded %v, want %v", blocks[0], block1)
	}

	block2 := []HeaderField{hf("y", "2")}
	wire2, err := d.Deflate(block2)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := i.Inflate(wire2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out2, block2) {
		t.Fatalf("block 2 decoded %v, want %v", out2, block2)
	}
}

// TestScenario3EvictionUnderBytePressure: with a tight byte budget,
// inserting past capacity evicts the oldest entry, and that entry is no
// longer reachable by index.
func TestScenario3EvictionUnderBytePressure(t *testing.T) {
	cfg := NewConfig(SideClient)
	cfg.MaxBufferSize = 4096 // 20 entries of at most 200 bytes fit; 21 do not
	cfg.MaxEntrySize = 200

	d := NewDeflaterWithConfig(cfg)
	i := NewInflaterWithConfig(cfg)
	defer d.Free()
	defer i.Free()

	var block []HeaderField
	for n := 0; n < 21; n++ {
		value := bytes.Repeat([]byte{byte('a' + n%26)}, 157) // 157 + len("x-filler-N") + 32 = 199..200
		block = append(block, HeaderField{Name: "x-filler-" + strconv.Itoa(n), Value: string(value)})
	}

	blocks := roundTrip(t, d, i, [][]HeaderField{block})
	if !reflect.DeepEqual(headerSet(blocks[0]), headerSet(block)) {
		t.Fatalf("decoded set mismatch")
	}

	if d.TableSize() > cfg.MaxBufferSize {
		t.Fatalf("usage %d exceeds budget %d", d.TableSize(), cfg.MaxBufferSize)
	}
	snap := d.DumpTable()
	for _, e := range snap.Entries {
		if e.Name == block[0].Name {
			t.Fatalf("oldest entry %q should have been evicted", block[0].Name)
		}
	}
}

// TestScenario4OversizeLiteral: a header too large to ever fit the table
// is carried as a literal-without-indexing representation, decodes
// correctly, and never enters the table.
func TestScenario4OversizeLiteral(t *testing.T) {
	d := NewDeflater(SideClient)
	i := NewInflater(SideClient)
	defer d.Free()
	defer i.Free()

	big := bytes.Repeat([]byte{'z'}, 4000)
	block := []HeaderField{{Name: "x-big", Value: string(big)}}

	wire, err := d.Deflate(block)
	if err != nil {
		t.Fatal(err)
	}
	if d.TableSize() != 0 {
		t.Fatalf("oversized header must not enter the table, usage=%d", d.TableSize())
	}

	out, err := i.Inflate(wire)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, block) {
		t.Fatalf("decoded %v, want %v", out, block)
	}
	if i.TableSize() != 0 {
		t.Fatalf("inflater table must not have grown, usage=%d", i.TableSize())
	}
}

// TestScenario4MalformedOversizeUnderIndexing covers the second half of
// scenario 4: a malformed stream presenting an oversized pair under an
// indexing representation must fail the inflater, not silently truncate.
func TestScenario4MalformedOversizeUnderIndexing(t *testing.T) {
	i := NewInflater(SideClient)
	defer i.Free()

	var buf bytes.Buffer
	encodeInteger(&buf, uint32(newNameIndex), prefixIncremental, tagIncremental)
	encodeString(&buf, "x-huge")
	encodeString(&buf, string(bytes.Repeat([]byte{'q'}, 4000)))

	if _, err := i.Inflate(buf.Bytes()); err == nil {
		t.Fatal("expected compression error inserting an oversized entry via an indexing representation")
	}
}

// TestScenario5IndexZeroClearsRefSet: an Indexed representation naming
// wire index 0 clears the whole reference set without emitting a header.
func TestScenario5IndexZeroClearsRefSet(t *testing.T) {
	d := NewDeflater(SideClient)
	i := NewInflater(SideClient)
	defer d.Free()
	defer i.Free()

	roundTrip(t, d, i, [][]HeaderField{{hf("x", "1")}})

	var buf bytes.Buffer
	encodeInteger(&buf, refSetClearIndex, prefixIndexed, tagIndexed)

	out, err := i.Inflate(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("index-0 representation must not emit a header, got %v", out)
	}

	snap := i.DumpTable()
	for _, e := range snap.Entries {
		if e.InRefSet {
			t.Fatalf("entry %+v still IN_REFSET after index-0 clear", e)
		}
	}
}

// TestScenario6BadStateStickiness: a malformed block permanently marks
// the context bad, and every subsequent call fails even with well-formed
// input.
func TestScenario6BadStateStickiness(t *testing.T) {
	i := NewInflater(SideClient)
	defer i.Free()

	// A leading integer whose continuation bit never clears, well past
	// maxContinuationBytes.
	bad := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, err := i.Inflate(bad); err == nil {
		t.Fatal("expected compression error on runaway continuation bytes")
	}

	d := NewDeflater(SideClient)
	defer d.Free()
	wellFormed, err := d.Deflate([]HeaderField{hf("a", "1")})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := i.Inflate(wellFormed); err == nil {
		t.Fatal("a bad context must fail every subsequent call")
	}
}

// TestDeflaterBadStateStickiness mirrors TestScenario6 on the encode
// side: once markBad fires, every later Deflate/EndHeaders call must fail
// without touching state.
func TestDeflaterBadStateStickiness(t *testing.T) {
	d := NewDeflater(SideClient)
	defer d.Free()

	// Directly drive the table into a bad state the way a real protocol
	// violation would, then confirm stickiness through the public API.
	d.base.bad = true

	if _, err := d.Deflate([]HeaderField{hf("a", "1")}); err == nil {
		t.Fatal("expected bad-state error from Deflate")
	}
	if err := d.EndHeaders(); err == nil {
		t.Fatal("expected bad-state error from EndHeaders")
	}
}

// TestNonCacheableNeverIndexed: a non-cacheable header name never enters
// the table, across repeated blocks.
func TestNonCacheableNeverIndexed(t *testing.T) {
	d := NewDeflater(SideClient)
	i := NewInflater(SideClient)
	defer d.Free()
	defer i.Free()

	block := []HeaderField{hf("authorization", "Bearer deadbeef")}
	roundTrip(t, d, i, [][]HeaderField{block, block, block})

	if d.TableSize() != 0 {
		t.Fatalf("non-cacheable header entered the table, usage=%d", d.TableSize())
	}
}

// TestDuplicateWithinBlockCorrectionPhase exercises the deflater's
// correction-phase toggle pair for a header repeated within one block
// after its first occurrence already used the reference set.
func TestDuplicateWithinBlockCorrectionPhase(t *testing.T) {
	d := NewDeflater(SideClient)
	i := NewInflater(SideClient)
	defer d.Free()
	defer i.Free()

	// First block establishes the entry in the reference set.
	roundTrip(t, d, i, [][]HeaderField{{hf("x-dup", "a=1")}})

	// Second block repeats it twice: one implicit emit (already IN_REFSET)
	// plus a duplicate that must trigger the toggle-pair correction.
	block := []HeaderField{hf("x-dup", "a=1"), hf("x-dup", "a=1")}
	blocks := roundTrip(t, d, i, [][]HeaderField{block})

	if !reflect.DeepEqual(headerSet(blocks[0]), headerSet(block)) {
		t.Fatalf("decoded %v, want two emits of %v", blocks[0], block[0])
	}
}

func TestStaticTableExactMatchAcrossBlocks(t *testing.T) {
	d := NewDeflater(SideServer)
	i := NewInflater(SideServer)
	defer d.Free()
	defer i.Free()

	block := []HeaderField{hf(":status", "200"), hf("content-type", "text/html")}
	blocks := roundTrip(t, d, i, [][]HeaderField{block, block})

	for n, got := range blocks {
		if !reflect.DeepEqual(headerSet(got), headerSet(block)) {
			t.Fatalf("block %d decoded %v, want %v", n, got, block)
		}
	}
}
