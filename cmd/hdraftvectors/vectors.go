package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/watt-toolkit/hdraft/pkg/hdraft"
)

// VectorFile is the YAML conformance-vector format read by
// cmd/hdraftvectors. pkg/hdraft's own tests do not load it; they carry
// their own header-pair literals.
type VectorFile struct {
	Vectors []Vector `yaml:"vectors"`
}

// Vector runs a sequence of header blocks through a single Deflater and
// checks the round trip through an Inflater of the same side, plus table
// equality after every block.
type Vector struct {
	Name   string   `yaml:"name"`
	Side   string   `yaml:"side"`
	Blocks [][]Pair `yaml:"blocks"`
}

// Pair is one header name/value in a vector file.
type Pair struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func loadVectorFile(path string) (*VectorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var vf VectorFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &vf, nil
}

func (v Vector) side() (hdraft.Side, error) {
	switch v.Side {
	case "client", "":
		return hdraft.SideClient, nil
	case "server":
		return hdraft.SideServer, nil
	default:
		return 0, fmt.Errorf("vector %q: unknown side %q", v.Name, v.Side)
	}
}

func pairsToHeaders(pairs []Pair) []hdraft.HeaderField {
	out := make([]hdraft.HeaderField, len(pairs))
	for i, p := range pairs {
		out[i] = hdraft.HeaderField{Name: p.Name, Value: p.Value}
	}
	return out
}

// runResult summarizes one vector's outcome for logging.
type runResult struct {
	name       string
	blocks     int
	tablesDiff bool
	err        error
}

// runVector drives a fresh Deflater/Inflater pair of the vector's side
// through every block, confirming that each block decodes to its input
// headers and that the two tables agree after each EndHeaders call.
func runVector(v Vector) runResult {
	res := runResult{name: v.Name, blocks: len(v.Blocks)}

	side, err := v.side()
	if err != nil {
		res.err = err
		return res
	}

	deflater := hdraft.NewDeflater(side)
	inflater := hdraft.NewInflater(side)
	defer deflater.Free()
	defer inflater.Free()

	for i, block := range v.Blocks {
		headers := pairsToHeaders(block)

		wire, err := deflater.Deflate(headers)
		if err != nil {
			res.err = fmt.Errorf("block %d: deflate: %w", i, err)
			return res
		}
		got, err := inflater.Inflate(wire)
		if err != nil {
			res.err = fmt.Errorf("block %d: inflate: %w", i, err)
			return res
		}
		// Implicit emits come last, so compare as multisets.
		counts := make(map[hdraft.HeaderField]int, len(headers))
		for _, h := range headers {
			counts[h]++
		}
		for _, h := range got {
			counts[h]--
		}
		for _, c := range counts {
			if c != 0 {
				res.err = fmt.Errorf("block %d: decoded %v, want %v", i, got, headers)
				return res
			}
		}

		if err := deflater.EndHeaders(); err != nil {
			res.err = fmt.Errorf("block %d: deflater end_headers: %w", i, err)
			return res
		}
		if err := inflater.EndHeaders(); err != nil {
			res.err = fmt.Errorf("block %d: inflater end_headers: %w", i, err)
			return res
		}

		if !deflater.DumpTable().Equal(inflater.DumpTable()) {
			res.tablesDiff = true
			return res
		}
	}

	return res
}
