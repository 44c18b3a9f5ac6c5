// Command hdraftvectors runs the YAML conformance-vector corpus against
// pkg/hdraft, and can fuzz-generate additional header blocks to stress
// deflater/inflater table equality beyond the fixed corpus.
//
// Grounded on oisee-z80-optimizer/cmd/z80opt/main.go's cobra command
// construction; structured logging via go.uber.org/zap follows
// yyocio-drip's logger usage at its process edges.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/watt-toolkit/hdraft/pkg/hdraft"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hdraftvectors",
		Short: "Run and generate conformance vectors for the hdraft codec",
	}

	var verbose bool

	runCmd := &cobra.Command{
		Use:   "run [vectors.yaml]",
		Short: "Run every vector in a YAML file and report pass/fail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVectorFile(args[0], verbose)
		},
	}
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every passing vector, not just failures")

	var fuzzCount int
	var fuzzSeed int64
	var fuzzSide string

	fuzzCmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Generate random header blocks and check table equality after each",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(fuzzCount, fuzzSeed, fuzzSide, verbose)
		},
	}
	fuzzCmd.Flags().IntVar(&fuzzCount, "blocks", 1000, "number of header blocks to generate")
	fuzzCmd.Flags().Int64Var(&fuzzSeed, "seed", 1, "PRNG seed")
	fuzzCmd.Flags().StringVar(&fuzzSide, "side", "client", "client or server")
	fuzzCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every block, not just failures")

	rootCmd.AddCommand(runCmd, fuzzCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		// zap construction failure has no good fallback; the process can't
		// usefully report anything further without a logger.
		panic(err)
	}
	return logger
}

func runVectorFile(path string, verbose bool) error {
	logger := newLogger(verbose)
	defer logger.Sync()

	vf, err := loadVectorFile(path)
	if err != nil {
		logger.Error("failed to load vector file", zap.String("path", path), zap.Error(err))
		return err
	}

	failed := 0
	for _, v := range vf.Vectors {
		res := runVector(v)
		switch {
		case res.err != nil:
			failed++
			logger.Error("vector failed",
				zap.String("name", res.name),
				zap.Int("blocks", res.blocks),
				zap.Error(res.err))
		case res.tablesDiff:
			failed++
			logger.Error("vector failed: deflater/inflater table mismatch after end_headers",
				zap.String("name", res.name),
				zap.Int("blocks", res.blocks))
		default:
			if verbose {
				logger.Info("vector passed",
					zap.String("name", res.name),
					zap.Int("blocks", res.blocks))
			}
		}
	}

	fmt.Printf("%d/%d vectors passed\n", len(vf.Vectors)-failed, len(vf.Vectors))
	if failed > 0 {
		return fmt.Errorf("%d vectors failed", failed)
	}
	return nil
}

// randomHeaders draws a small block of headers from a fixed pool so a
// table of modest capacity sees realistic dynamic-table churn (repeats and
// near-misses on name-only). Values are short ("v0".."v19"), so no
// generated header is oversized.
var fuzzNamePool = []string{":path", ":method", "user-agent", "cookie", "accept", "x-request-id"}

func randomHeaders(r *rand.Rand) []hdraft.HeaderField {
	n := 1 + r.Intn(6)
	out := make([]hdraft.HeaderField, n)
	for i := range out {
		name := fuzzNamePool[r.Intn(len(fuzzNamePool))]
		value := fmt.Sprintf("v%d", r.Intn(20))
		out[i] = hdraft.HeaderField{Name: name, Value: value}
	}
	return out
}

func runFuzz(count int, seed int64, sideStr string, verbose bool) error {
	logger := newLogger(verbose)
	defer logger.Sync()

	var side hdraft.Side
	switch sideStr {
	case "client", "":
		side = hdraft.SideClient
	case "server":
		side = hdraft.SideServer
	default:
		return fmt.Errorf("unknown side %q", sideStr)
	}

	r := rand.New(rand.NewSource(seed))
	deflater := hdraft.NewDeflater(side)
	inflater := hdraft.NewInflater(side)
	defer deflater.Free()
	defer inflater.Free()

	for i := 0; i < count; i++ {
		headers := randomHeaders(r)

		wire, err := deflater.Deflate(headers)
		if err != nil {
			logger.Error("fuzz block failed to deflate", zap.Int("block", i), zap.Error(err))
			return err
		}
		if _, err := inflater.Inflate(wire); err != nil {
			logger.Error("fuzz block failed to inflate", zap.Int("block", i), zap.Error(err))
			return err
		}
		if err := deflater.EndHeaders(); err != nil {
			return err
		}
		if err := inflater.EndHeaders(); err != nil {
			return err
		}

		if !deflater.DumpTable().Equal(inflater.DumpTable()) {
			logger.Error("fuzz found a table mismatch", zap.Int("block", i))
			return fmt.Errorf("table mismatch at block %d", i)
		}
		if verbose {
			logger.Info("fuzz block ok", zap.Int("block", i), zap.Int("wire_bytes", len(wire)))
		}
	}

	fmt.Printf("%d blocks, no table mismatch\n", count)
	return nil
}
