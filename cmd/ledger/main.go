// Command ledger is the command-line driver for the transaction engine.
//
// Usage:
//
//	ledger <input.csv>                 process a single stream, emit the account dump to stdout
//	ledger <input.csv> -dump           same, and also dump the transaction log to a timestamped file
//	ledger -stress <N>                 synthesise N random records, process, print memory + timing metrics
//	ledger -async <input1> <input2>... ingest every input concurrently against one shared engine
//
// Record-level errors never change the process exit code; they are printed
// to standard error and the run otherwise completes normally. Exit code is
// non-zero only on argument errors or I/O failures that abort the driver
// itself.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ledgerforge/txnengine/internal/codec"
	"github.com/ledgerforge/txnengine/internal/ledger"
	"github.com/ledgerforge/txnengine/internal/pipeline"
	"github.com/ledgerforge/txnengine/internal/stress"
)

// logFatal is a variable to allow mocking log.Fatalf in tests. This
// indirection lets test code intercept a fatal exit without actually
// terminating the test process.
var logFatal = log.Fatalf

func main() {
	if err := run(os.Args[1:]); err != nil {
		logFatal("ledger: %v", err)
	}
}

func run(args []string) error {
	flags, err := parseArgs(args)
	if err != nil {
		return err
	}

	switch {
	case flags.stress > 0:
		return runStress(flags.stress)
	case len(flags.asyncInputs) > 0:
		return runAsync(flags.asyncInputs)
	default:
		return runSingle(flags.input, flags.dump)
	}
}

type parsedFlags struct {
	input       string
	dump        bool
	stress      int
	asyncInputs []string
}

// parseArgs hand-parses the small, order-sensitive CLI surface described in
// the package doc rather than reaching for flag.FlagSet's permutation
// rules, since -stress and -async each take a variable, trailing argument
// list that flag's positional/flag interleaving does not model cleanly.
func parseArgs(args []string) (parsedFlags, error) {
	if len(args) == 0 {
		return parsedFlags{}, fmt.Errorf("usage: ledger <input.csv> [-dump] | -stress <N> | -async <input...>")
	}

	switch args[0] {
	case "-stress":
		if len(args) != 2 {
			return parsedFlags{}, fmt.Errorf("usage: ledger -stress <N>")
		}
		n, err := parsePositiveInt(args[1])
		if err != nil {
			return parsedFlags{}, fmt.Errorf("invalid -stress count %q: %w", args[1], err)
		}
		return parsedFlags{stress: n}, nil

	case "-async":
		if len(args) < 2 {
			return parsedFlags{}, fmt.Errorf("usage: ledger -async <input1> <input2> ...")
		}
		return parsedFlags{asyncInputs: args[1:]}, nil

	default:
		input := args[0]
		dump := false
		for _, a := range args[1:] {
			if a == "-dump" {
				dump = true
				continue
			}
			return parsedFlags{}, fmt.Errorf("unrecognized argument %q", a)
		}
		return parsedFlags{input: input, dump: dump}, nil
	}
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func runSingle(inputPath string, dump bool) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer f.Close()

	e := ledger.New()
	p := pipeline.Pipeline{BufferSize: pipeline.DefaultBufferSize}
	if merr := p.Run(context.Background(), e, codec.NewReader(f)); merr != nil {
		reportBatchErrors(merr)
	}

	if err := codec.WriteAccounts(os.Stdout, e.Accounts); err != nil {
		return fmt.Errorf("write account dump: %w", err)
	}

	if dump {
		name := fmt.Sprintf("txlog-%d.csv", time.Now().UnixNano())
		out, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		defer out.Close()
		if err := codec.WriteTransactionLog(out, e.Transactions); err != nil {
			return fmt.Errorf("write transaction log dump: %w", err)
		}
	}

	return nil
}

func runAsync(inputPaths []string) error {
	e := ledger.New()
	readers := make([]*codec.Reader, 0, len(inputPaths))
	for _, p := range inputPaths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		defer f.Close()
		readers = append(readers, codec.NewReader(f))
	}

	if merr := pipeline.RunConcurrent(context.Background(), e, readers, pipeline.DefaultBufferSize); merr != nil {
		reportBatchErrors(merr)
	}

	if err := codec.WriteAccounts(os.Stdout, e.Accounts); err != nil {
		return fmt.Errorf("write account dump: %w", err)
	}
	return nil
}

func runStress(n int) error {
	tmp, err := os.CreateTemp("", "ledger-stress-*.csv")
	if err != nil {
		return fmt.Errorf("create stress input: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := stress.Generate(tmp, n); err != nil {
		return fmt.Errorf("generate stress input: %w", err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind stress input: %w", err)
	}

	before := stress.CurrentMemoryKB()
	start := time.Now()

	e := ledger.New()
	p := pipeline.Pipeline{BufferSize: pipeline.DefaultBufferSize}
	if merr := p.Run(context.Background(), e, codec.NewReader(tmp)); merr != nil {
		reportBatchErrors(merr)
	}

	elapsed := time.Since(start)
	after := stress.CurrentMemoryKB()

	fmt.Fprintf(os.Stderr, "processed %d records in %s (%d KB -> %d KB heap)\n", n, elapsed, before, after)

	return codec.WriteAccounts(os.Stdout, e.Accounts)
}

func reportBatchErrors(merr *ledger.MultiError) {
	for _, err := range merr.Errs {
		fmt.Fprintln(os.Stderr, err)
	}
}
