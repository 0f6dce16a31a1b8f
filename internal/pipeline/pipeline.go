package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerforge/txnengine/internal/codec"
	"github.com/ledgerforge/txnengine/internal/ledger"
)

// DefaultBufferSize is the channel capacity Pipeline uses when BufferSize is
// left at zero.
const DefaultBufferSize = 256

// Pipeline drives one input stream against a shared ledger.Engine.
type Pipeline struct {
	// BufferSize caps the number of in-flight parsed records the producer
	// may queue ahead of the consumer. Zero means DefaultBufferSize.
	BufferSize int
}

type item struct {
	tx  ledger.Transaction
	err error
}

// Run reads r to completion, applying every parsed Transaction to e in file
// order, and returns every error encountered (parse errors and state-
// machine errors alike) as a *ledger.MultiError, or nil if none occurred.
//
// A panic inside the producer goroutine is recovered and surfaced as a
// single synthetic error, alongside whatever partial result the consumer
// had already accumulated from records parsed before the panic.
func (p Pipeline) Run(ctx context.Context, e *ledger.Engine, r *codec.Reader) *ledger.MultiError {
	bufSize := p.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ch := make(chan item, bufSize)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		defer close(ch)
		defer func() {
			if rec := recover(); rec != nil {
				select {
				case ch <- item{err: fmt.Errorf("parser terminated: %v", rec)}:
				case <-ctx.Done():
				}
			}
		}()

		r.Rows(func(tx ledger.Transaction, recErr *codec.RecordError) bool {
			var next item
			if recErr != nil {
				next = item{err: recErr}
			} else {
				next = item{tx: tx}
			}
			select {
			case ch <- next:
				return true
			case <-ctx.Done():
				return false
			}
		})
		return nil
	})

	var errs []error
	g.Go(func() error {
		for {
			select {
			case it, ok := <-ch:
				if !ok {
					return nil
				}
				if it.err != nil {
					errs = append(errs, it.err)
					continue
				}
				if err := e.ProcessTransaction(it.tx); err != nil {
					errs = append(errs, fmt.Errorf("client %d tx %d: %w", it.tx.Client, it.tx.Tx, err))
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	// errgroup's own returned error is unused: both goroutines always
	// return nil themselves and only ever stop early via ctx.Done(), which
	// this Pipeline never cancels on its own.
	_ = g.Wait()

	return ledger.NewMultiError(errs)
}

// RunConcurrent runs one Pipeline.Run per reader, all against the same
// engine, fanned out with a second errgroup.Group. If the streams'
// client-id and tx-id sets are pairwise disjoint the resulting engine state
// is identical to any sequential interleaving; otherwise the result is some
// valid serialisation, order unspecified.
func RunConcurrent(ctx context.Context, e *ledger.Engine, readers []*codec.Reader, bufferSize int) *ledger.MultiError {
	results := make([]*ledger.MultiError, len(readers))
	g, ctx := errgroup.WithContext(ctx)

	for i, r := range readers {
		i, r := i, r
		g.Go(func() error {
			p := Pipeline{BufferSize: bufferSize}
			results[i] = p.Run(ctx, e, r)
			return nil
		})
	}
	_ = g.Wait()

	var all []error
	for _, res := range results {
		if res != nil {
			all = append(all, res.Errs...)
		}
	}
	return ledger.NewMultiError(all)
}
