package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/japaniel/vocabreader/pkg/dictionary"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Enricher fills in missing definitions of saved words using a Definer.
type Enricher struct {
	Store   *vocab.Store
	Definer dictionary.Definer
	// BatchSize is how many definitions are written to the store per mutation.
	BatchSize int
	// Logger is used for informational messages (e.g. failed lookups). nil means no logging.
	Logger *log.Logger
	// OnProgress is called with the number of looked up words and the total.
	OnProgress func(current, total int)

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewEnricher creates a new Enricher.
func NewEnricher(store *vocab.Store, definer dictionary.Definer) *Enricher {
	return &Enricher{
		Store:     store,
		Definer:   definer,
		BatchSize: 20,
		Workers:   4, // Default worker count
	}
}

func (en *Enricher) logf(format string, args ...any) {
	if en.Logger != nil {
		en.Logger.Printf(format, args...)
	}
}

// lookupResult holds the outcome of one dictionary lookup.
type lookupResult struct {
	Normalized string
	Definition string
	Err        error
}

// Pending returns the saved entries of the document that have no definition.
func (en *Enricher) Pending(documentID string) []vocab.WordEntry {
	table, ok := en.Store.VocabularyTable(documentID)
	if !ok {
		return nil
	}
	var out []vocab.WordEntry
	for _, e := range table.Entries {
		if e.Definition == "" {
			out = append(out, e)
		}
	}
	return out
}

// Enrich looks up every saved word of the document that lacks a definition
// and stores the answers. Lookups run on the worker pool; writes are batched.
// A failed lookup is logged and skipped. It returns the number of entries
// that received a definition.
func (en *Enricher) Enrich(ctx context.Context, documentID string) (int, error) {
	if en.Store == nil || en.Definer == nil {
		return 0, errors.New("enricher needs a store and a definer")
	}
	if _, ok := en.Store.Document(documentID); !ok {
		return 0, fmt.Errorf("enrich: unknown document %q", documentID)
	}

	pending := en.Pending(documentID)
	total := len(pending)
	if total == 0 {
		return 0, nil // Nothing to do
	}

	workers := en.Workers
	if workers <= 0 {
		workers = 1
	}
	var wp WorkerPoolInterface
	if en.PoolFactory != nil {
		wp = en.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}

	applied := 0
	bw := NewBatchWriter(func(batch []Update) error {
		defs := make(map[string]string, len(batch))
		for _, u := range batch {
			defs[u.Normalized] = u.Definition
		}
		n, err := en.Store.SetDefinitions(documentID, defs)
		applied += n
		return err
	}, en.BatchSize, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan lookupResult, workers*2)
	doneCh := make(chan error, 1)

	wp.Start(ctx)

	// Consumer: hand answers to the batch writer as they arrive.
	go func() {
		defer close(doneCh)
		seen := 0
		for res := range resultCh {
			seen++
			if res.Err != nil {
				en.logf("lookup %q failed: %v", res.Normalized, res.Err)
			} else if res.Definition != "" {
				if err := bw.Submit(Update{Normalized: res.Normalized, Definition: res.Definition}); err != nil {
					cancel()
					doneCh <- err
					return
				}
			}
			if en.OnProgress != nil {
				en.OnProgress(seen, total)
			}
		}
		doneCh <- nil
	}()

	var submitErr error
Loop:
	for _, entry := range pending {
		entry := entry
		job := func(ctx context.Context) error {
			def, err := en.define(ctx, entry)
			select {
			case resultCh <- lookupResult{Normalized: entry.Normalized, Definition: def, Err: err}:
			case <-ctx.Done():
			}
			return err
		}

		// Submit job to the worker pool but remain responsive to context cancellation.
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if err == ErrPoolClosed || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break Loop
			}
			submitErr = err
			break Loop
		}
	}

	// Wait for queued lookups, then signal the consumer that no more results arrive.
	wp.Close()
	close(resultCh)
	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	if submitErr != nil {
		return applied, submitErr
	}
	if consumerErr != nil {
		return applied, consumerErr
	}
	return applied, ctx.Err()
}

// define asks for the normalized form first, then the surface form when the
// two differ.
func (en *Enricher) define(ctx context.Context, entry vocab.WordEntry) (string, error) {
	def, err := en.Definer.Define(ctx, entry.Normalized)
	if err != nil || def != "" {
		return def, err
	}
	if entry.Original != "" && entry.Original != entry.Normalized {
		return en.Definer.Define(ctx, entry.Original)
	}
	return "", nil
}
