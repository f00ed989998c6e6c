package ingest

import (
	"fmt"
	"sync"
	"time"
)

// Update is one definition waiting to be written to a vocabulary table.
type Update struct {
	Normalized string
	Definition string
}

// FlushFunc persists a batch of updates. It is never called concurrently.
type FlushFunc func(batch []Update) error

// BatchWriter buffers updates and flushes them in batches, either when the
// buffer fills up or when the flush interval elapses.
type BatchWriter struct {
	mu          sync.Mutex
	buf         []Update
	cap         int
	flushTicker *time.Ticker
	closed      bool
	wg          sync.WaitGroup
	stop        chan struct{}

	commitCh chan []Update
	flush    FlushFunc
	OnError  func(error)

	// lastErr stores the first asynchronous error seen by the writer. Protected by errMu.
	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a new BatchWriter.
// flush: called with each batch, from a single goroutine.
// bufferSize: flush when buffer reaches this size.
// flushInterval: flush after this duration (0 to disable).
func NewBatchWriter(flush FlushFunc, bufferSize int, flushInterval time.Duration) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	bw := &BatchWriter{
		buf:      make([]Update, 0, bufferSize),
		cap:      bufferSize,
		stop:     make(chan struct{}),
		commitCh: make(chan []Update, 2), // Buffer a couple of batches
		flush:    flush,
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.flushTicker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw
}

// Submit enqueues an update.
func (bw *BatchWriter) Submit(u Update) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, u)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held. A busy committer blocks Submit, which
// propagates backpressure to the caller.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]Update, 0, bw.cap)
	bw.commitCh <- batch
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		if err := bw.executeBatch(batch); err != nil {
			// Persist the first async error so callers can retrieve it after Close().
			bw.errMu.Lock()
			if bw.lastErr == nil {
				bw.lastErr = err
			}
			bw.errMu.Unlock()
			if bw.OnError != nil {
				bw.OnError(err)
			}
		}
	}
}

func (bw *BatchWriter) executeBatch(batch []Update) error {
	if bw.flush == nil {
		return nil
	}
	if err := bw.flush(batch); err != nil {
		return fmt.Errorf("failed to write batch (%d items): %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.stop:
			return
		case <-bw.flushTicker.C:
			bw.mu.Lock()
			if !bw.closed && len(bw.buf) > 0 {
				bw.flushLocked()
			}
			bw.mu.Unlock()
		}
	}
}

// Close stops accepting submissions, flushes what is buffered and waits for
// pending writes to complete. It returns the first write error, if any.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.flushTicker != nil {
		bw.flushTicker.Stop()
	}
	// flush remaining
	bw.flushLocked()
	bw.mu.Unlock()

	close(bw.stop)     // Stop ticker loop
	close(bw.commitCh) // Stop committer loop
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
