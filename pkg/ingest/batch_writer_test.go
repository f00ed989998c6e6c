package ingest

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func collectInto(mu *sync.Mutex, batches *[][]Update) FlushFunc {
	return func(batch []Update) error {
		mu.Lock()
		defer mu.Unlock()
		cp := make([]Update, len(batch))
		copy(cp, batch)
		*batches = append(*batches, cp)
		return nil
	}
}

func TestBatchWriterFlushesBySize(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Update
	bw := NewBatchWriter(collectInto(&mu, &batches), 5, 0)
	for i := 0; i < 12; i++ {
		if err := bw.Submit(Update{Normalized: "w", Definition: "d"}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	if total != 12 {
		t.Fatalf("expected 12 updates, got %d", total)
	}
	if len(batches[0]) != 5 || len(batches[2]) != 2 {
		t.Fatalf("unexpected batch sizes: %d, %d", len(batches[0]), len(batches[2]))
	}
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Update
	bw := NewBatchWriter(collectInto(&mu, &batches), 10, 20*time.Millisecond)
	defer bw.Close()
	if err := bw.Submit(Update{Normalized: "owl", Definition: "a bird"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(batches)
		mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for interval flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBatchWriterReportsFlushError(t *testing.T) {
	boom := errors.New("disk full")
	bw := NewBatchWriter(func([]Update) error { return boom }, 2, 0)
	errCh := make(chan error, 1)
	bw.OnError = func(e error) {
		errCh <- e
	}

	bw.Submit(Update{Normalized: "a"})
	bw.Submit(Update{Normalized: "b"})

	err := bw.Close()
	if !errors.Is(err, boom) {
		t.Fatalf("expected Close to return flush error, got %v", err)
	}
	select {
	case e := <-errCh:
		if !errors.Is(e, boom) {
			t.Fatalf("unexpected OnError value: %v", e)
		}
	default:
		t.Fatal("expected OnError to be called")
	}
}

func TestBatchWriterSubmitAfterClose(t *testing.T) {
	bw := NewBatchWriter(nil, 2, 0)
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := bw.Submit(Update{Normalized: "late"}); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed, got %v", err)
	}
	if err := bw.Close(); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed on second close, got %v", err)
	}
}
