package engine

import (
	"testing"
	"time"

	"github.com/drop-token/internal/bitboard"
)

func TestWorkerRoundTrip(t *testing.T) {
	w := NewWorker(2)
	defer w.Close()

	b := bitboard.NewBoard()
	drop(t, &b, 3, false)

	w.Post(b)
	col := w.Result()
	if b.PossibleMove(col) == 0 {
		t.Fatalf("worker returned full column %d", col)
	}
}

func TestWorkerTryResultDoesNotBlock(t *testing.T) {
	w := NewWorker(2)
	defer w.Close()

	if _, ok := w.TryResult(); ok {
		t.Fatalf("TryResult reported a result before any request")
	}

	w.Post(bitboard.NewBoard())

	// Poll the way the interactive loop would.
	deadline := time.After(10 * time.Second)
	for {
		if col, ok := w.TryResult(); ok {
			if col < 0 || col >= bitboard.Width {
				t.Fatalf("column %d out of range", col)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("no result within deadline")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWorkerSequentialRequests(t *testing.T) {
	w := NewWorker(2)
	defer w.Close()

	b := bitboard.NewBoard()
	for i := 0; i < 3; i++ {
		w.Post(b)
		col := w.Result()
		mask := b.PossibleMove(col)
		if mask == 0 {
			t.Fatalf("request %d returned full column %d", i, col)
		}
		b.Apply(mask, true)
		b.SwapSides()
	}
}
