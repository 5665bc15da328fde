package engine

import "github.com/drop-token/internal/bitboard"

// Worker runs an Engine on its own goroutine so a full search never blocks
// the interactive loop. One board snapshot goes in, one chosen column comes
// out; there is no cancellation and no partial result. Callers are expected
// to keep at most one request in flight per worker.
type Worker struct {
	requests chan bitboard.Board
	results  chan int
}

// NewWorker spawns the worker goroutine with its own engine instance. The
// goroutine exits when Close is called.
func NewWorker(depth int) *Worker {
	w := &Worker{
		requests: make(chan bitboard.Board),
		results:  make(chan int),
	}

	go func() {
		eng := NewWithDepth(depth)
		for board := range w.requests {
			w.results <- eng.BestMove(board)
		}
		close(w.results)
	}()

	return w
}

// Post hands a board snapshot to the worker. The board is passed by value, so
// the caller keeps its own copy untouched.
func (w *Worker) Post(board bitboard.Board) {
	w.requests <- board
}

// TryResult polls for a finished computation without blocking.
func (w *Worker) TryResult() (int, bool) {
	select {
	case column, ok := <-w.results:
		return column, ok
	default:
		return 0, false
	}
}

// Result blocks until the in-flight computation finishes.
func (w *Worker) Result() int {
	return <-w.results
}

// Close shuts the worker down. No requests may be posted afterwards.
func (w *Worker) Close() {
	close(w.requests)
}
