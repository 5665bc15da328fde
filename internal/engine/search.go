package engine

import (
	"sort"

	"github.com/drop-token/internal/bitboard"
)

const (
	// MaxScore is the value of a guaranteed win; -MaxScore a guaranteed loss.
	MaxScore = 1.0

	// scoreGuard sits below every reachable score and seeds max-building.
	scoreGuard = -1.1

	// discountFactor is applied once per ply so faster wins and slower losses
	// win ties. It must sit extremely close to 1: a win discounted over the
	// deepest possible game (42 plies) must still beat the heuristic clamp.
	discountFactor = 0.99999

	// heuristicClamp bounds every heuristic estimate so that discounted exact
	// win/loss scores always dominate. 0.99999^42 > 0.9995 > 0.97.
	heuristicClamp = 0.97

	// DefaultDepth is the search depth used when none is configured.
	DefaultDepth = 12
)

// Engine holds the position under analysis and two generations of the
// transposition table. The current generation is authoritative within one
// BestMove call; the previous generation only seeds move ordering and is
// discarded afterwards. An Engine is single-threaded: nothing else may touch
// it while BestMove runs.
type Engine struct {
	board bitboard.Board
	depth int

	table    map[bitboard.Key]float64
	oldTable map[bitboard.Key]float64
}

// New returns an engine searching at DefaultDepth.
func New() *Engine {
	return NewWithDepth(DefaultDepth)
}

// NewWithDepth returns an engine with a custom depth limit; values below 1
// fall back to DefaultDepth.
func NewWithDepth(depth int) *Engine {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &Engine{
		depth:    depth,
		table:    make(map[bitboard.Key]float64),
		oldTable: make(map[bitboard.Key]float64),
	}
}

// Depth returns the configured search depth.
func (e *Engine) Depth() int {
	return e.depth
}

// TableSize returns the entry count of the previous-generation table, the
// one retained between moves. Exposed for analytics.
func (e *Engine) TableSize() int {
	return len(e.oldTable)
}

// queuedMove is a legal move that survived presort classification and still
// needs full recursive search, carrying its ordering estimate.
type queuedMove struct {
	mask     uint64
	column   int
	estimate float64
}

// presortResult carries the moves that need expansion plus the provisional
// best found among immediate endings and current-generation cache hits.
type presortResult struct {
	bestValue  float64
	bestColumn int
	haveBest   bool
	queue      []queuedMove
}

// presort tentatively applies every legal move and classifies it. Immediate
// wins and draws and positions already resolved in the current generation are
// settled here; everything else is queued for search, ordered by the negated
// previous-generation value when available and a fresh heuristic estimate
// otherwise. Best-looking moves go first to maximize alpha-beta cutoffs.
func (e *Engine) presort() presortResult {
	result := presortResult{bestValue: scoreGuard, bestColumn: -1}
	test := e.board

	for _, mv := range e.board.AllMoves() {
		test.Apply(mv.Mask, true)

		switch {
		case bitboard.HasWin(test.Own()):
			// A one-ply forced win can never be beaten in a finite zero-sum
			// perfect-information game, so it is accepted outright.
			result.bestValue = MaxScore
			result.bestColumn = mv.Column
			result.haveBest = true

		case test.FullWithoutWin():
			if result.bestValue < 0 {
				result.bestValue = 0
				result.bestColumn = mv.Column
				result.haveBest = true
			}

		default:
			// The child position belongs to the opponent, so cached values
			// flip sign across the perspective swap.
			test.SwapSides()
			key := test.Key()
			test.SwapSides()

			if cached, ok := e.table[key]; ok {
				if score := -cached; score > result.bestValue {
					result.bestValue = score
					result.bestColumn = mv.Column
					result.haveBest = true
				}
			} else if cached, ok := e.oldTable[key]; ok {
				result.queue = append(result.queue, queuedMove{
					mask:     mv.Mask,
					column:   mv.Column,
					estimate: -cached,
				})
			} else {
				result.queue = append(result.queue, queuedMove{
					mask:     mv.Mask,
					column:   mv.Column,
					estimate: Evaluate(&test, heuristicClamp),
				})
			}
		}

		test.Revoke(mv.Mask, true)
	}

	sort.Slice(result.queue, func(i, j int) bool {
		return result.queue[i].estimate > result.queue[j].estimate
	})

	return result
}

// search is the negamax recursion. alpha is the raising bound, beta the
// cutoff bound, estimate the inherited heuristic value of the current
// position, depth the current ply. It returns the node value, the chosen
// column, and whether a move was chosen at all (table hits and depth-limit
// leaves choose none).
//
// The caller's presort has already filtered positions that are lost for the
// side to move or a full-board draw; those never reach this function.
func (e *Engine) search(alpha, beta, estimate float64, depth int) (float64, int, bool) {
	key := e.board.Key()
	if cached, ok := e.table[key]; ok {
		// Subtree already resolved via a transposed path.
		return cached, 0, false
	}

	if depth == e.depth {
		return estimate, 0, false
	}

	bestValue := scoreGuard
	bestColumn := -1

	pre := e.presort()
	if pre.haveBest {
		bestValue = pre.bestValue
		bestColumn = pre.bestColumn
	}

	// The provisional best may already produce a beta cutoff without
	// expanding a single queued move.
	if bestValue > alpha {
		alpha = bestValue
		if bestValue >= beta {
			e.table[key] = bestValue
			return bestValue, bestColumn, true
		}
	}

	for _, mv := range pre.queue {
		e.board.Apply(mv.mask, true)
		e.board.SwapSides()
		value, _, _ := e.search(-beta, -alpha, -mv.estimate, depth+1)
		e.board.SwapSides()
		e.board.Revoke(mv.mask, true)

		adjusted := -value * discountFactor
		if adjusted > bestValue {
			bestValue = adjusted
			bestColumn = mv.column
			if adjusted > alpha {
				alpha = adjusted
			}
		}
		if adjusted > beta {
			break
		}
	}

	e.table[key] = bestValue
	return bestValue, bestColumn, bestColumn >= 0
}

// BestMove installs the position, runs the full-window search, ages the
// transposition tables and returns the chosen column. The position must not
// be terminal; calling BestMove on a terminal position is a programming
// error and panics.
func (e *Engine) BestMove(board bitboard.Board) int {
	e.board = board

	_, column, ok := e.search(-MaxScore, MaxScore, 0, 0)

	// Age the generations: the finished table only hints move ordering in the
	// next call, it is never consulted for exact values again.
	e.oldTable = e.table
	e.table = make(map[bitboard.Key]float64)

	if !ok {
		panic("engine: BestMove called on a terminal position")
	}
	return column
}
