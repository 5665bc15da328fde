package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/drop-token/internal/bitboard"
)

func TestBestMoveOpensInTheCenter(t *testing.T) {
	if testing.Short() {
		t.Skip("full-width search on the empty board")
	}

	for _, depth := range []int{4, 7} {
		eng := NewWithDepth(depth)
		if col := eng.BestMove(bitboard.NewBoard()); col != 3 {
			t.Errorf("depth %d: opening move = column %d, want center column 3", depth, col)
		}
	}
}

func TestBestMoveCompletesOpenTriplet(t *testing.T) {
	// Own has an open horizontal run on the bottom row; the opponent sits on
	// top of it with no immediately playable threat. Either extension wins.
	build := func() bitboard.Board {
		b := bitboard.NewBoard()
		for _, col := range []int{2, 3, 4} {
			drop(t, &b, col, true)
			drop(t, &b, col, false)
		}
		return b
	}

	for _, depth := range []int{1, 3, 8} {
		eng := NewWithDepth(depth)
		b := build()
		col := eng.BestMove(b)
		if col != 1 && col != 5 {
			t.Fatalf("depth %d: played column %d, want a completing column (1 or 5)", depth, col)
		}
		mask := b.PossibleMove(col)
		b.Apply(mask, true)
		if !bitboard.HasWin(b.Own()) {
			t.Fatalf("depth %d: chosen column %d does not win", depth, col)
		}
	}
}

func TestBestMoveBlocksImmediateLoss(t *testing.T) {
	// The opponent threatens a vertical four in column 0; with nothing
	// better on the board the engine has to block it.
	b := bitboard.NewBoard()
	for i := 0; i < 3; i++ {
		drop(t, &b, 0, false)
	}
	drop(t, &b, 3, true)
	drop(t, &b, 4, true)

	eng := NewWithDepth(6)
	if col := eng.BestMove(b); col != 0 {
		t.Fatalf("played column %d, want the blocking column 0", col)
	}
}

func TestBestMoveAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	eng := NewWithDepth(2)

	for playout := 0; playout < 30; playout++ {
		b := bitboard.NewBoard()
		for ply := 0; ; ply++ {
			moves := b.AllMoves()
			if len(moves) == 0 {
				break
			}

			col := eng.BestMove(b)
			if b.PossibleMove(col) == 0 {
				t.Fatalf("playout %d ply %d: engine chose full column %d", playout, ply, col)
			}

			// Advance the playout with a random move instead of the chosen
			// one to cover unlikely positions too.
			mv := moves[rng.Intn(len(moves))]
			own := ply%2 == 0
			b.Apply(mv.Mask, own)
			if bitboard.HasWin(b.Own()) || bitboard.HasWin(b.Opponent()) {
				break
			}
		}
	}
}

func TestTableGenerationsAge(t *testing.T) {
	eng := NewWithDepth(4)
	b := bitboard.NewBoard()
	drop(t, &b, 3, false)

	eng.BestMove(b)
	firstGen := eng.TableSize()
	if firstGen == 0 {
		t.Fatalf("search left no entries for the next generation")
	}
	if len(eng.table) != 0 {
		t.Fatalf("current generation not cleared after BestMove")
	}

	drop(t, &b, 3, true)
	drop(t, &b, 2, false)
	eng.BestMove(b)
	if eng.TableSize() == 0 {
		t.Fatalf("second search left no entries")
	}
}

func TestSearchValueAntisymmetryAtLeafDepth(t *testing.T) {
	// With the depth limit at the root, search returns the inherited
	// estimate untouched; the negamax recursion feeds the child the negated
	// estimate, so leaf values obey the sign flip exactly.
	eng := NewWithDepth(1)
	eng.depth = 0 // force the depth limit at the root
	rng := rand.New(rand.NewSource(8))

	for i := 0; i < 200; i++ {
		b := randomPosition(rng, rng.Intn(20))
		estimate := Evaluate(&b, heuristicClamp)

		eng.board = b
		value, _, chose := eng.search(-MaxScore, MaxScore, estimate, 0)
		if chose {
			t.Fatalf("leaf search chose a move")
		}
		if value != estimate {
			t.Fatalf("leaf value %v, want the estimate %v", value, estimate)
		}

		b.SwapSides()
		eng.board = b
		negValue, _, _ := eng.search(-MaxScore, MaxScore, -estimate, 0)
		if math.Abs(value+negValue) > 1e-12 {
			t.Fatalf("leaf values not antisymmetric: %v vs %v", value, negValue)
		}
	}
}

func TestBestMovePanicsOnTerminalPosition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a terminal position")
		}
	}()

	// A completely full board with no win anywhere: each column is filled
	// bottom-up with two-stone bands so no direction ever reaches four.
	b := bitboard.NewBoard()
	for col := 0; col < bitboard.Width; col++ {
		for row := 0; row < bitboard.Height; row++ {
			band := 0
			if row == 2 || row == 3 {
				band = 1
			}
			drop(t, &b, col, (col+band)%2 == 0)
		}
	}
	if !b.IsTerminal() {
		t.Fatalf("fixture is not terminal")
	}
	NewWithDepth(3).BestMove(b)
}
