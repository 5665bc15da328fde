package bitboard

import (
	"math/rand"
	"testing"
)

// drop plays a column for one side and fails the test on a full column.
func drop(t *testing.T, b *Board, column int, own bool) {
	t.Helper()
	mask := b.PossibleMove(column)
	if mask == 0 {
		t.Fatalf("column %d unexpectedly full", column)
	}
	b.Apply(mask, own)
}

func TestApplyRevokeRestores(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		b := NewBoard()
		for j := 0; j < rng.Intn(40); j++ {
			moves := b.AllMoves()
			if len(moves) == 0 {
				break
			}
			b.Apply(moves[rng.Intn(len(moves))].Mask, j%2 == 0)
		}

		before := b
		for _, mv := range b.AllMoves() {
			for _, own := range []bool{true, false} {
				b.Apply(mv.Mask, own)
				b.Revoke(mv.Mask, own)
				if b != before {
					t.Fatalf("apply+revoke changed the board: %+v -> %+v", before, b)
				}
			}
		}
	}
}

func TestKeyMirrorInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		b := NewBoard()
		for j := 0; j < rng.Intn(42); j++ {
			moves := b.AllMoves()
			if len(moves) == 0 {
				break
			}
			b.Apply(moves[rng.Intn(len(moves))].Mask, j%2 == 0)
		}

		mirrored := Board{
			own:      FlipBoard(b.own),
			opponent: FlipBoard(b.opponent),
		}
		if b.Key() != mirrored.Key() {
			t.Fatalf("position and mirror disagree on key: %+v vs %+v", b.Key(), mirrored.Key())
		}
	}
}

func TestSwapSides(t *testing.T) {
	b := NewBoard()
	drop(t, &b, 0, true)
	drop(t, &b, 1, false)

	own, opp := b.Own(), b.Opponent()
	b.SwapSides()
	if b.Own() != opp || b.Opponent() != own {
		t.Fatalf("swap did not exchange sides")
	}
	b.SwapSides()
	if b.Own() != own || b.Opponent() != opp {
		t.Fatalf("double swap did not restore")
	}
}

func TestLanding(t *testing.T) {
	b := NewBoard()
	if row, ok := b.Landing(2); !ok || row != 0 {
		t.Fatalf("empty column landing = (%d,%v), want (0,true)", row, ok)
	}

	drop(t, &b, 2, true)
	drop(t, &b, 2, false)
	if row, ok := b.Landing(2); !ok || row != 2 {
		t.Fatalf("landing on two stones = (%d,%v), want (2,true)", row, ok)
	}

	for i := 0; i < 4; i++ {
		drop(t, &b, 2, i%2 == 0)
	}
	if _, ok := b.Landing(2); ok {
		t.Fatalf("full column must report no landing row")
	}
}

func TestStonesIdentity(t *testing.T) {
	b := NewBoard()
	b.SetFirstPlayerOwn(true)
	drop(t, &b, 3, true)  // first player
	drop(t, &b, 3, false) // second player

	stones := b.Stones()
	if len(stones) != 2 {
		t.Fatalf("got %d stones, want 2", len(stones))
	}
	for _, s := range stones {
		switch {
		case s.Column == 3 && s.Row == 0 && !s.FirstPlayer:
			t.Errorf("bottom stone should belong to the first player")
		case s.Column == 3 && s.Row == 1 && s.FirstPlayer:
			t.Errorf("top stone should belong to the second player")
		}
	}
}

func TestStatusPendingAndWin(t *testing.T) {
	b := NewBoard()
	b.SetFirstPlayerOwn(false)

	if result, _ := b.Status(); result != Pending {
		t.Fatalf("empty board status = %v, want pending", result)
	}

	// First player (opponent mask) builds a vertical run in column 0; the
	// second player follows in column 1.
	for i := 0; i < 3; i++ {
		drop(t, &b, 0, false)
		drop(t, &b, 1, true)
	}
	drop(t, &b, 0, false)

	result, line := b.Status()
	if result != FirstPlayerWon {
		t.Fatalf("status = %v, want first player win", result)
	}
	if len(line) != 4 {
		t.Fatalf("winning line has %d cells, want 4", len(line))
	}
	for _, c := range line {
		if c.Column != 0 {
			t.Errorf("winning cell %+v not in column 0", c)
		}
	}
	if !b.IsTerminal() {
		t.Fatalf("won board must be terminal")
	}
}

// drawBoard builds a completely full board with no run of four anywhere:
// cell (x,y) belongs to the own side when (x + band(y)) is even, where band
// shifts the parity for the middle two rows. Every direction maxes out at
// runs of two.
func drawBoard() Board {
	b := NewBoard()
	for y := 0; y < Height; y++ {
		band := 0
		if y == 2 || y == 3 {
			band = 1
		}
		for x := 0; x < Width; x++ {
			b.Apply(bit(x, y), (x+band)%2 == 0)
		}
	}
	return b
}

func TestStatusDraw(t *testing.T) {
	b := drawBoard()

	if HasWin(b.Own()) || HasWin(b.Opponent()) {
		t.Fatalf("draw fixture unexpectedly contains a win")
	}
	if !b.FullWithoutWin() {
		t.Fatalf("draw fixture is not full")
	}
	if result, line := b.Status(); result != Draw || line != nil {
		t.Fatalf("status = %v (line %v), want draw with no line", result, line)
	}
	if !b.IsTerminal() {
		t.Fatalf("full board must be terminal")
	}
	if len(b.AllMoves()) != 0 {
		t.Fatalf("full board must generate no moves")
	}
}

func TestReset(t *testing.T) {
	b := NewBoard()
	drop(t, &b, 0, true)
	drop(t, &b, 6, false)
	b.Reset()
	if b.Own() != 0 || b.Opponent() != 0 {
		t.Fatalf("reset left stones on the board")
	}
}
