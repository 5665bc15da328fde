package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/drop-token/internal/bitboard"
)

// drop plays a column for one side and fails the test on a full column.
func drop(t *testing.T, b *bitboard.Board, column int, own bool) {
	t.Helper()
	mask := b.PossibleMove(column)
	if mask == 0 {
		t.Fatalf("column %d unexpectedly full", column)
	}
	b.Apply(mask, own)
}

// randomPosition plays up to n random legal moves, alternating sides, and
// stops before the position turns terminal.
func randomPosition(rng *rand.Rand, n int) bitboard.Board {
	b := bitboard.NewBoard()
	for i := 0; i < n; i++ {
		moves := b.AllMoves()
		if len(moves) == 0 {
			break
		}
		mv := moves[rng.Intn(len(moves))]
		own := i%2 == 0
		b.Apply(mv.Mask, own)
		if bitboard.HasWin(b.Own()) || bitboard.HasWin(b.Opponent()) || b.FullWithoutWin() {
			b.Revoke(mv.Mask, own)
			break
		}
	}
	return b
}

func TestEvaluateSignSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		b := randomPosition(rng, rng.Intn(30))
		score := Evaluate(&b, heuristicClamp)
		b.SwapSides()
		swapped := Evaluate(&b, heuristicClamp)
		if score != -swapped {
			t.Fatalf("evaluate not antisymmetric: %v vs %v", score, swapped)
		}
	}
}

func TestEvaluatePrefersCenter(t *testing.T) {
	center := bitboard.NewBoard()
	drop(t, &center, 3, true)

	edge := bitboard.NewBoard()
	drop(t, &edge, 0, true)

	offCenter := bitboard.NewBoard()
	drop(t, &offCenter, 2, true)

	centerScore := Evaluate(&center, heuristicClamp)
	offScore := Evaluate(&offCenter, heuristicClamp)
	edgeScore := Evaluate(&edge, heuristicClamp)

	if !(centerScore > offScore) {
		t.Errorf("center stone %v should outscore off-center stone %v", centerScore, offScore)
	}
	if !(offScore > edgeScore) {
		t.Errorf("off-center stone %v should outscore edge stone %v", offScore, edgeScore)
	}
}

func TestEvaluateCountsOpenTriplets(t *testing.T) {
	// Three own stones on the bottom row with both extension cells free; no
	// opponent material anywhere near.
	b := bitboard.NewBoard()
	drop(t, &b, 2, true)
	drop(t, &b, 3, true)
	drop(t, &b, 4, true)

	// Same material shifted apart so no triplet forms.
	scattered := bitboard.NewBoard()
	drop(t, &scattered, 0, true)
	drop(t, &scattered, 3, true)
	drop(t, &scattered, 6, true)

	if Evaluate(&b, heuristicClamp) <= Evaluate(&scattered, heuristicClamp) {
		t.Errorf("an open triplet should outscore scattered stones")
	}
}

func TestEvaluateClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 500; i++ {
		b := randomPosition(rng, rng.Intn(42))
		score := Evaluate(&b, heuristicClamp)
		if score > heuristicClamp || score < -heuristicClamp {
			t.Fatalf("score %v escaped the clamp %v", score, heuristicClamp)
		}
	}
}

func TestDiscountDominatesHeuristic(t *testing.T) {
	// A win discounted over the longest possible game must still beat any
	// clamped heuristic estimate, otherwise search results would stop
	// dominating leaf guesses.
	worstCase := MaxScore * math.Pow(discountFactor, 42)
	if worstCase <= heuristicClamp {
		t.Fatalf("discounted win %v does not dominate heuristic clamp %v", worstCase, heuristicClamp)
	}
}
