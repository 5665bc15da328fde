// Package engine implements the drop-token search: a heuristic position
// evaluator and an alpha-beta pruned negamax recursion over the bitboard,
// backed by a two-generation transposition table.
package engine

import (
	"math/bits"

	"github.com/drop-token/internal/bitboard"
)

// Heuristic weights. Open triplets outrank doublets outrank positional
// control; the center column is worth the most since it participates in the
// largest number of potential lines.
const (
	tripletWeight = 0.04
	doubletWeight = 0.01

	centerWeight = 0.07
	oneOffWeight = 0.03
	twoOffWeight = 0.015
)

// positionalMasks group the columns by distance from the center line.
var positionalMasks = [3]uint64{
	bitboard.ColumnMasks[3],
	bitboard.ColumnMasks[2] | bitboard.ColumnMasks[4],
	bitboard.ColumnMasks[1] | bitboard.ColumnMasks[5],
}

// countOpenTriplets counts three-stone lines with at least one immediately
// extendable free cell, covering all four placements of the gap:
// XXX_, XX_X, X_XX and _XXX.
func countOpenTriplets(board, free uint64) int {
	triplets := 0
	for _, shift := range bitboard.DirShifts {
		pairs := bitboard.ClipShift(board, shift) & board
		runs := bitboard.ClipShift(pairs, shift) & board

		// XXX_
		after := bitboard.ClipShift(runs, shift) & free
		triplets += bits.OnesCount64(after)

		// XX_X
		gapHigh := bitboard.ClipShift(pairs, shift) & free
		triplets += bits.OnesCount64(bitboard.ClipShift(gapHigh, shift) & board)

		// X_XX
		gapLow := bitboard.ClipShiftBack(bitboard.ClipShiftBack(pairs, shift), shift) & free
		triplets += bits.OnesCount64(bitboard.ClipShiftBack(gapLow, shift) & board)

		// _XXX
		before := bitboard.ClipShiftBack(
			bitboard.ClipShiftBack(bitboard.ClipShiftBack(runs, shift), shift), shift) & free
		triplets += bits.OnesCount64(before)
	}
	return triplets
}

// countDoublets counts adjacent same-side pairs in every direction, dead or
// alive.
func countDoublets(board uint64) int {
	doublets := 0
	for _, shift := range bitboard.DirShifts {
		doublets += bits.OnesCount64(bitboard.ClipShift(board, shift) & board)
	}
	return doublets
}

// positionalScore weighs stones by their distance from the center column.
func positionalScore(board uint64) float64 {
	center := bits.OnesCount64(board & positionalMasks[0])
	oneOff := bits.OnesCount64(board & positionalMasks[1])
	twoOff := bits.OnesCount64(board & positionalMasks[2])

	return float64(center)*centerWeight + float64(oneOff)*oneOffWeight + float64(twoOff)*twoOffWeight
}

// sideScore totals the heuristic features for one side's stones.
func sideScore(board, free uint64) float64 {
	score := float64(countOpenTriplets(board, free)) * tripletWeight
	score += float64(countDoublets(board)) * doubletWeight
	score += positionalScore(board)
	return score
}

// Evaluate scores a non-terminal position from the own side's perspective.
// The result is clamped to [-clamp, clamp]; the clamp must stay strictly
// below the guaranteed-win score so exact search results always dominate
// heuristic estimates. Calling this on a terminal position is a logic error.
// Swapping sides negates the result exactly.
func Evaluate(b *bitboard.Board, clamp float64) float64 {
	free := ^(b.Own() | b.Opponent()) & bitboard.FullBoard
	score := sideScore(b.Own(), free) - sideScore(b.Opponent(), free)

	if score > clamp {
		return clamp
	}
	if score < -clamp {
		return -clamp
	}
	return score
}
