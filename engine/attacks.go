package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// pawnAttacks returns the squares attacked by the pawns in bb.
func pawnAttacks(bb uint64, white bool) uint64 {
	if white {
		return (bb<<9)&^bitboardFileA | (bb<<7)&^bitboardFileH
	}
	return (bb>>7)&^bitboardFileA | (bb>>9)&^bitboardFileH
}

// attackersOf returns the pieces of side that attack sq. side is white when
// white is true. Sliders see through nothing; occ is the full occupancy.
func attackersOf(sq uint8, occ uint64, side *dragontoothmg.Bitboards, white bool) uint64 {
	sqBB := positionBB[sq]
	// A pawn of colour c attacks sq iff a pawn of the other colour on sq
	// would attack it back.
	attackers := pawnAttacks(sqBB, !white) & side.Pawns
	attackers |= knightMoves[sq] & side.Knights
	attackers |= kingMoves[sq] & side.Kings
	attackers |= dragontoothmg.CalculateBishopMoveBitboard(sq, occ) & (side.Bishops | side.Queens)
	attackers |= dragontoothmg.CalculateRookMoveBitboard(sq, occ) & (side.Rooks | side.Queens)
	return attackers
}

// attackCount is the number of pieces of side attacking sq.
func attackCount(b *dragontoothmg.Board, sq uint8, white bool) int32 {
	side := &b.Black
	if white {
		side = &b.White
	}
	return int32(bits.OnesCount64(attackersOf(sq, b.White.All|b.Black.All, side, white)))
}
