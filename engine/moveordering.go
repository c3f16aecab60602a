package engine

import (
	"slices"

	"github.com/samber/lo"

	"chess-bots/position"
)

type move struct {
	move  position.Move
	score int32
}

type moveList struct {
	moves []move
}

/*
Move ordering offsets. Components add up, so a capturing promotion that gives
check outranks a plain capture.
  - The cached best move (TT or previous iteration) goes first.
  - Captures: victim value minus a tenth of the attacker, so PxQ beats QxQ.
  - Promotions by the promoted piece's value.
  - Everything gets a small bonus for landing near the centre.
  - Checks get a flat bonus, found by playing the move and looking.
*/
const (
	hashMoveOffset  int32 = 20000
	captureOffset   int32 = 10000
	promotionOffset int32 = 9000
	checkBonus      int32 = 500
)

// Ordering the moves one at a time, at index given
func orderNextMove(currIndex int, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for index := bestIndex + 1; index < len(moves.moves); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}

	moves.moves[currIndex], moves.moves[bestIndex] = moves.moves[bestIndex], moves.moves[currIndex]
}

// scoreMove assigns the static ordering priority of m in pos.
func scoreMove(pos *position.Position, m position.Move, hashMove position.Move, withChecks bool) int32 {
	to := position.To(m)
	score := centrality[to]

	if m == hashMove {
		score += hashMoveOffset
	}
	if pos.IsCapture(m) {
		victim, _ := pos.PieceAt(to)
		if victim == position.NoPiece {
			victim = position.Pawn // en passant
		}
		attacker, _ := pos.PieceAt(position.From(m))
		score += captureOffset + PieceValue[victim] - PieceValue[attacker]/10
	}
	if promo := position.Promotion(m); promo != position.NoPiece {
		score += promotionOffset + PieceValue[promo]
	}
	if withChecks && pos.GivesCheck(m) {
		score += checkBonus
	}
	return score
}

func scoreMovesList(pos *position.Position, moves []position.Move, hashMove position.Move) (movesList moveList) {
	movesList.moves = make([]move, len(moves))
	for i, m := range moves {
		movesList.moves[i] = move{move: m, score: scoreMove(pos, m, hashMove, true)}
	}
	return movesList
}

// scoreMovesListCaptures keeps only captures and promotions, the moves
// quiescence is allowed to look at. Checks are not scored here; the push/pop
// is too expensive at that node count.
func scoreMovesListCaptures(pos *position.Position, moves []position.Move) (movesList moveList) {
	movesList.moves = make([]move, 0, len(moves))
	for _, m := range moves {
		if !pos.IsCapture(m) && position.Promotion(m) == position.NoPiece {
			continue
		}
		movesList.moves = append(movesList.moves, move{move: m, score: scoreMove(pos, m, position.NoMove, false)})
	}
	return movesList
}

// OrderMoves returns moves sorted by descending ordering priority. Ties keep
// generation order. The input slice is not modified.
func OrderMoves(pos *position.Position, moves []position.Move, hashMove position.Move) []position.Move {
	list := scoreMovesList(pos, moves, hashMove)
	slices.SortStableFunc(list.moves, func(a, b move) int {
		return int(b.score - a.score)
	})
	return lo.Map(list.moves, func(m move, _ int) position.Move { return m.move })
}
