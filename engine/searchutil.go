package engine

import "fmt"

// mateScore is the score of delivering mate at the given ply from the root.
// Shorter mates score higher.
func mateScore(ply int) int32 {
	return Checkmate + MaxPly - int32(ply)
}

// matedScore is the score for the side to move being mated at ply.
func matedScore(ply int) int32 {
	return -mateScore(ply)
}

// IsMateScore reports whether score encodes a forced mate found by search.
func IsMateScore(score int32) bool {
	return abs(score) > Checkmate
}

// ScoreString formats a score the way UCI "info score" expects it: either
// "cp N" or "mate N" in moves, negative when the side to move gets mated.
func ScoreString(score int32) string {
	if !IsMateScore(score) {
		return fmt.Sprintf("cp %d", score)
	}
	pliesToMate := int(Checkmate + MaxPly - abs(score))
	mateInN := (pliesToMate + 1) / 2
	if score < 0 {
		mateInN = -mateInN
	}
	return fmt.Sprintf("mate %d", mateInN)
}
