package bots

import (
	"context"

	"github.com/samber/lo"

	"chess-bots/engine"
	"chess-bots/position"
)

const (
	greedyCaptureBonus = 10
	greedyCheckBonus   = 5
)

// GreedyBot looks one ply ahead for captures and checks and otherwise
// plays the first legal move.
type GreedyBot struct {
	profile
}

func NewGreedyBot(id, name string, elo int) *GreedyBot {
	return &GreedyBot{profile{id: id, name: name, elo: elo}}
}

func (b *GreedyBot) GetMove(_ context.Context, pos *position.Position) (position.Move, error) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return position.NoMove, engine.ErrNoLegalMove
	}
	// MaxBy keeps the first of equal scores.
	return lo.MaxBy(moves, func(a, best position.Move) bool {
		return greedyScore(pos, a) > greedyScore(pos, best)
	}), nil
}

func greedyScore(pos *position.Position, m position.Move) int {
	score := 0
	if pos.IsCapture(m) {
		score += greedyCaptureBonus
	}
	if pos.GivesCheck(m) {
		score += greedyCheckBonus
	}
	return score
}
