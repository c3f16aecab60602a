package bots

import (
	"context"

	"lukechampine.com/frand"

	"chess-bots/engine"
	"chess-bots/position"
)

// RandomBot plays a uniformly random legal move.
type RandomBot struct {
	profile
}

func NewRandomBot(id, name string, elo int) *RandomBot {
	return &RandomBot{profile{id: id, name: name, elo: elo}}
}

func (b *RandomBot) GetMove(_ context.Context, pos *position.Position) (position.Move, error) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return position.NoMove, engine.ErrNoLegalMove
	}
	return moves[frand.Intn(len(moves))], nil
}
