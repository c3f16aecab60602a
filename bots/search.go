package bots

import (
	"context"

	"chess-bots/engine"
	"chess-bots/position"
)

// SearchBot delegates to the search engine. Its Searcher, and with it the
// transposition table, lives as long as the bot.
type SearchBot struct {
	profile
	searcher *engine.Searcher
}

func NewSearchBot(id, name string, elo int, searcher *engine.Searcher) *SearchBot {
	return &SearchBot{profile: profile{id: id, name: name, elo: elo}, searcher: searcher}
}

func (b *SearchBot) GetMove(ctx context.Context, pos *position.Position) (position.Move, error) {
	return b.searcher.GetMove(ctx, pos)
}

// Searcher exposes the underlying engine.
func (b *SearchBot) Searcher() *engine.Searcher {
	return b.searcher
}
