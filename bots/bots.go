// Package bots holds the playable agents, from a random mover up to the
// searching engine, and the registry the web layer picks them from.
package bots

import (
	"context"
	"slices"
	"strings"

	"chess-bots/config"
	"chess-bots/engine"
	"chess-bots/position"
)

// Bot chooses moves. GetMove returns engine.ErrNoLegalMove when the side to
// move has none and must leave pos as it found it.
type Bot interface {
	ID() string
	Name() string
	Elo() int
	GetMove(ctx context.Context, pos *position.Position) (position.Move, error)
}

type profile struct {
	id   string
	name string
	elo  int
}

func (p profile) ID() string   { return p.id }
func (p profile) Name() string { return p.name }
func (p profile) Elo() int     { return p.elo }

// Registry maps lowercase ids to bots.
type Registry struct {
	bots map[string]Bot
}

func NewRegistry(bots ...Bot) *Registry {
	r := &Registry{bots: make(map[string]Bot, len(bots))}
	for _, b := range bots {
		r.bots[strings.ToLower(b.ID())] = b
	}
	return r
}

// Get looks a bot up by id, ignoring case.
func (r *Registry) Get(id string) (Bot, bool) {
	b, ok := r.bots[strings.ToLower(strings.TrimSpace(id))]
	return b, ok
}

// List returns every bot, weakest first.
func (r *Registry) List() []Bot {
	list := make([]Bot, 0, len(r.bots))
	for _, b := range r.bots {
		list = append(list, b)
	}
	slices.SortFunc(list, func(a, b Bot) int {
		if a.Elo() != b.Elo() {
			return a.Elo() - b.Elo()
		}
		return strings.Compare(a.ID(), b.ID())
	})
	return list
}

// Load builds the standard line-up: Alan (random), Elena (greedy) and
// Ricardo (search).
func Load(cfg *config.Config) *Registry {
	return NewRegistry(
		NewRandomBot("alan", "Alan", 500),
		NewGreedyBot("elena", "Elena", 1300),
		NewSearchBot("ricardo", "Ricardo", 2000, engine.NewSearcher(cfg.SearchOptions(2000))),
	)
}
