// Package engine picks moves for the strongest agent tier: iterative
// deepening alpha-beta with quiescence, a transposition table, heuristic
// move ordering and an opening book in front of it all.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"chess-bots/position"
)

var (
	// ErrNoLegalMove signals a finished game: the side to move has no moves.
	ErrNoLegalMove = errors.New("no legal move")
	// ErrSearchAborted is returned from inside the search when the deadline
	// passes. It never escapes the package.
	ErrSearchAborted = errors.New("search aborted")
)

// SearchResult is the outcome of a search, scored for the side to move.
type SearchResult struct {
	Score   int32
	Move    position.Move
	HasMove bool
	Depth   int
	Nodes   uint64
}

// Options configures a Searcher.
type Options struct {
	MaxDepth        int
	Budget          Budget
	Workers         int
	CacheEntries    int
	UseCache        bool
	UseQuiescence   bool
	QuiescencePlies int
	UseBook         bool
	BookPath        string
	Eval            EvalConfig
}

// DefaultOptions is the configuration of the strongest tier.
func DefaultOptions() Options {
	return Options{
		MaxDepth:        64,
		Budget:          BudgetForElo(2000),
		Workers:         1,
		CacheEntries:    DefaultTTEntries,
		UseCache:        true,
		UseQuiescence:   true,
		QuiescencePlies: 6,
		UseBook:         true,
		Eval:            DefaultEvalConfig(),
	}
}

// Searcher owns the state that persists between moves for one agent: the
// transposition table, the opening book and the evaluator. All per-search
// state lives on the stack of GetMove, so one Searcher can serve several
// games at once.
type Searcher struct {
	opts Options
	eval *Evaluator
	tt   *TransTable
	book *OpeningBook
}

func NewSearcher(opts Options) *Searcher {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QuiescencePlies <= 0 {
		opts.QuiescencePlies = DefaultOptions().QuiescencePlies
	}
	s := &Searcher{
		opts: opts,
		eval: NewEvaluator(opts.Eval),
	}
	if opts.UseCache {
		s.tt = NewTransTable(opts.CacheEntries)
	}
	if opts.UseBook {
		s.book = LoadOpeningBook(opts.BookPath)
	}
	return s
}

// Options returns the configuration the searcher was built with.
func (s *Searcher) Options() Options {
	return s.opts
}

// Evaluator exposes the static evaluator.
func (s *Searcher) Evaluator() *Evaluator {
	return s.eval
}

// TransTable exposes the transposition table, nil when caching is off.
func (s *Searcher) TransTable() *TransTable {
	return s.tt
}

// Book exposes the opening book, nil when the book is off.
func (s *Searcher) Book() *OpeningBook {
	return s.book
}

// Reset forgets everything learned from earlier searches.
func (s *Searcher) Reset() {
	if s.tt != nil {
		s.tt.Clear()
	}
}

// GetMove picks a move for the side to move in pos within the configured
// budget. pos is left as it was found.
func (s *Searcher) GetMove(ctx context.Context, pos *position.Position) (position.Move, error) {
	return s.GetMoveWithin(ctx, pos, s.opts.Budget)
}

// GetMoveWithin is GetMove with an explicit think-time budget. It fails only
// with ErrNoLegalMove; any other position yields a legal move.
func (s *Searcher) GetMoveWithin(ctx context.Context, pos *position.Position, budget Budget) (position.Move, error) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return position.NoMove, ErrNoLegalMove
	}
	if len(moves) == 1 {
		return moves[0], nil
	}

	if s.book != nil {
		if text, ok := s.book.Pick(pos); ok {
			m, err := pos.ParseMove(text)
			if err == nil {
				log.Debug().Str("move", text).Str("fen", pos.FEN()).Msg("book move")
				return m, nil
			}
			log.Warn().Err(err).Msg("book move rejected")
		}
	}

	ctx, cancel := context.WithDeadline(ctx, budget.Deadline(time.Now()))
	defer cancel()

	result := s.IterativeDeepening(ctx, pos, s.opts.MaxDepth)
	if !result.HasMove {
		return moves[0], nil
	}
	return result.Move, nil
}
