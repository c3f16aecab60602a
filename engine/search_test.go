package engine

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/matryer/is"

	"chess-bots/position"
)

var searchFixtures = []string{
	"4k3/8/8/3q4/8/2N5/8/4K2R w K - 0 1",
	"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
}

// minimax is the unpruned reference search, with the same terminal and leaf
// rules as alphabeta without quiescence.
func minimax(e *Evaluator, pos *position.Position, depth, ply int) int32 {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			return matedScore(ply)
		}
		return DrawScore
	}
	if pos.IsInsufficientMaterial() {
		return DrawScore
	}
	if depth == 0 {
		return e.Evaluate(pos)
	}
	best := -MaxScore
	for _, m := range moves {
		pos.Push(m)
		best = Max(best, -minimax(e, pos, depth-1, ply+1))
		pos.Pop()
	}
	return best
}

func plainOptions() Options {
	opts := DefaultOptions()
	opts.UseCache = false
	opts.UseQuiescence = false
	opts.UseBook = false
	return opts
}

func newState(pos *position.Position) *searchState {
	return &searchState{ctx: context.Background(), pos: pos, stats: &SearchStats{}}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	for _, fen := range searchFixtures {
		t.Run(fen, func(t *testing.T) {
			is := is.New(t)
			s := NewSearcher(plainOptions())
			pos := mustFEN(t, fen)

			want := minimax(s.eval, pos.Copy(), 3, 0)
			got, move, err := s.rootsearch(newState(pos), 3, position.NoMove)
			is.NoErr(err)
			is.Equal(got, want)
			is.True(slices.Contains(pos.LegalMoves(), move))
			is.Equal(pos.FEN(), fen)
		})
	}
}

func TestAlphaBetaWithCacheMatchesMinimax(t *testing.T) {
	for _, fen := range searchFixtures {
		t.Run(fen, func(t *testing.T) {
			is := is.New(t)
			opts := plainOptions()
			opts.UseCache = true
			opts.CacheEntries = 1 << 16
			s := NewSearcher(opts)
			pos := mustFEN(t, fen)

			want := minimax(s.eval, pos.Copy(), 3, 0)
			got, _, err := s.alphabeta(newState(pos), 3, 0, -MaxScore, MaxScore)
			is.NoErr(err)
			is.Equal(got, want)
			is.True(s.tt.Len() > 0)
		})
	}
}

func TestParallelRootMatchesSerial(t *testing.T) {
	for _, fen := range searchFixtures {
		t.Run(fen, func(t *testing.T) {
			is := is.New(t)
			serial := NewSearcher(plainOptions())
			opts := plainOptions()
			opts.Workers = 4
			parallel := NewSearcher(opts)
			pos := mustFEN(t, fen)

			want, _, err := serial.rootsearch(newState(pos.Copy()), 3, position.NoMove)
			is.NoErr(err)
			got, move, err := parallel.rootsearchParallel(context.Background(), pos, 3, position.NoMove, &SearchStats{})
			is.NoErr(err)
			is.Equal(got, want)
			is.True(slices.Contains(pos.LegalMoves(), move))
		})
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.UseBook = false
	s := NewSearcher(opts)
	pos := mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")

	res := s.IterativeDeepening(context.Background(), pos, 4)
	is.True(res.HasMove)
	is.Equal(position.MoveString(res.Move), "a1a8")
	is.Equal(res.Score, mateScore(1))
	is.Equal(ScoreString(res.Score), "mate 1")
}

func TestSearchAvoidsMate(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.UseBook = false
	s := NewSearcher(opts)
	// Black to move must give the king air or cover the back rank.
	pos := mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 b - - 0 1")

	res := s.IterativeDeepening(context.Background(), pos, 3)
	is.True(res.HasMove)
	pos.Push(res.Move)
	defer pos.Pop()
	for _, reply := range pos.LegalMoves() {
		pos.Push(reply)
		mated := pos.IsCheckmate()
		pos.Pop()
		if mated {
			t.Fatalf("%s allows mate by %s", position.MoveString(res.Move), position.MoveString(reply))
		}
	}
}

func TestAbortedSearchReturnsError(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := &searchState{ctx: ctx, pos: position.New(), stats: &SearchStats{}}

	_, _, err := s.alphabeta(st, 4, 0, -MaxScore, MaxScore)
	is.True(errors.Is(err, ErrSearchAborted))
	is.Equal(s.tt.Len(), 0) // nothing cached from an aborted search
}

func TestIterativeDeepeningTinyBudget(t *testing.T) {
	is := is.New(t)
	opts := DefaultOptions()
	opts.UseBook = false
	s := NewSearcher(opts)
	pos := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	start := time.Now()
	res := s.IterativeDeepening(ctx, pos, 64)
	is.True(time.Since(start) < time.Second)
	is.True(res.HasMove)
	is.True(slices.Contains(pos.LegalMoves(), res.Move))
}

func TestIterativeDeepeningExpiredDeadline(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(plainOptions())
	pos := position.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.IterativeDeepening(ctx, pos, 5)
	is.True(res.HasMove)
	is.Equal(res.Depth, 0) // nothing completed, fallback move
	is.True(slices.Contains(pos.LegalMoves(), res.Move))
}

func TestQuiescenceAvoidsDefendedPawn(t *testing.T) {
	is := is.New(t)
	const fen = "4k3/8/2p5/3p4/8/8/3Q4/4K3 w - - 0 1"
	qxd5 := "d2d5"

	opts := plainOptions()
	opts.UseQuiescence = true
	_, move, err := NewSearcher(opts).rootsearch(newState(mustFEN(t, fen)), 1, position.NoMove)
	is.NoErr(err)
	is.True(position.MoveString(move) != qxd5) // c6xd5 wins the queen back

	// Without the capture extension the recapture is over the horizon.
	_, move, err = NewSearcher(plainOptions()).rootsearch(newState(mustFEN(t, fen)), 1, position.NoMove)
	is.NoErr(err)
	is.Equal(position.MoveString(move), qxd5)
}

func TestQuiescenceStandsPatInQuietPosition(t *testing.T) {
	is := is.New(t)
	opts := plainOptions()
	opts.UseQuiescence = true
	s := NewSearcher(opts)
	pos := position.New()

	st := newState(pos)
	score, err := s.quiescence(st, 0, 0, -MaxScore, MaxScore)
	is.NoErr(err)
	is.Equal(score, s.eval.Evaluate(pos))
	is.Equal(st.stats.QNodes.Load(), uint64(1)) // no captures to expand

	// Fail-hard: a stand-pat above beta returns beta itself.
	st = newState(pos)
	beta := s.eval.Evaluate(pos) - 50
	score, err = s.quiescence(st, 0, 0, beta-100, beta)
	is.NoErr(err)
	is.Equal(score, beta)
	is.Equal(st.stats.QStandPatCutoffs.Load(), uint64(1))
}

func TestQuiescencePlyCap(t *testing.T) {
	is := is.New(t)
	const fen = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	qnodes := func(plies int) uint64 {
		opts := plainOptions()
		opts.UseQuiescence = true
		opts.QuiescencePlies = plies
		pos := mustFEN(t, fen)
		st := newState(pos)
		_, err := NewSearcher(opts).quiescence(st, 0, 0, -MaxScore, MaxScore)
		is.NoErr(err)
		is.Equal(pos.FEN(), fen)
		return st.stats.QNodes.Load()
	}

	capped, full := qnodes(1), qnodes(DefaultOptions().QuiescencePlies)
	pos := mustFEN(t, fen)
	captures := 0
	for _, m := range pos.LegalMoves() {
		if pos.IsCapture(m) || position.Promotion(m) != position.NoPiece {
			captures++
		}
	}
	// One ply: the root plus one stand-pat node per capture.
	is.True(capped <= uint64(captures)+1)
	is.True(capped < full)
}
