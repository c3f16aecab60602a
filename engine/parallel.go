package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"chess-bots/position"
)

// rootsearchParallel splits the ordered root moves over a bounded pool of
// workers. Each worker plays its move on a private copy of the position; the
// table and the best root score found so far are shared. The iteration only
// counts when every root move finished.
func (s *Searcher) rootsearchParallel(ctx context.Context, pos *position.Position, depth int, prevBest position.Move, stats *SearchStats) (int32, position.Move, error) {
	moves := OrderMoves(pos, pos.LegalMoves(), prevBest)
	stats.Nodes.Add(1)

	var alpha atomic.Int32
	alpha.Store(-MaxScore)

	scores := make([]int32, len(moves))
	// A score is exact only if it beat the alpha its worker started from;
	// otherwise it is an upper bound and may tie the real best by accident.
	exact := make([]bool, len(moves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, m := range moves {
		g.Go(func() error {
			st := &searchState{ctx: gctx, pos: pos.Copy(), stats: stats}
			st.pos.Push(m)
			floor := alpha.Load()
			score, _, err := s.alphabeta(st, depth-1, 1, -MaxScore, -floor)
			if err != nil {
				return err
			}
			score = -score
			scores[i] = score
			exact[i] = score > floor
			for {
				cur := alpha.Load()
				if score <= cur || alpha.CompareAndSwap(cur, score) {
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, position.NoMove, err
	}

	best := -1
	for i := range moves {
		if exact[i] && (best < 0 || scores[i] > scores[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, position.NoMove, ErrSearchAborted
	}

	if s.tt != nil {
		s.tt.Put(pos.Key(), depth, scoreToTT(scores[best], 0), moves[best], ExactFlag)
	}
	return scores[best], moves[best], nil
}
