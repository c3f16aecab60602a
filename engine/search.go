package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chess-bots/position"
)

// searchState is what one line of search carries down the tree. Parallel
// workers each get their own, sharing only stats and the Searcher.
type searchState struct {
	ctx   context.Context
	pos   *position.Position
	stats *SearchStats
}

// IterativeDeepening searches depth 1, 2, ... up to maxDepth until ctx
// expires and returns the result of the deepest iteration that finished.
// When not even depth 1 finishes it falls back to the first ordered move.
func (s *Searcher) IterativeDeepening(ctx context.Context, pos *position.Position, maxDepth int) SearchResult {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		score := DrawScore
		if pos.InCheck() {
			score = matedScore(0)
		}
		return SearchResult{Score: score}
	}

	stats := &SearchStats{}
	start := time.Now()
	ordered := OrderMoves(pos, moves, position.NoMove)
	result := SearchResult{Move: ordered[0], HasMove: true}

	for depth := 1; depth <= maxDepth; depth++ {
		if ctx.Err() != nil {
			break
		}

		var (
			score int32
			best  position.Move
			err   error
		)
		if s.opts.Workers > 1 {
			score, best, err = s.rootsearchParallel(ctx, pos, depth, result.Move, stats)
		} else {
			st := &searchState{ctx: ctx, pos: pos.Copy(), stats: stats}
			score, best, err = s.rootsearch(st, depth, result.Move)
		}
		if err != nil {
			break
		}

		result = SearchResult{Score: score, Move: best, HasMove: true, Depth: depth}

		elapsed := time.Since(start)
		log.Debug().
			Int("depth", depth).
			Str("score", ScoreString(score)).
			Str("move", position.MoveString(best)).
			Uint64("nodes", stats.TotalNodes()).
			Dur("elapsed", elapsed).
			Msg("iteration complete")

		if IsMateScore(score) {
			break
		}
	}

	result.Nodes = stats.TotalNodes()
	log.Debug().Object("stats", stats).Int("depth", result.Depth).Msg("search finished")
	return result
}

// rootsearch runs one full-window iteration at the root. The root never takes
// a cutoff from the table since it must produce a move.
func (s *Searcher) rootsearch(st *searchState, depth int, prevBest position.Move) (int32, position.Move, error) {
	if err := st.ctx.Err(); err != nil {
		return 0, position.NoMove, ErrSearchAborted
	}
	st.stats.Nodes.Add(1)

	pos := st.pos
	alpha, beta := -MaxScore, MaxScore
	bestScore := -MaxScore
	var bestMove position.Move

	for _, m := range OrderMoves(pos, pos.LegalMoves(), prevBest) {
		pos.Push(m)
		score, _, err := s.alphabeta(st, depth-1, 1, -beta, -alpha)
		pos.Pop()
		if err != nil {
			return 0, position.NoMove, err
		}
		score = -score

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
	}

	if s.tt != nil {
		s.tt.Put(pos.Key(), depth, scoreToTT(bestScore, 0), bestMove, ExactFlag)
	}
	return bestScore, bestMove, nil
}

// alphabeta is a fail-soft negamax search. Scores are from the side to move's
// point of view. On deadline it returns ErrSearchAborted and nothing from the
// aborted subtree reaches the table.
func (s *Searcher) alphabeta(st *searchState, depth, ply int, alpha, beta int32) (int32, position.Move, error) {
	if err := st.ctx.Err(); err != nil {
		return 0, position.NoMove, ErrSearchAborted
	}
	st.stats.Nodes.Add(1)

	pos := st.pos
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			return matedScore(ply), position.NoMove, nil
		}
		return DrawScore, position.NoMove, nil
	}
	if pos.IsInsufficientMaterial() {
		return DrawScore, position.NoMove, nil
	}

	if depth <= 0 || ply >= MaxPly {
		if s.opts.UseQuiescence {
			score, err := s.quiescence(st, 0, ply, alpha, beta)
			return score, position.NoMove, err
		}
		return s.eval.evaluate(pos, moves), position.NoMove, nil
	}

	/*
		TRANSPOSITION TABLE LOOKUP
		Any entry gives us a move to try first; only a deep enough one with
		a compatible bound ends the node.
	*/
	key := pos.Key()
	var hashMove position.Move
	if s.tt != nil {
		if entry, ok := s.tt.Get(key, 0); ok {
			hashMove = entry.Move
			if int(entry.Depth) >= depth {
				score := scoreFromTT(entry.Score, ply)
				if entry.Flag == ExactFlag ||
					(entry.Flag == LowerFlag && score >= beta) ||
					(entry.Flag == UpperFlag && score <= alpha) {
					st.stats.TTCutoffs.Add(1)
					return score, entry.Move, nil
				}
			}
		}
	}

	alphaOrig := alpha
	bestScore := -MaxScore
	var bestMove position.Move

	moveList := scoreMovesList(pos, moves, hashMove)
	for index := range moveList.moves {
		orderNextMove(index, &moveList)
		m := moveList.moves[index].move

		pos.Push(m)
		score, _, err := s.alphabeta(st, depth-1, ply+1, -beta, -alpha)
		pos.Pop()
		if err != nil {
			return 0, position.NoMove, err
		}
		score = -score

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			st.stats.BetaCutoffs.Add(1)
			break
		}
	}

	if s.tt != nil {
		flag := ExactFlag
		if bestScore <= alphaOrig {
			flag = UpperFlag
		} else if bestScore >= beta {
			flag = LowerFlag
		}
		s.tt.Put(key, depth, scoreToTT(bestScore, ply), bestMove, flag)
	}
	return bestScore, bestMove, nil
}

// quiescence extends the search along captures and promotions until the
// position is quiet, so the horizon doesn't cut through an exchange. qply is
// the distance from where the main search bottomed out.
func (s *Searcher) quiescence(st *searchState, qply, ply int, alpha, beta int32) (int32, error) {
	if err := st.ctx.Err(); err != nil {
		return 0, ErrSearchAborted
	}
	st.stats.QNodes.Add(1)

	pos := st.pos
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			return matedScore(ply), nil
		}
		return DrawScore, nil
	}

	standpat := s.eval.evaluate(pos, moves)
	if standpat >= beta {
		st.stats.QStandPatCutoffs.Add(1)
		return beta, nil
	}
	if standpat > alpha {
		alpha = standpat
	}
	if qply >= s.opts.QuiescencePlies || ply >= MaxPly {
		return alpha, nil
	}

	moveList := scoreMovesListCaptures(pos, moves)
	for index := range moveList.moves {
		orderNextMove(index, &moveList)

		pos.Push(moveList.moves[index].move)
		score, err := s.quiescence(st, qply+1, ply+1, -beta, -alpha)
		pos.Pop()
		if err != nil {
			return 0, err
		}
		score = -score

		if score >= beta {
			st.stats.QBetaCutoffs.Add(1)
			return beta, nil
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha, nil
}
