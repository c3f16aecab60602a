package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"chess-bots/engine"
	"chess-bots/position"
)

const (
	engineName   = "chess-bots Ricardo"
	engineAuthor = "chess-bots"

	defaultGoDepth = 64
	// Used when "go" carries neither a clock, a movetime nor a depth.
	defaultMoveTime = 5 * time.Second
)

// session is one UCI conversation. Searches run in the background so that
// "stop" and "quit" are read while the engine thinks.
type session struct {
	mu   sync.Mutex // guards out
	out  io.Writer
	opts engine.Options

	searcher *engine.Searcher
	pos      *position.Position

	cancel   context.CancelFunc
	done     chan struct{}
	infinite bool // the running search waits for stop
}

func newSession(out io.Writer, opts engine.Options) *session {
	return &session{
		out:      out,
		opts:     opts,
		searcher: engine.NewSearcher(opts),
		pos:      position.New(),
	}
}

func (s *session) println(args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, args...)
}

// run reads commands until quit or end of input.
func (s *session) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			s.println("id name", engineName)
			s.println("id author", engineAuthor)
			s.println("uciok")
		case "isready":
			s.println("readyok")
		case "ucinewgame":
			s.stop()
			s.searcher = engine.NewSearcher(s.opts)
			s.pos = position.New()
		case "position":
			s.stop()
			if err := s.setPosition(tokens[1:]); err != nil {
				s.println("info string", err)
			}
		case "go":
			s.stop()
			s.goSearch(tokens[1:])
		case "stop":
			s.stop()
		case "quit":
			s.stop()
			return
		default:
			s.println("info string unknown command:", tokens[0])
		}
	}
	// Nobody is left to send stop.
	if s.infinite {
		s.stop()
	}
	s.wait()
}

// setPosition handles "position startpos|fen <fen> [moves ...]". The current
// position is only replaced when the whole command is valid.
func (s *session) setPosition(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("malformed position command")
	}

	var (
		pos  *position.Position
		rest []string
	)
	switch strings.ToLower(args[0]) {
	case "startpos":
		pos, rest = position.New(), args[1:]
	case "fen":
		end := len(args)
		for i, a := range args {
			if strings.ToLower(a) == "moves" {
				end = i
				break
			}
		}
		p, err := position.FromFEN(strings.Join(args[1:end], " "))
		if err != nil {
			return err
		}
		pos, rest = p, args[end:]
	default:
		return fmt.Errorf("invalid position subcommand %q", args[0])
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, text := range rest[1:] {
			m, err := pos.ParseMove(strings.ToLower(text))
			if err != nil {
				return err
			}
			pos.Push(m)
		}
	}
	s.pos = pos
	return nil
}

type goParams struct {
	depth        int
	moveTime     time.Duration
	wtime, btime time.Duration
	winc, binc   time.Duration
	infinite     bool
}

func parseGo(args []string) (goParams, []string) {
	var (
		p        goParams
		warnings []string
	)
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i])
		if key == "infinite" {
			p.infinite = true
			continue
		}
		if i+1 >= len(args) {
			warnings = append(warnings, "missing value for "+key)
			break
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("bad value for %s: %q", key, args[i+1]))
			i++
			continue
		}
		ms := time.Duration(n) * time.Millisecond
		switch key {
		case "depth":
			p.depth = n
		case "movetime":
			p.moveTime = ms
		case "wtime":
			p.wtime = ms
		case "btime":
			p.btime = ms
		case "winc":
			p.winc = ms
		case "binc":
			p.binc = ms
		default:
			warnings = append(warnings, "unknown go option "+key)
		}
		i++
	}
	return p, warnings
}

// limits picks the search limits for the side to move. A zero time means
// the search is bounded by depth only.
func (p goParams) limits(pos *position.Position) (depth int, budget time.Duration) {
	depth = defaultGoDepth
	if p.depth > 0 {
		depth = engine.Min(p.depth, engine.MaxPly-1)
	}

	remaining, inc := p.wtime, p.winc
	if !pos.WhiteToMove() {
		remaining, inc = p.btime, p.binc
	}
	switch {
	case p.infinite:
		return depth, 0
	case p.moveTime > 0:
		return depth, p.moveTime
	case remaining > 0:
		return depth, engine.ClockBudget(remaining, inc, int(pos.Board().Fullmoveno)).Draw()
	case p.depth > 0:
		return depth, 0
	default:
		return depth, defaultMoveTime
	}
}

func (s *session) goSearch(args []string) {
	params, warnings := parseGo(args)
	for _, w := range warnings {
		s.println("info string", w)
	}

	pos := s.pos.Copy()
	depth, budget := params.limits(pos)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if budget > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), budget)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancel = cancel
	s.done = make(chan struct{})
	s.infinite = params.infinite

	searcher := s.searcher
	go func(done chan struct{}) {
		defer close(done)
		defer cancel()
		start := time.Now()

		moves := pos.LegalMoves()
		if len(moves) == 0 {
			if params.infinite {
				<-ctx.Done()
			}
			s.println("bestmove 0000")
			return
		}
		result := searcher.IterativeDeepening(ctx, pos, depth)
		if !result.HasMove {
			result.Move = moves[0]
		}
		if result.Depth > 0 {
			s.println(fmt.Sprintf("info depth %d score %s nodes %d time %d pv %s",
				result.Depth, engine.ScoreString(result.Score), result.Nodes,
				time.Since(start).Milliseconds(), position.MoveString(result.Move)))
		}
		// An infinite search may end early on a mate or at full depth, but
		// bestmove is only sent once the GUI says stop.
		if params.infinite {
			<-ctx.Done()
		}
		s.println("bestmove", position.MoveString(result.Move))
	}(s.done)
}

// stop cancels a running search and waits for its bestmove.
func (s *session) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wait()
}

func (s *session) wait() {
	if s.done != nil {
		<-s.done
		s.done = nil
		s.cancel = nil
		s.infinite = false
	}
}
