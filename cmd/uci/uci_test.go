package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"chess-bots/engine"
	"chess-bots/position"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.CacheEntries = 1 << 16
	opts.UseBook = false
	return opts
}

func runScript(script ...string) string {
	var out bytes.Buffer
	newSession(&out, testOptions()).run(strings.NewReader(strings.Join(script, "\n") + "\n"))
	return out.String()
}

func TestHandshake(t *testing.T) {
	is := is.New(t)
	out := runScript("uci", "isready", "quit")
	is.True(strings.Contains(out, "id name "))
	is.True(strings.Contains(out, "uciok\n"))
	is.True(strings.Contains(out, "readyok\n"))
}

func TestPositionWithMoves(t *testing.T) {
	is := is.New(t)
	s := newSession(&bytes.Buffer{}, testOptions())

	is.NoErr(s.setPosition(strings.Fields("startpos moves e2e4 e7e5 g1f3")))
	is.Equal(s.pos.BookKey(), "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq")
	is.Equal(s.pos.Ply(), 3)

	fen := "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"
	is.NoErr(s.setPosition(strings.Fields("fen " + fen)))
	is.Equal(s.pos.FEN(), fen)
}

func TestPositionRejectsBadInput(t *testing.T) {
	is := is.New(t)
	s := newSession(&bytes.Buffer{}, testOptions())
	before := s.pos.FEN()

	is.True(s.setPosition(strings.Fields("startpos moves e2e5")) != nil)
	is.True(s.setPosition(strings.Fields("fen not a fen")) != nil)
	is.True(s.setPosition(strings.Fields("somewhere")) != nil)
	is.True(s.setPosition(nil) != nil)
	is.Equal(s.pos.FEN(), before) // failed commands leave the position alone
}

func TestGoFindsMate(t *testing.T) {
	is := is.New(t)
	out := runScript(
		"position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"go depth 3",
	)
	is.True(strings.Contains(out, "score mate 1"))
	is.True(strings.HasSuffix(out, "bestmove a1a8\n"))
}

func TestGoMoveTimeReturnsLegalMove(t *testing.T) {
	is := is.New(t)
	out := runScript("position startpos moves d2d4", "go movetime 50")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	is.True(strings.HasPrefix(last, "bestmove "))

	pos := position.New()
	d4, err := pos.ParseMove("d2d4")
	is.NoErr(err)
	pos.Push(d4)
	_, err = pos.ParseMove(strings.TrimPrefix(last, "bestmove "))
	is.NoErr(err)
}

func TestStopEndsInfiniteSearch(t *testing.T) {
	is := is.New(t)
	out := runScript("position startpos", "go infinite", "stop", "quit")
	is.Equal(strings.Count(out, "bestmove "), 1)
}

func TestInfiniteHoldsBestMoveUntilStop(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	s := newSession(&out, testOptions())
	is.NoErr(s.setPosition(strings.Fields("fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")))

	// The mate is found almost at once, but the search has to keep waiting.
	s.goSearch([]string{"infinite"})
	time.Sleep(200 * time.Millisecond)
	s.mu.Lock()
	early := out.String()
	s.mu.Unlock()
	is.True(!strings.Contains(early, "bestmove"))

	s.stop()
	is.True(strings.HasSuffix(out.String(), "bestmove a1a8\n"))
	is.Equal(strings.Count(out.String(), "bestmove "), 1)
}

func TestEndOfInputStopsInfiniteSearch(t *testing.T) {
	is := is.New(t)
	out := runScript("position startpos", "go infinite")
	is.Equal(strings.Count(out, "bestmove "), 1)
}

func TestGoWithoutMoves(t *testing.T) {
	is := is.New(t)
	out := runScript("position fen rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", "go depth 2")
	is.Equal(out, "bestmove 0000\n")
}

func TestUnknownCommand(t *testing.T) {
	is := is.New(t)
	out := runScript("xyzzy", "quit")
	is.Equal(out, "info string unknown command: xyzzy\n")
}

func TestParseGo(t *testing.T) {
	is := is.New(t)

	p, warnings := parseGo(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 depth 7"))
	is.Equal(len(warnings), 0)
	is.Equal(p.wtime, time.Minute)
	is.Equal(p.btime, 30*time.Second)
	is.Equal(p.winc, time.Second)
	is.Equal(p.binc, 500*time.Millisecond)
	is.Equal(p.depth, 7)

	p, warnings = parseGo(strings.Fields("movetime abc nodes 5 depth"))
	is.Equal(len(warnings), 3)
	is.Equal(p.moveTime, time.Duration(0))
}

func TestLimits(t *testing.T) {
	is := is.New(t)
	white := position.New()
	black, err := position.FromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	is.NoErr(err)

	depth, budget := goParams{depth: 5}.limits(white)
	is.Equal(depth, 5)
	is.Equal(budget, time.Duration(0))

	_, budget = goParams{moveTime: 200 * time.Millisecond}.limits(white)
	is.Equal(budget, 200*time.Millisecond)

	// Black's clock is used when black is to move.
	clock := goParams{wtime: time.Hour, btime: 10 * time.Second}
	_, budget = clock.limits(black)
	is.True(budget > 0)
	is.True(budget < 10*time.Second)

	_, budget = goParams{infinite: true, wtime: time.Minute}.limits(white)
	is.Equal(budget, time.Duration(0))

	depth, budget = goParams{}.limits(white)
	is.Equal(depth, defaultGoDepth)
	is.Equal(budget, defaultMoveTime)
}
