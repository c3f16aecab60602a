// Command searchbench runs fixed-depth searches and reports node counts and
// timings, for comparing search changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-bots/engine"
	"chess-bots/position"
)

var benchPositions = []string{
	position.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1",
}

func main() {
	depthFlag := flag.Int("depth", 6, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches per position")
	fenFlag := flag.String("fen", "", "FEN to search (empty = built-in suite)")
	workers := flag.Int("workers", 1, "root search workers")
	noCache := flag.Bool("nocache", false, "disable the transposition table")
	verbose := flag.Bool("v", false, "log every completed iteration")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *depthFlag <= 0 || *depthFlag >= engine.MaxPly {
		log.Fatal().Int("depth", *depthFlag).Msg("depth out of range")
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	fens := benchPositions
	if *fenFlag != "" {
		fens = []string{*fenFlag}
	}

	opts := engine.DefaultOptions()
	opts.UseBook = false
	opts.UseCache = !*noCache
	opts.Workers = *workers

	fmt.Printf("searchbench: depth=%d repeat=%d workers=%d cache=%t\n", *depthFlag, *repeatFlag, *workers, opts.UseCache)

	startAll := time.Now()
	for _, fen := range fens {
		pos, err := position.FromFEN(fen)
		if err != nil {
			log.Fatal().Err(err).Msg("bad position")
		}
		for i := range *repeatFlag {
			// A fresh searcher per run so cache contents don't carry over.
			s := engine.NewSearcher(opts)
			start := time.Now()
			result := s.IterativeDeepening(context.Background(), pos, *depthFlag)
			elapsed := time.Since(start)

			move := "none"
			if result.HasMove {
				move = position.MoveString(result.Move)
			}
			fmt.Printf("%-70s run %d: bestmove %s score %s depth %d nodes %d time %v nps %.0f\n",
				fen, i+1, move, engine.ScoreString(result.Score), result.Depth,
				result.Nodes, elapsed, float64(result.Nodes)/elapsed.Seconds())
			if tt := s.TransTable(); tt != nil {
				hits, misses := tt.Stats()
				fmt.Printf("%-70s        tt entries %d hits %d misses %d\n", "", tt.Len(), hits, misses)
			}
		}
	}
	fmt.Printf("total time: %v\n", time.Since(startAll))

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
