// Command uci plays the searching tier over the UCI protocol on stdin and
// stdout. Logs go to stderr.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"chess-bots/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	elo := flag.Int("elo", 2000, "strength tier whose options the engine uses")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Log.SetupLogging(); err != nil {
		log.Fatal().Err(err).Msg("configuring logging")
	}

	newSession(os.Stdout, cfg.SearchOptions(*elo)).run(os.Stdin)
}
