// Package config loads service settings from an optional YAML file and
// CHESSBOTS_* environment variables on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"chess-bots/engine"
)

const EnvPrefix = "CHESSBOTS"

type Config struct {
	Server ServerConfig      `mapstructure:"server"`
	Log    LogConfig         `mapstructure:"log"`
	Book   BookConfig        `mapstructure:"book"`
	Search SearchConfig      `mapstructure:"search"`
	Eval   engine.EvalConfig `mapstructure:"eval"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type BookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SearchConfig tunes the searching tier. A zero MoveTime means the think
// time is drawn from the tier's Elo band.
type SearchConfig struct {
	CacheEntries    int           `mapstructure:"cache_entries"`
	Workers         int           `mapstructure:"workers"`
	MaxDepth        int           `mapstructure:"max_depth"`
	MoveTime        time.Duration `mapstructure:"move_time"`
	QuiescencePlies int           `mapstructure:"quiescence_plies"`
}

func evalTerms(c *engine.EvalConfig) map[string]*engine.EvalTerm {
	return map[string]*engine.EvalTerm{
		"material":            &c.Material,
		"pawn_center":         &c.PawnCenter,
		"pawn_advance":        &c.PawnAdvance,
		"centrality":          &c.Centrality,
		"center_control":      &c.CenterControl,
		"king_safety":         &c.KingSafety,
		"mobility":            &c.Mobility,
		"doubled_pawns":       &c.DoubledPawns,
		"rook_open_file":      &c.RookOpenFile,
		"rook_semi_open_file": &c.RookSemiOpenFile,
		"minor_development":   &c.MinorDevelopment,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("book.enabled", true)
	v.SetDefault("book.path", "")

	v.SetDefault("search.cache_entries", engine.DefaultTTEntries)
	v.SetDefault("search.workers", 1)
	v.SetDefault("search.max_depth", 64)
	v.SetDefault("search.move_time", time.Duration(0))
	v.SetDefault("search.quiescence_plies", 6)

	def := engine.DefaultEvalConfig()
	for name, term := range evalTerms(&def) {
		v.SetDefault("eval."+name+".enabled", term.Enabled)
		v.SetDefault("eval."+name+".weight", term.Weight)
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default is the configuration with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	return cfg
}

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) Validate() error {
	var errs []error
	if c.Search.Workers < 1 {
		errs = append(errs, fmt.Errorf("search.workers must be at least 1, got %d", c.Search.Workers))
	}
	if c.Search.MaxDepth < 1 || c.Search.MaxDepth > engine.MaxPly {
		errs = append(errs, fmt.Errorf("search.max_depth must be in [1, %d], got %d", engine.MaxPly, c.Search.MaxDepth))
	}
	if c.Search.QuiescencePlies < 1 || c.Search.QuiescencePlies > 16 {
		errs = append(errs, fmt.Errorf("search.quiescence_plies must be in [1, 16], got %d", c.Search.QuiescencePlies))
	}
	if c.Search.CacheEntries < 1 {
		errs = append(errs, fmt.Errorf("search.cache_entries must be positive, got %d", c.Search.CacheEntries))
	}
	if c.Search.MoveTime < 0 {
		errs = append(errs, fmt.Errorf("search.move_time must not be negative, got %s", c.Search.MoveTime))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SearchOptions builds the engine configuration for a searching agent of the
// given strength.
func (c *Config) SearchOptions(elo int) engine.Options {
	budget := engine.BudgetForElo(elo)
	if c.Search.MoveTime > 0 {
		budget = engine.Fixed(c.Search.MoveTime)
	}
	return engine.Options{
		MaxDepth:        c.Search.MaxDepth,
		Budget:          budget,
		Workers:         c.Search.Workers,
		CacheEntries:    c.Search.CacheEntries,
		UseCache:        true,
		UseQuiescence:   true,
		QuiescencePlies: c.Search.QuiescencePlies,
		UseBook:         c.Book.Enabled,
		BookPath:        c.Book.Path,
		Eval:            c.Eval,
	}
}

// SetupLogging configures the global zerolog logger.
func (c LogConfig) SetupLogging() error {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	if c.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}
