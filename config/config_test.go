package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-bots/engine"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Book.Enabled)
	assert.Equal(t, engine.DefaultTTEntries, cfg.Search.CacheEntries)
	assert.Equal(t, 1, cfg.Search.Workers)
	assert.Equal(t, 6, cfg.Search.QuiescencePlies)
	assert.Zero(t, cfg.Search.MoveTime)
	assert.Equal(t, engine.DefaultEvalConfig(), cfg.Eval)
	assert.Equal(t, cfg, Default())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessbots.yaml")
	err := os.WriteFile(path, []byte(`
server:
  addr: "127.0.0.1:9000"
search:
  workers: 4
  move_time: 750ms
eval:
  mobility:
    enabled: false
  doubled_pawns:
    weight: 30
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, 750*time.Millisecond, cfg.Search.MoveTime)
	assert.False(t, cfg.Eval.Mobility.Enabled)
	assert.Equal(t, engine.DefaultEvalConfig().Mobility.Weight, cfg.Eval.Mobility.Weight)
	assert.Equal(t, int32(30), cfg.Eval.DoubledPawns.Weight)
	assert.True(t, cfg.Eval.DoubledPawns.Enabled)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CHESSBOTS_SERVER_ADDR", ":7070")
	t.Setenv("CHESSBOTS_SEARCH_MAX_DEPTH", "5")
	t.Setenv("CHESSBOTS_EVAL_KING_SAFETY_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Search.MaxDepth)
	assert.False(t, cfg.Eval.KingSafety.Enabled)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("CHESSBOTS_SEARCH_WORKERS", "0")
	t.Setenv("CHESSBOTS_LOG_LEVEL", "shouting")
	_, err = Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "search.workers")
	assert.Contains(t, err.Error(), "log.level")
}

func TestSearchOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.SearchOptions(2000)
	assert.Equal(t, engine.BudgetForElo(2000), opts.Budget)
	assert.True(t, opts.UseCache)
	assert.True(t, opts.UseQuiescence)
	assert.True(t, opts.UseBook)
	assert.Equal(t, cfg.Eval, opts.Eval)

	cfg.Search.MoveTime = 200 * time.Millisecond
	cfg.Book.Enabled = false
	opts = cfg.SearchOptions(2000)
	assert.Equal(t, engine.Fixed(200*time.Millisecond), opts.Budget)
	assert.False(t, opts.UseBook)
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data/book.yaml", cfg.Book.Path)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, int32(6), cfg.Eval.KingSafety.Weight)
	// Terms the file leaves out keep their defaults.
	assert.Equal(t, engine.DefaultEvalConfig().Material, cfg.Eval.Material)
}
