package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"chess-bots/position"
)

// defaultLines is the built-in book used when no file is configured or the
// file can't be read. Keys are move sequences from the start position.
var defaultLines = map[string][]string{
	"":                    {"e2e4", "d2d4", "c2c4", "g1f3", "b2b3"},
	"e2e4":                {"e7e5", "c7c5", "e7e6", "c7c6"},
	"d2d4":                {"d7d5", "g8f6"},
	"c2c4":                {"e7e5", "g8f6", "c7c5"},
	"g1f3":                {"d7d5", "g8f6"},
	"b2b3":                {"e7e5", "d7d5"},
	"e2e4 e7e5":           {"g1f3", "f1c4", "b1c3"},
	"e2e4 c7c5":           {"g1f3", "b1c3"},
	"e2e4 e7e6":           {"d2d4"},
	"e2e4 c7c6":           {"d2d4"},
	"d2d4 d7d5":           {"c2c4", "g1f3"},
	"d2d4 g8f6":           {"c2c4", "g1f3"},
	"e2e4 e7e5 g1f3":      {"b8c6", "g8f6"},
	"e2e4 e7e5 g1f3 b8c6": {"f1b5", "f1c4", "d2d4"},
	"d2d4 d7d5 c2c4":      {"e7e6", "c7c6", "d5c4"},
}

// bookFile is the on-disk layout. YAML is a superset of JSON, so JSON books
// load too.
type bookFile struct {
	// Positions maps a FEN (4 or 6 fields) to candidate moves.
	Positions map[string][]string `yaml:"positions"`
	// Lines maps a space separated move sequence from the start position
	// to candidate moves. "" and "startpos" both mean the start position.
	Lines map[string][]string `yaml:"lines"`
}

// OpeningBook maps positions to candidate moves. It is built once and only
// read afterwards, so it is safe for concurrent use.
type OpeningBook struct {
	entries map[uint64][]string
}

func newOpeningBook() *OpeningBook {
	return &OpeningBook{entries: make(map[uint64][]string)}
}

func bookKey(pos *position.Position) uint64 {
	return xxhash.Sum64String(pos.BookKey())
}

// DefaultOpeningBook returns the small built-in book.
func DefaultOpeningBook() *OpeningBook {
	b := newOpeningBook()
	for line, moves := range defaultLines {
		if err := b.addLine(line, moves); err != nil {
			panic(err)
		}
	}
	return b
}

// LoadOpeningBook reads a book file. An empty path, a missing or a malformed
// file yields the built-in book; the failure is logged and not returned.
func LoadOpeningBook(path string) *OpeningBook {
	if path == "" {
		return DefaultOpeningBook()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("opening book unavailable, using built-in book")
		return DefaultOpeningBook()
	}
	b, err := ParseOpeningBook(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("opening book malformed, using built-in book")
		return DefaultOpeningBook()
	}
	log.Info().Str("path", path).Int("positions", b.Len()).Msg("opening book loaded")
	return b
}

// ParseOpeningBook decodes a book. Entries whose position can't be decoded
// are skipped with a warning; a book with no usable entry is an error.
func ParseOpeningBook(data []byte) (*OpeningBook, error) {
	var f bookFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding opening book: %w", err)
	}

	b := newOpeningBook()
	for fen, moves := range f.Positions {
		pos, err := position.FromFEN(bookFEN(fen))
		if err != nil {
			log.Warn().Err(err).Msg("skipping opening book position")
			continue
		}
		b.add(pos, moves)
	}
	for line, moves := range f.Lines {
		if err := b.addLine(line, moves); err != nil {
			log.Warn().Err(err).Msg("skipping opening book line")
		}
	}
	if b.Len() == 0 {
		return nil, errors.New("opening book has no usable entries")
	}
	return b, nil
}

// bookFEN lets book files leave out the en passant field and the move
// counters, neither of which is part of the book key.
func bookFEN(fen string) string {
	if len(strings.Fields(fen)) == 3 {
		return fen + " -"
	}
	return fen
}

func (b *OpeningBook) add(pos *position.Position, moves []string) {
	key := bookKey(pos)
	for _, m := range moves {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		b.entries[key] = append(b.entries[key], m)
	}
	// A "positions" entry and a "lines" entry can reach the same position.
	if existing, ok := b.entries[key]; ok {
		b.entries[key] = lo.Uniq(existing)
	}
}

func (b *OpeningBook) addLine(line string, moves []string) error {
	pos := position.New()
	line = strings.TrimSpace(line)
	if line != "startpos" {
		for _, text := range strings.Fields(line) {
			m, err := pos.ParseMove(text)
			if err != nil {
				return fmt.Errorf("replaying line %q: %w", line, err)
			}
			pos.Push(m)
		}
	}
	b.add(pos, moves)
	return nil
}

// Lookup returns every candidate move for pos.
func (b *OpeningBook) Lookup(pos *position.Position) ([]string, bool) {
	moves, ok := b.entries[bookKey(pos)]
	return moves, ok && len(moves) > 0
}

// Pick chooses one candidate uniformly at random. The move is not checked
// against the position; callers must validate it.
func (b *OpeningBook) Pick(pos *position.Position) (string, bool) {
	moves, ok := b.Lookup(pos)
	if !ok {
		return "", false
	}
	return moves[frand.Intn(len(moves))], true
}

// Len is the number of distinct positions in the book.
func (b *OpeningBook) Len() int {
	return len(b.entries)
}
