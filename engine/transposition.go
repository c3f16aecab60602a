package engine

import (
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"chess-bots/position"
)

const (
	// Flags
	ExactFlag int8 = iota
	LowerFlag      // score is a lower bound (fail high)
	UpperFlag      // score is an upper bound (fail low)

	DefaultTTEntries = 1_000_000

	// Rough per-entry footprint: map bucket share plus the FIFO ring slot.
	ttEntryBytes = 64
	// Never let the table take more than this fraction of physical memory.
	ttMemoryDivisor = 8
)

type TTEntry struct {
	Depth int8
	Score int32
	Move  position.Move
	Flag  int8
}

// TransTable memoises search results by position key. Eviction is FIFO in
// insertion order; overwriting an existing key keeps its place in the queue.
// Safe for concurrent use.
type TransTable struct {
	mu       sync.RWMutex
	entries  map[uint64]TTEntry
	ring     []uint64
	head     int
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewTransTable builds a table holding at most capacity entries. A
// non-positive capacity selects DefaultTTEntries. The cap is lowered when it
// would not fit comfortably in physical memory.
func NewTransTable(capacity int) *TransTable {
	if capacity <= 0 {
		capacity = DefaultTTEntries
	}
	if total := memory.TotalMemory(); total > 0 {
		limit := int(total / ttMemoryDivisor / ttEntryBytes)
		if limit > 0 && capacity > limit {
			log.Warn().Int("requested", capacity).Int("limit", limit).
				Msg("transposition table capped by physical memory")
			capacity = limit
		}
	}
	return &TransTable{
		entries:  make(map[uint64]TTEntry),
		capacity: capacity,
	}
}

// Get returns the entry for key if one exists with Depth >= requiredDepth.
func (tt *TransTable) Get(key uint64, requiredDepth int) (TTEntry, bool) {
	tt.mu.RLock()
	entry, ok := tt.entries[key]
	tt.mu.RUnlock()
	if !ok || int(entry.Depth) < requiredDepth {
		tt.misses.Add(1)
		return TTEntry{}, false
	}
	tt.hits.Add(1)
	return entry, true
}

// Put stores an entry, overwriting whatever was there for key.
func (tt *TransTable) Put(key uint64, depth int, score int32, move position.Move, flag int8) {
	entry := TTEntry{Depth: int8(Clamp(depth, 0, 127)), Score: score, Move: move, Flag: flag}

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if _, exists := tt.entries[key]; exists {
		tt.entries[key] = entry
		return
	}
	if len(tt.ring) < tt.capacity {
		tt.ring = append(tt.ring, key)
	} else {
		delete(tt.entries, tt.ring[tt.head])
		tt.ring[tt.head] = key
		tt.head = (tt.head + 1) % tt.capacity
	}
	tt.entries[key] = entry
}

// Len is the number of stored entries.
func (tt *TransTable) Len() int {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return len(tt.entries)
}

// Capacity is the maximum number of entries kept.
func (tt *TransTable) Capacity() int {
	return tt.capacity
}

// Clear drops every entry and resets the counters.
func (tt *TransTable) Clear() {
	tt.mu.Lock()
	tt.entries = make(map[uint64]TTEntry)
	tt.ring = nil
	tt.head = 0
	tt.mu.Unlock()
	tt.hits.Store(0)
	tt.misses.Store(0)
}

// Stats returns lookup hit and miss counts since the last Clear.
func (tt *TransTable) Stats() (hits, misses uint64) {
	return tt.hits.Load(), tt.misses.Load()
}

// Mate scores are stored relative to the node rather than the root so that a
// mate found through a transposition at a different ply still counts the
// right number of moves.
func scoreToTT(score int32, ply int) int32 {
	if score > Checkmate {
		return score + int32(ply)
	}
	if score < -Checkmate {
		return score - int32(ply)
	}
	return score
}

func scoreFromTT(score int32, ply int) int32 {
	if score > Checkmate {
		return score - int32(ply)
	}
	if score < -Checkmate {
		return score + int32(ply)
	}
	return score
}
