package engine

import (
	"time"

	"lukechampine.com/frand"
)

// Budget is a think-time band. Each move draws a fresh duration from it so
// agents don't answer with machine regularity.
type Budget struct {
	Min time.Duration
	Max time.Duration
}

// BudgetForElo maps an agent's strength tier to its think-time band.
// Stronger agents think longer and more consistently.
func BudgetForElo(elo int) Budget {
	switch {
	case elo < 1000:
		return Budget{Min: 500 * time.Millisecond, Max: 2500 * time.Millisecond}
	case elo < 1500:
		return Budget{Min: time.Second, Max: 3 * time.Second}
	default:
		return Budget{Min: 2 * time.Second, Max: 4 * time.Second}
	}
}

// Fixed is a budget that always yields d.
func Fixed(d time.Duration) Budget {
	return Budget{Min: d, Max: d}
}

// Draw picks a duration uniformly from [Min, Max].
func (b Budget) Draw() time.Duration {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + time.Duration(frand.Uint64n(uint64(b.Max-b.Min)+1))
}

// Deadline fixes the wall-clock end of a search starting now.
func (b Budget) Deadline(now time.Time) time.Time {
	return now.Add(b.Draw())
}

// ClockBudget derives a per-move budget from a game clock, for UCI "go
// wtime/btime" searches. Remaining and increment are for the side to move.
func ClockBudget(remaining, increment time.Duration, fullMoves int) Budget {
	const (
		overhead = 30 * time.Millisecond // reserve for IO jitter
		minMove  = 5 * time.Millisecond
		maxFrac  = 0.7 // never spend more than this share of the clock
	)

	movesLeft := time.Duration(Clamp(45-fullMoves/2, 20, 45))
	moveTime := remaining/movesLeft + increment*9/10

	moveTime = Min(moveTime, time.Duration(float64(remaining)*maxFrac))
	moveTime = Min(moveTime, remaining-overhead)
	moveTime = Max(moveTime, minMove)
	return Fixed(moveTime)
}
