package engine

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// SearchStats collects node and cutoff counts for one search. Parallel root
// workers share one instance, hence the atomics.
type SearchStats struct {
	Nodes            atomic.Uint64
	QNodes           atomic.Uint64
	TTCutoffs        atomic.Uint64
	BetaCutoffs      atomic.Uint64
	QStandPatCutoffs atomic.Uint64
	QBetaCutoffs     atomic.Uint64
}

// TotalNodes counts main and quiescence nodes together.
func (s *SearchStats) TotalNodes() uint64 {
	return s.Nodes.Load() + s.QNodes.Load()
}

// MarshalZerologObject lets the stats be logged with Object("cuts", stats).
func (s *SearchStats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes.Load()).
		Uint64("qnodes", s.QNodes.Load()).
		Uint64("tt", s.TTCutoffs.Load()).
		Uint64("beta", s.BetaCutoffs.Load()).
		Uint64("q_stand_pat", s.QStandPatCutoffs.Load()).
		Uint64("q_beta", s.QBetaCutoffs.Load())
}
