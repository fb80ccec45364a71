package engine

import "rhythmforge/pkg/replay"

// Simulate re-derives the canonical ReplayResult for this play by
// replaying ReplayData against the original chart layout. Called at
// game-finish so the persisted score is the deterministic, replayable
// one rather than whatever the live run happened to compute.
func (e *Engine) Simulate() replay.Result {
	return replay.Simulate(e.ReplayData, e.Chart, e.HitWindow)
}
