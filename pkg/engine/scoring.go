package engine

import "rhythmforge/pkg/chart"

// applyJudgement updates score, combo, and stats for j. GhostTap is
// tallied but never touches combo, score, or notes_passed.
func (e *Engine) applyJudgement(j chart.Judgement) {
	e.HitStats.Add(j)

	if j == chart.GhostTap {
		return
	}

	if j == chart.Miss {
		e.Combo = 0
		e.NotesPassed++
		return
	}

	e.Combo++
	if e.Combo > e.MaxCombo {
		e.MaxCombo = e.Combo
	}
	e.NotesPassed++
	e.Score += chart.ScoreFor(j)
}
