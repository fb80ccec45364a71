package engine

import "rhythmforge/pkg/chart"

// ActionKind tags which gameplay action was dispatched to the engine.
type ActionKind uint8

const (
	ActionHit ActionKind = iota
	ActionRelease
	ActionTogglePause
	ActionPracticeCheckpoint
	ActionPracticeRetry
)

// Action is one input event translated from a key press by the input
// mapper, ready to hand to HandleInput.
type Action struct {
	Kind   ActionKind
	Column uint8
}

func Hit(column uint8) Action     { return Action{Kind: ActionHit, Column: column} }
func Release(column uint8) Action { return Action{Kind: ActionRelease, Column: column} }
func TogglePause() Action         { return Action{Kind: ActionTogglePause} }
func PracticeCheckpoint() Action  { return Action{Kind: ActionPracticeCheckpoint} }
func PracticeRetry() Action       { return Action{Kind: ActionPracticeRetry} }

// HandleInput dispatches one gameplay action.
func (e *Engine) HandleInput(action Action) {
	switch action.Kind {
	case ActionHit:
		e.handleHit(action.Column)
	case ActionRelease:
		e.handleRelease(action.Column)
	case ActionTogglePause:
		// Pausing is driven by the top-level state machine, not the engine.
	case ActionPracticeCheckpoint:
		if e.PracticeMode {
			e.SetCheckpoint()
		}
	case ActionPracticeRetry:
		if e.PracticeMode {
			e.GoToCheckpoint()
		}
	}
}

func (e *Engine) handleHit(column uint8) {
	if int(column) < len(e.KeysHeld) {
		e.KeysHeld[column] = true
	}
	e.ReplayData.AddPress(e.AudioClockUs, column)
	e.recordInputTimestamp(e.AudioClockUs)
	e.processHit(column)
}

func (e *Engine) handleRelease(column uint8) {
	if int(column) < len(e.KeysHeld) {
		e.KeysHeld[column] = false
	}
	e.ReplayData.AddRelease(e.AudioClockUs, column)
	e.processRelease(column)
}

// processHit finds the best candidate note in column and judges it
// according to its kind. Candidates are found by an immutable scan
// before any mutation, since the best match is only known once the
// whole window has been examined.
func (e *Engine) processHit(column uint8) {
	judgementTime := e.AudioClockUs + e.AudioOffsetUs
	missUs := e.HitWindow.MissUs
	searchLimit := judgementTime + missUs

	bestIdx := -1
	var bestDiff int64
	for i := e.HeadIndex; i < len(e.Chart); i++ {
		note := &e.Chart[i]
		if note.StartTimeUs > searchLimit {
			break
		}
		if note.Column != column || note.State.Hit {
			continue
		}
		diff := note.StartTimeUs - judgementTime
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		inWindow := abs <= missUs
		// A burst that has already taken its first press keeps accepting
		// presses until its end time.
		if note.IsBurst() && note.State.Burst.FirstDiffSet && judgementTime <= note.EndTimeUs() {
			inWindow = true
		}
		if inWindow && (bestIdx == -1 || abs < bestDiff) {
			bestIdx = i
			bestDiff = abs
		}
	}

	if bestIdx == -1 {
		e.LastHitTimingUs = nil
		j := chart.GhostTap
		e.LastHitJudgement = &j
		e.applyJudgement(chart.GhostTap)
		return
	}

	note := &e.Chart[bestIdx]
	diffUs := note.StartTimeUs - judgementTime

	switch note.Kind {
	case chart.KindTap:
		j, _ := e.HitWindow.Judge(diffUs)
		note.State.Hit = true
		e.LastHitTimingUs = &diffUs
		e.LastHitJudgement = &j
		e.applyJudgement(j)

	case chart.KindHold:
		j, _ := e.HitWindow.Judge(diffUs)
		note.State.Hold.StartTimeUs = judgementTime
		note.State.Hold.Pressed = true
		note.State.Hold.IsHeld = true
		e.LastHitTimingUs = &diffUs
		e.LastHitJudgement = &j
		// Terminal judgement comes on release; this one is HUD-only.

	case chart.KindMine:
		note.State.Hit = true
		j := chart.Miss
		e.LastHitTimingUs = &diffUs
		e.LastHitJudgement = &j
		e.applyJudgement(chart.Miss)

	case chart.KindBurst:
		note.State.Burst.CurrentHits++
		if !note.State.Burst.FirstDiffSet {
			note.State.Burst.FirstDiffUs = diffUs
			note.State.Burst.FirstDiffSet = true
		}
		if note.State.Burst.CurrentHits >= note.State.Burst.RequiredHits {
			note.State.Hit = true
			j, _ := e.HitWindow.Judge(note.State.Burst.FirstDiffUs)
			firstDiff := note.State.Burst.FirstDiffUs
			e.LastHitTimingUs = &firstDiff
			e.LastHitJudgement = &j
			e.applyJudgement(j)
		}
	}
}

// holdRatioThresholds maps a completed hold's ratio of held duration to
// expected duration onto a judgement. Checked in descending order; the
// first satisfied threshold wins, so an exact 0.9 ratio is a Marv.
var holdRatioThresholds = []struct {
	min   float64
	grade chart.Judgement
}{
	{0.9, chart.Marv},
	{0.8, chart.Perfect},
	{0.6, chart.Great},
	{0.4, chart.Good},
	{0.2, chart.Bad},
}

func judgeHoldRatio(ratio float64) chart.Judgement {
	for _, t := range holdRatioThresholds {
		if ratio >= t.min {
			return t.grade
		}
	}
	return chart.Miss
}

// processRelease finds the first active held Hold in column and grades
// it by how much of its expected duration was actually held. Releases
// that match no active hold are ignored for scoring but remain in the
// replay (already recorded by handleRelease).
func (e *Engine) processRelease(column uint8) {
	judgementTime := e.AudioClockUs + e.AudioOffsetUs

	for i := e.HeadIndex; i < len(e.Chart); i++ {
		note := &e.Chart[i]
		if note.Column != column || note.State.Hit {
			continue
		}
		if !note.IsHold() || !note.State.Hold.IsHeld {
			continue
		}

		holdDurationUs := judgementTime - note.State.Hold.StartTimeUs
		expectedDurationUs := note.DurationUs

		note.State.Hold.IsHeld = false
		note.State.Hit = true

		var ratio float64
		if expectedDurationUs != 0 {
			ratio = float64(holdDurationUs) / float64(expectedDurationUs)
		}
		j := judgeHoldRatio(ratio)
		e.LastHitJudgement = &j
		e.applyJudgement(j)
		return
	}
}
