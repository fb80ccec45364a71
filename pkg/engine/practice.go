package engine

import (
	"rhythmforge/pkg/audiobus"
	"rhythmforge/pkg/replay"
)

// checkpointRetryOffsetUs is how far before the checkpoint a retry
// resumes, giving the player a moment to prepare.
const checkpointRetryOffsetUs int64 = 1_000_000

// SetCheckpoint captures a full CheckpointState at the current clock
// position, respecting the replay's minimum checkpoint spacing. Reports
// whether it was placed.
func (e *Engine) SetCheckpoint() bool {
	currentTimeUs := e.AudioClockUs

	if e.CheckpointState != nil && currentTimeUs-e.LastCheckpointTimeUs < replay.CheckpointMinIntervalUs {
		e.log.Debug("checkpoint cooldown active", "remaining_us", replay.CheckpointMinIntervalUs-(currentTimeUs-e.LastCheckpointTimeUs))
		return false
	}

	hitStates := make([]bool, len(e.Chart))
	for i, n := range e.Chart {
		hitStates[i] = n.State.Hit
	}

	e.CheckpointState = &CheckpointState{
		TimeUs:        currentTimeUs,
		HeadIndex:     e.HeadIndex,
		Score:         e.Score,
		Combo:         e.Combo,
		MaxCombo:      e.MaxCombo,
		HitStats:      e.HitStats,
		NotesPassed:   e.NotesPassed,
		NoteHitStates: hitStates,
	}

	e.ReplayData.AddCheckpoint(currentTimeUs)
	e.LastCheckpointTimeUs = currentTimeUs

	e.log.Info("practice checkpoint set", "time_us", currentTimeUs)
	return true
}

// GoToCheckpoint restores the last CheckpointState and rewinds play to
// checkpointRetryOffsetUs before it. Every note's hit bit is restored to
// its value at the checkpoint: notes hit in the lead-in window before the
// checkpoint stay hit and are not reopened. Reports whether a checkpoint
// existed to return to.
func (e *Engine) GoToCheckpoint() bool {
	state := e.CheckpointState
	if state == nil {
		e.log.Debug("no checkpoint to return to")
		return false
	}

	retryTimeUs := state.TimeUs - checkpointRetryOffsetUs
	if retryTimeUs < 0 {
		retryTimeUs = 0
	}

	e.HeadIndex = state.HeadIndex
	e.Score = state.Score
	e.Combo = state.Combo
	e.MaxCombo = state.MaxCombo
	e.HitStats = state.HitStats
	e.NotesPassed = state.NotesPassed

	for i, wasHit := range state.NoteHitStates {
		if i < len(e.Chart) {
			e.Chart[i].State.Hit = wasHit
		}
	}

	// Keep notes from the retry point onward open unless they were hit at
	// the checkpoint; a note already hit at the checkpoint is left hit.
	missUs := e.HitWindow.MissUs
	for i := range e.Chart {
		n := &e.Chart[i]
		alreadyHit := i < len(state.NoteHitStates) && state.NoteHitStates[i]
		if n.StartTimeUs >= retryTimeUs && i >= state.HeadIndex && !alreadyHit {
			n.State.Hit = false
		}
	}

	newHead := state.HeadIndex
	for i := range e.Chart {
		if !e.Chart[i].State.Hit && e.Chart[i].StartTimeUs >= retryTimeUs-missUs {
			newHead = i
			break
		}
	}
	e.HeadIndex = newHead

	e.ReplayData.TruncateInputsAfter(state.TimeUs)

	e.AudioClockUs = retryTimeUs
	seekSeconds := float64(retryTimeUs) / 1_000_000.0
	e.AudioCmds <- audiobus.Seek(seekSeconds)

	for i := range e.KeysHeld {
		e.KeysHeld[i] = false
	}
	e.inputTimestamps = nil
	e.currentNPS = 0

	e.log.Info("practice checkpoint restored", "retry_time_us", retryTimeUs)
	return true
}
