// Package engine implements the live gameplay state machine: the
// audio-synchronized clock, note hit detection, scoring, and practice
// mode checkpoints.
package engine

import (
	"log/slog"

	"rhythmforge/pkg/audiobus"
	"rhythmforge/pkg/chart"
	"rhythmforge/pkg/replay"
	"rhythmforge/pkg/snapshot"
)

// PreRollUs is how far before zero the audio clock starts, giving the
// player a lead-in before the music (and the miss sweep) begins.
const PreRollUs int64 = 3_000_000

// Drift correction thresholds and coefficient, applied once per tick
// against the hardware-derived position read from the audio bus.
const (
	hardSnapThresholdUs  int64   = 80_000
	softCorrectThreshold int64   = 5_000
	softCorrectCoeff     float64 = 0.05
)

// finishTailUs is how long after the last note's start time the engine
// considers the play finished, letting the final hit's visuals resolve.
const finishTailUs int64 = 2_000_000

const numColumns = 10

// CheckpointState is the full snapshot captured by SetCheckpoint, enough
// to restore scalar progress and every note's hit bit.
type CheckpointState struct {
	TimeUs        int64
	HeadIndex     int
	Score         uint32
	Combo         uint32
	MaxCombo      uint32
	HitStats      chart.HitStats
	NotesPassed   uint32
	NoteHitStates []bool
}

// Engine is the live runtime state for one play. It owns its chart and
// replay data exclusively; nothing else ever mutates them concurrently.
type Engine struct {
	log *slog.Logger

	Chart     []chart.NoteData
	HeadIndex int

	Score       uint32
	Combo       uint32
	MaxCombo    uint32
	HitStats    chart.HitStats
	NotesPassed uint32

	KeysHeld         []bool
	LastHitTimingUs  *int64
	LastHitJudgement *chart.Judgement

	Bus           *audiobus.Bus
	AudioCmds     chan<- audiobus.Command
	AudioClockUs  int64
	AudioOffsetUs int64
	startedAudio  bool

	Rate          float64
	ScrollSpeedMs float64
	HitWindow     chart.HitWindow
	HitWindowMode chart.Mode
	HitWindowVal  float64

	ReplayData  *replay.Data
	BeatmapHash string

	inputTimestamps []int64
	currentNPS      float64

	PracticeMode         bool
	CheckpointState      *CheckpointState
	LastCheckpointTimeUs int64
}

// New constructs an engine for a fresh play against notes, communicating
// with the audio worker over audioCmds and reading its position from bus.
func New(notes []chart.NoteData, bus *audiobus.Bus, audioCmds chan<- audiobus.Command, rate float64, beatmapHash string, mode chart.Mode, hitWindowValue float64, log *slog.Logger) *Engine {
	hw := chart.BuildHitWindow(mode, hitWindowValue)
	e := &Engine{
		log:           log,
		Chart:         notes,
		KeysHeld:      make([]bool, numColumns),
		Bus:           bus,
		AudioCmds:     audioCmds,
		AudioClockUs:  -PreRollUs,
		Rate:          rate,
		ScrollSpeedMs: 500.0,
		HitWindow:     hw,
		HitWindowMode: mode,
		HitWindowVal:  hitWindowValue,
		ReplayData:    replay.New(rate, mode, hitWindowValue),
		BeatmapHash:   beatmapHash,
	}
	return e
}

// NewPractice constructs an engine with practice mode enabled from the start.
func NewPractice(notes []chart.NoteData, bus *audiobus.Bus, audioCmds chan<- audiobus.Command, rate float64, beatmapHash string, mode chart.Mode, hitWindowValue float64, log *slog.Logger) *Engine {
	e := New(notes, bus, audioCmds, rate, beatmapHash, mode, hitWindowValue, log)
	e.PracticeMode = true
	e.ReplayData.IsPracticeMode = true
	log.Info("practice mode enabled")
	return e
}

// Update advances the engine by dt_seconds: the audio clock, drift
// correction, the miss sweep, and the NPS window.
func (e *Engine) Update(dtSeconds float64) {
	e.AudioClockUs += int64(dtSeconds * 1_000_000 * e.Rate)

	if !e.startedAudio {
		if e.AudioClockUs >= 0 {
			e.AudioCmds <- audiobus.Play()
			e.startedAudio = true
		} else {
			return
		}
	}

	e.syncClock()
	e.sweepMisses()
	e.updateNPS()
}

// syncClock re-aligns AudioClockUs with the hardware-derived position
// read from the bus, unless a seek is in progress (the counter is about
// to be reset out from under it) or no real device is attached.
func (e *Engine) syncClock() {
	if e.Bus == nil || !e.Bus.HasAudio() || e.Bus.SeekInProgress() {
		return
	}
	rawUs := e.Bus.PositionUs()
	drift := rawUs - e.AudioClockUs
	abs := drift
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > hardSnapThresholdUs:
		e.AudioClockUs = rawUs
	case abs > softCorrectThreshold:
		e.AudioClockUs += int64(float64(drift) * softCorrectCoeff)
	}
}

// sweepMisses advances HeadIndex past notes already hit, then marks any
// not-yet-hit note whose miss deadline has passed as a Miss. The walk
// stops at the first note that is still within its window, since the
// chart is ordered by start time.
func (e *Engine) sweepMisses() {
	judgementTime := e.AudioClockUs + e.AudioOffsetUs
	for e.HeadIndex < len(e.Chart) {
		note := &e.Chart[e.HeadIndex]
		if note.State.Hit {
			e.HeadIndex++
			continue
		}
		if note.StartTimeUs+e.HitWindow.MissUs < judgementTime {
			note.State.Hit = true
			e.applyJudgement(chart.Miss)
			e.HeadIndex++
		} else {
			break
		}
	}
}

// updateNPS drops input timestamps older than 1s from the sliding window
// and recomputes the notes-per-second figure from what remains.
func (e *Engine) updateNPS() {
	cutoff := e.AudioClockUs - 1_000_000
	drop := 0
	for drop < len(e.inputTimestamps) && e.inputTimestamps[drop] < cutoff {
		drop++
	}
	if drop > 0 {
		e.inputTimestamps = e.inputTimestamps[drop:]
	}
	e.currentNPS = float64(len(e.inputTimestamps))
}

func (e *Engine) recordInputTimestamp(timeUs int64) {
	e.inputTimestamps = append(e.inputTimestamps, timeUs)
}

// IsFinished reports whether the play should transition to Result: the
// clock has moved past the last note's start time plus the tail window.
func (e *Engine) IsFinished() bool {
	if len(e.Chart) == 0 {
		return true
	}
	last := e.Chart[len(e.Chart)-1]
	return e.AudioClockUs > last.StartTimeUs+finishTailUs
}

// MapDurationUs is the timestamp of the chart's last note, used to report
// play length to the renderer.
func (e *Engine) MapDurationUs() int64 {
	if len(e.Chart) == 0 {
		return 0
	}
	return e.Chart[len(e.Chart)-1].StartTimeUs
}

// Snapshot builds the immutable per-tick gameplay view for the renderer.
func (e *Engine) Snapshot() snapshot.Gameplay {
	effectiveSpeed := e.ScrollSpeedMs * e.Rate
	maxVisibleUs := e.AudioClockUs + int64(effectiveSpeed*1000) + finishTailUs

	var visible []chart.NoteData
	for i := e.HeadIndex; i < len(e.Chart); i++ {
		n := e.Chart[i]
		if n.StartTimeUs > maxVisibleUs {
			break
		}
		if n.State.Hit {
			continue
		}
		visible = append(visible, n)
	}

	keysHeld := make([]bool, len(e.KeysHeld))
	copy(keysHeld, e.KeysHeld)

	var lastTimingMs *float64
	if e.LastHitTimingUs != nil {
		ms := float64(*e.LastHitTimingUs) / 1000.0
		lastTimingMs = &ms
	}

	remaining := len(e.Chart) - int(e.NotesPassed)
	if remaining < 0 {
		remaining = 0
	}

	return snapshot.Gameplay{
		AudioTimeMs:      float64(e.AudioClockUs) / 1000.0,
		Rate:             e.Rate,
		ScrollSpeedMs:    e.ScrollSpeedMs,
		VisibleNotes:     visible,
		KeysHeld:         keysHeld,
		Score:            e.Score,
		Accuracy:         e.HitStats.Accuracy(),
		Combo:            e.Combo,
		HitStats:         e.HitStats,
		RemainingNotes:   remaining,
		LastHitJudgement: e.LastHitJudgement,
		LastHitTimingMs:  lastTimingMs,
		NPS:              e.currentNPS,
		PracticeMode:     e.PracticeMode,
		Checkpoints:      e.ReplayData.Checkpoints,
		MapDurationMs:    float64(e.MapDurationUs()) / 1000.0,
	}
}

// UpdateHitWindow rebuilds the hit window from new source parameters,
// e.g. when the player adjusts difficulty mid-menu before starting a new play.
func (e *Engine) UpdateHitWindow(mode chart.Mode, value float64) {
	e.HitWindow = chart.BuildHitWindow(mode, value)
	e.HitWindowMode = mode
	e.HitWindowVal = value
}
