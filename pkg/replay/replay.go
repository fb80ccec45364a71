// Package replay records raw key inputs during a play and can
// deterministically re-simulate them against a chart to reconstruct
// judgements, score, and combo byte-for-byte.
package replay

import (
	"encoding/json"
	"fmt"

	"rhythmforge/pkg/chart"
)

// FormatVersion is bumped whenever the on-disk shape of ReplayData changes
// in a way that breaks older readers.
const FormatVersion uint8 = 4

// CheckpointMinIntervalUs is the minimum spacing enforced between two
// practice-mode checkpoints.
const CheckpointMinIntervalUs int64 = 15_000_000

// Input is one recorded key event.
type Input struct {
	TimeUs int64 `json:"time_us"`
	Column uint8 `json:"column"`
	Press  bool  `json:"press"`
}

// Data is the minimal, replayable record of a play: raw inputs plus the
// settings needed to rebuild the hit window they were judged against.
// Keeping only raw inputs (not judgements) lets a saved replay be
// re-simulated under a different hit window to see how the score would
// change.
type Data struct {
	Version        uint8      `json:"version"`
	Inputs         []Input    `json:"inputs"`
	Rate           float64    `json:"rate"`
	HitWindowMode  chart.Mode `json:"hit_window_mode"`
	HitWindowValue float64    `json:"hit_window_value"`
	IsPracticeMode bool       `json:"is_practice_mode"`
	Checkpoints    []int64    `json:"checkpoints"`
}

// New creates an empty replay recorded against the given rate and hit
// window settings.
func New(rate float64, mode chart.Mode, hitWindowValue float64) *Data {
	return &Data{
		Version:        FormatVersion,
		Rate:           rate,
		HitWindowMode:  mode,
		HitWindowValue: hitWindowValue,
	}
}

// NewPractice creates an empty replay flagged as recorded in practice mode.
func NewPractice(rate float64, mode chart.Mode, hitWindowValue float64) *Data {
	d := New(rate, mode, hitWindowValue)
	d.IsPracticeMode = true
	return d
}

// AddCheckpoint appends a checkpoint timestamp if it respects the minimum
// spacing from the last one. Reports whether it was added.
func (d *Data) AddCheckpoint(timeUs int64) bool {
	if n := len(d.Checkpoints); n > 0 {
		if timeUs-d.Checkpoints[n-1] < CheckpointMinIntervalUs {
			return false
		}
	}
	d.Checkpoints = append(d.Checkpoints, timeUs)
	return true
}

// LastCheckpoint returns the most recent checkpoint and whether one exists.
func (d *Data) LastCheckpoint() (int64, bool) {
	if len(d.Checkpoints) == 0 {
		return 0, false
	}
	return d.Checkpoints[len(d.Checkpoints)-1], true
}

// TruncateInputsAfter drops every recorded input at or after timeUs, used
// when retrying from a checkpoint.
func (d *Data) TruncateInputsAfter(timeUs int64) {
	kept := d.Inputs[:0]
	for _, in := range d.Inputs {
		if in.TimeUs < timeUs {
			kept = append(kept, in)
		}
	}
	d.Inputs = kept
}

// AddInput appends a raw press or release event.
func (d *Data) AddInput(timeUs int64, column uint8, press bool) {
	d.Inputs = append(d.Inputs, Input{TimeUs: timeUs, Column: column, Press: press})
}

// AddPress appends a press event.
func (d *Data) AddPress(timeUs int64, column uint8) { d.AddInput(timeUs, column, true) }

// AddRelease appends a release event.
func (d *Data) AddRelease(timeUs int64, column uint8) { d.AddInput(timeUs, column, false) }

// BuildHitWindow rebuilds the HitWindow this replay was judged against.
func (d *Data) BuildHitWindow() chart.HitWindow {
	return chart.BuildHitWindow(d.HitWindowMode, d.HitWindowValue)
}

// ToJSON serializes the replay.
func (d *Data) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// FromJSON deserializes a replay.
func FromJSON(data []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	return &d, nil
}
