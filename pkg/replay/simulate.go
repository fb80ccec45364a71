package replay

import "rhythmforge/pkg/chart"

// HitTiming records the outcome of matching one press against one note,
// kept for post-play graphs and rejudging.
type HitTiming struct {
	NoteIndex  int             `json:"note_index"`
	TimingUs   int64           `json:"timing_us"` // note time minus press time; positive = early, negative = late
	Judgement  chart.Judgement `json:"judgement"`
	NoteTimeUs int64           `json:"note_time_us"`
}

// GhostTap is a press that matched no note within the miss window.
type GhostTap struct {
	TimeUs int64 `json:"time_us"`
	Column uint8 `json:"column"`
}

// Result is the full outcome of simulating a replay against a chart.
type Result struct {
	HitStats   chart.HitStats `json:"hit_stats"`
	Accuracy   float64        `json:"accuracy"`
	Score      uint32         `json:"score"`
	MaxCombo   uint32         `json:"max_combo"`
	HitTimings []HitTiming    `json:"hit_timings"`
	GhostTaps  []GhostTap     `json:"ghost_taps"`
}

// Simulate re-plays recorded inputs against chart using hitWindow and
// deterministically reconstructs judgements, score, and combo. Only
// presses are scored; releases never match a note here. Candidate
// search and miss sweeps use the same rules as the engine's live input
// handling, but every matched note is judged as a tap by its press
// timing: note kind is not dispatched, so Hold, Mine, and Burst notes
// are not graded the way the live engine grades them.
func Simulate(data *Data, notes []chart.NoteData, hitWindow chart.HitWindow) Result {
	result := Result{}
	var combo uint32
	missUs := hitWindow.MissUs

	hit := make([]bool, len(notes))
	headIndex := 0

	sweepMisses := func(untilTimeUs int64) {
		for headIndex < len(notes) {
			if hit[headIndex] {
				headIndex++
				continue
			}
			note := &notes[headIndex]
			if untilTimeUs > note.StartTimeUs+missUs {
				hit[headIndex] = true
				result.HitStats.Add(chart.Miss)
				combo = 0
				result.HitTimings = append(result.HitTimings, HitTiming{
					NoteIndex:  headIndex,
					TimingUs:   missUs,
					Judgement:  chart.Miss,
					NoteTimeUs: note.StartTimeUs,
				})
				headIndex++
			} else {
				break
			}
		}
	}

	for _, in := range data.Inputs {
		sweepMisses(in.TimeUs)

		if !in.Press {
			continue
		}

		currentTime := in.TimeUs
		searchLimit := currentTime + missUs
		bestIdx := -1
		var bestDiff int64

		for i := headIndex; i < len(notes); i++ {
			note := &notes[i]
			if note.StartTimeUs > searchLimit {
				break
			}
			if note.Column != in.Column || hit[i] {
				continue
			}
			diff := note.StartTimeUs - currentTime
			absDiff := diff
			if absDiff < 0 {
				absDiff = -absDiff
			}
			if absDiff <= missUs && (bestIdx == -1 || absDiff < bestDiff) {
				bestIdx = i
				bestDiff = absDiff
			}
		}

		if bestIdx == -1 {
			result.HitStats.Add(chart.GhostTap)
			result.GhostTaps = append(result.GhostTaps, GhostTap{TimeUs: in.TimeUs, Column: in.Column})
			continue
		}

		note := &notes[bestIdx]
		diffUs := note.StartTimeUs - currentTime
		judgement, _ := hitWindow.Judge(diffUs)
		hit[bestIdx] = true

		switch judgement {
		case chart.Miss:
			result.HitStats.Add(chart.Miss)
			combo = 0
		case chart.GhostTap:
			result.HitStats.Add(chart.GhostTap)
		default:
			result.HitStats.Add(judgement)
			combo++
			if combo > result.MaxCombo {
				result.MaxCombo = combo
			}
			result.Score += chart.ScoreFor(judgement)
		}

		result.HitTimings = append(result.HitTimings, HitTiming{
			NoteIndex:  bestIdx,
			TimingUs:   diffUs,
			Judgement:  judgement,
			NoteTimeUs: note.StartTimeUs,
		})
	}

	for idx := range notes {
		if !hit[idx] {
			hit[idx] = true
			result.HitStats.Add(chart.Miss)
			result.HitTimings = append(result.HitTimings, HitTiming{
				NoteIndex:  idx,
				TimingUs:   missUs,
				Judgement:  chart.Miss,
				NoteTimeUs: notes[idx].StartTimeUs,
			})
		}
	}

	result.Accuracy = result.HitStats.Accuracy()
	return result
}

// Rejudge recomputes stats and accuracy from previously recorded hit
// timings under a new hit window, without needing the original chart.
// This is an approximation: it cannot discover ghost taps that the new
// window would have turned into real hits, since the note-to-press
// matching itself isn't re-run.
func Rejudge(timings []HitTiming, hitWindow chart.HitWindow) (chart.HitStats, float64) {
	var stats chart.HitStats
	for _, ht := range timings {
		j, _ := hitWindow.Judge(ht.TimingUs)
		stats.Add(j)
	}
	return stats, stats.Accuracy()
}
