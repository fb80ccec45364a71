package chart

// Mode selects which difficulty scale a HitWindow was derived from.
type Mode uint8

const (
	ModeOsuOD Mode = iota
	ModeEtternaJudge
)

// HitWindow holds the immutable, ascending thresholds (in µs) that carve
// |diff_us| into judgement buckets. Invariant: MarvUs < PerfectUs <
// GreatUs < GoodUs < BadUs < MissUs.
type HitWindow struct {
	MarvUs    int64
	PerfectUs int64
	GreatUs   int64
	GoodUs    int64
	BadUs     int64
	MissUs    int64
}

// FromOsuOD derives a HitWindow from an osu!mania-style Overall Difficulty
// value (clamped to [0, 10]). Marvelous is OD-invariant at 16ms, the
// other thresholds tighten linearly as OD rises. See SPEC_FULL.md
// "HitWindow derivation".
func FromOsuOD(od float64) HitWindow {
	if od < 0 {
		od = 0
	}
	if od > 10 {
		od = 10
	}
	msToUs := func(ms float64) int64 { return int64(ms * 1000.0) }
	return HitWindow{
		MarvUs:    msToUs(16.0),
		PerfectUs: msToUs(64.0 - 3.0*od),
		GreatUs:   msToUs(97.0 - 3.0*od),
		GoodUs:    msToUs(127.0 - 3.0*od),
		BadUs:     msToUs(151.0 - 3.0*od),
		MissUs:    msToUs(188.0 - 3.0*od),
	}
}

// FromEtternaJudge derives a HitWindow from an Etterna judge level
// (clamped to [1, 9]). Judge 4 is the documented baseline; each step away
// from 4 scales all windows by 10%. See SPEC_FULL.md "HitWindow
// derivation".
func FromEtternaJudge(judge uint8) HitWindow {
	if judge < 1 {
		judge = 1
	}
	if judge > 9 {
		judge = 9
	}
	scale := 1.0 - 0.1*(float64(judge)-4.0)
	msToUs := func(ms float64) int64 { return int64(ms * scale * 1000.0) }
	w := HitWindow{
		MarvUs:    msToUs(22.5),
		PerfectUs: msToUs(45.0),
		GreatUs:   msToUs(90.0),
		GoodUs:    msToUs(135.0),
		BadUs:     msToUs(180.0),
		MissUs:    msToUs(180.0),
	}
	// Etterna's Bad and Miss share a boundary; nudge Miss so the
	// strict-ascending invariant in the doc comment above always holds.
	if w.MissUs <= w.BadUs {
		w.MissUs = w.BadUs + 1
	}
	return w
}

// Judge maps a signed timing difference (note time minus press time, in
// µs) to the smallest enclosing judgement and the threshold that decided
// it. Each bucket's upper bound is inclusive: a press exactly at BadUs is
// judged Bad (the widest non-Miss judgement); a press one µs later is a
// Miss. Diffs beyond MissUs are also reported as Miss here, but in
// practice the caller's candidate search never offers such a diff to
// Judge — it falls back to GhostTap before reaching this call.
func (w HitWindow) Judge(diffUs int64) (Judgement, int64) {
	abs := diffUs
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs <= w.MarvUs:
		return Marv, w.MarvUs
	case abs <= w.PerfectUs:
		return Perfect, w.PerfectUs
	case abs <= w.GreatUs:
		return Great, w.GreatUs
	case abs <= w.GoodUs:
		return Good, w.GoodUs
	case abs <= w.BadUs:
		return Bad, w.BadUs
	default:
		return Miss, w.MissUs
	}
}

// BuildHitWindow rebuilds a HitWindow from a saved mode+value pair, the
// form a ReplayData persists across a save/load round trip.
func BuildHitWindow(mode Mode, value float64) HitWindow {
	switch mode {
	case ModeEtternaJudge:
		return FromEtternaJudge(uint8(value))
	default:
		return FromOsuOD(value)
	}
}
