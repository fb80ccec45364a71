package chart

// Judgement is the quality label assigned to a press, or to a note the
// player let slip past the miss deadline.
type Judgement uint8

const (
	Marv Judgement = iota
	Perfect
	Great
	Good
	Bad
	Miss
	GhostTap
)

func (j Judgement) String() string {
	switch j {
	case Marv:
		return "Marv"
	case Perfect:
		return "Perfect"
	case Great:
		return "Great"
	case Good:
		return "Good"
	case Bad:
		return "Bad"
	case Miss:
		return "Miss"
	case GhostTap:
		return "GhostTap"
	default:
		return "Unknown"
	}
}

// ScoreFor returns the score awarded for a single occurrence of j.
func ScoreFor(j Judgement) uint32 {
	switch j {
	case Marv, Perfect:
		return 300
	case Great:
		return 200
	case Good:
		return 100
	case Bad:
		return 50
	default:
		return 0
	}
}

// accuracyWeight is the frozen per-judgement weighting (see SPEC_FULL.md
// "Accuracy weighting"). GhostTap has no weight: it is never counted in
// notes_passed and never enters the accuracy denominator.
func accuracyWeight(j Judgement) float64 {
	switch j {
	case Marv, Perfect:
		return 1.0
	case Great:
		return 0.66
	case Good:
		return 0.33
	case Bad:
		return 0.16
	default:
		return 0.0
	}
}

// HitStats tallies the number of times each judgement has been applied.
type HitStats struct {
	Marv     uint32
	Perfect  uint32
	Great    uint32
	Good     uint32
	Bad      uint32
	Miss     uint32
	GhostTap uint32
}

// Add increments the counter for j. GhostTap is tracked but never affects
// combo, score, or the notes_passed total (the caller decides that).
func (s *HitStats) Add(j Judgement) {
	switch j {
	case Marv:
		s.Marv++
	case Perfect:
		s.Perfect++
	case Great:
		s.Great++
	case Good:
		s.Good++
	case Bad:
		s.Bad++
	case Miss:
		s.Miss++
	case GhostTap:
		s.GhostTap++
	}
}

// CountedTotal is the number of judgements that count toward notes_passed
// (everything except GhostTap).
func (s *HitStats) CountedTotal() uint32 {
	return s.Marv + s.Perfect + s.Great + s.Good + s.Bad + s.Miss
}

// Accuracy computes the weighted accuracy percentage (0-100) frozen in
// SPEC_FULL.md. A chart with no counted judgements yet is reported as
// 100% rather than NaN.
func (s *HitStats) Accuracy() float64 {
	total := s.CountedTotal()
	if total == 0 {
		return 100.0
	}
	weighted := float64(s.Marv)*accuracyWeight(Marv) +
		float64(s.Perfect)*accuracyWeight(Perfect) +
		float64(s.Great)*accuracyWeight(Great) +
		float64(s.Good)*accuracyWeight(Good) +
		float64(s.Bad)*accuracyWeight(Bad) +
		float64(s.Miss)*accuracyWeight(Miss)
	return 100.0 * weighted / float64(total)
}
