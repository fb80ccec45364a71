package chart

import "testing"

func TestFromOsuODMarvelousIsInvariant(t *testing.T) {
	for _, od := range []float64{0, 4, 8, 10} {
		w := FromOsuOD(od)
		if w.MarvUs != 16000 {
			t.Errorf("OD=%.0f: MarvUs = %d, want 16000", od, w.MarvUs)
		}
	}
}

func TestFromOsuODAscending(t *testing.T) {
	for _, od := range []float64{0, 2.5, 5, 8, 10} {
		w := FromOsuOD(od)
		if !(w.MarvUs < w.PerfectUs && w.PerfectUs < w.GreatUs && w.GreatUs < w.GoodUs && w.GoodUs < w.BadUs && w.BadUs < w.MissUs) {
			t.Errorf("OD=%.1f: thresholds not strictly ascending: %+v", od, w)
		}
	}
}

func TestFromOsuODClamps(t *testing.T) {
	if FromOsuOD(-5) != FromOsuOD(0) {
		t.Error("negative OD should clamp to 0")
	}
	if FromOsuOD(50) != FromOsuOD(10) {
		t.Error("OD > 10 should clamp to 10")
	}
}

func TestFromEtternaJudgeAscending(t *testing.T) {
	for judge := uint8(1); judge <= 9; judge++ {
		w := FromEtternaJudge(judge)
		if !(w.MarvUs < w.PerfectUs && w.PerfectUs < w.GreatUs && w.GreatUs < w.GoodUs && w.GoodUs < w.BadUs && w.BadUs < w.MissUs) {
			t.Errorf("judge=%d: thresholds not strictly ascending: %+v", judge, w)
		}
	}
}

func TestFromEtternaJudgeTightensUpward(t *testing.T) {
	j1 := FromEtternaJudge(1)
	j9 := FromEtternaJudge(9)
	if j9.MarvUs >= j1.MarvUs {
		t.Errorf("higher judge should tighten windows: j1=%d j9=%d", j1.MarvUs, j9.MarvUs)
	}
}

func TestJudgeBoundaryInclusiveAtThreshold(t *testing.T) {
	w := FromOsuOD(8)

	cases := []struct {
		diff int64
		want Judgement
	}{
		{0, Marv},
		{w.MarvUs, Marv},
		{w.MarvUs + 1, Perfect},
		{w.PerfectUs, Perfect},
		{w.PerfectUs + 1, Great},
		{w.GreatUs, Great},
		{w.GreatUs + 1, Good},
		{w.GoodUs, Good},
		{w.GoodUs + 1, Bad},
		{w.BadUs, Bad},
		{w.BadUs + 1, Miss},
		{w.MissUs, Miss},
		{-w.MarvUs, Marv}, // sign must not matter
	}
	for _, c := range cases {
		got, _ := w.Judge(c.diff)
		if got != c.want {
			t.Errorf("Judge(%d) = %v, want %v", c.diff, got, c.want)
		}
	}
}

func TestJudgeUsedWindowMatchesBucket(t *testing.T) {
	w := FromOsuOD(5)
	j, used := w.Judge(w.GreatUs)
	if j != Great || used != w.GreatUs {
		t.Errorf("Judge(GreatUs) = (%v, %d), want (Great, %d)", j, used, w.GreatUs)
	}
}

func TestBuildHitWindowRoundTrip(t *testing.T) {
	a := FromOsuOD(7.5)
	b := BuildHitWindow(ModeOsuOD, 7.5)
	if a != b {
		t.Errorf("BuildHitWindow(OsuOD, 7.5) = %+v, want %+v", b, a)
	}

	c := FromEtternaJudge(6)
	d := BuildHitWindow(ModeEtternaJudge, 6)
	if c != d {
		t.Errorf("BuildHitWindow(EtternaJudge, 6) = %+v, want %+v", d, c)
	}
}
