// Package chart holds the immutable note data a beatmap parser produces
// and the runtime hit state that rides alongside it during a play.
package chart

import "sort"

// Kind identifies which of the four note behaviors a NoteData follows.
type Kind uint8

const (
	KindTap Kind = iota
	KindHold
	KindBurst
	KindMine
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "Tap"
	case KindHold:
		return "Hold"
	case KindBurst:
		return "Burst"
	case KindMine:
		return "Mine"
	default:
		return "Unknown"
	}
}

// HoldState is the runtime sub-state for a Hold note.
type HoldState struct {
	StartTimeUs int64 // press moment; valid only when Pressed is true
	Pressed     bool
	IsHeld      bool
}

// BurstState is the runtime sub-state for a Burst note.
type BurstState struct {
	CurrentHits   uint32
	RequiredHits  uint32
	FirstDiffUs   int64 // diff recorded at the press that started the burst
	FirstDiffSet  bool
}

// State is the mutable runtime state living beside an otherwise immutable NoteData.
type State struct {
	Hit   bool
	Hold  HoldState
	Burst BurstState
}

// NoteData is one entry in a chart. StartTimeUs, Column, Kind, DurationUs
// and RequiredHits are immutable once the chart is loaded; State is the
// only field that ever mutates during a play.
type NoteData struct {
	StartTimeUs  int64
	Column       uint8
	Kind         Kind
	DurationUs   int64 // Hold/Burst only; 0 for Tap/Mine
	RequiredHits uint32 // Burst only
	State        State
}

// EndTimeUs is StartTimeUs+DurationUs (StartTimeUs for Tap/Mine).
func (n *NoteData) EndTimeUs() int64 {
	return n.StartTimeUs + n.DurationUs
}

func (n *NoteData) IsTap() bool   { return n.Kind == KindTap }
func (n *NoteData) IsHold() bool  { return n.Kind == KindHold }
func (n *NoteData) IsBurst() bool { return n.Kind == KindBurst }
func (n *NoteData) IsMine() bool  { return n.Kind == KindMine }

// NewTap creates a Tap note.
func NewTap(startTimeUs int64, column uint8) NoteData {
	return NoteData{StartTimeUs: startTimeUs, Column: column, Kind: KindTap}
}

// NewHold creates a Hold note of the given duration.
func NewHold(startTimeUs int64, column uint8, durationUs int64) NoteData {
	return NoteData{StartTimeUs: startTimeUs, Column: column, Kind: KindHold, DurationUs: durationUs}
}

// NewBurst creates a Burst note requiring requiredHits presses within duration.
func NewBurst(startTimeUs int64, column uint8, durationUs int64, requiredHits uint32) NoteData {
	n := NoteData{StartTimeUs: startTimeUs, Column: column, Kind: KindBurst, DurationUs: durationUs, RequiredHits: requiredHits}
	n.State.Burst.RequiredHits = requiredHits
	return n
}

// NewMine creates a Mine note.
func NewMine(startTimeUs int64, column uint8) NoteData {
	return NoteData{StartTimeUs: startTimeUs, Column: column, Kind: KindMine}
}

// Sort orders a chart ascending by StartTimeUs, stable by Column on ties.
// Parsers should call this before handing a chart to the engine, though
// the engine itself never re-sorts.
func Sort(notes []NoteData) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartTimeUs != notes[j].StartTimeUs {
			return notes[i].StartTimeUs < notes[j].StartTimeUs
		}
		return notes[i].Column < notes[j].Column
	})
}

// Parser is the external collaborator that turns a beatmap file into an
// audio path plus an ordered note list. The file syntax itself is the
// collaborator's concern; only this shape is part of the contract.
type Parser interface {
	Parse(path string) (audioPath string, notes []NoteData, err error)
}
