// Package snapshot defines the immutable, per-tick views the logic
// worker hands to the renderer. The renderer never mutates what it
// receives here.
package snapshot

import "rhythmforge/pkg/chart"

// Gameplay is the renderer's view of an in-progress play, emitted once
// per logic tick after the engine has finished updating.
type Gameplay struct {
	AudioTimeMs      float64
	Rate             float64
	ScrollSpeedMs    float64
	VisibleNotes     []chart.NoteData
	KeysHeld         []bool
	Score            uint32
	Accuracy         float64
	Combo            uint32
	HitStats         chart.HitStats
	RemainingNotes   int
	LastHitJudgement *chart.Judgement
	LastHitTimingMs  *float64
	NPS              float64
	PracticeMode     bool
	Checkpoints      []int64
	MapDurationMs    float64
}

// Menu is the renderer's view while the top-level state machine is in
// the song-selection menu. Its fields are owned by the menu collaborator;
// this type only carries what crosses the worker boundary.
type Menu struct {
	SelectedIndex int
	MapCount      int
}

// Editor is the renderer's view while editing a chart.
type Editor struct {
	CursorTimeUs int64
	MapName      string
}

// GameResult is the renderer's view of a finished play.
type GameResult struct {
	Score       uint32
	Accuracy    float64
	MaxCombo    uint32
	HitStats    chart.HitStats
	BeatmapHash string
}

// Kind tags which variant a RenderState currently holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindMenu
	KindInGame
	KindEditor
	KindResult
)

// RenderState is the tagged union crossing the logic→render boundary.
// Exactly one of the payload fields is meaningful, selected by Kind;
// callers should switch on Kind rather than checking fields for nil.
type RenderState struct {
	Kind   Kind
	Menu   Menu
	InGame Gameplay
	Editor Editor
	Result GameResult
}

func Empty() RenderState { return RenderState{Kind: KindEmpty} }

func FromMenu(m Menu) RenderState { return RenderState{Kind: KindMenu, Menu: m} }

func FromGameplay(g Gameplay) RenderState { return RenderState{Kind: KindInGame, InGame: g} }

func FromEditor(e Editor) RenderState { return RenderState{Kind: KindEditor, Editor: e} }

func FromResult(r GameResult) RenderState { return RenderState{Kind: KindResult, Result: r} }
