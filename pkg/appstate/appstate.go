// Package appstate is the top-level state machine: Menu, Game, Editor,
// and Result, owned directly by the driver as a tagged variant rather
// than a trait-object stack. Transitions are values returned by Update,
// never performed by a state reaching into shared, aliased context.
package appstate

import (
	"log/slog"

	"rhythmforge/pkg/db"
	"rhythmforge/pkg/engine"
	"rhythmforge/pkg/inputmap"
	"rhythmforge/pkg/snapshot"
)

// Kind tags which variant a State currently holds.
type Kind uint8

const (
	KindMenu Kind = iota
	KindGame
	KindEditor
	KindResult
)

// MenuData is the state carried while in the menu.
type MenuData struct {
	SelectedMapIndex int
	SavedEngine      *engine.Engine // never set or read by Update; Back from Game returns an empty MenuData
}

// EditorData is the state carried while editing a chart.
type EditorData struct {
	MapName string
}

// ResultData is the state carried after a play finishes.
type ResultData struct {
	Result      snapshot.GameResult
	BeatmapHash string
}

// State is the tagged union the driver owns exclusively. Exactly one
// payload field is meaningful, selected by Kind.
type State struct {
	Kind   Kind
	Menu   MenuData
	Game   *engine.Engine
	Editor EditorData
	Result ResultData
}

func Menu(data MenuData) State { return State{Kind: KindMenu, Menu: data} }

func Game(e *engine.Engine) State { return State{Kind: KindGame, Game: e} }

func Editor(data EditorData) State { return State{Kind: KindEditor, Editor: data} }

func Result(data ResultData) State { return State{Kind: KindResult, Result: data} }

// ActionKind tags the driver-level actions that move between states.
type ActionKind uint8

const (
	ActionConfirmMap ActionKind = iota
	ActionLaunchPractice
	ActionToggleEditor
	ActionLaunchDebugMap
	ActionBack
	ActionGameFinished
)

// Action is a driver-level input, distinct from the in-gameplay
// engine.Action which only matters while Kind == KindGame.
type Action struct {
	Kind        ActionKind
	MapIndex    int
	DebugColumn uint8
}

// UpdateContext is the short-lived bundle a state needs to act on a
// transition. It is passed by argument and never stored, replacing the
// raw-pointer context pattern the renderer/DB manager used to share.
type UpdateContext struct {
	DB       *db.Worker
	Log      *slog.Logger
	KeyBinds *inputmap.Bindings
}

// Update advances the current state by one driver-level action and
// returns the state to transition to. Returning the same Kind with
// updated payload is a no-op transition; the driver always replaces its
// owned State with whatever Update returns.
func Update(current State, action Action, ctx UpdateContext) State {
	switch current.Kind {
	case KindMenu:
		return updateMenu(current, action, ctx)
	case KindGame:
		return updateGame(current, action, ctx)
	case KindEditor:
		return updateEditor(current, action, ctx)
	case KindResult:
		return updateResult(current, action, ctx)
	default:
		return current
	}
}

func updateMenu(current State, action Action, ctx UpdateContext) State {
	switch action.Kind {
	case ActionConfirmMap:
		ctx.Log.Info("starting play", "map_index", action.MapIndex)
		return current // the driver constructs the engine and calls Game() itself
	case ActionLaunchPractice:
		return current
	case ActionToggleEditor:
		return Editor(EditorData{})
	case ActionLaunchDebugMap:
		return current
	default:
		return current
	}
}

func updateGame(current State, action Action, ctx UpdateContext) State {
	switch action.Kind {
	case ActionBack:
		return Menu(MenuData{})
	case ActionGameFinished:
		e := current.Game
		result := e.Simulate()
		ctx.Log.Info("play finished", "score", result.Score, "accuracy", result.Accuracy)
		ctx.DB.SaveReplay(db.SaveReplayRequest{
			BeatmapHash: e.BeatmapHash,
			Score:       int32(result.Score),
			Accuracy:    result.Accuracy,
			MaxCombo:    int32(result.MaxCombo),
			Rate:        e.Rate,
			Data:        e.ReplayData,
		})
		return Result(ResultData{
			BeatmapHash: e.BeatmapHash,
			Result: snapshot.GameResult{
				Score:       result.Score,
				Accuracy:    result.Accuracy,
				MaxCombo:    result.MaxCombo,
				HitStats:    result.HitStats,
				BeatmapHash: e.BeatmapHash,
			},
		})
	default:
		return current
	}
}

func updateEditor(current State, action Action, ctx UpdateContext) State {
	switch action.Kind {
	case ActionBack:
		return Menu(MenuData{})
	default:
		return current
	}
}

func updateResult(current State, action Action, ctx UpdateContext) State {
	switch action.Kind {
	case ActionBack, ActionConfirmMap:
		return Menu(MenuData{})
	default:
		return current
	}
}
