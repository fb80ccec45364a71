package appstate

import (
	"io"
	"log/slog"
	"testing"

	"rhythmforge/pkg/audiobus"
	"rhythmforge/pkg/chart"
	"rhythmforge/pkg/db"
	"rhythmforge/pkg/engine"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testContext(t *testing.T) UpdateContext {
	t.Helper()
	w, err := db.NewWorker(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	return UpdateContext{DB: w, Log: testLogger()}
}

func TestMenuToggleEditorTransitionsToEditor(t *testing.T) {
	ctx := testContext(t)
	s := Menu(MenuData{})
	next := Update(s, Action{Kind: ActionToggleEditor}, ctx)
	if next.Kind != KindEditor {
		t.Fatalf("expected KindEditor, got %v", next.Kind)
	}
}

func TestEditorBackTransitionsToMenu(t *testing.T) {
	ctx := testContext(t)
	s := Editor(EditorData{MapName: "test"})
	next := Update(s, Action{Kind: ActionBack}, ctx)
	if next.Kind != KindMenu {
		t.Fatalf("expected KindMenu, got %v", next.Kind)
	}
}

func TestGameBackTransitionsToMenu(t *testing.T) {
	ctx := testContext(t)
	notes := chart.DebugChart(4, 4, 500_000)
	e := engine.New(notes, audiobus.NewBus(), make(chan audiobus.Command, 1), 1.0, "h", chart.ModeOsuOD, 8, testLogger())
	s := Game(e)
	next := Update(s, Action{Kind: ActionBack}, ctx)
	if next.Kind != KindMenu {
		t.Fatalf("expected KindMenu, got %v", next.Kind)
	}
}

func TestGameFinishedTransitionsToResultAndSavesReplay(t *testing.T) {
	ctx := testContext(t)
	notes := chart.DebugChart(4, 4, 500_000)
	e := engine.New(notes, audiobus.NewBus(), make(chan audiobus.Command, 1), 1.0, "beatmap-hash", chart.ModeOsuOD, 8, testLogger())

	s := Game(e)
	next := Update(s, Action{Kind: ActionGameFinished}, ctx)
	if next.Kind != KindResult {
		t.Fatalf("expected KindResult, got %v", next.Kind)
	}
	if next.Result.BeatmapHash != "beatmap-hash" {
		t.Errorf("unexpected beatmap hash: %q", next.Result.BeatmapHash)
	}

	records := ctx.DB.ListReplays("beatmap-hash")
	if len(records) != 1 {
		t.Fatalf("expected 1 saved replay, got %d", len(records))
	}
}

func TestResultBackTransitionsToMenu(t *testing.T) {
	ctx := testContext(t)
	s := Result(ResultData{BeatmapHash: "h"})
	next := Update(s, Action{Kind: ActionBack}, ctx)
	if next.Kind != KindMenu {
		t.Fatalf("expected KindMenu, got %v", next.Kind)
	}
}
