// Command rhythmgame wires the logic, audio, and persistence workers
// together behind a terminal renderer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rhythmforge/pkg/appstate"
	"rhythmforge/pkg/audiobus"
	"rhythmforge/pkg/chart"
	"rhythmforge/pkg/db"
	"rhythmforge/pkg/engine"
	"rhythmforge/pkg/inputmap"
	"rhythmforge/pkg/render"
	"rhythmforge/pkg/snapshot"
)

const logicTickRate = 1.0 / 200.0 // 200 Hz fixed-step, per the thread-architecture contract
const maxSubsteps = 10

func main() {
	audioPath := flag.String("audio", "", "path to an audio file to load (omit for silent-mode debug play)")
	columns := flag.Int("columns", 4, "column count (4, 5, 6, or 7)")
	rate := flag.Float64("rate", 1.0, "playback rate multiplier")
	od := flag.Float64("od", 8.0, "osu!-style overall difficulty used to derive the hit window")
	practice := flag.Bool("practice", false, "enable practice mode checkpoints")
	replayDir := flag.String("replay-dir", "./replays", "directory replays are persisted under")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dbWorker, err := db.NewWorker(*replayDir, log)
	if err != nil {
		log.Error("failed to start persistence worker", "error", err)
		os.Exit(1)
	}

	bus := audiobus.NewBus()
	audioCmds := make(chan audiobus.Command, 32)
	audioWorker := audiobus.NewWorker(bus, audioCmds, log)
	go audioWorker.Run(ctx)

	notes := chart.DebugChart(*columns, 64, 500_000)
	if *audioPath != "" {
		audioCmds <- audiobus.Load(*audioPath)
	}

	actions := make(chan engine.Action, 64)
	var e *engine.Engine
	if *practice {
		e = engine.NewPractice(notes, bus, audioCmds, *rate, "debug-chart", chart.ModeOsuOD, *od, log)
	} else {
		e = engine.New(notes, bus, audioCmds, *rate, "debug-chart", chart.ModeOsuOD, *od, log)
	}

	binds := inputmap.DefaultBindings(*columns)
	states := make(chan snapshot.RenderState, 1)

	app := appstate.Game(e)
	updateCtx := appstate.UpdateContext{DB: dbWorker, Log: log, KeyBinds: binds}

	go runLogic(ctx, e, actions, states, &app, updateCtx)

	sink := &keySink{binds: binds, actions: actions}
	model := render.NewModel(states, binds, sink)
	program := tea.NewProgram(model)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "render error: %v\n", err)
		os.Exit(1)
	}
}

// keySink translates raw terminal keys into engine actions and forwards
// them to the logic worker, keeping the renderer ignorant of engine types.
type keySink struct {
	binds   *inputmap.Bindings
	actions chan<- engine.Action
}

func (s *keySink) SendKey(key string, press bool) {
	action, ok := s.binds.Translate(key, press)
	if !ok {
		return
	}
	select {
	case s.actions <- action:
	default:
		// Logic is behind; drop rather than block the render loop.
	}
}

// runLogic is the 200 Hz fixed-step loop: it accumulates wall-clock
// time, advances the engine in fixed substeps (clamped to avoid a
// spiral of death after a hitch), drains pending input in arrival
// order, and publishes a fresh snapshot after each tick.
func runLogic(ctx context.Context, e *engine.Engine, actions <-chan engine.Action, states chan<- snapshot.RenderState, app *appstate.State, updateCtx appstate.UpdateContext) {
	ticker := time.NewTicker(time.Duration(logicTickRate * float64(time.Second)))
	defer ticker.Stop()

	lastTick := time.Now()
	var accumulator float64

	for {
		select {
		case <-ctx.Done():
			return
		case action := <-actions:
			e.HandleInput(action)
		case now := <-ticker.C:
			accumulator += now.Sub(lastTick).Seconds()
			lastTick = now

			substeps := 0
			for accumulator >= logicTickRate && substeps < maxSubsteps {
				drainActions(e, actions)
				e.Update(logicTickRate)
				accumulator -= logicTickRate
				substeps++
			}

			if e.IsFinished() && app.Kind == appstate.KindGame {
				*app = appstate.Update(*app, appstate.Action{Kind: appstate.ActionGameFinished}, updateCtx)
			}

			publish(states, buildRenderState(*app, e))
		}
	}
}

func drainActions(e *engine.Engine, actions <-chan engine.Action) {
	for {
		select {
		case action := <-actions:
			e.HandleInput(action)
		default:
			return
		}
	}
}

func buildRenderState(app appstate.State, e *engine.Engine) snapshot.RenderState {
	switch app.Kind {
	case appstate.KindGame:
		return snapshot.FromGameplay(e.Snapshot())
	case appstate.KindResult:
		return snapshot.FromResult(app.Result.Result)
	case appstate.KindEditor:
		return snapshot.FromEditor(snapshot.Editor{MapName: app.Editor.MapName})
	default:
		return snapshot.FromMenu(snapshot.Menu{})
	}
}

// publish drops a stale, unconsumed snapshot in favor of the newest one
// rather than blocking the logic loop on a slow renderer.
func publish(states chan<- snapshot.RenderState, s snapshot.RenderState) {
	select {
	case states <- s:
	default:
		select {
		case <-states:
		default:
		}
		select {
		case states <- s:
		default:
		}
	}
}
