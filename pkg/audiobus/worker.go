package audiobus

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

const silentChannels = 2

// Worker owns the audio output device and services commands from the
// bus's command channel. If no device is available it falls back to
// silent mode: every command still succeeds, and a wall-clock ticker
// advances the shared sample counter so the engine's time model stays
// honest without real playback.
type Worker struct {
	bus  *Bus
	cmds <-chan Command
	log  *slog.Logger

	otoCtx *oto.Context
	player *oto.Player

	currentPath string
	speed       float32
	volume      float32
	sampleRate  int
	channels    int
	playing     bool

	silentTick *time.Ticker
	silentLast time.Time
}

// NewWorker creates a worker bound to bus, reading commands from cmds.
// Audio device initialization is attempted lazily on the first Load so
// construction never blocks on hardware.
func NewWorker(bus *Bus, cmds <-chan Command, log *slog.Logger) *Worker {
	return &Worker{
		bus:        bus,
		cmds:       cmds,
		log:        log,
		speed:      1.0,
		volume:     1.0,
		sampleRate: 44100,
		channels:   2,
	}
}

// Run blocks servicing commands until cmds is closed or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("audio worker started")
	defer w.log.Info("audio worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-w.cmds:
			if !ok {
				return
			}
			w.handle(ctx, cmd)
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd Command) {
	switch cmd.Kind {
	case CmdLoad:
		w.load(ctx, cmd.Path)
	case CmdPlay:
		w.play()
	case CmdPause:
		w.pause()
	case CmdStop:
		w.stop()
	case CmdSeek:
		w.seekTo(ctx, cmd.PositionSeconds)
	case CmdSetSpeed:
		w.speed = cmd.Speed
		w.startOrRestartSilentTicker()
	case CmdSetVolume:
		w.volume = cmd.Volume
	}
}

func (w *Worker) ensureDevice() bool {
	if w.otoCtx != nil {
		return w.bus.HasAudio()
	}
	op := &oto.NewContextOptions{
		SampleRate:   w.sampleRate,
		ChannelCount: w.channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		w.log.Warn("no audio device found, running in silent mode", "error", err)
		w.bus.setHasAudio(false)
		return false
	}
	<-ready
	w.otoCtx = ctx
	w.bus.setHasAudio(true)
	return true
}

func (w *Worker) load(ctx context.Context, path string) {
	w.currentPath = path
	w.loadFromPosition(ctx, 0)
}

func (w *Worker) loadFromPosition(ctx context.Context, positionSeconds float64) {
	if w.player != nil {
		w.player.Close()
		w.player = nil
	}

	if w.currentPath == "" {
		return
	}

	if !w.ensureDevice() {
		// Silent mode: just record the position and keep the counter
		// moving from there via the wall-clock ticker.
		w.bus.setSampleRate(uint64(w.sampleRate), silentChannels)
		skipped := uint64(positionSeconds * float64(w.sampleRate) * float64(silentChannels))
		w.bus.resetCounter(skipped)
		w.startOrRestartSilentTicker()
		return
	}

	f, err := os.Open(w.currentPath)
	if err != nil {
		w.log.Error("cannot open audio file", "path", w.currentPath, "error", err)
		return
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		w.log.Error("cannot decode audio file", "path", w.currentPath, "error", err)
		f.Close()
		return
	}

	w.sampleRate = decoder.SampleRate()
	w.channels = silentChannels
	w.bus.setSampleRate(uint64(w.sampleRate), uint64(w.channels))

	bytesPerSecond := int64(w.sampleRate * w.channels * 2)
	skipBytes := int64(positionSeconds * float64(bytesPerSecond))
	skipped := uint64(0)
	if skipBytes > 0 {
		n, _ := io.CopyN(io.Discard, decoder, skipBytes)
		skipped = uint64(n) / 2 // 16-bit samples, all channels counted
	}
	w.bus.resetCounter(skipped)

	mon := newMonitor(decoder, w.bus, w.channels)
	player := w.otoCtx.NewPlayer(mon)
	player.SetBufferSize(w.sampleRate / 10)
	player.SetVolume(float64(w.volume))
	w.player = player
	w.playing = false
}

func (w *Worker) play() {
	if w.player != nil {
		w.player.Play()
		w.playing = true
		return
	}
	w.playing = true
	w.startOrRestartSilentTicker()
}

func (w *Worker) pause() {
	if w.player != nil {
		w.player.Pause()
	}
	w.playing = false
	w.stopSilentTicker()
}

func (w *Worker) stop() {
	if w.player != nil {
		w.player.Pause()
	}
	w.playing = false
	w.bus.resetCounter(0)
	w.stopSilentTicker()
}

func (w *Worker) seekTo(ctx context.Context, positionSeconds float64) {
	wasPlaying := w.playing
	w.bus.beginSeek()
	w.loadFromPosition(ctx, positionSeconds)
	if wasPlaying {
		w.play()
	}
	// The counter reset above must be visible before this flag clears.
	w.bus.endSeek()
}

// startOrRestartSilentTicker begins (or re-bases) wall-clock sample
// counter advancement for silent mode. Only meaningful while playing
// and while the bus reports no real audio device.
func (w *Worker) startOrRestartSilentTicker() {
	if w.bus.HasAudio() || !w.playing {
		return
	}
	w.silentLast = time.Now()
	if w.silentTick != nil {
		return
	}
	w.silentTick = time.NewTicker(10 * time.Millisecond)
	go func(ticker *time.Ticker) {
		for range ticker.C {
			if !w.playing || w.bus.HasAudio() {
				continue
			}
			now := time.Now()
			elapsed := now.Sub(w.silentLast).Seconds()
			w.silentLast = now
			samples := elapsed * float64(w.speed) * float64(w.sampleRate) * float64(silentChannels)
			if samples > 0 {
				w.bus.addSamples(uint64(samples))
			}
		}
	}(w.silentTick)
}

func (w *Worker) stopSilentTicker() {
	if w.silentTick != nil {
		w.silentTick.Stop()
		w.silentTick = nil
	}
}
