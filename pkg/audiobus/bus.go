// Package audiobus is the shared, lock-free contract between the logic
// worker and the audio worker: a sample counter the audio worker
// advances and the logic worker reads to derive the authoritative music
// time, plus a command channel that drives playback.
package audiobus

import "sync/atomic"

// Bus carries everything logic needs to read from audio without ever
// taking a lock. Only the audio worker writes these fields; logic only
// reads them.
type Bus struct {
	sampleCounter  atomic.Uint64
	sampleRate     atomic.Uint64
	channels       atomic.Uint64
	seekInProgress atomic.Bool
	hasAudio       atomic.Bool
}

// NewBus returns a zeroed bus. Callers should treat SampleRate/Channels
// as 0 (meaningless) until the first Load completes.
func NewBus() *Bus {
	return &Bus{}
}

// SampleCounter is the running count of samples the audio worker has
// produced since the last Load or Stop. Relaxed/advisory: logic tolerates
// slight staleness since the smoothed clock interpolates between reads.
func (b *Bus) SampleCounter() uint64 { return b.sampleCounter.Load() }

func (b *Bus) SampleRate() uint64 { return b.sampleRate.Load() }

func (b *Bus) Channels() uint64 { return b.channels.Load() }

// SeekInProgress reports whether the audio worker is mid-seek. While
// true, logic must suspend sync and run on extrapolation alone — the
// counter is about to be reset out from under it.
func (b *Bus) SeekInProgress() bool { return b.seekInProgress.Load() }

// HasAudio reports whether a real output device is attached. When false
// the audio worker is running in silent mode and logic must not attempt
// hardware-position sync.
func (b *Bus) HasAudio() bool { return b.hasAudio.Load() }

// PositionUs derives the hardware-backed music position in microseconds
// from the sample counter, sample rate, and channel count.
func (b *Bus) PositionUs() int64 {
	rate := b.sampleRate.Load()
	ch := b.channels.Load()
	if rate == 0 || ch == 0 {
		return 0
	}
	counter := b.sampleCounter.Load()
	return int64(counter * 1_000_000 / (rate * ch))
}

func (b *Bus) setSampleRate(rate, channels uint64) {
	b.sampleRate.Store(rate)
	b.channels.Store(channels)
}

func (b *Bus) resetCounter(value uint64) {
	b.sampleCounter.Store(value)
}

func (b *Bus) addSamples(n uint64) {
	b.sampleCounter.Add(n)
}

// beginSeek marks a seek as starting. The counter reset that follows
// must be observed before the flag clears, so callers reset the counter
// first and call endSeek last.
func (b *Bus) beginSeek() {
	b.seekInProgress.Store(true)
}

func (b *Bus) endSeek() {
	b.seekInProgress.Store(false)
}

func (b *Bus) setHasAudio(v bool) {
	b.hasAudio.Store(v)
}
