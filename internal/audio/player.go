package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

// Player streams one track at a time to the speaker through a Tap.
type Player struct {
	log      *zap.Logger
	ringSize int

	mu       sync.Mutex
	initRate beep.SampleRate
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *Tap
	path     string
}

func NewPlayer(ringSize int, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{log: log.Named("audio"), ringSize: ringSize}
}

// Load decodes path and starts playing it, replacing any current track.
func (p *Player) Load(path string) error {
	streamer, format, err := Decode(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case p.initRate == 0:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("speaker init: %w", err)
		}
		p.initRate = format.SampleRate
	case p.initRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("speaker init: %w", err)
		}
		p.initRate = format.SampleRate
	default:
		speaker.Clear()
	}
	p.closeLocked()

	tap := NewTap(streamer, p.ringSize)
	ctrl := &beep.Ctrl{Streamer: tap}
	p.streamer, p.format, p.ctrl, p.tap, p.path = streamer, format, ctrl, tap, path

	// The callback runs under the speaker lock; release the track elsewhere.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		go func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.streamer == streamer {
				p.closeLocked()
			}
		}()
	})))
	p.log.Info("playing", zap.String("path", path), zap.Int("sample_rate", int(format.SampleRate)))
	return nil
}

// TogglePause flips the pause state and reports whether playback is now paused.
func (p *Player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return false
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	paused := p.ctrl.Paused
	speaker.Unlock()
	return paused
}

// Stop silences the speaker and releases the track.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initRate != 0 {
		speaker.Clear()
	}
	p.closeLocked()
}

func (p *Player) closeLocked() {
	if p.streamer != nil {
		if err := p.streamer.Close(); err != nil {
			p.log.Warn("closing track", zap.String("path", p.path), zap.Error(err))
		}
	}
	p.streamer, p.ctrl, p.tap, p.path = nil, nil, nil, ""
}

// Level implements the noise modulator; 0 when nothing plays.
func (p *Player) Level() float64 {
	p.mu.Lock()
	tap := p.tap
	p.mu.Unlock()
	if tap == nil {
		return 0
	}
	return tap.Level()
}

// Progress is the playback position and total length of the current track.
func (p *Player) Progress() (pos, total time.Duration, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0, 0, false
	}
	speaker.Lock()
	pos = p.format.SampleRate.D(p.streamer.Position())
	total = p.format.SampleRate.D(p.streamer.Len())
	speaker.Unlock()
	return pos, total, true
}

// Status is a one-line description for the overlay, e.g. "01:02 / 03:45".
func (p *Player) Status() string {
	pos, total, ok := p.Progress()
	if !ok {
		return ""
	}
	return FormatDuration(pos) + " / " + FormatDuration(total)
}

// FormatDuration formats a duration as MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
