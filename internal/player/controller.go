// Package player implements the Perch playback session state machine.
//
// One Controller is created per active playback session (a content detail
// view with a non-nil source) and owns all session state: play state,
// position, duration, buffered range, volume/mute, rate, fullscreen and
// immersive mode, plus the time-windowed skip-intro and up-next signals.
//
// The Controller never talks to a media element directly. Commands go out
// through the Engine interface and are fire-and-forget; their effects come
// back as events (HandlePlay, HandleTimeUpdate, ...) which are applied
// synchronously under one mutex. A real media element serialises its own
// event dispatch; the mutex preserves that guarantee here.
//
// Controllers are never process-wide singletons. Two sessions mounted in
// sequence get two Controllers, and Close detaches every subscription so
// nothing leaks from one session into the next.
package player

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the playback lifecycle state.
type State string

const (
	StateEmpty   State = "empty"   // no source loaded
	StateLoading State = "loading" // source set, metadata not yet available
	StateReady   State = "ready"   // metadata loaded, not yet playing
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
	StateFailed  State = "failed" // terminal; the source is never retried
)

// Rates is the enumerated set of accepted playback rates.
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// ErrInvalidRate is returned by SetRate for values outside Rates.
// The rate is rejected, not clamped.
var ErrInvalidRate = errors.New("player: playback rate not in allowed set")

// nextPercentThreshold and nextRemainingSeconds are the two up-next
// triggers. Both are needed: the percentage fires early on short content,
// the absolute-remaining fires early on very long content.
const (
	nextPercentThreshold = 0.90
	nextRemainingSeconds = 30.0
)

// defaultControlsTimeout hides the on-screen controls after this much
// pointer inactivity while playing.
const defaultControlsTimeout = 3 * time.Second

// SubtitleTrack is the at-most-one active subtitle track for a session.
type SubtitleTrack struct {
	Language string
	URL      string
}

// IntroWindow is the [Start, End) range during which the skip-intro
// affordance is offered.
type IntroWindow struct {
	StartSeconds float64
	EndSeconds   float64
}

// Source describes one content unit to play.
type Source struct {
	URL       string
	PosterURL string
	Title     string

	Subtitle *SubtitleTrack
	Intro    *IntroWindow

	// NextLabel/OnNext drive the up-next affordance (next episode, part 2).
	// The signal is never shown when OnNext is nil.
	NextLabel string
	OnNext    func()

	// OnProgress receives every position update, in seconds. The progress
	// checkpointer subscribes here.
	OnProgress func(seconds float64)

	// InitialPositionSeconds seeks once metadata loads (resume).
	InitialPositionSeconds float64
}

// Engine is the media element the Controller drives. All commands are
// fire-and-forget: their effects are observed through subsequent Handle*
// events, never through a return value.
type Engine interface {
	Load(url string)
	Play()
	Pause()
	Seek(seconds float64)
	SetRate(rate float64)
	SetVolume(volume float64)
	SetMuted(muted bool)
}

// Options configures a Controller.
type Options struct {
	// Engine is required.
	Engine Engine

	// ControlsTimeout overrides the 3s controls-hide inactivity window.
	ControlsTimeout time.Duration

	// Logger receives non-fatal diagnostics (ignored commands, load
	// failures). Defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Controller is the playback session state machine.
type Controller struct {
	id              uuid.UUID
	engine          Engine
	controlsTimeout time.Duration
	log             *logrus.Logger

	mu     sync.Mutex
	closed bool

	state    State
	source   *Source
	position float64
	duration float64
	buffered float64
	playing  bool
	errorMsg string

	// Retained across Load: a viewer's volume/mute/rate choices follow
	// them from one content unit to the next.
	volume float64
	muted  bool
	rate   float64

	fullscreen bool
	immersive  bool

	controlsVisible bool
	controlsTimer   *time.Timer
	controlsGen     uint64

	subs      map[int]chan Snapshot
	nextSubID int
}

// New creates a Controller in the Empty state.
// It panics if Options.Engine is nil.
func New(opts Options) *Controller {
	if opts.Engine == nil {
		panic("player: Engine is required")
	}
	if opts.ControlsTimeout == 0 {
		opts.ControlsTimeout = defaultControlsTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Controller{
		id:              uuid.New(),
		engine:          opts.Engine,
		controlsTimeout: opts.ControlsTimeout,
		log:             opts.Logger,
		state:           StateEmpty,
		volume:          1,
		rate:            1,
		controlsVisible: true,
		subs:            make(map[int]chan Snapshot),
	}
}

// ID identifies this session (used as a telemetry tag, never persisted).
func (c *Controller) ID() uuid.UUID { return c.id }

// Load replaces the active source and transitions to Loading. Position,
// duration, and buffered fraction reset; volume, mute, and rate carry over.
// Any pending controls-hide timer from the previous source is invalidated
// so a stale firing cannot hide controls on the new session.
func (c *Controller) Load(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.cancelControlsTimerLocked()
	c.position = 0
	c.duration = 0
	c.buffered = 0
	c.playing = false
	c.errorMsg = ""
	c.controlsVisible = true

	if src.URL == "" {
		c.source = nil
		c.state = StateEmpty
		c.publishLocked()
		return
	}

	s := src
	c.source = &s
	c.state = StateLoading
	c.engine.Load(src.URL)
	c.publishLocked()
}

// Play requests playback. A no-op when already playing; ignored (logged,
// not fatal) when no source is loaded.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.state == StateFailed {
		c.log.WithField("session_id", c.id).Debug("play ignored: no playable source")
		return
	}
	if c.playing {
		return
	}
	c.engine.Play()
}

// Pause requests a pause. A no-op when already paused; ignored when no
// source is loaded.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		c.log.WithField("session_id", c.id).Debug("pause ignored: no source")
		return
	}
	if !c.playing {
		return
	}
	c.engine.Pause()
}

// Seek moves to an absolute position in seconds, clamped to [0, duration].
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(seconds)
}

// SeekFraction moves to a fraction of the duration, clamped to [0, 1].
func (c *Controller) SeekFraction(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	c.seekLocked(fraction * c.duration)
}

// SkipBy seeks relative to the current position, clamped to [0, duration].
func (c *Controller) SkipBy(deltaSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(c.position + deltaSeconds)
}

func (c *Controller) seekLocked(seconds float64) {
	if c.source == nil {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if c.duration > 0 && seconds > c.duration {
		seconds = c.duration
	}
	// Seeking is transient: position reporting is not blocked, so the
	// target is reflected immediately rather than waiting for the engine.
	c.position = seconds
	c.engine.Seek(seconds)
	c.publishLocked()
}

// SkipIntro seeks directly to the end of the configured intro window.
// A no-op when the source has no intro window.
func (c *Controller) SkipIntro() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.source.Intro == nil {
		return
	}
	c.seekLocked(c.source.Intro.EndSeconds)
}

// Next invokes the session's up-next callback, if configured.
func (c *Controller) Next() {
	c.mu.Lock()
	onNext := (func())(nil)
	if c.source != nil {
		onNext = c.source.OnNext
	}
	c.mu.Unlock()

	if onNext != nil {
		onNext()
	}
}

// SetVolume sets the volume in [0, 1]. A non-zero volume clears mute; zero
// sets it.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	c.muted = v == 0
	c.engine.SetVolume(v)
	c.engine.SetMuted(c.muted)
	c.publishLocked()
}

// ToggleMute flips mute without touching the stored volume, so un-muting
// restores the prior level.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	c.engine.SetMuted(c.muted)
	c.publishLocked()
}

// SetRate sets the playback rate. Values outside Rates are rejected with
// ErrInvalidRate and no state changes.
func (c *Controller) SetRate(rate float64) error {
	allowed := false
	for _, r := range Rates {
		if rate == r {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidRate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
	c.engine.SetRate(rate)
	c.publishLocked()
	return nil
}

// ToggleFullscreen flips the OS-level fullscreen flag. The engine-side
// transition is observed via HandleFullscreenChange when the surrounding
// UI reports it.
func (c *Controller) ToggleFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullscreen = !c.fullscreen
	c.publishLocked()
}

// ToggleImmersive flips the in-app immersive overlay, independent of OS
// fullscreen.
func (c *Controller) ToggleImmersive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.immersive = !c.immersive
	c.publishLocked()
}

// Close tears the session down: all subscriber channels are closed and
// removed and the controls timer is cancelled. The Controller must not be
// used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelControlsTimerLocked()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}
