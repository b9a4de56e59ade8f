// snapshot.go — Immutable state snapshots and the subscribe contract.
package player

// Snapshot is a point-in-time copy of session state, published to
// subscribers on every mutation.
type Snapshot struct {
	State     State
	SourceURL string
	Title     string
	PosterURL string

	PositionSeconds  float64
	DurationSeconds  float64
	BufferedFraction float64
	Playing          bool

	Volume float64
	Muted  bool
	Rate   float64

	Fullscreen bool
	Immersive  bool

	ControlsVisible bool

	// ShowSkipIntro is true while the position is inside the intro window.
	ShowSkipIntro bool

	// ShowNext is true when an up-next callback exists and either 90% of
	// the content has played or no more than 30 seconds remain.
	ShowNext  bool
	NextLabel string

	// ErrorMessage is set only in StateFailed.
	ErrorMessage string
}

// Subscribe registers a snapshot subscriber. The returned cancel func
// removes the subscription; the channel is closed on cancel or Close.
// Slow subscribers miss intermediate snapshots rather than blocking event
// dispatch, mirroring how a media element coalesces rapid timeupdates.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 16)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:            c.state,
		PositionSeconds:  c.position,
		DurationSeconds:  c.duration,
		BufferedFraction: c.buffered,
		Playing:          c.playing,
		Volume:           c.volume,
		Muted:            c.muted,
		Rate:             c.rate,
		Fullscreen:       c.fullscreen,
		Immersive:        c.immersive,
		ControlsVisible:  c.controlsVisible,
		ErrorMessage:     c.errorMsg,
	}
	if c.source == nil {
		return s
	}

	s.SourceURL = c.source.URL
	s.Title = c.source.Title
	s.PosterURL = c.source.PosterURL
	s.NextLabel = c.source.NextLabel

	if w := c.source.Intro; w != nil {
		s.ShowSkipIntro = c.position >= w.StartSeconds && c.position < w.EndSeconds
	}
	if c.source.OnNext != nil && c.duration > 0 {
		s.ShowNext = c.position/c.duration >= nextPercentThreshold ||
			c.duration-c.position <= nextRemainingSeconds
	}
	return s
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
