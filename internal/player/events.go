// events.go — Media engine event intake.
//
// Each Handle* method corresponds to one media element event. Events are
// applied to session state synchronously under the Controller mutex, in
// dispatch order. Nothing here blocks.
package player

import "github.com/yourflock/perch/internal/metrics"

// HandleLoadedMetadata records the media duration and moves Loading → Ready.
// When the source carries an initial resume position, the seek is issued now
// (it cannot be issued before metadata because clamping needs the duration).
func (c *Controller) HandleLoadedMetadata(durationSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.state == StateFailed {
		return
	}
	c.duration = durationSeconds
	if c.state == StateLoading {
		c.state = StateReady
	}
	if c.source.InitialPositionSeconds > 0 {
		initial := c.source.InitialPositionSeconds
		c.source.InitialPositionSeconds = 0
		c.seekLocked(initial)
		return
	}
	c.publishLocked()
}

// HandleTimeUpdate records the current playback position and recomputes the
// position-derived signals. The OnProgress callback fires outside the lock.
func (c *Controller) HandleTimeUpdate(seconds float64) {
	c.mu.Lock()
	if c.source == nil || c.state == StateFailed {
		c.mu.Unlock()
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	c.position = seconds
	onProgress := c.source.OnProgress
	c.publishLocked()
	c.mu.Unlock()

	if onProgress != nil {
		onProgress(seconds)
	}
}

// HandleBufferProgress records the buffered fraction of the duration.
// The fraction never decreases within one contiguous load of a source.
func (c *Controller) HandleBufferProgress(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	if fraction > c.buffered {
		c.buffered = fraction
		c.publishLocked()
	}
}

// HandlePlay marks the session playing and arms the controls-hide timer.
func (c *Controller) HandlePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.state == StateFailed {
		return
	}
	c.playing = true
	c.state = StatePlaying
	c.armControlsTimerLocked()
	c.publishLocked()
}

// HandlePause marks the session paused. Controls stay visible indefinitely
// until the next play.
func (c *Controller) HandlePause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.state == StateFailed || c.state == StateEnded {
		return
	}
	c.playing = false
	c.state = StatePaused
	c.cancelControlsTimerLocked()
	c.controlsVisible = true
	c.publishLocked()
}

// HandleEnded marks end of content.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		return
	}
	c.playing = false
	c.state = StateEnded
	c.cancelControlsTimerLocked()
	c.controlsVisible = true
	c.publishLocked()
}

// HandleError marks the session failed. The state is terminal: the source
// is surfaced as unavailable and never retried automatically.
func (c *Controller) HandleError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		return
	}
	c.log.WithFields(map[string]interface{}{
		"session_id": c.id,
		"error":      message,
	}).Warn("media load failed")
	metrics.PlaybackErrors.Inc()
	c.playing = false
	c.state = StateFailed
	c.errorMsg = message
	c.cancelControlsTimerLocked()
	c.controlsVisible = true
	c.publishLocked()
}

// HandleFullscreenChange records an engine- or OS-initiated fullscreen
// transition (e.g. the viewer pressing Esc).
func (c *Controller) HandleFullscreenChange(fullscreen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullscreen = fullscreen
	c.publishLocked()
}
