// controls.go — Controls-visibility inactivity timer.
//
// Any pointer activity shows the controls and re-arms a hide timer. The
// timer only hides controls while playing; pausing keeps them visible until
// the next play. Re-arming always cancels the outstanding timer first, and
// a generation counter makes a stale firing (after Load or Close) a no-op.
package player

import "time"

// OnPointerActivity makes the controls visible and restarts the inactivity
// timer. Call it for every pointer move, tap, or key press on the player
// surface.
func (c *Controller) OnPointerActivity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	changed := !c.controlsVisible
	c.controlsVisible = true
	if c.playing {
		c.armControlsTimerLocked()
	}
	if changed {
		c.publishLocked()
	}
}

// ControlsVisible reports the current visibility of the on-screen controls.
func (c *Controller) ControlsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlsVisible
}

func (c *Controller) armControlsTimerLocked() {
	c.cancelControlsTimerLocked()
	gen := c.controlsGen
	c.controlsTimer = time.AfterFunc(c.controlsTimeout, func() {
		c.hideControls(gen)
	})
}

// cancelControlsTimerLocked stops any outstanding timer and bumps the
// generation so an already-fired callback cannot act on the new session.
func (c *Controller) cancelControlsTimerLocked() {
	c.controlsGen++
	if c.controlsTimer != nil {
		c.controlsTimer.Stop()
		c.controlsTimer = nil
	}
}

func (c *Controller) hideControls(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.controlsGen || !c.playing {
		return
	}
	c.controlsVisible = false
	c.controlsTimer = nil
	c.publishLocked()
}
