package movement

// Input surface. These only set intent flags (plus a couple of timers); the
// actual mode changes happen inside the tick pipeline so that prediction and
// replay observe intent at identical points.

// Jump registers an edge-triggered jump press for the next tick.
func (c *Component) Jump() {
	if c.destroyed {
		return
	}
	c.safe.PressedJump = true
}

// StartSprint raises the sprint intent.
func (c *Component) StartSprint() {
	if c.destroyed {
		return
	}
	c.safe.WantsToSprint = true
}

// StopSprint clears the sprint intent.
func (c *Component) StopSprint() {
	c.safe.WantsToSprint = false
}

// StartSlide raises the slide intent.
func (c *Component) StartSlide() {
	if c.destroyed {
		return
	}
	c.safe.WantsToSlide = true
}

// StopSlide clears the slide intent.
func (c *Component) StopSlide() {
	c.safe.WantsToSlide = false
}

// StartCrouch raises the crouch intent and arms the prone hold timer: holding
// crouch for the configured duration requests prone.
func (c *Component) StartCrouch() {
	if c.destroyed {
		return
	}
	c.safe.WantsToCrouch = true
	c.timers.Cancel(c.proneTimer)
	c.proneTimer = c.timers.Schedule(c.cfg.Prone.ProneEnterHoldDuration, c.armProne)
}

// StopCrouch clears the crouch intent and disarms the prone hold timer.
func (c *Component) StopCrouch() {
	c.safe.WantsToCrouch = false
	c.timers.Cancel(c.proneTimer)
}

func (c *Component) armProne() {
	if c.destroyed {
		return
	}
	c.safe.WantsToProne = true
	for _, fn := range c.proneObservers {
		fn()
	}
}

// ForceProne raises the prone intent directly. The authority calls this when
// a client's prone request arrives, since the hold timer only runs on the
// owning client.
func (c *Component) ForceProne() {
	if c.destroyed {
		return
	}
	c.safe.WantsToProne = true
}

// StartDash raises the dash intent if the cooldown allows it. A press inside
// the retry window schedules the intent for the instant the cooldown expires,
// so slightly-early presses are not swallowed.
func (c *Component) StartDash() {
	if c.destroyed {
		return
	}
	remaining := c.dashStartTime + c.dashCooldown() - c.now
	if remaining <= 0 {
		c.safe.WantsToDash = true
		return
	}
	if remaining <= c.cfg.Dash.RetryWindow {
		c.timers.Cancel(c.dashRetryTimer)
		c.dashRetryTimer = c.timers.Schedule(remaining, func() {
			if !c.destroyed {
				c.safe.WantsToDash = true
			}
		})
	}
}

// StopDash clears the dash intent and any pending retry.
func (c *Component) StopDash() {
	c.safe.WantsToDash = false
	c.timers.Cancel(c.dashRetryTimer)
}

// StartClimb raises the climb intent, which rides the crouch flag while
// airborne. Ignored on the ground so it cannot trigger a crouch.
func (c *Component) StartClimb() {
	if c.destroyed {
		return
	}
	if c.mode == ModeFalling || c.IsClimbing() || c.IsHanging() {
		c.safe.WantsToCrouch = true
	}
}

// StopClimb releases the climb intent.
func (c *Component) StopClimb() {
	if c.IsClimbing() || c.IsHanging() || c.mode == ModeFalling {
		c.safe.WantsToCrouch = false
	}
}
