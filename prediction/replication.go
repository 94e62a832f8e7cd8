package prediction

import "github.com/skybreak-gg/stride/movement"

// ProxyEvent is a one-shot movement event other clients need to see.
type ProxyEvent uint8

const (
	ProxyDash ProxyEvent = iota
	ProxyMantleTall
	ProxyMantleShort
)

func (e ProxyEvent) String() string {
	switch e {
	case ProxyDash:
		return "dash"
	case ProxyMantleTall:
		return "mantle_tall"
	case ProxyMantleShort:
		return "mantle_short"
	}
	return "unknown"
}

// ProxyFlags replicates one-shot events to simulated proxies as toggled
// booleans: each occurrence flips its flag, and a proxy that diffs the
// incoming flags against its last seen copy recovers every event even when
// several snapshots collapse into one.
type ProxyFlags struct {
	Dash        bool
	MantleTall  bool
	MantleShort bool
}

// Flip records one occurrence of an event.
func (p *ProxyFlags) Flip(e ProxyEvent) {
	switch e {
	case ProxyDash:
		p.Dash = !p.Dash
	case ProxyMantleTall:
		p.MantleTall = !p.MantleTall
	case ProxyMantleShort:
		p.MantleShort = !p.MantleShort
	}
}

// Diff fires the handler for every flag that changed between prev and p.
func (p ProxyFlags) Diff(prev ProxyFlags, fn func(ProxyEvent)) {
	if p.Dash != prev.Dash {
		fn(ProxyDash)
	}
	if p.MantleTall != prev.MantleTall {
		fn(ProxyMantleTall)
	}
	if p.MantleShort != prev.MantleShort {
		fn(ProxyMantleShort)
	}
}

// WatchComponent flips the flags whenever the component dashes or mantles.
// Call on the authority; the flags then ride whatever snapshot replication
// the embedding game uses.
func (p *ProxyFlags) WatchComponent(c *movement.Component) {
	c.OnDashStart(func() {
		p.Flip(ProxyDash)
	})
	c.OnMantleStart(func(tall bool) {
		if tall {
			p.Flip(ProxyMantleTall)
		} else {
			p.Flip(ProxyMantleShort)
		}
	})
}

// ProxyPlayer turns replicated proxy events into clip playback on a
// non-owning client.
func ProxyPlayer(cfg *movement.Config, clips movement.ClipPlayer) func(ProxyEvent) {
	return func(e ProxyEvent) {
		switch e {
		case ProxyDash:
			clips.Play(cfg.Dash.Clip, 1)
		case ProxyMantleTall:
			clips.Play(cfg.Mantle.ProxyTallClip, 1)
		case ProxyMantleShort:
			clips.Play(cfg.Mantle.ProxyShortClip, 1)
		}
	}
}
