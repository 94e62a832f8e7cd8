package movement

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/skybreak-gg/stride/game"
	"github.com/skybreak-gg/stride/serror"
)

// Config holds every designer tunable of the movement component. Distances
// are centimeters, durations seconds, angles degrees.
type Config struct {
	Capsule struct {
		Radius     float32
		HalfHeight float32
	}

	Walking struct {
		MaxWalkSpeed               float32
		MaxCrouchSpeed             float32
		MaxSprintSpeed             float32
		GroundFriction             float32
		BrakingDecelerationWalking float32
		BrakingDecelerationFalling float32
		WalkableFloorAngle         float32
		MaxStepHeight              float32
		JumpVelocity               float32
		AirControl                 float32
		GravityScale               float32
	}

	Slide struct {
		CanSlideOffLedges        bool
		MinSlideSpeed            float32
		MaxSlideSpeed            float32
		SlideEnterImpulse        float32
		MaxSlideImpulseSpeed     float32
		SlideGravityForce        float32
		SlideFrictionFactor      float32
		BrakingDecelerationSlide float32
	}

	Prone struct {
		ProneEnterHoldDuration   float32
		ProneSlideEnterImpulse   float32
		MaxProneSpeed            float32
		BrakingDecelerationProne float32
	}

	Dash struct {
		CooldownDuration     float32
		AuthCooldownDuration float32
		RetryWindow          float32
		Impulse              float32
		Duration             float32
		Clip                 string
	}

	Mantle struct {
		MaxDistance           float32
		ReachHeight           float32
		MinDepth              float32
		MinWallSteepnessAngle float32
		MaxSurfaceAngle       float32
		MaxAlignmentAngle     float32
		TransitionDuration    float32
		TallClip              string
		TransitionTallClip    string
		ProxyTallClip         string
		ShortClip             string
		TransitionShortClip   string
		ProxyShortClip        string
	}

	WallRun struct {
		MinSpeed         float32
		MaxSpeed         float32
		MaxVerticalSpeed float32
		PullAwayAngle    float32
		AttractionForce  float32
		MinHeight        float32
		JumpOffForce     float32
	}

	Climb struct {
		WallJumpForce            float32
		MaxClimbSpeed            float32
		BrakingDecelerationClimb float32
		ReachDistance            float32
		TransitionHangClip       string
		WallJumpClip             string
	}

	// WallRunGravityCurve scales gravity during a wall run, keyed on the
	// angle in degrees between the input direction and the wall tangent.
	// Not loaded from TOML; set in code per level or left at the default.
	WallRunGravityCurve *game.FloatCurve `toml:"-"`
}

// DefaultConfig returns the tuning the component ships with.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Capsule.Radius = 34
	cfg.Capsule.HalfHeight = 88

	cfg.Walking.MaxWalkSpeed = 500
	cfg.Walking.MaxCrouchSpeed = 300
	cfg.Walking.MaxSprintSpeed = 750
	cfg.Walking.GroundFriction = 8
	cfg.Walking.BrakingDecelerationWalking = 2048
	cfg.Walking.BrakingDecelerationFalling = 0
	cfg.Walking.WalkableFloorAngle = 45
	cfg.Walking.MaxStepHeight = 45
	cfg.Walking.JumpVelocity = 420
	cfg.Walking.AirControl = 0.25
	cfg.Walking.GravityScale = 1

	cfg.Slide.CanSlideOffLedges = true
	cfg.Slide.MinSlideSpeed = 400
	cfg.Slide.MaxSlideSpeed = 400
	cfg.Slide.SlideEnterImpulse = 400
	cfg.Slide.MaxSlideImpulseSpeed = 700
	cfg.Slide.SlideGravityForce = 4000
	cfg.Slide.SlideFrictionFactor = 0.06
	cfg.Slide.BrakingDecelerationSlide = 1000

	cfg.Prone.ProneEnterHoldDuration = 0.2
	cfg.Prone.ProneSlideEnterImpulse = 300
	cfg.Prone.MaxProneSpeed = 300
	cfg.Prone.BrakingDecelerationProne = 2500

	cfg.Dash.CooldownDuration = 1
	cfg.Dash.AuthCooldownDuration = 0.9
	cfg.Dash.RetryWindow = 0.25
	cfg.Dash.Impulse = 1000
	cfg.Dash.Duration = 0.3
	cfg.Dash.Clip = "dash"

	cfg.Mantle.MaxDistance = 200
	cfg.Mantle.ReachHeight = 50
	cfg.Mantle.MinDepth = 30
	cfg.Mantle.MinWallSteepnessAngle = 75
	cfg.Mantle.MaxSurfaceAngle = 40
	cfg.Mantle.MaxAlignmentAngle = 45
	cfg.Mantle.TransitionDuration = 0.25
	cfg.Mantle.TallClip = "mantle_tall"
	cfg.Mantle.TransitionTallClip = "mantle_tall_transition"
	cfg.Mantle.ProxyTallClip = "mantle_tall_proxy"
	cfg.Mantle.ShortClip = "mantle_short"
	cfg.Mantle.TransitionShortClip = "mantle_short_transition"
	cfg.Mantle.ProxyShortClip = "mantle_short_proxy"

	cfg.WallRun.MinSpeed = 200
	cfg.WallRun.MaxSpeed = 800
	cfg.WallRun.MaxVerticalSpeed = 200
	cfg.WallRun.PullAwayAngle = 75
	cfg.WallRun.AttractionForce = 200
	cfg.WallRun.MinHeight = 50
	cfg.WallRun.JumpOffForce = 300

	cfg.Climb.WallJumpForce = 400
	cfg.Climb.MaxClimbSpeed = 300
	cfg.Climb.BrakingDecelerationClimb = 1000
	cfg.Climb.ReachDistance = 200
	cfg.Climb.TransitionHangClip = "hang_transition"
	cfg.Climb.WallJumpClip = "wall_jump"

	// Gravity eases off the more the input points along the wall, which is
	// what keeps long wall runs alive.
	cfg.WallRunGravityCurve = game.NewFloatCurve(
		game.CurveKey{Time: 0, Value: 0.25},
		game.CurveKey{Time: 90, Value: 1},
	)

	return cfg
}

// LoadConfig reads a TOML file over the defaults, so partial files only
// override what they name.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serror.New("movement: reading config %q: %v", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, serror.New("movement: parsing config %q: %v", path, err)
	}
	return cfg, nil
}
