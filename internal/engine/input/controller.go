package input

import (
	"math"

	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// EventType is the kind of a raw input event
type EventType string

// Raw event types
const (
	EventKeyDown     EventType = "key_down"
	EventKeyUp       EventType = "key_up"
	EventMouseDown   EventType = "mouse_down"
	EventMouseUp     EventType = "mouse_up"
	EventMouseMove   EventType = "mouse_move"
	EventPointerLock EventType = "pointer_lock"
)

// Event is one raw browser input event as clients send it
type Event struct {
	Type   EventType `json:"type"`
	Code   string    `json:"code,omitempty"`
	DX     float64   `json:"dx,omitempty"`
	DY     float64   `json:"dy,omitempty"`
	Locked bool      `json:"locked,omitempty"`
}

// Validate rejects events a client could not have produced
func (e Event) Validate() error {
	switch e.Type {
	case EventKeyDown, EventKeyUp, EventMouseDown, EventMouseUp:
		if e.Code == "" {
			return errors.InvalidArgumentf("%s event requires a code", e.Type)
		}
	case EventMouseMove, EventPointerLock:
	default:
		return errors.InvalidArgumentf("unknown input event type %q", e.Type)
	}
	return nil
}

const (
	// TapThreshold separates a weak tap from a strong charge
	TapThreshold = 0.25
	// DefaultSensitivity is radians per pixel of mouse movement
	DefaultSensitivity = 0.002
	maxPitch           = 80 * math.Pi / 180
)

// Intent is what the player wants this frame. Held flags reflect the
// current state; edge flags are true for exactly one Intent call.
type Intent struct {
	Move     entities.Vec3
	Dash     bool
	Guard    bool
	Charging bool
	// ChargeSeconds is how long the attack button has been held
	ChargeSeconds float64

	WeakAttack   bool
	StrongAttack bool
	// StrongCharge is the hold time of a released strong attack
	StrongCharge float64

	Jump       bool
	Roll       bool
	LockOn     bool
	NextItem   bool
	UseItem    bool
	NextSkill  bool
	CastSkill  bool
	NextWeapon bool
	NextShield bool
	Interact   bool
	Pause      bool
	Skip       bool
	// Allocate lists status allocations requested this frame, in order
	Allocate []string

	PointerLockLost bool
	CameraYaw       float64
	CameraPitch     float64
}

// Config tunes the controller
type Config struct {
	Bindings    map[string]string
	Sensitivity float64
}

// Controller accumulates raw events between frames
type Controller struct {
	bindings    *Bindings
	sensitivity float64

	held     map[Action]bool
	pressed  map[Action]bool
	released map[Action]bool
	allocate []string

	attackHeld  float64
	attackFinal float64
	lockLost    bool
	locked      bool

	yaw   float64
	pitch float64
}

// NewController creates a controller with default bindings plus overrides
func NewController(cfg *Config) (*Controller, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	bindings, err := NewBindings(cfg.Bindings)
	if err != nil {
		return nil, errors.Wrap(err, "invalid bindings")
	}
	sens := cfg.Sensitivity
	if sens <= 0 {
		sens = DefaultSensitivity
	}
	return &Controller{
		bindings:    bindings,
		sensitivity: sens,
		held:        make(map[Action]bool),
		pressed:     make(map[Action]bool),
		released:    make(map[Action]bool),
	}, nil
}

var allocateStats = map[Action]string{
	ActionAllocateVitality:  "vitality",
	ActionAllocateEndurance: "endurance",
	ActionAllocateStrength:  "strength",
	ActionAllocateMind:      "mind",
}

// Handle records one raw event
func (c *Controller) Handle(ev Event) {
	switch ev.Type {
	case EventKeyDown, EventMouseDown:
		for _, a := range c.bindings.Actions(ev.Code) {
			if c.held[a] {
				continue
			}
			c.held[a] = true
			c.pressed[a] = true
			if a == ActionAttack {
				c.attackHeld = 0
			}
			if stat, ok := allocateStats[a]; ok {
				c.allocate = append(c.allocate, stat)
			}
		}
	case EventKeyUp, EventMouseUp:
		for _, a := range c.bindings.Actions(ev.Code) {
			if !c.held[a] {
				continue
			}
			c.held[a] = false
			c.released[a] = true
			if a == ActionAttack {
				c.attackFinal = c.attackHeld
			}
		}
	case EventMouseMove:
		c.yaw -= ev.DX * c.sensitivity
		c.pitch -= ev.DY * c.sensitivity
		c.pitch = math.Max(-maxPitch, math.Min(maxPitch, c.pitch))
	case EventPointerLock:
		if c.locked && !ev.Locked {
			c.lockLost = true
		}
		c.locked = ev.Locked
	}
}

// Intent returns this frame's intent and consumes edge-triggered actions.
// dt advances the attack charge clock.
func (c *Controller) Intent(dt float64) Intent {
	if c.held[ActionAttack] {
		c.attackHeld += dt
	}

	in := Intent{
		Dash:        c.held[ActionDash],
		Guard:       c.held[ActionGuard],
		Jump:        c.pressed[ActionJump],
		Roll:        c.pressed[ActionRoll],
		LockOn:      c.pressed[ActionLockOn],
		NextItem:    c.pressed[ActionNextItem],
		UseItem:     c.pressed[ActionUseItem],
		NextSkill:   c.pressed[ActionNextSkill],
		CastSkill:   c.pressed[ActionCastSkill],
		NextWeapon:  c.pressed[ActionNextWeapon],
		NextShield:  c.pressed[ActionNextShield],
		Interact:    c.pressed[ActionInteract],
		Pause:       c.pressed[ActionPause],
		Skip:        c.pressed[ActionSkip],
		Allocate:    c.allocate,
		CameraYaw:   c.yaw,
		CameraPitch: c.pitch,

		PointerLockLost: c.lockLost,
	}

	if c.held[ActionAttack] {
		in.Charging = c.attackHeld >= TapThreshold
		in.ChargeSeconds = c.attackHeld
	}
	if c.released[ActionAttack] {
		if c.attackFinal < TapThreshold {
			in.WeakAttack = true
		} else {
			in.StrongAttack = true
			in.StrongCharge = c.attackFinal
		}
	}

	in.Move = c.moveDirection()

	c.pressed = make(map[Action]bool)
	c.released = make(map[Action]bool)
	c.allocate = nil
	c.lockLost = false
	return in
}

// Reset releases everything, used on state changes so keys held across
// a pause do not stick
func (c *Controller) Reset() {
	c.held = make(map[Action]bool)
	c.pressed = make(map[Action]bool)
	c.released = make(map[Action]bool)
	c.allocate = nil
	c.attackHeld = 0
	c.attackFinal = 0
}

// Yaw is the camera heading
func (c *Controller) Yaw() float64 { return c.yaw }

// Pitch is the camera tilt
func (c *Controller) Pitch() float64 { return c.pitch }

func (c *Controller) moveDirection() entities.Vec3 {
	var fwd, right float64
	if c.held[ActionMoveForward] {
		fwd++
	}
	if c.held[ActionMoveBack] {
		fwd--
	}
	if c.held[ActionMoveRight] {
		right++
	}
	if c.held[ActionMoveLeft] {
		right--
	}
	if fwd == 0 && right == 0 {
		return entities.Vec3{}
	}
	f := entities.Forward(c.yaw)
	r := entities.Forward(c.yaw - math.Pi/2)
	return f.Scale(fwd).Add(r.Scale(right)).Normalize()
}
