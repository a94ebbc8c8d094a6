// Package input turns raw key and mouse events into per-frame player
// intents and camera orientation
package input

import (
	"sort"

	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// Action is a virtual action that codes are bound to
type Action string

// Actions
const (
	ActionMoveForward       Action = "move_forward"
	ActionMoveBack          Action = "move_back"
	ActionMoveLeft          Action = "move_left"
	ActionMoveRight         Action = "move_right"
	ActionDash              Action = "dash"
	ActionJump              Action = "jump"
	ActionRoll              Action = "roll"
	ActionGuard             Action = "guard"
	ActionAttack            Action = "attack"
	ActionLockOn            Action = "lock_on"
	ActionNextItem          Action = "next_item"
	ActionUseItem           Action = "use_item"
	ActionNextSkill         Action = "next_skill"
	ActionCastSkill         Action = "cast_skill"
	ActionNextWeapon        Action = "next_weapon"
	ActionNextShield        Action = "next_shield"
	ActionInteract          Action = "interact"
	ActionPause             Action = "pause"
	ActionSkip              Action = "skip"
	ActionAllocateVitality  Action = "allocate_vitality"
	ActionAllocateEndurance Action = "allocate_endurance"
	ActionAllocateStrength  Action = "allocate_strength"
	ActionAllocateMind      Action = "allocate_mind"
)

// Mouse button codes. Mouse events carry these in Code.
const (
	MouseLeft  = "Mouse0"
	MouseRight = "Mouse2"
)

// DefaultBindings maps every action to its default code
func DefaultBindings() map[Action]string {
	return map[Action]string{
		ActionMoveForward:       "KeyW",
		ActionMoveBack:          "KeyS",
		ActionMoveLeft:          "KeyA",
		ActionMoveRight:         "KeyD",
		ActionDash:              "ShiftLeft",
		ActionJump:              "Space",
		ActionRoll:              "KeyC",
		ActionGuard:             MouseRight,
		ActionAttack:            MouseLeft,
		ActionLockOn:            "KeyQ",
		ActionNextItem:          "KeyR",
		ActionUseItem:           "KeyE",
		ActionNextSkill:         "KeyT",
		ActionCastSkill:         "KeyF",
		ActionNextWeapon:        "Digit1",
		ActionNextShield:        "Digit2",
		ActionInteract:          "KeyG",
		ActionPause:             "Escape",
		ActionSkip:              "Enter",
		ActionAllocateVitality:  "Digit7",
		ActionAllocateEndurance: "Digit8",
		ActionAllocateStrength:  "Digit9",
		ActionAllocateMind:      "Digit0",
	}
}

// Bindings resolves codes to actions
type Bindings struct {
	byAction map[Action]string
	byCode   map[string][]Action
}

// NewBindings applies overrides (action name to code) on top of the
// defaults. Unknown action names are rejected.
func NewBindings(overrides map[string]string) (*Bindings, error) {
	byAction := DefaultBindings()

	vb := errors.NewValidationBuilder()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		action := Action(name)
		if _, ok := byAction[action]; !ok {
			vb.Fieldf("bindings."+name, "unknown action")
			continue
		}
		code := overrides[name]
		if code == "" {
			vb.RequiredField("bindings." + name)
			continue
		}
		byAction[action] = code
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	b := &Bindings{byAction: byAction, byCode: make(map[string][]Action)}
	actions := make([]string, 0, len(byAction))
	for a := range byAction {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)
	for _, a := range actions {
		code := byAction[Action(a)]
		b.byCode[code] = append(b.byCode[code], Action(a))
	}
	return b, nil
}

// Actions returns the actions bound to code
func (b *Bindings) Actions(code string) []Action {
	return b.byCode[code]
}

// Code returns the code bound to action
func (b *Bindings) Code(action Action) string {
	return b.byAction[action]
}
