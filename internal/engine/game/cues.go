package game

import (
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// CueKind is the channel a cue is played on
type CueKind string

// Cue kinds
const (
	CueBGM    CueKind = "bgm"
	CueSFX    CueKind = "sfx"
	CueText   CueKind = "text"
	CueCamera CueKind = "camera"
)

// Sound effect names
const (
	SFXHit        = "hit"
	SFXDeath      = "death"
	SFXFootstep   = "footstep"
	SFXPickup     = "pickup"
	SFXLevelUp    = "level_up"
	SFXCast       = "cast"
	SFXGuardBlock = "guard_block"
)

// Domain event types published on the event bus
const (
	EventEntityDamaged = "entity.damaged"
	EventEntityDied    = "entity.died"
	EventBossDefeated  = "boss.defeated"
	EventPlayerLevelUp = "player.level_up"
	EventItemPickedUp  = "item.picked_up"
	EventStateChanged  = "game.state_changed"
)

// Cue is an instruction for the client's audio, text or camera layer
type Cue struct {
	Kind   CueKind              `json:"kind"`
	Name   string               `json:"name,omitempty"`
	Sound  string               `json:"sound,omitempty"`
	Text   string               `json:"text,omitempty"`
	Camera *entities.CameraShot `json:"camera,omitempty"`
	Entity uint64               `json:"entity,omitempty"`
}

func (g *Game) cue(c Cue) {
	g.cues = append(g.cues, c)
}

func (g *Game) bgm(ref string) {
	path := gamedata.AssetPath(ref)
	if path == g.music {
		return
	}
	g.music = path
	g.cue(Cue{Kind: CueBGM, Sound: path})
}

func (g *Game) sfx(name, ref string, h world.Handle) {
	g.cue(Cue{Kind: CueSFX, Name: name, Sound: gamedata.AssetPath(ref), Entity: g.store.Serial(h)})
}

func (g *Game) text(key string) {
	if key == "" {
		return
	}
	g.cue(Cue{Kind: CueText, Name: key, Text: g.translate(key)})
}

func (g *Game) translate(key string) string {
	if g.localizer == nil {
		return key
	}
	return g.localizer.T(key)
}

// publish sends a domain event. A failing subscriber is logged and the
// frame carries on.
func (g *Game) publish(eventType string, source, target world.Handle, data map[string]interface{}) {
	if g.bus == nil {
		return
	}
	ev := events.NewGameEvent(eventType, g.store.Ref(source), g.store.Ref(target))
	for k, v := range data {
		ev.Context().Set(k, v)
	}
	if err := g.bus.Publish(g.ctx, ev); err != nil {
		g.logger.WithError(err).WithField("event", eventType).Warn("event subscriber failed")
	}
}
