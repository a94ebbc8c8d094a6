package game

import (
	"github.com/KirkDiggler/rpg-action/internal/engine/skills"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// Snapshot is the client-visible state after a frame
type Snapshot struct {
	Tick    uint64          `json:"tick"`
	Time    float64         `json:"time"`
	State   State           `json:"state"`
	Stage   string          `json:"stage,omitempty"`
	Player  *PlayerView     `json:"player,omitempty"`
	Enemies []CharacterView `json:"enemies"`
	NPCs    []CharacterView `json:"npcs"`
	Skills  []SkillView     `json:"skills"`
	Items   []ItemView      `json:"items"`
	LockOn  uint64          `json:"lockOn,omitempty"`
	Camera  CameraView      `json:"camera"`
	Cues    []Cue           `json:"cues"`
	Outcome *Outcome        `json:"outcome,omitempty"`
}

// CameraView is the third-person camera heading
type CameraView struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// CharacterView is a rendered character
type CharacterView struct {
	ID        uint64        `json:"id"`
	Kind      string        `json:"kind"`
	DataID    string        `json:"dataId"`
	Name      string        `json:"name"`
	Pos       entities.Vec3 `json:"pos"`
	Yaw       float64       `json:"yaw"`
	HP        int           `json:"hp"`
	MaxHP     int           `json:"maxHp"`
	Dead      bool          `json:"dead"`
	Flash     bool          `json:"flash,omitempty"`
	Animation string        `json:"animation"`
	Opacity   float64       `json:"opacity"`
}

// PlayerView adds resources, progression and equipment
type PlayerView struct {
	CharacterView
	Stamina      float64  `json:"stamina"`
	MaxStamina   float64  `json:"maxStamina"`
	FP           float64  `json:"fp"`
	MaxFP        float64  `json:"maxFp"`
	Level        int      `json:"level"`
	Experience   int      `json:"experience"`
	StatusPoints int      `json:"statusPoints"`
	Inventory    []string `json:"inventory"`
	SelectedItem string   `json:"selectedItem,omitempty"`
	Weapon       string   `json:"weapon,omitempty"`
	Shield       string   `json:"shield,omitempty"`
	Skill        string   `json:"skill,omitempty"`
	Charging     bool     `json:"charging,omitempty"`
	Guarding     bool     `json:"guarding,omitempty"`
}

// SkillView is a live skill entity
type SkillView struct {
	ID     uint64        `json:"id"`
	Kind   string        `json:"kind"`
	DataID string        `json:"dataId"`
	Pos    entities.Vec3 `json:"pos"`
	Scale  float64       `json:"scale"`
}

// ItemView is a pickup on the ground
type ItemView struct {
	ID     uint64        `json:"id"`
	ItemID string        `json:"itemId"`
	Pos    entities.Vec3 `json:"pos"`
}

// Snapshot builds the client view and drains pending cues
func (g *Game) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:    g.tick,
		Time:    g.now,
		State:   g.state,
		Enemies: []CharacterView{},
		NPCs:    []CharacterView{},
		Skills:  []SkillView{},
		Items:   []ItemView{},
		Camera:  CameraView{Yaw: g.ctrl.Yaw(), Pitch: g.ctrl.Pitch()},
		Cues:    g.cues,
		Outcome: g.lastOutcome,
	}
	if snap.Cues == nil {
		snap.Cues = []Cue{}
	}
	g.cues = nil

	if g.stage != nil {
		snap.Stage = g.stage.ID
	}

	if p := g.store.PlayerHandle(); p != world.NoHandle {
		snap.Player = g.playerView(p)
		if pl := g.store.Player(p); pl != nil {
			snap.LockOn = g.store.Serial(pl.LockOn)
		}
	}
	for _, h := range g.store.Enemies() {
		if g.store.Alive(h) {
			snap.Enemies = append(snap.Enemies, g.characterView(h))
		}
	}
	for _, h := range g.store.NPCs() {
		if g.store.Alive(h) {
			snap.NPCs = append(snap.NPCs, g.characterView(h))
		}
	}
	for _, h := range g.store.Skills() {
		if !g.store.Alive(h) {
			continue
		}
		id := g.store.Identity(h)
		snap.Skills = append(snap.Skills, SkillView{
			ID:     id.Serial,
			Kind:   id.Kind.String(),
			DataID: id.DataID,
			Pos:    g.store.Body(h).Pos,
			Scale:  skills.Scale(g.store.Skill(h)),
		})
	}
	for _, h := range g.store.Items() {
		if !g.store.Alive(h) {
			continue
		}
		snap.Items = append(snap.Items, ItemView{
			ID:     g.store.Serial(h),
			ItemID: g.store.Pickup(h).ItemID,
			Pos:    g.store.Body(h).Pos,
		})
	}
	return snap
}

func (g *Game) characterView(h world.Handle) CharacterView {
	id := g.store.Identity(h)
	body := g.store.Body(h)
	hp := g.store.Health(h)
	anim := g.store.Animation(h)
	return CharacterView{
		ID:        id.Serial,
		Kind:      id.Kind.String(),
		DataID:    id.DataID,
		Name:      id.Name,
		Pos:       body.Pos,
		Yaw:       body.Yaw,
		HP:        hp.HP,
		MaxHP:     hp.MaxHP,
		Dead:      hp.Dead,
		Flash:     hp.FlashTimer > 0,
		Animation: anim.State.String(),
		Opacity:   anim.Opacity,
	}
}

func (g *Game) playerView(p world.Handle) *PlayerView {
	pl := g.store.Player(p)
	inventory := make([]string, len(pl.Inventory))
	copy(inventory, pl.Inventory)
	return &PlayerView{
		CharacterView: g.characterView(p),
		Stamina:       pl.Stamina,
		MaxStamina:    pl.MaxStamina,
		FP:            pl.FP,
		MaxFP:         pl.MaxFP,
		Level:         pl.Level,
		Experience:    pl.Experience,
		StatusPoints:  pl.StatusPoints,
		Inventory:     inventory,
		SelectedItem:  pl.CurrentItem(),
		Weapon:        pl.CurrentWeapon(),
		Shield:        pl.CurrentShield(),
		Skill:         pl.CurrentSkill(),
		Charging:      pl.Charging,
		Guarding:      pl.Guarding,
	}
}
