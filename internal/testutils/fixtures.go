package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// Fixture ids
const (
	PlayerID   = "hero"
	SlimeID    = "slime"
	ArcherID   = "archer"
	GolemID    = "golem"
	ElderID    = "elder"
	SwordID    = "sword"
	AxeID      = "axe"
	BucklerID  = "buckler"
	FireballID = "fireball"
	QuakeID    = "quake"
	RageID     = "rage"
	ArrowID    = "arrow"
	PotionID   = "potion"
	EtherID    = "ether"
	AxeItemID  = "axe_item"
	FieldID    = "field"
	KeepID     = "keep"
	OpeningID  = "opening"
	EndingID   = "ending"
)

// FlatGround returns a height field at height h covering [-50, 50] on X and Z
func FlatGround(h float64) *entities.HeightField {
	heights := make([]float64, 11*11)
	for i := range heights {
		heights[i] = h
	}
	return &entities.HeightField{
		Origin:   entities.Vec3{X: -50, Z: -50},
		CellSize: 10,
		Width:    11,
		Depth:    11,
		Heights:  heights,
	}
}

// GameTables returns a small but complete and valid data set
func GameTables() *gamedata.Tables {
	return &gamedata.Tables{
		Characters: []*entities.Character{
			{
				ID: PlayerID, Name: "Hero", Kind: entities.CharacterKindPlayer,
				MaxHP: 100, Speed: 5, Height: 1.8, Radius: 0.5,
				Sounds: entities.CharacterSounds{Hit: "audio/hero_hit.wav", Death: "audio/hero_death.wav", Footstep: "audio/step.wav"},
				Player: &entities.PlayerStats{
					MaxStamina: 100, MaxFP: 50,
					StaminaRegen: 20, FPRegen: 2,
					DashStaminaPerSecond: 10, RollStaminaCost: 15, JumpStaminaCost: 10, JumpSpeed: 8,
					Weapons: []string{SwordID},
					Shields: []string{BucklerID},
					Skills:  []string{FireballID, QuakeID, RageID},
					Items:   []string{PotionID, EtherID},
				},
			},
			{
				ID: SlimeID, Name: "Slime", Kind: entities.CharacterKindEnemy,
				MaxHP: 30, Speed: 2, Height: 1, Radius: 0.6,
				Sounds: entities.CharacterSounds{Hit: "audio/slime_hit.wav", Death: "audio/slime_death.wav"},
				Enemy: &entities.EnemyStats{
					Experience: 60, AggroRange: 15, StrongAttackProbability: 0,
					WeakAttack:   entities.AttackDef{Damage: 10, Range: 2, CastTime: 0.5, Cooldown: 2},
					StrongAttack: entities.AttackDef{Damage: 20, Range: 2, CastTime: 1, Cooldown: 3},
					Drops:        []string{PotionID},
				},
			},
			{
				ID: ArcherID, Name: "Archer", Kind: entities.CharacterKindEnemy,
				MaxHP: 20, Speed: 2, Height: 1.8, Radius: 0.5,
				Enemy: &entities.EnemyStats{
					Experience: 40, AggroRange: 20, StrongAttackProbability: 100,
					WeakAttack:   entities.AttackDef{Damage: 5, Range: 2, CastTime: 0.5, Cooldown: 2},
					StrongAttack: entities.AttackDef{Damage: 0, Range: 12, CastTime: 0.5, Cooldown: 3, Skill: ArrowID},
				},
			},
			{
				ID: GolemID, Name: "Golem", Kind: entities.CharacterKindBoss,
				MaxHP: 200, Speed: 1.5, Height: 3, Radius: 1.2,
				Enemy: &entities.EnemyStats{
					Experience: 500, AggroRange: 25, StrongAttackProbability: 30,
					WeakAttack:   entities.AttackDef{Damage: 15, Range: 3, CastTime: 0.8, Cooldown: 2.5},
					StrongAttack: entities.AttackDef{Damage: 35, Range: 4, CastTime: 1.5, Cooldown: 5},
				},
			},
			{
				ID: ElderID, Name: "Elder", Kind: entities.CharacterKindNPC,
				Height: 1.7, Radius: 0.5,
				Dialogue: []string{"npc.elder.1", "npc.elder.2"},
			},
		},
		Weapons: []*entities.Weapon{
			{ID: SwordID, Name: "Sword", Damage: 10, Range: 2.5, WeakStaminaCost: 8, ChargeRate: 10, MaxChargeDamage: 40},
			{ID: AxeID, Name: "Axe", Damage: 16, Range: 2.2, WeakStaminaCost: 14, ChargeRate: 12, MaxChargeDamage: 60},
		},
		Shields: []*entities.Shield{
			{ID: BucklerID, Name: "Buckler", Defense: 50},
		},
		Skills: []*entities.Skill{
			{ID: FireballID, Name: "Fireball", Kind: entities.SkillKindProjectile, FPCost: 10, CastTime: 0.2, Damage: 25, Speed: 15, Lifespan: 2, Radius: 0.5, Sound: "audio/fireball.wav"},
			{ID: QuakeID, Name: "Quake", Kind: entities.SkillKindAreaAttack, FPCost: 20, CastTime: 0.5, Damage: 30, Radius: 5, Duration: 1},
			{ID: RageID, Name: "Rage", Kind: entities.SkillKindSelfTarget, FPCost: 15, CastTime: 0.3,
				Buff: &entities.BuffDef{Stat: entities.StatAttack, Multiplier: 1.5, Duration: 10}},
			{ID: ArrowID, Name: "Arrow", Kind: entities.SkillKindProjectile, CastTime: 0, Damage: 12, Speed: 20, Lifespan: 1.5, Radius: 0.3},
		},
		Items: []*entities.Item{
			{ID: PotionID, Name: "Potion", Kind: entities.ItemKindConsumable, Heal: 30},
			{ID: EtherID, Name: "Ether", Kind: entities.ItemKindConsumable, RestoreFP: 20},
			{ID: AxeItemID, Name: "Axe", Kind: entities.ItemKindWeapon, Grants: AxeID},
		},
		Stages: []*entities.Stage{
			{
				ID: FieldID, Name: "Field", BGM: "audio/field.mp3", Gravity: -25,
				Ground:      FlatGround(0),
				PlayerSpawn: entities.Vec3{},
				Enemies: []entities.Placement{
					{Character: SlimeID, Position: entities.Vec3{X: 10}},
				},
				NPCs: []entities.Placement{
					{Character: ElderID, Position: entities.Vec3{X: -3}},
				},
				Items: []entities.ItemPlacement{
					{Item: AxeItemID, Position: entities.Vec3{Z: 5}},
				},
				Exits: []entities.Exit{
					{Position: entities.Vec3{Z: 40}, Radius: 2, NextStage: KeepID},
				},
			},
			{
				ID: KeepID, Name: "Keep", BGM: "audio/keep.mp3", Gravity: -25,
				Ground:      FlatGround(0),
				PlayerSpawn: entities.Vec3{},
				Enemies: []entities.Placement{
					{Character: GolemID, Position: entities.Vec3{Z: 20}},
				},
			},
		},
		Sequences: []*entities.Sequence{
			{ID: OpeningID, Duration: 3, BGM: "audio/opening.mp3", Steps: []entities.SequenceStep{
				{At: 0, Text: "opening.1", Camera: &entities.CameraShot{Position: entities.Vec3{Y: 5, Z: -10}}},
				{At: 1.5, Text: "opening.2", Audio: "audio/wind.wav"},
			}},
			{ID: EndingID, Duration: 2, Steps: []entities.SequenceStep{
				{At: 0.5, Text: "ending.1"},
			}},
		},
		Levels: []entities.Level{
			{Level: 1, Experience: 0},
			{Level: 2, Experience: 50},
			{Level: 3, Experience: 150},
			{Level: 4, Experience: 400},
			{Level: 5, Experience: 900},
		},
		Settings: entities.Settings{
			PlayerCharacter: PlayerID,
			StartStage:      FieldID,
			OpeningSequence: OpeningID,
			EndingSequence:  EndingID,
			TitleBGM:        "audio/title.mp3",
			SplashDuration:  2.5,
		},
	}
}

// GameData returns a validated client over GameTables
func GameData(t testing.TB) gamedata.Client {
	return GameDataFrom(t, GameTables())
}

// GameDataFrom indexes and validates custom tables
func GameDataFrom(t testing.TB, tables *gamedata.Tables) gamedata.Client {
	t.Helper()

	client, err := gamedata.NewFromTables(tables)
	require.NoError(t, err)
	require.NoError(t, client.Validate())
	return client
}

// Messages is a base-locale message set covering the fixture keys
func Messages() map[string]map[string]string {
	return map[string]map[string]string{
		"en-US": {
			"opening.1":   "Long ago, the keep fell silent.",
			"opening.2":   "You awaken in the field.",
			"ending.1":    "The golem crumbles. Dawn returns.",
			"npc.elder.1": "The keep lies north.",
			"npc.elder.2": "Only the strong return.",
		},
		"ja-JP": {
			"npc.elder.1": "城は北にある。",
		},
	}
}
