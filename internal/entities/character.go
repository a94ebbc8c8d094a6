// Package entities holds the static data-table records that parameterize
// characters, equipment, skills, items, stages and sequences. They are
// read-only after load.
package entities

// CharacterKind says which components a spawned character gets
type CharacterKind string

// Character kinds
const (
	CharacterKindPlayer CharacterKind = "player"
	CharacterKindEnemy  CharacterKind = "enemy"
	CharacterKindBoss   CharacterKind = "boss"
	CharacterKindNPC    CharacterKind = "npc"
)

// Character is one row of the characters table
type Character struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Kind   CharacterKind `yaml:"kind"`
	Model  string        `yaml:"model"`
	MaxHP  int           `yaml:"maxHp"`
	Speed  float64       `yaml:"speed"`
	Height float64       `yaml:"height"`
	Radius float64       `yaml:"radius"`

	Sounds CharacterSounds `yaml:"sounds"`

	// Set for the player kind
	Player *PlayerStats `yaml:"player,omitempty"`

	// Set for enemy and boss kinds
	Enemy *EnemyStats `yaml:"enemy,omitempty"`

	// Dialogue holds i18n keys, set for NPCs
	Dialogue []string `yaml:"dialogue,omitempty"`
}

// CharacterSounds are asset paths passed through in cues
type CharacterSounds struct {
	Hit      string `yaml:"hit"`
	Death    string `yaml:"death"`
	Footstep string `yaml:"footstep"`
}

// PlayerStats holds the resource tuning of a playable character
type PlayerStats struct {
	MaxStamina           float64 `yaml:"maxStamina"`
	MaxFP                float64 `yaml:"maxFp"`
	StaminaRegen         float64 `yaml:"staminaRegen"`
	FPRegen              float64 `yaml:"fpRegen"`
	DashStaminaPerSecond float64 `yaml:"dashStaminaPerSecond"`
	RollStaminaCost      float64 `yaml:"rollStaminaCost"`
	JumpStaminaCost      float64 `yaml:"jumpStaminaCost"`
	JumpSpeed            float64 `yaml:"jumpSpeed"`

	Weapons []string `yaml:"weapons"`
	Shields []string `yaml:"shields"`
	Skills  []string `yaml:"skills"`
	Items   []string `yaml:"items"`
}

// EnemyStats holds AI tuning for enemies and bosses
type EnemyStats struct {
	Experience              int       `yaml:"experience"`
	AggroRange              float64   `yaml:"aggroRange"`
	StrongAttackProbability int       `yaml:"strongAttackProbability"`
	WeakAttack              AttackDef `yaml:"weakAttack"`
	StrongAttack            AttackDef `yaml:"strongAttack"`
	// Drops are item ids spawned as pickups on removal
	Drops []string `yaml:"drops,omitempty"`
}

// AttackDef is one enemy attack
type AttackDef struct {
	Damage   int     `yaml:"damage"`
	Range    float64 `yaml:"range"`
	CastTime float64 `yaml:"castTime"`
	Cooldown float64 `yaml:"cooldown"`
	// Skill is cast instead of a melee hit. Only strong attacks may set it.
	Skill string `yaml:"skill,omitempty"`
}

// Weapon is one row of the weapons table
type Weapon struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Model           string  `yaml:"model"`
	Damage          float64 `yaml:"damage"`
	Range           float64 `yaml:"range"`
	WeakStaminaCost float64 `yaml:"weakStaminaCost"`
	ChargeRate      float64 `yaml:"chargeRate"`
	MaxChargeDamage float64 `yaml:"maxChargeDamage"`
}

// Shield is one row of the shields table
type Shield struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	Defense int    `yaml:"defense"`
}
