package entities

// SkillKind selects the update rules of a spawned skill
type SkillKind string

// Skill kinds
const (
	SkillKindProjectile SkillKind = "projectile"
	SkillKindAreaAttack SkillKind = "area_attack"
	SkillKindSelfTarget SkillKind = "self_target"
)

// Skill is one row of the skills table
type Skill struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Kind     SkillKind `yaml:"kind"`
	FPCost   float64   `yaml:"fpCost"`
	CastTime float64   `yaml:"castTime"`
	Damage   int       `yaml:"damage"`
	Sound    string    `yaml:"sound"`

	// Projectile
	Speed    float64 `yaml:"speed,omitempty"`
	Lifespan float64 `yaml:"lifespan,omitempty"`

	// Projectile and area attack
	Radius float64 `yaml:"radius,omitempty"`

	// Area attack (grow time) and self target (buff time)
	Duration float64 `yaml:"duration,omitempty"`

	Buff *BuffDef `yaml:"buff,omitempty"`
}

// Stat names a buffable multiplier
type Stat string

// Buffable stats
const (
	StatAttack  Stat = "attack"
	StatDefense Stat = "defense"
	StatSpeed   Stat = "speed"
)

// BuffDef is a timed stat multiplier
type BuffDef struct {
	Stat       Stat    `yaml:"stat"`
	Multiplier float64 `yaml:"multiplier"`
	Duration   float64 `yaml:"duration"`
}
