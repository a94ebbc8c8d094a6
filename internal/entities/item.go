package entities

// ItemKind classifies items
type ItemKind string

// Item kinds
const (
	ItemKindConsumable ItemKind = "consumable"
	ItemKindWeapon     ItemKind = "weapon"
	ItemKindShield     ItemKind = "shield"
	ItemKindSkill      ItemKind = "skill"
)

// Item is one row of the items table
type Item struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Kind  ItemKind `yaml:"kind"`
	Model string   `yaml:"model"`

	// Consumable effect
	Heal           int     `yaml:"heal,omitempty"`
	RestoreFP      float64 `yaml:"restoreFp,omitempty"`
	RestoreStamina float64 `yaml:"restoreStamina,omitempty"`

	// Grants is the weapon, shield or skill id unlocked on pickup
	Grants string `yaml:"grants,omitempty"`
}

// Level is one row of the levels table. Experience is the cumulative
// total needed to reach Level.
type Level struct {
	Level      int `yaml:"level"`
	Experience int `yaml:"experience"`
}
