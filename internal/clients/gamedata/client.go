// Package gamedata loads the static data tables and serves lookups by id
package gamedata

//go:generate mockgen -destination=mock/mock_client.go -package=gamedatamock github.com/KirkDiggler/rpg-action/internal/clients/gamedata Client

import (
	stderrors "errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// AssetPrefix is the directory every model, texture and audio path lives under
const AssetPrefix = "assets/"

// Client serves read-only data table rows
type Client interface {
	GetCharacter(id string) (*entities.Character, error)
	GetWeapon(id string) (*entities.Weapon, error)
	GetShield(id string) (*entities.Shield, error)
	GetSkill(id string) (*entities.Skill, error)
	GetItem(id string) (*entities.Item, error)
	GetStage(id string) (*entities.Stage, error)
	GetSequence(id string) (*entities.Sequence, error)

	// Levels is sorted by level ascending
	Levels() []entities.Level

	Settings() entities.Settings

	// Validate checks every row and every cross reference
	Validate() error
}

// Tables is the raw content of the data directory
type Tables struct {
	Characters []*entities.Character `yaml:"characters"`
	Weapons    []*entities.Weapon    `yaml:"weapons"`
	Shields    []*entities.Shield    `yaml:"shields"`
	Skills     []*entities.Skill     `yaml:"skills"`
	Items      []*entities.Item      `yaml:"items"`
	Stages     []*entities.Stage     `yaml:"stages"`
	Sequences  []*entities.Sequence  `yaml:"sequences"`
	Levels     []entities.Level      `yaml:"levels"`
	Settings   entities.Settings     `yaml:"settings"`
}

// Config holds the dependencies for loading tables from disk
type Config struct {
	FS     fs.FS
	Dir    string
	Logger logrus.FieldLogger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.FS == nil {
		vb.RequiredField("FS")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}

	return vb.Build()
}

type client struct {
	characters map[string]*entities.Character
	weapons    map[string]*entities.Weapon
	shields    map[string]*entities.Shield
	skills     map[string]*entities.Skill
	items      map[string]*entities.Item
	stages     map[string]*entities.Stage
	sequences  map[string]*entities.Sequence
	levels     []entities.Level
	settings   entities.Settings
}

// tableFiles maps a file basename to the Tables field it fills
var tableFiles = []string{
	"characters", "weapons", "shields", "skills", "items",
	"stages", "sequences", "levels", "settings",
}

// Load reads <Dir>/<table>.json|.yaml|.yml for every table and validates
// the result. A missing table file loads as empty and is then caught by
// validation if something references it.
func Load(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	tables := &Tables{}
	for _, table := range tableFiles {
		data, name, err := readTable(cfg.FS, dir, table)
		if err != nil {
			return nil, err
		}
		if data == nil {
			cfg.Logger.WithField("table", table).Warn("data table not found, using empty table")
			continue
		}

		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse "+name)
		}
		if err := decodeTable(tables, table, &node); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode "+name)
		}
		cfg.Logger.WithField("table", table).Debug("loaded data table")
	}

	c, err := NewFromTables(tables)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readTable(fsys fs.FS, dir, table string) ([]byte, string, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		name := path.Join(dir, table+ext)
		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			return data, name, nil
		}
		if !stderrors.Is(err, fs.ErrNotExist) {
			return nil, name, errors.Wrapf(err, "failed to read %s", name)
		}
	}
	return nil, "", nil
}

func decodeTable(t *Tables, table string, node *yaml.Node) error {
	switch table {
	case "characters":
		return node.Decode(&t.Characters)
	case "weapons":
		return node.Decode(&t.Weapons)
	case "shields":
		return node.Decode(&t.Shields)
	case "skills":
		return node.Decode(&t.Skills)
	case "items":
		return node.Decode(&t.Items)
	case "stages":
		return node.Decode(&t.Stages)
	case "sequences":
		return node.Decode(&t.Sequences)
	case "levels":
		return node.Decode(&t.Levels)
	case "settings":
		return node.Decode(&t.Settings)
	}
	return errors.InvalidArgumentf("unknown table %s", table)
}

// NewFromTables indexes already decoded tables. It does not validate, so
// tests can build partial data sets.
func NewFromTables(t *Tables) (Client, error) {
	if t == nil {
		return nil, errors.InvalidArgument("tables are required")
	}

	c := &client{
		characters: make(map[string]*entities.Character, len(t.Characters)),
		weapons:    make(map[string]*entities.Weapon, len(t.Weapons)),
		shields:    make(map[string]*entities.Shield, len(t.Shields)),
		skills:     make(map[string]*entities.Skill, len(t.Skills)),
		items:      make(map[string]*entities.Item, len(t.Items)),
		stages:     make(map[string]*entities.Stage, len(t.Stages)),
		sequences:  make(map[string]*entities.Sequence, len(t.Sequences)),
		settings:   t.Settings,
	}

	vb := errors.NewValidationBuilder()
	for _, row := range t.Characters {
		putUnique(c.characters, row.ID, row, "characters", vb)
	}
	for _, row := range t.Weapons {
		putUnique(c.weapons, row.ID, row, "weapons", vb)
	}
	for _, row := range t.Shields {
		putUnique(c.shields, row.ID, row, "shields", vb)
	}
	for _, row := range t.Skills {
		putUnique(c.skills, row.ID, row, "skills", vb)
	}
	for _, row := range t.Items {
		putUnique(c.items, row.ID, row, "items", vb)
	}
	for _, row := range t.Stages {
		putUnique(c.stages, row.ID, row, "stages", vb)
	}
	for _, row := range t.Sequences {
		putUnique(c.sequences, row.ID, row, "sequences", vb)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	c.levels = append([]entities.Level(nil), t.Levels...)
	sort.Slice(c.levels, func(i, j int) bool { return c.levels[i].Level < c.levels[j].Level })

	return c, nil
}

func putUnique[T any](m map[string]*T, id string, row *T, table string, vb *errors.ValidationBuilder) {
	if strings.TrimSpace(id) == "" {
		vb.Field(table, "row with empty id")
		return
	}
	if _, exists := m[id]; exists {
		vb.Fieldf(table, "duplicate id %q", id)
		return
	}
	m[id] = row
}

func (c *client) GetCharacter(id string) (*entities.Character, error) {
	return lookup(c.characters, "character", id)
}

func (c *client) GetWeapon(id string) (*entities.Weapon, error) {
	return lookup(c.weapons, "weapon", id)
}

func (c *client) GetShield(id string) (*entities.Shield, error) {
	return lookup(c.shields, "shield", id)
}

func (c *client) GetSkill(id string) (*entities.Skill, error) {
	return lookup(c.skills, "skill", id)
}

func (c *client) GetItem(id string) (*entities.Item, error) {
	return lookup(c.items, "item", id)
}

func (c *client) GetStage(id string) (*entities.Stage, error) {
	return lookup(c.stages, "stage", id)
}

func (c *client) GetSequence(id string) (*entities.Sequence, error) {
	return lookup(c.sequences, "sequence", id)
}

func (c *client) Levels() []entities.Level {
	return c.levels
}

func (c *client) Settings() entities.Settings {
	return c.settings
}

func lookup[T any](m map[string]*T, kind, id string) (*T, error) {
	row, ok := m[id]
	if !ok {
		return nil, errors.NotFoundf("%s not found: %s", kind, id).WithMeta(kind+"_id", id)
	}
	return row, nil
}

// AssetPath resolves a data-table asset reference under AssetPrefix.
// Empty references stay empty; clients treat a missing asset as absent.
func AssetPath(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	clean := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if strings.HasPrefix(clean, AssetPrefix) {
		return clean
	}
	return AssetPrefix + clean
}
