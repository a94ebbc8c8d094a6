package gamedata

import (
	"fmt"
	"sort"

	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

var (
	characterKinds = []string{
		string(entities.CharacterKindPlayer), string(entities.CharacterKindEnemy),
		string(entities.CharacterKindBoss), string(entities.CharacterKindNPC),
	}
	skillKinds = []string{
		string(entities.SkillKindProjectile), string(entities.SkillKindAreaAttack),
		string(entities.SkillKindSelfTarget),
	}
	itemKinds = []string{
		string(entities.ItemKindConsumable), string(entities.ItemKindWeapon),
		string(entities.ItemKindShield), string(entities.ItemKindSkill),
	}
	buffStats = []string{
		string(entities.StatAttack), string(entities.StatDefense), string(entities.StatSpeed),
	}
)

// Validate reports every bad row and dangling reference at once
func (c *client) Validate() error {
	vb := errors.NewValidationBuilder()

	for _, id := range sortedKeys(c.characters) {
		c.validateCharacter(c.characters[id], vb)
	}
	for _, id := range sortedKeys(c.weapons) {
		w := c.weapons[id]
		f := "weapons." + id
		errors.ValidatePositive(f+".range", w.Range, vb)
		errors.ValidateNonNegative(f+".damage", w.Damage, vb)
		errors.ValidateNonNegative(f+".weakStaminaCost", w.WeakStaminaCost, vb)
		errors.ValidateNonNegative(f+".chargeRate", w.ChargeRate, vb)
		if w.MaxChargeDamage < w.Damage {
			vb.Field(f+".maxChargeDamage", "must be at least damage")
		}
	}
	for _, id := range sortedKeys(c.shields) {
		errors.ValidateRange("shields."+id+".defense", c.shields[id].Defense, 0, 100, vb)
	}
	for _, id := range sortedKeys(c.skills) {
		c.validateSkill(c.skills[id], vb)
	}
	for _, id := range sortedKeys(c.items) {
		c.validateItem(c.items[id], vb)
	}
	for _, id := range sortedKeys(c.stages) {
		c.validateStage(c.stages[id], vb)
	}
	for _, id := range sortedKeys(c.sequences) {
		s := c.sequences[id]
		errors.ValidateNonNegative("sequences."+id+".duration", s.Duration, vb)
		for i, step := range s.Steps {
			if step.At < 0 || step.At > s.Duration {
				vb.Fieldf(fmt.Sprintf("sequences.%s.steps[%d].at", id, i), "must be within [0, %g]", s.Duration)
			}
		}
	}

	prev := entities.Level{}
	for i, lvl := range c.levels {
		if i > 0 && (lvl.Level != prev.Level+1 || lvl.Experience <= prev.Experience) {
			vb.Fieldf(fmt.Sprintf("levels[%d]", i), "levels must be consecutive with increasing experience")
		}
		prev = lvl
	}

	c.validateSettings(vb)

	return vb.Build()
}

func (c *client) validateCharacter(ch *entities.Character, vb *errors.ValidationBuilder) {
	f := "characters." + ch.ID
	errors.ValidateEnum(f+".kind", string(ch.Kind), characterKinds, vb)
	if ch.Kind != entities.CharacterKindNPC {
		errors.ValidateRange(f+".maxHp", ch.MaxHP, 1, 1<<30, vb)
	}
	errors.ValidateNonNegative(f+".speed", ch.Speed, vb)
	errors.ValidatePositive(f+".height", ch.Height, vb)
	errors.ValidatePositive(f+".radius", ch.Radius, vb)

	switch ch.Kind {
	case entities.CharacterKindPlayer:
		if ch.Player == nil {
			vb.RequiredField(f + ".player")
			return
		}
		p := ch.Player
		errors.ValidatePositive(f+".player.maxStamina", p.MaxStamina, vb)
		errors.ValidateNonNegative(f+".player.maxFp", p.MaxFP, vb)
		if len(p.Weapons) == 0 {
			vb.Field(f+".player.weapons", "needs at least one weapon")
		}
		for _, w := range p.Weapons {
			c.ref(f+".player.weapons", "weapon", w, vb)
		}
		for _, s := range p.Shields {
			c.ref(f+".player.shields", "shield", s, vb)
		}
		for _, s := range p.Skills {
			c.ref(f+".player.skills", "skill", s, vb)
		}
		for _, it := range p.Items {
			c.ref(f+".player.items", "item", it, vb)
		}
	case entities.CharacterKindEnemy, entities.CharacterKindBoss:
		if ch.Enemy == nil {
			vb.RequiredField(f + ".enemy")
			return
		}
		e := ch.Enemy
		errors.ValidateRange(f+".enemy.strongAttackProbability", e.StrongAttackProbability, 0, 100, vb)
		errors.ValidateNonNegative(f+".enemy.aggroRange", e.AggroRange, vb)
		errors.ValidatePositive(f+".enemy.weakAttack.range", e.WeakAttack.Range, vb)
		errors.ValidatePositive(f+".enemy.strongAttack.range", e.StrongAttack.Range, vb)
		if e.WeakAttack.Skill != "" {
			vb.InvalidField(f+".enemy.weakAttack.skill", "only strong attacks cast skills")
		}
		if e.StrongAttack.Skill != "" {
			c.ref(f+".enemy.strongAttack.skill", "skill", e.StrongAttack.Skill, vb)
		}
		for _, d := range e.Drops {
			c.ref(f+".enemy.drops", "item", d, vb)
		}
	}
}

func (c *client) validateSkill(s *entities.Skill, vb *errors.ValidationBuilder) {
	f := "skills." + s.ID
	errors.ValidateEnum(f+".kind", string(s.Kind), skillKinds, vb)
	errors.ValidateNonNegative(f+".fpCost", s.FPCost, vb)
	errors.ValidateNonNegative(f+".castTime", s.CastTime, vb)

	switch s.Kind {
	case entities.SkillKindProjectile:
		errors.ValidatePositive(f+".speed", s.Speed, vb)
		errors.ValidatePositive(f+".lifespan", s.Lifespan, vb)
		errors.ValidatePositive(f+".radius", s.Radius, vb)
	case entities.SkillKindAreaAttack:
		errors.ValidatePositive(f+".radius", s.Radius, vb)
		errors.ValidatePositive(f+".duration", s.Duration, vb)
		if s.CastTime > s.Duration {
			vb.Field(f+".castTime", "must not exceed duration")
		}
	case entities.SkillKindSelfTarget:
		if s.Buff == nil {
			vb.RequiredField(f + ".buff")
			return
		}
		errors.ValidateEnum(f+".buff.stat", string(s.Buff.Stat), buffStats, vb)
		errors.ValidatePositive(f+".buff.multiplier", s.Buff.Multiplier, vb)
		errors.ValidatePositive(f+".buff.duration", s.Buff.Duration, vb)
	}
}

func (c *client) validateItem(it *entities.Item, vb *errors.ValidationBuilder) {
	f := "items." + it.ID
	errors.ValidateEnum(f+".kind", string(it.Kind), itemKinds, vb)

	switch it.Kind {
	case entities.ItemKindWeapon:
		c.ref(f+".grants", "weapon", it.Grants, vb)
	case entities.ItemKindShield:
		c.ref(f+".grants", "shield", it.Grants, vb)
	case entities.ItemKindSkill:
		c.ref(f+".grants", "skill", it.Grants, vb)
	}
}

func (c *client) validateStage(st *entities.Stage, vb *errors.ValidationBuilder) {
	f := "stages." + st.ID
	if st.Gravity > 0 {
		vb.Field(f+".gravity", "must point down (zero or negative)")
	}
	if g := st.Ground; g != nil {
		errors.ValidatePositive(f+".ground.cellSize", g.CellSize, vb)
		if g.Width < 2 || g.Depth < 2 {
			vb.Field(f+".ground", "needs at least 2x2 samples")
		} else if len(g.Heights) != g.Width*g.Depth {
			vb.Fieldf(f+".ground.heights", "expected %d samples, got %d", g.Width*g.Depth, len(g.Heights))
		}
	}
	for _, p := range st.Enemies {
		if ch, ok := c.characters[p.Character]; !ok {
			vb.Fieldf(f+".enemies", "unknown character %q", p.Character)
		} else if ch.Kind != entities.CharacterKindEnemy && ch.Kind != entities.CharacterKindBoss {
			vb.Fieldf(f+".enemies", "character %q is not an enemy", p.Character)
		}
	}
	for _, p := range st.NPCs {
		if ch, ok := c.characters[p.Character]; !ok {
			vb.Fieldf(f+".npcs", "unknown character %q", p.Character)
		} else if ch.Kind != entities.CharacterKindNPC {
			vb.Fieldf(f+".npcs", "character %q is not an npc", p.Character)
		}
	}
	for _, p := range st.Items {
		c.ref(f+".items", "item", p.Item, vb)
	}
	for _, e := range st.Exits {
		c.ref(f+".exits", "stage", e.NextStage, vb)
		errors.ValidatePositive(f+".exits.radius", e.Radius, vb)
	}
}

func (c *client) validateSettings(vb *errors.ValidationBuilder) {
	s := c.settings
	if s.PlayerCharacter == "" && s.StartStage == "" {
		// no settings table; the session supplies them
		return
	}
	if ch, ok := c.characters[s.PlayerCharacter]; !ok || ch.Kind != entities.CharacterKindPlayer {
		vb.Fieldf("settings.playerCharacter", "unknown player character %q", s.PlayerCharacter)
	}
	c.ref("settings.startStage", "stage", s.StartStage, vb)
	if s.OpeningSequence != "" {
		c.ref("settings.openingSequence", "sequence", s.OpeningSequence, vb)
	}
	if s.EndingSequence != "" {
		c.ref("settings.endingSequence", "sequence", s.EndingSequence, vb)
	}
	errors.ValidateNonNegative("settings.splashDuration", s.SplashDuration, vb)
}

func (c *client) ref(field, kind, id string, vb *errors.ValidationBuilder) {
	if !c.has(kind, id) {
		vb.Fieldf(field, "unknown %s %q", kind, id)
	}
}

func (c *client) has(kind, id string) bool {
	var ok bool
	switch kind {
	case "weapon":
		_, ok = c.weapons[id]
	case "shield":
		_, ok = c.shields[id]
	case "skill":
		_, ok = c.skills[id]
	case "item":
		_, ok = c.items[id]
	case "stage":
		_, ok = c.stages[id]
	case "sequence":
		_, ok = c.sequences[id]
	}
	return ok
}

func sortedKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
