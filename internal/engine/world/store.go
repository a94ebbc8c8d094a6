// Package world stores game entities as component sets in an ark ECS
// world. Handles are ecs.Entity values: they carry a generation, so a
// handle to a removed entity never resolves to a recycled one.
package world

import (
	"strconv"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/mlange-42/ark/ecs"

	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// Handle refers to an entity; the zero Handle refers to nothing
type Handle = ecs.Entity

// NoHandle is the empty handle
var NoHandle Handle

// Store owns the ECS world and the per-category order lists. Component
// pointers returned by accessors are only valid until the next spawn or
// Compact; re-fetch them instead of holding them.
type Store struct {
	world ecs.World

	identity  *ecs.Map[Identity]
	body      *ecs.Map[Body]
	health    *ecs.Map[Health]
	anim      *ecs.Map[Animation]
	buffs     *ecs.Map[Buffs]
	footsteps *ecs.Map[Footsteps]
	player    *ecs.Map[Player]
	enemy     *ecs.Map[EnemyAI]
	npc       *ecs.Map[NPC]
	skill     *ecs.Map[Skill]
	pickup    *ecs.Map[Pickup]

	serial     uint64
	playerH    Handle
	enemies    []Handle
	skills     []Handle
	npcs       []Handle
	items      []Handle
	tombstoned int

	removedPlayer Handle
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{world: ecs.NewWorld()}
	s.identity = ecs.NewMap[Identity](&s.world)
	s.body = ecs.NewMap[Body](&s.world)
	s.health = ecs.NewMap[Health](&s.world)
	s.anim = ecs.NewMap[Animation](&s.world)
	s.buffs = ecs.NewMap[Buffs](&s.world)
	s.footsteps = ecs.NewMap[Footsteps](&s.world)
	s.player = ecs.NewMap[Player](&s.world)
	s.enemy = ecs.NewMap[EnemyAI](&s.world)
	s.npc = ecs.NewMap[NPC](&s.world)
	s.skill = ecs.NewMap[Skill](&s.world)
	s.pickup = ecs.NewMap[Pickup](&s.world)
	return s
}

// ClearStage removes every entity except the player. Entities are
// removed from the same world, so old handles stay dead instead of
// aliasing new entities.
func (s *Store) ClearStage() {
	for _, list := range [][]Handle{s.enemies, s.skills, s.npcs, s.items} {
		for _, h := range list {
			if s.world.Alive(h) {
				s.world.RemoveEntity(h)
			}
		}
	}
	s.enemies = nil
	s.skills = nil
	s.npcs = nil
	s.items = nil
	s.tombstoned = 0
	if s.removedPlayer != NoHandle && s.world.Alive(s.removedPlayer) {
		s.world.RemoveEntity(s.removedPlayer)
	}
	s.removedPlayer = NoHandle
}

// Reset removes every entity including the player
func (s *Store) Reset() {
	if s.world.Alive(s.playerH) {
		s.world.RemoveEntity(s.playerH)
	}
	s.playerH = NoHandle
	s.ClearStage()
}

// CharacterSpec describes a character to spawn. Exactly one of Player,
// Enemy or NPC is expected for the matching kind.
type CharacterSpec struct {
	Kind   Kind
	DataID string
	Name   string
	Body   Body
	Health Health
	Player *Player
	Enemy  *EnemyAI
	NPC    *NPC
}

// SpawnCharacter adds a character with the shared components and the
// role component of its kind
func (s *Store) SpawnCharacter(spec CharacterSpec) Handle {
	e := s.newEntity(spec.Kind, spec.DataID, spec.Name)

	body := spec.Body
	s.body.Add(e, &body)
	health := spec.Health
	s.health.Add(e, &health)
	s.anim.Add(e, &Animation{State: AnimIdle, Opacity: 1})
	s.buffs.Add(e, &Buffs{Active: map[entities.Stat]Buff{}})
	s.footsteps.Add(e, &Footsteps{})

	switch {
	case spec.Player != nil:
		p := *spec.Player
		s.player.Add(e, &p)
		s.playerH = e
	case spec.Enemy != nil:
		ai := *spec.Enemy
		s.enemy.Add(e, &ai)
		s.enemies = append(s.enemies, e)
	case spec.NPC != nil:
		n := *spec.NPC
		s.npc.Add(e, &n)
		s.npcs = append(s.npcs, e)
	}
	return e
}

// SpawnSkill adds a live skill entity
func (s *Store) SpawnSkill(kind Kind, dataID string, body Body, sk Skill) Handle {
	e := s.newEntity(kind, dataID, dataID)
	s.body.Add(e, &body)
	s.skill.Add(e, &sk)
	s.skills = append(s.skills, e)
	return e
}

// SpawnPickup drops an item on the ground
func (s *Store) SpawnPickup(itemID string, body Body, amount int) Handle {
	if amount <= 0 {
		amount = 1
	}
	e := s.newEntity(KindItem, itemID, itemID)
	s.body.Add(e, &body)
	s.pickup.Add(e, &Pickup{ItemID: itemID, Amount: amount})
	s.items = append(s.items, e)
	return e
}

func (s *Store) newEntity(kind Kind, dataID, name string) Handle {
	s.serial++
	return s.identity.NewEntity(&Identity{
		Serial: s.serial,
		Kind:   kind,
		DataID: dataID,
		Name:   name,
	})
}

// Alive reports whether h refers to an entity that exists and has not
// been despawned. It says nothing about hit points.
func (s *Store) Alive(h Handle) bool {
	if h == NoHandle || !s.world.Alive(h) {
		return false
	}
	return !s.identity.Get(h).removed
}

// Living reports whether h is alive and, if it has health, not dead
func (s *Store) Living(h Handle) bool {
	if !s.Alive(h) {
		return false
	}
	if hp := s.Health(h); hp != nil {
		return !hp.Dead
	}
	return true
}

// Despawn tombstones h. The entity leaves the world on the next Compact;
// until then Alive reports false and iteration skips it.
func (s *Store) Despawn(h Handle) {
	if !s.Alive(h) {
		return
	}
	s.identity.Get(h).removed = true
	s.tombstoned++
	if h == s.playerH {
		s.playerH = NoHandle
		s.removedPlayer = h
	}
}

// Compact removes tombstoned entities from the world and the order lists
func (s *Store) Compact() {
	if s.tombstoned == 0 {
		return
	}
	s.enemies = s.compactList(s.enemies)
	s.skills = s.compactList(s.skills)
	s.npcs = s.compactList(s.npcs)
	s.items = s.compactList(s.items)
	if s.removedPlayer != NoHandle && s.world.Alive(s.removedPlayer) {
		s.world.RemoveEntity(s.removedPlayer)
	}
	s.removedPlayer = NoHandle
	s.tombstoned = 0
}

func (s *Store) compactList(list []Handle) []Handle {
	kept := list[:0]
	for _, h := range list {
		if !s.world.Alive(h) {
			continue
		}
		if s.identity.Get(h).removed {
			s.world.RemoveEntity(h)
			continue
		}
		kept = append(kept, h)
	}
	return kept
}

// PlayerHandle returns the player handle, NoHandle when there is none
func (s *Store) PlayerHandle() Handle {
	if !s.Alive(s.playerH) {
		return NoHandle
	}
	return s.playerH
}

// Enemies lists enemies and bosses in spawn order, tombstones included
func (s *Store) Enemies() []Handle { return s.enemies }

// Skills lists live skills in spawn order, tombstones included
func (s *Store) Skills() []Handle { return s.skills }

// NPCs lists npcs in spawn order
func (s *Store) NPCs() []Handle { return s.npcs }

// Items lists pickups in spawn order, tombstones included
func (s *Store) Items() []Handle { return s.items }

// Count is the number of entities currently in the world
func (s *Store) Count() int {
	n := 0
	if s.Alive(s.playerH) {
		n++
	}
	for _, list := range [][]Handle{s.enemies, s.skills, s.npcs, s.items} {
		for _, h := range list {
			if s.Alive(h) {
				n++
			}
		}
	}
	return n
}

// Identity returns the identity of h or nil
func (s *Store) Identity(h Handle) *Identity { return get(s, s.identity, h) }

// Body returns the body of h or nil
func (s *Store) Body(h Handle) *Body { return get(s, s.body, h) }

// Health returns the health of h or nil
func (s *Store) Health(h Handle) *Health { return get(s, s.health, h) }

// Animation returns the animation of h or nil
func (s *Store) Animation(h Handle) *Animation { return get(s, s.anim, h) }

// Buffs returns the buffs of h or nil
func (s *Store) Buffs(h Handle) *Buffs { return get(s, s.buffs, h) }

// Footsteps returns the footstep accumulator of h or nil
func (s *Store) Footsteps(h Handle) *Footsteps { return get(s, s.footsteps, h) }

// Player returns the player component of h or nil
func (s *Store) Player(h Handle) *Player { return get(s, s.player, h) }

// EnemyAI returns the AI component of h or nil
func (s *Store) EnemyAI(h Handle) *EnemyAI { return get(s, s.enemy, h) }

// NPC returns the npc component of h or nil
func (s *Store) NPC(h Handle) *NPC { return get(s, s.npc, h) }

// Skill returns the skill component of h or nil
func (s *Store) Skill(h Handle) *Skill { return get(s, s.skill, h) }

// Pickup returns the pickup component of h or nil
func (s *Store) Pickup(h Handle) *Pickup { return get(s, s.pickup, h) }

func get[T any](s *Store, m *ecs.Map[T], h Handle) *T {
	if !s.Alive(h) || !m.Has(h) {
		return nil
	}
	return m.Get(h)
}

// Serial returns the client-visible serial of h, 0 when not alive
func (s *Store) Serial(h Handle) uint64 {
	if id := s.Identity(h); id != nil {
		return id.Serial
	}
	return 0
}

// Ref adapts h to the rpg-toolkit entity interface for event payloads
func (s *Store) Ref(h Handle) core.Entity {
	id := s.Identity(h)
	if id == nil {
		return nil
	}
	return &entityRef{id: strconv.FormatUint(id.Serial, 10), kind: id.Kind.String()}
}

type entityRef struct {
	id   string
	kind string
}

func (r *entityRef) GetID() string   { return r.id }
func (r *entityRef) GetType() string { return r.kind }
