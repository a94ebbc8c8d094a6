package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-action/internal/engine/combat"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

var sword = &entities.Weapon{Damage: 10, Range: 2.5, WeakStaminaCost: 8, ChargeRate: 10, MaxChargeDamage: 40}

func TestWeakDamage(t *testing.T) {
	assert.Equal(t, 10, combat.WeakDamage(sword, 1))
	assert.Equal(t, 15, combat.WeakDamage(sword, 1.5))
}

func TestChargeDamageMonotonicAndCapped(t *testing.T) {
	prev := -1
	for i := 0; i <= 100; i++ {
		secs := float64(i) * 0.05
		dmg := combat.ChargeDamage(sword, secs, 1)
		assert.GreaterOrEqual(t, dmg, prev, "charge %.2fs", secs)
		assert.LessOrEqual(t, dmg, int(sword.MaxChargeDamage))
		prev = dmg
	}
	assert.Equal(t, 40, combat.ChargeDamage(sword, 60, 1))
	assert.Equal(t, 10, combat.ChargeDamage(sword, -1, 1))
	assert.Equal(t, 40, combat.ChargeDamage(sword, 2, 3), "buffs cannot lift past the cap")
	assert.Equal(t, 25, combat.ChargeDamage(sword, 1.5, 1))
}

func TestStrongAttackCost(t *testing.T) {
	assert.Equal(t, 12, combat.StrongAttackCost(24))
	assert.Equal(t, 12, combat.StrongAttackCost(25))
	assert.Equal(t, 0, combat.StrongAttackCost(1))
}

func TestInRangeIsStrict(t *testing.T) {
	origin := entities.Vec3{}
	assert.True(t, combat.InRange(origin, entities.Vec3{X: 2.4, Y: 10}, 2.5))
	assert.False(t, combat.InRange(origin, entities.Vec3{X: 2.5}, 2.5))
}

func TestInFront(t *testing.T) {
	origin := entities.Vec3{}
	forward := entities.Forward(0)

	testCases := []struct {
		name  string
		point entities.Vec3
		want  bool
	}{
		{"straight ahead", entities.Vec3{Z: 5}, true},
		{"89 degrees", entities.Vec3{X: 5, Z: 0.1}, true},
		{"exactly beside", entities.Vec3{X: 5}, false},
		{"behind", entities.Vec3{Z: -5}, false},
		{"behind left", entities.Vec3{X: -3, Z: -0.1}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, combat.InFront(origin, forward, tc.point))
		})
	}
}

func TestResolveGuard(t *testing.T) {
	testCases := []struct {
		name string
		in   combat.GuardInput
		want combat.GuardResult
	}{
		{
			name: "not guarding",
			in:   combat.GuardInput{Damage: 20, InFront: true, ShieldDefense: 50, Stamina: 100},
			want: combat.GuardResult{HPDamage: 20},
		},
		{
			name: "attacker behind",
			in:   combat.GuardInput{Damage: 20, Guarding: true, InFront: false, ShieldDefense: 50, Stamina: 100},
			want: combat.GuardResult{HPDamage: 20},
		},
		{
			name: "half blocked",
			in:   combat.GuardInput{Damage: 20, Guarding: true, InFront: true, ShieldDefense: 50, Stamina: 100},
			want: combat.GuardResult{HPDamage: 10, Blocked: 10, StaminaLoss: 5},
		},
		{
			name: "defense capped at 80",
			in:   combat.GuardInput{Damage: 20, Guarding: true, InFront: true, ShieldDefense: 95, Stamina: 100},
			want: combat.GuardResult{HPDamage: 4, Blocked: 16, StaminaLoss: 8},
		},
		{
			name: "odd blocked rounds stamina loss up",
			in:   combat.GuardInput{Damage: 15, Guarding: true, InFront: true, ShieldDefense: 50, Stamina: 100},
			want: combat.GuardResult{HPDamage: 8, Blocked: 7, StaminaLoss: 4},
		},
		{
			name: "guard breaks at zero stamina",
			in:   combat.GuardInput{Damage: 20, Guarding: true, InFront: true, ShieldDefense: 50, Stamina: 3},
			want: combat.GuardResult{HPDamage: 10, Blocked: 10, StaminaLoss: 3, GuardBroken: true},
		},
		{
			name: "exhausted guard blocks nothing",
			in:   combat.GuardInput{Damage: 20, Guarding: true, InFront: true, ShieldDefense: 50, Stamina: 0},
			want: combat.GuardResult{HPDamage: 20, GuardBroken: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, combat.ResolveGuard(tc.in))
		})
	}
}

func TestApplyDefense(t *testing.T) {
	assert.Equal(t, 10, combat.ApplyDefense(10, 1))
	assert.Equal(t, 5, combat.ApplyDefense(10, 2))
	assert.Equal(t, 1, combat.ApplyDefense(1, 4))
	assert.Equal(t, 10, combat.ApplyDefense(10, 0))
}
