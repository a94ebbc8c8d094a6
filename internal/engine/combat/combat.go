// Package combat holds the damage formulas shared by the player, enemies
// and skills. Everything here is pure; callers apply the results.
package combat

import (
	"math"

	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// MaxGuardPercent caps how much of a hit a shield can block
const MaxGuardPercent = 80

// WeakDamage is the damage of a weak attack
func WeakDamage(w *entities.Weapon, attackBuff float64) int {
	return int(math.Floor(w.Damage * attackBuff))
}

// ChargeDamage is the damage of a strong attack released after
// chargeSeconds. It never decreases with charge and never exceeds the
// weapon's MaxChargeDamage.
func ChargeDamage(w *entities.Weapon, chargeSeconds, attackBuff float64) int {
	if chargeSeconds < 0 {
		chargeSeconds = 0
	}
	raw := (w.Damage + w.ChargeRate*chargeSeconds) * attackBuff
	return int(math.Floor(math.Min(raw, w.MaxChargeDamage)))
}

// StrongAttackCost is the stamina a strong attack of damage costs
func StrongAttackCost(damage int) int {
	return damage / 2
}

// InRange reports whether target is strictly closer than rng on the
// ground plane
func InRange(attacker, target entities.Vec3, rng float64) bool {
	return attacker.HorizontalDist(target) < rng
}

// InFront reports whether point lies within 90 degrees of forward as seen
// from origin
func InFront(origin entities.Vec3, forward entities.Vec3, point entities.Vec3) bool {
	to := point.Sub(origin).Flat()
	return forward.Flat().Dot(to) > 0
}

// GuardInput describes an incoming hit on the player
type GuardInput struct {
	Damage        int
	Guarding      bool
	InFront       bool
	ShieldDefense int
	Stamina       float64
}

// GuardResult is what the hit does after guard resolution
type GuardResult struct {
	HPDamage    int
	Blocked     int
	StaminaLoss float64
	GuardBroken bool
}

// ResolveGuard applies shield mitigation. Without a guard, with the
// attacker behind or with no stamina left, the full damage goes through.
func ResolveGuard(in GuardInput) GuardResult {
	dmg := in.Damage
	if dmg < 0 {
		dmg = 0
	}
	if !in.Guarding || !in.InFront || in.ShieldDefense <= 0 {
		return GuardResult{HPDamage: dmg}
	}
	if in.Stamina <= 0 {
		return GuardResult{HPDamage: dmg, GuardBroken: true}
	}

	pct := in.ShieldDefense
	if pct > MaxGuardPercent {
		pct = MaxGuardPercent
	}
	blocked := dmg * pct / 100
	loss := math.Ceil(float64(blocked) / 2)

	res := GuardResult{
		HPDamage:    dmg - blocked,
		Blocked:     blocked,
		StaminaLoss: loss,
	}
	if in.Stamina-loss <= 0 {
		res.StaminaLoss = in.Stamina
		res.GuardBroken = true
	}
	return res
}

// ApplyDefense scales incoming damage by a defense multiplier, rounding up
// so a hit never drops to zero from a buff alone
func ApplyDefense(damage int, defenseBuff float64) int {
	if defenseBuff <= 0 || defenseBuff == 1 || damage <= 0 {
		return damage
	}
	return int(math.Ceil(float64(damage) / defenseBuff))
}
