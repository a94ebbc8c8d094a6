// Package physics integrates gravity and resolves ground contact
package physics

import (
	"math"

	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// DefaultGravity is used when a stage leaves gravity at zero
const DefaultGravity = -25.0

// GroundFunc returns the ground height under (x, z). ok is false where
// there is no ground data; bodies there free-fall.
type GroundFunc func(x, z float64) (h float64, ok bool)

// NoGround has no ground anywhere
func NoGround(float64, float64) (float64, bool) { return 0, false }

// Step integrates one frame: gravity into vertical velocity, velocity into
// position, then ground snapping. Body positions are at the feet, so a
// falling or resting body whose feet are within snap of the ground lands
// on it. A rising body never snaps, so the first frame of a jump is not
// pulled back down.
func Step(body *world.Body, gravity, snap float64, ground GroundFunc, dt float64) {
	if gravity == 0 {
		gravity = DefaultGravity
	}
	if ground == nil {
		ground = NoGround
	}

	body.Vel.Y += gravity * dt
	body.Pos = body.Pos.Add(body.Vel.Scale(dt))

	h, ok := ground(body.Pos.X, body.Pos.Z)
	if ok && body.Vel.Y <= 0 && body.Pos.Y-h <= snap {
		body.Pos.Y = h
		body.Vel.Y = 0
		body.OnGround = true
		return
	}
	body.OnGround = false
}

// HeightFieldGround samples a height field with bilinear interpolation.
// A nil field means no ground.
func HeightFieldGround(hf *entities.HeightField) GroundFunc {
	if hf == nil || hf.Width < 2 || hf.Depth < 2 || hf.CellSize <= 0 || len(hf.Heights) != hf.Width*hf.Depth {
		return NoGround
	}

	maxX := float64(hf.Width-1) * hf.CellSize
	maxZ := float64(hf.Depth-1) * hf.CellSize

	return func(x, z float64) (float64, bool) {
		lx := x - hf.Origin.X
		lz := z - hf.Origin.Z
		if lx < 0 || lz < 0 || lx > maxX || lz > maxZ {
			return 0, false
		}

		fx := lx / hf.CellSize
		fz := lz / hf.CellSize
		i := int(math.Floor(fx))
		j := int(math.Floor(fz))
		if i >= hf.Width-1 {
			i = hf.Width - 2
		}
		if j >= hf.Depth-1 {
			j = hf.Depth - 2
		}
		tx := fx - float64(i)
		tz := fz - float64(j)

		at := func(ii, jj int) float64 { return hf.Heights[jj*hf.Width+ii] }
		h0 := at(i, j)*(1-tx) + at(i+1, j)*tx
		h1 := at(i, j+1)*(1-tx) + at(i+1, j+1)*tx
		return hf.Origin.Y + h0*(1-tz) + h1*tz, true
	}
}
