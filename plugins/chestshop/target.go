package chestshop

import (
	"math"

	"chestshop/define"
)

const maxTargetDistance = 5.0

// targetBlock walks every block the actor's line of sight passes through, nearest
// first, and returns the first non-air one entered within maxDistance.
func (o *ChestShop) targetBlock(actor *define.Actor, maxDistance float64) (define.Block, bool) {
	dir := actor.Look()
	origin := actor.Eye
	start := define.BlockLocation(actor.World, origin)
	cell := [3]int{start.X, start.Y, start.Z}

	// t is measured along dir, which is a unit vector, so it is a distance in blocks
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - origin[i]) / dir[i]
			tDelta[i] = 1 / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tMax[i] = (float64(cell[i]) - origin[i]) / dir[i]
			tDelta[i] = -1 / dir[i]
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	for t := 0.0; t <= maxDistance; {
		loc := define.Location{World: actor.World, X: cell[0], Y: cell[1], Z: cell[2]}
		block, ok := o.caps.blockAt(loc)
		if !ok {
			return define.Block{}, false
		}
		if block.Material != define.MaterialAir {
			return block, true
		}
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
	return define.Block{}, false
}
