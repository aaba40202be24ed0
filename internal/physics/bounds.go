package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/particle"
)

// Enforce clamps pos to [-bounds, bounds] per axis and reports whether any
// component moved. NaN components are left alone and do not count.
func Enforce(pos mgl32.Vec3, bounds float32) (mgl32.Vec3, bool) {
	clamped := particle.Clamp(pos, -bounds, bounds)
	moved := false
	for i := range pos {
		if pos[i] > bounds || pos[i] < -bounds {
			moved = true
		}
	}
	return clamped, moved
}
