package particle

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Clamp limits every component of v to [lo, hi].
func Clamp(v mgl32.Vec3, lo, hi float32) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(v[0], lo, hi),
		mgl32.Clamp(v[1], lo, hi),
		mgl32.Clamp(v[2], lo, hi),
	}
}

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func Distance(a, b mgl32.Vec3) float32 {
	return a.Sub(b).Len()
}
