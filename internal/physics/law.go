package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Epsilon is the minimum separation below which a pair contributes nothing.
	Epsilon float32 = 0.1

	// ERepulsionScale multiplies the target's repulsion strength in E↔E pairs.
	ERepulsionScale float32 = 2.0
	// AttractionScale multiplies the MP attraction strength in MP↔E pairs.
	AttractionScale float32 = 200.0
	// InheritedScale is the per-E contribution to the ambient MP repulsion.
	InheritedScale float32 = 1000.0

	// DefaultBounds is the half-width of the cubic domain.
	DefaultBounds float32 = 2000.0
)

type Law int

const (
	InverseSquare Law = iota
	Legacy
)

func (l Law) String() string {
	switch l {
	case InverseSquare:
		return "inverse_square"
	case Legacy:
		return "legacy"
	default:
		return "unknown"
	}
}

func ParseLaw(name string) (Law, error) {
	switch strings.ToLower(name) {
	case "", "inverse_square", "inverse-square":
		return InverseSquare, nil
	case "legacy":
		return Legacy, nil
	default:
		return 0, fmt.Errorf("unknown force law: %s", name)
	}
}

// contribution returns the acceleration term for separation sep and the
// numerator of the inverse-square magnitude. ok is false when the pair is
// closer than Epsilon or the separation is not finite.
func (l Law) contribution(sep mgl32.Vec3, numer float32) (acc mgl32.Vec3, ok bool) {
	d := sep.Len()
	if !inRange(d) {
		return mgl32.Vec3{}, false
	}
	mag := numer / (d * d)
	if l == Legacy {
		return sep.Mul(mag), true
	}
	return sep.Mul(1 / d).Mul(mag), true
}

// inRange reports whether a pair at distance d interacts. NaN and Inf
// distances never do.
func inRange(d float32) bool {
	return d >= Epsilon && !math.IsInf(float64(d), 0)
}
