package integrators

import "github.com/go-gl/mathgl/mgl32"

// DefaultDamping keeps 99% of the velocity each step.
const DefaultDamping float32 = 0.99

// Damped is a semi-implicit Euler step with a per-species acceleration gain
// and a constant velocity damping factor.
type Damped struct {
	Gain    float32
	Damping float32
}

var (
	// E particles are light and react fast.
	E = Damped{Gain: 2.0, Damping: DefaultDamping}
	// MP particles are heavy and react slowly.
	MP = Damped{Gain: 0.01, Damping: DefaultDamping}
)

func NewDamped(gain, damping float32) Damped {
	return Damped{Gain: gain, Damping: damping}
}

// Step advances velocity then position by dt.
func (d Damped) Step(pos, vel, acc mgl32.Vec3, dt float32) (mgl32.Vec3, mgl32.Vec3) {
	vel = vel.Add(acc.Mul(dt).Mul(d.Gain))
	vel = vel.Mul(d.Damping)
	pos = pos.Add(vel.Mul(dt))
	return pos, vel
}
