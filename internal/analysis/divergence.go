package analysis

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/sim"
)

// Divergence runs two copies of the same configuration, the second with
// its first E particle displaced by perturbation along x, and returns
// the average log separation rate. Positive values mean small
// differences grow. Without E particles there is nothing to perturb and
// the result is 0.
func Divergence(cfg sim.Config, dt float64, frames int, perturbation float64) (float64, error) {
	a, err := sim.New(cfg)
	if err != nil {
		return 0, err
	}
	b, err := sim.New(cfg)
	if err != nil {
		return 0, err
	}
	if a.Population().LenE() == 0 || perturbation <= 0 {
		return 0, nil
	}
	b.Population().DisplaceE(0, mgl32.Vec3{float32(perturbation), 0, 0})

	sumLog := 0.0
	count := 0
	for i := 0; i < frames; i++ {
		if _, err := a.Step(float32(dt)); err != nil {
			return 0, err
		}
		if _, err := b.Step(float32(dt)); err != nil {
			return 0, err
		}

		sep := separation(a.Population(), b.Population())
		if sep > 0 {
			sumLog += math.Log(sep / perturbation)
			count++
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func separation(a, b *sim.Population) float64 {
	sum := 0.0
	for i := 0; i < a.LenE(); i++ {
		d := a.E(i).Position.Sub(b.E(i).Position)
		sum += float64(d.Dot(d))
	}
	for i := 0; i < a.LenMP(); i++ {
		d := a.MP(i).Position.Sub(b.MP(i).Position)
		sum += float64(d.Dot(d))
	}
	return math.Sqrt(sum)
}
