package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/particle"
)

// Model evaluates accelerations under a force law.
type Model struct {
	Law Law
}

func NewModel(law Law) Model {
	return Model{Law: law}
}

// AccelerationOnE returns the acceleration on es[i] from every other E
// particle and every MP particle.
func (m Model) AccelerationOnE(i int, es []particle.EParticle, mps []particle.MPParticle) mgl32.Vec3 {
	target := es[i]
	var acc mgl32.Vec3

	numer := target.RepulsionStrength * ERepulsionScale
	for j := range es {
		if j == i {
			continue
		}
		if a, ok := m.Law.contribution(target.Position.Sub(es[j].Position), numer); ok {
			acc = acc.Add(a)
		}
	}

	for j := range mps {
		mp := &mps[j]
		if a, ok := m.Law.contribution(mp.Position.Sub(target.Position), mp.AttractionStrength*AttractionScale); ok {
			acc = acc.Add(a)
		}
	}

	return acc
}

// AccelerationOnMP returns the acceleration on mps[i]. ambient must be
// AmbientRepulsion(mps[i].Position, es) for the current E positions.
func (m Model) AccelerationOnMP(i int, ambient float32, es []particle.EParticle, mps []particle.MPParticle) mgl32.Vec3 {
	target := mps[i]
	var acc mgl32.Vec3

	for j := range mps {
		if j == i {
			continue
		}
		if a, ok := m.Law.contribution(target.Position.Sub(mps[j].Position), ambient); ok {
			acc = acc.Add(a)
		}
	}

	return acc.Add(m.attractionFromE(target, es))
}

// AccelerationOnMPNaive is AccelerationOnMP with the ambient repulsion
// recomputed for every MP pair. It costs O(N_mp·N_e) per call.
func (m Model) AccelerationOnMPNaive(i int, es []particle.EParticle, mps []particle.MPParticle) mgl32.Vec3 {
	target := mps[i]
	var acc mgl32.Vec3

	for j := range mps {
		if j == i {
			continue
		}
		sep := target.Position.Sub(mps[j].Position)
		if !inRange(sep.Len()) {
			continue
		}
		if a, ok := m.Law.contribution(sep, AmbientRepulsion(target.Position, es)); ok {
			acc = acc.Add(a)
		}
	}

	return acc.Add(m.attractionFromE(target, es))
}

func (m Model) attractionFromE(target particle.MPParticle, es []particle.EParticle) mgl32.Vec3 {
	var acc mgl32.Vec3
	numer := target.AttractionStrength * AttractionScale
	for j := range es {
		if a, ok := m.Law.contribution(es[j].Position.Sub(target.Position), numer); ok {
			acc = acc.Add(a)
		}
	}
	return acc
}

// AmbientRepulsion returns Σ InheritedScale / d² over every E particle at
// least Epsilon away from pos. E particles at a non-finite distance are
// skipped.
func AmbientRepulsion(pos mgl32.Vec3, es []particle.EParticle) float32 {
	var sum float32
	for j := range es {
		d := particle.Distance(pos, es[j].Position)
		if !inRange(d) {
			continue
		}
		sum += InheritedScale / (d * d)
	}
	return sum
}

// AmbientField fills dst with the ambient repulsion of every MP particle and
// returns it, growing dst when needed.
func AmbientField(dst []float32, es []particle.EParticle, mps []particle.MPParticle) []float32 {
	if cap(dst) < len(mps) {
		dst = make([]float32, len(mps))
	}
	dst = dst[:len(mps)]
	for i := range mps {
		dst[i] = AmbientRepulsion(mps[i].Position, es)
	}
	return dst
}
