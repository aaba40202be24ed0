package physics

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/particle"
)

func benchPopulation(ne, nmp int) ([]particle.EParticle, []particle.MPParticle) {
	rng := rand.New(rand.NewSource(1))
	pos := func() mgl32.Vec3 {
		return mgl32.Vec3{float32(rng.Float64()*40 - 20), float32(rng.Float64()*40 - 20), float32(rng.Float64()*40 - 20)}
	}
	es := make([]particle.EParticle, ne)
	for i := range es {
		es[i] = particle.NewE(pos(), 5)
	}
	mps := make([]particle.MPParticle, nmp)
	for i := range mps {
		mps[i] = particle.NewMP(pos(), 3, 1.5)
	}
	return es, mps
}

func BenchmarkMPPassNaive(b *testing.B) {
	m := NewModel(InverseSquare)
	es, mps := benchPopulation(1000, 100)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range mps {
			_ = m.AccelerationOnMPNaive(i, es, mps)
		}
	}
}

func BenchmarkMPPassCached(b *testing.B) {
	m := NewModel(InverseSquare)
	es, mps := benchPopulation(1000, 100)
	var field []float32

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		field = AmbientField(field, es, mps)
		for i := range mps {
			_ = m.AccelerationOnMP(i, field[i], es, mps)
		}
	}
}

func BenchmarkEPass(b *testing.B) {
	m := NewModel(InverseSquare)
	es, mps := benchPopulation(1000, 100)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range es {
			_ = m.AccelerationOnE(i, es, mps)
		}
	}
}
