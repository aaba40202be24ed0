package sim

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/particle"
)

// Population owns both particle collections. Every add and remove goes
// through it so the capacity caps hold at a single point.
type Population struct {
	cfg PopulationConfig
	rng *rand.Rand
	es  []particle.EParticle
	mps []particle.MPParticle
}

func NewPopulation(cfg PopulationConfig, seed int64) *Population {
	return &Population{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		es:  make([]particle.EParticle, 0, cfg.InitialE),
		mps: make([]particle.MPParticle, 0, cfg.InitialMP),
	}
}

func (p *Population) Config() PopulationConfig { return p.cfg }

func (p *Population) Counts() Counts {
	return Counts{E: len(p.es), MP: len(p.mps), MaxE: p.cfg.MaxE, MaxMP: p.cfg.MaxMP}
}

func (p *Population) LenE() int  { return len(p.es) }
func (p *Population) LenMP() int { return len(p.mps) }

// E returns a copy of the i-th E particle.
func (p *Population) E(i int) particle.EParticle { return p.es[i] }

// MP returns a copy of the i-th MP particle.
func (p *Population) MP(i int) particle.MPParticle { return p.mps[i] }

// ApplyForce adds f to the external force accumulator of the i-th MP particle.
func (p *Population) ApplyForce(i int, f mgl32.Vec3) {
	p.mps[i].ApplyForce(f)
}

// DisplaceE moves the i-th E particle by d without touching its velocity.
func (p *Population) DisplaceE(i int, d mgl32.Vec3) {
	p.es[i].Position = p.es[i].Position.Add(d)
}

func (p *Population) randomIn(extent float32) mgl32.Vec3 {
	span := float64(extent) * 2
	return mgl32.Vec3{
		float32(p.rng.Float64()*span - float64(extent)),
		float32(p.rng.Float64()*span - float64(extent)),
		float32(p.rng.Float64()*span - float64(extent)),
	}
}

// InsertE adds e unless the E collection is at capacity or e's position
// is non-finite.
func (p *Population) InsertE(e particle.EParticle) bool {
	if len(p.es) >= p.cfg.MaxE || !particle.IsFinite(e.Position) {
		return false
	}
	p.es = append(p.es, e)
	return true
}

// InsertMP adds mp unless the MP collection is at capacity or mp's
// position is non-finite.
func (p *Population) InsertMP(mp particle.MPParticle) bool {
	if len(p.mps) >= p.cfg.MaxMP || !particle.IsFinite(mp.Position) {
		return false
	}
	p.mps = append(p.mps, mp)
	return true
}

// SpawnERandom places an E particle uniformly in the spawn cube with the
// configured bulk repulsion strength.
func (p *Population) SpawnERandom() bool {
	if len(p.es) >= p.cfg.MaxE {
		return false
	}
	return p.InsertE(particle.NewE(p.randomIn(p.cfg.SpawnExtent), p.cfg.Repulsion))
}

// SpawnENearRandomMP is the request-driven add: the new E particle gets the
// request repulsion strength and sits next to a random MP particle, or in
// the fallback cube when there is none.
func (p *Population) SpawnENearRandomMP() bool {
	if len(p.es) >= p.cfg.MaxE {
		return false
	}

	var pos mgl32.Vec3
	if len(p.mps) > 0 {
		mp := p.mps[p.rng.Intn(len(p.mps))]
		pos = mp.Position.Add(p.randomIn(p.cfg.NearExtent))
	} else {
		pos = p.randomIn(p.cfg.FallbackExtent)
	}
	return p.InsertE(particle.NewE(pos, p.cfg.RequestRepulsion))
}

func (p *Population) SpawnMPRandom() bool {
	if len(p.mps) >= p.cfg.MaxMP {
		return false
	}
	return p.InsertMP(particle.NewMP(p.randomIn(p.cfg.SpawnExtent), p.cfg.Attraction, p.cfg.MPSize))
}

// RemoveRandomE removes a uniformly chosen E particle. Order of the
// remaining particles is preserved.
func (p *Population) RemoveRandomE() bool {
	if len(p.es) == 0 {
		return false
	}
	i := p.rng.Intn(len(p.es))
	p.es = append(p.es[:i], p.es[i+1:]...)
	return true
}

func (p *Population) RemoveRandomMP() bool {
	if len(p.mps) == 0 {
		return false
	}
	i := p.rng.Intn(len(p.mps))
	p.mps = append(p.mps[:i], p.mps[i+1:]...)
	return true
}

// AddERandomN bulk-spawns up to n E particles and returns how many fit.
func (p *Population) AddERandomN(n int) int {
	added := 0
	for i := 0; i < n && p.SpawnERandom(); i++ {
		added++
	}
	return added
}

// RemoveRandomEN removes up to n E particles and returns how many were removed.
func (p *Population) RemoveRandomEN(n int) int {
	removed := 0
	for i := 0; i < n && p.RemoveRandomE(); i++ {
		removed++
	}
	return removed
}

// Reset clears both collections and respawns the initial counts.
func (p *Population) Reset() {
	p.es = p.es[:0]
	p.mps = p.mps[:0]
	for i := 0; i < p.cfg.InitialE; i++ {
		p.SpawnERandom()
	}
	for i := 0; i < p.cfg.InitialMP; i++ {
		p.SpawnMPRandom()
	}
}
