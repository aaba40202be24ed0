package particle

import "github.com/go-gl/mathgl/mgl32"

const (
	// DefaultESize is the render radius of an E particle.
	DefaultESize float32 = 0.1
	// DefaultMPSize is the render size of an MP particle.
	DefaultMPSize float32 = 1.5
)

type EParticle struct {
	Position          mgl32.Vec3
	Velocity          mgl32.Vec3
	RepulsionStrength float32
}

// NewE returns an E particle at rest.
func NewE(pos mgl32.Vec3, repulsion float32) EParticle {
	return EParticle{Position: pos, RepulsionStrength: repulsion}
}

type MPParticle struct {
	Position           mgl32.Vec3
	Velocity           mgl32.Vec3
	AttractionStrength float32
	Size               float32

	// ExternalForce accumulates forces added through ApplyForce. The force
	// pass does not consume it.
	ExternalForce mgl32.Vec3
}

// NewMP returns an MP particle at rest.
func NewMP(pos mgl32.Vec3, attraction, size float32) MPParticle {
	return MPParticle{Position: pos, AttractionStrength: attraction, Size: size}
}

// ApplyForce adds f to the external force accumulator.
func (p *MPParticle) ApplyForce(f mgl32.Vec3) {
	p.ExternalForce = p.ExternalForce.Add(f)
}

func (p *MPParticle) UpdateSize(size float32) { p.Size = size }
