// Package particle defines the two particle records of the simulation.
//
// Both species share the same shape (position and velocity) but carry
// distinct physical parameters:
//
//   - [EParticle]: small, repulsive; repels other E particles and is pulled
//     toward MP particles.
//   - [MPParticle]: large, attractive; pulls E particles and is pushed away
//     from other MP particles by a repulsion inherited from the local E
//     density.
//
// The records are plain values. Behaviour lives in free functions in the
// physics and integrators packages so the per-frame loops stay free of
// dynamic dispatch.
//
// Vector math uses [mgl32.Vec3].
package particle
