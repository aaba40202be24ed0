// Package physics implements the pairwise force model and the bounds clamp.
//
// Every interaction uses an inverse-square magnitude and skips pairs closer
// than [Epsilon]:
//
//   - E↔E: repulsion(target) * 2 / d², away from the other E particle
//   - MP→E: attraction(mp) * 200 / d², toward the MP particle
//   - MP↔MP: ambient(target) / d², away from the other MP particle
//   - E→MP: attraction(target) * 200 / d², toward the E particle
//
// The MP↔MP magnitude is "inherited" from the E population: ambient(target)
// is Σ 1000 / d_E² over every E particle. It depends only on the target's
// position, so [AmbientRepulsion] computes it once per MP particle per frame
// and [Model.AccelerationOnMP] reuses it for every MP pair.
//
// # Force laws
//
// [InverseSquare] scales the unit separation vector by the magnitude.
// [Legacy] scales the raw separation vector instead, which yields a 1/d
// falloff in practice:
//
//	m := physics.Model{Law: physics.InverseSquare}
//	acc := m.AccelerationOnE(i, es, mps)
package physics
