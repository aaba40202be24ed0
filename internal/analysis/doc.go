// Package analysis looks at recorded runs after the fact.
//
//   - [PowerSpectrum] and [DominantFrequency]: periodicity of a series,
//     e.g. the E spread oscillating as a cloud breathes around an MP
//   - [Divergence]: finite-time growth rate of a small perturbation,
//     a rough chaos indicator for a configuration
//   - [NewPhasePortrait]: one series plotted against another
package analysis
