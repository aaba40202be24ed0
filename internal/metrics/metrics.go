package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/spheresim/internal/sim"
)

// Metric accumulates a single number over a run.
type Metric interface {
	Name() string
	Observe(f *sim.Frame, stats sim.StepStats)
	Value() float64
	Reset()
}

// AvgSpeed is the time average of the per-frame mean speed of a species.
type AvgSpeed struct {
	species Species
	total   float64
	samples int
}

func NewAvgSpeed(s Species) *AvgSpeed { return &AvgSpeed{species: s} }

func (m *AvgSpeed) Name() string { return "mean_speed_" + string(m.species) }

func (m *AvgSpeed) Observe(f *sim.Frame, _ sim.StepStats) {
	m.total += MeanSpeed(velocities(f, m.species))
	m.samples++
}

func (m *AvgSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *AvgSpeed) Reset() { m.total, m.samples = 0, 0 }

// FinalSpread reports the spread of a species at the last observed frame.
type FinalSpread struct {
	species Species
	last    float64
}

func NewFinalSpread(s Species) *FinalSpread { return &FinalSpread{species: s} }

func (m *FinalSpread) Name() string { return "spread_" + string(m.species) }

func (m *FinalSpread) Observe(f *sim.Frame, _ sim.StepStats) {
	m.last = Spread(positions(f, m.species))
}

func (m *FinalSpread) Value() float64 { return m.last }
func (m *FinalSpread) Reset()         { m.last = 0 }

// ClampRate is the number of bounds clamps per observed frame.
type ClampRate struct {
	clamps  int
	samples int
}

func NewClampRate() *ClampRate { return &ClampRate{} }

func (m *ClampRate) Name() string { return "clamp_rate" }

func (m *ClampRate) Observe(_ *sim.Frame, stats sim.StepStats) {
	m.clamps += stats.Clamped
	m.samples++
}

func (m *ClampRate) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.clamps) / float64(m.samples)
}

func (m *ClampRate) Reset() { m.clamps, m.samples = 0, 0 }

// MinNearestMP is the closest any two MPs came during the run, 0 if there
// were never two of them.
type MinNearestMP struct {
	min float64
}

func NewMinNearestMP() *MinNearestMP { return &MinNearestMP{min: math.Inf(1)} }

func (m *MinNearestMP) Name() string { return "nearest_mp" }

func (m *MinNearestMP) Observe(f *sim.Frame, _ sim.StepStats) {
	m.min = math.Min(m.min, NearestPair(positions(f, SpeciesMP)))
}

func (m *MinNearestMP) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinNearestMP) Reset() { m.min = math.Inf(1) }

// Set fans a simulator's steps out to several metrics.
type Set []Metric

func (s Set) OnStep(f *sim.Frame, stats sim.StepStats) {
	for _, m := range s {
		m.Observe(f, stats)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Default returns one of each metric.
func Default() Set {
	return Set{
		NewAvgSpeed(SpeciesE),
		NewAvgSpeed(SpeciesMP),
		NewFinalSpread(SpeciesE),
		NewFinalSpread(SpeciesMP),
		NewClampRate(),
		NewMinNearestMP(),
	}
}

// ByName builds a single metric from its Name.
func ByName(name string) (Metric, error) {
	for _, m := range Default() {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown metric: %s", name)
}

func Names() []string {
	d := Default()
	out := make([]string, len(d))
	for i, m := range d {
		out[i] = m.Name()
	}
	return out
}
