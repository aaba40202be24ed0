package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/sim"
	"gonum.org/v1/gonum/floats"
)

type Species string

const (
	SpeciesE  Species = "e"
	SpeciesMP Species = "mp"
)

func ParseSpecies(name string) (Species, bool) {
	switch name {
	case "e", "E":
		return SpeciesE, true
	case "mp", "MP":
		return SpeciesMP, true
	}
	return "", false
}

func positions(f *sim.Frame, s Species) []mgl32.Vec3 {
	if s == SpeciesMP {
		out := make([]mgl32.Vec3, len(f.MP))
		for i, b := range f.MP {
			out[i] = b.Position
		}
		return out
	}
	out := make([]mgl32.Vec3, len(f.E))
	for i, b := range f.E {
		out[i] = b.Position
	}
	return out
}

func velocities(f *sim.Frame, s Species) []mgl32.Vec3 {
	if s == SpeciesMP {
		out := make([]mgl32.Vec3, len(f.MP))
		for i, b := range f.MP {
			out[i] = b.Velocity
		}
		return out
	}
	out := make([]mgl32.Vec3, len(f.E))
	for i, b := range f.E {
		out[i] = b.Velocity
	}
	return out
}

// MeanSpeed is the average velocity magnitude, 0 for an empty set.
func MeanSpeed(vs []mgl32.Vec3) float64 {
	if len(vs) == 0 {
		return 0
	}
	speeds := make([]float64, len(vs))
	for i, v := range vs {
		speeds[i] = float64(v.Len())
	}
	return floats.Sum(speeds) / float64(len(speeds))
}

func Centroid(ps []mgl32.Vec3) mgl32.Vec3 {
	if len(ps) == 0 {
		return mgl32.Vec3{}
	}
	xs, ys, zs := axes(ps)
	n := float64(len(ps))
	return mgl32.Vec3{
		float32(floats.Sum(xs) / n),
		float32(floats.Sum(ys) / n),
		float32(floats.Sum(zs) / n),
	}
}

// Spread is the RMS distance from the centroid.
func Spread(ps []mgl32.Vec3) float64 {
	if len(ps) == 0 {
		return 0
	}
	c := Centroid(ps)
	sq := make([]float64, len(ps))
	for i, p := range ps {
		d := p.Sub(c)
		sq[i] = float64(d.Dot(d))
	}
	return math.Sqrt(floats.Sum(sq) / float64(len(sq)))
}

// NearestPair is the smallest pairwise distance, +Inf with fewer than two
// points.
func NearestPair(ps []mgl32.Vec3) float64 {
	if len(ps) < 2 {
		return math.Inf(1)
	}
	dists := make([]float64, 0, len(ps)*(len(ps)-1)/2)
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			dists = append(dists, float64(ps[i].Sub(ps[j]).Len()))
		}
	}
	return floats.Min(dists)
}

func axes(ps []mgl32.Vec3) (xs, ys, zs []float64) {
	xs = make([]float64, len(ps))
	ys = make([]float64, len(ps))
	zs = make([]float64, len(ps))
	for i, p := range ps {
		xs[i], ys[i], zs[i] = float64(p[0]), float64(p[1]), float64(p[2])
	}
	return
}

// Sample is one row of a run's time series.
type Sample struct {
	Frame       int
	Time        float64
	E           int
	MP          int
	MeanSpeedE  float64
	MeanSpeedMP float64
	SpreadE     float64
	SpreadMP    float64
	NearestMP   float64
	Clamped     int
	Rejected    int
}

var columns = []string{
	"frame", "time", "e", "mp",
	"mean_speed_e", "mean_speed_mp",
	"spread_e", "spread_mp",
	"nearest_mp", "clamped", "rejected",
}

func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Values returns the sample in Columns order. An undefined nearest
// distance is written as 0.
func (s Sample) Values() []float64 {
	nearest := s.NearestMP
	if math.IsInf(nearest, 0) {
		nearest = 0
	}
	return []float64{
		float64(s.Frame), s.Time, float64(s.E), float64(s.MP),
		s.MeanSpeedE, s.MeanSpeedMP,
		s.SpreadE, s.SpreadMP,
		nearest, float64(s.Clamped), float64(s.Rejected),
	}
}

func Measure(f *sim.Frame, stats sim.StepStats) Sample {
	return Sample{
		Frame:       f.Number,
		Time:        f.Time,
		E:           len(f.E),
		MP:          len(f.MP),
		MeanSpeedE:  MeanSpeed(velocities(f, SpeciesE)),
		MeanSpeedMP: MeanSpeed(velocities(f, SpeciesMP)),
		SpreadE:     Spread(positions(f, SpeciesE)),
		SpreadMP:    Spread(positions(f, SpeciesMP)),
		NearestMP:   NearestPair(positions(f, SpeciesMP)),
		Clamped:     stats.Clamped,
		Rejected:    stats.Rejected,
	}
}
