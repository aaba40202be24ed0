package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/sim"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-5 }

func TestMeanSpeed(t *testing.T) {
	tests := []struct {
		name string
		vs   []mgl32.Vec3
		want float64
	}{
		{"empty", nil, 0},
		{"single", []mgl32.Vec3{{3, 4, 0}}, 5},
		{"pair", []mgl32.Vec3{{1, 0, 0}, {0, 0, 3}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeanSpeed(tt.vs); !approx(got, tt.want) {
				t.Errorf("MeanSpeed = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSpread(t *testing.T) {
	ps := []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}}
	if got := Spread(ps); !approx(got, 1) {
		t.Errorf("Spread = %f, want 1", got)
	}
	if c := Centroid(ps); c != (mgl32.Vec3{}) {
		t.Errorf("Centroid = %v", c)
	}
	if Spread(nil) != 0 {
		t.Error("empty spread should be 0")
	}
}

func TestNearestPair(t *testing.T) {
	ps := []mgl32.Vec3{{0, 0, 0}, {10, 0, 0}, {0, 2, 0}}
	if got := NearestPair(ps); !approx(got, 2) {
		t.Errorf("NearestPair = %f, want 2", got)
	}
	if !math.IsInf(NearestPair(ps[:1]), 1) {
		t.Error("single point should give +Inf")
	}
}

func frameWith(e []sim.Body, mp []sim.MPBody) *sim.Frame {
	return &sim.Frame{E: e, MP: mp}
}

func TestMeasure(t *testing.T) {
	f := frameWith(
		[]sim.Body{{Velocity: mgl32.Vec3{2, 0, 0}}},
		[]sim.MPBody{{Position: mgl32.Vec3{0, 0, 0}}, {Position: mgl32.Vec3{3, 0, 0}}},
	)
	f.Number = 7
	s := Measure(f, sim.StepStats{Clamped: 2})

	if s.Frame != 7 || s.E != 1 || s.MP != 2 {
		t.Errorf("unexpected sample header: %+v", s)
	}
	if !approx(s.MeanSpeedE, 2) || !approx(s.NearestMP, 3) || !approx(s.SpreadMP, 1.5) {
		t.Errorf("unexpected sample values: %+v", s)
	}
	if got := len(s.Values()); got != len(Columns()) {
		t.Errorf("values len %d, columns len %d", got, len(Columns()))
	}
}

func TestSampleValuesNoInf(t *testing.T) {
	s := Measure(frameWith(nil, nil), sim.StepStats{})
	for i, v := range s.Values() {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("column %s not finite: %f", Columns()[i], v)
		}
	}
}

func TestAccumulators(t *testing.T) {
	slow := frameWith([]sim.Body{{Velocity: mgl32.Vec3{1, 0, 0}}}, nil)
	fast := frameWith([]sim.Body{{Velocity: mgl32.Vec3{3, 0, 0}}}, nil)

	avg := NewAvgSpeed(SpeciesE)
	avg.Observe(slow, sim.StepStats{})
	avg.Observe(fast, sim.StepStats{})
	if !approx(avg.Value(), 2) {
		t.Errorf("avg speed = %f, want 2", avg.Value())
	}

	rate := NewClampRate()
	rate.Observe(slow, sim.StepStats{Clamped: 3})
	rate.Observe(slow, sim.StepStats{Clamped: 1})
	if rate.Value() != 2 {
		t.Errorf("clamp rate = %f, want 2", rate.Value())
	}

	near := NewMinNearestMP()
	if near.Value() != 0 {
		t.Errorf("nearest with no observations = %f", near.Value())
	}
	near.Observe(frameWith(nil, []sim.MPBody{{}, {Position: mgl32.Vec3{0, 4, 0}}}), sim.StepStats{})
	near.Observe(frameWith(nil, []sim.MPBody{{}, {Position: mgl32.Vec3{0, 1, 0}}}), sim.StepStats{})
	near.Observe(frameWith(nil, []sim.MPBody{{}, {Position: mgl32.Vec3{0, 9, 0}}}), sim.StepStats{})
	if !approx(near.Value(), 1) {
		t.Errorf("nearest = %f, want 1", near.Value())
	}
}

func TestReset(t *testing.T) {
	set := Default()
	f := frameWith([]sim.Body{{Position: mgl32.Vec3{1, 0, 0}, Velocity: mgl32.Vec3{1, 0, 0}}, {}}, nil)
	set.OnStep(f, sim.StepStats{Clamped: 1})
	set.Reset()

	for name, v := range set.Values() {
		if v != 0 {
			t.Errorf("%s = %f after reset", name, v)
		}
	}
}

func TestSetObservesSimulator(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Seed = 3
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	set := Default()
	s.AddObserver(set)

	for i := 0; i < 10; i++ {
		if _, err := s.Step(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}

	vals := set.Values()
	if vals["mean_speed_e"] <= 0 {
		t.Errorf("expected E to move, got %f", vals["mean_speed_e"])
	}
	if vals["nearest_mp"] <= 0 {
		t.Errorf("expected two MPs apart, got %f", vals["nearest_mp"])
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		m, err := ByName(name)
		if err != nil || m.Name() != name {
			t.Errorf("ByName(%s) = %v, %v", name, m, err)
		}
	}
	if _, err := ByName("energy"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
