package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/integrators"
	"github.com/san-kum/spheresim/internal/particle"
	"github.com/san-kum/spheresim/internal/physics"
)

func emptyConfig() Config {
	cfg := DefaultConfig()
	cfg.Population.InitialE = 0
	cfg.Population.InitialMP = 0
	cfg.Seed = 42
	return cfg
}

func newEmpty(t *testing.T) *Simulator {
	t.Helper()
	s, err := New(emptyConfig())
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	return s
}

func TestNewResetsPopulation(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}

	c := s.Counts()
	if c.E != 10 || c.MP != 2 {
		t.Errorf("counts = %+v, want 10 E and 2 MP", c)
	}
	if c.MaxE != 1000 || c.MaxMP != 100 {
		t.Errorf("caps = %d/%d, want 1000/100", c.MaxE, c.MaxMP)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero bounds", func(c *Config) { c.Bounds = 0 }},
		{"negative cap", func(c *Config) { c.Population.MaxE = -1 }},
		{"initial above cap", func(c *Config) { c.Population.InitialMP = 101 }},
		{"zero mp size", func(c *Config) { c.Population.MPSize = 0 }},
		{"snapshot without workers", func(c *Config) { c.Mode = Snapshot; c.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestStepEmptyIsNoop(t *testing.T) {
	for _, mode := range []Mode{Sequential, Snapshot} {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := emptyConfig()
			cfg.Mode = mode
			s, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}

			stats, err := s.Step(1.0 / 60)
			if err != nil {
				t.Fatalf("step: %v", err)
			}
			if stats.Clamped != 0 || stats.Rejected != 0 || stats.Changed != 0 {
				t.Errorf("unexpected stats %+v", stats)
			}
			f := s.Snapshot()
			if len(f.E) != 0 || len(f.MP) != 0 {
				t.Errorf("expected empty frame, got %d E %d MP", len(f.E), len(f.MP))
			}
		})
	}
}

func TestStepNonPositiveDt(t *testing.T) {
	s := newEmpty(t)
	s.pop.InsertE(particle.EParticle{Position: mgl32.Vec3{1, 2, 3}, Velocity: mgl32.Vec3{1, 0, 0}, RepulsionStrength: 5})

	for _, dt := range []float32{0, -0.5} {
		stats, err := s.Step(dt)
		if err != nil {
			t.Fatal(err)
		}
		if !stats.Skipped {
			t.Errorf("dt=%v: expected skipped step", dt)
		}
	}

	e := s.pop.E(0)
	if e.Position != (mgl32.Vec3{1, 2, 3}) || e.Velocity != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("state changed on degenerate dt: %+v", e)
	}
	if s.FrameNumber() != 0 {
		t.Errorf("frame advanced to %d", s.FrameNumber())
	}
}

func TestVelocityDamping(t *testing.T) {
	s := newEmpty(t)
	s.pop.InsertE(particle.EParticle{Velocity: mgl32.Vec3{0, 6, 8}, RepulsionStrength: 5})
	s.pop.InsertMP(particle.MPParticle{Position: mgl32.Vec3{500, 0, 0}, Velocity: mgl32.Vec3{2, 0, 0}, Size: 1.5})

	const k = 20
	for i := 0; i < k; i++ {
		if _, err := s.Step(0.01); err != nil {
			t.Fatal(err)
		}
	}

	want := 10 * math.Pow(0.99, k)
	if got := float64(s.pop.E(0).Velocity.Len()); math.Abs(got-want) > 1e-3 {
		t.Errorf("E |v| = %v, want %v", got, want)
	}

	wantMP := 2 * math.Pow(0.99, k)
	if got := float64(s.pop.MP(0).Velocity.Len()); math.Abs(got-wantMP) > 1e-3 {
		t.Errorf("MP |v| = %v, want %v", got, wantMP)
	}
}

func TestBoundsClampEveryAxis(t *testing.T) {
	s := newEmpty(t)
	s.pop.InsertE(particle.NewE(mgl32.Vec3{2500, -3000, 10}, 5))
	s.pop.InsertMP(particle.NewMP(mgl32.Vec3{-10, 4000, -2001}, 0, 1.5))

	stats, err := s.Step(0.016)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Clamped != 2 {
		t.Errorf("clamped = %d, want 2", stats.Clamped)
	}

	e := s.pop.E(0).Position
	if e[0] != 2000 || e[1] != -2000 {
		t.Errorf("E position = %v", e)
	}
	mp := s.pop.MP(0).Position
	if mp[1] != 2000 || mp[2] != -2000 {
		t.Errorf("MP position = %v", mp)
	}
	for _, p := range []mgl32.Vec3{e, mp} {
		for axis, c := range p {
			if c < -2000 || c > 2000 {
				t.Errorf("axis %d out of bounds: %v", axis, c)
			}
		}
	}
}

func TestSequentialUpdateOrder(t *testing.T) {
	s := newEmpty(t)
	a := particle.NewE(mgl32.Vec3{0, 0, 0}, 5)
	b := particle.NewE(mgl32.Vec3{1, 0, 0}, 5)
	mp := particle.NewMP(mgl32.Vec3{0, 3, 0}, 3, 1.5)
	s.pop.InsertE(a)
	s.pop.InsertE(b)
	s.pop.InsertMP(mp)

	dt := float32(0.05)
	if _, err := s.Step(dt); err != nil {
		t.Fatal(err)
	}

	// replay by hand: b must see a's updated position
	m := physics.NewModel(physics.InverseSquare)
	es := []particle.EParticle{a, b}
	mps := []particle.MPParticle{mp}

	acc := m.AccelerationOnE(0, es, mps)
	es[0].Position, es[0].Velocity = integrators.E.Step(es[0].Position, es[0].Velocity, acc, dt)
	acc = m.AccelerationOnE(1, es, mps)
	es[1].Position, es[1].Velocity = integrators.E.Step(es[1].Position, es[1].Velocity, acc, dt)
	acc = m.AccelerationOnMP(0, physics.AmbientRepulsion(mps[0].Position, es), es, mps)
	mps[0].Position, _ = integrators.MP.Step(mps[0].Position, mps[0].Velocity, acc, dt)

	if got := s.pop.E(1).Position; !got.ApproxEqualThreshold(es[1].Position, 1e-5) {
		t.Errorf("E1 = %v, want %v", got, es[1].Position)
	}
	if got := s.pop.MP(0).Position; !got.ApproxEqualThreshold(mps[0].Position, 1e-5) {
		t.Errorf("MP = %v, want %v", got, mps[0].Position)
	}
}

func snapshotRun(t *testing.T, workers int) Frame {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 9
	cfg.Mode = Snapshot
	cfg.Workers = workers
	cfg.Population.InitialE = 200
	cfg.Population.InitialMP = 40
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.Step(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}
	return s.Snapshot()
}

func TestSnapshotModeIndependentOfWorkers(t *testing.T) {
	one := snapshotRun(t, 1)
	many := snapshotRun(t, 8)

	for i := range one.E {
		if one.E[i] != many.E[i] {
			t.Fatalf("E %d differs: %v vs %v", i, one.E[i], many.E[i])
		}
	}
	for i := range one.MP {
		if one.MP[i] != many.MP[i] {
			t.Fatalf("MP %d differs: %v vs %v", i, one.MP[i], many.MP[i])
		}
	}
}

func TestNonFiniteGuard(t *testing.T) {
	inf := float32(math.Inf(1))

	s := newEmpty(t)
	s.pop.InsertE(particle.EParticle{Position: mgl32.Vec3{1, 1, 1}, Velocity: mgl32.Vec3{inf, 0, 0}})

	stats, err := s.Step(0.01)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", stats.Rejected)
	}
	e := s.pop.E(0)
	if e.Position != (mgl32.Vec3{1, 1, 1}) || e.Velocity != (mgl32.Vec3{}) {
		t.Errorf("guarded particle = %+v", e)
	}

	cfg := emptyConfig()
	cfg.GuardNonFinite = false
	unguarded, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	unguarded.pop.InsertE(particle.EParticle{Velocity: mgl32.Vec3{inf, 0, 0}})
	if _, err := unguarded.Step(0.01); err != nil {
		t.Fatal(err)
	}
	f := unguarded.Snapshot()
	if f.IsFinite() {
		t.Error("expected non-finite frame without guard")
	}
	if f.E[0].Position[0] != 2000 {
		t.Errorf("position should still clamp, got %v", f.E[0].Position)
	}
}

func TestNonFiniteParticleDoesNotSpread(t *testing.T) {
	nan := float32(math.NaN())

	s := newEmpty(t)
	if s.pop.InsertE(particle.NewE(mgl32.Vec3{nan, 0, 0}, 5)) {
		t.Error("InsertE accepted a NaN position")
	}
	if s.pop.InsertMP(particle.NewMP(mgl32.Vec3{0, 0, float32(math.Inf(-1))}, 3, 1.5)) {
		t.Error("InsertMP accepted an Inf position")
	}

	s.pop.InsertE(particle.NewE(mgl32.Vec3{10, 0, 0}, 5))
	s.pop.InsertE(particle.NewE(mgl32.Vec3{-10, 0, 0}, 5))
	s.pop.es = append(s.pop.es, particle.NewE(mgl32.Vec3{nan, nan, nan}, 5))

	stats, err := s.Step(0.1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Clamped != 0 {
		t.Errorf("clamped = %d, want 0", stats.Clamped)
	}
	if f := s.Snapshot(); !f.IsFinite() {
		t.Fatal("frame is not finite after guarded step")
	}
	if got := s.pop.E(0).Position; got[0] <= 10 {
		t.Errorf("finite E did not move away from its neighbour: %v", got)
	}
	if got := s.pop.E(2).Position; got != (mgl32.Vec3{}) {
		t.Errorf("NaN E = %v, want reset to origin", got)
	}
}

func TestEnqueueAppliesBetweenFrames(t *testing.T) {
	s := newEmpty(t)
	s.pop.AddERandomN(995)

	for i := 0; i < 10; i++ {
		s.Enqueue(Command{Kind: AddE})
	}
	if s.Counts().E != 995 {
		t.Fatalf("commands applied before step")
	}

	stats, err := s.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Counts().E; got != 1000 {
		t.Errorf("E count = %d, want 1000", got)
	}
	if stats.Applied != 10 || stats.Changed != 5 {
		t.Errorf("stats = %+v, want 10 applied, 5 changed", stats)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after step", s.Pending())
	}
}

func TestEnqueueUnknownCommand(t *testing.T) {
	s := newEmpty(t)
	s.Enqueue(Command{Kind: CommandKind(99)})

	_, err := s.Step(0.01)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestFailedCommandKeepsLaterCommands(t *testing.T) {
	s := newEmpty(t)
	s.Enqueue(Command{Kind: CommandKind(99)}, Command{Kind: AddMP}, Command{Kind: AddE})

	stats, err := s.Step(0.01)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if c := s.Counts(); c.E != 1 || c.MP != 1 {
		t.Errorf("counts = %+v, want 1 E and 1 MP", c)
	}
	if stats.Applied != 2 || stats.Changed != 2 {
		t.Errorf("stats = %+v, want 2 applied, 2 changed", stats)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after step", s.Pending())
	}
	if s.FrameNumber() != 0 {
		t.Errorf("frame advanced to %d on failed drain", s.FrameNumber())
	}
}

type countingObserver struct {
	steps int
	last  int
}

func (c *countingObserver) OnStep(f *Frame, stats StepStats) {
	c.steps++
	c.last = f.Number
}

func TestObserversSeeAdvancedFrames(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	obs := &countingObserver{}
	s.AddObserver(obs)

	s.Step(0.01)
	s.Step(0)
	s.Step(0.01)

	if obs.steps != 2 || obs.last != 2 {
		t.Errorf("observer saw %d steps, last frame %d", obs.steps, obs.last)
	}
	if math.Abs(s.Time()-0.02) > 1e-6 {
		t.Errorf("time = %v, want 0.02", s.Time())
	}
}

func TestSimulatorReset(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s.Enqueue(Command{Kind: AddMP})
	s.Step(0.01)
	s.Enqueue(Command{Kind: RemoveE})

	s.Reset()

	if s.Pending() != 0 || s.FrameNumber() != 0 || s.Time() != 0 {
		t.Errorf("reset left pending=%d frame=%d time=%v", s.Pending(), s.FrameNumber(), s.Time())
	}
	if c := s.Counts(); c.E != 10 || c.MP != 2 {
		t.Errorf("counts after reset = %+v", c)
	}
}
