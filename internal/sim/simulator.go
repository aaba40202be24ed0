package sim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/integrators"
	"github.com/san-kum/spheresim/internal/particle"
	"github.com/san-kum/spheresim/internal/physics"
)

// minChunk is the smallest slice of particles handed to a snapshot worker.
const minChunk = 32

type Simulator struct {
	cfg       Config
	pop       *Population
	model     physics.Model
	eInteg    integrators.Damped
	mpInteg   integrators.Damped
	pending   []Command
	observers []Observer

	frame int
	time  float64

	ambient []float32
	vecs    *VecPool
}

// New validates cfg and returns a simulator with a freshly reset population.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:       cfg,
		pop:       NewPopulation(cfg.Population, cfg.Seed),
		model:     physics.NewModel(cfg.Law),
		eInteg:    integrators.E,
		mpInteg:   integrators.MP,
		observers: make([]Observer, 0),
		vecs:      NewVecPool(),
	}
	s.pop.Reset()
	return s, nil
}

func (s *Simulator) Config() Config          { return s.cfg }
func (s *Simulator) Population() *Population { return s.pop }
func (s *Simulator) Counts() Counts          { return s.pop.Counts() }
func (s *Simulator) FrameNumber() int        { return s.frame }
func (s *Simulator) Time() float64           { return s.time }

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Enqueue schedules population commands for the start of the next Step.
func (s *Simulator) Enqueue(cmds ...Command) {
	s.pending = append(s.pending, cmds...)
}

// Pending returns the number of queued commands.
func (s *Simulator) Pending() int { return len(s.pending) }

// Step applies queued commands and advances the simulation by dt seconds.
// A non-positive dt only applies the commands. A command that fails does
// not stop the ones queued after it; the failures are joined and the frame
// is not advanced.
func (s *Simulator) Step(dt float32) (StepStats, error) {
	stats := StepStats{Frame: s.frame}

	if err := s.drain(&stats); err != nil {
		return stats, err
	}

	if dt <= 0 {
		stats.Skipped = true
		return stats, nil
	}

	switch s.cfg.Mode {
	case Snapshot:
		s.stepSnapshot(dt, &stats)
	default:
		s.stepSequential(dt, &stats)
	}

	s.frame++
	s.time += float64(dt)
	stats.Frame = s.frame

	if len(s.observers) > 0 {
		f := s.Snapshot()
		for _, o := range s.observers {
			o.OnStep(&f, stats)
		}
	}

	return stats, nil
}

func (s *Simulator) drain(stats *StepStats) error {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = s.pending[:0]
	var errs []error
	for _, cmd := range cmds {
		n, err := s.pop.Apply(cmd)
		if err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", cmd, err))
			continue
		}
		stats.Applied++
		stats.Changed += n
	}
	return errors.Join(errs...)
}

func (s *Simulator) stepSequential(dt float32, stats *StepStats) {
	es, mps := s.pop.es, s.pop.mps

	for i := range es {
		acc := s.model.AccelerationOnE(i, es, mps)
		s.advanceE(&es[i], acc, dt, stats)
	}

	// Each MP's ambient repulsion depends on its own position and the E
	// positions, neither of which changes before its turn in the pass.
	s.ambient = physics.AmbientField(s.ambient, es, mps)
	for i := range mps {
		acc := s.model.AccelerationOnMP(i, s.ambient[i], es, mps)
		s.advanceMP(&mps[i], acc, dt, stats)
	}
}

func (s *Simulator) stepSnapshot(dt float32, stats *StepStats) {
	es0 := slices.Clone(s.pop.es)
	mps0 := slices.Clone(s.pop.mps)

	accE := s.vecs.Get(len(es0))
	accMP := s.vecs.Get(len(mps0))
	defer s.vecs.Put(accE)
	defer s.vecs.Put(accMP)

	ParallelFor(len(es0), minChunk, s.cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			accE[i] = s.model.AccelerationOnE(i, es0, mps0)
		}
	})

	s.ambient = physics.AmbientField(s.ambient, es0, mps0)
	ParallelFor(len(mps0), minChunk, s.cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			accMP[i] = s.model.AccelerationOnMP(i, s.ambient[i], es0, mps0)
		}
	})

	for i := range s.pop.es {
		s.advanceE(&s.pop.es[i], accE[i], dt, stats)
	}
	for i := range s.pop.mps {
		s.advanceMP(&s.pop.mps[i], accMP[i], dt, stats)
	}
}

func (s *Simulator) advanceE(e *particle.EParticle, acc mgl32.Vec3, dt float32, stats *StepStats) {
	pos, vel := s.eInteg.Step(e.Position, e.Velocity, acc, dt)
	e.Position, e.Velocity = s.settle(e.Position, pos, vel, stats)
}

func (s *Simulator) advanceMP(mp *particle.MPParticle, acc mgl32.Vec3, dt float32, stats *StepStats) {
	pos, vel := s.mpInteg.Step(mp.Position, mp.Velocity, acc, dt)
	mp.Position, mp.Velocity = s.settle(mp.Position, pos, vel, stats)
}

// settle applies the non-finite guard and the bounds clamp. A particle
// whose previous position is itself non-finite is reset to the origin.
func (s *Simulator) settle(prev, pos, vel mgl32.Vec3, stats *StepStats) (mgl32.Vec3, mgl32.Vec3) {
	if s.cfg.GuardNonFinite && (!particle.IsFinite(pos) || !particle.IsFinite(vel)) {
		stats.Rejected++
		if !particle.IsFinite(prev) {
			prev = mgl32.Vec3{}
		}
		pos, vel = prev, mgl32.Vec3{}
	}
	pos, clamped := physics.Enforce(pos, s.cfg.Bounds)
	if clamped {
		stats.Clamped++
	}
	return pos, vel
}

// Snapshot copies the current population for renderers and observers.
func (s *Simulator) Snapshot() Frame {
	f := Frame{
		Number: s.frame,
		Time:   s.time,
		E:      make([]Body, len(s.pop.es)),
		MP:     make([]MPBody, len(s.pop.mps)),
		Counts: s.pop.Counts(),
	}
	for i, e := range s.pop.es {
		f.E[i] = Body{Position: e.Position, Velocity: e.Velocity}
	}
	for i, mp := range s.pop.mps {
		f.MP[i] = MPBody{Position: mp.Position, Velocity: mp.Velocity, Size: mp.Size}
	}
	return f
}

// Reset clears queued commands, rewinds the clock and respawns the
// initial population.
func (s *Simulator) Reset() {
	s.pending = s.pending[:0]
	s.frame = 0
	s.time = 0
	s.pop.Reset()
}
