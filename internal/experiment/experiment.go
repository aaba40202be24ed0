package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/spheresim/internal/metrics"
	"github.com/san-kum/spheresim/internal/sim"
)

// Scheduled queues a command before the given frame is stepped.
type Scheduled struct {
	Frame   int
	Command sim.Command
}

type Config struct {
	Name        string
	Sim         sim.Config
	Dt          float64
	Frames      int
	SampleEvery int
	Schedule    []Scheduled
}

func (c Config) Validate() error {
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must be non-negative, got %d", sim.ErrInvalidConfig, c.Frames)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must be non-negative", sim.ErrInvalidConfig)
	}
	for _, s := range c.Schedule {
		if s.Frame < 0 {
			return fmt.Errorf("%w: scheduled %s at negative frame %d", sim.ErrInvalidConfig, s.Command, s.Frame)
		}
	}
	return c.Sim.Validate()
}

type Result struct {
	Samples  []metrics.Sample
	Final    sim.Frame
	Metrics  map[string]float64
	Frames   int
	Commands int
	Changed  int
	Clamped  int
	Rejected int
}

// Series returns one column of the samples by name.
func (r *Result) Series(column string) ([]float64, error) {
	idx := -1
	for i, c := range metrics.Columns() {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown column: %s", column)
	}
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Values()[idx]
	}
	return out, nil
}

type Experiment struct {
	cfg       Config
	simulator *sim.Simulator
	metrics   metrics.Set
	recorder  *recorder
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the simulator. The default metric set is always attached;
// extra metrics are added to it.
func (e *Experiment) Setup(extra ...metrics.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	s, err := sim.New(e.cfg.Sim)
	if err != nil {
		return err
	}

	every := e.cfg.SampleEvery
	if every == 0 {
		every = 1
	}
	e.simulator = s
	e.metrics = append(metrics.Default(), extra...)
	e.recorder = &recorder{every: every, checkFinite: !e.cfg.Sim.GuardNonFinite}
	s.AddObserver(e.metrics)
	s.AddObserver(e.recorder)
	return nil
}

// Run steps the simulator for the configured number of frames. On
// cancellation or a step error the partial result is returned with the
// error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, sim.ErrNotSetup
	}

	schedule := make([]Scheduled, len(e.cfg.Schedule))
	copy(schedule, e.cfg.Schedule)
	sort.SliceStable(schedule, func(i, j int) bool { return schedule[i].Frame < schedule[j].Frame })

	res := &Result{}
	dt := float32(e.cfg.Dt)
	next := 0

	for frame := 0; frame < e.cfg.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return e.finish(res), err
		}

		for next < len(schedule) && schedule[next].Frame == frame {
			e.simulator.Enqueue(schedule[next].Command)
			next++
		}

		stats, err := e.simulator.Step(dt)
		if err != nil {
			return e.finish(res), &sim.StepError{Frame: frame, Time: e.simulator.Time(), Wrapped: err}
		}
		res.Frames++
		res.Commands += stats.Applied
		res.Changed += stats.Changed
		res.Clamped += stats.Clamped
		res.Rejected += stats.Rejected

		if e.recorder.nonFinite {
			return e.finish(res), &sim.StepError{Frame: frame, Time: e.simulator.Time(), Wrapped: sim.ErrNonFinite}
		}
	}

	return e.finish(res), nil
}

func (e *Experiment) finish(res *Result) *Result {
	res.Samples = e.recorder.samples
	res.Final = e.simulator.Snapshot()
	res.Metrics = e.metrics.Values()
	return res
}

func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

type recorder struct {
	every       int
	checkFinite bool
	nonFinite   bool
	samples     []metrics.Sample
}

func (r *recorder) OnStep(f *sim.Frame, stats sim.StepStats) {
	if r.checkFinite && !f.IsFinite() {
		r.nonFinite = true
	}
	if f.Number%r.every == 0 {
		r.samples = append(r.samples, metrics.Measure(f, stats))
	}
}
