package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/spheresim/internal/sim"
)

func TestFFTPadsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 1}, {1, 1}, {3, 4}, {8, 8}, {9, 16},
	}
	for _, tt := range tests {
		if got := len(FFT(make([]float64, tt.n))); got != tt.want {
			t.Errorf("len(FFT(%d)) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestFFTImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0})
	for i, c := range out {
		if math.Abs(real(c)-1) > 1e-12 || math.Abs(imag(c)) > 1e-12 {
			t.Errorf("bin %d = %v, want 1", i, c)
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	const freq = 5.0
	data := make([]float64, 256)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}

	got, power := DominantFrequency(data, dt)
	binWidth := 1 / (256 * dt)
	if math.Abs(got-freq) > binWidth {
		t.Errorf("dominant frequency = %f, want %f", got, freq)
	}
	if power <= 0 {
		t.Errorf("power = %f", power)
	}

	if f, p := DominantFrequency([]float64{1}, dt); f != 0 || p != 0 {
		t.Errorf("short series = %f, %f", f, p)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{4, 4, 4, 4})
	for i, v := range ps {
		if v > 1e-12 {
			t.Errorf("bin %d = %f for constant series", i, v)
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil for empty series")
	}
}

func TestDivergence(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Seed = 4

	lambda, err := Divergence(cfg, 1.0/60, 60, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		t.Errorf("divergence not finite: %f", lambda)
	}

	cfg.Population.InitialE = 0
	if lambda, _ := Divergence(cfg, 1.0/60, 10, 1e-3); lambda != 0 {
		t.Errorf("expected 0 without E particles, got %f", lambda)
	}

	cfg.Bounds = 0
	if _, err := Divergence(cfg, 1.0/60, 10, 1e-3); err == nil {
		t.Error("expected config error")
	}
}

func TestPhasePortrait(t *testing.T) {
	p := NewPhasePortrait("x", []float64{0, 1, 2}, "y", []float64{0, 1})
	if len(p.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(p.Points))
	}

	minX, maxX, _, _ := p.Bounds()
	if minX >= 0 || maxX <= 1 {
		t.Errorf("bounds not padded: %f..%f", minX, maxX)
	}

	art := p.ASCII(10, 5)
	if strings.Count(art, "\n") != 5 || !strings.Contains(art, "•") {
		t.Errorf("unexpected ascii:\n%s", art)
	}
	if (&PhasePortrait{}).ASCII(10, 5) != "" {
		t.Error("empty portrait should render nothing")
	}
}
