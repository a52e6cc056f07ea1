package provider

import (
	"math/rand"
	"time"
)

const (
	defaultPoints = 100
	basePrice     = 100.0
	driftMin      = 0.1
	driftMax      = 0.3
	noiseStdDev   = 0.5
)

// Synthetic produces the random-walk price series the indicator engine
// analyzes. Each call reseeds, so consecutive requests never share a walk;
// the seed source is injectable so tests can pin the sequence.
type Synthetic struct {
	points int
	seed   func() int64
}

func NewSynthetic(points int, seed func() int64) *Synthetic {
	if points <= 0 {
		points = defaultPoints
	}
	if seed == nil {
		seed = func() int64 { return time.Now().UnixNano() }
	}
	return &Synthetic{points: points, seed: seed}
}

func (s *Synthetic) Points() int {
	return s.points
}

// Series returns a fresh price series: the base price offset by the running
// sum of a per-call drift term and independent Gaussian noise per step. The
// drift magnitude is uniform in [driftMin, driftMax] with a random sign.
func (s *Synthetic) Series() []float64 {
	rng := rand.New(rand.NewSource(s.seed()))

	drift := driftMin + rng.Float64()*(driftMax-driftMin)
	if rng.Intn(2) == 0 {
		drift = -drift
	}

	prices := make([]float64, s.points)
	sum := 0.0
	for i := range prices {
		sum += drift + rng.NormFloat64()*noiseStdDev
		prices[i] = basePrice + sum
	}
	return prices
}
