package scan

import (
	"context"
	"fmt"
	"math"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
	"go.opentelemetry.io/otel/trace"

	"crypto-idx-bot/internal/domain"
)

const (
	// Width of each return window fed to the forest as one sample.
	returnWindow = 8
	// Fewer body windows than this and the forest has nothing to learn from.
	minBodyWindows = 16
)

type Options struct {
	Threshold  float64
	NumTrees   int
	SampleSize int
}

func DefaultOptions() Options {
	return Options{
		Threshold:  0.6,
		NumTrees:   100,
		SampleSize: 64,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = d.Threshold
	}
	if o.NumTrees <= 0 {
		o.NumTrees = d.NumTrees
	}
	if o.SampleSize <= 0 {
		o.SampleSize = d.SampleSize
	}
	return o
}

// Detector scores how unlike the rest of the walk the latest stretch of a
// price series looks. Each call fits a fresh isolation forest on the series
// body and scores the tail window, so no trained artifact persists between
// requests.
type Detector struct {
	tracer trace.Tracer
	opts   Options
}

func NewDetector(tracer trace.Tracer, opts Options) *Detector {
	return &Detector{tracer: tracer, opts: opts.normalized()}
}

func (d *Detector) Score(ctx context.Context, prices []float64) (domain.AnomalyReport, error) {
	_, span := d.tracer.Start(ctx, "scan.score")
	defer span.End()

	windows := returnWindows(prices, returnWindow)
	if len(windows) < minBodyWindows+1 {
		return domain.AnomalyReport{}, fmt.Errorf("series too short to scan: %d windows", len(windows))
	}

	body := windows[:len(windows)-1]
	latest := windows[len(windows)-1]

	means, stds := fitNormalizer(body)
	normalized := normalizeBatch(body, means, stds)

	sampleSize := d.opts.SampleSize
	if sampleSize > len(body) {
		sampleSize = len(body)
	}
	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     d.opts.Threshold,
		NumTrees:      d.opts.NumTrees,
		SampleSize:    sampleSize,
	})
	forest.Fit(normalized)

	scores := forest.Score([][]float64{normalize(latest, means, stds)})
	if len(scores) == 0 {
		return domain.AnomalyReport{}, fmt.Errorf("empty score batch")
	}

	score := clampScore(scores[0])
	return domain.AnomalyReport{Score: score, Anomalous: score >= d.opts.Threshold}, nil
}

// returnWindows slides a fixed-width window over the series' percentage
// returns, one vector per position.
func returnWindows(prices []float64, width int) [][]float64 {
	if len(prices) < 2 || width <= 0 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < width {
		return nil
	}
	windows := make([][]float64, 0, len(returns)-width+1)
	for i := 0; i+width <= len(returns); i++ {
		window := make([]float64, width)
		copy(window, returns[i:i+width])
		windows = append(windows, window)
	}
	return windows
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func fitNormalizer(samples [][]float64) ([]float64, []float64) {
	featureCount := len(samples[0])
	means := make([]float64, featureCount)
	stds := make([]float64, featureCount)
	for j := 0; j < featureCount; j++ {
		for i := range samples {
			means[j] += samples[i][j]
		}
		means[j] /= float64(len(samples))
		for i := range samples {
			d := samples[i][j] - means[j]
			stds[j] += d * d
		}
		stds[j] = math.Sqrt(stds[j] / float64(len(samples)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalizeBatch(samples [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i := range samples {
		out[i] = normalize(samples[i], means, stds)
	}
	return out
}

func normalize(in, means, stds []float64) []float64 {
	out := make([]float64, len(in))
	for i := range in {
		out[i] = (in[i] - means[i]) / stds[i]
	}
	return out
}
