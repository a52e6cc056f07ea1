package signal

import (
	"math"
	"math/rand"
	"time"

	"crypto-idx-bot/internal/domain"
)

const (
	rsiWeight       = 0.3
	macdWeight      = 0.4
	bollingerWeight = 0.3

	rsiOversold   = 30.0
	rsiOverbought = 70.0
	bbUpperZone   = 0.8
	bbLowerZone   = 0.2

	confidenceFloor  = 50.0
	confidenceCeil   = 95.0
	confidenceJitter = 5.0

	durationShort  = 5
	durationMedium = 10
	durationLong   = 15

	// Neutral stand-ins when an indicator lacks history; each maps to a zero
	// sub-signal so scoring never fails on short input.
	neutralRSI       = 50.0
	neutralBollinger = 0.5
)

// Engine turns a price series into a directional signal with confidence and a
// duration recommendation. Clock and confidence jitter are injectable so
// tests can pin exact outputs.
type Engine struct {
	now    func() time.Time
	jitter func() float64
}

func NewEngine(now func() time.Time, jitter func() float64) *Engine {
	if now == nil {
		now = time.Now
	}
	if jitter == nil {
		jitter = defaultJitter
	}
	return &Engine{now: now, jitter: jitter}
}

func defaultJitter() float64 {
	return -confidenceJitter + rand.Float64()*2*confidenceJitter
}

// Generate scores the series and emits an immutable signal record.
func (e *Engine) Generate(prices []float64) domain.Signal {
	ind := computeIndicators(prices)
	volatility := Volatility(prices, volatilityPeriod)
	strength := Strength(ind)

	direction := domain.DirectionDown
	if strength > 0 {
		direction = domain.DirectionUp
	}

	// Duration uses the jittered, clamped confidence before display rounding.
	confidence := math.Min(math.Abs(strength)*20+60, confidenceCeil)
	confidence = clamp(confidence+e.jitter(), confidenceFloor, confidenceCeil)
	duration := SelectDuration(volatility, math.Abs(strength), confidence)

	return domain.Signal{
		Direction:   direction,
		Confidence:  round1(confidence),
		Duration:    duration,
		Volatility:  volatility,
		Indicators:  ind,
		GeneratedAt: e.now(),
	}
}

func computeIndicators(prices []float64) domain.IndicatorSet {
	ind := domain.IndicatorSet{
		RSI:               neutralRSI,
		BollingerPosition: neutralBollinger,
	}
	if rsi, ok := RSI(prices, rsiPeriod); ok {
		ind.RSI = rsi
	}
	if macd, ok := MACD(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod); ok {
		ind.MACD = macd
	}
	if pos, ok := BollingerPosition(prices, bollingerPeriod, bollingerStdDevs); ok {
		ind.BollingerPosition = pos
	}
	return ind
}

// Strength combines the three sub-signals into a weighted score in [-1,1].
func Strength(ind domain.IndicatorSet) float64 {
	return rsiWeight*rsiSubSignal(ind.RSI) +
		macdWeight*macdSubSignal(ind.MACD.Histogram) +
		bollingerWeight*bollingerSubSignal(ind.BollingerPosition)
}

func rsiSubSignal(rsi float64) float64 {
	switch {
	case rsi < rsiOversold:
		return 1
	case rsi > rsiOverbought:
		return -1
	default:
		return 0
	}
}

func macdSubSignal(histogram float64) float64 {
	switch {
	case histogram > 0:
		return 1
	case histogram < 0:
		return -1
	default:
		return 0
	}
}

func bollingerSubSignal(position float64) float64 {
	switch {
	case position > bbUpperZone:
		return -1
	case position < bbLowerZone:
		return 1
	default:
		return 0
	}
}

// SelectDuration maps market conditions onto one of the fixed expiry windows.
// Calm, strong, confident conditions earn the longest hold.
func SelectDuration(volatility, strength, confidence float64) int {
	score := (1-volatility)*0.4 + math.Min(strength, 1)*0.3 + confidence/100*0.3
	switch {
	case score < 0.4:
		return durationShort
	case score < 0.7:
		return durationMedium
	default:
		return durationLong
	}
}
