package signal

import (
	"math"

	"crypto-idx-bot/internal/domain"
)

const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bollingerPeriod  = 20
	bollingerStdDevs = 2.0
	volatilityPeriod = 20
	volatilityScale  = 50.0

	defaultVolatility  = 0.5
	fallbackVolatility = 0.02
)

// RSI computes the Relative Strength Index over simple rolling means of the
// trailing period's gains and losses. Reports false when fewer than period+1
// prices exist. A zero loss average yields 100, never a division error.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}

	var gainSum float64
	var lossSum float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	return rsiFromAvg(avgGain, avgLoss), true
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD returns the latest MACD line, signal line, and histogram. The EMAs are
// seeded from the first sample, so any non-empty series produces a value.
func MACD(prices []float64, fast, slow, signalPeriod int) (domain.MACD, bool) {
	if len(prices) == 0 {
		return domain.MACD{}, false
	}
	macdLine, signalLine := macdSeries(prices, fast, slow, signalPeriod)
	line := macdLine[len(macdLine)-1]
	sig := signalLine[len(signalLine)-1]
	return domain.MACD{Line: line, Signal: sig, Histogram: line - sig}, true
}

func macdSeries(values []float64, fast, slow, signalPeriod int) ([]float64, []float64) {
	fastEMA := emaSeries(values, fast)
	slowEMA := emaSeries(values, slow)
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, signalPeriod)
	return macdLine, signalLine
}

func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// BollingerPosition places the latest price within bands at mean ± k·stddev
// over the trailing period, clamped to [-1,1]. A zero-width band yields 0.
// Reports false when fewer than period prices exist.
func BollingerPosition(prices []float64, period int, k float64) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	mean, std := meanStd(prices[len(prices)-period:])
	upper := mean + k*std
	lower := mean - k*std
	if upper == lower {
		return 0, true
	}

	price := prices[len(prices)-1]
	position := (price - lower) / (upper - lower)
	return clamp(position, -1, 1), true
}

// Volatility is the rolling standard deviation of percentage returns over the
// trailing period, scaled and capped at 1. Series shorter than the period get
// the moderate default; an empty rolling window gets the small fallback.
func Volatility(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return defaultVolatility
	}

	returns := pctReturns(prices)
	vol := fallbackVolatility
	if len(returns) >= period {
		_, vol = meanStd(returns[len(returns)-period:])
	}

	scaled := math.Min(vol*volatilityScale, 1.0)
	return round3(scaled)
}

func pctReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) == 1 {
		return mean, 0
	}
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
