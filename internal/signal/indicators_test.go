package signal

import (
	"math"
	"testing"
)

func risingPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	return prices
}

func constantPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100
	}
	return prices
}

func TestRSIInsufficientHistory(t *testing.T) {
	if _, ok := RSI(risingPrices(rsiPeriod), rsiPeriod); ok {
		t.Fatal("expected no RSI for fewer than period+1 points")
	}
	if _, ok := RSI(risingPrices(rsiPeriod+1), rsiPeriod); !ok {
		t.Fatal("expected RSI at exactly period+1 points")
	}
}

func TestRSIAllGains(t *testing.T) {
	rsi, ok := RSI(risingPrices(30), rsiPeriod)
	if !ok {
		t.Fatal("expected RSI value")
	}
	if rsi != 100 {
		t.Fatalf("all-gain series should yield RSI 100, got %v", rsi)
	}
}

func TestRSIAllLosses(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	rsi, ok := RSI(prices, rsiPeriod)
	if !ok {
		t.Fatal("expected RSI value")
	}
	if rsi != 0 {
		t.Fatalf("all-loss series should yield RSI 0, got %v", rsi)
	}
}

func TestRSIRange(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i%7) - float64(i%3)
	}
	rsi, ok := RSI(prices, rsiPeriod)
	if !ok {
		t.Fatal("expected RSI value")
	}
	if rsi < 0 || rsi > 100 {
		t.Fatalf("RSI out of range: %v", rsi)
	}
}

func TestMACDEmptySeries(t *testing.T) {
	if _, ok := MACD(nil, macdFastPeriod, macdSlowPeriod, macdSignalPeriod); ok {
		t.Fatal("expected no MACD for empty series")
	}
}

func TestMACDConstantSeries(t *testing.T) {
	m, ok := MACD(constantPrices(50), macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	if !ok {
		t.Fatal("expected MACD value")
	}
	if m.Line != 0 || m.Signal != 0 || m.Histogram != 0 {
		t.Fatalf("constant series should yield zero MACD, got %+v", m)
	}
}

func TestMACDRisingSeriesPositiveHistogram(t *testing.T) {
	m, ok := MACD(risingPrices(60), macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	if !ok {
		t.Fatal("expected MACD value")
	}
	if m.Histogram <= 0 {
		t.Fatalf("steadily rising series should yield positive histogram, got %v", m.Histogram)
	}
	if math.Abs(m.Line-m.Signal-m.Histogram) > 1e-12 {
		t.Fatalf("histogram should equal line-signal: %+v", m)
	}
}

func TestBollingerPositionInsufficientHistory(t *testing.T) {
	if _, ok := BollingerPosition(risingPrices(bollingerPeriod-1), bollingerPeriod, bollingerStdDevs); ok {
		t.Fatal("expected no position for fewer than period points")
	}
}

func TestBollingerPositionDegenerateBand(t *testing.T) {
	pos, ok := BollingerPosition(constantPrices(bollingerPeriod), bollingerPeriod, bollingerStdDevs)
	if !ok {
		t.Fatal("expected position value")
	}
	if pos != 0 {
		t.Fatalf("zero-width band should yield position 0, got %v", pos)
	}
}

func TestBollingerPositionClamped(t *testing.T) {
	prices := constantPrices(bollingerPeriod)
	prices[len(prices)-1] = 200
	pos, ok := BollingerPosition(prices, bollingerPeriod, bollingerStdDevs)
	if !ok {
		t.Fatal("expected position value")
	}
	if pos < -1 || pos > 1 {
		t.Fatalf("position out of range: %v", pos)
	}
	if pos != 1 {
		t.Fatalf("price far above band should clamp to 1, got %v", pos)
	}
}

func TestVolatilityShortSeriesDefault(t *testing.T) {
	if got := Volatility(risingPrices(volatilityPeriod-1), volatilityPeriod); got != defaultVolatility {
		t.Fatalf("expected default volatility %v, got %v", defaultVolatility, got)
	}
}

func TestVolatilityEmptyRollingWindowFallback(t *testing.T) {
	// Exactly period points leave period-1 returns, so the rolling window
	// never fills and the small fallback applies.
	got := Volatility(risingPrices(volatilityPeriod), volatilityPeriod)
	want := round3(math.Min(fallbackVolatility*volatilityScale, 1.0))
	if got != want {
		t.Fatalf("expected fallback volatility %v, got %v", want, got)
	}
}

func TestVolatilityConstantSeries(t *testing.T) {
	if got := Volatility(constantPrices(40), volatilityPeriod); got != 0 {
		t.Fatalf("constant series should yield zero volatility, got %v", got)
	}
}

func TestVolatilityRange(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 30*math.Sin(float64(i))
	}
	got := Volatility(prices, volatilityPeriod)
	if got < 0 || got > 1 {
		t.Fatalf("volatility out of range: %v", got)
	}
	if got != round3(got) {
		t.Fatalf("volatility should carry at most three decimals, got %v", got)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("expected mean 5, got %v", mean)
	}
	if std != 2 {
		t.Fatalf("expected std 2, got %v", std)
	}
	if m, s := meanStd(nil); m != 0 || s != 0 {
		t.Fatalf("empty input should yield zeros, got %v, %v", m, s)
	}
}
