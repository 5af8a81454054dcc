// Package indicators computes technical indicators over closing prices,
// oldest sample first.
package indicators

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

var ErrNotEnoughData = errors.New("not enough data")

type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Position reports where price sits relative to the bands.
func (b Bands) Position(price float64) string {
	switch {
	case price > b.Upper:
		return "Above Upper"
	case price < b.Lower:
		return "Below Lower"
	default:
		return "Within Bands"
	}
}

type Snapshot struct {
	Price      float64
	SMA20      float64
	SMA50      float64
	EMA12      float64
	EMA26      float64
	RSI14      float64
	MACD       MACD
	Bollinger  Bands
	HasSMA50   bool
	SampleSize int
}

func SMA(closes []float64, window int) (float64, error) {
	if window <= 0 || len(closes) < window {
		return 0, fmt.Errorf("sma(%d) over %d samples: %w", window, len(closes), ErrNotEnoughData)
	}

	return stats.Mean(closes[len(closes)-window:])
}

// EMASeries returns the exponential moving average at every sample, seeded
// with the first close.
func EMASeries(closes []float64, span int) []float64 {
	if len(closes) == 0 || span <= 0 {
		return nil
	}

	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}

	return out
}

func EMA(closes []float64, span int) (float64, error) {
	series := EMASeries(closes, span)
	if len(series) == 0 {
		return 0, fmt.Errorf("ema(%d): %w", span, ErrNotEnoughData)
	}

	return series[len(series)-1], nil
}

// RSI uses simple rolling means of gains and losses over period deltas.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period+1 {
		return 0, fmt.Errorf("rsi(%d) over %d samples: %w", period, len(closes), ErrNotEnoughData)
	}

	tail := closes[len(closes)-period-1:]
	gains := make([]float64, 0, period)
	losses := make([]float64, 0, period)
	for i := 1; i < len(tail); i++ {
		delta := tail[i] - tail[i-1]
		gains = append(gains, max(delta, 0))
		losses = append(losses, max(-delta, 0))
	}

	avgGain, err := stats.Mean(gains)
	if err != nil {
		return 0, err
	}
	avgLoss, err := stats.Mean(losses)
	if err != nil {
		return 0, err
	}
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil
		}
		return 100, nil
	}

	return 100 - 100/(1+avgGain/avgLoss), nil
}

// ComputeMACD returns the 12/26 MACD line with its 9-period signal.
func ComputeMACD(closes []float64) (MACD, error) {
	if len(closes) < 26 {
		return MACD{}, fmt.Errorf("macd over %d samples: %w", len(closes), ErrNotEnoughData)
	}

	fast := EMASeries(closes, 12)
	slow := EMASeries(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EMASeries(line, 9)

	last := len(closes) - 1
	return MACD{
		Line:      line[last],
		Signal:    signal[last],
		Histogram: line[last] - signal[last],
	}, nil
}

func Bollinger(closes []float64, window int, width float64) (Bands, error) {
	if window < 2 || len(closes) < window {
		return Bands{}, fmt.Errorf("bollinger(%d) over %d samples: %w", window, len(closes), ErrNotEnoughData)
	}

	tail := closes[len(closes)-window:]
	middle, err := stats.Mean(tail)
	if err != nil {
		return Bands{}, err
	}
	deviation, err := stats.StandardDeviationSample(tail)
	if err != nil {
		return Bands{}, err
	}

	return Bands{
		Upper:  middle + width*deviation,
		Middle: middle,
		Lower:  middle - width*deviation,
	}, nil
}

// Compute needs at least 26 closes. SMA50 is left zero below 50 samples.
func Compute(closes []float64) (Snapshot, error) {
	snapshot := Snapshot{SampleSize: len(closes)}
	if len(closes) < 26 {
		return snapshot, fmt.Errorf("indicators over %d samples: %w", len(closes), ErrNotEnoughData)
	}
	snapshot.Price = closes[len(closes)-1]

	var err error
	if snapshot.SMA20, err = SMA(closes, 20); err != nil {
		return snapshot, err
	}
	if sma50, err := SMA(closes, 50); err == nil {
		snapshot.SMA50 = sma50
		snapshot.HasSMA50 = true
	}
	if snapshot.EMA12, err = EMA(closes, 12); err != nil {
		return snapshot, err
	}
	if snapshot.EMA26, err = EMA(closes, 26); err != nil {
		return snapshot, err
	}
	if snapshot.RSI14, err = RSI(closes, 14); err != nil {
		return snapshot, err
	}
	if snapshot.MACD, err = ComputeMACD(closes); err != nil {
		return snapshot, err
	}
	if snapshot.Bollinger, err = Bollinger(closes, 20, 2); err != nil {
		return snapshot, err
	}

	return snapshot, nil
}

func RSISignal(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	default:
		return "Neutral"
	}
}

// CrossSignal compares the short and long moving averages.
func CrossSignal(short, long float64) string {
	if short > long {
		return "Golden Cross"
	}

	return "Death Cross"
}

func Relative(price, reference float64) string {
	if price > reference {
		return "Above"
	}

	return "Below"
}
