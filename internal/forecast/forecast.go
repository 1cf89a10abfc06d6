// Package forecast projects future monthly revenue from saved comparison
// history using least-squares regression over the monthly totals.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInsufficientData is returned when fewer than two months of history
// exist.
var ErrInsufficientData = errors.New("not enough historical data (need at least 2 months)")

// Point is one month of observed revenue. Month uses the "2006-01" layout.
type Point struct {
	Month   string
	Revenue float64
}

// Prediction is one forecast month with a 95% confidence interval.
type Prediction struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound"`
	Confidence string  `json:"confidence"`
}

// Forecast is the full projection with fit diagnostics.
type Forecast struct {
	Predictions    []Prediction `json:"predictions"`
	Trend          string       `json:"trend"`
	TrendStrength  float64      `json:"trendStrength"`
	RSquared       float64      `json:"r2Score"`
	Confidence     string       `json:"confidence"`
	ConfidenceDesc string       `json:"confidenceDescription"`
	ModelType      string       `json:"modelType"`
	HistoricalAvg  float64      `json:"historicalAvg"`
	GrowthRate     float64      `json:"growthRate"`
	DataQuality    string       `json:"dataQuality"`
}

// Revenue projects monthsAhead future months from the observed history.
// With six or more months a quadratic fit captures curved trends; smaller
// histories use a straight line. Four or more months get a trailing
// 3-point moving average first, which trades two data points for less
// noise without looking ahead.
func Revenue(history []Point, monthsAhead int) (*Forecast, error) {
	if len(history) < 2 {
		return nil, ErrInsufficientData
	}
	if monthsAhead < 1 {
		monthsAhead = 1
	}

	revenues := make([]float64, len(history))
	for i, p := range history {
		revenues[i] = p.Revenue
	}

	var xs, ys []float64
	if len(revenues) >= 4 {
		smoothed := movingAverage(revenues, 3)
		ys = smoothed
		xs = make([]float64, len(smoothed))
		for i := range smoothed {
			xs[i] = float64(i + 1)
		}
	} else {
		ys = revenues
		xs = make([]float64, len(revenues))
		for i := range revenues {
			xs[i] = float64(i)
		}
	}

	var predict func(x float64) float64
	var slope float64
	modelType := "Linear (straight trend)"
	if len(history) >= 6 {
		a, b, c := quadFit(xs, ys)
		predict = func(x float64) float64 { return a + b*x + c*x*x }
		slope = revenues[len(revenues)-1] - revenues[0]
		modelType = "Polynomial (curved trend)"
	} else {
		intercept, coef := linearFit(xs, ys)
		predict = func(x float64) float64 { return intercept + coef*x }
		slope = coef
	}

	r2 := rSquared(xs, ys, predict)
	confidence, confidenceDesc := confidenceLabel(r2)
	stdErr := residualStdDev(xs, ys, predict)

	lastDate, err := time.Parse("2006-01", history[len(history)-1].Month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", history[len(history)-1].Month, err)
	}

	predictions := make([]Prediction, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		x := float64(len(history) + i - 1)
		predicted := math.Max(0, predict(x))
		predictions = append(predictions, Prediction{
			Month:      lastDate.AddDate(0, 0, 30*i).Format("January 2006"),
			Revenue:    predicted,
			LowerBound: math.Max(0, predicted-1.96*stdErr),
			UpperBound: predicted + 1.96*stdErr,
			Confidence: confidence,
		})
	}

	first, last := revenues[0], revenues[len(revenues)-1]
	growthRate := 0.0
	if first > 0 {
		growthRate = (last - first) / first * 100
	}

	return &Forecast{
		Predictions:    predictions,
		Trend:          trendLabel(slope),
		TrendStrength:  math.Abs(slope / float64(len(history))),
		RSquared:       r2,
		Confidence:     confidence,
		ConfidenceDesc: confidenceDesc,
		ModelType:      modelType,
		HistoricalAvg:  mean(revenues),
		GrowthRate:     growthRate,
		DataQuality:    dataQuality(len(history)),
	}, nil
}

// movingAverage returns the trailing window average, dropping the first
// window-1 points so no average includes future observations.
func movingAverage(values []float64, window int) []float64 {
	if len(values) < window {
		return values
	}
	out := make([]float64, len(values)-window+1)
	for i := range out {
		var sum float64
		for j := 0; j < window; j++ {
			sum += values[i+j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

func linearFit(xs, ys []float64) (intercept, slope float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return mean(ys), 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return intercept, slope
}

// quadFit solves the degree-2 normal equations by Cramer's rule.
func quadFit(xs, ys []float64) (a, b, c float64) {
	n := float64(len(xs))
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for i := range xs {
		x := xs[i]
		y := ys[i]
		x2 := x * x
		sx += x
		sx2 += x2
		sx3 += x2 * x
		sx4 += x2 * x2
		sy += y
		sxy += x * y
		sx2y += x2 * y
	}

	det := func(m [9]float64) float64 {
		return m[0]*(m[4]*m[8]-m[5]*m[7]) -
			m[1]*(m[3]*m[8]-m[5]*m[6]) +
			m[2]*(m[3]*m[7]-m[4]*m[6])
	}

	d := det([9]float64{n, sx, sx2, sx, sx2, sx3, sx2, sx3, sx4})
	if d == 0 {
		intercept, slope := linearFit(xs, ys)
		return intercept, slope, 0
	}
	a = det([9]float64{sy, sx, sx2, sxy, sx2, sx3, sx2y, sx3, sx4}) / d
	b = det([9]float64{n, sy, sx2, sx, sxy, sx3, sx2, sx2y, sx4}) / d
	c = det([9]float64{n, sx, sy, sx, sx2, sxy, sx2, sx3, sx2y}) / d
	return a, b, c
}

func rSquared(xs, ys []float64, predict func(float64) float64) float64 {
	m := mean(ys)
	var ssRes, ssTot float64
	for i := range xs {
		diff := ys[i] - predict(xs[i])
		ssRes += diff * diff
		dev := ys[i] - m
		ssTot += dev * dev
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func residualStdDev(xs, ys []float64, predict func(float64) float64) float64 {
	residuals := make([]float64, len(xs))
	for i := range xs {
		residuals[i] = ys[i] - predict(xs[i])
	}
	m := mean(residuals)
	var sum float64
	for _, r := range residuals {
		sum += (r - m) * (r - m)
	}
	return math.Sqrt(sum / float64(len(residuals)))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func confidenceLabel(r2 float64) (string, string) {
	switch {
	case r2 > 0.8:
		return "High", "Very reliable - strong pattern detected"
	case r2 > 0.6:
		return "Medium-High", "Reliable - clear pattern with minor variation"
	case r2 > 0.4:
		return "Medium", "Moderate - pattern exists but with some variability"
	case r2 > 0.2:
		return "Low-Medium", "Less reliable - high variability in data"
	default:
		return "Low", "Unreliable - very inconsistent data"
	}
}

func trendLabel(slope float64) string {
	switch {
	case slope > 100:
		return "Strongly Increasing"
	case slope > 0:
		return "Growing"
	case slope < -100:
		return "Declining"
	default:
		return "Stable"
	}
}

func dataQuality(months int) string {
	switch {
	case months >= 10:
		return "Excellent"
	case months >= 6:
		return "Good"
	default:
		return "Fair"
	}
}
