// Package validation tests whether the Noise Index leads future changes in an
// external short-interest signal.
package validation

import "math"

// PearsonLag computes the Pearson correlation between signal[0..n-lag-1] and
// reference[lag..n-1]: whether today's signal value predicts the reference
// lag steps in the future. Unequal input lengths are truncated to the shorter
// usable length. Returns NaN if fewer than 2 usable pairs remain after
// shifting, or if either shifted slice has zero variance. Pure and stateless.
func PearsonLag(signal, reference []float64, lag int) float64 {
	if lag < 0 {
		return math.NaN()
	}

	n := len(signal)
	if len(reference) < n {
		n = len(reference)
	}
	usable := n - lag
	if usable < 2 {
		return math.NaN()
	}

	x := signal[:usable]
	y := reference[lag : lag+usable]
	return pearson(x, y)
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}
