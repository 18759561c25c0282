package sim

import (
	"math"
	"math/rand"
)

const (
	// minRatePerSecond keeps SampleExponential finite for zero or negative rates.
	minRatePerSecond = 1e-9
	// minLogNormalCV and minLogNormalMean keep the log-normal parameters defined.
	minLogNormalCV   = 1e-6
	minLogNormalMean = 1e-6
	// minDurationSeconds replaces any non-finite or non-positive sample.
	minDurationSeconds = 1e-6

	// MinServiceSeconds is the floor applied to every service duration the
	// engine schedules, so a zero-length service can never stall the
	// completion pass.
	MinServiceSeconds = 0.1
)

// SampleExponential draws an exponential inter-arrival time in seconds by
// inverse CDF, -ln(1-U)/rate. Rates that are zero, negative or NaN are
// clamped to a tiny positive value; the result is always finite and >= 0.
func SampleExponential(rng *rand.Rand, ratePerSecond float64) float64 {
	if !(ratePerSecond > minRatePerSecond) {
		ratePerSecond = minRatePerSecond
	}
	u := rng.Float64() // [0, 1) so 1-u is never 0
	return -math.Log(1-u) / ratePerSecond
}

// SampleStandardNormal draws N(0,1) with the Box-Muller transform.
// Both uniforms are redrawn while exactly 0 to avoid ln(0).
func SampleStandardNormal(rng *rand.Rand) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	v := rng.Float64()
	for v == 0 {
		v = rng.Float64()
	}
	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
}

// LogNormalParams converts a target mean and coefficient of variation into
// the (mu, sigma) of the underlying normal:
//
//	sigma² = ln(1 + CV²)
//	mu     = ln(mean) - sigma²/2
//
// CV and mean are floored to small positive values first.
func LogNormalParams(meanSeconds, cv float64) (mu, sigma float64) {
	if !(cv > minLogNormalCV) {
		cv = minLogNormalCV
	}
	if !(meanSeconds > minLogNormalMean) {
		meanSeconds = minLogNormalMean
	}
	sigma2 := math.Log1p(cv * cv)
	return math.Log(meanSeconds) - 0.5*sigma2, math.Sqrt(sigma2)
}

// SampleLogNormal draws a log-normal duration in seconds whose mean and CV
// match the given moments. The result is always finite and strictly positive;
// the engine additionally floors it to MinServiceSeconds.
func SampleLogNormal(rng *rand.Rand, meanSeconds, cv float64) float64 {
	mu, sigma := LogNormalParams(meanSeconds, cv)
	return sanitizeDuration(math.Exp(mu + sigma*SampleStandardNormal(rng)))
}

// ClampServiceDuration floors a service duration to MinServiceSeconds.
// NaN and infinities collapse to the floor as well.
func ClampServiceDuration(d float64) float64 {
	d = sanitizeDuration(d)
	if d < MinServiceSeconds {
		return MinServiceSeconds
	}
	return d
}

func sanitizeDuration(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return minDurationSeconds
	}
	return d
}
