package pricing

import "math"

// erf is the Abramowitz & Stegun 7.1.26 rational approximation of the
// error function, accurate to about 1.5e-7 absolute error.
func erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}

	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - ((((a5*t+a4)*t+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return sign * y
}

// normalCDF returns P(X <= x) for X ~ Normal(mean, sigma).
func normalCDF(x, mean, sigma float64) float64 {
	if sigma <= 0 {
		if x < mean {
			return 0
		}
		return 1
	}
	return 0.5 * (1 + erf((x-mean)/(sigma*math.Sqrt2)))
}
