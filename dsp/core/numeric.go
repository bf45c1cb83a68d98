package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// GCD returns the greatest common divisor of two frequencies, treating them as
// multiples of tol. Values below tol collapse to the other argument.
func GCD(a, b, tol float64) float64 {
	if tol <= 0 {
		tol = 1e-3
	}
	a, b = math.Abs(a), math.Abs(b)
	for b >= tol {
		a, b = b, math.Mod(a, b)
	}
	return a
}

// SecondsFromMillis converts a script-boundary millisecond value to seconds.
func SecondsFromMillis(ms float64) float64 {
	return ms / 1000
}

// NextPowerOf2 returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
